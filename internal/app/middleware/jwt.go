package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"attendance-http-service/internal/domain/services"
	"attendance-http-service/internal/error/code"
	"attendance-http-service/internal/error/response"
	"attendance-http-service/internal/infrastructure/config"
)

var jwtService services.InterfaceJWTService

// InitAuthMiddleware 初始化认证中间件
func InitAuthMiddleware(cfg *config.Config, db *gorm.DB) {
	jwtService = services.NewJWTService(db, cfg)
}

// extractToken 从授权头中提取token
func extractToken(authHeader string) string {
	// 检查并移除 "Bearer " 前缀
	if len(authHeader) > 7 && strings.HasPrefix(authHeader, "Bearer ") {
		return authHeader[7:]
	}
	return authHeader
}

// AuthenticateAdmin 验证管理员身份
func AuthenticateAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.FailWithMessage(c, code.ErrUnauthorized, "缺少授权头", nil)
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(extractToken(authHeader))
		if err != nil {
			response.FailWithMessage(c, code.ErrUnauthorized, "无效的令牌", nil)
			c.Abort()
			return
		}

		// 存储claims到上下文，控制器按需读取
		c.Set("admin_id", claims.AdminID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)
		c.Next()
	}
}
