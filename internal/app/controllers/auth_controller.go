package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"attendance-http-service/internal/domain/services"
	"attendance-http-service/internal/domain/services/container"
	"attendance-http-service/internal/error/code"
	"attendance-http-service/internal/error/response"
	"attendance-http-service/pkg/logger"
)

// InterfaceAuthController 定义认证控制器接口
type InterfaceAuthController interface {
	Login()
}

// AuthController 处理认证相关的请求
type AuthController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAuthController 创建一个新的认证控制器
func NewAuthController(ctx *gin.Context, container *container.ServiceContainer) *AuthController {
	return &AuthController{
		Ctx:       ctx,
		Container: container,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"admin123"`
}

// HandleAuthFunc 返回一个处理认证请求的Gin处理函数
func HandleAuthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAuthController(ctx, container)

		switch method {
		case "login":
			controller.Login()
		default:
			response.ParamError(ctx, "无效的方法")
		}
	}
}

// 1. Login 管理员登录
// @Summary 管理员登录
// @Description 校验用户名密码，返回24小时有效的JWT令牌
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录凭据"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (c *AuthController) Login() {
	var req LoginRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数: "+err.Error())
		return
	}

	jwtService := c.Container.GetService("jwt").(services.InterfaceJWTService)
	token, admin, err := jwtService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) || errors.Is(err, services.ErrAccountDisabled) {
			response.FailWithMessage(c.Ctx, code.ErrUnauthorized, err.Error(), nil)
			return
		}
		logger.Error("登录失败: %v", err)
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"token": token,
		"admin": gin.H{
			"id":       admin.ID,
			"username": admin.Username,
			"role":     admin.Role,
		},
	})
}
