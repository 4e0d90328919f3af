package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"attendance-http-service/internal/infrastructure/database"
)

// HealthCheckController 健康检查控制器
type HealthCheckController struct {
	Pool *database.ConnectionPool
}

// NewHealthCheckController 创建健康检查控制器实例
func NewHealthCheckController(pool *database.ConnectionPool) *HealthCheckController {
	return &HealthCheckController{Pool: pool}
}

// Ping 健康检查端点
// @Summary 健康检查
// @Description 探活接口
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /ping [get]
func (h *HealthCheckController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
		"status":  "healthy",
	})
}

// Health 带数据库探测的健康检查
// @Summary 服务健康状态
// @Description 返回数据库连接状态和连接池统计
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthCheckController) Health(c *gin.Context) {
	dbStatus := "up"
	if err := h.Pool.HealthCheck(); err != nil {
		dbStatus = "down"
	}

	stats, _ := h.Pool.Stats()
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": dbStatus,
		"pool":     stats,
	})
}
