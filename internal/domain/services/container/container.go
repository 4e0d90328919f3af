package container

import (
	"gorm.io/gorm"

	"attendance-http-service/internal/domain/services"
	"attendance-http-service/internal/infrastructure/config"
	"attendance-http-service/pkg/logger"
)

// ServiceContainer 服务容器，集中装配全部服务及其依赖
type ServiceContainer struct {
	db  *gorm.DB
	cfg *config.Config

	deviceRegistry    *services.DeviceRegistry
	jwtService        services.InterfaceJWTService
	redisService      services.InterfaceRedisService
	employeeService   services.InterfaceEmployeeService
	attendanceService services.InterfaceAttendanceService
	deviceService     services.InterfaceDeviceService
}

// NewServiceContainer 创建并装配服务容器
func NewServiceContainer(db *gorm.DB, cfg *config.Config) *ServiceContainer {
	c := &ServiceContainer{db: db, cfg: cfg}

	c.deviceRegistry = services.NewDeviceRegistry(cfg.DeviceRegistryTTL)
	c.jwtService = services.NewJWTService(db, cfg)
	c.employeeService = services.NewEmployeeService(db, cfg)
	c.attendanceService = services.NewAttendanceService(db, cfg)
	c.deviceService = services.NewDeviceService(c.deviceRegistry, c.employeeService, cfg)

	// Redis不可用时降级为无缓存运行，不阻塞启动
	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		logger.Warning("Redis连接失败，缓存已禁用: %v", err)
	} else {
		c.redisService = redisService
	}

	return c
}

// GetService 按名称获取服务，调用方负责类型断言
func (c *ServiceContainer) GetService(name string) interface{} {
	switch name {
	case "jwt":
		return c.jwtService
	case "redis":
		return c.redisService
	case "employee":
		return c.employeeService
	case "attendance":
		return c.attendanceService
	case "device":
		return c.deviceService
	case "deviceRegistry":
		return c.deviceRegistry
	default:
		return nil
	}
}

// GetDB 获取数据库实例
func (c *ServiceContainer) GetDB() *gorm.DB {
	return c.db
}

// GetConfig 获取配置
func (c *ServiceContainer) GetConfig() *config.Config {
	return c.cfg
}

// JWTService 获取JWT服务
func (c *ServiceContainer) JWTService() services.InterfaceJWTService {
	return c.jwtService
}

// RedisService 获取Redis服务，缓存禁用时返回nil
func (c *ServiceContainer) RedisService() services.InterfaceRedisService {
	return c.redisService
}

// EmployeeService 获取员工服务
func (c *ServiceContainer) EmployeeService() services.InterfaceEmployeeService {
	return c.employeeService
}

// AttendanceService 获取考勤服务
func (c *ServiceContainer) AttendanceService() services.InterfaceAttendanceService {
	return c.attendanceService
}

// DeviceService 获取设备服务
func (c *ServiceContainer) DeviceService() services.InterfaceDeviceService {
	return c.deviceService
}

// Close 释放容器持有的外部连接
func (c *ServiceContainer) Close() {
	if c.redisService != nil {
		if err := c.redisService.Close(); err != nil {
			logger.Warning("关闭Redis连接失败: %v", err)
		}
	}
}
