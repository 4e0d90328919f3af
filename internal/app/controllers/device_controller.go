package controllers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"attendance-http-service/internal/domain/services"
	"attendance-http-service/internal/domain/services/container"
	"attendance-http-service/internal/error/code"
	"attendance-http-service/internal/error/response"
	"attendance-http-service/pkg/logger"
)

// InterfaceDeviceController 定义设备控制器接口
type InterfaceDeviceController interface {
	RegisterDevice()
	GetDeviceStatus()
	CheckEnrollment()
	WipeDevice()
}

// DeviceController 处理指纹设备相关的请求
type DeviceController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewDeviceController 创建一个新的设备控制器
func NewDeviceController(ctx *gin.Context, container *container.ServiceContainer) *DeviceController {
	return &DeviceController{
		Ctx:       ctx,
		Container: container,
	}
}

// DeviceRegisterRequest 设备上线登记请求，IP留空时取连接来源地址
type DeviceRegisterRequest struct {
	IP string `json:"ip" example:"192.168.1.42"`
}

// HandleDeviceFunc 返回一个处理设备请求的Gin处理函数
func HandleDeviceFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewDeviceController(ctx, container)

		switch method {
		case "registerDevice":
			controller.RegisterDevice()
		case "getDeviceStatus":
			controller.GetDeviceStatus()
		case "checkEnrollment":
			controller.CheckEnrollment()
		case "wipeDevice":
			controller.WipeDevice()
		default:
			response.ParamError(ctx, "无效的方法")
		}
	}
}

// 1. RegisterDevice 设备上线登记
// @Summary 设备上线登记
// @Description ESP32开机后上报自己的内网地址，留空时取连接来源IP
// @Tags esp32
// @Accept json
// @Produce json
// @Param request body DeviceRegisterRequest false "登记内容"
// @Success 200 {object} response.Response
// @Router /esp32/register [post]
func (c *DeviceController) RegisterDevice() {
	var req DeviceRegisterRequest
	// 老固件发空body，绑定失败按空请求处理
	_ = c.Ctx.ShouldBindJSON(&req)

	ip := req.IP
	if ip == "" {
		ip = c.Ctx.ClientIP()
	}

	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)
	reg := deviceService.RegisterDevice(ip)
	response.SuccessWithMessage(c.Ctx, "注册成功", reg)
}

// 2. GetDeviceStatus 获取设备状态
// @Summary 获取设备状态
// @Description 返回设备注册信息和在线探测结果
// @Tags esp32
// @Produce json
// @Success 200 {object} response.Response
// @Router /esp32/status [get]
func (c *DeviceController) GetDeviceStatus() {
	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)
	status := deviceService.GetStatus(c.Ctx.Request.Context())
	response.Success(c.Ctx, status)
}

// 3. CheckEnrollment 查询指纹录入状态
// @Summary 查询指纹录入状态
// @Description 设备扫描到指纹后预检该编号是否已完成录入
// @Tags esp32
// @Produce json
// @Param fingerprint_id path int true "指纹编号"
// @Success 200 {object} response.Response
// @Router /esp32/enrollment/{fingerprint_id} [get]
func (c *DeviceController) CheckEnrollment() {
	fingerprintID, err := strconv.Atoi(c.Ctx.Param("fingerprint_id"))
	if err != nil {
		response.ParamError(c.Ctx, "无效的指纹编号")
		return
	}

	employeeService := c.Container.GetService("employee").(services.InterfaceEmployeeService)
	enrolled, err := employeeService.IsEnrolled(fingerprintID)
	if err != nil {
		logger.Error("查询录入状态失败: %v", err)
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}
	response.Success(c.Ctx, gin.H{
		"fingerprint_id": fingerprintID,
		"enrolled":       enrolled,
	})
}

// 4. WipeDevice 清空设备指纹库
// @Summary 清空设备指纹库
// @Description 指挥设备清空全部指纹模板（管理员操作）
// @Tags esp32
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /esp32/wipe [post]
func (c *DeviceController) WipeDevice() {
	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)
	if err := deviceService.WipeAll(c.Ctx.Request.Context()); err != nil {
		switch {
		case errors.Is(err, services.ErrDeviceNotRegistered):
			response.Fail(c.Ctx, code.ErrDeviceNotRegistered, nil)
		case errors.Is(err, services.ErrDeviceUnreachable):
			response.FailWithMessage(c.Ctx, code.ErrDeviceUnreachable, err.Error(), nil)
		default:
			logger.Error("清空设备指纹库失败: %v", err)
			response.Fail(c.Ctx, code.ErrUnknown, nil)
		}
		return
	}
	response.SuccessWithMessage(c.Ctx, "已清空设备指纹库", nil)
}
