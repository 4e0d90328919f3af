package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"attendance-http-service/internal/domain/models"
	"attendance-http-service/internal/domain/services"
	"attendance-http-service/internal/domain/services/container"
	"attendance-http-service/internal/error/code"
	"attendance-http-service/internal/error/response"
	"attendance-http-service/pkg/logger"
)

// InterfaceEmployeeController 定义员工控制器接口
type InterfaceEmployeeController interface {
	GetEmployees()
	GetEmployee()
	CreateEmployee()
	UpdateEmployee()
	DeleteEmployee()
	EnrollFingerprint()
	EnrollCallback()
}

// EmployeeController 处理员工相关的请求
type EmployeeController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewEmployeeController 创建一个新的员工控制器
func NewEmployeeController(ctx *gin.Context, container *container.ServiceContainer) *EmployeeController {
	return &EmployeeController{
		Ctx:       ctx,
		Container: container,
	}
}

// EmployeeRequest 创建员工请求
type EmployeeRequest struct {
	Name       string `json:"name" binding:"required" example:"张伟"`
	Position   string `json:"position" example:"Engineer"`
	Department string `json:"department" example:"R&D"`
	Email      string `json:"email" example:"zhangwei@example.com"`
	Phone      string `json:"phone" example:"13800000000"`
	JoinDate   string `json:"join_date" example:"2026-01-15"` // 格式 2006-01-02，留空取当天
}

// EmployeeUpdateRequest 更新员工请求
type EmployeeUpdateRequest struct {
	Name       *string `json:"name,omitempty"`
	Position   *string `json:"position,omitempty"`
	Department *string `json:"department,omitempty"`
	Email      *string `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Status     *string `json:"status,omitempty"` // active, inactive
}

// EnrollCallbackRequest 设备录入完成回调
type EnrollCallbackRequest struct {
	FingerprintID int  `json:"fingerprint_id" binding:"required" example:"3"`
	Success       bool `json:"success" example:"true"`
}

// HandleEmployeeFunc 返回一个处理员工请求的Gin处理函数
func HandleEmployeeFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewEmployeeController(ctx, container)

		switch method {
		case "getEmployees":
			controller.GetEmployees()
		case "getEmployee":
			controller.GetEmployee()
		case "createEmployee":
			controller.CreateEmployee()
		case "updateEmployee":
			controller.UpdateEmployee()
		case "deleteEmployee":
			controller.DeleteEmployee()
		case "enrollFingerprint":
			controller.EnrollFingerprint()
		case "enrollCallback":
			controller.EnrollCallback()
		default:
			response.ParamError(ctx, "无效的方法")
		}
	}
}

// 1. GetEmployees 获取员工列表
// @Summary 获取员工列表
// @Description 分页获取全部员工
// @Tags employee
// @Produce json
// @Security BearerAuth
// @Param pageNum query int false "页码，默认1"
// @Param pageSize query int false "每页条数，默认10"
// @Param search query string false "按姓名/编号/部门模糊搜索"
// @Success 200 {object} response.Response
// @Router /employees [get]
func (c *EmployeeController) GetEmployees() {
	pageNum, _ := strconv.Atoi(c.Ctx.DefaultQuery("pageNum", "1"))
	pageSize, _ := strconv.Atoi(c.Ctx.DefaultQuery("pageSize", "10"))
	search := c.Ctx.Query("search")

	employeeService := c.Container.GetService("employee").(services.InterfaceEmployeeService)
	employees, pagination, err := employeeService.GetEmployees(pageSize, pageNum, search)
	if err != nil {
		logger.Error("获取员工列表失败: %v", err)
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"employees":  employees,
		"pagination": pagination,
	})
}

// 2. GetEmployee 获取单个员工
// @Summary 获取单个员工
// @Description 根据ID获取员工信息
// @Tags employee
// @Produce json
// @Security BearerAuth
// @Param id path int true "员工ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /employees/{id} [get]
func (c *EmployeeController) GetEmployee() {
	id, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil {
		response.ParamError(c.Ctx, "无效的员工ID")
		return
	}

	employeeService := c.Container.GetService("employee").(services.InterfaceEmployeeService)
	employee, err := employeeService.GetEmployeeByID(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrEmployeeNotFound) {
			response.Fail(c.Ctx, code.ErrEmployeeNotFound, nil)
			return
		}
		logger.Error("获取员工失败: %v", err)
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}
	response.Success(c.Ctx, employee)
}

// 3. CreateEmployee 创建员工
// @Summary 创建员工
// @Description 创建员工并自动分配员工编号和指纹编号
// @Tags employee
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body EmployeeRequest true "员工信息"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /employees [post]
func (c *EmployeeController) CreateEmployee() {
	var req EmployeeRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数: "+err.Error())
		return
	}

	employee := &models.Employee{
		Name:       req.Name,
		Position:   req.Position,
		Department: req.Department,
		Email:      req.Email,
		Phone:      req.Phone,
	}
	if req.JoinDate != "" {
		joinDate, err := time.Parse("2006-01-02", req.JoinDate)
		if err != nil {
			response.ParamError(c.Ctx, "无效的入职日期，格式应为 2006-01-02")
			return
		}
		employee.JoinDate = joinDate
	}

	employeeService := c.Container.GetService("employee").(services.InterfaceEmployeeService)
	if err := employeeService.CreateEmployee(employee); err != nil {
		logger.Error("创建员工失败: %v", err)
		response.Fail(c.Ctx, code.ErrEmployeeCodeExhausted, nil)
		return
	}
	response.SuccessWithMessage(c.Ctx, "创建成功", employee)
}

// 4. UpdateEmployee 更新员工
// @Summary 更新员工
// @Description 更新员工基本信息，编号与指纹字段不可修改
// @Tags employee
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "员工ID"
// @Param request body EmployeeUpdateRequest true "更新字段"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /employees/{id} [put]
func (c *EmployeeController) UpdateEmployee() {
	id, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil {
		response.ParamError(c.Ctx, "无效的员工ID")
		return
	}

	var req EmployeeUpdateRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数: "+err.Error())
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}
	if req.Department != nil {
		updates["department"] = *req.Department
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	employeeService := c.Container.GetService("employee").(services.InterfaceEmployeeService)
	employee, err := employeeService.UpdateEmployee(uint(id), updates)
	if err != nil {
		if errors.Is(err, services.ErrEmployeeNotFound) {
			response.Fail(c.Ctx, code.ErrEmployeeNotFound, nil)
			return
		}
		logger.Error("更新员工失败: %v", err)
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}
	response.SuccessWithMessage(c.Ctx, "更新成功", employee)
}

// 5. DeleteEmployee 删除员工
// @Summary 删除员工
// @Description 删除员工及其全部考勤记录
// @Tags employee
// @Produce json
// @Security BearerAuth
// @Param id path int true "员工ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /employees/{id} [delete]
func (c *EmployeeController) DeleteEmployee() {
	id, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil {
		response.ParamError(c.Ctx, "无效的员工ID")
		return
	}

	employeeService := c.Container.GetService("employee").(services.InterfaceEmployeeService)
	if err := employeeService.DeleteEmployee(uint(id)); err != nil {
		if errors.Is(err, services.ErrEmployeeNotFound) {
			response.Fail(c.Ctx, code.ErrEmployeeNotFound, nil)
			return
		}
		logger.Error("删除员工失败: %v", err)
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}
	response.SuccessWithMessage(c.Ctx, "删除成功", nil)
}

// 6. EnrollFingerprint 下发指纹录入指令
// @Summary 录入指纹
// @Description 指挥指纹设备录入该员工的指纹，设备确认成功后标记录入完成
// @Tags employee
// @Produce json
// @Security BearerAuth
// @Param id path int true "员工ID"
// @Success 200 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /employees/{id}/enroll [post]
func (c *EmployeeController) EnrollFingerprint() {
	id, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil {
		response.ParamError(c.Ctx, "无效的员工ID")
		return
	}

	employeeService := c.Container.GetService("employee").(services.InterfaceEmployeeService)
	employee, err := employeeService.GetEmployeeByID(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrEmployeeNotFound) {
			response.Fail(c.Ctx, code.ErrEmployeeNotFound, nil)
			return
		}
		logger.Error("获取员工失败: %v", err)
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}
	if employee.FingerprintID == nil {
		response.ParamError(c.Ctx, "员工没有分配指纹编号")
		return
	}

	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)
	report, err := deviceService.EnrollFingerprint(c.Ctx.Request.Context(), *employee.FingerprintID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDeviceNotRegistered):
			response.Fail(c.Ctx, code.ErrDeviceNotRegistered, report)
		case errors.Is(err, services.ErrDeviceUnreachable):
			response.FailWithMessage(c.Ctx, code.ErrDeviceUnreachable, err.Error(), report)
		case errors.Is(err, services.ErrEnrollScanFailed):
			response.FailWithMessage(c.Ctx, code.ErrEnrollScanFailed, err.Error(), report)
		default:
			logger.Error("录入指纹失败: %v", err)
			response.Fail(c.Ctx, code.ErrUnknown, report)
		}
		return
	}
	response.SuccessWithMessage(c.Ctx, "录入成功", report)
}

// 7. EnrollCallback 设备录入完成回调
// @Summary 录入完成回调
// @Description 设备在本地完成录入后回调，标记员工指纹录入完成
// @Tags employee
// @Accept json
// @Produce json
// @Param request body EnrollCallbackRequest true "回调内容"
// @Success 200 {object} response.Response
// @Router /employees/enroll-callback [post]
func (c *EmployeeController) EnrollCallback() {
	var req EnrollCallbackRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数: "+err.Error())
		return
	}

	if !req.Success {
		// 失败回调只记日志，不改状态
		logger.Warning("设备报告指纹录入失败: 指纹编号=%d", req.FingerprintID)
		response.SuccessWithMessage(c.Ctx, "已记录", nil)
		return
	}

	employeeService := c.Container.GetService("employee").(services.InterfaceEmployeeService)
	employee, err := employeeService.MarkEnrolled(req.FingerprintID)
	if err != nil {
		if errors.Is(err, services.ErrFingerprintNotBound) {
			response.FailWithMessage(c.Ctx, code.ErrEmployeeNotFound, err.Error(), nil)
			return
		}
		logger.Error("标记录入完成失败: %v", err)
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}
	response.SuccessWithMessage(c.Ctx, "录入完成", employee)
}
