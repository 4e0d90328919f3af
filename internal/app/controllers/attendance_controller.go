package controllers

import (
	"errors"
	"net/http"
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

// InterfaceAttendanceController 定义考勤控制器接口
type InterfaceAttendanceController interface {
	AddAttendance()
	FingerprintAttendance()
	GetTodayAttendance()
	GetEmployeeAttendance()
	GetAllAttendance()
	DeleteTodayAttendance()
	DeleteAllAttendance()
	DeleteUnenrolledAttendance()
}

// AttendanceController 处理考勤相关的请求
type AttendanceController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAttendanceController 创建一个新的考勤控制器
func NewAttendanceController(ctx *gin.Context, container *container.ServiceContainer) *AttendanceController {
	return &AttendanceController{
		Ctx:       ctx,
		Container: container,
	}
}

// AttendanceRequest 打卡请求，employee_id 和 fingerprint_id 二选一
type AttendanceRequest struct {
	EmployeeID    uint   `json:"employee_id" example:"1"`
	FingerprintID *int   `json:"fingerprint_id" example:"3"`
	Action        string `json:"action" example:"checkin"` // checkin, checkout，留空自动推断
}

// FingerprintAttendanceRequest 指纹设备打卡请求
type FingerprintAttendanceRequest struct {
	FingerprintID int    `json:"fingerprint_id" binding:"required" example:"3"`
	Action        string `json:"action" example:""` // 一般留空由服务端推断
}

// HandleAttendanceFunc 返回一个处理考勤请求的Gin处理函数
func HandleAttendanceFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAttendanceController(ctx, container)

		switch method {
		case "addAttendance":
			controller.AddAttendance()
		case "fingerprintAttendance":
			controller.FingerprintAttendance()
		case "getTodayAttendance":
			controller.GetTodayAttendance()
		case "getEmployeeAttendance":
			controller.GetEmployeeAttendance()
		case "getAllAttendance":
			controller.GetAllAttendance()
		case "deleteTodayAttendance":
			controller.DeleteTodayAttendance()
		case "deleteAllAttendance":
			controller.DeleteAllAttendance()
		case "deleteUnenrolledAttendance":
			controller.DeleteUnenrolledAttendance()
		default:
			response.ParamError(ctx, "无效的方法")
		}
	}
}

// failWithResolveError 把打卡哨兵错误翻译成对应的错误码响应
func (c *AttendanceController) failWithResolveError(err error) {
	switch {
	case errors.Is(err, services.ErrEmployeeNotFound):
		response.FailWithMessage(c.Ctx, code.ErrEmployeeNotFound, err.Error(), nil)
	case errors.Is(err, services.ErrEnrollmentRequired):
		response.FailWithMessage(c.Ctx, code.ErrEnrollmentRequired, err.Error(), nil)
	case errors.Is(err, services.ErrCheckoutBeforeCheckin):
		response.Fail(c.Ctx, code.ErrCheckoutBeforeCheckin, nil)
	case errors.Is(err, services.ErrInvalidAction):
		response.FailWithMessage(c.Ctx, code.ErrInvalidAction, err.Error(), nil)
	default:
		logger.Error("处理打卡事件失败: %v", err)
		response.Fail(c.Ctx, code.ErrDatabase, nil)
	}
}

// 1. AddAttendance 手动打卡
// @Summary 手动打卡
// @Description 管理后台按员工ID打卡，action 留空时自动推断签到/签退
// @Tags attendance
// @Accept json
// @Produce json
// @Param request body AttendanceRequest true "打卡请求"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /attendance/add [post]
func (c *AttendanceController) AddAttendance() {
	var req AttendanceRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数: "+err.Error())
		return
	}
	if req.EmployeeID == 0 && req.FingerprintID == nil {
		response.ParamError(c.Ctx, "employee_id 和 fingerprint_id 必须提供其一")
		return
	}

	attendanceService := c.Container.GetService("attendance").(services.InterfaceAttendanceService)
	result, err := attendanceService.ResolveAttendance(services.ResolveInput{
		EmployeeID:    req.EmployeeID,
		FingerprintID: req.FingerprintID,
		Action:        req.Action,
		OccurredAt:    time.Now(),
	})
	if err != nil {
		c.failWithResolveError(err)
		return
	}

	if result.Outcome.Mutated() {
		c.invalidateTodayCache()
	}
	response.SuccessWithMessage(c.Ctx, string(result.Outcome), result)
}

// 2. FingerprintAttendance 指纹设备打卡
// @Summary 指纹打卡
// @Description 指纹设备按传感器编号打卡，返回固件可解析的简短状态码
// @Tags attendance
// @Accept json
// @Produce json
// @Param request body FingerprintAttendanceRequest true "指纹打卡请求"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /attendance/fingerprint [post]
func (c *AttendanceController) FingerprintAttendance() {
	var req FingerprintAttendanceRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{"what": "error", "message": "invalid request"})
		return
	}

	attendanceService := c.Container.GetService("attendance").(services.InterfaceAttendanceService)
	result, err := attendanceService.ResolveAttendance(services.ResolveInput{
		FingerprintID: &req.FingerprintID,
		Action:        req.Action,
		OccurredAt:    time.Now(),
	})
	if err != nil {
		// 设备侧只需要区分几种短语义，状态码沿用错误映射
		switch {
		case errors.Is(err, services.ErrEmployeeNotFound):
			c.Ctx.JSON(http.StatusNotFound, gin.H{"what": "error", "message": "unknown fingerprint"})
		case errors.Is(err, services.ErrEnrollmentRequired):
			c.Ctx.JSON(http.StatusForbidden, gin.H{"what": "error", "message": "enrollment required"})
		case errors.Is(err, services.ErrCheckoutBeforeCheckin):
			c.Ctx.JSON(http.StatusBadRequest, gin.H{"what": "error", "message": "must check in first"})
		default:
			logger.Error("指纹打卡失败: %v", err)
			c.Ctx.JSON(http.StatusInternalServerError, gin.H{"what": "error", "message": "server error"})
		}
		return
	}

	if result.Outcome.Mutated() {
		c.invalidateTodayCache()
	}

	// 固件屏幕只显示 what 字段，保持极简
	c.Ctx.JSON(http.StatusOK, gin.H{
		"what": result.Outcome.DeviceCode(),
		"name": result.Employee.Name,
	})
}

// invalidateTodayCache 台账变更后清掉今日考勤缓存
func (c *AttendanceController) invalidateTodayCache() {
	if redisService, ok := c.Container.GetService("redis").(services.InterfaceRedisService); ok && redisService != nil {
		redisService.InvalidateTodayAttendance(c.Ctx.Request.Context())
	}
}

// 3. GetTodayAttendance 获取今日考勤
// @Summary 获取今日考勤
// @Description 获取今天（UTC日）的全部考勤记录，带短时缓存
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /attendance/today [get]
func (c *AttendanceController) GetTodayAttendance() {
	ctx := c.Ctx.Request.Context()
	redisService, hasCache := c.Container.GetService("redis").(services.InterfaceRedisService)
	hasCache = hasCache && redisService != nil

	if hasCache {
		var cached []models.AttendanceRecord
		if hit, err := redisService.GetTodayAttendance(ctx, &cached); err == nil && hit {
			response.Success(c.Ctx, cached)
			return
		}
	}

	attendanceService := c.Container.GetService("attendance").(services.InterfaceAttendanceService)
	records, err := attendanceService.GetTodayAttendance()
	if err != nil {
		logger.Error("获取今日考勤失败: %v", err)
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	if hasCache {
		if err := redisService.CacheTodayAttendance(ctx, records); err != nil {
			logger.Warning("缓存今日考勤失败: %v", err)
		}
	}
	response.Success(c.Ctx, records)
}

// 4. GetEmployeeAttendance 获取员工考勤记录
// @Summary 获取员工考勤
// @Description 按员工ID获取考勤记录，支持 start_date/end_date 日期过滤（格式 2006-01-02）
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param id path int true "员工ID"
// @Param start_date query string false "起始日期"
// @Param end_date query string false "结束日期"
// @Success 200 {object} response.Response
// @Router /attendance/employee/{id} [get]
func (c *AttendanceController) GetEmployeeAttendance() {
	id, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil {
		response.ParamError(c.Ctx, "无效的员工ID")
		return
	}

	start, end, err := parseDateRange(c.Ctx)
	if err != nil {
		response.ParamError(c.Ctx, err.Error())
		return
	}

	attendanceService := c.Container.GetService("attendance").(services.InterfaceAttendanceService)
	records, err := attendanceService.GetEmployeeAttendance(uint(id), start, end)
	if err != nil {
		logger.Error("获取员工考勤失败: %v", err)
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}
	response.Success(c.Ctx, records)
}

// 5. GetAllAttendance 获取全部考勤记录
// @Summary 获取全部考勤
// @Description 获取考勤记录，支持日期过滤和 limit 限制（默认100条）
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "起始日期"
// @Param end_date query string false "结束日期"
// @Param limit query int false "返回条数上限"
// @Success 200 {object} response.Response
// @Router /attendance/all [get]
func (c *AttendanceController) GetAllAttendance() {
	start, end, err := parseDateRange(c.Ctx)
	if err != nil {
		response.ParamError(c.Ctx, err.Error())
		return
	}

	limit, _ := strconv.Atoi(c.Ctx.DefaultQuery("limit", "100"))

	attendanceService := c.Container.GetService("attendance").(services.InterfaceAttendanceService)
	records, err := attendanceService.GetAllAttendance(start, end, limit)
	if err != nil {
		logger.Error("获取考勤记录失败: %v", err)
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}
	response.Success(c.Ctx, records)
}

// 6. DeleteTodayAttendance 删除今日考勤
// @Summary 删除今日考勤
// @Description 删除今天的全部考勤记录（调试/演示用）
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /attendance/today [delete]
func (c *AttendanceController) DeleteTodayAttendance() {
	attendanceService := c.Container.GetService("attendance").(services.InterfaceAttendanceService)
	deleted, err := attendanceService.DeleteTodayAttendance()
	if err != nil {
		logger.Error("删除今日考勤失败: %v", err)
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	c.invalidateTodayCache()
	response.SuccessWithMessage(c.Ctx, "删除成功", gin.H{"deleted": deleted})
}

// 7. DeleteAllAttendance 删除全部考勤
// @Summary 删除全部考勤
// @Description 删除全部考勤记录（调试/演示用）
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /attendance/all [delete]
func (c *AttendanceController) DeleteAllAttendance() {
	attendanceService := c.Container.GetService("attendance").(services.InterfaceAttendanceService)
	deleted, err := attendanceService.DeleteAllAttendance()
	if err != nil {
		logger.Error("删除全部考勤失败: %v", err)
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	c.invalidateTodayCache()
	response.SuccessWithMessage(c.Ctx, "删除成功", gin.H{"deleted": deleted})
}

// 8. DeleteUnenrolledAttendance 清理未录入员工的考勤
// @Summary 清理未录入员工的考勤
// @Description 删除指纹未完成录入员工的全部考勤记录
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /attendance/unenrolled [delete]
func (c *AttendanceController) DeleteUnenrolledAttendance() {
	attendanceService := c.Container.GetService("attendance").(services.InterfaceAttendanceService)
	deleted, err := attendanceService.DeleteUnenrolledAttendance()
	if err != nil {
		logger.Error("清理未录入考勤失败: %v", err)
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	c.invalidateTodayCache()
	response.SuccessWithMessage(c.Ctx, "删除成功", gin.H{"deleted": deleted})
}

// parseDateRange 解析 start_date/end_date 查询参数，二者必须同时给出
func parseDateRange(ctx *gin.Context) (*time.Time, *time.Time, error) {
	startStr := ctx.Query("start_date")
	endStr := ctx.Query("end_date")
	if startStr == "" && endStr == "" {
		return nil, nil, nil
	}
	if startStr == "" || endStr == "" {
		return nil, nil, errors.New("start_date 和 end_date 必须同时提供")
	}

	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return nil, nil, errors.New("无效的起始日期，格式应为 2006-01-02")
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return nil, nil, errors.New("无效的结束日期，格式应为 2006-01-02")
	}
	return &start, &end, nil
}
