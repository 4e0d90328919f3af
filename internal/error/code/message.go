package code

// 错误码消息映射
var codeMessageMap = map[int]string{
	// 通用错误码
	ErrSuccess:      "成功",
	ErrUnknown:      "未知错误",
	ErrBind:         "请求参数绑定错误",
	ErrValidation:   "请求参数验证错误",
	ErrTokenInvalid:    "无效的认证令牌",
	ErrTooManyRequests: "请求频率过高",
	ErrUnauthorized:    "未授权访问",

	// 员工相关错误码
	ErrEmployeeNotFound:      "员工不存在",
	ErrEmployeeAlreadyExist:  "员工已存在",
	ErrEmployeeCodeExhausted: "员工编号生成失败",

	// 设备相关错误码
	ErrDeviceUnreachable:   "指纹设备不可达",
	ErrDeviceNotRegistered: "指纹设备尚未注册",
	ErrEnrollScanFailed:    "指纹采集失败，请重新按压手指",

	// 考勤相关错误码
	ErrEnrollmentRequired:    "指纹未完成录入，请先录入指纹",
	ErrCheckoutBeforeCheckin: "未签到不能签退",
	ErrInvalidAction:         "无效的打卡动作",

	// 数据库相关错误码
	ErrDatabase:       "数据库错误",
	ErrRecordNotFound: "记录不存在",
}

// 错误码HTTP状态码映射
var codeStatusMap = map[int]int{
	// 通用错误码
	ErrSuccess:         StatusOK,
	ErrUnknown:         StatusInternalServerError,
	ErrBind:            StatusBadRequest,
	ErrValidation:      StatusBadRequest,
	ErrTokenInvalid:    StatusUnauthorized,
	ErrTooManyRequests: StatusTooManyRequests,
	ErrUnauthorized:    StatusUnauthorized,

	// 员工相关错误码
	ErrEmployeeNotFound:      StatusNotFound,
	ErrEmployeeAlreadyExist:  StatusConflict,
	ErrEmployeeCodeExhausted: StatusInternalServerError,

	// 设备相关错误码
	ErrDeviceUnreachable:   StatusBadGateway,
	ErrDeviceNotRegistered: StatusBadGateway,
	ErrEnrollScanFailed:    StatusBadRequest,

	// 考勤相关错误码
	ErrEnrollmentRequired:    StatusForbidden,
	ErrCheckoutBeforeCheckin: StatusBadRequest,
	ErrInvalidAction:         StatusBadRequest,

	// 数据库相关错误码
	ErrDatabase:       StatusInternalServerError,
	ErrRecordNotFound: StatusNotFound,
}

// GetMessage 获取错误码对应的消息
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "未知错误"
}

// GetStatus 获取错误码对应的HTTP状态码
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}
