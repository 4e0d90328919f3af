package code

// HTTP状态码.
const (
	// StatusOK - 200: 成功.
	StatusOK = 200
	// StatusBadRequest - 400: 请求参数错误.
	StatusBadRequest = 400
	// StatusUnauthorized - 401: 未授权.
	StatusUnauthorized = 401
	// StatusForbidden - 403: 禁止访问.
	StatusForbidden = 403
	// StatusNotFound - 404: 资源不存在.
	StatusNotFound = 404
	// StatusConflict - 409: 资源冲突.
	StatusConflict = 409
	// StatusInternalServerError - 500: 服务器内部错误.
	StatusInternalServerError = 500
	// StatusTooManyRequests - 429: 请求过多.
	StatusTooManyRequests = 429
	// StatusBadGateway - 502: 上游设备或服务不可达.
	StatusBadGateway = 502
)

// 通用错误码 (100xxx).
const (
	// ErrSuccess - 200: 成功.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: 未知错误.
	ErrUnknown
	// ErrBind - 400: 请求参数绑定错误.
	ErrBind
	// ErrValidation - 400: 请求参数验证错误.
	ErrValidation
	// ErrTokenInvalid - 401: 令牌无效.
	ErrTokenInvalid
	// ErrTooManyRequests - 429: 请求频率过高.
	ErrTooManyRequests
	// ErrUnauthorized - 401: 未授权访问.
	ErrUnauthorized
)

// 员工相关错误码 (101xxx).
const (
	// ErrEmployeeNotFound - 404: 员工不存在.
	ErrEmployeeNotFound int = iota + 101000
	// ErrEmployeeAlreadyExist - 409: 员工已存在.
	ErrEmployeeAlreadyExist
	// ErrEmployeeCodeExhausted - 500: 员工编号生成失败.
	ErrEmployeeCodeExhausted
)

// 设备相关错误码 (102xxx).
const (
	// ErrDeviceUnreachable - 502: 指纹设备不可达.
	ErrDeviceUnreachable int = iota + 102000
	// ErrDeviceNotRegistered - 502: 指纹设备尚未注册地址.
	ErrDeviceNotRegistered
	// ErrEnrollScanFailed - 400: 指纹采集失败.
	ErrEnrollScanFailed
)

// 考勤相关错误码 (106xxx).
const (
	// ErrEnrollmentRequired - 403: 指纹未完成录入，禁止打卡.
	ErrEnrollmentRequired int = iota + 106000
	// ErrCheckoutBeforeCheckin - 400: 未签到不能签退.
	ErrCheckoutBeforeCheckin
	// ErrInvalidAction - 400: 无效的打卡动作.
	ErrInvalidAction
)

// 数据库相关错误码 (105xxx).
const (
	// ErrDatabase - 500: 数据库错误.
	ErrDatabase int = iota + 105000
	// ErrRecordNotFound - 404: 记录不存在.
	ErrRecordNotFound
)
