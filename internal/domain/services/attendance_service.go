package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"attendance-http-service/internal/domain/models"
	"attendance-http-service/internal/infrastructure/config"
)

// 打卡动作
const (
	ActionCheckIn  = "checkin"
	ActionCheckOut = "checkout"
	ActionAuto     = "auto"
)

// AttendanceOutcome 表示一次打卡事件的处理结果
type AttendanceOutcome string

const (
	OutcomeCheckedIn         AttendanceOutcome = "checked-in"
	OutcomeCheckedOut        AttendanceOutcome = "checked-out"
	OutcomeAlreadyCheckedIn  AttendanceOutcome = "already-checked-in"
	OutcomeAlreadyCheckedOut AttendanceOutcome = "already-checked-out"
	OutcomeAlreadyCompleted  AttendanceOutcome = "already-completed"
)

// DeviceCode 返回发给指纹设备固件的简短状态码
// 固件只认 in / out / in-exists / done 四种
func (o AttendanceOutcome) DeviceCode() string {
	switch o {
	case OutcomeCheckedIn:
		return "in"
	case OutcomeCheckedOut:
		return "out"
	case OutcomeAlreadyCheckedIn:
		return "in-exists"
	case OutcomeAlreadyCheckedOut, OutcomeAlreadyCompleted:
		return "done"
	default:
		return "unknown"
	}
}

// Mutated reports whether the outcome wrote to the ledger
func (o AttendanceOutcome) Mutated() bool {
	return o == OutcomeCheckedIn || o == OutcomeCheckedOut
}

// 考勤处理的哨兵错误，控制器用 errors.Is 翻译成错误码
var (
	ErrEmployeeNotFound      = errors.New("员工不存在")
	ErrEnrollmentRequired    = errors.New("指纹未完成录入，禁止打卡")
	ErrCheckoutBeforeCheckin = errors.New("未签到不能签退")
	ErrInvalidAction         = errors.New("无效的打卡动作")
	ErrDuplicateRecord       = errors.New("考勤记录已存在")
)

// EmployeeDirectory 员工目录查询接口，查不到时返回 (nil, nil)
type EmployeeDirectory interface {
	FindByID(id uint) (*models.Employee, error)
	FindByFingerprintID(fingerprintID int) (*models.Employee, error)
}

// AttendanceLedger 考勤台账接口，按 (员工, UTC日) 存取
type AttendanceLedger interface {
	FindByEmployeeAndDay(employeeID uint, day time.Time) (*models.AttendanceRecord, error)
	Insert(record *models.AttendanceRecord) error
	Update(record *models.AttendanceRecord) error
}

// ResolveInput 一次打卡事件的输入
type ResolveInput struct {
	EmployeeID    uint       // 手动路径：内部员工ID
	FingerprintID *int       // 设备路径：指纹传感器编号
	Action        string     // checkin / checkout / auto，空值等同 auto
	OccurredAt    time.Time  // 事件时间，零值取当前时间
}

// ResolveResult 打卡事件的处理结果
type ResolveResult struct {
	Outcome  AttendanceOutcome        `json:"outcome"`
	Record   *models.AttendanceRecord `json:"record"`
	Employee *models.Employee         `json:"employee"`
}

// InterfaceAttendanceService 定义考勤服务接口
type InterfaceAttendanceService interface {
	ResolveAttendance(input ResolveInput) (*ResolveResult, error)
	GetTodayAttendance() ([]models.AttendanceRecord, error)
	GetEmployeeAttendance(employeeID uint, start, end *time.Time) ([]models.AttendanceRecord, error)
	GetAllAttendance(start, end *time.Time, limit int) ([]models.AttendanceRecord, error)
	DeleteTodayAttendance() (int64, error)
	DeleteAllAttendance() (int64, error)
	DeleteUnenrolledAttendance() (int64, error)
	MarkAbsentees(day time.Time) (int64, error)
}

// AttendanceService 提供考勤相关的服务。
// ResolveAttendance 是唯一的打卡判定入口，原先散落在各个接口里的
// 签到/签退推断逻辑全部收拢到这里
type AttendanceService struct {
	DB            *gorm.DB
	Directory     EmployeeDirectory
	Ledger        AttendanceLedger
	WorkStartHour int
	WorkEndHour   int
}

// NewAttendanceService 创建一个新的考勤服务
func NewAttendanceService(db *gorm.DB, cfg *config.Config) InterfaceAttendanceService {
	return &AttendanceService{
		DB:            db,
		Directory:     NewGormEmployeeDirectory(db),
		Ledger:        NewGormAttendanceLedger(db),
		WorkStartHour: cfg.WorkStartHour,
		WorkEndHour:   cfg.WorkEndHour,
	}
}

// 1 ResolveAttendance 处理一次打卡事件：定位员工、校验录入状态、
// 推断签到/签退并落库，返回带结果标签的处理结果
func (s *AttendanceService) ResolveAttendance(input ResolveInput) (*ResolveResult, error) {
	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	action := input.Action
	if action == "" {
		action = ActionAuto
	}
	if action != ActionAuto && action != ActionCheckIn && action != ActionCheckOut {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, input.Action)
	}

	// 定位员工：设备路径按指纹编号，手动路径按内部ID
	employee, err := s.resolveEmployee(input)
	if err != nil {
		return nil, err
	}

	// 设备路径的安全闸：指纹编号能对上但未完成录入的员工一律拒绝，
	// 防止传感器编号撞上历史遗留数据
	if input.FingerprintID != nil && !employee.FingerprintEnrolled {
		return nil, fmt.Errorf("%w: 指纹编号 %d", ErrEnrollmentRequired, *input.FingerprintID)
	}

	day := models.TruncateToUTCDay(occurredAt)
	record, err := s.Ledger.FindByEmployeeAndDay(employee.ID, day)
	if err != nil {
		return nil, err
	}

	result, err := s.apply(employee, record, action, occurredAt, day, input.FingerprintID)
	if errors.Is(err, ErrDuplicateRecord) {
		// 并发的重复打卡撞上了唯一索引：重读当天记录后按更新路径重走一遍决策
		record, rerr := s.Ledger.FindByEmployeeAndDay(employee.ID, day)
		if rerr != nil {
			return nil, rerr
		}
		if record == nil {
			return nil, err
		}
		return s.apply(employee, record, action, occurredAt, day, input.FingerprintID)
	}
	return result, err
}

// resolveEmployee 按输入的标识符定位员工
func (s *AttendanceService) resolveEmployee(input ResolveInput) (*models.Employee, error) {
	if input.FingerprintID != nil {
		employee, err := s.Directory.FindByFingerprintID(*input.FingerprintID)
		if err != nil {
			return nil, err
		}
		if employee == nil {
			return nil, fmt.Errorf("%w: 指纹编号 %d", ErrEmployeeNotFound, *input.FingerprintID)
		}
		return employee, nil
	}

	employee, err := s.Directory.FindByID(input.EmployeeID)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, fmt.Errorf("%w: ID %d", ErrEmployeeNotFound, input.EmployeeID)
	}
	return employee, nil
}

// apply 执行打卡决策表并落库
func (s *AttendanceService) apply(employee *models.Employee, record *models.AttendanceRecord, action string, occurredAt, day time.Time, fingerprintID *int) (*ResolveResult, error) {
	// auto 模式按当天记录状态推断实际动作
	effective := action
	if effective == ActionAuto {
		switch {
		case record == nil || !record.HasCheckIn():
			effective = ActionCheckIn
		case !record.HasCheckOut():
			effective = ActionCheckOut
		default:
			// 当天已完成签到签退，重复事件不再写库
			return &ResolveResult{Outcome: OutcomeAlreadyCompleted, Record: record, Employee: employee}, nil
		}
	}

	switch effective {
	case ActionCheckIn:
		return s.applyCheckIn(employee, record, occurredAt, day, fingerprintID)
	case ActionCheckOut:
		return s.applyCheckOut(employee, record, occurredAt)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
}

func (s *AttendanceService) applyCheckIn(employee *models.Employee, record *models.AttendanceRecord, occurredAt, day time.Time, fingerprintID *int) (*ResolveResult, error) {
	if record != nil && record.HasCheckIn() {
		return &ResolveResult{Outcome: OutcomeAlreadyCheckedIn, Record: record, Employee: employee}, nil
	}

	// 迟到判定只看小时，严格大于上班整点才算迟到
	status := models.CheckInOnTime
	if occurredAt.Hour() > s.WorkStartHour {
		status = models.CheckInLate
	}

	checkIn := occurredAt
	if record == nil {
		record = &models.AttendanceRecord{
			EmployeeID:    employee.ID,
			Date:          day,
			FingerprintID: effectiveFingerprintID(employee, fingerprintID),
			CheckInTime:   &checkIn,
			CheckInStatus: status,
			Status:        models.AttendancePresent,
		}
		if err := s.Ledger.Insert(record); err != nil {
			return nil, err
		}
		return &ResolveResult{Outcome: OutcomeCheckedIn, Record: record, Employee: employee}, nil
	}

	record.CheckInTime = &checkIn
	record.CheckInStatus = status
	record.Status = models.AttendancePresent
	if err := s.Ledger.Update(record); err != nil {
		return nil, err
	}
	return &ResolveResult{Outcome: OutcomeCheckedIn, Record: record, Employee: employee}, nil
}

func (s *AttendanceService) applyCheckOut(employee *models.Employee, record *models.AttendanceRecord, occurredAt time.Time) (*ResolveResult, error) {
	if record == nil || !record.HasCheckIn() {
		return nil, ErrCheckoutBeforeCheckin
	}
	if record.HasCheckOut() {
		return &ResolveResult{Outcome: OutcomeAlreadyCheckedOut, Record: record, Employee: employee}, nil
	}

	// 早退/加班判定同样只看小时，等于下班整点记正常
	hour := occurredAt.Hour()
	status := models.CheckOutOnTime
	if hour < s.WorkEndHour {
		status = models.CheckOutEarly
	} else if hour > s.WorkEndHour {
		status = models.CheckOutOvertime
	}

	checkOut := occurredAt
	record.CheckOutTime = &checkOut
	record.CheckOutStatus = status
	// 工时取小数小时数，不做上下限截断，刚签到就签退得到接近0的值也按有效处理
	record.WorkingHours = checkOut.Sub(*record.CheckInTime).Hours()
	if err := s.Ledger.Update(record); err != nil {
		return nil, err
	}
	return &ResolveResult{Outcome: OutcomeCheckedOut, Record: record, Employee: employee}, nil
}

// effectiveFingerprintID 优先用事件携带的指纹编号，手动路径回落到员工档案里的编号
func effectiveFingerprintID(employee *models.Employee, fingerprintID *int) int {
	if fingerprintID != nil {
		return *fingerprintID
	}
	if employee.FingerprintID != nil {
		return *employee.FingerprintID
	}
	return 0
}

// 2 GetTodayAttendance 获取今天（UTC日）的全部考勤记录
func (s *AttendanceService) GetTodayAttendance() ([]models.AttendanceRecord, error) {
	today := models.TruncateToUTCDay(time.Now())

	var records []models.AttendanceRecord
	if err := s.DB.Preload("Employee").Where("date = ?", today).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// 3 GetEmployeeAttendance 获取某员工的考勤记录，可按日期范围过滤
func (s *AttendanceService) GetEmployeeAttendance(employeeID uint, start, end *time.Time) ([]models.AttendanceRecord, error) {
	query := s.DB.Preload("Employee").Where("employee_id = ?", employeeID)
	if start != nil && end != nil {
		query = query.Where("date BETWEEN ? AND ?", models.TruncateToUTCDay(*start), models.TruncateToUTCDay(*end))
	}

	var records []models.AttendanceRecord
	if err := query.Order("date desc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// 4 GetAllAttendance 获取全部考勤记录，可按日期范围过滤并限制条数
func (s *AttendanceService) GetAllAttendance(start, end *time.Time, limit int) ([]models.AttendanceRecord, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	query := s.DB.Preload("Employee")
	if start != nil && end != nil {
		query = query.Where("date BETWEEN ? AND ?", models.TruncateToUTCDay(*start), models.TruncateToUTCDay(*end))
	}

	var records []models.AttendanceRecord
	if err := query.Order("date desc, created_at desc").Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// 5 DeleteTodayAttendance 删除今天的考勤记录（测试/重置用）
func (s *AttendanceService) DeleteTodayAttendance() (int64, error) {
	today := models.TruncateToUTCDay(time.Now())
	result := s.DB.Where("date = ?", today).Delete(&models.AttendanceRecord{})
	return result.RowsAffected, result.Error
}

// 6 DeleteAllAttendance 删除全部考勤记录（测试/重置用）
func (s *AttendanceService) DeleteAllAttendance() (int64, error) {
	result := s.DB.Where("1 = 1").Delete(&models.AttendanceRecord{})
	return result.RowsAffected, result.Error
}

// 7 DeleteUnenrolledAttendance 清理未完成指纹录入员工的考勤记录。
// 录入安全闸上线前产生的脏数据用这个接口清掉
func (s *AttendanceService) DeleteUnenrolledAttendance() (int64, error) {
	var ids []uint
	if err := s.DB.Model(&models.Employee{}).Where("fingerprint_enrolled = ?", false).Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	result := s.DB.Where("employee_id IN ?", ids).Delete(&models.AttendanceRecord{})
	return result.RowsAffected, result.Error
}

// 8 MarkAbsentees 给指定UTC日没有任何打卡记录的在职员工补缺勤记录，
// 由每日定时任务调用
func (s *AttendanceService) MarkAbsentees(day time.Time) (int64, error) {
	day = models.TruncateToUTCDay(day)

	var employees []models.Employee
	err := s.DB.Where("status = ?", models.EmployeeStatusActive).
		Where("id NOT IN (?)", s.DB.Model(&models.AttendanceRecord{}).Select("employee_id").Where("date = ?", day)).
		Find(&employees).Error
	if err != nil {
		return 0, err
	}

	var marked int64
	for _, employee := range employees {
		record := &models.AttendanceRecord{
			EmployeeID:    employee.ID,
			Date:          day,
			FingerprintID: effectiveFingerprintID(&employee, nil),
			Status:        models.AttendanceAbsent,
		}
		if err := s.Ledger.Insert(record); err != nil {
			if errors.Is(err, ErrDuplicateRecord) {
				// 任务重跑或当天补了打卡，跳过即可
				continue
			}
			return marked, err
		}
		marked++
	}
	return marked, nil
}
