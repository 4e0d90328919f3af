package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"attendance-http-service/internal/domain/models"
	"attendance-http-service/internal/infrastructure/config"
)

// ErrFingerprintNotBound 指纹编号没有绑定到任何员工
var ErrFingerprintNotBound = errors.New("该指纹编号未绑定员工")

// InterfaceEmployeeService 定义员工服务接口
type InterfaceEmployeeService interface {
	CreateEmployee(employee *models.Employee) error
	GetEmployees(pageSize, pageNum int, search string) ([]models.Employee, models.PaginationResult, error)
	GetEmployeeByID(id uint) (*models.Employee, error)
	UpdateEmployee(id uint, updates map[string]interface{}) (*models.Employee, error)
	DeleteEmployee(id uint) error
	MarkEnrolled(fingerprintID int) (*models.Employee, error)
	IsEnrolled(fingerprintID int) (bool, error)
}

// EmployeeService 提供员工相关的服务
type EmployeeService struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// NewEmployeeService 创建一个新的员工服务
func NewEmployeeService(db *gorm.DB, cfg *config.Config) InterfaceEmployeeService {
	return &EmployeeService{DB: db, Cfg: cfg}
}

// 1 CreateEmployee 创建员工，自动分配员工编号和指纹编号。
// 并发创建可能撞号，撞号时重新取号重试，最多三次
func (s *EmployeeService) CreateEmployee(employee *models.Employee) error {
	if employee.JoinDate.IsZero() {
		employee.JoinDate = time.Now()
	}
	if employee.Status == "" {
		employee.Status = models.EmployeeStatusActive
	}
	// 邮箱列有唯一索引，空字符串也会互相撞索引
	autoEmail := employee.Email == ""

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if employee.EmployeeCode == "" || attempt > 0 {
			code, err := s.nextEmployeeCode()
			if err != nil {
				return err
			}
			employee.EmployeeCode = code
		}
		if employee.FingerprintID == nil || attempt > 0 {
			fid, err := s.nextFingerprintID()
			if err != nil {
				return err
			}
			employee.FingerprintID = &fid
		}
		if autoEmail {
			employee.Email = fallbackEmail(time.Now(), attempt)
		}

		// 新员工总是从未录入状态开始，录入成功由设备回调翻转
		employee.FingerprintEnrolled = false

		err := s.DB.Create(employee).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		lastErr = err
		employee.ID = 0
	}
	return fmt.Errorf("分配员工编号失败: %w", lastErr)
}

// fallbackEmail 为未填写邮箱的员工生成占位地址。
// 时间戳加尝试序号保证同一批创建的员工互不相同
func fallbackEmail(now time.Time, attempt int) string {
	return fmt.Sprintf("employee%d%d@company.com", now.UnixMilli(), attempt)
}

// nextEmployeeCode 生成下一个员工编号（EMP1、EMP2 ...）
func (s *EmployeeService) nextEmployeeCode() (string, error) {
	var codes []string
	if err := s.DB.Model(&models.Employee{}).Pluck("employee_code", &codes).Error; err != nil {
		return "", err
	}

	max := 0
	for _, code := range codes {
		n, err := strconv.Atoi(strings.TrimPrefix(code, "EMP"))
		if err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("EMP%d", max+1), nil
}

// nextFingerprintID 生成下一个指纹模板编号
func (s *EmployeeService) nextFingerprintID() (int, error) {
	var max sql.NullInt64
	err := s.DB.Model(&models.Employee{}).Select("MAX(fingerprint_id)").Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return 1, nil
	}
	return int(max.Int64) + 1, nil
}

// 2 GetEmployees 分页获取员工列表，search 按姓名/编号/部门模糊匹配
func (s *EmployeeService) GetEmployees(pageSize, pageNum int, search string) ([]models.Employee, models.PaginationResult, error) {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}
	if pageNum <= 0 {
		pageNum = 1
	}

	query := s.DB.Model(&models.Employee{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR employee_code LIKE ? OR department LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, models.PaginationResult{}, err
	}

	var employees []models.Employee
	err := query.Order("id asc").Offset((pageNum - 1) * pageSize).Limit(pageSize).Find(&employees).Error
	if err != nil {
		return nil, models.PaginationResult{}, err
	}

	return employees, models.PaginationResult{Total: total, PageNum: pageNum, PageSize: pageSize}, nil
}

// 3 GetEmployeeByID 获取单个员工
func (s *EmployeeService) GetEmployeeByID(id uint) (*models.Employee, error) {
	var employee models.Employee
	if err := s.DB.First(&employee, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrEmployeeNotFound, id)
		}
		return nil, err
	}
	return &employee, nil
}

// 4 UpdateEmployee 更新员工信息。
// 员工编号、指纹编号和录入标记不允许通过该接口修改
func (s *EmployeeService) UpdateEmployee(id uint, updates map[string]interface{}) (*models.Employee, error) {
	employee, err := s.GetEmployeeByID(id)
	if err != nil {
		return nil, err
	}

	delete(updates, "employee_code")
	delete(updates, "fingerprint_id")
	delete(updates, "fingerprint_enrolled")
	delete(updates, "id")

	if len(updates) > 0 {
		if err := s.DB.Model(employee).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetEmployeeByID(id)
}

// 5 DeleteEmployee 删除员工及其全部考勤记录
func (s *EmployeeService) DeleteEmployee(id uint) error {
	employee, err := s.GetEmployeeByID(id)
	if err != nil {
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("employee_id = ?", employee.ID).Delete(&models.AttendanceRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(employee).Error
	})
}

// 6 MarkEnrolled 标记指纹录入完成，设备确认成功后调用。
// 幂等：重复调用不会改变已录入的状态
func (s *EmployeeService) MarkEnrolled(fingerprintID int) (*models.Employee, error) {
	var employee models.Employee
	err := s.DB.Where("fingerprint_id = ?", fingerprintID).First(&employee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 指纹编号 %d", ErrFingerprintNotBound, fingerprintID)
		}
		return nil, err
	}

	if !employee.FingerprintEnrolled {
		if err := s.DB.Model(&employee).Update("fingerprint_enrolled", true).Error; err != nil {
			return nil, err
		}
		employee.FingerprintEnrolled = true
	}
	return &employee, nil
}

// 7 IsEnrolled 查询指纹编号是否已完成录入，设备侧扫描前预检用
func (s *EmployeeService) IsEnrolled(fingerprintID int) (bool, error) {
	var employee models.Employee
	err := s.DB.Where("fingerprint_id = ?", fingerprintID).First(&employee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return employee.FingerprintEnrolled, nil
}
