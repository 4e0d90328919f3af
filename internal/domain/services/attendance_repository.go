package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"attendance-http-service/internal/domain/models"
)

// GormEmployeeDirectory 员工目录的GORM实现
type GormEmployeeDirectory struct {
	db *gorm.DB
}

// NewGormEmployeeDirectory 创建员工目录
func NewGormEmployeeDirectory(db *gorm.DB) *GormEmployeeDirectory {
	return &GormEmployeeDirectory{db: db}
}

// FindByID 按内部ID查找员工，查不到返回 (nil, nil)
func (d *GormEmployeeDirectory) FindByID(id uint) (*models.Employee, error) {
	var employee models.Employee
	if err := d.db.First(&employee, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &employee, nil
}

// FindByFingerprintID 按指纹传感器编号查找员工，查不到返回 (nil, nil)
func (d *GormEmployeeDirectory) FindByFingerprintID(fingerprintID int) (*models.Employee, error) {
	var employee models.Employee
	if err := d.db.Where("fingerprint_id = ?", fingerprintID).First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &employee, nil
}

// GormAttendanceLedger 考勤台账的GORM实现
type GormAttendanceLedger struct {
	db *gorm.DB
}

// NewGormAttendanceLedger 创建考勤台账
func NewGormAttendanceLedger(db *gorm.DB) *GormAttendanceLedger {
	return &GormAttendanceLedger{db: db}
}

// FindByEmployeeAndDay 查找某员工某UTC日的考勤记录，查不到返回 (nil, nil)
func (l *GormAttendanceLedger) FindByEmployeeAndDay(employeeID uint, day time.Time) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	err := l.db.Where("employee_id = ? AND date = ?", employeeID, day).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Insert 插入新记录，联合唯一索引冲突转为 ErrDuplicateRecord
func (l *GormAttendanceLedger) Insert(record *models.AttendanceRecord) error {
	if err := l.db.Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: 员工 %d 日期 %s", ErrDuplicateRecord, record.EmployeeID, record.Date.Format("2006-01-02"))
		}
		return err
	}
	return nil
}

// Update 保存已有记录的全部字段
func (l *GormAttendanceLedger) Update(record *models.AttendanceRecord) error {
	return l.db.Save(record).Error
}
