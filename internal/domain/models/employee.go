package models

import "time"

// EmployeeStatus represents the working status of an employee
type EmployeeStatus string

const (
	EmployeeStatusActive   EmployeeStatus = "active"
	EmployeeStatusInactive EmployeeStatus = "inactive"
)

// Employee represents an employee record with fingerprint binding
type Employee struct {
	BaseModel
	Name         string `gorm:"type:varchar(100);not null" json:"name"`
	EmployeeCode string `gorm:"type:varchar(20);unique;not null" json:"employee_code"` // 人工编号，如 EMP1、EMP2
	// FingerprintID 是指纹传感器分配的模板编号，录入前可以为空
	FingerprintID       *int           `gorm:"unique" json:"fingerprint_id,omitempty"`
	FingerprintEnrolled bool           `gorm:"default:false" json:"fingerprint_enrolled"`
	Position            string         `gorm:"type:varchar(50);default:'Staff'" json:"position"`
	Department          string         `gorm:"type:varchar(50);default:'General'" json:"department"`
	Email               string         `gorm:"type:varchar(100);unique" json:"email"`
	Phone               string         `gorm:"type:varchar(20)" json:"phone"`
	JoinDate            time.Time      `json:"join_date"`
	Status              EmployeeStatus `gorm:"type:varchar(20);default:'active'" json:"status"`

	// Relations
	AttendanceRecords []AttendanceRecord `gorm:"foreignKey:EmployeeID" json:"attendance_records,omitempty"`
}
