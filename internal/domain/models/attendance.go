package models

import "time"

// CheckInStatus represents the punctuality of a check-in
type CheckInStatus string

const (
	CheckInOnTime CheckInStatus = "on-time"
	CheckInLate   CheckInStatus = "late"
)

// CheckOutStatus represents the punctuality of a check-out
type CheckOutStatus string

const (
	CheckOutOnTime   CheckOutStatus = "on-time"
	CheckOutEarly    CheckOutStatus = "early"
	CheckOutOvertime CheckOutStatus = "overtime"
)

// AttendanceStatus represents the overall day status
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceHalfDay AttendanceStatus = "half-day"
)

// AttendanceRecord represents one employee's attendance for one calendar day.
// 每名员工每天至多一条记录，由 (employee_id, date) 的联合唯一索引保证，
// 并发的重复打卡会触发索引冲突并被转为更新路径处理。
type AttendanceRecord struct {
	BaseModel
	EmployeeID uint `gorm:"not null;uniqueIndex:idx_employee_date" json:"employee_id"`
	// Date 统一截断到 UTC 零点，所有按天查询都用同一规则
	Date           time.Time        `gorm:"not null;uniqueIndex:idx_employee_date" json:"date"`
	FingerprintID  int              `json:"fingerprint_id"`
	CheckInTime    *time.Time       `json:"check_in_time,omitempty"`
	CheckInStatus  CheckInStatus    `gorm:"type:varchar(20)" json:"check_in_status,omitempty"`
	CheckOutTime   *time.Time       `json:"check_out_time,omitempty"`
	CheckOutStatus CheckOutStatus   `gorm:"type:varchar(20)" json:"check_out_status,omitempty"`
	WorkingHours   float64          `gorm:"default:0" json:"working_hours"`
	Status         AttendanceStatus `gorm:"type:varchar(20);not null" json:"status"`
	Notes          string           `gorm:"type:text" json:"notes,omitempty"`

	// Relations
	Employee *Employee `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
}

// TruncateToUTCDay 把时间截断到所在 UTC 日的零点
func TruncateToUTCDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// HasCheckIn reports whether the record already carries a check-in time
func (r *AttendanceRecord) HasCheckIn() bool {
	return r.CheckInTime != nil && !r.CheckInTime.IsZero()
}

// HasCheckOut reports whether the record already carries a check-out time
func (r *AttendanceRecord) HasCheckOut() bool {
	return r.CheckOutTime != nil && !r.CheckOutTime.IsZero()
}
