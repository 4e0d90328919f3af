package services

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"attendance-http-service/internal/domain/models"
)

// fakeDirectory 内存员工目录
type fakeDirectory struct {
	mu        sync.Mutex
	employees map[uint]*models.Employee
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{employees: make(map[uint]*models.Employee)}
}

func (d *fakeDirectory) add(e *models.Employee) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.employees[e.ID] = e
}

func (d *fakeDirectory) FindByID(id uint) (*models.Employee, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.employees[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, nil
}

func (d *fakeDirectory) FindByFingerprintID(fingerprintID int) (*models.Employee, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, e := range d.employees {
		if e.FingerprintID != nil && *e.FingerprintID == fingerprintID {
			copied := *e
			return &copied, nil
		}
	}
	return nil, nil
}

// fakeLedger 内存考勤台账，按 (员工,日) 强制唯一，模拟数据库的联合唯一索引
type fakeLedger struct {
	mu      sync.Mutex
	nextID  uint
	records map[string]*models.AttendanceRecord
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{nextID: 1, records: make(map[string]*models.AttendanceRecord)}
}

func ledgerKey(employeeID uint, day time.Time) string {
	return fmt.Sprintf("%d/%s", employeeID, day.Format("2006-01-02"))
}

func (l *fakeLedger) FindByEmployeeAndDay(employeeID uint, day time.Time) (*models.AttendanceRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r, ok := l.records[ledgerKey(employeeID, day)]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, nil
}

func (l *fakeLedger) Insert(record *models.AttendanceRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := ledgerKey(record.EmployeeID, record.Date)
	if _, exists := l.records[key]; exists {
		return ErrDuplicateRecord
	}
	record.ID = l.nextID
	l.nextID++
	copied := *record
	l.records[key] = &copied
	return nil
}

func (l *fakeLedger) Update(record *models.AttendanceRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	copied := *record
	l.records[ledgerKey(record.EmployeeID, record.Date)] = &copied
	return nil
}

func (l *fakeLedger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// newTestService 构造带内存依赖的考勤服务，工作时间 9:00-17:00
func newTestService() (*AttendanceService, *fakeDirectory, *fakeLedger) {
	directory := newFakeDirectory()
	ledger := newFakeLedger()
	service := &AttendanceService{
		Directory:     directory,
		Ledger:        ledger,
		WorkStartHour: 9,
		WorkEndHour:   17,
	}
	return service, directory, ledger
}

func intPtr(n int) *int { return &n }

func addEmployee(directory *fakeDirectory, id uint, fingerprintID int, enrolled bool) *models.Employee {
	e := &models.Employee{
		Name:                fmt.Sprintf("员工%d", id),
		FingerprintID:       intPtr(fingerprintID),
		FingerprintEnrolled: enrolled,
		Status:              models.EmployeeStatusActive,
	}
	e.ID = id
	directory.add(e)
	return e
}

// at 构造UTC时间的便捷函数
func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 10, hour, minute, 0, 0, time.UTC)
}

// TestResolveAttendanceSequence 验证一天内的完整打卡序列：
// 签到 -> 签退 -> 再打卡返回已完成，全程只产生一条记录
func TestResolveAttendanceSequence(t *testing.T) {
	service, directory, ledger := newTestService()
	addEmployee(directory, 1, 5, true)

	// 第一次自动打卡应记为签到
	result, err := service.ResolveAttendance(ResolveInput{FingerprintID: intPtr(5), OccurredAt: at(8, 30)})
	if err != nil {
		t.Fatalf("签到失败: %v", err)
	}
	if result.Outcome != OutcomeCheckedIn {
		t.Fatalf("期望 %s，实际 %s", OutcomeCheckedIn, result.Outcome)
	}
	if result.Outcome.DeviceCode() != "in" {
		t.Errorf("设备状态码期望 in，实际 %s", result.Outcome.DeviceCode())
	}

	// 第二次自动打卡应记为签退
	result, err = service.ResolveAttendance(ResolveInput{FingerprintID: intPtr(5), OccurredAt: at(17, 30)})
	if err != nil {
		t.Fatalf("签退失败: %v", err)
	}
	if result.Outcome != OutcomeCheckedOut {
		t.Fatalf("期望 %s，实际 %s", OutcomeCheckedOut, result.Outcome)
	}
	if result.Outcome.DeviceCode() != "out" {
		t.Errorf("设备状态码期望 out，实际 %s", result.Outcome.DeviceCode())
	}

	// 第三次打卡当天已完成，不报错也不写库
	result, err = service.ResolveAttendance(ResolveInput{FingerprintID: intPtr(5), OccurredAt: at(18, 0)})
	if err != nil {
		t.Fatalf("重复打卡不应报错: %v", err)
	}
	if result.Outcome != OutcomeAlreadyCompleted {
		t.Fatalf("期望 %s，实际 %s", OutcomeAlreadyCompleted, result.Outcome)
	}
	if result.Outcome.DeviceCode() != "done" {
		t.Errorf("设备状态码期望 done，实际 %s", result.Outcome.DeviceCode())
	}

	if ledger.count() != 1 {
		t.Errorf("全天应只有一条记录，实际 %d 条", ledger.count())
	}
}

// TestResolveAttendanceExplicitActions 验证显式动作的边界行为
func TestResolveAttendanceExplicitActions(t *testing.T) {
	t.Run("未签到时显式签退应拒绝", func(t *testing.T) {
		service, directory, _ := newTestService()
		addEmployee(directory, 1, 5, true)

		_, err := service.ResolveAttendance(ResolveInput{FingerprintID: intPtr(5), Action: ActionCheckOut, OccurredAt: at(17, 0)})
		if !errors.Is(err, ErrCheckoutBeforeCheckin) {
			t.Fatalf("期望 ErrCheckoutBeforeCheckin，实际 %v", err)
		}
	})

	t.Run("已签到时显式签到返回in-exists", func(t *testing.T) {
		service, directory, _ := newTestService()
		addEmployee(directory, 1, 5, true)

		if _, err := service.ResolveAttendance(ResolveInput{FingerprintID: intPtr(5), Action: ActionCheckIn, OccurredAt: at(9, 0)}); err != nil {
			t.Fatalf("签到失败: %v", err)
		}
		result, err := service.ResolveAttendance(ResolveInput{FingerprintID: intPtr(5), Action: ActionCheckIn, OccurredAt: at(9, 5)})
		if err != nil {
			t.Fatalf("重复签到不应报错: %v", err)
		}
		if result.Outcome != OutcomeAlreadyCheckedIn {
			t.Fatalf("期望 %s，实际 %s", OutcomeAlreadyCheckedIn, result.Outcome)
		}
		if result.Outcome.DeviceCode() != "in-exists" {
			t.Errorf("设备状态码期望 in-exists，实际 %s", result.Outcome.DeviceCode())
		}
	})

	t.Run("已签退时显式签退返回done", func(t *testing.T) {
		service, directory, _ := newTestService()
		addEmployee(directory, 1, 5, true)

		service.ResolveAttendance(ResolveInput{FingerprintID: intPtr(5), Action: ActionCheckIn, OccurredAt: at(9, 0)})
		service.ResolveAttendance(ResolveInput{FingerprintID: intPtr(5), Action: ActionCheckOut, OccurredAt: at(17, 0)})

		result, err := service.ResolveAttendance(ResolveInput{FingerprintID: intPtr(5), Action: ActionCheckOut, OccurredAt: at(18, 0)})
		if err != nil {
			t.Fatalf("重复签退不应报错: %v", err)
		}
		if result.Outcome != OutcomeAlreadyCheckedOut {
			t.Fatalf("期望 %s，实际 %s", OutcomeAlreadyCheckedOut, result.Outcome)
		}
	})

	t.Run("无效动作", func(t *testing.T) {
		service, directory, _ := newTestService()
		addEmployee(directory, 1, 5, true)

		_, err := service.ResolveAttendance(ResolveInput{FingerprintID: intPtr(5), Action: "toggle", OccurredAt: at(9, 0)})
		if !errors.Is(err, ErrInvalidAction) {
			t.Fatalf("期望 ErrInvalidAction，实际 %v", err)
		}
	})
}

// TestEnrollmentGate 未完成录入的指纹必须被拒绝，无论动作是什么
func TestEnrollmentGate(t *testing.T) {
	service, directory, ledger := newTestService()
	addEmployee(directory, 1, 5, false)

	for _, action := range []string{"", ActionCheckIn, ActionCheckOut} {
		_, err := service.ResolveAttendance(ResolveInput{FingerprintID: intPtr(5), Action: action, OccurredAt: at(9, 0)})
		if !errors.Is(err, ErrEnrollmentRequired) {
			t.Errorf("动作 %q: 期望 ErrEnrollmentRequired，实际 %v", action, err)
		}
	}
	if ledger.count() != 0 {
		t.Errorf("未录入员工不应产生任何记录，实际 %d 条", ledger.count())
	}

	// 手动路径（按员工ID）不经过录入闸
	_, err := service.ResolveAttendance(ResolveInput{EmployeeID: 1, OccurredAt: at(9, 0)})
	if err != nil {
		t.Errorf("手动打卡不应被录入闸拦截: %v", err)
	}
}

// TestUnknownFingerprint 未知指纹编号
func TestUnknownFingerprint(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.ResolveAttendance(ResolveInput{FingerprintID: intPtr(99), OccurredAt: at(9, 0)})
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("期望 ErrEmployeeNotFound，实际 %v", err)
	}
}

// TestCheckInStatusThresholds 迟到判定只比较小时，9点整不算迟到
func TestCheckInStatusThresholds(t *testing.T) {
	cases := []struct {
		hour   int
		minute int
		want   models.CheckInStatus
	}{
		{8, 59, models.CheckInOnTime},
		{9, 0, models.CheckInOnTime},
		{9, 59, models.CheckInOnTime}, // 同一小时内不算迟到
		{10, 0, models.CheckInLate},
		{13, 30, models.CheckInLate},
	}

	for _, tc := range cases {
		service, directory, _ := newTestService()
		addEmployee(directory, 1, 5, true)

		result, err := service.ResolveAttendance(ResolveInput{FingerprintID: intPtr(5), OccurredAt: at(tc.hour, tc.minute)})
		if err != nil {
			t.Fatalf("%02d:%02d 签到失败: %v", tc.hour, tc.minute, err)
		}
		if result.Record.CheckInStatus != tc.want {
			t.Errorf("%02d:%02d 签到状态期望 %s，实际 %s", tc.hour, tc.minute, tc.want, result.Record.CheckInStatus)
		}
	}
}

// TestCheckOutStatusThresholds 早退/正常/加班的小时边界
func TestCheckOutStatusThresholds(t *testing.T) {
	cases := []struct {
		hour   int
		minute int
		want   models.CheckOutStatus
	}{
		{16, 59, models.CheckOutEarly},
		{17, 0, models.CheckOutOnTime},
		{17, 59, models.CheckOutOnTime},
		{18, 0, models.CheckOutOvertime},
		{22, 0, models.CheckOutOvertime},
	}

	for _, tc := range cases {
		service, directory, _ := newTestService()
		addEmployee(directory, 1, 5, true)

		if _, err := service.ResolveAttendance(ResolveInput{FingerprintID: intPtr(5), OccurredAt: at(9, 0)}); err != nil {
			t.Fatalf("签到失败: %v", err)
		}
		result, err := service.ResolveAttendance(ResolveInput{FingerprintID: intPtr(5), OccurredAt: at(tc.hour, tc.minute)})
		if err != nil {
			t.Fatalf("%02d:%02d 签退失败: %v", tc.hour, tc.minute, err)
		}
		if result.Record.CheckOutStatus != tc.want {
			t.Errorf("%02d:%02d 签退状态期望 %s，实际 %s", tc.hour, tc.minute, tc.want, result.Record.CheckOutStatus)
		}
	}
}

// TestWorkingHours 工时按实际间隔的小数小时计算
func TestWorkingHours(t *testing.T) {
	service, directory, _ := newTestService()
	addEmployee(directory, 1, 5, true)

	service.ResolveAttendance(ResolveInput{FingerprintID: intPtr(5), OccurredAt: at(9, 0)})
	result, err := service.ResolveAttendance(ResolveInput{FingerprintID: intPtr(5), OccurredAt: at(17, 30)})
	if err != nil {
		t.Fatalf("签退失败: %v", err)
	}

	if math.Abs(result.Record.WorkingHours-8.5) > 1e-9 {
		t.Errorf("工时期望 8.5，实际 %v", result.Record.WorkingHours)
	}
}

// TestUTCDayBucketing 跨UTC午夜的两次打卡落在不同的日记录
func TestUTCDayBucketing(t *testing.T) {
	service, directory, ledger := newTestService()
	addEmployee(directory, 1, 5, true)

	// 3月10日 23:50 UTC 签到
	night := time.Date(2026, 3, 10, 23, 50, 0, 0, time.UTC)
	result, err := service.ResolveAttendance(ResolveInput{FingerprintID: intPtr(5), OccurredAt: night})
	if err != nil {
		t.Fatalf("签到失败: %v", err)
	}
	if result.Outcome != OutcomeCheckedIn {
		t.Fatalf("期望签到，实际 %s", result.Outcome)
	}

	// 20分钟后已是3月11日，应开新记录而不是签退
	pastMidnight := time.Date(2026, 3, 11, 0, 10, 0, 0, time.UTC)
	result, err = service.ResolveAttendance(ResolveInput{FingerprintID: intPtr(5), OccurredAt: pastMidnight})
	if err != nil {
		t.Fatalf("跨日打卡失败: %v", err)
	}
	if result.Outcome != OutcomeCheckedIn {
		t.Fatalf("跨日打卡期望开新签到，实际 %s", result.Outcome)
	}
	if ledger.count() != 2 {
		t.Errorf("期望2条记录，实际 %d 条", ledger.count())
	}

	// 非UTC时区的同一瞬间应落在同一UTC日
	shanghai := time.FixedZone("CST", 8*3600)
	local := time.Date(2026, 3, 11, 7, 0, 0, 0, shanghai) // UTC 2026-03-10 23:00
	day := models.TruncateToUTCDay(local)
	want := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if !day.Equal(want) {
		t.Errorf("UTC日截断期望 %v，实际 %v", want, day)
	}
}

// TestConcurrentDuplicateCheckIn 并发重复签到：唯一索引冲突转更新路径，
// 最终只有一条记录，且没有请求失败
func TestConcurrentDuplicateCheckIn(t *testing.T) {
	service, directory, ledger := newTestService()
	addEmployee(directory, 1, 5, true)

	const workers = 16
	var wg sync.WaitGroup
	outcomes := make([]AttendanceOutcome, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			result, err := service.ResolveAttendance(ResolveInput{FingerprintID: intPtr(5), Action: ActionCheckIn, OccurredAt: at(9, 0)})
			if err != nil {
				errs[n] = err
				return
			}
			outcomes[n] = result.Outcome
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("并发请求 %d 失败: %v", i, err)
		}
	}
	if ledger.count() != 1 {
		t.Fatalf("并发签到应只产生一条记录，实际 %d 条", ledger.count())
	}

	var checkedIn, alreadyIn int
	for _, o := range outcomes {
		switch o {
		case OutcomeCheckedIn:
			checkedIn++
		case OutcomeAlreadyCheckedIn:
			alreadyIn++
		}
	}
	if checkedIn != 1 {
		t.Errorf("应恰好有一个请求完成签到，实际 %d 个", checkedIn)
	}
	if alreadyIn != workers-1 {
		t.Errorf("其余请求应返回已签到，实际 %d 个", alreadyIn)
	}
}
