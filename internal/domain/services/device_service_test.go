package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"attendance-http-service/internal/domain/models"
)

// fakeEmployeeService 只实现录入标记，其余方法不会被设备服务调用
type fakeEmployeeService struct {
	enrolled map[int]bool
}

func newFakeEmployeeService() *fakeEmployeeService {
	return &fakeEmployeeService{enrolled: make(map[int]bool)}
}

func (f *fakeEmployeeService) CreateEmployee(*models.Employee) error { return nil }
func (f *fakeEmployeeService) GetEmployees(int, int, string) ([]models.Employee, models.PaginationResult, error) {
	return nil, models.PaginationResult{}, nil
}
func (f *fakeEmployeeService) GetEmployeeByID(uint) (*models.Employee, error) { return nil, nil }
func (f *fakeEmployeeService) UpdateEmployee(uint, map[string]interface{}) (*models.Employee, error) {
	return nil, nil
}
func (f *fakeEmployeeService) DeleteEmployee(uint) error { return nil }
func (f *fakeEmployeeService) MarkEnrolled(fingerprintID int) (*models.Employee, error) {
	f.enrolled[fingerprintID] = true
	return &models.Employee{FingerprintEnrolled: true}, nil
}
func (f *fakeEmployeeService) IsEnrolled(fingerprintID int) (bool, error) {
	return f.enrolled[fingerprintID], nil
}

// newTestDeviceService 构造指向httptest服务器的设备服务
func newTestDeviceService(serverURL string, employeeService InterfaceEmployeeService) *DeviceService {
	registry := NewDeviceRegistry(5 * time.Minute)
	registry.Register(strings.TrimPrefix(serverURL, "http://"))

	return &DeviceService{
		Registry:        registry,
		EmployeeService: employeeService,
		HealthTimeout:   200 * time.Millisecond,
		EnrollTimeout:   200 * time.Millisecond,
		MaxAttempts:     3,
		RetryDelay:      10 * time.Millisecond,
		NewClient: func(timeout time.Duration) *http.Client {
			return &http.Client{Timeout: timeout}
		},
	}
}

// TestDeviceRegistryTTL 过期的登记视为未注册
func TestDeviceRegistryTTL(t *testing.T) {
	registry := NewDeviceRegistry(50 * time.Millisecond)
	registry.Register("192.168.1.42")

	if _, ok := registry.Current(); !ok {
		t.Fatal("刚登记的设备应可用")
	}

	time.Sleep(80 * time.Millisecond)
	if _, ok := registry.Current(); ok {
		t.Fatal("过期登记不应返回")
	}

	// 重新登记后恢复
	registry.Register("192.168.1.43")
	reg, ok := registry.Current()
	if !ok || reg.IP != "192.168.1.43" {
		t.Fatalf("重新登记后应返回新地址，实际 %+v ok=%v", reg, ok)
	}
}

// TestEnrollUnregisteredDevice 没有登记过设备时直接失败，不发任何请求
func TestEnrollUnregisteredDevice(t *testing.T) {
	service := newTestDeviceService("http://127.0.0.1:1", newFakeEmployeeService())
	service.Registry.Clear()

	_, err := service.EnrollFingerprint(context.Background(), 3)
	if !errors.Is(err, ErrDeviceNotRegistered) {
		t.Fatalf("期望 ErrDeviceNotRegistered，实际 %v", err)
	}
}

// TestEnrollHealthCheckFailsFast 健康检查失败时快速失败，不发起录入尝试
func TestEnrollHealthCheckFailsFast(t *testing.T) {
	var enrollCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/healthz":
			w.WriteHeader(http.StatusServiceUnavailable)
		case "/enroll":
			atomic.AddInt32(&enrollCalls, 1)
		}
	}))
	defer server.Close()

	service := newTestDeviceService(server.URL, newFakeEmployeeService())
	_, err := service.EnrollFingerprint(context.Background(), 3)
	if !errors.Is(err, ErrDeviceUnreachable) {
		t.Fatalf("期望 ErrDeviceUnreachable，实际 %v", err)
	}
	if n := atomic.LoadInt32(&enrollCalls); n != 0 {
		t.Errorf("健康检查失败后不应发起录入，实际发起 %d 次", n)
	}
}

// TestEnrollRetriesOnTimeout 超时的录入尝试会重试，第三次成功并翻转录入标记
func TestEnrollRetriesOnTimeout(t *testing.T) {
	var enrollCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/healthz":
			w.WriteHeader(http.StatusOK)
		case "/enroll":
			n := atomic.AddInt32(&enrollCalls, 1)
			if n < 3 {
				// 前两次拖过超时
				time.Sleep(2 * time.Second)
				return
			}
			w.Write([]byte(`{"success":true,"message":"stored"}`))
		}
	}))
	defer server.Close()

	employeeService := newFakeEmployeeService()
	service := newTestDeviceService(server.URL, employeeService)

	report, err := service.EnrollFingerprint(context.Background(), 3)
	if err != nil {
		t.Fatalf("第三次尝试应成功: %v", err)
	}
	if report.Attempts != 3 {
		t.Errorf("期望3次尝试，实际 %d 次", report.Attempts)
	}
	if !report.Enrolled {
		t.Error("报告应标记录入成功")
	}
	if !employeeService.enrolled[3] {
		t.Error("录入成功后应翻转员工的录入标记")
	}
}

// TestEnrollAllAttemptsTimeout 全部尝试超时后返回设备不可达
func TestEnrollAllAttemptsTimeout(t *testing.T) {
	var enrollCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/healthz":
			w.WriteHeader(http.StatusOK)
		case "/enroll":
			atomic.AddInt32(&enrollCalls, 1)
			time.Sleep(2 * time.Second)
		}
	}))
	defer server.Close()

	employeeService := newFakeEmployeeService()
	service := newTestDeviceService(server.URL, employeeService)

	_, err := service.EnrollFingerprint(context.Background(), 3)
	if !errors.Is(err, ErrDeviceUnreachable) {
		t.Fatalf("期望 ErrDeviceUnreachable，实际 %v", err)
	}
	if n := atomic.LoadInt32(&enrollCalls); n != 3 {
		t.Errorf("期望3次尝试，实际 %d 次", n)
	}
	if employeeService.enrolled[3] {
		t.Error("失败后不应翻转录入标记")
	}
}

// TestEnrollNon200NotTrusted 非200应答即使body声称成功也不可信：
// 按可重试错误处理，且绝不翻转录入标记
func TestEnrollNon200NotTrusted(t *testing.T) {
	var enrollCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/healthz":
			w.WriteHeader(http.StatusOK)
		case "/enroll":
			atomic.AddInt32(&enrollCalls, 1)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"success":true,"message":"stored"}`))
		}
	}))
	defer server.Close()

	employeeService := newFakeEmployeeService()
	service := newTestDeviceService(server.URL, employeeService)

	report, err := service.EnrollFingerprint(context.Background(), 3)
	if !errors.Is(err, ErrDeviceUnreachable) {
		t.Fatalf("期望 ErrDeviceUnreachable，实际 %v", err)
	}
	if n := atomic.LoadInt32(&enrollCalls); n != 3 {
		t.Errorf("非200应答应重试满3次，实际 %d 次", n)
	}
	if report.Enrolled || employeeService.enrolled[3] {
		t.Error("非200应答不应翻转录入标记")
	}
}

// TestEnrollScanFailureNotRetried 设备明确报告扫描失败时不重试
func TestEnrollScanFailureNotRetried(t *testing.T) {
	var enrollCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/healthz":
			w.WriteHeader(http.StatusOK)
		case "/enroll":
			atomic.AddInt32(&enrollCalls, 1)
			w.Write([]byte(`{"success":false,"message":"no finger detected"}`))
		}
	}))
	defer server.Close()

	employeeService := newFakeEmployeeService()
	service := newTestDeviceService(server.URL, employeeService)

	_, err := service.EnrollFingerprint(context.Background(), 3)
	if !errors.Is(err, ErrEnrollScanFailed) {
		t.Fatalf("期望 ErrEnrollScanFailed，实际 %v", err)
	}
	if n := atomic.LoadInt32(&enrollCalls); n != 1 {
		t.Errorf("扫描失败不应重试，实际发起 %d 次", n)
	}
	if employeeService.enrolled[3] {
		t.Error("扫描失败不应翻转录入标记")
	}
}

// TestEnrollContextCancellation 上下文取消时停止重试
func TestEnrollContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/healthz":
			w.WriteHeader(http.StatusOK)
		case "/enroll":
			time.Sleep(2 * time.Second)
		}
	}))
	defer server.Close()

	service := newTestDeviceService(server.URL, newFakeEmployeeService())
	service.RetryDelay = 500 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(300 * time.Millisecond)
		cancel()
	}()

	_, err := service.EnrollFingerprint(ctx, 3)
	if err == nil {
		t.Fatal("取消后应返回错误")
	}
}

// TestWipeAll 清空指令直达设备
func TestWipeAll(t *testing.T) {
	var wipeCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/wipe-all" {
			atomic.AddInt32(&wipeCalls, 1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	service := newTestDeviceService(server.URL, newFakeEmployeeService())
	if err := service.WipeAll(context.Background()); err != nil {
		t.Fatalf("清空失败: %v", err)
	}
	if atomic.LoadInt32(&wipeCalls) != 1 {
		t.Error("应调用设备的 /wipe-all 接口")
	}
}

// TestGetStatusOnline 状态快照包含在线探测结果
func TestGetStatusOnline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	service := newTestDeviceService(server.URL, newFakeEmployeeService())
	status := service.GetStatus(context.Background())
	if !status.Registered || !status.Online {
		t.Errorf("期望已注册且在线，实际 %+v", status)
	}

	service.Registry.Clear()
	status = service.GetStatus(context.Background())
	if status.Registered {
		t.Errorf("清除登记后应为未注册，实际 %+v", status)
	}
}
