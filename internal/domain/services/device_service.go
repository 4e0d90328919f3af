package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"attendance-http-service/internal/infrastructure/config"
	"attendance-http-service/pkg/logger"
)

// 设备通信的哨兵错误
var (
	ErrDeviceNotRegistered = errors.New("指纹设备尚未注册")
	ErrDeviceUnreachable   = errors.New("指纹设备不可达")
	ErrEnrollScanFailed    = errors.New("设备录入扫描失败")
)

// DeviceRegistration 一次设备上线登记
type DeviceRegistration struct {
	IP           string    `json:"ip"`
	RegisteredAt time.Time `json:"registered_at"`
}

// DeviceRegistry 维护最近上线的指纹设备地址。
// 设备用DHCP分配的内网地址，重启后会换IP，所以只信任TTL内的登记
type DeviceRegistry struct {
	mu      sync.Mutex
	current *DeviceRegistration
	ttl     time.Duration
}

// NewDeviceRegistry 创建设备注册表
func NewDeviceRegistry(ttl time.Duration) *DeviceRegistry {
	return &DeviceRegistry{ttl: ttl}
}

// Register 登记设备地址，覆盖旧登记
func (r *DeviceRegistry) Register(ip string) DeviceRegistration {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = &DeviceRegistration{IP: ip, RegisteredAt: time.Now()}
	return *r.current
}

// Current 返回当前登记，过期或从未登记返回 (nil, false)
func (r *DeviceRegistry) Current() (*DeviceRegistration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return nil, false
	}
	if r.ttl > 0 && time.Since(r.current.RegisteredAt) > r.ttl {
		return nil, false
	}
	reg := *r.current
	return &reg, true
}

// Clear 清除登记（测试与设备下线用）
func (r *DeviceRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = nil
}

// DeviceStatus 设备状态快照
type DeviceStatus struct {
	Registered   bool       `json:"registered"`
	IP           string     `json:"ip,omitempty"`
	RegisteredAt *time.Time `json:"registered_at,omitempty"`
	Online       bool       `json:"online"`
}

// EnrollmentReport 一次录入指令的执行报告
type EnrollmentReport struct {
	AttemptID     string `json:"attempt_id"`
	FingerprintID int    `json:"fingerprint_id"`
	Attempts      int    `json:"attempts"`
	Enrolled      bool   `json:"enrolled"`
}

// InterfaceDeviceService 定义指纹设备服务接口
type InterfaceDeviceService interface {
	RegisterDevice(ip string) DeviceRegistration
	GetStatus(ctx context.Context) DeviceStatus
	CheckHealth(ctx context.Context) error
	EnrollFingerprint(ctx context.Context, fingerprintID int) (*EnrollmentReport, error)
	WipeAll(ctx context.Context) error
}

// DeviceService 负责与ESP32指纹设备的HTTP通信。
// 设备固件只暴露 /healthz、/enroll、/wipe-all 三个接口
type DeviceService struct {
	Registry        *DeviceRegistry
	EmployeeService InterfaceEmployeeService
	HealthTimeout   time.Duration
	EnrollTimeout   time.Duration
	MaxAttempts     int
	RetryDelay      time.Duration
	// 按次构造client，录入的超时随尝试次数递增
	NewClient func(timeout time.Duration) *http.Client
}

// NewDeviceService 创建一个新的设备服务
func NewDeviceService(registry *DeviceRegistry, employeeService InterfaceEmployeeService, cfg *config.Config) InterfaceDeviceService {
	return &DeviceService{
		Registry:        registry,
		EmployeeService: employeeService,
		HealthTimeout:   cfg.DeviceHealthTimeout,
		EnrollTimeout:   cfg.DeviceEnrollTimeout,
		MaxAttempts:     3,
		RetryDelay:      500 * time.Millisecond,
		NewClient: func(timeout time.Duration) *http.Client {
			return &http.Client{Timeout: timeout}
		},
	}
}

// 1 RegisterDevice 登记设备上线地址
func (s *DeviceService) RegisterDevice(ip string) DeviceRegistration {
	reg := s.Registry.Register(ip)
	logger.Info("指纹设备已注册: %s", ip)
	return reg
}

// 2 GetStatus 返回设备状态快照，含一次在线探测
func (s *DeviceService) GetStatus(ctx context.Context) DeviceStatus {
	reg, ok := s.Registry.Current()
	if !ok {
		return DeviceStatus{Registered: false}
	}

	status := DeviceStatus{Registered: true, IP: reg.IP, RegisteredAt: &reg.RegisteredAt}
	status.Online = s.CheckHealth(ctx) == nil
	return status
}

// 3 CheckHealth 探测设备健康接口，固定短超时快速失败
func (s *DeviceService) CheckHealth(ctx context.Context) error {
	reg, ok := s.Registry.Current()
	if !ok {
		return ErrDeviceNotRegistered
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.deviceURL(reg.IP, "/healthz"), nil)
	if err != nil {
		return err
	}

	resp, err := s.NewClient(s.HealthTimeout).Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnreachable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: 状态码 %d", ErrDeviceUnreachable, resp.StatusCode)
	}
	return nil
}

// enrollResponse 设备 /enroll 接口的应答
type enrollResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// 4 EnrollFingerprint 指挥设备录入指定编号的指纹。
// 先健康检查快速失败，再发起最多 MaxAttempts 次录入，
// 第i次的超时是 i*EnrollTimeout（录入要等人把手指放上去，越试越宽容），
// 次与次之间固定间隔 RetryDelay。只有设备明确回成功才翻转员工的录入标记；
// 设备明确回失败说明扫描本身失败，不重试
func (s *DeviceService) EnrollFingerprint(ctx context.Context, fingerprintID int) (*EnrollmentReport, error) {
	reg, ok := s.Registry.Current()
	if !ok {
		return nil, ErrDeviceNotRegistered
	}

	if err := s.CheckHealth(ctx); err != nil {
		return nil, err
	}

	report := &EnrollmentReport{
		AttemptID:     uuid.New().String(),
		FingerprintID: fingerprintID,
	}
	url := fmt.Sprintf("%s?id=%d", s.deviceURL(reg.IP, "/enroll"), fingerprintID)

	var lastErr error
	for i := 1; i <= s.MaxAttempts; i++ {
		if i > 1 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(s.RetryDelay):
			}
		}
		report.Attempts = i
		logger.Info("录入指纹 [%s] 第%d次尝试: 指纹编号=%d 设备=%s", report.AttemptID, i, fingerprintID, reg.IP)

		result, err := s.enrollOnce(ctx, url, time.Duration(i)*s.EnrollTimeout)
		if err != nil {
			// 超时或连接失败，换更长的超时再试
			lastErr = err
			logger.Warning("录入指纹 [%s] 第%d次尝试失败: %v", report.AttemptID, i, err)
			continue
		}
		if !result.Success {
			// 设备明确报告扫描失败，重试没有意义
			logger.Warning("录入指纹 [%s] 设备报告失败: %s", report.AttemptID, result.Message)
			return report, fmt.Errorf("%w: %s", ErrEnrollScanFailed, result.Message)
		}

		if _, err := s.EmployeeService.MarkEnrolled(fingerprintID); err != nil {
			return report, err
		}
		report.Enrolled = true
		logger.Info("录入指纹 [%s] 成功: 指纹编号=%d", report.AttemptID, fingerprintID)
		return report, nil
	}

	return report, fmt.Errorf("%w: 重试%d次后放弃: %v", ErrDeviceUnreachable, s.MaxAttempts, lastErr)
}

// enrollOnce 发起单次录入请求
func (s *DeviceService) enrollOnce(ctx context.Context, url string, timeout time.Duration) (*enrollResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.NewClient(timeout).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	// 非200一律按可重试错误处理，不看body内容，
	// 避免半残应答误翻录入标记
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("设备返回状态码 %d", resp.StatusCode)
	}

	var result enrollResponse
	if err := json.Unmarshal(body, &result); err != nil {
		// 老固件回纯文本，HTTP 200 即视为成功
		return &enrollResponse{Success: true, Message: string(body)}, nil
	}
	return &result, nil
}

// 5 WipeAll 清空设备上的全部指纹模板
func (s *DeviceService) WipeAll(ctx context.Context) error {
	reg, ok := s.Registry.Current()
	if !ok {
		return ErrDeviceNotRegistered
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.deviceURL(reg.IP, "/wipe-all"), nil)
	if err != nil {
		return err
	}

	resp, err := s.NewClient(s.EnrollTimeout).Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnreachable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: 状态码 %d", ErrDeviceUnreachable, resp.StatusCode)
	}
	logger.Warning("已清空设备全部指纹模板: %s", reg.IP)
	return nil
}

func (s *DeviceService) deviceURL(ip, path string) string {
	return "http://" + ip + path
}
