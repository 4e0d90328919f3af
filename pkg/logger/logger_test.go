package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestLogFilePath 日志文件按日期命名
func TestLogFilePath(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	got := logFilePath("logs", now)
	want := filepath.Join("logs", "2026-03-10.log")
	if got != want {
		t.Errorf("日志路径期望 %q，实际 %q", want, got)
	}
}

// TestSetupLoggerWritesToConfiguredDir 日志写入配置的目录
func TestSetupLoggerWritesToConfiguredDir(t *testing.T) {
	dir := t.TempDir()
	if err := SetupLogger(dir); err != nil {
		t.Fatalf("初始化日志失败: %v", err)
	}

	Info("测试消息 %d", 42)
	Warning("警告消息")

	data, err := os.ReadFile(logFilePath(dir, time.Now()))
	if err != nil {
		t.Fatalf("读取日志文件失败: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "INFO: ") || !strings.Contains(content, "测试消息 42") {
		t.Errorf("日志文件缺少INFO记录: %q", content)
	}
	if !strings.Contains(content, "WARNING: ") {
		t.Errorf("日志文件缺少WARNING记录: %q", content)
	}
}
