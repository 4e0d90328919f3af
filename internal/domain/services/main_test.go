package services

import (
	"os"
	"path/filepath"
	"testing"

	"attendance-http-service/pkg/logger"
)

// TestMain 初始化日志记录器，避免被测服务调用 logger 时出现空指针
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "attendance-test-logs")
	if err != nil {
		panic(err)
	}
	if err := logger.SetupLogger(filepath.Join(dir, "logs")); err != nil {
		panic(err)
	}
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}
