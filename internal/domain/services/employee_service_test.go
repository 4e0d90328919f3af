package services

import (
	"strings"
	"testing"
	"time"
)

// TestFallbackEmail 未填写邮箱的员工获得占位地址，
// 不同时间或不同尝试序号生成的地址互不相同，不会再撞唯一索引
func TestFallbackEmail(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	first := fallbackEmail(now, 0)
	if first == "" || !strings.HasSuffix(first, "@company.com") {
		t.Fatalf("占位地址格式不正确: %q", first)
	}

	// 同一毫秒内创建的两个员工靠尝试序号区分
	if second := fallbackEmail(now, 1); second == first {
		t.Errorf("同一时间不同尝试应生成不同地址: %q", second)
	}

	// 不同时间创建的员工靠时间戳区分
	if later := fallbackEmail(now.Add(time.Millisecond), 0); later == first {
		t.Errorf("不同时间应生成不同地址: %q", later)
	}
}
