package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"attendance-http-service/internal/infrastructure/config"
	"attendance-http-service/pkg/logger"
)

// 今日考勤缓存键，打卡写入后失效
const todayAttendanceCacheKey = "attendance:today"

// InterfaceRedisService 定义Redis缓存服务接口
type InterfaceRedisService interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Delete(ctx context.Context, keys ...string) error
	CacheTodayAttendance(ctx context.Context, value interface{}) error
	GetTodayAttendance(ctx context.Context, dest interface{}) (bool, error)
	InvalidateTodayAttendance(ctx context.Context)
	Close() error
}

// RedisService 提供Redis缓存服务
type RedisService struct {
	client *redis.Client
}

// NewRedisService 创建一个新的Redis服务
func NewRedisService(cfg *config.Config) (InterfaceRedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.GetRedisAddr(),
		DB:   cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisService{client: client}, nil
}

// 1 Set 序列化并写入缓存
func (s *RedisService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, expiration).Err()
}

// 2 Get 读取并反序列化缓存，未命中返回 (false, nil)
func (s *RedisService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

// 3 Delete 删除缓存键
func (s *RedisService) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// 4 CacheTodayAttendance 缓存今日考勤列表。
// 过期时间取短值，缓存只是挡住看板的轮询，不追求强一致
func (s *RedisService) CacheTodayAttendance(ctx context.Context, value interface{}) error {
	return s.Set(ctx, todayAttendanceCacheKey, value, 30*time.Second)
}

// 5 GetTodayAttendance 读取今日考勤缓存
func (s *RedisService) GetTodayAttendance(ctx context.Context, dest interface{}) (bool, error) {
	return s.Get(ctx, todayAttendanceCacheKey, dest)
}

// 6 InvalidateTodayAttendance 打卡落库后清掉今日缓存
func (s *RedisService) InvalidateTodayAttendance(ctx context.Context) {
	if err := s.Delete(ctx, todayAttendanceCacheKey); err != nil {
		logger.Warning("清除今日考勤缓存失败: %v", err)
	}
}

// Close 关闭Redis连接
func (s *RedisService) Close() error {
	return s.client.Close()
}
