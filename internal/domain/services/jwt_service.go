package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"attendance-http-service/internal/domain/models"
	"attendance-http-service/internal/infrastructure/config"
)

// 认证相关的哨兵错误
var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrAccountDisabled    = errors.New("账号已停用")
	ErrInvalidToken       = errors.New("无效的令牌")
)

// JWTClaims 自定义JWT声明
type JWTClaims struct {
	AdminID  uint   `json:"admin_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// InterfaceJWTService 定义JWT服务接口
type InterfaceJWTService interface {
	Login(username, password string) (string, *models.Admin, error)
	GenerateToken(admin *models.Admin) (string, error)
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTService 提供管理员认证和令牌服务
type JWTService struct {
	DB        *gorm.DB
	SecretKey []byte
}

// NewJWTService 创建一个新的JWT服务
func NewJWTService(db *gorm.DB, cfg *config.Config) InterfaceJWTService {
	return &JWTService{
		DB:        db,
		SecretKey: []byte(cfg.JWTSecretKey),
	}
}

// 1 Login 校验管理员凭据并签发令牌
func (s *JWTService) Login(username, password string) (string, *models.Admin, error) {
	var admin models.Admin
	if err := s.DB.Where("username = ?", username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if admin.Status != "active" {
		return "", nil, ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.GenerateToken(&admin)
	if err != nil {
		return "", nil, err
	}
	return token, &admin, nil
}

// 2 GenerateToken 生成有效期24小时的HS256令牌
func (s *JWTService) GenerateToken(admin *models.Admin) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		AdminID:  admin.ID,
		Username: admin.Username,
		Role:     admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.SecretKey)
}

// 3 ValidateToken 解析并校验令牌
func (s *JWTService) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.SecretKey, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
