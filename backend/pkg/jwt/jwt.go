package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"shiftcare/backend/config"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

const tokenTypeAccess = "access"

// Claims 携带操作员工及其组织
type Claims struct {
	StaffID        string `json:"staff_id"`
	OrganizationID string `json:"organization_id"`
	Role           string `json:"role"`
	TokenType      string `json:"token_type"`
	jwtv5.RegisteredClaims
}

// Manager 签发并校验 HS256 令牌
type Manager struct {
	secret         []byte
	issuer         string
	accessTokenTTL time.Duration
}

// NewManager 创建令牌管理器
func NewManager(cfg *config.AuthConfig) *Manager {
	return &Manager{
		secret:         []byte(cfg.JWTSecret),
		issuer:         cfg.Issuer,
		accessTokenTTL: cfg.AccessTokenTTL,
	}
}

// GenerateAccessToken 签发访问令牌；生产令牌由身份服务签发，此处供 shiftctl 与测试使用
func (m *Manager) GenerateAccessToken(staffID, organizationID, role string) (string, error) {
	return m.GenerateAccessTokenWithTTL(staffID, organizationID, role, m.accessTokenTTL)
}

// GenerateAccessTokenWithTTL 按指定有效期签发访问令牌
func (m *Manager) GenerateAccessTokenWithTTL(staffID, organizationID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		StaffID:        staffID,
		OrganizationID: organizationID,
		Role:           role,
		TokenType:      tokenTypeAccess,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   staffID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(ttl)),
			Issuer:    m.issuer,
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken 校验签名、过期时间与令牌类型
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.TokenType != tokenTypeAccess || claims.StaffID == "" || claims.OrganizationID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
