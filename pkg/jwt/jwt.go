package jwt

import (
	"errors"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/Markishime/smart-ecolock-sub003/config"
)

var (
	ErrTokenExpired = errors.New("token 已过期")
	ErrTokenInvalid = errors.New("token 无效")
)

// Claims 外部认证系统签发的 JWT 声明
// 本服务只消费 operator_id / role 两个字段，用于手动补签的 submitted_by 归属
type Claims struct {
	OperatorID string `json:"operator_id"`
	Role       string `json:"role"`
	jwtv5.RegisteredClaims
}

// Verifier JWT 验签器
// Token 的签发与刷新由外部认证服务负责，这里只做 HS256 验签
type Verifier struct {
	secret []byte
}

// NewVerifier 创建 JWT 验签器
func NewVerifier(cfg *config.AuthConfig) *Verifier {
	return &Verifier{secret: []byte(cfg.JWTSecret)}
}

// ParseToken 解析并验证 Token
func (v *Verifier) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return v.secret, nil
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
	if claims.OperatorID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
