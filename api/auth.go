package api

import (
	"crypto"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"wayx/models"
)

const accessTokenCookie = "access_token"

// JWT 是平台簽發的存取憑證內容
type JWT struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// ParseAndValidateJWT 驗證token簽章與有效期限，返回憑證內容
func ParseAndValidateJWT(tokenString string, secret crypto.Signer) (*JWT, error) {
	const op = "ParseJWT"
	token, err := jwt.ParseWithClaims(tokenString, &JWT{}, func(token *jwt.Token) (interface{}, error) {
		return secret.Public(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%s: token is invalid", op)
	}
	claims, ok := token.Claims.(*JWT)
	if !ok {
		return nil, fmt.Errorf("%s: token claims are invalid", op)
	}
	return claims, nil
}

// signToken 為使用者簽發新的存取憑證
func (impl *ServerImpl) signToken(user *models.User) (string, error) {
	const op = "signToken"
	now := time.Now()
	token := jwt.NewWithClaims(&jwt.SigningMethodEd25519{}, JWT{
		Username: user.Username,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(impl.config.Auth.ExpireDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    impl.config.Auth.Issuer,
			Subject:   user.ID.String(),
			ID:        uuid.NewString(),
			Audience:  []string{impl.config.Auth.Audience},
		},
	})
	signed, err := token.SignedString(impl.config.Auth.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("[%s] Fail to sign JWT, err=%w", op, err)
	}
	return signed, nil
}

// authenticate 從cookie或Authorization標頭取出並驗證存取憑證
// 驗證失敗時回傳nil，由呼叫端決定要回應401還是放行
func (impl *ServerImpl) authenticate(c *gin.Context) *JWT {
	tokenString, err := c.Cookie(accessTokenCookie)
	if err != nil || tokenString == "" {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return nil
		}
		tokenString = strings.TrimPrefix(header, "Bearer ")
	}
	claims, err := ParseAndValidateJWT(tokenString, impl.config.Auth.PrivateKey)
	if err != nil {
		return nil
	}
	return claims
}

// actorID 解析憑證中的使用者ID
func (claims *JWT) actorID() (uuid.UUID, error) {
	return uuid.Parse(claims.Subject)
}
