package api

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"wayx/adapters/oidc"
	"wayx/marketplace"
	"wayx/models"
)

// Obtain authentication url
// (GET /auth/sso/:provider/login)
func (impl *ServerImpl) GetSSOLogin(c *gin.Context) {
	const op = "GetSSOLogin"
	// 取得provider
	provider, ok := impl.oidcProviders[c.Param("provider")]
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	state, err := generateID("st")
	if err != nil {
		abortWithDomainError(c, op, fmt.Errorf("[%s] Unable to generate state, err=%w", op, err))
		return
	}
	nonce, err := generateID("n")
	if err != nil {
		abortWithDomainError(c, op, fmt.Errorf("[%s] Unable to generate nonce, err=%w", op, err))
		return
	}
	redirectURL := c.Query("redirect_url")
	// 暫存本次登入的驗證參數，callback時比對
	err = impl.loginStore.Save(c.Request.Context(), state, map[string]string{
		"nonce":        nonce,
		"redirect_url": redirectURL,
	})
	if err != nil {
		abortWithDomainError(c, op, fmt.Errorf("[%s] Fail to save login state, err=%w", op, err))
		return
	}
	// 重導向到 sso server 的登入頁面
	c.Redirect(http.StatusFound, provider.AuthURL(state, nonce, redirectURL, []string{"email", "openid", "profile"}))
}

// Exchange authorization code
// (GET /auth/sso/:provider/callback)
func (impl *ServerImpl) GetSSOCallback(c *gin.Context) {
	const op = "GetSSOCallback"
	// 取得provider
	providerName := c.Param("provider")
	provider, ok := impl.oidcProviders[providerName]
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	// 驗證 callback 的參數和login時暫存的參數是否相同
	state := c.Query("state")
	stored, err := impl.loginStore.Load(c.Request.Context(), state)
	if err != nil {
		abortWithDomainError(c, op, fmt.Errorf("[%s] Fail to load login state, err=%w", op, err))
		return
	}
	nonce, hasNonce := stored["nonce"]
	if !hasNonce {
		c.JSON(http.StatusBadRequest, errorResponse{Message: "unknown or expired login state"})
		return
	}
	verifier := provider.NewExchangeVerifier(state, nonce)
	// 向驗證伺服器交換token
	token, err := provider.Exchange(c.Request.Context(), verifier, c.Query("code"), state, stored["redirect_url"])
	if errors.Is(err, oidc.ErrStateMismatch) || errors.Is(err, oidc.ErrNonceMismatch) {
		c.Status(http.StatusBadRequest)
		return
	}
	if err != nil {
		abortWithDomainError(c, op, fmt.Errorf("[%s] Fail to exchange token, err=%w", op, err))
		return
	}
	// 登入參數是一次性的，用過即刪
	if err := impl.loginStore.Delete(c.Request.Context(), state); err != nil {
		slog.Warn("Fail to delete login state", slog.String("op", op), slog.Any("error", err))
	}
	// 關聯使用者資料(用於關聯使用者操作)
	// 如果 identity 不存在，會建立新的使用者
	user, err := impl.market.FindOrCreateUser(c.Request.Context(), marketplace.SSOIdentity{
		Provider: providerName,
		Subject:  token.IDToken.Sub,
		Name:     token.IDToken.Name,
		Email:    token.IDToken.Email,
	})
	if err != nil {
		abortWithDomainError(c, op, err)
		return
	}
	// 簽發平台token
	signed, err := impl.signToken(user)
	if err != nil {
		abortWithDomainError(c, op, err)
		return
	}
	claims, err := ParseAndValidateJWT(signed, impl.config.Auth.PrivateKey)
	if err != nil {
		abortWithDomainError(c, op, fmt.Errorf("[%s] Fail to parse freshly signed token, err=%w", op, err))
		return
	}
	// 記錄SSO的access token，登出時撤銷
	err = impl.tokenStore.Save(c.Request.Context(), claims.ID, map[string]string{
		"provider":  providerName,
		"sso_token": token.OAuth2Token.AccessToken,
	})
	if err != nil {
		slog.Warn("Fail to save sso token", slog.String("op", op), slog.Any("error", err))
	}

	maxAge := int(impl.config.Auth.ExpireDuration.Seconds())
	c.SetCookie(accessTokenCookie, signed, maxAge, "/", "", true, true)
	c.SetCookie("username", base64.StdEncoding.EncodeToString([]byte(user.Username)), maxAge, "/", "", true, false)
	if redirectURL := stored["redirect_url"]; redirectURL != "" {
		c.Redirect(http.StatusFound, redirectURL)
		return
	}
	c.Status(http.StatusOK)
}

// Revoke authentication token
// (GET /auth/logout)
func (impl *ServerImpl) GetLogout(c *gin.Context) {
	const op = "GetLogout"
	// 撤銷登入時記錄的SSO token
	if claims := impl.authenticate(c); claims != nil {
		stored, err := impl.tokenStore.Load(c.Request.Context(), claims.ID)
		if err != nil {
			slog.Warn("Fail to load sso token", slog.String("op", op), slog.Any("error", err))
		}
		if provider, ok := impl.oidcProviders[stored["provider"]]; ok && stored["sso_token"] != "" {
			if err := provider.Revoke(stored["sso_token"]); err != nil {
				slog.Warn("Fail to revoke sso token", slog.String("op", op), slog.Any("error", err))
			}
		}
		if err := impl.tokenStore.Delete(c.Request.Context(), claims.ID); err != nil {
			slog.Warn("Fail to delete sso token", slog.String("op", op), slog.Any("error", err))
		}
	}
	// 清除cookie
	c.SetCookie(accessTokenCookie, "", -1, "/", "", true, true)
	c.SetCookie("username", "", -1, "/", "", true, false)
	c.Status(http.StatusOK)
}

// Get user information
// (GET /user/info)
func (impl *ServerImpl) GetUserInfo(c *gin.Context) {
	const op = "GetUserInfo"
	_, actorID, ok := impl.requireAuth(c)
	if !ok {
		return
	}
	user, err := impl.market.GetUser(c.Request.Context(), actorID)
	if err != nil {
		abortWithDomainError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	})
}

type setRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// Update a user's role
// (PATCH /api/users/:userID/role)
func (impl *ServerImpl) PatchUserRole(c *gin.Context) {
	const op = "PatchUserRole"
	_, actorID, ok := impl.requireAuth(c)
	if !ok {
		return
	}
	userID, ok := parseUUIDParam(c, "userID")
	if !ok {
		return
	}
	var body setRoleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
		return
	}
	if err := impl.market.SetUserRole(c.Request.Context(), actorID, userID, models.UserRole(body.Role)); err != nil {
		abortWithDomainError(c, op, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func generateID(prefix string) (string, error) {
	const op = "generateID"
	bytes := make([]byte, 20)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("[%s] Fail to generate unique id, err=%w", op, err)
	}
	return prefix + "_" + base64.URLEncoding.EncodeToString(bytes), nil
}
