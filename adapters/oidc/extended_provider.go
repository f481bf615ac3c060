package oidc

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
)

// ExtendedProvider 在標準OIDC Provider之上補了RFC 7009的token撤銷
// 登出時用來撤銷登入期間記錄的SSO access token
type ExtendedProvider struct {
	*Provider
	Extra ExtraData
}

// ExtraData 是discovery文件中標準庫不解析的額外端點
type ExtraData struct {
	RevocationEndpoint string `json:"revocation_endpoint"`
}

func NewExtendedProvider(issuerURL, clientID, clientSecret string) (*ExtendedProvider, error) {
	const op = "NewExtendedProvider"
	provider, err := NewProvider(issuerURL, clientID, clientSecret)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create extended provider, err=%w", op, err)
	}
	var extra ExtraData
	if err := provider.Claims(&extra); err != nil {
		return nil, fmt.Errorf("[%s] Fail to claim extra data, err=%w", op, err)
	}
	return &ExtendedProvider{
		Provider: provider,
		Extra:    extra,
	}, nil
}

// Revoke 向撤銷端點作廢一個SSO token
func (p *ExtendedProvider) Revoke(token string) error {
	const op = "Revoke"
	form := url.Values{}
	form.Set("token", token)
	body := bytes.NewBufferString(form.Encode())

	req, err := http.NewRequest("POST", p.Extra.RevocationEndpoint, body)
	if err != nil {
		return fmt.Errorf("[%s] Fail to create revocation request, err=%w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if _, err := p.SendClientAuthRequest(req); err != nil {
		return fmt.Errorf("[%s] err=%w", op, err)
	}

	return nil
}
