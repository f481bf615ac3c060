package oidc

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

// ExchangeVerifier 在callback階段核對login時暫存的state與nonce，
// 並驗證交換回來的ID token簽章
type ExchangeVerifier struct {
	idTokenVerifier *oidc.IDTokenVerifier
	reqState        string
	reqNonce        string
}

// VerifyIDToken 驗證ID token的簽章與有效期
func (v *ExchangeVerifier) VerifyIDToken(ctx context.Context, rawIDToken string) (*oidc.IDToken, error) {
	const op = "VerifyIDToken"
	idToken, err := v.idTokenVerifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("[%s] err=%w", op, err)
	}
	return idToken, nil
}

// VerifyState 核對callback帶回的state
func (v *ExchangeVerifier) VerifyState(state string) bool {
	return subtle.ConstantTimeCompare([]byte(state), []byte(v.reqState)) == 1
}

// VerifyNonce 核對ID token中的nonce
func (v *ExchangeVerifier) VerifyNonce(nonce string) bool {
	return subtle.ConstantTimeCompare([]byte(nonce), []byte(v.reqNonce)) == 1
}
