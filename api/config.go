package api

import (
	"crypto"
	"time"
)

type ServerConfig struct {
	// ID 是服務實例的識別字串，作為consumer group中的consumer名稱
	ID string

	OIDC  OIDCConfig
	DB    DBConfig
	Redis RedisConfig
	Auth  AuthConfig
}

type OIDCConfig struct {
	Providers map[string]OIDCProviderConfig
}

type OIDCProviderConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
}

type DBConfig struct {
	User     string
	Password string
	Host     string
	Port     int
	Database string
	Schema   string
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string

	ConsumerGroup string
	StreamKeys    RedisStreamKeys
}

type RedisStreamKeys struct {
	BidStream string
}

type AuthConfig struct {
	// PrivateKey 用於簽發和驗證JWT的Ed25519金鑰
	PrivateKey     crypto.Signer
	Issuer         string
	Audience       string
	ExpireDuration time.Duration
}
