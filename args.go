package main

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"wayx/api"
)

func ParseArgs() (Args, error) {
	// server config
	pflag.String("server-url", "0.0.0.0:8080", "")
	pflag.String("server-id", "wayx-0", "")

	// oidc config
	pflag.String("oidc-provider-name", "google", "")
	pflag.String("oidc-issuer-url", "", "")
	pflag.String("oidc-client-id", "", "")
	pflag.String("oidc-client-secret", "", "")

	// db config
	pflag.String("db-user", "", "")
	pflag.String("db-password", "", "")
	pflag.String("db-host", "", "")
	pflag.Int("db-port", 5432, "")
	pflag.String("db-database", "", "")
	pflag.String("db-schema", "", "")

	// redis config
	pflag.String("redis-addr", "", "")
	pflag.String("redis-password", "", "")
	pflag.Int("redis-db", 15, "")
	pflag.String("redis-key-prefix", "wayx:", "")
	pflag.String("redis-consumer-group", "wayx-bid-notification", "")

	// redis stream keys
	pflag.String("redis-stream-key-for-bids", "wayx-shared-bid-stream", "")

	// auth config
	pflag.String("auth-private-key-seed", "", "base64 encoded ed25519 seed")
	pflag.String("auth-issuer", "wayx", "")
	pflag.String("auth-audience", "wayx", "")
	pflag.Duration("auth-expire-duration", 3*time.Hour, "")

	// bind pflag to viper
	pflag.Parse()
	viper.BindPFlags(pflag.CommandLine)
	viper.AutomaticEnv()
	viper.SetEnvPrefix("WAYX")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// 解析簽章金鑰
	seed, err := base64.StdEncoding.DecodeString(viper.GetString("auth-private-key-seed"))
	if err != nil {
		return Args{}, fmt.Errorf("invalid auth-private-key-seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return Args{}, fmt.Errorf("auth-private-key-seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	// 組裝OIDC提供者
	providers := map[string]api.OIDCProviderConfig{}
	if viper.GetString("oidc-issuer-url") != "" {
		providers[viper.GetString("oidc-provider-name")] = api.OIDCProviderConfig{
			IssuerURL:    viper.GetString("oidc-issuer-url"),
			ClientID:     viper.GetString("oidc-client-id"),
			ClientSecret: viper.GetString("oidc-client-secret"),
		}
	}

	// initial arguments
	return Args{
		ServerURL: viper.GetString("server-url"),
		ServerConfig: api.ServerConfig{
			ID: viper.GetString("server-id"),
			OIDC: api.OIDCConfig{
				Providers: providers,
			},
			DB: api.DBConfig{
				User:     viper.GetString("db-user"),
				Password: viper.GetString("db-password"),
				Host:     viper.GetString("db-host"),
				Port:     viper.GetInt("db-port"),
				Database: viper.GetString("db-database"),
				Schema:   viper.GetString("db-schema"),
			},
			Redis: api.RedisConfig{
				Addr:          viper.GetString("redis-addr"),
				Password:      viper.GetString("redis-password"),
				DB:            viper.GetInt("redis-db"),
				KeyPrefix:     viper.GetString("redis-key-prefix"),
				ConsumerGroup: viper.GetString("redis-consumer-group"),
				StreamKeys: api.RedisStreamKeys{
					BidStream: viper.GetString("redis-stream-key-for-bids"),
				},
			},
			Auth: api.AuthConfig{
				PrivateKey:     ed25519.NewKeyFromSeed(seed),
				Issuer:         viper.GetString("auth-issuer"),
				Audience:       viper.GetString("auth-audience"),
				ExpireDuration: viper.GetDuration("auth-expire-duration"),
			},
		},
	}, nil
}

type Args struct {
	ServerURL    string
	ServerConfig api.ServerConfig
}

func (args Args) Validate() bool {
	return args.ServerURL != "" &&
		len(args.ServerConfig.OIDC.Providers) > 0 &&
		args.ServerConfig.DB.Host != "" &&
		args.ServerConfig.Redis.Addr != ""
}
