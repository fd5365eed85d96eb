package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/procedurebuilder/internal/flagx"
	"github.com/dmitrijs2005/procedurebuilder/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations accept
// both "15m" style strings and integer nanoseconds. Fields left out of the
// file keep their previous values.
type JsonConfig struct {
	EndpointAddrHTTP             *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC             *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	SecretKey                    *string         `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	S3RootUser                   *string         `json:"s3_root_user"`
	S3RootPassword               *string         `json:"s3_root_password"`
	S3Bucket                     *string         `json:"s3_bucket"`
	S3Region                     *string         `json:"s3_region"`
	S3BaseEndpoint               *string         `json:"s3_base_endpoint"`
	FCMCredentialsFile           *string         `json:"fcm_credentials_file"`
	FetchURLBase                 *string         `json:"fetch_url_base"`
	PushMode                     *string         `json:"push_mode"`
	RedisAddr                    *string         `json:"redis_addr"`
}

// parseJson loads the file named by -c/-config, if any, and copies the
// fields it sets into config. Unreadable or invalid files panic.
func parseJson(config *Config, args []string) {
	jsonConfigFile := flagx.ConfigFileFlag(args)
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	copyString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	copyString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	copyString(&config.DatabaseDSN, c.DatabaseDSN)
	copyString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	copyString(&config.S3RootUser, c.S3RootUser)
	copyString(&config.S3RootPassword, c.S3RootPassword)
	copyString(&config.S3Bucket, c.S3Bucket)
	copyString(&config.S3Region, c.S3Region)
	copyString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	copyString(&config.FCMCredentialsFile, c.FCMCredentialsFile)
	copyString(&config.FetchURLBase, c.FetchURLBase)
	copyString(&config.PushMode, c.PushMode)
	copyString(&config.RedisAddr, c.RedisAddr)
}

func copyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
