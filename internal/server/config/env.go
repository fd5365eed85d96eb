package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/procedurebuilder/internal/flagx"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// parseEnv overlays PB_* environment variables. Variables are first loaded
// from the dotenv file named by -env, or from ./.env when present; values
// already set in the process environment win over the file.
//
// A missing ./.env is fine; a missing file named explicitly by -env panics,
// like an unreadable JSON config does.
func parseEnv(config *Config, args []string) {
	envFile := flagx.EnvFileFlag(args)
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, "PB_HTTP_ADDR")
	setString(&config.EndpointAddrGRPC, "PB_GRPC_ADDR")
	setString(&config.DatabaseDSN, "PB_DATABASE_DSN")
	setString(&config.SecretKey, "PB_SECRET_KEY")
	setMinutes(&config.AccessTokenValidityDuration, "PB_ACCESS_TOKEN_MINUTES")
	setMinutes(&config.RefreshTokenValidityDuration, "PB_REFRESH_TOKEN_MINUTES")
	setString(&config.S3RootUser, "PB_S3_ROOT_USER")
	setString(&config.S3RootPassword, "PB_S3_ROOT_PASSWORD")
	setString(&config.S3Bucket, "PB_S3_BUCKET")
	setString(&config.S3Region, "PB_S3_REGION")
	setString(&config.S3BaseEndpoint, "PB_S3_BASE_ENDPOINT")
	setString(&config.FCMCredentialsFile, "PB_FCM_CREDENTIALS_FILE")
	setString(&config.FetchURLBase, "PB_FETCH_URL_BASE")
	setString(&config.PushMode, "PB_PUSH_MODE")
	setString(&config.RedisAddr, "PB_REDIS_ADDR")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setMinutes(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(err)
	}
	*dst = time.Duration(n) * time.Minute
}
