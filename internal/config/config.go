package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppEnv        string `envconfig:"APP_ENV" default:"development"`
	AppPort       string `envconfig:"APP_PORT" default:"8080"`
	DBDriver      string `envconfig:"DB_DRIVER" default:"postgres"`
	DBDSN         string `envconfig:"DB_DSN" required:"true"`
	JWTSecret     string `envconfig:"JWT_SECRET" required:"true"`
	JWTExpiresMin int    `envconfig:"JWT_EXPIRES_MIN" default:"10080"`
	CookieSecure  bool   `envconfig:"COOKIE_SECURE" default:"false"`
	CORSOrigins   string `envconfig:"CORS_ORIGINS" default:"http://127.0.0.1:3000, http://localhost:3000"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`

	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"techkr.events"`

	GatewaySecret string `envconfig:"GATEWAY_SECRET" default:"techkr-sandbox"`

	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"local"`
	UploadDir     string `envconfig:"UPLOAD_DIR" default:"./uploads"`
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:8080"`
	S3Bucket      string `envconfig:"S3_BUCKET"`
	S3Region      string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Endpoint    string `envconfig:"S3_ENDPOINT"`
	S3Key         string `envconfig:"S3_KEY"`
	S3Secret      string `envconfig:"S3_SECRET"`
	S3URL         string `envconfig:"S3_URL"`

	GoogleClientID  string `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleSecret    string `envconfig:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirect  string `envconfig:"GOOGLE_REDIRECT_URL"`
	FrontendBaseURL string `envconfig:"FRONTEND_BASE_URL" default:"http://localhost:3000"`
}

// Load reads an optional .env file and decodes the environment into Config.
func Load() (Config, error) {
	_ = godotenv.Load()

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return c, err
	}
	if strings.TrimSpace(c.DBDSN) == "" {
		return c, errors.New("config: DB_DSN must not be empty")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return c, errors.New("config: JWT_SECRET must not be empty")
	}
	return c, nil
}

func (c Config) IsProduction() bool {
	switch strings.ToLower(c.AppEnv) {
	case "production", "prod":
		return true
	}
	return false
}
