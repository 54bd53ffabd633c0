package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int
	Database   DatabaseConfig
	JWT        JWTConfig
	Auth       AuthConfig
	Storage    StorageConfig
	MQ         MQConfig
	CORS       CORSConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

// JWTConfig configures the token codec. Secret has no default on purpose:
// the server refuses to start without one.
type JWTConfig struct {
	Secret     string
	Issuer     string
	Audience   string
	TTLMinutes int
}

// AuthConfig holds the password policy and the role granted to new
// registrants.
type AuthConfig struct {
	DefaultRole           string
	PasswordMinLength     int
	PasswordRequireDigit  bool
	PasswordRequireLower  bool
	PasswordRequireUpper  bool
	PasswordRequireSymbol bool
}

type StorageConfig struct {
	// Backend selects the object storage implementation: "minio" or "gcs".
	// Empty disables image uploads; trips fall back to the default image.
	Backend      string
	PublicPrefix string
	DefaultImage string
	Minio        MinioConfig
	GCS          GCSConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	ProjectID       string
	Bucket          string
	CredentialsFile string
}

type MQConfig struct {
	// Backend selects the broker: "rabbitmq" or "pubsub". Empty disables
	// booking event publishing.
	Backend  string
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
}

type RabbitMQConfig struct {
	URL          string
	QueueDurable bool
}

type PubSubConfig struct {
	ProjectID       string
	CredentialsFile string
}

type CORSConfig struct {
	AllowedOrigins []string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "wanderbook"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "wanderbook_db"),
		UseSSL:   getEnvBool("DB_USE_SSL", false),
	}

	jwtConfig := JWTConfig{
		Secret:     getEnv("JWT_SECRET", ""),
		Issuer:     getEnv("JWT_ISSUER", "wanderbook"),
		Audience:   getEnv("JWT_AUDIENCE", "wanderbook-clients"),
		TTLMinutes: getEnvInt("JWT_TTL_MINUTES", 60),
	}

	authConfig := AuthConfig{
		DefaultRole:           getEnv("AUTH_DEFAULT_ROLE", "user"),
		PasswordMinLength:     getEnvInt("PASSWORD_MIN_LENGTH", 8),
		PasswordRequireDigit:  getEnvBool("PASSWORD_REQUIRE_DIGIT", true),
		PasswordRequireLower:  getEnvBool("PASSWORD_REQUIRE_LOWERCASE", true),
		PasswordRequireUpper:  getEnvBool("PASSWORD_REQUIRE_UPPERCASE", true),
		PasswordRequireSymbol: getEnvBool("PASSWORD_REQUIRE_SYMBOL", false),
	}

	storageConfig := StorageConfig{
		Backend:      getEnv("STORAGE_BACKEND", ""),
		PublicPrefix: getEnv("UPLOADS_PUBLIC_PREFIX", "/uploads"),
		DefaultImage: getEnv("UPLOADS_DEFAULT_IMAGE", "/uploads/default_image.jpg"),
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "trip-images"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		GCS: GCSConfig{
			ProjectID:       getEnv("GCS_PROJECT_ID", ""),
			Bucket:          getEnv("GCS_BUCKET", ""),
			CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		},
	}

	mqConfig := MQConfig{
		Backend: getEnv("MQ_BACKEND", ""),
		RabbitMQ: RabbitMQConfig{
			URL:          getEnv("RABBITMQ_URL", ""),
			QueueDurable: getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
		},
		PubSub: PubSubConfig{
			ProjectID:       getEnv("PUBSUB_PROJECT_ID", ""),
			CredentialsFile: getEnv("PUBSUB_CREDENTIALS_FILE", ""),
		},
	}

	corsConfig := CORSConfig{
		AllowedOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
	}

	return Config{
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		Database:   dbConfig,
		JWT:        jwtConfig,
		Auth:       authConfig,
		Storage:    storageConfig,
		MQ:         mqConfig,
		CORS:       corsConfig,
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(valueStr)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvList(key string, defaultValue []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(valueStr) == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
