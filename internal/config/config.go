package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	pkgcfg "github.com/Skotchmaster/modern_shop/pkg/config"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseURL string

	CORSAllowOrigins []string
	StaticDir        string
	TemplatesDir     string

	JWTSecret []byte
	JWTTTL    time.Duration

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string
}

// Load reads the process environment, optionally seeded from a .env file.
// A missing DATABASE_URL is the only fatal condition.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	if err := godotenv.Load(envFiles...); err != nil {
		log.Printf("notice: .env file not loaded: %v. Using system environment variables", err)
	}

	cfg := &Config{
		ServiceName: pkgcfg.EnvDefault("SERVICE_NAME", "modern_shop"),
		ServerPort:  pkgcfg.EnvIntDefault("SERVER_PORT", 8000),
		LogLevel:    pkgcfg.EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		CORSAllowOrigins: pkgcfg.CSV(pkgcfg.EnvDefault("CORS_ALLOW_ORIGINS", "*")),
		StaticDir:        pkgcfg.EnvDefault("STATIC_DIR", "static"),
		TemplatesDir:     pkgcfg.EnvDefault("TEMPLATES_DIR", "templates"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),
		JWTTTL:    pkgcfg.EnvDurationDefault("JWT_TTL", 15*time.Minute),

		KafkaBrokers: pkgcfg.CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    pkgcfg.EnvDefault("ES_INDEX", "products"),
	}

	if err := pkgcfg.RequireNonEmpty(cfg.DatabaseURL, "DATABASE_URL"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// PermissiveCORS reports whether any origin is allowed. Unsafe outside development.
func (c *Config) PermissiveCORS() bool {
	for _, o := range c.CORSAllowOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}
