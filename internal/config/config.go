package config

import "os"

// Config carries all env-driven settings.
type Config struct {
	MongoURI       string
	MongoDatabase  string
	RedisAddr      string
	AMQPURL        string
	EventExchange  string
	HTTPPort       string
	CatalogDir     string
	SubmitURL      string
	TelemetryURL   string
	JWTSecret      string
	MemberPassword string
	AdminToken     string
}

// Load reads the configuration from the environment with defaults. The
// default submit URL points back at the portal's own intake endpoint.
func Load() *Config {
	port := getEnv("PORT", "8080")
	return &Config{
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:  getEnv("MONGO_DB", "memberportal"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		AMQPURL:        getEnv("AMQP_URL", ""),
		EventExchange:  getEnv("EVENT_EXCHANGE", "memberportal.events"),
		HTTPPort:       port,
		CatalogDir:     getEnv("CATALOG_DIR", "catalogs"),
		SubmitURL:      getEnv("SUBMIT_URL", "http://localhost:"+port+"/v1/submissions"),
		TelemetryURL:   getEnv("TELEMETRY_URL", ""),
		JWTSecret:      getEnv("JWT_SECRET", "super-secret-key-change-in-production"),
		MemberPassword: getEnv("MEMBER_PASSWORD", "password123"),
		AdminToken:     getEnv("ADMIN_TOKEN", "admin-token-change-in-production"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
