package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the runtime configuration of the portal.
type Config struct {
	Port           string
	AppName        string
	AllowedOrigins string
	LogLevel       string

	StoreDriver       string
	MongoURI          string
	MongoDB           string
	StorePollInterval time.Duration

	RedisURI string

	JWTSecret string
	JWTTTL    time.Duration

	AdminUsername          string
	AdminPassword          string
	TeacherDefaultUsername string
	TeacherDefaultPassword string

	GeminiAPIKey   string
	GeminiModel    string
	GeminiEndpoint string
	AdviceCacheTTL time.Duration

	ChromePath string
}

func defaults(v *viper.Viper) {
	v.SetDefault("app_port", "8888")
	v.SetDefault("app_name", "Students Results")
	v.SetDefault("allowed_origins", "*")
	v.SetDefault("log_level", "info")

	v.SetDefault("store_driver", "mongo")
	v.SetDefault("mongo_db", "ResultsPortal")
	v.SetDefault("store_poll_interval", 5*time.Second)

	v.SetDefault("jwt_secret", "your_secret_key")
	v.SetDefault("jwt_ttl", 24*time.Hour)

	v.SetDefault("admin_username", "STAFF")
	v.SetDefault("admin_password", "@STAFF-001")
	v.SetDefault("teacher_default_username", "SHS-STAFF")
	v.SetDefault("teacher_default_password", "@TEACHER-SECURE-25")

	v.SetDefault("gemini_model", "gemini-2.5-flash-preview-09-2025")
	v.SetDefault("gemini_endpoint", "https://generativelanguage.googleapis.com/v1beta/models")
	v.SetDefault("advice_cache_ttl", 6*time.Hour)
}

// Load reads .env (when present) and the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Println("config: .env not loaded:", err)
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	defaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	defaults(v)
	return &Config{
		Port:           v.GetString("app_port"),
		AppName:        v.GetString("app_name"),
		AllowedOrigins: v.GetString("allowed_origins"),
		LogLevel:       v.GetString("log_level"),

		StoreDriver:       strings.ToLower(v.GetString("store_driver")),
		MongoURI:          v.GetString("mongo_uri"),
		MongoDB:           v.GetString("mongo_db"),
		StorePollInterval: v.GetDuration("store_poll_interval"),

		RedisURI: v.GetString("redis_uri"),

		JWTSecret: v.GetString("jwt_secret"),
		JWTTTL:    v.GetDuration("jwt_ttl"),

		AdminUsername:          v.GetString("admin_username"),
		AdminPassword:          v.GetString("admin_password"),
		TeacherDefaultUsername: v.GetString("teacher_default_username"),
		TeacherDefaultPassword: v.GetString("teacher_default_password"),

		GeminiAPIKey:   v.GetString("gemini_api_key"),
		GeminiModel:    v.GetString("gemini_model"),
		GeminiEndpoint: v.GetString("gemini_endpoint"),
		AdviceCacheTTL: v.GetDuration("advice_cache_ttl"),

		ChromePath: v.GetString("chrome_path"),
	}
}
