package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	EnableDBCheck     bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// Redis (distributed document locks)
	RedisURL string

	// Approval routing defaults
	AutoApproveLimit    decimal.Decimal
	ManagerApproveLimit decimal.Decimal

	// Extraction
	ConfidenceThreshold int
	GoogleProjectID     string `mapstructure:"GOOGLE_PROJECT_ID"`
	GoogleLocation      string `mapstructure:"GOOGLE_LOCATION"`
	GoogleProcessorID   string `mapstructure:"GOOGLE_PROCESSOR_ID"`

	// ERP sync
	ERPBaseURL      string
	ERPTimeout      time.Duration
	ERPRetryBudget  int
	ERPRetryBackoff time.Duration

	// Actor recorded on system-generated audit entries
	SystemUserID string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "ap-console-app")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("AUTO_APPROVE_LIMIT", "500")
	viper.SetDefault("MANAGER_APPROVE_LIMIT", "5000")
	viper.SetDefault("CONFIDENCE_THRESHOLD", 85)
	viper.SetDefault("GOOGLE_PROJECT_ID", "")
	viper.SetDefault("GOOGLE_LOCATION", "us")
	viper.SetDefault("GOOGLE_PROCESSOR_ID", "")
	viper.SetDefault("ERP_BASE_URL", "")
	viper.SetDefault("ERP_TIMEOUT", "10s")
	viper.SetDefault("ERP_RETRY_BUDGET", 3)
	viper.SetDefault("ERP_RETRY_BACKOFF", "2s")
	viper.SetDefault("SYSTEM_USER_ID", "system")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	jwtSecret := viper.GetString("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour * 1
		if jwtExpiryStr != "" {
			log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
		}
	}

	jwtIssuer := viper.GetString("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "ap-console-app"
		log.Printf("Warning: JWT_ISSUER not set. Defaulting to %s.\n", jwtIssuer)
	}

	autoApproveLimit, err := decimal.NewFromString(viper.GetString("AUTO_APPROVE_LIMIT"))
	if err != nil {
		autoApproveLimit = decimal.NewFromInt(500)
		log.Printf("Warning: Invalid value for AUTO_APPROVE_LIMIT. Defaulting to %s.\n", autoApproveLimit.String())
	}

	managerApproveLimit, err := decimal.NewFromString(viper.GetString("MANAGER_APPROVE_LIMIT"))
	if err != nil {
		managerApproveLimit = decimal.NewFromInt(5000)
		log.Printf("Warning: Invalid value for MANAGER_APPROVE_LIMIT. Defaulting to %s.\n", managerApproveLimit.String())
	}

	erpTimeoutStr := viper.GetString("ERP_TIMEOUT")
	erpTimeout, err := time.ParseDuration(erpTimeoutStr)
	if err != nil {
		erpTimeout = 10 * time.Second
		if erpTimeoutStr != "" {
			log.Printf("Warning: Invalid value for ERP_TIMEOUT ('%s'). Defaulting to %s.\n", erpTimeoutStr, erpTimeout.String())
		}
	}

	erpBackoffStr := viper.GetString("ERP_RETRY_BACKOFF")
	erpBackoff, err := time.ParseDuration(erpBackoffStr)
	if err != nil {
		erpBackoff = 2 * time.Second
		if erpBackoffStr != "" {
			log.Printf("Warning: Invalid value for ERP_RETRY_BACKOFF ('%s'). Defaulting to %s.\n", erpBackoffStr, erpBackoff.String())
		}
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.JWTSecret = jwtSecret
	cfg.JWTExpiryDuration = jwtExpiryDuration
	cfg.JWTIssuer = jwtIssuer
	cfg.RedisURL = viper.GetString("REDIS_URL")
	cfg.AutoApproveLimit = autoApproveLimit
	cfg.ManagerApproveLimit = managerApproveLimit
	cfg.ConfidenceThreshold = viper.GetInt("CONFIDENCE_THRESHOLD")
	cfg.GoogleProjectID = viper.GetString("GOOGLE_PROJECT_ID")
	cfg.GoogleLocation = viper.GetString("GOOGLE_LOCATION")
	cfg.GoogleProcessorID = viper.GetString("GOOGLE_PROCESSOR_ID")
	cfg.ERPBaseURL = viper.GetString("ERP_BASE_URL")
	cfg.ERPTimeout = erpTimeout
	cfg.ERPRetryBudget = viper.GetInt("ERP_RETRY_BUDGET")
	cfg.ERPRetryBackoff = erpBackoff
	cfg.SystemUserID = viper.GetString("SYSTEM_USER_ID")

	if cfg.GoogleProjectID == "" {
		log.Println("Warning: GOOGLE_PROJECT_ID not set. Document extraction will not function.")
	}
	if cfg.GoogleProcessorID == "" {
		log.Println("Warning: GOOGLE_PROCESSOR_ID not set. Document extraction will not function.")
	}
	if cfg.ERPBaseURL == "" {
		log.Println("Warning: ERP_BASE_URL not set. ERP posting will not function.")
	}

	return cfg, nil
}
