package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	Logger  LoggerConfig
	Oracle  OracleConfig
	Ledger  LedgerConfig
	Scoring ScoringConfig
	Slides  SlidesConfig
	Redis   RedisConfig
	Audit   AuditConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LoggerConfig struct {
	Level string
	Env   string
}

// OracleConfig holds the connection settings for the grading/generation LLM.
// BaseURL points at any OpenAI-compatible endpoint (e.g. https://api.deepseek.com).
type OracleConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// LedgerConfig holds the faucet contract connection settings.
type LedgerConfig struct {
	RPCURL          string
	ContractAddress string
	AdminPrivateKey string
	ChainID         int64
	CallTimeout     time.Duration
	SubmitTimeout   time.Duration
}

// ScoringConfig is the weighting policy for score composition.
// ObjectiveWeight + SubjectiveWeight must sum to 1 when a free-response
// component is used; PassThreshold is the minimum passing final score.
type ScoringConfig struct {
	ObjectiveWeight  float64
	SubjectiveWeight float64
	PassThreshold    int
}

type SlidesConfig struct {
	Directory   string
	CurrentWeek int
}

type RedisConfig struct {
	Address        string
	Password       string
	DB             int
	QuizCacheTTL   time.Duration
	StatusCacheTTL time.Duration
}

type AuditConfig struct {
	SQLitePath string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../config")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.AutomaticEnv()

	viper.SetDefault("server.port", 8090)
	viper.SetDefault("server.read_timeout", 10)
	viper.SetDefault("server.write_timeout", 10)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.env", "development")
	viper.SetDefault("oracle.model", "deepseek-chat")
	viper.SetDefault("oracle.timeout", 30)
	viper.SetDefault("ledger.call_timeout", 10)
	viper.SetDefault("ledger.submit_timeout", 90)
	viper.SetDefault("scoring.objective_weight", 0.8)
	viper.SetDefault("scoring.subjective_weight", 0.2)
	viper.SetDefault("scoring.pass_threshold", 50)
	viper.SetDefault("slides.directory", "./course-materials")
	viper.SetDefault("slides.current_week", 1)
	viper.SetDefault("redis.quiz_cache_ttl", 3600)
	viper.SetDefault("redis.status_cache_ttl", 30)
	viper.SetDefault("audit.sqlite_path", "./quizfaucet.db")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  time.Duration(viper.GetInt("server.read_timeout")) * time.Second,
			WriteTimeout: time.Duration(viper.GetInt("server.write_timeout")) * time.Second,
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
		Oracle: OracleConfig{
			BaseURL: viper.GetString("oracle.base_url"),
			APIKey:  viper.GetString("oracle.api_key"),
			Model:   viper.GetString("oracle.model"),
			Timeout: time.Duration(viper.GetInt("oracle.timeout")) * time.Second,
		},
		Ledger: LedgerConfig{
			RPCURL:          viper.GetString("ledger.rpc_url"),
			ContractAddress: viper.GetString("ledger.contract_address"),
			AdminPrivateKey: viper.GetString("ledger.admin_private_key"),
			ChainID:         viper.GetInt64("ledger.chain_id"),
			CallTimeout:     time.Duration(viper.GetInt("ledger.call_timeout")) * time.Second,
			SubmitTimeout:   time.Duration(viper.GetInt("ledger.submit_timeout")) * time.Second,
		},
		Scoring: ScoringConfig{
			ObjectiveWeight:  viper.GetFloat64("scoring.objective_weight"),
			SubjectiveWeight: viper.GetFloat64("scoring.subjective_weight"),
			PassThreshold:    viper.GetInt("scoring.pass_threshold"),
		},
		Slides: SlidesConfig{
			Directory:   viper.GetString("slides.directory"),
			CurrentWeek: viper.GetInt("slides.current_week"),
		},
		Redis: RedisConfig{
			Address:        viper.GetString("redis.address"),
			Password:       viper.GetString("redis.password"),
			DB:             viper.GetInt("redis.db"),
			QuizCacheTTL:   time.Duration(viper.GetInt("redis.quiz_cache_ttl")) * time.Second,
			StatusCacheTTL: time.Duration(viper.GetInt("redis.status_cache_ttl")) * time.Second,
		},
		Audit: AuditConfig{
			SQLitePath: viper.GetString("audit.sqlite_path"),
		},
	}

	// Secrets and deployment endpoints are expected from the environment in
	// production; the config file only carries non-sensitive defaults.
	if key := os.Getenv("ORACLE_API_KEY"); key != "" {
		config.Oracle.APIKey = key
	}
	if baseURL := os.Getenv("ORACLE_BASE_URL"); baseURL != "" {
		config.Oracle.BaseURL = baseURL
	}
	if rpcURL := os.Getenv("LEDGER_RPC_URL"); rpcURL != "" {
		config.Ledger.RPCURL = rpcURL
	}
	if contract := os.Getenv("FAUCET_CONTRACT_ADDRESS"); contract != "" {
		config.Ledger.ContractAddress = contract
	}
	if adminKey := os.Getenv("ADMIN_PRIVATE_KEY"); adminKey != "" {
		config.Ledger.AdminPrivateKey = adminKey
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}

	if err := config.Scoring.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects weighting policies that cannot produce a 0-100 score.
func (s ScoringConfig) Validate() error {
	if s.ObjectiveWeight < 0 || s.SubjectiveWeight < 0 {
		return fmt.Errorf("scoring weights must be non-negative")
	}
	if diff := s.ObjectiveWeight + s.SubjectiveWeight - 1.0; diff > 1e-9 || diff < -1e-9 {
		return fmt.Errorf("scoring weights must sum to 1, got %.3f", s.ObjectiveWeight+s.SubjectiveWeight)
	}
	if s.PassThreshold < 0 || s.PassThreshold > 100 {
		return fmt.Errorf("pass threshold must be within [0,100], got %d", s.PassThreshold)
	}
	return nil
}
