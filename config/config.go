package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode   string `mapstructure:"mode"`
	Dotenv string `mapstructure:"dotenv"`
	Server struct {
		HTTPPort     string        `mapstructure:"HTTPPort"`
		Timeout      time.Duration `mapstructure:"HTTPTimeout"`
		ReadTimeout  time.Duration `mapstructure:"readTimeout"`
		WriteTimeout time.Duration `mapstructure:"writeTimeout"`
		IdleTimeout  time.Duration `mapstructure:"idleTimeout"`
		CORSOrigins  []string      `mapstructure:"corsOrigins"`
	} `mapstructure:"server"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
			MaxConns          int32  `mapstructure:"maxConns"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Observability struct {
		ServiceName string `mapstructure:"serviceName"`
		MetricsPort string `mapstructure:"metricsPort"`
	} `mapstructure:"observability"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	Catalog   struct {
		QueryTimeout time.Duration `mapstructure:"queryTimeout"`
	} `mapstructure:"catalog"`
	Cache struct {
		TTL             time.Duration `mapstructure:"ttl"`
		CleanupInterval time.Duration `mapstructure:"cleanupInterval"`
	} `mapstructure:"cache"`
	RateLimit struct {
		Requests int           `mapstructure:"requests"`
		Window   time.Duration `mapstructure:"window"`
	} `mapstructure:"ratelimit"`
}

// LLMConfig selects the text generation provider and its call budget.
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"`
	OpenAIModel string        `mapstructure:"openaiModel"`
	GeminiModel string        `mapstructure:"geminiModel"`
	OpenAIKey   string        `mapstructure:"openaiKey"`
	GeminiKey   string        `mapstructure:"geminiKey"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Temperature float32       `mapstructure:"temperature"`
	Breaker     struct {
		MaxRequests      uint32        `mapstructure:"maxRequests"`
		Interval         time.Duration `mapstructure:"interval"`
		OpenTimeout      time.Duration `mapstructure:"openTimeout"`
		FailureThreshold uint32        `mapstructure:"failureThreshold"`
	} `mapstructure:"breaker"`
}

// SlotConfig describes one preference slot the dialogue tries to fill.
type SlotConfig struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	Required    bool   `mapstructure:"required"`
}

type RecommendConfig struct {
	MaxTurns      int          `mapstructure:"maxTurns"`
	ResultLimit   int          `mapstructure:"resultLimit"`
	MaxKeywords   int          `mapstructure:"maxKeywords"`
	Slots         []SlotConfig `mapstructure:"slots"`
	ExcludedAreas []string     `mapstructure:"excludedAreas"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")
	v.AddConfigPath("/usr/local/bin")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// SOSOHAENG_LLM_OPENAIKEY overrides llm.openaiKey and so on
	v.SetEnvPrefix("sosohaeng")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	config.applyDefaults()
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}

// applyDefaults fills values the yml may omit and clamps the recommendation budget.
func (c *Config) applyDefaults() {
	if c.Server.HTTPPort == "" {
		c.Server.HTTPPort = "8000"
	}
	if c.Server.Timeout <= 0 {
		c.Server.Timeout = 60 * time.Second
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 5 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Server.IdleTimeout <= 0 {
		c.Server.IdleTimeout = 120 * time.Second
	}
	if c.Observability.MetricsPort == "" {
		c.Observability.MetricsPort = "9090"
	}
	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = "sosohaeng-api"
	}
	if c.Recommend.MaxTurns <= 0 {
		c.Recommend.MaxTurns = 5
	}
	if c.Recommend.ResultLimit < 3 || c.Recommend.ResultLimit > 5 {
		c.Recommend.ResultLimit = 5
	}
	if c.Recommend.MaxKeywords <= 0 {
		c.Recommend.MaxKeywords = 5
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 20 * time.Second
	}
	if c.Catalog.QueryTimeout <= 0 {
		c.Catalog.QueryTimeout = 5 * time.Second
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = 10 * time.Minute
	}
	if c.Cache.CleanupInterval <= 0 {
		c.Cache.CleanupInterval = 30 * time.Minute
	}
	if c.RateLimit.Requests <= 0 {
		c.RateLimit.Requests = 30
	}
	if c.RateLimit.Window <= 0 {
		c.RateLimit.Window = time.Minute
	}
}
