package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the immutable process configuration, assembled once at startup
// and passed explicitly into each component's constructor.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Crawl       CrawlConfig       `mapstructure:"crawl"`
	Consolidate ConsolidateConfig `mapstructure:"consolidate"`
	Model       ModelConfig       `mapstructure:"model"`
	LLM         LLMConfig         `mapstructure:"llm"`
	News        NewsConfig        `mapstructure:"news"`
	Predict     PredictConfig     `mapstructure:"predict"`
	Backtest    BacktestConfig    `mapstructure:"backtest"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type StorageConfig struct {
	Type      string `mapstructure:"type"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
}

type CrawlConfig struct {
	BaseURL        string         `mapstructure:"base_url"`
	StartURL       string         `mapstructure:"start_url"`
	UserAgent      string         `mapstructure:"user_agent"`
	Competition    string         `mapstructure:"competition"`
	Season         string         `mapstructure:"season"`
	BaseSeason     string         `mapstructure:"base_season"`
	RawPrefix      string         `mapstructure:"raw_prefix"`
	CheckpointKey  string         `mapstructure:"checkpoint_key"`
	ConnectTimeout time.Duration  `mapstructure:"connect_timeout"`
	ReadTimeout    time.Duration  `mapstructure:"read_timeout"`
	TeamRankings   map[string]int `mapstructure:"team_rankings"`
}

type ConsolidateConfig struct {
	RawPrefix     string `mapstructure:"raw_prefix"`
	ArchivePrefix string `mapstructure:"archive_prefix"`
	CombinedKey   string `mapstructure:"combined_key"`
}

type ModelConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type LLMConfig struct {
	Model       string `mapstructure:"model"`
	APIKey      string `mapstructure:"api_key"`
	BaseURL     string `mapstructure:"base_url"`
	MaxAttempts int    `mapstructure:"max_attempts"`
	BaseTokens  int    `mapstructure:"base_tokens"`
}

type NewsConfig struct {
	FeedURL     string `mapstructure:"feed_url"`
	MaxArticles int    `mapstructure:"max_articles"`
}

type PredictConfig struct {
	// Weight is the fusion coefficient w in w*base + (1-w)*ai.
	Weight float64 `mapstructure:"weight"`
}

type BacktestConfig struct {
	Weight        float64 `mapstructure:"weight"`
	Threshold     float64 `mapstructure:"threshold"`
	ArchivePrefix string  `mapstructure:"archive_prefix"`
	JoinedCutoff  string  `mapstructure:"joined_cutoff"` // RFC3339 date; empty disables
}

// defaultTeamRankings is the 2023/24 LaLiga strength table used for the
// team_rank feature when the config file does not provide one. Keys must
// match the club names scraped from the competition page.
var defaultTeamRankings = map[string]int{
	"Real Madrid":         1,
	"FC Barcelona":        2,
	"Girona FC":           3,
	"Atlético de Madrid":  4,
	"Athletic Bilbao":     5,
	"Real Sociedad":       6,
	"Real Betis Balompié": 7,
	"Villarreal CF":       8,
	"Valencia CF":         9,
	"Deportivo Alavés":    10,
	"CA Osasuna":          11,
	"Getafe CF":           12,
	"Celta de Vigo":       13,
	"Sevilla FC":          14,
	"RCD Mallorca":        15,
	"UD Las Palmas":       16,
	"Rayo Vallecano":      17,
	"Cadiz CF":            18,
	"UD Almería":          19,
	"Granada CF":          20,
}

// Load reads configuration from an optional YAML file plus environment
// variables, with defaults for everything non-secret.
func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/kickon.db")
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("storage.type", "")
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.bucket", "kickon-ml-data-bucket")
	v.SetDefault("storage.region", "ap-northeast-2")
	v.SetDefault("crawl.base_url", "https://www.transfermarkt.com")
	v.SetDefault("crawl.start_url", "https://www.transfermarkt.com/laliga/startseite/wettbewerb/ES1")
	v.SetDefault("crawl.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")
	v.SetDefault("crawl.competition", "ES1")
	v.SetDefault("crawl.season", "2023")
	v.SetDefault("crawl.base_season", "2023/24")
	v.SetDefault("crawl.raw_prefix", "crawl/raw/")
	v.SetDefault("crawl.checkpoint_key", "crawl/progress.json")
	v.SetDefault("crawl.connect_timeout", 5*time.Second)
	v.SetDefault("crawl.read_timeout", 30*time.Second)
	v.SetDefault("consolidate.raw_prefix", "crawl/raw/")
	v.SetDefault("consolidate.archive_prefix", "crawl/archive/")
	v.SetDefault("consolidate.combined_key", "crawl/processed/combined.csv")
	v.SetDefault("model.timeout", 30*time.Second)
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.max_attempts", 3)
	v.SetDefault("llm.base_tokens", 256)
	v.SetDefault("news.feed_url", "https://news.google.com/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en")
	v.SetDefault("news.max_articles", 5)
	v.SetDefault("predict.weight", 0.1)
	v.SetDefault("backtest.weight", 0.3)
	v.SetDefault("backtest.threshold", 0.6)
	v.SetDefault("backtest.archive_prefix", "crawl/archive/")
	v.SetDefault("backtest.joined_cutoff", "")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("storage.endpoint", "STORAGE_ENDPOINT")
	v.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")
	v.BindEnv("storage.bucket", "STORAGE_BUCKET")
	v.BindEnv("storage.region", "STORAGE_REGION")
	v.BindEnv("model.endpoint", "MODEL_ENDPOINT")
	v.BindEnv("model.api_key", "MODEL_API_KEY")
	v.BindEnv("llm.api_key", "OPENAI_API_KEY")
	v.BindEnv("llm.base_url", "OPENAI_BASE_URL")
	v.BindEnv("llm.model", "LLM_MODEL")
	v.BindEnv("database.dsn", "DATABASE_DSN")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Applied after unmarshal, not via SetDefault: viper lowercases map keys,
	// which would break the case-sensitive club name lookup.
	if len(cfg.Crawl.TeamRankings) == 0 {
		cfg.Crawl.TeamRankings = defaultTeamRankings
	}

	return &cfg, nil
}
