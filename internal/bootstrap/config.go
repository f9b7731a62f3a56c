package bootstrap

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort    string `mapstructure:"SERVER_PORT"`
	RedisUrl      string `mapstructure:"REDIS_URL"`
	MongoUri      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`
	IsLocalCors   bool   `mapstructure:"LOCAL_CORS"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`

	AnalysisGrpcAddr   string `mapstructure:"ANALYSIS_GRPC_ADDR"`
	AnalysisListenAddr string `mapstructure:"ANALYSIS_LISTEN_ADDR"`
	AnalysisTimeoutMs  int    `mapstructure:"ANALYSIS_TIMEOUT_MS"`
	KatagoPath         string `mapstructure:"KATAGO_PATH"`
	KatagoModel        string `mapstructure:"KATAGO_MODEL"`
	KatagoConfig       string `mapstructure:"KATAGO_CONFIG"`

	TickIntervalMs         int    `mapstructure:"TICK_INTERVAL_MS"`
	HeartbeatTimeoutMs     int    `mapstructure:"HEARTBEAT_TIMEOUT_MS"`
	DisconnectGraceMs      int    `mapstructure:"DISCONNECT_GRACE_MS"`
	DisconnectForfeitCount int    `mapstructure:"DISCONNECT_FORFEIT_COUNT"`
	NoContestMoveWindow    int    `mapstructure:"NO_CONTEST_MOVE_WINDOW"`
	NoContestOfferMs       int    `mapstructure:"NO_CONTEST_OFFER_MS"`
	PhaseTimeoutMs         int    `mapstructure:"PHASE_TIMEOUT_MS"`
	ItemUseTimeoutMs       int    `mapstructure:"ITEM_USE_TIMEOUT_MS"`
	SummaryChannel         string `mapstructure:"SUMMARY_CHANNEL"`
}

var defaults = map[string]any{
	"SERVER_PORT":              "8080",
	"REDIS_URL":                "localhost:6379",
	"MONGO_URI":                "mongodb://localhost:27017",
	"MONGO_DATABASE":           "game_arena",
	"LOG_LEVEL":                "info",
	"LOCAL_CORS":               false,
	"ANALYSIS_GRPC_ADDR":       "localhost:8082",
	"ANALYSIS_LISTEN_ADDR":     ":8082",
	"ANALYSIS_TIMEOUT_MS":      8000,
	"KATAGO_PATH":              "./katago",
	"KATAGO_MODEL":             "kata1-b18c384nbt.bin.gz",
	"KATAGO_CONFIG":            "analysis.cfg",
	"TICK_INTERVAL_MS":         1000,
	"HEARTBEAT_TIMEOUT_MS":     15000,
	"DISCONNECT_GRACE_MS":      90000,
	"DISCONNECT_FORFEIT_COUNT": 3,
	"NO_CONTEST_MOVE_WINDOW":   20,
	"NO_CONTEST_OFFER_MS":      60000,
	"PHASE_TIMEOUT_MS":         30000,
	"ITEM_USE_TIMEOUT_MS":      30000,
	"SUMMARY_CHANNEL":          "game:summaries",
}

// Setup reads cfgPath (a .env file) if it exists; environment variables override it.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	v.SetConfigFile(cfgPath)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func (c *Config) TickInterval() time.Duration     { return ms(c.TickIntervalMs) }
func (c *Config) HeartbeatTimeout() time.Duration { return ms(c.HeartbeatTimeoutMs) }
func (c *Config) DisconnectGrace() time.Duration  { return ms(c.DisconnectGraceMs) }
func (c *Config) NoContestOffer() time.Duration   { return ms(c.NoContestOfferMs) }
func (c *Config) PhaseTimeout() time.Duration     { return ms(c.PhaseTimeoutMs) }
func (c *Config) ItemUseTimeout() time.Duration   { return ms(c.ItemUseTimeoutMs) }
func (c *Config) AnalysisTimeout() time.Duration  { return ms(c.AnalysisTimeoutMs) }
