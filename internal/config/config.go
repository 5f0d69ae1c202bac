package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type GameConfig struct {
	MaxPlayers   int           `mapstructure:"max_players" validate:"min=2,max=4"`
	MaxRounds    int           `mapstructure:"max_rounds" validate:"min=1"`
	RoundSeconds int           `mapstructure:"round_seconds" validate:"min=5"`
	TickInterval time.Duration `mapstructure:"tick_interval" validate:"gt=0"`
}

type RateConfig struct {
	EventsPerSecond float64 `mapstructure:"events_per_second" validate:"gt=0"`
	Burst           int     `mapstructure:"burst" validate:"min=1"`
}

type Config struct {
	Mode           string        `mapstructure:"mode" validate:"oneof=debug release test"`
	Port           int           `mapstructure:"port" validate:"min=1,max=65535"`
	StaticPath     string        `mapstructure:"static_path" validate:"required"`
	ReadLimit      int64         `mapstructure:"read_limit" validate:"min=1024"`
	PingPeriod     time.Duration `mapstructure:"ping_period" validate:"gt=0,ltfield=PongWait"`
	PongWait       time.Duration `mapstructure:"pong_wait" validate:"gt=0"`
	WriteWait      time.Duration `mapstructure:"write_wait" validate:"gt=0"`
	SendBuffer     int           `mapstructure:"send_buffer" validate:"min=1"`
	Secret         string        `mapstructure:"secret" validate:"required,min=8"`
	LogLevel       string        `mapstructure:"log_level" validate:"oneof=trace debug info warn error"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	Game           GameConfig    `mapstructure:"game"`
	Rate           RateConfig    `mapstructure:"rate"`
}

// Load reads config/config.<CONFIG_ENV>.yaml, then SKETCH_* env vars, then flags.
func Load(args []string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	flags := pflag.NewFlagSet("sketch", pflag.ContinueOnError)
	flags.Int("port", 8080, "listen port")
	flags.String("mode", "release", "gin mode: debug, release or test")
	configFile := flags.String("config", "", "config file path")
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	if err := v.BindPFlag("port", flags.Lookup("port")); err != nil {
		return nil, err
	}
	if err := v.BindPFlag("mode", flags.Lookup("mode")); err != nil {
		return nil, err
	}

	fileName := *configFile
	if fileName == "" {
		env := os.Getenv("CONFIG_ENV")
		if env == "" {
			env = "dev"
		}
		fileName = fmt.Sprintf("config/config.%s.yaml", env)
	}
	v.SetConfigFile(fileName)

	v.SetEnvPrefix("SKETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("write_wait", "5s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("secret", "change-me-sketch")
	v.SetDefault("log_level", "info")
	v.SetDefault("allowed_origins", []string{})
	v.SetDefault("game.max_players", 4)
	v.SetDefault("game.max_rounds", 3)
	v.SetDefault("game.round_seconds", 60)
	v.SetDefault("game.tick_interval", "1s")
	v.SetDefault("rate.events_per_second", 10)
	v.SetDefault("rate.burst", 20)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("read config %s: %w", fileName, err)
		}
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).
		Str("static", cfg.StaticPath).Msg("config ready")
	return &cfg, nil
}
