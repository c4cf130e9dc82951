package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config keeps runtime settings for the bot.
type Config struct {
	BotToken       string        `env:"BOT_TOKEN"`
	ChannelID      int64         `env:"CHANNEL_ID" env-default:"-1002890796928"`
	CategoriesFile string        `env:"CATEGORIES_FILE" env-default:"categories.json"`
	VideosFile     string        `env:"VIDEOS_FILE" env-default:"videos.json"`
	UserLogFile    string        `env:"USER_LOG_FILE" env-default:"user_logs.json"`
	VideosPerPage  int           `env:"VIDEOS_PER_PAGE" env-default:"5"`
	DeleteTimeout  time.Duration `env:"DELETE_TIMEOUT" env-default:"5m"`
	FlushInterval  time.Duration `env:"FLUSH_INTERVAL" env-default:"10m"`
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("read env: %w", err)
	}

	if cfg.BotToken == "" {
		return cfg, fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.VideosPerPage <= 0 {
		cfg.VideosPerPage = 5
	}
	if cfg.DeleteTimeout <= 0 {
		cfg.DeleteTimeout = 5 * time.Minute
	}

	return cfg, nil
}
