// /internal/config/config.go
package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required"`
	StoragePath  string `env:"STORAGE_PATH" envDefault:"datastore.json"`

	// OperatorID bypasses song length and quota limits and may always skip.
	OperatorID string `env:"OPERATOR_ID"`

	DefaultVolume   float64       `env:"DEFAULT_VOLUME" envDefault:"5"`
	MaxSongDuration time.Duration `env:"MAX_SONG_DURATION" envDefault:"10m"`
	MaxSongsPerUser int           `env:"MAX_SONGS_PER_USER" envDefault:"3"`

	PlaylistPageSize int `env:"PLAYLIST_PAGE_SIZE" envDefault:"25"`
	PlaylistWorkers  int `env:"PLAYLIST_WORKERS" envDefault:"3"`

	InitSlashCommands bool `env:"INIT_SLASH_COMMANDS" envDefault:"true"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if cfg.DefaultVolume < 1 || cfg.DefaultVolume > 10 {
		log.Fatalf("DEFAULT_VOLUME must be between 1 and 10, got %v", cfg.DefaultVolume)
	}
	return cfg
}
