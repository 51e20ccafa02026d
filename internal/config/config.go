package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel          string        `yaml:"log-level" env-default:"info"`
	HTTPPort          string        `yaml:"http-port" env-default:"9090"`
	SQLiteStoragePath string        `yaml:"sqlite-storage-path" env-default:"saves.db"`
	PruneQueueSize    int           `yaml:"prune-queue-size" env-default:"64"`
	PruneInterval     time.Duration `yaml:"prune-interval" env-default:"1h"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}
