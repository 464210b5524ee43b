package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"pollwatch/pkg/watcher"
)

type Config struct {
	Env     string        `yaml:"env" env-default:"local" env:"ENV"`
	Watch   WatchConfig   `yaml:"watch"`
	Journal JournalConfig `yaml:"journal"`
}

type WatchConfig struct {
	Root          string        `yaml:"root" env:"POLLWATCH_ROOT"`
	Filter        string        `yaml:"filter" env:"POLLWATCH_FILTER"`
	Ignore        string        `yaml:"ignore" env:"POLLWATCH_IGNORE"`
	RefreshRate   time.Duration `yaml:"refresh_rate" env:"POLLWATCH_REFRESH_RATE" env-default:"250ms"`
	NotifyFilters string        `yaml:"notify_filters" env:"POLLWATCH_NOTIFY_FILTERS" env-default:"LastWrite,FileName"`
	// Depth is a level count or "unbounded".
	Depth     string `yaml:"depth" env:"POLLWATCH_DEPTH" env-default:"unbounded"`
	QueueSize int    `yaml:"queue_size" env:"POLLWATCH_QUEUE_SIZE"`
}

type JournalConfig struct {
	// Path of the bbolt file. Empty disables the journal.
	Path string `yaml:"path" env:"POLLWATCH_JOURNAL"`
	// MaxRecords bounds the journal; the oldest batches are pruned. 0 keeps all.
	MaxRecords int `yaml:"max_records" env:"POLLWATCH_JOURNAL_MAX_RECORDS"`
}

// Load reads configPath when it is set, otherwise the environment only.
// Priority: env > file > default.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	var cfg Config

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("cannot read config from env: %w", err)
		}
		return &cfg, nil
	}

	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	return &cfg, nil
}

func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

// Builder translates the watch section into watcher options. Callbacks are
// left to the caller.
func (c WatchConfig) Builder() (*watcher.OptionsBuilder, error) {
	mask, err := watcher.ParseNotifyFilters(c.NotifyFilters)
	if err != nil {
		return nil, err
	}
	depth, err := ParseDepth(c.Depth)
	if err != nil {
		return nil, err
	}

	return watcher.NewOptions(c.Root).
		WithFilter(c.Filter).
		WithIgnore(c.Ignore).
		WithRefreshInterval(c.RefreshRate).
		WithNotifyFilters(mask).
		WithDirectoryDepth(depth).
		WithAsyncDispatch(c.QueueSize), nil
}

// ParseDepth accepts a non-negative level count, or "unbounded", "-1" and
// the empty string for no limit.
func ParseDepth(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "unbounded") {
		return watcher.Unbounded, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < watcher.Unbounded {
		return 0, fmt.Errorf("%w: invalid depth %q", watcher.ErrInvalidConfiguration, s)
	}
	return n, nil
}
