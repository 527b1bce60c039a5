package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const appDirName = "ghost-protocol"

// Config holds the bootstrap settings read from the environment and an
// optional .env file.
type Config struct {
	SaveDir    string `env:"GHOST_SAVE_DIR"`
	SlotCount  int    `env:"GHOST_SLOT_COUNT" envDefault:"5"`
	LogLevel   string `env:"GHOST_LOG_LEVEL" envDefault:"info"`
	LogFile    string `env:"GHOST_LOG_FILE"`
	Seed       int64  `env:"GHOST_SEED" envDefault:"0"`
	PlayerName string `env:"GHOST_PLAYER_NAME" envDefault:"Operator"`
}

// Load reads dotenv files (".env" when none are named) and then parses the
// environment. Variables already set in the process win over file values. A
// missing default .env is not an error.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			files = []string{".env"}
		}
	}
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
		logrus.WithField("files", files).Debug("loaded environment files")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config from environment: %w", err)
	}
	if strings.TrimSpace(cfg.SaveDir) == "" {
		dir, err := defaultSaveDir()
		if err != nil {
			return nil, err
		}
		cfg.SaveDir = dir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SlotCount < 1 || c.SlotCount > 99 {
		return fmt.Errorf("invalid GHOST_SLOT_COUNT: %d (must be 1-99)", c.SlotCount)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid GHOST_LOG_LEVEL: %w", err)
	}
	if strings.TrimSpace(c.SaveDir) == "" {
		return errors.New("GHOST_SAVE_DIR resolved to an empty path")
	}
	return nil
}

// ConfigureLogging applies the log level and sends output to LogFile, or to
// fallback when no file is configured. The returned closer releases the file.
func (c *Config) ConfigureLogging(logger *logrus.Logger, fallback io.Writer) (io.Closer, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})

	if strings.TrimSpace(c.LogFile) == "" {
		logger.SetOutput(fallback)
		return io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(c.LogFile), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) // #nosec G304 -- operator supplied log path
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(f)
	return f, nil
}

func defaultSaveDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		home, herr := os.UserHomeDir()
		if herr != nil || home == "" {
			return "", errors.New("no config or home directory for saves; set GHOST_SAVE_DIR")
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appDirName), nil
}
