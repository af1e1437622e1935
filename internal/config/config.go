// Package config resolves runtime settings from flags, environment
// variables, and an optional YAML config file.
//
// Precedence, highest first: explicitly set flags, GRABTEXT_* environment
// variables (a .env file is loaded into the environment when present),
// the config file, built-in defaults. The config file is taken from
// GRABTEXT_CONFIG when set, otherwise <user config dir>/grabtext/config.yaml
// is used if it exists.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/rouri404/grabtext/internal/ocr"
)

const envPrefix = "GRABTEXT"

// Config carries the resolved settings shared across subcommands.
type Config struct {
	Language     ocr.Language
	Engine       string
	Timeout      time.Duration // per-file OCR budget
	Workers      int
	PollInterval time.Duration
	LogFile      string
	Verbose      bool
}

// BindFlags registers the shared settings flags on fs. Subcommands add
// their own flags next to these.
func BindFlags(fs *pflag.FlagSet) {
	fs.StringP("lang", "l", string(ocr.DefaultLanguage), "recognition language (en, pt)")
	fs.String("engine", ocr.AutoEngine, "ocr engine (auto, tesseract, gosseract)")
	fs.IntP("timeout", "t", 60, "ocr timeout per file in seconds")
	fs.IntP("workers", "w", 1, "concurrent ocr workers for batch processing")
	fs.Int("interval", 1, "directory poll interval in seconds")
	fs.String("logfile", "", "log file location (default <user config dir>/grabtext/grabtext.log)")
	fs.BoolP("verbose", "v", false, "log debug detail to the console")
}

// Load resolves settings. fs may be nil when a command takes no shared
// flags.
func Load(fs *pflag.FlagSet) (*Config, error) {
	godotenv.Load()

	v := viper.New()
	v.SetDefault("lang", string(ocr.DefaultLanguage))
	v.SetDefault("engine", ocr.AutoEngine)
	v.SetDefault("timeout", 60)
	v.SetDefault("workers", 1)
	v.SetDefault("interval", 1)
	v.SetDefault("logfile", defaultLogFile())
	v.SetDefault("verbose", false)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	lang, err := ocr.ParseLanguage(v.GetString("lang"))
	if err != nil {
		return nil, err
	}

	timeout := v.GetInt("timeout")
	if timeout < 0 {
		timeout = 0
	}
	workers := v.GetInt("workers")
	if workers < 1 {
		workers = 1
	}
	interval := v.GetInt("interval")
	if interval < 1 {
		interval = 1
	}
	logFile := v.GetString("logfile")
	if logFile == "" {
		logFile = defaultLogFile()
	}

	return &Config{
		Language:     lang,
		Engine:       v.GetString("engine"),
		Timeout:      time.Duration(timeout) * time.Second,
		Workers:      workers,
		PollInterval: time.Duration(interval) * time.Second,
		LogFile:      logFile,
		Verbose:      v.GetBool("verbose"),
	}, nil
}

func readConfigFile(v *viper.Viper) error {
	if path := os.Getenv(envPrefix + "_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "grabtext"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// defaultLogFile is <user config dir>/grabtext/grabtext.log, falling
// back to the system temp directory when no config dir is available.
func defaultLogFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "grabtext", "grabtext.log")
}
