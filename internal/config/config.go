// Package config loads runtime settings from configs/config.yml, a .env file
// and ANONMSG_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "ANONMSG"

// Config holds runtime settings for the server.
type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	LogFormat string

	// BaseURL overrides the scheme://host used for share links. Empty means
	// derive it from the incoming request.
	BaseURL string

	// SessionSecret signs session cookies. Empty means a random per-process
	// secret, so sessions end with the process.
	SessionSecret string
	SessionTTL    time.Duration

	TLSCertFile string
	TLSKeyFile  string
}

// TLSEnabled reports whether both halves of the key pair are configured.
func (c *Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db.path", "anonymous_messages.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("server.base_url", "")
	v.SetDefault("session.secret", "")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("tls.cert_file", "")
	v.SetDefault("tls.key_file", "")
}

// Load reads configuration from the given directories (configs/ when none
// are passed). A missing config file or .env file is not an error.
func Load(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if len(paths) == 0 {
		paths = []string{"configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p) // <path>/config.yml
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:          v.GetString("port"),
		DBPath:        v.GetString("db.path"),
		LogLevel:      strings.ToLower(v.GetString("log.level")),
		LogFormat:     strings.ToLower(v.GetString("log.format")),
		BaseURL:       strings.TrimRight(v.GetString("server.base_url"), "/"),
		SessionSecret: v.GetString("session.secret"),
		SessionTTL:    v.GetDuration("session.ttl"),
		TLSCertFile:   v.GetString("tls.cert_file"),
		TLSKeyFile:    v.GetString("tls.key_file"),
	}

	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("session.ttl must be positive, got %s", cfg.SessionTTL)
	}
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		return nil, errors.New("tls.cert_file and tls.key_file must be set together")
	}
	return cfg, nil
}
