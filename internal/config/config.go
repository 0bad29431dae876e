package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
)

// DefaultPath is the YAML file read when no --config flag is given.
const DefaultPath = "config.yaml"

// EnvPrefix marks environment overrides: PANEL_AUTH__JWT_SECRET -> auth.jwt_secret.
const EnvPrefix = "PANEL_"

// HTTP holds web-server settings.
type HTTP struct {
	Port    string `koanf:"port" validate:"required,numeric"`                   // listen port
	GinMode string `koanf:"gin_mode" validate:"required,oneof=debug release test"` // gin mode
}

// Database selects the gorm dialector and its connection settings.
type Database struct {
	Driver   string `koanf:"driver" validate:"required,oneof=sqlite postgres"`
	Path     string `koanf:"path" validate:"required_if=Driver sqlite"` // sqlite file
	Host     string `koanf:"host" validate:"required_if=Driver postgres"`
	Port     string `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"sslmode"`
}

// Auth holds the token secret and the seed operator.
type Auth struct {
	JWTSecret    string `koanf:"jwt_secret" validate:"required"`
	SeedEmail    string `koanf:"seed_email" validate:"required,email"`
	SeedPassword string `koanf:"seed_password" validate:"required"`
}

// Deploy holds the two filesystem roots the pipeline writes to.
type Deploy struct {
	SitesRoot string `koanf:"sites_root" validate:"required"` // one directory per domain
	VhostDir  string `koanf:"vhost_dir" validate:"required"`  // one <domain>.conf per domain
}

type Log struct {
	Dir     string `koanf:"dir" validate:"required"`
	Level   string `koanf:"level" validate:"required,oneof=debug info warn error"`
	Console bool   `koanf:"console"`
}

type Metrics struct {
	Disabled bool `koanf:"disabled"`
}

// Config stores the whole application configuration.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Auth     Auth     `koanf:"auth"`
	Deploy   Deploy   `koanf:"deploy"`
	Log      Log      `koanf:"log"`
	Metrics  Metrics  `koanf:"metrics"`
}

// Load reads .env, the optional YAML file at path and PANEL_ environment
// overrides, then fills defaults and validates the result.
func Load(path string) (*Config, error) {
	// .env is for local development only
	_ = godotenv.Load()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, EnvPrefix), "__", "."))
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err := validateStruct(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Port == "" {
		c.HTTP.Port = "4000"
	}
	if c.HTTP.GinMode == "" {
		c.HTTP.GinMode = "release"
	}

	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		c.Database.Path = "db.sqlite"
	}
	if c.Database.Driver == "postgres" {
		if c.Database.Port == "" {
			c.Database.Port = "5432"
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	}

	if c.Auth.SeedEmail == "" {
		c.Auth.SeedEmail = "admin@painel.com"
	}
	if c.Auth.SeedPassword == "" {
		c.Auth.SeedPassword = "123456"
	}

	if c.Deploy.SitesRoot == "" {
		c.Deploy.SitesRoot = "sites"
	}
	if c.Deploy.VhostDir == "" {
		c.Deploy.VhostDir = "nginx-config"
	}

	if c.Log.Dir == "" {
		c.Log.Dir = "logs"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// RunningInTTY reports whether stdout is a character device.
func RunningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
