package config

import (
	"errors"
	"os"
	"sync"
	"time"

	"blackjack-server/internal/util"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// defaultConfigFile is tolerated missing, any other file must exist
const defaultConfigFile = "config.yaml"

// Config provides configuration for the blackjack server
type Config struct {
	loaded         bool
	PGDSN          string `yaml:"pgDsn" envconfig:"pg_dsn"`
	MigrationsPath string `yaml:"migrationsPath" envconfig:"migrations_path"`
	JWT            struct {
		Secret   string `yaml:"secret" envconfig:"secret"`
		TTLHours int    `yaml:"ttlHours" envconfig:"ttl_hours"`
	} `yaml:"jwt"`
	RecaptchaSecret string `yaml:"recaptchaSecret" envconfig:"recaptcha_secret"`
	// RoomCreateDelay is the minimum number of seconds between two rooms created from one remote address
	RoomCreateDelay int `yaml:"roomCreateDelay" envconfig:"room_create_delay"`
	Log             struct {
		Level             string `yaml:"level" envconfig:"level"`
		Format            string `yaml:"format" envconfig:"format"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	} `yaml:"log"`
	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins" envconfig:"allowed_origins"`
	} `yaml:"cors"`
	Game struct {
		Stake         int `yaml:"stake" envconfig:"stake"`
		StartingChips int `yaml:"startingChips" envconfig:"starting_chips"`
		// RestartDelay is in seconds
		RestartDelay int    `yaml:"restartDelay" envconfig:"restart_delay"`
		MaxSeats     int    `yaml:"maxSeats" envconfig:"max_seats"`
		Shuffle      string `yaml:"shuffle" envconfig:"shuffle"`
	} `yaml:"game"`
}

var (
	mu     sync.Mutex
	config Config
)

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	var cfg Config
	cfg.PGDSN = ""
	cfg.MigrationsPath = "./sql"
	cfg.JWT.Secret = ""
	cfg.JWT.TTLHours = 24
	cfg.RoomCreateDelay = 10
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	cfg.Game.Stake = 10
	cfg.Game.StartingChips = 100
	cfg.Game.RestartDelay = 5
	cfg.Game.MaxSeats = 7
	cfg.Game.Shuffle = "math"

	return cfg
}

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	mu.Lock()
	loaded := config.loaded
	mu.Unlock()

	if !loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	return config
}

// Load will load the configuration
// The defaults are overlaid by the YAML file and then by BJ_ environment variables.
// A .env file in the working directory is loaded into the environment first
func Load() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	cfg := DefaultConfig()

	configFile := util.Getenv("BJ_CONFIG_FILE", defaultConfigFile)
	file, err := os.Open(configFile)
	switch {
	case err == nil:
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
			return err
		}
	case os.IsNotExist(err) && configFile == defaultConfigFile:
	default:
		return err
	}

	if err := envconfig.Process("bj", &cfg); err != nil {
		return err
	}

	if err := cfg.validate(); err != nil {
		return err
	}

	cfg.loaded = true

	mu.Lock()
	config = cfg
	mu.Unlock()
	return nil
}

func (c Config) validate() error {
	if c.Game.Stake <= 0 {
		return errors.New("game.stake must be > 0")
	}

	if c.Game.StartingChips < 0 {
		return errors.New("game.startingChips cannot be negative")
	}

	if c.Game.RestartDelay < 0 {
		return errors.New("game.restartDelay cannot be negative")
	}

	if c.Game.MaxSeats <= 0 {
		return errors.New("game.maxSeats must be > 0")
	}

	switch c.Game.Shuffle {
	case "math", "crypto":
	default:
		return errors.New("game.shuffle must be math or crypto")
	}

	return nil
}

// RestartDelay returns the configured delay between rounds
func (c Config) RestartDelay() time.Duration {
	return time.Duration(c.Game.RestartDelay) * time.Second
}

// RoomCreateCooldown returns the minimum duration between two room creations from a single address
func (c Config) RoomCreateCooldown() time.Duration {
	return time.Duration(c.RoomCreateDelay) * time.Second
}

// JWTTTL returns how long an access token is valid
func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWT.TTLHours) * time.Hour
}
