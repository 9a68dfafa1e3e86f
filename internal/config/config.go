// Package config provides Viper-based configuration loading for skirmish.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendYAML     = "yaml"
	BackendSQLite   = "sqlite"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// StorageConfig selects where characters and level growth live.
type StorageConfig struct {
	// Characters is "memory" (nothing persists) or "postgres".
	Characters string `mapstructure:"characters"`
	// Growth is "yaml" (content levels.yaml) or "sqlite".
	Growth string `mapstructure:"growth"`
	// SQLitePath is the sqlite database file used when Growth is "sqlite".
	SQLitePath string `mapstructure:"sqlite_path"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is a zap sink: "stderr", "stdout" or a file path.
	Output string `mapstructure:"output"`
}

// ContentConfig locates the YAML and Lua content tree.
type ContentConfig struct {
	Root string `mapstructure:"root"`
}

// Path joins elem onto the content root.
func (c ContentConfig) Path(elem ...string) string {
	return filepath.Join(append([]string{c.Root}, elem...)...)
}

// Content subdirectories and files under the root.
func (c ContentConfig) EffectsDir() string  { return c.Path("effects") }
func (c ContentConfig) ItemsDir() string    { return c.Path("items") }
func (c ContentConfig) SpellsDir() string   { return c.Path("spells") }
func (c ContentConfig) MonstersDir() string { return c.Path("monsters") }
func (c ContentConfig) QuestsDir() string   { return c.Path("quests") }
func (c ContentConfig) ScriptsDir() string  { return c.Path("scripts") }
func (c ContentConfig) LevelsFile() string  { return c.Path("levels.yaml") }

// GameConfig holds the starting character and session rules.
type GameConfig struct {
	CharacterName     string   `mapstructure:"character_name"`
	StartingHealth    float64  `mapstructure:"starting_health"`
	StartingMana      float64  `mapstructure:"starting_mana"`
	StartingSpells    []string `mapstructure:"starting_spells"`
	StartingQuests    []string `mapstructure:"starting_quests"`
	StartingEquipment []string `mapstructure:"starting_equipment"`
	// Seed fixes the dice for reproducible sessions; 0 uses crypto randomness.
	Seed int64 `mapstructure:"seed"`
	// ScriptInstructionLimit caps Lua opcodes per script run; 0 uses the default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Content  ContentConfig  `mapstructure:"content"`
	Game     GameConfig     `mapstructure:"game"`
}

// Validate checks all configuration invariants. Database settings are only
// checked when characters are stored in postgres.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Characters == BackendPostgres {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Content.Root == "" {
		errs = append(errs, "content.root must not be empty")
	}
	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	var errs []string
	if s.Characters != BackendMemory && s.Characters != BackendPostgres {
		errs = append(errs, fmt.Sprintf("storage.characters must be one of [memory, postgres], got %q", s.Characters))
	}
	if s.Growth != BackendYAML && s.Growth != BackendSQLite {
		errs = append(errs, fmt.Sprintf("storage.growth must be one of [yaml, sqlite], got %q", s.Growth))
	}
	if s.Growth == BackendSQLite && s.SQLitePath == "" {
		errs = append(errs, "storage.sqlite_path must not be empty when storage.growth is sqlite")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	if l.Output == "" {
		return errors.New("logging.output must not be empty")
	}
	return nil
}

func validateGame(g GameConfig) error {
	var errs []string
	if g.CharacterName == "" {
		errs = append(errs, "game.character_name must not be empty")
	}
	if g.StartingHealth <= 0 {
		errs = append(errs, fmt.Sprintf("game.starting_health must be > 0, got %g", g.StartingHealth))
	}
	if g.StartingMana < 0 {
		errs = append(errs, fmt.Sprintf("game.starting_mana must be >= 0, got %g", g.StartingMana))
	}
	if g.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("game.script_instruction_limit must be >= 0, got %d", g.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with SKIRMISH_ prefix
	v.SetEnvPrefix("SKIRMISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
// Defaults are applied for any key v leaves unset.
//
// Precondition: v must be non-nil.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "skirmish")
	v.SetDefault("database.password", "skirmish")
	v.SetDefault("database.name", "skirmish")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("storage.characters", BackendMemory)
	v.SetDefault("storage.growth", BackendYAML)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("content.root", "content")

	v.SetDefault("game.character_name", "Aldric")
	v.SetDefault("game.starting_health", 100)
	v.SetDefault("game.starting_mana", 60)
	v.SetDefault("game.starting_spells", []string{"holy_light", "holy_shock", "seal_of_might"})
	v.SetDefault("game.starting_quests", []string{"wolf_cull"})
	v.SetDefault("game.starting_equipment", []string{"worn_shortsword", "padded_tunic", "leather_boots"})
}
