package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/username/recur/pkg/recurrence"
)

// Config represents application configuration
type Config struct {
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Calendar CalendarConfig `mapstructure:"calendar" yaml:"calendar"`
	Export   ExportConfig   `mapstructure:"export" yaml:"export"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file" yaml:"file,omitempty"`
	Level string `mapstructure:"level" yaml:"level,omitempty"`
}

// CalendarConfig holds the named schedules and their combinations.
// Viper lowercases map keys, so schedule names are case-insensitive.
type CalendarConfig struct {
	RulesFile    string                       `mapstructure:"rules_file" yaml:"rules_file,omitempty"`
	Schedules    map[string]ScheduleConfig    `mapstructure:"schedules" yaml:"schedules,omitempty"`
	Combinations map[string]CombinationConfig `mapstructure:"combinations" yaml:"combinations,omitempty"`
}

// ScheduleConfig is one named recurrence: a start date plus rule keys
type ScheduleConfig struct {
	Start               string `mapstructure:"start" yaml:"start"`
	recurrence.RuleSpec `mapstructure:",squash" yaml:",inline"`
}

// CombinationConfig combines other schedules by name. Exactly one field is set.
type CombinationConfig struct {
	Union      []string `mapstructure:"union" yaml:"union,omitempty"`
	Intersect  []string `mapstructure:"intersect" yaml:"intersect,omitempty"`
	Difference []string `mapstructure:"difference" yaml:"difference,omitempty"`
	Complement string   `mapstructure:"complement" yaml:"complement,omitempty"`
}

// ExportConfig represents iCalendar export settings
type ExportConfig struct {
	ProductID string `mapstructure:"product_id" yaml:"product_id,omitempty"`
	Output    string `mapstructure:"output" yaml:"output,omitempty"`
}

const (
	defaultLogLevel  = "info"
	defaultProductID = "-//recur//recurring dates//EN"
)

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.recur")
		v.AddConfigPath("/etc/recur")
	}

	// RECUR_LOG_LEVEL overrides log.level and so on
	v.SetEnvPrefix("recur")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("export.product_id", defaultProductID)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		dateStringHook(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Calendar.RulesFile != "" && !filepath.IsAbs(config.Calendar.RulesFile) {
		// Rules file paths are relative to the config file
		config.Calendar.RulesFile = filepath.Join(filepath.Dir(v.ConfigFileUsed()), config.Calendar.RulesFile)
	}

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.Calendar.Schedules) == 0 && c.Calendar.RulesFile == "" {
		return errors.New("calendar.schedules or calendar.rules_file is required")
	}

	for _, name := range sortedKeys(c.Calendar.Schedules) {
		sc := c.Calendar.Schedules[name]
		if strings.TrimSpace(sc.Start) == "" {
			return fmt.Errorf("calendar.schedules.%s.start is required", name)
		}
		if _, err := recurrence.ParseRule(sc.RuleSpec); err != nil {
			return fmt.Errorf("calendar.schedules.%s: %w", name, err)
		}
	}

	for _, name := range sortedKeys(c.Calendar.Combinations) {
		if _, ok := c.Calendar.Schedules[name]; ok {
			return fmt.Errorf("calendar.combinations.%s: name is already used by a schedule", name)
		}
		if err := c.Calendar.Combinations[name].Validate(); err != nil {
			return fmt.Errorf("calendar.combinations.%s: %w", name, err)
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got '%s'", c.Log.Level)
	}

	return nil
}

// Validate checks that exactly one operator is set with enough operands
func (cc CombinationConfig) Validate() error {
	ops := 0
	for _, set := range []bool{len(cc.Union) > 0, len(cc.Intersect) > 0, len(cc.Difference) > 0, cc.Complement != ""} {
		if set {
			ops++
		}
	}
	if ops != 1 {
		return fmt.Errorf("exactly one of union, intersect, difference, complement is required, got %d", ops)
	}

	switch {
	case len(cc.Union) == 1:
		return errors.New("union needs at least two schedules")
	case len(cc.Intersect) == 1:
		return errors.New("intersect needs at least two schedules")
	case len(cc.Difference) == 1:
		return errors.New("difference needs at least two schedules")
	}
	return nil
}

// GetLevel returns the configured log level, defaulting to info
func (c *LogConfig) GetLevel() string {
	if c.Level == "" {
		return defaultLogLevel
	}
	return strings.ToLower(c.Level)
}

// GetProductID returns the PRODID used for exported calendars
func (c *ExportConfig) GetProductID() string {
	if c.ProductID == "" {
		return defaultProductID
	}
	return c.ProductID
}

// Marshal renders the configuration as YAML
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Save writes the configuration as YAML, atomically via a temp file + rename.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".recur-config-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace config: %w", err)
	}
	return nil
}

// dateStringHook keeps YAML timestamps (unquoted 2024-01-01) as date strings
func dateStringHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to.Kind() != reflect.String {
			return data, nil
		}
		if t, ok := data.(time.Time); ok {
			return t.Format("2006-01-02"), nil
		}
		return data, nil
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
