package vitalz

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ApplicationName is the config file name and environment prefix.
const ApplicationName = "vitalz"

// Output formats understood by the replay command.
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// ErrInvalidOutput is returned when Config.Output names no known format.
var ErrInvalidOutput = errors.New("output must be json or yaml")

// Config is the file/env/flag form of Options.
type Config struct {
	LogLevel                 string `mapstructure:"logLevel"`
	Output                   string `mapstructure:"output"`
	OTLPEndpoint             string `mapstructure:"otlpEndpoint"`
	RecordCLSOnPageloadSpan  bool   `mapstructure:"recordClsOnPageloadSpan"`
	RecordCLSStandaloneSpans bool   `mapstructure:"recordClsStandaloneSpans"`
	EnableLongTask           bool   `mapstructure:"enableLongTask"`
	EnableLongAnimationFrame bool   `mapstructure:"enableLongAnimationFrame"`
	EnableInteractions       bool   `mapstructure:"enableInteractions"`
	EnableINP                bool   `mapstructure:"enableInp"`
}

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"log-level":                   "logLevel",
	"output":                      "output",
	"otlp-endpoint":               "otlpEndpoint",
	"record-cls-on-pageload-span": "recordClsOnPageloadSpan",
	"record-cls-standalone-spans": "recordClsStandaloneSpans",
	"enable-long-task":            "enableLongTask",
	"enable-long-animation-frame": "enableLongAnimationFrame",
	"enable-interactions":         "enableInteractions",
	"enable-inp":                  "enableInp",
}

// NewViper produces a Viper instance with the defaults of DefaultOptions,
// a "vitalz" config file search path and VITALZ_ environment overrides.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName(ApplicationName)
	v.AddConfigPath(fmt.Sprintf("/etc/%s", ApplicationName))
	v.AddConfigPath(fmt.Sprintf("$HOME/.%s", ApplicationName))
	v.AddConfigPath(".")

	v.SetEnvPrefix(ApplicationName)
	v.AutomaticEnv()

	d := DefaultOptions()
	v.SetDefault("logLevel", "info")
	v.SetDefault("output", OutputJSON)
	v.SetDefault("otlpEndpoint", "")
	v.SetDefault("recordClsOnPageloadSpan", d.RecordCLSOnPageloadSpan)
	v.SetDefault("recordClsStandaloneSpans", d.RecordCLSStandaloneSpans)
	v.SetDefault("enableLongTask", d.EnableLongTasks)
	v.SetDefault("enableLongAnimationFrame", d.EnableLongAnimationFrames)
	v.SetDefault("enableInteractions", d.EnableInteractions)
	v.SetDefault("enableInp", d.EnableINP)
	return v
}

// RegisterFlags adds the config flags to fs. Flag defaults are not used;
// only flags set on the command line override file and environment.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.StringP("output", "o", OutputJSON, "output format: json or yaml")
	fs.String("otlp-endpoint", "", "also export spans to this OTLP gRPC endpoint")
	fs.Bool("record-cls-on-pageload-span", true, "attach cls to the pageload span")
	fs.Bool("record-cls-standalone-spans", false, "report cls as its own span")
	fs.Bool("enable-long-task", true, "emit long task spans")
	fs.Bool("enable-long-animation-frame", true, "emit long animation frame spans")
	fs.Bool("enable-interactions", false, "emit click interaction spans")
	fs.Bool("enable-inp", true, "emit interaction-to-next-paint spans")
}

// LoadConfig reads configuration from path (or the default search path
// when empty), the environment and any changed flags in fs.
func LoadConfig(path string, fs *pflag.FlagSet) (Config, error) {
	v := NewViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the fields that have a closed set of values.
func (c Config) Validate() error {
	if c.Output != OutputJSON && c.Output != OutputYAML {
		return fmt.Errorf("%q: %w", c.Output, ErrInvalidOutput)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// Options converts the config to tracker options.
func (c Config) Options() []Option {
	return []Option{
		WithRecordCLSOnPageloadSpan(c.RecordCLSOnPageloadSpan),
		WithStandaloneCLS(c.RecordCLSStandaloneSpans),
		WithLongTasks(c.EnableLongTask),
		WithLongAnimationFrames(c.EnableLongAnimationFrame),
		WithInteractions(c.EnableInteractions),
		WithINP(c.EnableINP),
	}
}

// NewLogger builds a zap logger at the configured level. Debug uses the
// development encoder; every other level the production one.
func (c Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	zc := zap.NewProductionConfig()
	if level == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
