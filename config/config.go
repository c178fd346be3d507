package config

import (
	"strings"

	"github.com/spf13/viper"
	"github.com/wippyai/mpi-runtime/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix is prepended to environment overrides, e.g. MPIRT_LIBRARY_PATH.
const EnvPrefix = "MPIRT"

// Config represents the complete runtime configuration
type Config struct {
	Library LibraryConfig `mapstructure:"library"`
	Logging LoggingConfig `mapstructure:"logging"`
	Run     RunConfig     `mapstructure:"run"`
}

// LibraryConfig controls how the native MPI library is loaded
type LibraryConfig struct {
	// Path is the shared object passed to dlopen (default: "libmpi.so")
	Path string `mapstructure:"path"`
	// CallerThread runs native calls on the calling goroutine's thread
	// instead of a dedicated locked OS thread (default: false)
	CallerThread bool `mapstructure:"caller_thread"`
}

// LoggingConfig controls structured logging
type LoggingConfig struct {
	// Level is the minimum level logged: "debug", "info", "warn", "error"
	Level string `mapstructure:"level"`
	// Format is "console" or "json"
	Format string `mapstructure:"format"`
}

// RunConfig controls the demo run
type RunConfig struct {
	// Simulate runs this many in-process ranks instead of loading the
	// native library (0 = use the native library)
	Simulate int `mapstructure:"simulate"`
	// Seed seeds the values each rank contributes (0 = time based)
	Seed int64 `mapstructure:"seed"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Library: LibraryConfig{
			Path:         "libmpi.so",
			CallerThread: false,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Run: RunConfig{
			Simulate: 0,
			Seed:     0,
		},
	}
}

// SetDefaults registers defaults and environment overrides on v
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("library.path", defaults.Library.Path)
	v.SetDefault("library.caller_thread", defaults.Library.CallerThread)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)

	v.SetDefault("run.simulate", defaults.Run.Simulate)
	v.SetDefault("run.seed", defaults.Run.Seed)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the configuration from v into a Config struct and validates it.
// Failures are config-phase errors wrapping the decode error or the
// ValidationErrors.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "decode configuration")
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, ValidationErrors(errs), "invalid configuration")
	}

	return &cfg, nil
}

// ZapConfig builds the logger configuration. It assumes the config has been
// validated.
func (l LoggingConfig) ZapConfig() zap.Config {
	var zc zap.Config
	if l.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		level = zapcore.WarnLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc
}
