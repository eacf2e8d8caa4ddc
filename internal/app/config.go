package app

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultLogDir is used when neither a log directory nor --no-log is given.
const DefaultLogDir = "log"

// Config holds all the necessary configuration for an App instance to run.
// The mapstructure names double as flag names and, upper-cased with an
// EXPERIMENTOR_ prefix, as environment variables.
type Config struct {
	GridPath string `mapstructure:"config-file" validate:"required"`

	// Exactly one executor is selected.
	Script   string `mapstructure:"script" validate:"required_without=Endpoint,excluded_with=Endpoint"`
	Direct   bool   `mapstructure:"direct"`
	Shell    string `mapstructure:"shell"`
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`

	RequestTimeout time.Duration `mapstructure:"request-timeout" validate:"gte=0"`

	NoLog        bool          `mapstructure:"no-log"`
	LogDir       string        `mapstructure:"log-dir"`
	MaxTrials    int           `mapstructure:"max-trial" validate:"gte=1"`
	SkipExisting bool          `mapstructure:"skip-existing"`
	DisableLock  bool          `mapstructure:"disable-lock"`
	RetryDelay   time.Duration `mapstructure:"retry-delay" validate:"gte=0"`
	DryRun       bool          `mapstructure:"dry-run"`

	LogFormat string `mapstructure:"log-format" validate:"oneof=text json"`
	LogLevel  string `mapstructure:"log-level" validate:"oneof=debug info warn error"`

	MetricsPort       int    `mapstructure:"metrics-port" validate:"gte=0,lte=65535"`
	ProgressSocket    string `mapstructure:"progress-socket" validate:"omitempty,url"`
	ProgressNamespace string `mapstructure:"progress-namespace"`
}

// LogRoot returns the log directory to use, or "" when logging is disabled.
func (c *Config) LogRoot() string {
	if c.NoLog {
		return ""
	}
	if c.LogDir == "" {
		return DefaultLogDir
	}
	return c.LogDir
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their flag names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// NewConfig validates cfg and returns a copy with case-insensitive settings
// normalized.
func NewConfig(cfg Config) (*Config, error) {
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return nil, errors.New(strings.Join(msgs, "; "))
		}
		return nil, err
	}
	return &cfg, nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "required_without":
		return "one of script or endpoint is required"
	case "excluded_with":
		return "script and endpoint cannot be used together"
	case "oneof":
		return fmt.Sprintf("invalid %s %q: must be one of %s", fe.Field(), fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return fmt.Sprintf("invalid %s %q: must be a URL", fe.Field(), fe.Value())
	case "gte", "lte":
		return fmt.Sprintf("invalid %s %v: must be %s %s", fe.Field(), fe.Value(), map[string]string{"gte": ">=", "lte": "<="}[fe.Tag()], fe.Param())
	default:
		return fmt.Sprintf("invalid %s: failed %s check", fe.Field(), fe.Tag())
	}
}
