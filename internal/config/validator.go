package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/aleister1102/filemonitor/internal/common/errorwrapper"
	"github.com/go-playground/validator/v10"
)

var extensionPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidateConfig performs validation on the GlobalConfig structure.
// Every failing rule is reported in one ConfigurationError.
func ValidateConfig(cfg *GlobalConfig) error {
	if cfg == nil {
		return errorwrapper.NewConfigurationError("configuration is nil")
	}

	validate := newValidator()

	var problems []string
	if err := validate.Struct(cfg); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			return errorwrapper.WrapError(err, "configuration validation error")
		}
		for _, e := range errs {
			problems = append(problems, describeFieldError(e))
		}
	}

	if cfg.MonitorConfig.MonitorToken == "" && cfg.MonitorConfig.BaseURL == "" {
		problems = append(problems, "MONITOR_TOKEN: required when BASE_URL is not set")
	}
	if size := cfg.MonitorConfig.RangeSize(); size > MaxIndexRange {
		problems = append(problems, fmt.Sprintf("END_INDEX: range of %d indices exceeds the limit of %d", size, MaxIndexRange))
	}

	if len(problems) > 0 {
		return errorwrapper.NewConfigurationError(problems...)
	}
	return nil
}

func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their environment key so messages match what users set.
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		if key := field.Tag.Get("env"); key != "" {
			return key
		}
		return field.Name
	})

	// Register custom validation for LogLevel
	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "debug", "info", "warn", "warning", "error", "fatal", "panic":
			return true
		default:
			return false
		}
	})

	// Register custom validation for LogFormat
	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "text", "console", "json":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("extension", func(fl validator.FieldLevel) bool {
		return extensionPattern.MatchString(fl.Field().String())
	})

	// The template must place the index, otherwise every index maps to the same URL.
	_ = validate.RegisterValidation("filenametemplate", func(fl validator.FieldLevel) bool {
		tpl := fl.Field().String()
		return strings.Contains(tpl, "{index}") && !strings.ContainsAny(tpl, `/\`)
	})

	return validate
}

func describeFieldError(e validator.FieldError) string {
	field := e.Field()
	var msg string
	switch e.Tag() {
	case "required":
		msg = "is required"
	case "required_with":
		msg = "is required when MIRROR_ENDPOINT is set"
	case "min":
		if e.Kind() == reflect.Slice {
			msg = fmt.Sprintf("must contain at least %s item(s)", e.Param())
		} else {
			msg = "must be at least " + e.Param()
		}
	case "gtefield":
		msg = "must be greater than or equal to START_INDEX"
	case "url":
		msg = "must be a valid URL"
	case "hostname_port":
		msg = "must be host:port"
	case "extension":
		msg = "contains an invalid extension"
	case "filenametemplate":
		msg = "must contain {index} and no path separators"
	case "loglevel":
		msg = "must be one of debug, info, warn, error, fatal, panic"
	case "logformat":
		msg = "must be one of text, console, json"
	default:
		msg = fmt.Sprintf("failed rule '%s'", e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
	}
	if v := e.Value(); v != nil && v != "" && e.Tag() != "required" && !isSecretField(field) {
		msg += fmt.Sprintf(", actual: '%v'", v)
	}
	return fmt.Sprintf("%s: %s", field, msg)
}

func isSecretField(field string) bool {
	return strings.Contains(field, "TOKEN") || strings.Contains(field, "SECRET") || strings.Contains(field, "KEY")
}
