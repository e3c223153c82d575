package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/aleister1102/filemonitor/internal/common/errorwrapper"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// GetConfigPath determines the YAML configuration file path.
// Priority:
// 1. the path passed in (from the --config flag)
// 2. FILEMONITOR_CONFIG_PATH environment variable
// 3. config.yaml / config.yml in the current working directory
// Returns "" when nothing is found.
func GetConfigPath(configFilePathFlag string) string {
	if configFilePathFlag != "" {
		if fileExists(configFilePathFlag) {
			return configFilePathFlag
		}
		return ""
	}

	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" && fileExists(envPath) {
		return envPath
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for _, name := range []string{"config.yaml", "config.yml"} {
		path := filepath.Join(cwd, name)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// Helper function to check if a file exists
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) || err != nil {
		return false
	}
	return !info.IsDir()
}

// newEnvViper returns a viper instance that resolves keys from the dotenv file
// (if present) and then the process environment, the latter winning.
func newEnvViper(envFile string, logger zerolog.Logger) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()

	if envFile != "" && fileExists(envFile) {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, errorwrapper.WrapError(err, "failed to read env file "+envFile)
		}
		logger.Debug().Str("path", envFile).Msg("Loaded env file")
	}
	return v, nil
}

// applyEnvironment overrides cfg fields tagged with `env:"KEY"` from the dotenv
// file and the process environment. Malformed values are collected and returned
// as a single ConfigurationError.
func applyEnvironment(cfg *GlobalConfig, envFile string, logger zerolog.Logger) error {
	v, err := newEnvViper(envFile, logger)
	if err != nil {
		return err
	}

	var problems []string
	applyEnvToStruct(v, reflect.ValueOf(cfg).Elem(), &problems)
	if len(problems) > 0 {
		return errorwrapper.NewConfigurationError(problems...)
	}
	return nil
}

func applyEnvToStruct(v *viper.Viper, rv reflect.Value, problems *[]string) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		fv := rv.Field(i)

		if field.Type.Kind() == reflect.Struct {
			applyEnvToStruct(v, fv, problems)
			continue
		}

		key := field.Tag.Get("env")
		if key == "" || !v.IsSet(key) {
			continue
		}
		raw := strings.TrimSpace(v.GetString(key))
		if raw == "" {
			continue
		}
		if err := setFieldFromString(fv, raw); err != nil {
			*problems = append(*problems, fmt.Sprintf("%s: %v", key, err))
		}
	}
}

func setFieldFromString(fv reflect.Value, raw string) error {
	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Int, reflect.Int64:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%q is not an integer", raw)
		}
		fv.SetInt(int64(n))
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%q is not a boolean", raw)
		}
		fv.SetBool(b)
	case reflect.Slice:
		if fv.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported list type %s", fv.Type())
		}
		fv.Set(reflect.ValueOf(ParseExtensions(raw)))
	default:
		return fmt.Errorf("unsupported field type %s", fv.Type())
	}
	return nil
}
