package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/viper"

	"github.com/doeshing/termhelper/internal/domain"
	"github.com/doeshing/termhelper/internal/pkg/filesystem"
	"github.com/doeshing/termhelper/internal/ports"
)

// DefaultEnvFile is read from the working directory when present.
const DefaultEnvFile = ".env"

// Keys for the tool's own settings; the environment names carry the
// TERMHELPER_ prefix (TERMHELPER_LOG_LEVEL, ...).
const (
	keyElevation = "elevation"
	keyPython    = "python"
	keyShell     = "shell"
	keyRulesFile = "rules_file"
	keyGuardrail = "guardrail"
	keyLogLevel  = "log_level"
	keyDebug     = "debug"
	keyTimeout   = "timeout"
)

// unprefixed maps keys to the well-known variables shared with other tools.
var unprefixed = map[string]string{
	"openrouter_api_key": domain.EnvOpenRouterAPIKey,
	"openai_api_key":     domain.EnvOpenAIAPIKey,
	"openai_model":       domain.EnvOpenAIModel,
	"openai_base_url":    domain.EnvOpenAIBaseURL,
}

// EnvLoader builds the configuration from the process environment and an
// optional dotenv file. The environment wins over the file.
type EnvLoader struct {
	envFile  string
	explicit bool
	goos     string
}

// NewEnvLoader builds a loader. An empty path means ./.env, which may be
// missing; an explicit path must exist.
func NewEnvLoader(envFile string) *EnvLoader {
	l := &EnvLoader{envFile: filesystem.ExpandHome(envFile), explicit: envFile != "", goos: runtime.GOOS}
	if envFile == "" {
		l.envFile = DefaultEnvFile
	}
	return l
}

// Load implements ports.ConfigProvider.
func (l *EnvLoader) Load(context.Context) (domain.Config, error) {
	v, err := l.newViper()
	if err != nil {
		return domain.Config{}, err
	}

	timeout, err := parseTimeout(get(v, keyTimeout))
	if err != nil {
		return domain.Config{}, err
	}

	cfg := domain.Config{
		LLM: domain.LLMSettings{
			Model:          get(v, "openai_model"),
			BaseURL:        get(v, "openai_base_url"),
			Temperature:    domain.DefaultTemperature,
			RequestTimeout: timeout,
		},
		Execution: domain.ExecutionSettings{
			Shell:     get(v, keyShell),
			Elevation: get(v, keyElevation),
			Python:    get(v, keyPython),
		},
		Security: domain.SecuritySettings{
			Enabled:   !isOff(get(v, keyGuardrail)),
			RulesFile: get(v, keyRulesFile),
		},
		LogLevel: get(v, keyLogLevel),
	}
	if key := get(v, "openrouter_api_key"); key != "" {
		cfg.LLM.APIKey, cfg.LLM.APIKeySource = key, domain.EnvOpenRouterAPIKey
	} else if key := get(v, "openai_api_key"); key != "" {
		cfg.LLM.APIKey, cfg.LLM.APIKeySource = key, domain.EnvOpenAIAPIKey
	}
	if debug, _ := strconv.ParseBool(get(v, keyDebug)); debug {
		cfg.LogLevel = "debug"
	}
	return l.hydrateDefaults(cfg), nil
}

func (l *EnvLoader) newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(domain.EnvPrefix)
	v.AutomaticEnv()
	for key, env := range unprefixed {
		_ = v.BindEnv(key, env)
	}

	if _, err := os.Stat(l.envFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !l.explicit {
			return v, nil
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to read env file " + l.envFile).
			WithCause(err)
	}
	v.SetConfigFile(l.envFile)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse env file " + l.envFile).
			WithCause(err)
	}
	return v, nil
}

// get resolves a key from the environment first, then from the dotenv file,
// where prefixed settings appear under their full variable name.
func get(v *viper.Viper, key string) string {
	value := v.GetString(key)
	if value == "" {
		if _, ok := unprefixed[key]; !ok {
			value = v.GetString(strings.ToLower(domain.EnvPrefix) + "_" + key)
		}
	}
	return clean(value)
}

// clean trims whitespace and treats __PLACEHOLDER__ values as unset.
func clean(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= 4 && strings.HasPrefix(value, "__") && strings.HasSuffix(value, "__") {
		return ""
	}
	return value
}

func isOff(value string) bool {
	switch strings.ToLower(value) {
	case "0", "false", "off", "no", "disabled":
		return true
	default:
		return false
	}
}

// parseTimeout accepts a Go duration ("90s") or a plain number of seconds.
func parseTimeout(value string) (time.Duration, error) {
	if value == "" {
		return domain.DefaultRequestTimeout, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs <= 0 {
			return 0, invalidTimeout(value, nil)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, invalidTimeout(value, err)
	}
	return d, nil
}

func invalidTimeout(value string, cause error) error {
	b := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("invalid " + domain.EnvPrefix + "_TIMEOUT value " + strconv.Quote(value))
	if cause != nil {
		b = b.WithCause(cause)
	}
	return b
}

func (l *EnvLoader) hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = domain.DefaultBaseURL
	}
	if cfg.Execution.Elevation == "" {
		cfg.Execution.Elevation = domain.DefaultElevation
	}
	if cfg.Execution.Python == "" {
		cfg.Execution.Python = domain.DefaultPythonUnix
		if l.goos == "windows" {
			cfg.Execution.Python = domain.DefaultPythonWindows
		}
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	return cfg
}

var _ ports.ConfigProvider = (*EnvLoader)(nil)
