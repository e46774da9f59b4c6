// Package config loads runtime settings from flags, environment variables,
// an optional .env file and an optional saathi.yaml, in that order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Env var names understood without the SAATHI_ prefix.
const (
	EnvGeminiKey         = "GEMINI_API_KEY"
	EnvGoogleKey         = "GOOGLE_API_KEY"
	EnvOpenAIKey         = "OPENAI_API_KEY"
	EnvOpenAIBaseURL     = "OPENAI_BASE_URL"
	EnvAzureSpeechKey    = "AZURE_SPEECH_KEY"
	EnvAzureSpeechRegion = "AZURE_SPEECH_REGION"
)

// Backend providers.
const (
	ProviderAuto   = "auto"
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

// Speech engines.
const (
	SpeechOff    = "off"
	SpeechAzure  = "azure"
	SpeechEspeak = "espeak"
)

// Config is the full runtime configuration.
type Config struct {
	UserName      string    `mapstructure:"name"`
	AssistantName string    `mapstructure:"assistant_name"`
	Seed          int64     `mapstructure:"seed"`
	Plain         bool      `mapstructure:"plain"`
	Backend       Backend   `mapstructure:"backend"`
	Speech        Speech    `mapstructure:"speech"`
	Translate     Translate `mapstructure:"translate"`
	Log           Log       `mapstructure:"log"`
	ConfigFile    string    `mapstructure:"-"`
	LoadedAt      time.Time `mapstructure:"-"`
}

// Backend configures the language backend.
type Backend struct {
	Provider      string        `mapstructure:"provider"`
	Model         string        `mapstructure:"model"`
	GeminiKey     string        `mapstructure:"gemini_key"`
	OpenAIKey     string        `mapstructure:"openai_key"`
	OpenAIBaseURL string        `mapstructure:"openai_base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// Speech configures text-to-speech and speech-to-text.
type Speech struct {
	Engine        string        `mapstructure:"engine"`
	Enabled       bool          `mapstructure:"enabled"`
	AzureKey      string        `mapstructure:"azure_key"`
	AzureRegion   string        `mapstructure:"azure_region"`
	CacheDir      string        `mapstructure:"cache_dir"`
	DiskCache     bool          `mapstructure:"disk_cache"`
	Voice         bool          `mapstructure:"voice"`
	WhisperBin    string        `mapstructure:"whisper_bin"`
	WhisperModel  string        `mapstructure:"whisper_model"`
	ListenTimeout time.Duration `mapstructure:"listen_timeout"`
}

// Translate configures the translation command.
type Translate struct {
	Model    string        `mapstructure:"model"`
	Auto     string        `mapstructure:"auto"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// Log configures logging.
type Log struct {
	File    string `mapstructure:"file"`
	Verbose bool   `mapstructure:"verbose"`
	Quiet   bool   `mapstructure:"quiet"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"name":            "name",
	"seed":            "seed",
	"plain":           "plain",
	"backend":         "backend.provider",
	"model":           "backend.model",
	"backend-timeout": "backend.timeout",
	"speech":          "speech.engine",
	"tts":             "speech.enabled",
	"disk-cache":      "speech.disk_cache",
	"cache-dir":       "speech.cache_dir",
	"voice":           "speech.voice",
	"whisper-bin":     "speech.whisper_bin",
	"whisper-model":   "speech.whisper_model",
	"listen-timeout":  "speech.listen_timeout",
	"auto-translate":  "translate.auto",
	"log-file":        "log.file",
	"verbose":         "log.verbose",
	"quiet":           "log.quiet",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("name", "User")
	v.SetDefault("assistant_name", "Saathi")
	v.SetDefault("seed", 0)
	v.SetDefault("plain", false)

	v.SetDefault("backend.provider", ProviderAuto)
	v.SetDefault("backend.model", "")
	v.SetDefault("backend.gemini_key", "")
	v.SetDefault("backend.openai_key", "")
	v.SetDefault("backend.openai_base_url", "")
	v.SetDefault("backend.timeout", 15*time.Second)

	v.SetDefault("speech.engine", SpeechOff)
	v.SetDefault("speech.enabled", false)
	v.SetDefault("speech.azure_key", "")
	v.SetDefault("speech.azure_region", "")
	v.SetDefault("speech.cache_dir", ".saathi-cache")
	v.SetDefault("speech.disk_cache", true)
	v.SetDefault("speech.voice", false)
	v.SetDefault("speech.whisper_bin", "whisper-cli")
	v.SetDefault("speech.whisper_model", "bin/ggml-small.bin")
	v.SetDefault("speech.listen_timeout", 10*time.Second)

	v.SetDefault("translate.model", "gemini-2.0-flash")
	v.SetDefault("translate.auto", "")
	v.SetDefault("translate.debounce", 500*time.Millisecond)

	v.SetDefault("log.file", ".saathi-logs/saathi.log")
	v.SetDefault("log.verbose", false)
	v.SetDefault("log.quiet", false)
}

// RegisterFlags defines every command-line flag on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a saathi.yaml config file")
	fs.String("env", ".env", "path to a .env file")
	fs.StringP("name", "n", "User", "your name, used in greetings")
	fs.Int64("seed", 0, "random seed for joke selection (0 = time based)")
	fs.Bool("plain", false, "use a plain readline prompt instead of the full-screen UI")
	fs.StringP("backend", "b", ProviderAuto, "language backend: auto, gemini, openai or none")
	fs.StringP("model", "m", "", "model name for the language backend")
	fs.Duration("backend-timeout", 15*time.Second, "timeout for a single backend call")
	fs.String("speech", SpeechOff, "text-to-speech engine: off, azure or espeak")
	fs.Bool("tts", false, "speak replies at start-up (toggle with 'toggle tts')")
	fs.Bool("disk-cache", true, "persist synthesized audio to disk")
	fs.String("cache-dir", ".saathi-cache", "directory for the audio cache")
	fs.Bool("voice", false, "enable the 'listen' command via local Whisper STT")
	fs.String("whisper-bin", "whisper-cli", "path to the whisper-cpp CLI binary")
	fs.String("whisper-model", "bin/ggml-small.bin", "path to the Whisper GGML model file")
	fs.Duration("listen-timeout", 10*time.Second, "maximum length of one voice capture")
	fs.String("auto-translate", "", "also translate every chat line into this language")
	fs.String("log-file", ".saathi-logs/saathi.log", "file to write logs to (use \"stderr\" to log to console)")
	fs.BoolP("verbose", "v", false, "enable verbose/debug logging")
	fs.BoolP("quiet", "q", false, "disable all logging")
}

// Load builds the configuration. fs must have been populated by
// RegisterFlags and parsed.
func Load(fs *pflag.FlagSet) (*Config, error) {
	if envFile, _ := fs.GetString("env"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SAATHI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v, "backend.gemini_key", "SAATHI_BACKEND_GEMINI_KEY", EnvGeminiKey, EnvGoogleKey)
	bindEnv(v, "backend.openai_key", "SAATHI_BACKEND_OPENAI_KEY", EnvOpenAIKey)
	bindEnv(v, "backend.openai_base_url", "SAATHI_BACKEND_OPENAI_BASE_URL", EnvOpenAIBaseURL)
	bindEnv(v, "speech.azure_key", "SAATHI_SPEECH_AZURE_KEY", EnvAzureSpeechKey)
	bindEnv(v, "speech.azure_region", "SAATHI_SPEECH_AZURE_REGION", EnvAzureSpeechRegion)

	configFile, _ := fs.GetString("config")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("saathi")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "saathi"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	for name, key := range flagKeys {
		if f := fs.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("config: bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()
	cfg.LoadedAt = time.Now()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func bindEnv(v *viper.Viper, key string, envs ...string) {
	_ = v.BindEnv(append([]string{key}, envs...)...)
}

// Validate checks enumerated values and durations.
func (c *Config) Validate() error {
	switch c.Backend.Provider {
	case ProviderAuto, ProviderGemini, ProviderOpenAI, ProviderNone:
	default:
		return fmt.Errorf("config: unknown backend provider %q", c.Backend.Provider)
	}
	switch c.Speech.Engine {
	case SpeechOff, SpeechAzure, SpeechEspeak:
	default:
		return fmt.Errorf("config: unknown speech engine %q", c.Speech.Engine)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("config: backend timeout must be positive, got %s", c.Backend.Timeout)
	}
	if c.Speech.ListenTimeout <= 0 {
		return fmt.Errorf("config: listen timeout must be positive, got %s", c.Speech.ListenTimeout)
	}
	if strings.TrimSpace(c.UserName) == "" {
		c.UserName = "User"
	}
	return nil
}
