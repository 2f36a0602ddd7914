package commands

import (
	"errors"

	"github.com/spf13/viper"

	"clinex/pkg/schema"
)

// Config is the process-wide configuration, loaded once at startup and
// threaded into each command.
type Config struct {
	Keywords   []string `mapstructure:"keywords"`
	TextColumn string   `mapstructure:"text_column"`
	Notes      string   `mapstructure:"notes"`
	Filtered   string   `mapstructure:"filtered"`
	Results    string   `mapstructure:"results"`
	Gold       string   `mapstructure:"gold"`
	SchemaPath string   `mapstructure:"schema"`
	Provider   string   `mapstructure:"provider"`
	Workers    int      `mapstructure:"workers"`
	Format     string   `mapstructure:"format"`
	Output     string   `mapstructure:"output"`
	LogDir     string   `mapstructure:"log_dir"`
	Tolerance  float64  `mapstructure:"tolerance"`

	Model     ModelConfig     `mapstructure:"model"`
	Gemini    ProviderConfig  `mapstructure:"gemini"`
	OpenAI    ProviderConfig  `mapstructure:"openai"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Ollama    OllamaConfig    `mapstructure:"ollama"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

type ModelConfig struct {
	Name         string `mapstructure:"name"`
	MockResponse string `mapstructure:"mock_response"`
}

type ProviderConfig struct {
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MaxRetries     int    `mapstructure:"max_retries"`
	BackoffMillis  int    `mapstructure:"backoff_millis"`
}

type AnthropicConfig struct {
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MaxRetries     int    `mapstructure:"max_retries"`
	BackoffMillis  int    `mapstructure:"backoff_millis"`
	MaxTokens      int    `mapstructure:"max_tokens"`
}

type OllamaConfig struct {
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type CacheConfig struct {
	Dir      string `mapstructure:"dir"`
	TTLHours int    `mapstructure:"ttl_hours"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{}
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".clinex")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadSchema resolves the extraction schema: an explicit path wins, then the
// configured path, then the built-in diabetes/BP schema.
func loadSchema(flagPath string) (schema.Schema, error) {
	path := resolveString(flagPath, appConfig.SchemaPath)
	if path == "" {
		return schema.Default(), nil
	}
	return schema.Load(path)
}
