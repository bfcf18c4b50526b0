package cmd

import (
	"context"
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/UveshSamol/urbench-ats/internal/provider"
	"github.com/UveshSamol/urbench-ats/internal/provider/anthropic"
	"github.com/UveshSamol/urbench-ats/internal/provider/gemini"
	"github.com/UveshSamol/urbench-ats/internal/secrets"
)

const (
	app = "urbench"
)

type Config struct {
	Providers  *ProvidersConfig  `mapstructure:"providers"`
	Extraction *ExtractionConfig `mapstructure:"extraction"`
	Shortlist  *ShortlistConfig  `mapstructure:"shortlist"`
	Database   *DatabaseConfig   `mapstructure:"database"`
}

type ProvidersConfig struct {
	Gemini    *GeminiConfig    `mapstructure:"gemini"`
	Anthropic *AnthropicConfig `mapstructure:"anthropic"`
}

type GeminiConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type AnthropicConfig struct {
	APIKeyFile  string `mapstructure:"api-key-file"`
	FastModel   string `mapstructure:"fast-model"`
	StrongModel string `mapstructure:"strong-model"`
}

type ExtractionConfig struct {
	ResumeWordLimit int `mapstructure:"resume-word-limit"`
	JobWordLimit    int `mapstructure:"job-word-limit"`
	CacheCapacity   int `mapstructure:"cache-capacity"`
	CacheTTLHours   int `mapstructure:"cache-ttl-hours"`
}

type ShortlistConfig struct {
	TopN        int `mapstructure:"top-n"`
	PoolLimit   int `mapstructure:"pool-limit"`
	Concurrency int `mapstructure:"concurrency"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "urbench is a cli for extracting, matching and shortlisting SAP recruiting documents with LLM backends",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("providers.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("providers.anthropic.api-key-file", "ANTHROPIC_API_KEY_FILE"); err != nil {
		log.Fatalf("binding ANTHROPIC_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("database.url", "DATABASE_URL"); err != nil {
		log.Fatalf("binding DATABASE_URL environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is urbench.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// A missing config file is fine: every key has an env or default.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}

	return config, nil
}

// newProviderChain builds the gateway: Gemini first, Anthropic as the
// fallback when configured. A missing Gemini key is fatal since the
// pipeline has no primary without it.
func newProviderChain(ctx context.Context, config *Config, logger *zap.Logger) (*provider.Chain, error) {
	providers := make([]provider.Provider, 0, 2)

	var geminiCfg GeminiConfig
	if config.Providers != nil && config.Providers.Gemini != nil {
		geminiCfg = *config.Providers.Gemini
	}

	geminiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: geminiCfg.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, &provider.Error{Provider: "gemini", Kind: provider.KindUnconfigured, Err: err}
	}

	primary, err := gemini.New(ctx, geminiKey, geminiCfg.Model, logger)
	if err != nil {
		return nil, err
	}
	providers = append(providers, primary)

	var anthropicCfg AnthropicConfig
	if config.Providers != nil && config.Providers.Anthropic != nil {
		anthropicCfg = *config.Providers.Anthropic
	}

	anthropicKey, err := secrets.Load(secrets.Source{
		Name: "anthropic api key",
		File: anthropicCfg.APIKeyFile,
		Env:  "ANTHROPIC_API_KEY",
	})
	if err != nil {
		logger.Warn("anthropic backend not configured, running without fallback", zap.Error(err))
	} else {
		secondary, err := anthropic.New(anthropicKey, anthropicCfg.FastModel, anthropicCfg.StrongModel, logger)
		if err != nil {
			return nil, err
		}
		providers = append(providers, secondary)
	}

	return provider.NewChain(logger, providers...), nil
}
