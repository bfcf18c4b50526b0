package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/UveshSamol/urbench-ats/internal/extract"
	"github.com/UveshSamol/urbench-ats/internal/logger"
	"github.com/UveshSamol/urbench-ats/internal/types"
)

var parseCmd = &cobra.Command{
	Use:   "parse {resume|job} FILE",
	Short: "Extract a structured record from a resume or job description text file",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		parse(cmd.Context(), args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func parse(ctx context.Context, kind, path string) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Fatal("reading document", zap.Error(err))
	}

	chain, err := newProviderChain(ctx, config, logger)
	if err != nil {
		logger.Fatal("building provider chain", zap.Error(err))
	}

	service := extract.NewService(chain, extractConfig(config), logger)

	var record any
	switch kind {
	case types.KindResume:
		record, err = service.ExtractResume(ctx, string(data))
	case "job", types.KindJob:
		record, err = service.ExtractJob(ctx, string(data))
	default:
		logger.Fatal("unknown document kind", zap.String("kind", kind))
	}
	if err != nil {
		logger.Fatal("extraction failed", zap.Error(err))
	}

	pretty, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		logger.Fatal("encoding record", zap.Error(err))
	}

	fmt.Println(string(pretty))
}

func extractConfig(config *Config) *extract.Config {
	if config.Extraction == nil {
		return nil
	}
	return &extract.Config{
		ResumeWordLimit: config.Extraction.ResumeWordLimit,
		JobWordLimit:    config.Extraction.JobWordLimit,
		CacheCapacity:   config.Extraction.CacheCapacity,
		CacheTTL:        time.Duration(config.Extraction.CacheTTLHours) * time.Hour,
	}
}
