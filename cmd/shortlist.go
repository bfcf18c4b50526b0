package cmd

import (
	"log"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/UveshSamol/urbench-ats/internal/logger"
	"github.com/UveshSamol/urbench-ats/internal/match"
	"github.com/UveshSamol/urbench-ats/internal/shortlist"
	"github.com/UveshSamol/urbench-ats/internal/store/postgres"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var prompt = promptui.Select{
	Label: "Score and shortlist this job?",
	Items: []string{PromptYes, PromptNo},
}

var shortlistCmd = &cobra.Command{
	Use:   "shortlist JOB_ID",
	Short: "Score eligible candidates against a job and store the top matches",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runShortlist(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(shortlistCmd)

	shortlistCmd.Flags().BoolP("auto-aprove", "y", false, "do not ask for confirmation before scoring")
}

func runShortlist(cmd *cobra.Command, rawJobID string) {
	ctx := cmd.Context()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	jobID, err := uuid.Parse(rawJobID)
	if err != nil {
		logger.Fatal("parsing job id", zap.Error(err))
	}

	if config.Database == nil || config.Database.URL == "" {
		logger.Fatal("database url is required",
			zap.String("hint", "set DATABASE_URL environment variable or the 'database.url' key in the configuration file"),
		)
	}

	if cmd.Flag("auto-aprove").Value.String() == "false" {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if action != PromptYes {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	chain, err := newProviderChain(ctx, config, logger)
	if err != nil {
		logger.Fatal("building provider chain", zap.Error(err))
	}

	store, err := postgres.Connect(ctx, config.Database.URL)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer store.Close()

	engine := match.NewEngine(chain, logger)

	orch := shortlist.New(store, engine, shortlistConfig(config), logger)

	if err := orch.Run(ctx, jobID); err != nil {
		logger.Fatal("shortlisting failed", zap.Error(err))
	}

	logger.Info("shortlist complete", zap.String("job_id", jobID.String()))
}

func shortlistConfig(config *Config) *shortlist.Config {
	if config.Shortlist == nil {
		return nil
	}
	return &shortlist.Config{
		TopN:        config.Shortlist.TopN,
		PoolLimit:   config.Shortlist.PoolLimit,
		Concurrency: config.Shortlist.Concurrency,
	}
}
