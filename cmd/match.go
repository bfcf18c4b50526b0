package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"reflect"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/UveshSamol/urbench-ats/internal/logger"
	"github.com/UveshSamol/urbench-ats/internal/match"
	"github.com/UveshSamol/urbench-ats/internal/types"
)

var matchCmd = &cobra.Command{
	Use:   "match CANDIDATE_JSON JOB_JSON",
	Short: "Score a candidate against a job and print the match result",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runMatch(cmd, args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().Bool("high-quality", false, "use the stronger, slower model tier on the fallback backend")
}

func runMatch(cmd *cobra.Command, candidatePath, jobPath string) {
	ctx := cmd.Context()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	var candidate types.CandidateFields
	if err := loadFields(candidatePath, &candidate); err != nil {
		logger.Fatal("loading candidate", zap.Error(err))
	}

	var job types.JobFields
	if err := loadFields(jobPath, &job); err != nil {
		logger.Fatal("loading job", zap.Error(err))
	}

	chain, err := newProviderChain(ctx, config, logger)
	if err != nil {
		logger.Fatal("building provider chain", zap.Error(err))
	}

	highQuality, _ := cmd.Flags().GetBool("high-quality")

	result, err := match.NewEngine(chain, logger).Score(ctx, candidate, job, highQuality)
	if err != nil {
		logger.Fatal("scoring failed", zap.Error(err))
	}

	pretty, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Fatal("encoding result", zap.Error(err))
	}

	fmt.Println(string(pretty))
}

// loadFields reads a JSON fixture into the target struct via mapstructure,
// so the field names match the configuration key style.
func loadFields(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     target,
		DecodeHook: stringToUUIDHook,
	})
	if err != nil {
		return err
	}

	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	return nil
}

func stringToUUIDHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(uuid.UUID{}) {
		return data, nil
	}
	return uuid.Parse(data.(string))
}
