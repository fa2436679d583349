package cmd

import (
	"context"
	"fmt"

	"jobagent/internal/ingest"
	"jobagent/internal/insight"
	"jobagent/internal/job"
	"jobagent/internal/secrets"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var insightCmd = &cobra.Command{
	Use:   "insight <job-id>",
	Short: "Generate interview talking points for a tracked job and attach them to its record",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		generateInsight(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(insightCmd)

	insightCmd.Flags().Int("max-log-length", 0, "truncate prompts and responses in debug logs to this many characters")
}

func generateInsight(cmd *cobra.Command, jobID string) {
	ctx := context.Background()

	logger, config, st := mustSetup()
	defer st.Close()

	if config.Skills == "" {
		logger.Fatal("a skills file is required under the 'skills' key")
	}

	skills, err := ingest.LoadSkills(config.Skills)
	if err != nil {
		logger.Fatal("loading the skill set", zap.Error(err))
	}

	rec, err := st.Get(ctx, jobID)
	if err != nil {
		logger.Fatal("getting the application", zap.Error(err), zap.String("job_id", jobID))
	}

	ai := config.AI
	if ai == nil {
		ai = &AIConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: ai.APIKeyFile,
	})
	if err != nil {
		logger.Fatal("loading the gemini api key",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY_FILE environment variable or the 'ai.api-key-file' key in the configuration file"),
		)
	}

	generator, err := insight.NewGenerator(ctx, apiKey, ai.Model)
	if err != nil {
		logger.Fatal("creating the gemini generator", zap.Error(err))
	}

	maxLogLength, _ := cmd.Flags().GetInt("max-log-length")
	advisor := insight.NewAdvisor(generator, logger.With(zap.String("model", generator.Model())), maxLogLength)

	listing := job.Listing{
		ID:          rec.JobID,
		Title:       rec.Title,
		Company:     rec.Company,
		Description: rec.Description,
		SourceURL:   rec.SourceURL,
	}

	text, err := advisor.Advise(ctx, skills, listing)
	if err != nil {
		logger.Fatal("generating talking points", zap.Error(err), zap.String("job_id", jobID))
	}

	if err := st.AttachInsight(ctx, jobID, text); err != nil {
		logger.Fatal("attaching the insight", zap.Error(err), zap.String("job_id", jobID))
	}

	logger.Info("insight attached", zap.String("job_id", jobID))
	fmt.Println(text)
}
