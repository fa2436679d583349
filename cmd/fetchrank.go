package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"jobagent/internal/ingest"
	"jobagent/internal/job"
	"jobagent/internal/scorer"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fetchRankCmd = &cobra.Command{
	Use:   "fetch-and-rank",
	Short: "Score scraped listings against the skill set and persist them in the job store",
	Run: func(cmd *cobra.Command, _ []string) {
		fetchAndRank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(fetchRankCmd)

	fetchRankCmd.Flags().Float64P("min-score", "m", 0, "hide jobs scoring below this threshold (they are still persisted)")
}

func fetchAndRank(cmd *cobra.Command) {
	ctx := context.Background()

	logger, config, st := mustSetup()
	defer st.Close()

	if config.Skills == "" {
		logger.Fatal("a skills file is required under the 'skills' key")
	}
	if config.Listings == "" {
		logger.Fatal("a listings file is required under the 'listings' key")
	}

	skills, err := ingest.LoadSkills(config.Skills)
	if err != nil {
		logger.Fatal("loading the skill set", zap.Error(err))
	}

	logger.Info("skill set loaded", zap.Int("count", skills.Len()))

	source, err := ingest.NewFileSource(config.Listings)
	if err != nil {
		logger.Fatal("opening the listings source", zap.Error(err))
	}
	defer source.Close()

	scored := make([]job.ScoredJob, 0)

	for {
		listing, err := source.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Fatal("reading listings", zap.Error(err))
		}

		scored = append(scored, scorer.Score(skills, *listing))
	}

	scorer.Rank(scored)

	for _, sj := range scored {
		if _, err := st.UpsertScored(ctx, sj); err != nil {
			logger.Fatal("persisting a scored job", zap.Error(err), zap.String("job_id", sj.ID))
		}
	}

	logger.Info("listings scored and persisted", zap.Int("count", len(scored)))

	minScore, _ := cmd.Flags().GetFloat64("min-score")
	printRanked(scored, minScore)
}

func printRanked(scored []job.ScoredJob, minScore float64) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tJOB ID\tTITLE\tCOMPANY\tMATCHED")

	shown := 0
	for _, sj := range scored {
		if sj.Score < minScore {
			continue
		}

		fmt.Fprintf(w, "%.2f\t%s\t%s\t%s\t%s\n",
			sj.Score, sj.ID, sj.Title, sj.Company, strings.Join(sj.MatchedSkills, ","))
		shown++
	}

	w.Flush()

	if shown == 0 {
		fmt.Println("no jobs above the score threshold")
	}
}
