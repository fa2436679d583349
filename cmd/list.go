package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"jobagent/internal/job"
	"jobagent/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked applications, best scored first",
	Run: func(cmd *cobra.Command, _ []string) {
		list(cmd)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("state", "s", "", "only records in this lifecycle state (found, applying, applied, rejected, failed)")
	listCmd.Flags().Float64P("min-score", "m", 0, "only records scoring at or above this threshold")
	listCmd.Flags().StringP("platform", "p", "", "only records with this platform hint")
	listCmd.Flags().Bool("json", false, "print full records as json instead of a table")
}

func list(cmd *cobra.Command) {
	ctx := context.Background()

	logger, _, st := mustSetup()
	defer st.Close()

	filter := store.Filter{}

	if raw, _ := cmd.Flags().GetString("state"); raw != "" {
		state, err := job.ParseState(raw)
		if err != nil {
			logger.Fatal("parsing the state filter", zap.Error(err))
		}
		filter.State = state
	}

	filter.MinScore, _ = cmd.Flags().GetFloat64("min-score")
	filter.Platform, _ = cmd.Flags().GetString("platform")

	records, err := st.Query(ctx, filter)
	if err != nil {
		logger.Fatal("querying the job store", zap.Error(err))
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		pretty, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			logger.Fatal("marshaling records", zap.Error(err))
		}
		fmt.Println(string(pretty))
		return
	}

	if len(records) == 0 {
		fmt.Println("no matching applications")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "JOB ID\tSTATE\tSCORE\tTITLE\tCOMPANY\tLAST ERROR")

	for _, rec := range records {
		score := "-"
		if rec.Scored() {
			score = fmt.Sprintf("%.2f", *rec.Score)
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.JobID, rec.State, score, rec.Title, rec.Company, rec.LastError)
	}

	w.Flush()
}
