package cmd

import (
	"context"

	"jobagent/internal/job"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// The decision commands move a single application along the lifecycle
// without touching the browser. They all share the same shape: one job
// id argument and a transition in the store.
func init() {
	rootCmd.AddCommand(
		newDecisionCmd("approve", "Approve a found job for automation", job.StateApplying, "approved by user"),
		newDecisionCmd("reject", "Reject a found job", job.StateRejected, "rejected by user"),
		newDecisionCmd("reopen", "Move a rejected job back to found", job.StateFound, "reopened by user"),
		newDecisionCmd("retry", "Queue a failed job for another automation attempt", job.StateApplying, "retry requested"),
	)
}

func newDecisionCmd(use, short string, target job.State, defaultReason string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " <job-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			decide(cmd, args[0], target, defaultReason)
		},
	}

	cmd.Flags().StringP("reason", "r", "", "reason recorded in the state history")

	return cmd
}

func decide(cmd *cobra.Command, jobID string, target job.State, defaultReason string) {
	ctx := context.Background()

	logger, _, st := mustSetup()
	defer st.Close()

	reason, _ := cmd.Flags().GetString("reason")
	if reason == "" {
		reason = defaultReason
	}

	rec, err := st.Transition(ctx, jobID, target, reason)
	if err != nil {
		logger.Fatal("transitioning the application", zap.Error(err), zap.String("job_id", jobID))
	}

	logger.Info("application transitioned",
		zap.String("job_id", rec.JobID),
		zap.String("state", string(rec.State)),
		zap.String("reason", reason),
	)
}
