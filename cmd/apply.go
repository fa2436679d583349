package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"jobagent/internal/orchestrator"
	"jobagent/internal/platform"
	"jobagent/internal/profile"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var applyCmd = &cobra.Command{
	Use:   "apply <job-id> [<job-id>...]",
	Short: "Drive browser automation for approved jobs, one session at a time",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		apply(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation before starting automation")
}

func apply(cmd *cobra.Command, jobIDs []string) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, config, st := mustSetup()
	defer st.Close()

	if config.Profile == "" {
		logger.Fatal("a profile file is required under the 'profile' key to fill application forms")
	}

	prof, err := profile.Load(config.Profile)
	if err != nil {
		logger.Fatal("loading the applicant profile", zap.Error(err))
	}

	if autoYes, _ := cmd.Flags().GetBool("yes"); !autoYes {
		prompt := promptui.Select{
			Label: "Start browser automation for " + pluralJobs(len(jobIDs)) + "?",
			Items: []string{PromptYes, PromptNo},
		}

		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if action != PromptYes {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	automation := config.Automation
	if automation == nil {
		automation = &AutomationConfig{}
	}

	rt, err := platform.NewRuntime(automation.Headless)
	if err != nil {
		logger.Fatal("starting the browser runtime", zap.Error(err))
	}
	defer rt.Close()

	policy := platform.ParseSubmitPolicy(automation.SubmitPolicy)
	registry := buildRegistry(rt, policy)

	o := orchestrator.New(st, registry, prof, logger, orchestrator.Config{
		Timeout:    automation.Timeout,
		FieldDelay: automation.FieldDelay,
	})

	for _, jobID := range jobIDs {
		if ctx.Err() != nil {
			logger.Info("exiting", zap.String("reason", "interrupted"))
			return
		}

		rec, err := o.Process(ctx, jobID)
		if err != nil {
			logger.Fatal("processing the application", zap.Error(err), zap.String("job_id", jobID))
		}

		logger.Info("application processed",
			zap.String("job_id", rec.JobID),
			zap.String("state", string(rec.State)),
		)
	}
}

func buildRegistry(rt *platform.Runtime, policy platform.SubmitPolicy) *platform.Registry {
	registry := platform.NewRegistry(platform.NewGeneric(rt))

	registry.Register(platform.NewLinkedIn(rt, policy))
	registry.Register(platform.NewGreenhouse(rt, policy))
	registry.Register(platform.NewWorkday(rt, policy))

	return registry
}

func pluralJobs(n int) string {
	if n == 1 {
		return "1 job"
	}
	return fmt.Sprintf("%d jobs", n)
}
