package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yhlin/chipmon/internal/scheduler"
	"github.com/yhlin/chipmon/internal/scheduler/jobs"
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the daily enrichment on a cron schedule",
	Long: `Starts the scheduler. The enrichment batch runs every weekday at
18:00, after the exchange after-trading tables have settled; the market
risk dashboard follows at 18:30. Reports are written to the configured
output directory.

Example:
  go run ./cmd/chipmon schedule
  go run ./cmd/chipmon schedule --now`,
	RunE: runSchedule,
}

var scheduleNow bool

func init() {
	rootCmd.AddCommand(scheduleCmd)

	// Flags
	scheduleCmd.Flags().BoolVar(&scheduleNow, "now", false, "also trigger one run immediately")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	fmt.Println("=== chipmon Scheduler ===")

	a, err := buildApp()
	if err != nil {
		return err
	}

	sched := scheduler.New(a.log)
	enrichJob := jobs.NewDailyEnrichmentJob(a.orch, a.list, a.writer, nil, a.log)
	riskJob := jobs.NewDailyRiskJob(a.riskMon, a.writer, true, a.log)
	for _, job := range []scheduler.Job{enrichJob, riskJob} {
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("add job %s: %w", job.Name(), err)
		}
	}

	sched.Start()
	defer sched.Stop()

	if scheduleNow {
		if err := sched.RunJob(enrichJob.Name()); err != nil {
			return err
		}
		if err := sched.RunJob(riskJob.Name()); err != nil {
			return err
		}
	}

	fmt.Printf("\n✅ Scheduler running (%s at %s, %s at %s)\n",
		enrichJob.Name(), enrichJob.Schedule(), riskJob.Name(), riskJob.Schedule())
	fmt.Println("Press Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return nil
}
