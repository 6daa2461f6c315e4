package cmd

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/freementors/internal/config"
	"github.com/felixgeelhaar/freementors/internal/health"
	"github.com/felixgeelhaar/freementors/internal/ux"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the API, credential storage and stored session",
	Long: `Run health checks against everything the client depends on:

  api       the GraphQL endpoint answers
  storage   the home directory is writable (file backend)
  redis     the redis server answers (redis backend)
  session   the stored session is still accepted

Exits non-zero when a check is unhealthy. Being signed out is reported
as degraded.

Examples:
  freementors doctor
  freementors doctor --format json`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().Duration("timeout", 5*time.Second, "timeout per check")
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")

	e, err := newEnv(cmd, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	manager := health.NewManager().WithTimeout(timeout)
	manager.AddChecker(health.NewAPIChecker(e.client, e.cfg.API.URL))
	switch e.cfg.Storage.Backend {
	case config.BackendRedis:
		manager.AddChecker(health.NewRedisChecker(e.redis, e.cfg.Storage.Redis.Addr))
	case config.BackendFile:
		manager.AddChecker(health.NewDirChecker("storage", e.cfg.Storage.Dir))
	}
	manager.AddChecker(health.NewSessionChecker(e.app.Store()))

	reports := manager.Check(cmd.Context())
	for _, r := range reports {
		e.logger.Debug("health check", "name", r.Name, "status", r.Status.String(), "latency", r.Latency)
	}

	view := &doctorView{Status: health.OverallStatus(reports), Checks: reports}
	if err := e.Print(view); err != nil {
		return err
	}
	if view.Status == health.StatusUnhealthy {
		return errors.New("one or more health checks failed")
	}
	return nil
}

type doctorView struct {
	Status health.Status   `json:"status" yaml:"status"`
	Checks []health.Report `json:"checks" yaml:"checks"`
}

// WriteText implements ux.TextWriter
func (v *doctorView) WriteText(w io.Writer, styles ux.Styles) error {
	for _, r := range v.Checks {
		mark := styles.Success.Render("✓")
		switch r.Status {
		case health.StatusDegraded:
			mark = styles.Warning.Render("!")
		case health.StatusUnhealthy:
			mark = styles.Error.Render("✗")
		}
		fmt.Fprintf(w, "%s %-8s %s %s\n", mark, r.Name, r.Message,
			styles.Muted.Render(fmt.Sprintf("(%s)", r.Latency.Round(time.Millisecond))))

		keys := make([]string, 0, len(r.Details))
		for k := range r.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "    %s: %s\n", k, strings.TrimSpace(r.Details[k]))
		}
	}
	fmt.Fprintf(w, "\nOverall: %s\n", styles.Label.Render(v.Status.String()))
	return nil
}
