package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/pomoclock/internal/clock"
	"github.com/sadopc/pomoclock/internal/tui"
	"github.com/sadopc/pomoclock/internal/web"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the terminal UI (default)",
	RunE:  runTUI,
}

func init() {
	addRunFlags(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("serve", false, "Also serve the local HTTP API while the UI runs")
	cmd.Flags().String("export-dir", "", "Directory for exports (default home directory)")
}

func runTUI(cmd *cobra.Command, args []string) error {
	serve, _ := cmd.Flags().GetBool("serve")
	exportDir, _ := cmd.Flags().GetString("export-dir")

	e, err := openEnv(true)
	if err != nil {
		return err
	}
	defer e.close()

	events := &clock.Buffer{}
	c, err := e.newClock(events)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serve {
		srv := web.NewServer(e.store, web.WithLogger(e.log))
		go func() {
			if err := srv.Run(ctx, e.cfg.ServerAddr, e.cfg.ServerIdleTimeout); err != nil {
				e.log.Error("http server", "err", err)
			}
		}()
	}

	opts := []tui.Option{tui.WithLogger(e.log)}
	if exportDir != "" {
		opts = append(opts, tui.WithExportDir(exportDir))
	}
	app := tui.NewApp(c, e.store, events, opts...)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	e.log.Info("starting ui")
	_, runErr := p.Run()

	// The UI loop has stopped, so the clock can be touched from here.
	c.Terminate(time.Now())
	e.log.Info("stopped")

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("run ui: %w", runErr)
	}
	return nil
}
