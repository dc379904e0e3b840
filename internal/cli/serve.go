package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sadopc/pomoclock/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local HTTP API for tasks and settings",
	Long: `Serve the local HTTP API used by companion tools to add and edit tasks and
change settings. The server stops after --idle without requests (0 disables
the idle shutdown).`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config)")
	serveCmd.Flags().Duration("idle", -1, "Shut down after this long without requests (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := openEnv(false)
	if err != nil {
		return err
	}
	defer e.close()

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = e.cfg.ServerAddr
	}
	idle, _ := cmd.Flags().GetDuration("idle")
	if idle < 0 {
		idle = e.cfg.ServerIdleTimeout
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Serving on http://%s\n", addr)
	return web.NewServer(e.store, web.WithLogger(e.log)).Run(ctx, addr, idle)
}
