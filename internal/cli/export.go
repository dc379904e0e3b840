package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/pomoclock/internal/export"
	"github.com/sadopc/pomoclock/internal/store"
)

var exportCmd = &cobra.Command{
	Use:       "export [csv|json]",
	Short:     "Export every logged session",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"csv", "json"},
	RunE:      runExport,
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Output file (default pomoclock-export-DATE.<format>)")
}

func runExport(cmd *cobra.Command, args []string) error {
	format := args[0]
	var write func([]store.SessionRecord, string) error
	switch format {
	case "csv":
		write = export.ToCSV
	case "json":
		write = export.ToJSON
	default:
		return fmt.Errorf("unknown export format %q (want csv or json)", format)
	}

	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		path = fmt.Sprintf("pomoclock-export-%s.%s", time.Now().Format("2006-01-02"), format)
	}

	e, err := openEnv(false)
	if err != nil {
		return err
	}
	defer e.close()

	sessions, err := e.store.AllSessions()
	if err != nil {
		return err
	}
	if err := write(sessions, path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d sessions to %s\n", len(sessions), path)
	return nil
}
