package cli

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/topic-gate/internal/server"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the gate over HTTP JSON",
		Long:  "Expose check, record, cache, reset, and stats as HTTP JSON endpoints.",
		Run:   runServe,
	}

	cmd.Flags().String("addr", ":8080", "Listen address")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	addr, _ := cmd.Flags().GetString("addr")

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	g, s, err := openGate()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	h := server.New(g, logger)

	logger.Info("starting topic-gate server",
		"addr", addr,
		"store", getDBPath(),
		"backend", getBackend(),
		"threshold", g.Threshold(),
		"metric", metricFlag)
	if err := http.ListenAndServe(addr, h); err != nil {
		exitErr("serve", err)
	}
}
