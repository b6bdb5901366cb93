package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "record [topic]",
		Short: "Record a topic into history",
		Long:  "Normalize and append a topic to history. Not deduplicating: run check first if you want to avoid repeats.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runRecord,
	}

	cmd.Flags().StringP("source", "s", "", "Source ID of the content item produced from this topic")

	RootCmd.AddCommand(cmd)
}

func runRecord(cmd *cobra.Command, args []string) {
	sourceID, _ := cmd.Flags().GetString("source")
	topic := strings.Join(args, " ")

	g, s, err := openGate()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	rec, err := g.Record(cmd.Context(), topic, sourceID)
	if err != nil {
		exitErr("record", err)
	}

	b, _ := json.MarshalIndent(rec, "", "  ")
	fmt.Println(string(b))
}
