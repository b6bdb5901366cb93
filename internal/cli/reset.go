package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/topic-gate/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:       "reset [topics|web|all]",
		Short:     "Clear topic history, the web cache, or both",
		Long:      "Destructive. Clears the given partition and prints how many entries were removed.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"topics", "web", "all"},
		Run:       runReset,
	}

	RootCmd.AddCommand(cmd)
}

func runReset(cmd *cobra.Command, args []string) {
	g, s, err := openGate()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sum, err := g.Reset(cmd.Context(), model.ResetScope(args[0]))
	if err != nil {
		exitErr("reset", err)
	}

	b, _ := json.MarshalIndent(sum, "", "  ")
	fmt.Println(string(b))
}
