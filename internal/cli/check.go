package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "check [topic]",
		Short: "Check whether a topic is already covered",
		Long:  "Score a candidate topic against recorded history and report whether it counts as covered. Read-only.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runCheck,
	}

	RootCmd.AddCommand(cmd)
}

func runCheck(cmd *cobra.Command, args []string) {
	topic := strings.Join(args, " ")

	g, s, err := openGate()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	res, err := g.Check(cmd.Context(), topic)
	if err != nil {
		exitErr("check", err)
	}

	b, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(b))
}
