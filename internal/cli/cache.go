package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "cache [query]",
		Short: "Cache a web-search result",
		Long:  "Append a search snippet to the external cache partition. Cached entries are never scored for similarity.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runCache,
	}

	cmd.Flags().StringP("topic", "t", "", "Topic the search was researching")
	cmd.Flags().String("snippet", "", "Result snippet text")

	RootCmd.AddCommand(cmd)
}

func runCache(cmd *cobra.Command, args []string) {
	topic, _ := cmd.Flags().GetString("topic")
	snippet, _ := cmd.Flags().GetString("snippet")
	query := strings.Join(args, " ")

	g, s, err := openGate()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	entry, err := g.StoreSearch(cmd.Context(), query, topic, snippet)
	if err != nil {
		exitErr("cache", err)
	}

	b, _ := json.MarshalIndent(entry, "", "  ")
	fmt.Println(string(b))
}
