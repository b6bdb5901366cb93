package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/topic-gate/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import topic history and web cache from JSON",
		Long:  "Read an export document from stdin and append its entries, preserving original timestamps. A document that fails validation is rejected before anything is written.",
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		exitErr("read stdin", err)
	}

	var d dump
	if err := json.Unmarshal(data, &d); err != nil {
		exitErr("parse json", err)
	}
	for i, r := range d.Topics {
		if r.Topic == "" || r.RecordedAt.IsZero() {
			exitErr("validate", fmt.Errorf("topic %d missing required fields", i))
		}
	}
	for i, e := range d.Cache {
		if e.Query == "" || e.CreatedAt.IsZero() {
			exitErr("validate", fmt.Errorf("cache entry %d missing required fields", i))
		}
	}

	_, s, err := openGate()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	for _, r := range d.Topics {
		if _, err := s.AppendTopic(cmd.Context(), store.AppendTopicParams{
			Topic:      r.Topic,
			SourceID:   r.SourceID,
			RecordedAt: r.RecordedAt,
		}); err != nil {
			exitErr("import topic", err)
		}
	}
	for _, e := range d.Cache {
		if _, err := s.AppendCache(cmd.Context(), store.AppendCacheParams{
			Query:     e.Query,
			Topic:     e.Topic,
			Snippet:   e.Snippet,
			CreatedAt: e.CreatedAt,
		}); err != nil {
			exitErr("import cache entry", err)
		}
	}

	fmt.Printf(`{"ok":true,"topics":%d,"cache":%d}`+"\n", len(d.Topics), len(d.Cache))
}
