package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/topic-gate/internal/model"
)

// dump is the export/import document: both partitions in one JSON object.
type dump struct {
	Topics []model.TopicRecord `json:"topics"`
	Cache  []model.CacheEntry  `json:"cache"`
}

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export topic history and web cache as JSON",
		Long:  "Dump both partitions as one JSON document, in insertion order. Pairs with import.",
		Run:   runExport,
	}

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	_, s, err := openGate()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	topics, err := s.LoadTopics(cmd.Context())
	if err != nil {
		exitErr("export topics", err)
	}
	cache, err := s.LoadCache(cmd.Context())
	if err != nil {
		exitErr("export cache", err)
	}

	b, _ := json.MarshalIndent(dump{Topics: topics, Cache: cache}, "", "  ")
	fmt.Println(string(b))
}
