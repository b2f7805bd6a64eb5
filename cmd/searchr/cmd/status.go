package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/searchr/internal/config"
	"github.com/kailas-cloud/searchr/internal/index"
)

type statusInfo struct {
	Dir          string     `json:"dir"`
	DocCount     uint64     `json:"doc_count"`
	LastModified *time.Time `json:"last_modified"`
	IsEmpty      bool       `json:"is_empty"`
}

func newStatusCmd(env *string) *cobra.Command {
	var (
		indexDir   string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the committed index status",
		Long: `Open the index read-only and report its document count, last commit time
and whether it is empty. Fails fast while another process holds the index.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if indexDir == "" {
				cfg, err := loadConfig(*env)
				if err != nil {
					return err
				}
				indexDir = cfg.Index.Dir
			}
			return runStatus(cmd.OutOrStdout(), indexDir, jsonOutput)
		},
	}
	cmd.Flags().StringVar(&indexDir, "index-dir", "", "Index directory (defaults to index.dir from config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output status as JSON")
	return cmd
}

func runStatus(out io.Writer, dir string, asJSON bool) error {
	ix, err := index.OpenReadOnly(dir)
	if err != nil {
		return err
	}
	defer func() { _ = ix.Close() }()

	st, err := ix.Status()
	if err != nil {
		return err
	}
	info := statusInfo{Dir: dir, DocCount: st.DocCount, IsEmpty: st.IsEmpty}
	if !st.LastModified.IsZero() {
		t := st.LastModified.UTC()
		info.LastModified = &t
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	last := "never"
	if info.LastModified != nil {
		last = info.LastModified.Format(time.RFC3339)
	}
	_, err = fmt.Fprintf(out, "Index:         %s\nDocuments:     %d\nLast modified: %s\nEmpty:         %t\n",
		info.Dir, info.DocCount, last, info.IsEmpty)
	return err
}

func loadConfig(env string) (config.Config, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
