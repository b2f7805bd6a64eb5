package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/searchr/internal/domain/search/result"
	"github.com/kailas-cloud/searchr/internal/index"
	searchrepo "github.com/kailas-cloud/searchr/internal/repository/search"
	searchuc "github.com/kailas-cloud/searchr/internal/usecase/search"
)

type searchOptions struct {
	indexDir   string
	page       int
	perPage    int
	sortField  string
	reverse    bool
	jsonOutput bool
}

type searchHitJSON struct {
	ID      int64    `json:"id"`
	Title   string   `json:"title"`
	Snippet string   `json:"snippet"`
	Score   float64  `json:"score"`
	Rank    int      `json:"rank"`
	Terms   []string `json:"terms"`
}

type searchJSON struct {
	Query   string          `json:"query"`
	Page    int             `json:"page"`
	Pages   int             `json:"pages"`
	PerPage int             `json:"per_page"`
	Total   int             `json:"total"`
	Hits    []searchHitJSON `json:"hits"`
}

func newSearchCmd(env *string) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the committed index",
		Long: `Run a query against the index opened read-only.

Examples:
  searchr search 'title:report AND created:>=2024-01'
  searchr search --sort-field updated --reverse 'tags:3'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.indexDir == "" {
				cfg, err := loadConfig(*env)
				if err != nil {
					return err
				}
				opts.indexDir = cfg.Index.Dir
			}
			return runSearch(cmd.Context(), cmd.OutOrStdout(), strings.Join(args, " "), opts)
		},
	}
	cmd.Flags().StringVar(&opts.indexDir, "index-dir", "", "Index directory (defaults to index.dir from config)")
	cmd.Flags().IntVar(&opts.page, "page", 1, "Page number")
	cmd.Flags().IntVar(&opts.perPage, "per-page", 10, "Hits per page")
	cmd.Flags().StringVar(&opts.sortField, "sort-field", "", "Sort by field instead of relevance")
	cmd.Flags().BoolVar(&opts.reverse, "reverse", false, "Reverse the sort order")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	return cmd
}

func runSearch(ctx context.Context, out io.Writer, q string, opts searchOptions) error {
	ix, err := index.OpenReadOnly(opts.indexDir)
	if err != nil {
		return err
	}
	defer func() { _ = ix.Close() }()

	svc := searchuc.New(searchrepo.New(ix)).WithCacheSize(0)
	res, err := svc.Search(ctx, searchuc.Params{
		Query:     q,
		Page:      opts.page,
		PerPage:   opts.perPage,
		SortField: opts.sortField,
		Reverse:   opts.reverse,
	})
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		return formatSearchJSON(out, res)
	}
	return formatSearchText(out, res)
}

func formatSearchText(out io.Writer, res result.Page) error {
	if res.Total == 0 {
		_, err := fmt.Fprintf(out, "No results for %s\n", res.Query)
		return err
	}
	if _, err := fmt.Fprintf(out, "%s: %d hits, page %d of %d\n\n", res.Query, res.Total, res.Page, res.Pages); err != nil {
		return err
	}
	for _, h := range res.Hits {
		if _, err := fmt.Fprintf(out, "%d. [%d] %s (score %.3f)\n", h.Rank+1, h.ID, h.Title, h.Score); err != nil {
			return err
		}
		if h.Snippet != "" {
			if _, err := fmt.Fprintf(out, "   %s\n", h.Snippet); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatSearchJSON(out io.Writer, res result.Page) error {
	hits := make([]searchHitJSON, 0, len(res.Hits))
	for _, h := range res.Hits {
		terms := h.Terms
		if terms == nil {
			terms = []string{}
		}
		hits = append(hits, searchHitJSON{
			ID: h.ID, Title: h.Title, Snippet: h.Snippet,
			Score: h.Score, Rank: h.Rank, Terms: terms,
		})
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(searchJSON{
		Query:   res.Query,
		Page:    res.Page,
		Pages:   res.Pages,
		PerPage: res.PerPage,
		Total:   res.Total,
		Hits:    hits,
	})
}
