package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mosaic-hrd/website/internal/content"
	"github.com/mosaic-hrd/website/internal/domain"
	"github.com/mosaic-hrd/website/internal/listing"
)

// pageResult is a type-erased page and its facets, ready to print.
type pageResult struct {
	Items       []row        `json:"items"`
	CurrentPage int          `json:"currentPage"`
	TotalPages  int          `json:"totalPages"`
	Total       int          `json:"total"`
	Tags        []domain.Tag `json:"tags"`
}

type row struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Tags string `json:"tags,omitempty"`
}

// query is one fetch request against a collection.
type query struct {
	page    int
	perPage int
	filter  listing.FilterState
	remote  content.Filters
	locale  string
}

type collectionOps struct {
	fetch  func(ctx context.Context, c *content.Client, q query) pageResult
	browse func(ctx context.Context, c *content.Client, q query, maxPages int) []row
}

func opsFor[T domain.Listable](col content.Collection) collectionOps {
	return collectionOps{
		fetch: func(ctx context.Context, c *content.Client, q query) pageResult {
			res, tags := content.FetchPage[T](ctx, c, col, q.page, q.perPage, q.remote, q.locale)
			items := listing.Apply(q.filter, res.Items, tags)
			return pageResult{
				Items:       rows(items),
				CurrentPage: res.CurrentPage,
				TotalPages:  res.TotalPages,
				Total:       res.Total,
				Tags:        tags,
			}
		},
		browse: func(ctx context.Context, c *content.Client, q query, maxPages int) []row {
			ctl := listing.NewController(listing.Remote[T](c, col, q.perPage, q.remote, q.locale))
			defer ctl.Detach()
			return rows(listing.CollectAll(ctx, ctl, maxPages))
		},
	}
}

var collections = map[string]collectionOps{
	content.Projects.Slug:       opsFor[domain.Project](content.Projects),
	content.Activities.Slug:     opsFor[domain.Activity](content.Activities),
	content.Statistics.Slug:     opsFor[domain.Statistic](content.Statistics),
	content.Reports.Slug:        opsFor[domain.Report](content.Reports),
	content.SuccessStories.Slug: opsFor[domain.SuccessStory](content.SuccessStories),
	content.Centers.Slug:        opsFor[domain.Center](content.Centers),
}

func lookupCollection(slug string) (collectionOps, error) {
	ops, ok := collections[slug]
	if !ok {
		return collectionOps{}, fmt.Errorf("unknown collection %q (want one of %s)", slug, strings.Join(content.Slugs(), ", "))
	}
	return ops, nil
}

func rows[T domain.Listable](items []T) []row {
	out := make([]row, len(items))
	for i, it := range items {
		names := make([]string, 0, len(it.ItemTags()))
		for _, t := range it.ItemTags() {
			names = append(names, t.Name)
		}
		out[i] = row{ID: it.ItemID(), Name: it.ItemName(), Tags: strings.Join(names, ", ")}
	}
	return out
}

func newFetchCmd(opts *options) *cobra.Command {
	var (
		page    int
		perPage int
		search  string
		tag     int
		centers string
	)
	cmd := &cobra.Command{
		Use:   "fetch <collection>",
		Short: "Fetch one normalised page of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := lookupCollection(args[0])
			if err != nil {
				return err
			}
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			client, err := contentClient(cfg)
			if err != nil {
				return err
			}

			q := query{
				page:    page,
				perPage: perPage,
				filter:  listing.FilterState{SearchQuery: search},
				remote:  content.Filters{},
				locale:  opts.resolveLocale(cfg),
			}
			if tag > 0 {
				q.filter.SelectedTagID = &tag
			}
			if centers != "" {
				q.remote["center_id"] = centers
			}
			res := ops.fetch(cmd.Context(), client, q)
			return printPage(cmd.OutOrStdout(), opts.output, res)
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "page size; 0 uses the collection default")
	cmd.Flags().StringVarP(&search, "query", "q", "", "client-side name search")
	cmd.Flags().IntVarP(&tag, "tag", "t", 0, "client-side tag facet id")
	cmd.Flags().StringVar(&centers, "center", "", "remote center_id filter")
	return cmd
}

func newBrowseCmd(opts *options) *cobra.Command {
	var maxPages int
	cmd := &cobra.Command{
		Use:   "browse <collection>",
		Short: "Walk every page of a collection, deduplicated by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := lookupCollection(args[0])
			if err != nil {
				return err
			}
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			client, err := contentClient(cfg)
			if err != nil {
				return err
			}
			if maxPages <= 0 {
				maxPages = cfg.Content.MaxPages
			}

			items := ops.browse(cmd.Context(), client, query{locale: opts.resolveLocale(cfg)}, maxPages)
			if opts.output == "json" {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			return printRows(cmd.OutOrStdout(), items)
		},
	}
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "page cap; 0 uses content.max_pages")
	return cmd
}

func printPage(w io.Writer, format string, res pageResult) error {
	if format == "json" {
		return writeJSON(w, res)
	}
	if err := printRows(w, res.Items); err != nil {
		return err
	}
	tags := make([]string, 0, len(res.Tags))
	for _, t := range res.Tags {
		tags = append(tags, strconv.Itoa(t.ID)+"="+t.Name)
	}
	sort.Strings(tags)
	_, err := fmt.Fprintf(w, "\npage %d/%d, %d total\ntags: %s\n", res.CurrentPage, res.TotalPages, res.Total, strings.Join(tags, " "))
	return err
}

func printRows(w io.Writer, items []row) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTAGS")
	for _, r := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", r.ID, r.Name, r.Tags)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
