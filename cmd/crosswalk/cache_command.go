package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"crosswalk/internal/cachestore"
	"crosswalk/internal/identity"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the equivalence cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheSearchCommand(ctx))
	cacheCmd.AddCommand(newCacheAddCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	cacheCmd.AddCommand(newCacheOptimizeCommand(ctx))

	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show equivalence cache usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *cachestore.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, stats)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Rows:    %d (%d movie, %d series)\n", stats.TotalRows, stats.MovieRows, stats.SeriesRows)
				fmt.Fprintf(out, "Size:    %s on disk\n", humanBytes(stats.DatabaseBytes))
				fmt.Fprintf(out, "Limits:  %d day TTL, %d row cap\n", stats.TTLDays, stats.MaxRows)
				if stats.OldestUpdated != nil && stats.NewestUpdated != nil {
					fmt.Fprintf(out, "Updated: %s to %s\n", formatStamp(*stats.OldestUpdated), formatStamp(*stats.NewestUpdated))
				}
				return nil
			})
		},
	}
}

func newCacheSearchCommand(ctx *commandContext) *cobra.Command {
	var idValue string
	var typeValue string
	var limit int
	var offset int

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find cached rows matching an identifier",
		RunE: func(cmd *cobra.Command, args []string) error {
			contentType, err := parseOptionalContentType(typeValue)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *cachestore.Store) error {
				rows, err := store.Search(cmd.Context(), idValue, contentType, limit, offset)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					if rows == nil {
						rows = []cachestore.Row{}
					}
					return writeJSON(cmd, map[string]any{"results": rows})
				}
				out := cmd.OutOrStdout()
				if len(rows) == 0 {
					fmt.Fprintln(out, "No cached rows match")
					return nil
				}
				printRows(out, searchHeaders, searchRows(rows), searchAligns)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&idValue, "id", "", "Identifier value to match in any namespace")
	cmd.Flags().StringVarP(&typeValue, "type", "t", "", "Restrict to movie or series rows")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum rows to return (default 50, capped at 500)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Rows to skip before returning results")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

var (
	searchHeaders = []string{"ID", "Type", "TMDB", "TVDB", "IMDb", "TVmaze", "Updated"}
	searchAligns  = []columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft, alignRight, alignLeft}
)

func searchRows(rows []cachestore.Row) [][]string {
	rendered := make([][]string, 0, len(rows))
	for _, row := range rows {
		rendered = append(rendered, []string{
			strconv.FormatInt(row.ID, 10),
			string(row.ContentType),
			formatID(row.TMDBID),
			formatID(row.TVDBID),
			formatIMDB(row.IMDBID),
			formatID(row.TVmazeID),
			formatStamp(row.UpdatedAt),
		})
	}
	return rendered
}

func newCacheAddCommand(ctx *commandContext) *cobra.Command {
	var typeValue string
	var tmdbID int64
	var tvdbID int64
	var imdbID string
	var tvmazeID int64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Store a manual equivalence mapping",
		Long: `Add persists an operator-supplied equivalence row. The mapping needs a
content type and at least two identifiers; the resolver then serves it like
any bridge-discovered equivalence.`,
		Example: `  crosswalk cache add --type series --tvdb 81189 --imdb tt0903747`,
		RunE: func(cmd *cobra.Command, args []string) error {
			record := identity.Record{
				ContentType: identity.ContentType(typeValue),
				TMDBID:      tmdbID,
				TVDBID:      tvdbID,
				IMDBID:      imdbID,
				TVmazeID:    tvmazeID,
			}
			return ctx.withStore(func(store *cachestore.Store) error {
				stored, err := store.AddMapping(cmd.Context(), record)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, stored)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "Stored mapping:")
				printRecord(out, stored)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&typeValue, "type", "t", "", "Content type: movie or series")
	cmd.Flags().Int64Var(&tmdbID, "tmdb", 0, "TMDB id")
	cmd.Flags().Int64Var(&tvdbID, "tvdb", 0, "TheTVDB id")
	cmd.Flags().StringVar(&imdbID, "imdb", "", "IMDb id (ttNNNNNNN)")
	cmd.Flags().Int64Var(&tvmazeID, "tvmaze", 0, "TVmaze id")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var olderThanDays int

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached equivalence rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("older-than-days") && olderThanDays < 0 {
				return errors.New("--older-than-days must be a non-negative integer")
			}
			return ctx.withStore(func(store *cachestore.Store) error {
				var removed int64
				var err error
				if cmd.Flags().Changed("older-than-days") {
					removed, err = store.Expire(cmd.Context(), olderThanDays)
				} else {
					removed, err = store.ClearAll(cmd.Context())
				}
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]any{"removed": removed})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached rows\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&olderThanDays, "older-than-days", 0, "Only remove rows last updated more than N days ago")

	return cmd
}

func newCacheOptimizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "optimize",
		Short: "Run a cache maintenance pass now",
		Long:  "Optimize expires rows past their TTL, evicts the oldest rows above the size cap, and compacts the database file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *cachestore.Store) error {
				result, err := store.Optimize(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, result)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Expired %d, evicted %d (%d ms)\n", result.Expired, result.Evicted, result.DurationMS)
				return nil
			})
		},
	}
}

// parseOptionalContentType maps an empty flag value to the unfiltered
// search.
func parseOptionalContentType(value string) (identity.ContentType, error) {
	if value == "" {
		return "", nil
	}
	contentType, err := identity.ParseContentType(value)
	if err != nil {
		return "", errors.New("--type must be movie or series")
	}
	return contentType, nil
}
