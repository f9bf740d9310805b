package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"crosswalk/internal/identity"
	"crosswalk/internal/resolver"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var contentType string
	var targets []string
	var seeds seedFlags

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve equivalent identifiers across providers",
		Long: `Resolve takes one or more seed identifiers and returns the equivalent
identifiers in the other provider namespaces. Cached equivalences answer
immediately; anything else walks the provider bridges and persists what it
finds.`,
		Example: `  crosswalk resolve --type movie --tmdb 603
  crosswalk resolve --type series --imdb tt0903747 --target tvmaze
  crosswalk resolve --type anime --mal 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := resolver.Request{
				ContentType: contentType,
				Seeds:       seeds.record(),
				Targets:     targets,
			}
			return ctx.withResolver(func(res *resolver.Resolver) error {
				record, err := res.Resolve(cmd.Context(), req)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, record)
				}
				printRecord(cmd.OutOrStdout(), record)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&contentType, "type", "t", "", "Content type: movie, series, or anime")
	cmd.Flags().StringArrayVar(&targets, "target", nil, "Namespace to resolve (repeatable); default is the native id plus imdb")
	seeds.register(cmd)

	return cmd
}

// seedFlags carries one flag per identifier namespace a resolution can
// start from.
type seedFlags struct {
	tmdb    int64
	tvdb    int64
	imdb    string
	tvmaze  int64
	mal     int64
	kitsu   int64
	anidb   int64
	anilist int64
}

func (s *seedFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&s.tmdb, "tmdb", 0, "TMDB id seed")
	cmd.Flags().Int64Var(&s.tvdb, "tvdb", 0, "TheTVDB id seed")
	cmd.Flags().StringVar(&s.imdb, "imdb", "", "IMDb id seed (ttNNNNNNN)")
	cmd.Flags().Int64Var(&s.tvmaze, "tvmaze", 0, "TVmaze id seed")
	cmd.Flags().Int64Var(&s.mal, "mal", 0, "MyAnimeList id seed")
	cmd.Flags().Int64Var(&s.kitsu, "kitsu", 0, "Kitsu id seed")
	cmd.Flags().Int64Var(&s.anidb, "anidb", 0, "AniDB id seed")
	cmd.Flags().Int64Var(&s.anilist, "anilist", 0, "AniList id seed")
}

func (s *seedFlags) record() identity.Record {
	return identity.Record{
		TMDBID:    s.tmdb,
		TVDBID:    s.tvdb,
		IMDBID:    s.imdb,
		TVmazeID:  s.tvmaze,
		MALID:     s.mal,
		KitsuID:   s.kitsu,
		AniDBID:   s.anidb,
		AniListID: s.anilist,
	}
}

func printRecord(out io.Writer, record identity.Record) {
	kind := string(record.ContentType)
	if kind == "" {
		kind = "unknown"
	}
	fmt.Fprintf(out, "Content type: %s\n", kind)
	fmt.Fprintf(out, "  %-8s %s\n", "tmdb", formatID(record.TMDBID))
	fmt.Fprintf(out, "  %-8s %s\n", "tvdb", formatID(record.TVDBID))
	fmt.Fprintf(out, "  %-8s %s\n", "imdb", formatIMDB(record.IMDBID))
	fmt.Fprintf(out, "  %-8s %s\n", "tvmaze", formatID(record.TVmazeID))
	if record.HasAnimeIDs() {
		fmt.Fprintf(out, "  %-8s %s\n", "mal", formatID(record.MALID))
		fmt.Fprintf(out, "  %-8s %s\n", "kitsu", formatID(record.KitsuID))
		fmt.Fprintf(out, "  %-8s %s\n", "anidb", formatID(record.AniDBID))
		fmt.Fprintf(out, "  %-8s %s\n", "anilist", formatID(record.AniListID))
	}
}
