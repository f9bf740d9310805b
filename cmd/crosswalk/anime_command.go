package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"crosswalk/internal/animemap"
)

func newAnimeCommand(ctx *commandContext) *cobra.Command {
	animeCmd := &cobra.Command{
		Use:   "anime",
		Short: "Query the static anime mapping table",
	}

	animeCmd.AddCommand(newAnimeLookupCommand(ctx))

	return animeCmd
}

func newAnimeLookupCommand(ctx *commandContext) *cobra.Command {
	var malID int64
	var kitsuID int64
	var anidbID int64
	var anilistID int64

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Look up an anime identifier in the static table",
		Long: `Lookup reads the bundled (or configured) anime mapping dataset directly.
It never touches the cache database or the provider bridges.`,
		Example: `  crosswalk anime lookup --mal 1
  crosswalk anime lookup --anilist 1 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			namespace, id, err := pickAnimeNamespace(malID, kitsuID, anidbID, anilistID)
			if err != nil {
				return err
			}
			return ctx.withAnimeTable(func(table *animemap.Table) error {
				var entry animemap.Entry
				var found bool
				switch namespace {
				case "mal":
					entry, found = table.ByMAL(id)
				case "kitsu":
					entry, found = table.ByKitsu(id)
				case "anidb":
					entry, found = table.ByAniDB(id)
				case "anilist":
					entry, found = table.ByAniList(id)
				}
				if !found {
					return fmt.Errorf("no static mapping for %s %d", namespace, id)
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, entry)
				}
				printAnimeEntry(cmd.OutOrStdout(), entry)
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&malID, "mal", 0, "MyAnimeList id")
	cmd.Flags().Int64Var(&kitsuID, "kitsu", 0, "Kitsu id")
	cmd.Flags().Int64Var(&anidbID, "anidb", 0, "AniDB id")
	cmd.Flags().Int64Var(&anilistID, "anilist", 0, "AniList id")

	return cmd
}

func pickAnimeNamespace(mal, kitsu, anidb, anilist int64) (string, int64, error) {
	type candidate struct {
		namespace string
		id        int64
	}
	picked := make([]candidate, 0, 1)
	for _, c := range []candidate{
		{"mal", mal},
		{"kitsu", kitsu},
		{"anidb", anidb},
		{"anilist", anilist},
	} {
		if c.id != 0 {
			picked = append(picked, c)
		}
	}
	if len(picked) != 1 {
		return "", 0, fmt.Errorf("specify exactly one of --mal, --kitsu, --anidb, --anilist")
	}
	if picked[0].id < 0 {
		return "", 0, fmt.Errorf("invalid %s id %d", picked[0].namespace, picked[0].id)
	}
	return picked[0].namespace, picked[0].id, nil
}

func printAnimeEntry(out io.Writer, entry animemap.Entry) {
	if entry.Title != "" {
		fmt.Fprintf(out, "Title: %s\n", entry.Title)
	}
	if entry.Type != "" {
		fmt.Fprintf(out, "Type:  %s\n", entry.Type)
	}
	fmt.Fprintf(out, "  %-8s %s\n", "mal", formatID(entry.MALID))
	fmt.Fprintf(out, "  %-8s %s\n", "kitsu", formatID(entry.KitsuID))
	fmt.Fprintf(out, "  %-8s %s\n", "anidb", formatID(entry.AniDBID))
	fmt.Fprintf(out, "  %-8s %s\n", "anilist", formatID(entry.AniListID))
	fmt.Fprintf(out, "  %-8s %s\n", "tmdb", formatID(entry.TMDBID))
	fmt.Fprintf(out, "  %-8s %s\n", "tvdb", formatID(entry.TVDBID))
	fmt.Fprintf(out, "  %-8s %s\n", "imdb", formatIMDB(entry.IMDBID))
	fmt.Fprintf(out, "  %-8s %s\n", "tvmaze", formatID(entry.TVmazeID))
}
