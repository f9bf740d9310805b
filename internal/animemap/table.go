package animemap

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"crosswalk/internal/config"
	"crosswalk/internal/logging"
)

//go:embed dataset.json
var embeddedDataset []byte

// Table is the immutable mapping index. Safe for concurrent use without
// locking once built.
type Table struct {
	source    string
	entries   []Entry
	byMAL     map[int64]int
	byKitsu   map[int64]int
	byAniDB   map[int64]int
	byAniList map[int64]int
}

// Load builds the table from the bundled dataset.
func Load(logger *slog.Logger) (*Table, error) {
	return parse(embeddedDataset, "embedded", logger)
}

// LoadFile builds the table from an operator-supplied dataset file.
func LoadFile(path string, logger *slog.Logger) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read anime dataset: %w", err)
	}
	return parse(data, path, logger)
}

// FromConfig loads the configured dataset override when set, the bundled
// dataset otherwise.
func FromConfig(cfg *config.Config, logger *slog.Logger) (*Table, error) {
	if cfg != nil && strings.TrimSpace(cfg.Anime.DatasetPath) != "" {
		return LoadFile(cfg.Anime.DatasetPath, logger)
	}
	return Load(logger)
}

func parse(data []byte, source string, logger *slog.Logger) (*Table, error) {
	log := logging.NewComponentLogger(logger, "animemap")

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse anime dataset %s: %w", source, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("anime dataset %s contains no entries", source)
	}

	titleCaser := cases.Title(language.Und)
	table := &Table{
		source:    source,
		entries:   entries,
		byMAL:     make(map[int64]int, len(entries)),
		byKitsu:   make(map[int64]int, len(entries)),
		byAniDB:   make(map[int64]int, len(entries)),
		byAniList: make(map[int64]int, len(entries)),
	}
	duplicates := 0
	for i := range table.entries {
		if err := table.entries[i].validate(i); err != nil {
			return nil, fmt.Errorf("anime dataset %s: %w", source, err)
		}
		if title := strings.TrimSpace(table.entries[i].Title); title != "" {
			table.entries[i].Title = titleCaser.String(title)
		}
		duplicates += index(table.byMAL, table.entries[i].MALID, i)
		duplicates += index(table.byKitsu, table.entries[i].KitsuID, i)
		duplicates += index(table.byAniDB, table.entries[i].AniDBID, i)
		duplicates += index(table.byAniList, table.entries[i].AniListID, i)
	}

	log.Debug("loaded anime mapping table",
		logging.Int("entry_count", len(table.entries)),
		logging.Int("duplicate_keys", duplicates),
		logging.String("source", source))
	return table, nil
}

// index records the first entry seen for a key; later duplicates are
// reported, not indexed.
func index(m map[int64]int, key int64, i int) int {
	if key <= 0 {
		return 0
	}
	if _, exists := m[key]; exists {
		return 1
	}
	m[key] = i
	return 0
}

// ByMAL looks up the entry keyed by a MyAnimeList id.
func (t *Table) ByMAL(id int64) (Entry, bool) { return t.lookup(t.byMAL, id) }

// ByKitsu looks up the entry keyed by a Kitsu id.
func (t *Table) ByKitsu(id int64) (Entry, bool) { return t.lookup(t.byKitsu, id) }

// ByAniDB looks up the entry keyed by an AniDB id.
func (t *Table) ByAniDB(id int64) (Entry, bool) { return t.lookup(t.byAniDB, id) }

// ByAniList looks up the entry keyed by an AniList id.
func (t *Table) ByAniList(id int64) (Entry, bool) { return t.lookup(t.byAniList, id) }

func (t *Table) lookup(m map[int64]int, id int64) (Entry, bool) {
	if t == nil || id <= 0 {
		return Entry{}, false
	}
	i, ok := m[id]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// Len returns the number of dataset entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Source names where the dataset came from.
func (t *Table) Source() string {
	if t == nil {
		return ""
	}
	return t.source
}
