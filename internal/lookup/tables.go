package lookup

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// DateLayout is the layout of seed start dates
const DateLayout = "2006-01-02"

//go:embed seed/months.json5
var defaultSeed []byte

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// MonthStart is a known month start date and the month's announced length
type MonthStart struct {
	Start time.Time // midnight UTC of the first day
	Days  int
}

// Tables is one edition of the month-start seed data
type Tables struct {
	Edition     string
	DefaultYear string
	starts      map[string]MonthStart
}

// seedFile is the on-disk shape of the seed data
type seedFile struct {
	Edition     string               `json:"edition"`
	DefaultYear string               `json:"defaultYear"`
	Months      map[string]seedMonth `json:"months"`
}

type seedMonth struct {
	Start string `json:"start"`
	Days  int    `json:"days"`
}

// Default returns the seed edition compiled into the binary
func Default() (*Tables, error) {
	var seed seedFile
	if err := json5.Unmarshal(defaultSeed, &seed); err != nil {
		return nil, fmt.Errorf("parsing embedded seed: %w", err)
	}
	return newTables(seed)
}

// Load reads seed data from path. An empty path selects the embedded edition.
// A sibling "<name>.local.<ext>" file, when present, is merged over the base file,
// so a single month can be corrected without copying the whole table.
func Load(path string) (*Tables, error) {
	if path == "" {
		return Default()
	}

	base, err := readSeed(path)
	if err != nil {
		return nil, err
	}
	if base == nil {
		return nil, fmt.Errorf("seed file %s: %w", path, os.ErrNotExist)
	}

	local, err := readSeed(localPath(path))
	if err != nil {
		return nil, err
	}
	if local != nil {
		if err := mergo.Merge(base, *local, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merging seed overrides: %w", err)
		}
	}

	return newTables(*base)
}

// readSeed returns nil without error when the file does not exist
func readSeed(path string) (*seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var seed seedFile
	if err := json5.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed file %s: %w", path, err)
	}
	return &seed, nil
}

// localPath turns "dir/months.json5" into "dir/months.local.json5"
func localPath(path string) string {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+".local"+ext)
}

func newTables(seed seedFile) (*Tables, error) {
	if seed.DefaultYear != "" && !yearPattern.MatchString(seed.DefaultYear) {
		return nil, fmt.Errorf("seed defaultYear %q is not a 4-digit year", seed.DefaultYear)
	}

	t := &Tables{
		Edition:     seed.Edition,
		DefaultYear: seed.DefaultYear,
		starts:      make(map[string]MonthStart, len(seed.Months)),
	}

	for name, m := range seed.Months {
		start, err := time.Parse(DateLayout, m.Start)
		if err != nil {
			return nil, fmt.Errorf("seed month %q: invalid start %q: %w", name, m.Start, err)
		}
		if m.Days != 29 && m.Days != 30 {
			return nil, fmt.Errorf("seed month %q: days must be 29 or 30, got %d", name, m.Days)
		}
		t.starts[Canonical(name)] = MonthStart{Start: start, Days: m.Days}
	}

	return t, nil
}

// Start returns the known start of a month, looked up by any accepted spelling
func (t *Tables) Start(name string) (MonthStart, bool) {
	if t == nil {
		return MonthStart{}, false
	}
	s, ok := t.starts[Canonical(name)]
	return s, ok
}

// Len returns the number of months with a known start
func (t *Tables) Len() int {
	if t == nil {
		return 0
	}
	return len(t.starts)
}
