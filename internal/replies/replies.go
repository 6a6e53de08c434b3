// Package replies holds the canned health-information reply table.
// The table maps exact user phrases to fixed answers and is loaded once at
// startup from a UTF-8 JSON file, then never mutated.
package replies

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Catalog is an immutable phrase-to-reply lookup table.
type Catalog struct {
	entries map[string]string
}

// Load reads a JSON object of phrase→reply pairs from path.
// A missing or malformed file is an error so deployments notice a bad mount
// at startup instead of serving silence.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reply table: %w", err)
	}

	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse reply table %s: %w", path, err)
	}

	return &Catalog{entries: entries}, nil
}

// Empty returns a catalog with no entries. Every lookup misses.
func Empty() *Catalog {
	return &Catalog{entries: map[string]string{}}
}

// FromMap builds a catalog from an in-memory table. The map is copied.
func FromMap(entries map[string]string) *Catalog {
	copied := make(map[string]string, len(entries))
	for k, v := range entries {
		copied[k] = v
	}
	return &Catalog{entries: copied}
}

// Lookup returns the canned reply for an exact phrase match.
// Leading and trailing whitespace on the phrase is ignored.
func (c *Catalog) Lookup(phrase string) (string, bool) {
	reply, ok := c.entries[strings.TrimSpace(phrase)]
	return reply, ok
}

// Len returns the number of entries in the catalog.
func (c *Catalog) Len() int {
	return len(c.entries)
}
