// Package geoip indexes an MMDB country database so GEOIP rules can be
// annotated with the number of networks their code covers.
package geoip

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/oschwald/maxminddb-golang"
)

// Catalog maps upper-cased country or category codes to network counts.
type Catalog struct {
	mu     sync.RWMutex
	counts map[string]int
	total  int
}

func NewCatalog() *Catalog {
	return &Catalog{
		counts: make(map[string]int),
	}
}

// Open reads and indexes the MMDB file at path.
func Open(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mmdb: %w", err)
	}
	c := NewCatalog()
	if err := c.Load(data); err != nil {
		return nil, err
	}
	return c, nil
}

// Load parses the MMDB bytes and rebuilds the index
func (c *Catalog) Load(data []byte) error {
	db, err := maxminddb.FromBytes(data)
	if err != nil {
		return fmt.Errorf("failed to open mmdb: %w", err)
	}
	defer db.Close()

	counts := make(map[string]int)
	total := 0

	networks := db.Networks(maxminddb.SkipAliasedNetworks)
	for networks.Next() {
		var record interface{}
		if _, err := networks.Network(&record); err != nil {
			continue
		}
		code := recordCode(record)
		if code == "" {
			continue
		}
		counts[strings.ToUpper(code)]++
		total++
	}
	if err := networks.Err(); err != nil {
		return fmt.Errorf("walk mmdb: %w", err)
	}

	c.mu.Lock()
	c.counts = counts
	c.total = total
	c.mu.Unlock()

	return nil
}

// recordCode extracts the code from the record layouts seen in the wild:
// a bare string (geoip-lite), MaxMind's country.iso_code, or a flat
// iso_code/code field.
func recordCode(record interface{}) string {
	switch v := record.(type) {
	case string:
		return v
	case map[string]interface{}:
		if country, ok := v["country"].(map[string]interface{}); ok {
			if iso, ok := country["iso_code"].(string); ok {
				return iso
			}
			return ""
		}
		if iso, ok := v["iso_code"].(string); ok {
			return iso
		}
		if s, ok := v["code"].(string); ok {
			return s
		}
	}
	return ""
}

// Networks returns the number of networks for code.
func (c *Catalog) Networks(code string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n, ok := c.counts[strings.ToUpper(strings.TrimSpace(code))]
	return n, ok
}

// Total returns the number of indexed networks.
func (c *Catalog) Total() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.total
}
