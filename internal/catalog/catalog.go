package catalog

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/MattGuil/AppStation/pkg/api"
)

// Catalog holds the stations of one search result set, in API response
// order, indexed by uppercased address. A new search replaces the whole
// catalog; there is no incremental merge.
type Catalog struct {
	records   []StationRecord
	byAddress map[string]int
	dropped   int
}

// LookupKey is the normalization applied to addresses on both the store
// and the query side. The two must stay identical or lookups silently
// fail.
func LookupKey(address string) string {
	return strings.ToUpper(address)
}

// Build parses a batch of raw records into a Catalog. Building is total:
// a record that fails to parse, or that duplicates an already stored
// address, is dropped and counted, never fatal to the batch. On a
// duplicated address the first-inserted record wins.
func Build(records []api.Record, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c := &Catalog{
		records:   make([]StationRecord, 0, len(records)),
		byAddress: make(map[string]int, len(records)),
	}

	for _, raw := range records {
		record, err := ParseRecord(raw)
		if err != nil {
			c.dropped++
			logger.Debug("dropping station record", "record", raw.RecordID, "error", err)
			continue
		}

		key := LookupKey(record.Address)
		if _, exists := c.byAddress[key]; exists {
			c.dropped++
			logger.Debug("dropping duplicate station address", "address", record.Address)
			continue
		}

		c.byAddress[key] = len(c.records)
		c.records = append(c.records, record)
	}

	return c
}

// FindByAddress looks up a station by address under case-insensitive
// comparison. A miss is an empty result, not an error.
func (c *Catalog) FindByAddress(address string) (StationRecord, bool) {
	i, ok := c.byAddress[LookupKey(address)]
	if !ok {
		return StationRecord{}, false
	}
	return c.records[i], true
}

// All returns the stations in API response order.
func (c *Catalog) All() []StationRecord {
	out := make([]StationRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Len returns the number of stations in the catalog.
func (c *Catalog) Len() int { return len(c.records) }

// Dropped returns how many raw records were discarded while building.
func (c *Catalog) Dropped() int { return c.dropped }

// FuelKinds returns the distinct fuel kinds sold across the catalog,
// sorted alphabetically.
func (c *Catalog) FuelKinds() []string {
	seen := make(map[string]struct{})
	for _, record := range c.records {
		for _, fuel := range record.Fuels {
			seen[fuel.Kind] = struct{}{}
		}
	}
	kinds := make([]string, 0, len(seen))
	for kind := range seen {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// ServiceNames returns the distinct service names offered across the
// catalog, sorted alphabetically. The "no services" sentinel is not a
// service and is excluded.
func (c *Catalog) ServiceNames() []string {
	seen := make(map[string]struct{})
	for _, record := range c.records {
		for name := range record.Services {
			if name == NoServices {
				continue
			}
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
