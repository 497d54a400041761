package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Observed keys of the serialized fuel price sub-document.
const (
	fuelNameKey  = "@nom"
	fuelPriceKey = "@valeur"
)

// DecodeFuelPrices decodes the serialized fuel price list embedded in a
// record's "prix" field: a JSON array of objects keyed by "@nom" and
// "@valeur". Elements missing either key are skipped, not fatal; the
// skip count is returned alongside. Source order is preserved, and a
// duplicated fuel kind keeps its first position with the last seen price.
func DecodeFuelPrices(raw string) ([]FuelEntry, int, error) {
	if !utf8.ValidString(raw) {
		return nil, 0, fmt.Errorf("%w: fuel prices are not valid UTF-8", ErrInvalidEncoding)
	}

	var elems []map[string]any
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}

	entries := make([]FuelEntry, 0, len(elems))
	position := make(map[string]int, len(elems))
	skipped := 0
	for _, elem := range elems {
		kind, hasKind := elem[fuelNameKey].(string)
		price, hasPrice := elem[fuelPriceKey].(string)
		if !hasKind || !hasPrice {
			skipped++
			continue
		}
		if i, dup := position[kind]; dup {
			entries[i].Price = price
			continue
		}
		position[kind] = len(entries)
		entries = append(entries, FuelEntry{Kind: kind, Price: price})
	}

	return entries, skipped, nil
}

// DecodeServices decodes the service sub-field. The dataset encoded it
// three ways over time without a version marker, so the shape is sniffed
// from content, in priority order:
//
//  1. the exact "no services" sentinel text;
//  2. a serialized JSON object with a "service" key holding a string list
//     (detected by a curly brace);
//  3. a "//"-delimited plain string.
//
// Only shape 2 can fail; shapes 1 and 3 always succeed.
func DecodeServices(raw string) (ServiceSet, error) {
	if raw == NoServices {
		return NoServicesSet(), nil
	}

	if strings.Contains(raw, "{") {
		var doc struct {
			Service []string `json:"service"`
		}
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
		}
		if doc.Service == nil {
			return nil, fmt.Errorf("%w: service key missing from embedded object", ErrInvalidEncoding)
		}
		set := ServiceSet{}
		for _, name := range doc.Service {
			set.Add(name)
		}
		return set, nil
	}

	set := ServiceSet{}
	for _, part := range strings.Split(raw, "//") {
		part = strings.TrimSpace(part)
		if part != "" {
			set.Add(part)
		}
	}
	return set, nil
}
