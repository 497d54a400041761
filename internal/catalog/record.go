// Package catalog turns raw fuel station records from the opendata API
// into a typed, queryable in-memory station catalog.
package catalog

import "sort"

// NoServices is the dataset's sentinel text for a station that declared
// having no services. It is kept verbatim so a "no services" station is
// distinguishable from one whose service field failed to decode.
const NoServices = "Aucun service renseigné."

// FuelEntry is one fuel kind sold at a station. The price stays the
// decimal string the dataset publishes; reparsing it to a float risks
// precision and locale bugs for no benefit.
type FuelEntry struct {
	Kind  string `json:"kind"`
	Price string `json:"price"`
}

// ServiceSet is the set of service names offered at a station.
type ServiceSet map[string]struct{}

// NoServicesSet returns the canonical singleton set for a station that
// declared having no services.
func NoServicesSet() ServiceSet {
	return ServiceSet{NoServices: {}}
}

func (s ServiceSet) Add(name string) {
	s[name] = struct{}{}
}

func (s ServiceSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s ServiceSet) Len() int { return len(s) }

// NoneDeclared reports whether the set is the canonical "no services"
// sentinel.
func (s ServiceSet) NoneDeclared() bool {
	return len(s) == 1 && s.Has(NoServices)
}

// Names returns the service names sorted alphabetically.
func (s ServiceSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// StationRecord is one catalog entry. The uppercased address is the
// natural key; the dataset carries no stable numeric identifier.
// Records are immutable after construction and superseded wholesale by
// the next search.
type StationRecord struct {
	Address          string      `json:"address"`
	Coordinate       Coordinate  `json:"coordinate"`
	AutomatedPump247 bool        `json:"automated_pump_24_7"`
	Fuels            []FuelEntry `json:"fuels"`
	Services         ServiceSet  `json:"services,omitempty"`
}
