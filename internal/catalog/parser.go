package catalog

import (
	"strconv"
	"strings"

	"github.com/MattGuil/AppStation/pkg/api"
)

// Legacy record revisions carried integer degrees multiplied by 100000
// in separate string fields.
const legacyCoordScale = 1e5

// Dataset field names, per record revision.
const (
	fieldAddress       = "adresse"
	fieldGeom          = "geom"
	fieldLatitude      = "latitude"
	fieldLongitude     = "longitude"
	fieldAutomatedPump = "horaires_automate_24_24"
	fieldFuelPrices    = "prix"
	fieldServices      = "services_service"
	fieldServicesAlt   = "services"
)

// ParseRecord decodes one raw API record into a StationRecord. Address
// and coordinate are required; the fuel and service sub-fields degrade
// to empty on decode failure so a station with unparsable prices still
// shows up on the map.
func ParseRecord(rec api.Record) (StationRecord, error) {
	address, ok := stringField(rec.Fields, fieldAddress)
	if !ok || address == "" {
		return StationRecord{}, &MissingFieldError{Field: fieldAddress}
	}

	coord, err := parseCoordinate(rec.Fields)
	if err != nil {
		return StationRecord{}, err
	}

	record := StationRecord{
		Address:    strings.ToUpper(address),
		Coordinate: coord,
		Fuels:      []FuelEntry{},
		Services:   ServiceSet{},
	}

	// Fail-open: only the literal "Oui" enables the flag, absence or any
	// other value disables it.
	if pump, ok := stringField(rec.Fields, fieldAutomatedPump); ok {
		record.AutomatedPump247 = pump == "Oui"
	}

	if raw, ok := stringField(rec.Fields, fieldFuelPrices); ok {
		if fuels, _, err := DecodeFuelPrices(raw); err == nil {
			record.Fuels = fuels
		}
	}

	raw, ok := stringField(rec.Fields, fieldServices)
	if !ok {
		raw, ok = stringField(rec.Fields, fieldServicesAlt)
	}
	if ok {
		if services, err := DecodeServices(raw); err == nil {
			record.Services = services
		}
	} else {
		// Neither service field present means the station declared none.
		record.Services = NoServicesSet()
	}

	return record, nil
}

// parseCoordinate normalizes the three coordinate shapes seen across
// record revisions, tried in priority order: a two-element [lat, lon]
// array, a keyed {lat, lon} object, and legacy 1e5-scaled string fields.
func parseCoordinate(fields map[string]any) (Coordinate, error) {
	switch geom := fields[fieldGeom].(type) {
	case []any:
		if len(geom) == 2 {
			lat, okLat := toFloat(geom[0])
			lon, okLon := toFloat(geom[1])
			if okLat && okLon {
				return Coordinate{Latitude: lat, Longitude: lon}, nil
			}
		}
	case map[string]any:
		lat, okLat := toFloat(geom["lat"])
		lon, okLon := toFloat(geom["lon"])
		if okLat && okLon {
			return Coordinate{Latitude: lat, Longitude: lon}, nil
		}
	}

	latRaw, okLat := stringField(fields, fieldLatitude)
	lonRaw, okLon := stringField(fields, fieldLongitude)
	if okLat && okLon {
		lat, errLat := parseScaled(latRaw)
		lon, errLon := parseScaled(lonRaw)
		if errLat == nil && errLon == nil {
			return Coordinate{Latitude: lat, Longitude: lon}, nil
		}
	}

	return Coordinate{}, &MissingFieldError{Field: fieldGeom}
}

// parseScaled parses a legacy scaled coordinate string, tolerating a
// comma decimal separator, and divides it back to degrees.
func parseScaled(s string) (float64, error) {
	s = strings.Replace(s, ",", ".", 1)
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	return v / legacyCoordScale, nil
}

func stringField(fields map[string]any, name string) (string, bool) {
	v, ok := fields[name].(string)
	return v, ok
}

func toFloat(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}
