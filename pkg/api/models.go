package api

import "encoding/json"

// SearchResponse represents a response from the opendata records search API.
// The v1 records API nests hits under "records" with a total in "nhits";
// the v2.1 explore API uses "results" and "total_count". Both are accepted.
type SearchResponse struct {
	Nhits      int      `json:"nhits"`
	TotalCount int      `json:"total_count"`
	Records    []Record `json:"records"`
	Results    []Record `json:"results"`
}

// AllRecords returns the record hits regardless of which response key the
// API used, v1 records first.
func (r *SearchResponse) AllRecords() []Record {
	if len(r.Records) == 0 {
		return r.Results
	}
	if len(r.Results) == 0 {
		return r.Records
	}
	all := make([]Record, 0, len(r.Records)+len(r.Results))
	all = append(all, r.Records...)
	all = append(all, r.Results...)
	return all
}

// Total returns the hit count reported by whichever API version answered.
func (r *SearchResponse) Total() int {
	if r.Nhits > 0 {
		return r.Nhits
	}
	return r.TotalCount
}

// Record is a single station record. The dataset evolved without a schema
// version marker, so the per-station payload stays an untyped fields map
// and shape detection happens downstream.
type Record struct {
	DatasetID string         `json:"datasetid"`
	RecordID  string         `json:"recordid"`
	Fields    map[string]any `json:"fields"`
}

// UnmarshalJSON accepts both the v1 shape (nested "fields" map) and the
// v2.1 explore shape, where the fields are flattened into the record object.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Record(p)
	if r.Fields == nil {
		var flat map[string]any
		if err := json.Unmarshal(data, &flat); err != nil {
			return err
		}
		r.Fields = flat
	}
	return nil
}
