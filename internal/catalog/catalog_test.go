package catalog

import (
	"fmt"
	"testing"

	"github.com/MattGuil/AppStation/pkg/api"
)

func validRecord(address string, lat, lon float64) api.Record {
	return api.Record{Fields: map[string]any{
		"adresse": address,
		"geom":    []any{lat, lon},
	}}
}

func TestBuildPartialBatchResilience(t *testing.T) {
	var records []api.Record
	for i := 0; i < 7; i++ {
		records = append(records, validRecord(fmt.Sprintf("%d rue de la Paix", i+1), 48.0, 2.0))
	}
	for i := 0; i < 3; i++ {
		records = append(records, api.Record{Fields: map[string]any{
			"geom": []any{48.0, 2.0},
		}})
	}

	c := Build(records, nil)
	if c.Len() != 7 {
		t.Errorf("expected 7 stations, got %d", c.Len())
	}
	if c.Dropped() != 3 {
		t.Errorf("expected 3 dropped records, got %d", c.Dropped())
	}
}

func TestBuildPreservesInsertionOrder(t *testing.T) {
	records := []api.Record{
		validRecord("3 rue C", 48.0, 2.0),
		validRecord("1 rue A", 48.1, 2.1),
		validRecord("2 rue B", 48.2, 2.2),
	}

	c := Build(records, nil)
	all := c.All()
	want := []string{"3 RUE C", "1 RUE A", "2 RUE B"}
	for i, addr := range want {
		if all[i].Address != addr {
			t.Errorf("station %d = %q, want %q", i, all[i].Address, addr)
		}
	}
}

func TestFindByAddressKeySymmetry(t *testing.T) {
	addresses := []string{
		"12 Avenue des Champs-Élysées",
		"1 rue de rivoli",
		"99 BOULEVARD SAINT-MICHEL",
	}
	var records []api.Record
	for _, a := range addresses {
		records = append(records, validRecord(a, 48.0, 2.0))
	}
	c := Build(records, nil)

	for _, a := range addresses {
		for _, query := range []string{a, LookupKey(a)} {
			rec, ok := c.FindByAddress(query)
			if !ok {
				t.Errorf("FindByAddress(%q) missed", query)
				continue
			}
			if rec.Address != LookupKey(a) {
				t.Errorf("FindByAddress(%q) = %q, want %q", query, rec.Address, LookupKey(a))
			}
		}
	}

	if _, ok := c.FindByAddress("nowhere"); ok {
		t.Error("FindByAddress(nowhere) should miss")
	}
}

func TestBuildDuplicateAddressKeepsFirst(t *testing.T) {
	records := []api.Record{
		validRecord("1 rue A", 48.0, 2.0),
		validRecord("1 RUE a", 49.0, 3.0),
	}

	c := Build(records, nil)
	if c.Len() != 1 {
		t.Fatalf("expected 1 station, got %d", c.Len())
	}
	if c.Dropped() != 1 {
		t.Errorf("expected the duplicate to be counted as dropped, got %d", c.Dropped())
	}
	rec, _ := c.FindByAddress("1 rue a")
	if rec.Coordinate.Latitude != 48.0 {
		t.Errorf("expected first-inserted record to win, got %+v", rec.Coordinate)
	}
}

func TestCatalogInventories(t *testing.T) {
	records := []api.Record{
		{Fields: map[string]any{
			"adresse":          "1 rue A",
			"geom":             []any{48.0, 2.0},
			"prix":             `[{"@nom":"SP98","@valeur":"1.999"},{"@nom":"Gazole","@valeur":"1.859"}]`,
			"services_service": "Boutique//Lavage",
		}},
		{Fields: map[string]any{
			"adresse":          "2 rue B",
			"geom":             []any{48.1, 2.1},
			"prix":             `[{"@nom":"E10","@valeur":"1.912"},{"@nom":"Gazole","@valeur":"1.870"}]`,
			"services_service": NoServices,
		}},
	}

	c := Build(records, nil)

	kinds := c.FuelKinds()
	wantKinds := []string{"E10", "Gazole", "SP98"}
	if len(kinds) != len(wantKinds) {
		t.Fatalf("FuelKinds() = %v, want %v", kinds, wantKinds)
	}
	for i := range wantKinds {
		if kinds[i] != wantKinds[i] {
			t.Errorf("FuelKinds()[%d] = %q, want %q", i, kinds[i], wantKinds[i])
		}
	}

	names := c.ServiceNames()
	if len(names) != 2 || names[0] != "Boutique" || names[1] != "Lavage" {
		t.Errorf("ServiceNames() = %v, want [Boutique Lavage]", names)
	}
}
