package zone

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestCategoryFilter_FromWireIDs(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want FilterMode
	}{
		{name: "all sentinel", ids: []string{"ALL"}, want: FilterAll},
		{name: "sentinel mixed with ids", ids: []string{"cat-1", "ALL"}, want: FilterAll},
		{name: "empty list", ids: []string{}, want: FilterNone},
		{name: "nil list", ids: nil, want: FilterNone},
		{name: "explicit ids", ids: []string{"cat-1", "cat-2"}, want: FilterIDs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := FromWireIDs(tt.ids)
			if f.Mode != tt.want {
				t.Errorf("FromWireIDs(%v).Mode = %s, want %s", tt.ids, f.Mode, tt.want)
			}
		})
	}
}

func TestCategoryFilter_WireRoundTrip(t *testing.T) {
	for _, f := range []CategoryFilter{
		AllCategories(),
		NoCategories(),
		Categories([]string{"cat-1", "cat-2"}),
	} {
		got := FromWireIDs(f.WireIDs())
		if got.Mode != f.Mode {
			t.Errorf("wire round trip changed mode %s to %s", f.Mode, got.Mode)
		}
	}
}

func TestCategoryFilter_UnmarshalVariantForm(t *testing.T) {
	var f CategoryFilter
	if err := json.Unmarshal([]byte(`{"mode":"ids","ids":["cat-1"]}`), &f); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if f.Mode != FilterIDs || len(f.IDs) != 1 {
		t.Errorf("Unmarshal() = %+v, want ids filter with one id", f)
	}
}

func TestCategoryFilter_UnmarshalLegacyArrayForm(t *testing.T) {
	var f CategoryFilter
	if err := json.Unmarshal([]byte(`["ALL"]`), &f); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if f.Mode != FilterAll {
		t.Errorf("legacy ALL sentinel decoded to %s, want %s", f.Mode, FilterAll)
	}
}

func TestCategoryFilter_Validate(t *testing.T) {
	tests := []struct {
		name    string
		filter  CategoryFilter
		wantErr bool
	}{
		{name: "all", filter: AllCategories(), wantErr: false},
		{name: "none", filter: NoCategories(), wantErr: false},
		{name: "ids", filter: Categories([]string{"c"}), wantErr: false},
		{name: "all with ids", filter: CategoryFilter{Mode: FilterAll, IDs: []string{"c"}}, wantErr: true},
		{name: "ids without ids", filter: CategoryFilter{Mode: FilterIDs}, wantErr: true},
		{name: "unknown mode", filter: CategoryFilter{Mode: "fancy"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ZoneWithoutPrinter(t *testing.T) {
	z := &KitchenZone{
		Name:   "Grill",
		Filter: AllCategories(),
	}
	if err := Validate(z); !errors.Is(err, ErrNoPrinter) {
		t.Errorf("Validate() error = %v, want ErrNoPrinter", err)
	}
}

func TestValidate_ParkedZoneIsValid(t *testing.T) {
	z := &KitchenZone{
		Name:      "Parked",
		PrinterID: "printer-1",
		Filter:    NoCategories(),
	}
	if err := Validate(z); err != nil {
		t.Errorf("Validate() parked zone error = %v, want nil", err)
	}
}

func TestKitchenZone_CloneIsIndependent(t *testing.T) {
	z := &KitchenZone{
		ID:           "z1",
		Name:         "Grill",
		PrinterID:    "printer-1",
		Filter:       Categories([]string{"cat-1"}),
		ProductTypes: []string{"hot"},
		IsActive:     true,
	}

	cpy := z.Clone()
	cpy.Filter.IDs[0] = "mutated"
	cpy.ProductTypes[0] = "mutated"

	if z.Filter.IDs[0] != "cat-1" || z.ProductTypes[0] != "hot" {
		t.Error("Clone() shares slices with the original")
	}
}
