package xsection

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/sersmask/pkg/errors"
)

func wgLayers(gap, slot, buffer float64) []LayerSpec {
	return []LayerSpec{
		{Layer: LayerRail, Accuracy: 0.001, Grow: gap / 2},
		{Layer: LayerSlot, Accuracy: 0.001, Grow: slot / 2},
		{Layer: LayerBuffer, Accuracy: 0.001, Grow: buffer},
	}
}

func TestRegisterIdempotent(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(WG, wgLayers(0.5, 1.5, 3.75)); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	first, _ := r.Lookup(WG)

	if err := r.Register(WG, wgLayers(0.5, 1.5, 3.75)); err != nil {
		t.Fatalf("identical Register should be a no-op: %v", err)
	}
	second, _ := r.Lookup(WG)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("entry changed after identical registration (-first +second):\n%s", diff)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestRegisterConflict(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(WG, wgLayers(0.5, 1.5, 3.75)); err != nil {
		t.Fatal(err)
	}
	err := r.Register(WG, wgLayers(0.4, 1.4, 3.7))
	if !errors.Is(err, errors.ErrCodeConfigConflict) {
		t.Fatalf("expected CONFIG_CONFLICT, got %v", err)
	}
	got, _ := r.Lookup(WG)
	if diff := cmp.Diff(wgLayers(0.5, 1.5, 3.75), got.Layers); diff != "" {
		t.Errorf("first writer should win (-want +got):\n%s", diff)
	}
}

func TestRegisterAllAtomic(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Gold, wgLayers(0.5, 1.5, 3.75)); err != nil {
		t.Fatal(err)
	}

	err := r.RegisterAll([]CrossSection{
		{Name: WG, Layers: wgLayers(0.5, 1.5, 3.75)},
		{Name: TaperIn, Layers: []LayerSpec{{Layer: LayerRail, Accuracy: 0.001}}},
		{Name: Gold, Layers: append(wgLayers(0.5, 1.5, 3.75), LayerSpec{Layer: LayerGold, Accuracy: 0.001, Grow: 3.75})},
	})
	if !errors.Is(err, errors.ErrCodeConfigConflict) {
		t.Fatalf("expected CONFIG_CONFLICT, got %v", err)
	}
	if _, ok := r.Lookup(WG); ok {
		t.Error("wg must not be registered after a failed batch")
	}
	if _, ok := r.Lookup(TaperIn); ok {
		t.Error("taper-in must not be registered after a failed batch")
	}
	if diff := cmp.Diff([]string{Gold}, r.Names()); diff != "" {
		t.Errorf("Names() (-want +got):\n%s", diff)
	}
}

func TestRegisterAllConflictWithinBatch(t *testing.T) {
	r := NewRegistry()
	err := r.RegisterAll([]CrossSection{
		{Name: WG, Layers: wgLayers(0.5, 1.5, 3.75)},
		{Name: WG, Layers: wgLayers(0.5, 1.5, 4)},
	})
	if !errors.Is(err, errors.ErrCodeConfigConflict) {
		t.Fatalf("expected CONFIG_CONFLICT, got %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestRegisterOrder(t *testing.T) {
	r := NewRegistry()
	names := []string{WG, TaperGap, TaperIn, Alumina, Gold, TaperOut}
	for _, n := range names {
		if err := r.Register(n, []LayerSpec{{Layer: LayerRail}}); err != nil {
			t.Fatal(err)
		}
	}
	if diff := cmp.Diff(names, r.Names()); diff != "" {
		t.Errorf("Names() (-want +got):\n%s", diff)
	}
}

func TestRegisterRejectsDuplicateLayer(t *testing.T) {
	r := NewRegistry()
	err := r.Register(WG, []LayerSpec{{Layer: LayerRail}, {Layer: LayerRail, Grow: 1}})
	if !errors.Is(err, errors.ErrCodeConfigConflict) {
		t.Fatalf("expected CONFIG_CONFLICT, got %v", err)
	}
}

func TestRegisterRejectsBadName(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("", nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(WG, wgLayers(0.5, 1.5, 3.75)); err != nil {
		t.Fatal(err)
	}
	xs, _ := r.Lookup(WG)
	xs.Layers[0].Grow = 99

	again, _ := r.Lookup(WG)
	if again.Layers[0].Grow != 0.25 {
		t.Errorf("registry entry mutated through Lookup result: %v", again.Layers[0])
	}
}

func TestMustLookup(t *testing.T) {
	r := NewRegistry()
	if _, err := r.MustLookup("missing"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestRegisterConcurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	errs := make([]error, 32)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = r.Register(WG, wgLayers(0.5, 1.5, 3.75))
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Errorf("goroutine %d: %v", i, err)
		}
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestQualify(t *testing.T) {
	if got := Qualify("", WG); got != "wg" {
		t.Errorf("Qualify(\"\", wg) = %q", got)
	}
	if got := Qualify("chipA", TaperGap); got != "chipA/taper-gap" {
		t.Errorf("Qualify(chipA, taper-gap) = %q", got)
	}
}

func TestLayerString(t *testing.T) {
	tests := map[Layer]string{
		LayerRail:                "rail(1,0)",
		LayerGold:                "gold(3,0)",
		{Number: 7, Datatype: 3}: "(7,3)",
	}
	for l, want := range tests {
		if got := fmt.Sprint(l); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func TestCrossSectionAccuracy(t *testing.T) {
	xs := CrossSection{Layers: []LayerSpec{{Accuracy: 0.01}, {Accuracy: 0}, {Accuracy: 0.001}}}
	if got := xs.Accuracy(); got != 0.001 {
		t.Errorf("Accuracy() = %v, want 0.001", got)
	}
}

func TestParseLayer(t *testing.T) {
	tests := []struct {
		in      string
		want    Layer
		wantErr bool
	}{
		{"1/0", LayerRail, false},
		{"1,2", LayerBuffer, false},
		{" 3 ", LayerGold, false},
		{"slot", LayerSlot, false},
		{"Alumina", LayerAlumina, false},
		{"63/7", Layer{Number: 63, Datatype: 7}, false},
		{"", Layer{}, true},
		{"x/0", Layer{}, true},
		{"1/-1", Layer{}, true},
		{"70000", Layer{}, true},
	}

	for _, tt := range tests {
		got, err := ParseLayer(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLayer(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseLayer(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("ParseLayer(%q) error code = %s", tt.in, errors.GetCode(err))
		}
	}
}
