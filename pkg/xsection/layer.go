package xsection

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/sersmask/pkg/errors"
)

// Layer is a GDSII layer/datatype pair.
type Layer struct {
	Number   int16 `json:"layer"`
	Datatype int16 `json:"datatype"`
}

// The mask layer convention shared by every cross-section.
var (
	LayerRail    = Layer{Number: 1, Datatype: 0}
	LayerSlot    = Layer{Number: 1, Datatype: 1}
	LayerBuffer  = Layer{Number: 1, Datatype: 2}
	LayerAlumina = Layer{Number: 2, Datatype: 0}
	LayerGold    = Layer{Number: 3, Datatype: 0}
)

var layerNames = map[Layer]string{
	LayerRail:    "rail",
	LayerSlot:    "slot",
	LayerBuffer:  "buffer",
	LayerAlumina: "alumina",
	LayerGold:    "gold",
}

func (l Layer) String() string {
	if name, ok := layerNames[l]; ok {
		return fmt.Sprintf("%s(%d,%d)", name, l.Number, l.Datatype)
	}
	return fmt.Sprintf("(%d,%d)", l.Number, l.Datatype)
}

// ParseLayer parses a layer given as "1/0", "1,0", "1" (datatype 0) or by
// its conventional name ("rail", "slot", "buffer", "alumina", "gold").
func ParseLayer(s string) (Layer, error) {
	s = strings.TrimSpace(s)
	for l, name := range layerNames {
		if strings.EqualFold(s, name) {
			return l, nil
		}
	}
	num, dt, found := strings.Cut(s, "/")
	if !found {
		num, dt, found = strings.Cut(s, ",")
	}
	if !found {
		dt = "0"
	}
	n, err := strconv.ParseInt(strings.TrimSpace(num), 10, 16)
	if err != nil || n < 0 {
		return Layer{}, errors.New(errors.ErrCodeInvalidInput, "invalid layer %q (want N/D or a layer name)", s)
	}
	d, err := strconv.ParseInt(strings.TrimSpace(dt), 10, 16)
	if err != nil || d < 0 {
		return Layer{}, errors.New(errors.ErrCodeInvalidInput, "invalid datatype in layer %q", s)
	}
	return Layer{Number: int16(n), Datatype: int16(d)}, nil
}

// Compare orders layers by number, then datatype.
func (l Layer) Compare(o Layer) int {
	if l.Number != o.Number {
		return int(l.Number) - int(o.Number)
	}
	return int(l.Datatype) - int(o.Datatype)
}

// LayerSpec is one drawing rule of a cross-section. The drawn outline is the
// shape width plus Grow on each side.
type LayerSpec struct {
	Layer    Layer   `json:"layer"`
	Accuracy float64 `json:"accuracy"`
	Grow     float64 `json:"grow"`
}

// CrossSection is a named, ordered set of layer rules.
type CrossSection struct {
	Name   string      `json:"name"`
	Layers []LayerSpec `json:"layers"`
}

// Equal reports whether c and o have the same name and the same layers in the same order.
func (c CrossSection) Equal(o CrossSection) bool {
	return c.Name == o.Name && slices.Equal(c.Layers, o.Layers)
}

// Accuracy returns the finest accuracy among the layers, or 0 when there are none.
func (c CrossSection) Accuracy() float64 {
	acc := 0.0
	for _, l := range c.Layers {
		if l.Accuracy > 0 && (acc == 0 || l.Accuracy < acc) {
			acc = l.Accuracy
		}
	}
	return acc
}
