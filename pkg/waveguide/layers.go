package waveguide

import "github.com/matzehuels/sersmask/pkg/xsection"

// Names are the cross-section names a waveguide draws with.
type Names struct {
	WG       string
	TaperIn  string
	TaperOut string
	TaperGap string
	Alumina  string
	Gold     string
}

// NamesFor returns the cross-section names qualified by namespace.
func NamesFor(namespace string) Names {
	return Names{
		WG:       xsection.Qualify(namespace, xsection.WG),
		TaperIn:  xsection.Qualify(namespace, xsection.TaperIn),
		TaperOut: xsection.Qualify(namespace, xsection.TaperOut),
		TaperGap: xsection.Qualify(namespace, xsection.TaperGap),
		Alumina:  xsection.Qualify(namespace, xsection.Alumina),
		Gold:     xsection.Qualify(namespace, xsection.Gold),
	}
}

// CrossSections returns the cross-sections d needs, in registration order:
//
//	wg, [taper-gap, taper-in], [alox], [au], [taper-gap], [taper-out]
//
// taper-gap appears once, ahead of whichever taper uses it first. Features
// that are absent register nothing.
//
// The slot is formed downstream by XOR of the layers, so a point is
// etched when it is covered an odd number of times.
func (d Derived) CrossSections(names Names, accuracy float64) []xsection.CrossSection {
	out := []xsection.CrossSection{d.wgFamily(names.WG, false, false, accuracy)}

	gap := xsection.CrossSection{
		Name:   names.TaperGap,
		Layers: []xsection.LayerSpec{{Layer: xsection.LayerBuffer, Accuracy: accuracy}},
	}
	if d.HasTaper() {
		out = append(out, gap, taperSection(names.TaperIn, d.Taper, accuracy))
	}
	if d.HasAlumina() {
		out = append(out, d.wgFamily(names.Alumina, true, false, accuracy))
	}
	if d.HasGold() {
		out = append(out, d.wgFamily(names.Gold, d.HasAlumina(), true, accuracy))
	}
	if d.HasTaperOut() {
		if !d.HasTaper() {
			out = append(out, gap)
		}
		out = append(out, taperSection(names.TaperOut, d.TaperOut, accuracy))
	}
	return out
}

func (d Derived) wgFamily(name string, alumina, gold bool, accuracy float64) xsection.CrossSection {
	layers := []xsection.LayerSpec{
		{Layer: xsection.LayerRail, Accuracy: accuracy, Grow: d.Gap / 2},
		{Layer: xsection.LayerSlot, Accuracy: accuracy, Grow: d.Slot / 2},
		{Layer: xsection.LayerBuffer, Accuracy: accuracy, Grow: d.BufferOffset},
	}
	if alumina {
		layers = append(layers, xsection.LayerSpec{Layer: xsection.LayerAlumina, Accuracy: accuracy, Grow: d.MetalWidth})
	}
	if gold {
		layers = append(layers, xsection.LayerSpec{Layer: xsection.LayerGold, Accuracy: accuracy, Grow: d.MetalWidth})
	}
	return xsection.CrossSection{Name: name, Layers: layers}
}

func taperSection(name string, t TaperParams, accuracy float64) xsection.CrossSection {
	layers := []xsection.LayerSpec{{Layer: xsection.LayerRail, Accuracy: accuracy}}
	if t.Buffer != 0 {
		layers = append(layers, xsection.LayerSpec{Layer: xsection.LayerSlot, Accuracy: accuracy, Grow: t.Buffer})
	}
	return xsection.CrossSection{Name: name, Layers: layers}
}
