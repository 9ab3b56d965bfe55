package waveguide

import "github.com/matzehuels/sersmask/pkg/shape"

// sequencer appends requests to a shape sequence. A request built with an
// empty cross-section inherits the cross-section of the previous request.
type sequencer struct {
	names Names
	seq   shape.Sequence
}

func (b *sequencer) xs(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return b.seq.ActiveXS(b.names.WG)
}

func (b *sequencer) straight(length, width float64, xs string) {
	b.seq = append(b.seq, shape.Straight{Length: length, Width: width, XS: b.xs(xs)})
}

func (b *sequencer) taper(length, w1, w2 float64, xs string) {
	b.seq = append(b.seq, shape.Taper{Length: length, Width1: w1, Width2: w2, XS: b.xs(xs)})
}

func (b *sequencer) euler(angle, radius, width float64, xs string) {
	b.seq = append(b.seq, shape.EulerBend{Angle: angle, Radius: radius, Width: width, XS: b.xs(xs)})
}

// taperSection appends the gap taper stacked on the main taper when the gap
// changes, then the main taper.
func (b *sequencer) taperSection(length, w1, w2, gap1, gap2 float64, xs string) {
	if gap1 != 0 || gap2 != 0 {
		b.seq = append(b.seq, shape.StackMarker{})
		b.taper(length, gap1, gap2, b.names.TaperGap)
	}
	b.taper(length, w1, w2, xs)
}

// Sequence returns the ordered shape requests for d:
//
//	entrance, [input taper], active region, [output taper], [bend pair], exit
func (d Derived) Sequence(names Names) shape.Sequence {
	b := &sequencer{names: names}

	b.straight(d.Input, d.Taper.Width, names.WG)

	if d.HasTaper() {
		b.taperSection(d.Taper.Length, d.Taper.Width, d.Slot, 0, d.Gap, names.TaperIn)
	}

	b.straight(d.ActiveMargin, 0, names.WG)
	if d.MetalSpan > 0 {
		if d.AluminaMargin > 0 {
			b.straight(d.AluminaMargin, 0, names.Alumina)
		}
		if d.Gold > 0 {
			b.straight(d.Gold, 0, names.Gold)
		}
		if d.AluminaMargin > 0 {
			b.straight(d.AluminaMargin, 0, names.Alumina)
		}
	}
	b.straight(d.ActiveMargin, 0, names.WG)

	if d.HasTaperOut() {
		b.taperSection(d.TaperOut.Length, d.Slot, d.TaperOut.Width, d.Gap, 0, names.TaperOut)
	}

	if d.HasBend() {
		w := d.TaperOut.Width
		b.euler(d.Bend.Angle, d.Bend.Radius, w, "")
		b.straight(d.Bend.Sep, w, "")
		b.euler(-d.Bend.Angle, d.Bend.Radius, w, "")
	}

	b.straight(d.Output, d.TaperOut.Width, "")
	return b.seq
}
