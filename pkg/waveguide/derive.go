package waveguide

// TaperParams are the effective parameters of a taper. All zero when the
// taper is absent.
type TaperParams struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Buffer float64 `json:"buffer"`
}

// BendParams are the effective parameters of the bend pair. All zero when
// the bend is absent.
type BendParams struct {
	Angle  float64 `json:"angle"`
	Sep    float64 `json:"sep"`
	Radius float64 `json:"radius"`
}

// Derived holds the quantities computed once from a resolved Spec.
//
// A feature is present only when it is enabled and its governing quantity
// (taper length, bend angle, clamped metal length) is non-zero; absent
// features contribute all-zero parameters.
type Derived struct {
	Gap          float64 `json:"gap"`
	Slot         float64 `json:"slot"`          // 2·width + gap
	BufferOffset float64 `json:"buffer_offset"` // buffer + width + gap/2
	Input        float64 `json:"input"`
	Output       float64 `json:"output"`

	Taper    TaperParams `json:"taper"`
	TaperOut TaperParams `json:"taper_out"`
	Bend     BendParams  `json:"bend"`

	// Alumina and Gold are clamped to the active length individually.
	Alumina float64 `json:"alumina"`
	Gold    float64 `json:"gold"`
	// MetalLength is their sum and may exceed the active length.
	MetalLength float64 `json:"metal_length"`
	// MetalSpan is MetalLength clamped to the active length. It sizes the
	// bare waveguide on either side of the metal.
	MetalSpan     float64 `json:"metal_span"`
	ActiveMargin  float64 `json:"active_margin"`  // (length − span)/2
	AluminaMargin float64 `json:"alumina_margin"` // (alumina − gold)/2, never negative
	MetalWidth    float64 `json:"metal_width"`
}

// Derive computes the derived geometry of s. s should already have its
// aliases resolved and be valid.
func Derive(s Spec) Derived {
	d := Derived{
		Gap:          s.Gap,
		Slot:         2*s.Width + s.Gap,
		BufferOffset: s.Buffer + s.Width + s.Gap/2,
		Input:        s.Entrance,
		Output:       s.OutLength,
		Taper:        taperParams(s.Taper),
		TaperOut:     taperParams(s.TaperOut),
	}

	if s.Bend.Enabled && s.Bend.Angle != 0 {
		d.Bend = BendParams{Angle: s.Bend.Angle, Sep: s.Bend.Sep, Radius: s.Bend.Radius}
	}

	if s.Alumina.Enabled {
		d.Alumina = min(s.Alumina.Length, s.Length)
	}
	if s.Gold.Enabled {
		d.Gold = min(s.Gold.Length, s.Length)
	}
	d.MetalLength = d.Alumina + d.Gold
	d.MetalSpan = min(d.MetalLength, s.Length)
	d.ActiveMargin = (s.Length - d.MetalSpan) / 2
	d.AluminaMargin = max((d.Alumina-d.Gold)/2, 0)

	d.MetalWidth = d.BufferOffset
	if s.MetalWidth != nil {
		d.MetalWidth = *s.MetalWidth
	}
	return d
}

func taperParams(t Taper) TaperParams {
	if !t.Enabled || t.Length == 0 {
		return TaperParams{}
	}
	return TaperParams{Length: t.Length, Width: t.Width, Buffer: t.Buffer}
}

// HasTaper reports whether the input taper is present.
func (d Derived) HasTaper() bool { return d.Taper.Length != 0 }

// HasTaperOut reports whether the output taper is present.
func (d Derived) HasTaperOut() bool { return d.TaperOut.Length != 0 }

// HasBend reports whether the bend pair is present.
func (d Derived) HasBend() bool { return d.Bend.Angle != 0 }

// HasAlumina reports whether the alumina overlay is present.
func (d Derived) HasAlumina() bool { return d.Alumina > 0 }

// HasGold reports whether the gold overlay is present.
func (d Derived) HasGold() bool { return d.Gold > 0 }
