package shape

import "encoding/json"

// Sequence is an ordered list of requests. It is append-only: builders never
// remove or reorder entries.
type Sequence []Request

// ActiveXS returns the cross-section of the most recent concrete request,
// or fallback when there is none.
func (s Sequence) ActiveXS(fallback string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if c, ok := s[i].(Concrete); ok {
			return c.CrossSection()
		}
	}
	return fallback
}

// CrossSections returns the distinct cross-section names in order of first use.
func (s Sequence) CrossSections() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range s {
		c, ok := r.(Concrete)
		if !ok || seen[c.CrossSection()] {
			continue
		}
		seen[c.CrossSection()] = true
		out = append(out, c.CrossSection())
	}
	return out
}

// Concrete returns the concrete requests, dropping markers.
func (s Sequence) Concrete() []Concrete {
	out := make([]Concrete, 0, len(s))
	for _, r := range s {
		if c, ok := r.(Concrete); ok {
			out = append(out, c)
		}
	}
	return out
}

// Count returns the number of requests of kind k.
func (s Sequence) Count(k Kind) int {
	n := 0
	for _, r := range s {
		if r.Kind() == k {
			n++
		}
	}
	return n
}

// UnmarshalJSON decodes a sequence written by json.Marshal.
func (s *Sequence) UnmarshalJSON(data []byte) error {
	var raw []wire
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Sequence, 0, len(raw))
	for _, w := range raw {
		r, err := w.request()
		if err != nil {
			return err
		}
		out = append(out, r)
	}
	*s = out
	return nil
}
