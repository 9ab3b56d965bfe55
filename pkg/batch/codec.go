package batch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/sersmask/pkg/errors"
	"github.com/matzehuels/sersmask/pkg/waveguide"
)

// TOML

type tomlFile struct {
	Name       string                    `toml:"name"`
	Count      int                       `toml:"count"`
	Separation *float64                  `toml:"separation"`
	ChainX     string                    `toml:"chain_x"`
	Chain      *bool                     `toml:"chain"`
	Defaults   toml.Primitive            `toml:"defaults"`
	Overrides  map[string]toml.Primitive `toml:"overrides"`
	Waveguides []toml.Primitive          `toml:"waveguides"`
}

type tomlDecoder struct {
	md   toml.MetaData
	file tomlFile
}

func decodeTOML(data []byte) (*tomlDecoder, error) {
	d := &tomlDecoder{}
	md, err := toml.Decode(string(data), &d.file)
	if err != nil {
		return nil, err
	}
	d.md = md
	return d, nil
}

func (d *tomlDecoder) header() header {
	f := d.file
	return header{Name: f.Name, Count: f.Count, Separation: f.Separation, ChainX: f.ChainX, Chain: f.Chain}
}

func (d *tomlDecoder) defaults(s *waveguide.Spec) error {
	if !d.md.IsDefined("defaults") {
		return nil
	}
	return d.md.PrimitiveDecode(d.file.Defaults, s)
}

func (d *tomlDecoder) entries() int { return len(d.file.Waveguides) }

func (d *tomlDecoder) entry(i int, s *waveguide.Spec) error {
	return d.md.PrimitiveDecode(d.file.Waveguides[i], s)
}

func (d *tomlDecoder) overrides() ([]int, error) { return indices(d.file.Overrides) }

func (d *tomlDecoder) override(i int, s *waveguide.Spec) error {
	return d.md.PrimitiveDecode(d.file.Overrides[strconv.Itoa(i)], s)
}

func (d *tomlDecoder) unknown() error {
	keys := d.md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(names, ", "))
}

// YAML

type yamlFile struct {
	Name       string            `yaml:"name"`
	Count      int               `yaml:"count"`
	Separation *float64          `yaml:"separation"`
	ChainX     string            `yaml:"chain_x"`
	Chain      *bool             `yaml:"chain"`
	Defaults   yaml.Node         `yaml:"defaults"`
	Overrides  map[int]yaml.Node `yaml:"overrides"`
	Waveguides []yaml.Node       `yaml:"waveguides"`
}

type yamlDecoder struct{ file yamlFile }

func decodeYAML(data []byte) (*yamlDecoder, error) {
	d := &yamlDecoder{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&d.file); err != nil {
		return nil, err
	}
	return d, nil
}

// decodeNode decodes n onto v, rejecting keys v has no field for.
func decodeNode(n *yaml.Node, v any) error {
	if n.Kind == 0 {
		return nil
	}
	data, err := yaml.Marshal(n)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(v)
}

func (d *yamlDecoder) header() header {
	f := d.file
	return header{Name: f.Name, Count: f.Count, Separation: f.Separation, ChainX: f.ChainX, Chain: f.Chain}
}

func (d *yamlDecoder) defaults(s *waveguide.Spec) error { return decodeNode(&d.file.Defaults, s) }
func (d *yamlDecoder) entries() int                     { return len(d.file.Waveguides) }

func (d *yamlDecoder) entry(i int, s *waveguide.Spec) error {
	return decodeNode(&d.file.Waveguides[i], s)
}

func (d *yamlDecoder) overrides() ([]int, error) {
	idx := make([]int, 0, len(d.file.Overrides))
	for i := range d.file.Overrides {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx, nil
}

func (d *yamlDecoder) override(i int, s *waveguide.Spec) error {
	n := d.file.Overrides[i]
	return decodeNode(&n, s)
}

func (d *yamlDecoder) unknown() error { return nil }

// JSON

type jsonFile struct {
	Name       string                     `json:"name"`
	Count      int                        `json:"count"`
	Separation *float64                   `json:"separation"`
	ChainX     string                     `json:"chain_x"`
	Chain      *bool                      `json:"chain"`
	Defaults   json.RawMessage            `json:"defaults"`
	Overrides  map[string]json.RawMessage `json:"overrides"`
	Waveguides []json.RawMessage          `json:"waveguides"`
}

type jsonDecoder struct{ file jsonFile }

func decodeJSON(data []byte) (*jsonDecoder, error) {
	d := &jsonDecoder{}
	if err := decodeRaw(data, &d.file); err != nil {
		return nil, err
	}
	return d, nil
}

// decodeRaw decodes data onto v, rejecting unknown fields.
func decodeRaw(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (d *jsonDecoder) header() header {
	f := d.file
	return header{Name: f.Name, Count: f.Count, Separation: f.Separation, ChainX: f.ChainX, Chain: f.Chain}
}

func (d *jsonDecoder) defaults(s *waveguide.Spec) error { return decodeRaw(d.file.Defaults, s) }
func (d *jsonDecoder) entries() int                     { return len(d.file.Waveguides) }

func (d *jsonDecoder) entry(i int, s *waveguide.Spec) error {
	return decodeRaw(d.file.Waveguides[i], s)
}

func (d *jsonDecoder) overrides() ([]int, error) { return indices(d.file.Overrides) }

func (d *jsonDecoder) override(i int, s *waveguide.Spec) error {
	return decodeRaw(d.file.Overrides[strconv.Itoa(i)], s)
}

func (d *jsonDecoder) unknown() error { return nil }

// indices parses and sorts the string keys of an overrides table.
func indices[V any](m map[string]V) ([]int, error) {
	idx := make([]int, 0, len(m))
	for k := range m {
		i, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("override key %q is not an index", k)
		}
		if strconv.Itoa(i) != k {
			return nil, fmt.Errorf("override key %q is not a canonical index", k)
		}
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx, nil
}
