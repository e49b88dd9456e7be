package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Catalog is the whole storage-location document: Sector → Model →
// TypeCode → Type → Bay → items. It encodes as a bare JSON object keyed by
// sector name.
type Catalog struct {
	Sectors Children[*Sector]
}

// Sector maps model names to models.
type Sector struct {
	Models Children[*Model]
}

// Model maps type-code names to type codes.
type Model struct {
	TypeCodes Children[*TypeCode]
}

// TypeCode holds its types under the "types" member.
type TypeCode struct {
	Types Children[*Type]
}

// Type holds its bays under the "baias" member.
type Type struct {
	Bays Children[Items]
}

// Items is a bay's ordered list of item labels (part numbers).
type Items []string

func NewCatalog() *Catalog   { return &Catalog{} }
func NewSector() *Sector     { return &Sector{} }
func NewModel() *Model       { return &Model{} }
func NewTypeCode() *TypeCode { return &TypeCode{} }
func NewType() *Type         { return &Type{} }
func NewItems() Items        { return Items{} }

// Clone returns a deep copy of the catalog.
func (c *Catalog) Clone() *Catalog {
	if c == nil {
		return nil
	}
	return &Catalog{Sectors: c.Sectors.Clone((*Sector).Clone)}
}

func (s *Sector) Clone() *Sector {
	return &Sector{Models: s.Models.Clone((*Model).Clone)}
}

func (m *Model) Clone() *Model {
	return &Model{TypeCodes: m.TypeCodes.Clone((*TypeCode).Clone)}
}

func (tc *TypeCode) Clone() *TypeCode {
	return &TypeCode{Types: tc.Types.Clone((*Type).Clone)}
}

func (t *Type) Clone() *Type {
	return &Type{Bays: t.Bays.Clone(Items.Clone)}
}

func (it Items) Clone() Items {
	out := make(Items, len(it))
	copy(out, it)
	return out
}

// Contains reports whether label is present (exact, case-sensitive match).
func (it Items) Contains(label string) bool {
	return it.Index(label) >= 0
}

// Index returns the position of the first exact match of label, or -1.
func (it Items) Index(label string) int {
	for i, v := range it {
		if v == label {
			return i
		}
	}
	return -1
}

func (c Catalog) MarshalJSON() ([]byte, error)  { return c.Sectors.MarshalJSON() }
func (c *Catalog) UnmarshalJSON(b []byte) error { return c.Sectors.UnmarshalJSON(b) }
func (s Sector) MarshalJSON() ([]byte, error)   { return s.Models.MarshalJSON() }
func (s *Sector) UnmarshalJSON(b []byte) error  { return s.Models.UnmarshalJSON(b) }
func (m Model) MarshalJSON() ([]byte, error)    { return m.TypeCodes.MarshalJSON() }
func (m *Model) UnmarshalJSON(b []byte) error   { return m.TypeCodes.UnmarshalJSON(b) }

func (tc TypeCode) MarshalJSON() ([]byte, error) {
	return wrapMember("types", tc.Types)
}

func (tc *TypeCode) UnmarshalJSON(b []byte) error {
	return unwrapMember(b, "types", &tc.Types)
}

func (t Type) MarshalJSON() ([]byte, error) {
	return wrapMember("baias", t.Bays)
}

func (t *Type) UnmarshalJSON(b []byte) error {
	return unwrapMember(b, "baias", &t.Bays)
}

func (it Items) MarshalJSON() ([]byte, error) {
	if it == nil {
		return []byte("[]"), nil
	}
	return marshalRaw([]string(it))
}

func (it *Items) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), nullLiteral) {
		return errors.New("expected array, got null")
	}
	var labels []string
	if err := json.Unmarshal(b, &labels); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if l == "" {
			return errors.New("empty item label")
		}
		if _, dup := seen[l]; dup {
			return fmt.Errorf("duplicate item %q", l)
		}
		seen[l] = struct{}{}
	}
	*it = Items(labels)
	if *it == nil {
		*it = Items{}
	}
	return nil
}

func wrapMember(name string, v any) ([]byte, error) {
	inner, err := marshalRaw(v)
	if err != nil {
		return nil, err
	}
	key, _ := marshalRaw(name)
	out := make([]byte, 0, len(inner)+len(key)+3)
	out = append(out, '{')
	out = append(out, key...)
	out = append(out, ':')
	out = append(out, inner...)
	out = append(out, '}')
	return out, nil
}

// unwrapMember decodes an object that must hold exactly one member, name.
func unwrapMember(b []byte, name string, target json.Unmarshaler) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	found := false
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		if key != name {
			return fmt.Errorf("unknown member %q", key)
		}
		if found {
			return fmt.Errorf("duplicate member %q", name)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := target.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		found = true
	}
	if err := expectDelim(dec, '}'); err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("missing member %q", name)
	}
	return nil
}
