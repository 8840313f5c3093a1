// Copyright 2025 The Recode Authors
// SPDX-License-Identifier: Apache-2.0

package recode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/recode-ua/recode/spatial"
)

// Fields read from and written to an entry.
const (
	FieldID                  = "id"
	FieldAddress             = "address"
	FieldCity                = "city"
	FieldCoords              = "coords"
	FieldRuAddressSettlement = "ruAddressSettlement"
	FieldRuAddressStreet     = "ruAddressStreet"
	FieldRuAddressHouseNo    = "ruAddressHouseNo"
	FieldVisicomCoords       = "visicomCoords"
	FieldVisicomWarning      = "visicomWarning"
)

const fieldEntries = "entries"

// ErrNoEntries is returned when a collection has no entries array.
var ErrNoEntries = errors.New(`collection has no "entries" array`)

// object is a JSON object that remembers its key order and keeps the values
// it doesn't understand untouched.
type object struct {
	keys   []string
	fields map[string]json.RawMessage
}

func (o *object) get(key string) (json.RawMessage, bool) {
	raw, ok := o.fields[key]

	return raw, ok
}

func (o *object) setRaw(key string, raw json.RawMessage) {
	if o.fields == nil {
		o.fields = make(map[string]json.RawMessage)
	}

	if _, ok := o.fields[key]; !ok {
		o.keys = append(o.keys, key)
	}

	o.fields[key] = raw
}

func (o *object) set(key string, v any) error {
	raw, err := marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %q: %w", key, err)
	}

	o.setRaw(key, raw)

	return nil
}

func (o *object) del(key string) {
	if _, ok := o.fields[key]; !ok {
		return
	}

	delete(o.fields, key)

	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i:i], o.keys[i+1:]...)

			break
		}
	}
}

func (o *object) clone() object {
	c := object{
		keys:   append([]string(nil), o.keys...),
		fields: make(map[string]json.RawMessage, len(o.fields)),
	}

	for k, v := range o.fields {
		c.fields[k] = v
	}

	return c
}

func (o *object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	o.keys = nil
	o.fields = make(map[string]json.RawMessage)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}

		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decoding %q: %w", key, err)
		}

		o.setRaw(key, raw)
	}

	_, err = dec.Token()

	return err
}

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		k, err := marshal(key)
		if err != nil {
			return nil, err
		}

		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(o.fields[key])
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// marshal is json.Marshal without HTML escaping.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Entry is one record of the collection. Only the fields the reconciliation
// reads or writes are interpreted; everything else passes through.
type Entry struct {
	object
}

// NewEntry builds an entry from a JSON object.
func NewEntry(data []byte) (*Entry, error) {
	e := &Entry{}
	if err := json.Unmarshal(data, e); err != nil {
		return nil, err
	}

	return e, nil
}

// Clone returns an independent copy of the entry.
func (e *Entry) Clone() *Entry {
	return &Entry{object: e.object.clone()}
}

// String returns a string field. ok is false when the field is missing or
// not a JSON string.
func (e *Entry) String(key string) (string, bool) {
	raw, ok := e.get(key)
	if !ok {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}

	return s, true
}

// Text renders a scalar field for display: strings unquoted, null and
// missing fields as "", anything else as its JSON text.
func (e *Entry) Text(key string) string {
	raw, ok := e.get(key)
	if !ok {
		return ""
	}

	if s, ok := e.String(key); ok {
		return s
	}

	if raw = bytes.TrimSpace(raw); bytes.Equal(raw, []byte("null")) {
		return ""
	}

	return string(raw)
}

// SetString sets a string field, appending it if new.
func (e *Entry) SetString(key, value string) {
	// strings always encode
	_ = e.set(key, value)
}

// Delete removes a field.
func (e *Entry) Delete(key string) {
	e.del(key)
}

// Has reports whether the field is present.
func (e *Entry) Has(key string) bool {
	_, ok := e.get(key)

	return ok
}

// ID returns the entry identifier as text.
func (e *Entry) ID() string {
	return e.Text(FieldID)
}

// Address returns the raw, possibly bilingual, address line.
func (e *Entry) Address() string {
	s, _ := e.String(FieldAddress)

	return s
}

// City returns the entry city.
func (e *Entry) City() string {
	s, _ := e.String(FieldCity)

	return s
}

// Coords returns the previously known [lat, long] coordinate, if any.
func (e *Entry) Coords() *spatial.Point {
	raw, ok := e.get(FieldCoords)
	if !ok {
		return nil
	}

	var pair []float64
	if err := json.Unmarshal(raw, &pair); err != nil || len(pair) < 2 {
		return nil
	}

	return &spatial.Point{Lat: pair[0], Lng: pair[1]}
}

// Collection is the input/output document: an entries array plus whatever
// other top-level fields came with it.
type Collection struct {
	object
	Entries []*Entry
}

func (c *Collection) UnmarshalJSON(data []byte) error {
	if err := c.object.UnmarshalJSON(data); err != nil {
		return err
	}

	raw, ok := c.get(fieldEntries)
	if !ok {
		return ErrNoEntries
	}

	if err := json.Unmarshal(raw, &c.Entries); err != nil {
		return fmt.Errorf("decoding entries: %w", err)
	}

	if c.Entries == nil {
		return ErrNoEntries
	}

	for i, e := range c.Entries {
		if e == nil {
			return fmt.Errorf("entry %d is not an object", i)
		}
	}

	return nil
}

func (c *Collection) MarshalJSON() ([]byte, error) {
	o := c.object.clone()

	entries := c.Entries
	if entries == nil {
		entries = []*Entry{}
	}

	if err := o.set(fieldEntries, entries); err != nil {
		return nil, err
	}

	return o.MarshalJSON()
}

// LoadCollection reads a collection from a JSON file.
func LoadCollection(path string) (*Collection, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is provided by the operator
	if err != nil {
		return nil, fmt.Errorf("reading collection: %w", err)
	}

	var c Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing collection %s: %w", path, err)
	}

	return &c, nil
}

// Encode renders the collection as tab indented JSON.
func (c *Collection) Encode() ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "\t")

	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encoding collection: %w", err)
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Save writes the collection to path.
func (c *Collection) Save(path string) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing collection: %w", err)
	}

	return nil
}
