// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

// UnknownFields holds the raw JSON members of a record that this build does
// not understand. They are written back verbatim when the record is rebuilt.
type UnknownFields map[string]json.RawMessage

// IsEmpty reports whether no unknown members were captured.
func (u UnknownFields) IsEmpty() bool {
	return len(u) == 0
}

// Clone returns an independent copy of u.
func (u UnknownFields) Clone() UnknownFields {
	if u == nil {
		return nil
	}
	out := make(UnknownFields, len(u))
	for k, v := range u {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

var knownFieldsCache sync.Map // reflect.Type -> map[string]struct{}

// knownFieldNames returns the JSON member names declared by struct type t.
func knownFieldNames(t reflect.Type) map[string]struct{} {
	if cached, ok := knownFieldsCache.Load(t); ok {
		return cached.(map[string]struct{})
	}

	names := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		names[name] = struct{}{}
	}

	knownFieldsCache.Store(t, names)
	return names
}

// decodeWithUnknown decodes data into v (a pointer to a struct) and returns
// the members v does not declare.
func decodeWithUnknown(data []byte, v any) (UnknownFields, error) {
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	known := knownFieldNames(reflect.TypeOf(v).Elem())
	var unknown UnknownFields
	for name, value := range raw {
		if _, ok := known[name]; ok {
			continue
		}
		if unknown == nil {
			unknown = make(UnknownFields)
		}
		unknown[name] = value
	}
	return unknown, nil
}

// encodeWithUnknown encodes v and appends the unknown members that v does not
// already carry.
func encodeWithUnknown(v any, unknown UnknownFields) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || unknown.IsEmpty() {
		return data, err
	}

	var raw map[string]json.RawMessage
	if err = json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for name, value := range unknown {
		if _, exists := raw[name]; !exists {
			raw[name] = value
		}
	}
	return json.Marshal(raw)
}

// knownFieldsEqual compares the declared members of a and b, ignoring unknown
// members and the difference between absent and empty values.
func knownFieldsEqual(a, b any) bool {
	left, err := json.Marshal(a)
	if err != nil {
		return false
	}
	right, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(left, right)
}
