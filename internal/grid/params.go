// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package grid

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Param is a single entry of an ordered mapping.
type Param struct {
	Key   string
	Value any
}

// Params is an insertion-ordered mapping. Values are scalars (string, int64,
// float64, bool or nil) or nested Params describing an option group.
type Params []Param

// Get returns the value stored under key.
func (p Params) Get(key string) (any, bool) {
	for _, param := range p {
		if param.Key == key {
			return param.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Keys returns the keys in insertion order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for _, param := range p {
		keys = append(keys, param.Key)
	}
	return keys
}

// Map converts the ordered mapping into a plain map, recursing into option
// groups. Ordering is lost.
func (p Params) Map() map[string]any {
	out := make(map[string]any, len(p))
	for _, param := range p {
		if nested, ok := param.Value.(Params); ok {
			out[param.Key] = nested.Map()
			continue
		}
		out[param.Key] = param.Value
	}
	return out
}

// String renders the mapping as `{key: value, group: {k: v}}`, keeping the
// insertion order.
func (p Params) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, param := range p {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(param.Key)
		sb.WriteString(": ")
		if nested, ok := param.Value.(Params); ok {
			sb.WriteString(nested.String())
			continue
		}
		sb.WriteString(FormatScalar(param.Value))
	}
	sb.WriteByte('}')
	return sb.String()
}

// MarshalJSON encodes the mapping as a JSON object with keys in insertion order.
func (p Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, param := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(param.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(param.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode value of %q: %w", param.Key, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FormatScalar renders a scalar value the way it appears in titles, logs and
// command lines. Nested option groups are rendered as JSON.
func FormatScalar(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case Params:
		b, err := val.MarshalJSON()
		if err != nil {
			return val.String()
		}
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}
