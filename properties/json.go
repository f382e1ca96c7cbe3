// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package properties

import "encoding/json"

// JSONProperties implements Properties over an in-memory JSON object tree.
// BeginChild/EndChild push/pop a stack of the scope currently being read or
// written; every scalar accessor operates on the top of that stack.
type JSONProperties struct {
	stack []map[string]any
}

// NewJSONProperties creates an empty tree, for building a document from
// scratch (a node's to_properties call).
func NewJSONProperties() *JSONProperties {
	return &JSONProperties{stack: []map[string]any{make(map[string]any)}}
}

// LoadJSONProperties parses an existing document, for reading it back (a
// node's from_properties call).
func LoadJSONProperties(data []byte) (*JSONProperties, error) {
	root := make(map[string]any)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &root); err != nil {
			return nil, err
		}
	}
	return &JSONProperties{stack: []map[string]any{root}}, nil
}

// Marshal serializes the tree back to JSON.
func (p *JSONProperties) Marshal() ([]byte, error) {
	return json.Marshal(p.stack[0])
}

func (p *JSONProperties) cur() map[string]any { return p.stack[len(p.stack)-1] }

func (p *JSONProperties) BeginChild(name string) bool {
	cur := p.cur()
	if m, ok := cur[name].(map[string]any); ok {
		p.stack = append(p.stack, m)
		return true
	}
	child := make(map[string]any)
	cur[name] = child
	p.stack = append(p.stack, child)
	return false
}

func (p *JSONProperties) EndChild() {
	if len(p.stack) > 1 {
		p.stack = p.stack[:len(p.stack)-1]
	}
}

func numberOf(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

func (p *JSONProperties) Bool(name string, fallback bool) bool {
	if v, ok := p.cur()[name].(bool); ok {
		return v
	}
	return fallback
}
func (p *JSONProperties) SetBool(name string, value bool) { p.cur()[name] = value }

func (p *JSONProperties) Int32(name string, fallback int32) int32 {
	if v, ok := numberOf(p.cur()[name]); ok {
		return int32(v)
	}
	return fallback
}
func (p *JSONProperties) SetInt32(name string, value int32) { p.cur()[name] = value }

func (p *JSONProperties) Int64(name string, fallback int64) int64 {
	if v, ok := numberOf(p.cur()[name]); ok {
		return int64(v)
	}
	return fallback
}
func (p *JSONProperties) SetInt64(name string, value int64) { p.cur()[name] = value }

func (p *JSONProperties) Uint32(name string, fallback uint32) uint32 {
	if v, ok := numberOf(p.cur()[name]); ok && v >= 0 {
		return uint32(v)
	}
	return fallback
}
func (p *JSONProperties) SetUint32(name string, value uint32) { p.cur()[name] = value }

func (p *JSONProperties) Uint64(name string, fallback uint64) uint64 {
	if v, ok := numberOf(p.cur()[name]); ok && v >= 0 {
		return uint64(v)
	}
	return fallback
}
func (p *JSONProperties) SetUint64(name string, value uint64) { p.cur()[name] = value }

func (p *JSONProperties) Float(name string, fallback float64) float64 {
	if v, ok := numberOf(p.cur()[name]); ok {
		return v
	}
	return fallback
}
func (p *JSONProperties) SetFloat(name string, value float64) { p.cur()[name] = value }

func (p *JSONProperties) Text(name string, fallback string) string {
	if v, ok := p.cur()[name].(string); ok {
		return v
	}
	return fallback
}
func (p *JSONProperties) SetText(name string, value string) { p.cur()[name] = value }

func (p *JSONProperties) Color(name string, fallback [4]float64) [4]float64 {
	switch c := p.cur()[name].(type) {
	case [4]float64:
		return c
	case []any:
		if len(c) != 4 {
			break
		}
		var out [4]float64
		for i, e := range c {
			f, ok := numberOf(e)
			if !ok {
				return fallback
			}
			out[i] = f
		}
		return out
	}
	return fallback
}
func (p *JSONProperties) SetColor(name string, value [4]float64) { p.cur()[name] = value }

func (p *JSONProperties) Enum(name string, options []string, fallback int) int {
	v, ok := p.cur()[name].(string)
	if !ok {
		return fallback
	}
	for i, o := range options {
		if o == v {
			return i
		}
	}
	return fallback
}
func (p *JSONProperties) SetEnum(name string, options []string, value int) {
	if value < 0 || value >= len(options) {
		return
	}
	p.cur()[name] = options[value]
}

func (p *JSONProperties) JSON(name string) (json.RawMessage, bool) {
	v, ok := p.cur()[name]
	if !ok {
		return nil, false
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	return raw, true
}

func (p *JSONProperties) SetJSON(name string, raw json.RawMessage) {
	var v any
	if err := json.Unmarshal(raw, &v); err == nil {
		p.cur()[name] = v
	}
}

var _ Properties = (*JSONProperties)(nil)
