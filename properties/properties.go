// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package properties implements the hierarchical property-tree interface
// spec.md §6 specifies as the serialization boundary between a
// graph.GraphDescription (or a node's own diagnostic state) and a
// document, a UI property editor, or any other embedding-application
// concern. graph itself never imports an editor or a file format directly;
// everything it exposes for persistence goes through Properties.
package properties

import "encoding/json"

// Properties is a hierarchical property tree: BeginChild/EndChild nest into
// a named child scope, and each scalar has a getter (returning fallback when
// the key is absent) and a Set counterpart. A single interface serves both
// directions so a
// node's to_properties/from_properties pair can share one code path, as
// spec.md §6 requires.
type Properties interface {
	// BeginChild enters (creating, if writing) the named child scope.
	// It returns false if name does not exist while reading.
	BeginChild(name string) bool
	// EndChild returns to the parent scope.
	EndChild()

	Bool(name string, fallback bool) bool
	SetBool(name string, value bool)

	Int32(name string, fallback int32) int32
	SetInt32(name string, value int32)

	Int64(name string, fallback int64) int64
	SetInt64(name string, value int64)

	Uint32(name string, fallback uint32) uint32
	SetUint32(name string, value uint32)

	Uint64(name string, fallback uint64) uint64
	SetUint64(name string, value uint64)

	Float(name string, fallback float64) float64
	SetFloat(name string, value float64)

	Text(name string, fallback string) string
	SetText(name string, value string)

	// Color is an RGBA quadruplet in [0,1].
	Color(name string, fallback [4]float64) [4]float64
	SetColor(name string, value [4]float64)

	// Enum reads/writes an option index into options; an out-of-range
	// stored value is reported back as fallback.
	Enum(name string, options []string, fallback int) int
	SetEnum(name string, options []string, value int)

	// JSON passes an opaque blob through unexamined, for node config that
	// has no property-tree shape of its own.
	JSON(name string) (json.RawMessage, bool)
	SetJSON(name string, raw json.RawMessage)
}
