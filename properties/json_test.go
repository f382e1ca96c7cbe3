// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package properties

import "testing"

func TestJSONProperties_ScalarRoundTrip(t *testing.T) {
	p := NewJSONProperties()
	p.SetBool("enabled", true)
	p.SetInt32("count", -7)
	p.SetInt64("big", 1<<40)
	p.SetUint32("unsigned32", 42)
	p.SetUint64("unsigned64", 1<<50)
	p.SetFloat("gain", 2.5)
	p.SetText("name", "blur")
	p.SetColor("tint", [4]float64{1, 0.5, 0, 1})
	p.SetEnum("mode", []string{"off", "on", "auto"}, 2)

	if v := p.Bool("enabled", false); v != true {
		t.Fatalf("Bool = %v, want true", v)
	}
	if v := p.Int32("count", 0); v != -7 {
		t.Fatalf("Int32 = %v, want -7", v)
	}
	if v := p.Int64("big", 0); v != 1<<40 {
		t.Fatalf("Int64 = %v, want %v", v, int64(1)<<40)
	}
	if v := p.Uint32("unsigned32", 0); v != 42 {
		t.Fatalf("Uint32 = %v, want 42", v)
	}
	if v := p.Uint64("unsigned64", 0); v != 1<<50 {
		t.Fatalf("Uint64 = %v, want %v", v, uint64(1)<<50)
	}
	if v := p.Float("gain", 0); v != 2.5 {
		t.Fatalf("Float = %v, want 2.5", v)
	}
	if v := p.Text("name", ""); v != "blur" {
		t.Fatalf("Text = %q, want blur", v)
	}
	if v := p.Color("tint", [4]float64{}); v != [4]float64{1, 0.5, 0, 1} {
		t.Fatalf("Color = %v, want [1 0.5 0 1]", v)
	}
	if v := p.Enum("mode", []string{"off", "on", "auto"}, 0); v != 2 {
		t.Fatalf("Enum = %v, want 2", v)
	}
}

func TestJSONProperties_MissingKeysReturnFallback(t *testing.T) {
	p := NewJSONProperties()
	if v := p.Bool("missing", true); v != true {
		t.Fatalf("Bool fallback = %v, want true", v)
	}
	if v := p.Int32("missing", 9); v != 9 {
		t.Fatalf("Int32 fallback = %v, want 9", v)
	}
	if v := p.Text("missing", "fallback"); v != "fallback" {
		t.Fatalf("Text fallback = %q, want fallback", v)
	}
}

func TestJSONProperties_EnumOutOfRangeStoredValueReportsFallback(t *testing.T) {
	p := NewJSONProperties()
	p.SetText("mode", "not-an-option")
	if v := p.Enum("mode", []string{"off", "on"}, 1); v != 1 {
		t.Fatalf("Enum with an unrecognized stored value = %v, want fallback 1", v)
	}
}

func TestJSONProperties_NestedChildScopes(t *testing.T) {
	p := NewJSONProperties()
	existed := p.BeginChild("nested")
	if existed {
		t.Fatal("BeginChild on a fresh tree must report false (created, not found)")
	}
	p.SetInt32("depth", 1)
	existed = p.BeginChild("deeper")
	if existed {
		t.Fatal("BeginChild for a second fresh scope must also report false")
	}
	p.SetText("leaf", "value")
	p.EndChild()
	p.EndChild()

	existed = p.BeginChild("nested")
	if !existed {
		t.Fatal("re-entering an existing scope must report true")
	}
	if v := p.Int32("depth", -1); v != 1 {
		t.Fatalf("Int32 in re-entered scope = %v, want 1", v)
	}
	existed = p.BeginChild("deeper")
	if !existed {
		t.Fatal("re-entering the inner scope must report true")
	}
	if v := p.Text("leaf", ""); v != "value" {
		t.Fatalf("Text in re-entered inner scope = %q, want value", v)
	}
}

func TestJSONProperties_EndChildAtRootIsNoop(t *testing.T) {
	p := NewJSONProperties()
	p.EndChild()
	p.SetInt32("x", 1)
	if v := p.Int32("x", 0); v != 1 {
		t.Fatalf("EndChild at root must not corrupt the root scope, got Int32=%v", v)
	}
}

func TestJSONProperties_JSONPassThrough(t *testing.T) {
	p := NewJSONProperties()
	p.SetJSON("blob", []byte(`{"a":1,"b":[1,2,3]}`))
	raw, ok := p.JSON("blob")
	if !ok {
		t.Fatal("expected JSON to find the stored blob")
	}
	if string(raw) == "" {
		t.Fatal("expected a non-empty raw message")
	}
	if _, ok := p.JSON("missing"); ok {
		t.Fatal("expected JSON for a missing key to report false")
	}
}

func TestJSONProperties_MarshalLoadRoundTrip(t *testing.T) {
	p := NewJSONProperties()
	p.SetText("name", "a")
	p.BeginChild("child")
	p.SetInt32("value", 3)
	p.EndChild()

	raw, err := p.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	loaded, err := LoadJSONProperties(raw)
	if err != nil {
		t.Fatalf("LoadJSONProperties: %v", err)
	}
	if v := loaded.Text("name", ""); v != "a" {
		t.Fatalf("Text after reload = %q, want a", v)
	}
	if !loaded.BeginChild("child") {
		t.Fatal("expected the child scope to survive the round trip")
	}
	if v := loaded.Int32("value", -1); v != 3 {
		t.Fatalf("Int32 in reloaded child = %v, want 3", v)
	}
}

func TestJSONProperties_LoadEmptyBytes(t *testing.T) {
	p, err := LoadJSONProperties(nil)
	if err != nil {
		t.Fatalf("LoadJSONProperties(nil): %v", err)
	}
	if v := p.Text("anything", "fallback"); v != "fallback" {
		t.Fatalf("Text on an empty document = %q, want fallback", v)
	}
}
