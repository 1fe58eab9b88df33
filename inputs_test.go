package mutations_test

import (
	"errors"
	"net/url"
	"testing"
	"time"

	mutations "github.com/reoring/mutations"
)

func TestMergeInputs_LaterWins(t *testing.T) {
	got, err := mutations.MergeInputs(
		map[string]any{"a": 1, "b": 1},
		map[mutations.Symbol]any{"b": 2},
		map[any]any{"c": 3, 4: "four"},
	)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got["a"] != 1 || got["b"] != 2 || got["c"] != 3 || got["4"] != "four" {
		t.Fatalf("merged: %v", got)
	}
}

func TestMergeInputs_Empty(t *testing.T) {
	got, err := mutations.MergeInputs()
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("expected empty inputs, got %v %v", got, err)
	}
}

func TestMergeInputs_ArgumentErrors(t *testing.T) {
	_, err := mutations.MergeInputs(map[string]any{}, nil)
	var ae *mutations.ArgumentError
	if !errors.As(err, &ae) || ae.Index != 1 || ae.Got != nil {
		t.Fatalf("nil argument: %v", err)
	}
	_, err = mutations.MergeInputs(1)
	if !errors.As(err, &ae) || ae.Index != 0 || ae.Got != 1 {
		t.Fatalf("int argument: %v", err)
	}
	if ae.Error() != "mutations: argument 0 must be a map, got int" {
		t.Fatalf("message: %q", ae.Error())
	}
}

func TestNormalizeMap_URLValues(t *testing.T) {
	in, ok := mutations.NormalizeMap(url.Values{"one": {"1"}, "many": {"a", "b"}, "none": {}})
	if !ok {
		t.Fatalf("url.Values must normalize")
	}
	if in["one"] != "1" {
		t.Fatalf("single value: %v", in["one"])
	}
	if arr, ok := in["many"].([]any); !ok || len(arr) != 2 {
		t.Fatalf("multi value: %v", in["many"])
	}
	if in.Has("none") {
		t.Fatalf("empty value lists are skipped")
	}
}

func TestNormalizeMap_RejectsNonMaps(t *testing.T) {
	for _, v := range []any{nil, 1, "x", []any{}} {
		if _, ok := mutations.NormalizeMap(v); ok {
			t.Fatalf("%#v must not normalize", v)
		}
	}
}

func TestInputs_Getters(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	in := mutations.Inputs{
		"s": "x", "i": int64(2), "f": 1.5, "b": true, "t": now,
		"arr": []any{1}, "h": mutations.Inputs{"k": "v"}, "nil": nil,
	}
	if in.String("s") != "x" || in.Int("i") != 2 || in.Float("f") != 1.5 || !in.Bool("b") || !in.Time("t").Equal(now) {
		t.Fatalf("scalar getters")
	}
	if len(in.Slice("arr")) != 1 || in.Hash("h").String("k") != "v" {
		t.Fatalf("composite getters")
	}
	if in.String("i") != "" || in.Int("s") != 0 {
		t.Fatalf("type-mismatched getters must return zero values")
	}
	if !in.Has("nil") || in.Has("missing") {
		t.Fatalf("Has must see nil values")
	}
}

func TestInputs_Clone(t *testing.T) {
	in := mutations.Inputs{"h": mutations.Inputs{"k": "v"}, "arr": []any{mutations.Inputs{"x": 1}}}
	cp := in.Clone()
	cp.Hash("h")["k"] = "changed"
	cp.Slice("arr")[0].(mutations.Inputs)["x"] = 2
	if in.Hash("h")["k"] != "v" {
		t.Fatalf("nested hash shared after clone")
	}
	if in.Slice("arr")[0].(mutations.Inputs)["x"] != 1 {
		t.Fatalf("array element shared after clone")
	}
	var nilIn mutations.Inputs
	if nilIn.Clone() != nil {
		t.Fatalf("clone of nil must be nil")
	}
}

func TestParseType(t *testing.T) {
	for name, want := range map[string]mutations.Type{
		"string": mutations.TypeString, "int": mutations.TypeInteger, "number": mutations.TypeFloat,
		"bool": mutations.TypeBoolean, "date": mutations.TypeTime, "object": mutations.TypeHash,
	} {
		got, ok := mutations.ParseType(name)
		if !ok || got != want {
			t.Fatalf("%s: got %v %v", name, got, ok)
		}
	}
	if _, ok := mutations.ParseType("decimal"); ok {
		t.Fatalf("unknown type must not parse")
	}
	if mutations.TypeInteger.String() != "integer" {
		t.Fatalf("String(): %s", mutations.TypeInteger)
	}
}
