package mutations_test

import (
	"context"
	"testing"

	mutations "github.com/reoring/mutations"
	"github.com/reoring/mutations/dsl"
)

type address struct {
	City string `json:"city"`
	Zip  string `json:"zip"`
}

type signup struct {
	Name    string   `json:"name"`
	Age     int64    `json:"age"`
	Tags    []string `json:"tags"`
	Address address  `json:"address"`
}

func TestField_GetLookup(t *testing.T) {
	in := mutations.Inputs{"age": int64(3), "name": "x"}
	age := mutations.NewField[int64]("age")
	if age.Get(in) != 3 || age.Name() != "age" {
		t.Fatalf("Get: %d", age.Get(in))
	}
	wrong := mutations.NewField[string]("age")
	if v, ok := wrong.Lookup(in); ok || v != "" {
		t.Fatalf("Lookup with the wrong type must fail, got %q %v", v, ok)
	}
	age.Set(in, 4)
	if in.Int("age") != 4 {
		t.Fatalf("Set through Inputs: %v", in)
	}
}

func TestBind_FromValidatedInputs(t *testing.T) {
	schema := dsl.MustBuild(
		dsl.Required(
			dsl.String("name"),
			dsl.Integer("age"),
		),
		dsl.Optional(
			dsl.Array("tags", dsl.String("")),
			dsl.Hash("address").Required(dsl.String("city")).Optional(dsl.String("zip")),
		),
	)
	cmd := mutations.New("signup", schema, func(ctx context.Context, x *mutations.Execution) (signup, error) {
		var s signup
		if err := x.Bind(&s); err != nil {
			return s, err
		}
		return s, nil
	})
	out, err := cmd.Run(context.Background(), map[string]any{
		"name":    "Ann",
		"age":     "31",
		"tags":    []any{"a", "b"},
		"address": map[string]any{"city": "Kyoto", "zip": 6000000},
	})
	if err != nil || !out.Success() {
		t.Fatalf("expected success: err=%v errs=%v", err, out.Errors())
	}
	got := out.Result()
	if got.Name != "Ann" || got.Age != 31 || len(got.Tags) != 2 || got.Address.City != "Kyoto" || got.Address.Zip != "6000000" {
		t.Fatalf("bound: %+v", got)
	}

	viaFunc, err := mutations.Bind[signup](out.Inputs())
	if err != nil || viaFunc.Address.City != "Kyoto" {
		t.Fatalf("Bind: %+v %v", viaFunc, err)
	}
}

func TestBind_TypeClash(t *testing.T) {
	if _, err := mutations.Bind[signup](mutations.Inputs{"age": "not a number"}); err == nil {
		t.Fatalf("expected a decode error")
	}
}
