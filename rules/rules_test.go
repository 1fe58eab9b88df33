package rules_test

import (
	"context"
	"testing"
	"time"

	mutations "github.com/reoring/mutations"
	"github.com/reoring/mutations/dsl"
	"github.com/reoring/mutations/rules"
)

func orderCommand(r rules.Rule) *mutations.Command[bool] {
	schema := dsl.MustBuild(
		dsl.Required(dsl.String("status").In("draft", "confirmed")),
		dsl.Optional(
			dsl.Array("items", dsl.Hash("",
				dsl.Required(dsl.String("sku")),
				dsl.Optional(dsl.Integer("qty")),
			)),
			dsl.String("coupon"),
			dsl.String("note"),
			dsl.Time("starts_at"),
			dsl.Time("ends_at"),
			dsl.Integer("total"),
			dsl.Float("paid"),
		),
	)
	return mutations.New("order", schema, func(ctx context.Context, x *mutations.Execution) (bool, error) {
		return true, nil
	}, mutations.WithValidate(r))
}

func run(t *testing.T, r rules.Rule, in map[string]any) *mutations.ErrorSet {
	t.Helper()
	out, err := orderCommand(r).Run(context.Background(), in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return out.Errors()
}

func TestIfThen(t *testing.T) {
	r := rules.If("status", rules.Eq, "confirmed").Then(rules.AtLeastOne("items"), rules.Present("coupon"))

	errs := run(t, r, map[string]any{"status": "confirmed", "items": []any{}})
	if errs.Code("items") != mutations.CodeLength || errs.Code("coupon") != mutations.CodeRequired {
		t.Fatalf("symbolic: %v", errs.Symbolic())
	}
	if errs := run(t, r, map[string]any{"status": "draft", "items": []any{}}); !errs.Empty() {
		t.Fatalf("condition must gate the rules: %v", errs.Symbolic())
	}
}

func TestComposedConditions(t *testing.T) {
	big := rules.If("total", rules.Ge, 100)
	confirmed := rules.If("status", rules.Eq, "confirmed")

	and := big.And(confirmed)
	or := rules.IfAny(big, confirmed)
	cases := []struct {
		in       mutations.Inputs
		and, any bool
	}{
		{mutations.Inputs{"total": int64(150), "status": "confirmed"}, true, true},
		{mutations.Inputs{"total": int64(150), "status": "draft"}, false, true},
		{mutations.Inputs{"total": int64(10), "status": "draft"}, false, false},
		{mutations.Inputs{"status": "confirmed"}, false, true},
	}
	for i, tc := range cases {
		if and.Holds(tc.in) != tc.and || or.Holds(tc.in) != tc.any {
			t.Fatalf("case %d: and=%v any=%v", i, and.Holds(tc.in), or.Holds(tc.in))
		}
	}
	if !confirmed.Or(big).Holds(mutations.Inputs{"status": "confirmed"}) {
		t.Fatalf("Or must hold when one side holds")
	}
}

func TestAbsent(t *testing.T) {
	r := rules.If("status", rules.Eq, "draft").Then(rules.Absent("coupon"))
	errs := run(t, r, map[string]any{"status": "draft", "coupon": "SAVE"})
	if errs.Code("coupon") != mutations.CodeInvalid {
		t.Fatalf("symbolic: %v", errs.Symbolic())
	}
}

func TestUniqueBy(t *testing.T) {
	errs := run(t, rules.UniqueBy("items", "sku"), map[string]any{
		"status": "draft",
		"items": []any{
			map[string]any{"sku": "A"},
			map[string]any{"sku": "B"},
			map[string]any{"sku": "A"},
			map[string]any{"sku": "A"},
		},
	})
	if errs.Len() != 2 || errs.Code("items.2.sku") != rules.CodeUnique || errs.Code("items.3.sku") != rules.CodeUnique {
		t.Fatalf("symbolic: %v", errs.Symbolic())
	}
	if errs.Message("items.2.sku") != "Sku is duplicated" {
		t.Fatalf("message: %q", errs.Message("items.2.sku"))
	}
	if first := errs.Atoms()[0].Params["first"]; first != 0 {
		t.Fatalf("first index: %v", first)
	}
}

func TestCompare(t *testing.T) {
	r := rules.All(
		rules.Compare("starts_at", rules.Lt, "ends_at", mutations.CodeRange),
		rules.Compare("paid", rules.Le, "total", "overpaid"),
	)
	errs := run(t, r, map[string]any{
		"status":    "draft",
		"starts_at": "2024-02-01",
		"ends_at":   "2024-01-01",
		"total":     10,
		"paid":      "10.5",
	})
	if errs.Code("starts_at") != mutations.CodeRange || errs.Code("paid") != "overpaid" {
		t.Fatalf("symbolic: %v", errs.Symbolic())
	}
	if errs := run(t, r, map[string]any{"status": "draft", "starts_at": "2024-01-01"}); !errs.Empty() {
		t.Fatalf("missing operands are skipped: %v", errs.Symbolic())
	}
}

func TestValueAt(t *testing.T) {
	in := mutations.Inputs{
		"items": []any{mutations.Inputs{"sku": "A"}},
		"meta":  map[string]any{"tags": []string{"x", "y"}},
		"when":  time.Unix(0, 0),
	}
	if v, ok := rules.ValueAt(in, "items.0.sku"); !ok || v != "A" {
		t.Fatalf("items.0.sku: %v %v", v, ok)
	}
	if v, ok := rules.ValueAt(in, "meta.tags.1"); !ok || v != "y" {
		t.Fatalf("meta.tags.1: %v %v", v, ok)
	}
	for _, p := range []string{"items.1.sku", "items.x", "meta.none", "when.year"} {
		if _, ok := rules.ValueAt(in, p); ok {
			t.Fatalf("%s must not resolve", p)
		}
	}
}

func TestOperators(t *testing.T) {
	in := mutations.Inputs{"n": int64(5), "f": 2.5, "s": "b", "u": uint(7)}
	cases := []struct {
		cond rules.Conditional
		want bool
	}{
		{rules.If("n", rules.Eq, 5), true},
		{rules.If("n", rules.Ne, 5), false},
		{rules.If("n", rules.Lt, 6.5), true},
		{rules.If("f", rules.Gt, 2), true},
		{rules.If("s", rules.Le, "b"), true},
		{rules.If("s", rules.Gt, "c"), false},
		{rules.If("u", rules.Ge, 7), true},
		{rules.If("s", rules.Eq, 1), false},
		{rules.If("s", rules.Lt, 1), false},
		{rules.If("missing", rules.Ne, 1), false},
	}
	for i, tc := range cases {
		if got := tc.cond.Holds(in); got != tc.want {
			t.Fatalf("case %d: got %v", i, got)
		}
	}
}
