package mutations_test

import (
	"context"
	"strconv"
	"testing"

	mutations "github.com/reoring/mutations"
	"github.com/reoring/mutations/dsl"
	"github.com/reoring/mutations/source"
)

func benchCommand() *mutations.Command[int] {
	schema := dsl.MustBuild(
		dsl.Required(
			dsl.String("name").MaxLength(32),
			dsl.Integer("amount").Min(0),
			dsl.Array("items", dsl.Hash("",
				dsl.Required(dsl.String("sku"), dsl.Integer("qty")),
			)),
		),
		dsl.Optional(dsl.Boolean("notify").Default(false)),
	)
	return mutations.New("bench", schema, func(ctx context.Context, x *mutations.Execution) (int, error) {
		return len(x.Inputs().Slice("items")), nil
	})
}

func benchInputs(n int) map[string]any {
	items := make([]any, n)
	for i := range items {
		items[i] = map[string]any{"sku": "sku-" + strconv.Itoa(i), "qty": strconv.Itoa(i + 1)}
	}
	return map[string]any{"name": "bench", "amount": 10, "items": items, "extra": true}
}

func BenchmarkRun(b *testing.B) {
	for _, n := range []int{1, 100} {
		b.Run("items="+strconv.Itoa(n), func(b *testing.B) {
			cmd := benchCommand()
			in := benchInputs(n)
			ctx := context.Background()
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				out, err := cmd.Run(ctx, in)
				if err != nil || !out.Success() {
					b.Fatalf("run failed: %v %v", err, out.Errors())
				}
			}
		})
	}
}

func BenchmarkRun_FromJSON(b *testing.B) {
	cmd := benchCommand()
	data := []byte(`{"name":"bench","amount":10,"items":[{"sku":"a","qty":1},{"sku":"b","qty":2}],"extra":true}`)
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		in, err := source.JSON(data)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := cmd.Run(ctx, in); err != nil {
			b.Fatal(err)
		}
	}
}
