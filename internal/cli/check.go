package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	mutations "github.com/reoring/mutations"
	"github.com/reoring/mutations/source"
)

type checkFlags struct {
	schema string
	inputs []string
	sets   []string
}

func newCheckCmd(a *app) *cobra.Command {
	f := &checkFlags{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run a schema against input documents",
		Long: `Merges the input documents (later files win), filters and validates them
against the schema and prints the outcome as JSON. Exits non-zero when
validation fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd, f)
		},
	}
	cmd.Flags().StringVarP(&f.schema, "schema", "s", "", "YAML schema file")
	cmd.Flags().StringArrayVarP(&f.inputs, "input", "i", nil, "Input document (JSON or YAML by extension, - for JSON on stdin)")
	cmd.Flags().StringArrayVar(&f.sets, "set", nil, "Input override key=value, merged last")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

type checkResult struct {
	Command string              `json:"command"`
	Success bool                `json:"success"`
	Inputs  mutations.Inputs    `json:"inputs,omitempty"`
	Errors  *mutations.ErrorSet `json:"errors,omitempty"`
}

func (a *app) runCheck(cmd *cobra.Command, f *checkFlags) error {
	c, _, err := a.load(f.schema)
	if err != nil {
		return err
	}
	var bags []any
	for _, path := range f.inputs {
		in, err := readInput(path, cmd.InOrStdin())
		if err != nil {
			return err
		}
		bags = append(bags, in)
	}
	if len(f.sets) > 0 {
		over, err := parseSets(f.sets)
		if err != nil {
			return err
		}
		bags = append(bags, over)
	}

	out, err := c.Run(cmd.Context(), bags...)
	if err != nil {
		return err
	}
	res := checkResult{Command: c.Name(), Success: out.Success()}
	if out.Success() {
		res.Inputs = out.Result()
	} else {
		res.Errors = out.Errors()
	}
	if err := writeIndented(a.out, res); err != nil {
		return err
	}
	if !out.Success() {
		return ErrFailed
	}
	return nil
}

func readInput(path string, stdin io.Reader) (mutations.Inputs, error) {
	if path == "-" {
		return source.JSONReader(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var in mutations.Inputs
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		in, err = source.YAML(data)
	default:
		in, err = source.JSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}

func parseSets(sets []string) (mutations.Inputs, error) {
	out := mutations.Inputs{}
	for _, s := range sets {
		k, v, ok := strings.Cut(s, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("--set %q: expected key=value", s)
		}
		out[k] = v
	}
	return out, nil
}

func writeIndented(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}
