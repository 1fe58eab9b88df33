// Package cli implements the mutations command line: checking input files
// against YAML-declared schemas, exporting JSON Schema, and serving commands
// over HTTP.
package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	mutations "github.com/reoring/mutations"
	"github.com/reoring/mutations/dsl/yamlschema"
	"github.com/reoring/mutations/i18n"
	"github.com/reoring/mutations/internal/logging"
)

// ErrFailed is returned when a checked input failed validation. The outcome
// has already been printed; callers only set the exit status.
var ErrFailed = errors.New("validation failed")

type app struct {
	out, errOut io.Writer
	logger      *slog.Logger
	translator  i18n.Translator

	logLevel  string
	logFormat string
	lang      string
}

// NewRootCmd builds the command tree writing results to out and logs to
// errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut, logger: logging.NewNop()}
	root := &cobra.Command{
		Use:           "mutations",
		Short:         "Validate inputs against declared command schemas",
		Long:          `mutations filters, coerces and validates input documents against command schemas declared in YAML.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "text", "Log format (text, json)")
	root.PersistentFlags().StringVar(&a.lang, "lang", "en", "Language of error messages (en, ja)")

	root.AddCommand(newCheckCmd(a), newJSONSchemaCmd(a), newServeCmd(a))
	return root
}

func (a *app) setup() error {
	level, err := logging.ParseLevel(a.logLevel)
	if err != nil {
		return err
	}
	l, err := logging.NewWriter(a.errOut, level, a.logFormat)
	if err != nil {
		return err
	}
	a.logger = l
	a.translator = i18n.Dictionary(a.lang)
	return nil
}

// echoCommand is a command whose Execute returns the validated inputs; it is
// what the CLI runs for schemas that have no Go business logic attached.
type echoCommand = mutations.Command[mutations.Inputs]

func (a *app) load(path string, opts ...mutations.Option) (*echoCommand, *yamlschema.Document, error) {
	doc, err := yamlschema.Load(path)
	if err != nil {
		return nil, nil, err
	}
	name := doc.Command
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	opts = append([]mutations.Option{
		mutations.WithLogger(a.logger),
		mutations.WithTranslator(a.translator),
	}, opts...)
	cmd := mutations.New(name, doc.Schema, func(_ context.Context, x *mutations.Execution) (mutations.Inputs, error) {
		return x.Inputs().Clone(), nil
	}, opts...)
	return cmd, doc, nil
}
