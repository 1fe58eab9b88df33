package cli

import (
	"github.com/spf13/cobra"

	js "github.com/reoring/mutations/jsonschema"
)

func newJSONSchemaCmd(a *app) *cobra.Command {
	var schemaPath string
	cmd := &cobra.Command{
		Use:   "jsonschema",
		Short: "Print the JSON Schema of a YAML-declared command",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, doc, err := a.load(schemaPath)
			if err != nil {
				return err
			}
			s, err := doc.Schema.JSONSchema()
			if err != nil {
				return err
			}
			s.Schema = js.Draft
			s.Title = c.Name()
			return writeIndented(a.out, s)
		},
	}
	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "YAML schema file")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}
