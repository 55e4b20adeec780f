package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sbenjam1n/xsdform/internal/document"
	"github.com/sbenjam1n/xsdform/internal/editscript"
	"github.com/sbenjam1n/xsdform/internal/validator"
	"github.com/sbenjam1n/xsdform/internal/xsd"
)

var (
	validateSchema string
	validateEdits  string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run Tier 0-2 validation of an edit script against a schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := xsd.ParseFile(validateSchema)
		if err != nil {
			return err
		}
		script, err := editscript.ParseFile(validateEdits)
		if err != nil {
			return err
		}

		fmt.Printf("Validating %s against %s...\n", validateEdits, validateSchema)
		result := validator.Validate(document.Load(model, document.WithLogger(logger)), script)

		for _, d := range result.Details {
			if d.Passed {
				continue
			}
			fmt.Printf("  FAIL %s: expected %s, got %s\n", d.Check, d.Expected, d.Got)
			if d.Fix != "" {
				fmt.Printf("    Fix: %s\n", d.Fix)
			}
		}
		if !result.Passed {
			return fmt.Errorf("tier %d failed (code %d): %s", result.Tier, result.Code, result.Message)
		}
		fmt.Printf("PASS (tier %d): %s\n", result.Tier, result.Message)
		return nil
	},
}

func init() {
	schemaFlags(validateCmd, &validateSchema, &validateEdits)
	validateCmd.MarkFlagRequired("edits")
}
