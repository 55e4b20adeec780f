package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	rulesSchema string
	rulesEdits  string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Rebuild and list the logical rules of the edited document",
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, _, err := loadDocument(rulesSchema, rulesEdits)
		if err != nil {
			return err
		}

		records := doc.RebuildRules()
		if len(records) == 0 {
			fmt.Println("No rules.")
			return nil
		}
		for _, r := range records {
			mode := "auto"
			if r.Manual {
				mode = "manual"
			}
			fmt.Printf("%d  %s  [%s]\n    %s\n", r.ID, r.Unit, mode, r.Text)
			for _, e := range doc.Roles(r.Unit) {
				fmt.Printf("      %-11s %s\n", e.Role, e.UID)
			}
		}
		return nil
	},
}

func init() {
	schemaFlags(rulesCmd, &rulesSchema, &rulesEdits)
}
