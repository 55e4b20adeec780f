package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sbenjam1n/xsdform/internal/document"
)

var (
	treeSchema string
	treeEdits  string
	treePaths  bool
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the instance tree built from a schema and optional edit script",
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, rep, err := loadDocument(treeSchema, treeEdits)
		if err != nil {
			return err
		}
		if doc.Root() == nil {
			fmt.Println("(empty document)")
			return nil
		}

		if treePaths {
			for _, p := range doc.Paths() {
				if choices := doc.Choices(p); len(choices) > 0 {
					fmt.Printf("%s  [%s]\n", p, strings.Join(choices, "|"))
					continue
				}
				fmt.Println(p)
			}
			return nil
		}

		fmt.Print(document.FormatTree(doc.Root()))
		if treeEdits != "" {
			fmt.Printf("\n%d edits applied, %d skipped\n", rep.Applied, rep.Skipped)
		}
		return nil
	},
}

func init() {
	schemaFlags(treeCmd, &treeSchema, &treeEdits)
	treeCmd.Flags().BoolVar(&treePaths, "paths", false, "List indexed paths instead of the tree")
}
