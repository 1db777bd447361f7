package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/driveshelf/driveshelf/internal/tree"
)

// newTreeCmd prints the folder tree rooted at a folder ID.
func newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <folder-id> [name]",
		Short: "Print the folder tree rooted at a folder",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if a.client == nil {
				return errors.New("service account not configured")
			}

			name := args[0]
			if len(args) > 1 {
				name = args[1]
			}

			root, err := a.tree.Build(cmd.Context(), args[0], name)
			if err != nil {
				return err
			}

			if flagJSON {
				return printJSON(root)
			}

			printNode(root, 0)

			return nil
		},
	}
}

// printNode renders one tree node and recurses with indentation.
func printNode(n *tree.Node, depth int) {
	indent := strings.Repeat("  ", depth)

	if n.IsFolder {
		fmt.Fprintf(os.Stdout, "%s%s/\n", indent, n.Name)
	} else {
		name := n.Name
		if n.DisplayName != "" {
			name = n.DisplayName
		}

		suffix := ""
		if n.IsProtected {
			suffix = " [protected]"
		}

		fmt.Fprintf(os.Stdout, "%s%s (%s)%s\n", indent, name, n.Size, suffix)
	}

	for _, c := range n.Children {
		printNode(c, depth+1)
	}
}
