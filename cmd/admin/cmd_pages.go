package main

import (
	"fmt"
	"strconv"
	"strings"

	"astro-admin-go/internal/pagination"

	"github.com/spf13/cobra"
)

var pagesJSON bool

var pagesCmd = &cobra.Command{
	Use:   "pages <current> <total>",
	Short: "Print the page links shown for a position in a paginated list",
	Example: `  astro-admin pages 5 10         # 1 ... 3 4 [5] 6 7 ... 10
  astro-admin pages 1 3 --json`,
	Args: cobra.ExactArgs(2),
	RunE: runPages,
}

func init() {
	pagesCmd.Flags().BoolVar(&pagesJSON, "json", false, "Print the window as JSON")
}

func runPages(cmd *cobra.Command, args []string) error {
	current, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("current page: %w", err)
	}
	total, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("total pages: %w", err)
	}
	items := pagination.Window(pagination.Clamp(current, total), total)
	if pagesJSON {
		if items == nil {
			items = []pagination.Item{}
		}
		return printJSON(cmd.OutOrStdout(), items)
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderPages(items))
	return nil
}

// renderPages prints the window on one line with the current page in
// brackets.
func renderPages(items []pagination.Item) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if item.Current {
			parts = append(parts, "["+item.String()+"]")
			continue
		}
		parts = append(parts, item.String())
	}
	return strings.Join(parts, " ")
}
