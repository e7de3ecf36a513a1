package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// printJSON writes a value as indented JSON to stdout.
func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	fmt.Println(string(out))
}

// column maps a table header to a gjson path inside one list element.
type column struct {
	header string
	path   string
}

// renderTable prints a JSON array as an aligned table, extracting each cell
// with gjson. Rows missing a field render an empty cell.
func renderTable(items any, cols []column) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode rows: %w", err)
	}

	parsed := gjson.ParseBytes(raw)
	if parsed.Type == gjson.Null {
		// An empty listing decodes as a nil slice.
		fmt.Println("No results")
		return nil
	}
	if !parsed.IsArray() {
		return fmt.Errorf("expected a list payload")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for i, col := range cols {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, col.header)
	}
	fmt.Fprintln(w)

	parsed.ForEach(func(_, row gjson.Result) bool {
		for i, col := range cols {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprint(w, row.Get(col.path).String())
		}
		fmt.Fprintln(w)
		return true
	})
	return w.Flush()
}

// printList renders a list payload as JSON or a table per the global flag.
func printList(items any, cols []column) error {
	if jsonOutput {
		printJSON(items)
		return nil
	}
	return renderTable(items, cols)
}
