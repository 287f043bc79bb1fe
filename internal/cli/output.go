package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mesh-intelligence/tagshelf/pkg/types"
)

const maxNameWidth = 40

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// printTable renders rows under header with aligned columns, trimming
// trailing whitespace from each line.
func printTable(w io.Writer, header []string, rows [][]string) {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(header, "\t"))
	dashes := make([]string, len(header))
	for i, h := range header {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()

	for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

// printTags prints tags in a human-readable table format.
func printTags(w io.Writer, tags []types.Tag) {
	if len(tags) == 0 {
		fmt.Fprintln(w, "No tags found.")
		return
	}

	rows := make([][]string, len(tags))
	for i, t := range tags {
		rows[i] = []string{t.ID, truncate(t.Name), truncate(t.Translation), t.MainCategory, t.SubCategory}
	}
	printTable(w, []string{"ID", "NAME", "TRANSLATION", "MAIN", "SUB"}, rows)
	fmt.Fprintf(w, "Total: %d tag(s)\n", len(tags))
}

// selectedRow is one entry of the selection as shown by select list.
type selectedRow struct {
	Position int       `json:"position"`
	Tag      types.Tag `json:"tag"`
	Weight   int       `json:"weight"`
}

func selectedRows(tags []types.Tag, weights types.Weights) []selectedRow {
	rows := make([]selectedRow, len(tags))
	for i, t := range tags {
		rows[i] = selectedRow{Position: i, Tag: t, Weight: weights.Get(t.ID)}
	}
	return rows
}

func printSelection(w io.Writer, rows []selectedRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "Nothing selected.")
		return
	}

	table := make([][]string, len(rows))
	for i, r := range rows {
		kind := r.Tag.MainCategory
		if r.Tag.IsManual() {
			kind = "(manual)"
		}
		table[i] = []string{fmt.Sprint(r.Position), r.Tag.ID, truncate(r.Tag.Name), kind, fmt.Sprint(r.Weight)}
	}
	printTable(w, []string{"#", "ID", "NAME", "MAIN", "WEIGHT"}, table)
}

func printCategories(w io.Writer, categories []types.Category) {
	if len(categories) == 0 {
		fmt.Fprintln(w, "No categories found.")
		return
	}
	for _, c := range categories {
		if len(c.Sub) == 0 {
			fmt.Fprintln(w, c.Main)
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", c.Main, strings.Join(c.Sub, ", "))
	}
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) > maxNameWidth {
		return string(r[:maxNameWidth-3]) + "..."
	}
	return s
}
