package input

import "strings"

// rawTable is the source-agnostic shape both the CSV and Excel readers
// produce: a header row plus data rows, with column order irrelevant
// (spec §6: "header row required, column order irrelevant").
type rawTable struct {
	source string
	header []string
	rows   [][]string
}

// columnIndex maps a lower-cased header name to its column position.
func (t *rawTable) columnIndex() map[string]int {
	idx := make(map[string]int, len(t.header))
	for i, name := range t.header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return idx
}

// cell returns row[idx[col]], or "" if the column is absent or the row is
// short that field.
func cell(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
