package copyroles

import (
	"strings"
	"unicode/utf8"

	"github.com/alma-tools/copyroles/pkg/alma"
)

var roleTableHeaders = []string{"status", "role_type", "scope"}

// RenderRoles lays roles out as a plain text table with a dashed rule under
// the header. A missing scope description is left blank.
func RenderRoles(roles []alma.Role) string {
	rows := make([][]string, 0, len(roles))
	for _, role := range roles {
		rows = append(rows, []string{
			role.Status.Desc,
			role.RoleType.Desc,
			role.Scope.Desc,
		})
	}
	return renderTable(roleTableHeaders, rows)
}

// renderTable sizes each column to the wider of its header plus two and its
// widest cell, separates columns with two spaces and strips trailing blanks.
func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h) + 2
	}
	for _, row := range rows {
		for i, cell := range row {
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}

	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, formatRow(headers, widths), strings.Join(rule, "  "))
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths))
	}
	return strings.Join(lines, "\n")
}

func formatRow(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, cell := range cells {
		padded[i] = cell + strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell))
	}
	return strings.TrimRight(strings.Join(padded, "  "), " ")
}
