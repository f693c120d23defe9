package sqlite

import (
	"strings"

	"tracker/internal/repository"
)

// orderClause renders an ORDER BY list from the whitelisted columns.
// Unknown fields are skipped; id breaks ties so newer rows come first.
func orderClause(orders []repository.Order, columns map[string]string, idColumn string) string {
	var parts []string
	for _, o := range orders {
		col, ok := columns[o.Field]
		if !ok {
			continue
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
	}
	if len(parts) == 0 {
		parts = append(parts, columns["created_at"]+" DESC")
	}
	parts = append(parts, idColumn+" DESC")
	return " ORDER BY " + strings.Join(parts, ", ")
}

// limitClause appends LIMIT/OFFSET when a limit is set.
func limitClause(p repository.Page, args []any) (string, []any) {
	if p.Limit <= 0 {
		return "", args
	}
	return " LIMIT ? OFFSET ?", append(args, p.Limit, p.Offset)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s anywhere in the column.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
