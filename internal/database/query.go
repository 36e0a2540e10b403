package database

import (
	"strconv"
	"strings"
)

// Where accumulates AND-ed filter clauses with positional Postgres placeholders.
// Every "?" in a clause is rewritten to the same next $n, bound to its one argument.
type Where struct {
	clauses []string
	args    []interface{}
}

// Add appends clause with its argument.
func (w *Where) Add(clause string, arg interface{}) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, strings.ReplaceAll(clause, "?", "$"+strconv.Itoa(len(w.args))))
}

// Args returns the bound arguments in placeholder order.
func (w *Where) Args() []interface{} { return w.args }

// String renders " WHERE ..." or "" when no clause was added.
func (w *Where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// Limit clamps a requested page size.
func Limit(n int) string {
	if n <= 0 || n > 1000 {
		n = 200
	}
	return " LIMIT " + strconv.Itoa(n)
}
