package db

import (
	"fmt"
	"strings"
)

// Filter folds optional search conditions into a single conjunctive WHERE
// clause with positional arguments. Absent parameters are simply never
// added, so they impose no constraint.
type Filter struct {
	conds []string
	args  []any
}

// Add appends one condition. expr must contain a single %d verb that is
// replaced with the positional parameter number, e.g. "status = $%d".
func (f *Filter) Add(expr string, arg any) {
	f.args = append(f.args, arg)
	f.conds = append(f.conds, fmt.Sprintf(expr, len(f.args)))
}

// Clause renders the accumulated conditions as a WHERE clause, or an empty
// string when no condition was added.
func (f *Filter) Clause() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

// Args returns the arguments matching the positional parameters in Clause.
func (f *Filter) Args() []any {
	return f.args
}
