// Package sqlxrepos implements the app repositories on PostgreSQL with sqlx.
package sqlxrepos

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// conditions accumulates the WHERE clause of a query along with its positional args.
type conditions struct {
	clauses []string
	args    []interface{}
}

// arg registers a value and returns its placeholder.
func (c *conditions) arg(v interface{}) string {
	c.args = append(c.args, v)
	return "$" + strconv.Itoa(len(c.args))
}

// add appends a clause; each `?` in it is replaced with the placeholder of the matching value.
func (c *conditions) add(clause string, vals ...interface{}) {
	for _, v := range vals {
		clause = strings.Replace(clause, "?", c.arg(v), 1)
	}
	c.clauses = append(c.clauses, clause)
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE (" + strings.Join(c.clauses, ") AND (") + ")"
}

// trapNoRowsErr maps sql.ErrNoRows to notFound.
func trapNoRowsErr(err, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// likePattern matches values containing s.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// prefixPattern matches values starting with s.
func prefixPattern(s string) string {
	return likeEscaper.Replace(s) + "%"
}
