package repositories

import (
	"strings"

	"github.com/Masterminds/squirrel"
)

var squirrelNow = squirrel.Expr("now()")

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}
