package sqlxrepos

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/trezcool/madrasa/core"
)

// orderingClause renders " ORDER BY ..." or nothing.
func orderingClause(ordering []core.DBOrdering) string {
	if len(ordering) == 0 {
		return ""
	}
	parts := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		parts = append(parts, ord.String())
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// trapNoRowsErr maps sql.ErrNoRows to the domain's not-found error.
func trapNoRowsErr(err, notFound error) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return err
}

// inArgs renders the "$n,$n+1,..." placeholders and args for an IN clause.
func inArgs(ids []string, start int) (string, []interface{}) {
	placeholders := make([]string, 0, len(ids))
	args := make([]interface{}, 0, len(ids))
	for i, id := range ids {
		placeholders = append(placeholders, "$"+strconv.Itoa(start+i))
		args = append(args, id)
	}
	return strings.Join(placeholders, ","), args
}
