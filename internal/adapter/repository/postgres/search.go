package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/infrastructure/postgres/generated"
)

// searchQuery accumulates a WHERE clause with positional arguments.
type searchQuery struct {
	conds []string
	args  []any
}

// where appends cond, replacing each ? with the next placeholder.
func (q *searchQuery) where(cond string, arg any) {
	q.args = append(q.args, arg)
	q.conds = append(q.conds, strings.Replace(cond, "?", "$"+strconv.Itoa(len(q.args)), 1))
}

func (q *searchQuery) clause() string {
	if len(q.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.conds, " AND ")
}

// count runs SELECT COUNT(*) over table with the accumulated filter.
func (q *searchQuery) count(ctx context.Context, db generated.DBTX, table string) (int64, error) {
	var total int64
	err := db.QueryRow(ctx, "SELECT COUNT(*) FROM "+table+q.clause(), q.args...).Scan(&total)
	return total, err
}

// page renders ORDER BY and LIMIT/OFFSET. column must come from a whitelist;
// id breaks ties so pages are stable.
func (q *searchQuery) page(column string, sort domain.Sort, limit, offset int) string {
	dir := " ASC"
	if sort.Desc() {
		dir = " DESC"
	}

	n := len(q.args)
	q.args = append(q.args, limit, offset)

	return " ORDER BY " + column + dir + ", id" + dir +
		" LIMIT $" + strconv.Itoa(n+1) + " OFFSET $" + strconv.Itoa(n+2)
}

// likePattern builds a case-insensitive substring pattern for ILIKE.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// sortColumn resolves a validated sort field to its column.
func sortColumn(field string) string {
	switch field {
	case domain.SortByName:
		return "name"
	case domain.SortByCode:
		return "code"
	case domain.SortByAmount:
		return "amount"
	case domain.SortByType:
		return "type"
	default:
		return "created_at"
	}
}

// collect scans every row with scan.
func collect[T any](rows pgx.Rows, scan func(pgx.Rows) (T, error)) ([]T, error) {
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}

	return out, rows.Err()
}
