package db

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roamstack/attractions-api/types"
)

// SelectInfo describes a SELECT against a document collection
type SelectInfo struct {
	Collection string
	Where      []types.ConditionItem
	OrderBy    []ColumnOrder
	Skip       int
	Limit      int
}

type ColumnOrder struct {
	Column string
	Order  string // "ASC" or "DESC"
}

func buildSelectQuery(info *SelectInfo) (string, []interface{}) {
	values := []interface{}{info.Collection}
	query := "SELECT id, body FROM documents WHERE collection = ?"

	if condition := buildCondition(info.Where, &values); condition != "" {
		query += " AND " + condition
	}

	if len(info.OrderBy) > 0 {
		query += " ORDER BY "
		for i, order := range info.OrderBy {
			if i > 0 {
				query += ", "
			}
			query += fieldPath(order.Column) + " " + order.Order
		}
	}

	if info.Limit > 0 {
		query += " LIMIT ?"
		values = append(values, info.Limit)
	}
	if info.Skip > 0 {
		if info.Limit <= 0 {
			// SQLite requires a LIMIT clause before OFFSET
			query += " LIMIT -1"
		}
		query += " OFFSET ?"
		values = append(values, info.Skip)
	}

	return query, values
}

func buildCountQuery(collection string, where []types.ConditionItem) (string, []interface{}) {
	values := []interface{}{collection}
	query := "SELECT COUNT(*) AS total FROM documents WHERE collection = ?"
	if condition := buildCondition(where, &values); condition != "" {
		query += " AND " + condition
	}
	return query, values
}

func buildDeleteQuery(collection string, where []types.ConditionItem) (string, []interface{}) {
	values := []interface{}{collection}
	query := "DELETE FROM documents WHERE collection = ?"
	if condition := buildCondition(where, &values); condition != "" {
		query += " AND " + condition
	}
	return query, values
}

func buildCondition(where []types.ConditionItem, values *[]interface{}) string {
	expression := ""
	for _, item := range where {
		op, found := types.SQLOperators[item.Operator]
		if !found {
			op = "="
		}

		if expression != "" {
			expression += " AND "
		}

		path := fieldPath(item.Field)
		if op == "IN" {
			list := toValueList(item.Value)
			placeholder := strings.Repeat("?,", len(list))
			expression += path + " IN (" + strings.TrimSuffix(placeholder, ",") + ")"
			for _, value := range list {
				*values = append(*values, bindValue(value))
			}
		} else {
			expression += path + " " + op + " ?"
			*values = append(*values, bindValue(item.Value))
		}
	}
	return expression
}

// fieldPath builds the json_extract expression for a document field. Field
// names are interpolated into the statement, so everything outside
// [A-Za-z0-9_.] is stripped.
func fieldPath(name string) string {
	var builder strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
			builder.WriteRune(r)
		}
	}
	return fmt.Sprintf("json_extract(body, '$.%s')", builder.String())
}

func toValueList(value interface{}) []interface{} {
	if list, ok := value.([]interface{}); ok {
		return list
	}
	return []interface{}{value}
}

// bindValue binds values that parse as numbers numerically so that SQLite
// compares them with numeric affinity instead of text collation.
func bindValue(value interface{}) interface{} {
	if s, ok := value.(string); ok {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return n
		}
	}
	return value
}
