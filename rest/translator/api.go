package translator

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/roamstack/attractions-api/config"
	"github.com/roamstack/attractions-api/db"
	"github.com/roamstack/attractions-api/types"
)

// DefaultPageSize is used when no limit parameter is given and the endpoint
// configuration does not override it.
const DefaultPageSize = 1000

// reserved query keys control presentation, not filtering
var reservedParams = map[string]bool{
	"select": true,
	"sort":   true,
	"page":   true,
	"limit":  true,
}

// ListQuery is the parsed form of a listing request's query string: filter
// conditions, projection, sort order and pagination state.
type ListQuery struct {
	Where      []types.ConditionItem
	Fields     []string
	OrderBy    []db.ColumnOrder
	Page       int
	Limit      int
	StartIndex int
	EndIndex   int
}

// ParseListQuery translates query-string parameters into a ListQuery.
//
// Any non-reserved parameter becomes a filter condition. Comparison
// operators use the bracket syntax ("price[gt]=100"); the bracket token is
// parsed structurally, so a value that happens to spell an operator word is
// never reinterpreted. Parsing cannot fail: malformed numbers fall back to
// defaults and unknown bracket tokens fall back to equality.
func ParseListQuery(params url.Values, naming config.NamingConvention, defaultLimit int) ListQuery {
	if defaultLimit <= 0 {
		defaultLimit = DefaultPageSize
	}

	query := ListQuery{
		Where:   parseConditions(params, naming),
		Fields:  parseFields(params.Get("select"), naming),
		OrderBy: parseSort(params.Get("sort"), naming),
		Page:    parsePositiveInt(params.Get("page"), 1),
		Limit:   parsePositiveInt(params.Get("limit"), defaultLimit),
	}
	query.StartIndex = (query.Page - 1) * query.Limit
	query.EndIndex = query.Page * query.Limit
	return query
}

// PaginationFor derives the next/prev descriptors against the filtered total.
func (q ListQuery) PaginationFor(total int) types.Pagination {
	var pagination types.Pagination
	if q.EndIndex < total {
		pagination.Next = &types.PageInfo{Page: q.Page + 1, Limit: q.Limit}
	}
	if q.StartIndex > 0 {
		pagination.Prev = &types.PageInfo{Page: q.Page - 1, Limit: q.Limit}
	}
	return pagination
}

func parseConditions(params url.Values, naming config.NamingConvention) []types.ConditionItem {
	// Sort the keys first so that generated statements are deterministic
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var conditions []types.ConditionItem
	for _, key := range keys {
		field, operator := splitOperator(key)
		if reservedParams[field] {
			continue
		}
		field = naming.ToDocumentKey(field)

		for _, value := range params[key] {
			if operator == "in" {
				conditions = append(conditions, types.ConditionItem{
					Field:    field,
					Operator: "in",
					Value:    splitList(value),
				})
				continue
			}
			conditions = append(conditions, types.ConditionItem{
				Field:    field,
				Operator: operator,
				Value:    value,
			})
		}
	}
	return conditions
}

// splitOperator parses the bracket syntax "price[gt]" into field and
// operator. Bare keys and unknown bracket tokens filter by equality.
func splitOperator(key string) (string, string) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return key, "eq"
	}

	field := key[:open]
	switch operator := key[open+1 : len(key)-1]; operator {
	case "gt", "gte", "lt", "lte", "in":
		return field, operator
	default:
		return field, "eq"
	}
}

func splitList(value string) []interface{} {
	parts := strings.Split(value, ",")
	list := make([]interface{}, 0, len(parts))
	for _, part := range parts {
		list = append(list, strings.TrimSpace(part))
	}
	return list
}

func parseFields(spec string, naming config.NamingConvention) []string {
	if spec == "" {
		return nil
	}

	parts := strings.Split(spec, ",")
	fields := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			fields = append(fields, naming.ToDocumentKey(part))
		}
	}
	return fields
}

func parseSort(spec string, naming config.NamingConvention) []db.ColumnOrder {
	if spec == "" {
		return defaultSort()
	}

	parts := strings.Split(spec, ",")
	orders := make([]db.ColumnOrder, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		order := "ASC"
		if strings.HasPrefix(part, "-") {
			order = "DESC"
			part = part[1:]
		}
		orders = append(orders, db.ColumnOrder{Column: naming.ToDocumentKey(part), Order: order})
	}

	if len(orders) == 0 {
		return defaultSort()
	}
	return orders
}

func defaultSort() []db.ColumnOrder {
	return []db.ColumnOrder{{Column: "name", Order: "ASC"}}
}

func parsePositiveInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if n < 1 {
		return 1
	}
	return n
}
