package db

import (
	"context"

	"github.com/roamstack/attractions-api/types"
)

// Query is a lazily-built query against a collection. Chained calls only
// record intent; the statement is generated and executed once by Exec.
type Query struct {
	coll     *Collection
	where    []types.ConditionItem
	fields   []string
	orderBy  []ColumnOrder
	skip     int
	limit    int
	populate []Populate
}

// Populate inlines the document referenced by LocalField from the given
// collection under Path, join-like. An empty Fields keeps the whole related
// document.
type Populate struct {
	Path       string
	Collection string
	LocalField string
	Fields     []string
}

// Select restricts the fields returned for each document. The identifier is
// always retained.
func (q *Query) Select(fields ...string) *Query {
	q.fields = fields
	return q
}

func (q *Query) Sort(orders ...ColumnOrder) *Query {
	q.orderBy = orders
	return q
}

func (q *Query) Skip(n int) *Query {
	q.skip = n
	return q
}

func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

func (q *Query) Populate(spec Populate) *Query {
	q.populate = append(q.populate, spec)
	return q
}

// Exec generates and runs the composed query exactly once.
func (q *Query) Exec(ctx context.Context) ([]map[string]interface{}, error) {
	info := &SelectInfo{
		Collection: q.coll.name,
		Where:      q.where,
		OrderBy:    q.orderBy,
		Skip:       q.skip,
		Limit:      q.limit,
	}
	query, values := buildSelectQuery(info)

	rs, err := q.coll.db.session.ExecuteIter(ctx, query, values...)
	if err != nil {
		return nil, err
	}

	rows := rs.Values()
	results := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		doc, err := decodeDocument(row)
		if err != nil {
			return nil, err
		}
		results = append(results, doc)
	}

	for _, spec := range q.populate {
		if err := q.expand(ctx, results, spec); err != nil {
			return nil, err
		}
	}

	if len(q.fields) > 0 {
		keep := append([]string{}, q.fields...)
		for _, spec := range q.populate {
			keep = append(keep, spec.Path)
		}
		for i, doc := range results {
			results[i] = projectFields(doc, keep)
		}
	}

	return results, nil
}

// expand resolves one populate path with a single IN query over the related
// collection.
func (q *Query) expand(ctx context.Context, results []map[string]interface{}, spec Populate) error {
	seen := make(map[string]bool)
	refs := make([]interface{}, 0, len(results))
	for _, doc := range results {
		ref, _ := doc[spec.LocalField].(string)
		if ref != "" && !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	if len(refs) == 0 {
		return nil
	}

	related := q.coll.db.Collection(spec.Collection)
	docs, err := related.Find(types.ConditionItem{Field: "id", Operator: "in", Value: refs}).Exec(ctx)
	if err != nil {
		return err
	}

	byID := make(map[string]map[string]interface{}, len(docs))
	for _, doc := range docs {
		if id, ok := doc["id"].(string); ok {
			byID[id] = doc
		}
	}

	for _, doc := range results {
		ref, _ := doc[spec.LocalField].(string)
		if rel, ok := byID[ref]; ok {
			if len(spec.Fields) > 0 {
				rel = projectFields(rel, spec.Fields)
			}
			doc[spec.Path] = rel
		}
	}
	return nil
}

func projectFields(doc map[string]interface{}, fields []string) map[string]interface{} {
	projected := make(map[string]interface{}, len(fields)+1)
	if id, ok := doc["id"]; ok {
		projected["id"] = id
	}
	for _, field := range fields {
		if value, ok := doc[field]; ok {
			projected[field] = value
		}
	}
	return projected
}
