package endpoint

import (
	"context"

	"github.com/roamstack/attractions-api/db"
	t "github.com/roamstack/attractions-api/rest/translator"
	"github.com/roamstack/attractions-api/types"
)

// listCollection executes a listing: exactly one count query and one data
// query, both built from the same conditions, and returns the envelope for
// the handler to serialize. The count is the filtered total, so next/prev
// reflect the pages the client can actually walk.
func (s *routeList) listCollection(ctx context.Context, coll *db.Collection, expand *db.Populate, query t.ListQuery) (*types.ListResult, error) {
	total, err := coll.CountDocuments(ctx, query.Where...)
	if err != nil {
		return nil, err
	}

	dbQuery := coll.Find(query.Where...).
		Sort(query.OrderBy...).
		Skip(query.StartIndex).
		Limit(query.Limit)
	if len(query.Fields) > 0 {
		dbQuery = dbQuery.Select(query.Fields...)
	}
	if expand != nil {
		dbQuery = dbQuery.Populate(*expand)
	}

	data, err := dbQuery.Exec(ctx)
	if err != nil {
		return nil, err
	}

	return &types.ListResult{
		Success:    true,
		Count:      len(data),
		Pagination: query.PaginationFor(total),
		Data:       data,
	}, nil
}
