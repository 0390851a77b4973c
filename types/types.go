// types package contains the public API types
// that are shared between the REST and storage layers
package types

import "net/http"

// ConditionItem is a single filter predicate against a document field.
type ConditionItem struct {
	Field    string      `json:"field"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`
}

// SQLOperators contains the SQL operator for a given query-string operator
var SQLOperators = map[string]string{
	"eq":  "=",
	"gt":  ">",
	"gte": ">=",
	"lt":  "<",
	"lte": "<=",
	"in":  "IN",
}

// PageInfo points at an adjacent page of a listing.
type PageInfo struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination carries the next/prev page descriptors for a listing. A nil
// descriptor means no page exists in that direction.
type Pagination struct {
	Next *PageInfo `json:"next,omitempty"`
	Prev *PageInfo `json:"prev,omitempty"`
}

// ListResult is the envelope emitted verbatim by every listing endpoint.
type ListResult struct {
	Success    bool                     `json:"success"`
	Count      int                      `json:"count"`
	Pagination Pagination               `json:"pagination"`
	Data       []map[string]interface{} `json:"data"`
}

// Route represents a request route to be served
type Route struct {
	Method  string
	Pattern string
	Handler http.Handler
}
