package rest

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/roamstack/attractions-api/types"
)

// ApiRouter assembles the given routes, plus an optional metrics scrape
// endpoint, into a router.
func ApiRouter(routes []types.Route, metricsHandler http.Handler) *httprouter.Router {
	router := httprouter.New()
	for _, route := range routes {
		router.Handler(route.Method, route.Pattern, route.Handler)
	}
	if metricsHandler != nil {
		router.Handler(http.MethodGet, "/metrics", metricsHandler)
	}
	return router
}
