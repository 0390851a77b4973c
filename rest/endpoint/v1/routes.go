package endpoint

import (
	"net/http"
	"path"

	"github.com/julienschmidt/httprouter"

	"github.com/roamstack/attractions-api/auth"
	"github.com/roamstack/attractions-api/config"
	"github.com/roamstack/attractions-api/db"
	"github.com/roamstack/attractions-api/log"
	"github.com/roamstack/attractions-api/types"
)

// routeList holds the collaborators every handler needs
type routeList struct {
	attractions *db.Collection
	products    *db.Collection
	users       *db.Collection
	authn       *auth.Authenticator
	config      config.Config
	logger      log.Logger
	params      func(*http.Request, string) string
}

func routeParam(r *http.Request, name string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(name)
}

// Routes returns a slice of all the endpoint routes.
//
// Radius search lives under its own /radius root because httprouter does not
// allow a static segment next to the :attractionId wildcard.
func Routes(prefix string, dbConn *db.Db, authn *auth.Authenticator, cfg config.Config) []types.Route {
	rl := &routeList{
		attractions: dbConn.Collection("attractions"),
		products:    dbConn.Collection("products"),
		users:       dbConn.Collection("users"),
		authn:       authn,
		config:      cfg,
		logger:      cfg.Logger(),
		params:      routeParam,
	}

	protected := func(handler http.HandlerFunc, roles ...string) http.Handler {
		return authn.RequireAuth(handler, roles...)
	}

	routes := []types.Route{
		{
			Method:  http.MethodGet,
			Pattern: path.Join(prefix, "/attractions"),
			Handler: http.HandlerFunc(rl.GetAttractions),
		},
		{
			Method:  http.MethodPost,
			Pattern: path.Join(prefix, "/attractions"),
			Handler: protected(rl.AddAttraction, "publisher", "admin"),
		},
		{
			Method:  http.MethodGet,
			Pattern: path.Join(prefix, "/attractions/:attractionId"),
			Handler: http.HandlerFunc(rl.GetAttraction),
		},
		{
			Method:  http.MethodPut,
			Pattern: path.Join(prefix, "/attractions/:attractionId"),
			Handler: protected(rl.UpdateAttraction),
		},
		{
			Method:  http.MethodDelete,
			Pattern: path.Join(prefix, "/attractions/:attractionId"),
			Handler: protected(rl.DeleteAttraction),
		},
		{
			Method:  http.MethodPut,
			Pattern: path.Join(prefix, "/attractions/:attractionId/photo"),
			Handler: protected(rl.UploadAttractionPhoto),
		},
		{
			Method:  http.MethodPut,
			Pattern: path.Join(prefix, "/attractions/:attractionId/like"),
			Handler: protected(rl.LikeAttraction),
		},
		{
			Method:  http.MethodPut,
			Pattern: path.Join(prefix, "/attractions/:attractionId/bookmark"),
			Handler: protected(rl.BookmarkAttraction),
		},
		{
			Method:  http.MethodGet,
			Pattern: path.Join(prefix, "/attractions/:attractionId/products"),
			Handler: http.HandlerFunc(rl.GetAttractionProducts),
		},
		{
			Method:  http.MethodPost,
			Pattern: path.Join(prefix, "/attractions/:attractionId/products"),
			Handler: protected(rl.AddProduct, "publisher", "admin"),
		},
		{
			Method:  http.MethodGet,
			Pattern: path.Join(prefix, "/radius/:lat/:lon/:distance"),
			Handler: http.HandlerFunc(rl.GetAttractionsInRadius),
		},
		{
			Method:  http.MethodGet,
			Pattern: path.Join(prefix, "/products"),
			Handler: http.HandlerFunc(rl.GetProducts),
		},
		{
			Method:  http.MethodGet,
			Pattern: path.Join(prefix, "/products/:productId"),
			Handler: http.HandlerFunc(rl.GetProduct),
		},
		{
			Method:  http.MethodPut,
			Pattern: path.Join(prefix, "/products/:productId"),
			Handler: protected(rl.UpdateProduct),
		},
		{
			Method:  http.MethodDelete,
			Pattern: path.Join(prefix, "/products/:productId"),
			Handler: protected(rl.DeleteProduct),
		},
		{
			Method:  http.MethodPost,
			Pattern: path.Join(prefix, "/auth/register"),
			Handler: http.HandlerFunc(rl.Register),
		},
		{
			Method:  http.MethodPost,
			Pattern: path.Join(prefix, "/auth/login"),
			Handler: http.HandlerFunc(rl.Login),
		},
		{
			Method:  http.MethodGet,
			Pattern: path.Join(prefix, "/auth/me"),
			Handler: protected(rl.Me),
		},
	}
	return routes
}
