package rest

import (
	"github.com/roamstack/attractions-api/auth"
	"github.com/roamstack/attractions-api/config"
	"github.com/roamstack/attractions-api/db"
	restEndpointV1 "github.com/roamstack/attractions-api/rest/endpoint/v1"
	"github.com/roamstack/attractions-api/types"
)

type RouteGenerator struct {
	dbClient *db.Db
	authn    *auth.Authenticator
	config   config.Config
}

func NewRouteGenerator(dbClient *db.Db, authn *auth.Authenticator, cfg config.Config) *RouteGenerator {
	return &RouteGenerator{
		dbClient: dbClient,
		authn:    authn,
		config:   cfg,
	}
}

func (g *RouteGenerator) Routes(prefix string) []types.Route {
	return restEndpointV1.Routes(prefix, g.dbClient, g.authn, g.config)
}
