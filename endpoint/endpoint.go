package endpoint

import (
	"time"

	"go.uber.org/zap"

	"github.com/roamstack/attractions-api/auth"
	"github.com/roamstack/attractions-api/config"
	"github.com/roamstack/attractions-api/db"
	"github.com/roamstack/attractions-api/log"
	"github.com/roamstack/attractions-api/rest"
	"github.com/roamstack/attractions-api/types"
)

const (
	DefaultPageSize    = 1000
	DefaultTokenExpiry = 24 * time.Hour
	DefaultUploadDir   = "public/uploads"

	// DefaultMaxUploadBytes caps photo uploads at 1 MB.
	DefaultMaxUploadBytes = int64(1_000_000)
)

type DataEndpointConfig struct {
	dbPath          string
	jwtSecret       string
	jwtExpiry       time.Duration
	defaultPageSize int
	uploadDir       string
	maxUploadBytes  int64
	naming          config.NamingConvention
	logger          log.Logger
}

func (cfg DataEndpointConfig) DefaultPageSize() int {
	return cfg.defaultPageSize
}

func (cfg DataEndpointConfig) UploadDir() string {
	return cfg.uploadDir
}

func (cfg DataEndpointConfig) MaxUploadBytes() int64 {
	return cfg.maxUploadBytes
}

func (cfg DataEndpointConfig) Naming() config.NamingConvention {
	return cfg.naming
}

func (cfg DataEndpointConfig) Logger() log.Logger {
	return cfg.logger
}

func (cfg *DataEndpointConfig) WithJWTSecret(secret string) *DataEndpointConfig {
	cfg.jwtSecret = secret
	return cfg
}

func (cfg *DataEndpointConfig) WithJWTExpiry(expiry time.Duration) *DataEndpointConfig {
	cfg.jwtExpiry = expiry
	return cfg
}

func (cfg *DataEndpointConfig) WithDefaultPageSize(pageSize int) *DataEndpointConfig {
	if pageSize > 0 {
		cfg.defaultPageSize = pageSize
	}
	return cfg
}

func (cfg *DataEndpointConfig) WithUploadDir(dir string) *DataEndpointConfig {
	if dir != "" {
		cfg.uploadDir = dir
	}
	return cfg
}

func (cfg *DataEndpointConfig) WithMaxUploadBytes(max int64) *DataEndpointConfig {
	if max > 0 {
		cfg.maxUploadBytes = max
	}
	return cfg
}

func (cfg *DataEndpointConfig) WithNaming(naming config.NamingConvention) *DataEndpointConfig {
	cfg.naming = naming
	return cfg
}

func (cfg DataEndpointConfig) NewEndpoint() (*DataEndpoint, error) {
	dbClient, err := db.NewDb(cfg.dbPath)
	if err != nil {
		return nil, err
	}
	return cfg.newEndpointWithDb(dbClient)
}

func (cfg DataEndpointConfig) newEndpointWithDb(dbClient *db.Db) (*DataEndpoint, error) {
	authn, err := auth.NewAuthenticator(cfg.jwtSecret, cfg.jwtExpiry)
	if err != nil {
		_ = dbClient.Close()
		return nil, err
	}
	return &DataEndpoint{
		restRouteGen: rest.NewRouteGenerator(dbClient, authn, cfg),
		dbClient:     dbClient,
	}, nil
}

type DataEndpoint struct {
	restRouteGen *rest.RouteGenerator
	dbClient     *db.Db
}

func NewEndpointConfig(dbPath string) (*DataEndpointConfig, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return NewEndpointConfigWithLogger(log.NewZapLogger(logger), dbPath), nil
}

func NewEndpointConfigWithLogger(logger log.Logger, dbPath string) *DataEndpointConfig {
	return &DataEndpointConfig{
		dbPath:          dbPath,
		jwtExpiry:       DefaultTokenExpiry,
		defaultPageSize: DefaultPageSize,
		uploadDir:       DefaultUploadDir,
		maxUploadBytes:  DefaultMaxUploadBytes,
		naming:          config.NewDefaultNaming(),
		logger:          logger,
	}
}

// RoutesREST generates the REST routes under the given path prefix.
func (e *DataEndpoint) RoutesREST(prefix string) []types.Route {
	return e.restRouteGen.Routes(prefix)
}

func (e *DataEndpoint) Close() error {
	return e.dbClient.Close()
}
