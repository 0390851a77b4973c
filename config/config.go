package config

import (
	"github.com/roamstack/attractions-api/log"
)

// Config is the runtime configuration surface consumed by the REST layer.
type Config interface {
	// DefaultPageSize is the listing limit used when the request carries no
	// limit parameter.
	DefaultPageSize() int
	UploadDir() string
	MaxUploadBytes() int64
	Naming() NamingConvention
	Logger() log.Logger
}
