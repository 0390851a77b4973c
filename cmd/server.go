package cmd

import (
	"fmt"
	log2 "log"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/roamstack/attractions-api/endpoint"
	"github.com/roamstack/attractions-api/log"
	"github.com/roamstack/attractions-api/metrics"
	"github.com/roamstack/attractions-api/rest"
)

const defaultRESTPath = "/v1"

// Environment variables prefixed with "ATTRACTIONS_API_" can override settings e.g. "ATTRACTIONS_API_DB_PATH"
const envVarPrefix = "attractions_api"

var cfgFile string
var logger log.Logger

var serverCmd = &cobra.Command{
	Use:   os.Args[0] + " --jwt-secret [SECRET] [OPTIONS]",
	Short: "REST endpoints for attractions, products and reviews",
	Args: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("jwt-secret") == "" {
			return fmt.Errorf("jwt-secret is required")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		dataEndpoint := createEndpoint()
		defer dataEndpoint.Close()

		routes := dataEndpoint.RoutesREST(viper.GetString("rest-path"))

		registry := metrics.NewRegistry()
		router := rest.ApiRouter(routes, registry.Handler())

		handler := registry.Instrument(router)
		handler = maybeAddCORS(maybeAddRequestLogging(handler))

		listenAndServe(handler, viper.GetInt("port"))
	},
}

// Execute starts the REST endpoint
func Execute() {
	zapLogger, err := zap.NewProduction()
	if err != nil {
		log2.Fatalf("unable to initialize logger: %v", err)
	}

	logger = log.NewZapLogger(zapLogger)

	flags := serverCmd.PersistentFlags()

	flags.StringVarP(&cfgFile, "config", "c", "", "config file")
	flags.String("db-path", "data/attractions.db", "document store file path")
	flags.Int("port", 8080, "port to bind the endpoint to")
	flags.String("rest-path", defaultRESTPath, "REST endpoint path prefix")
	flags.String("jwt-secret", "", "secret used to sign bearer tokens")
	flags.Duration("jwt-expiry", endpoint.DefaultTokenExpiry, "bearer token lifetime")
	flags.Int("default-page-size", endpoint.DefaultPageSize, "listing limit used when the request has none")
	flags.String("upload-dir", endpoint.DefaultUploadDir, "directory for uploaded photos")
	flags.Int64("max-upload-size", endpoint.DefaultMaxUploadBytes, "maximum photo upload size in bytes")
	flags.Bool("request-logging", false, "enable request logging")
	flags.String("access-control-allow-origin", "", "Access-Control-Allow-Origin header value")

	flags.VisitAll(func(flag *pflag.Flag) {
		if flag.Name != "config" {
			viper.BindPFlag(flag.Name, flags.Lookup(flag.Name))
		}
	})

	cobra.OnInitialize(initialize)

	viper.SetEnvPrefix(envVarPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := serverCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func createEndpoint() *endpoint.DataEndpoint {
	cfg := endpoint.NewEndpointConfigWithLogger(logger, viper.GetString("db-path"))

	cfg.
		WithJWTSecret(viper.GetString("jwt-secret")).
		WithJWTExpiry(viper.GetDuration("jwt-expiry")).
		WithDefaultPageSize(viper.GetInt("default-page-size")).
		WithUploadDir(viper.GetString("upload-dir")).
		WithMaxUploadBytes(viper.GetInt64("max-upload-size"))

	dataEndpoint, err := cfg.NewEndpoint()
	if err != nil {
		logger.Fatal("unable to create new endpoint",
			"error", err)
	}

	return dataEndpoint
}

func maybeAddRequestLogging(handler http.Handler) http.Handler {
	if viper.GetBool("request-logging") {
		handler = log.NewLoggingHandler(handler, logger)
	}
	return handler
}

func maybeAddCORS(handler http.Handler) http.Handler {
	if value := viper.GetString("access-control-allow-origin"); value != "" {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", value)
			handler.ServeHTTP(w, r)
		})
	}
	return handler
}

func initialize() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err == nil {
			logger.Info("using config file",
				"file", viper.ConfigFileUsed())
		}
	}
}

func listenAndServe(handler http.Handler, port int) {
	logger.Info("server listening",
		"port", port)
	err := http.ListenAndServe(fmt.Sprintf(":%d", port), handler)
	if err != nil {
		logger.Fatal("unable to start server",
			"port", port,
			"error", err)
	}
}
