package log

import (
	"os"
	"time"

	"github.com/rostsocial/rost/utils/dotenv"
	"github.com/rostsocial/rost/utils/flag"
	ddhook "github.com/bin3377/logrus-datadog-hook"
	"github.com/sirupsen/logrus"
)

const (
	datadogUSHost    = "http-intake.logs.datadoghq.com"
	syncFrequencySec = 30
	syncRetry        = 3
)

// global accessible logger
var (
	logger *logrus.Logger
	Log    *logrus.Entry
)

// This init function is only for testing cases, where the entry point is not
// main function. Unit test will fail with nil pointer dereference if we don't
// init here.
func init() {
	InitLogger()
}

// InitLogger (re)builds the global logger. Binaries call it again after flag
// parsing so that the service field is accurate.
func InitLogger() {
	logger = logrus.New()

	isProd := os.Getenv("ROST_ENV") == dotenv.ProdEnv
	if apiKey := os.Getenv("DATADOG_API_KEY"); isProd && apiKey != "" {
		hook := ddhook.NewHook(
			datadogUSHost,
			apiKey,
			syncFrequencySec*time.Second,
			syncRetry,
			logrus.InfoLevel,
			&logrus.JSONFormatter{},
			ddhook.Options{},
		)
		logger.Hooks.Add(hook)
	}

	// Also send log to stderr, without json formatter for better readability
	logger.SetOutput(os.Stderr)
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	}

	Log = logger.WithFields(
		logrus.Fields{"service": *flag.ServiceName, "is_development": !isProd},
	)
}

// InitLoggerFromEnvFiles loads the .env files before rebuilding the logger, so
// LOG_LEVEL and DATADOG_API_KEY set there are honored.
func InitLoggerFromEnvFiles() error {
	if err := dotenv.LoadDotEnvs(); err != nil {
		return err
	}
	InitLogger()
	return nil
}
