// Package log sets up structured logging for the triage binaries.
//
// Logging goes through log/slog everywhere. Initialize routes slog.Default
// into a zap core, which in production uses the zapdriver configuration so
// that entries are understood by Google Cloud Logging.
package log

import (
	golog "log"
	"log/slog"
	"strings"

	"github.com/blendle/zapdriver"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
)

// LoggingEnv is used to represent a specific configuration used by a given
// environment.
type LoggingEnv string

func (e LoggingEnv) String() string {
	return string(e)
}

const (
	LoggingEnvDev  LoggingEnv = "dev"
	LoggingEnvProd LoggingEnv = "prod"
)

var currentEnv = LoggingEnvDev

// ParseEnv returns the LoggingEnv named by s, ignoring case. Anything other
// than "prod" selects LoggingEnvDev.
func ParseEnv(s string) LoggingEnv {
	if strings.EqualFold(s, LoggingEnvProd.String()) {
		return LoggingEnvProd
	}
	return LoggingEnvDev
}

func newZapLogger(env LoggingEnv) (*zap.Logger, error) {
	if env != LoggingEnvProd {
		return zap.NewDevelopment()
	}
	config := zapdriver.NewProductionConfig()
	// Make sure sampling is disabled.
	config.Sampling = nil
	// The zapdriver core turns "labels." fields into Cloud Logging labels.
	return config.Build(zapdriver.WrapCore())
}

// Initialize builds the zap logger for env ("prod" or "dev") and makes it the
// destination of slog.Default and of the standard library logger.
//
// It must be called before anything is logged.
func Initialize(env string) *zap.Logger {
	currentEnv = ParseEnv(env)
	logger, err := newZapLogger(currentEnv)
	if err != nil {
		golog.Panic(err)
	}
	zap.RedirectStdLog(logger)

	handler := zapslog.NewHandler(logger.Core(), &zapslog.HandlerOptions{
		AddSource: true,
	})
	slog.SetDefault(slog.New(NewContextLogHandler(handler)))
	return logger
}

// LabelAttr causes attributes written by zapdriver to be marked as labels inside
// Cloud Logging when LoggingEnv is LoggingEnvProd. Otherwise it wraps slog.String.
func LabelAttr(key, value string) slog.Attr {
	if currentEnv == LoggingEnvProd {
		return slog.String("labels."+key, value)
	}
	return slog.String(key, value)
}
