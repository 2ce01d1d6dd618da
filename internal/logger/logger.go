package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	appCtx "github.com/baechuer/tracking-service/internal/pkg/context"
)

var Logger zerolog.Logger

func Init() {
	InitWithWriter(os.Stdout)
}

func InitWithWriter(w io.Writer) {
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	format := os.Getenv("LOG_FORMAT") // "json" or "console"
	if format == "" {
		format = "console"
	}

	var zc zerolog.Context
	if format == "json" {
		zc = zerolog.New(w).With().Timestamp()
	} else {
		zc = zerolog.New(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}).With().Timestamp()
	}
	if os.Getenv("LOG_CALLER") == "1" {
		zc = zc.Caller()
	}
	Logger = zc.Str("service", "tracking-service").Logger().Level(level)

	// set global
	zlog.Logger = Logger
}

// WithCtx returns the logger tagged with the request id carried by ctx, if any.
func WithCtx(ctx context.Context) *zerolog.Logger {
	if reqID := appCtx.GetRequestID(ctx); reqID != "" {
		l := Logger.With().Str("request_id", reqID).Logger()
		return &l
	}
	return &Logger
}
