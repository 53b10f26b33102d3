package config

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"
)

func NewLogger() *slog.Logger {
	if Development() {
		return slog.New(
			tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelDebug}),
		)
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, nil))
}

// SetupEngineLog configures the engine's logrus logger. When MINES_LOG_FILE is
// set, engine events are also written to a rotating JSON log file.
func SetupEngineLog(log *logrus.Logger) error {
	log.SetLevel(logrus.InfoLevel)
	if Development() {
		log.SetLevel(logrus.DebugLevel)
		log.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	}

	filename, ok := os.LookupEnv("MINES_LOG_FILE")
	if !ok {
		return nil
	}

	maxSize, err := lookupInt("MINES_LOG_MAX_SIZE_MB", 10)
	if err != nil {
		return err
	}
	maxBackups, err := lookupInt("MINES_LOG_MAX_BACKUPS", 3)
	if err != nil {
		return err
	}
	maxAge, err := lookupInt("MINES_LOG_MAX_AGE_DAYS", 28)
	if err != nil {
		return err
	}

	hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   filename,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     maxAge,
		Level:      logrus.DebugLevel,
		Formatter:  &logrus.JSONFormatter{},
	})
	if err != nil {
		return err
	}
	log.AddHook(hook)
	log.SetLevel(logrus.DebugLevel)

	return nil
}
