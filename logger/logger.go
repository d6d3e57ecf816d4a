package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// The loggers are usable before InitLoggers is called; they write to stdout until then.
var (
	InfoLogger  = newLogger(os.Stdout, logrus.InfoLevel)
	WarnLogger  = newLogger(os.Stdout, logrus.WarnLevel)
	ErrorLogger = newLogger(os.Stderr, logrus.ErrorLevel)
)

func newLogger(out io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return l
}

// rotatingFile returns a size-rotated log file under dir.
func rotatingFile(dir, name string) io.Writer {
	return &lumberjack.Logger{
		Filename:   filepath.Join(dir, name),
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
}

// InitLoggers points every logger at stdout plus a rotated file in logDir.
// An empty logDir keeps console-only output.
func InitLoggers(logDir string) {
	if logDir == "" {
		return
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		ErrorLogger.Errorf("Failed to create log directory %s: %v", logDir, err)
		return
	}

	InfoLogger.SetOutput(io.MultiWriter(os.Stdout, rotatingFile(logDir, "info.log")))
	WarnLogger.SetOutput(io.MultiWriter(os.Stdout, rotatingFile(logDir, "warn.log")))
	ErrorLogger.SetOutput(io.MultiWriter(os.Stderr, rotatingFile(logDir, "error.log")))

	InfoLogger.Infof("Loggers initialized, writing to %s", logDir)
}

// Silence discards all log output. Used by tests.
func Silence() {
	InfoLogger.SetOutput(io.Discard)
	WarnLogger.SetOutput(io.Discard)
	ErrorLogger.SetOutput(io.Discard)
}
