package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	InfoLogger  = newLogger(os.Stdout)
	WarnLogger  = newLogger(os.Stdout)
	ErrorLogger = newLogger(os.Stderr)
)

// InitLoggers sets up the package-level loggers. Output goes to a
// rotated file and is mirrored to stdout.
func InitLoggers() {
	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		// Keep the stdout-only defaults rather than failing startup.
		ErrorLogger.Errorf("Failed to create log directory %s: %v", logDir, err)
		return
	}

	rotated := &lumberjack.Logger{
		Filename:   logDir + "/app.log",
		MaxSize:    50, // MB
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}

	InfoLogger = newLogger(io.MultiWriter(os.Stdout, rotated))
	WarnLogger = newLogger(io.MultiWriter(os.Stdout, rotated))
	ErrorLogger = newLogger(io.MultiWriter(os.Stderr, rotated))
}

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return l
}
