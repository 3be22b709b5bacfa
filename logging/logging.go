package logging

import (
	"fmt"
	"io"
	"net"
	"os"
	"time"

	logrustash "github.com/bshuster-repo/logrus-logstash-hook"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// slowRequest is the duration above which a request is logged at warn level
var slowRequest = 2 * time.Second

// New creates the application logger. When logstashAddr is set, entries are
// also shipped to logstash over tcp.
func New(level, logstashAddr string) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	logger.SetLevel(lvl)

	if logstashAddr != "" {
		conn, err := net.Dial("tcp", logstashAddr)
		if err != nil {
			return nil, fmt.Errorf("dial logstash %s: %w", logstashAddr, err)
		}
		logger.AddHook(logrustash.New(conn, logrustash.DefaultFormatter(logrus.Fields{"type": "social_backend"})))
	}

	return logger, nil
}

// Discard returns a logger that drops everything, for tests
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// RequestLogger logs every request once it completes. Upgraded websocket
// connections live as long as the session and are never reported as slow.
func RequestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		websocket := c.IsWebsocket()
		c.Next()

		duration := time.Since(start)
		entry := logger.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.FullPath(),
			"status":    c.Writer.Status(),
			"duration":  duration,
			"remote_ip": c.ClientIP(),
		})

		switch {
		case duration > slowRequest && !websocket:
			entry.Warn("Slow request detected")
		case c.Writer.Status() >= 500:
			entry.Error("Request failed")
		default:
			entry.Info("Request completed")
		}
	}
}
