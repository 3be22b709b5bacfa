package metrics

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	KindDirect = "direct"
	KindGroup  = "group"
)

type Metrics struct {
	Requests           *prometheus.CounterVec
	MessagesPersisted  *prometheus.CounterVec
	LiveDeliveries     *prometheus.CounterVec
	Evictions          prometheus.Counter
	Registrants        prometheus.Gauge
	NotificationPushes prometheus.Counter
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by route and status code",
			},
			[]string{"path", "code"},
		),
		MessagesPersisted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_messages_persisted_total",
				Help: "Total number of chat messages written to the database",
			},
			[]string{"kind"},
		),
		LiveDeliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_live_deliveries_total",
				Help: "Total number of chat frames handed to live connections",
			},
			[]string{"kind"},
		),
		Evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_evictions_total",
			Help: "Total number of registrants evicted after a failed send",
		}),
		Registrants: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chat_registrants",
			Help: "Number of live connections attached to chat rooms",
		}),
		NotificationPushes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notification_pushes_total",
			Help: "Total number of unread notification sets pushed to sockets",
		}),
	}

	reg.MustRegister(
		m.Requests,
		m.MessagesPersisted,
		m.LiveDeliveries,
		m.Evictions,
		m.Registrants,
		m.NotificationPushes,
	)

	return m
}

// Middleware counts every request by route template and status code
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.Requests.WithLabelValues(path, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
