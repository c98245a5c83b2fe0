// Package metrics: Prometheus-метрики сервиса пользователей. Все метрики
// регистрируются в default registry при импорте пакета.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "userdir"

// RequestsTotal: обработанные запросы протокола.
// Метки:
//   - action: create_user, authenticate, ... или "unknown"
//   - outcome: "success" | "failure" | "error"
var RequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Total number of protocol requests handled, by action and outcome.",
	},
	[]string{"action", "outcome"},
)

// RequestDuration: время обработки запроса от декодирования до записи ответа
var RequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_seconds",
		Help:      "Time spent handling a protocol request.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"action"},
)

// ConnectionsActive: соединения, которые сейчас обслуживаются
var ConnectionsActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connections_active",
		Help:      "Number of client connections currently being served.",
	},
)

// NotificationsTotal: судьба уведомлений.
// Метка:
//   - result: "published" | "failed" | "spooled" | "dropped" | "replayed"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notifications, labelled by delivery result.",
	},
	[]string{"result"},
)

// NotificationQueueDepth: уведомления, ожидающие отправки в памяти
var NotificationQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Notifications waiting in the in-memory publish queue.",
	},
)

// Значения outcome для RequestsTotal
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure" // штатный отказ: дубликат, неверный пароль и т.п.
	OutcomeError   = "error"   // сбой инфраструктуры или протокола
)

// Значения result для NotificationsTotal
const (
	NotificationPublished = "published"
	NotificationFailed    = "failed"
	NotificationSpooled   = "spooled"
	NotificationDropped   = "dropped"
	NotificationReplayed  = "replayed"
)
