package mq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/config"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrUnavailable: соединение не удалось установить за отведенные попытки
var ErrUnavailable = errors.New("rabbitmq unavailable")

// Session: открытые соединение и канал с объявленной топологией
type Session interface {
	Publish(ctx context.Context, exchange, routingKey string, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// Dialer открывает новую сессию
type Dialer func(ctx context.Context, url string) (Session, error)

// RabbitMQ владеет единственным соединением с брокером. Соединение
// устанавливается лениво и восстанавливается при следующей публикации.
// Все обращения сериализуются одним мьютексом.
type RabbitMQ struct {
	url        string
	exchange   string
	attempts   int
	retryDelay time.Duration
	timeout    time.Duration
	dial       Dialer
	log        *logger.Logger

	mu     sync.Mutex
	sess   Session
	closed bool

	// live дублирует sess для чтения без мьютекса
	live atomic.Pointer[liveSession]
}

type liveSession struct{ Session }

// NewRabbitMQ не подключается сразу: первая публикация откроет соединение
func NewRabbitMQ(cfg config.MQConfig, log *logger.Logger) *RabbitMQ {
	attempts := cfg.ConnectAttempts
	if attempts <= 0 {
		attempts = 5
	}
	timeout := cfg.PublishTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RabbitMQ{
		url:        cfg.AMQPURL(),
		exchange:   cfg.Exchange,
		attempts:   attempts,
		retryDelay: cfg.RetryDelay,
		timeout:    timeout,
		dial:       DialTopic(cfg.Exchange),
		log:        log,
	}
}

// WithDialer подменяет способ подключения
func (mq *RabbitMQ) WithDialer(d Dialer) *RabbitMQ {
	mq.dial = d
	return mq
}

// Exchange возвращает имя exchange, в который идет публикация
func (mq *RabbitMQ) Exchange() string {
	return mq.exchange
}

// Connect устанавливает соединение, если его нет. До attempts попыток
// с фиксированной паузой retryDelay; вызывающий блокируется на это время.
func (mq *RabbitMQ) Connect(ctx context.Context) error {
	mq.mu.Lock()
	defer mq.mu.Unlock()
	return mq.ensureLocked(ctx)
}

func (mq *RabbitMQ) ensureLocked(ctx context.Context) error {
	if mq.closed {
		return fmt.Errorf("%w: closed", ErrUnavailable)
	}
	if mq.sess != nil && !mq.sess.IsClosed() {
		return nil
	}
	mq.setSession(nil)

	var lastErr error
	for attempt := 1; attempt <= mq.attempts; attempt++ {
		sess, err := mq.dial(ctx, mq.url)
		if err == nil {
			mq.setSession(sess)
			mq.log.Info(logger.Entry{
				Action:     "rabbitmq_connected",
				Message:    fmt.Sprintf("exchange %s ready", mq.exchange),
				Additional: map[string]any{"attempt": attempt},
			})
			return nil
		}
		lastErr = err

		mq.log.Warn(logger.Entry{
			Action:  "rabbitmq_connection_attempt_failed",
			Message: err.Error(),
			Additional: map[string]any{
				"attempt":      attempt,
				"max_attempts": mq.attempts,
				"retry_in_sec": mq.retryDelay.Seconds(),
			},
		})

		if attempt == mq.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(mq.retryDelay):
		}
	}

	mq.log.Error(logger.Entry{
		Action:  "rabbitmq_unavailable",
		Message: fmt.Sprintf("failed to connect after %d attempts", mq.attempts),
		Error:   &logger.ErrObj{Msg: lastErr.Error()},
	})
	return fmt.Errorf("%w: %d attempts: %v", ErrUnavailable, mq.attempts, lastErr)
}

// Publish публикует persistent-сообщение. При ошибке публикации сессия
// сбрасывается, следующий вызов переподключится.
func (mq *RabbitMQ) Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	mq.mu.Lock()
	defer mq.mu.Unlock()

	if err := mq.ensureLocked(ctx); err != nil {
		return err
	}

	msg.DeliveryMode = amqp.Persistent
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	publishCtx, cancel := context.WithTimeout(ctx, mq.timeout)
	defer cancel()

	if err := mq.sess.Publish(publishCtx, mq.exchange, routingKey, msg); err != nil {
		_ = mq.sess.Close()
		mq.setSession(nil)
		return fmt.Errorf("publish to %s: %w", mq.exchange, err)
	}
	return nil
}

// Connected: есть живая сессия. Не ждет мьютекс, поэтому безопасен
// для readiness во время переподключения.
func (mq *RabbitMQ) Connected() bool {
	ls := mq.live.Load()
	return ls != nil && !ls.IsClosed()
}

func (mq *RabbitMQ) setSession(sess Session) {
	mq.sess = sess
	if sess == nil {
		mq.live.Store(nil)
		return
	}
	mq.live.Store(&liveSession{sess})
}

// Close закрывает подключение к RabbitMQ
func (mq *RabbitMQ) Close() {
	mq.mu.Lock()
	defer mq.mu.Unlock()

	if mq.closed {
		return
	}
	mq.closed = true

	if mq.sess != nil {
		_ = mq.sess.Close()
		mq.setSession(nil)
	}

	mq.log.Info(logger.Entry{Action: "rabbitmq_closed", Message: "connection closed"})
}
