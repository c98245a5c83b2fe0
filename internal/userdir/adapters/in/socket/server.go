package socket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/config"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/logger"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// handlerTimeout ограничивает обработку одного запроса; не зависит от
// остановки сервера, чтобы начатые транзакции довели дело до конца
const handlerTimeout = time.Minute

// Server обслуживает протокол кадров поверх TCP. Каждое соединение -
// ровно один запрос и один ответ, затем соединение закрывается.
// Число одновременно обслуживаемых соединений ограничено.
type Server struct {
	addr         string
	readTimeout  time.Duration
	writeTimeout time.Duration
	maxMessage   int
	handlers     map[string]HandlerFunc
	slots        *semaphore.Weighted
	log          *logger.Logger

	// activeConnections: для graceful shutdown
	activeConnections sync.WaitGroup
}

func NewServer(cfg config.ServerConfig, log *logger.Logger) *Server {
	maxConns := cfg.MaxConnections
	if maxConns <= 0 {
		maxConns = 256
	}
	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 30 * time.Second
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &Server{
		addr:         cfg.Addr(),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		maxMessage:   cfg.MaxMessageBytes,
		handlers:     make(map[string]HandlerFunc),
		slots:        semaphore.NewWeighted(maxConns),
		log:          log,
	}
}

// Handle регистрирует обработчик действия. Вызывать до Serve.
func (s *Server) Handle(action string, handler HandlerFunc) {
	if _, exists := s.handlers[action]; exists {
		panic(fmt.Sprintf("socket.Server: duplicate handler for action %q", action))
	}
	s.handlers[action] = handler
}

// Serve слушает адрес из конфигурации до отмены ctx
func (s *Server) Serve(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener принимает соединения до отмены ctx, затем ждет
// завершения активных обработчиков
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	defer ln.Close()

	// отмена ctx разблокирует Accept
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	s.log.Info(logger.Entry{
		Action:  "server_listening",
		Message: fmt.Sprintf("listening on %s", ln.Addr()),
	})

	for {
		// свободный слот берется до Accept: лишние клиенты ждут в backlog
		if err := s.slots.Acquire(ctx, 1); err != nil {
			break
		}

		conn, err := ln.Accept()
		if err != nil {
			s.slots.Release(1)
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.log.Error(logger.Entry{
				Action:  "accept_failed",
				Message: err.Error(),
				Error:   &logger.ErrObj{Msg: err.Error()},
			})
			continue
		}

		s.activeConnections.Add(1)
		go func() {
			defer s.activeConnections.Done()
			defer s.slots.Release(1)
			s.handleConnection(ctx, conn)
		}()
	}

	s.activeConnections.Wait()
	s.log.Info(logger.Entry{Action: "server_stopped", Message: "all connections drained"})
	return nil
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	metrics.ConnectionsActive.Inc()
	defer metrics.ConnectionsActive.Dec()

	requestID := uuid.NewString()
	log := s.log.WithContext(requestID)

	// последний рубеж: паника не должна уронить процесс
	defer func() {
		if r := recover(); r != nil {
			log.Error(logger.Entry{
				Action:  "connection_panic",
				Message: fmt.Sprint(r),
				Error:   &logger.ErrObj{Msg: fmt.Sprint(r), Stack: string(debug.Stack())},
			})
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(s.readTimeout))

	frame, err := ReadFrame(conn, s.maxMessage)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		return // клиент подключился и ничего не прислал
	case errors.Is(err, ErrMessageTooLarge):
		log.Warn(logger.Entry{Action: "request_rejected", Message: err.Error()})
		metrics.RequestsTotal.WithLabelValues("unknown", metrics.OutcomeError).Inc()
		s.write(conn, log, frame.Format, failure(ErrMessageTooLarge.Error()))
		return
	case errors.Is(err, ErrUnsupportedFormat):
		log.Warn(logger.Entry{Action: "request_rejected", Message: err.Error()})
		metrics.RequestsTotal.WithLabelValues("unknown", metrics.OutcomeError).Inc()
		s.write(conn, log, FormatJSON, failure(ErrUnsupportedFormat.Error()))
		return
	default:
		log.Debug(logger.Entry{Action: "read_failed", Message: err.Error()})
		return
	}

	start := time.Now()
	action, resp, outcome := s.dispatch(ctx, requestID, frame, log)

	s.write(conn, log, frame.Format, resp)

	metrics.RequestsTotal.WithLabelValues(action, outcome).Inc()
	metrics.RequestDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
}

// dispatch возвращает метку действия для метрик, ответ и исход
func (s *Server) dispatch(ctx context.Context, requestID string, frame Frame, log *logger.ContextLogger) (string, Response, string) {
	action, err := parseAction(frame.Format, frame.Payload)
	if err != nil {
		log.Debug(logger.Entry{Action: "request_malformed", Message: err.Error()})
		return "unknown", failure(err.Error()), metrics.OutcomeError
	}

	handler, exists := s.handlers[action]
	if !exists {
		log.Debug(logger.Entry{
			Action:     "unrecognized_action",
			Message:    "unrecognized action",
			Additional: map[string]any{"requested": action},
		})
		return "unknown", failure("unrecognized action"), metrics.OutcomeFailure
	}

	handlerCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), handlerTimeout)
	defer cancel()

	resp, err := s.invoke(handlerCtx, handler, &Request{
		ID:      requestID,
		Action:  action,
		Format:  frame.Format,
		payload: frame.Payload,
	}, log)
	if err != nil {
		resp, expected := failureResponse(err)
		if !expected {
			log.Error(logger.Entry{
				Action:     "request_failed",
				Message:    err.Error(),
				Error:      &logger.ErrObj{Msg: err.Error()},
				Additional: map[string]any{"request_action": action},
			})
			return action, resp, metrics.OutcomeError
		}
		log.Info(logger.Entry{
			Action:     "request_refused",
			Message:    err.Error(),
			Additional: map[string]any{"request_action": action},
		})
		return action, resp, metrics.OutcomeFailure
	}

	log.Info(logger.Entry{
		Action:     "request_handled",
		Message:    action,
		Additional: map[string]any{"request_action": action},
	})
	return action, resp, metrics.OutcomeSuccess
}

// invoke превращает панику обработчика в ошибку
func (s *Server) invoke(ctx context.Context, h HandlerFunc, req *Request, log *logger.ContextLogger) (resp Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error(logger.Entry{
				Action:  "handler_panic",
				Message: fmt.Sprint(r),
				Error:   &logger.ErrObj{Msg: fmt.Sprint(r), Stack: string(debug.Stack())},
			})
			resp, err = nil, fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, req)
}

func (s *Server) write(conn net.Conn, log *logger.ContextLogger, f Format, resp Response) {
	if !f.Valid() {
		f = FormatJSON
	}
	_ = conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	if err := EncodeFrame(conn, f, resp); err != nil {
		// соединение закрывается в любом случае
		if !errors.Is(err, os.ErrDeadlineExceeded) {
			log.Debug(logger.Entry{Action: "write_failed", Message: err.Error()})
		}
	}
}
