package socket

import (
	"context"
	"errors"
	"fmt"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/domain"
)

// Response это конверт ответа {success, message?, ...}
type Response map[string]any

// Request: декодированный кадр запроса
type Request struct {
	ID      string
	Action  string
	Format  Format
	payload []byte
}

// HandlerFunc обрабатывает одно действие. Ошибка превращается в
// {success:false, message} через failureResponse.
type HandlerFunc func(ctx context.Context, req *Request) (Response, error)

// errBadRequest: тело запроса не разобрано
var errBadRequest = errors.New("invalid request")

// envelope: {"action": ..., "data": ...}; data декодируется во втором проходе
type envelope[T any] struct {
	Action string `json:"action"`
	Data   T      `json:"data"`
}

// Bind декодирует поле data запроса в v
func Bind[T any](req *Request) (T, error) {
	var env envelope[T]
	if err := req.Format.Unmarshal(req.payload, &env); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return env.Data, nil
}

func parseAction(f Format, payload []byte) (string, error) {
	var header struct {
		Action string `json:"action"`
	}
	if err := f.Unmarshal(payload, &header); err != nil {
		return "", fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return header.Action, nil
}

func success(fields Response) Response {
	fields["success"] = true
	return fields
}

func failure(message string) Response {
	return Response{"success": false, "message": message}
}

// failureResponse переводит ошибку в ответ. expected=false означает
// сбой, о котором клиенту сообщается только "internal error".
func failureResponse(err error) (resp Response, expected bool) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return failure(ve.Error()), true
	case errors.Is(err, domain.ErrDuplicate),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUserInactive),
		errors.Is(err, domain.ErrInvalidToken):
		return failure(rootMessage(err)), true
	case errors.Is(err, errBadRequest):
		return failure(err.Error()), true
	default:
		return failure("internal error"), false
	}
}

// rootMessage: текст доменной ошибки без обертки
func rootMessage(err error) string {
	for _, target := range []error{
		domain.ErrDuplicate,
		domain.ErrUserNotFound,
		domain.ErrInvalidCredentials,
		domain.ErrUserInactive,
		domain.ErrInvalidToken,
	} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}
