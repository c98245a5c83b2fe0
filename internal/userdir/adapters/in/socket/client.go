package socket

import (
	"context"
	"fmt"
	"net"
	"time"
)

// Client работает одноразовыми соединениями, каждый Call открывает новое
// соединение, отправляет запрос и читает ответ
type Client struct {
	addr       string
	format     Format
	timeout    time.Duration
	maxMessage int
}

type ClientOption func(*Client)

// WithFormat выбирает кодировку запроса (по умолчанию JSON)
func WithFormat(f Format) ClientOption {
	return func(c *Client) { c.format = f }
}

// WithTimeout ограничивает весь обмен, если в ctx нет дедлайна
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

func NewClient(addr string, opts ...ClientOption) *Client {
	c := &Client{
		addr:       addr,
		format:     FormatJSON,
		timeout:    30 * time.Second,
		maxMessage: DefaultMaxMessageBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call отправляет {action, data} и декодирует ответ в out
func (c *Client) Call(ctx context.Context, action string, data any, out any) error {
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	req := map[string]any{"action": action, "data": data}
	if err := EncodeFrame(conn, c.format, req); err != nil {
		return err
	}

	frame, err := ReadFrame(conn, c.maxMessage)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := frame.Format.Unmarshal(frame.Payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Raw: как Call, но ответ возвращается картой
func (c *Client) Raw(ctx context.Context, action string, data any) (map[string]any, error) {
	var resp map[string]any
	if err := c.Call(ctx, action, data, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
