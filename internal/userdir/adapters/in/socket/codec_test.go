package socket

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

func TestFrame_RoundTrip(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatCBOR} {
		t.Run(f.String(), func(t *testing.T) {
			var buf bytes.Buffer
			in := map[string]any{"action": "get_user", "data": map[string]any{"user_id": 7}}
			if err := EncodeFrame(&buf, f, in); err != nil {
				t.Fatalf("EncodeFrame: %v", err)
			}
			if buf.Bytes()[0] != byte(f) {
				t.Fatalf("first byte must be the format")
			}

			frame, err := ReadFrame(&buf, 0)
			if err != nil {
				t.Fatalf("ReadFrame: %v", err)
			}
			var out struct {
				Action string `json:"action"`
				Data   struct {
					UserID int64 `json:"user_id"`
				} `json:"data"`
			}
			if err := frame.Format.Unmarshal(frame.Payload, &out); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if out.Action != "get_user" || out.Data.UserID != 7 {
				t.Fatalf("unexpected decode: %+v", out)
			}
		})
	}
}

func TestReadFrame_Limits(t *testing.T) {
	header := func(f byte, n uint32) []byte {
		h := make([]byte, 5)
		h[0] = f
		binary.BigEndian.PutUint32(h[1:], n)
		return h
	}

	frame, err := ReadFrame(bytes.NewReader(header(byte(FormatCBOR), 11)), 10)
	if !errors.Is(err, ErrMessageTooLarge) {
		t.Fatalf("expected ErrMessageTooLarge, got %v", err)
	}
	if frame.Format != FormatCBOR {
		t.Fatalf("format must be reported for oversized frames")
	}

	if _, err := ReadFrame(bytes.NewReader(header(0x7F, 1)), 10); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}

	if _, err := ReadFrame(bytes.NewReader(nil), 10); err != io.EOF {
		t.Fatalf("expected io.EOF on empty stream, got %v", err)
	}

	truncated := append(header(byte(FormatJSON), 4), '{', '}')
	if _, err := ReadFrame(bytes.NewReader(truncated), 10); err == nil || err == io.EOF {
		t.Fatalf("truncated payload must fail with a read error, got %v", err)
	}

	empty, err := ReadFrame(bytes.NewReader(header(byte(FormatJSON), 0)), 10)
	if err != nil || len(empty.Payload) != 0 {
		t.Fatalf("zero-length payload must be accepted: %v", err)
	}
}
