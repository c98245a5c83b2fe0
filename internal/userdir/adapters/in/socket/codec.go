package socket

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// Format: первый байт кадра, кодировка payload
type Format byte

const (
	FormatJSON Format = 0x01
	FormatCBOR Format = 0x02
)

// Frame: 1 байт формата, 4 байта длины (big-endian), payload
const headerLength = 5

// DefaultMaxMessageBytes: ограничение payload по умолчанию
const DefaultMaxMessageBytes = 1024 * 1024

var (
	ErrMessageTooLarge   = errors.New("message too large")
	ErrUnsupportedFormat = errors.New("unsupported frame format")
)

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	cborEnc, err = encOptions.EncMode()
	if err != nil {
		panic("socket: CBOR encoder initialization failed: " + err.Error())
	}

	cborDec, err = cbor.DecOptions{
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("socket: CBOR decoder initialization failed: " + err.Error())
	}
}

func (f Format) Valid() bool {
	return f == FormatJSON || f == FormatCBOR
}

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatCBOR:
		return "cbor"
	default:
		return fmt.Sprintf("Format(0x%02x)", byte(f))
	}
}

// Marshal кодирует v; CBOR использует json-теги полей
func (f Format) Marshal(v any) ([]byte, error) {
	switch f {
	case FormatJSON:
		return json.Marshal(v)
	case FormatCBOR:
		return cborEnc.Marshal(v)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func (f Format) Unmarshal(data []byte, v any) error {
	switch f {
	case FormatJSON:
		return json.Unmarshal(data, v)
	case FormatCBOR:
		return cborDec.Unmarshal(data, v)
	default:
		return ErrUnsupportedFormat
	}
}

type Frame struct {
	Format  Format
	Payload []byte
}

func WriteFrame(w io.Writer, frame Frame) error {
	var header [headerLength]byte
	header[0] = byte(frame.Format)
	binary.BigEndian.PutUint32(header[1:5], uint32(len(frame.Payload)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if len(frame.Payload) > 0 {
		if _, err := w.Write(frame.Payload); err != nil {
			return fmt.Errorf("write frame payload: %w", err)
		}
	}
	return nil
}

// ReadFrame читает один кадр. При ErrMessageTooLarge и ErrUnsupportedFormat
// payload не читается, но Format в возвращенном кадре заполнен.
// Если соединение закрыто до первого байта, возвращается io.EOF.
func ReadFrame(r io.Reader, maxPayload int) (Frame, error) {
	if maxPayload <= 0 {
		maxPayload = DefaultMaxMessageBytes
	}

	var header [headerLength]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return Frame{}, io.EOF
		}
		return Frame{}, fmt.Errorf("read frame header: %w", err)
	}

	frame := Frame{Format: Format(header[0])}
	if !frame.Format.Valid() {
		return frame, ErrUnsupportedFormat
	}

	length := binary.BigEndian.Uint32(header[1:5])
	if uint64(length) > uint64(maxPayload) {
		return frame, fmt.Errorf("%w: %d bytes exceeds %d", ErrMessageTooLarge, length, maxPayload)
	}

	frame.Payload = make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, frame.Payload); err != nil {
			return frame, fmt.Errorf("read frame payload: %w", err)
		}
	}
	return frame, nil
}

// EncodeFrame: Marshal + WriteFrame
func EncodeFrame(w io.Writer, f Format, v any) error {
	payload, err := f.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	return WriteFrame(w, Frame{Format: f, Payload: payload})
}
