package protocol

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrDecode marks a line that is not a well-formed order.
var ErrDecode = errors.New("decode order")

// Decoder turns input lines into validated OrderCommands.
type Decoder struct {
	serializer Serializer
	validate   *validator.Validate
}

// NewDecoder creates a Decoder. A nil serializer means DefaultJSONSerializer.
func NewDecoder(serializer Serializer) *Decoder {
	if serializer == nil {
		serializer = DefaultJSONSerializer{}
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateOrderCommand, OrderCommand{})
	return &Decoder{serializer: serializer, validate: v}
}

func validateOrderCommand(sl validator.StructLevel) {
	cmd, _ := sl.Current().Interface().(OrderCommand)
	if cmd.Type != OrderTypeIceberg || cmd.Order == nil {
		return
	}
	if cmd.Order.Peak == nil {
		sl.ReportError(cmd.Order.Peak, "Peak", "peak", "required_for_iceberg", "")
		return
	}
	if *cmd.Order.Peak == 0 {
		sl.ReportError(cmd.Order.Peak, "Peak", "peak", "gt", "0")
	}
}

// Decode parses and validates one line. Errors wrap ErrDecode.
func (d *Decoder) Decode(line []byte) (*OrderCommand, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, fmt.Errorf("%w: empty line", ErrDecode)
	}

	cmd := new(OrderCommand)
	if err := d.serializer.Unmarshal(line, cmd); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if err := d.validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return cmd, nil
}

// Encoder writes presentation records.
type Encoder struct {
	serializer Serializer
}

// NewEncoder creates an Encoder. A nil serializer means DefaultJSONSerializer.
func NewEncoder(serializer Serializer) *Encoder {
	if serializer == nil {
		serializer = DefaultJSONSerializer{}
	}
	return &Encoder{serializer: serializer}
}

// EncodeBook encodes the current book.
func (e *Encoder) EncodeBook(view *BookView) ([]byte, error) {
	return e.serializer.Marshal(view)
}

// EncodeFill encodes one trade.
func (e *Encoder) EncodeFill(view FillView) ([]byte, error) {
	return e.serializer.Marshal(view)
}

// Encode encodes any other record, such as an aggregated depth view.
func (e *Encoder) Encode(v any) ([]byte, error) {
	return e.serializer.Marshal(v)
}
