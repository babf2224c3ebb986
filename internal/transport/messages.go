package transport

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"vela/internal/common"
)

// Wire framing: a 4-byte big-endian length prefix followed by a JSON
// payload. The teacher's fixed-offset binary layout (messages.go in
// fenrir/internal/net) cannot carry canonical decimal strings or
// arbitrary-length symbols without truncation, so this collaborator
// frames length-prefixed JSON instead while keeping the teacher's
// message-type/parse-dispatch shape.
const lengthPrefixSize = 4

var (
	ErrInvalidMessageType = errors.New("transport: invalid message type")
	ErrMessageTooShort    = errors.New("transport: message shorter than its length prefix")
)

// MessageType discriminates inbound client messages.
type MessageType string

const (
	MessageHeartbeat   MessageType = "heartbeat"
	MessageNewOrder    MessageType = "new_order"
	MessageCancelOrder MessageType = "cancel_order"
)

// ReportType discriminates outbound server messages.
type ReportType string

const (
	ReportExecution ReportType = "execution_report"
	ReportCancel    ReportType = "cancel_report"
	ReportError     ReportType = "error_report"
)

type envelope struct {
	Type MessageType     `json:"type"`
	Body json.RawMessage `json:"body"`
}

// NewOrderMessage is the wire shape of a new order request: mirrors
// common.OrderSpec with lowercase wire enums and decimal strings.
type NewOrderMessage struct {
	Symbol    string  `json:"symbol"`
	OrderType string  `json:"order_type"`
	Side      string  `json:"side"`
	Quantity  string  `json:"quantity"`
	Price     *string `json:"price,omitempty"`
}

// ToOrderSpec converts the wire message into the engine's OrderSpec,
// parsing the lowercase enums per §6 of the specification.
func (m NewOrderMessage) ToOrderSpec() (common.OrderSpec, error) {
	ot, err := common.ParseOrderType(m.OrderType)
	if err != nil {
		return common.OrderSpec{}, err
	}
	side, err := common.ParseSide(m.Side)
	if err != nil {
		return common.OrderSpec{}, err
	}
	return common.OrderSpec{
		Symbol:    m.Symbol,
		OrderType: ot,
		Side:      side,
		Quantity:  m.Quantity,
		Price:     m.Price,
	}, nil
}

// CancelOrderMessage is the wire shape of a cancel request.
type CancelOrderMessage struct {
	Symbol  string `json:"symbol"`
	OrderID string `json:"order_id"`
}

// parseMessage decodes one length-framed payload into its discriminated
// message type.
func parseMessage(payload []byte) (MessageType, json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidMessageType, err)
	}
	switch env.Type {
	case MessageHeartbeat, MessageNewOrder, MessageCancelOrder:
		return env.Type, env.Body, nil
	default:
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidMessageType, env.Type)
	}
}

func encodeFrame(v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	frame := make([]byte, lengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(frame[:lengthPrefixSize], uint32(len(payload)))
	copy(frame[lengthPrefixSize:], payload)
	return frame, nil
}

type executionReportWire struct {
	Type              ReportType     `json:"type"`
	OrderID           string         `json:"order_id"`
	Status            string         `json:"status"`
	FilledQuantity    string         `json:"filled_quantity,omitempty"`
	RemainingQuantity string         `json:"remaining_quantity,omitempty"`
	Trades            []common.Trade `json:"trades,omitempty"`
	Timestamp         string         `json:"timestamp"`
	Error             string         `json:"error,omitempty"`
}

type cancelReportWire struct {
	Type      ReportType `json:"type"`
	OrderID   string     `json:"order_id"`
	Status    string     `json:"status"`
	Timestamp string     `json:"timestamp"`
	Message   string     `json:"message,omitempty"`
}

type errorReportWire struct {
	Type      ReportType `json:"type"`
	Error     string     `json:"error"`
	Timestamp string     `json:"timestamp"`
}
