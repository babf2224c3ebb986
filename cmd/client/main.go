// Command client is a minimal CLI for exercising the transport server: it
// connects over TCP, sends one length-framed JSON order or cancel
// message, and prints the response. Adapted from fenrir's
// cmd/client/client.go, whose fixed-offset binary wire format is
// replaced here with the JSON framing of internal/transport.
package main

import (
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
)

func main() {
	serverAddr := flag.String("server", "127.0.0.1:9001", "address of the matching engine server")
	action := flag.String("action", "place", "action to perform: place, cancel")

	symbol := flag.String("symbol", "BTC-USDT", "trading symbol")
	side := flag.String("side", "buy", "order side: buy or sell")
	orderType := flag.String("type", "limit", "order type: market, limit, ioc, fok")
	quantity := flag.String("quantity", "1", "order quantity as a decimal string")
	price := flag.String("price", "", "limit price as a decimal string (omit for market orders)")
	orderID := flag.String("order-id", "", "order id to cancel (for -action=cancel)")
	flag.Parse()

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("unable to connect to %s: %v", *serverAddr, err)
	}
	defer conn.Close()

	var body any
	var msgType string

	switch *action {
	case "place":
		msgType = "new_order"
		order := map[string]any{
			"symbol":     *symbol,
			"side":       *side,
			"order_type": *orderType,
			"quantity":   *quantity,
		}
		if *price != "" {
			order["price"] = *price
		}
		body = order
	case "cancel":
		msgType = "cancel_order"
		body = map[string]any{
			"symbol":   *symbol,
			"order_id": *orderID,
		}
	default:
		log.Fatalf("unknown action %q", *action)
	}

	payload, err := json.Marshal(map[string]any{"type": msgType, "body": body})
	if err != nil {
		log.Fatalf("unable to encode request: %v", err)
	}

	frame := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(frame[:4], uint32(len(payload)))
	copy(frame[4:], payload)

	if _, err := conn.Write(frame); err != nil {
		log.Fatalf("unable to send request: %v", err)
	}

	var lenBuf [4]byte
	if _, err := io.ReadFull(conn, lenBuf[:]); err != nil {
		log.Fatalf("unable to read response length: %v", err)
	}
	respLen := binary.BigEndian.Uint32(lenBuf[:])
	resp := make([]byte, respLen)
	if _, err := io.ReadFull(conn, resp); err != nil {
		log.Fatalf("unable to read response: %v", err)
	}

	fmt.Println(string(resp))
}
