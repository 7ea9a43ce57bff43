// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

// Package session implements scripted terminal bridge sessions: a
// socket protocol for exchanging terminal data with a bridge, a
// recorder that turns received output into deterministic trace events
// with a rolling checksum chain, and a driver that executes scripted
// scenarios against a live bridge and compares the result to golden
// transcripts.
package session

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// Message type constants for the bridge session wire format. Each
// message is a 5-byte header (1 byte type + 4 byte big-endian payload
// length) followed by the payload.
const (
	// MessageTypeData carries raw terminal bytes. Bidirectional:
	// output flows bridge→client, input flows client→bridge. Payload
	// is opaque bytes passed through unmodified.
	MessageTypeData byte = 0x01

	// MessageTypeText carries a UTF-8 JSON document. Client→bridge
	// text messages are control requests (resize); bridge→client text
	// messages are structured frame events wrapping terminal bytes
	// with render metadata.
	MessageTypeText byte = 0x02
)

// messageHeaderLength is the fixed size of a message header: 1 byte
// type + 4 bytes payload length.
const messageHeaderLength = 5

// maxPayloadLength is the maximum allowed payload size. 16 MB is
// generous for terminal output; a full-screen repaint of a large
// terminal is well under 1 MB.
const maxPayloadLength = 16 * 1024 * 1024

// Message is a single bridge session message.
type Message struct {
	Type    byte
	Payload []byte
}

// WriteMessage writes a framed message to w. The frame format is:
// [1 byte type] [4 bytes payload length, big-endian uint32] [payload].
func WriteMessage(w io.Writer, message Message) error {
	var header [messageHeaderLength]byte
	header[0] = message.Type
	binary.BigEndian.PutUint32(header[1:5], uint32(len(message.Payload)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write message header: %w", err)
	}
	if len(message.Payload) > 0 {
		if _, err := w.Write(message.Payload); err != nil {
			return fmt.Errorf("write message payload: %w", err)
		}
	}
	return nil
}

// ReadMessage reads a framed message from r. Returns an error if the
// stream is malformed or the payload exceeds maxPayloadLength.
func ReadMessage(r io.Reader) (Message, error) {
	var header [messageHeaderLength]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Message{}, fmt.Errorf("read message header: %w", err)
	}
	messageType := header[0]
	payloadLength := binary.BigEndian.Uint32(header[1:5])
	if payloadLength > maxPayloadLength {
		return Message{}, fmt.Errorf("payload length %d exceeds maximum %d", payloadLength, maxPayloadLength)
	}
	payload := make([]byte, payloadLength)
	if payloadLength > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return Message{}, fmt.Errorf("read message payload: %w", err)
		}
	}
	return Message{Type: messageType, Payload: payload}, nil
}

// NewDataMessage creates a data message carrying raw terminal bytes.
func NewDataMessage(data []byte) Message {
	return Message{Type: MessageTypeData, Payload: data}
}

// NewTextMessage creates a text message carrying a JSON document.
func NewTextMessage(document []byte) Message {
	return Message{Type: MessageTypeText, Payload: document}
}

// ResizeControl is the client→bridge resize request, sent as a text
// message.
type ResizeControl struct {
	Type string `json:"type"`
	Cols int    `json:"cols"`
	Rows int    `json:"rows"`
}

// EncodeResize builds the resize control message for the given
// terminal dimensions.
func EncodeResize(cols, rows int) (Message, error) {
	document, err := json.Marshal(ResizeControl{Type: "resize", Cols: cols, Rows: rows})
	if err != nil {
		return Message{}, fmt.Errorf("encoding resize control: %w", err)
	}
	return NewTextMessage(document), nil
}
