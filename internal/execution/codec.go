package execution

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/slok/replup/internal/model"
)

type outMessageJSON struct {
	Command string `json:"command"`
	Data    string `json:"data"`
}

type inMessageJSON struct {
	Command string          `json:"command"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

// EncodeMessage serializes an outbound message frame.
func EncodeMessage(msg model.Message) ([]byte, error) {
	if msg.Command == "" {
		return nil, fmt.Errorf("message command is required: %w", model.ErrNotValid)
	}

	data, err := json.Marshal(outMessageJSON{Command: msg.Command, Data: msg.Data})
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return data, nil
}

// DecodeMessage deserializes an inbound message frame. Non string data and error
// values are kept as their raw JSON text.
func DecodeMessage(frame []byte) (model.Message, error) {
	var m inMessageJSON
	if err := json.Unmarshal(frame, &m); err != nil {
		return model.Message{}, fmt.Errorf("failed to decode message: %w", err)
	}

	return model.Message{
		Command: m.Command,
		Data:    rawText(m.Data),
		Error:   rawText(m.Error),
	}, nil
}

func rawText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "", "null", "false", `""`:
		return ""
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}
