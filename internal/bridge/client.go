// Package bridge is the outbound request/response boundary to the host game
// client. Every register action that needs the host goes through Client.Send;
// failures come back as normalized values, never as panics or raw transport
// errors.
package bridge

import (
	"context"
	"encoding/json"
)

// Response is the host's answer to one event call.
type Response struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error *Error          `json:"error,omitempty"`
}

// DecodeData unmarshals the success payload into out. A nil or empty payload
// leaves out untouched and returns false.
func (r Response) DecodeData(out any) bool {
	if len(r.Data) == 0 {
		return false
	}
	return json.Unmarshal(r.Data, out) == nil
}

// Client sends one named event with a JSON payload and waits for the host's
// response. Implementations must be safe for concurrent use across registers.
type Client interface {
	Send(ctx context.Context, eventName string, payload any) Response
}

// Noop acknowledges every event without a host. Used when the engine runs
// outside the game client (browser/dev mode in the original overlay).
type Noop struct{}

func (Noop) Send(ctx context.Context, eventName string, payload any) Response {
	return Response{OK: true}
}
