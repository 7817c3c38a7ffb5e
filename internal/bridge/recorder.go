package bridge

import (
	"context"
	"encoding/json"
	"sync"
)

// SentEvent is one recorded outbound call.
type SentEvent struct {
	Name    string
	Payload json.RawMessage
}

// Recorder captures outbound events and serves scripted responses. Tests use
// it to assert the event surface and to simulate host rejections and
// server-authoritative overrides.
type Recorder struct {
	mu        sync.Mutex
	events    []SentEvent
	responses map[string][]Response
}

func NewRecorder() *Recorder {
	return &Recorder{responses: map[string][]Response{}}
}

// Queue schedules responses for an event name, consumed in order. With no
// queued response the recorder acknowledges with OK.
func (r *Recorder) Queue(eventName string, responses ...Response) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[eventName] = append(r.responses[eventName], responses...)
}

func (r *Recorder) Send(ctx context.Context, eventName string, payload any) Response {
	body, _ := json.Marshal(payload)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, SentEvent{Name: eventName, Payload: body})

	queued := r.responses[eventName]
	if len(queued) == 0 {
		return Response{OK: true}
	}
	resp := queued[0]
	r.responses[eventName] = queued[1:]
	return resp
}

// Events returns a copy of everything sent so far.
func (r *Recorder) Events() []SentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SentEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Names returns just the sent event names, in order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.events))
	for i, e := range r.events {
		names[i] = e.Name
	}
	return names
}
