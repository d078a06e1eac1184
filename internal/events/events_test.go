// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package events

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/feedrank/internal/config"
	"github.com/tomtom215/feedrank/internal/models"
)

func floatPtr(f float64) *float64 { return &f }

func validEvent() InteractionEvent {
	return InteractionEvent{UserID: "u1", ArticleID: "a1", Type: models.InteractionView, Value: floatPtr(42)}
}

func TestInteractionEvent_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(e *InteractionEvent)
		wantErr bool
	}{
		{"valid", func(e *InteractionEvent) {}, false},
		{"like without value", func(e *InteractionEvent) { e.Type = models.InteractionLike; e.Value = nil }, false},
		{"missing user", func(e *InteractionEvent) { e.UserID = "" }, true},
		{"missing article", func(e *InteractionEvent) { e.ArticleID = "" }, true},
		{"unknown type", func(e *InteractionEvent) { e.Type = "share" }, true},
		{"negative value", func(e *InteractionEvent) { e.Value = floatPtr(-3) }, true},
		{"nan value", func(e *InteractionEvent) { e.Value = floatPtr(math.NaN()) }, true},
		{"negative time", func(e *InteractionEvent) { e.OccurredAt = -1 }, true},
		{"long event id", func(e *InteractionEvent) { e.EventID = strings.Repeat("x", 65) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := validEvent()
			tt.mutate(&ev)
			err := ev.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidEvent) {
				t.Errorf("Validate() error = %v, want ErrInvalidEvent", err)
			}
		})
	}
}

func TestUnmarshalEvent(t *testing.T) {
	ev := validEvent()
	ev.EventID = "e1"
	ev.OccurredAt = 1000
	data, err := MarshalEvent(&ev)
	if err != nil {
		t.Fatalf("MarshalEvent() error = %v", err)
	}

	got, err := UnmarshalEvent(data)
	if err != nil {
		t.Fatalf("UnmarshalEvent() error = %v", err)
	}
	if got.EventID != "e1" || got.UserID != "u1" || got.OccurredAt != 1000 || *got.Value != 42 {
		t.Errorf("UnmarshalEvent() = %+v", got)
	}

	for _, bad := range []string{"{", "null", `{"user_id":"u1","article_id":"a1","type":"bogus"}`} {
		if _, err := UnmarshalEvent([]byte(bad)); !errors.Is(err, ErrInvalidEvent) {
			t.Errorf("UnmarshalEvent(%s) error = %v, want ErrInvalidEvent", bad, err)
		}
	}
}

func TestToInteraction(t *testing.T) {
	ev := validEvent()
	ev.EventID = "e1"
	ev.OccurredAt = 77

	in := ev.ToInteraction()
	if in.ID != "e1" {
		t.Errorf("ID = %q, want e1", in.ID)
	}
	if in.UserID == nil || *in.UserID != "u1" {
		t.Errorf("UserID = %v, want u1", in.UserID)
	}
	if in.Type != models.InteractionView || in.ValueOrZero() != 42 || in.CreatedAt != 77 {
		t.Errorf("ToInteraction() = %+v", in)
	}
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []*message.Message
	err      error
}

func (p *recordingPublisher) Publish(_ string, msgs ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msgs...)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestSink_Publish(t *testing.T) {
	pub := &recordingPublisher{}
	sink := NewSink(pub, "interactions", zerolog.Nop())
	sink.now = func() time.Time { return time.Unix(0, 5000) }

	id, err := sink.Publish(context.Background(), validEvent())
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if id == "" {
		t.Fatal("Publish() returned empty event id")
	}
	if len(pub.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.messages))
	}

	msg := pub.messages[0]
	if msg.UUID != id {
		t.Errorf("message UUID = %q, want %q", msg.UUID, id)
	}
	if msg.Metadata.Get("type") != "view" {
		t.Errorf("type metadata = %q, want view", msg.Metadata.Get("type"))
	}
	var decoded InteractionEvent
	if err := json.Unmarshal(msg.Payload, &decoded); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if decoded.OccurredAt != 5000 {
		t.Errorf("OccurredAt = %d, want 5000", decoded.OccurredAt)
	}

	ev := validEvent()
	ev.EventID = "fixed"
	ev.OccurredAt = 9
	if id, _ := sink.Publish(context.Background(), ev); id != "fixed" {
		t.Errorf("Publish() id = %q, want caller supplied id", id)
	}
}

func TestSink_PublishRejectsInvalid(t *testing.T) {
	pub := &recordingPublisher{}
	sink := NewSink(pub, "interactions", zerolog.Nop())

	ev := validEvent()
	ev.Type = "bogus"
	if _, err := sink.Publish(context.Background(), ev); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("Publish() error = %v, want ErrInvalidEvent", err)
	}
	if len(pub.messages) != 0 {
		t.Errorf("invalid event was published")
	}

	pub.err = errors.New("bus down")
	if _, err := sink.Publish(context.Background(), validEvent()); err == nil {
		t.Error("Publish() should surface publisher errors")
	}
}

type fakeStore struct {
	mu       sync.Mutex
	rows     map[string]*models.Interaction
	failures int
	calls    int
	stored   chan string
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string]*models.Interaction), stored: make(chan string, 16)}
}

func (s *fakeStore) InsertInteraction(_ context.Context, in *models.Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failures > 0 {
		s.failures--
		return errors.New("database is locked")
	}
	if _, ok := s.rows[in.ID]; !ok {
		s.rows[in.ID] = in
	}
	s.stored <- in.ID
	return nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func TestConsumer_Handle(t *testing.T) {
	store := newFakeStore()
	c := NewConsumer(store, zerolog.Nop())

	ev := validEvent()
	ev.EventID = "e1"
	data, _ := MarshalEvent(&ev)
	if err := c.Handle(message.NewMessage("e1", data)); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if store.count() != 1 {
		t.Errorf("stored rows = %d, want 1", store.count())
	}

	if err := c.Handle(message.NewMessage("bad", []byte("not json"))); err != nil {
		t.Errorf("Handle(invalid) error = %v, want nil (ack)", err)
	}
	if store.count() != 1 {
		t.Errorf("invalid event was stored")
	}

	store.failures = 1
	if err := c.Handle(message.NewMessage("e1", data)); err == nil {
		t.Error("Handle() should return storage errors for retry")
	}
}

func testEventsConfig() *config.EventsConfig {
	return &config.EventsConfig{
		Enabled:         true,
		Transport:       config.TransportChannel,
		Topic:           "test.interactions",
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		CloseTimeout:    time.Second,
	}
}

// startRouter runs a router over a fresh gochannel transport and waits
// until it has subscribed.
func startRouter(t *testing.T, store *fakeStore) (*Sink, *Router) {
	t.Helper()
	cfg := testEventsConfig()
	logger := NewLoggerAdapter(zerolog.Nop())

	transport, err := NewTransport(cfg, logger)
	if err != nil {
		t.Fatalf("NewTransport() error = %v", err)
	}
	router, err := NewRouter(cfg, transport.Subscriber, NewConsumer(store, zerolog.Nop()), logger)
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- router.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("router did not stop")
		}
		_ = transport.Close()
	})

	select {
	case <-router.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}
	return NewSink(transport.Publisher, cfg.Topic, zerolog.Nop()), router
}

func waitStored(t *testing.T, store *fakeStore, want string) {
	t.Helper()
	select {
	case got := <-store.stored:
		if got != want {
			t.Errorf("stored id = %q, want %q", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("event %s was not stored", want)
	}
}

func TestRouter_DeliversToStore(t *testing.T) {
	store := newFakeStore()
	sink, router := startRouter(t, store)

	if !router.IsRunning() {
		t.Error("IsRunning() = false after Ready")
	}

	id, err := sink.Publish(context.Background(), validEvent())
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	waitStored(t, store, id)

	// A redelivered event keeps its id, so the log holds it once.
	ev := validEvent()
	ev.EventID = id
	if _, err := sink.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	waitStored(t, store, id)
	if store.count() != 1 {
		t.Errorf("stored rows = %d, want 1", store.count())
	}
}

func TestRouter_RetriesStorageErrors(t *testing.T) {
	store := newFakeStore()
	store.failures = 2
	sink, _ := startRouter(t, store)

	id, err := sink.Publish(context.Background(), validEvent())
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	waitStored(t, store, id)

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.calls != 3 {
		t.Errorf("InsertInteraction calls = %d, want 3", store.calls)
	}
}

func TestNewRouter_Validation(t *testing.T) {
	cfg := testEventsConfig()
	transport, err := NewTransport(cfg, nil)
	if err != nil {
		t.Fatalf("NewTransport() error = %v", err)
	}
	defer transport.Close()
	consumer := NewConsumer(newFakeStore(), zerolog.Nop())

	if _, err := NewRouter(cfg, nil, consumer, nil); err == nil {
		t.Error("NewRouter(nil subscriber) should fail")
	}
	if _, err := NewRouter(cfg, transport.Subscriber, nil, nil); err == nil {
		t.Error("NewRouter(nil consumer) should fail")
	}
	noTopic := *cfg
	noTopic.Topic = ""
	if _, err := NewRouter(&noTopic, transport.Subscriber, consumer, nil); err == nil {
		t.Error("NewRouter(empty topic) should fail")
	}
}

func TestNewTransport_Unknown(t *testing.T) {
	cfg := testEventsConfig()
	cfg.Transport = "kafka"
	if _, err := NewTransport(cfg, nil); err == nil {
		t.Error("NewTransport(kafka) should fail")
	}
}

func TestLoggerAdapter(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewLoggerAdapter(zerolog.New(&buf))

	adapter.With(watermill.LogFields{"topic": "t1"}).Error("publish failed", errors.New("boom"), watermill.LogFields{"attempt": 2})

	var m map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if m["topic"] != "t1" || m["error"] != "boom" || m["attempt"] != float64(2) {
		t.Errorf("log fields = %v", m)
	}
	if m["message"] != "publish failed" {
		t.Errorf("message = %v", m["message"])
	}
}
