package natsadapter

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/samirrijal/muralmap/internal/core/domain"
)

// Subjects used on the MURALS stream.
const (
	SubjectDataRefreshed = "murals.data.refreshed"
	subjectViewerPrefix  = "murals.viewer."
)

// ViewerSubject returns the subject a session's viewer events go to.
// Pass "*" as the event type to build a subscription wildcard.
func ViewerSubject(sessionID, eventType string) string {
	return subjectViewerPrefix + sessionID + "." + eventType
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	streams := []nats.StreamConfig{
		{
			Name:      "MURALS_DATA",
			Subjects:  []string{"murals.data.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    7 * 24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "MURALS_VIEWER",
			Subjects:  []string{subjectViewerPrefix + ">"},
			Retention: nats.LimitsPolicy,
			MaxAge:    1 * time.Hour,
			Storage:   nats.MemoryStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishViewerEvent sends a viewer event to murals.viewer.<session>.<type>.
func (p *Publisher) PublishViewerEvent(ctx context.Context, e domain.ViewerEvent) error {
	data, err := EncodeViewerEvent(e)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(ViewerSubject(e.SessionID, string(e.Type)), data, nats.Context(ctx))
	return err
}

// PublishDataRefreshed announces a rebuilt dataset.
func (p *Publisher) PublishDataRefreshed(ctx context.Context, r domain.DataRefresh) error {
	s, err := structpb.NewStruct(map[string]any{
		"time":     r.Time.Format(time.RFC3339Nano),
		"features": r.Features,
		"scraped":  r.Scraped,
		"extras":   r.Extras,
	})
	if err != nil {
		return err
	}
	data, err := proto.Marshal(s)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectDataRefreshed, data, nats.Context(ctx))
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// EncodeViewerEvent renders an event as a protobuf Struct.
func EncodeViewerEvent(e domain.ViewerEvent) ([]byte, error) {
	s, err := viewerEventStruct(e)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

// DecodeViewerEvent parses a payload written by EncodeViewerEvent.
func DecodeViewerEvent(data []byte) (domain.ViewerEvent, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return domain.ViewerEvent{}, fmt.Errorf("decode viewer event: %w", err)
	}
	f := s.GetFields()
	e := domain.ViewerEvent{
		Type:      domain.ViewerEventType(f["type"].GetStringValue()),
		SessionID: f["session_id"].GetStringValue(),
		Markers:   int(f["markers"].GetNumberValue()),
		Features:  int(f["features"].GetNumberValue()),
		Href:      f["href"].GetStringValue(),
		Error:     f["error"].GetStringValue(),
	}
	if ts := f["time"].GetStringValue(); ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return domain.ViewerEvent{}, fmt.Errorf("decode viewer event time: %w", err)
		}
		e.Time = t
	}
	return e, nil
}

func viewerEventStruct(e domain.ViewerEvent) (*structpb.Struct, error) {
	fields := map[string]any{
		"type":       string(e.Type),
		"session_id": e.SessionID,
		"time":       e.Time.UTC().Format(time.RFC3339Nano),
	}
	if e.Markers > 0 {
		fields["markers"] = e.Markers
	}
	if e.Features > 0 {
		fields["features"] = e.Features
	}
	if e.Href != "" {
		fields["href"] = e.Href
	}
	if e.Error != "" {
		fields["error"] = e.Error
	}
	return structpb.NewStruct(fields)
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
