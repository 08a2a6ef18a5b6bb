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

// Subscriber consumes mural events from NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeDataRefreshed calls handler for every dataset rebuild. Messages
// are redelivered up to three times when the handler fails. An empty
// durable name makes an ephemeral consumer that only sees new refreshes.
func (s *Subscriber) SubscribeDataRefreshed(ctx context.Context, durable string, handler func(ctx context.Context, r domain.DataRefresh) error) error {
	opts := []nats.SubOpt{nats.ManualAck(), nats.MaxDeliver(3)}
	if durable != "" {
		opts = append(opts, nats.Durable(durable))
	} else {
		opts = append(opts, nats.DeliverNew())
	}

	sub, err := s.js.Subscribe(SubjectDataRefreshed, func(msg *nats.Msg) {
		r, err := decodeDataRefresh(msg.Data)
		if err != nil {
			_ = msg.Term()
			return
		}
		if err := handler(ctx, r); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	}, opts...)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}

func decodeDataRefresh(data []byte) (domain.DataRefresh, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(data, &st); err != nil {
		return domain.DataRefresh{}, err
	}
	f := st.GetFields()
	r := domain.DataRefresh{
		Features: int(f["features"].GetNumberValue()),
		Scraped:  int(f["scraped"].GetNumberValue()),
		Extras:   int(f["extras"].GetNumberValue()),
	}
	if ts := f["time"].GetStringValue(); ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return domain.DataRefresh{}, err
		}
		r.Time = t
	}
	return r, nil
}
