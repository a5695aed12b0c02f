package streamers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"

	"github.com/duragraph/mdf/internal/mdf"
)

// Nats subscribes to a NATS subject via a Watermill subscriber and decodes
// each message payload as a JSON batch of envelopes into one launch batch.
// Grounded on the teacher's messaging/nats Publisher (same
// natsgo.Connect-then-wrap-in-Watermill construction), mirrored for the
// consuming side.
type Nats struct {
	sub      message.Subscriber
	messages <-chan *message.Message
	decoders map[string]Decoder
}

// NewNats connects to natsURL and subscribes to subject, decoding envelope
// values with decoders (keyed by Param name, same contract as Redis).
func NewNats(natsURL, subject string, decoders map[string]Decoder, logger watermill.LoggerAdapter) (*Nats, error) {
	nc, err := natsgo.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("streamers: connecting to nats: %w", err)
	}
	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("streamers: opening jetstream context: %w", err)
	}
	if _, err := js.AddStream(&natsgo.StreamConfig{Name: subject, Subjects: []string{subject}}); err != nil {
		if err != natsgo.ErrStreamNameAlreadyInUse {
			return nil, fmt.Errorf("streamers: ensuring stream %q: %w", subject, err)
		}
	}

	sub, err := wmnats.NewSubscriber(
		wmnats.SubscriberConfig{URL: natsURL, Unmarshaler: wmnats.GobMarshaler{}},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("streamers: building nats subscriber: %w", err)
	}

	messages, err := sub.Subscribe(context.Background(), subject)
	if err != nil {
		return nil, fmt.Errorf("streamers: subscribing to %q: %w", subject, err)
	}

	return &Nats{sub: sub, messages: messages, decoders: decoders}, nil
}

func (s *Nats) Next(ctx context.Context) ([]mdf.Assignment, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg, ok := <-s.messages:
		if !ok {
			return nil, nil
		}
		defer msg.Ack()

		var batch []envelope
		if err := json.Unmarshal(msg.Payload, &batch); err != nil {
			return nil, fmt.Errorf("streamers: decoding nats batch: %w", err)
		}
		assignments := make([]mdf.Assignment, 0, len(batch))
		for _, e := range batch {
			decode, ok := s.decoders[e.Param]
			if !ok {
				return nil, fmt.Errorf("streamers: no decoder registered for param %q", e.Param)
			}
			v, err := decode(e.Value)
			if err != nil {
				return nil, fmt.Errorf("streamers: decoding param %q: %w", e.Param, err)
			}
			assignments = append(assignments, mdf.Assignment{Node: e.NodeID, Param: e.Param, Token: mdf.WrapValue(v)})
		}
		return assignments, nil
	}
}

// Close releases the underlying subscriber.
func (s *Nats) Close() error {
	return s.sub.Close()
}
