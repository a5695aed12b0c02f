package drainers

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

// natsResult is the wire payload published for each terminal token.
type natsResult struct {
	NodeID mdf.NodeId `json:"node_id"`
	Value  any        `json:"value"`
}

// Nats publishes every terminal token as a JSON message on a NATS subject
// via a Watermill publisher. Grounded directly on the teacher's
// messaging/nats.Publisher: connect with nats.go, open a JetStream
// context, ensure the stream exists, then wrap a Watermill publisher
// around the same URL.
type Nats struct {
	pub     message.Publisher
	subject string
}

// NewNats connects to natsURL, ensures subject's stream exists, and
// returns a ready Drainer.
func NewNats(natsURL, subject string, logger watermill.LoggerAdapter) (*Nats, error) {
	nc, err := natsgo.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("drainers: connecting to nats: %w", err)
	}
	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("drainers: opening jetstream context: %w", err)
	}
	if _, err := js.AddStream(&natsgo.StreamConfig{Name: subject, Subjects: []string{subject}}); err != nil {
		if err != natsgo.ErrStreamNameAlreadyInUse {
			return nil, fmt.Errorf("drainers: ensuring stream %q: %w", subject, err)
		}
	}

	pub, err := wmnats.NewPublisher(
		wmnats.PublisherConfig{URL: natsURL, Marshaler: wmnats.GobMarshaler{}},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("drainers: building nats publisher: %w", err)
	}

	return &Nats{pub: pub, subject: subject}, nil
}

func (d *Nats) Accept(_ context.Context, nodeID mdf.NodeId, tok mdf.Token) error {
	payload, err := json.Marshal(natsResult{NodeID: nodeID, Value: tok.Value()})
	if err != nil {
		return fmt.Errorf("drainers: marshaling result: %w", err)
	}
	return d.pub.Publish(d.subject, message.NewMessage(watermill.NewUUID(), payload))
}

// Close releases the underlying publisher.
func (d *Nats) Close() error {
	return d.pub.Close()
}
