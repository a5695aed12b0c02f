package streamers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/duragraph/mdf/internal/mdf"
)

// Decoder turns one envelope's raw JSON value into the concrete Go value a
// node's declared parameter type expects.
type Decoder func(raw json.RawMessage) (any, error)

type envelope struct {
	NodeID mdf.NodeId      `json:"node_id"`
	Param  string          `json:"param"`
	Value  json.RawMessage `json:"value"`
}

// Redis blocks on a Redis list via BLPOP, decoding each popped element as a
// JSON array of envelopes into one launch batch. Grounded on the teacher's
// RedisCache (same json.Marshal/Unmarshal-over-go-redis idiom), repurposed
// from a cache into a work queue.
type Redis struct {
	client   *redis.Client
	key      string
	decoders map[string]Decoder
}

// NewRedis builds a Redis streamer popping batches from key, decoding each
// envelope's value with the Decoder registered under its Param name.
func NewRedis(client *redis.Client, key string, decoders map[string]Decoder) *Redis {
	return &Redis{client: client, key: key, decoders: decoders}
}

func (s *Redis) Next(ctx context.Context) ([]mdf.Assignment, error) {
	// A zero timeout blocks until an element is available or ctx is
	// canceled — momentary emptiness must never look like end-of-stream,
	// which is what a returned empty batch signals to the engine.
	res, err := s.client.BLPop(ctx, 0, s.key).Result()
	if err != nil {
		return nil, err
	}

	var batch []envelope
	if err := json.Unmarshal([]byte(res[1]), &batch); err != nil {
		return nil, fmt.Errorf("streamers: decoding redis batch: %w", err)
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
