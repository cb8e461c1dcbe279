package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"kyc-ledger/internal/platform/kafka/producer"
)

// KafkaSink mirrors audit events to a Kafka topic so external observers can
// consume the trail without querying the node.
type KafkaSink struct {
	producer *producer.Producer
	topic    string
}

func NewKafkaSink(prod *producer.Producer, topic string) *KafkaSink {
	return &KafkaSink{producer: prod, topic: topic}
}

func (s *KafkaSink) Append(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	return s.producer.Produce(ctx, &producer.Message{
		Topic: s.topic,
		// Keyed by record so per-record event order survives partitioning.
		Key:   []byte(event.Key),
		Value: value,
		Headers: map[string]string{
			"operation": event.Operation,
		},
	})
}
