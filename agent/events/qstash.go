// Package events delivers turn events to the outbound queue. Publication is
// best-effort by contract; consumers must tolerate duplicates.
package events

import (
	"context"
	"errors"
	"strings"

	contractx "github.com/saveurlabs/saveur-agent/agent/contract"
	qstashx "github.com/saveurlabs/saveur-agent/pkg/qstash"
)

type Config struct {
	Destination string `envconfig:"DESTINATION" split_words:"true" required:"true"`
}

// QStashPublisher sends turn events through QStash.
type QStashPublisher struct {
	client      *qstashx.Client
	destination string
}

var _ contractx.EventPublisher = (*QStashPublisher)(nil)

func NewQStashPublisher(client *qstashx.Client, cfg Config) (*QStashPublisher, error) {
	if client == nil {
		return nil, errors.New("qstash client is required")
	}
	destination := strings.TrimSpace(cfg.Destination)
	if destination == "" {
		return nil, errors.New("event destination is required")
	}
	return &QStashPublisher{client: client, destination: destination}, nil
}

func (p *QStashPublisher) Publish(ctx context.Context, event contractx.TurnEvent) error {
	return p.client.PublishJSON(ctx, p.destination, event)
}
