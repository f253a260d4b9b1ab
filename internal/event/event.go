// Package event defines the score and leader change events the server
// publishes on the AMQP topic exchange, and decodes them for subscribers.
package event

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/rescuerunner/runnerboard"
)

// Routing keys used on the topic exchange.
const (
	KeyChangedScore  = "changed.score"
	KeyChangedLeader = "changed.leader"
)

var log = logrus.StandardLogger().WithFields(logrus.Fields{
	"component": "event",
})

type Event struct {
	ChangedScore  *ChangedScore  `json:"event-changed-score,omitempty"`
	ChangedLeader *ChangedLeader `json:"event-changed-leader,omitempty"`
}

type ChangedScore struct {
	Entry        runnerboard.Entry `json:"entry"`
	Rank         int               `json:"rank"`
	TotalPlayers int               `json:"total_players"`
}

type ChangedLeader struct {
	Leader runnerboard.Entry `json:"leader"`
}

// Stream decodes deliveries into events until ctx is done or deliveries is
// closed. Deliveries that are not events are logged and dropped.
func Stream(ctx context.Context, deliveries <-chan amqp.Delivery) <-chan Event {
	ch := make(chan Event)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-deliveries:
				if !ok {
					return
				}

				var evt Event
				err := json.Unmarshal(delivery.Body, &evt)
				if err != nil {
					log.WithError(err).WithField("routing_key", delivery.RoutingKey).Warn("failed to deserialize event")
					continue
				}

				select {
				case ch <- evt:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch
}
