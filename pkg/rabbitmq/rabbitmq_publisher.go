package rabbitmq

import (
	"context"
	"sync"
	"time"

	"satch-client/pkg/logger"
	"satch-client/pkg/utilities"

	amqp "github.com/rabbitmq/amqp091-go"
)

type PublisherAlias string

var (
	publisherRegistry map[PublisherAlias]IRabbitmqPublisher
	oncePublisher     sync.Once
)

func GetPublisher(alias PublisherAlias) IRabbitmqPublisher {
	return publisherRegistry[alias]
}

func InitializePublisherRegistry(conn *amqp.Connection, publisherConfig []RabbitmqPublishersConfig) {
	oncePublisher.Do(func() {
		publisherRegistry = make(map[PublisherAlias]IRabbitmqPublisher)

		for _, publisher := range publisherConfig {
			channel, err := conn.Channel()
			if err != nil {
				logger.Default().Panicf(err, "Could not obtain channel for publisher %s", publisher.PublisherAlias)
			}

			publisherRegistry[publisher.PublisherAlias] = NewPublisher(
				channel,
				publisher.Exchange,
				publisher.RoutingKey,
			)
		}
	})
}

// PublishChannel is the part of *amqp.Channel a publisher needs.
type PublishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitmqPublisher struct {
	Channel    PublishChannel
	Exchange   string
	RoutingKey string
}

func NewPublisher(ch PublishChannel, exchange, routingKey string) *RabbitmqPublisher {
	return &RabbitmqPublisher{
		Channel:    ch,
		Exchange:   exchange,
		RoutingKey: routingKey,
	}
}

type IRabbitmqPublisher interface {
	Publish(body utilities.Serializable) error
}

func (rp *RabbitmqPublisher) Publish(body utilities.Serializable) error {
	json, err := body.Serialize()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return rp.Channel.PublishWithContext(
		ctx,
		rp.Exchange,
		rp.RoutingKey,
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         json,
			Timestamp:    time.Now(),
			DeliveryMode: amqp.Persistent,
		},
	)
}
