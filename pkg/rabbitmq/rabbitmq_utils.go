package rabbitmq

import (
	"fmt"
	"time"

	"satch-client/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	defaultHost = "rabbitmq:5672"
	maxRetries  = 7
)

// WorkerService is a long running consumer or scheduled job started by the application.
type WorkerService interface {
	GetServiceName() string
	StartService()
}

func ConnectToRabbitmq(user, password, host string) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	waitTime := 1 * time.Second

	queueLogger := logger.Default()
	connectionString := fmt.Sprintf("amqp://%s:%s@%s/", user, password, host)

	for i := 0; i < maxRetries; i++ {
		conn, err = amqp.Dial(connectionString)
		if err == nil {
			return conn, nil
		}
		queueLogger.Warnf("Attempt %d failed: %v. Retrying in %v...", i+1, err, waitTime)
		time.Sleep(waitTime)
		waitTime *= 2
	}
	return nil, err
}

// DeclareTopology declares the configured exchanges and queues and binds them.
func DeclareTopology(ch *amqp.Channel, config RabbitmqConfig) error {
	for _, ex := range config.Exchanges {
		err := ch.ExchangeDeclare(
			ex.ExchangeName,
			string(ex.ExchangeType),
			true,  // durable
			false, // auto-deleted
			false, // internal
			false, // no-wait
			nil,
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.ExchangeName, err)
		}
	}

	for _, q := range config.Queues {
		if _, err := ch.QueueDeclare(q.QueueName, q.Durable, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", q.QueueName, err)
		}
		if q.ExchangeBinding == "" {
			continue
		}
		if err := ch.QueueBind(q.QueueName, q.RoutingKey, q.ExchangeBinding, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", q.QueueName, err)
		}
	}
	return nil
}
