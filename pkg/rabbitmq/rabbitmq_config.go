package rabbitmq

import "satch-client/pkg/utilities"

type RabbimqConfigJson struct {
	User             string                         `json:"user"`
	Password         string                         `json:"password"`
	Host             string                         `json:"host"`
	Exchanges        []RabbitmqExchangeConfigJson   `json:"exchanges"`
	Queues           []RabbitmqQueueConfigJson      `json:"queues"`
	PublishersConfig []RabbitmqPublishersConfigJson `json:"publishers"`
	ConsumersConfig  []RabbitmqConsumerConfigJson   `json:"consumers"`
}

type RabbitmqConfig struct {
	User             string
	Password         string
	Host             string
	Exchanges        []RabbitmqExchangeConfig
	Queues           []RabbitmqQueueConfig
	PublishersConfig []RabbitmqPublishersConfig
	ConsumersConfig  []RabbitmqConsumerConfig
}

func (rcj RabbimqConfigJson) ConvertToDomain() RabbitmqConfig {
	return RabbitmqConfig{
		User:     rcj.User,
		Password: rcj.Password,
		Host:     utilities.Ternary(rcj.Host != "", rcj.Host, defaultHost),
		Exchanges: utilities.ConvertJsonArrayToDomain[
			RabbitmqExchangeConfigJson,
			RabbitmqExchangeConfig,
		](rcj.Exchanges),
		Queues: utilities.ConvertJsonArrayToDomain[
			RabbitmqQueueConfigJson,
			RabbitmqQueueConfig,
		](rcj.Queues),
		PublishersConfig: utilities.ConvertJsonArrayToDomain[
			RabbitmqPublishersConfigJson,
			RabbitmqPublishersConfig,
		](rcj.PublishersConfig),
		ConsumersConfig: utilities.ConvertJsonArrayToDomain[
			RabbitmqConsumerConfigJson,
			RabbitmqConsumerConfig,
		](rcj.ConsumersConfig),
	}
}

type RabbitmqExchangeType string

const (
	ExchangeFanout RabbitmqExchangeType = "fanout"
	ExchangeDirect RabbitmqExchangeType = "direct"
	ExchangeTopic  RabbitmqExchangeType = "topic"
)

type RabbitmqExchangeConfigJson struct {
	ExchangeName string `json:"exchange_name"`
	ExchangeType string `json:"exchange_type"`
}

type RabbitmqExchangeConfig struct {
	ExchangeName string
	ExchangeType RabbitmqExchangeType
}

func (recj RabbitmqExchangeConfigJson) ConvertToDomain() RabbitmqExchangeConfig {
	return RabbitmqExchangeConfig{
		ExchangeName: recj.ExchangeName,
		ExchangeType: RabbitmqExchangeType(utilities.Ternary(recj.ExchangeType != "", recj.ExchangeType, string(ExchangeDirect))),
	}
}

type RabbitmqQueueConfigJson struct {
	QueueName       string `json:"queue_name"`
	RoutingKey      string `json:"routing_key"`
	ExchangeBinding string `json:"exchange_binding"`
	Durable         bool   `json:"durable"`
}

type RabbitmqQueueConfig struct {
	QueueName       string
	RoutingKey      string
	ExchangeBinding string
	Durable         bool
}

func (rqcj RabbitmqQueueConfigJson) ConvertToDomain() RabbitmqQueueConfig {
	return RabbitmqQueueConfig{
		QueueName:       rqcj.QueueName,
		RoutingKey:      rqcj.RoutingKey,
		ExchangeBinding: rqcj.ExchangeBinding,
		Durable:         rqcj.Durable,
	}
}

type RabbitmqPublishersConfigJson struct {
	PublisherAlias string `json:"publisher_alias"`
	Exchange       string `json:"exchange"`
	RoutingKey     string `json:"routing_key"`
}

type RabbitmqPublishersConfig struct {
	PublisherAlias PublisherAlias
	Exchange       string
	RoutingKey     string
}

func (rpcj RabbitmqPublishersConfigJson) ConvertToDomain() RabbitmqPublishersConfig {
	return RabbitmqPublishersConfig{
		PublisherAlias: PublisherAlias(rpcj.PublisherAlias),
		Exchange:       rpcj.Exchange,
		RoutingKey:     rpcj.RoutingKey,
	}
}

type RabbitmqConsumerConfigJson struct {
	ConsumerAlias string `json:"consumer_alias"`
	ConsumerTag   string `json:"consumer_tag"`
	QueueName     string `json:"queue_name"`
}

type RabbitmqConsumerConfig struct {
	ConsumerAlias ConsumerAlias
	ConsumerTag   string
	QueueName     string
}

func (rccj RabbitmqConsumerConfigJson) ConvertToDomain() RabbitmqConsumerConfig {
	return RabbitmqConsumerConfig{
		ConsumerAlias: ConsumerAlias(rccj.ConsumerAlias),
		ConsumerTag:   rccj.ConsumerTag,
		QueueName:     rccj.QueueName,
	}
}
