package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeExecutions Exchange = "geoflow.executions"
	ExchangeEvents     Exchange = "geoflow.events"
	ExchangeDLQ        Exchange = "geoflow.dlq"
)

// Queues — имена очередей.
const (
	QueueExecutionsRequested Queue = "executions.requested"
	QueueExecutionsFinished  Queue = "executions.finished"
	QueueTriggerEvents       Queue = "events.triggers"
	QueueDLQExecutions       Queue = "dlq.executions"
)

// Routing keys.
const (
	RoutingKeyRequested     RoutingKey = "requested"
	RoutingKeyFinished      RoutingKey = "finished"
	RoutingKeyDLQExecutions RoutingKey = "executions"

	// RoutingKeyAllEvents — события платформы маршрутизируются по
	// event key, EVENT-триггеры слушают все и фильтруют сами.
	RoutingKeyAllEvents RoutingKey = "#"
)

func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		if err := declareExchanges(ch); err != nil {
			return err
		}
		if err := declareQueues(ch); err != nil {
			return err
		}
		return bindQueues(ch)
	})
}

// declareExchanges создаёт обменники.
func declareExchanges(ch *amqp.Channel) error {
	exchanges := []struct {
		name Exchange
		kind string
	}{
		{ExchangeExecutions, "direct"},
		{ExchangeEvents, "topic"},
		{ExchangeDLQ, "direct"},
	}

	for _, ex := range exchanges {
		err := ch.ExchangeDeclare(
			string(ex.name), // name
			ex.kind,         // type
			true,            // durable
			false,           // auto-deleted
			false,           // internal
			false,           // no-wait
			nil,             // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.name, err)
		}
	}

	return nil
}

// declareQueues создаёт очереди.
func declareQueues(ch *amqp.Channel) error {
	// Аргументы для очередей с DLQ
	dlqArgs := amqp.Table{
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(RoutingKeyDLQExecutions),
	}

	queues := []struct {
		name Queue
		args amqp.Table
	}{
		// executions.requested — с DLQ (запрос не должен потеряться молча)
		{QueueExecutionsRequested, dlqArgs},

		// executions.finished — без DLQ (события завершения)
		{QueueExecutionsFinished, nil},

		// events.triggers — без DLQ (несработавший триггер не фатален)
		{QueueTriggerEvents, nil},

		// dlq.executions — сама DLQ очередь
		{QueueDLQExecutions, nil},
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			string(q.name), // name
			true,           // durable
			false,          // delete when unused
			false,          // exclusive
			false,          // no-wait
			q.args,         // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}

	return nil
}

// bindQueues привязывает очереди к обменникам.
func bindQueues(ch *amqp.Channel) error {
	bindings := []struct {
		queue      Queue
		routingKey RoutingKey
		exchange   Exchange
	}{
		{QueueExecutionsRequested, RoutingKeyRequested, ExchangeExecutions},
		{QueueExecutionsFinished, RoutingKeyFinished, ExchangeExecutions},
		{QueueTriggerEvents, RoutingKeyAllEvents, ExchangeEvents},
		{QueueDLQExecutions, RoutingKeyDLQExecutions, ExchangeDLQ},
	}

	for _, b := range bindings {
		err := ch.QueueBind(
			string(b.queue),      // queue name
			string(b.routingKey), // routing key
			string(b.exchange),   // exchange
			false,                // no-wait
			nil,                  // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}

	return nil
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  GeoFlow RabbitMQ Topology:

    geoflow.executions (direct)
    ├── executions.requested [routing: requested]
    │       Consumer: Engine
    │       DLQ: dlq.executions
    └── executions.finished [routing: finished]
            Consumer: platform services

    geoflow.events (topic)
    └── events.triggers [routing: #]
            Consumer: Scheduler (EVENT triggers)

    geoflow.dlq (direct)
    └── dlq.executions [routing: executions]
            Manual processing
  `
}
