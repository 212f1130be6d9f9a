package mq

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// 交换机与队列名集中定义，生产者和消费者共用
const (
	DelayedExchange = "studygate.delayed"

	TicketExpiryQueue      = "studygate.ticket.expiry"
	TicketExpiryRoutingKey = "ticket.expiry"

	EscalationRetryQueue      = "studygate.escalation.retry"
	EscalationRetryRoutingKey = "escalation.retry"
)

// declareTopology 声明交换机、队列和绑定
// 延迟交换机依赖 rabbitmq-delayed-message-exchange 插件
func declareTopology(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(
		DelayedExchange,
		"x-delayed-message",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		amqp.Table{
			"x-delayed-type": "direct",
		},
	)
	if err != nil {
		return err
	}

	queues := []struct {
		name       string
		routingKey string
	}{
		{TicketExpiryQueue, TicketExpiryRoutingKey},
		{EscalationRetryQueue, EscalationRetryRoutingKey},
	}

	for _, q := range queues {
		if _, err := ch.QueueDeclare(
			q.name,
			true,  // durable
			false, // auto-delete
			false, // exclusive
			false, // no-wait
			nil,
		); err != nil {
			return err
		}

		if err := ch.QueueBind(
			q.name,
			q.routingKey,
			DelayedExchange,
			false,
			nil,
		); err != nil {
			return err
		}
	}

	return nil
}
