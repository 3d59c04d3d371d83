// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация сообщений в очереди
//   - consumer.go   — потребление сообщений из очередей
//
// Типы сообщений:
//   - execution.requested — запрос на запуск workflow
//   - execution.finished  — execution достиг терминального статуса
//
// Exchanges:
//   - geoflow.executions — запросы и события executions
//   - geoflow.events     — события платформы (EVENT-триггеры)
//   - geoflow.dlq        — dead letter queue
package mq
