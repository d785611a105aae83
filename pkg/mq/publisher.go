package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"plan-it/backend/config"
)

// Publisher 领域事件发布接口
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event interface{}) error
	Close() error
}

// NewPublisher 按配置创建发布器；未配置 URL 时返回 NopPublisher
func NewPublisher(cfg *config.MQConfig, logger *zap.Logger) (Publisher, error) {
	if cfg.URL == "" {
		return NopPublisher{}, nil
	}
	return NewRabbitPublisher(cfg.URL, cfg.Exchange, logger)
}

// RabbitPublisher 基于 RabbitMQ topic exchange 的发布器
// 连接长期持有，每次发布单独打开 channel
type RabbitPublisher struct {
	mu       sync.Mutex
	url      string
	exchange string
	conn     *amqp.Connection
	logger   *zap.Logger
}

// NewRabbitPublisher 建立连接并声明持久化 exchange
func NewRabbitPublisher(url, exchange string, logger *zap.Logger) (*RabbitPublisher, error) {
	p := &RabbitPublisher{url: url, exchange: exchange, logger: logger}
	if _, err := p.connection(); err != nil {
		return nil, err
	}
	return p, nil
}

// connection 返回可用连接，断开时重新拨号并声明 exchange
func (p *RabbitPublisher) connection() (*amqp.Connection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn, nil
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq 连接失败: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq 打开 channel 失败: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.ExchangeDeclare(
		p.exchange, // name
		"topic",    // kind
		true,       // durable
		false,      // autoDelete
		false,      // internal
		false,      // noWait
		nil,        // args
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq 声明 exchange 失败: %w", err)
	}

	p.conn = conn
	return conn, nil
}

// Publish 以 JSON 发布持久化消息
func (p *RabbitPublisher) Publish(ctx context.Context, routingKey string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	conn, err := p.connection()
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq 打开 channel 失败: %w", err)
	}
	defer func() { _ = ch.Close() }()

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq 发布失败: %w", err)
	}

	p.logger.Debug("事件已发布", zap.String("routing_key", routingKey))
	return nil
}

// Close 关闭连接
func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	return p.conn.Close()
}

// NopPublisher 未配置消息队列时使用
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (NopPublisher) Close() error                                      { return nil }
