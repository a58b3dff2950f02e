package nats

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

// Client тонкая обертка над подключением к Nats,
// чтобы остальному коду не тащить к себе клиентскую библиотеку целиком
type Client struct {
	conn *nats.Conn

	subs []*nats.Subscription
}

func New(url string) (*Client, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Publish(subject string, data []byte) error {
	return c.conn.Publish(subject, data)
}

func (c *Client) Subscribe(subject string, handler nats.MsgHandler) error {
	sub, err := c.conn.Subscribe(subject, handler)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	return nil
}

// Close отписывает всех подписчиков и обрывает соединение
func (c *Client) Close() error {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
	return nil
}
