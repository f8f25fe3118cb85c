// Package events publishes booking lifecycle events to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_booking/internal/domain"
)

const BookingConfirmedQueue = "booking.confirmed"

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

const (
	dialTimeout = 3 * time.Second
	// redialAfter is how long a failed dial keeps callers from dialing again.
	redialAfter = 5 * time.Second
)

var errBrokerDown = errors.New("rabbitmq: broker unreachable, waiting before redial")

type dialFunc func(ctx context.Context, url string) (*amqp.Connection, channel, error)

// Publisher keeps one connection and channel open and redials after a failure.
// Callers never wait past their context, neither on a dial nor on each other.
type Publisher struct {
	url  string
	dial dialFunc
	now  func() time.Time

	sem        *semaphore.Weighted // guards the fields below
	conn       *amqp.Connection
	ch         channel
	nextDialAt time.Time
}

func NewPublisher(url string) *Publisher {
	return &Publisher{url: url, dial: dialChannel, now: time.Now, sem: semaphore.NewWeighted(1)}
}

func dialChannel(ctx context.Context, url string) (*amqp.Connection, channel, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial: func(network, addr string) (net.Conn, error) {
			d := net.Dialer{Timeout: dialTimeout}
			c, err := d.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			// bounds the AMQP handshake; the library clears it once open
			deadline := time.Now().Add(dialTimeout)
			if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
				deadline = dl
			}
			if err := c.SetDeadline(deadline); err != nil {
				_ = c.Close()
				return nil, err
			}
			return c, nil
		},
	})
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}

type dialResult struct {
	conn *amqp.Connection
	ch   channel
	err  error
}

func closeAll(conn *amqp.Connection, ch channel) {
	if ch != nil {
		_ = ch.Close()
	}
	if conn != nil {
		_ = conn.Close()
	}
}

// channel returns the open channel or dials a new one. The dial runs in its
// own goroutine so a dialer that ignores ctx cannot hold the caller; a result
// that arrives after the caller gave up is closed.
func (p *Publisher) channel(ctx context.Context) (channel, error) {
	if p.ch != nil {
		return p.ch, nil
	}
	if p.now().Before(p.nextDialAt) {
		return nil, errBrokerDown
	}

	done := make(chan dialResult, 1)
	go func() {
		conn, ch, err := p.dial(ctx, p.url)
		if err == nil {
			// durable so messages survive broker restarts
			if _, qerr := ch.QueueDeclare(BookingConfirmedQueue, true, false, false, false, nil); qerr != nil {
				closeAll(conn, ch)
				conn, ch, err = nil, nil, fmt.Errorf("queue declare: %w", qerr)
			}
		}
		done <- dialResult{conn: conn, ch: ch, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			p.nextDialAt = p.now().Add(redialAfter)
			return nil, fmt.Errorf("rabbitmq: dial: %w", res.err)
		}
		p.conn, p.ch = res.conn, res.ch
		return res.ch, nil
	case <-ctx.Done():
		p.nextDialAt = p.now().Add(redialAfter)
		go func() {
			if res := <-done; res.err == nil {
				closeAll(res.conn, res.ch)
			}
		}()
		return nil, fmt.Errorf("rabbitmq: dial: %w", ctx.Err())
	}
}

func (p *Publisher) reset() {
	closeAll(p.conn, p.ch)
	p.conn, p.ch = nil, nil
}

// BookingConfirmed publishes ev as a persistent JSON message on the default
// exchange, routed to the booking.confirmed queue.
func (p *Publisher) BookingConfirmed(ctx context.Context, ev domain.BookingConfirmed) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("rabbitmq: publisher busy: %w", err)
	}
	defer p.sem.Release(1)

	ch, err := p.channel(ctx)
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    ev.PaymentIntentID,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", BookingConfirmedQueue, false, false, msg); err != nil {
		p.reset()
		return fmt.Errorf("rabbitmq: publish: %w", err)
	}
	log.Debug().Str("hotel", ev.HotelID).Str("intent", ev.PaymentIntentID).Msg("booking.confirmed published")
	return nil
}

func (p *Publisher) Close() error {
	if err := p.sem.Acquire(context.Background(), 1); err != nil {
		return err
	}
	defer p.sem.Release(1)
	p.reset()
	return nil
}
