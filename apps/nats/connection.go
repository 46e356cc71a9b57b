package nats

import (
	"fmt"
	"sync"
	"time"

	"github.com/getevo/evo/v2/lib/log"
	"github.com/nats-io/nats.go"
)

var (
	// NC is the shared NATS connection used for event fan-out
	NC *nats.Conn
	// JS is the JetStream context, used for job lock key-value buckets
	JS nats.JetStreamContext
	mu sync.RWMutex
)

// Config holds NATS connection configuration
type Config struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	PingInterval   time.Duration
	MaxPingsOut    int
	AllowReconnect bool
	DrainTimeout   time.Duration
}

// Connect establishes a fault-tolerant connection to NATS
func Connect(config Config) error {
	var err error

	opts := []nats.Option{
		nats.Name("timechamp-engine"),
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.PingInterval(config.PingInterval),
		nats.MaxPingsOutstanding(config.MaxPingsOut),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Warning("NATS disconnected: %v", err)
			} else {
				log.Warning("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			if nc.LastError() != nil {
				log.Error("NATS connection closed: %v", nc.LastError())
			} else {
				log.Info("NATS connection closed")
			}
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			if sub != nil {
				log.Error("NATS error on subscription %s: %v", sub.Subject, err)
			} else {
				log.Error("NATS async error: %v", err)
			}
		}),
	}

	if !config.AllowReconnect {
		opts = append(opts, nats.NoReconnect())
	}

	mu.Lock()
	NC, err = nats.Connect(config.URL, opts...)
	mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", config.URL, err)
	}

	log.Info("Connected to NATS at %s", NC.ConnectedUrl())

	mu.Lock()
	JS, err = NC.JetStream()
	mu.Unlock()

	if err != nil {
		log.Warning("JetStream not available: %v", err)
		log.Warning("Continuing without JetStream - job locking will be disabled")
	}

	return nil
}

// GetConnection returns the NATS connection
func GetConnection() *nats.Conn {
	mu.RLock()
	defer mu.RUnlock()
	return NC
}

// GetJetStream returns the JetStream context
func GetJetStream() nats.JetStreamContext {
	mu.RLock()
	defer mu.RUnlock()
	return JS
}

// IsConnected checks if NATS is connected
func IsConnected() bool {
	mu.RLock()
	defer mu.RUnlock()
	return NC != nil && NC.IsConnected()
}

// Close drains the connection so in-flight event deliveries finish, forcing
// a close when the drain exceeds the timeout.
func Close(drainTimeout time.Duration) error {
	mu.Lock()
	defer mu.Unlock()

	if NC == nil {
		return nil
	}

	if err := NC.Drain(); err != nil {
		log.Warning("Error draining NATS connection: %v", err)
		NC.Close()
		return err
	}

	deadline := time.Now().Add(drainTimeout)
	for !NC.IsClosed() {
		if time.Now().After(deadline) {
			log.Warning("Drain timeout exceeded, forcing close")
			NC.Close()
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	return nil
}

// Publish publishes a message to a subject
func Publish(subject string, data []byte) error {
	conn := GetConnection()
	if conn == nil || !conn.IsConnected() {
		return fmt.Errorf("NATS not connected")
	}
	return conn.Publish(subject, data)
}

// Subscribe creates a subscription to a subject
func Subscribe(subject string, handler nats.MsgHandler) (*nats.Subscription, error) {
	conn := GetConnection()
	if conn == nil || !conn.IsConnected() {
		return nil, fmt.Errorf("NATS not connected")
	}
	return conn.Subscribe(subject, handler)
}
