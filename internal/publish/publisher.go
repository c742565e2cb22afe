package publish

import (
	"FlowSight/internal/config"
	"FlowSight/internal/model"

	json "github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// Publisher mirrors canonical rows to a NATS subject so downstream consumers
// can follow the live observation stream without touching the durable store.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// NewPublisher connects to the configured NATS server.
func NewPublisher(cfg config.NATSConfig) (*Publisher, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Connected to NATS server at %s", cfg.URL)
	return &Publisher{nc: nc, subject: cfg.Subject}, nil
}

// Publish serializes one row as JSON and publishes it.
func (p *Publisher) Publish(row model.CanonicalRow) error {
	data, err := json.Marshal(row)
	if err != nil {
		return err
	}
	return p.nc.Publish(p.subject, data)
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		logrus.Println("NATS connection drained and closed.")
	}
}
