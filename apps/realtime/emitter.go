package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/Wakar473/Timechamp/apps/nats"
)

// Publisher abstracts the pub/sub broker so the emitter can be exercised with
// an in-memory fake in tests.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// natsPublisher forwards to the shared NATS connection
type natsPublisher struct{}

func (natsPublisher) Publish(subject string, data []byte) error {
	return nats.Publish(subject, data)
}

// Emitter pushes events onto user- and organization-scoped channels. Every
// connected WebSocket subscribes to its own user and organization subjects,
// so one publish fans out to every live connection for that scope.
type Emitter struct {
	pub Publisher
}

func NewEmitter(pub Publisher) *Emitter {
	return &Emitter{pub: pub}
}

// EmitToUser delivers an event to every connection held by one user
func (e *Emitter) EmitToUser(userID uuid.UUID, event string, payload any) error {
	return e.publish(UserSubject(userID), event, payload)
}

// EmitToOrganization delivers an event to every connection in an organization
func (e *Emitter) EmitToOrganization(organizationID uuid.UUID, event string, payload any) error {
	return e.publish(OrganizationSubject(organizationID), event, payload)
}

func (e *Emitter) publish(subject, event string, payload any) error {
	data, err := json.Marshal(Envelope{Event: event, Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event, err)
	}
	return e.pub.Publish(subject, data)
}
