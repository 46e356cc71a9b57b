package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	subjects []string
	messages [][]byte
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.subjects = append(f.subjects, subject)
	f.messages = append(f.messages, data)
	return nil
}

func TestEmitToUser(t *testing.T) {
	pub := &fakePublisher{}
	emitter := NewEmitter(pub)
	userID := uuid.New()

	err := emitter.EmitToUser(userID, EventUserOnline, UserPresencePayload{
		UserID:    userID,
		Timestamp: time.Now(),
	})
	require.NoError(t, err)
	require.Equal(t, []string{"rt.user." + userID.String()}, pub.subjects)

	var envelope struct {
		Event   string              `json:"event"`
		Payload UserPresencePayload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(pub.messages[0], &envelope))
	require.Equal(t, EventUserOnline, envelope.Event)
	require.Equal(t, userID, envelope.Payload.UserID)
}

func TestEmitToOrganization(t *testing.T) {
	pub := &fakePublisher{}
	emitter := NewEmitter(pub)
	orgID := uuid.New()

	err := emitter.EmitToOrganization(orgID, EventUserOffline, UserPresencePayload{
		UserID:    uuid.New(),
		Timestamp: time.Now(),
	})
	require.NoError(t, err)
	require.Equal(t, []string{"rt.org." + orgID.String()}, pub.subjects)
}

func TestSubjectsAreScopedPerID(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	require.NotEqual(t, UserSubject(a), UserSubject(b))
	require.NotEqual(t, UserSubject(a), OrganizationSubject(a))
}

func TestMemoryPresence(t *testing.T) {
	presence := NewMemoryPresence()
	ctx := context.Background()

	require.NoError(t, presence.Add(ctx, "org-1", "user-a"))
	require.NoError(t, presence.Add(ctx, "org-1", "user-b"))
	require.NoError(t, presence.Add(ctx, "org-2", "user-c"))

	members, err := presence.Members(ctx, "org-1")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"user-a", "user-b"}, members)

	require.NoError(t, presence.Remove(ctx, "org-1", "user-a"))
	members, err = presence.Members(ctx, "org-1")
	require.NoError(t, err)
	require.Equal(t, []string{"user-b"}, members)

	members, err = presence.Members(ctx, "org-2")
	require.NoError(t, err)
	require.Equal(t, []string{"user-c"}, members)
}

func TestMemoryPresenceAddIsIdempotent(t *testing.T) {
	presence := NewMemoryPresence()
	ctx := context.Background()

	require.NoError(t, presence.Add(ctx, "org-1", "user-a"))
	require.NoError(t, presence.Add(ctx, "org-1", "user-a"))

	members, err := presence.Members(ctx, "org-1")
	require.NoError(t, err)
	require.Equal(t, []string{"user-a"}, members)
}

func TestMemoryPresenceConcurrentAccess(t *testing.T) {
	presence := NewMemoryPresence()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userID := uuid.New().String()
			require.NoError(t, presence.Add(ctx, "org-1", userID))
			_, err := presence.Members(ctx, "org-1")
			require.NoError(t, err)
		}(i)
	}
	wg.Wait()

	members, err := presence.Members(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, members, 20)
}
