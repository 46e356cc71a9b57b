package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/getevo/evo/v2/lib/log"
	"github.com/gofiber/contrib/websocket"
	natsclient "github.com/nats-io/nats.go"

	"github.com/Wakar473/Timechamp/apps/nats"
	"github.com/Wakar473/Timechamp/lib/identity"
)

// wsConn serializes writes to one WebSocket connection
type wsConn struct {
	conn  *websocket.Conn
	mutex sync.Mutex
}

func (c *wsConn) write(data []byte) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) writeEvent(event string, payload any) error {
	data, err := json.Marshal(Envelope{Event: event, Payload: payload})
	if err != nil {
		return err
	}
	return c.write(data)
}

// HandleWebSocket serves one client connection: authenticate the bearer
// credential, register presence, subscribe to the user and organization
// channels, announce USER_ONLINE and push the active-session snapshot, then
// pump broker messages to the socket until the client goes away.
func HandleWebSocket(c *websocket.Conn) {
	token := c.Query("token")
	if token == "" {
		token = identity.StripBearer(c.Headers("Authorization"))
	}

	caller, err := identity.ParseToken(token)
	if err != nil {
		log.Warning("WebSocket authentication failed: %v", err)
		c.Close()
		return
	}

	ctx := context.Background()
	ws := &wsConn{conn: c}
	userID := caller.UserID.String()
	orgID := caller.OrganizationID.String()

	// Subscribe before announcing presence so no event is missed
	userSub, err := nats.Subscribe(UserSubject(caller.UserID), func(msg *natsclient.Msg) {
		if err := ws.write(msg.Data); err != nil {
			log.Error("Error forwarding user event to WebSocket: %v", err)
		}
	})
	if err != nil {
		log.Error("Failed to subscribe to user channel: %v", err)
		c.Close()
		return
	}
	defer userSub.Unsubscribe()

	orgSub, err := nats.Subscribe(OrganizationSubject(caller.OrganizationID), func(msg *natsclient.Msg) {
		if err := ws.write(msg.Data); err != nil {
			log.Error("Error forwarding organization event to WebSocket: %v", err)
		}
	})
	if err != nil {
		log.Error("Failed to subscribe to organization channel: %v", err)
		c.Close()
		return
	}
	defer orgSub.Unsubscribe()

	if err := presence.Add(ctx, orgID, userID); err != nil {
		log.Warning("Failed to register presence for user %s: %v", userID, err)
	}

	if err := emitter.EmitToOrganization(caller.OrganizationID, EventUserOnline, UserPresencePayload{
		UserID:    caller.UserID,
		Timestamp: time.Now(),
	}); err != nil {
		log.Warning("Failed to broadcast USER_ONLINE: %v", err)
	}

	// New connections get a snapshot of the user's active session, if any
	if session, err := sessionService.ActiveForUser(ctx, caller.UserID); err != nil {
		log.Warning("Failed to load active session for user %s: %v", userID, err)
	} else if session != nil {
		if err := ws.writeEvent(EventSessionUpdate, SessionUpdatePayload{Session: session}); err != nil {
			log.Error("Failed to push session snapshot: %v", err)
		}
	}

	log.Info("WebSocket connected: user=%s organization=%s", userID, orgID)

	defer func() {
		if err := presence.Remove(ctx, orgID, userID); err != nil {
			log.Warning("Failed to remove presence for user %s: %v", userID, err)
		}
		if err := emitter.EmitToOrganization(caller.OrganizationID, EventUserOffline, UserPresencePayload{
			UserID:    caller.UserID,
			Timestamp: time.Now(),
		}); err != nil {
			log.Warning("Failed to broadcast USER_OFFLINE: %v", err)
		}
		log.Info("WebSocket disconnected: user=%s", userID)
	}()

	// Clients do not send messages over this socket, the read loop only
	// detects disconnects
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error("WebSocket error: %v", err)
			}
			break
		}
	}
}
