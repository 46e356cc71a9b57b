package realtime

import (
	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/log"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/Wakar473/Timechamp/apps/redis"
	"github.com/Wakar473/Timechamp/apps/sessions"
)

var (
	presence       Presence
	emitter        *Emitter
	sessionService *sessions.Service
)

type App struct{}

func (a App) Register() error {
	emitter = NewEmitter(natsPublisher{})
	return nil
}

func (a App) Router() error {
	var controller Controller

	evo.Get("/api/realtime/online", controller.GetOnlineUsers)

	app := evo.GetFiber()

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws", websocket.New(HandleWebSocket))

	return nil
}

func (a App) WhenReady() error {
	sessionService = sessions.GetService()

	if redis.Client != nil {
		presence = NewRedisPresence(redis.Client)
		log.Info("Presence tracking backed by Redis")
	} else {
		presence = NewMemoryPresence()
		log.Warning("Redis unavailable, presence tracking is in-memory only")
	}

	return nil
}

func (a App) Name() string {
	return "realtime"
}

// GetEmitter exposes the event emitter to the evaluator and scheduler apps
func GetEmitter() *Emitter {
	return emitter
}
