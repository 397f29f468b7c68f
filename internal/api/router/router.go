package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wb-go/wbf/ginext"

	"github.com/aliskhannn/crm-notifier/internal/api/handlers/chat"
	"github.com/aliskhannn/crm-notifier/internal/api/handlers/queue"
	"github.com/aliskhannn/crm-notifier/internal/api/handlers/reminder"
	"github.com/aliskhannn/crm-notifier/internal/api/handlers/ws"
	"github.com/aliskhannn/crm-notifier/internal/middlewares"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Queue    *queue.Handler
	Reminder *reminder.Handler
	Chat     *chat.Handler
	WS       *ws.Handler
}

func New(h Handlers, gatherer prometheus.Gatherer) *ginext.Engine {
	e := ginext.New()
	e.Use(middlewares.CORSMiddleware())
	e.Use(ginext.Logger())
	e.Use(ginext.Recovery())

	api := e.Group("/api")
	{
		queues := api.Group("/queues")
		queues.GET("", h.Queue.List)
		queues.POST("/:channel/jobs", h.Queue.Enqueue)

		api.POST("/reminders/scan", h.Reminder.Scan)

		rooms := api.Group("/chat/rooms")
		rooms.GET("", h.Chat.Rooms)
		rooms.GET("/:id/messages", h.Chat.Messages)
		rooms.POST("/:id/read", h.Chat.MarkRead)
	}

	e.GET("/ws", h.WS.Connect)
	e.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return e
}
