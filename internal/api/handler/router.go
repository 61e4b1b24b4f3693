package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter wires every route of the chat API onto a gin engine.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{h.Config.ClientOrigin},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Hello World! This is our chat application.")
	})
	r.GET("/ws", h.ProtectRoute(), h.ServeWebSocket)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.ProtectRoute(), h.Me)

		message := api.Group("/message", h.ProtectRoute())
		message.GET("/users", h.GetUsersForSidebar)
		message.GET("/:id", h.GetMessages)
		message.POST("/:id", h.SendMessage)
	}

	return r
}
