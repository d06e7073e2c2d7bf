package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/aiweb-chat/aiweb/controllers"
)

// SetupRouter wires the chat and history endpoints onto a gin engine.
func SetupRouter(chat *controllers.ChatController, history *controllers.HistoryController) *gin.Engine {
	r := gin.Default()

	r.Use(corsMiddleware())

	// Chat endpoints
	r.POST("/chat", chat.HandleChat)
	r.POST("/chat/stream", chat.HandleChatStream)
	r.GET("/chat/ws", chat.HandleChatWS)

	// Conversation history
	r.GET("/chat/history", history.ListConversations)
	r.POST("/chat/history", history.GetConversation)
	r.DELETE("/chat/history", history.DeleteConversation)

	return r
}

// corsMiddleware allows browser clients served from another origin to call
// the API.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
