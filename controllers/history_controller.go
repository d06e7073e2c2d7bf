package controllers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aiweb-chat/aiweb/stores"
)

// HistoryController serves conversation history queries.
type HistoryController struct {
	Store stores.ChatStore
}

func NewHistoryController(store stores.ChatStore) *HistoryController {
	return &HistoryController{Store: store}
}

// ListConversations handles GET /chat/history?limit=&offset=.
func (ctl *HistoryController) ListConversations(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	conversations, err := ctl.Store.GetConversations(limit, offset)
	if err != nil {
		log.Printf("Error listing conversations: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "failed to list conversations",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    conversations,
		"pagination": gin.H{
			"limit":  limit,
			"offset": offset,
			"total":  len(conversations),
		},
	})
}

// GetConversation handles POST /chat/history with {conversationId}.
func (ctl *HistoryController) GetConversation(c *gin.Context) {
	var body struct {
		ConversationID string `json:"conversationId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.ConversationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "conversationId is required",
		})
		return
	}

	conversation, err := ctl.Store.GetConversation(body.ConversationID)
	if err != nil {
		log.Printf("Error fetching conversation %s: %v", body.ConversationID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "failed to fetch conversation",
			"error":   err.Error(),
		})
		return
	}

	messages, err := ctl.Store.GetMessages(body.ConversationID)
	if err != nil {
		log.Printf("Error fetching messages for %s: %v", body.ConversationID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "failed to fetch messages",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"conversation": conversation,
			"messages":     messages,
		},
	})
}

// DeleteConversation handles DELETE /chat/history?id=.
func (ctl *HistoryController) DeleteConversation(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "conversation id is required",
		})
		return
	}

	if err := ctl.Store.DeleteConversation(id); err != nil {
		log.Printf("Error deleting conversation %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "failed to delete conversation",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "conversation deleted",
	})
}
