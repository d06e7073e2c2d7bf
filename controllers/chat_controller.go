package controllers

import (
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/aiweb-chat/aiweb/models"
	"github.com/aiweb-chat/aiweb/providers"
	"github.com/aiweb-chat/aiweb/record"
	"github.com/aiweb-chat/aiweb/stores"
	"github.com/aiweb-chat/aiweb/wire"
)

// ChatController serves the chat endpoints over an injected logger, so tests
// can run it against a throwaway store.
type ChatController struct {
	Logger *stores.ChatLogger
}

func NewChatController(logger *stores.ChatLogger) *ChatController {
	return &ChatController{Logger: logger}
}

// HandleChat is the non-streaming endpoint. It drains the same provider
// stream the streaming endpoint uses and replies with the final response.
func (ctl *ChatController) HandleChat(c *gin.Context) {
	var request models.ChatRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		log.Printf("Error binding chat request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	provider := providers.GetStreamProvider(request.ProviderOrDefault("kimi"))
	response, err := providers.Collect(c.Request.Context(), provider, request)
	if err != nil {
		log.Printf("Error generating response: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if ctl.Logger != nil {
		if _, err := ctl.Logger.LogChatInteraction(request, *response); err != nil {
			log.Printf("Warning: failed to record chat interaction: %v", err)
		}
	}

	c.JSON(http.StatusOK, response)
}

// HandleChatStream streams newline-delimited StreamChunk frames. The first
// provider event decides the status code: an error before any chunk becomes a
// JSON 500, anything else starts a 200 octet stream.
func (ctl *ChatController) HandleChatStream(c *gin.Context) {
	var request models.ChatRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		log.Printf("Error binding chat request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	ctx := c.Request.Context()
	provider := providers.GetStreamProvider(request.ProviderOrDefault("kimi"))
	chunkChan, errChan := provider.GenerateStreamResponse(ctx, request)

	var first models.StreamChunk
	var firstOK bool
	select {
	case first, firstOK = <-chunkChan:
		if !firstOK {
			// Stream closed before producing anything; surface the error.
			if err := <-errChan; err != nil {
				log.Printf("Error setting up stream: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "provider produced no output"})
			return
		}
	case err := <-errChan:
		if err != nil {
			log.Printf("Error setting up stream: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		// A closed error channel with no error; fall through to the chunks.
		first, firstOK = <-chunkChan
		if !firstOK {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "provider produced no output"})
			return
		}
	case <-ctx.Done():
		return
	}

	c.Header("Content-Type", wire.ContentType)
	c.Header("Cache-Control", wire.CacheControl)
	c.Header("Connection", wire.Connection)
	c.Status(http.StatusOK)

	recorder := record.NewRecorder(c.Writer, ctl.Logger, request)
	encoder := wire.NewEncoder(recorder)

	if err := encoder.Encode(first); err != nil {
		log.Printf("Error writing stream chunk: %v", err)
		return
	}
	if first.Done {
		recorder.Close()
		return
	}

	for {
		select {
		case chunk, ok := <-chunkChan:
			if !ok {
				// Truncated stream: nothing was captured, so nothing persists.
				recorder.Close()
				return
			}
			if err := encoder.Encode(chunk); err != nil {
				log.Printf("Error writing stream chunk: %v", err)
				return
			}
			if chunk.Done {
				recorder.Close()
				return
			}
		case err := <-errChan:
			if err != nil {
				log.Printf("Error mid-stream: %v", err)
				recorder.Close()
				return
			}
			errChan = nil
		case <-ctx.Done():
			// Client went away; drop the exchange without persisting.
			return
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleChatWS serves one exchange over a websocket: a ChatRequest in, a
// StreamChunk per message out.
func (ctl *ChatController) HandleChatWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Error upgrading websocket: %v", err)
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	writeJSON := func(v interface{}) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(v)
	}

	var request models.ChatRequest
	if err := conn.ReadJSON(&request); err != nil {
		writeJSON(gin.H{"error": "invalid chat request"})
		return
	}
	if request.Message == "" {
		writeJSON(gin.H{"error": "message is required"})
		return
	}

	ctx := c.Request.Context()
	provider := providers.GetStreamProvider(request.ProviderOrDefault("kimi"))
	chunkChan, errChan := provider.GenerateStreamResponse(ctx, request)

	for {
		select {
		case chunk, ok := <-chunkChan:
			if !ok {
				return
			}
			if err := writeJSON(chunk); err != nil {
				log.Printf("Error writing websocket message: %v", err)
				return
			}
			if chunk.Done {
				if ctl.Logger != nil && chunk.Response != nil {
					if _, err := ctl.Logger.LogChatInteraction(request, *chunk.Response); err != nil {
						log.Printf("Warning: failed to record chat interaction: %v", err)
					}
				}
				return
			}
		case err := <-errChan:
			if err != nil {
				log.Printf("Error in websocket stream: %v", err)
				writeJSON(gin.H{"error": err.Error()})
				return
			}
			errChan = nil
		case <-ctx.Done():
			return
		}
	}
}
