// Package record taps a chunk stream on its way to the client and persists
// the completed exchange once the final frame passes through.
package record

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/aiweb-chat/aiweb/models"
	"github.com/aiweb-chat/aiweb/stores"
)

// Recorder is a pass-through io.Writer. Bytes go to the client unchanged; a
// copy is line-buffered so frames split across writes are reassembled. The
// done frame's response is captured and persisted asynchronously on Close.
// Persistence failures are logged, never surfaced to the client.
type Recorder struct {
	w       io.Writer
	flusher http.Flusher
	logger  *stores.ChatLogger
	request models.ChatRequest

	mu     sync.Mutex
	buf    bytes.Buffer
	final  *models.ChatResponse
	closed bool
	done   chan struct{}
}

// NewRecorder wraps w. If w also implements http.Flusher, each write is
// flushed so chunks reach the client immediately.
func NewRecorder(w io.Writer, logger *stores.ChatLogger, request models.ChatRequest) *Recorder {
	r := &Recorder{
		w:       w,
		logger:  logger,
		request: request,
		done:    make(chan struct{}),
	}
	if f, ok := w.(http.Flusher); ok {
		r.flusher = f
	}
	return r
}

// Write forwards p to the client, then feeds the copy to the frame scanner.
func (r *Recorder) Write(p []byte) (int, error) {
	n, err := r.w.Write(p)
	if r.flusher != nil {
		r.flusher.Flush()
	}
	if n > 0 {
		r.scan(p[:n])
	}
	return n, err
}

// scan appends bytes to the line buffer and parses every completed frame.
func (r *Recorder) scan(p []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf.Write(p)
	for {
		line, err := r.buf.ReadBytes('\n')
		if err != nil {
			// Partial frame; keep it for the next write.
			r.buf.Write(line)
			return
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var chunk models.StreamChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			continue
		}
		if chunk.Done && chunk.Response != nil {
			r.final = chunk.Response
		}
	}
}

// Close persists the captured exchange in the background. Calling Close
// without a captured done frame records nothing, so aborted streams leave no
// partial history. Close is idempotent.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	final := r.final
	r.mu.Unlock()

	if final == nil || r.logger == nil {
		close(r.done)
		return
	}

	go func() {
		defer close(r.done)
		if _, err := r.logger.LogChatInteraction(r.request, *final); err != nil {
			log.Printf("Warning: failed to record chat interaction: %v", err)
		}
	}()
}

// Done is closed once Close finished, including any background persistence.
func (r *Recorder) Done() <-chan struct{} {
	return r.done
}
