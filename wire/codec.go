// Package wire defines the framing contract between server and browser: each
// StreamChunk is serialized as one JSON object followed by a newline, written
// to a plain octet stream.
package wire

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/aiweb-chat/aiweb/models"
)

// Headers for the streaming response.
const (
	ContentType  = "text/plain; charset=utf-8"
	CacheControl = "no-cache"
	Connection   = "keep-alive"
)

// Encoder writes StreamChunk frames to an octet stream.
type Encoder struct {
	w io.Writer
}

// NewEncoder creates an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes one frame: the chunk as a JSON object plus a trailing newline.
func (e *Encoder) Encode(chunk models.StreamChunk) error {
	data, err := json.Marshal(chunk)
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(data, '\n'))
	return err
}

// Decoder reads StreamChunk frames from an octet stream the way the browser
// client does: buffer partial reads, split on newline, drop blank segments,
// and skip lines that fail to parse rather than aborting the whole stream.
type Decoder struct {
	scanner *bufio.Scanner
}

// NewDecoder creates a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Decoder{scanner: scanner}
}

// Next returns the next well-formed frame. Malformed and blank lines are
// skipped. Returns io.EOF when the stream is exhausted.
func (d *Decoder) Next() (models.StreamChunk, error) {
	for d.scanner.Scan() {
		line := strings.TrimSpace(d.scanner.Text())
		if line == "" {
			continue
		}
		var chunk models.StreamChunk
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			continue
		}
		return chunk, nil
	}
	if err := d.scanner.Err(); err != nil {
		return models.StreamChunk{}, err
	}
	return models.StreamChunk{}, io.EOF
}
