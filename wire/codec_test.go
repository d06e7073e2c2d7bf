package wire

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/aiweb-chat/aiweb/models"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	frames := []models.StreamChunk{
		{Chunk: "Hel", Done: false, Response: nil},
		{Chunk: "lo", Done: false, Response: nil},
		{Chunk: "", Done: true, Response: &models.ChatResponse{
			Message:        "Hello",
			ConversationID: "conv_1",
			Model:          "deepseek-chat",
			Provider:       "deepseek",
			Usage:          &models.Usage{PromptTokens: 5, CompletionTokens: 2, TotalTokens: 7},
		}},
	}
	for _, f := range frames {
		if err := enc.Encode(f); err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
	}

	dec := NewDecoder(&buf)
	var got []models.StreamChunk
	var full strings.Builder
	for {
		chunk, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		full.WriteString(chunk.Chunk)
		got = append(got, chunk)
	}

	if len(got) != 3 {
		t.Fatalf("Expected 3 frames, got %d", len(got))
	}
	final := got[2]
	if !final.Done {
		t.Error("Expected last frame to be done")
	}
	if final.Response == nil {
		t.Fatal("done=true frame must carry a response")
	}
	if final.Chunk != "" {
		t.Errorf("done=true frame must have empty chunk, got %q", final.Chunk)
	}
	for _, f := range got[:2] {
		if f.Response != nil {
			t.Error("done=false frame must carry a nil response")
		}
	}
	if full.String() != final.Response.Message {
		t.Errorf("Concatenated chunks %q != final message %q", full.String(), final.Response.Message)
	}
	if final.Response.Usage.TotalTokens != 7 {
		t.Errorf("Expected total_tokens 7, got %d", final.Response.Usage.TotalTokens)
	}
}

func TestEncodeDoneFrameSerializesNullResponseWhenStreaming(t *testing.T) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(models.StreamChunk{Chunk: "hi"}); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	line := buf.String()
	if !strings.Contains(line, `"response":null`) {
		t.Errorf("streaming frame should serialize response as null, got %s", line)
	}
	if !strings.HasSuffix(line, "\n") {
		t.Error("frame must end with a newline")
	}
}

func TestDecoderSkipsMalformedAndBlankLines(t *testing.T) {
	input := "\n" +
		"   \n" +
		"{not json}\n" +
		`{"chunk":"ok","done":false,"response":null}` + "\n" +
		": keep-alive comment\n" +
		`{"chunk":"","done":true,"response":{"message":"ok","conversationId":"c","model":"m"}}` + "\n"

	dec := NewDecoder(strings.NewReader(input))

	first, err := dec.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if first.Chunk != "ok" || first.Done {
		t.Errorf("Expected first good frame, got %+v", first)
	}

	second, err := dec.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if !second.Done || second.Response == nil {
		t.Errorf("Expected done frame, got %+v", second)
	}

	if _, err := dec.Next(); err != io.EOF {
		t.Errorf("Expected io.EOF after last frame, got %v", err)
	}
}

func TestDecoderHandlesFramesWithoutTrailingNewline(t *testing.T) {
	dec := NewDecoder(strings.NewReader(`{"chunk":"x","done":false,"response":null}`))
	chunk, err := dec.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if chunk.Chunk != "x" {
		t.Errorf("Expected chunk x, got %q", chunk.Chunk)
	}
}
