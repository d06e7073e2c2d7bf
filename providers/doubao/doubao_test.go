package doubao

import (
	"testing"
)

func TestEffectiveMaxTokens(t *testing.T) {
	intp := func(n int) *int { return &n }

	tests := []struct {
		name      string
		requested *int
		want      int
	}{
		{"absent defaults to ceiling", nil, 8192},
		{"in range passes through", intp(512), 512},
		{"zero clamps to one", intp(0), 1},
		{"negative clamps to one", intp(-5), 1},
		{"over ceiling clamps down", intp(100000), 8192},
	}
	for _, tt := range tests {
		if got := effectiveMaxTokens(tt.requested); got != tt.want {
			t.Errorf("%s: effectiveMaxTokens = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestBuildMessageContent(t *testing.T) {
	t.Run("plain text stays a string", func(t *testing.T) {
		content := buildMessageContent("describe the weather")
		if _, ok := content.(string); !ok {
			t.Fatalf("content type %T, want string", content)
		}
	})

	t.Run("image url becomes part list", func(t *testing.T) {
		content := buildMessageContent("https://example.com/cat.png")
		parts, ok := content.([]ContentPart)
		if !ok {
			t.Fatalf("content type %T, want []ContentPart", content)
		}
		if len(parts) != 2 {
			t.Fatalf("got %d parts, want 2", len(parts))
		}
		if parts[0].Type != "image_url" || parts[0].ImageURL == nil || parts[0].ImageURL.URL != "https://example.com/cat.png" {
			t.Errorf("image part = %+v", parts[0])
		}
		if parts[1].Type != "text" || parts[1].Text == "" {
			t.Errorf("text part = %+v", parts[1])
		}
	})
}
