package models

import "testing"

func TestClassifyInput_PlainText(t *testing.T) {
	if kind := ClassifyInput("hello, how are you?"); kind != InputText {
		t.Errorf("Expected InputText, got %v", kind)
	}
}

func TestClassifyInput_ImageURL(t *testing.T) {
	cases := []string{
		"https://example.com/cat.jpg",
		"http://example.com/photo.jpeg",
		"https://cdn.example.com/a/b/c.PNG",
		"https://example.com/anim.gif?size=large",
	}
	for _, msg := range cases {
		if kind := ClassifyInput(msg); kind != InputImageURL {
			t.Errorf("Expected InputImageURL for %q, got %v", msg, kind)
		}
	}
}

func TestClassifyInput_URLWithoutImageExtension(t *testing.T) {
	if kind := ClassifyInput("https://example.com/article"); kind != InputText {
		t.Errorf("Expected InputText for non-image URL, got %v", kind)
	}
}

func TestClassifyInput_ExtensionWithoutURL(t *testing.T) {
	// A bare filename is not treated as multimodal input.
	if kind := ClassifyInput("please open cat.jpg"); kind != InputText {
		t.Errorf("Expected InputText for bare filename, got %v", kind)
	}
}
