package models

import "strings"

// InputKind classifies how a message should be shaped in a vendor payload.
type InputKind int

const (
	InputText InputKind = iota
	InputImageURL
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif"}

// ClassifyInput decides whether a message is plain text or an image URL that
// multimodal providers should wrap in an image_url content part. The heuristic
// is an http scheme plus a known image extension anywhere in the string.
func ClassifyInput(message string) InputKind {
	if !strings.Contains(message, "http") {
		return InputText
	}
	lower := strings.ToLower(message)
	for _, ext := range imageExtensions {
		if strings.Contains(lower, ext) {
			return InputImageURL
		}
	}
	return InputText
}
