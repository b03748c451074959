// Package embed turns note text into fixed-length vectors.
//
// The provider is deliberately failure-tolerant: inference errors are never
// surfaced to callers. A failed embedding is reported as an absent vector
// (nil) and downstream consumers skip the note instead of scoring against
// noise.
package embed

import (
	"context"
	"regexp"
	"strings"
)

// Provider is a text-to-vector function. Embed returns nil for blank input
// and whenever the underlying model is unavailable; it never returns an
// error to the caller.
type Provider interface {
	Embed(ctx context.Context, text string) []float32
	Dimensions() int
}

var tagRe = regexp.MustCompile(`<[^>]*>`)

// DerivedText is the exact text embedded for a note: title plus the content
// with markup tags stripped.
func DerivedText(title, content string) string {
	return strings.TrimSpace(title + " " + tagRe.ReplaceAllString(content, ""))
}
