package ai

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

var (
	kindPattern    = regexp.MustCompile(`\$(request|offer)\$`)
	fieldPattern   = regexp.MustCompile(`(?im)^[ \t]*(title|category)[ \t]*:[ \t]*(.+?)[ \t]*$`)
	ErrParseFailed = errors.New("parse_failed")
)

// Keyword fallbacks for answers that ignore the $kind$ envelope.
var (
	requestWords = []string{"request", "need", "looking for", "help me", "can someone", "anyone"}
	offerWords   = []string{"offer", "can lend", "giving away", "free to", "happy to help", "available"}
)

type Suggestion struct {
	Kind     string `json:"type"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

// ParsePostKind extracts request/offer. It first tries the strict $kind$ format,
// then counts keyword hits (e.g. "I need a ladder").
func ParsePostKind(text string) (string, error) {
	if m := kindPattern.FindStringSubmatch(strings.ToLower(text)); len(m) >= 2 {
		return m[1], nil
	}
	low := strings.ToLower(text)
	req := lo.CountBy(requestWords, func(w string) bool { return strings.Contains(low, w) })
	off := lo.CountBy(offerWords, func(w string) bool { return strings.Contains(low, w) })
	switch {
	case req > off:
		return "request", nil
	case off > req:
		return "offer", nil
	}
	return "", fmt.Errorf("%w: no post kind found", ErrParseFailed)
}

// ParseSuggestion reads the three-line answer. A missing title is tolerated;
// an unknown category becomes "other".
func ParseSuggestion(text string) (*Suggestion, error) {
	kind, err := ParsePostKind(text)
	if err != nil {
		return nil, err
	}
	s := &Suggestion{Kind: kind, Category: "other"}
	for _, m := range fieldPattern.FindAllStringSubmatch(text, -1) {
		switch strings.ToLower(m[1]) {
		case "title":
			s.Title = truncate(strings.Trim(m[2], `"'`), 60)
		case "category":
			if c := strings.ToLower(strings.TrimSpace(m[2])); lo.Contains(Categories, c) {
				s.Category = c
			}
		}
	}
	return s, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
