package ai

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shinyyama/localaid-backend/internal/reqctx"
	"google.golang.org/genai"
)

// PostClassifier turns a free-text draft into a post suggestion with Gemini.
type PostClassifier struct {
	apiKey string
	model  string
}

func NewPostClassifier(apiKey, model string) *PostClassifier {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &PostClassifier{apiKey: apiKey, model: model}
}

func (c *PostClassifier) Suggest(ctx context.Context, draft string) (*Suggestion, error) {
	rid := reqctx.RID(ctx)
	start := time.Now()
	var cc *genai.ClientConfig
	if c.apiKey != "" {
		cc = &genai.ClientConfig{APIKey: c.apiKey, Backend: genai.BackendGeminiAPI}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		log.Printf("[suggest] rid=%s stage=client_init err=%v", rid, err)
		return nil, err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(BuildSuggestPrompt()),
			genai.NewPartFromText("Draft:\n" + draft),
		}, genai.RoleUser),
	}
	temp := float32(0)
	config := &genai.GenerateContentConfig{Temperature: &temp}

	log.Printf("[suggest] rid=%s stage=gemini_start model=%s len=%d", rid, c.model, len(draft))
	res, err := client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		log.Printf("[suggest] rid=%s stage=gemini_fail model=%s err=%v", rid, c.model, err)
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	rawText := res.Text()
	s, err := ParseSuggestion(rawText)
	if err != nil {
		log.Printf("[suggest] rid=%s stage=parse_fail text=%q err=%v", rid, truncate(strings.ReplaceAll(rawText, "\n", " "), 80), err)
		return nil, err
	}
	log.Printf("[suggest] rid=%s stage=done type=%s category=%s totalMs=%d", rid, s.Kind, s.Category, time.Since(start).Milliseconds())
	return s, nil
}
