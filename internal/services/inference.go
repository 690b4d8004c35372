package services

import (
	"context"
	"log"
	"time"
)

// InferenceErrorPrefix starts every failure text produced by the gateway.
const InferenceErrorPrefix = "Error in generating response: "

// InferenceOutcome is the gateway result. A failed call still carries text
// (the prefixed error message) so callers always have something to show.
type InferenceOutcome struct {
	Text   string
	Failed bool
}

type InferenceGateway interface {
	Infer(ctx context.Context, contextText string, image *ImagePayload, tmpl PromptTemplate) InferenceOutcome
}

type inferenceGateway struct {
	gemini  GeminiService
	timeout time.Duration
}

// NewInferenceGateway wraps gemini. A zero timeout leaves the call unbounded.
func NewInferenceGateway(gemini GeminiService, timeout time.Duration) InferenceGateway {
	return &inferenceGateway{gemini: gemini, timeout: timeout}
}

func (g *inferenceGateway) Infer(ctx context.Context, contextText string, image *ImagePayload, tmpl PromptTemplate) InferenceOutcome {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	text, err := g.gemini.GenerateFromImage(ctx, contextText, image, tmpl.Text)
	if err != nil {
		log.Printf("❌ Gemini %s analysis failed: %v\n", tmpl.Key, err)
		return InferenceOutcome{Text: InferenceErrorPrefix + err.Error(), Failed: true}
	}

	return InferenceOutcome{Text: text}
}
