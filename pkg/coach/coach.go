// Package coach asks a language model for block tips and routine drafts.
package coach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/stefanpenner/tempo/pkg/routine"
)

// EnvAPIKey names the environment variable holding the Gemini API key.
const EnvAPIKey = "GEMINI_API_KEY"

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-flash-lite-latest"

// ErrNoAPIKey is returned when no API key is configured.
var ErrNoAPIKey = errors.New("coach: " + EnvAPIKey + " is not set")

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenAI is a Generator backed by the Gemini API.
type GenAI struct {
	client *genai.Client
	model  string
}

// NewGenAI creates a Gemini-backed generator. An empty apiKey falls back to
// $GEMINI_API_KEY.
func NewGenAI(ctx context.Context, apiKey, model string) (*GenAI, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvAPIKey)
	}
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAI{client: client, model: model}, nil
}

// Generate implements Generator.
func (g *GenAI) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("generate content: empty response")
	}
	return text, nil
}

// Coach builds prompts and interprets replies.
type Coach struct {
	gen Generator
}

// New creates a Coach over gen.
func New(gen Generator) *Coach {
	return &Coach{gen: gen}
}

// BlockTip asks for one short tip for b.
func (c *Coach) BlockTip(ctx context.Context, b routine.TimeBlock) (string, error) {
	location := b.Location
	if location == "" {
		location = "Not specified"
	}
	prompt := fmt.Sprintf("Act as a productivity coach. Review this routine block: %q at %s (Type: %s, Location: %s). "+
		"Suggest one specific tip to optimize this activity or improve well-being. Keep it short (max 20 words).",
		b.Activity, b.Start, b.Kind, location)

	tip, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.Trim(tip, "\"\n "), nil
}

type draftBlock struct {
	Time     string `json:"time"`
	Activity string `json:"activity"`
	Type     string `json:"type"`
}

// DraftRoutine asks for a schedule covering the rest of the day from now.
// Sacred blocks in the draft enforce the lock.
func (c *Coach) DraftRoutine(ctx context.Context, now time.Time) (routine.Routine, error) {
	from := routine.TimeOfDayOf(now)
	prompt := fmt.Sprintf("Create a JSON list of daily routine blocks starting from %s for the rest of the day. "+
		"Focus on productivity and balance. "+
		`Return ONLY a JSON array like: [{"time": "HH:MM", "activity": "Activity Name", "type": "work"|"break"|"sacred"|"personal"}]. `+
		"No markdown, no explanation.", from)

	reply, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		return routine.Routine{}, err
	}
	blocks, err := ParseDraft(reply)
	if err != nil {
		return routine.Routine{}, err
	}

	r := routine.Routine{
		ID:          fmt.Sprintf("draft-%d", now.Unix()),
		Name:        fmt.Sprintf("AI routine (%s)", from),
		Description: "Drafted for the rest of the day.",
		Blocks:      blocks,
	}
	return r, r.Validate()
}

// ParseDraft decodes a JSON block array, tolerating markdown code fences
// around it.
func ParseDraft(reply string) ([]routine.TimeBlock, error) {
	clean := stripFences(reply)

	var raw []draftBlock
	if err := json.Unmarshal([]byte(clean), &raw); err != nil {
		return nil, fmt.Errorf("%w: draft is not a JSON block list: %v", routine.ErrInvalidScheduleData, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: draft has no blocks", routine.ErrInvalidScheduleData)
	}

	blocks := make([]routine.TimeBlock, 0, len(raw))
	for _, d := range raw {
		start, err := routine.ParseTimeOfDay(d.Time)
		if err != nil {
			return nil, err
		}
		kind, err := routine.ParseKind(strings.ToLower(strings.TrimSpace(d.Type)))
		if err != nil {
			return nil, err
		}
		b := routine.NewBlock(start, kind, strings.TrimSpace(d.Activity))
		b.EnforceLock = kind == routine.KindSacred
		blocks = append(blocks, b)
	}
	routine.SortBlocks(blocks)
	return blocks, nil
}

// stripFences removes markdown code fences the model wraps JSON in.
func stripFences(reply string) string {
	clean := strings.ReplaceAll(reply, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	return strings.TrimSpace(clean)
}
