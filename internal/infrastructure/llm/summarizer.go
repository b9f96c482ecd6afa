package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"

	"rivalwatch/internal/config"
	"rivalwatch/internal/domain"
	"rivalwatch/internal/ports"
)

const systemPrompt = "Be concise and operator-focused."

var knownTags = []string{"Marketing", "Innovation", "New Business/Deals", "Regulatory/Policy", "Capital & Ops"}

// ModelSummarizer asks an OpenAI model for the digest-entry synthesis: summary,
// tags, severity and a 3-5 item action plan. Any malformed response surfaces as
// an error so the pipeline can fall back to the rule-based variant.
type ModelSummarizer struct {
	model     string
	profile   []byte
	responses responsesClient
}

type responsesClient interface {
	New(ctx context.Context, body responses.ResponseNewParams, opts ...option.RequestOption) (*responses.Response, error)
}

type responseServiceAdapter struct {
	service responses.ResponseService
}

func (a responseServiceAdapter) New(
	ctx context.Context,
	body responses.ResponseNewParams,
	opts ...option.RequestOption,
) (*responses.Response, error) {
	return a.service.New(ctx, body, opts...)
}

var _ ports.Summarizer = (*ModelSummarizer)(nil)

// New builds the model-backed summarizer from configuration. The profile bytes
// are embedded verbatim into every request.
func New(cfg config.LLMConfig, profile []byte) (*ModelSummarizer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("new model summarizer: api key is empty")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("new model summarizer: model is empty")
	}

	options := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		options = append(options, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(options...)

	return &ModelSummarizer{
		model:     cfg.Model,
		profile:   profile,
		responses: responseServiceAdapter{service: client.Responses},
	}, nil
}

// Summarize issues one request per competitor containing the operator profile
// and every item title/URL, and validates the structured result.
func (m *ModelSummarizer) Summarize(ctx context.Context, competitor string, items []domain.ClassifiedMention) (domain.Synthesis, error) {
	if m == nil || m.responses == nil {
		return domain.Synthesis{}, fmt.Errorf("model summarizer is not configured")
	}
	if len(items) == 0 {
		return domain.Synthesis{}, fmt.Errorf("summarize %s: no items", competitor)
	}

	input := responses.ResponseInputParam{
		responses.ResponseInputItemParamOfMessage(systemPrompt, responses.EasyInputMessageRoleSystem),
		responses.ResponseInputItemParamOfMessage(m.buildPrompt(competitor, items), responses.EasyInputMessageRoleUser),
	}

	params := responses.ResponseNewParams{
		Model: strings.TrimSpace(m.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: input,
		},
		Temperature: openai.Float(0.2),
	}

	resp, err := m.responses.New(ctx, params)
	if err != nil {
		return domain.Synthesis{}, fmt.Errorf("summarize %s: %w", competitor, err)
	}

	synthesis, err := parseSynthesis(resp.OutputText())
	if err != nil {
		return domain.Synthesis{}, fmt.Errorf("summarize %s: %w", competitor, err)
	}
	return synthesis, nil
}

func (m *ModelSummarizer) buildPrompt(competitor string, items []domain.ClassifiedMention) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a strategy analyst tracking competitor %s.\n", competitor)
	fmt.Fprintf(&b, "Profile:%s\n\n", string(m.profile))
	fmt.Fprintf(&b, "From these items, produce JSON with fields: summary (3-6 sentences, only bottom-line implications), ")
	fmt.Fprintf(&b, "tags (array: %s), impact (High/Medium/Low), ", strings.Join(knownTags, ", "))
	fmt.Fprintf(&b, "and action_plan (3-5 concise, concrete counter-moves with title, owner, eta, effort, impact).\n\nItems:\n")
	for i, item := range items {
		fmt.Fprintf(&b, "[%d] %s — %s\n", i+1, item.Title, item.URL)
	}
	return b.String()
}

// parseSynthesis decodes and validates the model output. Code fences around
// the JSON body are tolerated; anything else malformed is an error.
func parseSynthesis(text string) (domain.Synthesis, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var payload struct {
		Summary    string              `json:"summary"`
		Tags       []string            `json:"tags"`
		Impact     string              `json:"impact"`
		ActionPlan []domain.ActionItem `json:"action_plan"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return domain.Synthesis{}, fmt.Errorf("decode model output: %w", err)
	}

	if strings.TrimSpace(payload.Summary) == "" {
		return domain.Synthesis{}, fmt.Errorf("model output has empty summary")
	}
	if len(payload.ActionPlan) == 0 {
		return domain.Synthesis{}, fmt.Errorf("model output has empty action plan")
	}

	impact, ok := normalizeImpact(payload.Impact)
	if !ok {
		return domain.Synthesis{}, fmt.Errorf("model output has unknown impact %q", payload.Impact)
	}

	return domain.Synthesis{
		Summary:    payload.Summary,
		Tags:       payload.Tags,
		Impact:     impact,
		ActionPlan: payload.ActionPlan,
	}, nil
}

func normalizeImpact(value string) (domain.Impact, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "high":
		return domain.ImpactHigh, true
	case "medium":
		return domain.ImpactMedium, true
	case "low":
		return domain.ImpactLow, true
	default:
		return "", false
	}
}
