// Package vision adapts a hosted multimodal model into the analyzer
// ensemble. The hosted model is the primary signal when it responds; every
// failure mode degrades to a failed output so the local ensemble still
// produces a verdict.
package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ecotrace/verity/pkg/analysis"
)

const imageSystemPrompt = `You are a forensic image analyst. Determine whether the image is AI-generated or an authentic photograph/artwork.

Examine: anatomy (hands, teeth, eyes, ears), texture realism (skin, hair, fabric), lighting and shadow consistency, background coherence, text and signage rendering, reflections, compression characteristics, and watermarks of known generators.

Respond with ONLY a JSON object, no prose:
{"verdict": "synthetic" or "authentic", "confidence": 0.0-1.0, "reasons": ["up to 5 short snake_case reasons"], "structural_flags": ["specific visual observations"]}

confidence is the probability the content is AI-generated: 1.0 means certainly generated, 0.0 means certainly authentic.`

const textSystemPrompt = `You are a forensic text analyst. Determine whether the text is AI-generated or human-written.

Examine: phrase patterns typical of language models, rhythm and sentence variety, personal voice and specificity, hedging and boilerplate, vocabulary distribution.

Respond with ONLY a JSON object, no prose:
{"verdict": "synthetic" or "authentic", "confidence": 0.0-1.0, "reasons": ["up to 5 short snake_case reasons"], "structural_flags": ["specific textual observations"]}

confidence is the probability the content is AI-generated: 1.0 means certainly generated, 0.0 means certainly human.`

// Config configures the hosted vision analyzer.
type Config struct {
	APIKey string
	// Model defaults to gpt-4o.
	Model string
	// BaseURL overrides the API endpoint (proxies, compatible gateways).
	BaseURL string
	// HTTPClient overrides the transport; nil uses the library default.
	HTTPClient *http.Client
}

// Analyzer queries the hosted model. A zero API key builds a permanently
// failing analyzer so the rest of the ensemble carries the verdict.
type Analyzer struct {
	client *openai.Client
	model  string
}

// modelResponse is the strict JSON contract the prompts demand.
type modelResponse struct {
	Verdict         string   `json:"verdict"`
	Confidence      float64  `json:"confidence"`
	Reasons         []string `json:"reasons"`
	StructuralFlags []string `json:"structural_flags"`
}

// New builds the analyzer. Logs once when the hosted model is disabled.
func New(cfg Config) *Analyzer {
	if cfg.APIKey == "" {
		log.Printf("[WARN] No vision API key configured, hosted analysis disabled")
		return &Analyzer{}
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4o
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}
	return &Analyzer{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

func (a *Analyzer) ID() string          { return analysis.AnalyzerVision }
func (a *Analyzer) BaseWeight() float64 { return 0.55 }

func (a *Analyzer) Analyze(ctx context.Context, req *analysis.Request) analysis.AnalyzerOutput {
	if a.client == nil {
		return analysis.FailedOutput(a.ID(), a.BaseWeight(), "vision_api_not_configured")
	}

	var messages []openai.ChatCompletionMessage
	switch req.ContentType {
	case analysis.ContentImage:
		messages = imageMessages(req.Payload)
	default:
		messages = textMessages(req.Content)
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    messages,
		MaxTokens:   500,
		Temperature: 0,
	})
	if err != nil {
		log.Printf("[WARN] Vision model call failed: %v", err)
		return analysis.FailedOutput(a.ID(), a.BaseWeight(), "vision_api_error")
	}
	if len(resp.Choices) == 0 {
		return analysis.FailedOutput(a.ID(), a.BaseWeight(), "vision_empty_response")
	}

	parsed, err := parseModelResponse(resp.Choices[0].Message.Content)
	if err != nil {
		log.Printf("[WARN] Vision model returned unparseable output: %v", err)
		return analysis.FailedOutput(a.ID(), a.BaseWeight(), "vision_malformed_response")
	}

	return analysis.ModelOutput(a.ID(), a.BaseWeight(), parsed.syntheticLikelihood(),
		parsed.Reasons, parsed.StructuralFlags)
}

func imageMessages(payload []byte) []openai.ChatCompletionMessage {
	mime := http.DetectContentType(payload)
	dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(payload))
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: imageSystemPrompt},
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{
					Type: openai.ChatMessagePartTypeText,
					Text: "Analyze this image.",
				},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    dataURL,
						Detail: openai.ImageURLDetailHigh,
					},
				},
			},
		},
	}
}

func textMessages(content string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: textSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: "Analyze this text:\n\n" + content},
	}
}

// parseModelResponse extracts the JSON object, tolerating markdown fences
// and surrounding prose the model sometimes adds despite instructions.
func parseModelResponse(content string) (*modelResponse, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	if start := strings.Index(content, "{"); start > 0 {
		content = content[start:]
	}
	if end := strings.LastIndex(content, "}"); end >= 0 {
		content = content[:end+1]
	}

	var parsed modelResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}
	return &parsed, nil
}

// syntheticLikelihood clamps the reported confidence. The prompt defines
// confidence as the synthetic probability for both verdicts, so it passes
// through; an unrecognized verdict string scores zero.
func (r *modelResponse) syntheticLikelihood() float64 {
	conf := r.Confidence
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	if strings.EqualFold(r.Verdict, "synthetic") {
		return conf
	}
	if strings.EqualFold(r.Verdict, "authentic") {
		return conf
	}
	return 0
}
