package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ecotrace/verity/pkg/analysis"
)

func TestParseModelResponse(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantVerdict string
		wantConf    float64
		wantErr     bool
	}{
		{
			name:        "plain json",
			content:     `{"verdict": "synthetic", "confidence": 0.9, "reasons": ["warped_hands"]}`,
			wantVerdict: "synthetic",
			wantConf:    0.9,
		},
		{
			name:        "fenced json",
			content:     "```json\n{\"verdict\": \"authentic\", \"confidence\": 0.2}\n```",
			wantVerdict: "authentic",
			wantConf:    0.2,
		},
		{
			name:        "bare fence",
			content:     "```\n{\"verdict\": \"synthetic\", \"confidence\": 0.75}\n```",
			wantVerdict: "synthetic",
			wantConf:    0.75,
		},
		{
			name:        "leading prose",
			content:     `Here is my analysis: {"verdict": "synthetic", "confidence": 0.8} Hope that helps!`,
			wantVerdict: "synthetic",
			wantConf:    0.8,
		},
		{
			name:    "no json at all",
			content: "I cannot analyze this image.",
			wantErr: true,
		},
		{
			name:    "truncated json",
			content: `{"verdict": "synthetic", "confidence":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := parseModelResponse(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected parse error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseModelResponse: %v", err)
			}
			if parsed.Verdict != tt.wantVerdict {
				t.Errorf("verdict = %q, want %q", parsed.Verdict, tt.wantVerdict)
			}
			if parsed.Confidence != tt.wantConf {
				t.Errorf("confidence = %v, want %v", parsed.Confidence, tt.wantConf)
			}
		})
	}
}

func TestSyntheticLikelihood(t *testing.T) {
	tests := []struct {
		name string
		resp modelResponse
		want float64
	}{
		{"synthetic passes through", modelResponse{Verdict: "synthetic", Confidence: 0.85}, 0.85},
		{"authentic passes through", modelResponse{Verdict: "authentic", Confidence: 0.1}, 0.1},
		{"case insensitive", modelResponse{Verdict: "SYNTHETIC", Confidence: 0.6}, 0.6},
		{"clamped high", modelResponse{Verdict: "synthetic", Confidence: 1.7}, 1.0},
		{"clamped low", modelResponse{Verdict: "synthetic", Confidence: -0.2}, 0},
		{"unknown verdict", modelResponse{Verdict: "maybe", Confidence: 0.9}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resp.syntheticLikelihood(); got != tt.want {
				t.Errorf("syntheticLikelihood() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnalyzeWithoutAPIKey(t *testing.T) {
	a := New(Config{})

	out := a.Analyze(context.Background(), &analysis.Request{
		ContentType: analysis.ContentText,
		Content:     "anything",
	})
	if out.Succeeded {
		t.Error("unconfigured analyzer should fail")
	}
	if len(out.Reasons) == 0 || out.Reasons[0] != "vision_api_not_configured" {
		t.Errorf("reasons = %v, want vision_api_not_configured", out.Reasons)
	}
	if out.AnalyzerID != analysis.AnalyzerVision {
		t.Errorf("analyzer id = %q", out.AnalyzerID)
	}
}

// fakeCompletionServer serves the chat completions endpoint with a fixed
// message body.
func fakeCompletionServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": body}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAnalyzeAgainstFakeEndpoint(t *testing.T) {
	srv := fakeCompletionServer(t,
		`{"verdict": "synthetic", "confidence": 0.91, "reasons": ["warped_hands", "plastic_skin"], "structural_flags": ["six fingers on left hand"]}`)

	a := New(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1"})
	out := a.Analyze(context.Background(), &analysis.Request{
		ContentType: analysis.ContentText,
		Content:     "sample prose",
	})
	if !out.Succeeded {
		t.Fatalf("analysis failed: %v", out.Reasons)
	}
	if out.Verdict != analysis.VerdictSynthetic {
		t.Errorf("verdict = %q, want synthetic", out.Verdict)
	}
	if out.Confidence != 0.91 {
		t.Errorf("confidence = %v, want 0.91", out.Confidence)
	}
	if len(out.Reasons) != 2 || out.Reasons[0] != "warped_hands" {
		t.Errorf("reasons = %v", out.Reasons)
	}
	if len(out.StructuralFlags) != 1 {
		t.Errorf("flags = %v", out.StructuralFlags)
	}
}

func TestAnalyzeMalformedModelOutput(t *testing.T) {
	srv := fakeCompletionServer(t, "Sorry, I refuse to answer in JSON.")

	a := New(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1"})
	out := a.Analyze(context.Background(), &analysis.Request{
		ContentType: analysis.ContentText,
		Content:     "sample prose",
	})
	if out.Succeeded {
		t.Fatal("malformed model output should fail the analyzer")
	}
	if len(out.Reasons) == 0 || out.Reasons[0] != "vision_malformed_response" {
		t.Errorf("reasons = %v, want vision_malformed_response", out.Reasons)
	}
}
