package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-3-flash-preview"
	DefaultTimeout = 30 * time.Second
)

// Image is a captured fundus photograph ready for analysis.
type Image struct {
	MIMEType string
	Data     []byte
}

// Request carries the images for one bilateral analysis call. Either side
// may be nil, but not both.
type Request struct {
	Left  *Image
	Right *Image
}

// Result holds the per-eye findings for the sides that were supplied.
// Sides without an input image are nil, never fabricated.
type Result struct {
	Left  *EyeAnalysis
	Right *EyeAnalysis
}

// Config configures the gateway.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Gateway submits fundus images to the hosted model and parses the reply.
// A circuit breaker on the transport fails fast when the model API is down;
// individual calls are never retried.
type Gateway struct {
	cfg     Config
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	log     zerolog.Logger
}

func NewGateway(cfg Config, log zerolog.Logger) *Gateway {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "model-api",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Gateway{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		log:     log,
	}
}

// -- Wire types for the generateContent REST API --

type generateRequest struct {
	Contents         []wireContent     `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type wireContent struct {
	Parts []wirePart `json:"parts"`
}

type wirePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMIMEType string      `json:"responseMimeType,omitempty"`
	ResponseSchema   *wireSchema `json:"responseSchema,omitempty"`
}

type wireSchema struct {
	Type       string                 `json:"type"`
	Properties map[string]*wireSchema `json:"properties,omitempty"`
	Required   []string               `json:"required,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type bilateralReply struct {
	LeftEye  *EyeAnalysis `json:"leftEye"`
	RightEye *EyeAnalysis `json:"rightEye"`
}

// Analyze runs one bilateral analysis call. The required keys of the declared
// response schema match exactly the sides supplied: a single-image call never
// elicits a diagnosis for the missing eye.
func (g *Gateway) Analyze(ctx context.Context, req Request) (*Result, error) {
	if req.Left == nil && req.Right == nil {
		return nil, ErrNoImages
	}

	body, err := json.Marshal(g.buildRequest(req))
	if err != nil {
		return nil, failure(ReasonMalformed, fmt.Errorf("encode request: %w", err))
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.cfg.BaseURL, g.cfg.Model)

	start := time.Now()
	raw, err := g.breaker.Execute(func() ([]byte, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("x-goog-api-key", g.cfg.APIKey)

		resp, err := g.client.Do(httpReq)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("model API returned status %d", resp.StatusCode)
		}
		return raw, nil
	})
	if err != nil {
		g.log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("model call failed")
		return nil, failure(ReasonTransport, err)
	}

	result, err := g.parseReply(raw, req)
	if err != nil {
		return nil, err
	}

	g.log.Info().
		Dur("elapsed", time.Since(start)).
		Bool("left", result.Left != nil).
		Bool("right", result.Right != nil).
		Msg("analysis completed")
	return result, nil
}

func (g *Gateway) buildRequest(req Request) generateRequest {
	var parts []wirePart
	var sides []string

	if req.Left != nil {
		parts = append(parts,
			wirePart{Text: "LEFT EYE"},
			wirePart{InlineData: &inlineData{
				MIMEType: req.Left.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(req.Left.Data),
			}})
		sides = append(sides, "leftEye")
	}
	if req.Right != nil {
		parts = append(parts,
			wirePart{Text: "RIGHT EYE"},
			wirePart{InlineData: &inlineData{
				MIMEType: req.Right.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(req.Right.Data),
			}})
		sides = append(sides, "rightEye")
	}
	parts = append(parts, wirePart{Text: instructionText(sides)})

	return generateRequest{
		Contents: []wireContent{{Parts: parts}},
		GenerationConfig: &generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   responseSchema(sides),
		},
	}
}

func instructionText(sides []string) string {
	var diseases []string
	for _, d := range Diseases() {
		diseases = append(diseases, string(d))
	}
	var severities []string
	for _, s := range Severities() {
		severities = append(severities, string(s))
	}

	var b strings.Builder
	b.WriteString("You are an expert retinal ophthalmologist AI. Analyze each labeled fundus image.\n")
	b.WriteString("Respond with a JSON object containing ")
	b.WriteString(strings.Join(sides, " and "))
	b.WriteString(", one key per supplied image and no other keys.\n")
	b.WriteString("Each value must contain exactly these fields:\n")
	b.WriteString(`- disease: one of ["` + strings.Join(diseases, `", "`) + `"]` + "\n")
	b.WriteString(`- severity: one of ["` + strings.Join(severities, `", "`) + `"]` + "\n")
	b.WriteString("- riskScore: number between 0-100\n")
	b.WriteString("- confidenceScore: number between 0-100\n")
	b.WriteString("- abnormalities: string describing findings")
	return b.String()
}

func responseSchema(sides []string) *wireSchema {
	eye := &wireSchema{
		Type: "OBJECT",
		Properties: map[string]*wireSchema{
			"disease":         {Type: "STRING"},
			"severity":        {Type: "STRING"},
			"riskScore":       {Type: "NUMBER"},
			"confidenceScore": {Type: "NUMBER"},
			"abnormalities":   {Type: "STRING"},
		},
		Required: []string{"disease", "severity", "riskScore", "confidenceScore", "abnormalities"},
	}

	props := make(map[string]*wireSchema, len(sides))
	for _, side := range sides {
		props[side] = eye
	}
	return &wireSchema{Type: "OBJECT", Properties: props, Required: sides}
}

func (g *Gateway) parseReply(raw []byte, req Request) (*Result, error) {
	var reply generateResponse
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, failure(ReasonMalformed, fmt.Errorf("decode response envelope: %w", err))
	}
	if len(reply.Candidates) == 0 || len(reply.Candidates[0].Content.Parts) == 0 {
		return nil, failure(ReasonMalformed, fmt.Errorf("response has no candidates"))
	}

	var text strings.Builder
	for _, p := range reply.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}

	var bilateral bilateralReply
	if err := json.Unmarshal([]byte(text.String()), &bilateral); err != nil {
		return nil, failure(ReasonMalformed, fmt.Errorf("decode analysis JSON: %w", err))
	}

	result := &Result{}
	if req.Left != nil {
		if bilateral.LeftEye == nil {
			return nil, failure(ReasonSchema, fmt.Errorf("leftEye missing from reply"))
		}
		if err := bilateral.LeftEye.Validate(); err != nil {
			return nil, failure(ReasonSchema, fmt.Errorf("leftEye: %w", err))
		}
		result.Left = bilateral.LeftEye
	} else if bilateral.LeftEye != nil {
		g.log.Warn().Msg("model returned leftEye for a call without a left image; dropped")
	}

	if req.Right != nil {
		if bilateral.RightEye == nil {
			return nil, failure(ReasonSchema, fmt.Errorf("rightEye missing from reply"))
		}
		if err := bilateral.RightEye.Validate(); err != nil {
			return nil, failure(ReasonSchema, fmt.Errorf("rightEye: %w", err))
		}
		result.Right = bilateral.RightEye
	} else if bilateral.RightEye != nil {
		g.log.Warn().Msg("model returned rightEye for a call without a right image; dropped")
	}

	return result, nil
}
