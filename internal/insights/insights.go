package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"
	"google.golang.org/genai"

	"seoscope/internal/core"
)

const (
	// DefaultModel is the default Gemini model for qualitative analysis.
	DefaultModel = "gemini-flash-lite-latest"
	// ContentPreviewLimit bounds how much page content is sent to the
	// model, in characters.
	ContentPreviewLimit = 2000
	// DefaultTimeout bounds a single insight call.
	DefaultTimeout = 30 * time.Second
)

const insightPromptTemplate = `Analyze this website's SEO and provide specific recommendations:

URL: %s

Content Preview:
%s

Meta Data:
Title: %s
Description: %s
Keywords: %s

Provide current SEO strengths, specific areas needing improvement, suggested
keywords, content improvement suggestions, and technical SEO fixes.`

// Client generates qualitative SEO insights through the Gemini API.
type Client struct {
	modelName string
	timeout   time.Duration
	gClient   *genai.Client
}

// NewClient creates an insight client. The API key comes from the
// GEMINI_API_KEY environment variable or the gemini.api_key config key;
// the model from gemini.model, defaulting to DefaultModel.
func NewClient(modelName string) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = viper.GetString("gemini.api_key")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required; set GEMINI_API_KEY or gemini.api_key in the config file")
	}

	if modelName == "" {
		modelName = viper.GetString("gemini.model")
		if modelName == "" {
			modelName = DefaultModel
		}
	}

	timeout := DefaultTimeout
	if raw := viper.GetString("gemini.timeout"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			timeout = d
		}
	}

	gClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{modelName: modelName, timeout: timeout, gClient: gClient}, nil
}

// insightSchema enforces the fixed five-list response shape.
func insightSchema() *genai.Schema {
	list := func(desc string) *genai.Schema {
		return &genai.Schema{
			Type:        genai.TypeArray,
			Description: desc,
			Items:       &genai.Schema{Type: genai.TypeString},
		}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"strengths":                 list("Current SEO strengths"),
			"improvements":              list("Specific areas needing improvement"),
			"keyword_recommendations":   list("Suggested keywords"),
			"content_suggestions":       list("Content improvement suggestions"),
			"technical_recommendations": list("Technical SEO fixes"),
		},
		Required: []string{"strengths", "improvements", "keyword_recommendations", "content_suggestions", "technical_recommendations"},
	}
}

// AnalyzePage asks the model for qualitative insights on the page. Any
// failure (timeout, API error, malformed response) is recovered locally:
// the returned insights simply have all five lists empty, and the error is
// reported so the caller can log it.
func (c *Client) AnalyzePage(ctx context.Context, url, content string, meta core.PageMetadata) (core.QualitativeInsights, error) {
	preview := truncatePreview(content)
	keywords := "None found"
	if len(meta.Keywords) > 0 {
		keywords = strings.Join(meta.Keywords, ", ")
	}
	prompt := fmt.Sprintf(insightPromptTemplate, url, preview,
		orNotFound(meta.Title), orNotFound(meta.MetaDescription), keywords)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text, err := c.generateJSON(ctx, prompt, insightSchema())
	if err != nil {
		return core.QualitativeInsights{}, err
	}

	var parsed core.QualitativeInsights
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return core.QualitativeInsights{}, fmt.Errorf("failed to parse insight response: %w", err)
	}
	return parsed, nil
}

// GenerateReport produces a free-text SEO report for a completed analysis.
func (c *Client) GenerateReport(ctx context.Context, record core.AnalysisRecord) (string, error) {
	payload, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode analysis record: %w", err)
	}

	prompt := fmt.Sprintf(`Generate a detailed SEO report based on the following analysis:

Analysis Results: %s

Please provide a comprehensive report with actionable insights and recommendations.`, payload)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	return c.generateText(ctx, prompt)
}

// SuggestKeywords returns keyword suggestions for an industry. Failures
// degrade to an empty slice alongside the error.
func (c *Client) SuggestKeywords(ctx context.Context, current []string, industry string) ([]string, error) {
	currentList := "None provided"
	if len(current) > 0 {
		currentList = strings.Join(current, ", ")
	}
	prompt := fmt.Sprintf(`Generate relevant SEO keyword suggestions for a %s website.

Current Keywords: %s
Industry: %s

Each keyword should be relevant to the industry and have good search potential.`, industry, currentList, industry)

	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"keywords": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"keywords"},
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text, err := c.generateJSON(ctx, prompt, schema)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse keyword suggestions: %w", err)
	}
	return parsed.Keywords, nil
}

func (c *Client) generateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}
	resp, err := c.gClient.Models.GenerateContent(ctx, c.modelName, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

func (c *Client) generateText(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}
	resp, err := c.gClient.Models.GenerateContent(ctx, c.modelName, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// truncatePreview cuts content to ContentPreviewLimit characters on a rune
// boundary, never splitting a multi-byte character.
func truncatePreview(content string) string {
	if utf8.RuneCountInString(content) <= ContentPreviewLimit {
		return content
	}
	runes := []rune(content)
	return string(runes[:ContentPreviewLimit])
}

func orNotFound(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not found"
	}
	return s
}
