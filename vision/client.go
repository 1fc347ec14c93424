package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/wildlifefocus/reptileguard_backend/models"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client wraps the Gemini client and model used for reptile identification.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

const systemPrompt = `You are a herpetologist assisting a wildlife rescue service in India.
Identify the reptile in the photo and assess the danger it poses to people nearby.

RULES:
1. Respond ONLY with a single, minified JSON object. Do not include markdown ticks, "json", or any other conversational text.
2. danger_level MUST be one of: "Low", "Medium", "High", "Critical".
3. safety_tips MUST contain 3 to 5 short, practical instructions for an untrained bystander.
4. confidence is your identification confidence between 0 and 1.
5. If the photo does not show a reptile, set name to "Unknown" and confidence to 0.`

// NewClient builds the identification client, or (nil, nil) when no API key
// is configured so callers can decide how to handle missing configuration.
func NewClient(ctx context.Context) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, nil
	}

	modelName := os.Getenv("GEMINI_MODEL")
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":            {Type: genai.TypeString},
			"scientific_name": {Type: genai.TypeString},
			"is_venomous":     {Type: genai.TypeBoolean},
			"danger_level":    {Type: genai.TypeString},
			"description":     {Type: genai.TypeString},
			"safety_tips":     {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"habitat":         {Type: genai.TypeString},
			"confidence":      {Type: genai.TypeNumber},
		},
		Required: []string{"name", "is_venomous", "danger_level", "safety_tips", "confidence"},
	}

	return &Client{client: client, model: model}, nil
}

// Close releases underlying resources.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Identify analyzes base64 encoded photos and returns the species assessment.
// Data URL prefixes ("data:image/jpeg;base64,") are accepted and stripped.
func (c *Client) Identify(ctx context.Context, imagesBase64 []string) (*models.ReptileData, error) {
	if c == nil || c.model == nil {
		return nil, errors.New("species identification is not configured")
	}
	if len(imagesBase64) == 0 {
		return nil, errors.New("at least one photo is required")
	}

	parts := []genai.Part{genai.Text("Identify the reptile in the attached photo(s).")}
	for _, img := range imagesBase64 {
		format := "jpeg"
		if strings.HasPrefix(img, "data:") {
			meta, rest, found := strings.Cut(img, ",")
			if !found {
				return nil, errors.New("malformed data URL")
			}
			if strings.Contains(meta, "image/png") {
				format = "png"
			} else if strings.Contains(meta, "image/webp") {
				format = "webp"
			}
			img = rest
		}
		data, err := base64.StdEncoding.DecodeString(img)
		if err != nil {
			return nil, fmt.Errorf("failed to decode photo: %w", err)
		}
		parts = append(parts, genai.ImageData(format, data))
	}

	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil ||
		resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("no response from identification model")
	}

	textPart, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("unexpected response type from identification model: %T",
			resp.Candidates[0].Content.Parts[0])
	}

	payload := strings.TrimSpace(string(textPart))
	payload = strings.TrimPrefix(payload, "```json")
	payload = strings.TrimPrefix(payload, "```")
	payload = strings.TrimSuffix(payload, "```")

	var result models.ReptileData
	if err := json.Unmarshal([]byte(strings.TrimSpace(payload)), &result); err != nil {
		return nil, fmt.Errorf("failed to parse identification response: %w", err)
	}
	if !result.DangerLevel.Valid() {
		result.DangerLevel = models.DangerLevelMedium
	}
	return &result, nil
}
