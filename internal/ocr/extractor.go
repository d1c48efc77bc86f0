// Package ocr extracts feedback-form questions from uploaded form images
// with a vision model behind an OpenAI-compatible API.
package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mentorlink/feedback-service/internal/models"
)

const maxImageSizeMB = 4

const extractionPrompt = `You are an expert at analyzing feedback forms and extracting questions in a structured format.

Analyze this feedback form image and extract ALL questions. Return ONLY a JSON array with this exact structure:

[
  {
    "type": "text|textarea|select|radio|rating",
    "label": "the complete question text",
    "required": true/false,
    "options": ["option1", "option2"],
    "minRating": 1,
    "maxRating": 10
  }
]

Question type detection rules:
- text: short answer fields, single-line inputs
- textarea: long answer fields, essay questions, comments
- select: dropdown lists, single selection with many options
- radio: multiple choice with radio buttons, 2-5 options
- rating: star ratings, numeric scales, Likert scales

Mark a question required only when the form shows an asterisk, "required" or
"mandatory". For select/radio extract ALL visible options exactly as written.
For rating detect the scale, defaulting to 1-5 if unclear.

Return valid JSON ONLY - no markdown, no code blocks, no explanations.
If you cannot extract any questions, return an empty array: []`

// Extractor turns a form image into candidate questions
type Extractor interface {
	ExtractQuestions(ctx context.Context, imageBase64 string) ([]models.Question, error)
}

// extractedQuestion is the shape the model is instructed to return. Ids are
// assigned here, never taken from the model.
type extractedQuestion struct {
	Type      string   `json:"type"`
	Label     string   `json:"label"`
	Required  bool     `json:"required"`
	Options   []string `json:"options"`
	MinRating *int     `json:"minRating"`
	MaxRating *int     `json:"maxRating"`
}

// Config for the vision extractor. BaseURL points at any OpenAI-compatible
// endpoint; OpenRouter in production.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

type VisionExtractor struct {
	client *openai.Client
	model  string
	logger *slog.Logger
	newID  func() string
}

func NewVisionExtractor(cfg Config, logger *slog.Logger, newID func() string) *VisionExtractor {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "openai/gpt-4o-mini"
	}

	return &VisionExtractor{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		logger: logger,
		newID:  newID,
	}
}

// ExtractQuestions sends the image to the vision model and parses its answer.
// Malformed model output is an error, never a silently truncated result.
func (e *VisionExtractor) ExtractQuestions(ctx context.Context, imageBase64 string) ([]models.Question, error) {
	imageURL, err := ValidateImageData(imageBase64)
	if err != nil {
		return nil, err
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		MaxTokens:   2000,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: extractionPrompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: imageURL,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("vision model call failed: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("vision model returned no content")
	}

	questions, err := e.parseResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "Extracted questions from image",
		"model", e.model,
		"question_count", len(questions))

	return questions, nil
}

func (e *VisionExtractor) parseResponse(content string) ([]models.Question, error) {
	// Some models wrap the JSON in a code fence despite the prompt
	jsonStr := strings.TrimSpace(content)
	jsonStr = strings.TrimPrefix(jsonStr, "```json")
	jsonStr = strings.TrimPrefix(jsonStr, "```")
	jsonStr = strings.TrimSuffix(jsonStr, "```")
	jsonStr = strings.TrimSpace(jsonStr)

	var extracted []extractedQuestion
	if err := json.Unmarshal([]byte(jsonStr), &extracted); err != nil {
		return nil, fmt.Errorf("unparseable model response, image may not contain a form: %w", err)
	}

	questions := make([]models.Question, 0, len(extracted))
	for i, q := range extracted {
		if q.Type == "" || strings.TrimSpace(q.Label) == "" {
			return nil, fmt.Errorf("extracted question %d is missing type or label", i+1)
		}

		question := models.Question{
			ID:        e.newID(),
			Type:      models.QuestionType(q.Type),
			Label:     strings.TrimSpace(q.Label),
			Required:  q.Required,
			Options:   q.Options,
			MinRating: q.MinRating,
			MaxRating: q.MaxRating,
		}

		if !question.Type.Valid() {
			return nil, fmt.Errorf("extracted question %d has invalid type %q", i+1, q.Type)
		}
		questions = append(questions, question)
	}

	return questions, nil
}

// ValidateImageData checks size and encoding, and returns the data URL to
// send to the model. Accepts raw base64 or a full data URL.
func ValidateImageData(imageBase64 string) (string, error) {
	raw := imageBase64
	hadPrefix := false
	if strings.HasPrefix(raw, "data:") {
		idx := strings.Index(raw, "base64,")
		if idx < 0 {
			return "", fmt.Errorf("image data URL is not base64 encoded")
		}
		if !strings.HasPrefix(raw, "data:image/png") && !strings.HasPrefix(raw, "data:image/jpeg") && !strings.HasPrefix(raw, "data:image/jpg") {
			return "", fmt.Errorf("unsupported image format, use PNG or JPEG")
		}
		raw = raw[idx+len("base64,"):]
		hadPrefix = true
	}

	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("invalid base64 image data: %w", err)
	}

	sizeMB := float64(len(decoded)) / (1024 * 1024)
	if sizeMB > maxImageSizeMB {
		return "", fmt.Errorf("image size (%.2fMB) exceeds %dMB limit", sizeMB, maxImageSizeMB)
	}

	if !hadPrefix {
		if !isPNG(decoded) && !isJPEG(decoded) {
			return "", fmt.Errorf("unsupported image format, use PNG or JPEG")
		}
		return "data:image/jpeg;base64," + raw, nil
	}
	return imageBase64, nil
}

func isPNG(data []byte) bool {
	return len(data) > 8 && string(data[:8]) == "\x89PNG\r\n\x1a\n"
}

func isJPEG(data []byte) bool {
	return len(data) > 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF
}
