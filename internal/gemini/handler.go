package gemini

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/tqbui/vqagen/internal/credential"
	"github.com/tqbui/vqagen/internal/domain"
)

// Handler wraps one Gemini API client bound to a single key and model.
// Workers hold one handler each and replace it via the credential pool
// after a quota failure.
type Handler struct {
	client         *genai.Client
	modelName      string
	safetySettings []*genai.SafetySetting
	requestTimeout time.Duration
}

// blockNone disables response blocking for all harm categories, so
// quota and transport failures are the only error paths the dispatcher
// has to classify.
var blockNone = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
}

// NewHandler creates a handler bound to the given key and model.
// requestTimeout bounds each Generate call; zero means no per-call
// deadline beyond the caller's context.
func NewHandler(ctx context.Context, key, modelName string, requestTimeout time.Duration) (*Handler, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Handler{
		client:         client,
		modelName:      modelName,
		safetySettings: blockNone,
		requestTimeout: requestTimeout,
	}, nil
}

// Factory adapts NewHandler to the credential pool's factory contract.
func Factory(ctx context.Context, requestTimeout time.Duration) credential.HandlerFactory {
	return func(key, modelName string) (credential.Generator, error) {
		return NewHandler(ctx, key, modelName, requestTimeout)
	}
}

// ModelName returns the model this handler was built with.
func (h *Handler) ModelName() string {
	return h.modelName
}

// Generate resolves the image and asks the model to generate content
// from it plus the prompt. Returns the generated text.
func (h *Handler) Generate(ctx context.Context, imagePath, prompt string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image %s: %w", imagePath, err)
	}

	if h.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.requestTimeout)
		defer cancel()
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(data, mimeForPath(imagePath)),
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := h.client.Models.GenerateContent(ctx, h.modelName, contents, &genai.GenerateContentConfig{
		SafetySettings: h.safetySettings,
	})
	if err != nil {
		return "", fmt.Errorf("generate content failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", domain.ErrEmptyResponse
	}
	return text, nil
}

// mimeForPath maps the image extension to a MIME type the API accepts.
func mimeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
