package backend

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"

	"github.com/rezonia/invoice-extractor/internal/ean"
	"github.com/rezonia/invoice-extractor/internal/model"
)

const (
	llmDefaultBaseURL = "https://openrouter.ai/api/v1"
	llmDefaultTimeout = 120 * time.Second
	llmDefaultModel   = "openai/gpt-4o-mini"
)

const transcribePrompt = `Transcribe every piece of text visible in this invoice image. Preserve the line structure of the document. Return only the transcribed text, with no commentary.`

const digitsPrompt = `Read the digits printed under the barcode in this image. Return only the digits, nothing else. If no digits are visible, return an empty response.`

// LLMOCR recognizes document text through a vision-capable chat model on
// an OpenAI-compatible API. It is a drop-in alternative to Tesseract for
// scans too degraded for conventional OCR.
type LLMOCR struct {
	client openai.Client
	model  string
	raster ean.Rasterizer
}

// LLMOption configures the LLM OCR backend.
type LLMOption func(*llmConfig)

type llmConfig struct {
	baseURL string
	timeout time.Duration
	model   string
}

// WithLLMBaseURL sets a custom base URL.
func WithLLMBaseURL(url string) LLMOption {
	return func(cfg *llmConfig) { cfg.baseURL = url }
}

// WithLLMTimeout sets a custom HTTP timeout.
func WithLLMTimeout(timeout time.Duration) LLMOption {
	return func(cfg *llmConfig) { cfg.timeout = timeout }
}

// WithLLMModel sets the vision model.
func WithLLMModel(model string) LLMOption {
	return func(cfg *llmConfig) { cfg.model = model }
}

// NewLLMOCR creates the LLM vision backend. The rasterizer converts PDF
// pages to images before they are sent.
func NewLLMOCR(apiKey string, raster ean.Rasterizer, opts ...LLMOption) *LLMOCR {
	cfg := &llmConfig{
		baseURL: llmDefaultBaseURL,
		timeout: llmDefaultTimeout,
		model:   llmDefaultModel,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(cfg.baseURL),
		option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}),
	)
	return &LLMOCR{client: client, model: cfg.model, raster: raster}
}

// Recognize transcribes the document's first page through the vision model.
func (l *LLMOCR) Recognize(ctx context.Context, doc model.DocumentRef) (string, error) {
	img, err := l.pageImage(ctx, doc)
	if err != nil {
		return "", err
	}
	return l.chat(ctx, transcribePrompt, img)
}

// RecognizeDigits asks the vision model for the digits in an image region.
func (l *LLMOCR) RecognizeDigits(ctx context.Context, image []byte) (string, error) {
	return l.chat(ctx, digitsPrompt, image)
}

func (l *LLMOCR) pageImage(ctx context.Context, doc model.DocumentRef) ([]byte, error) {
	if strings.EqualFold(filepath.Ext(string(doc)), ".pdf") {
		return l.raster.ToImage(ctx, doc, []int{1}, ean.RasterWidth, ean.RasterHeight)
	}
	return os.ReadFile(string(doc))
}

func (l *LLMOCR) chat(ctx context.Context, prompt string, imageData []byte) (string, error) {
	dataURL := fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(imageData))

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
			openai.TextContentPart(prompt),
			openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: dataURL,
			}),
		}),
	}

	resp, err := l.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       l.model,
		Messages:    messages,
		MaxTokens:   param.NewOpt[int64](4096),
		Temperature: param.NewOpt[float64](0),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
