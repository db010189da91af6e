// Package extract turns photos of food labels into structured
// LabelExtraction data using a vision-capable model.
package extract

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/labelwise/labelwise/internal/auth"
	"github.com/labelwise/labelwise/internal/gateway"
	"github.com/labelwise/labelwise/internal/llmcall"
	extractprompt "github.com/labelwise/labelwise/internal/prompts/extract"
	"github.com/labelwise/labelwise/internal/providers"
	"github.com/labelwise/labelwise/internal/types"
)

// ErrBadImage is returned when the submitted image payload cannot be decoded.
var ErrBadImage = errors.New("image payload is not valid base64")

// Recorder persists LLM call records. A nil Recorder disables recording.
type Recorder interface {
	Record(ctx context.Context, call *llmcall.Call) error
}

// Service extracts label data from images. Stateless, like assess.Service.
type Service struct {
	client   providers.LLMClient
	recorder Recorder
	logger   *slog.Logger
}

// NewService creates an extraction service backed by the given LLM client.
func NewService(client providers.LLMClient, recorder Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, recorder: recorder, logger: logger}
}

// ExtractLabel decodes the submitted image and runs the vision
// extraction stage. The payload may be a data URI
// (data:image/jpeg;base64,...) or bare base64.
//
// A reply that fails schema validation is retried once with the same
// prompt. Both attempts are recorded.
func (s *Service) ExtractLabel(ctx context.Context, caller auth.Identity, imagePayload string) (*types.LabelExtraction, error) {
	if caller.Subject == "" {
		return nil, auth.ErrNoIdentity
	}

	image, err := DecodeImage(imagePayload)
	if err != nil {
		return nil, err
	}

	chatReq := extractprompt.BuildChatRequest(image)

	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		result, err := gateway.Invoke(ctx, s.client, chatReq)
		s.record(ctx, caller, result, chatReq.Temperature, attempt)

		if err != nil {
			if errors.Is(err, gateway.ErrInvalidModelOutput) && attempt == 1 {
				s.logger.Warn("extraction output failed validation, retrying",
					"provider", s.client.Name(),
					"attempt", attempt,
					"error", err)
				lastErr = err
				continue
			}
			return nil, err
		}

		label, err := extractprompt.ParseResult(result.Parsed)
		if err != nil {
			return nil, fmt.Errorf("failed to decode extraction: %w", err)
		}

		s.logger.Info("label extracted",
			"caller", caller.Subject,
			"product", label.ProductName,
			"attempts", attempt)
		return label, nil
	}

	return nil, lastErr
}

// DecodeImage decodes a data URI or bare base64 image payload.
func DecodeImage(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrBadImage)
	}

	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 || !strings.Contains(payload[:idx], ";base64") {
			return nil, fmt.Errorf("%w: malformed data URI", ErrBadImage)
		}
		payload = payload[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImage, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrBadImage)
	}
	return data, nil
}

func (s *Service) record(ctx context.Context, caller auth.Identity, result *gateway.Result, temperature float64, attempt int) {
	if s.recorder == nil || result == nil || result.Call == nil {
		return
	}

	call := llmcall.FromChatResult(result.Call, llmcall.RecordOptions{
		Owner:       caller.Subject,
		PromptKey:   extractprompt.UserPromptKey,
		PromptCID:   extractprompt.UserPromptHash(),
		Attempt:     attempt,
		Temperature: &temperature,
	})
	if err := s.recorder.Record(ctx, call); err != nil {
		s.logger.Warn("failed to record llm call", "error", err)
	}
}
