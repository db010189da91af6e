// Package assess produces safety assessments of food labels against a
// caller's health profile.
package assess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/labelwise/labelwise/internal/auth"
	"github.com/labelwise/labelwise/internal/gateway"
	"github.com/labelwise/labelwise/internal/llmcall"
	assessprompt "github.com/labelwise/labelwise/internal/prompts/assess"
	"github.com/labelwise/labelwise/internal/providers"
	"github.com/labelwise/labelwise/internal/types"
)

// Recorder persists LLM call records. A nil Recorder disables recording.
type Recorder interface {
	Record(ctx context.Context, call *llmcall.Call) error
}

// Service runs label safety assessments. It is stateless; callers own
// persistence of results.
type Service struct {
	client   providers.LLMClient
	recorder Recorder
	logger   *slog.Logger
}

// NewService creates an assessment service backed by the given LLM client.
func NewService(client providers.LLMClient, recorder Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, recorder: recorder, logger: logger}
}

// Assess validates the request, renders the assessment prompt, invokes
// the model and returns the structured result. The caller identity must
// be verified; results are never produced for anonymous requests.
// scanID names the scan the result will be stored under and is stamped
// on every recorded model call; pass "" when no scan will be created.
//
// A reply that fails schema validation is retried once with the same
// prompt. Both attempts are recorded.
func (s *Service) Assess(ctx context.Context, caller auth.Identity, scanID string, req types.AssessmentRequest) (*types.AssessmentResult, error) {
	if caller.Subject == "" {
		return nil, auth.ErrNoIdentity
	}

	if err := types.ValidateInput(req); err != nil {
		return nil, err
	}

	chatReq, err := assessprompt.BuildChatRequest(req)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		result, err := gateway.Invoke(ctx, s.client, chatReq)
		s.record(ctx, caller, scanID, result, chatReq.Temperature, attempt)

		if err != nil {
			if errors.Is(err, gateway.ErrInvalidModelOutput) && attempt == 1 {
				s.logger.Warn("model output failed validation, retrying",
					"provider", s.client.Name(),
					"attempt", attempt,
					"error", err)
				lastErr = err
				continue
			}
			return nil, err
		}

		parsed, err := assessprompt.ParseResult(result.Parsed)
		if err != nil {
			return nil, fmt.Errorf("failed to decode assessment: %w", err)
		}

		s.logger.Info("assessment complete",
			"caller", caller.Subject,
			"product", req.Label.ProductName,
			"verdict", parsed.Assessment,
			"attempts", attempt)
		return parsed, nil
	}

	return nil, lastErr
}

func (s *Service) record(ctx context.Context, caller auth.Identity, scanID string, result *gateway.Result, temperature float64, attempt int) {
	if s.recorder == nil || result == nil || result.Call == nil {
		return
	}

	call := llmcall.FromChatResult(result.Call, llmcall.RecordOptions{
		ScanID:      scanID,
		Owner:       caller.Subject,
		PromptKey:   assessprompt.UserPromptKey,
		PromptCID:   assessprompt.UserPromptHash(),
		Attempt:     attempt,
		Temperature: &temperature,
	})
	if err := s.recorder.Record(ctx, call); err != nil {
		s.logger.Warn("failed to record llm call", "error", err)
	}
}
