package summary

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/healthconnect/portal/internal/pkg/metrics"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// Response is the boundary shape: exactly one of Summary or Error is set.
type Response struct {
	Summary string `json:"summary,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Service validates record text, renders the prompt, calls the model once and
// validates its reply.
type Service struct {
	generator Generator
	timeout   time.Duration
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService wires a generator into the adapter. A nil generator makes every
// call fail with ErrNoProvider.
func NewService(generator Generator, opts ...Option) *Service {
	s := &Service{
		generator: generator,
		timeout:   defaultTimeout,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("SummaryService")
	return s
}

// Summarize runs one attempt. Errors are *ValidationError, *GenerationError or
// *SchemaMismatchError.
func (s *Service) Summarize(ctx context.Context, recordText string) (Result, error) {
	start := time.Now()
	result, err := s.summarize(ctx, recordText)
	if err != nil {
		s.metrics.ObserveSummary("failure", errorKind(err), time.Since(start))
		return Result{}, err
	}
	s.metrics.ObserveSummary("success", "", time.Since(start))
	return result, nil
}

func (s *Service) summarize(ctx context.Context, recordText string) (Result, error) {
	if err := ValidateInput(Input{EHRData: recordText}); err != nil {
		return Result{}, err
	}
	raw, err := s.invoke(ctx, RenderPrompt(recordText))
	if err != nil {
		return Result{}, err
	}
	return DecodeOutput(raw)
}

// invoke applies the timeout and turns every failure into a GenerationError.
func (s *Service) invoke(ctx context.Context, prompt string) (string, error) {
	if s.generator == nil {
		return "", &GenerationError{Kind: KindBackend, Err: ErrNoProvider}
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, context.Canceled) {
			err = errors.Join(err, ctx.Err())
		}
		return "", &GenerationError{Kind: classifyGenerationError(err), Err: err}
	}
	if strings.TrimSpace(raw) == "" {
		return "", &GenerationError{Kind: KindEmpty, Err: errors.New("empty response from model")}
	}
	return raw, nil
}

// GenerateSummary is the boundary call. It never fails: any error is logged
// and replaced by GenericFailureMessage.
func (s *Service) GenerateSummary(ctx context.Context, in Input) Response {
	result, err := s.Summarize(ctx, in.EHRData)
	if err != nil {
		s.logFailure(err, len(in.EHRData))
		return Response{Error: GenericFailureMessage}
	}
	return Response{Summary: result.Summary}
}

// GenerateSummaryFromJSON decodes a raw request body before calling GenerateSummary.
func (s *Service) GenerateSummaryFromJSON(ctx context.Context, body []byte) Response {
	in, err := DecodeInput(body)
	if err != nil {
		s.metrics.ObserveSummary("failure", errorKind(err), 0)
		s.logFailure(err, 0)
		return Response{Error: GenericFailureMessage}
	}
	return s.GenerateSummary(ctx, in)
}

func (s *Service) logFailure(err error, recordChars int) {
	fields := []zap.Field{
		zap.String("kind", errorKind(err)),
		zap.Int("recordChars", recordChars),
		zap.Error(err),
	}
	var schemaErr *SchemaMismatchError
	if errors.As(err, &schemaErr) {
		fields = append(fields, zap.String("raw", truncateText(schemaErr.Raw, 500)))
	}
	s.logger.Warn("summary generation failed", fields...)
}

func truncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "..."
}
