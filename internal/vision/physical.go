package vision

import (
	"context"

	"github.com/verisight-labs/verisight/internal/domain"
	"go.uber.org/zap"
)

// PhysicalProvider checks physical plausibility: shadows, lighting,
// perspective, reflections and proportions. Backed by a vision model; falls
// back to a fixed placeholder opinion when the model is unavailable or its
// response does not parse.
type PhysicalProvider struct {
	client Client
	logger *zap.Logger
}

func NewPhysicalProvider(client Client, logger *zap.Logger) *PhysicalProvider {
	return &PhysicalProvider{client: client, logger: logger}
}

func (p *PhysicalProvider) Kind() domain.SourceKind {
	return domain.SourcePhysical
}

func (p *PhysicalProvider) Analyze(ctx context.Context, fileBytes []byte, filename string) (*domain.OpinionRecord, error) {
	resp, err := p.client.AnalyzeImage(ctx, fileBytes, physicalSystemPrompt, physicalUserPrompt)
	if err == nil {
		if parsed, ok := parseVisionOpinion(resp); ok {
			return &domain.OpinionRecord{
				SourceKind: domain.SourcePhysical,
				Confidence: parsed.Confidence,
				Findings:   map[string]any{"summary": parsed.Summary, "source": "vision"},
				Anomalies:  parsed.Anomalies,
			}, nil
		}
	}
	if err != nil {
		p.logger.Warn("physical provider falling back to placeholder", zap.Error(err))
	}

	return &domain.OpinionRecord{
		SourceKind: domain.SourcePhysical,
		Confidence: 0.68,
		Findings:   map[string]any{"summary": "Placeholder analysis - connect an API key for real analysis", "source": "placeholder"},
		Anomalies: []domain.Anomaly{
			{
				Type:        "shadows",
				Description: "The shadow direction of the central object contradicts the background shadow direction. A significant gap that may indicate compositing.",
				Severity:    domain.SeverityHigh,
				Location:    &domain.Location{X: 50, Y: 60},
			},
			{
				Type:        "perspective",
				Description: "The vanishing points of the background lines do not match the perspective of the foreground objects.",
				Severity:    domain.SeverityMedium,
				Location:    &domain.Location{X: 25, Y: 75},
			},
		},
	}, nil
}
