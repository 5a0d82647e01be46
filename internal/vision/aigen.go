package vision

import (
	"context"
	"fmt"

	"github.com/verisight-labs/verisight/internal/domain"
	"go.uber.org/zap"
)

// AIGenerationProvider determines whether the image was produced by a
// generative model, and if so by which tool.
type AIGenerationProvider struct {
	client Client
	logger *zap.Logger
}

func NewAIGenerationProvider(client Client, logger *zap.Logger) *AIGenerationProvider {
	return &AIGenerationProvider{client: client, logger: logger}
}

func (p *AIGenerationProvider) Kind() domain.SourceKind {
	return domain.SourceAIGeneration
}

func (p *AIGenerationProvider) Analyze(ctx context.Context, fileBytes []byte, filename string) (*domain.OpinionRecord, error) {
	resp, err := p.client.AnalyzeImage(ctx, fileBytes, aiGenSystemPrompt, aiGenUserPrompt)
	if err == nil {
		if parsed, ok := parseAIGenOpinion(resp); ok {
			anomalies := parsed.Indicators
			if parsed.IsAIGenerated {
				tool := parsed.LikelyTool
				if tool == "" {
					tool = "unknown"
				}
				anomalies = append([]domain.Anomaly{{
					Type:        domain.AnomalyAIGenerated,
					Description: fmt.Sprintf("The image was identified as AI-generated. Suspected tool: %s.", tool),
					Severity:    domain.SeverityHigh,
					Location:    &domain.Location{X: 50, Y: 50},
				}}, anomalies...)
			}
			return &domain.OpinionRecord{
				SourceKind: domain.SourceAIGeneration,
				Confidence: parsed.Confidence,
				Findings: map[string]any{
					"is_ai_generated": parsed.IsAIGenerated,
					"likely_tool":     parsed.LikelyTool,
					"summary":         parsed.Summary,
					"source":          "vision",
				},
				Anomalies: anomalies,
			}, nil
		}
	}
	if err != nil {
		p.logger.Warn("ai-generation provider falling back to placeholder", zap.Error(err))
	}

	return &domain.OpinionRecord{
		SourceKind: domain.SourceAIGeneration,
		Confidence: 0.70,
		Findings: map[string]any{
			"is_ai_generated": false,
			"likely_tool":     "unknown",
			"summary":         "Placeholder analysis - connect an API key for real analysis",
			"source":          "placeholder",
		},
		Anomalies: []domain.Anomaly{
			{
				Type:        "ai_check",
				Description: "Cannot determine with certainty whether the image was AI-generated without a vision model.",
				Severity:    domain.SeverityLow,
				Location:    &domain.Location{X: 50, Y: 50},
			},
		},
	}, nil
}
