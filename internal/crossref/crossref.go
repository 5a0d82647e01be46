package crossref

import (
	"fmt"
	"math"
	"strings"

	"github.com/verisight-labs/verisight/internal/domain"
)

// Aggregation thresholds.
const (
	AuthenticThreshold = 0.75 // combined score required for an authentic verdict
	ForgedScoreCeiling = 0.5  // combined score below this with 2+ high anomalies means forged
	ForgedHighCount    = 3    // high anomalies alone forcing a forged verdict
	LowConfidence      = 0.6  // sources below this are called out in the reasoning
	DefaultWeight      = 0.10 // weight for unrecognized source kinds
	NeutralScore       = 0.5  // fallback when there is nothing to aggregate
)

// sourceWeights is the fixed per-source-kind weight table.
var sourceWeights = map[domain.SourceKind]float64{
	domain.SourceForensic:     0.35,
	domain.SourcePhysical:     0.25,
	domain.SourceContextual:   0.20,
	domain.SourceAIGeneration: 0.20,
}

var sourceNames = map[domain.SourceKind]string{
	domain.SourceForensic:     "forensic-technical",
	domain.SourcePhysical:     "physical",
	domain.SourceContextual:   "contextual",
	domain.SourceAIGeneration: "AI detection",
}

// Engine combines heterogeneous opinion records into one weighted score and
// a preliminary verdict. It is pure: no state survives between calls, and
// aggregation is commutative over the input order.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Aggregate computes the weighted combined score, counts anomalies by
// severity, applies the verdict rule and builds human-readable reasoning.
func (e *Engine) Aggregate(opinions []domain.OpinionRecord) domain.CrossReferenceResult {
	if len(opinions) == 0 {
		return domain.CrossReferenceResult{
			CombinedScore:      NeutralScore,
			PreliminaryVerdict: domain.VerdictInconclusive,
			Reasoning:          "No opinions were received from any analysis source. Human review is recommended.",
		}
	}

	totalWeight := 0.0
	weightedSum := 0.0
	for _, op := range opinions {
		weight, ok := sourceWeights[op.SourceKind]
		if !ok {
			weight = DefaultWeight
		}
		weightedSum += op.Confidence * weight
		totalWeight += weight
	}

	combined := NeutralScore
	if totalWeight > 0 {
		combined = math.Round(weightedSum/totalWeight*1000) / 1000
	}

	summary := countAnomalies(opinions)

	// Verdict rule, first match wins.
	var verdict domain.Verdict
	switch {
	case summary.High >= ForgedHighCount || (summary.High >= 2 && combined < ForgedScoreCeiling):
		verdict = domain.VerdictForged
	case combined >= AuthenticThreshold && summary.High == 0:
		verdict = domain.VerdictAuthentic
	default:
		verdict = domain.VerdictInconclusive
	}

	return domain.CrossReferenceResult{
		CombinedScore:      combined,
		PreliminaryVerdict: verdict,
		Reasoning:          buildReasoning(opinions, combined, summary, verdict),
		AnomalySummary:     summary,
	}
}

func countAnomalies(opinions []domain.OpinionRecord) domain.AnomalySummary {
	var s domain.AnomalySummary
	for _, op := range opinions {
		for _, an := range op.Anomalies {
			s.Total++
			switch an.Severity {
			case domain.SeverityHigh:
				s.High++
			case domain.SeverityMedium:
				s.Medium++
			}
		}
	}
	s.Low = s.Total - s.High - s.Medium
	return s
}

func buildReasoning(opinions []domain.OpinionRecord, combined float64, summary domain.AnomalySummary, verdict domain.Verdict) string {
	var parts []string

	parts = append(parts, fmt.Sprintf(
		"%d analysis sources consulted. Weighted confidence score: %.1f%%.",
		len(opinions), combined*100))
	parts = append(parts, fmt.Sprintf(
		"%d anomalies detected: %d high severity, %d medium severity.",
		summary.Total, summary.High, summary.Medium))

	var lowSources []string
	for _, op := range opinions {
		if op.Confidence < LowConfidence {
			name, ok := sourceNames[op.SourceKind]
			if !ok {
				name = string(op.SourceKind)
			}
			lowSources = append(lowSources, name)
		}
	}
	if len(lowSources) > 0 {
		parts = append(parts, fmt.Sprintf("Low confidence from sources: %s.", strings.Join(lowSources, ", ")))
	}

	for _, op := range opinions {
		if op.SourceKind != domain.SourceAIGeneration {
			continue
		}
		if generated, _ := op.Findings["is_ai_generated"].(bool); generated {
			tool, _ := op.Findings["likely_tool"].(string)
			if tool == "" {
				tool = "unknown"
			}
			parts = append(parts, fmt.Sprintf("The image was identified as AI-generated (tool: %s).", tool))
		}
	}

	if verdict == domain.VerdictInconclusive {
		parts = append(parts, "A human expert (HITL) is recommended to confirm the findings.")
	}

	return strings.Join(parts, " ")
}
