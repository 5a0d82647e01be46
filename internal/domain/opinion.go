package domain

import "context"

// SourceKind identifies the origin of an opinion.
type SourceKind string

const (
	SourceForensic     SourceKind = "forensic_technical"
	SourcePhysical     SourceKind = "physical"
	SourceContextual   SourceKind = "contextual"
	SourceAIGeneration SourceKind = "ai_generation"
)

func ValidSourceKind(k string) bool {
	switch SourceKind(k) {
	case SourceForensic, SourcePhysical, SourceContextual, SourceAIGeneration:
		return true
	}
	return false
}

// OpinionRecord is the common contract every opinion source produces.
// Confidence is the source's own self-assessed probability of authenticity,
// independent of all other sources.
type OpinionRecord struct {
	SourceKind SourceKind     `json:"source_kind"`
	Confidence float64        `json:"confidence"`
	Findings   map[string]any `json:"findings,omitempty"`
	Anomalies  []Anomaly      `json:"anomalies"`
}

// OpinionProvider is one analysis source. Implementations must not return an
// error for recoverable conditions (undecodable input, network failure,
// missing credential); they return a degraded-confidence record instead. A
// provider that does error is dropped from the run by the orchestrator.
type OpinionProvider interface {
	Kind() SourceKind
	Analyze(ctx context.Context, fileBytes []byte, filename string) (*OpinionRecord, error)
}
