package domain

type Verdict string

const (
	VerdictAuthentic    Verdict = "authentic"
	VerdictForged       Verdict = "forged"
	VerdictInconclusive Verdict = "inconclusive"
)

func ValidVerdict(v string) bool {
	switch Verdict(v) {
	case VerdictAuthentic, VerdictForged, VerdictInconclusive:
		return true
	}
	return false
}

// AnomalySummary counts anomalies by severity across all opinions.
type AnomalySummary struct {
	Total  int `json:"total"`
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// CrossReferenceResult is the aggregator's output. Derived, never stored
// state; recomputed each run from the current opinion set.
type CrossReferenceResult struct {
	CombinedScore      float64        `json:"combined_score"`
	PreliminaryVerdict Verdict        `json:"preliminary_verdict"`
	Reasoning          string         `json:"reasoning"`
	AnomalySummary     AnomalySummary `json:"anomaly_summary"`
}

// AnalysisResult is the orchestrator's full output for one run. Terminal --
// a fresh run produces a fresh result.
type AnalysisResult struct {
	Opinions       []OpinionRecord      `json:"opinions"`
	CrossReference CrossReferenceResult `json:"cross_reference"`
	Critique       CritiqueResult       `json:"critique"`
	Verdict        Verdict              `json:"verdict"`
	Confidence     float64              `json:"confidence"`
	HITLRequired   bool                 `json:"hitl_required"`
}
