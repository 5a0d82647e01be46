package crossref

import (
	"strings"
	"testing"

	"github.com/verisight-labs/verisight/internal/domain"
)

func opinion(kind domain.SourceKind, confidence float64, anomalies ...domain.Anomaly) domain.OpinionRecord {
	return domain.OpinionRecord{
		SourceKind: kind,
		Confidence: confidence,
		Findings:   map[string]any{},
		Anomalies:  anomalies,
	}
}

func highAnomaly() domain.Anomaly {
	return domain.Anomaly{Type: "test", Severity: domain.SeverityHigh}
}

func TestAggregate_Empty(t *testing.T) {
	e := NewEngine()

	res := e.Aggregate(nil)
	if res.CombinedScore != NeutralScore {
		t.Fatalf("expected neutral score %v, got %v", NeutralScore, res.CombinedScore)
	}
	if res.PreliminaryVerdict != domain.VerdictInconclusive {
		t.Fatalf("expected inconclusive, got %s", res.PreliminaryVerdict)
	}
	if !strings.Contains(res.Reasoning, "No opinions") {
		t.Fatalf("expected reasoning to mention missing opinions, got %q", res.Reasoning)
	}
}

func TestAggregate_AuthenticVerdict(t *testing.T) {
	e := NewEngine()

	res := e.Aggregate([]domain.OpinionRecord{
		opinion(domain.SourceForensic, 0.95),
	})
	if res.CombinedScore != 0.95 {
		t.Fatalf("expected combined score 0.95, got %v", res.CombinedScore)
	}
	if res.PreliminaryVerdict != domain.VerdictAuthentic {
		t.Fatalf("expected authentic, got %s", res.PreliminaryVerdict)
	}
}

func TestAggregate_WeightedScore(t *testing.T) {
	e := NewEngine()

	// (0.9*0.35 + 0.5*0.20) / 0.55 = 0.7545... -> 0.755
	res := e.Aggregate([]domain.OpinionRecord{
		opinion(domain.SourceForensic, 0.9),
		opinion(domain.SourceAIGeneration, 0.5),
	})
	if res.CombinedScore != 0.755 {
		t.Fatalf("expected combined score 0.755, got %v", res.CombinedScore)
	}
}

func TestAggregate_UnknownSourceGetsDefaultWeight(t *testing.T) {
	e := NewEngine()

	// (0.9*0.35 + 0.4*0.10) / 0.45 = 0.7888... -> 0.789
	res := e.Aggregate([]domain.OpinionRecord{
		opinion(domain.SourceForensic, 0.9),
		opinion(domain.SourceKind("thermal"), 0.4),
	})
	if res.CombinedScore != 0.789 {
		t.Fatalf("expected combined score 0.789, got %v", res.CombinedScore)
	}
}

func TestAggregate_ThreeHighAnomaliesForceForged(t *testing.T) {
	e := NewEngine()

	// A high score cannot outvote three high-severity anomalies.
	res := e.Aggregate([]domain.OpinionRecord{
		opinion(domain.SourceForensic, 0.9, highAnomaly(), highAnomaly(), highAnomaly()),
	})
	if res.PreliminaryVerdict != domain.VerdictForged {
		t.Fatalf("expected forged, got %s", res.PreliminaryVerdict)
	}
	if res.AnomalySummary.High != 3 {
		t.Fatalf("expected 3 high anomalies, got %d", res.AnomalySummary.High)
	}
}

func TestAggregate_TwoHighWithLowScoreForged(t *testing.T) {
	e := NewEngine()

	// (0.4*0.35 + 0.45*0.25) / 0.60 = 0.4208... -> 0.421 < 0.5 with 2 high.
	res := e.Aggregate([]domain.OpinionRecord{
		opinion(domain.SourceForensic, 0.4, highAnomaly()),
		opinion(domain.SourcePhysical, 0.45, highAnomaly()),
	})
	if res.CombinedScore != 0.421 {
		t.Fatalf("expected combined score 0.421, got %v", res.CombinedScore)
	}
	if res.PreliminaryVerdict != domain.VerdictForged {
		t.Fatalf("expected forged, got %s", res.PreliminaryVerdict)
	}
}

func TestAggregate_HighAnomalyBlocksAuthentic(t *testing.T) {
	e := NewEngine()

	res := e.Aggregate([]domain.OpinionRecord{
		opinion(domain.SourceForensic, 0.9, highAnomaly()),
	})
	if res.PreliminaryVerdict != domain.VerdictInconclusive {
		t.Fatalf("expected inconclusive with a high anomaly present, got %s", res.PreliminaryVerdict)
	}
}

func TestAggregate_InconclusiveRecommendsHITL(t *testing.T) {
	e := NewEngine()

	res := e.Aggregate([]domain.OpinionRecord{
		opinion(domain.SourceForensic, 0.7),
	})
	if res.PreliminaryVerdict != domain.VerdictInconclusive {
		t.Fatalf("expected inconclusive, got %s", res.PreliminaryVerdict)
	}
	if !strings.Contains(res.Reasoning, "HITL") {
		t.Fatalf("expected HITL recommendation in reasoning, got %q", res.Reasoning)
	}
}

func TestAggregate_Commutative(t *testing.T) {
	e := NewEngine()

	ops := []domain.OpinionRecord{
		opinion(domain.SourceForensic, 0.82, highAnomaly()),
		opinion(domain.SourcePhysical, 0.61),
		opinion(domain.SourceContextual, 0.74),
		opinion(domain.SourceAIGeneration, 0.55),
	}
	reversed := make([]domain.OpinionRecord, len(ops))
	for i, op := range ops {
		reversed[len(ops)-1-i] = op
	}

	a := e.Aggregate(ops)
	b := e.Aggregate(reversed)
	if a.CombinedScore != b.CombinedScore {
		t.Fatalf("combined score depends on input order: %v vs %v", a.CombinedScore, b.CombinedScore)
	}
	if a.PreliminaryVerdict != b.PreliminaryVerdict {
		t.Fatalf("verdict depends on input order: %s vs %s", a.PreliminaryVerdict, b.PreliminaryVerdict)
	}
}

func TestAggregate_ReasoningNamesLowConfidenceSources(t *testing.T) {
	e := NewEngine()

	res := e.Aggregate([]domain.OpinionRecord{
		opinion(domain.SourceForensic, 0.9),
		opinion(domain.SourcePhysical, 0.4),
	})
	if !strings.Contains(res.Reasoning, "physical") {
		t.Fatalf("expected low-confidence source named in reasoning, got %q", res.Reasoning)
	}
}

func TestAggregate_ReasoningReportsAIGeneration(t *testing.T) {
	e := NewEngine()

	aiOp := opinion(domain.SourceAIGeneration, 0.85)
	aiOp.Findings = map[string]any{
		"is_ai_generated": true,
		"likely_tool":     "midjourney",
	}

	res := e.Aggregate([]domain.OpinionRecord{aiOp})
	if !strings.Contains(res.Reasoning, "midjourney") {
		t.Fatalf("expected the suspected tool in reasoning, got %q", res.Reasoning)
	}
}

func TestCountAnomalies_LowIsRemainder(t *testing.T) {
	ops := []domain.OpinionRecord{
		opinion(domain.SourceForensic, 0.5,
			domain.Anomaly{Severity: domain.SeverityHigh},
			domain.Anomaly{Severity: domain.SeverityMedium},
			domain.Anomaly{Severity: domain.SeverityLow},
			domain.Anomaly{Severity: domain.Severity("unrated")},
		),
	}

	s := countAnomalies(ops)
	if s.Total != 4 || s.High != 1 || s.Medium != 1 || s.Low != 2 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}
