package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync/atomic"
	"testing"

	"github.com/verisight-labs/verisight/internal/crossref"
	"github.com/verisight-labs/verisight/internal/domain"
	"github.com/verisight-labs/verisight/internal/redteam"
	"go.uber.org/zap"
)

// stubProvider implements domain.OpinionProvider with a canned record.
type stubProvider struct {
	kind   domain.SourceKind
	record *domain.OpinionRecord
	err    error
	panics bool
	calls  atomic.Int32
}

func (s *stubProvider) Kind() domain.SourceKind { return s.kind }

func (s *stubProvider) Analyze(ctx context.Context, fileBytes []byte, filename string) (*domain.OpinionRecord, error) {
	s.calls.Add(1)
	if s.panics {
		panic("provider blew up")
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.record, nil
}

func stub(kind domain.SourceKind, confidence float64, anomalies ...domain.Anomaly) *stubProvider {
	return &stubProvider{
		kind: kind,
		record: &domain.OpinionRecord{
			SourceKind: kind,
			Confidence: confidence,
			Findings:   map[string]any{},
			Anomalies:  anomalies,
		},
	}
}

type stubs struct {
	forensic, physical, contextual, aiGen *stubProvider
}

func newOrchestrator(s stubs) *Orchestrator {
	return New(
		s.forensic, s.physical, s.contextual, s.aiGen,
		crossref.NewEngine(),
		redteam.NewEngine(redteam.NewHistory(10), zap.NewNop()),
		zap.NewNop(),
	)
}

func testImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 640, 480))
	for y := 0; y < 480; y++ {
		for x := 0; x < 640; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 100, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestAnalyze_AuthenticFlow(t *testing.T) {
	s := stubs{
		forensic:   stub(domain.SourceForensic, 0.78),
		physical:   stub(domain.SourcePhysical, 0.78),
		contextual: stub(domain.SourceContextual, 0.78),
		aiGen:      stub(domain.SourceAIGeneration, 0.78),
	}
	o := newOrchestrator(s)

	res, err := o.Analyze(context.Background(), testImage(t), "clean.png", domain.MediaImage)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(res.Opinions) != 4 {
		t.Fatalf("expected 4 opinions, got %d", len(res.Opinions))
	}
	if res.CrossReference.CombinedScore != 0.78 {
		t.Fatalf("expected combined score 0.78, got %v", res.CrossReference.CombinedScore)
	}
	if res.Verdict != domain.VerdictAuthentic {
		t.Fatalf("expected authentic verdict, got %s", res.Verdict)
	}
	if res.Confidence != 0.78 {
		t.Fatalf("expected confidence 0.78, got %v", res.Confidence)
	}
	// One blind spot (clone detection), no challenges: no escalation.
	if res.HITLRequired {
		t.Fatalf("expected no HITL escalation, critique: %+v", res.Critique)
	}
}

func TestAnalyze_FailedProviderIsDropped(t *testing.T) {
	s := stubs{
		forensic:   stub(domain.SourceForensic, 0.8),
		physical:   &stubProvider{kind: domain.SourcePhysical, err: errors.New("model timeout")},
		contextual: stub(domain.SourceContextual, 0.8),
		aiGen:      stub(domain.SourceAIGeneration, 0.8),
	}
	o := newOrchestrator(s)

	res, err := o.Analyze(context.Background(), testImage(t), "partial.png", domain.MediaImage)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(res.Opinions) != 3 {
		t.Fatalf("expected 3 opinions after one failure, got %d", len(res.Opinions))
	}
	for _, op := range res.Opinions {
		if op.SourceKind == domain.SourcePhysical {
			t.Fatal("expected the failed provider's opinion to be dropped")
		}
	}
}

func TestAnalyze_PanickingProviderIsDropped(t *testing.T) {
	s := stubs{
		forensic:   stub(domain.SourceForensic, 0.8),
		physical:   stub(domain.SourcePhysical, 0.8),
		contextual: &stubProvider{kind: domain.SourceContextual, panics: true},
		aiGen:      stub(domain.SourceAIGeneration, 0.8),
	}
	o := newOrchestrator(s)

	res, err := o.Analyze(context.Background(), testImage(t), "panicky.png", domain.MediaImage)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(res.Opinions) != 3 {
		t.Fatalf("expected 3 opinions after a panic, got %d", len(res.Opinions))
	}
}

func TestAnalyze_VerdictChallengeForcesInconclusive(t *testing.T) {
	// Three high anomalies force a forged preliminary verdict while the
	// weighted score stays high: the critique disputes the contradiction and
	// the final verdict falls to inconclusive.
	high := domain.Anomaly{Type: "splice", Severity: domain.SeverityHigh}
	s := stubs{
		forensic:   stub(domain.SourceForensic, 0.9, high, high, high),
		physical:   stub(domain.SourcePhysical, 0.85),
		contextual: stub(domain.SourceContextual, 0.85),
		aiGen:      stub(domain.SourceAIGeneration, 0.85),
	}
	o := newOrchestrator(s)

	res, err := o.Analyze(context.Background(), testImage(t), "contested.png", domain.MediaImage)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.CrossReference.PreliminaryVerdict != domain.VerdictForged {
		t.Fatalf("expected forged preliminary verdict, got %s", res.CrossReference.PreliminaryVerdict)
	}
	if res.Verdict != domain.VerdictInconclusive {
		t.Fatalf("expected final verdict inconclusive, got %s", res.Verdict)
	}
	if !res.HITLRequired {
		t.Fatal("expected HITL escalation for a challenged verdict")
	}
}

func TestAnalyze_ProviderSelectionByMediaKind(t *testing.T) {
	cases := []struct {
		kind        domain.MediaKind
		wantCalls   [4]int32 // forensic, physical, contextual, aiGen
		wantOpinion int
	}{
		{domain.MediaImage, [4]int32{1, 1, 1, 1}, 4},
		{domain.MediaVideo, [4]int32{1, 1, 1, 0}, 3},
		{domain.MediaAudio, [4]int32{1, 0, 0, 0}, 1},
		{domain.MediaDocument, [4]int32{1, 0, 1, 0}, 2},
		{domain.MediaUnknown, [4]int32{1, 0, 0, 0}, 1},
	}

	for _, tc := range cases {
		s := stubs{
			forensic:   stub(domain.SourceForensic, 0.7),
			physical:   stub(domain.SourcePhysical, 0.7),
			contextual: stub(domain.SourceContextual, 0.7),
			aiGen:      stub(domain.SourceAIGeneration, 0.7),
		}
		o := newOrchestrator(s)

		res, err := o.Analyze(context.Background(), testImage(t), "media.bin", tc.kind)
		if err != nil {
			t.Fatalf("%s: expected no error, got %v", tc.kind, err)
		}
		if len(res.Opinions) != tc.wantOpinion {
			t.Fatalf("%s: expected %d opinions, got %d", tc.kind, tc.wantOpinion, len(res.Opinions))
		}

		got := [4]int32{
			s.forensic.calls.Load(), s.physical.calls.Load(),
			s.contextual.calls.Load(), s.aiGen.calls.Load(),
		}
		if got != tc.wantCalls {
			t.Fatalf("%s: provider calls = %v, want %v", tc.kind, got, tc.wantCalls)
		}
	}
}

func TestFinalVerdict_Clamping(t *testing.T) {
	cross := domain.CrossReferenceResult{CombinedScore: 0.98, PreliminaryVerdict: domain.VerdictAuthentic}
	critique := domain.CritiqueResult{ConfidenceAdjustment: 0.05, ThreatLevel: domain.ThreatLow}

	_, confidence, _ := finalVerdict(cross, critique)
	if confidence != MaxAdjustedScore {
		t.Fatalf("expected confidence clamped to %v, got %v", MaxAdjustedScore, confidence)
	}

	cross = domain.CrossReferenceResult{CombinedScore: 0.06, PreliminaryVerdict: domain.VerdictInconclusive}
	critique = domain.CritiqueResult{ConfidenceAdjustment: -0.05, ThreatLevel: domain.ThreatLow}

	_, confidence, _ = finalVerdict(cross, critique)
	if confidence != MinAdjustedScore {
		t.Fatalf("expected confidence clamped to %v, got %v", MinAdjustedScore, confidence)
	}
}

func TestFinalVerdict_AuthenticNeedsAdjustedThreshold(t *testing.T) {
	cross := domain.CrossReferenceResult{CombinedScore: 0.76, PreliminaryVerdict: domain.VerdictAuthentic}
	critique := domain.CritiqueResult{ConfidenceAdjustment: -0.03, ThreatLevel: domain.ThreatLow}

	verdict, confidence, _ := finalVerdict(cross, critique)
	if confidence != 0.73 {
		t.Fatalf("expected adjusted confidence 0.73, got %v", confidence)
	}
	if verdict != domain.VerdictInconclusive {
		t.Fatalf("expected inconclusive when the adjusted score drops below the threshold, got %s", verdict)
	}
}

func TestFinalVerdict_ForgedSurvivesWithoutChallenge(t *testing.T) {
	cross := domain.CrossReferenceResult{CombinedScore: 0.3, PreliminaryVerdict: domain.VerdictForged}
	critique := domain.CritiqueResult{ThreatLevel: domain.ThreatLow}

	verdict, _, _ := finalVerdict(cross, critique)
	if verdict != domain.VerdictForged {
		t.Fatalf("expected forged to pass through, got %s", verdict)
	}
}

func TestFinalVerdict_HITLConditions(t *testing.T) {
	authentic := domain.CrossReferenceResult{CombinedScore: 0.8, PreliminaryVerdict: domain.VerdictAuthentic}

	// Medium threat alone escalates.
	_, _, hitl := finalVerdict(authentic, domain.CritiqueResult{ThreatLevel: domain.ThreatMedium})
	if !hitl {
		t.Fatal("expected HITL for medium threat")
	}

	// Two blind spots alone escalate.
	_, _, hitl = finalVerdict(authentic, domain.CritiqueResult{
		ThreatLevel: domain.ThreatLow,
		BlindSpots:  []domain.BlindSpot{{}, {}},
	})
	if !hitl {
		t.Fatal("expected HITL for two blind spots")
	}

	// A clean authentic verdict does not escalate.
	_, _, hitl = finalVerdict(authentic, domain.CritiqueResult{ThreatLevel: domain.ThreatLow})
	if hitl {
		t.Fatal("expected no HITL for a clean authentic verdict")
	}
}
