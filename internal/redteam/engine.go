package redteam

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"math"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/verisight-labs/verisight/internal/domain"
	"go.uber.org/zap"
)

// Critique thresholds.
const (
	SocialRecompressionBPP   = 0.3  // JPEG bytes/pixel below this looks like platform re-compression
	FalsePositiveAdjustment  = 0.05 // proposed when a resave anomaly may be legitimate
	NoFindingsConfidence     = 0.8  // confidence above this with zero findings is suspicious
	ConsistencyGapThreshold  = 0.30 // max-min confidence spread triggering a consistency challenge
	ConsistencyAdjustment    = -0.03
	CrossDisagreeThreshold   = 0.25 // forensic/contextual disagreement threshold
	MinReliableDimension     = 200  // below this, artifact analysis degrades
	MaxExpectedDimension     = 5000 // above this, suspect cropping from a larger source
	VerdictScoreCeiling      = 0.7  // a forged verdict above this score contradicts itself
	TrendWindow              = 5    // history entries inspected for the trend recommendation
	TrendChallengeAverage    = 3.0  // average challenges per run above this flags over-sensitivity
	HighThreatChallengeCount = 2
	HighThreatTotal          = 5
	MediumThreatTotal        = 3
)

// Engine re-examines the opinion set and the preliminary verdict, hunting
// for false positives, false negatives and blind spots. It never mutates
// its inputs; the only state it keeps is the injected critique history.
type Engine struct {
	history *History
	logger  *zap.Logger
}

func NewEngine(history *History, logger *zap.Logger) *Engine {
	return &Engine{history: history, logger: logger}
}

// moduleResult is the output of one challenge module. A module that has no
// opinion on the confidence proposes no adjustment, which is different from
// proposing zero.
type moduleResult struct {
	challenges      []domain.Challenge
	blindSpots      []domain.BlindSpot
	recommendations []string
	adjustment      *float64
}

// Challenge runs the five challenge modules over the same inputs, combines
// their proposed adjustments, derives the threat level and appends one
// entry to the critique history.
func (e *Engine) Challenge(ctx context.Context, fileBytes []byte, filename string, opinions []domain.OpinionRecord, cross domain.CrossReferenceResult) domain.CritiqueResult {
	var challenges []domain.Challenge
	var blindSpots []domain.BlindSpot
	var recommendations []string
	var adjustments []float64

	collect := func(r moduleResult) {
		challenges = append(challenges, r.challenges...)
		blindSpots = append(blindSpots, r.blindSpots...)
		recommendations = append(recommendations, r.recommendations...)
		if r.adjustment != nil {
			adjustments = append(adjustments, *r.adjustment)
		}
	}

	collect(e.checkFalsePositives(opinions, fileBytes))
	collect(e.checkFalseNegatives(opinions))
	collect(e.checkCrossConsistency(opinions))
	collect(e.checkEdgeCases(fileBytes))

	verdictChallenges := e.challengeVerdict(cross, opinions)
	challenges = append(challenges, verdictChallenges...)

	adjustment := 0.0
	if len(adjustments) > 0 {
		for _, a := range adjustments {
			adjustment += a
		}
		adjustment /= float64(len(adjustments))
	}
	adjustment = math.Round(adjustment*1000) / 1000

	recommendations = append(recommendations, e.generateRecommendations(challenges, blindSpots)...)

	threat := threatLevel(challenges, blindSpots)

	hash := sha256.Sum256(fileBytes)
	e.history.Append(domain.CritiqueEntry{
		Timestamp:         time.Now().UTC(),
		FileHash:          hex.EncodeToString(hash[:])[:16],
		ChallengeCount:    len(challenges),
		BlindSpotCount:    len(blindSpots),
		Adjustment:        adjustment,
		VerdictChallenged: len(verdictChallenges) > 0,
	})

	e.logger.Debug("red team critique complete",
		zap.String("filename", filename),
		zap.Int("challenges", len(challenges)),
		zap.Int("blind_spots", len(blindSpots)),
		zap.Float64("adjustment", adjustment),
		zap.String("threat_level", string(threat)),
	)

	return domain.CritiqueResult{
		Challenges:           challenges,
		BlindSpots:           blindSpots,
		Recommendations:      recommendations,
		ConfidenceAdjustment: adjustment,
		ThreatLevel:          threat,
		Summary:              buildSummary(challenges, blindSpots, recommendations, threat),
	}
}

// checkFalsePositives asks whether forensic anomalies have innocent
// explanations: resave artifacts from social-platform re-compression, and
// metadata stripped by default platform behavior.
func (e *Engine) checkFalsePositives(opinions []domain.OpinionRecord, fileBytes []byte) moduleResult {
	var res moduleResult

	forensic := findOpinion(opinions, domain.SourceForensic)
	if forensic == nil {
		return res
	}

	if hasAnomalyType(forensic.Anomalies, domain.AnomalyResave) {
		if img, format, err := image.Decode(bytes.NewReader(fileBytes)); err == nil && format == "jpeg" {
			bounds := img.Bounds()
			pixels := bounds.Dx() * bounds.Dy()
			if pixels > 0 && float64(len(fileBytes))/float64(pixels) < SocialRecompressionBPP {
				res.challenges = append(res.challenges, domain.Challenge{
					Kind:         domain.ChallengeFalsePositive,
					TargetSource: domain.SourceForensic,
					Challenge: "The resave anomaly may be the result of legitimate repeated compression " +
						"(social media or messaging platforms). The compression ratio indicates multiple saves.",
					Severity: domain.SeverityMedium,
					Impact:   "The forensic score may be too low (false positive).",
				})
				adj := FalsePositiveAdjustment
				res.adjustment = &adj
			}
		}
	}

	if hasAnomalyType(forensic.Anomalies, domain.AnomalyMetadata) {
		res.challenges = append(res.challenges, domain.Challenge{
			Kind:         domain.ChallengeFalsePositive,
			TargetSource: domain.SourceForensic,
			Challenge: "Missing metadata does not necessarily indicate forgery. " +
				"Many platforms strip metadata automatically regardless of tampering.",
			Severity: domain.SeverityLow,
			Impact:   "Missing metadata alone is not sufficient evidence.",
		})
	}

	return res
}

// checkFalseNegatives looks for what the sources may have missed.
func (e *Engine) checkFalseNegatives(opinions []domain.OpinionRecord) moduleResult {
	var res moduleResult

	for _, op := range opinions {
		if len(op.Anomalies) == 0 && op.Confidence > NoFindingsConfidence {
			res.blindSpots = append(res.blindSpots, domain.BlindSpot{
				Source: string(op.SourceKind),
				Issue: fmt.Sprintf("Source %s reported high confidence (%.0f%%) with no findings. Did it look hard enough?",
					op.SourceKind, op.Confidence*100),
				Risk: domain.RiskFalseNegative,
			})
		}
	}

	var allTypes []string
	hasAIGen := false
	for _, op := range opinions {
		if op.SourceKind == domain.SourceAIGeneration {
			hasAIGen = true
		}
		for _, an := range op.Anomalies {
			allTypes = append(allTypes, an.Type)
		}
	}

	if !strings.Contains(strings.ToLower(strings.Join(allTypes, " ")), "clone") {
		res.blindSpots = append(res.blindSpots, domain.BlindSpot{
			Source: "system",
			Issue: "No copy-move/clone detection was performed. A common forgery technique " +
				"that can slip past the current sources.",
			Risk: domain.RiskMissingCapability,
		})
	}

	if !hasAIGen {
		res.blindSpots = append(res.blindSpots, domain.BlindSpot{
			Source: "system",
			Issue:  "The AI-generation detector did not run. GAN/diffusion images may pass undetected.",
			Risk:   domain.RiskMissingAgent,
		})
	}

	return res
}

// checkCrossConsistency compares per-source confidences against each other.
func (e *Engine) checkCrossConsistency(opinions []domain.OpinionRecord) moduleResult {
	var res moduleResult

	// One confidence per source kind; a later record for the same kind wins.
	var kinds []domain.SourceKind
	scores := make(map[domain.SourceKind]float64)
	for _, op := range opinions {
		if _, seen := scores[op.SourceKind]; !seen {
			kinds = append(kinds, op.SourceKind)
		}
		scores[op.SourceKind] = op.Confidence
	}

	if len(kinds) >= 2 {
		highKind, lowKind := kinds[0], kinds[0]
		for _, k := range kinds[1:] {
			if scores[k] > scores[highKind] {
				highKind = k
			}
			if scores[k] < scores[lowKind] {
				lowKind = k
			}
		}
		gap := scores[highKind] - scores[lowKind]

		if gap > ConsistencyGapThreshold {
			res.challenges = append(res.challenges, domain.Challenge{
				Kind: domain.ChallengeConsistencyGap,
				Challenge: fmt.Sprintf("Significant gap (%.0f%%) between %s (%.0f%%) and %s (%.0f%%). One of them may be wrong.",
					gap*100, highKind, scores[highKind]*100, lowKind, scores[lowKind]*100),
				Severity: domain.SeverityHigh,
				Impact:   "The weighted score may be misleading.",
			})
			adj := ConsistencyAdjustment
			res.adjustment = &adj
		}
	}

	forensicScore, ok := scores[domain.SourceForensic]
	if !ok {
		forensicScore = 0.5
	}
	contextualScore, ok := scores[domain.SourceContextual]
	if !ok {
		contextualScore = 0.5
	}
	if math.Abs(forensicScore-contextualScore) > CrossDisagreeThreshold {
		res.challenges = append(res.challenges, domain.Challenge{
			Kind: domain.ChallengeCrossDisagreement,
			Challenge: "The forensic and contextual sources disagree. Either a sophisticated forgery " +
				"passed one layer, or the other layer produced a false positive.",
			Severity: domain.SeverityMedium,
			Impact:   "Manual review of the overlap is required.",
		})
	}

	return res
}

// checkEdgeCases flags inputs the pipeline handles poorly: tiny images,
// very large images, grayscale, and undecodable files.
func (e *Engine) checkEdgeCases(fileBytes []byte) moduleResult {
	var res moduleResult

	img, _, err := image.Decode(bytes.NewReader(fileBytes))
	if err != nil {
		res.challenges = append(res.challenges, domain.Challenge{
			Kind:      domain.ChallengeParseError,
			Challenge: "The file could not be parsed for edge-case analysis.",
			Severity:  domain.SeverityLow,
			Impact:    "Edge-case checks were skipped.",
		})
		return res
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w < MinReliableDimension || h < MinReliableDimension {
		res.challenges = append(res.challenges, domain.Challenge{
			Kind: domain.ChallengeLowResolution,
			Challenge: fmt.Sprintf("Image resolution is low (%dx%d). Error-level and artifact analysis is less reliable on small images.",
				w, h),
			Severity: domain.SeverityHigh,
			Impact:   "All findings should be treated with caution.",
		})
	}

	if w > MaxExpectedDimension || h > MaxExpectedDimension {
		res.recommendations = append(res.recommendations,
			"Very high resolution image: consider checking for cropping from a larger original.")
	}

	if isGrayscale(img) {
		res.challenges = append(res.challenges, domain.Challenge{
			Kind:      domain.ChallengeGrayscale,
			Challenge: "Grayscale image. Color, lighting and some AI checks are less reliable.",
			Severity:  domain.SeverityMedium,
			Impact:    "The physical and contextual sources may miss anomalies.",
		})
	}

	return res
}

// challengeVerdict disputes the preliminary call when it contradicts the
// evidence: an authentic verdict alongside high-severity anomalies, or a
// forged verdict alongside a high confidence score.
func (e *Engine) challengeVerdict(cross domain.CrossReferenceResult, opinions []domain.OpinionRecord) []domain.Challenge {
	var challenges []domain.Challenge

	if cross.PreliminaryVerdict == domain.VerdictAuthentic {
		totalHigh := 0
		for _, op := range opinions {
			for _, an := range op.Anomalies {
				if an.Severity == domain.SeverityHigh {
					totalHigh++
				}
			}
		}
		if totalHigh > 0 {
			challenges = append(challenges, domain.Challenge{
				Kind: domain.ChallengeVerdict,
				Challenge: fmt.Sprintf("Verdict 'authentic' despite %d high-severity anomalies. Is the weighting miscalibrated?",
					totalHigh),
				Severity: domain.SeverityHigh,
				Impact:   "Could be a dangerous false negative.",
			})
		}
	}

	if cross.PreliminaryVerdict == domain.VerdictForged && cross.CombinedScore > VerdictScoreCeiling {
		challenges = append(challenges, domain.Challenge{
			Kind: domain.ChallengeVerdict,
			Challenge: fmt.Sprintf("Verdict 'forged' but the confidence score is high (%.0f%%). A high score should indicate authenticity.",
				cross.CombinedScore*100),
			Severity: domain.SeverityMedium,
			Impact:   "The score and verdict contradict each other.",
		})
	}

	return challenges
}

func (e *Engine) generateRecommendations(challenges []domain.Challenge, blindSpots []domain.BlindSpot) []string {
	var recs []string

	highChallenges := 0
	for _, c := range challenges {
		if c.Severity == domain.SeverityHigh {
			highChallenges++
		}
	}
	if highChallenges > 0 {
		recs = append(recs, "High-severity challenges were raised: a HITL expert should be brought in for verification.")
	}

	if len(blindSpots) >= 2 {
		recs = append(recs, "Multiple blind spots identified. Consider expanding the source set (clone detection, frequency analysis).")
	}

	if e.history.Len() >= TrendWindow {
		recent := e.history.Recent(TrendWindow)
		total := 0
		for _, entry := range recent {
			total += entry.ChallengeCount
		}
		avg := float64(total) / float64(len(recent))
		if avg > TrendChallengeAverage {
			recs = append(recs, fmt.Sprintf(
				"The last %d analyses averaged %.1f challenges each. The system may be over-sensitive.",
				TrendWindow, avg))
		}
	}

	return recs
}

// threatLevel summarizes how unreliable the current verdict is. It is
// monotone non-decreasing in the high-challenge count and in the combined
// challenge + blind-spot total.
func threatLevel(challenges []domain.Challenge, blindSpots []domain.BlindSpot) domain.ThreatLevel {
	high := 0
	for _, c := range challenges {
		if c.Severity == domain.SeverityHigh {
			high++
		}
	}
	total := len(challenges) + len(blindSpots)

	switch {
	case high >= HighThreatChallengeCount || total >= HighThreatTotal:
		return domain.ThreatHigh
	case high >= 1 || total >= MediumThreatTotal:
		return domain.ThreatMedium
	default:
		return domain.ThreatLow
	}
}

func buildSummary(challenges []domain.Challenge, blindSpots []domain.BlindSpot, recs []string, threat domain.ThreatLevel) string {
	parts := []string{
		fmt.Sprintf("Red team identified %d challenges and %d blind spots.", len(challenges), len(blindSpots)),
		fmt.Sprintf("Threat level: %s.", threat),
	}
	if len(recs) > 0 {
		parts = append(parts, fmt.Sprintf("%d improvements recommended.", len(recs)))
	}
	return strings.Join(parts, " ")
}

func findOpinion(opinions []domain.OpinionRecord, kind domain.SourceKind) *domain.OpinionRecord {
	for i := range opinions {
		if opinions[i].SourceKind == kind {
			return &opinions[i]
		}
	}
	return nil
}

func hasAnomalyType(anomalies []domain.Anomaly, typ string) bool {
	for _, an := range anomalies {
		if an.Type == typ {
			return true
		}
	}
	return false
}

func isGrayscale(img image.Image) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return true
	}
	return false
}
