package domain

import "time"

type ThreatLevel string

const (
	ThreatLow    ThreatLevel = "low"
	ThreatMedium ThreatLevel = "medium"
	ThreatHigh   ThreatLevel = "high"
)

// Challenge kinds emitted by the critique engine.
const (
	ChallengeFalsePositive     = "false_positive_risk"
	ChallengeConsistencyGap    = "consistency_gap"
	ChallengeCrossDisagreement = "cross_disagreement"
	ChallengeLowResolution     = "low_resolution"
	ChallengeGrayscale         = "grayscale"
	ChallengeParseError        = "parse_error"
	ChallengeVerdict           = "verdict_challenge"
)

// Blind-spot risk tags.
const (
	RiskFalseNegative     = "false_negative"
	RiskMissingCapability = "missing_capability"
	RiskMissingAgent      = "missing_agent"
)

// Challenge is a critique-engine objection to a specific opinion, anomaly,
// or the verdict itself.
type Challenge struct {
	Kind         string     `json:"kind"`
	TargetSource SourceKind `json:"target_source,omitempty"`
	Challenge    string     `json:"challenge"`
	Severity     Severity   `json:"severity"`
	Impact       string     `json:"impact"`
}

// BlindSpot is a capability gap or suspicious absence of findings.
type BlindSpot struct {
	Source string `json:"source"`
	Issue  string `json:"issue"`
	Risk   string `json:"risk"`
}

// CritiqueResult is the adversarial critique engine's output for one run.
type CritiqueResult struct {
	Challenges           []Challenge `json:"challenges"`
	BlindSpots           []BlindSpot `json:"blind_spots"`
	Recommendations      []string    `json:"recommendations"`
	ConfidenceAdjustment float64     `json:"confidence_adjustment"`
	ThreatLevel          ThreatLevel `json:"threat_level"`
	Summary              string      `json:"summary"`
}

// CritiqueEntry is one append-only record in the critique history log, used
// for rolling trend recommendations.
type CritiqueEntry struct {
	Timestamp         time.Time `json:"timestamp"`
	FileHash          string    `json:"file_hash"`
	ChallengeCount    int       `json:"challenge_count"`
	BlindSpotCount    int       `json:"blind_spot_count"`
	Adjustment        float64   `json:"confidence_adjustment"`
	VerdictChallenged bool      `json:"verdict_challenged"`
}
