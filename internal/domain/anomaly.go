package domain

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func ValidSeverity(s string) bool {
	switch Severity(s) {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// Anomaly type tags shared between the forensic analyzer and the critique engine.
const (
	AnomalyFormat            = "format"
	AnomalyMetadata          = "metadata"
	AnomalyEditingSoftware   = "editing_software"
	AnomalyTimestamp         = "timestamp"
	AnomalyResave            = "resave"
	AnomalyDoubleCompression = "double_compression"
	AnomalyCompression       = "compression"
	AnomalyDimensions        = "dimensions"
	AnomalyAIGenerated       = "ai_generated"
)

// Location is a position on the media in percentage coordinates (0-100).
type Location struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Anomaly is a single manipulation signal. Immutable once created.
type Anomaly struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
	Location    *Location `json:"location,omitempty"`
}
