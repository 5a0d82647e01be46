package vision

import (
	"encoding/json"
	"strings"

	"github.com/verisight-labs/verisight/internal/domain"
)

// visionOpinion is the JSON shape the physical and contextual prompts
// demand from the model.
type visionOpinion struct {
	Anomalies  []domain.Anomaly `json:"anomalies"`
	Confidence float64          `json:"confidence_score"`
	Summary    string           `json:"summary"`
}

// aiGenOpinion is the JSON shape the AI-generation prompt demands.
type aiGenOpinion struct {
	IsAIGenerated bool             `json:"is_ai_generated"`
	LikelyTool    string           `json:"likely_tool"`
	Confidence    float64          `json:"confidence"`
	Indicators    []domain.Anomaly `json:"indicators"`
	Summary       string           `json:"summary"`
}

// stripFences removes markdown code fences that models wrap JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func parseVisionOpinion(raw string) (*visionOpinion, bool) {
	var parsed visionOpinion
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		return nil, false
	}
	return &parsed, true
}

func parseAIGenOpinion(raw string) (*aiGenOpinion, bool) {
	var parsed aiGenOpinion
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		return nil, false
	}
	return &parsed, true
}
