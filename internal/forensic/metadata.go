package forensic

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/verisight-labs/verisight/internal/domain"
)

// editingTools is the fixed vocabulary of editor signatures matched
// case-insensitively against the EXIF Software tag.
var editingTools = []string{"photoshop", "gimp", "lightroom", "snapseed", "picsart", "canva"}

// analyzeMetadata inspects embedded capture metadata. Stripped metadata,
// editing-tool signatures and capture/modification timestamp mismatches are
// all manipulation signals.
func analyzeMetadata(fileBytes []byte) ([]domain.Anomaly, map[string]any) {
	var anomalies []domain.Anomaly
	findings := make(map[string]any)

	x, err := exif.Decode(bytes.NewReader(fileBytes))
	if err != nil {
		findings["has_exif"] = false
		anomalies = append(anomalies, domain.Anomaly{
			Type:        domain.AnomalyMetadata,
			Description: "File carries no EXIF metadata at all. Metadata may have been stripped intentionally to hide the image's origin.",
			Severity:    domain.SeverityMedium,
			Location:    &domain.Location{X: 90, Y: 10},
		})
		return anomalies, findings
	}
	findings["has_exif"] = true

	if software := tagString(x, exif.Software); software != "" {
		findings["software"] = software
		lower := strings.ToLower(software)
		for _, tool := range editingTools {
			if strings.Contains(lower, tool) {
				anomalies = append(anomalies, domain.Anomaly{
					Type:        domain.AnomalyEditingSoftware,
					Description: fmt.Sprintf("Editing software detected in metadata: %s. The image has been processed.", software),
					Severity:    domain.SeverityMedium,
					Location:    &domain.Location{X: 85, Y: 8},
				})
				break
			}
		}
	}

	dateOriginal := tagString(x, exif.DateTimeOriginal)
	dateModified := tagString(x, exif.DateTime)
	if dateOriginal != "" && dateModified != "" && dateOriginal != dateModified {
		findings["date_original"] = dateOriginal
		findings["date_modified"] = dateModified
		anomalies = append(anomalies, domain.Anomaly{
			Type:        domain.AnomalyTimestamp,
			Description: fmt.Sprintf("Gap between capture timestamp (%s) and modification timestamp (%s).", dateOriginal, dateModified),
			Severity:    domain.SeverityHigh,
			Location:    &domain.Location{X: 80, Y: 15},
		})
	}

	return anomalies, findings
}

func tagString(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	val, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(val)
}
