package forensic

import (
	"fmt"
	"image"
	"math"

	"github.com/verisight-labs/verisight/internal/domain"
)

type size struct{ w, h int }

// aiOutputSizes are canonical output dimensions of common generative image
// models. An exact match is a synthetic-origin signal.
var aiOutputSizes = map[size]bool{
	{512, 512}: true, {768, 768}: true, {1024, 1024}: true,
	{1024, 1792}: true, {1792, 1024}: true,
	{512, 768}: true, {768, 512}: true,
	{1024, 768}: true, {768, 1024}: true,
}

func analyzeDimensions(img image.Image) ([]domain.Anomaly, map[string]any) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	findings := map[string]any{
		"width":      w,
		"height":     h,
		"megapixels": math.Round(float64(w*h)/1e6*100) / 100,
	}

	var anomalies []domain.Anomaly
	if aiOutputSizes[size{w, h}] {
		anomalies = append(anomalies, domain.Anomaly{
			Type: domain.AnomalyDimensions,
			Description: fmt.Sprintf(
				"Image dimensions (%dx%d) match typical output of generative models (DALL-E, Midjourney, Stable Diffusion).",
				w, h),
			Severity: domain.SeverityMedium,
			Location: &domain.Location{X: 10, Y: 10},
		})
	}

	return anomalies, findings
}
