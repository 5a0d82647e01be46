package forensic

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"math"

	"github.com/verisight-labs/verisight/internal/domain"
)

// analyzeResave performs error-level analysis: the image is re-encoded at a
// fixed high JPEG quality and the per-pixel difference against the original
// is examined. Regions that respond much more strongly than the rest of the
// image have a different compression history, which points at splicing.
func analyzeResave(img image.Image) ([]domain.Anomaly, map[string]any) {
	var anomalies []domain.Anomaly
	findings := make(map[string]any)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: ResaveQuality}); err != nil {
		findings["resave_error"] = err.Error()
		return nil, findings
	}
	resaved, err := jpeg.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		findings["resave_error"] = err.Error()
		return nil, findings
	}

	diff := differenceMap(img, resaved)
	if diff.count == 0 {
		findings["resave_error"] = "empty difference map"
		return nil, findings
	}

	findings["mean_error"] = round2(diff.mean())
	findings["max_error"] = round2(diff.max)
	findings["std_error"] = round2(diff.std())

	regionMeans := diff.regionMeans()
	if regionMeans != nil {
		findings["region_analysis"] = true

		gridMean := 0.0
		for _, m := range regionMeans {
			gridMean += m
		}
		gridMean /= float64(len(regionMeans))

		for i, m := range regionMeans {
			if gridMean > 0 && m > gridMean*ResaveRegionRatio && m > ResaveRegionFloor {
				row := i / ResaveGridSize
				col := i % ResaveGridSize
				ratio := math.Round(m/gridMean*10) / 10
				anomalies = append(anomalies, domain.Anomaly{
					Type: domain.AnomalyResave,
					Description: fmt.Sprintf(
						"Error-level outlier in region (%d,%d): error intensity %.1fx the grid average, indicating editing or splicing in this area.",
						row+1, col+1, ratio),
					Severity: domain.SeverityHigh,
					Location: &domain.Location{X: col*25 + 12, Y: row*25 + 12},
				})
			}
		}
	}

	if diff.std() > ResaveStdThreshold {
		anomalies = append(anomalies, domain.Anomaly{
			Type: domain.AnomalyResave,
			Description: fmt.Sprintf(
				"High error-level variance (%.1f) across the image, indicating inconsistent compression history between areas.",
				diff.std()),
			Severity: domain.SeverityMedium,
			Location: &domain.Location{X: 50, Y: 50},
		})
	}

	return anomalies, findings
}

// diffStats accumulates per-channel absolute differences plus per-region
// sums for the 4x4 grid.
type diffStats struct {
	sum, sumSq, max float64
	count           int64

	regionW, regionH       int
	regionSums             [ResaveGridSize * ResaveGridSize]float64
	regionCounts           [ResaveGridSize * ResaveGridSize]int64
	regionAnalysisPossible bool
}

func (d *diffStats) mean() float64 {
	if d.count == 0 {
		return 0
	}
	return d.sum / float64(d.count)
}

func (d *diffStats) std() float64 {
	if d.count == 0 {
		return 0
	}
	m := d.mean()
	return math.Sqrt(d.sumSq/float64(d.count) - m*m)
}

// regionMeans returns the mean error of each grid region in row-major
// order, or nil when the image is too small to partition.
func (d *diffStats) regionMeans() []float64 {
	if !d.regionAnalysisPossible {
		return nil
	}
	means := make([]float64, len(d.regionSums))
	for i := range d.regionSums {
		if d.regionCounts[i] > 0 {
			means[i] = d.regionSums[i] / float64(d.regionCounts[i])
		}
	}
	return means
}

// differenceMap computes absolute RGB differences between the original and
// its re-encoding. Channel values are 8-bit.
func differenceMap(orig, resaved image.Image) *diffStats {
	bounds := orig.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	d := &diffStats{
		regionW: w / ResaveGridSize,
		regionH: h / ResaveGridSize,
	}
	d.regionAnalysisPossible = d.regionW > 0 && d.regionH > 0

	rb := resaved.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			or, og, ob, _ := orig.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			rr, rg, rb2, _ := resaved.At(rb.Min.X+x, rb.Min.Y+y).RGBA()

			region := -1
			if d.regionAnalysisPossible {
				row := y / d.regionH
				col := x / d.regionW
				if row < ResaveGridSize && col < ResaveGridSize {
					region = row*ResaveGridSize + col
				}
			}

			for _, delta := range [3]float64{
				math.Abs(float64(or>>8) - float64(rr>>8)),
				math.Abs(float64(og>>8) - float64(rg>>8)),
				math.Abs(float64(ob>>8) - float64(rb2>>8)),
			} {
				d.sum += delta
				d.sumSq += delta * delta
				if delta > d.max {
					d.max = delta
				}
				d.count++
				if region >= 0 {
					d.regionSums[region] += delta
					d.regionCounts[region]++
				}
			}
		}
	}
	return d
}
