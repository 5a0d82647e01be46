package forensic

import (
	"bytes"
	"context"
	"image"
	"math"

	// Register decoders for the image formats the analyzer accepts.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/verisight-labs/verisight/internal/domain"
	"go.uber.org/zap"
)

// Scoring and detection thresholds. These are part of the analyzer's
// contract: changing them changes verdicts, so they are tuned and tested
// as data, independent of control flow.
const (
	// Confidence scoring
	BaseConfidence = 0.92 // no anomalies found
	MinConfidence  = 0.15 // floor after penalties
	PenaltyHigh    = 0.15 // per high-severity anomaly
	PenaltyMedium  = 0.08 // per medium-severity anomaly
	PenaltyLow     = 0.03 // per low-severity anomaly

	// Resave-artifact (error-level) analysis
	ResaveQuality      = 95   // re-encode quality for the difference map
	ResaveGridSize     = 4    // difference map partitioned into 4x4 regions
	ResaveRegionRatio  = 2.5  // region mean must exceed this multiple of the grid mean
	ResaveRegionFloor  = 15.0 // and this absolute error level
	ResaveStdThreshold = 20.0 // global std above this flags mixed compression history

	// Compression analysis
	QuantTableStdThreshold = 25.0 // quantization value spread indicating double compression
	JPEGBytesPerPixelFloor = 0.1  // below this a JPEG has been re-saved repeatedly
)

// severityPenalties maps anomaly severity to its confidence penalty.
var severityPenalties = map[domain.Severity]float64{
	domain.SeverityHigh:   PenaltyHigh,
	domain.SeverityMedium: PenaltyMedium,
	domain.SeverityLow:    PenaltyLow,
}

// Analyzer extracts deterministic manipulation signals from image bytes.
// It is pure and side-effect free: identical bytes always yield an
// identical opinion record.
type Analyzer struct {
	logger *zap.Logger
}

func NewAnalyzer(logger *zap.Logger) *Analyzer {
	return &Analyzer{logger: logger}
}

func (a *Analyzer) Kind() domain.SourceKind {
	return domain.SourceForensic
}

// Analyze runs the metadata, resave-artifact, compression and dimension
// checks and scores the result. It never fails past this boundary: an
// undecodable input yields a degraded record instead of an error.
func (a *Analyzer) Analyze(ctx context.Context, fileBytes []byte, filename string) (*domain.OpinionRecord, error) {
	img, format, err := image.Decode(bytes.NewReader(fileBytes))
	if err != nil {
		a.logger.Debug("forensic analyzer: undecodable input",
			zap.String("filename", filename), zap.Error(err))
		return &domain.OpinionRecord{
			SourceKind: domain.SourceForensic,
			Confidence: 0.5,
			Findings:   map[string]any{},
			Anomalies: []domain.Anomaly{{
				Type:        domain.AnomalyFormat,
				Description: "File could not be decoded as an image.",
				Severity:    domain.SeverityMedium,
			}},
		}, nil
	}

	var anomalies []domain.Anomaly
	findings := make(map[string]any)

	metaAnomalies, metaFindings := analyzeMetadata(fileBytes)
	anomalies = append(anomalies, metaAnomalies...)
	findings["metadata"] = metaFindings

	resaveAnomalies, resaveFindings := analyzeResave(img)
	anomalies = append(anomalies, resaveAnomalies...)
	findings["resave"] = resaveFindings

	compAnomalies, compFindings := analyzeCompression(fileBytes, img, format)
	anomalies = append(anomalies, compAnomalies...)
	findings["compression"] = compFindings

	dimAnomalies, dimFindings := analyzeDimensions(img)
	anomalies = append(anomalies, dimAnomalies...)
	findings["dimensions"] = dimFindings

	return &domain.OpinionRecord{
		SourceKind: domain.SourceForensic,
		Confidence: scoreConfidence(anomalies),
		Findings:   findings,
		Anomalies:  anomalies,
	}, nil
}

// scoreConfidence applies the monotonic penalty law: base confidence minus a
// per-anomaly penalty, floored. Deliberately simple and explainable -- the
// anomaly list fully determines the score.
func scoreConfidence(anomalies []domain.Anomaly) float64 {
	if len(anomalies) == 0 {
		return BaseConfidence
	}
	penalty := 0.0
	for _, an := range anomalies {
		penalty += severityPenalties[an.Severity]
	}
	return math.Max(MinConfidence, round2(BaseConfidence-penalty))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
