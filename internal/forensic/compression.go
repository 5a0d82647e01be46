package forensic

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"

	"github.com/verisight-labs/verisight/internal/domain"
)

// analyzeCompression inspects the encoded byte stream itself: quantization
// table spread (double-compression signal) and the file-size to pixel-count
// ratio (repeated re-saving signal).
func analyzeCompression(fileBytes []byte, img image.Image, format string) ([]domain.Anomaly, map[string]any) {
	var anomalies []domain.Anomaly
	findings := map[string]any{
		"format":          format,
		"file_size_bytes": len(fileBytes),
	}

	if format == "jpeg" {
		tables := parseQuantizationTables(fileBytes)
		findings["quantization_tables"] = len(tables)

		if len(tables) > 0 {
			qStd := stddevInts(tables[0])
			findings["q_table_std"] = round2(qStd)

			if qStd > QuantTableStdThreshold {
				anomalies = append(anomalies, domain.Anomaly{
					Type:        domain.AnomalyDoubleCompression,
					Description: "Signs of double JPEG compression found. This can indicate the image was re-saved after editing.",
					Severity:    domain.SeverityMedium,
					Location:    &domain.Location{X: 50, Y: 85},
				})
			}
		}
	}

	bounds := img.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	if pixels > 0 {
		bpp := float64(len(fileBytes)) / float64(pixels)
		findings["bytes_per_pixel"] = math.Round(bpp*10000) / 10000

		if bpp < JPEGBytesPerPixelFloor && format == "jpeg" {
			anomalies = append(anomalies, domain.Anomaly{
				Type: domain.AnomalyCompression,
				Description: fmt.Sprintf(
					"Unusual compression ratio (%.3f bytes/pixel). The image is heavily compressed for its dimensions and may have been saved multiple times.",
					round3(bpp)),
				Severity: domain.SeverityLow,
				Location: &domain.Location{X: 15, Y: 90},
			})
		}
	}

	return anomalies, findings
}

// parseQuantizationTables walks the JPEG segment stream and collects the
// values of every DQT table, in file order. The standard library decoder
// does not expose these, so the markers are read directly.
func parseQuantizationTables(data []byte) [][]int {
	var tables [][]int
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil
	}

	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			i++
			continue
		}
		marker := data[i+1]
		// Standalone markers carry no length.
		if marker == 0xD8 || marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7) {
			i += 2
			continue
		}
		if marker == 0xD9 || marker == 0xDA { // EOI / SOS: tables precede scan data
			break
		}
		segLen := int(binary.BigEndian.Uint16(data[i+2 : i+4]))
		if segLen < 2 || i+2+segLen > len(data) {
			break
		}
		if marker == 0xDB {
			tables = append(tables, parseDQTPayload(data[i+4:i+2+segLen])...)
		}
		i += 2 + segLen
	}
	return tables
}

// parseDQTPayload decodes one DQT segment, which may hold several tables.
// The precision nibble selects 8-bit or 16-bit entries; 64 entries each way.
func parseDQTPayload(payload []byte) [][]int {
	var tables [][]int
	i := 0
	for i < len(payload) {
		precision := payload[i] >> 4
		i++
		entrySize := 1
		if precision == 1 {
			entrySize = 2
		}
		if i+64*entrySize > len(payload) {
			break
		}
		values := make([]int, 64)
		for j := 0; j < 64; j++ {
			if entrySize == 1 {
				values[j] = int(payload[i+j])
			} else {
				values[j] = int(binary.BigEndian.Uint16(payload[i+j*2 : i+j*2+2]))
			}
		}
		tables = append(tables, values)
		i += 64 * entrySize
	}
	return tables
}

func stddevInts(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += float64(v)
	}
	mean := sum / float64(len(values))

	sq := 0.0
	for _, v := range values {
		d := float64(v) - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}
