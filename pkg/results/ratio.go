package results

import (
	"math"
	"strconv"
)

var sizeUnits = []string{"Bytes", "KB", "MB"}

// CompressionRatio returns the percentage saved by compressed relative to
// original, rounded half toward positive infinity. Outputs larger than the
// original give negative values. A zero original yields 0.
func CompressionRatio(original, compressed int64) int {
	if original <= 0 {
		return 0
	}
	ratio := (1 - float64(compressed)/float64(original)) * 100
	return int(math.Floor(ratio + 0.5))
}

// FormatFileSize renders a byte count with two decimals at most, using
// 1024-based units up to MB
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}

	value := float64(bytes) / math.Pow(1024, float64(i))
	value = math.Round(value*100) / 100

	return strconv.FormatFloat(value, 'f', -1, 64) + " " + sizeUnits[i]
}
