// Package similarity recommends source fields for target fields by comparing name embeddings.
package similarity

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrDimensionMismatch = errors.New("vectors have different dimensions")
	ErrZeroVector        = errors.New("cosine similarity is undefined for zero vectors")
)

// Cosine returns dot(a,b)/(|a|·|b|).
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d and %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}

	if magA == 0 || magB == 0 {
		return 0, ErrZeroVector
	}

	return dot / (math.Sqrt(magA) * math.Sqrt(magB)), nil
}

// Round4 rounds a score to four decimal places for presentation.
func Round4(score float64) float64 {
	return math.Round(score*10000) / 10000
}
