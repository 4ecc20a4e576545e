package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

const DefaultDimensions = 256

// HashingProvider is an offline embedder. Field names are split into words, and each word plus
// each padded character trigram is hashed into a fixed number of buckets. Names that share
// words or spelling land close together.
type HashingProvider struct {
	dimensions int
}

func NewHashingProvider(dimensions int) *HashingProvider {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &HashingProvider{dimensions: dimensions}
}

func (p *HashingProvider) Model() string {
	return fmt.Sprintf("hashing-%d", p.dimensions)
}

func (p *HashingProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vector := make([]float64, p.dimensions)
	words := splitWords(text)

	for _, word := range words {
		vector[p.bucket("w:"+word)] += 2

		padded := []rune(" " + word + " ")
		for i := 0; i+3 <= len(padded); i++ {
			vector[p.bucket("t:"+string(padded[i:i+3]))]++
		}
	}

	if len(words) == 0 {
		// punctuation-only or empty names still need a non-zero vector
		vector[p.bucket("raw:"+text)] = 1
	}

	normalize(vector)
	return vector, nil
}

func (p *HashingProvider) bucket(feature string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(feature))
	return int(h.Sum32() % uint32(p.dimensions))
}

// splitWords lowercases and splits on separators and camelCase boundaries.
func splitWords(text string) []string {
	words := []string{}
	var current strings.Builder
	var prev rune

	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}

	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if unicode.IsUpper(r) && unicode.IsLower(prev) {
				flush()
			}
			current.WriteRune(unicode.ToLower(r))
		default:
			flush()
		}
		prev = r
	}
	flush()

	return words
}

func normalize(vector []float64) {
	var sum float64
	for _, v := range vector {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	magnitude := math.Sqrt(sum)
	for i := range vector {
		vector[i] /= magnitude
	}
}
