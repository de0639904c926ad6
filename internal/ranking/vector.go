package ranking

import (
	"math"
	"strings"

	"github.com/hyperjump/kotae/pkg/utils"
)

// Vector is a sparse term-frequency vector keyed by n-gram token.
type Vector map[string]float64

// Ngrams tokenizes text into overlapping character n-grams. The text is
// lowercased, whitespace-normalized, and padded with a boundary space on each
// side so word edges produce distinct tokens. Operates on runes, not bytes,
// so Korean text tokenizes correctly. Empty text yields nil.
func Ngrams(text string, n int) []string {
	if n <= 0 {
		n = 3
	}
	t := utils.NormalizeSpace(strings.ToLower(text))
	if t == "" {
		return nil
	}
	padded := []rune(" " + t + " ")
	if len(padded) < n {
		return nil
	}
	grams := make([]string, 0, len(padded)-n+1)
	for i := 0; i+n <= len(padded); i++ {
		grams = append(grams, string(padded[i:i+n]))
	}
	return grams
}

// TermFrequency builds a log-scaled term-frequency vector: each token gets
// weight 1+ln(count), so repeats grow sub-linearly and absent tokens are
// simply missing (weight 0).
func TermFrequency(tokens []string) Vector {
	v := make(Vector, len(tokens))
	for _, tok := range tokens {
		v[tok]++
	}
	for k, c := range v {
		v[k] = 1 + math.Log(c)
	}
	return v
}

// Cosine returns the cosine similarity of two vectors in [0,1]. The dot
// product iterates the smaller vector. Returns 0 when either vector is
// empty, guarding the divide by zero.
func Cosine(a, b Vector) float64 {
	var na, nb float64
	for _, av := range a {
		na += av * av
	}
	for _, bv := range b {
		nb += bv * bv
	}
	if na == 0 || nb == 0 {
		return 0
	}

	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	var dot float64
	for k, sv := range small {
		if lv, ok := large[k]; ok {
			dot += sv * lv
		}
	}

	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
