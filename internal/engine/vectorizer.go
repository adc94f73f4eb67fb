package engine

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// tokenPattern matches word tokens of two or more word characters, the same
// shape the fitted vocabulary was built from. Single-character tokens carry
// no weight in the model and are skipped.
var tokenPattern = regexp.MustCompile(`\b\w\w+\b`)

// FeatureVector is a sparse vectorized document: parallel index and value
// slices sorted by ascending index.
type FeatureVector struct {
	Indices []int
	Values  []float64
}

// NNZ reports the number of non-zero features.
func (fv *FeatureVector) NNZ() int { return len(fv.Indices) }

// Vectorizer maps raw text to the sparse TF-IDF feature space the classifier
// was trained on. It is immutable after construction and safe for concurrent
// use.
type Vectorizer struct {
	vocabulary  map[string]int
	idf         []float64
	lowercase   bool
	sublinearTF bool
	l2norm      bool
}

// NewVectorizer validates the artifact and builds a vectorizer from it.
func NewVectorizer(a VectorizerArtifact) (*Vectorizer, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	return &Vectorizer{
		vocabulary:  a.Vocabulary,
		idf:         a.IDF,
		lowercase:   a.Lowercase,
		sublinearTF: a.SublinearTF,
		l2norm:      a.Norm != "none",
	}, nil
}

// Dimension reports the size of the feature space.
func (v *Vectorizer) Dimension() int { return len(v.idf) }

// Transform vectorizes a single document. Tokens outside the fitted
// vocabulary are ignored; a document with no known tokens yields an empty
// vector.
func (v *Vectorizer) Transform(text string) *FeatureVector {
	if v.lowercase {
		text = strings.ToLower(text)
	}

	counts := make(map[int]float64)
	for _, token := range tokenPattern.FindAllString(text, -1) {
		if idx, ok := v.vocabulary[token]; ok {
			counts[idx]++
		}
	}

	fv := &FeatureVector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		fv.Indices = append(fv.Indices, idx)
	}
	sort.Ints(fv.Indices)

	var sumSq float64
	for _, idx := range fv.Indices {
		tf := counts[idx]
		if v.sublinearTF {
			tf = 1 + math.Log(tf)
		}
		val := tf * v.idf[idx]
		fv.Values = append(fv.Values, val)
		sumSq += val * val
	}

	if v.l2norm && sumSq > 0 {
		norm := math.Sqrt(sumSq)
		for i := range fv.Values {
			fv.Values[i] /= norm
		}
	}
	return fv
}
