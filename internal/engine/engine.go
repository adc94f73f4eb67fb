// Package engine loads serialized model artifacts and runs fake-news
// inference over them. An Engine is built once at startup from a vectorizer
// and a classifier artifact, then shared read-only by every request.
package engine

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrInference marks a classification that failed after the model loaded
// successfully. Callers report it without touching any stored state.
var ErrInference = errors.New("inference failed")

// Verdict is the binary credibility label produced by the classifier.
type Verdict string

const (
	VerdictReal Verdict = "real"
	VerdictFake Verdict = "fake"
)

// Result is the outcome of one classification. Confidence is a percentage in
// [0, 100] and is nil when the loaded model kind has no calibrated
// probabilities.
type Result struct {
	Verdict    Verdict
	Confidence *float64
}

// Info describes the loaded model for status reporting.
type Info struct {
	Kind       string `json:"kind"`
	Dimension  int    `json:"dimension"`
	Confidence bool   `json:"confidence"`
}

// Engine pairs a fitted vectorizer with a fitted classifier. It is immutable
// after construction and safe for concurrent use.
type Engine struct {
	vectorizer *Vectorizer
	classifier Classifier
	proba      ProbabilityClassifier // nil when the model kind is margin-only
	labels     [2]Verdict
}

// Load reads vectorizer.json and classifier.json from dir and builds an
// Engine. A missing file yields ErrArtifactMissing, a malformed or
// inconsistent one ErrArtifactInvalid; both are fatal to startup.
func Load(dir string) (*Engine, error) {
	var va VectorizerArtifact
	if err := readArtifact(filepath.Join(dir, vectorizerFile), &va); err != nil {
		return nil, err
	}
	var ca ClassifierArtifact
	if err := readArtifact(filepath.Join(dir, classifierFile), &ca); err != nil {
		return nil, err
	}
	return New(va, ca)
}

// New builds an Engine from already-decoded artifacts. Load is the
// file-backed entry point; tests construct engines directly.
func New(va VectorizerArtifact, ca ClassifierArtifact) (*Engine, error) {
	vectorizer, err := NewVectorizer(va)
	if err != nil {
		return nil, err
	}
	classifier, err := newClassifier(ca)
	if err != nil {
		return nil, err
	}
	if classifier.Dimension() != vectorizer.Dimension() {
		return nil, fmt.Errorf("%w: classifier expects %d features, vectorizer produces %d",
			ErrArtifactInvalid, classifier.Dimension(), vectorizer.Dimension())
	}
	labels, err := parseLabels(ca.Labels)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		vectorizer: vectorizer,
		classifier: classifier,
		labels:     labels,
	}
	// Capability is decided once here, by the model kind.
	e.proba, _ = classifier.(ProbabilityClassifier)
	return e, nil
}

// Classify vectorizes text and predicts its verdict. When the model supports
// calibrated probabilities the result carries a confidence percentage.
func (e *Engine) Classify(text string) (Result, error) {
	fv := e.vectorizer.Transform(text)
	if e.proba != nil {
		class, p, err := e.proba.PredictProba(fv)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrInference, err)
		}
		confidence := p * 100
		return Result{Verdict: e.labels[class], Confidence: &confidence}, nil
	}
	class, err := e.classifier.Predict(fv)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInference, err)
	}
	return Result{Verdict: e.labels[class]}, nil
}

// SupportsConfidence reports whether Classify results carry a confidence
// value.
func (e *Engine) SupportsConfidence() bool { return e.proba != nil }

// Info reports the loaded model's kind and feature dimension.
func (e *Engine) Info() Info {
	return Info{
		Kind:       e.classifier.Kind(),
		Dimension:  e.classifier.Dimension(),
		Confidence: e.proba != nil,
	}
}
