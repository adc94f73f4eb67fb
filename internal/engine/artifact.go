package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

const (
	vectorizerFile = "vectorizer.json"
	classifierFile = "classifier.json"

	vectorizerFormat = "fakenews/tfidf-vectorizer"
	classifierFormat = "fakenews/linear-classifier"
	artifactVersion  = 1
)

// ErrArtifactMissing is returned by Load when a model artifact file does not
// exist. ErrArtifactInvalid is returned when a file exists but cannot be
// decoded or fails validation. Both are fatal at startup: the caller must halt
// rather than serve without a model.
var (
	ErrArtifactMissing = errors.New("model artifact missing")
	ErrArtifactInvalid = errors.New("model artifact invalid")
)

// VectorizerArtifact is the on-disk JSON form of a fitted TF-IDF vectorizer.
// It is produced by the external training pipeline and consumed read-only.
type VectorizerArtifact struct {
	Format      string         `json:"format"`
	Version     int            `json:"version"`
	Lowercase   bool           `json:"lowercase"`
	SublinearTF bool           `json:"sublinear_tf"`
	Norm        string         `json:"norm"` // "l2" or "none"
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
}

func (a *VectorizerArtifact) validate() error {
	if a.Format != vectorizerFormat {
		return fmt.Errorf("%w: unexpected vectorizer format %q", ErrArtifactInvalid, a.Format)
	}
	if a.Version != artifactVersion {
		return fmt.Errorf("%w: unsupported vectorizer version %d", ErrArtifactInvalid, a.Version)
	}
	if len(a.Vocabulary) == 0 {
		return fmt.Errorf("%w: empty vocabulary", ErrArtifactInvalid)
	}
	if len(a.IDF) != len(a.Vocabulary) {
		return fmt.Errorf("%w: idf length %d does not match vocabulary size %d",
			ErrArtifactInvalid, len(a.IDF), len(a.Vocabulary))
	}
	switch a.Norm {
	case "l2", "none", "":
	default:
		return fmt.Errorf("%w: unknown norm %q", ErrArtifactInvalid, a.Norm)
	}
	seen := make([]bool, len(a.Vocabulary))
	for term, idx := range a.Vocabulary {
		if idx < 0 || idx >= len(seen) {
			return fmt.Errorf("%w: term %q index %d out of range", ErrArtifactInvalid, term, idx)
		}
		if seen[idx] {
			return fmt.Errorf("%w: duplicate vocabulary index %d", ErrArtifactInvalid, idx)
		}
		seen[idx] = true
	}
	return nil
}

// ClassifierArtifact is the on-disk JSON form of a fitted linear classifier.
// Labels carries the external label convention (class "0"/"1" to
// "fake"/"real") fixed at training time; it is required and never inferred.
type ClassifierArtifact struct {
	Format       string            `json:"format"`
	Version      int               `json:"version"`
	Kind         string            `json:"kind"` // "logistic_regression" or "linear_svm"
	Coefficients []float64         `json:"coefficients"`
	Intercept    float64           `json:"intercept"`
	Labels       map[string]string `json:"labels"`
}

func (a *ClassifierArtifact) validate() error {
	if a.Format != classifierFormat {
		return fmt.Errorf("%w: unexpected classifier format %q", ErrArtifactInvalid, a.Format)
	}
	if a.Version != artifactVersion {
		return fmt.Errorf("%w: unsupported classifier version %d", ErrArtifactInvalid, a.Version)
	}
	switch a.Kind {
	case KindLogisticRegression, KindLinearSVM:
	default:
		return fmt.Errorf("%w: unknown classifier kind %q", ErrArtifactInvalid, a.Kind)
	}
	if len(a.Coefficients) == 0 {
		return fmt.Errorf("%w: empty coefficients", ErrArtifactInvalid)
	}
	if _, err := parseLabels(a.Labels); err != nil {
		return err
	}
	return nil
}

// parseLabels maps the artifact's label object to a class-indexed verdict
// table. Both classes must be present and must cover both verdicts.
func parseLabels(labels map[string]string) ([2]Verdict, error) {
	var out [2]Verdict
	if len(labels) != 2 {
		return out, fmt.Errorf("%w: labels must map classes 0 and 1", ErrArtifactInvalid)
	}
	for key, name := range labels {
		var class int
		switch key {
		case "0":
			class = 0
		case "1":
			class = 1
		default:
			return out, fmt.Errorf("%w: unknown label class %q", ErrArtifactInvalid, key)
		}
		switch name {
		case string(VerdictReal):
			out[class] = VerdictReal
		case string(VerdictFake):
			out[class] = VerdictFake
		default:
			return out, fmt.Errorf("%w: unknown label %q for class %s", ErrArtifactInvalid, name, key)
		}
	}
	if out[0] == out[1] {
		return out, fmt.Errorf("%w: labels must cover both verdicts", ErrArtifactInvalid)
	}
	return out, nil
}

func readArtifact(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrArtifactMissing, path)
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrArtifactInvalid, path, err)
	}
	return nil
}
