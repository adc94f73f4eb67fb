package engine

import (
	"fmt"
	"math"
)

// Classifier kinds accepted in classifier artifacts.
const (
	KindLogisticRegression = "logistic_regression"
	KindLinearSVM          = "linear_svm"
)

// Classifier maps a feature vector to a binary class, 0 or 1.
type Classifier interface {
	Predict(fv *FeatureVector) (int, error)
	Dimension() int
	Kind() string
}

// ProbabilityClassifier is implemented by classifiers whose decision scores
// are calibrated probabilities. Whether a model supports it is fixed by its
// kind at load time, never probed per call.
type ProbabilityClassifier interface {
	Classifier
	PredictProba(fv *FeatureVector) (class int, probability float64, err error)
}

func newClassifier(a ClassifierArtifact) (Classifier, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	switch a.Kind {
	case KindLogisticRegression:
		return &logisticRegression{weights: a.Coefficients, intercept: a.Intercept}, nil
	case KindLinearSVM:
		return &linearSVM{weights: a.Coefficients, intercept: a.Intercept}, nil
	default:
		return nil, fmt.Errorf("%w: unknown classifier kind %q", ErrArtifactInvalid, a.Kind)
	}
}

// decision computes the signed distance w·x + b for a sparse vector against
// dense weights.
func decision(fv *FeatureVector, weights []float64, intercept float64) (float64, error) {
	score := intercept
	for i, idx := range fv.Indices {
		if idx < 0 || idx >= len(weights) {
			return 0, fmt.Errorf("feature index %d outside weight vector of length %d", idx, len(weights))
		}
		score += fv.Values[i] * weights[idx]
	}
	return score, nil
}

type logisticRegression struct {
	weights   []float64
	intercept float64
}

func (m *logisticRegression) Kind() string   { return KindLogisticRegression }
func (m *logisticRegression) Dimension() int { return len(m.weights) }

func (m *logisticRegression) Predict(fv *FeatureVector) (int, error) {
	score, err := decision(fv, m.weights, m.intercept)
	if err != nil {
		return 0, err
	}
	if score > 0 {
		return 1, nil
	}
	return 0, nil
}

// PredictProba returns the predicted class and the sigmoid-calibrated
// probability of that class, always in [0.5, 1].
func (m *logisticRegression) PredictProba(fv *FeatureVector) (int, float64, error) {
	score, err := decision(fv, m.weights, m.intercept)
	if err != nil {
		return 0, 0, err
	}
	p := sigmoid(score)
	if p > 0.5 {
		return 1, p, nil
	}
	return 0, 1 - p, nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// linearSVM predicts from an uncalibrated margin. It deliberately does not
// implement ProbabilityClassifier: a hinge-loss margin is not a probability.
type linearSVM struct {
	weights   []float64
	intercept float64
}

func (m *linearSVM) Kind() string   { return KindLinearSVM }
func (m *linearSVM) Dimension() int { return len(m.weights) }

func (m *linearSVM) Predict(fv *FeatureVector) (int, error) {
	score, err := decision(fv, m.weights, m.intercept)
	if err != nil {
		return 0, err
	}
	if score > 0 {
		return 1, nil
	}
	return 0, nil
}
