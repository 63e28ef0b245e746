package rul

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

const Algorithm = "Random Forest Regressor"

var (
	ErrInsufficientData = errors.New("dataset too small to train")
	ErrNonFiniteSample  = errors.New("sample has a non-finite value")
)

type TrainOptions struct {
	Forest ForestParams
	// TestSize is the held-out fraction used for the scaler split and R².
	TestSize float64
	Seed     int64
}

// TrainedModel is immutable once returned by Train.
type TrainedModel struct {
	Fitted          bool      `json:"fitted"`
	Scaler          Scaler    `json:"scaler"`
	Forest          *Forest   `json:"forest"`
	HeldOutAccuracy float64   `json:"held_out_accuracy"`
	DatasetSize     int       `json:"dataset_size"`
	TrainSize       int       `json:"train_size"`
	TestSize        int       `json:"test_size"`
	TrainedAt       time.Time `json:"trained_at"`
}

// Train shuffles samples with a seeded source, fits the scaler and forest on
// the training split and scores R² on the scaled test split.
func Train(ctx context.Context, samples []Sample, opts TrainOptions) (*TrainedModel, error) {
	if len(samples) < 4 {
		return nil, ErrInsufficientData
	}
	for i, s := range samples {
		if !finite(s.RUL) || !finite(s.Features.Temperature) || !finite(s.Features.Vibration) || !finite(s.Features.Current) {
			return nil, fmt.Errorf("sample %d: %w", i, ErrNonFiniteSample)
		}
	}
	testFrac := opts.TestSize
	if testFrac <= 0 || testFrac >= 1 {
		testFrac = 0.2
	}

	perm := rand.New(rand.NewSource(opts.Seed)).Perm(len(samples))
	nTest := int(math.Ceil(float64(len(samples))*testFrac - 1e-9))
	if nTest >= len(samples) {
		nTest = len(samples) - 1
	}
	testIdx, trainIdx := perm[:nTest], perm[nTest:]

	xTrain := make([][numFeatures]float64, len(trainIdx))
	yTrain := make([]float64, len(trainIdx))
	for i, j := range trainIdx {
		xTrain[i] = samples[j].Features.array()
		yTrain[i] = samples[j].RUL
	}
	xTest := make([][numFeatures]float64, len(testIdx))
	yTest := make([]float64, len(testIdx))
	for i, j := range testIdx {
		xTest[i] = samples[j].Features.array()
		yTest[i] = samples[j].RUL
	}

	scaler := FitScaler(xTrain)
	forestParams := opts.Forest
	if forestParams.Seed == 0 {
		forestParams.Seed = opts.Seed
	}
	forest, err := FitForest(ctx, scaler.TransformAll(xTrain), yTrain, forestParams)
	if err != nil {
		return nil, fmt.Errorf("fit forest: %w", err)
	}

	scaledTest := scaler.TransformAll(xTest)
	pred := make([]float64, len(scaledTest))
	for i, x := range scaledTest {
		pred[i] = forest.Predict(x)
	}

	return &TrainedModel{
		Fitted:          true,
		Scaler:          scaler,
		Forest:          forest,
		HeldOutAccuracy: R2(yTest, pred),
		DatasetSize:     len(samples),
		TrainSize:       len(trainIdx),
		TestSize:        len(testIdx),
		TrainedAt:       time.Now().UTC(),
	}, nil
}

// Predict scores one reading. It never returns a partial assessment.
func Predict(features SensorFeatureVector, model *TrainedModel) (HealthAssessment, error) {
	if model == nil || !model.Fitted || model.Forest == nil {
		return HealthAssessment{}, ErrModelNotReady
	}
	raw := model.Forest.Predict(model.Scaler.Transform(features.array()))
	return Classify(ClampRUL(raw), features, model.HeldOutAccuracy), nil
}

// Rounded returns the assessment with scores published at one decimal place.
func (a HealthAssessment) Rounded() HealthAssessment {
	a.RUL = round1(a.RUL)
	a.HealthScore = round1(a.HealthScore)
	a.ModelConfidence = round1(a.ModelConfidence)
	return a
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func round1(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

// Engine holds the process-wide model. Reads are lock-free; the model is
// swapped in whole after training.
type Engine struct {
	model atomic.Pointer[TrainedModel]
}

func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) Load(m *TrainedModel) {
	e.model.Store(m)
}

func (e *Engine) Model() *TrainedModel {
	return e.model.Load()
}

func (e *Engine) Ready() bool {
	m := e.model.Load()
	return m != nil && m.Fitted
}

func (e *Engine) Predict(features SensorFeatureVector) (HealthAssessment, error) {
	return Predict(features, e.model.Load())
}

type ModelStatus struct {
	Trained     bool     `json:"trained"`
	Accuracy    float64  `json:"accuracy"`
	Features    []string `json:"features"`
	Algorithm   string   `json:"algorithm"`
	NEstimators int      `json:"n_estimators"`
	DatasetSize int      `json:"dataset_size"`
}

func (e *Engine) Status() ModelStatus {
	st := ModelStatus{Features: FeatureNames, Algorithm: Algorithm}
	m := e.model.Load()
	if m == nil || !m.Fitted {
		return st
	}
	st.Trained = true
	st.Accuracy = decimal.NewFromFloat(AccuracyPercent(m.HeldOutAccuracy)).Round(2).InexactFloat64()
	st.DatasetSize = m.DatasetSize
	if m.Forest != nil {
		st.NEstimators = len(m.Forest.Trees)
	}
	return st
}
