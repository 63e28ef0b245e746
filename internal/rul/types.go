// Package rul turns raw sensor readings into a remaining-useful-life estimate
// and a health classification.
package rul

import "errors"

// ErrModelNotReady is returned by Predict when no trained model exists.
var ErrModelNotReady = errors.New("model not trained")

// FeatureNames lists the regressor inputs in column order.
var FeatureNames = []string{"temperature", "vibration", "current"}

const numFeatures = 3

// SensorFeatureVector is one raw, unscaled reading. Out-of-distribution values
// are accepted and scored.
type SensorFeatureVector struct {
	Temperature float64 `json:"temperature"`
	Vibration   float64 `json:"vibration"`
	Current     float64 `json:"current"`
}

func (v SensorFeatureVector) array() [numFeatures]float64 {
	return [numFeatures]float64{v.Temperature, v.Vibration, v.Current}
}

// Sample is a labelled training row.
type Sample struct {
	Features SensorFeatureVector
	RUL      float64
}

type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Severity orders risk levels for sorting, most urgent first.
func (r RiskLevel) Severity() int {
	switch r {
	case RiskHigh:
		return 0
	case RiskMedium:
		return 1
	case RiskLow:
		return 2
	default:
		return 3
	}
}

// HealthAssessment is derived per request and never stored by this package.
type HealthAssessment struct {
	RUL              float64   `json:"rul"`
	HealthScore      float64   `json:"health_score"`
	Status           Status    `json:"status"`
	RiskLevel        RiskLevel `json:"risk_level"`
	DaysUntilFailure int       `json:"days_until_failure"`
	RootCauses       []string  `json:"root_causes"`
	ModelConfidence  float64   `json:"model_confidence"`
}
