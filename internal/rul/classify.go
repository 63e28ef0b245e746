package rul

import "math"

// Fixed classification thresholds. These are product choices, not hardware limits.
const (
	healthyAbove = 70.0
	warningAbove = 40.0

	daysPerRULPoint = 0.3

	overheatTemperature = 75.0
	abnormalVibration   = 3.0
	overloadCurrent     = 25.0
)

const (
	CauseOverheating = "Overheating detected"
	CauseVibration   = "Abnormal vibration patterns"
	CauseOverload    = "Electrical overload"
	CauseNormal      = "Normal operation"
)

// ClampRUL bounds a raw regressor output to [0,100].
func ClampRUL(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

// StatusFor maps a RUL estimate to its status and risk tier.
func StatusFor(rul float64) (Status, RiskLevel) {
	switch {
	case rul > healthyAbove:
		return StatusHealthy, RiskLow
	case rul > warningAbove:
		return StatusWarning, RiskMedium
	default:
		return StatusCritical, RiskHigh
	}
}

// DaysUntilFailure converts RUL to calendar days, never below 1.
func DaysUntilFailure(rul float64) int {
	d := int(math.Floor(rul * daysPerRULPoint))
	if d < 1 {
		return 1
	}
	return d
}

// RootCauses evaluates the raw readings against fixed thresholds, independent
// of the regressor output.
func RootCauses(v SensorFeatureVector) []string {
	var causes []string
	if v.Temperature > overheatTemperature {
		causes = append(causes, CauseOverheating)
	}
	if v.Vibration > abnormalVibration {
		causes = append(causes, CauseVibration)
	}
	if v.Current > overloadCurrent {
		causes = append(causes, CauseOverload)
	}
	if len(causes) == 0 {
		causes = append(causes, CauseNormal)
	}
	return causes
}

// Classify builds the full assessment for an already clamped RUL value.
func Classify(rul float64, features SensorFeatureVector, heldOutAccuracy float64) HealthAssessment {
	rul = ClampRUL(rul)
	status, risk := StatusFor(rul)
	return HealthAssessment{
		RUL:              rul,
		HealthScore:      rul,
		Status:           status,
		RiskLevel:        risk,
		DaysUntilFailure: DaysUntilFailure(rul),
		RootCauses:       RootCauses(features),
		ModelConfidence:  AccuracyPercent(heldOutAccuracy),
	}
}

// AccuracyPercent publishes a held-out R² as a percentage in [0,100].
func AccuracyPercent(r2 float64) float64 {
	if math.IsNaN(r2) {
		return 0
	}
	return math.Max(0, math.Min(100, r2*100))
}
