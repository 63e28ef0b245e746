package rul

import (
	"math"
	"reflect"
	"testing"
)

func TestStatusFor_Boundaries(t *testing.T) {
	tests := []struct {
		rul    float64
		status Status
		risk   RiskLevel
	}{
		{100, StatusHealthy, RiskLow},
		{71, StatusHealthy, RiskLow},
		{70.01, StatusHealthy, RiskLow},
		{70, StatusWarning, RiskMedium},
		{41, StatusWarning, RiskMedium},
		{40.5, StatusWarning, RiskMedium},
		{40, StatusCritical, RiskHigh},
		{0, StatusCritical, RiskHigh},
	}
	for _, tt := range tests {
		status, risk := StatusFor(tt.rul)
		if status != tt.status || risk != tt.risk {
			t.Fatalf("StatusFor(%v)=%s/%s want %s/%s", tt.rul, status, risk, tt.status, tt.risk)
		}
	}
}

func TestDaysUntilFailure(t *testing.T) {
	tests := []struct {
		rul  float64
		want int
	}{
		{0, 1},
		{3.2, 1},
		{6.9, 2},
		{50, 15},
		{100, 30},
	}
	for _, tt := range tests {
		if got := DaysUntilFailure(tt.rul); got != tt.want {
			t.Fatalf("DaysUntilFailure(%v)=%d want %d", tt.rul, got, tt.want)
		}
	}
}

func TestRootCauses(t *testing.T) {
	tests := []struct {
		name string
		in   SensorFeatureVector
		want []string
	}{
		{"overheat only", SensorFeatureVector{Temperature: 80}, []string{CauseOverheating}},
		{"normal", SensorFeatureVector{Temperature: 75, Vibration: 3.0, Current: 25}, []string{CauseNormal}},
		{"all three in order", SensorFeatureVector{Temperature: 90, Vibration: 4, Current: 30}, []string{CauseOverheating, CauseVibration, CauseOverload}},
		{"vibration and current", SensorFeatureVector{Temperature: 50, Vibration: 3.1, Current: 25.5}, []string{CauseVibration, CauseOverload}},
	}
	for _, tt := range tests {
		if got := RootCauses(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("%s: got=%v want=%v", tt.name, got, tt.want)
		}
	}
}

func TestClassify_LowRULWithNormalReadings(t *testing.T) {
	got := Classify(12, SensorFeatureVector{Temperature: 50, Vibration: 1, Current: 12}, 0.9)
	if got.Status != StatusCritical || got.RiskLevel != RiskHigh {
		t.Fatalf("status=%s risk=%s", got.Status, got.RiskLevel)
	}
	if !reflect.DeepEqual(got.RootCauses, []string{CauseNormal}) {
		t.Fatalf("root causes=%v", got.RootCauses)
	}
	if got.ModelConfidence != 90 {
		t.Fatalf("confidence=%v want 90", got.ModelConfidence)
	}
}

func TestClampRUL(t *testing.T) {
	if ClampRUL(-3) != 0 || ClampRUL(130) != 100 || ClampRUL(42) != 42 {
		t.Fatalf("clamp broken")
	}
}

func TestScaler_FitTransform(t *testing.T) {
	rows := [][numFeatures]float64{{1, 10, 5}, {3, 10, 7}}
	s := FitScaler(rows)
	if s.Mean != [numFeatures]float64{2, 10, 6} {
		t.Fatalf("mean=%v", s.Mean)
	}
	if s.Std != [numFeatures]float64{1, 1, 1} {
		t.Fatalf("std=%v", s.Std)
	}
	got := s.Transform([numFeatures]float64{3, 12, 4})
	if got != [numFeatures]float64{1, 2, -2} {
		t.Fatalf("transform=%v", got)
	}
}

func TestR2(t *testing.T) {
	if got := R2([]float64{1, 2, 3}, []float64{1, 2, 3}); got != 1 {
		t.Fatalf("perfect r2=%v", got)
	}
	if got := R2([]float64{1, 2, 3}, []float64{2, 2, 2}); got != 0 {
		t.Fatalf("mean-only r2=%v", got)
	}
}

func TestAccuracyPercent(t *testing.T) {
	cases := []struct {
		r2   float64
		want float64
	}{
		{0.9, 90},
		{-0.3, 0},
		{1.2, 100},
		{math.NaN(), 0},
	}
	for _, tc := range cases {
		if got := AccuracyPercent(tc.r2); got != tc.want {
			t.Fatalf("AccuracyPercent(%v)=%v want %v", tc.r2, got, tc.want)
		}
	}
}

func TestClassify_NaNAccuracy(t *testing.T) {
	a := Classify(50, SensorFeatureVector{}, math.NaN())
	if a.ModelConfidence != 0 {
		t.Fatalf("confidence=%v want 0", a.ModelConfidence)
	}
	if r := a.Rounded(); r.ModelConfidence != 0 {
		t.Fatalf("rounded=%+v", r)
	}
}
