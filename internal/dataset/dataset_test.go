package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/mohith182/turbine-ai/internal/config"
)

var ref = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestGenerateSynthetic_ShapeAndBounds(t *testing.T) {
	got := GenerateSynthetic(SyntheticOptions{Machines: 5, PointsPerMachine: 20, Seed: 42, Reference: ref})
	if len(got) != 100 {
		t.Fatalf("len=%d want 100", len(got))
	}
	if got[0].MachineID != "M001" || got[99].MachineID != "M005" {
		t.Fatalf("ids first=%s last=%s", got[0].MachineID, got[99].MachineID)
	}
	if !got[19].Timestamp.Equal(ref.Add(-time.Hour)) {
		t.Fatalf("last timestamp=%v want %v", got[19].Timestamp, ref.Add(-time.Hour))
	}
	if !got[0].Timestamp.Equal(ref.Add(-20 * time.Hour)) {
		t.Fatalf("first timestamp=%v", got[0].Timestamp)
	}
	for _, r := range got {
		if r.RUL < 0 || r.RUL > 100 {
			t.Fatalf("rul=%v out of range", r.RUL)
		}
	}
}

func TestGenerateSynthetic_Deterministic(t *testing.T) {
	opts := SyntheticOptions{Machines: 3, PointsPerMachine: 10, Seed: 7, Reference: ref}
	a := GenerateSynthetic(opts)
	b := GenerateSynthetic(opts)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed produced different datasets")
	}
	opts.Seed = 8
	if reflect.DeepEqual(a, GenerateSynthetic(opts)) {
		t.Fatalf("different seeds produced the same dataset")
	}
}

func TestSamples(t *testing.T) {
	in := []Reading{{MachineID: "M001", Temperature: 50, Vibration: 1, Current: 12, RUL: 80}}
	s := Samples(in)
	if len(s) != 1 || s[0].RUL != 80 || s[0].Features.Temperature != 50 || s[0].Features.Current != 12 {
		t.Fatalf("samples=%+v", s)
	}
}

func TestLoadCSV(t *testing.T) {
	body := "machine_id,timestamp,temperature,vibration,current,rul\n" +
		"m001,2026-03-01T10:00:00Z,51.2,0.5,11.1,88.4\n" +
		"M002, 2026-03-01T11:00:00Z,77,3.4,26,12\n"
	got, err := LoadCSV(strings.NewReader(body))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len=%d", len(got))
	}
	if got[0].MachineID != "M001" || got[0].Vibration != 0.5 || got[0].RUL != 88.4 {
		t.Fatalf("row0=%+v", got[0])
	}
	if got[1].Timestamp.Hour() != 11 {
		t.Fatalf("row1 ts=%v", got[1].Timestamp)
	}
}

func TestLoadCSV_ReorderedColumns(t *testing.T) {
	body := "rul,current,vibration,temperature,timestamp,machine_id\n" +
		"40,20,2,60,2026-03-01T10:00:00Z,M009\n"
	got, err := LoadCSV(strings.NewReader(body))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got[0].MachineID != "M009" || got[0].Temperature != 60 || got[0].RUL != 40 {
		t.Fatalf("row=%+v", got[0])
	}
}

func TestLoadCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing column", "machine_id,timestamp,temperature\nM1,2026-03-01T10:00:00Z,1\n"},
		{"bad number", "machine_id,timestamp,temperature,vibration,current,rul\nM1,2026-03-01T10:00:00Z,x,1,1,1\n"},
		{"bad timestamp", "machine_id,timestamp,temperature,vibration,current,rul\nM1,yesterday,1,1,1,1\n"},
	}
	for _, tt := range tests {
		if _, err := LoadCSV(strings.NewReader(tt.body)); err == nil {
			t.Fatalf("%s: expected error", tt.name)
		}
	}
	for _, bad := range []string{"NaN", "nan", "Inf", "-Inf", "+inf"} {
		body := "machine_id,timestamp,temperature,vibration,current,rul\nM1,2026-03-01T10:00:00Z,60,1,12," + bad + "\n"
		if _, err := LoadCSV(strings.NewReader(body)); !errors.Is(err, ErrNonFinite) {
			t.Fatalf("rul %s: err=%v want ErrNonFinite", bad, err)
		}
		body = "machine_id,timestamp,temperature,vibration,current,rul\nM1,2026-03-01T10:00:00Z," + bad + ",1,12,50\n"
		if _, err := LoadCSV(strings.NewReader(body)); !errors.Is(err, ErrNonFinite) {
			t.Fatalf("temperature %s: err=%v want ErrNonFinite", bad, err)
		}
	}
	if _, err := LoadCSV(strings.NewReader("")); !errors.Is(err, ErrEmptyDataset) {
		t.Fatalf("empty err=%v", err)
	}
	if _, err := LoadCSV(strings.NewReader("machine_id,timestamp,temperature,vibration,current,rul\n")); !errors.Is(err, ErrEmptyDataset) {
		t.Fatalf("header-only err=%v", err)
	}
}

func TestLoad_Sources(t *testing.T) {
	got, err := Load(config.DatasetConfig{Source: "synthetic", Machines: 2, PointsPerMachine: 3, Seed: 1}, ref)
	if err != nil || len(got) != 6 {
		t.Fatalf("synthetic len=%d err=%v", len(got), err)
	}

	path := filepath.Join(t.TempDir(), "telemetry.csv")
	body := "machine_id,timestamp,temperature,vibration,current,rul\nM001,2026-03-01T10:00:00Z,50,1,10,90\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err = Load(config.DatasetConfig{Source: "CSV", CSVPath: path}, ref)
	if err != nil || len(got) != 1 {
		t.Fatalf("csv len=%d err=%v", len(got), err)
	}

	if _, err := Load(config.DatasetConfig{Source: "kafka"}, ref); err == nil {
		t.Fatalf("expected error for unknown source")
	}
	if _, err := Load(config.DatasetConfig{Source: "csv"}, ref); err == nil {
		t.Fatalf("expected error for csv without path")
	}
}
