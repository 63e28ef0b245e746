package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

var csvHeader = []string{"machine_id", "timestamp", "temperature", "vibration", "current", "rul"}

var (
	ErrEmptyDataset = errors.New("dataset has no rows")
	ErrNonFinite    = errors.New("value is not a finite number")
)

// LoadCSV reads telemetry with the header
// machine_id,timestamp,temperature,vibration,current,rul. Columns may appear
// in any order; timestamps are RFC3339.
func LoadCSV(r io.Reader) ([]Reading, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDataset
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range csvHeader {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var out []Reading
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		reading, err := parseRow(rec, col)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, reading)
	}
	if len(out) == 0 {
		return nil, ErrEmptyDataset
	}
	return out, nil
}

// LoadCSVFile opens path and parses it with LoadCSV.
func LoadCSVFile(path string) ([]Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadCSV(f)
}

func parseRow(rec []string, col map[string]int) (Reading, error) {
	get := func(name string) string { return strings.TrimSpace(rec[col[name]]) }

	id := strings.ToUpper(get("machine_id"))
	if id == "" {
		return Reading{}, errors.New("empty machine_id")
	}
	ts, err := time.Parse(time.RFC3339, get("timestamp"))
	if err != nil {
		return Reading{}, fmt.Errorf("timestamp: %w", err)
	}
	nums := make(map[string]float64, 4)
	for _, name := range []string{"temperature", "vibration", "current", "rul"} {
		v, err := strconv.ParseFloat(get(name), 64)
		if err != nil {
			return Reading{}, fmt.Errorf("%s: %w", name, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Reading{}, fmt.Errorf("%s %q: %w", name, get(name), ErrNonFinite)
		}
		nums[name] = v
	}
	return Reading{
		MachineID:   id,
		Timestamp:   ts,
		Temperature: nums["temperature"],
		Vibration:   nums["vibration"],
		Current:     nums["current"],
		RUL:         nums["rul"],
	}, nil
}
