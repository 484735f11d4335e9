package strategy

import (
	"reflect"
	"testing"
	"time"

	"github.com/newthinker/pairlab/internal/series"
	"github.com/newthinker/pairlab/internal/walkforward"
)

func hourly(values []float64) series.Series {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, len(values))
	for i := range times {
		times[i] = start.Add(time.Duration(i) * time.Hour)
	}
	return series.Series{Times: times, Values: values}
}

func TestSpreadBand_Name(t *testing.T) {
	s := New(1.5)
	if s.Name() != "spread_band" {
		t.Errorf("expected 'spread_band', got %s", s.Name())
	}
	if s.Alpha() != 1.5 {
		t.Errorf("Alpha() = %v, want 1.5", s.Alpha())
	}
	if s.Description() == "" {
		t.Error("expected description")
	}
}

func TestSpreadBand_DefaultAlpha(t *testing.T) {
	if New(0).Alpha() != DefaultAlpha {
		t.Error("zero alpha should fall back to default")
	}
	if New(-2).Alpha() != DefaultAlpha {
		t.Error("negative alpha should fall back to default")
	}
}

func TestSpreadBand_Run_ConcatenatesInWindowOrder(t *testing.T) {
	// block 0: [-1, 1, -1, 1] mean 0, std ~1.155
	// block 1: [-2, 0.5, 0.5, 0.5] -> long at -2, exit at 0.5
	// block 2: [5, 5, 5, 5] band fitted on block 1, 5 is above upper
	s := hourly([]float64{-1, 1, -1, 1, -2, 0.5, 0.5, 0.5, 5, 5, 5, 5})
	windows, err := walkforward.Partition(s, 4)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(windows))
	}

	got := New(1).Run(windows)
	want := []Signal{1, 0, 0, 0, -1, 0, 0, 0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Run() = %v, want %v", got, want)
	}
}

func TestSpreadBand_Run_NoWindows(t *testing.T) {
	if got := New(1).Run(nil); len(got) != 0 {
		t.Errorf("expected no signals, got %v", got)
	}
}
