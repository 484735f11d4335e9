// Package walkforward tiles a series into consecutive (test, target) block
// pairs. Parameters estimated on a test block are applied to the block that
// immediately follows it.
package walkforward

import (
	"time"

	"github.com/newthinker/pairlab/internal/core"
	"github.com/newthinker/pairlab/internal/series"
)

// Range is an inclusive timestamp range.
type Range struct {
	Start time.Time
	End   time.Time
}

// Window pairs a test block with the target block that follows it.
type Window struct {
	Index        int
	Test         series.Series
	Target       series.Series
	TestPeriod   Range
	TargetPeriod Range
}

// Count returns how many windows Partition emits for a series of length n.
func Count(n, windowSize int) int {
	if windowSize < 1 || n < windowSize {
		return 0
	}
	return (n - windowSize) / windowSize
}

// Partition splits s into non-overlapping blocks of windowSize and pairs
// block i (test) with block i+1 (target). A trailing remainder shorter than
// windowSize is dropped; series shorter than two blocks yield no windows.
func Partition(s series.Series, windowSize int) ([]Window, error) {
	if windowSize < 1 {
		return nil, core.Errorf(core.ErrInvalidWindow, "got %d", windowSize)
	}

	total := s.Len()
	n := Count(total, windowSize)
	windows := make([]Window, 0, n)

	for i := 0; i < n; i++ {
		startTest := i * windowSize
		endTest := startTest + windowSize
		startTarget := endTest
		endTarget := startTarget + windowSize

		if endTarget > total {
			break
		}

		windows = append(windows, Window{
			Index:        i,
			Test:         s.Slice(startTest, endTest),
			Target:       s.Slice(startTarget, endTarget),
			TestPeriod:   Range{Start: s.Times[startTest], End: s.Times[endTest-1]},
			TargetPeriod: Range{Start: s.Times[startTarget], End: s.Times[endTarget-1]},
		})
	}

	return windows, nil
}
