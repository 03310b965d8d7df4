package spin

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// DefaultWinnableValues are the prizes a draw can actually land on. Every
// draw wins one of these, each with equal probability.
var DefaultWinnableValues = []int64{10, 20, 30, 40, 50}

// DefaultDisplaySegments is the ordered wheel face shown to the shopper. The
// values beyond the winnable set are visual decoys; keeping the two sets
// separate is what makes losing look plausible while the draw itself always
// pays out. Collapsing them into one set would change the odds the wheel
// communicates.
var DefaultDisplaySegments = []int64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

// Outcome is a resolved draw: the discount value and the wheel segment the
// pointer must land on to display it.
type Outcome struct {
	Value        int64 `json:"value"`
	SegmentIndex int   `json:"segment_index"`
}

// Draw samples uniformly from winnable and locates the result within the
// display segments.
func Draw(winnable, segments []int64) (Outcome, error) {
	if len(winnable) == 0 {
		return Outcome{}, fmt.Errorf("winnable set is empty")
	}

	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(winnable))))
	if err != nil {
		return Outcome{}, fmt.Errorf("sampling draw: %w", err)
	}
	value := winnable[n.Int64()]

	for i, segment := range segments {
		if segment == value {
			return Outcome{Value: value, SegmentIndex: i}, nil
		}
	}
	return Outcome{}, fmt.Errorf("winnable value %d missing from display segments", value)
}
