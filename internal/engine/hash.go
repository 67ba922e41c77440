package engine

import (
	"time"

	"github.com/abupet/reco-engine/pkg/utils"
)

// Hash31 is the fixed 32-bit string hash used for tie-break rotation:
// h = h*31 + byte, with unsigned 32-bit wraparound. Other services
// reimplement the same algorithm to reproduce a day's selection, so the
// algorithm must never change.
func Hash31(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = h*31 + uint32(s[i])
	}
	return h
}

// TieBreakIndex returns the rotation index for a pet on a calendar day.
// Stable for a given (petID, day) pair, rotating day to day and across pets.
func TieBreakIndex(petID string, day time.Time, size int) int {
	if size <= 1 {
		return 0
	}
	return int(Hash31(petID+utils.DayKey(day)) % uint32(size))
}
