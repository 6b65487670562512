package dungeon

import (
	"fmt"
	"time"

	"github.com/mossgate/delver-engine/internal/geometry"
)

// GenerationSeed builds the seed string for a door-open event. The
// timestamp is a parameter so tests can fix it; production callers pass
// the wall clock.
func GenerationSeed(pos geometry.Position, dir geometry.ExitDirection, at time.Time) string {
	return fmt.Sprintf("%d:%d:%s:%d", pos.X, pos.Y, dir, at.UnixMilli())
}

// HashSeed folds a seed string into a non-negative integer by the
// 32-bit shift-and-subtract character hash. Pure: the same seed always
// yields the same value.
func HashSeed(seed string) int {
	var h int32
	for _, c := range seed {
		h = h<<5 - h + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return int(v)
}
