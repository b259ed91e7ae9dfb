package xp

import (
	"math"

	"github.com/julianstephens/fitlog/internal/constants"
)

// Level returns the level reached with total XP: floor(sqrt(xp/1000)) + 1.
func Level(total int64) int {
	if total < 0 {
		total = 0
	}
	return int(math.Floor(math.Sqrt(float64(total)/constants.XPLevelFactor))) + 1
}

// TotalForLevel is the cumulative XP at which level+1 begins.
func TotalForLevel(level int) int64 {
	if level < 0 {
		level = 0
	}
	return int64(level) * int64(level) * constants.XPLevelFactor
}

// NeededForNext is the XP still missing to reach the next level.
func NeededForNext(total int64) int64 {
	return TotalForLevel(Level(total)) - total
}

// Progress is how far total is through its current level, in percent.
func Progress(total int64) float64 {
	level := Level(total)
	start := TotalForLevel(level - 1)
	end := TotalForLevel(level)
	p := float64(total-start) / float64(end-start) * 100
	return math.Min(math.Max(p, 0), 100)
}
