// Package leveling maps accumulated XP to a level and progress percentage.
// The threshold table is the single source of truth shared by the answer
// recorder and every display surface.
package leveling

// Thresholds holds the minimum XP for each level. Thresholds[n] is the XP
// required for level n+1, so level 1 starts at 0 XP and the max level
// starts at the last entry. XP past the last entry still accumulates but
// no longer raises the level.
var Thresholds = []int{
	0, 30, 75, 150, 250, 400, 600, 850, 1150, 1500, 2000, 2750, 3750, 5000, 6500,
}

// MaxLevel is the highest attainable level.
var MaxLevel = len(Thresholds)

// Level returns the level for the given XP total: the largest L with
// xp >= Thresholds[L-1], capped at MaxLevel. Negative XP maps to level 1.
func Level(xp int) int {
	level := 1
	for i, min := range Thresholds {
		if xp >= min {
			level = i + 1
		} else {
			break
		}
	}
	return level
}

// Progress returns the integer percentage (0-100, floored) of progress
// from the current level's threshold to the next. At MaxLevel, or if the
// threshold span is non-positive, it returns 100.
func Progress(xp int) int {
	level := Level(xp)
	if level >= MaxLevel {
		return 100
	}
	current := Thresholds[level-1]
	next := Thresholds[level]
	span := next - current
	if span <= 0 {
		return 100
	}
	pct := (xp - current) * 100 / span
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Info describes the XP bounds of a level.
type Info struct {
	Level       int
	MinXP       int
	NextLevelXP *int // nil at MaxLevel
}

// LevelInfo returns the XP bounds for a level. Levels outside the table
// are clamped into range.
func LevelInfo(level int) Info {
	if level < 1 {
		level = 1
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	info := Info{Level: level, MinXP: Thresholds[level-1]}
	if level < MaxLevel {
		next := Thresholds[level]
		info.NextLevelXP = &next
	}
	return info
}
