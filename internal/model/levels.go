package model

// LevelName identifies one of the 13 daily pivot levels.
type LevelName string

const (
	LevelS3     LevelName = "S3"
	LevelMidS23 LevelName = "mid_S2-S3"
	LevelS2     LevelName = "S2"
	LevelMidS12 LevelName = "mid_S1-S2"
	LevelS1     LevelName = "S1"
	LevelMidPS1 LevelName = "mid_PP-S1"
	LevelPP     LevelName = "PP"
	LevelMidRP1 LevelName = "mid_R1-PP"
	LevelR1     LevelName = "R1"
	LevelMidR21 LevelName = "mid_R2-R1"
	LevelR2     LevelName = "R2"
	LevelMidR32 LevelName = "mid_R3-R2"
	LevelR3     LevelName = "R3"
)

// LevelOrder is the fixed bottom-to-top order of the levels.
var LevelOrder = []LevelName{
	LevelS3, LevelMidS23, LevelS2, LevelMidS12, LevelS1, LevelMidPS1,
	LevelPP,
	LevelMidRP1, LevelR1, LevelMidR21, LevelR2, LevelMidR32, LevelR3,
}

// Level is a named price.
type Level struct {
	Name  LevelName
	Price float64
}

// LevelSet holds one day's levels in LevelOrder.
type LevelSet [13]Level

// Price returns the price of the named level.
func (s LevelSet) Price(name LevelName) (float64, bool) {
	for _, l := range s {
		if l.Name == name {
			return l.Price, true
		}
	}
	return 0, false
}

// Direction is the side of the first neighbour reached after a touch.
type Direction string

const (
	DirectionNone  Direction = "none"
	DirectionLower Direction = "lower"
	DirectionUpper Direction = "upper"
)

// TouchEvent records the first touch of a level during one day.
type TouchEvent struct {
	Level     LevelName
	Direction Direction
	BarIndex  int // index of the first-touch bar within the day
}

// LevelStats accumulates touch outcomes for one level.
type LevelStats struct {
	Count      int
	FirstLower int
	FirstUpper int
}
