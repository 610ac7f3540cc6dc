package progression

// BaseLevelXP is the XP required to advance from level 1 to level 2.
// Each subsequent level requires 1.5x the previous requirement, floored.
const BaseLevelXP = 100

// XPRequiredForLevel returns the cumulative XP needed to reach the given
// level starting from level 1. Level 1 (and below) requires 0 XP.
func XPRequiredForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	total := 0
	req := BaseLevelXP
	for l := 2; l <= level; l++ {
		total += req
		req = req * 3 / 2 // floor(req * 1.5)
	}
	return total
}

// XPToNextLevel returns the XP required to advance from the given level to
// the next one.
func XPToNextLevel(level int) int {
	req := BaseLevelXP
	for l := 1; l < level; l++ {
		req = req * 3 / 2
	}
	return req
}

// ApplyXP adds gained XP to a (level, xp, xpToNext) triple and renormalizes
// so that 0 <= xp < xpToNext always holds on return. The threshold grows by
// the same 1.5x floored step on every level crossed. Returns the new triple
// plus the number of levels gained.
func ApplyXP(level, xp, xpToNext, gained int) (newLevel, newXP, newXPToNext, levelsGained int) {
	if xpToNext <= 0 {
		xpToNext = XPToNextLevel(level)
	}
	if gained < 0 {
		gained = 0
	}
	xp += gained
	for xp >= xpToNext {
		xp -= xpToNext
		level++
		levelsGained++
		xpToNext = xpToNext * 3 / 2
	}
	return level, xp, xpToNext, levelsGained
}

// Rank is a difficulty tier with its display title.
type Rank struct {
	Letter string
	Title  string
}

// rankTable maps inclusive level upper bounds to ranks, evaluated in
// ascending order with first match returned.
var rankTable = []struct {
	maxLevel int
	rank     Rank
}{
	{5, Rank{"F", "Novato"}},
	{10, Rank{"E", "Aprendiz"}},
	{20, Rank{"D", "Adepto"}},
	{30, Rank{"C", "Veterano"}},
	{40, Rank{"B", "Elite"}},
	{50, Rank{"A", "Mestre"}},
	{70, Rank{"S", "Lenda"}},
	{90, Rank{"SS", "Mítico"}},
}

// RankForLevel maps a player level to its rank letter and title.
func RankForLevel(level int) Rank {
	for _, entry := range rankTable {
		if level <= entry.maxLevel {
			return entry.rank
		}
	}
	return Rank{"SSS", "Ascendido"}
}

// RankOrder returns the position of a rank letter in the F..SSS progression,
// or -1 for an unknown letter. Useful for gating ranked missions.
func RankOrder(letter string) int {
	order := []string{"F", "E", "D", "C", "B", "A", "S", "SS", "SSS"}
	for i, r := range order {
		if r == letter {
			return i
		}
	}
	return -1
}
