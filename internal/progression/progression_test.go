package progression

import "testing"

func TestXPRequiredForLevel(t *testing.T) {
	cases := []struct {
		level int
		want  int
	}{
		{0, 0},
		{1, 0},
		{2, 100},
		{3, 250},  // 100 + floor(100*1.5)
		{4, 475},  // 250 + floor(150*1.5)
		{5, 812},  // 475 + floor(225*1.5) = 475 + 337
	}
	for _, c := range cases {
		if got := XPRequiredForLevel(c.level); got != c.want {
			t.Errorf("XPRequiredForLevel(%d) = %d, want %d", c.level, got, c.want)
		}
	}
}

func TestXPRequiredMonotonic(t *testing.T) {
	prev := XPRequiredForLevel(1)
	for l := 2; l <= 120; l++ {
		cur := XPRequiredForLevel(l)
		if cur <= prev {
			t.Fatalf("curve not monotonic at level %d: %d <= %d", l, cur, prev)
		}
		prev = cur
	}
}

func TestXPToNextLevel(t *testing.T) {
	if got := XPToNextLevel(1); got != 100 {
		t.Errorf("XPToNextLevel(1) = %d, want 100", got)
	}
	if got := XPToNextLevel(2); got != 150 {
		t.Errorf("XPToNextLevel(2) = %d, want 150", got)
	}
	if got := XPToNextLevel(3); got != 225 {
		t.Errorf("XPToNextLevel(3) = %d, want 225", got)
	}
}

func TestApplyXPSingleLevelUp(t *testing.T) {
	level, xp, next, gained := ApplyXP(4, 40, 100, 80)
	if level != 5 || xp != 20 || next != 150 || gained != 1 {
		t.Fatalf("ApplyXP(4,40,100,80) = (%d,%d,%d,%d), want (5,20,150,1)", level, xp, next, gained)
	}
}

func TestApplyXPMultiLevelCarry(t *testing.T) {
	// 300 XP at level 1 crosses two thresholds (100, then 150).
	level, xp, next, gained := ApplyXP(1, 0, 100, 300)
	if level != 3 || xp != 50 || next != 225 || gained != 2 {
		t.Fatalf("got (%d,%d,%d,%d), want (3,50,225,2)", level, xp, next, gained)
	}
}

func TestApplyXPNoLevelUp(t *testing.T) {
	level, xp, next, gained := ApplyXP(2, 10, 150, 30)
	if level != 2 || xp != 40 || next != 150 || gained != 0 {
		t.Fatalf("got (%d,%d,%d,%d), want (2,40,150,0)", level, xp, next, gained)
	}
}

func TestRankForLevelBoundaries(t *testing.T) {
	cases := []struct {
		level  int
		letter string
	}{
		{1, "F"},
		{5, "F"},
		{6, "E"},
		{10, "E"},
		{11, "D"},
		{20, "D"},
		{30, "C"},
		{40, "B"},
		{50, "A"},
		{70, "S"},
		{90, "SS"},
		{91, "SSS"},
		{500, "SSS"},
	}
	for _, c := range cases {
		if got := RankForLevel(c.level); got.Letter != c.letter {
			t.Errorf("RankForLevel(%d) = %s, want %s", c.level, got.Letter, c.letter)
		}
	}
	if r := RankForLevel(5); r.Title != "Novato" {
		t.Errorf("level 5 title = %q, want Novato", r.Title)
	}
}

func TestRankOrder(t *testing.T) {
	if RankOrder("F") != 0 {
		t.Error("F should be first")
	}
	if RankOrder("SSS") != 8 {
		t.Error("SSS should be last")
	}
	if RankOrder("Z") != -1 {
		t.Error("unknown letter should be -1")
	}
	if RankOrder("S") >= RankOrder("SS") {
		t.Error("S must come before SS")
	}
}
