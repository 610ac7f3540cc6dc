package player

import (
	"testing"
	"time"
)

func TestDecodeProfileNormalizes(t *testing.T) {
	raw := []byte(`{"id":"u1","email":"u@x.com","name":"U","level":0,"xp":-5,"xp_to_next_level":0}`)
	p, err := DecodeProfile(raw)
	if err != nil {
		t.Fatalf("DecodeProfile: %v", err)
	}
	if p.Level != 1 {
		t.Errorf("level = %d, want 1", p.Level)
	}
	if p.XP != 0 {
		t.Errorf("xp = %d, want 0", p.XP)
	}
	if p.XPToNextLevel != 100 {
		t.Errorf("xp_to_next_level = %d, want 100", p.XPToNextLevel)
	}
}

func TestDecodeProfileMissingID(t *testing.T) {
	if _, err := DecodeProfile([]byte(`{"name":"x"}`)); err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestDecodeProfileFirestoreTimestamp(t *testing.T) {
	raw := []byte(`{"id":"u1","last_mission_completed_date":{"seconds":1700000000,"nanos":0}}`)
	p, err := DecodeProfile(raw)
	if err != nil {
		t.Fatalf("DecodeProfile: %v", err)
	}
	if p.LastMissionCompletedDate == nil {
		t.Fatal("expected timestamp")
	}
	want := time.Unix(1700000000, 0).UTC()
	if !p.LastMissionCompletedDate.Time.Equal(want) {
		t.Errorf("timestamp = %v, want %v", p.LastMissionCompletedDate.Time, want)
	}
}

func TestDecodeProfileRFC3339Timestamp(t *testing.T) {
	raw := []byte(`{"id":"u1","last_mission_completed_date":"2026-08-01T10:00:00Z"}`)
	p, err := DecodeProfile(raw)
	if err != nil {
		t.Fatalf("DecodeProfile: %v", err)
	}
	if p.LastMissionCompletedDate == nil || p.LastMissionCompletedDate.Time.Day() != 1 {
		t.Fatalf("timestamp not parsed: %+v", p.LastMissionCompletedDate)
	}
}

func TestDecodeRankedMissionClampsSubtasks(t *testing.T) {
	raw := []byte(`{"id":"m1","daily_missions":[{"id":"d1","sub_tasks":[{"name":"run","target":5,"current":9},{"name":"read","target":3,"current":-1}]}]}`)
	m, err := DecodeRankedMission(raw)
	if err != nil {
		t.Fatalf("DecodeRankedMission: %v", err)
	}
	st := m.DailyMissions[0].SubTasks
	if st[0].Current != 5 {
		t.Errorf("over-target subtask = %v, want 5", st[0].Current)
	}
	if st[1].Current != 0 {
		t.Errorf("negative subtask = %v, want 0", st[1].Current)
	}
}

func TestDecodeSkillCaps(t *testing.T) {
	raw := []byte(`{"id":"s1","current_level":15,"max_level":10}`)
	s, err := DecodeSkill(raw)
	if err != nil {
		t.Fatalf("DecodeSkill: %v", err)
	}
	if s.CurrentLevel != 10 {
		t.Errorf("current_level = %d, want 10", s.CurrentLevel)
	}
}

func TestTimestampStreakHelpers(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	yesterday := Timestamp{now.AddDate(0, 0, -1)}
	today := Timestamp{now.Add(-2 * time.Hour)}
	old := Timestamp{now.AddDate(0, 0, -3)}

	if !yesterday.IsYesterdayOf(now) {
		t.Error("yesterday not detected")
	}
	if !today.SameDay(now) {
		t.Error("same day not detected")
	}
	if old.IsYesterdayOf(now) || old.SameDay(now) {
		t.Error("stale date misclassified")
	}
}
