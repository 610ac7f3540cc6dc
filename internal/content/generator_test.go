package content

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvilela/sistema-vida/internal/player"
	"go.uber.org/zap"
)

type scriptedGenerator struct {
	calls  int
	failBy int
	out    *GeneratedMission
}

func (s *scriptedGenerator) NextDailyMission(_ context.Context, _ MissionInput) (*GeneratedMission, error) {
	s.calls++
	if s.calls <= s.failBy {
		return nil, errors.New("provider overloaded")
	}
	return s.out, nil
}

func (s *scriptedGenerator) AdjustDailyMission(_ context.Context, _ AdjustInput) (*GeneratedMission, error) {
	s.calls++
	if s.calls <= s.failBy {
		return nil, errors.New("provider overloaded")
	}
	return s.out, nil
}

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	want := &GeneratedMission{Name: "Correr 5km", XP: 50}
	inner := &scriptedGenerator{failBy: 2, out: want}
	gen := WithRetry(inner, zap.NewNop())

	got, err := gen.NextDailyMission(context.Background(), MissionInput{MissionName: "Maratona"})
	if err != nil {
		t.Fatalf("NextDailyMission: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3", inner.calls)
	}
}

func TestRetryGivesUpAfterThreeAttempts(t *testing.T) {
	inner := &scriptedGenerator{failBy: 10}
	gen := WithRetry(inner, zap.NewNop())

	_, err := gen.AdjustDailyMission(context.Background(), AdjustInput{})
	if err == nil {
		t.Fatal("expected error after exhausted attempts")
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3", inner.calls)
	}
}

func TestRetryStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	inner := &scriptedGenerator{failBy: 10}
	gen := WithRetry(inner, zap.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := gen.NextDailyMission(ctx, MissionInput{})
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("retry did not observe cancellation")
	}
}

func TestFallbackNextMission(t *testing.T) {
	m := FallbackNextMission(MissionInput{
		GoalName:      "Correr uma maratona",
		MissionName:   "Preparação física",
		Rank:          "C",
		LastDailyName: "Correr 3km",
	})
	if m.Name == "" || m.XP <= 0 {
		t.Fatalf("fallback mission incomplete: %+v", m)
	}
	if m.XP != 70 {
		t.Errorf("rank C XP = %d, want 70", m.XP)
	}
	if len(m.SubTasks) == 0 {
		t.Error("fallback mission should carry at least one subtask")
	}
}

func TestFallbackAdjustedMissionReducesTargets(t *testing.T) {
	in := AdjustInput{
		Mission: player.DailyMission{
			Name:     "Correr 10km",
			XPReward: 60,
			SubTasks: []player.SubTask{
				{Name: "distância", Target: 10, Unit: "km"},
				{Name: "alongamento", Target: 1, Unit: "sessão"},
			},
		},
		Feedback: "muito difícil",
	}
	m := FallbackAdjustedMission(in)
	if m.SubTasks[0].Target != 7 {
		t.Errorf("target = %v, want 7", m.SubTasks[0].Target)
	}
	if m.SubTasks[1].Target != 1 {
		t.Errorf("target floor = %v, want 1", m.SubTasks[1].Target)
	}
	if m.XP != 60 {
		t.Errorf("XP should be preserved, got %d", m.XP)
	}
}

func TestParseMission(t *testing.T) {
	raw := "```json\n{\"nextMissionName\": \"Correr 5km\", \"nextMissionDescription\": \"d\", \"xp\": 50, \"fragments\": 3, \"subTasks\": [{\"name\": \"distância\", \"target\": 5, \"unit\": \"km\"}]}\n```"
	m, err := parseMission(raw)
	if err != nil {
		t.Fatalf("parseMission: %v", err)
	}
	if m.Name != "Correr 5km" || m.XP != 50 || len(m.SubTasks) != 1 {
		t.Errorf("parsed mission wrong: %+v", m)
	}

	if _, err := parseMission(`{"nextMissionName": "", "xp": 10}`); err == nil {
		t.Error("missing name should be rejected")
	}
	if _, err := parseMission("not json at all"); err == nil {
		t.Error("garbage should be rejected")
	}
}

func TestToDailyMissionAssignsID(t *testing.T) {
	g := &GeneratedMission{
		Name:     "Correr 5km",
		XP:       50,
		SubTasks: []GeneratedSubTask{{Name: "distância", Target: 5, Unit: "km"}},
	}
	dm := g.ToDailyMission()
	if dm.ID == "" {
		t.Error("daily mission should get a fresh id")
	}
	if dm.SubTasks[0].Current != 0 {
		t.Error("subtask progress should start at zero")
	}
	if dm.CompletedAt != nil {
		t.Error("new mission must not be completed")
	}
}
