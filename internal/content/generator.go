// Package content wraps the generative backend that produces mission
// content. Every call site has a deterministic fallback, so generation
// failure never propagates into the state store.
package content

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/dvilela/sistema-vida/internal/player"
)

// MissionInput describes the progression context for the next daily mission.
type MissionInput struct {
	GoalName      string `json:"goal_name"`
	MissionName   string `json:"mission_name"`
	Rank          string `json:"rank"`
	PlayerLevel   int    `json:"player_level"`
	LastDailyName string `json:"last_daily_name"`
}

// AdjustInput asks for a replacement daily mission based on user feedback.
type AdjustInput struct {
	Mission  player.DailyMission `json:"mission"`
	Feedback string              `json:"feedback"`
}

// GeneratedMission is the structured output expected from the backend.
type GeneratedMission struct {
	Name              string             `json:"nextMissionName"`
	Description       string             `json:"nextMissionDescription"`
	XP                int                `json:"xp"`
	Fragments         int                `json:"fragments"`
	LearningResources []string           `json:"learningResources"`
	SubTasks          []GeneratedSubTask `json:"subTasks"`
}

// GeneratedSubTask mirrors player.SubTask without progress.
type GeneratedSubTask struct {
	Name   string  `json:"name"`
	Target float64 `json:"target"`
	Unit   string  `json:"unit"`
}

// Generator produces mission content. Implementations may fail; callers
// substitute the deterministic fallbacks below.
type Generator interface {
	NextDailyMission(ctx context.Context, in MissionInput) (*GeneratedMission, error)
	AdjustDailyMission(ctx context.Context, in AdjustInput) (*GeneratedMission, error)
}

// ToDailyMission converts generated content into a domain daily mission
// with a fresh id and zeroed progress.
func (g *GeneratedMission) ToDailyMission() player.DailyMission {
	subs := make([]player.SubTask, len(g.SubTasks))
	for i, st := range g.SubTasks {
		subs[i] = player.SubTask{Name: st.Name, Target: st.Target, Unit: st.Unit}
	}
	return player.DailyMission{
		ID:                uuid.New().String(),
		Name:              g.Name,
		Description:       g.Description,
		XPReward:          g.XP,
		FragmentReward:    g.Fragments,
		SubTasks:          subs,
		LearningResources: g.LearningResources,
	}
}

// StaticGenerator serves the deterministic fallback content directly. It is
// the generator of record when no LLM backend is configured.
type StaticGenerator struct{}

// NextDailyMission implements Generator.
func (StaticGenerator) NextDailyMission(_ context.Context, in MissionInput) (*GeneratedMission, error) {
	return FallbackNextMission(in), nil
}

// AdjustDailyMission implements Generator.
func (StaticGenerator) AdjustDailyMission(_ context.Context, in AdjustInput) (*GeneratedMission, error) {
	return FallbackAdjustedMission(in), nil
}

// FallbackNextMission is the deterministic payload used when generation
// fails: a steady continuation of the last daily mission.
func FallbackNextMission(in MissionInput) *GeneratedMission {
	base := 40 + 10*rankStep(in.Rank)
	name := fmt.Sprintf("Continuar: %s", in.MissionName)
	if in.LastDailyName != "" {
		name = fmt.Sprintf("Repetir e superar: %s", in.LastDailyName)
	}
	return &GeneratedMission{
		Name:        name,
		Description: fmt.Sprintf("Avance mais um passo na meta %q no seu próprio ritmo.", in.GoalName),
		XP:          base,
		Fragments:   2 + rankStep(in.Rank),
		SubTasks: []GeneratedSubTask{
			{Name: "sessão de prática", Target: 1, Unit: "sessão"},
		},
	}
}

// FallbackAdjustedMission is the deterministic payload for a failed
// adjustment: same mission, reduced targets.
func FallbackAdjustedMission(in AdjustInput) *GeneratedMission {
	subs := make([]GeneratedSubTask, len(in.Mission.SubTasks))
	for i, st := range in.Mission.SubTasks {
		target := st.Target * 0.7
		if target < 1 {
			target = 1
		}
		subs[i] = GeneratedSubTask{Name: st.Name, Target: target, Unit: st.Unit}
	}
	return &GeneratedMission{
		Name:        in.Mission.Name + " (ajustada)",
		Description: in.Mission.Description,
		XP:          in.Mission.XPReward,
		Fragments:   in.Mission.FragmentReward,
		SubTasks:    subs,
	}
}

func rankStep(rank string) int {
	steps := map[string]int{"F": 0, "E": 1, "D": 2, "C": 3, "B": 4, "A": 5, "S": 6, "SS": 7, "SSS": 8}
	return steps[rank]
}
