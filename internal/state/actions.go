package state

import "github.com/dvilela/sistema-vida/internal/player"

// Action is a tagged state transition applied by the reducer. Every action
// is a pure function of (state, payload); actions referencing unknown ids
// reduce to no-ops.
type Action interface {
	isAction()
}

// SetInitialData bulk-hydrates every bucket and flips the loaded flag.
type SetInitialData struct {
	Profile          *player.Profile
	Goals            []player.Goal
	Missions         []player.RankedMission
	Skills           []player.Skill
	Routine          *player.Routine
	RoutineTemplates *player.RoutineTemplates
	AllUsers         []player.Profile
	WorldEvents      []player.WorldEvent
}

// SetProfile replaces the profile aggregate.
type SetProfile struct{ Profile *player.Profile }

// SetGoals replaces the goals bucket.
type SetGoals struct{ Goals []player.Goal }

// SetMissions replaces the missions bucket.
type SetMissions struct{ Missions []player.RankedMission }

// SetSkills replaces the skills bucket.
type SetSkills struct{ Skills []player.Skill }

// SetRoutine replaces the routine document.
type SetRoutine struct{ Routine *player.Routine }

// SetRoutineTemplates replaces the routine templates document.
type SetRoutineTemplates struct{ Templates *player.RoutineTemplates }

// SetAllUsers replaces the global users bucket.
type SetAllUsers struct{ Users []player.Profile }

// SetWorldEvents replaces the world events bucket.
type SetWorldEvents struct{ Events []player.WorldEvent }

// SetGeneratingMission toggles the UI-transient generation flag.
type SetGeneratingMission struct{ Generating bool }

// SetMissionFeedback records user feedback keyed by mission id.
type SetMissionFeedback struct {
	MissionID string
	Feedback  string
}

// ClearMissionFeedback removes feedback for a mission id.
type ClearMissionFeedback struct{ MissionID string }

// SetCurrentPage selects the active UI page.
type SetCurrentPage struct{ Page string }

// UpdateSubtaskProgress advances a subtask, clamped to its target.
type UpdateSubtaskProgress struct {
	MissionID string
	DailyID   string
	SubTask   string
	Amount    float64
}

// CompleteDailyMission marks a daily mission completed exactly once, stamps
// its completion time, updates the parent's last-completed timestamp and
// optionally appends the next generated daily mission.
type CompleteDailyMission struct {
	MissionID   string
	DailyID     string
	CompletedAt player.Timestamp
	Next        *player.DailyMission
}

// AddDailyMission drops all non-completed daily missions from the ranked
// mission and appends the new one, so at most one daily mission is active
// per ranked mission.
type AddDailyMission struct {
	MissionID string
	Mission   player.DailyMission
}

// AdjustDailyMission replaces a specific daily mission by id, preserving
// its siblings.
type AdjustDailyMission struct {
	MissionID string
	Mission   player.DailyMission
}

// CompleteEpicMission marks a ranked mission completed.
type CompleteEpicMission struct{ MissionID string }

// UpdateSkill shallow-merges a partial update into a skill by id.
type UpdateSkill struct {
	SkillID string
	Patch   player.SkillPatch
}

// SetDungeon replaces (or clears, with nil) the transient dungeon session.
type SetDungeon struct{ Session *player.DungeonSession }

func (SetInitialData) isAction()        {}
func (SetProfile) isAction()            {}
func (SetGoals) isAction()              {}
func (SetMissions) isAction()           {}
func (SetSkills) isAction()             {}
func (SetRoutine) isAction()            {}
func (SetRoutineTemplates) isAction()   {}
func (SetAllUsers) isAction()           {}
func (SetWorldEvents) isAction()        {}
func (SetGeneratingMission) isAction()  {}
func (SetMissionFeedback) isAction()    {}
func (ClearMissionFeedback) isAction()  {}
func (SetCurrentPage) isAction()        {}
func (UpdateSubtaskProgress) isAction() {}
func (CompleteDailyMission) isAction()  {}
func (AddDailyMission) isAction()       {}
func (AdjustDailyMission) isAction()    {}
func (CompleteEpicMission) isAction()   {}
func (UpdateSkill) isAction()           {}
func (SetDungeon) isAction()            {}
