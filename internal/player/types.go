package player

import "time"

// Profile is the player's core aggregate. The in-memory copy held by the
// state store is authoritative for the session; the remote store is the
// durable owner.
type Profile struct {
	ID                       string           `json:"id"`
	Email                    string           `json:"email"`
	Name                     string           `json:"name"`
	Level                    int              `json:"level"`
	XP                       int              `json:"xp"`
	XPToNextLevel            int              `json:"xp_to_next_level"`
	Fragments                int              `json:"fragments"`
	CurrentHP                int              `json:"current_hp"`
	Inventory                []Item           `json:"inventory"`
	ActiveEffects            []ActiveEffect   `json:"active_effects"`
	Statistics               Statistics       `json:"statistics"`
	Achievements             []Achievement    `json:"achievements"`
	CurrentStreak            int              `json:"current_streak"`
	BestStreak               int              `json:"best_streak"`
	LastMissionCompletedDate *Timestamp       `json:"last_mission_completed_date,omitempty"`
	Settings                 UserSettings     `json:"user_settings"`
	OfflineMode              bool             `json:"is_offline_mode"`
}

// Item is an inventory entry.
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"` // consumable, boost, cosmetic
}

// ActiveEffect is a time-bounded modifier applied to the profile.
type ActiveEffect struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ExpiresAt Timestamp `json:"expires_at"`
}

// Statistics holds the six named attributes.
type Statistics struct {
	Strength     int `json:"strength"`
	Intelligence int `json:"intelligence"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// Achievement is an unlocked-achievement record.
type Achievement struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	UnlockedAt  Timestamp `json:"unlocked_at"`
}

// UserSettings is the nested per-user configuration.
type UserSettings struct {
	Theme         string               `json:"theme"`
	Language      string               `json:"language"`
	Notifications NotificationSettings `json:"notifications"`
}

// NotificationSettings gates optional notification categories. Categories
// not listed here are always delivered.
type NotificationSettings struct {
	DailyBriefing bool `json:"daily_briefing"`
	GoalCompleted bool `json:"goal_completed"`
}

// Goal is a long-term objective ("Meta").
type Goal struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Category  string     `json:"category"`
	SkillID   string     `json:"skill_id,omitempty"`
	Deadline  *Timestamp `json:"deadline,omitempty"`
	Completed bool       `json:"completed"`
	SMART     *SMART     `json:"smart,omitempty"`
}

// SMART is the optional structured breakdown of a goal.
type SMART struct {
	Specific   string `json:"specific"`
	Measurable string `json:"measurable"`
	Achievable string `json:"achievable"`
	Relevant   string `json:"relevant"`
	TimeBound  string `json:"time_bound"`
}

// RankedMission is a progression container ("Missão Épica") holding an
// ordered sequence of daily missions, gated by rank and level.
type RankedMission struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	Description          string         `json:"description"`
	Completed            bool           `json:"completed"`
	Rank                 string         `json:"rank"` // F..SSS
	LevelRequirement     int            `json:"level_requirement"`
	GoalName             string         `json:"goal_name"`
	DailyMissions        []DailyMission `json:"daily_missions"`
	LastDailyCompletedAt *Timestamp     `json:"last_daily_completed_at,omitempty"`
}

// DailyMission is the atomic unit of player progress.
type DailyMission struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	XPReward          int        `json:"xp_reward"`
	FragmentReward    int        `json:"fragment_reward"`
	Completed         bool       `json:"completed"`
	SubTasks          []SubTask  `json:"sub_tasks"`
	LearningResources []string   `json:"learning_resources,omitempty"`
	CompletedAt       *Timestamp `json:"completed_at,omitempty"`
}

// SubTask tracks progress toward a measurable target.
// Invariant: 0 <= Current <= Target.
type SubTask struct {
	Name    string  `json:"name"`
	Target  float64 `json:"target"`
	Unit    string  `json:"unit"`
	Current float64 `json:"current"`
}

// Skill is a trainable competency.
type Skill struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Category       string     `json:"category"`
	CurrentLevel   int        `json:"current_level"`
	MaxLevel       int        `json:"max_level"`
	CurrentXP      int        `json:"current_xp"`
	XPToNextLevel  int        `json:"xp_to_next_level"`
	PrerequisiteID string     `json:"prerequisite_id,omitempty"`
	UnlockLevel    int        `json:"unlock_level,omitempty"`
	LastActivityAt *Timestamp `json:"last_activity_at,omitempty"`
}

// SkillPatch is a partial update applied to a skill by id; nil fields are
// left unchanged.
type SkillPatch struct {
	Name           *string    `json:"name,omitempty"`
	Description    *string    `json:"description,omitempty"`
	CurrentLevel   *int       `json:"current_level,omitempty"`
	CurrentXP      *int       `json:"current_xp,omitempty"`
	XPToNextLevel  *int       `json:"xp_to_next_level,omitempty"`
	LastActivityAt *Timestamp `json:"last_activity_at,omitempty"`
}

// DungeonSession is transient state for a skill challenge loop. It exists
// only while a session is open and is cleared on exit or give-up.
type DungeonSession struct {
	SkillID             string      `json:"skill_id"`
	RoomLevel           int         `json:"room_level"`
	HighestRoom         int         `json:"highest_room"`
	Challenge           *Challenge  `json:"challenge,omitempty"`
	CompletedChallenges []Challenge `json:"completed_challenges"`
}

// Challenge is a single dungeon room task.
type Challenge struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	XPReward    int    `json:"xp_reward"`
}

// WorldEvent is a global, shared-progress entity.
type WorldEvent struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	Effects  []string  `json:"effects"`
	Goal     EventGoal `json:"goal"`
	Progress float64   `json:"progress"`
	StartsAt Timestamp `json:"starts_at"`
	EndsAt   Timestamp `json:"ends_at"`
	Rewards  []string  `json:"rewards"`
}

// EventGoal describes what a world event counts toward.
type EventGoal struct {
	Type     string  `json:"type"`
	Category string  `json:"category"`
	Target   float64 `json:"target"`
}

// Routine is the player's daily schedule document.
type Routine struct {
	Entries []RoutineEntry `json:"entries"`
}

// RoutineEntry is one scheduled block.
type RoutineEntry struct {
	Start    string   `json:"start"` // "HH:MM"
	End      string   `json:"end"`
	Activity string   `json:"activity"`
	Days     []string `json:"days,omitempty"`
}

// RoutineTemplates holds named reusable routines.
type RoutineTemplates struct {
	Templates map[string][]RoutineEntry `json:"templates"`
}

// Now returns the current time as a Timestamp pointer, for stamping
// completion fields.
func Now() *Timestamp {
	t := Timestamp{time.Now().UTC()}
	return &t
}
