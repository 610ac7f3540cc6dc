// Package notify turns domain events into display-ready notification
// payloads and fans them out to optional delivery adapters. The formatters
// are pure: no state, no I/O.
package notify

import (
	"fmt"

	"github.com/dvilela/sistema-vida/internal/player"
	"github.com/dvilela/sistema-vida/internal/progression"
)

// GoalProgress is a goal line item inside a payload.
type GoalProgress struct {
	Name     string  `json:"name"`
	Progress float64 `json:"progress"` // 0..1
}

// Notification is the display payload handed to the UI and to delivery
// adapters.
type Notification struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Goals       []GoalProgress `json:"goals,omitempty"`
	Caution     string         `json:"caution,omitempty"`
}

// LevelUpEvent is emitted when the profile crosses a level threshold.
type LevelUpEvent struct {
	NewLevel int
	Rank     progression.Rank
}

// FormatLevelUp formats a level-up event.
func FormatLevelUp(e LevelUpEvent) *Notification {
	return &Notification{
		Title:       fmt.Sprintf("Nível %d alcançado!", e.NewLevel),
		Description: fmt.Sprintf("Você agora é rank %s — %s.", e.Rank.Letter, e.Rank.Title),
	}
}

// NewEpicMissionEvent is emitted when a new ranked mission unlocks.
type NewEpicMissionEvent struct {
	MissionName string
	Rank        string
	GoalName    string
}

// FormatNewEpicMission formats a new-epic-mission event.
func FormatNewEpicMission(e NewEpicMissionEvent) *Notification {
	return &Notification{
		Title:       "Nova Missão Épica",
		Description: fmt.Sprintf("%s (rank %s) está disponível para a meta %q.", e.MissionName, e.Rank, e.GoalName),
	}
}

// SkillUpEvent is emitted when a skill levels up.
type SkillUpEvent struct {
	SkillName string
	NewLevel  int
}

// FormatSkillUp formats a skill-up event.
func FormatSkillUp(e SkillUpEvent) *Notification {
	return &Notification{
		Title:       "Habilidade evoluiu",
		Description: fmt.Sprintf("%s chegou ao nível %d.", e.SkillName, e.NewLevel),
	}
}

// SkillDecayEvent is emitted when inactivity costs a skill XP or levels.
// Decay itself is computed outside this core.
type SkillDecayEvent struct {
	SkillName string
	XPLost    int
}

// FormatSkillDecay formats a skill-decay event.
func FormatSkillDecay(e SkillDecayEvent) *Notification {
	return &Notification{
		Title:       "Habilidade enferrujando",
		Description: fmt.Sprintf("%s perdeu %d XP por inatividade.", e.SkillName, e.XPLost),
		Caution:     "Treine hoje para interromper o declínio.",
	}
}

// SkillAtRiskEvent is emitted when a skill is close to decaying.
type SkillAtRiskEvent struct {
	SkillName string
	DaysIdle  int
}

// FormatSkillAtRisk formats a skill-at-risk event.
func FormatSkillAtRisk(e SkillAtRiskEvent) *Notification {
	return &Notification{
		Title:       "Habilidade em risco",
		Description: fmt.Sprintf("%s está sem atividade há %d dias.", e.SkillName, e.DaysIdle),
		Caution:     "Mais um dia sem treino e ela começa a decair.",
	}
}

// DailyBriefingEvent summarizes the day's goals. Preference-gated.
type DailyBriefingEvent struct {
	Goals []GoalProgress
}

// FormatDailyBriefing formats the daily briefing, or returns nil when the
// user disabled the category.
func FormatDailyBriefing(prefs player.NotificationSettings, e DailyBriefingEvent) *Notification {
	if !prefs.DailyBriefing {
		return nil
	}
	return &Notification{
		Title:       "Resumo do dia",
		Description: fmt.Sprintf("Você tem %d metas em andamento.", len(e.Goals)),
		Goals:       e.Goals,
	}
}

// GoalCompletedEvent is emitted when a goal is completed. Preference-gated.
type GoalCompletedEvent struct {
	GoalName string
}

// FormatGoalCompleted formats a goal-completed event, or returns nil when
// the user disabled the category.
func FormatGoalCompleted(prefs player.NotificationSettings, e GoalCompletedEvent) *Notification {
	if !prefs.GoalCompleted {
		return nil
	}
	return &Notification{
		Title:       "Meta concluída!",
		Description: fmt.Sprintf("%q foi concluída. Hora de definir a próxima.", e.GoalName),
		Goals:       []GoalProgress{{Name: e.GoalName, Progress: 1}},
	}
}

// AchievementUnlockedEvent is emitted when an achievement unlocks.
type AchievementUnlockedEvent struct {
	Name        string
	Description string
}

// FormatAchievementUnlocked formats an achievement-unlocked event.
func FormatAchievementUnlocked(e AchievementUnlockedEvent) *Notification {
	return &Notification{
		Title:       "Conquista desbloqueada",
		Description: fmt.Sprintf("%s — %s", e.Name, e.Description),
	}
}

// StreakBonusEvent is emitted when the completion streak hits a bonus mark.
type StreakBonusEvent struct {
	Streak    int
	Fragments int
}

// FormatStreakBonus formats a streak-bonus event.
func FormatStreakBonus(e StreakBonusEvent) *Notification {
	return &Notification{
		Title:       fmt.Sprintf("Sequência de %d dias!", e.Streak),
		Description: fmt.Sprintf("Bônus de %d fragmentos pela constância.", e.Fragments),
	}
}

// FormatOfflineMode formats the degraded-session warning shown when remote
// load fails.
func FormatOfflineMode() *Notification {
	return &Notification{
		Title:       "Modo Offline Ativo",
		Description: "Não foi possível carregar seus dados.",
		Caution:     "Alterações não serão salvas.",
	}
}
