// Package demo bundles the offline-mode dataset. Every function returns a
// fresh copy so callers own what they receive.
package demo

import (
	"time"

	"github.com/dvilela/sistema-vida/internal/player"
)

func ts(t time.Time) player.Timestamp { return player.Timestamp{Time: t} }

// Profile returns the demo profile stamped with the given identity.
func Profile(id, email string) *player.Profile {
	return &player.Profile{
		ID:            id,
		Email:         email,
		Name:          "Caçador Demo",
		Level:         3,
		XP:            120,
		XPToNextLevel: 225,
		Fragments:     40,
		CurrentHP:     100,
		Inventory: []player.Item{
			{ID: "pocao-foco", Name: "Poção de Foco", Description: "Dobra o XP da próxima missão", Type: "consumable"},
		},
		Statistics: player.Statistics{
			Strength: 4, Intelligence: 6, Dexterity: 3,
			Constitution: 5, Wisdom: 4, Charisma: 3,
		},
		Achievements: []player.Achievement{
			{ID: "primeiro-passo", Name: "Primeiro Passo", Description: "Complete sua primeira missão diária", UnlockedAt: ts(time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC))},
		},
		CurrentStreak: 2,
		BestStreak:    5,
		Settings: player.UserSettings{
			Theme:    "dark",
			Language: "pt-BR",
			Notifications: player.NotificationSettings{
				DailyBriefing: true,
				GoalCompleted: true,
			},
		},
	}
}

// Goals returns the demo goals.
func Goals() []player.Goal {
	return []player.Goal{
		{
			ID: "goal-corrida", Name: "Correr uma meia maratona", Category: "saude",
			SkillID: "skill-resistencia",
			SMART: &player.SMART{
				Specific:   "Completar 21km em uma prova oficial",
				Measurable: "Distância semanal acumulada",
				Achievable: "Aumentar 10% por semana",
				Relevant:   "Saúde cardiovascular",
				TimeBound:  "Seis meses",
			},
		},
		{ID: "goal-ingles", Name: "Inglês fluente", Category: "aprendizado", SkillID: "skill-ingles"},
	}
}

// Missions returns the demo ranked missions with their daily missions.
func Missions() []player.RankedMission {
	return []player.RankedMission{
		{
			ID: "mission-corrida-f", Name: "Trilha do Corredor", Rank: "F",
			Description:      "Construa o hábito de correr três vezes por semana.",
			LevelRequirement: 1,
			GoalName:         "Correr uma meia maratona",
			DailyMissions: []player.DailyMission{
				{
					ID: "daily-corrida-1", Name: "Corrida leve de 2km",
					Description: "Mantenha um ritmo confortável.",
					XPReward:    50, FragmentReward: 3,
					SubTasks: []player.SubTask{
						{Name: "distancia", Target: 2, Unit: "km"},
						{Name: "alongamento", Target: 10, Unit: "min"},
					},
				},
			},
		},
		{
			ID: "mission-ingles-f", Name: "Primeiras Palavras", Rank: "F",
			Description:      "Vocabulário básico e rotina de estudo.",
			LevelRequirement: 1,
			GoalName:         "Inglês fluente",
			DailyMissions: []player.DailyMission{
				{
					ID: "daily-ingles-1", Name: "20 minutos de vocabulário",
					XPReward: 40, FragmentReward: 2,
					SubTasks: []player.SubTask{
						{Name: "minutos", Target: 20, Unit: "min"},
					},
					LearningResources: []string{"https://www.duolingo.com"},
				},
			},
		},
	}
}

// Skills returns the demo skills.
func Skills() []player.Skill {
	return []player.Skill{
		{
			ID: "skill-resistencia", Name: "Resistência", Category: "fisico",
			Description:  "Capacidade aeróbica e constância nos treinos.",
			CurrentLevel: 2, MaxLevel: 10, CurrentXP: 30, XPToNextLevel: 150,
		},
		{
			ID: "skill-ingles", Name: "Inglês", Category: "aprendizado",
			Description:  "Compreensão e conversação em inglês.",
			CurrentLevel: 1, MaxLevel: 10, CurrentXP: 10, XPToNextLevel: 100,
		},
	}
}

// Routine returns the demo routine document.
func Routine() *player.Routine {
	return &player.Routine{
		Entries: []player.RoutineEntry{
			{Start: "06:30", End: "07:15", Activity: "Corrida", Days: []string{"seg", "qua", "sex"}},
			{Start: "20:00", End: "20:30", Activity: "Inglês", Days: []string{"seg", "ter", "qui"}},
		},
	}
}

// RoutineTemplates returns the demo routine templates document.
func RoutineTemplates() *player.RoutineTemplates {
	return &player.RoutineTemplates{
		Templates: map[string][]player.RoutineEntry{
			"dia-de-treino": {
				{Start: "06:30", End: "07:30", Activity: "Treino completo"},
			},
		},
	}
}

// WorldEvents returns the demo world events.
func WorldEvents() []player.WorldEvent {
	return []player.WorldEvent{
		{
			ID: "event-maratona-global", Name: "Maratona Global", Type: "collective",
			Effects:  []string{"xp_boost_10"},
			Goal:     player.EventGoal{Type: "distance", Category: "saude", Target: 10000},
			Progress: 3250,
			StartsAt: ts(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)),
			EndsAt:   ts(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)),
			Rewards:  []string{"titulo-maratonista", "500-fragmentos"},
		},
	}
}
