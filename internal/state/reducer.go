package state

import "github.com/dvilela/sistema-vida/internal/player"

// reduce returns the next state for an action. It never mutates its input:
// affected branches are copied, untouched branches keep their identity so
// change detection can rely on reference comparison. Actions referencing
// unknown ids return the state unchanged.
func reduce(s *PlayerState, a Action) *PlayerState {
	switch act := a.(type) {
	case SetInitialData:
		next := *s
		next.Profile = act.Profile
		next.Goals = act.Goals
		next.Missions = act.Missions
		next.Skills = act.Skills
		next.Routine = act.Routine
		next.RoutineTemplates = act.RoutineTemplates
		next.AllUsers = act.AllUsers
		next.WorldEvents = act.WorldEvents
		next.DataLoaded = true
		return &next

	case SetProfile:
		next := *s
		next.Profile = act.Profile
		return &next

	case SetGoals:
		next := *s
		next.Goals = act.Goals
		return &next

	case SetMissions:
		next := *s
		next.Missions = act.Missions
		return &next

	case SetSkills:
		next := *s
		next.Skills = act.Skills
		return &next

	case SetRoutine:
		next := *s
		next.Routine = act.Routine
		return &next

	case SetRoutineTemplates:
		next := *s
		next.RoutineTemplates = act.Templates
		return &next

	case SetAllUsers:
		next := *s
		next.AllUsers = act.Users
		return &next

	case SetWorldEvents:
		next := *s
		next.WorldEvents = act.Events
		return &next

	case SetGeneratingMission:
		next := *s
		next.GeneratingMission = act.Generating
		return &next

	case SetMissionFeedback:
		next := *s
		next.MissionFeedback = copyFeedback(s.MissionFeedback)
		next.MissionFeedback[act.MissionID] = act.Feedback
		return &next

	case ClearMissionFeedback:
		if _, ok := s.MissionFeedback[act.MissionID]; !ok {
			return s
		}
		next := *s
		next.MissionFeedback = copyFeedback(s.MissionFeedback)
		delete(next.MissionFeedback, act.MissionID)
		return &next

	case SetCurrentPage:
		next := *s
		next.CurrentPage = act.Page
		return &next

	case UpdateSubtaskProgress:
		return reduceSubtaskProgress(s, act)

	case CompleteDailyMission:
		return reduceCompleteDaily(s, act)

	case AddDailyMission:
		return withMission(s, act.MissionID, func(m *player.RankedMission) {
			kept := make([]player.DailyMission, 0, len(m.DailyMissions)+1)
			for _, d := range m.DailyMissions {
				if d.Completed {
					kept = append(kept, d)
				}
			}
			m.DailyMissions = append(kept, act.Mission)
		})

	case AdjustDailyMission:
		return withDaily(s, act.MissionID, act.Mission.ID, func(d *player.DailyMission) {
			*d = act.Mission
		})

	case CompleteEpicMission:
		return withMission(s, act.MissionID, func(m *player.RankedMission) {
			m.Completed = true
		})

	case UpdateSkill:
		return reduceUpdateSkill(s, act)

	case SetDungeon:
		next := *s
		next.Dungeon = act.Session
		return &next
	}

	return s
}

func copyFeedback(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src)+1)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// withMission copies the missions branch, applies fn to a deep copy of the
// target mission, and returns the new state. Unknown mission ids are no-ops.
func withMission(s *PlayerState, missionID string, fn func(*player.RankedMission)) *PlayerState {
	idx := -1
	for i := range s.Missions {
		if s.Missions[i].ID == missionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s
	}

	missions := make([]player.RankedMission, len(s.Missions))
	copy(missions, s.Missions)
	m := missions[idx]
	m.DailyMissions = append([]player.DailyMission(nil), m.DailyMissions...)
	fn(&m)
	missions[idx] = m

	next := *s
	next.Missions = missions
	return &next
}

// withDaily is withMission scoped to a single daily mission, deep-copying
// its subtasks before applying fn.
func withDaily(s *PlayerState, missionID, dailyID string, fn func(*player.DailyMission)) *PlayerState {
	found := false
	next := withMission(s, missionID, func(m *player.RankedMission) {
		for i := range m.DailyMissions {
			if m.DailyMissions[i].ID != dailyID {
				continue
			}
			d := m.DailyMissions[i]
			d.SubTasks = append([]player.SubTask(nil), d.SubTasks...)
			fn(&d)
			m.DailyMissions[i] = d
			found = true
			return
		}
	})
	if !found {
		return s
	}
	return next
}

func reduceSubtaskProgress(s *PlayerState, act UpdateSubtaskProgress) *PlayerState {
	changed := false
	next := withDaily(s, act.MissionID, act.DailyID, func(d *player.DailyMission) {
		for i := range d.SubTasks {
			st := &d.SubTasks[i]
			if st.Name != act.SubTask {
				continue
			}
			cur := st.Current + act.Amount
			if cur > st.Target {
				cur = st.Target
			}
			if cur < 0 {
				cur = 0
			}
			st.Current = cur
			changed = true
			return
		}
	})
	if !changed {
		return s
	}
	return next
}

func reduceCompleteDaily(s *PlayerState, act CompleteDailyMission) *PlayerState {
	completed := false
	next := withMission(s, act.MissionID, func(m *player.RankedMission) {
		for i := range m.DailyMissions {
			if m.DailyMissions[i].ID != act.DailyID {
				continue
			}
			if m.DailyMissions[i].Completed {
				return // idempotent: already done
			}
			d := m.DailyMissions[i]
			d.Completed = true
			ts := act.CompletedAt
			d.CompletedAt = &ts
			m.DailyMissions[i] = d
			last := act.CompletedAt
			m.LastDailyCompletedAt = &last
			if act.Next != nil {
				m.DailyMissions = append(m.DailyMissions, *act.Next)
			}
			completed = true
			return
		}
	})
	if !completed {
		return s
	}
	return next
}

func reduceUpdateSkill(s *PlayerState, act UpdateSkill) *PlayerState {
	idx := -1
	for i := range s.Skills {
		if s.Skills[i].ID == act.SkillID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s
	}

	skills := make([]player.Skill, len(s.Skills))
	copy(skills, s.Skills)
	sk := skills[idx]

	p := act.Patch
	if p.Name != nil {
		sk.Name = *p.Name
	}
	if p.Description != nil {
		sk.Description = *p.Description
	}
	if p.CurrentLevel != nil {
		sk.CurrentLevel = *p.CurrentLevel
		if sk.CurrentLevel > sk.MaxLevel {
			sk.CurrentLevel = sk.MaxLevel
		}
	}
	if p.CurrentXP != nil {
		sk.CurrentXP = *p.CurrentXP
	}
	if p.XPToNextLevel != nil {
		sk.XPToNextLevel = *p.XPToNextLevel
	}
	if p.LastActivityAt != nil {
		ts := *p.LastActivityAt
		sk.LastActivityAt = &ts
	}
	skills[idx] = sk

	next := *s
	next.Skills = skills
	return &next
}
