package player

import (
	"encoding/json"
	"fmt"
)

// Per-entity deserializers for documents read from the remote store. Each
// one knows exactly which fields carry timestamps (handled by the Timestamp
// type) and normalizes the decoded value so the reducer never has to
// defend against out-of-range data.

// DecodeProfile decodes and normalizes a profile document.
func DecodeProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if p.ID == "" {
		return nil, fmt.Errorf("decode profile: missing id")
	}
	if p.Level < 1 {
		p.Level = 1
	}
	if p.XPToNextLevel <= 0 {
		p.XPToNextLevel = 100
	}
	if p.XP < 0 {
		p.XP = 0
	}
	if p.XP >= p.XPToNextLevel {
		p.XP = p.XPToNextLevel - 1
	}
	if p.Fragments < 0 {
		p.Fragments = 0
	}
	if p.CurrentHP < 0 {
		p.CurrentHP = 0
	}
	if p.BestStreak < p.CurrentStreak {
		p.BestStreak = p.CurrentStreak
	}
	return &p, nil
}

// DecodeGoal decodes a goal document.
func DecodeGoal(data []byte) (*Goal, error) {
	var g Goal
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode goal: %w", err)
	}
	if g.ID == "" {
		return nil, fmt.Errorf("decode goal: missing id")
	}
	return &g, nil
}

// DecodeRankedMission decodes a ranked mission document, clamping subtask
// progress into [0, target].
func DecodeRankedMission(data []byte) (*RankedMission, error) {
	var m RankedMission
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode mission: %w", err)
	}
	if m.ID == "" {
		return nil, fmt.Errorf("decode mission: missing id")
	}
	for i := range m.DailyMissions {
		for j := range m.DailyMissions[i].SubTasks {
			st := &m.DailyMissions[i].SubTasks[j]
			if st.Current < 0 {
				st.Current = 0
			}
			if st.Target > 0 && st.Current > st.Target {
				st.Current = st.Target
			}
		}
	}
	return &m, nil
}

// DecodeSkill decodes a skill document.
func DecodeSkill(data []byte) (*Skill, error) {
	var s Skill
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode skill: %w", err)
	}
	if s.ID == "" {
		return nil, fmt.Errorf("decode skill: missing id")
	}
	if s.MaxLevel <= 0 {
		s.MaxLevel = 10
	}
	if s.CurrentLevel > s.MaxLevel {
		s.CurrentLevel = s.MaxLevel
	}
	if s.XPToNextLevel <= 0 {
		s.XPToNextLevel = 100
	}
	return &s, nil
}

// DecodeRoutine decodes the routine document.
func DecodeRoutine(data []byte) (*Routine, error) {
	var r Routine
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode routine: %w", err)
	}
	return &r, nil
}

// DecodeRoutineTemplates decodes the routine templates document.
func DecodeRoutineTemplates(data []byte) (*RoutineTemplates, error) {
	var r RoutineTemplates
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode routine templates: %w", err)
	}
	if r.Templates == nil {
		r.Templates = make(map[string][]RoutineEntry)
	}
	return &r, nil
}

// DecodeWorldEvent decodes a world event document.
func DecodeWorldEvent(data []byte) (*WorldEvent, error) {
	var w WorldEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode world event: %w", err)
	}
	if w.ID == "" {
		return nil, fmt.Errorf("decode world event: missing id")
	}
	if w.Progress < 0 {
		w.Progress = 0
	}
	return &w, nil
}
