// Package sync coordinates the state store, the remote document store, the
// persistence pipeline and the content generator for one player session.
// Every mutation is optimistic: local state updates first, remote writes
// follow and never roll the session back.
package sync

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/dvilela/sistema-vida/internal/content"
	"github.com/dvilela/sistema-vida/internal/demo"
	"github.com/dvilela/sistema-vida/internal/events"
	"github.com/dvilela/sistema-vida/internal/notify"
	"github.com/dvilela/sistema-vida/internal/persist"
	"github.com/dvilela/sistema-vida/internal/player"
	"github.com/dvilela/sistema-vida/internal/progression"
	"github.com/dvilela/sistema-vida/internal/remote"
	"github.com/dvilela/sistema-vida/internal/state"
)

// defaultStreakInterval is the streak length multiple that grants bonus
// fragments (2x the streak length).
const defaultStreakInterval = 7

// Controller drives the session lifecycle: initial hydration, optimistic
// mutations and their persistence, and notification fan-out.
type Controller struct {
	store          *state.Store
	remote         remote.Store
	pipeline       *persist.Pipeline
	gen            content.Generator
	notifier       *notify.Dispatcher
	bus            *events.Bus
	userID         string
	email          string
	streakInterval int
	logger         *zap.Logger
	now            func() time.Time
}

// NewController wires a session controller. bus may be nil when Redis is not
// configured; world-event contributions then stay local.
func NewController(
	store *state.Store,
	remoteStore remote.Store,
	pipeline *persist.Pipeline,
	gen content.Generator,
	notifier *notify.Dispatcher,
	bus *events.Bus,
	userID, email string,
	logger *zap.Logger,
) *Controller {
	return &Controller{
		store:          store,
		remote:         remoteStore,
		pipeline:       pipeline,
		gen:            gen,
		notifier:       notifier,
		bus:            bus,
		userID:         userID,
		email:          email,
		streakInterval: defaultStreakInterval,
		logger:         logger,
		now:            time.Now,
	}
}

// SetStreakInterval overrides the streak bonus interval. Values below 1 are
// ignored.
func (c *Controller) SetStreakInterval(n int) {
	if n > 0 {
		c.streakInterval = n
	}
}

// Store exposes the underlying state store for read access and subscriptions.
func (c *Controller) Store() *state.Store { return c.store }

// fetched carries the result of the parallel initial read.
type fetched struct {
	profile          *player.Profile
	goals            []player.Goal
	missions         []player.RankedMission
	skills           []player.Skill
	routine          *player.Routine
	routineTemplates *player.RoutineTemplates
	allUsers         []player.Profile
	worldEvents      []player.WorldEvent
}

// FetchAll hydrates the state store from the remote store. All buckets load
// in parallel; a missing profile is provisioned in place. If any read fails
// the session falls back to the bundled demo dataset in offline mode, so
// FetchAll itself never fails. Calling it on an already-loaded store is a
// no-op.
func (c *Controller) FetchAll(ctx context.Context) {
	if c.store.Snapshot().DataLoaded {
		return
	}

	var (
		f    fetched
		mu   stdsync.Mutex
		errs []error
		wg   stdsync.WaitGroup
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}
	run := func(fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				fail(err)
			}
		}()
	}

	run(func() error {
		p, err := c.loadProfile(ctx)
		if err != nil {
			return err
		}
		f.profile = p
		return nil
	})
	run(func() error {
		goals, err := c.loadGoals(ctx)
		f.goals = goals
		return err
	})
	run(func() error {
		missions, err := c.loadMissions(ctx)
		f.missions = missions
		return err
	})
	run(func() error {
		skills, err := c.loadSkills(ctx)
		f.skills = skills
		return err
	})
	run(func() error {
		r, t, err := c.loadRoutine(ctx)
		f.routine, f.routineTemplates = r, t
		return err
	})
	run(func() error {
		users, err := c.loadAllUsers(ctx)
		f.allUsers = users
		return err
	})
	run(func() error {
		evs, err := c.loadWorldEvents(ctx)
		f.worldEvents = evs
		return err
	})
	wg.Wait()

	if len(errs) > 0 {
		c.logger.Warn("remote load failed, falling back to demo data",
			zap.Int("failures", len(errs)),
			zap.Error(errs[0]))
		c.hydrateOffline(ctx)
		return
	}

	c.store.Dispatch(state.SetInitialData{
		Profile:          f.profile,
		Goals:            f.goals,
		Missions:         f.missions,
		Skills:           f.skills,
		Routine:          f.routine,
		RoutineTemplates: f.routineTemplates,
		AllUsers:         f.allUsers,
		WorldEvents:      f.worldEvents,
	})
	c.logger.Info("session hydrated",
		zap.String("user", c.userID),
		zap.Int("goals", len(f.goals)),
		zap.Int("missions", len(f.missions)),
		zap.Int("skills", len(f.skills)))
}

// loadProfile reads the profile document, provisioning a fresh one when the
// user has no document yet.
func (c *Controller) loadProfile(ctx context.Context) (*player.Profile, error) {
	coll, id := persist.DocumentPath(persist.BucketProfile, c.userID)
	raw, err := c.remote.GetDocument(ctx, coll, id)
	if errors.Is(err, remote.ErrNotFound) {
		p := defaultProfile(c.userID, c.email)
		if err := c.remote.SetDocument(ctx, coll, id, p, false); err != nil {
			return nil, fmt.Errorf("provision profile: %w", err)
		}
		c.logger.Info("provisioned new profile", zap.String("user", c.userID))
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return player.DecodeProfile(raw)
}

func (c *Controller) loadGoals(ctx context.Context) ([]player.Goal, error) {
	docs, err := c.remote.GetCollection(ctx, persist.CollectionPath(persist.BucketGoals, c.userID))
	if err != nil {
		return nil, fmt.Errorf("load goals: %w", err)
	}
	goals := make([]player.Goal, 0, len(docs))
	for id, raw := range docs {
		g, err := player.DecodeGoal(raw)
		if err != nil {
			c.logger.Warn("skipping malformed goal", zap.String("id", id), zap.Error(err))
			continue
		}
		goals = append(goals, *g)
	}
	return goals, nil
}

func (c *Controller) loadMissions(ctx context.Context) ([]player.RankedMission, error) {
	docs, err := c.remote.GetCollection(ctx, persist.CollectionPath(persist.BucketMissions, c.userID))
	if err != nil {
		return nil, fmt.Errorf("load missions: %w", err)
	}
	missions := make([]player.RankedMission, 0, len(docs))
	for id, raw := range docs {
		m, err := player.DecodeRankedMission(raw)
		if err != nil {
			c.logger.Warn("skipping malformed mission", zap.String("id", id), zap.Error(err))
			continue
		}
		missions = append(missions, *m)
	}
	return missions, nil
}

func (c *Controller) loadSkills(ctx context.Context) ([]player.Skill, error) {
	docs, err := c.remote.GetCollection(ctx, persist.CollectionPath(persist.BucketSkills, c.userID))
	if err != nil {
		return nil, fmt.Errorf("load skills: %w", err)
	}
	skills := make([]player.Skill, 0, len(docs))
	for id, raw := range docs {
		s, err := player.DecodeSkill(raw)
		if err != nil {
			c.logger.Warn("skipping malformed skill", zap.String("id", id), zap.Error(err))
			continue
		}
		skills = append(skills, *s)
	}
	return skills, nil
}

// loadRoutine reads the routine and templates documents; absence of either
// yields an empty default rather than an error.
func (c *Controller) loadRoutine(ctx context.Context) (*player.Routine, *player.RoutineTemplates, error) {
	coll, id := persist.DocumentPath(persist.BucketRoutine, c.userID)
	raw, err := c.remote.GetDocument(ctx, coll, id)
	routine := &player.Routine{}
	switch {
	case errors.Is(err, remote.ErrNotFound):
	case err != nil:
		return nil, nil, fmt.Errorf("load routine: %w", err)
	default:
		if routine, err = player.DecodeRoutine(raw); err != nil {
			return nil, nil, err
		}
	}

	coll, id = persist.DocumentPath(persist.BucketRoutineTemplates, c.userID)
	raw, err = c.remote.GetDocument(ctx, coll, id)
	templates := &player.RoutineTemplates{Templates: map[string][]player.RoutineEntry{}}
	switch {
	case errors.Is(err, remote.ErrNotFound):
	case err != nil:
		return nil, nil, fmt.Errorf("load routine templates: %w", err)
	default:
		if templates, err = player.DecodeRoutineTemplates(raw); err != nil {
			return nil, nil, err
		}
	}
	return routine, templates, nil
}

func (c *Controller) loadAllUsers(ctx context.Context) ([]player.Profile, error) {
	docs, err := c.remote.GetCollection(ctx, persist.CollectionPath(persist.BucketAllUsers, c.userID))
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	users := make([]player.Profile, 0, len(docs))
	for id, raw := range docs {
		p, err := player.DecodeProfile(raw)
		if err != nil {
			c.logger.Warn("skipping malformed user", zap.String("id", id), zap.Error(err))
			continue
		}
		users = append(users, *p)
	}
	return users, nil
}

func (c *Controller) loadWorldEvents(ctx context.Context) ([]player.WorldEvent, error) {
	docs, err := c.remote.GetCollection(ctx, persist.CollectionPath(persist.BucketWorldEvents, c.userID))
	if err != nil {
		return nil, fmt.Errorf("load world events: %w", err)
	}
	evs := make([]player.WorldEvent, 0, len(docs))
	for id, raw := range docs {
		w, err := player.DecodeWorldEvent(raw)
		if err != nil {
			c.logger.Warn("skipping malformed world event", zap.String("id", id), zap.Error(err))
			continue
		}
		evs = append(evs, *w)
	}
	return evs, nil
}

// hydrateOffline loads the demo dataset and flags the session offline.
// Persistence is suppressed for the rest of the session.
func (c *Controller) hydrateOffline(ctx context.Context) {
	profile := demo.Profile(c.userID, c.email)
	profile.OfflineMode = true
	c.store.Dispatch(state.SetInitialData{
		Profile:          profile,
		Goals:            demo.Goals(),
		Missions:         demo.Missions(),
		Skills:           demo.Skills(),
		Routine:          demo.Routine(),
		RoutineTemplates: demo.RoutineTemplates(),
		AllUsers:         []player.Profile{*profile},
		WorldEvents:      demo.WorldEvents(),
	})
	c.notifier.Publish(ctx, notify.FormatOfflineMode())
}

// defaultProfile is the profile a brand-new user starts with.
func defaultProfile(id, email string) *player.Profile {
	return &player.Profile{
		ID:            id,
		Email:         email,
		Level:         1,
		XP:            0,
		XPToNextLevel: progression.XPToNextLevel(1),
		CurrentHP:     100,
		Settings: player.UserSettings{
			Theme:    "dark",
			Language: "pt-BR",
		},
	}
}

// persistBucket routes a bucket write through the pipeline unless the
// session is offline, in which case local state is the only copy.
func (c *Controller) persistBucket(b persist.Bucket, data any, immediate bool) <-chan error {
	if s := c.store.Snapshot(); s.Profile != nil && s.Profile.OfflineMode {
		return nil
	}
	return c.pipeline.Persist(b, data, immediate)
}

// PersistData schedules a write of the named bucket from the current
// snapshot.
func (c *Controller) PersistData(b persist.Bucket, immediate bool) <-chan error {
	s := c.store.Snapshot()
	switch b {
	case persist.BucketProfile:
		return c.persistBucket(b, s.Profile, immediate)
	case persist.BucketGoals:
		return c.persistBucket(b, s.Goals, immediate)
	case persist.BucketMissions:
		return c.persistBucket(b, s.Missions, immediate)
	case persist.BucketSkills:
		return c.persistBucket(b, s.Skills, immediate)
	case persist.BucketRoutine:
		return c.persistBucket(b, s.Routine, immediate)
	case persist.BucketRoutineTemplates:
		return c.persistBucket(b, s.RoutineTemplates, immediate)
	case persist.BucketAllUsers:
		return c.persistBucket(b, s.AllUsers, immediate)
	case persist.BucketWorldEvents:
		return c.persistBucket(b, s.WorldEvents, immediate)
	}
	return nil
}

// UpdateSubtaskProgress advances a subtask and schedules a debounced write
// of the missions bucket.
func (c *Controller) UpdateSubtaskProgress(missionID, dailyID, subtask string, amount float64) {
	next := c.store.Dispatch(state.UpdateSubtaskProgress{
		MissionID: missionID,
		DailyID:   dailyID,
		SubTask:   subtask,
		Amount:    amount,
	})
	c.persistBucket(persist.BucketMissions, next.Missions, false)
}

// CompleteDailyMission applies the full completion flow: rewards and streak
// accounting on the profile, the completion mark on the mission, generation
// of the next daily mission, persistence and notifications. Completing an
// already-completed mission is a no-op.
func (c *Controller) CompleteDailyMission(ctx context.Context, missionID, dailyID string) error {
	snap := c.store.Snapshot()
	mission, daily := findDaily(snap.Missions, missionID, dailyID)
	if mission == nil || daily == nil {
		return fmt.Errorf("daily mission %s/%s not found", missionID, dailyID)
	}
	if daily.Completed {
		return nil
	}
	profile := snap.Profile
	if profile == nil {
		return fmt.Errorf("no profile loaded")
	}

	now := c.now().UTC()
	updated := *profile

	// Streak: same-day completions leave it untouched, consecutive days
	// extend it, anything else restarts at 1.
	streakAdvanced := false
	switch {
	case profile.LastMissionCompletedDate != nil && profile.LastMissionCompletedDate.SameDay(now):
	case profile.LastMissionCompletedDate != nil && profile.LastMissionCompletedDate.IsYesterdayOf(now):
		updated.CurrentStreak++
		streakAdvanced = true
	default:
		updated.CurrentStreak = 1
		streakAdvanced = true
	}
	if updated.CurrentStreak > updated.BestStreak {
		updated.BestStreak = updated.CurrentStreak
	}
	stamp := player.Timestamp{Time: now}
	updated.LastMissionCompletedDate = &stamp

	fragments := daily.FragmentReward
	var streakNote *notify.Notification
	if streakAdvanced && updated.CurrentStreak%c.streakInterval == 0 {
		bonus := 2 * updated.CurrentStreak
		fragments += bonus
		streakNote = notify.FormatStreakBonus(notify.StreakBonusEvent{
			Streak:    updated.CurrentStreak,
			Fragments: bonus,
		})
	}
	updated.Fragments += fragments

	var levelNote *notify.Notification
	newLevel, newXP, newNext, gained := progression.ApplyXP(
		profile.Level, profile.XP, profile.XPToNextLevel, daily.XPReward)
	updated.Level, updated.XP, updated.XPToNextLevel = newLevel, newXP, newNext
	if gained > 0 {
		levelNote = notify.FormatLevelUp(notify.LevelUpEvent{
			NewLevel: newLevel,
			Rank:     progression.RankForLevel(newLevel),
		})
	}

	next := c.generateNext(ctx, mission, daily, updated.Level)

	st := c.store.Dispatch(state.CompleteDailyMission{
		MissionID:   missionID,
		DailyID:     dailyID,
		CompletedAt: stamp,
		Next:        next,
	})
	st = c.store.Dispatch(state.SetProfile{Profile: &updated})

	c.persistBucket(persist.BucketProfile, st.Profile, false)
	c.persistBucket(persist.BucketMissions, st.Missions, false)

	if levelNote != nil {
		c.notifier.Publish(ctx, levelNote)
	}
	if streakNote != nil {
		c.notifier.Publish(ctx, streakNote)
	}
	c.logger.Info("daily mission completed",
		zap.String("mission", missionID),
		zap.String("daily", dailyID),
		zap.Int("xp", daily.XPReward),
		zap.Int("level", updated.Level),
		zap.Int("streak", updated.CurrentStreak))
	return nil
}

// generateNext asks the generator for the follow-up daily mission, toggling
// the transient generating flag. Generation failure substitutes the
// deterministic fallback, never an error.
func (c *Controller) generateNext(ctx context.Context, mission *player.RankedMission, completed *player.DailyMission, playerLevel int) *player.DailyMission {
	c.store.Dispatch(state.SetGeneratingMission{Generating: true})
	defer c.store.Dispatch(state.SetGeneratingMission{Generating: false})

	in := content.MissionInput{
		GoalName:      mission.GoalName,
		MissionName:   mission.Name,
		Rank:          mission.Rank,
		PlayerLevel:   playerLevel,
		LastDailyName: completed.Name,
	}
	gen, err := c.gen.NextDailyMission(ctx, in)
	if err != nil {
		c.logger.Warn("mission generation failed, using fallback", zap.Error(err))
		gen = content.FallbackNextMission(in)
	}
	dm := gen.ToDailyMission()
	return &dm
}

// AddDailyMission generates a fresh daily mission for a ranked mission,
// replacing any not-yet-completed one so a single daily stays active.
func (c *Controller) AddDailyMission(ctx context.Context, missionID string) error {
	snap := c.store.Snapshot()
	mission := findMission(snap.Missions, missionID)
	if mission == nil {
		return fmt.Errorf("mission %s not found", missionID)
	}
	level := 1
	if snap.Profile != nil {
		level = snap.Profile.Level
	}
	var last *player.DailyMission
	for i := range mission.DailyMissions {
		if mission.DailyMissions[i].Completed {
			last = &mission.DailyMissions[i]
		}
	}
	if last == nil {
		last = &player.DailyMission{}
	}

	next := c.generateNext(ctx, mission, last, level)
	st := c.store.Dispatch(state.AddDailyMission{MissionID: missionID, Mission: *next})
	c.persistBucket(persist.BucketMissions, st.Missions, false)
	return nil
}

// AdjustDailyMission regenerates a daily mission from player feedback,
// keeping its id so sibling references stay valid. Generation failure falls
// back to the same mission with reduced targets.
func (c *Controller) AdjustDailyMission(ctx context.Context, missionID, dailyID, feedback string) error {
	snap := c.store.Snapshot()
	_, daily := findDaily(snap.Missions, missionID, dailyID)
	if daily == nil {
		return fmt.Errorf("daily mission %s/%s not found", missionID, dailyID)
	}
	if daily.Completed {
		return fmt.Errorf("daily mission %s already completed", dailyID)
	}

	c.store.Dispatch(state.SetMissionFeedback{MissionID: dailyID, Feedback: feedback})
	c.store.Dispatch(state.SetGeneratingMission{Generating: true})
	defer c.store.Dispatch(state.SetGeneratingMission{Generating: false})

	in := content.AdjustInput{Mission: *daily, Feedback: feedback}
	gen, err := c.gen.AdjustDailyMission(ctx, in)
	if err != nil {
		c.logger.Warn("mission adjustment failed, using fallback", zap.Error(err))
		gen = content.FallbackAdjustedMission(in)
	}
	adjusted := gen.ToDailyMission()
	adjusted.ID = dailyID

	st := c.store.Dispatch(state.AdjustDailyMission{MissionID: missionID, Mission: adjusted})
	c.store.Dispatch(state.ClearMissionFeedback{MissionID: dailyID})
	c.persistBucket(persist.BucketMissions, st.Missions, false)
	return nil
}

// CompleteEpicMission marks a ranked mission done and completes its goal,
// emitting the preference-gated goal notification.
func (c *Controller) CompleteEpicMission(ctx context.Context, missionID string) error {
	snap := c.store.Snapshot()
	mission := findMission(snap.Missions, missionID)
	if mission == nil {
		return fmt.Errorf("mission %s not found", missionID)
	}
	if mission.Completed {
		return nil
	}

	st := c.store.Dispatch(state.CompleteEpicMission{MissionID: missionID})

	goalDone := false
	goals := make([]player.Goal, len(st.Goals))
	copy(goals, st.Goals)
	for i := range goals {
		if goals[i].Name == mission.GoalName && !goals[i].Completed {
			goals[i].Completed = true
			goalDone = true
		}
	}
	if goalDone {
		st = c.store.Dispatch(state.SetGoals{Goals: goals})
		if snap.Profile != nil {
			c.notifier.Publish(ctx, notify.FormatGoalCompleted(
				snap.Profile.Settings.Notifications,
				notify.GoalCompletedEvent{GoalName: mission.GoalName},
			))
		}
		c.persistBucket(persist.BucketGoals, st.Goals, false)
	}
	c.persistBucket(persist.BucketMissions, st.Missions, false)
	return nil
}

// AddSkillXP grants XP to a skill, carrying level-ups with the same 1.5x
// requirement growth as the profile, capped at the skill's max level.
func (c *Controller) AddSkillXP(ctx context.Context, skillID string, gained int) error {
	snap := c.store.Snapshot()
	skill := findSkill(snap.Skills, skillID)
	if skill == nil {
		return fmt.Errorf("skill %s not found", skillID)
	}
	if gained <= 0 {
		return fmt.Errorf("skill xp must be positive, got %d", gained)
	}

	level, xp, next := skill.CurrentLevel, skill.CurrentXP+gained, skill.XPToNextLevel
	leveled := false
	for xp >= next && level < skill.MaxLevel {
		xp -= next
		level++
		next = next * 3 / 2
		leveled = true
	}
	if level >= skill.MaxLevel && xp >= next {
		xp = next - 1
	}

	st := c.store.Dispatch(state.UpdateSkill{
		SkillID: skillID,
		Patch: player.SkillPatch{
			CurrentLevel:   &level,
			CurrentXP:      &xp,
			XPToNextLevel:  &next,
			LastActivityAt: player.Now(),
		},
	})
	c.persistBucket(persist.BucketSkills, st.Skills, false)

	if leveled {
		c.notifier.Publish(ctx, notify.FormatSkillUp(notify.SkillUpEvent{
			SkillName: skill.Name,
			NewLevel:  level,
		}))
	}
	return nil
}

// ContributeToWorldEvent bumps a world event's progress locally, persists
// the bucket and broadcasts the contribution when a bus is attached.
func (c *Controller) ContributeToWorldEvent(ctx context.Context, eventID string, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("contribution must be positive, got %v", amount)
	}
	snap := c.store.Snapshot()
	evs := make([]player.WorldEvent, len(snap.WorldEvents))
	copy(evs, snap.WorldEvents)
	found := false
	for i := range evs {
		if evs[i].ID == eventID {
			evs[i].Progress += amount
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("world event %s not found", eventID)
	}

	st := c.store.Dispatch(state.SetWorldEvents{Events: evs})
	c.persistBucket(persist.BucketWorldEvents, st.WorldEvents, false)

	if c.bus != nil {
		if err := c.bus.Publish(ctx, &events.Contribution{
			EventID: eventID,
			UserID:  c.userID,
			Amount:  amount,
		}); err != nil {
			c.logger.Warn("contribution broadcast failed", zap.Error(err))
		}
	}
	return nil
}

// ApplyContribution folds a contribution received from another instance
// into local state without re-persisting or re-broadcasting it.
func (c *Controller) ApplyContribution(contrib *events.Contribution) {
	if contrib.UserID == c.userID {
		return
	}
	snap := c.store.Snapshot()
	evs := make([]player.WorldEvent, len(snap.WorldEvents))
	copy(evs, snap.WorldEvents)
	for i := range evs {
		if evs[i].ID == contrib.EventID {
			evs[i].Progress += contrib.Amount
			c.store.Dispatch(state.SetWorldEvents{Events: evs})
			return
		}
	}
}

// Close flushes and stops the persistence pipeline.
func (c *Controller) Close() {
	c.pipeline.Close()
}

func findMission(missions []player.RankedMission, id string) *player.RankedMission {
	for i := range missions {
		if missions[i].ID == id {
			return &missions[i]
		}
	}
	return nil
}

func findDaily(missions []player.RankedMission, missionID, dailyID string) (*player.RankedMission, *player.DailyMission) {
	m := findMission(missions, missionID)
	if m == nil {
		return nil, nil
	}
	for i := range m.DailyMissions {
		if m.DailyMissions[i].ID == dailyID {
			return m, &m.DailyMissions[i]
		}
	}
	return m, nil
}

func findSkill(skills []player.Skill, id string) *player.Skill {
	for i := range skills {
		if skills[i].ID == id {
			return &skills[i]
		}
	}
	return nil
}
