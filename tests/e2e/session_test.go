package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/dvilela/sistema-vida/internal/content"
	"github.com/dvilela/sistema-vida/internal/notify"
	"github.com/dvilela/sistema-vida/internal/persist"
	"github.com/dvilela/sistema-vida/internal/player"
	"github.com/dvilela/sistema-vida/internal/remote"
	"github.com/dvilela/sistema-vida/internal/state"
	syncctl "github.com/dvilela/sistema-vida/internal/sync"
)

func newSession(t *testing.T, userID string) *syncctl.Controller {
	t.Helper()
	store := state.New(testLogger)
	pipeline := persist.NewPipeline(testPGStore, userID, 10*time.Millisecond, testLogger)
	dispatcher := notify.NewDispatcher(testLogger)
	c := syncctl.NewController(store, testPGStore, pipeline,
		content.StaticGenerator{}, dispatcher, nil, userID, userID+"@vida.app", testLogger)
	t.Cleanup(c.Close)
	return c
}

// TestPostgresDocumentStore exercises the document CRUD surface against a
// real database: merge semantics, collection reads and atomic batches.
func TestPostgresDocumentStore(t *testing.T) {
	ctx := context.Background()

	err := testPGStore.SetDocument(ctx, "users", "pg-u1",
		map[string]any{"id": "pg-u1", "level": 1, "name": "Teste"}, false)
	if err != nil {
		t.Fatalf("SetDocument: %v", err)
	}

	// Merge preserves fields the update does not mention.
	if err := testPGStore.SetDocument(ctx, "users", "pg-u1",
		map[string]any{"level": 2}, true); err != nil {
		t.Fatalf("merge SetDocument: %v", err)
	}
	raw, err := testPGStore.GetDocument(ctx, "users", "pg-u1")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	p, err := player.DecodeProfile(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Level != 2 || p.Name != "Teste" {
		t.Errorf("merged doc = %+v", p)
	}

	// Batch: delete one, upsert two, atomically.
	coll := "users/pg-u1/goals"
	for _, id := range []string{"g1", "g2"} {
		if err := testPGStore.SetDocument(ctx, coll, id,
			player.Goal{ID: id, Name: id}, false); err != nil {
			t.Fatalf("seed goal %s: %v", id, err)
		}
	}
	ops := []remote.Op{remote.Delete(coll, "g1")}
	up, err := remote.Upsert(coll, "g3", player.Goal{ID: "g3", Name: "nova"})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	ops = append(ops, up)
	if err := testPGStore.BatchWrite(ctx, ops); err != nil {
		t.Fatalf("BatchWrite: %v", err)
	}

	docs, err := testPGStore.GetCollection(ctx, coll)
	if err != nil {
		t.Fatalf("GetCollection: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("collection size = %d, want 2", len(docs))
	}
	if _, ok := docs["g1"]; ok {
		t.Error("g1 should be deleted")
	}
	if _, ok := docs["g3"]; !ok {
		t.Error("g3 should exist")
	}

	if _, err := testPGStore.GetDocument(ctx, "users", "missing"); err != remote.ErrNotFound {
		t.Errorf("missing doc err = %v, want ErrNotFound", err)
	}
}

// TestSessionLifecycle runs provisioning, a full daily-mission completion
// and re-hydration against the real store.
func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	userID := "e2e-u1"

	c := newSession(t, userID)
	c.FetchAll(ctx)

	s := c.Store().Snapshot()
	if s.Profile == nil || s.Profile.Level != 1 {
		t.Fatalf("expected provisioned level-1 profile, got %+v", s.Profile)
	}
	if s.Profile.OfflineMode {
		t.Fatal("session should be online")
	}

	// Seed a mission locally and push it through the pipeline.
	c.Store().Dispatch(state.SetMissions{Missions: []player.RankedMission{
		{
			ID: "m1", Name: "Trilha do Corredor", Rank: "F",
			GoalName: "Correr",
			DailyMissions: []player.DailyMission{
				{ID: "d1", Name: "Corrida leve", XPReward: 120, FragmentReward: 5,
					SubTasks: []player.SubTask{{Name: "distancia", Target: 2, Unit: "km"}}},
			},
		},
	}})
	if ch := c.PersistData(persist.BucketMissions, true); ch != nil {
		if err := <-ch; err != nil {
			t.Fatalf("persist missions: %v", err)
		}
	}

	if err := c.CompleteDailyMission(ctx, "m1", "d1"); err != nil {
		t.Fatalf("CompleteDailyMission: %v", err)
	}
	p := c.Store().Snapshot().Profile
	if p.Level != 2 || p.XP != 20 || p.XPToNextLevel != 150 {
		t.Errorf("profile = %d/%d/%d, want 2/20/150", p.Level, p.XP, p.XPToNextLevel)
	}

	// Debounced writes land, then a second session sees the same state.
	time.Sleep(500 * time.Millisecond)

	c2 := newSession(t, userID)
	c2.FetchAll(ctx)
	s2 := c2.Store().Snapshot()
	if s2.Profile.Level != 2 || s2.Profile.XP != 20 {
		t.Errorf("rehydrated profile = %d/%d, want 2/20", s2.Profile.Level, s2.Profile.XP)
	}
	if len(s2.Missions) != 1 {
		t.Fatalf("rehydrated missions = %d, want 1", len(s2.Missions))
	}
	m := s2.Missions[0]
	if !m.DailyMissions[0].Completed {
		t.Error("completed daily should survive rehydration")
	}
	if len(m.DailyMissions) != 2 {
		t.Errorf("generated follow-up mission should survive, got %d dailies", len(m.DailyMissions))
	}
}
