package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dvilela/sistema-vida/internal/content"
	"github.com/dvilela/sistema-vida/internal/notify"
	"github.com/dvilela/sistema-vida/internal/persist"
	"github.com/dvilela/sistema-vida/internal/player"
	"github.com/dvilela/sistema-vida/internal/remote"
	"github.com/dvilela/sistema-vida/internal/state"
	syncctl "github.com/dvilela/sistema-vida/internal/sync"
)

// newTestServer wires a handler on an in-memory store with a seeded session.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()

	store := state.New(logger)
	rs := remote.NewMemoryStore()
	pipeline := persist.NewPipeline(rs, "u1", time.Millisecond, logger)
	dispatcher := notify.NewDispatcher(logger)
	controller := syncctl.NewController(store, rs, pipeline,
		content.StaticGenerator{}, dispatcher, nil, "u1", "u1@vida.app", logger)
	t.Cleanup(controller.Close)

	store.Dispatch(state.SetInitialData{
		Profile: &player.Profile{ID: "u1", Level: 4, XP: 40, XPToNextLevel: 100, Fragments: 10},
		Goals:   []player.Goal{{ID: "g1", Name: "Correr uma meia maratona"}},
		Missions: []player.RankedMission{
			{
				ID: "m1", Name: "Trilha do Corredor", Rank: "F",
				GoalName: "Correr uma meia maratona",
				DailyMissions: []player.DailyMission{
					{
						ID: "d1", Name: "Corrida leve", XPReward: 80, FragmentReward: 5,
						SubTasks: []player.SubTask{{Name: "distancia", Target: 3, Unit: "km"}},
					},
				},
			},
		},
		Skills:      []player.Skill{{ID: "s1", Name: "Resistência", CurrentLevel: 2, MaxLevel: 10, CurrentXP: 0, XPToNextLevel: 100}},
		WorldEvents: []player.WorldEvent{{ID: "e1", Name: "Maratona Global", Progress: 100}},
	})

	h := NewHandler(controller, dispatcher, logger)
	ts := httptest.NewServer(h.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, ts *httptest.Server, path string, body interface{}) *http.Response {
	t.Helper()
	b, _ := json.Marshal(body)
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func getJSON(t *testing.T, ts *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)
	resp := getJSON(t, ts, "/api/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]any
	decodeJSON(t, resp, &body)
	if body["status"] != "ok" || body["loaded"] != true {
		t.Errorf("health body = %v", body)
	}
}

func TestGetState(t *testing.T) {
	ts := newTestServer(t)
	resp := getJSON(t, ts, "/api/state")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body stateResponse
	decodeJSON(t, resp, &body)
	if !body.DataLoaded || body.CurrentPage != "dashboard" {
		t.Errorf("state body = %+v", body)
	}
}

func TestSetPage(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts, "/api/page", map[string]string{"page": "skills"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, ts, "/api/page", map[string]string{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty page should 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCompleteDailyEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts, "/api/missions/m1/dailies/d1/complete", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var profile player.Profile
	decodeJSON(t, resp, &profile)
	if profile.Level != 5 || profile.XP != 20 || profile.XPToNextLevel != 150 {
		t.Errorf("profile = %d/%d/%d, want 5/20/150", profile.Level, profile.XP, profile.XPToNextLevel)
	}

	resp = postJSON(t, ts, "/api/missions/m1/dailies/missing/complete", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown daily should 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUpdateSubtaskEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts, "/api/missions/m1/dailies/d1/subtasks",
		map[string]any{"sub_task": "distancia", "amount": 2})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var missions []player.RankedMission
	decodeJSON(t, resp, &missions)
	if missions[0].DailyMissions[0].SubTasks[0].Current != 2 {
		t.Errorf("subtask current = %v, want 2", missions[0].DailyMissions[0].SubTasks[0].Current)
	}
}

func TestAddSkillXPEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts, "/api/skills/s1/xp", map[string]int{"xp": 120})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var skills []player.Skill
	decodeJSON(t, resp, &skills)
	if skills[0].CurrentLevel != 3 {
		t.Errorf("skill level = %d, want 3", skills[0].CurrentLevel)
	}

	resp = postJSON(t, ts, "/api/skills/s1/xp", map[string]int{"xp": -5})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("negative xp should 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestContributeEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts, "/api/events/e1/contribute", map[string]float64{"amount": 50})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var evs []player.WorldEvent
	decodeJSON(t, resp, &evs)
	if evs[0].Progress != 150 {
		t.Errorf("progress = %v, want 150", evs[0].Progress)
	}
}

func TestNotificationsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	// Level-up from the completion flow lands in the history feed.
	resp := postJSON(t, ts, "/api/missions/m1/dailies/d1/complete", nil)
	resp.Body.Close()

	resp = getJSON(t, ts, "/api/notifications?limit=10")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var records []notify.Record
	decodeJSON(t, resp, &records)
	if len(records) == 0 {
		t.Fatal("expected at least one notification")
	}

	resp = getJSON(t, ts, "/api/notifications?limit=abc")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad limit should 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
