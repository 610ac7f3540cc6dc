// Package api exposes the session over HTTP for the web client.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/dvilela/sistema-vida/internal/notify"
	"github.com/dvilela/sistema-vida/internal/state"
	syncctl "github.com/dvilela/sistema-vida/internal/sync"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	controller *syncctl.Controller
	notifier   *notify.Dispatcher
	logger     *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(controller *syncctl.Controller, notifier *notify.Dispatcher, logger *zap.Logger) *Handler {
	return &Handler{
		controller: controller,
		notifier:   notifier,
		logger:     logger,
	}
}

// Router builds the chi router with all routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.healthCheck)
		r.Get("/state", h.getState)
		r.Post("/page", h.setPage)

		r.Post("/missions/{missionID}/dailies/{dailyID}/complete", h.completeDaily)
		r.Post("/missions/{missionID}/dailies/{dailyID}/subtasks", h.updateSubtask)
		r.Post("/missions/{missionID}/dailies/{dailyID}/adjust", h.adjustDaily)
		r.Post("/missions/{missionID}/dailies", h.addDaily)
		r.Post("/missions/{missionID}/complete", h.completeEpic)

		r.Post("/skills/{skillID}/xp", h.addSkillXP)
		r.Post("/events/{eventID}/contribute", h.contribute)

		r.Get("/notifications", h.listNotifications)
	})

	return r
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	s := h.controller.Store().Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"loaded":  s.DataLoaded,
		"offline": s.Profile != nil && s.Profile.OfflineMode,
	})
}

// stateResponse flattens the snapshot for the client.
type stateResponse struct {
	Profile           any               `json:"profile"`
	Goals             any               `json:"goals"`
	Missions          any               `json:"missions"`
	Skills            any               `json:"skills"`
	Routine           any               `json:"routine"`
	RoutineTemplates  any               `json:"routine_templates"`
	AllUsers          any               `json:"all_users"`
	WorldEvents       any               `json:"world_events"`
	Dungeon           any               `json:"dungeon,omitempty"`
	CurrentPage       string            `json:"current_page"`
	GeneratingMission bool              `json:"generating_mission"`
	MissionFeedback   map[string]string `json:"mission_feedback"`
	DataLoaded        bool              `json:"data_loaded"`
}

func (h *Handler) getState(w http.ResponseWriter, r *http.Request) {
	s := h.controller.Store().Snapshot()
	writeJSON(w, http.StatusOK, stateResponse{
		Profile:           s.Profile,
		Goals:             s.Goals,
		Missions:          s.Missions,
		Skills:            s.Skills,
		Routine:           s.Routine,
		RoutineTemplates:  s.RoutineTemplates,
		AllUsers:          s.AllUsers,
		WorldEvents:       s.WorldEvents,
		Dungeon:           s.Dungeon,
		CurrentPage:       s.CurrentPage,
		GeneratingMission: s.GeneratingMission,
		MissionFeedback:   s.MissionFeedback,
		DataLoaded:        s.DataLoaded,
	})
}

type pageRequest struct {
	Page string `json:"page"`
}

func (h *Handler) setPage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Page == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "page is required"})
		return
	}
	h.controller.Store().Dispatch(state.SetCurrentPage{Page: req.Page})
	writeJSON(w, http.StatusOK, map[string]string{"page": req.Page})
}

func (h *Handler) completeDaily(w http.ResponseWriter, r *http.Request) {
	missionID := chi.URLParam(r, "missionID")
	dailyID := chi.URLParam(r, "dailyID")

	if err := h.controller.CompleteDailyMission(r.Context(), missionID, dailyID); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, h.controller.Store().Snapshot().Profile)
}

type subtaskRequest struct {
	SubTask string  `json:"sub_task"`
	Amount  float64 `json:"amount"`
}

func (h *Handler) updateSubtask(w http.ResponseWriter, r *http.Request) {
	var req subtaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	h.controller.UpdateSubtaskProgress(
		chi.URLParam(r, "missionID"), chi.URLParam(r, "dailyID"),
		req.SubTask, req.Amount)
	writeJSON(w, http.StatusOK, h.controller.Store().Snapshot().Missions)
}

type adjustRequest struct {
	Feedback string `json:"feedback"`
}

func (h *Handler) adjustDaily(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	err := h.controller.AdjustDailyMission(r.Context(),
		chi.URLParam(r, "missionID"), chi.URLParam(r, "dailyID"), req.Feedback)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, h.controller.Store().Snapshot().Missions)
}

func (h *Handler) addDaily(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.AddDailyMission(r.Context(), chi.URLParam(r, "missionID")); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, h.controller.Store().Snapshot().Missions)
}

func (h *Handler) completeEpic(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.CompleteEpicMission(r.Context(), chi.URLParam(r, "missionID")); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, h.controller.Store().Snapshot().Missions)
}

type skillXPRequest struct {
	XP int `json:"xp"`
}

func (h *Handler) addSkillXP(w http.ResponseWriter, r *http.Request) {
	var req skillXPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.controller.AddSkillXP(r.Context(), chi.URLParam(r, "skillID"), req.XP); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, h.controller.Store().Snapshot().Skills)
}

type contributeRequest struct {
	Amount float64 `json:"amount"`
}

func (h *Handler) contribute(w http.ResponseWriter, r *http.Request) {
	var req contributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.controller.ContributeToWorldEvent(r.Context(), chi.URLParam(r, "eventID"), req.Amount); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, h.controller.Store().Snapshot().WorldEvents)
}

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, h.notifier.History(limit))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
