package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Leganyst/scrutineering-core/internal/model"
	"github.com/Leganyst/scrutineering-core/internal/scrutineering"
	"github.com/Leganyst/scrutineering-core/internal/service"
)

const dateLayout = "2006-01-02"

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %v", name, err)
	}
	return id, nil
}

type reserveRequest struct {
	InspectionTypeID string `json:"inspection_type_id"`
	Date             string `json:"date"`
	StartTime        string `json:"start_time"`
	ResourceIndex    int    `json:"resource_index"`
	TeamID           string `json:"team_id"`
	Notes            string `json:"notes"`
	IsReinspection   bool   `json:"is_reinspection"`
	Priority         int    `json:"priority"`
}

func (s *Server) handleReserve(w http.ResponseWriter, r *http.Request) {
	var req reserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}

	typeID, err := uuid.Parse(req.InspectionTypeID)
	if err != nil {
		http.Error(w, "invalid inspection_type_id", http.StatusBadRequest)
		return
	}
	teamID, err := uuid.Parse(req.TeamID)
	if err != nil {
		http.Error(w, "invalid team_id", http.StatusBadRequest)
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		http.Error(w, "invalid date, want YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	booking, err := s.allocator.Reserve(r.Context(), service.ReserveRequest{
		InspectionTypeID: typeID,
		Date:             date,
		StartTime:        req.StartTime,
		ResourceIndex:    req.ResourceIndex,
		TeamID:           teamID,
		RequestedBy:      identityFrom(r.Context()).UserID,
		Notes:            req.Notes,
		IsReinspection:   req.IsReinspection,
		Priority:         req.Priority,
	})
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	booking, err := s.bookingRepo.GetByID(r.Context(), id.String())
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

type transitionRequest struct {
	Status model.BookingStatus `json:"status"`
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}

	booking, err := s.machine.Transition(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleChecklist(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sections, err := s.tracker.Load(r.Context(), id)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, sections)
}

type setItemRequest struct {
	Status  model.ItemStatus `json:"status"`
	Comment string           `json:"comment"`
}

func (s *Server) handleSetItem(w http.ResponseWriter, r *http.Request) {
	bookingID, err := parseUUIDParam(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	itemID, err := parseUUIDParam(r, "itemID")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req setItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}

	ok, err := s.tracker.SetItem(r.Context(), bookingID, itemID, req.Status, req.Comment, identityFrom(r.Context()).UserID)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": ok})
}

func (s *Server) handleCompletion(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cs, err := s.tracker.CompletionStatus(r.Context(), id)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

type finalizeRequest struct {
	Verdict      service.Verdict `json:"verdict"`
	InspectorIDs []uuid.UUID     `json:"inspector_ids"`
	Notes        string          `json:"notes"`
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req finalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}

	inspectorIDs := req.InspectorIDs
	if len(inspectorIDs) == 0 {
		inspectorIDs = []uuid.UUID{identityFrom(r.Context()).UserID}
	}

	if err := s.recorder.Finalize(r.Context(), id, req.Verdict, inspectorIDs, req.Notes); err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"verdict": string(req.Verdict)})
}

func (s *Server) handleListDay(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	typeID, err := uuid.Parse(q.Get("inspection_type_id"))
	if err != nil {
		http.Error(w, "invalid inspection_type_id", http.StatusBadRequest)
		return
	}
	date, err := time.Parse(dateLayout, q.Get("date"))
	if err != nil {
		http.Error(w, "invalid date, want YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	page := atoiDefault(q.Get("page"), 1)
	pageSize := atoiDefault(q.Get("page_size"), 20)

	bookings, _, err := s.bookingRepo.ListByTypeAndDate(r.Context(), typeID.String(), model.DateOf(date), 0, 0)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, scrutineering.Paginate(bookings, page, pageSize))
}

func (s *Server) handleTeamBookings(w http.ResponseWriter, r *http.Request) {
	teamID, err := parseUUIDParam(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	q := r.URL.Query()
	page := atoiDefault(q.Get("page"), 1)
	pageSize := atoiDefault(q.Get("page_size"), 20)

	bookings, _, err := s.bookingRepo.ListByTeam(r.Context(), teamID.String(), 0, 0)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, scrutineering.Paginate(bookings, page, pageSize))
}

func (s *Server) handleListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.typeRepo.ListActive(r.Context())
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (s *Server) handleFreeSlots(w http.ResponseWriter, r *http.Request) {
	typeID, err := parseUUIDParam(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	date, err := time.Parse(dateLayout, r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, "invalid date, want YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	slots, err := s.allocator.FreeSlots(r.Context(), typeID, date)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

func (s *Server) handleCreateType(w http.ResponseWriter, r *http.Request) {
	var t model.InspectionType
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.DurationMin <= 0 {
		http.Error(w, "duration_min must be positive", http.StatusBadRequest)
		return
	}
	if t.SlotCount <= 0 {
		t.SlotCount = 1
	}
	if err := s.typeRepo.Create(r.Context(), &t); err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleUpdateType(w http.ResponseWriter, r *http.Request) {
	typeID, err := parseUUIDParam(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var t model.InspectionType
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}
	t.ID = typeID
	if err := s.typeRepo.Update(r.Context(), &t); err != nil {
		writeError(w, s.log, err)
		return
	}
	updated, err := s.typeRepo.GetByID(r.Context(), typeID.String())
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (s *Server) handleSetTypeActive(w http.ResponseWriter, r *http.Request) {
	typeID, err := parseUUIDParam(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.typeRepo.SetActive(r.Context(), typeID.String(), req.Active); err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"active": req.Active})
}

func (s *Server) handleCreateTemplateItem(w http.ResponseWriter, r *http.Request) {
	typeID, err := parseUUIDParam(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var item model.ChecklistTemplateItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.InspectionTypeID = typeID
	if err := s.checklistRepo.CreateTemplateItem(r.Context(), &item); err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := atoiDefault(r.URL.Query().Get("limit"), 50)
	events, err := s.eventRepo.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := s.resultRepo.GetByBookingID(r.Context(), id.String())
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := atoiDefault(q.Get("page"), 1)
	pageSize := atoiDefault(q.Get("page_size"), 20)

	teams, _, err := s.teamRepo.List(r.Context(), 0, 0)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, scrutineering.Paginate(teams, page, pageSize))
}

func (s *Server) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	team, err := s.teamRepo.GetByID(r.Context(), id.String())
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var team model.Team
	if err := json.NewDecoder(r.Body).Decode(&team); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if team.ID == uuid.Nil {
		team.ID = uuid.New()
	}
	if team.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if team.Status == "" {
		team.Status = model.TeamStatusActive
	}
	if err := s.teamRepo.Create(r.Context(), &team); err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	profile, err := s.userRepo.GetByID(r.Context(), id.UserID.String())
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type syncProfileRequest struct {
	DisplayName string     `json:"display_name"`
	TeamID      *uuid.UUID `json:"team_id"`
}

// handleSyncProfile сохраняет профиль вызывающего. ID и роль берутся из
// identity-заголовков, тело добавляет только то, чего провайдер не знает.
func (s *Server) handleSyncProfile(w http.ResponseWriter, r *http.Request) {
	var req syncProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}

	id := identityFrom(r.Context())
	profile := &model.UserProfile{
		ID:          id.UserID,
		DisplayName: req.DisplayName,
		Role:        id.Role,
		TeamID:      req.TeamID,
	}
	if err := s.userRepo.Upsert(r.Context(), profile); err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil || n <= 0 {
		return def
	}
	return n
}
