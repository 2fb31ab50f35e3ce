package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Leganyst/scrutineering-core/internal/model"
	"github.com/Leganyst/scrutineering-core/internal/repository"
	"github.com/Leganyst/scrutineering-core/internal/service"
)

// Server — тонкий HTTP-слой над ядром. Бизнес-правил здесь нет, только
// разбор входа и коды ответов; вся логика живёт в internal/service.
type Server struct {
	allocator *service.SlotAllocator
	machine   *service.BookingStateMachine
	tracker   *service.ChecklistProgressTracker
	recorder  *service.InspectionResultRecorder

	bookingRepo   repository.BookingRepository
	typeRepo      repository.InspectionTypeRepository
	checklistRepo repository.ChecklistRepository
	resultRepo    repository.ResultRepository
	teamRepo      repository.TeamRepository
	userRepo      repository.UserRepository
	eventRepo     repository.EventRepository

	log *slog.Logger
}

func New(
	allocator *service.SlotAllocator,
	machine *service.BookingStateMachine,
	tracker *service.ChecklistProgressTracker,
	recorder *service.InspectionResultRecorder,
	bookingRepo repository.BookingRepository,
	typeRepo repository.InspectionTypeRepository,
	checklistRepo repository.ChecklistRepository,
	resultRepo repository.ResultRepository,
	teamRepo repository.TeamRepository,
	userRepo repository.UserRepository,
	eventRepo repository.EventRepository,
	log *slog.Logger,
) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		allocator:     allocator,
		machine:       machine,
		tracker:       tracker,
		recorder:      recorder,
		bookingRepo:   bookingRepo,
		typeRepo:      typeRepo,
		checklistRepo: checklistRepo,
		resultRepo:    resultRepo,
		teamRepo:      teamRepo,
		userRepo:      userRepo,
		eventRepo:     eventRepo,
		log:           log,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(withIdentity)

		r.Route("/inspection-types", func(r chi.Router) {
			r.Get("/", s.handleListTypes)
			r.Get("/{id}/free-slots", s.handleFreeSlots)
			// только админ
			r.With(requireRole()).Post("/", s.handleCreateType)
			r.With(requireRole()).Put("/{id}", s.handleUpdateType)
			r.With(requireRole()).Post("/{id}/active", s.handleSetTypeActive)
			r.With(requireRole()).Post("/{id}/checklist-items", s.handleCreateTemplateItem)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", s.handleListDay)
			r.With(requireRole(model.UserRoleTeamLeader, model.UserRoleScrutineer)).
				Post("/", s.handleReserve)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetBooking)
				r.Get("/checklist", s.handleChecklist)
				r.Get("/completion", s.handleCompletion)
				r.Get("/result", s.handleGetResult)
				r.With(requireRole(model.UserRoleScrutineer, model.UserRoleTeamLeader)).
					Post("/status", s.handleTransition)
				r.With(requireRole(model.UserRoleScrutineer)).
					Put("/checklist/{itemID}", s.handleSetItem)
				r.With(requireRole(model.UserRoleScrutineer)).
					Post("/result", s.handleFinalize)
			})
		})

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", s.handleListTeams)
			r.Get("/{id}", s.handleGetTeam)
			r.Get("/{id}/bookings", s.handleTeamBookings)
			r.With(requireRole()).Post("/", s.handleCreateTeam)
		})

		r.Get("/users/me", s.handleGetProfile)
		r.Put("/users/me", s.handleSyncProfile)
		r.With(requireRole()).Get("/events", s.handleEvents)
	})

	return r
}
