package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/barberdesk/barberdesk/libs/httpx"
	"github.com/barberdesk/barberdesk/services/availability-service/internal/availability"
	"github.com/barberdesk/barberdesk/services/availability-service/internal/service"
)

type AvailabilityHandler struct {
	svc    *service.AvailabilityService
	logger *slog.Logger
}

func NewAvailabilityHandler(svc *service.AvailabilityService, logger *slog.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc, logger: logger}
}

type slotsResponse struct {
	Date                   availability.Date `json:"date"`
	BarberID               string            `json:"barber_id"`
	ServiceDurationMinutes int               `json:"service_duration_minutes"`
	Slots                  []string          `json:"slots"`
}

type openDaysResponse struct {
	From     availability.Date   `json:"from"`
	Days     int                 `json:"days"`
	OpenDays []availability.Date `json:"open_days"`
}

// Register mounts the availability routes on mux.
func (h *AvailabilityHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/availability", h.Slots)
	mux.HandleFunc("/api/v1/availability/open-days", h.OpenDays)
}

func (h *AvailabilityHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	query := service.Query{
		BranchID:             q.Get("branch_id"),
		BarberID:             q.Get("barber_id"),
		ServiceID:            q.Get("service_id"),
		ExcludeAppointmentID: q.Get("exclude_appointment_id"),
	}

	dateStr := strings.TrimSpace(q.Get("date"))
	if dateStr == "" {
		httpx.WriteError(w, http.StatusBadRequest, "date is required")
		return
	}
	date, err := availability.ParseDate(dateStr)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	query.Date = date

	if v := strings.TrimSpace(q.Get("service_duration_minutes")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			httpx.WriteError(w, http.StatusBadRequest, "service_duration_minutes must be a positive integer")
			return
		}
		query.ServiceDurationMinutes = n
	}

	res, err := h.svc.Slots(r.Context(), query)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, slotsResponse{
		Date:                   res.Date,
		BarberID:               res.BarberID,
		ServiceDurationMinutes: res.ServiceDurationMinutes,
		Slots:                  res.Slots,
	})
}

func (h *AvailabilityHandler) OpenDays(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	var from availability.Date
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		d, err := availability.ParseDate(v)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid from, expected YYYY-MM-DD")
			return
		}
		from = d
	} else {
		from = h.svc.Engine().Today()
	}

	days := service.DefaultOpenDays
	if v := strings.TrimSpace(q.Get("days")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "days must be an integer")
			return
		}
		days = n
	}

	out, err := h.svc.OpenDays(r.Context(), q.Get("branch_id"), from, days)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, openDaysResponse{From: from, Days: days, OpenDays: out})
}

func (h *AvailabilityHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, availability.ErrInvalidRequest) {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.ErrorContext(r.Context(), "availability lookup failed",
		"request_id", httpx.RequestIDFromContext(r.Context()),
		"err", err,
	)
	httpx.WriteError(w, http.StatusInternalServerError, "failed to load availability")
}
