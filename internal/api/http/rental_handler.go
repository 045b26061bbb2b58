package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"dresshire-backend/internal/booking"
	"dresshire-backend/internal/domain"
	"dresshire-backend/internal/lifecycle"
)

// RentalHandler exposes the reservation engine and lifecycle state
// machine over HTTP.
type RentalHandler struct {
	engine  *booking.Engine
	machine *lifecycle.Machine
}

func NewRentalHandler(engine *booking.Engine, machine *lifecycle.Machine) *RentalHandler {
	return &RentalHandler{engine: engine, machine: machine}
}

type createRentalRequest struct {
	ProductID       int32  `json:"product_id"`
	RentalStart     string `json:"rental_start"`
	RentalEnd       string `json:"rental_end"`
	TotalPriceCents int32  `json:"total_price_cents"`
	DepositCents    int32  `json:"deposit_cents"`
}

func (h *RentalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRentalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	iv, err := domain.ParseInterval(req.RentalStart, req.RentalEnd)
	if err != nil {
		writeError(w, err)
		return
	}

	claims := claimsFrom(r)
	rental, err := h.engine.CreateRental(r.Context(), claims.UserID, req.ProductID, iv, booking.PriceQuote{
		TotalCents:   req.TotalPriceCents,
		DepositCents: req.DepositCents,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rental)
}

func (h *RentalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid rental id")
		return
	}
	rental, err := h.engine.GetRental(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

type transitionRequest struct {
	// ExpectedVersion, when set, fails the transition if the rental
	// changed since the client read that version.
	ExpectedVersion *int32 `json:"expected_version,omitempty"`
	// ReturnCondition applies to the return endpoint only.
	ReturnCondition string `json:"return_condition,omitempty"`
}

func (h *RentalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, domain.EventApprove)
}

func (h *RentalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, domain.EventReject)
}

func (h *RentalHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, domain.EventCancel)
}

func (h *RentalHandler) Return(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, domain.EventMarkReturned)
}

func (h *RentalHandler) transition(w http.ResponseWriter, r *http.Request, event domain.Event) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid rental id")
		return
	}

	var req transitionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	var opts []lifecycle.Option
	if req.ExpectedVersion != nil {
		opts = append(opts, lifecycle.WithExpectedVersion(*req.ExpectedVersion))
	}
	if event == domain.EventMarkReturned && req.ReturnCondition != "" {
		switch domain.ReturnCondition(req.ReturnCondition) {
		case domain.ReturnConditionGood, domain.ReturnConditionDamaged:
			opts = append(opts, lifecycle.WithReturnCondition(domain.ReturnCondition(req.ReturnCondition)))
		default:
			writeErrorMessage(w, http.StatusBadRequest, "return_condition must be GOOD or DAMAGED")
			return
		}
	}

	rental, err := h.machine.Transition(r.Context(), id, event, claimsFrom(r).Actor(), opts...)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *RentalHandler) ListForProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := parseProductID(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid product id")
		return
	}
	rentals, err := h.engine.ListRentalsForProduct(r.Context(), productID,
		domain.RentalStatus(r.URL.Query().Get("status")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rentals": rentals})
}

// Availability answers a free/busy query and, when the window is taken,
// includes the next bookable window of the same length.
func (h *RentalHandler) Availability(w http.ResponseWriter, r *http.Request) {
	productID, err := parseProductID(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid product id")
		return
	}
	iv, err := domain.ParseInterval(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, err)
		return
	}

	free, err := h.engine.QueryAvailability(r.Context(), productID, iv)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := map[string]interface{}{"available": free}
	if !free {
		if next, err := h.engine.NextAvailable(r.Context(), productID, iv.Days()); err == nil {
			resp["next_available"] = next
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseProductID(r *http.Request) (int32, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(id), nil
}
