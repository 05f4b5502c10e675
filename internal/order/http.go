package order

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"OrderDesk/pkg/kit"
)

const idempotencyHeader = "Idempotency-Key"

type Server struct {
	Orders *Service
	Log    *zap.Logger
}

type createReq struct {
	Items []ItemRequest `json:"items"`
}

// Confirmation is the whole response to a placed order.
type Confirmation struct {
	OrderID     int64 `json:"orderId"`
	DateCreated Date  `json:"dateCreated"`
}

func NewConfirmation(o Order) Confirmation {
	return Confirmation{OrderID: o.ID, DateCreated: o.DateCreated}
}

type itemView struct {
	ID         int64  `json:"id"`
	ProductID  int64  `json:"productId"`
	Quantity   int64  `json:"quantity"`
	UnitPrice  string `json:"unitPrice"`
	TotalPrice string `json:"totalPrice"`
}

type orderView struct {
	ID              int64      `json:"id"`
	DateCreated     Date       `json:"dateCreated"`
	OrderItems      []itemView `json:"orderItems"`
	TotalOrderPrice string     `json:"totalOrderPrice"`
}

func newOrderView(o Order) orderView {
	items := make([]itemView, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, itemView{
			ID:         it.ID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice.String(),
			TotalPrice: it.TotalPrice().String(),
		})
	}
	return orderView{
		ID:              o.ID,
		DateCreated:     o.DateCreated,
		OrderItems:      items,
		TotalOrderPrice: o.TotalPrice().String(),
	}
}

func (s *Server) CreateHandler() http.HandlerFunc { return s.create }
func (s *Server) GetHandler() http.HandlerFunc    { return s.get }

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	key, err := idempotencyKey(r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad idempotency key", map[string]any{"header": idempotencyHeader})
		return
	}

	var req createReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	res, err := s.Orders.Place(r.Context(), PlaceInput{Items: req.Items, IdempotencyKey: key})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	status := http.StatusCreated
	if !res.Created {
		status = http.StatusOK
	}
	kit.WriteJSON(w, status, NewConfirmation(res.Order))
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad order id", map[string]any{"id": raw})
		return
	}

	o, err := s.Orders.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, newOrderView(o))
}

// idempotencyKey returns the canonical form of the optional header value.
func idempotencyKey(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.Header.Get(idempotencyHeader))
	if raw == "" {
		return "", nil
	}
	u, err := uuid.Parse(raw)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "not found", nil)
	case errors.Is(err, ErrCatalogUnavailable):
		kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog unavailable", nil)
	case errors.Is(err, ErrCatalogBadStatus):
		kit.WriteError(w, r, http.StatusBadGateway, "catalog error", nil)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		kit.WriteError(w, r, http.StatusGatewayTimeout, "timeout", nil)
	default:
		s.logger().Error("order request failed", zap.Error(err), zap.String("path", r.URL.Path))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
