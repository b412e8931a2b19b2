package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/carmarket/orders/internal/domain"
	"github.com/carmarket/orders/internal/observability"
	"github.com/carmarket/orders/internal/service"
)

type Placer interface {
	Place(ctx context.Context, buyerID string, items []service.CartItem, shippingAddress string) (*domain.OrderView, error)
}

type StatusUpdater interface {
	Update(ctx context.Context, orderID string, target domain.Status) (*domain.OrderView, error)
}

type CatalogReader interface {
	Product(ctx context.Context, id string) (*domain.Product, error)
	Products(ctx context.Context) ([]domain.Product, error)
	Featured(ctx context.Context) ([]domain.Product, error)
	SellerProducts(ctx context.Context, sellerID string) ([]domain.Product, error)
}

type OrderReader interface {
	Order(ctx context.Context, id string) (*domain.OrderView, error)
	Orders(ctx context.Context) ([]domain.OrderView, error)
	BuyerOrders(ctx context.Context, buyerID string) ([]domain.OrderView, error)
	SellerOrders(ctx context.Context, sellerID string) ([]domain.OrderView, error)
}

type Server struct {
	placement Placer
	status    StatusUpdater
	catalog   CatalogReader
	orders    OrderReader
	logger    *zap.Logger
	metrics   observability.Metrics
}

func New(placement Placer, status StatusUpdater, catalog CatalogReader, orders OrderReader,
	logger *zap.Logger, metrics observability.Metrics) *Server {
	return &Server{
		placement: placement,
		status:    status,
		catalog:   catalog,
		orders:    orders,
		logger:    logger,
		metrics:   metrics,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		Identity,
		ServerTimingApp(s.metrics),
	)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", s.listProducts)
		r.Get("/featured", s.featuredProducts)
		r.Get("/seller/{sellerID}", s.sellerProducts)
		r.Get("/{id}", s.getProduct)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", s.placeOrder)
		r.Get("/", s.listOrders)
		r.Get("/my", s.buyerOrders)
		r.Get("/sold", s.sellerOrders)
		r.Get("/{id}", s.getOrder)
		r.Patch("/{id}/status", s.updateStatus)
	})

	return r
}

type placeOrderRequest struct {
	Products        []service.CartItem `json:"products"`
	ShippingAddress string             `json:"shippingAddress"`
}

func (s *Server) placeOrder(w http.ResponseWriter, r *http.Request) {
	buyerID := UserID(r.Context())
	if buyerID == "" {
		writeMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req placeOrderRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.logger.Error("bad order payload", zap.Error(err))
		writeMessage(w, http.StatusBadRequest, "bad json")
		return
	}

	order, err := s.placement.Place(r.Context(), buyerID, req.Products, req.ShippingAddress)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Order created successfully",
		"order":   order,
	})
}

type updateStatusRequest struct {
	Status domain.Status `json:"status"`
}

func (s *Server) updateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateStatusRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "bad json")
		return
	}

	order, err := s.status.Update(r.Context(), id, req.Status)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Order status updated successfully",
		"order":   order,
	})
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.orders.Order(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.orders.Orders(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) buyerOrders(w http.ResponseWriter, r *http.Request) {
	uid := UserID(r.Context())
	if uid == "" {
		writeMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}
	orders, err := s.orders.BuyerOrders(r.Context(), uid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) sellerOrders(w http.ResponseWriter, r *http.Request) {
	uid := UserID(r.Context())
	if uid == "" {
		writeMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}
	orders, err := s.orders.SellerOrders(r.Context(), uid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := s.catalog.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.Products(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) featuredProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.Featured(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) sellerProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.SellerProducts(r.Context(), chi.URLParam(r, "sellerID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var stockErr *domain.StockError
	var trErr *domain.TransitionError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &trErr):
		writeMessage(w, http.StatusBadRequest, trErr.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "not found")
	case errors.As(err, &stockErr):
		writeJSON(w, http.StatusConflict, map[string]any{
			"message":   stockErr.Error(),
			"productId": stockErr.ProductID,
			"requested": stockErr.Requested,
			"available": stockErr.Available,
		})
	case errors.Is(err, domain.ErrProductUnavailable):
		writeMessage(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
