package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/storefront/internal/query"
	"github.com/vyrodovalexey/storefront/internal/service"
)

// RESTHandler handles the storefront routes.
type RESTHandler struct {
	catalog Catalog
	orders  Orders
	respond *responder
	logger  *zap.Logger
}

// NewRESTHandler creates a new RESTHandler instance.
func NewRESTHandler(catalog Catalog, orders Orders, mode ResponseMode, logger *zap.Logger) *RESTHandler {
	return &RESTHandler{
		catalog: catalog,
		orders:  orders,
		respond: newResponder(mode, logger),
		logger:  logger,
	}
}

// RegisterRoutes registers the storefront routes with the router.
func (h *RESTHandler) RegisterRoutes(router *mux.Router) {
	posts := map[string]http.HandlerFunc{
		"/add-item":         h.AddItem,
		"/update-item":      h.UpdateItem,
		"/fetch-items":      h.FetchItems,
		"/purchase-item":    h.PurchaseItem,
		"/add-to-cart":      h.AddToCart,
		"/remove-from-cart": h.RemoveFromCart,
	}
	for path, fn := range posts {
		router.HandleFunc(path, fn).Methods(http.MethodPost)
		// JSON bodies make browsers send a preflight first; CORS middleware answers it.
		router.HandleFunc(path, preflight).Methods(http.MethodOptions)
	}

	router.HandleFunc("/all-items", h.AllItems).Methods(http.MethodGet)
	router.HandleFunc("/checkout-total", h.CheckoutTotal).Methods(http.MethodGet)
}

func preflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// AddItem handles POST /add-item requests.
func (h *RESTHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeRequest(w, r, &req); err != nil {
		h.logger.Warn("invalid request body", zap.String("operation", "add item"), zap.Error(err))
		h.respond.failure(w, err, addItemMessages, "add item")
		return
	}

	item, err := h.catalog.AddItem(r.Context(), req.input())
	if err != nil {
		h.respond.failure(w, err, addItemMessages, "add item")
		return
	}

	h.respond.success(w, http.StatusCreated, addItemMessages.success, item)
}

// UpdateItem handles POST /update-item requests.
func (h *RESTHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeRequest(w, r, &req); err != nil {
		h.logger.Warn("invalid request body", zap.String("operation", "update item"), zap.Error(err))
		h.respond.failure(w, err, updateItemMessages, "update item")
		return
	}

	item, err := h.catalog.UpdateItem(r.Context(), req.input())
	if err != nil {
		h.respond.failure(w, err, updateItemMessages, "update item")
		return
	}

	h.respond.success(w, http.StatusOK, updateItemMessages.success, item)
}

// AllItems handles GET /all-items requests.
func (h *RESTHandler) AllItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.ListAll(r.Context())
	if err != nil {
		h.respond.failure(w, err, listMessages, "list items")
		return
	}

	h.writeList(w, items, "list items")
}

// FetchItems handles POST /fetch-items requests.
func (h *RESTHandler) FetchItems(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if err := decodeRequest(w, r, &req); err != nil {
		h.logger.Warn("invalid request body", zap.String("operation", "fetch items"), zap.Error(err))
		h.respond.failure(w, err, listMessages, "fetch items")
		return
	}

	order, err := query.ParseFilterType(*req.FilterType)
	if err != nil {
		h.logger.Warn("unknown filter type", zap.String("filter_type", *req.FilterType))
		h.respond.failure(w, service.InvalidInput(err), listMessages, "fetch items")
		return
	}

	items, err := h.catalog.ListFiltered(r.Context(), order, *req.ProvidedName)
	if err != nil {
		h.respond.failure(w, err, listMessages, "fetch items")
		return
	}

	h.writeList(w, items, "fetch items")
}

// PurchaseItem handles POST /purchase-item requests.
func (h *RESTHandler) PurchaseItem(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := decodeRequest(w, r, &req); err != nil {
		h.logger.Warn("invalid request body", zap.String("operation", "purchase"), zap.Error(err))
		h.respond.failure(w, err, purchaseMessages, "purchase")
		return
	}

	item, err := h.orders.Purchase(r.Context(), *req.ItemName, *req.Quantity)
	if err != nil {
		h.respond.failure(w, err, purchaseMessages, "purchase")
		return
	}

	h.respond.success(w, http.StatusOK, purchaseMessages.success, item)
}

// AddToCart handles POST /add-to-cart requests.
func (h *RESTHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if err := decodeRequest(w, r, &req); err != nil {
		h.logger.Warn("invalid request body", zap.String("operation", "add to cart"), zap.Error(err))
		h.respond.failure(w, err, cartMessages, "add to cart")
		return
	}

	res, err := h.orders.AddToCart(r.Context(), req.input())
	if err != nil {
		h.respond.failure(w, err, cartMessages, "add to cart")
		return
	}

	if res.Created {
		h.respond.success(w, http.StatusCreated, cartMessages.success, res.Entry)
		return
	}
	h.respond.success(w, http.StatusOK, checkoutUpdatedText, res.Entry)
}

// RemoveFromCart handles POST /remove-from-cart requests.
func (h *RESTHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	var req removeRequest
	if err := decodeRequest(w, r, &req); err != nil {
		h.logger.Warn("invalid request body", zap.String("operation", "remove from cart"), zap.Error(err))
		h.respond.failure(w, err, removeMessages, "remove from cart")
		return
	}

	if err := h.orders.RemoveFromCart(r.Context(), *req.ItemName); err != nil {
		h.respond.failure(w, err, removeMessages, "remove from cart")
		return
	}

	h.respond.success(w, http.StatusOK, removeMessages.success, MessageResponse{Message: removeMessages.success})
}

// CheckoutTotal handles GET /checkout-total requests.
func (h *RESTHandler) CheckoutTotal(w http.ResponseWriter, r *http.Request) {
	summary, err := h.orders.CartTotal(r.Context())
	if err != nil {
		h.respond.failure(w, err, listMessages, "checkout total")
		return
	}

	if h.respond.mode != ResponseLegacy {
		h.respond.success(w, http.StatusOK, "", summary)
		return
	}

	text, err := listText(summary.Entries)
	if err != nil {
		h.respond.failure(w, err, listMessages, "checkout total")
		return
	}
	h.respond.writeText(w, http.StatusOK, text+totalPrefix+formatAmount(summary.Total))
}

// writeList answers list routes with a JSON array, as text in legacy mode.
func (h *RESTHandler) writeList(w http.ResponseWriter, items any, operation string) {
	if h.respond.mode != ResponseLegacy {
		h.respond.success(w, http.StatusOK, "", items)
		return
	}

	text, err := listText(items)
	if err != nil {
		h.respond.failure(w, err, listMessages, operation)
		return
	}
	h.respond.writeText(w, http.StatusOK, text)
}

// formatAmount renders a total with the shortest decimal representation.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
