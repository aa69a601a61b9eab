package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
	"github.com/EAS-COD-System/EAS-COD/internal/core/service"
	"github.com/EAS-COD-System/EAS-COD/internal/metrics"
	"github.com/go-playground/validator"
)

type OrderSubmitter interface {
	Submit(ctx context.Context, shop string, raw domain.OrderSubmission) (*domain.VendorOrderResult, error)
}

type Installer interface {
	Begin(ctx context.Context, shop string) (string, error)
	Complete(ctx context.Context, p service.CallbackParams) (*domain.ShopSession, error)
	Uninstall(ctx context.Context, shop, webhookID string) error
}

type SettingsManager interface {
	Get(ctx context.Context, shop string) (*domain.ShopSettings, error)
	Update(ctx context.Context, shop string, in service.SettingsInput) (*domain.ShopSettings, error)
}

type OrderLister interface {
	List(ctx context.Context, shop string, limit, offset int) ([]*domain.OrderRecord, error)
}

// Credentials are the app's API key and shared secret. The secret signs app
// proxy requests, OAuth callbacks, webhooks and session tokens.
type Credentials struct {
	APIKey    string
	APISecret string
}

type Deps struct {
	Orders      OrderSubmitter
	Install     Installer
	Settings    SettingsManager
	Query       OrderLister
	Credentials Credentials
	Metrics     *metrics.ServerMetrics
	// APIDoc is the rendered OpenAPI document served at /openapi.json.
	APIDoc []byte
	Logger *slog.Logger
}

type CODHandler struct {
	orders   OrderSubmitter
	install  Installer
	settings SettingsManager
	query    OrderLister
	creds    Credentials
	metrics  *metrics.ServerMetrics
	apiDoc   []byte
	logger   *slog.Logger
	validate *validator.Validate
}

func NewCODHandler(d Deps) *CODHandler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CODHandler{
		orders:   d.Orders,
		install:  d.Install,
		settings: d.Settings,
		query:    d.Query,
		creds:    d.Credentials,
		metrics:  d.Metrics,
		apiDoc:   d.APIDoc,
		logger:   logger,
		validate: validator.New(),
	}
}

func (h *CODHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.HandleRoot)
	mux.HandleFunc("GET /healthz", h.HandleHealth)

	mux.HandleFunc("GET /auth", h.HandleAuth)
	mux.HandleFunc("GET /auth/callback", h.HandleAuthCallback)
	mux.HandleFunc("POST /webhooks/app-uninstalled", h.HandleAppUninstalled)

	mux.HandleFunc("POST /api/cod/create-order", h.HandleCreateOrder)
	mux.HandleFunc("POST /proxy/submit", h.HandleProxySubmit)

	mux.HandleFunc("GET /api/settings", h.HandleGetSettings)
	mux.HandleFunc("PUT /api/settings", h.HandleUpdateSettings)
	mux.HandleFunc("GET /api/orders", h.HandleListOrders)

	if h.apiDoc != nil {
		mux.HandleFunc("GET /openapi.json", h.HandleOpenAPI)
	}
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics.Handler())
	}
}

func (h *CODHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("EAS COD APP RUNNING"))
}

func (h *CODHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *CODHandler) HandleOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(h.apiDoc)
}
