package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Buggy1111/tlacenka/internal/service/models/order"
	"github.com/Buggy1111/tlacenka/internal/service/services/ordersvc"
	"github.com/Buggy1111/tlacenka/internal/token"
	adminauth "github.com/Buggy1111/tlacenka/internal/transport/http/admin_auth"
	cancelorder "github.com/Buggy1111/tlacenka/internal/transport/http/cancel_order"
	createorder "github.com/Buggy1111/tlacenka/internal/transport/http/create_order"
	deleteorder "github.com/Buggy1111/tlacenka/internal/transport/http/delete_order"
	getorder "github.com/Buggy1111/tlacenka/internal/transport/http/get_order"
	getstats "github.com/Buggy1111/tlacenka/internal/transport/http/get_stats"
	listorders "github.com/Buggy1111/tlacenka/internal/transport/http/list_orders"
	listproducts "github.com/Buggy1111/tlacenka/internal/transport/http/list_products"
	searchorders "github.com/Buggy1111/tlacenka/internal/transport/http/search_orders"
	updateorder "github.com/Buggy1111/tlacenka/internal/transport/http/update_order"
	"github.com/Buggy1111/tlacenka/pkg/http/middleware/authgate"
	tracemw "github.com/Buggy1111/tlacenka/pkg/http/middleware/trace"
	"github.com/Buggy1111/tlacenka/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// orderService is the order-facing surface of the service layer.
type orderService interface {
	Create(ctx context.Context, in order.CreateInput) (order.Order, error)
	List(ctx context.Context, filter ordersvc.ListFilter) ([]order.Order, error)
	Get(ctx context.Context, id uuid.UUID) (order.Order, error)
	Update(ctx context.Context, id uuid.UUID, upd order.Update) (order.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Cancel(ctx context.Context, id uuid.UUID) (order.Order, error)
	Search(ctx context.Context, q order.SearchQuery) ([]order.Order, error)
	Stats(ctx context.Context, period order.Period) (order.Stats, error)
}

// authService issues and verifies admin credentials.
type authService interface {
	Login(username, password string) (string, error)
	Verify(tokenStr string) (*token.AdminClaims, error)
	TokenTTL() time.Duration
}

type HTTPTransport struct {
	server *http.Server
	router *chi.Mux
	orders orderService
	auth   authService
}

func NewHTTPTransport(orders orderService, auth authService) *HTTPTransport {
	router := newRouter()
	server := newServer(router)

	return &HTTPTransport{
		server: server,
		router: router,
		orders: orders,
		auth:   auth,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

// Shutdown stops accepting new connections and waits for in-flight requests.
func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// Handler exposes the router, used by the app and by tests.
func (h *HTTPTransport) Handler() http.Handler {
	return h.router
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	requireAdmin := authgate.RequireAdmin(h.auth)

	h.router.Route("/api", func(r chi.Router) {
		r.Post("/orders", h.createOrder)
		r.Post("/orders/search", h.searchOrders)
		r.Get("/orders/{id}", h.getOrder)
		r.Put("/orders/{id}/cancel", h.cancelOrder)
		r.Get("/products", h.listProducts)

		r.Post("/auth/admin", h.adminLogin)
		r.Delete("/auth/admin", h.adminLogout)

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)

			r.Get("/orders", h.listOrders)
			r.Put("/orders/{id}", h.updateOrder)
			r.Delete("/orders/{id}", h.deleteOrder)
			r.Get("/stats", h.getStats)
		})
	})

	adminDir := viper.GetString("server.http.admin_dir")
	if adminDir != "" {
		gate := authgate.RedirectUnauthenticated(h.auth, "/admin/login")
		h.router.With(gate).Handle("/admin/*", http.StripPrefix("/admin", http.FileServer(http.Dir(adminDir))))
	}
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.orders)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.orders)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.orders)
}

func (h *HTTPTransport) updateOrder(w http.ResponseWriter, r *http.Request) {
	updateorder.UpdateOrder(w, r, h.orders)
}

func (h *HTTPTransport) deleteOrder(w http.ResponseWriter, r *http.Request) {
	deleteorder.DeleteOrder(w, r, h.orders)
}

func (h *HTTPTransport) cancelOrder(w http.ResponseWriter, r *http.Request) {
	cancelorder.CancelOrder(w, r, h.orders)
}

func (h *HTTPTransport) searchOrders(w http.ResponseWriter, r *http.Request) {
	searchorders.SearchOrders(w, r, h.orders)
}

func (h *HTTPTransport) getStats(w http.ResponseWriter, r *http.Request) {
	getstats.GetStats(w, r, h.orders)
}

func (h *HTTPTransport) adminLogin(w http.ResponseWriter, r *http.Request) {
	adminauth.Login(w, r, h.auth)
}

func (h *HTTPTransport) adminLogout(w http.ResponseWriter, r *http.Request) {
	adminauth.Logout(w, r)
}

func (h *HTTPTransport) listProducts(w http.ResponseWriter, r *http.Request) {
	listproducts.ListProducts(w, r)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))

	if viper.GetBool("tracing.enabled") {
		router.Use(tracemw.NewTraceMiddleware)
	}

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
