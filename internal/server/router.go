package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// NewRouter builds the mock backend route table.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(loggingMiddleware)

	otp := r.PathPrefix("/otp").Subrouter()
	otp.HandleFunc("/promise", h.EvaluatePromise).Methods("POST")
	otp.HandleFunc("/sales-orders", h.ListSalesOrders).Methods("GET")
	otp.HandleFunc("/sales-orders/{orderId}", h.GetSalesOrderDetails).Methods("GET")
	otp.HandleFunc("/items", h.ListItems).Methods("GET")

	// Health check endpoint (unprefixed)
	r.HandleFunc("/health", h.Health).Methods("GET")

	return r
}

// statusRecorder captures the response code for access logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs one line per request with method, path, status and
// duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		slog.Info("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond).String(),
			"remote_addr", r.RemoteAddr)
	})
}
