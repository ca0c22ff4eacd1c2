// Package api exposes the supplier and fruit services over HTTP.
package api

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	gootel "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"fruitstock/pkg/inventory"
	"fruitstock/pkg/logger"
	"fruitstock/pkg/otel"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// Handler serves the inventory endpoints.
type Handler struct {
	suppliers inventory.SupplierService
	fruits    inventory.FruitService
	log       *logger.Logger
	validate  *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(suppliers inventory.SupplierService, fruits inventory.FruitService, log *logger.Logger) *Handler {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// validator's notblank lives outside the baked-in set.
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}

	return &Handler{
		suppliers: suppliers,
		fruits:    fruits,
		log:       log,
		validate:  v,
	}
}

// Config holds the collaborators of the router.
type Config struct {
	Handler *Handler
	Log     *logger.Logger
	Tracer  trace.Tracer
	Checks  map[string]Check
}

// NewRouter builds the HTTP router with all routes and middleware.
func NewRouter(cfg Config) *mux.Router {
	mws := []mux.MiddlewareFunc{
		requestIDMiddleware,
		traceMiddleware(cfg.Tracer),
		logMiddleware(cfg.Log),
		recoverMiddleware(cfg.Log),
	}

	r := mux.NewRouter()
	r.Use(mws...)

	// mux only runs middleware on matched routes.
	r.NotFoundHandler = chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "no route for "+r.URL.Path)
	}), mws)
	r.MethodNotAllowedHandler = chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, r.Method+" not allowed on "+r.URL.Path)
	}), mws)

	h := cfg.Handler

	suppliers := r.PathPrefix("/suppliers").Subrouter()
	suppliers.HandleFunc("", h.createSupplier).Methods(http.MethodPost)
	suppliers.HandleFunc("", h.listSuppliers).Methods(http.MethodGet)
	suppliers.HandleFunc("/{id}", h.getSupplier).Methods(http.MethodGet)
	suppliers.HandleFunc("/{id}", h.updateSupplier).Methods(http.MethodPut)
	suppliers.HandleFunc("/{id}", h.deleteSupplier).Methods(http.MethodDelete)

	fruits := r.PathPrefix("/fruits").Subrouter()
	fruits.HandleFunc("", h.createFruit).Methods(http.MethodPost)
	fruits.HandleFunc("", h.listFruits).Methods(http.MethodGet)
	fruits.HandleFunc("/{id}", h.getFruit).Methods(http.MethodGet)
	fruits.HandleFunc("/{id}", h.updateFruit).Methods(http.MethodPut)
	fruits.HandleFunc("/{id}", h.deleteFruit).Methods(http.MethodDelete)

	r.HandleFunc("/healthz", healthHandler(cfg.Checks, cfg.Log)).Methods(http.MethodGet)
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	return r
}

// chain wraps h in mws, the first one outermost.
func chain(h http.Handler, mws []mux.MiddlewareFunc) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := logger.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func traceMiddleware(tracer trace.Tracer) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := gootel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			if tracer != nil {
				ctx = otel.InjectTracing(ctx, tracer)
			}
			ctx, span := otel.AddSpan(ctx, r.Method+" "+routeTemplate(r),
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
			)
			defer span.End()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Info(r.Context(), "request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start).String(),
			)
		})
	}
}

func recoverMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error(r.Context(), "panic", "recovered", rec, "path", r.URL.Path)
					writeError(w, r, http.StatusInternalServerError, internalMessage)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

// Check reports the health of one dependency.
type Check func(ctx context.Context) error
