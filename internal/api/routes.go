package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// NewRouter wires the form pages behind rate limiting, request logging and panic recovery.
// Forwarding headers are honoured only when trustProxy is set, since they replace the client
// address the rate limiter keys on.
func NewRouter(h *UserReservationHandler, limiter *RateLimiter, trustProxy bool) http.Handler {
	r := mux.NewRouter()
	r.Use(SecurityHeaders)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	r.Handle(FormPath, limiter.Middleware(http.HandlerFunc(h.ShowForm))).Methods("GET")
	r.Handle(FormPath, limiter.Middleware(http.HandlerFunc(h.SubmitForm))).Methods("POST")
	r.Handle(FormPath+"/state", limiter.Middleware(http.HandlerFunc(h.FormState))).Methods("GET")

	logger := logrus.StandardLogger()
	var handler http.Handler = r
	handler = handlers.CombinedLoggingHandler(logger.Writer(), handler)
	handler = handlers.RecoveryHandler(handlers.RecoveryLogger(logger), handlers.PrintRecoveryStack(true))(handler)
	if trustProxy {
		handler = handlers.ProxyHeaders(handler)
	}
	return handler
}
