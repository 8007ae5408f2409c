package api

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"reservationform/internal/entities"
	"reservationform/internal/service"
	"reservationform/internal/templates"

	"github.com/sirupsen/logrus"
)

const (
	FormPath      = "/reservations/new"
	sessionCookie = "reservation_form"
)

var formFields = []string{"username", "mobileNo", "noOfPeople", "timeOfReservation"}

type formPage struct {
	Action         string
	State          entities.FormState
	PartySizes     []int
	ErrorDisplayMs int64
}

type UserReservationHandler struct {
	Store *service.FormStore
	tmpl  *template.Template
}

func NewUserReservationHandler(store *service.FormStore) *UserReservationHandler {
	return &UserReservationHandler{Store: store, tmpl: templates.ReservationForm}
}

// session returns the caller's form, mounting a new one when the cookie is missing or stale.
func (h *UserReservationHandler) session(w http.ResponseWriter, r *http.Request) *service.FormSession {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if sess, ok := h.Store.Get(c.Value); ok {
			return sess
		}
	}
	sess := h.Store.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     FormPath,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

func (h *UserReservationHandler) ShowForm(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	h.render(w, http.StatusOK, sess.Form.State())
}

func (h *UserReservationHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	sess := h.session(w, r)
	log := logrus.WithField("session", sess.ID)

	for _, name := range formFields {
		if _, ok := r.PostForm[name]; !ok {
			continue
		}
		if err := sess.Form.SetField(name, r.PostForm.Get(name)); errors.Is(err, service.ErrInvalidChoice) {
			log.WithField("value", r.PostForm.Get(name)).Warn("rejected party size outside the offered choices")
			_ = sess.Form.SetNoOfPeople(0)
		}
	}

	// The submission outlives the browser request, as a page navigation does not abort it.
	err := sess.Form.Submit(context.WithoutCancel(r.Context()))

	if target, ok := sess.Navigator.Take(); ok {
		h.Store.Remove(sess.ID)
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Path: FormPath, MaxAge: -1})
		log.Info("reservation created")
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	var verr *service.ValidationError
	status := http.StatusOK
	switch {
	case err == nil:
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrSubmitInProgress):
		status = http.StatusConflict
	case errors.Is(err, service.ErrFormClosed):
		status = http.StatusGone
	default:
		log.WithError(err).Warn("reservation submission failed")
		status = http.StatusBadGateway
	}
	h.render(w, status, sess.Form.State())
}

// FormState serves the current form state so a page can follow the error clear. An unknown
// session reports the empty form without mounting one.
func (h *UserReservationHandler) FormState(w http.ResponseWriter, r *http.Request) {
	state := entities.FormState{Status: service.FormIdle.String()}
	if c, err := r.Cookie(sessionCookie); err == nil {
		if sess, ok := h.Store.Get(c.Value); ok {
			state = sess.Form.State()
		}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(state)
}

func (h *UserReservationHandler) render(w http.ResponseWriter, status int, state entities.FormState) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	page := formPage{
		Action:         FormPath,
		State:          state,
		PartySizes:     entities.PartySizes,
		ErrorDisplayMs: service.ErrorDisplayDuration.Milliseconds(),
	}
	if err := h.tmpl.Execute(w, page); err != nil {
		logrus.WithError(err).Error("error rendering reservation form")
	}
}
