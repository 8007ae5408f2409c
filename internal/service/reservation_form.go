package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"reservationform/internal/entities"
	apperrors "reservationform/internal/errors"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
)

// ErrorDisplayDuration is how long a submission error stays visible.
const ErrorDisplayDuration = 4 * time.Second

const DefaultListingPath = "/reservations"

var (
	ErrSubmitInProgress = errors.New("a submission is already in progress")
	ErrFormClosed       = errors.New("reservation form is closed")
	ErrInvalidChoice    = errors.New("party size must be one of the offered choices")
	ErrUnknownField     = errors.New("unknown reservation field")
)

type FormStatus int

const (
	FormIdle FormStatus = iota
	FormSubmitting
	FormDone
)

func (s FormStatus) String() string {
	switch s {
	case FormSubmitting:
		return "submitting"
	case FormDone:
		return "done"
	default:
		return "idle"
	}
}

// ReservationCreator sends a validated draft to the backend.
type ReservationCreator interface {
	CreateReservation(ctx context.Context, draft entities.ReservationDraft) error
}

// Navigator moves the user to another page.
type Navigator interface {
	Navigate(path string)
}

type FormOption func(*ReservationForm)

func WithClock(c clock.Clock) FormOption {
	return func(f *ReservationForm) { f.clock = c }
}

func WithValidator(v *ReservationValidator) FormOption {
	return func(f *ReservationForm) { f.validator = v }
}

func WithListingPath(path string) FormOption {
	return func(f *ReservationForm) { f.listingPath = path }
}

// ReservationForm collects a reservation draft, validates it on submit and sends it to the
// backend. It is safe for concurrent use.
type ReservationForm struct {
	creator     ReservationCreator
	navigator   Navigator
	validator   *ReservationValidator
	clock       clock.Clock
	listingPath string

	mu          sync.Mutex
	draft       entities.ReservationDraft
	fieldErrors FieldErrors
	submitErr   string
	status      FormStatus
	clearTimer  *clock.Timer
	errorGen    uint64
	closed      bool
}

func NewReservationForm(creator ReservationCreator, navigator Navigator, opts ...FormOption) *ReservationForm {
	f := &ReservationForm{
		creator:     creator,
		navigator:   navigator,
		listingPath: DefaultListingPath,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.validator == nil {
		f.validator = NewReservationValidator()
	}
	if f.clock == nil {
		f.clock = clock.New()
	}
	return f
}

func (f *ReservationForm) SetUsername(v string) {
	f.update(func(d *entities.ReservationDraft) { d.Username = v })
}

func (f *ReservationForm) SetMobileNo(v string) {
	f.update(func(d *entities.ReservationDraft) { d.MobileNo = v })
}

func (f *ReservationForm) SetTimeOfReservation(v string) {
	f.update(func(d *entities.ReservationDraft) { d.TimeOfReservation = v })
}

// SetNoOfPeople selects a party size. Values outside entities.PartySizes are rejected and the
// draft keeps its previous value; zero clears the selection.
func (f *ReservationForm) SetNoOfPeople(n int) error {
	if n != 0 && !entities.IsPartySize(n) {
		return ErrInvalidChoice
	}
	f.update(func(d *entities.ReservationDraft) { d.NoOfPeople = n })
	return nil
}

// SetField binds a raw string input, keyed by the field's JSON name.
func (f *ReservationForm) SetField(name, raw string) error {
	switch name {
	case "username":
		f.SetUsername(raw)
	case "mobileNo":
		f.SetMobileNo(raw)
	case "timeOfReservation":
		f.SetTimeOfReservation(raw)
	case "noOfPeople":
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return f.SetNoOfPeople(0)
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return ErrInvalidChoice
		}
		return f.SetNoOfPeople(n)
	default:
		return ErrUnknownField
	}
	return nil
}

func (f *ReservationForm) update(fn func(*entities.ReservationDraft)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	fn(&f.draft)
}

// Submit validates the draft and, when valid, sends one create request. On success it navigates
// to the listing path; on failure the backend's message is shown for ErrorDisplayDuration.
func (f *ReservationForm) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrFormClosed
	}
	if f.status == FormSubmitting {
		f.mu.Unlock()
		return ErrSubmitInProgress
	}
	if errs := f.validator.Validate(f.draft); errs != nil {
		f.fieldErrors = errs
		f.mu.Unlock()
		return &ValidationError{Fields: errs}
	}
	f.fieldErrors = nil
	snapshot := f.draft
	f.status = FormSubmitting
	f.mu.Unlock()

	err := f.creator.CreateReservation(ctx, snapshot)

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return err
	}
	if err != nil {
		f.status = FormIdle
		f.showErrorLocked(apperrors.MessageOf(err))
		f.mu.Unlock()
		logrus.WithError(err).Debug("reservation submission failed")
		return err
	}
	f.status = FormDone
	f.mu.Unlock()

	f.navigator.Navigate(f.listingPath)
	return nil
}

// showErrorLocked replaces the visible error and restarts its clear timer.
func (f *ReservationForm) showErrorLocked(msg string) {
	if f.clearTimer != nil {
		f.clearTimer.Stop()
	}
	f.errorGen++
	gen := f.errorGen
	f.submitErr = msg
	f.clearTimer = f.clock.AfterFunc(ErrorDisplayDuration, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.errorGen == gen {
			f.submitErr = ""
			f.clearTimer = nil
		}
	})
}

// Close tears the form down and cancels a pending error clear. Later calls are no-ops.
func (f *ReservationForm) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	if f.clearTimer != nil {
		f.clearTimer.Stop()
		f.clearTimer = nil
	}
}

func (f *ReservationForm) Draft() entities.ReservationDraft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

func (f *ReservationForm) FieldErrors() FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fieldErrors == nil {
		return nil
	}
	out := make(FieldErrors, len(f.fieldErrors))
	for k, v := range f.fieldErrors {
		out[k] = v
	}
	return out
}

// ErrorMessage returns the submission error currently on display, or "".
func (f *ReservationForm) ErrorMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitErr
}

func (f *ReservationForm) Status() FormStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// State snapshots the form for rendering.
func (f *ReservationForm) State() entities.FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := entities.FormState{
		Draft:  f.draft,
		Error:  f.submitErr,
		Status: f.status.String(),
	}
	if len(f.fieldErrors) > 0 {
		st.FieldErrors = make(map[string]string, len(f.fieldErrors))
		for k, v := range f.fieldErrors {
			st.FieldErrors[k] = v
		}
	}
	return st
}
