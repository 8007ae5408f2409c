package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"reservationform/internal/entities"
	"reservationform/internal/repository"
	"reservationform/internal/service"

	"github.com/benbjohnson/clock"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu       sync.Mutex
	status   int
	body     string
	received []entities.ReservationDraft
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var d entities.ReservationDraft
	json.NewDecoder(r.Body).Decode(&d)
	b.mu.Lock()
	b.received = append(b.received, d)
	status, body := b.status, b.body
	b.mu.Unlock()
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func (b *fakeBackend) calls() []entities.ReservationDraft {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]entities.ReservationDraft(nil), b.received...)
}

type testApp struct {
	server  *httptest.Server
	client  *http.Client
	backend *fakeBackend
	store   *service.FormStore
	clock   *clock.Mock
}

func newTestApp(t *testing.T, status int, body string) *testApp {
	t.Helper()
	backend := &fakeBackend{status: status, body: body}
	backendSrv := httptest.NewServer(backend)
	t.Cleanup(backendSrv.Close)

	clk := clock.NewMock()
	repo := repository.NewReservationRepository(backendSrv.Client(), backendSrv.URL, "/restaurant_api/api/reservations/add")
	store := service.NewFormStore(func(nav service.Navigator) *service.ReservationForm {
		return service.NewReservationForm(repo, nav, service.WithClock(clk))
	}, clk)
	srv := httptest.NewServer(NewRouter(NewUserReservationHandler(store), NewRateLimiter(1000, 1000), false))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testApp{server: srv, client: client, backend: backend, store: store, clock: clk}
}

func (a *testApp) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.Get(a.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (a *testApp) post(t *testing.T, values url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.PostForm(a.server.URL+FormPath, values)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (a *testApp) state(t *testing.T) entities.FormState {
	t.Helper()
	_, body := a.get(t, FormPath+"/state")
	var st entities.FormState
	require.NoError(t, json.Unmarshal([]byte(body), &st))
	return st
}

func validValues() url.Values {
	return url.Values{
		"username":          {"Alice"},
		"mobileNo":          {"1234567890"},
		"noOfPeople":        {"2"},
		"timeOfReservation": {"2024-05-01T19:00"},
	}
}

func TestShowForm_RendersEmptyForm(t *testing.T) {
	app := newTestApp(t, http.StatusOK, "")

	resp, body := app.get(t, FormPath)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `name="username"`)
	assert.Contains(t, body, `name="mobileNo"`)
	assert.Contains(t, body, `<option value="2">2</option>`)
	assert.Contains(t, body, `<option value="4">4</option>`)
	assert.Contains(t, body, `type="datetime-local"`)
	assert.NotContains(t, body, `class="error"`)
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, 1, app.store.Len())

	app.get(t, FormPath)
	assert.Equal(t, 1, app.store.Len(), "cookie keeps the same form mounted")
}

func TestSubmitForm_ValidationFailureMakesNoCall(t *testing.T) {
	app := newTestApp(t, http.StatusOK, "")
	values := validValues()
	values.Set("mobileNo", "12345")
	values.Del("timeOfReservation")

	resp, body := app.post(t, values)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "mobileNo must be exactly 10 characters")
	assert.Contains(t, body, "timeOfReservation is a required field")
	assert.Contains(t, body, `value="Alice"`)
	assert.Empty(t, app.backend.calls())
}

func TestSubmitForm_SuccessRedirectsToListing(t *testing.T) {
	app := newTestApp(t, http.StatusOK, "")

	resp, _ := app.post(t, validValues())

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/reservations", resp.Header.Get("Location"))
	assert.Equal(t, []entities.ReservationDraft{{
		Username:          "Alice",
		MobileNo:          "1234567890",
		NoOfPeople:        2,
		TimeOfReservation: "2024-05-01T19:00",
	}}, app.backend.calls())
	assert.Equal(t, 0, app.store.Len(), "form is unmounted after navigation")
}

func TestSubmitForm_BackendErrorShownThenCleared(t *testing.T) {
	app := newTestApp(t, http.StatusConflict, `"Table not available"`)

	resp, body := app.post(t, validValues())

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, `<p class="error" data-clear-after-ms="4000">Table not available</p>`)
	assert.Equal(t, "Table not available", app.state(t).Error)

	app.clock.Add(service.ErrorDisplayDuration)
	assert.Eventually(t, func() bool { return app.state(t).Error == "" }, time.Second, 10*time.Millisecond)

	_, body = app.get(t, FormPath)
	assert.NotContains(t, body, "Table not available")
}

func TestSubmitForm_ResubmitPostsAgain(t *testing.T) {
	app := newTestApp(t, http.StatusConflict, "Table not available")

	app.post(t, validValues())
	app.post(t, validValues())

	assert.Len(t, app.backend.calls(), 2)
}

func TestSubmitForm_TamperedPartySizeIsNeverSent(t *testing.T) {
	app := newTestApp(t, http.StatusOK, "")
	values := validValues()
	values.Set("noOfPeople", "3")

	resp, body := app.post(t, values)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "noOfPeople is a required field")
	assert.Empty(t, app.backend.calls())
}

func TestFormState_ReflectsDraft(t *testing.T) {
	app := newTestApp(t, http.StatusOK, "")
	name := gofakeit.Name()

	app.post(t, url.Values{"username": {name}})
	st := app.state(t)

	assert.Equal(t, name, st.Draft.Username)
	assert.Equal(t, "idle", st.Status)
	assert.Len(t, st.FieldErrors, 3)
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t, http.StatusOK, "")

	resp, body := app.get(t, "/healthz")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)
}
