package calendar_api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"web-calendar/internal/calendar/calendar_api"
	"web-calendar/internal/calendar/db"
	calendar "web-calendar/internal/calendar/service"
	"web-calendar/internal/config"
	"web-calendar/internal/database"
	"web-calendar/internal/database/migrations"
	"web-calendar/internal/logger"
	"web-calendar/internal/models"
)

type testServer struct {
	router  http.Handler
	service *calendar.EventService
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.NewLogger("", false)
	log.SetOutput(io.Discard)

	bunDB, err := database.Open(context.Background(), config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "WebCalendar.db"),
	}, log)
	require.NoError(t, err)
	t.Cleanup(func() { bunDB.Close() })

	runner := migrations.NewRunner(bunDB, migrations.DefaultOptions(), log)
	require.NoError(t, runner.RunMigrations())
	require.NoError(t, runner.Close())

	service := calendar.NewEventService(&db.DB{Bun: bunDB}, nil, log)
	handler := calendar_api.NewHandler(service, log)
	return &testServer{router: calendar_api.NewRouter(handler, log), service: service}
}

func (s *testServer) do(t *testing.T, method, path string, query url.Values) *httptest.ResponseRecorder {
	t.Helper()
	target := path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) create(t *testing.T, name, date string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/event", url.Values{"event": {name}, "date": {date}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func decodeEvents(t *testing.T, rec *httptest.ResponseRecorder) []calendar_api.EventResponse {
	t.Helper()
	var events []calendar_api.EventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	return events
}

func eventNames(events []calendar_api.EventResponse) []string {
	names := make([]string, 0, len(events))
	for _, e := range events {
		names = append(names, e.Event)
	}
	return names
}

func TestStandupScenario(t *testing.T) {
	srv := setupTestServer(t)

	rec := srv.do(t, http.MethodPost, "/event", url.Values{"event": {"Standup"}, "date": {"2024-03-01"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"The event has been added!","event":"Standup","date":"2024-03-01"}`, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/event/1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"event":"Standup","date":"2024-03-01"}`, rec.Body.String())

	rec = srv.do(t, http.MethodDelete, "/event/1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"The event has been deleted!"}`, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/event/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "The event doesn't exist!")

	rec = srv.do(t, http.MethodDelete, "/event/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"The event doesn't exist!"}`, rec.Body.String())
}

func TestListAllEvents(t *testing.T) {
	srv := setupTestServer(t)

	rec := srv.do(t, http.MethodGet, "/event", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	srv.create(t, "Standup", "2024-03-01")
	srv.create(t, "Retro", "2024-03-15")
	srv.create(t, "Planning", "2023-12-31")

	rec = srv.do(t, http.MethodGet, "/event", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.ElementsMatch(t, []string{"Standup", "Retro", "Planning"}, eventNames(decodeEvents(t, rec)))
}

func TestListEventsInclusiveRange(t *testing.T) {
	srv := setupTestServer(t)

	srv.create(t, "before", "2023-12-31")
	srv.create(t, "first", "2024-01-01")
	srv.create(t, "middle", "2024-01-15")
	srv.create(t, "last", "2024-01-31")
	srv.create(t, "after", "2024-02-01")

	rec := srv.do(t, http.MethodGet, "/event", url.Values{"start_time": {"2024-01-01"}, "end_time": {"2024-01-31"}})
	require.Equal(t, http.StatusOK, rec.Code)

	events := decodeEvents(t, rec)
	assert.ElementsMatch(t, []string{"first", "middle", "last"}, eventNames(events))
	for _, e := range events {
		assert.NotZero(t, e.ID)
	}

	rec = srv.do(t, http.MethodGet, "/event", url.Values{"start_time": {"2024-02-01"}, "end_time": {"2024-01-01"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListEventsRejectsBadRange(t *testing.T) {
	srv := setupTestServer(t)

	tests := []struct {
		name  string
		query url.Values
		body  string
	}{
		{
			name:  "malformed start",
			query: url.Values{"start_time": {"01-01-2024"}, "end_time": {"2024-01-31"}},
			body:  `{"message":{"start_time":"The correct format is YYYY-MM-DD!"}}`,
		},
		{
			name:  "malformed end",
			query: url.Values{"start_time": {"2024-01-01"}, "end_time": {"2024-13-01"}},
			body:  `{"message":{"end_time":"The correct format is YYYY-MM-DD!"}}`,
		},
		{
			name:  "start without end",
			query: url.Values{"start_time": {"2024-01-01"}},
			body:  `{"message":{"end_time":"The correct format is YYYY-MM-DD!"}}`,
		},
		{
			name:  "malformed end without start",
			query: url.Values{"end_time": {"31-01-2024"}},
			body:  `{"message":{"end_time":"The correct format is YYYY-MM-DD!"}}`,
		},
		{
			name:  "empty start",
			query: url.Values{"start_time": {""}, "end_time": {"2024-01-31"}},
			body:  `{"message":{"start_time":"The correct format is YYYY-MM-DD!"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, http.MethodGet, "/event", tt.query)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestListEventsEndWithoutStartListsEverything(t *testing.T) {
	srv := setupTestServer(t)

	srv.create(t, "inside", "2024-01-15")
	srv.create(t, "past end", "2024-03-01")

	rec := srv.do(t, http.MethodGet, "/event", url.Values{"end_time": {"2024-01-31"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.ElementsMatch(t, []string{"inside", "past end"}, eventNames(decodeEvents(t, rec)))
}

func TestConcurrentCreates(t *testing.T) {
	srv := setupTestServer(t)

	const n = 64
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/event?event=e"+strconv.Itoa(i)+"&date=2024-05-01", nil)
			rec := httptest.NewRecorder()
			srv.router.ServeHTTP(rec, req)
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		assert.Equal(t, http.StatusOK, code, "request %d", i)
	}

	events := decodeEvents(t, srv.do(t, http.MethodGet, "/event", nil))
	require.Len(t, events, n)
	ids := make(map[int64]struct{}, n)
	for _, e := range events {
		ids[e.ID] = struct{}{}
	}
	assert.Len(t, ids, n)
}

func TestCreateEventValidation(t *testing.T) {
	srv := setupTestServer(t)

	const dateMessage = `{"message":{"date":"The event date with the correct format is required! The correct format is YYYY-MM-DD!"}}`
	const eventMessage = `{"message":{"event":"The event name is required!"}}`

	tests := []struct {
		name  string
		query url.Values
		body  string
	}{
		{"missing date", url.Values{"event": {"Standup"}}, dateMessage},
		{"wrong date format", url.Values{"event": {"Standup"}, "date": {"03-01-2024"}}, dateMessage},
		{"impossible date", url.Values{"event": {"Standup"}, "date": {"2024-02-30"}}, dateMessage},
		{"date with time", url.Values{"event": {"Standup"}, "date": {"2024-03-01T10:00:00"}}, dateMessage},
		{"missing event", url.Values{"date": {"2024-03-01"}}, eventMessage},
		{"empty event", url.Values{"event": {""}, "date": {"2024-03-01"}}, eventMessage},
		{"missing both reports event first", nil, eventMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, http.MethodPost, "/event", tt.query)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}

	// Nothing was stored by the rejected requests.
	rec := srv.do(t, http.MethodGet, "/event", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreatedEventRoundTrips(t *testing.T) {
	srv := setupTestServer(t)

	srv.create(t, "Dentist & checkup", "2024-02-29")

	rec := srv.do(t, http.MethodGet, "/event", nil)
	events := decodeEvents(t, rec)
	require.Len(t, events, 1)

	rec = srv.do(t, http.MethodGet, "/event/"+strconv.FormatInt(events[0].ID, 10), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched calendar_api.EventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, "Dentist & checkup", fetched.Event)
	assert.Equal(t, "2024-02-29", fetched.Date)
}

func TestTodayEvents(t *testing.T) {
	srv := setupTestServer(t)
	srv.service.Now = func() time.Time {
		return time.Date(2024, 3, 1, 23, 30, 0, 0, time.Local)
	}

	srv.create(t, "today early", "2024-03-01")
	srv.create(t, "today late", "2024-03-01")
	srv.create(t, "tomorrow", "2024-03-02")
	srv.create(t, "yesterday", "2024-02-29")

	rec := srv.do(t, http.MethodGet, "/event/today", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	events := decodeEvents(t, rec)
	assert.ElementsMatch(t, []string{"today early", "today late"}, eventNames(events))
	for _, e := range events {
		assert.Equal(t, "2024-03-01", e.Date)
	}
}

func TestTodayEventsWithRealClock(t *testing.T) {
	srv := setupTestServer(t)

	today := models.DateOf(time.Now()).String()
	srv.create(t, "now", today)

	rec := srv.do(t, http.MethodGet, "/event/today", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Tolerate the run straddling midnight.
	if models.DateOf(time.Now()).String() == today {
		assert.Equal(t, []string{"now"}, eventNames(decodeEvents(t, rec)))
	}
}

func TestUnknownRoutes(t *testing.T) {
	srv := setupTestServer(t)

	rec := srv.do(t, http.MethodGet, "/event/abc", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodGet, "/event/99999999999999999999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"The event doesn't exist!"}`, rec.Body.String())

	rec = srv.do(t, http.MethodPut, "/event/1", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestIDsAreNotReusedAfterDelete(t *testing.T) {
	srv := setupTestServer(t)

	srv.create(t, "one", "2024-01-01")
	srv.create(t, "two", "2024-01-02")

	rec := srv.do(t, http.MethodDelete, "/event/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	srv.create(t, "three", "2024-01-03")

	rec = srv.do(t, http.MethodGet, "/event/3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":3,"event":"three","date":"2024-01-03"}`, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/event/2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type failingService struct{}

var errStorage = errors.New("database is locked")

func (failingService) CreateEvent(context.Context, string, models.Date) (*models.Event, error) {
	return nil, errStorage
}

func (failingService) ListEvents(context.Context, *calendar.DateRange) ([]models.Event, error) {
	return nil, errStorage
}

func (failingService) GetEvent(context.Context, int64) (*models.Event, error) {
	return nil, errStorage
}

func (failingService) DeleteEvent(context.Context, int64) error {
	return errStorage
}

func (failingService) TodayEvents(context.Context) ([]models.Event, error) {
	return nil, errStorage
}

func TestStorageErrorsBecomeInternalServerError(t *testing.T) {
	log := logger.NewLogger("", false)
	log.SetOutput(io.Discard)
	router := calendar_api.NewRouter(calendar_api.NewHandler(failingService{}, log), log)

	requests := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/event"},
		{http.MethodPost, "/event?event=Standup&date=2024-03-01"},
		{http.MethodGet, "/event/1"},
		{http.MethodDelete, "/event/1"},
		{http.MethodGet, "/event/today"},
	}

	for _, r := range requests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(r.method, r.target, nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code, "%s %s", r.method, r.target)
		assert.JSONEq(t, `{"message":"Internal Server Error"}`, rec.Body.String())
	}
}
