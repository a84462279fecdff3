package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psylink/internal/availability"
)

func testSession() SessionContext {
	return SessionContext{AccessToken: "token123", UserID: 7, Role: "patient"}
}

func newTestBookingSession(t *testing.T, serverURL string, opts ...BookingOption) *BookingSession {
	t.Helper()

	session, err := NewBookingSession(NewClient(serverURL), testSession(), opts...)
	require.NoError(t, err)
	return session
}

func busyBody(day time.Time, start, end string) string {
	parse := func(clock string) time.Time {
		t, _ := time.Parse("15:04", clock)
		return day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
	}
	s := parse(start).UTC().Format(time.RFC3339)
	e := parse(end).UTC().Format(time.RFC3339)
	return fmt.Sprintf(`{"professional":[{"id":1,"start":%q,"end":%q}],"patient":[]}`, s, e)
}

func TestIsStartDisabledFailClosed(t *testing.T) {
	session := newTestBookingSession(t, "http://unused")

	// Дата и длительность не заданы
	assert.True(t, session.IsStartDisabled("10:00:00"))

	session.SetDate(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, session.IsStartDisabled("10:00:00"), "zero duration keeps the slot disabled")

	session.SetDuration(-10)
	assert.True(t, session.IsStartDisabled("10:00:00"))

	session.SetDuration(50)
	assert.False(t, session.IsStartDisabled("10:00:00"), "complete form with empty busy sets enables the slot")
}

func TestRefreshBusyClassifiesSlots(t *testing.T) {
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/appointments/busy/", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("professional"))
		assert.Equal(t, "2025-01-01", r.URL.Query().Get("date"))
		assert.Equal(t, "Bearer token123", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, busyBody(day, "10:00", "10:30"))
	}))
	defer srv.Close()

	session := newTestBookingSession(t, srv.URL, WithLocation(time.UTC))
	session.SetProfessional(42)
	session.SetDate(day)
	session.RefreshBusy(context.Background())

	statuses := session.SlotStatuses()
	assert.Equal(t, availability.StatusProfessional, statuses["10:00:00"])
	assert.Equal(t, availability.StatusFree, statuses["10:30:00"], "abutting slot stays free")
	assert.Equal(t, availability.StatusFree, statuses["09:30:00"])
}

func TestRefreshBusyFailOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"detail":"внутренняя ошибка"}`)
	}))
	defer srv.Close()

	session := newTestBookingSession(t, srv.URL, WithLocation(time.UTC))
	session.SetProfessional(42)
	session.SetDate(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	session.RefreshBusy(context.Background())

	statuses := session.SlotStatuses()
	require.Len(t, statuses, 25)
	for slot, status := range statuses {
		assert.Equal(t, availability.StatusFree, status, "slot %s", slot)
	}
}

func TestRefreshBusyDiscardsStaleResponse(t *testing.T) {
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	var calls int64
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		// Первый запрос зависает и возвращает пустую занятость уже после
		// того, как второй успел примениться.
		if atomic.AddInt64(&calls, 1) == 1 {
			<-release
			fmt.Fprint(w, `{"professional":[],"patient":[]}`)
			return
		}

		fmt.Fprint(w, busyBody(day, "10:00", "10:30"))
	}))
	defer srv.Close()

	session := newTestBookingSession(t, srv.URL, WithLocation(time.UTC))
	session.SetProfessional(42)
	session.SetDate(day)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		session.RefreshBusy(context.Background())
	}()

	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&calls) == 1
	}, time.Second, 5*time.Millisecond, "first request must reach the server")

	session.RefreshBusy(context.Background())
	assert.Equal(t, availability.StatusProfessional, session.SlotStatuses()["10:00:00"])

	close(release)
	wg.Wait()

	assert.Equal(t, availability.StatusProfessional, session.SlotStatuses()["10:00:00"],
		"stale empty response must not overwrite the newer busy set")
}

func TestSubmitBuildsUTCStartDatetime(t *testing.T) {
	santiago := time.FixedZone("CLT", -3*60*60)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/appointments/", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		assert.Equal(t, float64(42), req["professional"])
		assert.Equal(t, float64(50), req["duration_minutes"])
		assert.Equal(t, "online", req["modality"])

		start, err := time.Parse(time.RFC3339, req["start_datetime"].(string))
		require.NoError(t, err)
		assert.Equal(t, time.UTC, start.Location(), "start_datetime must be serialized in UTC")
		assert.True(t, start.Equal(time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC)),
			"10:00 local at UTC-3 is 13:00 UTC")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":5,"patient":7,"professional":42,"start_datetime":"2025-03-10T13:00:00Z","duration_minutes":50,"status":"scheduled","join_url":"https://zoom.us/j/123"}`)
	}))
	defer srv.Close()

	session := newTestBookingSession(t, srv.URL, WithLocation(santiago))
	session.SetProfessional(42)
	session.SetDate(time.Date(2025, 3, 10, 0, 0, 0, 0, santiago))
	session.SetSlot("10:00:00")
	session.SetDuration(50)
	session.SetModality("online")

	require.False(t, session.IsStartDisabled("10:00:00"))

	appt, err := session.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), appt.ID)
	require.NotNil(t, appt.JoinURL)
	assert.Equal(t, "https://zoom.us/j/123", *appt.JoinURL)
}

func TestSubmitIncompleteFormBlocksBeforeNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("incomplete form must not reach the server")
	}))
	defer srv.Close()

	session := newTestBookingSession(t, srv.URL, WithLocation(time.UTC))
	session.SetProfessional(42)
	session.SetDate(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	// Слот и длительность не заданы

	_, err := session.Submit(context.Background())
	assert.ErrorIs(t, err, ErrIncompleteForm)
}

func TestSubmitServerFieldError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"start_datetime":["выбранное время уже занято"]}`)
	}))
	defer srv.Close()

	session := newTestBookingSession(t, srv.URL, WithLocation(time.UTC))
	session.SetProfessional(42)
	session.SetDate(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	session.SetSlot("10:00:00")
	session.SetDuration(50)

	_, err := session.Submit(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "выбранное время уже занято", apiErr.Message())
	assert.Equal(t, []string{"выбранное время уже занято"}, apiErr.FieldMessages("start_datetime"))
}
