package appointments

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"manage-breast-screening/internal/domain/participants"
	"manage-breast-screening/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenListRepo struct {
	*fakeRepo
	err error
}

func (r brokenListRepo) List(context.Context, Query) ([]Listing, error) { return nil, r.err }

type fakeParticipants struct{ known map[string]participants.Participant }

func (f fakeParticipants) GetByID(_ context.Context, id string) (participants.Participant, error) {
	p, ok := f.known[id]
	if !ok {
		return participants.Participant{}, participants.ErrNotFound
	}
	return p, nil
}

func newHandler(svc *Service) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.AuthContext(nil))
	RegisterRoutes(r, svc, nil)
	return r
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set(middleware.DebugUserHeader, "user-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_InternalErrorIsLogged(t *testing.T) {
	f := newFixture(t)
	f.svc.repo = brokenListRepo{fakeRepo: f.repo, err: errors.New("conn reset")}

	rec := get(t, newHandler(f.svc), "/clinics/"+f.clinic.ID.String())
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "conn reset")

	entries := f.warns.FilterMessage("request failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Contains(t, fields["error"], "conn reset")
	assert.Equal(t, "/clinics/"+f.clinic.ID.String(), fields["path"])
	assert.NotEmpty(t, fields["request_id"])
}

func TestHandler_ClientErrorsAreNotLogged(t *testing.T) {
	f := newFixture(t)

	rec := get(t, newHandler(f.svc), "/clinics/"+uuid.NewString())
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, f.warns.FilterMessage("request failed").All())
}

func TestHandler_ParticipantAppointments(t *testing.T) {
	f := newFixture(t)
	a := f.add(0, StateConfirmed, StateCheckedIn)
	l := f.repo.listings[a.ID]
	l.Participant = participants.Participant{ID: uuid.New(), FirstName: "Janet"}
	f.repo.listings[a.ID] = l
	f.add(1, StateConfirmed, StateCancelled)

	f.svc.participants = fakeParticipants{known: map[string]participants.Participant{
		l.Participant.ID.String(): l.Participant,
	}}
	h := newHandler(f.svc)

	rec := get(t, h, "/participants/"+l.Participant.ID.String()+"/appointments")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"counts_by_filter":{"all":1,"checked_in":1,"complete":0,"remaining":1}`)

	rec = get(t, h, "/participants/"+uuid.NewString()+"/appointments")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
