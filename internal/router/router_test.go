package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"manage-breast-screening/internal/adapters/storage/memory"
	"manage-breast-screening/internal/domain/appointments"
	"manage-breast-screening/internal/domain/audit"
	"manage-breast-screening/internal/router"
	"manage-breast-screening/internal/seed"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

func newServer(t *testing.T) (*httptest.Server, seed.Result) {
	t.Helper()

	store := memory.NewStore()
	st := router.MemoryStorage(store)
	res, err := seed.Run(context.Background(), seed.Repos{
		Tx:           st.Tx,
		Participants: st.Participants,
		Clinics:      st.Clinics,
		Appointments: st.Appointments,
	}, audit.NewFactory(st.Audit), seed.Options{Now: fixedNow})
	require.NoError(t, err)

	ts := httptest.NewServer(router.NewRouter(router.Options{
		Store:    store,
		Location: time.UTC,
		Now:      func() time.Time { return fixedNow },
	}))
	t.Cleanup(ts.Close)
	return ts, res
}

type clinicShow struct {
	Clinic struct {
		ID          string `json:"id"`
		SessionType string `json:"session_type"`
	} `json:"clinic"`
	AppointmentList struct {
		Filter         string         `json:"filter"`
		CountsByFilter map[string]int `json:"counts_by_filter"`
		Appointments   []struct {
			ID            string `json:"id"`
			StartTime     string `json:"start_time"`
			CurrentStatus struct {
				Key  string `json:"key"`
				Text string `json:"text"`
			} `json:"current_status"`
		} `json:"appointments"`
	} `json:"appointment_list"`
}

func TestHTTP_EndToEnd_ClinicDay(t *testing.T) {
	ts, res := newServer(t)
	today := res.Clinics[1].ID.String()
	confirmed := res.Appointments[4].ID.String()

	// 1) clinic list defaults to today
	{
		st, body := doReq(t, ts.URL, "GET", "/clinics", "user-1", "", nil)
		require.Equal(t, http.StatusOK, st, string(body))

		var out struct {
			Heading string `json:"heading"`
			Clinics []struct {
				ID string `json:"id"`
			} `json:"clinics"`
		}
		require.NoError(t, json.Unmarshal(body, &out))
		assert.Equal(t, "Today's clinics", out.Heading)
		require.Len(t, out.Clinics, 1)
		assert.Equal(t, today, out.Clinics[0].ID)
	}

	// 2) appointment list with counts
	{
		st, body := doReq(t, ts.URL, "GET", "/clinics/"+today, "user-1", "", nil)
		require.Equal(t, http.StatusOK, st, string(body))

		var out clinicShow
		require.NoError(t, json.Unmarshal(body, &out))
		assert.Equal(t, "remaining", out.AppointmentList.Filter)
		assert.Equal(t, map[string]int{"remaining": 2, "checked_in": 1, "complete": 2, "all": 4}, out.AppointmentList.CountsByFilter)
		require.Len(t, out.AppointmentList.Appointments, 2)
		assert.Equal(t, "9:30am", out.AppointmentList.Appointments[0].StartTime)
	}

	// 3) check in the confirmed appointment from the clinic page
	{
		st, body := doReq(t, ts.URL, "POST", "/clinics/"+today+"/appointments/"+confirmed+"/check-in", "user-1", "clinical", nil)
		require.Equal(t, http.StatusCreated, st, string(body))
	}

	// 4) checked in count follows the latest status
	{
		st, body := doReq(t, ts.URL, "GET", "/clinics/"+today+"?filter=checked_in", "user-1", "", nil)
		require.Equal(t, http.StatusOK, st, string(body))

		var out clinicShow
		require.NoError(t, json.Unmarshal(body, &out))
		assert.Equal(t, 2, out.AppointmentList.CountsByFilter["checked_in"])
		assert.Equal(t, 2, out.AppointmentList.CountsByFilter["remaining"])
		for _, a := range out.AppointmentList.Appointments {
			assert.Equal(t, string(appointments.StateCheckedIn), a.CurrentStatus.Key)
			assert.Equal(t, "Checked in", a.CurrentStatus.Text)
		}
	}

	// 5) checking in twice is a conflict
	{
		st, _ := doReq(t, ts.URL, "POST", "/appointments/"+confirmed+"/check-in", "user-1", "clinical", nil)
		assert.Equal(t, http.StatusConflict, st)
	}

	// 6) the appointment's audit trail is visible to a superuser only
	{
		path := "/audit-logs?content_type=" + appointments.ContentTypeAppointment + "&object_id=" + confirmed
		st, _ := doReq(t, ts.URL, "GET", path, "user-1", "clinical", nil)
		assert.Equal(t, http.StatusForbidden, st)

		st, body := doReq(t, ts.URL, "GET", path, "user-1", "superuser", nil)
		require.Equal(t, http.StatusOK, st, string(body))

		var logs []struct {
			Operation      string  `json:"operation"`
			SystemUpdateID *string `json:"system_update_id"`
		}
		require.NoError(t, json.Unmarshal(body, &logs))
		require.Len(t, logs, 1)
		assert.Equal(t, "create", logs[0].Operation)
		require.NotNil(t, logs[0].SystemUpdateID)
		assert.Equal(t, seed.DefaultSystemUpdateID, *logs[0].SystemUpdateID)
	}
}

func TestHTTP_Screening_CannotGoAhead(t *testing.T) {
	ts, res := newServer(t)
	checkedIn := res.Appointments[3].ID.String()

	st, body := doReq(t, ts.URL, "POST", "/appointments/"+checkedIn+"/start-screening", "user-1", "clinical", map[string]any{
		"decision": "dropout",
	})
	require.Equal(t, http.StatusOK, st, string(body))
	assert.Contains(t, string(body), "/appointments/"+checkedIn+"/cannot-go-ahead")

	st, body = doReq(t, ts.URL, "POST", "/appointments/"+checkedIn+"/cannot-go-ahead", "user-1", "clinical", map[string]any{
		"stopped_reasons": []string{"failed_identity_check"},
		"reinvite":        true,
	})
	require.Equal(t, http.StatusOK, st, string(body))

	st, body = doReq(t, ts.URL, "GET", "/appointments/"+checkedIn, "user-1", "", nil)
	require.Equal(t, http.StatusOK, st, string(body))
	assert.Contains(t, string(body), `"key":"ATTENDED_NOT_SCREENED"`)
}

func TestHTTP_AuthAndValidation(t *testing.T) {
	ts, res := newServer(t)
	today := res.Clinics[1].ID.String()

	st, _ := doReq(t, ts.URL, "GET", "/clinics", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, st)

	st, _ = doReq(t, ts.URL, "GET", "/clinics?filter=tomorrow", "user-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, st)

	st, _ = doReq(t, ts.URL, "GET", "/clinics/"+today+"?filter=later", "user-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, st)

	st, _ = doReq(t, ts.URL, "GET", "/clinics/not-a-uuid", "user-1", "", nil)
	assert.Equal(t, http.StatusNotFound, st)

	st, _ = doReq(t, ts.URL, "POST", "/appointments/"+res.Appointments[4].ID.String()+"/status", "user-1", "administrative", map[string]any{
		"state": "SCREENED",
	})
	assert.Equal(t, http.StatusForbidden, st)
}

func TestHTTP_ParticipantAppointments(t *testing.T) {
	ts, res := newServer(t)

	for _, p := range res.Participants {
		st, body := doReq(t, ts.URL, "GET", "/participants/"+p.ID.String()+"/appointments", "user-1", "", nil)
		require.Equal(t, http.StatusOK, st, string(body))

		var out struct {
			Filter         string         `json:"filter"`
			CountsByFilter map[string]int `json:"counts_by_filter"`
			Upcoming       []any          `json:"upcoming"`
			Past           []any          `json:"past"`
		}
		require.NoError(t, json.Unmarshal(body, &out))
		assert.Equal(t, "all", out.Filter)
		assert.Equal(t, out.CountsByFilter["all"], out.CountsByFilter["remaining"]+out.CountsByFilter["complete"])
		assert.Equal(t, out.CountsByFilter["all"], len(out.Upcoming)+len(out.Past))
	}

	st, _ := doReq(t, ts.URL, "GET", "/participants/"+uuid.NewString()+"/appointments", "user-1", "", nil)
	assert.Equal(t, http.StatusNotFound, st)
}

func TestHTTP_HealthAndMetrics(t *testing.T) {
	ts, _ := newServer(t)

	st, body := doReq(t, ts.URL, "GET", "/health", "", "", nil)
	require.Equal(t, http.StatusOK, st)
	assert.Equal(t, "ok", string(body))

	st, body = doReq(t, ts.URL, "GET", "/metrics", "", "", nil)
	require.Equal(t, http.StatusOK, st)
	assert.True(t, strings.Contains(string(body), "mbs_http_requests_total"), "http metrics exported")
}

func doReq(t *testing.T, baseURL, method, path, debugUserID, roles string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}
	if roles != "" {
		req.Header.Set("X-Debug-Roles", roles)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
