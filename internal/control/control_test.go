package control_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shitbrix/internal/control"
)

type fakeSession struct {
	started    bool
	speed      int
	speedCalls int
	snapshot   control.StateSnapshot
}

func (f *fakeSession) Snapshot() control.StateSnapshot { return f.snapshot }
func (f *fakeSession) GameStart()                      { f.started = true }
func (f *fakeSession) SetSpeed(speed int)              { f.speed = speed; f.speedCalls++ }

func newTestRouter(session *fakeSession) http.Handler {
	return control.NewRouter(control.RouterConfig{Session: session, DisableLogging: true})
}

// TestHealthzReturnsOK verifies the health endpoint responds 200 without
// touching the session.
func TestHealthzReturnsOK(t *testing.T) {
	session := &fakeSession{}
	r := newTestRouter(session)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

// TestAPIStateReturnsSnapshot verifies /api/state serializes the
// session's Snapshot() as JSON.
func TestAPIStateReturnsSnapshot(t *testing.T) {
	session := &fakeSession{snapshot: control.StateSnapshot{GameTime: 42, Speed: 2}}
	r := newTestRouter(session)

	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var got control.StateSnapshot
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.GameTime != 42 || got.Speed != 2 {
		t.Errorf("got %+v, want game_time 42, speed 2", got)
	}
}

// TestAdminStartInvokesGameStart verifies POST /api/admin/start calls
// through to Session.GameStart.
func TestAdminStartInvokesGameStart(t *testing.T) {
	session := &fakeSession{}
	r := newTestRouter(session)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/start", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if !session.started {
		t.Error("expected GameStart to be called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

// TestAdminSpeedAppliesQueryParam verifies POST /api/admin/speed?speed=N
// forwards N to Session.SetSpeed.
func TestAdminSpeedAppliesQueryParam(t *testing.T) {
	session := &fakeSession{}
	r := newTestRouter(session)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/speed?speed=3", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if session.speed != 3 || session.speedCalls != 1 {
		t.Errorf("speed = %d, calls = %d, want 3, 1", session.speed, session.speedCalls)
	}
}

// TestAdminSpeedRejectsNonNumericValue verifies a malformed speed query
// param is a 400, not a call-through with a zero value.
func TestAdminSpeedRejectsNonNumericValue(t *testing.T) {
	session := &fakeSession{}
	r := newTestRouter(session)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/speed?speed=fast", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if session.speedCalls != 0 {
		t.Error("SetSpeed should not have been called for an invalid value")
	}
}
