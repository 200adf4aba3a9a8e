package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-amlich/internal/config"
	"github.com/tartampluch/go-amlich/internal/engine"
	"github.com/tartampluch/go-amlich/internal/server"
	"github.com/zalando/go-keyring"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockSource simulates engine.Source using testify/mock.
type MockSource struct {
	mock.Mock
}

func (m *MockSource) Open(ctx context.Context) (io.ReadCloser, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// -----------------------------------------------------------------------------
// Test Setup Helper
// -----------------------------------------------------------------------------

func setupTestApp(t *testing.T, settings config.Settings) *App {
	t.Helper()
	keyring.MockInit()

	app := New(settings, server.NewCalendarServer("0"))
	app.Clock = MockClock{CurrentTime: time.Date(2025, time.May, 15, 10, 0, 0, 0, time.UTC)}
	return app
}

func withSource(app *App, src engine.Source) *[]string {
	var passwords []string
	app.NewSource = func(_ config.Source, password string) (engine.Source, error) {
		passwords = append(passwords, password)
		return src, nil
	}
	return &passwords
}

func get(t *testing.T, app *App, target string) (int, string) {
	t.Helper()
	w := httptest.NewRecorder()
	app.Server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w.Code, w.Body.String()
}

func webSettings() config.Settings {
	s := config.DefaultSettings()
	s.Language = "en"
	s.Source = config.Source{Mode: config.SourceModeWeb, URL: "http://test.local", User: "lan"}
	return s
}

const vcardLan = "BEGIN:VCARD\nVERSION:3.0\nFN:Lan\nBDAY:1990-05-15\nEND:VCARD"

// -----------------------------------------------------------------------------
// Sync Tests
// -----------------------------------------------------------------------------

func TestPerformSync_Success(t *testing.T) {
	app := setupTestApp(t, webSettings())
	src := new(MockSource)
	src.On("Open", mock.Anything).Return(io.NopCloser(bytes.NewBufferString(vcardLan)), nil)
	withSource(app, src)

	require.NoError(t, app.performSync(context.Background(), true))
	src.AssertExpectations(t)

	code, body := get(t, app, config.RouteICS)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "X-WR-CALNAME:Lunar Birthdays")
	assert.Contains(t, body, "SUMMARY:Birthday: Lan (35)")
	assert.Contains(t, body, "DESCRIPTION:Lunar birth date: Day 21 of month 4")

	code, body = get(t, app, config.RouteAPI+config.RouteContacts)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"canChiYear":"Canh Ngọ"`)
}

func TestPerformSync_Vietnamese(t *testing.T) {
	s := webSettings()
	s.Language = "vi"
	app := setupTestApp(t, s)
	src := new(MockSource)
	src.On("Open", mock.Anything).Return(io.NopCloser(bytes.NewBufferString(vcardLan)), nil)
	withSource(app, src)

	require.NoError(t, app.performSync(context.Background(), false))

	_, body := get(t, app, config.RouteICS)
	assert.Contains(t, body, "SUMMARY:Sinh nhật Lan (35 tuổi)")
	assert.Contains(t, body, "Ngày 21 tháng 4 năm Canh Ngọ")
}

func TestPerformSync_FailureKeepsPreviousCalendar(t *testing.T) {
	app := setupTestApp(t, webSettings())
	app.Server.Update([]byte("PREVIOUS"))

	src := new(MockSource)
	src.On("Open", mock.Anything).Return(nil, errors.New("connection refused"))
	withSource(app, src)

	err := app.performSync(context.Background(), true)
	require.Error(t, err)
	src.AssertExpectations(t)

	_, body := get(t, app, config.RouteICS)
	assert.Equal(t, "PREVIOUS", body)
}

func TestPerformSync_NoSourceServesStub(t *testing.T) {
	app := setupTestApp(t, config.DefaultSettings())

	require.NoError(t, app.performSync(context.Background(), false))

	code, body := get(t, app, config.RouteICS)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, config.StubVCalendar, body)

	code, body = get(t, app, config.RouteAPI+config.RouteContacts)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, body)
}

func TestPerformSync_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.vcf")
	require.NoError(t, os.WriteFile(path, []byte(vcardLan), config.FilePermUserRW))

	s := config.DefaultSettings()
	s.Source = config.Source{Mode: config.SourceModeLocal, LocalPath: path}
	s.Reminder = config.Reminder{Enabled: true, Value: 2, Unit: config.UnitHours, Direction: config.DirBefore}
	app := setupTestApp(t, s)

	require.NoError(t, app.performSync(context.Background(), false))

	_, body := get(t, app, config.RouteICS)
	assert.Contains(t, body, "TRIGGER:-PT2H")
	assert.Equal(t, 3, strings.Count(body, "BEGIN:VEVENT"))
}

// -----------------------------------------------------------------------------
// Credentials
// -----------------------------------------------------------------------------

func TestLoadSource_KeyringPassword(t *testing.T) {
	app := setupTestApp(t, webSettings())
	require.NoError(t, keyring.Set(config.KeyringService, "lan", "s3cret"))

	passwords := withSource(app, new(MockSource))
	_, err := app.loadSource(app.Settings().Source)
	require.NoError(t, err)
	assert.Equal(t, []string{"s3cret"}, *passwords)
}

func TestLoadSource_KeyringMiss(t *testing.T) {
	app := setupTestApp(t, webSettings())

	src, err := app.loadSource(config.Source{
		Mode:     config.SourceModeWeb,
		URL:      "http://test.local",
		User:     "unknown-user",
		Password: "from-file",
	})
	require.NoError(t, err)

	ws, ok := src.(*engine.WebSource)
	require.True(t, ok)
	assert.Equal(t, "from-file", ws.Pass)
}

// -----------------------------------------------------------------------------
// Worker & Settings
// -----------------------------------------------------------------------------

func TestInterval(t *testing.T) {
	s := config.DefaultSettings()
	s.RefreshMin = 15
	app := setupTestApp(t, s)
	assert.Equal(t, 15*time.Minute, app.interval())

	s.RefreshMin = 0
	app.ApplySettings(s)
	assert.Equal(t, time.Duration(config.DefaultRefreshMin)*time.Minute, app.interval())
}

func TestApplySettings_SignalsWorker(t *testing.T) {
	app := setupTestApp(t, config.DefaultSettings())

	s := webSettings()
	s.RefreshMin = 120
	app.ApplySettings(s)

	select {
	case <-app.configChan:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Changing settings should notify the background worker")
	}
	assert.Equal(t, "en", app.Settings().Language)
	assert.Equal(t, "en", app.translator.Lang)
}

func TestBackgroundWorker_InitialSyncAndStop(t *testing.T) {
	app := setupTestApp(t, webSettings())
	src := new(MockSource)
	src.On("Open", mock.Anything).Return(io.NopCloser(bytes.NewBufferString(vcardLan)), nil)
	withSource(app, src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.backgroundWorker(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		code, _ := get(t, app, config.RouteICS)
		return code == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond, "Worker must sync immediately")

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Worker did not stop on context cancellation")
	}
}

func TestRun_InvalidPort(t *testing.T) {
	app := New(config.DefaultSettings(), server.NewCalendarServer(""))

	err := app.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrAppFailed)
}
