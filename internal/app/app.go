// Package app runs the headless lunar birthday service: it keeps the
// settings, synchronizes contacts on a schedule and publishes the result
// to the HTTP server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tartampluch/go-amlich/internal/config"
	"github.com/tartampluch/go-amlich/internal/engine"
	"github.com/tartampluch/go-amlich/internal/i18n"
	"github.com/tartampluch/go-amlich/internal/server"
	"github.com/zalando/go-keyring"
)

// App wires settings, translations, the sync engine and the server.
type App struct {
	Server *server.CalendarServer
	Clock  engine.Clock

	// NewSource builds the contact source for a sync. It defaults to
	// engine.NewSource and is replaced in tests.
	NewSource func(s config.Source, password string) (engine.Source, error)

	mu         sync.RWMutex
	settings   config.Settings
	translator *i18n.Translator

	configChan chan struct{}
}

// New creates the application for the given settings.
func New(settings config.Settings, srv *server.CalendarServer) *App {
	return &App{
		Server:     srv,
		Clock:      engine.RealClock{},
		NewSource:  engine.NewSource,
		settings:   settings,
		translator: i18n.New(settings.Language),
		configChan: make(chan struct{}, config.ChannelBufferSize),
	}
}

// Run starts the server and the sync worker and blocks until ctx is
// cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.backgroundWorker(ctx)
	}()

	err := a.Server.Start(ctx)
	cancel()
	wg.Wait()

	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrAppFailed, err)
	}
	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompApp)
	return nil
}

// Settings returns the settings currently in effect.
func (a *App) Settings() config.Settings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings
}

// ApplySettings replaces the settings and wakes the worker so a new
// refresh interval takes effect without waiting for the next tick.
func (a *App) ApplySettings(s config.Settings) {
	a.mu.Lock()
	if s.Language != a.settings.Language {
		a.translator = i18n.New(s.Language)
	}
	a.settings = s
	a.mu.Unlock()

	select {
	case a.configChan <- struct{}{}:
	default:
	}
}

func (a *App) snapshot() (config.Settings, *i18n.Translator) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings, a.translator
}

// interval converts the refresh setting; non-positive values use the default.
func (a *App) interval() time.Duration {
	val := a.Settings().RefreshMin
	if val <= 0 {
		val = config.DefaultRefreshMin
	}
	return time.Duration(val) * time.Minute
}

// backgroundWorker syncs once immediately, then on every tick.
func (a *App) backgroundWorker(ctx context.Context) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	_ = a.performSync(ctx, false)

	currentDuration := a.interval()
	ticker := time.NewTicker(currentDuration)
	defer ticker.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, currentDuration)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return

		case <-a.configChan:
			newDuration := a.interval()
			if newDuration != currentDuration {
				log.Info(config.MsgUpdateSync, config.LogKeyOld, currentDuration, config.LogKeyNew, newDuration)
				currentDuration = newDuration
				ticker.Reset(currentDuration)
			}
			_ = a.performSync(ctx, true)

		case <-ticker.C:
			_ = a.performSync(ctx, false)
		}
	}
}

// performSync runs one Fetch -> Parse -> Generate cycle and publishes the
// result. On failure the previously published calendar stays in place.
func (a *App) performSync(ctx context.Context, manual bool) error {
	log := slog.With(config.LogKeyComponent, config.CompApp)
	log.Info(config.MsgSyncReq, config.LogKeyManual, manual)

	settings, tr := a.snapshot()

	if settings.Source.Mode == config.SourceModeNone {
		log.Info(config.MsgSyncSkipped)
		a.Server.Update([]byte(config.StubVCalendar))
		a.Server.UpdateContacts(nil)
		return nil
	}

	src, err := a.loadSource(settings.Source)
	if err != nil {
		log.Error(config.MsgSyncFailed, config.LogKeyError, err)
		return err
	}

	gen := &engine.Generator{
		Clock:           a.Clock,
		Source:          src,
		ReminderTrigger: settings.ReminderTrigger(),
		CalendarName:    tr.Msg(config.TKeyCalName),
		FormatSummary:   tr.Summary,
		FormatLunar:     tr.LunarBirth,
	}

	res, err := gen.RunSync(ctx)
	if err != nil {
		log.Error(config.MsgSyncFailed, config.LogKeyError, err)
		return err
	}

	a.Server.Update(res.ICS)
	a.Server.UpdateContacts(res.Contacts)

	log.Info(config.MsgSyncSuccess,
		config.LogKeyCount, len(res.Contacts),
		config.LogKeyToday, res.Today)
	return nil
}

// loadSource resolves the CardDAV password from the system keyring, then
// builds the source. A keyring miss falls back to the settings file.
func (a *App) loadSource(s config.Source) (engine.Source, error) {
	var password string
	if s.Mode == config.SourceModeWeb && s.User != "" {
		if p, err := keyring.Get(config.KeyringService, s.User); err == nil {
			password = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyComponent, config.CompApp,
				config.LogKeyUser, s.User,
				config.LogKeyError, err)
		}
	}

	newSource := a.NewSource
	if newSource == nil {
		newSource = engine.NewSource
	}
	return newSource(s, password)
}
