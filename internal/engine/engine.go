package engine

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-amlich/internal/config"
	"github.com/tartampluch/go-amlich/internal/lunar"
)

// Result is the output of one synchronization.
type Result struct {
	ICS      []byte
	Contacts []BirthdayEntry
	Today    int
}

// Generator turns a vCard source into an iCalendar birthday feed whose
// events carry each contact's lunar birth date.
type Generator struct {
	Clock  Clock
	Source Source

	// ReminderTrigger is an ISO8601 duration ("-P1D"); empty disables alarms.
	ReminderTrigger string

	// CalendarName overrides config.ICalCalName when set.
	CalendarName string

	// FormatSummary and FormatLunar let callers inject localized texts.
	FormatSummary func(name string, age int, yearKnown bool) string
	FormatLunar   func(d lunar.Date) string
}

type syncStats struct {
	processed, withBday, withLunar, today int
}

// RunSync reads the source and renders the calendar.
func (g *Generator) RunSync(ctx context.Context) (Result, error) {
	start := time.Now()
	log := slog.With(config.LogKeyComponent, config.CompEngine)
	log.InfoContext(ctx, config.MsgSyncStarted)

	if g.Source == nil {
		return Result{}, errors.New(config.ErrFetcherMissing)
	}

	reader, err := g.Source.Open(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = reader.Close() }()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res, err := g.generate(ctx, reader)
	if err == nil {
		log.Debug("Sync finished", config.LogKeyDuration, time.Since(start).Milliseconds())
	}
	return res, err
}

func (g *Generator) clock() Clock {
	if g.Clock == nil {
		return RealClock{}
	}
	return g.Clock
}

// generate decodes every card, keeps the ones with a usable BDAY and
// builds both the contact list and the VEVENTs.
func (g *Generator) generate(ctx context.Context, r io.Reader) (Result, error) {
	now := g.clock().Now()
	cal := g.newCalendar()

	dtStamp := ical.NewProp(config.PropDTStamp)
	dtStamp.SetDateTime(now.UTC())

	decoder := vcard.NewDecoder(r)
	var stats syncStats
	var contacts []BirthdayEntry

	for {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyError, err)
			continue
		}
		stats.processed++

		entry, ok := g.entryFromCard(card, now)
		if !ok {
			continue
		}
		stats.withBday++
		if entry.Lunar != nil {
			stats.withLunar++
		}
		contacts = append(contacts, entry)

		events, isToday := g.createEvents(entry, now)
		if isToday {
			stats.today++
			slog.Info(config.MsgBdayToday,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, entry.Name,
				config.LogKeyDOB, entry.DateOfBirth.Format(config.DateFormatFullDash))
		}
		for _, e := range events {
			e.Props.Set(dtStamp)
			cal.Children = append(cal.Children, e.Component)
		}
	}

	logStats(stats)

	if len(cal.Children) == 0 {
		return Result{ICS: []byte(config.StubVCalendar), Contacts: contacts}, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return Result{}, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return Result{ICS: buf.Bytes(), Contacts: contacts, Today: stats.today}, nil
}

func (g *Generator) newCalendar() *ical.Calendar {
	name := g.CalendarName
	if name == "" {
		name = config.ICalCalName
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, name)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refresh := ical.NewProp(config.PropRefresh)
	refresh.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refresh)
	return cal
}

// entryFromCard extracts name and birth date. ok is false when the card has
// no parseable BDAY.
func (g *Generator) entryFromCard(card vcard.Card, now time.Time) (BirthdayEntry, bool) {
	bday := card.Get(config.VCardBDAY)
	if bday == nil || bday.Value == "" {
		return BirthdayEntry{}, false
	}

	birthDate, yearKnown, err := parseDate(bday.Value)
	if err != nil {
		slog.Debug(config.MsgSkippedDate,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyValue, bday.Value)
		return BirthdayEntry{}, false
	}

	name := config.FallbackName
	if fn := card.Get(config.VCardFN); fn != nil {
		name = fn.Value
	} else if n := card.Get(config.VCardN); n != nil {
		name = n.Value
	}

	input := fmt.Sprintf(config.FormatHashInput, name, birthDate.Format(time.RFC3339), config.UIDSalt)
	hash := sha256.Sum256([]byte(input))

	next, ageNext := calculateNextOccurrence(now, birthDate, yearKnown)
	entry := BirthdayEntry{
		UID:            fmt.Sprintf("%x", hash[:config.UIDHashLength]),
		Name:           name,
		DateOfBirth:    birthDate,
		YearKnown:      yearKnown,
		NextOccurrence: next,
		AgeNext:        ageNext,
	}

	// A birth date without a year has no lunar equivalent.
	if yearKnown {
		if ld, err := lunar.FromTime(birthDate); err == nil {
			entry.Lunar = &ld
		} else {
			slog.Debug(config.MsgSkippedLunar,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, name,
				config.LogKeyError, err)
		}
	}
	return entry, true
}

func logStats(stats syncStats) {
	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.processed),
			slog.Int(config.LogKeyFound, stats.withBday),
			slog.Int(config.LogKeyLunar, stats.withLunar),
			slog.Int(config.LogKeyToday, stats.today),
		),
	)
}

// calculateNextOccurrence returns the next birthday on or after today and
// the age reached then. Feb 29 rolls to Mar 1 in common years.
func calculateNextOccurrence(now time.Time, birthDate time.Time, yearKnown bool) (time.Time, int) {
	loc := now.Location()
	candidate := time.Date(now.Year(), birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, loc)
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	if candidate.Before(todayStart) {
		candidate = time.Date(now.Year()+1, birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, loc)
	}

	ageNext := 0
	if yearKnown {
		ageNext = candidate.Year() - birthDate.Year()
	}
	return candidate, ageNext
}

// createEvents emits events for the previous, current and next year,
// skipping years before the birth.
func (g *Generator) createEvents(entry BirthdayEntry, now time.Time) ([]*ical.Event, bool) {
	loc := now.Location()
	todayYear, todayMonth, todayDay := now.Date()

	var description string
	if entry.Lunar != nil {
		description = fmt.Sprintf(config.FallbackLunarBirth, entry.Lunar.Display)
		if g.FormatLunar != nil {
			description = g.FormatLunar(*entry.Lunar)
		}
	}

	var events []*ical.Event
	isToday := false

	for _, y := range []int{todayYear - 1, todayYear, todayYear + 1} {
		if entry.YearKnown && y < entry.DateOfBirth.Year() {
			continue
		}

		age := 0
		if entry.YearKnown {
			age = y - entry.DateOfBirth.Year()
		}

		summary := fmt.Sprintf(config.FallbackSummary, entry.Name)
		if g.FormatSummary != nil {
			summary = g.FormatSummary(entry.Name, age, entry.YearKnown)
		}

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, entry.UID, y, config.ICalDomain))
		event.Props.SetText(config.PropSummary, summary)
		if description != "" {
			event.Props.SetText(config.PropDescription, description)
		}

		eventDate := time.Date(y, entry.DateOfBirth.Month(), entry.DateOfBirth.Day(), 0, 0, 0, 0, loc)
		if eventDate.Year() == todayYear && eventDate.Month() == todayMonth && eventDate.Day() == todayDay {
			isToday = true
		}

		dtStart := ical.NewProp(config.PropDTStart)
		dtStart.SetDate(eventDate)
		event.Props.Set(dtStart)

		if g.ReminderTrigger != "" {
			addAlarm(event, g.ReminderTrigger, summary)
		}
		events = append(events, event)
	}
	return events, isToday
}

// addAlarm appends a DISPLAY alarm. The trigger is set raw to avoid a VALUE=TEXT parameter.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

// parseDate accepts the BDAY layouts seen in the wild. Dates without a year
// are anchored to config.DefaultLeapYear so --02-29 survives.
func parseDate(value string) (time.Time, bool, error) {
	for _, f := range []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	} {
		if t, err := time.Parse(f, value); err == nil {
			return t, true, nil
		}
	}

	for _, f := range []string{config.DateFormatNoYearD, config.DateFormatNoYearB} {
		if t, err := time.Parse(f, value); err == nil {
			return time.Date(config.DefaultLeapYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), false, nil
		}
	}

	return time.Time{}, false, errors.New(config.ErrDateParse)
}
