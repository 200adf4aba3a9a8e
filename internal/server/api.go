package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tartampluch/go-amlich/internal/config"
	"github.com/tartampluch/go-amlich/internal/engine"
	"github.com/tartampluch/go-amlich/internal/lunar"
)

// dateQuery is the solar date of /api/lunar. Calendar validity (31/2) and
// the supported year range are left to the lunar package.
type dateQuery struct {
	Day   int `query:"day" validate:"gte=1,lte=31"`
	Month int `query:"month" validate:"gte=1,lte=12"`
	Year  int `query:"year"`
}

type yearQuery struct {
	Year int `query:"year"`
}

type monthQuery struct {
	Month int `query:"month" validate:"gte=1,lte=12"`
	Year  int `query:"year"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type canChiResponse struct {
	Year   int    `json:"year"`
	CanChi string `json:"canChi"`
}

type daysResponse struct {
	Month int `json:"month"`
	Year  int `json:"year"`
	Days  int `json:"days"`
}

func (s *CalendarServer) handleLunar(w http.ResponseWriter, r *http.Request) {
	var q dateQuery
	if !bindQuery(w, r, &q, []param{
		{config.ParamDay, &q.Day},
		{config.ParamMonth, &q.Month},
		{config.ParamYear, &q.Year},
	}) {
		return
	}

	d, err := lunar.Convert(q.Day, q.Month, q.Year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *CalendarServer) handleCanChi(w http.ResponseWriter, r *http.Request) {
	var q yearQuery
	if !bindQuery(w, r, &q, []param{{config.ParamYear, &q.Year}}) {
		return
	}
	writeJSON(w, http.StatusOK, canChiResponse{Year: q.Year, CanChi: lunar.CanChiYear(q.Year)})
}

func (s *CalendarServer) handleDays(w http.ResponseWriter, r *http.Request) {
	var q monthQuery
	if !bindQuery(w, r, &q, []param{
		{config.ParamMonth, &q.Month},
		{config.ParamYear, &q.Year},
	}) {
		return
	}
	writeJSON(w, http.StatusOK, daysResponse{
		Month: q.Month,
		Year:  q.Year,
		Days:  lunar.DaysInMonth(q.Month, q.Year),
	})
}

func (s *CalendarServer) handleMonth(w http.ResponseWriter, r *http.Request) {
	var q monthQuery
	if !bindQuery(w, r, &q, []param{
		{config.ParamMonth, &q.Month},
		{config.ParamYear, &q.Year},
	}) {
		return
	}

	days, err := engine.MonthTable(q.Month, q.Year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

func (s *CalendarServer) handleYear(w http.ResponseWriter, r *http.Request) {
	var q yearQuery
	if !bindQuery(w, r, &q, []param{{config.ParamYear, &q.Year}}) {
		return
	}

	info, err := lunar.YearInfo(q.Year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *CalendarServer) handleContacts(w http.ResponseWriter, r *http.Request) {
	list := s.contacts.Load()
	if list == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: config.HTTPMsgNoContacts})
		return
	}
	writeJSON(w, http.StatusOK, *list)
}

// param binds one query parameter to an integer field.
type param struct {
	name string
	dst  *int
}

// bindQuery fills the integer fields from the query string and validates
// the struct. Every listed parameter is mandatory. It writes the 400
// response itself and reports whether the handler may continue.
func bindQuery(w http.ResponseWriter, r *http.Request, dst any, params []param) bool {
	query := r.URL.Query()
	for _, p := range params {
		raw := query.Get(p.name)
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: %s=%q", errInvalidParameter, p.name, raw))
			return false
		}
		*p.dst = v
	}

	if err := config.Validator().Struct(dst); err != nil {
		writeError(w, r, fmt.Errorf("%w: %s", errInvalidParameter, config.DescribeValidation(err)))
		return false
	}
	return true
}

var errInvalidParameter = errors.New(config.ErrInvalidParameter)

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, lunar.ErrOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, lunar.ErrInvalidDate),
		errors.Is(err, errInvalidParameter):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = config.HTTPMsgInternalErr
	}

	slog.Info(config.MsgAPIRejected,
		config.LogKeyComponent, config.CompAPI,
		config.LogKeyRoute, r.URL.Path,
		config.LogKeyStatus, status,
		config.LogKeyError, err,
	)
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompAPI,
			config.LogKeyError, err,
		)
	}
}
