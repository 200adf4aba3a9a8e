package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"github.com/tartampluch/go-amlich/internal/config"
)

// Source opens a stream of vCards.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// NewSource builds the Source described by the settings.
// password overrides the one stored in the settings when non-empty.
func NewSource(s config.Source, password string) (Source, error) {
	switch s.Mode {
	case config.SourceModeLocal:
		if s.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return FileSource{Path: s.LocalPath}, nil
	case config.SourceModeWeb:
		if s.URL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if password == "" {
			password = s.Password
		}
		return NewWebSource(s.URL, s.User, password), nil
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, s.Mode)
	}
}

// FileSource reads a local .vcf file.
type FileSource struct {
	Path string
}

// Open opens the file unless ctx is already done.
func (s FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(s.Path)
}

// WebSource downloads vCards over HTTP(S) with optional Basic auth.
type WebSource struct {
	URL  string
	User string
	Pass string

	Client *http.Client
}

// NewWebSource creates a WebSource with the default client timeout.
func NewWebSource(targetURL, user, pass string) *WebSource {
	return &WebSource{
		URL:    targetURL,
		User:   user,
		Pass:   pass,
		Client: &http.Client{Timeout: config.HTTPTimeout},
	}
}

// Open performs the GET request and returns a body capped at
// config.MaxHTTPResponseSize. Query strings are never logged.
func (s *WebSource) Open(ctx context.Context) (io.ReadCloser, error) {
	u, err := url.Parse(s.URL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyURL, u.Scheme+"://"+u.Host+u.Path),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	if s.User != "" || s.Pass != "" {
		req.SetBasicAuth(s.User, s.Pass)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	log.Debug("Requesting vCards")
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error during fetch: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		log.Warn("Server returned error status", slog.Int(config.LogKeyStatus, resp.StatusCode))
		return nil, fmt.Errorf("server returned unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	log.Info("vCards downloading", slog.Int64("content_length", resp.ContentLength))

	return struct {
		io.Reader
		io.Closer
	}{io.LimitReader(resp.Body, config.MaxHTTPResponseSize), resp.Body}, nil
}
