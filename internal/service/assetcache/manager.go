package assetcache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrInstallFailed means the bulk population did not complete; no cache
	// exists for the new generation and any prior generation stays active.
	ErrInstallFailed = errors.New("asset cache install failed")

	// ErrUpstreamRequired is returned when a live fetch is needed but no
	// upstream origin is configured.
	ErrUpstreamRequired = errors.New("no upstream origin configured")
)

// Config describes one cache generation and its fetch policy.
type Config struct {
	Root            string   // directory holding all generations
	NamePrefix      string   // generation name prefix, e.g. "attendance-app-"
	Version         string   // version tag embedded in the generation name
	Upstream        string   // origin base URL for live fetches
	Manifest        []string // root-relative paths populated on install
	OfflineFallback string   // path served from cache when a live fetch fails
	BypassHosts     []string // hosts passed through untouched, never cached
}

// Resource is a fetch result ready to serve.
type Resource struct {
	Path        string
	Status      int
	ContentType string
	Body        []byte
	FromCache   bool
}

// Manager owns the versioned generations of the static asset set. Exactly
// one generation serves fetches at a time; install is all-or-nothing and
// activation evicts every stale generation.
type Manager struct {
	cfg      Config
	client   *http.Client
	upstream *url.URL

	mu     sync.RWMutex
	active string // name of the generation serving fetches, "" until claimed
}

func NewManager(cfg Config, client *http.Client) (*Manager, error) {
	if client == nil {
		client = http.DefaultClient
	}

	m := &Manager{cfg: cfg, client: client}
	if cfg.Upstream != "" {
		u, err := url.Parse(cfg.Upstream)
		if err != nil {
			return nil, fmt.Errorf("invalid upstream origin: %w", err)
		}
		m.upstream = u
	}

	if err := os.MkdirAll(cfg.Root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache root: %w", err)
	}
	return m, nil
}

// CacheName returns the current generation name, prefix plus version tag.
func (m *Manager) CacheName() string {
	return m.cfg.NamePrefix + m.cfg.Version
}

// Install populates a fresh generation with the full manifest. Population
// is atomic: assets land in a staging directory that is promoted with a
// rename only when every fetch succeeded, so a failure leaves no cache for
// this generation. The promoted generation is ready immediately.
func (m *Manager) Install(ctx context.Context) error {
	if m.upstream == nil {
		return fmt.Errorf("%w: %v", ErrInstallFailed, ErrUpstreamRequired)
	}

	staging := m.generationDir(m.CacheName()) + ".staging"
	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("%w: %v", ErrInstallFailed, err)
	}
	if err := os.MkdirAll(staging, 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrInstallFailed, err)
	}

	for _, p := range m.cfg.Manifest {
		res, err := m.fetchUpstream(ctx, p)
		if err != nil {
			os.RemoveAll(staging)
			return fmt.Errorf("%w: fetch %s: %v", ErrInstallFailed, p, err)
		}
		if res.Status != http.StatusOK {
			os.RemoveAll(staging)
			return fmt.Errorf("%w: fetch %s: status %d", ErrInstallFailed, p, res.Status)
		}
		if err := writeEntry(staging, p, res.Body); err != nil {
			os.RemoveAll(staging)
			return fmt.Errorf("%w: store %s: %v", ErrInstallFailed, p, err)
		}
	}

	current := m.generationDir(m.CacheName())
	if err := os.RemoveAll(current); err != nil {
		os.RemoveAll(staging)
		return fmt.Errorf("%w: %v", ErrInstallFailed, err)
	}
	if err := os.Rename(staging, current); err != nil {
		os.RemoveAll(staging)
		return fmt.Errorf("%w: %v", ErrInstallFailed, err)
	}

	slog.Info("asset cache generation installed", "name", m.CacheName(), "assets", len(m.cfg.Manifest))
	return nil
}

// Activate deletes every generation whose name does not match the current
// tag, then claims fetch handling for the current generation. After a
// failed install the prior generation (if any) stays active and nothing is
// deleted.
func (m *Manager) Activate(ctx context.Context) error {
	if !m.generationExists(m.CacheName()) {
		if prev := m.latestGeneration(); prev != "" {
			m.setActive(prev)
			slog.Warn("current generation missing, keeping prior generation active", "name", prev)
			return nil
		}
		return fmt.Errorf("no cache generation available to activate")
	}

	entries, err := os.ReadDir(m.cfg.Root)
	if err != nil {
		return fmt.Errorf("failed to enumerate cache generations: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || !strings.HasPrefix(name, m.cfg.NamePrefix) {
			continue
		}
		if name == m.CacheName() {
			continue
		}
		if err := os.RemoveAll(filepath.Join(m.cfg.Root, name)); err != nil {
			return fmt.Errorf("failed to remove stale generation %q: %w", name, err)
		}
		slog.Info("removed stale cache generation", "name", name)
	}

	m.setActive(m.CacheName())
	return nil
}

// Fetch applies the interception policy to a request path or absolute URL:
// bypass hosts go straight through, cached entries are authoritative, a
// miss triggers a live fetch stored on a 200 same-origin response, and a
// live failure falls back to the cached entry page.
func (m *Manager) Fetch(ctx context.Context, rawURL string) (Resource, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Resource{}, fmt.Errorf("invalid request url: %w", err)
	}

	if u.Host != "" && m.isBypass(u.Host) {
		// Always live. Offline this fails, which is the intended boundary.
		return m.fetchRaw(ctx, rawURL)
	}

	p := u.Path
	if active := m.activeGeneration(); active != "" {
		if body, ok := m.cached(active, p); ok {
			return Resource{
				Path:        p,
				Status:      http.StatusOK,
				ContentType: contentTypeFor(p),
				Body:        body,
				FromCache:   true,
			}, nil
		}
	}

	res, err := m.fetchUpstream(ctx, p)
	if err != nil {
		if active := m.activeGeneration(); active != "" && m.cfg.OfflineFallback != "" {
			if body, ok := m.cached(active, m.cfg.OfflineFallback); ok {
				return Resource{
					Path:        m.cfg.OfflineFallback,
					Status:      http.StatusOK,
					ContentType: contentTypeFor(m.cfg.OfflineFallback),
					Body:        body,
					FromCache:   true,
				}, nil
			}
		}
		return Resource{}, fmt.Errorf("fetch %s: %w", p, err)
	}

	// Only well-formed same-origin 200 responses are cached; everything
	// else is returned untouched.
	if res.Status == http.StatusOK && res.sameOrigin {
		if active := m.activeGeneration(); active != "" {
			if err := writeEntry(m.generationDir(active), p, res.Body); err != nil {
				slog.Warn("failed to cache fetched asset", "path", p, "error", err)
			}
		}
	}
	return res.Resource, nil
}

// Installed reports whether the current generation has been populated.
func (m *Manager) Installed() bool {
	return m.generationExists(m.CacheName())
}

type upstreamResult struct {
	Resource
	sameOrigin bool
}

func (m *Manager) fetchUpstream(ctx context.Context, p string) (upstreamResult, error) {
	if m.upstream == nil {
		return upstreamResult{}, ErrUpstreamRequired
	}

	ref := &url.URL{Path: p}
	target := m.upstream.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return upstreamResult{}, fmt.Errorf("failed to build upstream request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return upstreamResult{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return upstreamResult{}, fmt.Errorf("failed to read upstream response: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = contentTypeFor(p)
	}

	return upstreamResult{
		Resource: Resource{
			Path:        p,
			Status:      resp.StatusCode,
			ContentType: contentType,
			Body:        body,
		},
		// Redirects off the origin make the response opaque for caching.
		sameOrigin: resp.Request.URL.Host == m.upstream.Host,
	}, nil
}

func (m *Manager) fetchRaw(ctx context.Context, rawURL string) (Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Resource{}, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return Resource{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Resource{}, fmt.Errorf("failed to read response: %w", err)
	}

	return Resource{
		Path:        rawURL,
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func (m *Manager) isBypass(host string) bool {
	for _, h := range m.cfg.BypassHosts {
		if h != "" && host == h {
			return true
		}
	}
	return false
}

func (m *Manager) cached(generation, p string) ([]byte, bool) {
	entry, err := entryPath(m.generationDir(generation), p)
	if err != nil {
		return nil, false
	}
	body, err := os.ReadFile(entry)
	if err != nil {
		return nil, false
	}
	return body, true
}

func (m *Manager) generationDir(name string) string {
	return filepath.Join(m.cfg.Root, name)
}

func (m *Manager) generationExists(name string) bool {
	info, err := os.Stat(m.generationDir(name))
	return err == nil && info.IsDir()
}

// latestGeneration returns the newest installed generation by name, or ""
// when none exists.
func (m *Manager) latestGeneration() string {
	entries, err := os.ReadDir(m.cfg.Root)
	if err != nil {
		return ""
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), m.cfg.NamePrefix) &&
			!strings.HasSuffix(entry.Name(), ".staging") {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return names[len(names)-1]
}

func (m *Manager) activeGeneration() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

func (m *Manager) setActive(name string) {
	m.mu.Lock()
	m.active = name
	m.mu.Unlock()
}

// entryPath maps a request path to its file inside a generation directory,
// guarding against traversal outside the generation.
func entryPath(dir, p string) (string, error) {
	if strings.HasSuffix(p, "/") || p == "" {
		p += "index.html"
	}
	cleanPath := filepath.Clean("/" + p)
	full := filepath.Join(dir, cleanPath)
	if !strings.HasPrefix(full, dir) {
		return "", fmt.Errorf("invalid cache path: %s", p)
	}
	return full, nil
}

func writeEntry(dir, p string, body []byte) error {
	full, err := entryPath(dir, p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(full, body, 0644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

func contentTypeFor(p string) string {
	if strings.HasSuffix(p, "/") || p == "" {
		return "text/html; charset=utf-8"
	}
	ext := path.Ext(p)
	if ext == "" {
		return "text/html; charset=utf-8"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
