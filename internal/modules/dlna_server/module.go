// Package dlnaserver exposes the ContentDirectory dispatcher over the UPnP
// SOAP control protocol.
package dlnaserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	freecache "github.com/coocood/freecache"
	gocache "github.com/eko/gocache/lib/v4/cache"
	libstore "github.com/eko/gocache/lib/v4/store"
	gocachefreecache "github.com/eko/gocache/store/freecache/v4"
	"github.com/golang/snappy"
	"go.uber.org/zap"

	"github.com/hearthcast/hearthcast/internal/adapters/idgen"
	"github.com/hearthcast/hearthcast/internal/contentdirectory"
	"github.com/hearthcast/hearthcast/internal/library"
)

// ControlPath is the ContentDirectory control endpoint.
const ControlPath = "/upnp/control/ContentDirectory1"

// Config configures the DLNA control server.
type Config struct {
	Listen        string
	FriendlyName  string
	CacheTTL      time.Duration
	CacheSize     int
	CacheCompress bool
}

// Module serves ContentDirectory SOAP actions over HTTP.
type Module struct {
	log     *zap.Logger
	svc     *contentdirectory.Service
	user    library.User
	updates library.UpdateSource
	config  Config
	ids     idgen.Generator

	cache    gocache.CacheInterface[[]byte]
	cacheCtx context.Context
}

// NewModule creates a DLNA control server module.
func NewModule(log *zap.Logger, svc *contentdirectory.Service, user library.User, updates library.UpdateSource, cfg Config) (*Module, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if svc == nil {
		return nil, errors.New("content directory service required")
	}
	if strings.TrimSpace(cfg.Listen) == "" {
		cfg.Listen = "0.0.0.0:8895"
	}
	if strings.TrimSpace(cfg.FriendlyName) == "" {
		cfg.FriendlyName = "Hearthcast"
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	cfg.CacheSize = cacheSizeBytes(cfg.CacheSize)

	return &Module{
		log:      log,
		svc:      svc,
		user:     user,
		updates:  updates,
		config:   cfg,
		cache:    newCache(cfg.CacheSize),
		cacheCtx: context.Background(),
	}, nil
}

// Run serves until the context is cancelled.
func (m *Module) Run(ctx context.Context) error {
	server := &http.Server{Addr: m.config.Listen, Handler: m.Handler()}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	m.log.Info("dlna control server listening",
		zap.String("listen", m.config.Listen),
		zap.String("friendly_name", m.config.FriendlyName),
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// Handler returns the HTTP handler serving the control endpoint.
func (m *Module) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(ControlPath, m.handleControl)
	return mux
}

func (m *Module) handleControl(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	requestID := m.ids.NewID()
	headerAction := parseSOAPAction(r.Header.Get("SOAPACTION"))

	action, params, err := parseEnvelope(r.Body)
	if err != nil {
		m.log.Error("malformed control envelope", zap.String("request_id", requestID), zap.Error(err))
		m.writeFault(w, 402, "Invalid Args")
		return
	}
	if headerAction != "" {
		action = headerAction
	}

	req := contentdirectory.Request{Action: action, Params: params}

	if key, ok := m.cacheKey(req); ok {
		if payload, hit := m.cacheGet(key); hit {
			writeSOAP(w, http.StatusOK, payload)
			return
		}
		payload, fault := m.dispatch(r.Context(), requestID, req)
		if fault != nil {
			m.writeFault(w, fault.code, fault.description)
			return
		}
		m.cachePut(key, payload)
		writeSOAP(w, http.StatusOK, payload)
		return
	}

	payload, fault := m.dispatch(r.Context(), requestID, req)
	if fault != nil {
		m.writeFault(w, fault.code, fault.description)
		return
	}
	writeSOAP(w, http.StatusOK, payload)
}

type upnpFault struct {
	code        int
	description string
}

func (m *Module) dispatch(ctx context.Context, requestID string, req contentdirectory.Request) ([]byte, *upnpFault) {
	resp, err := m.svc.Handle(ctx, m.user, req)
	if err != nil {
		fault := classifyFault(err)
		m.log.Error("action failed",
			zap.String("request_id", requestID),
			zap.String("action", req.Action),
			zap.Int("upnp_code", fault.code),
			zap.Error(err),
		)
		return nil, fault
	}
	m.log.Debug("action served",
		zap.String("request_id", requestID),
		zap.String("action", req.Action),
	)
	return buildResponseEnvelope(req.Action, resp), nil
}

func classifyFault(err error) *upnpFault {
	switch {
	case errors.Is(err, contentdirectory.ErrActionNotFound):
		return &upnpFault{code: 401, description: "Invalid Action"}
	case errors.Is(err, contentdirectory.ErrInvalidArgument):
		return &upnpFault{code: 402, description: "Invalid Args"}
	case errors.Is(err, contentdirectory.ErrNotContainer):
		return &upnpFault{code: 710, description: "No such container"}
	default:
		return &upnpFault{code: 501, description: "Action Failed"}
	}
}

func (m *Module) writeFault(w http.ResponseWriter, code int, description string) {
	writeSOAP(w, http.StatusInternalServerError, buildFaultEnvelope(code, description))
}

func writeSOAP(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", `text/xml; charset="utf-8"`)
	w.Header().Set("Ext", "")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

// cacheKey builds the cache key for read actions. Keys carry the current
// update id, so a library change naturally invalidates all prior entries.
func (m *Module) cacheKey(req contentdirectory.Request) (string, bool) {
	switch strings.ToLower(req.Action) {
	case "browse", "search", "x_browsebyletter":
	default:
		return "", false
	}

	keys := make([]string, 0, len(req.Params))
	for k := range req.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "control:%s:%d", strings.ToLower(req.Action), m.updates.UpdateID())
	for _, k := range keys {
		fmt.Fprintf(&b, ":%s=%s", strings.ToLower(k), req.Params[k])
	}
	return b.String(), true
}

func (m *Module) cacheGet(key string) ([]byte, bool) {
	if m.cache == nil {
		return nil, false
	}
	value, err := m.cache.Get(m.cacheCtx, key)
	if err != nil || len(value) == 0 {
		return nil, false
	}
	if m.config.CacheCompress {
		decoded, err := snappy.Decode(nil, value)
		if err != nil {
			return nil, false
		}
		return decoded, true
	}
	return value, true
}

func (m *Module) cachePut(key string, payload []byte) {
	if m.cache == nil || payload == nil {
		return
	}
	value := payload
	if m.config.CacheCompress {
		value = snappy.Encode(nil, payload)
	}
	_ = m.cache.Set(m.cacheCtx, key, value, libstore.WithExpiration(m.config.CacheTTL))
}

func cacheSizeBytes(size int) int {
	if size == 0 {
		return 16 * 1024 * 1024
	}
	if size > 0 && size < 1024*1024 {
		return size * 64 * 1024
	}
	return size
}

func newCache(size int) gocache.CacheInterface[[]byte] {
	if size <= 0 {
		return nil
	}
	store := gocachefreecache.NewFreecache(freecache.NewCache(size))
	return gocache.New[[]byte](store)
}
