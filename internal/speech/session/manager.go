package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dictaflow/dictaflow/internal/speech/artifacts"
	"github.com/dictaflow/dictaflow/internal/speech/engine"
	"github.com/dictaflow/dictaflow/pkg/events"
)

// CachePolicy controls how many ASR sessions may stay resident.
type CachePolicy string

const (
	// PolicySingleSlot keeps exactly one session and evicts on version
	// switch. Bounds memory on constrained devices at the cost of
	// reconstruction latency when switching repeatedly.
	PolicySingleSlot CachePolicy = "single"

	// PolicyPerVersion keeps one session per version so repeated
	// switching does not pay reconstruction cost.
	PolicyPerVersion CachePolicy = "per-version"
)

// Config holds session manager settings.
type Config struct {
	Policy       CachePolicy
	Compute      engine.ComputeConfig
	VADThreshold float32
}

// Manager owns the resident ASR session(s) and the lazily constructed
// VAD session. All load, switch, and cleanup operations serialize on
// one mutex; a request arriving mid-switch waits for the switch to
// finish rather than starting a racing one.
type Manager struct {
	provider    engine.Provider
	vadProvider engine.VADProvider
	locator     *artifacts.Locator
	cfg         Config
	pub         *events.Publisher

	mu        sync.Mutex
	active    engine.Session
	activeVer engine.ModelVersion
	hasActive bool
	cache     map[engine.ModelVersion]engine.Session
	vad       engine.VADSession
}

// NewManager creates a session manager. Policy defaults to single-slot.
func NewManager(provider engine.Provider, vadProvider engine.VADProvider, locator *artifacts.Locator, cfg Config) *Manager {
	if cfg.Policy == "" {
		cfg.Policy = PolicySingleSlot
	}
	return &Manager{
		provider:    provider,
		vadProvider: vadProvider,
		locator:     locator,
		cfg:         cfg,
		cache:       make(map[engine.ModelVersion]engine.Session),
	}
}

// SetPublisher enables model lifecycle events. Optional; a manager
// without a publisher stays silent.
func (m *Manager) SetPublisher(pub *events.Publisher) {
	m.mu.Lock()
	m.pub = pub
	m.mu.Unlock()
}

func (m *Manager) emit(ctx context.Context, et events.EventType, ver engine.ModelVersion) {
	if m.pub == nil {
		return
	}
	if err := m.pub.Emit(ctx, et, ver.String(), events.ModelEventData{
		Version:     ver.String(),
		DisplayName: ver.DisplayName(),
	}); err != nil {
		slog.WarnContext(ctx, "emit model event failed",
			slog.String("event_type", string(et)),
			slog.String("error", err.Error()))
	}
}

// EnsureLoaded returns a resident session for the version, constructing
// or switching as needed. Re-requesting the active version is a no-op.
// The old session is fully released before the new one is constructed;
// a construction failure leaves the manager with no active session.
func (m *Manager) EnsureLoaded(ctx context.Context, version engine.ModelVersion) (engine.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.hasActive && m.activeVer == version {
		return m.active, nil
	}

	if m.cfg.Policy == PolicyPerVersion {
		if sess, ok := m.cache[version]; ok {
			m.active = sess
			m.activeVer = version
			m.hasActive = true
			return sess, nil
		}
	}

	// Never hold two sessions under the single-slot policy: tear the
	// old one down before constructing the replacement.
	if m.hasActive && m.cfg.Policy == PolicySingleSlot {
		if err := m.active.Release(); err != nil {
			slog.WarnContext(ctx, "session release failed",
				slog.String("version", m.activeVer.String()),
				slog.String("error", err.Error()))
		}
		delete(m.cache, m.activeVer)
		m.emit(ctx, events.ModelReleased, m.activeVer)
	}
	m.active = nil
	m.hasActive = false

	if !m.locator.Available(version) {
		return nil, fmt.Errorf("%w: model artifacts for %s not installed", engine.ErrEngineInit, version)
	}

	sess, err := m.provider.Load(ctx, m.locator.Resolve(version), m.cfg.Compute)
	if err != nil {
		return nil, fmt.Errorf("load %s session: %w", version, err)
	}

	m.active = sess
	m.activeVer = version
	m.hasActive = true
	m.cache[version] = sess

	slog.InfoContext(ctx, "model session loaded", slog.String("version", version.String()))
	m.emit(ctx, events.ModelLoaded, version)
	return sess, nil
}

// VAD returns the shared VAD session, constructing it on first use.
// The session is reused across ASR version switches and only released
// by Cleanup.
func (m *Manager) VAD(ctx context.Context) (engine.VADSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vad != nil {
		return m.vad, nil
	}

	sess, err := m.vadProvider.Construct(m.cfg.VADThreshold)
	if err != nil {
		return nil, fmt.Errorf("construct VAD session: %w", err)
	}
	m.vad = sess
	slog.DebugContext(ctx, "vad session constructed",
		slog.Float64("threshold", float64(m.cfg.VADThreshold)))
	return sess, nil
}

// ActiveVersion reports the resident ASR session's version, if any.
func (m *Manager) ActiveVersion() (engine.ModelVersion, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeVer, m.hasActive
}

// Cleanup releases every resident ASR session and the VAD session and
// clears the active-version marker.
func (m *Manager) Cleanup() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for ver, sess := range m.cache {
		if err := sess.Release(); err != nil {
			errs = append(errs, fmt.Errorf("release %s: %w", ver, err))
		}
		delete(m.cache, ver)
		m.emit(context.Background(), events.ModelReleased, ver)
	}
	m.active = nil
	m.hasActive = false

	if m.vad != nil {
		if err := m.vad.Release(); err != nil {
			errs = append(errs, fmt.Errorf("release vad: %w", err))
		}
		m.vad = nil
	}

	return errors.Join(errs...)
}
