package connection

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/aryankumar/dockyard/internal/util"
)

// Manager is the operations facade over the connection catalogue. It runs
// the credential validator before every persist, wires collaborators into
// retrieved variants, and exposes the health protocol to the API layer.
type Manager struct {
	repo   Repository
	tls    TLSStore
	logger *slog.Logger

	// registry enumerates the known variants; Default unless overridden
	registry *Registry

	// probeTimeout bounds each health probe; zero means the default
	probeTimeout time.Duration
}

// NewManager creates a connection manager backed by the given repository
// and certificate store.
func NewManager(repo Repository, tls TLSStore, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		repo:     repo,
		tls:      tls,
		logger:   logger,
		registry: Default,
	}
}

// SetProbeTimeout overrides the health probe deadline for all
// connections handled by this manager.
func (m *Manager) SetProbeTimeout(d time.Duration) { m.probeTimeout = d }

// Descriptors lists the creatable connection variants.
func (m *Manager) Descriptors() []Descriptor {
	return m.registry.Descriptors()
}

// Create validates a new connection and persists it. The record is never
// persisted when validation fails. A missing ID is assigned here and is
// immutable afterwards.
func (m *Manager) Create(ctx context.Context, conn Connection) error {
	meta := conn.Meta()
	if meta.Name == "" {
		return util.NewValidationError("name", "connection name is required")
	}
	if err := m.checkKind(conn); err != nil {
		return err
	}

	m.equip(conn)
	if err := conn.Validate(); err != nil {
		m.logger.Debug("connection rejected by validator",
			"name", meta.Name,
			"kind", meta.Kind,
			"error", err)
		return err
	}

	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}

	if err := m.repo.Create(ctx, conn); err != nil {
		return err
	}

	m.logger.Info("connection created",
		"id", meta.ID,
		"name", meta.Name,
		"kind", meta.Kind)
	return nil
}

// Update validates a changed connection and persists it. The repository
// rejects attempts to change the kind discriminator.
func (m *Manager) Update(ctx context.Context, conn Connection) error {
	meta := conn.Meta()
	if meta.ID == "" {
		return util.NewValidationError("id", "connection id is required")
	}
	if meta.Name == "" {
		return util.NewValidationError("name", "connection name is required")
	}
	if err := m.checkKind(conn); err != nil {
		return err
	}

	m.equip(conn)
	if err := conn.Validate(); err != nil {
		return err
	}

	if err := m.repo.Update(ctx, conn); err != nil {
		return err
	}

	m.logger.Info("connection updated",
		"id", meta.ID,
		"name", meta.Name,
		"kind", meta.Kind)
	return nil
}

// Get retrieves the fully-typed variant for an identifier.
func (m *Manager) Get(ctx context.Context, id string) (Connection, error) {
	conn, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	m.equip(conn)
	return conn, nil
}

// GetByName retrieves the fully-typed variant by its unique name.
func (m *Manager) GetByName(ctx context.Context, name string) (Connection, error) {
	conn, err := m.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	m.equip(conn)
	return conn, nil
}

// List returns all connections across variants.
func (m *Manager) List(ctx context.Context) ([]Connection, error) {
	conns, err := m.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, conn := range conns {
		m.equip(conn)
	}
	return conns, nil
}

// Delete removes a connection by identifier.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.repo.Delete(ctx, id); err != nil {
		return err
	}
	m.logger.Info("connection deleted", "id", id)
	return nil
}

// State resolves a connection and probes its current health. The lookup
// can fail with util.ErrNotFound; the probe itself never fails.
func (m *Manager) State(ctx context.Context, id string) (HealthState, error) {
	conn, err := m.Get(ctx, id)
	if err != nil {
		return HealthState{}, err
	}
	return conn.State(ctx), nil
}

// tlsUser is implemented by variants that consume the certificate store.
type tlsUser interface {
	UseTLSStore(TLSStore)
}

// timeoutSetter is implemented by variants with a configurable probe
// deadline.
type timeoutSetter interface {
	SetProbeTimeout(time.Duration)
}

// equip wires manager-held collaborators into a variant.
func (m *Manager) equip(conn Connection) {
	if u, ok := conn.(tlsUser); ok && m.tls != nil {
		u.UseTLSStore(m.tls)
	}
	if s, ok := conn.(timeoutSetter); ok && m.probeTimeout > 0 {
		s.SetProbeTimeout(m.probeTimeout)
	}
}

// checkKind enforces that the discriminator and the runtime variant
// agree: the tagged kind must be registered and must construct the same
// concrete type the caller submitted.
func (m *Manager) checkKind(conn Connection) error {
	kind := conn.Meta().Kind
	desc, ok := m.registry.Lookup(kind)
	if !ok {
		return util.NewValidationError("kind", fmt.Sprintf("unknown connection kind %q", kind))
	}
	if reflect.TypeOf(desc.New()) != reflect.TypeOf(conn) {
		return util.NewValidationError("kind",
			fmt.Sprintf("kind %q does not match connection type %T", kind, conn))
	}
	return nil
}
