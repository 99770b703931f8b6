// Package connection models the container-runtime backends ("service
// connections") that outposts are deployed onto. Each backend family is a
// variant carrying its own credential shape and probe logic; the shared
// contract is a validated record plus a total health probe.
package connection

import (
	"context"
	"time"
)

// Kind discriminates the concrete backend family of a connection.
// It is fixed at creation and never mutated.
type Kind string

const (
	// KindDocker is a Docker-compatible engine backend.
	KindDocker Kind = "docker"

	// KindKubernetes is a Kubernetes cluster backend.
	KindKubernetes Kind = "kubernetes"
)

// DefaultProbeTimeout bounds a single health probe. A backend that does
// not answer within this window is reported unhealthy, never left pending.
const DefaultProbeTimeout = 10 * time.Second

// Metadata is the record shape shared by every connection variant.
type Metadata struct {
	// ID uniquely identifies the connection. Assigned at creation,
	// immutable afterwards.
	ID string `yaml:"id" json:"id"`

	// Name is the human-readable label. Unique across all variants.
	Name string `yaml:"name" json:"name"`

	// Local indicates the connection targets the cluster or host the
	// control plane itself runs on, which relaxes credential requirements.
	Local bool `yaml:"local" json:"local"`

	// Kind is the backend family discriminator.
	Kind Kind `yaml:"kind" json:"kind"`
}

// Meta returns the shared metadata. Embedding Metadata gives every
// variant this accessor.
func (m *Metadata) Meta() *Metadata { return m }

// HealthState is the ephemeral result of a single health probe.
// It is produced fresh on every query and never cached.
type HealthState struct {
	// Healthy reports whether the most recent probe succeeded.
	Healthy bool `yaml:"healthy" json:"healthy"`

	// Version is the backend's reported software version. Empty when the
	// probe failed.
	Version string `yaml:"version" json:"version"`
}

// Connection is the contract every backend variant implements.
//
// Contract:
// - Validate performs structural and semantic credential checks only; it
//   must not open network connections.
// - State is total: every backend failure (refused, timeout, bad auth,
//   protocol error) is absorbed into an unhealthy HealthState. It never
//   returns an error and must honor ctx cancellation.
// - Implementations must be safe for concurrent probes; probes of the
//   same connection are idempotent and may race harmlessly.
type Connection interface {
	// Meta returns the shared record metadata.
	Meta() *Metadata

	// Validate checks the variant's credential material before the record
	// is persisted. Failures are *util.ValidationError values.
	Validate() error

	// State probes the backend and reports its current health.
	State(ctx context.Context) HealthState
}

// TLSBundle holds filesystem paths to PEM material resolved from the
// certificate store. Unset paths mean the material is absent.
type TLSBundle struct {
	CAPath   string
	CertPath string
	KeyPath  string
}

// TLSStore resolves the opaque certificate identifiers referenced by
// Docker connections into PEM material. Implementations live outside this
// package; the store itself is an external collaborator.
type TLSStore interface {
	// Resolve maps a certificate-pair identifier to its material.
	// Unknown identifiers return an error satisfying errors.Is with
	// util.ErrCertificateNotFound.
	Resolve(name string) (TLSBundle, error)
}

// Repository is the persistence collaborator. Implementations enforce
// global name uniqueness and reconstruct the concrete variant on
// retrieval: Get must never return a value that has been narrowed to the
// abstract base.
type Repository interface {
	Create(ctx context.Context, conn Connection) error
	Get(ctx context.Context, id string) (Connection, error)
	GetByName(ctx context.Context, name string) (Connection, error)
	Update(ctx context.Context, conn Connection) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Connection, error)
}
