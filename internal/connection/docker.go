package connection

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/docker/docker/client"
	"github.com/docker/go-connections/tlsconfig"

	"github.com/aryankumar/dockyard/internal/util"
)

// DockerConnection is a service connection to a Docker-compatible engine.
type DockerConnection struct {
	Metadata `yaml:",inline" json:",inline"`

	// URL is the engine endpoint: a socket path (unix://, npipe://) or a
	// TCP/TLS address (tcp://, http://, https://, ssh://).
	URL string `yaml:"url" json:"url"`

	// TLSVerification names a CA bundle in the certificate store used to
	// verify the engine's certificate. Empty disables verification.
	TLSVerification string `yaml:"tlsVerification,omitempty" json:"tlsVerification,omitempty"`

	// TLSAuthentication names a client keypair in the certificate store
	// used to authenticate against the engine. Empty disables client auth.
	TLSAuthentication string `yaml:"tlsAuthentication,omitempty" json:"tlsAuthentication,omitempty"`

	tls     TLSStore
	timeout time.Duration
}

var dockerSchemes = map[string]bool{
	"unix":  true,
	"npipe": true,
	"tcp":   true,
	"http":  true,
	"https": true,
	"ssh":   true,
}

// UseTLSStore wires in the certificate store collaborator. Resolution of
// the opaque TLS identifiers is deferred to validation and probing.
func (c *DockerConnection) UseTLSStore(s TLSStore) { c.tls = s }

// SetProbeTimeout overrides the probe deadline. Zero keeps the default.
func (c *DockerConnection) SetProbeTimeout(d time.Duration) { c.timeout = d }

// Validate sanity-checks the endpoint address and the referenced
// certificate identifiers. It performs no network I/O.
func (c *DockerConnection) Validate() error {
	if c.URL == "" {
		return util.NewValidationError("url", "endpoint URL is required")
	}

	parsed, err := client.ParseHostURL(c.URL)
	if err != nil {
		return util.WrapValidationError("url", "malformed endpoint URL", err)
	}
	if !dockerSchemes[parsed.Scheme] {
		return util.NewValidationError("url", fmt.Sprintf("unsupported endpoint scheme %q", parsed.Scheme))
	}

	var tlsOpts tlsconfig.Options
	useTLS := false

	if c.TLSVerification != "" {
		bundle, err := c.resolveTLS(c.TLSVerification)
		if err != nil {
			return util.WrapValidationError("tlsVerification",
				fmt.Sprintf("unknown certificate %q", c.TLSVerification), err)
		}
		if bundle.CAPath == "" {
			return util.NewValidationError("tlsVerification",
				fmt.Sprintf("certificate %q has no CA material", c.TLSVerification))
		}
		tlsOpts.CAFile = bundle.CAPath
		useTLS = true
	}

	if c.TLSAuthentication != "" {
		bundle, err := c.resolveTLS(c.TLSAuthentication)
		if err != nil {
			return util.WrapValidationError("tlsAuthentication",
				fmt.Sprintf("unknown certificate %q", c.TLSAuthentication), err)
		}
		if bundle.CertPath == "" || bundle.KeyPath == "" {
			return util.NewValidationError("tlsAuthentication",
				fmt.Sprintf("certificate %q has no client keypair", c.TLSAuthentication))
		}
		tlsOpts.CertFile, tlsOpts.KeyFile = bundle.CertPath, bundle.KeyPath
		useTLS = true
	}

	// The referenced PEM material has to actually parse, otherwise every
	// later probe would fail on it.
	if useTLS {
		if _, err := tlsconfig.Client(tlsOpts); err != nil {
			return util.WrapValidationError("tls", "unreadable TLS material", err)
		}
	}

	return nil
}

// State probes the engine with a lightweight version query. All failures
// collapse into an unhealthy state; this method never returns an error.
func (c *DockerConnection) State(ctx context.Context) HealthState {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout(c.timeout))
	defer cancel()

	cli, err := c.newClient()
	if err != nil {
		slog.Debug("docker client construction failed",
			"connection", c.Name,
			"error", err)
		return HealthState{}
	}
	defer cli.Close()

	type result struct {
		version string
		err     error
	}
	resultCh := make(chan result, 1)

	// Run the version query in a goroutine so a hung engine cannot
	// outlive the probe deadline.
	go func() {
		v, err := cli.ServerVersion(probeCtx)
		if err != nil {
			resultCh <- result{err: err}
			return
		}
		resultCh <- result{version: v.Version}
	}()

	select {
	case <-probeCtx.Done():
		slog.Debug("docker probe timed out",
			"connection", c.Name,
			"url", c.URL)
		return HealthState{}
	case res := <-resultCh:
		if res.err != nil {
			slog.Debug("docker probe failed",
				"connection", c.Name,
				"url", c.URL,
				"error", res.err)
			return HealthState{}
		}
		return HealthState{Healthy: true, Version: res.version}
	}
}

// newClient builds the engine client for this connection, resolving TLS
// material from the certificate store when referenced.
func (c *DockerConnection) newClient() (*client.Client, error) {
	opts := []client.Opt{
		client.WithHost(c.URL),
		client.WithAPIVersionNegotiation(),
	}

	if c.TLSVerification != "" || c.TLSAuthentication != "" {
		var ca, cert, key string
		if c.TLSVerification != "" {
			bundle, err := c.resolveTLS(c.TLSVerification)
			if err != nil {
				return nil, err
			}
			ca = bundle.CAPath
		}
		if c.TLSAuthentication != "" {
			bundle, err := c.resolveTLS(c.TLSAuthentication)
			if err != nil {
				return nil, err
			}
			cert, key = bundle.CertPath, bundle.KeyPath
		}
		opts = append(opts, client.WithTLSClientConfig(ca, cert, key))
	}

	return client.NewClientWithOpts(opts...)
}

func (c *DockerConnection) resolveTLS(name string) (TLSBundle, error) {
	if c.tls == nil {
		return TLSBundle{}, fmt.Errorf("no certificate store configured")
	}
	return c.tls.Resolve(name)
}

func probeTimeout(d time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return DefaultProbeTimeout
}

func init() {
	mustRegister(Descriptor{
		Kind:        KindDocker,
		DisplayName: "Docker Service-Connection",
		Description: "Connect to a Docker-compatible container engine over a socket or TCP/TLS address.",
		Component:   "docker-connection-form",
		New:         func() Connection { return &DockerConnection{Metadata: Metadata{Kind: KindDocker}} },
	})
}
