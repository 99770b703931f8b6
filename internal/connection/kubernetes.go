package connection

import (
	"context"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/version"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/aryankumar/dockyard/internal/util"
)

// KubernetesConnection is a service connection to a Kubernetes cluster.
type KubernetesConnection struct {
	Metadata `yaml:",inline" json:",inline"`

	// Kubeconfig is the kubeconfig document as a nested mapping. It may
	// be empty only when Local is true, in which case in-cluster
	// credentials are used.
	Kubeconfig map[string]any `yaml:"kubeconfig,omitempty" json:"kubeconfig,omitempty"`

	timeout time.Duration
}

// SetProbeTimeout overrides the probe deadline. Zero keeps the default.
func (c *KubernetesConnection) SetProbeTimeout(d time.Duration) { c.timeout = d }

// Validate checks the kubeconfig credential. An empty kubeconfig is only
// valid for local connections; a non-empty one must load through
// client-go's own kubeconfig loader. Loader failures are resurfaced with
// a stable message, the library cause stays reachable via errors.Unwrap.
func (c *KubernetesConnection) Validate() error {
	if len(c.Kubeconfig) == 0 {
		if !c.Local {
			return util.NewValidationError("kubeconfig", "empty kubeconfig requires local cluster")
		}
		return nil
	}

	raw, err := yaml.Marshal(c.Kubeconfig)
	if err != nil {
		return util.WrapValidationError("kubeconfig", "invalid kubeconfig", err)
	}

	cfg, err := clientcmd.Load(raw)
	if err != nil {
		return util.WrapValidationError("kubeconfig", "invalid kubeconfig", err)
	}
	if err := clientcmd.Validate(*cfg); err != nil {
		return util.WrapValidationError("kubeconfig", "invalid kubeconfig", err)
	}

	return nil
}

// State probes the cluster with a discovery version query. All failures
// collapse into an unhealthy state; this method never returns an error.
func (c *KubernetesConnection) State(ctx context.Context) HealthState {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout(c.timeout))
	defer cancel()

	clientset, err := c.newClientset()
	if err != nil {
		slog.Debug("kubernetes client construction failed",
			"connection", c.Name,
			"error", err)
		return HealthState{}
	}

	type result struct {
		info *version.Info
		err  error
	}
	resultCh := make(chan result, 1)

	// Discovery's ServerVersion call does not take a context, so run it
	// in a goroutine and select against the probe deadline.
	go func() {
		info, err := clientset.Discovery().ServerVersion()
		resultCh <- result{info: info, err: err}
	}()

	select {
	case <-probeCtx.Done():
		slog.Debug("kubernetes probe timed out", "connection", c.Name)
		return HealthState{}
	case res := <-resultCh:
		if res.err != nil {
			slog.Debug("kubernetes probe failed",
				"connection", c.Name,
				"error", res.err)
			return HealthState{}
		}
		return HealthState{Healthy: true, Version: res.info.String()}
	}
}

// newClientset builds the cluster client from the stored kubeconfig, or
// from in-cluster credentials for local connections with no kubeconfig.
func (c *KubernetesConnection) newClientset() (kubernetes.Interface, error) {
	restConfig, err := c.restConfig()
	if err != nil {
		return nil, err
	}

	// Cap the client-side request timeout at the probe bound as well, so
	// the underlying transport gives up on its own.
	restConfig.Timeout = probeTimeout(c.timeout)

	return kubernetes.NewForConfig(restConfig)
}

func (c *KubernetesConnection) restConfig() (*rest.Config, error) {
	if len(c.Kubeconfig) == 0 {
		return rest.InClusterConfig()
	}

	raw, err := yaml.Marshal(c.Kubeconfig)
	if err != nil {
		return nil, err
	}
	return clientcmd.RESTConfigFromKubeConfig(raw)
}

func init() {
	mustRegister(Descriptor{
		Kind:        KindKubernetes,
		DisplayName: "Kubernetes Service-Connection",
		Description: "Connect to a Kubernetes cluster via a stored kubeconfig or local in-cluster credentials.",
		Component:   "kubernetes-connection-form",
		New:         func() Connection { return &KubernetesConnection{Metadata: Metadata{Kind: KindKubernetes}} },
	})
}
