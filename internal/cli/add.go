package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aryankumar/dockyard/internal/connection"
	"github.com/aryankumar/dockyard/internal/util"
)

// newAddCmd creates the add command group
func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a service connection",
		Long: `Add a service connection to the catalogue. The connection's credential
material is validated before anything is persisted; a rejected credential
leaves the catalogue untouched.`,
	}

	cmd.AddCommand(newAddDockerCmd())
	cmd.AddCommand(newAddKubernetesCmd())

	return cmd
}

// newAddDockerCmd creates the add docker command
func newAddDockerCmd() *cobra.Command {
	var (
		name    string
		url     string
		tlsVer  string
		tlsAuth string
		local   bool
	)

	cmd := &cobra.Command{
		Use:   "docker",
		Short: "Add a Docker engine connection",
		Long: `Add a connection to a Docker-compatible engine. The endpoint may be a
socket path (unix:///var/run/docker.sock) or a TCP/TLS address
(tcp://10.0.0.5:2376). TLS material is referenced by name from the
certificate store, never embedded in the record.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn := &connection.DockerConnection{
				Metadata: connection.Metadata{
					Name:  name,
					Local: local,
					Kind:  connection.KindDocker,
				},
				URL:               url,
				TLSVerification:   tlsVer,
				TLSAuthentication: tlsAuth,
			}
			return runAdd(cmd.Context(), conn)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "unique connection name (required)")
	cmd.Flags().StringVar(&url, "url", "", "engine endpoint URL (required)")
	cmd.Flags().StringVar(&tlsVer, "tls-verification", "", "certificate store entry used to verify the engine")
	cmd.Flags().StringVar(&tlsAuth, "tls-authentication", "", "certificate store entry used to authenticate the client")
	cmd.Flags().BoolVar(&local, "local", false, "the engine runs on the control plane host")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("url")

	return cmd
}

// newAddKubernetesCmd creates the add kubernetes command
func newAddKubernetesCmd() *cobra.Command {
	var (
		name           string
		kubeconfigPath string
		local          bool
	)

	cmd := &cobra.Command{
		Use:   "kubernetes",
		Short: "Add a Kubernetes cluster connection",
		Long: `Add a connection to a Kubernetes cluster. The kubeconfig file is read,
validated with the cluster client's own loader, and stored inside the
record. Omitting --kubeconfig is only valid together with --local, in
which case in-cluster credentials are used at probe time.`,
		Aliases: []string{"k8s"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kubeconfig, err := readKubeconfig(kubeconfigPath)
			if err != nil {
				return err
			}

			conn := &connection.KubernetesConnection{
				Metadata: connection.Metadata{
					Name:  name,
					Local: local,
					Kind:  connection.KindKubernetes,
				},
				Kubeconfig: kubeconfig,
			}
			return runAdd(cmd.Context(), conn)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "unique connection name (required)")
	cmd.Flags().StringVar(&kubeconfigPath, "kubeconfig", "", "path to a kubeconfig file to store with the connection")
	cmd.Flags().BoolVar(&local, "local", false, "the cluster is the one the control plane runs on")
	cmd.MarkFlagRequired("name")

	return cmd
}

func runAdd(ctx context.Context, conn connection.Connection) error {
	manager, _, err := newManager()
	if err != nil {
		return err
	}

	if err := manager.Create(ctx, conn); err != nil {
		return fmt.Errorf("%s", util.FriendlyError(err))
	}

	meta := conn.Meta()
	fmt.Fprintf(os.Stdout, "Connection %q (%s) created with id %s\n", meta.Name, meta.Kind, meta.ID)
	return nil
}

// readKubeconfig loads a kubeconfig file into the nested mapping stored
// on the connection record. An empty path yields an empty mapping.
func readKubeconfig(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}

	expanded, err := expandPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read kubeconfig: %w", err)
	}

	var kubeconfig map[string]any
	if err := yaml.Unmarshal(data, &kubeconfig); err != nil {
		return nil, fmt.Errorf("failed to parse kubeconfig: %w", err)
	}
	return kubeconfig, nil
}

// expandPath expands ~ to home directory and evaluates environment variables
func expandPath(path string) (string, error) {
	path = os.ExpandEnv(path)

	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}

	return filepath.Clean(path), nil
}
