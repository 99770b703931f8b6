// Package certstore resolves the opaque certificate identifiers carried
// by Docker connections into PEM material on disk. Each identifier names
// a directory holding some subset of ca.pem, cert.pem and key.pem, the
// same file layout the Docker CLI uses for its TLS options.
package certstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aryankumar/dockyard/internal/connection"
	"github.com/aryankumar/dockyard/internal/util"
)

const (
	caFile   = "ca.pem"
	certFile = "cert.pem"
	keyFile  = "key.pem"
)

// Store is a directory-backed certificate store. It implements
// connection.TLSStore.
type Store struct {
	dir string
}

// New creates a certificate store rooted at dir. The directory does not
// have to exist yet; resolution of any identifier will then fail.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

// Resolve maps an identifier to the PEM material stored under it. Paths
// for files that are absent stay empty; callers decide which parts they
// require. Unknown identifiers fail with util.ErrCertificateNotFound.
func (s *Store) Resolve(name string) (connection.TLSBundle, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return connection.TLSBundle{}, fmt.Errorf("invalid certificate name %q", name)
	}

	dir := filepath.Join(s.dir, name)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return connection.TLSBundle{}, fmt.Errorf("certificate %q: %w", name, util.ErrCertificateNotFound)
	}

	var bundle connection.TLSBundle
	if p := filepath.Join(dir, caFile); fileExists(p) {
		bundle.CAPath = p
	}
	if p := filepath.Join(dir, certFile); fileExists(p) {
		bundle.CertPath = p
	}
	if p := filepath.Join(dir, keyFile); fileExists(p) {
		bundle.KeyPath = p
	}

	if bundle.CAPath == "" && bundle.CertPath == "" && bundle.KeyPath == "" {
		return connection.TLSBundle{}, fmt.Errorf("certificate %q holds no PEM material: %w",
			name, util.ErrCertificateNotFound)
	}

	return bundle, nil
}

// List returns the identifiers present in the store, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read certificate store: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
