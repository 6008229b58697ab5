// Package credentials resolves Google credentials for the services leadline
// calls: Vertex AI generation, Vertex AI Search, and the chat client's ID
// token for protected deployments.
package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/leadline/pkg/dotdir"
)

const (
	credentialsFile = "credentials.toml"

	currentVersion = 0
)

// Service names.
const (
	ServiceVertex = "vertex"
	ServiceSearch = "search"
	ServiceClient = "client"
)

// Manager manages reading and writing credentials.toml in the .leadline/ directory.
type Manager struct {
	ddm        *dotdir.Manager
	targetPath string
}

// NewManager creates a new credentials Manager. If override is non-empty it is
// used as the .leadline/ directory; otherwise the standard dotdir resolution applies.
func NewManager(override string) (*Manager, error) {
	mgr := &Manager{}
	mgr.ddm = dotdir.NewManager()

	target, err := mgr.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	mgr.targetPath = filepath.Join(target, credentialsFile)

	return mgr, nil
}

// Load reads credentials.toml from the target directory.
// Returns an empty Credentials if the file does not exist.
func (m *Manager) Load() (*Credentials, error) {
	data, err := os.ReadFile(m.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Credentials{
				Version:  currentVersion,
				Services: make(map[string]ServiceCredential),
			}, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	creds := &Credentials{}
	if err := toml.Unmarshal(data, creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	if creds.Services == nil {
		creds.Services = make(map[string]ServiceCredential)
	}

	return creds, nil
}

// Save writes credentials to credentials.toml with 0600 permissions.
func (m *Manager) Save(creds *Credentials) error {
	if creds == nil {
		return errors.New("cannot save nil credentials")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(creds); err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	if err := os.WriteFile(m.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}

	return nil
}

// SetCredentialsFile stores the service account key path for a service.
func (m *Manager) SetCredentialsFile(service, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving credentials file: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("checking credentials file: %w", err)
	}

	creds, err := m.Load()
	if err != nil {
		return err
	}

	creds.Services[service] = ServiceCredential{CredentialsFile: abs}

	return m.Save(creds)
}

// CredentialsFile returns the stored key path for a service, or an empty
// string when the service uses Application Default Credentials.
func (m *Manager) CredentialsFile(service string) (string, error) {
	creds, err := m.Load()
	if err != nil {
		return "", err
	}

	return creds.Services[service].CredentialsFile, nil
}

// Remove deletes the stored credential for a service.
func (m *Manager) Remove(service string) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}

	delete(creds.Services, service)

	return m.Save(creds)
}

// ListServices returns the names of services that have stored credentials.
func (m *Manager) ListServices() ([]string, error) {
	creds, err := m.Load()
	if err != nil {
		return nil, err
	}

	services := make([]string, 0, len(creds.Services))
	for name := range creds.Services {
		services = append(services, name)
	}

	sort.Strings(services)

	return services, nil
}

// GetTarget returns the resolved path to the credentials file.
func (m *Manager) GetTarget() string {
	return m.targetPath
}

// SupportedServices returns the services that accept stored credentials.
func SupportedServices() []string {
	return []string{ServiceVertex, ServiceSearch, ServiceClient}
}

// IsSupportedService returns true if the given service is supported.
func IsSupportedService(service string) bool {
	return slices.Contains(SupportedServices(), service)
}
