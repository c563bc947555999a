package config

import (
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/darksworm/argofleet/pkg/errors"
	"github.com/darksworm/argofleet/pkg/model"
	"github.com/darksworm/argofleet/pkg/trust"
	"gopkg.in/yaml.v3"
)

// FleetFile is the on-disk shape of the fleet configuration: the list of
// ArgoCD instances, the shared credential pair, and optional TLS material
// for instances behind private CAs.
type FleetFile struct {
	Instances   []model.Instance `yaml:"instances"`
	Credentials struct {
		Username string `yaml:"username,omitempty"`
		Password string `yaml:"password,omitempty"`
	} `yaml:"credentials,omitempty"`
	TLS struct {
		CACertFile         string `yaml:"ca_cert_file,omitempty"`
		CACertDir          string `yaml:"ca_cert_dir,omitempty"`
		ClientCertFile     string `yaml:"client_cert_file,omitempty"`
		ClientKeyFile      string `yaml:"client_key_file,omitempty"`
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify,omitempty"`
		MinVersion         string `yaml:"min_version,omitempty"`
	} `yaml:"tls,omitempty"`
}

// Registry is the read-only view over the resolved instance list. It is
// loaded once at startup; nothing mutates it afterwards.
type Registry struct {
	instances   []model.Instance
	credentials model.Credentials
	tls         trust.Options
}

// GetFleetConfigPath returns the path to the fleet configuration file
func GetFleetConfigPath() string {
	if configPath := os.Getenv("ARGOFLEET_CONFIG"); configPath != "" {
		return configPath
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "argofleet", "fleet.yaml")
	}

	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "argofleet", "fleet.yaml")
}

// LoadRegistry reads the fleet file and resolves it into a Registry.
// ARGOFLEET_USERNAME / ARGOFLEET_PASSWORD override the file's credentials so
// the password can stay out of the file entirely.
func LoadRegistry() (*Registry, error) {
	return LoadRegistryFromPath(GetFleetConfigPath())
}

// LoadRegistryFromPath reads the fleet configuration from a specific path
func LoadRegistryFromPath(configPath string) (*Registry, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read fleet config from %s: %w", configPath, err)
	}

	var file FleetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse fleet config: %w", err)
	}

	if len(file.Instances) == 0 {
		return nil, apperrors.ConfigError("NO_INSTANCES", "no ArgoCD instances configured").
			WithContext("path", configPath)
	}

	instances := make([]model.Instance, 0, len(file.Instances))
	for _, inst := range file.Instances {
		if inst.Name == "" || inst.URL == "" {
			return nil, apperrors.ConfigError("INVALID_INSTANCE",
				fmt.Sprintf("instance entry missing name or url: %q / %q", inst.Name, inst.URL))
		}
		inst.URL = ensureHTTPS(inst.URL)
		instances = append(instances, inst)
	}

	creds := model.Credentials{
		Username: file.Credentials.Username,
		Password: file.Credentials.Password,
	}
	if v := os.Getenv("ARGOFLEET_USERNAME"); v != "" {
		creds.Username = v
	}
	if v := os.Getenv("ARGOFLEET_PASSWORD"); v != "" {
		creds.Password = v
	}

	minTLS, err := trust.ParseMinVersion(file.TLS.MinVersion)
	if err != nil {
		return nil, err
	}
	tlsOpts := trust.Options{
		CACertFile:         file.TLS.CACertFile,
		CACertDir:          file.TLS.CACertDir,
		ClientCertFile:     file.TLS.ClientCertFile,
		ClientKeyFile:      file.TLS.ClientKeyFile,
		InsecureSkipVerify: file.TLS.InsecureSkipVerify,
		MinTLS:             minTLS,
	}

	return &Registry{instances: instances, credentials: creds, tls: tlsOpts}, nil
}

// NewRegistry builds a registry from an already-resolved instance list.
// Used by callers that assemble configuration themselves.
func NewRegistry(instances []model.Instance, creds model.Credentials) *Registry {
	copied := make([]model.Instance, len(instances))
	copy(copied, instances)
	return &Registry{instances: copied, credentials: creds}
}

// ListInstances returns the configured instances in registry order
func (r *Registry) ListInstances() []model.Instance {
	out := make([]model.Instance, len(r.instances))
	copy(out, r.instances)
	return out
}

// FindInstance returns the instance configured under the given name
func (r *Registry) FindInstance(name string) (model.Instance, error) {
	for _, inst := range r.instances {
		if inst.Name == name {
			return inst, nil
		}
	}
	return model.Instance{}, apperrors.ConfigError("INSTANCE_NOT_FOUND",
		fmt.Sprintf("instance %s not configured", name))
}

// Credentials returns the shared credential pair
func (r *Registry) Credentials() model.Credentials {
	return r.credentials
}

// TLS returns the TLS options configured for instance connections
func (r *Registry) TLS() trust.Options {
	return r.tls
}

// ensureHTTPS ensures the URL has a protocol, defaulting to https
func ensureHTTPS(baseURL string) string {
	if len(baseURL) >= 7 && (baseURL[:7] == "http://" || (len(baseURL) >= 8 && baseURL[:8] == "https://")) {
		return baseURL
	}
	return "https://" + baseURL
}
