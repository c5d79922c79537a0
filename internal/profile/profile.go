// Package profile loads CLI connection profiles from a YAML file, with
// environment variable overrides.
package profile

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the profile file looked up in the home directory when no
// explicit path is given.
const DefaultFileName = ".axonshell.yaml"

// Environment variable overrides. Each one, when set, wins over the file.
const (
	EnvURL    = "AX_URL"
	EnvKey    = "AX_KEY"
	EnvSecret = "AX_SECRET"
)

// Profile is one named connection to an Axonius instance.
type Profile struct {
	URL       string `yaml:"url"`
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
}

// File is the on-disk profile file: a default profile plus named alternates.
type File struct {
	Profile  `yaml:",inline"`
	Profiles map[string]Profile `yaml:"profiles,omitempty"`
}

// DefaultPath returns the profile path in the user's home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(home, DefaultFileName)
}

// Load reads the profile file and selects the named profile, or the top-level
// default when name is empty. A missing file is not an error: environment
// variables alone can carry a full profile.
func Load(path, name string) (Profile, error) {
	var p Profile

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if name != "" {
			return Profile{}, fmt.Errorf("profile %q requested but %s does not exist", name, path)
		}
	case err != nil:
		return Profile{}, fmt.Errorf("reading profile file %s: %w", path, err)
	default:
		var f File
		if err := yaml.Unmarshal(data, &f); err != nil {
			return Profile{}, fmt.Errorf("parsing profile file %s: %w", path, err)
		}
		if name == "" {
			p = f.Profile
		} else {
			named, ok := f.Profiles[name]
			if !ok {
				return Profile{}, fmt.Errorf("profile %q not found in %s", name, path)
			}
			p = named
		}
	}

	applyEnv(&p)

	if p.URL == "" {
		return Profile{}, fmt.Errorf("no instance URL: set url in %s or %s", path, EnvURL)
	}
	if p.APIKey == "" || p.APISecret == "" {
		return Profile{}, fmt.Errorf("no credentials: set api_key/api_secret in %s or %s/%s", path, EnvKey, EnvSecret)
	}
	return p, nil
}

func applyEnv(p *Profile) {
	if v := os.Getenv(EnvURL); v != "" {
		p.URL = v
	}
	if v := os.Getenv(EnvKey); v != "" {
		p.APIKey = v
	}
	if v := os.Getenv(EnvSecret); v != "" {
		p.APISecret = v
	}
}
