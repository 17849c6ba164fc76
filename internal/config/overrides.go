package config

import (
	"errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// RoleOverride points one role at a different OpenAI-compatible
// endpoint. Empty fields keep the built-in default.
type RoleOverride struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	Model    string `yaml:"model,omitempty"`
	Name     string `yaml:"name,omitempty"`
}

// Overrides models the optional $HOME/.aivsai.yaml file.
type Overrides struct {
	Answerer RoleOverride `yaml:"answerer"`
	Reviewer RoleOverride `yaml:"reviewer"`
}

// LoadOverrides reads the overrides file at path. A missing file is
// not an error and yields zero overrides.
func LoadOverrides(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Overrides{}, nil
	}
	if err != nil {
		return Overrides{}, &Error{Kind: KindBadOverrides, Err: err}
	}

	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Overrides{}, &Error{Kind: KindBadOverrides, Err: err}
	}
	return o, nil
}

// Apply merges the non-empty override fields into spec.
func (ro RoleOverride) Apply(spec Spec) Spec {
	if ro.Endpoint != "" {
		spec.Endpoint = ro.Endpoint
	}
	if ro.Model != "" {
		spec.Model = ro.Model
	}
	if ro.Name != "" {
		spec.Name = ro.Name
	}
	return spec
}
