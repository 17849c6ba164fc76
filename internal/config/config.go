// Package config resolves the two provider configurations: built-in
// defaults, optional YAML overrides, and API keys looked up from the
// environment or prompted from the operator and cached in a per-user
// credential store.
package config

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Kind classifies configuration failures so callers can branch.
type Kind int

const (
	KindMissingCredential Kind = iota
	KindPersist
	KindBadOverrides
)

// Error is a structured configuration failure.
type Error struct {
	Kind     Kind
	Provider string
	Err      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMissingCredential:
		return fmt.Sprintf("config: API key for %s cannot be empty", e.Provider)
	case KindPersist:
		return fmt.Sprintf("config: failed to persist API key for %s: %v", e.Provider, e.Err)
	case KindBadOverrides:
		return fmt.Sprintf("config: invalid overrides file: %v", e.Err)
	default:
		return fmt.Sprintf("config: %s: %v", e.Provider, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Spec describes a provider before its API key is known.
type Spec struct {
	EnvVar   string
	Endpoint string
	Model    string
	Name     string
}

// Provider is a ready-to-use provider configuration. It is built once
// at startup and never mutated; the API key travels here explicitly
// rather than through the process environment.
type Provider struct {
	APIKey   string
	Endpoint string
	Model    string
	Name     string
}

// Answerer returns the default spec for the answering provider.
func Answerer() Spec {
	return Spec{
		EnvVar:   "MOONSHOT_API_KEY",
		Endpoint: "https://api.moonshot.cn/v1/chat/completions",
		Model:    "moonshot-v1-8k",
		Name:     "Moonshot AI",
	}
}

// Reviewer returns the default spec for the reviewing provider.
func Reviewer() Spec {
	return Spec{
		EnvVar:   "DEEPSEEK_API_KEY",
		Endpoint: "https://api.deepseek.com/chat/completions",
		Model:    "deepseek-chat",
		Name:     "DeepSeek AI",
	}
}

// DefaultStorePath returns the per-user credential store path,
// $HOME/.ai_vs_ai_config.
func DefaultStorePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: could not locate home directory: %w", err)
	}
	return filepath.Join(home, ".ai_vs_ai_config"), nil
}

// Resolver obtains provider credentials, prompting the operator when
// the environment does not already carry them.
type Resolver struct {
	// LookupEnv is swappable for tests; defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)

	in        *bufio.Reader
	out       io.Writer
	storePath string
	log       *slog.Logger
}

// NewResolver builds a resolver that prompts on out and reads entered
// keys from in. Prompted keys are appended to the credential store at
// storePath as KEY=VALUE lines.
func NewResolver(in io.Reader, out io.Writer, storePath string, log *slog.Logger) *Resolver {
	return &Resolver{
		LookupEnv: os.LookupEnv,
		in:        bufio.NewReader(in),
		out:       out,
		storePath: storePath,
		log:       log,
	}
}

// Resolve produces the provider configuration for spec. A resolution
// failure is fatal for this provider only; configurations already
// resolved are unaffected.
func (r *Resolver) Resolve(spec Spec) (Provider, error) {
	key, err := r.apiKey(spec)
	if err != nil {
		return Provider{}, err
	}
	return Provider{
		APIKey:   key,
		Endpoint: spec.Endpoint,
		Model:    spec.Model,
		Name:     spec.Name,
	}, nil
}

func (r *Resolver) apiKey(spec Spec) (string, error) {
	if v, ok := r.LookupEnv(spec.EnvVar); ok && v != "" {
		return v, nil
	}

	fmt.Fprintf(r.out, "Enter API Key for %s: ", spec.Name)
	line, err := r.in.ReadString('\n')
	if err != nil && line == "" {
		return "", &Error{Kind: KindMissingCredential, Provider: spec.Name, Err: err}
	}

	key := strings.TrimSpace(line)
	if key == "" {
		return "", &Error{Kind: KindMissingCredential, Provider: spec.Name}
	}

	if err := r.persist(spec.EnvVar, key); err != nil {
		// The operator already typed the key; failing startup over a
		// dotfile write would lose it. Warn and carry on.
		r.log.Warn("failed to persist API key", "env", spec.EnvVar, "path", r.storePath, "error", err)
	} else {
		fmt.Fprintf(r.out, "Saved %s to %s\n", spec.EnvVar, r.storePath)
	}

	return key, nil
}

// persist appends one KEY=VALUE line to the credential store so the
// next run finds the key via the environment load at startup.
func (r *Resolver) persist(envVar, key string) error {
	f, err := os.OpenFile(r.storePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return &Error{Kind: KindPersist, Provider: envVar, Err: err}
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s=%s\n", envVar, key); err != nil {
		return &Error{Kind: KindPersist, Provider: envVar, Err: err}
	}
	return nil
}
