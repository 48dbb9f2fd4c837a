// Package dolphin drives the Node.js automation scripts of a Dolphin
// project. Every operation runs `node <project>/scripts/<name> args...`
// with the project root as the working directory and returns stdout.
package dolphin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/germanamz/ultima/pkg/cmdrunner"
	"github.com/germanamz/ultima/pkg/providers/provider"
	"go.uber.org/zap"
)

// Script names used by the convenience wrappers.
const (
	MainScript       = "dolphin.mjs"
	AgentScript      = "agent.mjs"
	CreateIdeaScript = "create-idea.mjs"

	scriptsDir = "scripts"
)

// ErrScriptNotFound is returned when the named script does not exist.
var ErrScriptNotFound = errors.New("dolphin: script not found")

var _ provider.Prober = (*Project)(nil)

// Project is a Dolphin checkout on disk.
type Project struct {
	Path   string           // Project root.
	Node   string           // Node binary; defaults to "node".
	Runner cmdrunner.Runner // Defaults to cmdrunner.ExecRunner.
	Log    *zap.Logger
}

// New creates a Project rooted at path.
func New(path, node string, runner cmdrunner.Runner) *Project {
	if node == "" {
		node = "node"
	}

	if runner == nil {
		runner = cmdrunner.ExecRunner{}
	}

	return &Project{Path: path, Node: node, Runner: runner, Log: zap.NewNop()}
}

// Name returns the provider name.
func (p *Project) Name() string { return provider.Dolphin }

// Exists reports whether the project directory is present.
func (p *Project) Exists() bool {
	if p.Path == "" {
		return false
	}

	info, err := os.Stat(p.Path)

	return err == nil && info.IsDir()
}

// ScriptPath returns the absolute path of a script.
func (p *Project) ScriptPath(name string) string {
	return filepath.Join(p.Path, scriptsDir, name)
}

// RunScript runs scripts/<name> with args and returns its stdout.
func (p *Project) RunScript(ctx context.Context, name string, args ...string) (string, error) {
	if !p.Exists() {
		return "", fmt.Errorf("dolphin: project %q: %w", p.Path, provider.ErrUnavailable)
	}

	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: invalid name %q", ErrScriptNotFound, name)
	}

	script := p.ScriptPath(name)
	if info, err := os.Stat(script); err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrScriptNotFound, name)
	}

	p.Log.Debug("running dolphin script", zap.String("script", name), zap.Strings("args", args))

	res, err := p.Runner.Run(ctx, cmdrunner.Command{
		Name: p.Node,
		Args: append([]string{script}, args...),
		Dir:  p.Path,
	})
	if err != nil {
		return res.Stdout, fmt.Errorf("dolphin: %s: %w", name, err)
	}

	return res.Stdout, nil
}

// Command runs the main dolphin.mjs entry point.
func (p *Project) Command(ctx context.Context, args ...string) (string, error) {
	return p.RunScript(ctx, MainScript, args...)
}

// AgentWatch runs `agent.mjs watch`.
func (p *Project) AgentWatch(ctx context.Context) (string, error) {
	return p.RunScript(ctx, AgentScript, "watch")
}

// CreateIdea serializes idea to a temporary JSON file inside the project,
// hands it to create-idea.mjs and removes the file afterwards.
func (p *Project) CreateIdea(ctx context.Context, idea map[string]any) (string, error) {
	if !p.Exists() {
		return "", fmt.Errorf("dolphin: project %q: %w", p.Path, provider.ErrUnavailable)
	}

	data, err := json.Marshal(idea)
	if err != nil {
		return "", fmt.Errorf("dolphin: encode idea: %w", err)
	}

	f, err := os.CreateTemp(p.Path, "temp_idea_*.json")
	if err != nil {
		return "", fmt.Errorf("dolphin: create idea file: %w", err)
	}
	defer func() { _ = os.Remove(f.Name()) }()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("dolphin: write idea file: %w", err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("dolphin: close idea file: %w", err)
	}

	return p.RunScript(ctx, CreateIdeaScript, f.Name())
}

// Scripts returns the sorted names of the *.mjs files under scripts/.
func (p *Project) Scripts() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(p.Path, scriptsDir))
	if err != nil {
		return nil, fmt.Errorf("dolphin: list scripts: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".mjs") {
			continue
		}
		names = append(names, e.Name())
	}

	slices.Sort(names)

	return names, nil
}

// Info is the subset of package.json surfaced by ProjectInfo.
type Info struct {
	Name    string            `json:"name"`
	Version string            `json:"version"`
	Scripts map[string]string `json:"scripts,omitempty"`
}

// ProjectInfo reads the project's package.json.
func (p *Project) ProjectInfo() (Info, error) {
	data, err := os.ReadFile(filepath.Join(p.Path, "package.json")) //nolint:gosec // path comes from trusted config
	if err != nil {
		return Info{}, fmt.Errorf("dolphin: read package.json: %w", err)
	}

	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return Info{}, fmt.Errorf("dolphin: parse package.json: %w", err)
	}

	return info, nil
}

// Status is operational when the project, its scripts and node are all
// present, degraded when only the project is, and failed otherwise.
func (p *Project) Status(_ context.Context) provider.Status {
	if p.Path == "" {
		return provider.Failed(provider.Dolphin, "project path not configured")
	}

	if !p.Exists() {
		st := provider.Failed(provider.Dolphin, "project not found at "+p.Path)
		st.Path = p.Path

		return st
	}

	scripts, _ := p.Scripts()
	_, nodeErr := p.Runner.LookPath(p.Node)

	var st provider.Status
	switch {
	case nodeErr != nil:
		st = provider.Degraded(provider.Dolphin, p.Node+" not found in PATH")
	case len(scripts) == 0:
		st = provider.Degraded(provider.Dolphin, "no scripts found")
	default:
		st = provider.Operational(provider.Dolphin)
	}

	st.Path = p.Path
	st.Scripts = scripts

	return st
}
