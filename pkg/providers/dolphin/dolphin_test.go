package dolphin_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/germanamz/ultima/pkg/cmdrunner"
	"github.com/germanamz/ultima/pkg/cmdrunner/runnertest"
	"github.com/germanamz/ultima/pkg/providers/dolphin"
	"github.com/germanamz/ultima/pkg/providers/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProject(t *testing.T, scripts ...string) string {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "scripts"), 0o750))

	for _, s := range scripts {
		require.NoError(t, os.WriteFile(filepath.Join(root, "scripts", s), []byte("// script"), 0o600))
	}

	return root
}

func TestRunScript(t *testing.T) {
	root := newProject(t, "dolphin.mjs")
	script := filepath.Join(root, "scripts", "dolphin.mjs")

	r := &runnertest.Runner{Responses: map[string]runnertest.Response{
		"node " + script + " status --json": runnertest.OK("all good\n"),
	}}
	p := dolphin.New(root, "", r)

	out, err := p.Command(context.Background(), "status", "--json")
	require.NoError(t, err)
	assert.Equal(t, "all good\n", out)

	calls := r.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, root, calls[0].Dir)
}

func TestRunScript_MissingScript(t *testing.T) {
	p := dolphin.New(newProject(t), "", &runnertest.Runner{})

	_, err := p.RunScript(context.Background(), "nope.mjs")
	assert.ErrorIs(t, err, dolphin.ErrScriptNotFound)
}

func TestRunScript_RejectsTraversal(t *testing.T) {
	root := newProject(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "scripts", "lib"), 0o750))

	r := &runnertest.Runner{}
	p := dolphin.New(root, "", r)

	for _, name := range []string{"../package.json", "..", ".", "lib"} {
		t.Run(name, func(t *testing.T) {
			_, err := p.RunScript(context.Background(), name)
			assert.ErrorIs(t, err, dolphin.ErrScriptNotFound)
		})
	}

	assert.Empty(t, r.Calls())
}

func TestRunScript_MissingProject(t *testing.T) {
	p := dolphin.New(filepath.Join(t.TempDir(), "gone"), "", &runnertest.Runner{})

	_, err := p.AgentWatch(context.Background())
	assert.ErrorIs(t, err, provider.ErrUnavailable)
}

func TestRunScript_ExitError(t *testing.T) {
	root := newProject(t, "agent.mjs")
	script := filepath.Join(root, "scripts", "agent.mjs")

	r := &runnertest.Runner{Responses: map[string]runnertest.Response{
		"node " + script + " watch": {Result: cmdrunner.Result{Stdout: "partial", Stderr: "boom", ExitCode: 2}},
	}}
	p := dolphin.New(root, "", r)

	out, err := p.AgentWatch(context.Background())

	var exitErr *cmdrunner.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Result.ExitCode)
	assert.Equal(t, "partial", out)
}

// ideaRunner captures the idea file contents while it still exists.
type ideaRunner struct {
	runnertest.Runner
	seen string
	path string
}

func (r *ideaRunner) Run(ctx context.Context, cmd cmdrunner.Command) (cmdrunner.Result, error) {
	r.path = cmd.Args[len(cmd.Args)-1]
	data, err := os.ReadFile(r.path)
	if err != nil {
		return cmdrunner.Result{}, err
	}
	r.seen = string(data)

	return cmdrunner.Result{Stdout: "idea created"}, nil
}

func TestCreateIdea(t *testing.T) {
	root := newProject(t, "create-idea.mjs")
	r := &ideaRunner{}
	p := dolphin.New(root, "", r)

	out, err := p.CreateIdea(context.Background(), map[string]any{"title": "Ship it", "priority": 1})
	require.NoError(t, err)
	assert.Equal(t, "idea created", out)

	assert.JSONEq(t, `{"title":"Ship it","priority":1}`, r.seen)
	assert.True(t, strings.HasPrefix(r.path, root))

	_, statErr := os.Stat(r.path)
	assert.True(t, os.IsNotExist(statErr), "temp idea file must be removed")
}

func TestScripts(t *testing.T) {
	root := newProject(t, "zeta.mjs", "agent.mjs", "README.md")
	require.NoError(t, os.Mkdir(filepath.Join(root, "scripts", "lib.mjs"), 0o750))

	names, err := dolphin.New(root, "", nil).Scripts()
	require.NoError(t, err)
	assert.Equal(t, []string{"agent.mjs", "zeta.mjs"}, names)
}

func TestProjectInfo(t *testing.T) {
	root := newProject(t)
	pkg := `{"name":"dolphin","version":"2.1.0","scripts":{"start":"node scripts/dolphin.mjs"}}`
	require.NoError(t, os.WriteFile(filepath.Join(root, "package.json"), []byte(pkg), 0o600))

	info, err := dolphin.New(root, "", nil).ProjectInfo()
	require.NoError(t, err)
	assert.Equal(t, "dolphin", info.Name)
	assert.Equal(t, "2.1.0", info.Version)
	assert.Equal(t, "node scripts/dolphin.mjs", info.Scripts["start"])
}

func TestStatus(t *testing.T) {
	t.Run("operational", func(t *testing.T) {
		root := newProject(t, "dolphin.mjs")
		st := dolphin.New(root, "", &runnertest.Runner{}).Status(context.Background())

		assert.Equal(t, provider.HealthOperational, st.Health)
		assert.Equal(t, root, st.Path)
		assert.Equal(t, []string{"dolphin.mjs"}, st.Scripts)
	})

	t.Run("degraded without node", func(t *testing.T) {
		root := newProject(t, "dolphin.mjs")
		st := dolphin.New(root, "", &runnertest.Runner{Missing: []string{"node"}}).Status(context.Background())

		assert.Equal(t, provider.HealthDegraded, st.Health)
		assert.Contains(t, st.Detail, "node")
	})

	t.Run("degraded without scripts", func(t *testing.T) {
		st := dolphin.New(newProject(t), "", &runnertest.Runner{}).Status(context.Background())
		assert.Equal(t, provider.HealthDegraded, st.Health)
	})

	t.Run("failed when missing", func(t *testing.T) {
		st := dolphin.New(filepath.Join(t.TempDir(), "gone"), "", &runnertest.Runner{}).Status(context.Background())
		assert.Equal(t, provider.HealthFailed, st.Health)
		assert.False(t, st.Available)
	})

	t.Run("failed when unconfigured", func(t *testing.T) {
		st := dolphin.New("", "", &runnertest.Runner{}).Status(context.Background())
		assert.Equal(t, provider.HealthFailed, st.Health)
	})
}
