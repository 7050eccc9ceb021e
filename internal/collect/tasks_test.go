// SPDX-License-Identifier: MPL-2.0

package collect

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/Brownshome/game-modding/internal/dag"
	"github.com/Brownshome/game-modding/internal/testutil"
	"github.com/Brownshome/game-modding/pkg/moddecl"
)

func TestTaskGraph_Execute(t *testing.T) {
	t.Parallel()

	var ran []string
	record := func(name string) func(context.Context) error {
		return func(context.Context) error {
			ran = append(ran, name)
			return nil
		}
	}

	g := NewTaskGraph(nil)
	for _, task := range []Task{
		{Name: "package", DependsOn: []string{"compile", "collect"}, Action: record("package")},
		{Name: "compile", Action: record("compile")},
		{Name: "collect", DependsOn: []string{"compile"}, Action: record("collect")},
		{Name: "docs", Action: record("docs")},
	} {
		if err := g.Add(task); err != nil {
			t.Fatalf("Add(%s) error = %v", task.Name, err)
		}
	}

	if err := g.Execute(context.Background(), "package"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if want := []string{"compile", "collect", "package"}; !slices.Equal(ran, want) {
		t.Errorf("ran = %v, want %v", ran, want)
	}
}

func TestTaskGraph_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	tests := []struct {
		name   string
		tasks  []Task
		target string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unknown target",
			target: "missing",
			check: func(t *testing.T, err error) {
				var unknown *dag.UnknownNodeError
				if !errors.As(err, &unknown) {
					t.Errorf("error = %v, want *dag.UnknownNodeError", err)
				}
			},
		},
		{
			name: "cycle",
			tasks: []Task{
				{Name: "a", DependsOn: []string{"b"}, Action: func(context.Context) error { return nil }},
				{Name: "b", DependsOn: []string{"a"}, Action: func(context.Context) error { return nil }},
			},
			target: "a",
			check: func(t *testing.T, err error) {
				var cycle *dag.CycleError
				if !errors.As(err, &cycle) {
					t.Errorf("error = %v, want *dag.CycleError", err)
				}
			},
		},
		{
			name: "failing task stops the run",
			tasks: []Task{
				{Name: "a", Action: func(context.Context) error { return boom }},
				{Name: "b", DependsOn: []string{"a"}, Action: func(context.Context) error {
					return errors.New("must not run")
				}},
			},
			target: "b",
			check: func(t *testing.T, err error) {
				var taskErr *TaskError
				if !errors.As(err, &taskErr) || taskErr.Task != "a" || !errors.Is(err, boom) {
					t.Errorf("error = %v, want task a failing with boom", err)
				}
			},
		},
		{
			name: "unregistered dependency",
			tasks: []Task{
				{Name: "a", DependsOn: []string{"ghost"}, Action: func(context.Context) error { return nil }},
			},
			target: "a",
			check: func(t *testing.T, err error) {
				if err == nil {
					t.Error("error = nil, want unregistered dependency")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := NewTaskGraph(nil)
			for _, task := range tt.tasks {
				if err := g.Add(task); err != nil {
					t.Fatal(err)
				}
			}
			tt.check(t, g.Execute(context.Background(), tt.target))
		})
	}
}

func TestTaskGraph_AddRejectsDuplicates(t *testing.T) {
	t.Parallel()

	g := NewTaskGraph(nil)
	task := Task{Name: "a", Action: func(context.Context) error { return nil }}
	if err := g.Add(task); err != nil {
		t.Fatal(err)
	}
	if err := g.Add(task); err == nil {
		t.Error("Add() accepted a duplicate task")
	}
	if err := g.Add(Task{Name: "b"}); err == nil {
		t.Error("Add() accepted a task without an action")
	}
}

func TestTasks_RunDependsOnCollect(t *testing.T) {
	t.Parallel()

	output := filepath.Join(t.TempDir(), "mods")
	p := newProject(t, newRepository(t), output)
	if err := p.Declare(modA); err != nil {
		t.Fatal(err)
	}
	if err := p.SetApplication(Application{Command: "game", Args: []string{"--windowed"}}); err != nil {
		t.Fatal(err)
	}

	var collected *Report
	var launched Application
	var modsDir string
	launch := func(_ context.Context, app Application, dir string) (int, error) {
		if collected == nil {
			t.Error("run started before collect finished")
		}
		launched, modsDir = app, dir
		return 0, nil
	}

	g, err := Tasks(p, launch, func(r *Report) { collected = r })
	if err != nil {
		t.Fatalf("Tasks() error = %v", err)
	}
	tasks, err := g.Tasks()
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, 0, len(tasks))
	for _, task := range tasks {
		names = append(names, task.Name)
	}
	if want := []string{TaskCollect, TaskRun}; !slices.Equal(names, want) {
		t.Errorf("Tasks() = %v, want %v", names, want)
	}

	if err := g.Execute(context.Background(), TaskRun); err != nil {
		t.Fatalf("Execute(run) error = %v", err)
	}
	if launched.Command != "game" || !slices.Equal(launched.Args, []string{"--windowed"}) {
		t.Errorf("launched %+v", launched)
	}
	if modsDir != p.Output() {
		t.Errorf("mods dir = %q, want %q", modsDir, p.Output())
	}
	if got := listFiles(t, output); len(got) == 0 {
		t.Error("run did not collect first")
	}
}

func TestTasks_NonZeroExit(t *testing.T) {
	t.Parallel()

	p := newProject(t, newRepository(t), filepath.Join(t.TempDir(), "mods"))
	if err := p.SetApplication(Application{Command: "game"}); err != nil {
		t.Fatal(err)
	}
	g, err := Tasks(p, func(context.Context, Application, string) (int, error) { return 3, nil }, nil)
	if err != nil {
		t.Fatal(err)
	}

	var exit *ExitStatusError
	if err := g.Execute(context.Background(), TaskRun); !errors.As(err, &exit) || exit.Code != 3 {
		t.Errorf("Execute(run) error = %v, want exit status 3", err)
	}
}

func TestTasks_NoApplication(t *testing.T) {
	t.Parallel()

	p := newProject(t, newRepository(t), filepath.Join(t.TempDir(), "mods"))
	g, err := Tasks(p, func(context.Context, Application, string) (int, error) { return 0, nil }, nil)
	if err != nil {
		t.Fatal(err)
	}
	var unknown *dag.UnknownNodeError
	if err := g.Execute(context.Background(), TaskRun); !errors.As(err, &unknown) {
		t.Errorf("Execute(run) error = %v, want no run task", err)
	}
	if err := g.Execute(context.Background(), TaskCollect); err != nil {
		t.Errorf("Execute(collect) error = %v", err)
	}
}

func TestFromDeclaration(t *testing.T) {
	t.Parallel()

	repo := newRepository(t)
	dir := t.TempDir()
	testutil.WriteLocalProject(t, filepath.Join(dir, "local-mod"), testutil.Module{
		Name:         "local-mod",
		Artifacts:    map[string]string{"local-mod.jar": ""},
		Dependencies: []testutil.Edge{{Name: "libY", Version: "1.0"}},
	})
	testutil.MustWriteFile(t, filepath.Join(dir, "mods.cue"), `
output: "run/mods"
mods: [
	{name: "A", version: "1.0"},
	{name: "local-mod", path: "local-mod"},
]
host: dependencies: [{name: "libX", version: "1.0"}]
application: {command: "game", args: ["--dev"]}
`)

	decl, err := moddecl.Load(filepath.Join(dir, "mods.cue"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	p, err := FromDeclaration(decl, Settings{Repositories: []string{repo}})
	if err != nil {
		t.Fatalf("FromDeclaration() error = %v", err)
	}

	if want := filepath.Join(dir, "run", "mods"); p.Output() != want {
		t.Errorf("Output() = %q, want %q", p.Output(), want)
	}
	if want := filepath.Join(dir, "mods.lock.cue"); p.LockFile() != want {
		t.Errorf("LockFile() = %q, want %q", p.LockFile(), want)
	}
	app, ok := p.Application()
	if !ok || app.Dir != dir || app.Command != "game" {
		t.Errorf("Application() = %+v, %v", app, ok)
	}

	if _, err := p.ResolveAndMaterialize(context.Background()); err != nil {
		t.Fatalf("ResolveAndMaterialize() error = %v", err)
	}
	want := []string{"A-1.0/A.jar", "api.jar", "local-mod/libY.jar", "local-mod/local-mod.jar"}
	if got := listFiles(t, p.Output()); !slices.Equal(got, want) {
		t.Errorf("output = %v, want %v", got, want)
	}
}

func TestFromDeclaration_UnsafeOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, output := range []string{".", ".."} {
		testutil.MustWriteFile(t, filepath.Join(dir, "mods.cue"), "output: \""+output+"\"\n")
		decl, err := moddecl.Load(filepath.Join(dir, "mods.cue"))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if _, err := FromDeclaration(decl, Settings{}); !errors.Is(err, ErrUnsafeOutput) {
			t.Errorf("output %q: error = %v, want %v", output, err, ErrUnsafeOutput)
		}
	}
}

func TestFromDeclaration_OutputContainsInputs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		decl  string
		repos []string
		want  bool
	}{
		{name: "declared repository", decl: `repositories: ["../shared/repo"]`, want: true},
		{name: "configured repository", repos: []string{"shared/repo"}, want: true},
		{name: "local project", decl: `mods: [{name: "my-mod", path: "../shared/my-mod"}]`, want: true},
		{name: "host build output", decl: `host: build_output: ["../shared/game.jar"]`, want: true},
		{name: "sibling repository", decl: `repositories: ["../repo"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := filepath.Join(dir, "game", "mods.cue")
			testutil.MustWriteFile(t, path, "output: \"../shared\"\n"+tt.decl+"\n")
			decl, err := moddecl.Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			var repos []string
			for _, r := range tt.repos {
				repos = append(repos, filepath.Join(dir, r))
			}

			_, err = FromDeclaration(decl, Settings{Repositories: repos})
			if got := errors.Is(err, ErrUnsafeOutput); got != tt.want {
				t.Errorf("FromDeclaration() error = %v, want unsafe output %v", err, tt.want)
			}
		})
	}
}
