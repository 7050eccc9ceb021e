// SPDX-License-Identifier: MPL-2.0

package collect

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/Brownshome/game-modding/internal/dag"
)

const (
	// TaskCollect synchronizes the mods directory.
	TaskCollect = "collect"
	// TaskRun launches the declared application.
	TaskRun = "run"
)

type (
	// Task is one step of the task graph.
	Task struct {
		Name        string
		Description string
		// DependsOn lists the tasks that must run first.
		DependsOn []string
		Action    func(ctx context.Context) error
	}

	// TaskGraph orders tasks by their dependencies.
	TaskGraph struct {
		graph  *dag.Graph
		tasks  map[string]Task
		logger *log.Logger
	}

	// LaunchFunc starts the application with the mods directory and returns
	// its exit status.
	LaunchFunc func(ctx context.Context, app Application, modsDir string) (int, error)

	// ExitStatusError reports that a launched application exited non-zero.
	ExitStatusError struct {
		Code int
	}

	// TaskError wraps the failure of one task.
	TaskError struct {
		Task string
		Err  error
	}
)

func (e *ExitStatusError) Error() string {
	return fmt.Sprintf("application exited with status %d", e.Code)
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s: %v", e.Task, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

// NewTaskGraph creates an empty task graph.
func NewTaskGraph(logger *log.Logger) *TaskGraph {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &TaskGraph{graph: dag.New(), tasks: make(map[string]Task), logger: logger}
}

// Add registers a task. Dependencies may be added later, but must exist
// before Execute is called.
func (g *TaskGraph) Add(task Task) error {
	if task.Name == "" || task.Action == nil {
		return fmt.Errorf("task %q needs a name and an action", task.Name)
	}
	if _, ok := g.tasks[task.Name]; ok {
		return fmt.Errorf("task %q is already registered", task.Name)
	}
	g.tasks[task.Name] = task
	g.graph.AddNode(task.Name)
	for _, dep := range task.DependsOn {
		g.graph.AddEdge(dep, task.Name)
	}
	return nil
}

// Tasks returns the registered task names in execution order.
func (g *TaskGraph) Tasks() ([]Task, error) {
	order, err := g.graph.TopologicalSort()
	if err != nil {
		return nil, err
	}
	tasks := make([]Task, 0, len(order))
	for _, name := range order {
		task, ok := g.tasks[name]
		if !ok {
			return nil, fmt.Errorf("task %q is a dependency but was never registered", name)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// Execute runs target after all of its dependencies, each once, in
// dependency order. The first failure stops the run.
func (g *TaskGraph) Execute(ctx context.Context, target string) error {
	order, err := g.graph.OrderFor(target)
	if err != nil {
		return err
	}
	for _, name := range order {
		task, ok := g.tasks[name]
		if !ok {
			return fmt.Errorf("task %q is a dependency but was never registered", name)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		g.logger.Debug("running task", "task", name)
		if err := task.Action(ctx); err != nil {
			return &TaskError{Task: name, Err: err}
		}
	}
	return nil
}

// Tasks builds the task graph of a project: "collect" always, and "run"
// depending on "collect" when an application is declared and launch is set.
// The report of the collect task is passed to onCollect when it is not nil.
func Tasks(p *Project, launch LaunchFunc, onCollect func(*Report)) (*TaskGraph, error) {
	g := NewTaskGraph(p.logger)

	err := g.Add(Task{
		Name:        TaskCollect,
		Description: "Resolve the declared mods and synchronize the mods directory",
		Action: func(ctx context.Context) error {
			report, err := p.ResolveAndMaterialize(ctx)
			if err != nil {
				return err
			}
			if onCollect != nil {
				onCollect(report)
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	app, ok := p.Application()
	if !ok || launch == nil {
		return g, nil
	}
	err = g.Add(Task{
		Name:        TaskRun,
		Description: "Launch the application with the collected mods",
		DependsOn:   []string{TaskCollect},
		Action: func(ctx context.Context) error {
			code, err := launch(ctx, app, p.Output())
			if err != nil {
				return err
			}
			if code != 0 {
				return &ExitStatusError{Code: code}
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}
