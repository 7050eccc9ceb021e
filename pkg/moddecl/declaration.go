// SPDX-License-Identifier: MPL-2.0

package moddecl

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Brownshome/game-modding/pkg/cueutil"
	"github.com/Brownshome/game-modding/pkg/moddep"
)

// DeclarationFileName is the default declaration file name.
const DeclarationFileName = "mods.cue"

//go:embed declaration_schema.cue
var declarationSchema []byte

var (
	// ErrDeclarationNotFound is returned when the declaration file does not exist.
	ErrDeclarationNotFound = errors.New("declaration file not found")

	// ErrInvalidDeclaration is returned when a declaration fails validation.
	ErrInvalidDeclaration = errors.New("invalid declaration")
)

type (
	// Declaration is a parsed mods.cue.
	Declaration struct {
		Output       string           `json:"output"`
		Repositories []string         `json:"repositories"`
		Mods         []ModSpec        `json:"mods"`
		Host         *HostSpec        `json:"host,omitempty"`
		Application  *ApplicationSpec `json:"application,omitempty"`
		ModuleAware  bool             `json:"module_aware"`

		// Path is the file the declaration was read from; Dir is its directory.
		Path string `json:"-"`
		Dir  string `json:"-"`
	}

	// ModSpec declares one dependency. Path marks a local project, which has
	// no version.
	ModSpec struct {
		Name    moddep.ModuleName `json:"name"`
		Version moddep.Version    `json:"version,omitempty"`
		Path    string            `json:"path,omitempty"`
	}

	// HostSpec describes what the host application already provides.
	HostSpec struct {
		Dependencies []ModSpec `json:"dependencies"`
		BuildOutput  []string  `json:"build_output"`
	}

	// ApplicationSpec describes how to launch the host application.
	ApplicationSpec struct {
		Command string            `json:"command"`
		Args    []string          `json:"args"`
		Env     map[string]string `json:"env"`
	}
)

// Dependency returns the identity of the declared module.
func (m ModSpec) Dependency() moddep.Dependency {
	return moddep.Dependency{Name: m.Name, Version: m.Version}.Normalize()
}

// Load reads and parses the declaration at path.
func Load(path string) (*Declaration, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve declaration path: %w", err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDeclarationNotFound, abs)
		}
		return nil, fmt.Errorf("read declaration: %w", err)
	}
	return Parse(data, abs)
}

// Parse parses declaration content. filename is used for error messages and
// as the base for relative paths.
func Parse(data []byte, filename string) (*Declaration, error) {
	result, err := cueutil.ParseAndDecode[Declaration](declarationSchema, data, "#Declaration", cueutil.WithFilename(filename))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDeclaration, err)
	}

	decl := result.Value
	decl.Path = filename
	decl.Dir = filepath.Dir(filename)
	if err := decl.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDeclaration, filename, err)
	}
	return decl, nil
}

// Validate checks constraints the schema cannot express: every identity is
// valid and declared once, and local projects carry no version.
func (d *Declaration) Validate() error {
	if err := validateSpecs("mods", d.Mods); err != nil {
		return err
	}
	if d.Host != nil {
		if err := validateSpecs("host.dependencies", d.Host.Dependencies); err != nil {
			return err
		}
	}
	return nil
}

func validateSpecs(field string, specs []ModSpec) error {
	seen := make(map[string]int, len(specs))
	for i, m := range specs {
		if m.Path != "" && m.Version != "" && !m.Version.IsUnspecified() {
			return fmt.Errorf("%s[%d]: local project %s must not declare a version", field, i, m.Name)
		}
		dep := m.Dependency()
		if err := dep.Validate(); err != nil {
			return fmt.Errorf("%s[%d]: %w", field, i, err)
		}
		if prev, ok := seen[dep.Key()]; ok {
			return fmt.Errorf("%s[%d]: %s is already declared at %s[%d]", field, i, dep, field, prev)
		}
		seen[dep.Key()] = i
	}
	return nil
}

// Dependencies returns the declared mods in declaration order.
func (d *Declaration) Dependencies() []moddep.Dependency {
	return specDependencies(d.Mods)
}

// HostDependencies returns the host application's own dependencies.
func (d *Declaration) HostDependencies() []moddep.Dependency {
	if d.Host == nil {
		return nil
	}
	return specDependencies(d.Host.Dependencies)
}

// HostOutputs returns the absolute paths of the host's build output files.
func (d *Declaration) HostOutputs() []string {
	if d.Host == nil {
		return nil
	}
	out := make([]string, 0, len(d.Host.BuildOutput))
	for _, p := range d.Host.BuildOutput {
		out = append(out, d.abs(p))
	}
	return out
}

// LocalProjects maps every local project (mods and host dependencies) to its
// absolute directory.
func (d *Declaration) LocalProjects() map[moddep.ModuleName]string {
	projects := make(map[moddep.ModuleName]string)
	add := func(specs []ModSpec) {
		for _, m := range specs {
			if m.Path != "" {
				projects[m.Name] = d.abs(m.Path)
			}
		}
	}
	add(d.Mods)
	if d.Host != nil {
		add(d.Host.Dependencies)
	}
	return projects
}

// OutputDir returns the absolute output directory.
func (d *Declaration) OutputDir() string { return d.abs(d.Output) }

// RepositoryDirs returns the absolute paths of the declared repositories.
func (d *Declaration) RepositoryDirs() []string {
	out := make([]string, 0, len(d.Repositories))
	for _, r := range d.Repositories {
		out = append(out, d.abs(r))
	}
	return out
}

// LockFilePath returns the path of the lock file kept next to the declaration.
func (d *Declaration) LockFilePath() string {
	return filepath.Join(d.Dir, LockFileName)
}

func (d *Declaration) abs(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(d.Dir, filepath.FromSlash(p))
}

func specDependencies(specs []ModSpec) []moddep.Dependency {
	deps := make([]moddep.Dependency, 0, len(specs))
	for _, m := range specs {
		deps = append(deps, m.Dependency())
	}
	return deps
}
