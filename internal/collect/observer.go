// SPDX-License-Identifier: MPL-2.0

package collect

import (
	"github.com/charmbracelet/log"

	"github.com/Brownshome/game-modding/internal/dirsync"
	"github.com/Brownshome/game-modding/pkg/moddep"
	"github.com/Brownshome/game-modding/pkg/modlayout"
)

type (
	// Observer receives diagnostic events of a pass. ConfigurationResolved may
	// be called concurrently. Implementations must not block; correctness never
	// depends on them.
	Observer interface {
		// ConfigurationResolved is called once per resolved configuration. For
		// the private classpath, owner is the mod the closure belongs to.
		ConfigurationResolved(name moddep.ConfigurationName, owner *moddep.Dependency, artifacts int)
		// ModuleCollected is called for every top-level mod with its private entries.
		ModuleCollected(mod moddep.Dependency, folder string, entries []modlayout.Entry)
		// SharedCollected is called once with the shared entries.
		SharedCollected(entries []modlayout.Entry)
		// SyncCompleted is called after the output directory was synchronized.
		SyncCompleted(root string, result *dirsync.Result)
	}

	// NopObserver ignores every event.
	NopObserver struct{}

	// LogObserver reports events to a logger.
	LogObserver struct {
		logger *log.Logger
	}
)

func (NopObserver) ConfigurationResolved(moddep.ConfigurationName, *moddep.Dependency, int) {}
func (NopObserver) ModuleCollected(moddep.Dependency, string, []modlayout.Entry)            {}
func (NopObserver) SharedCollected([]modlayout.Entry)                                       {}
func (NopObserver) SyncCompleted(string, *dirsync.Result)                                   {}

// NewLogObserver returns an observer logging collected modules at info level
// and resolution details at debug level.
func NewLogObserver(logger *log.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

// ConfigurationResolved logs the artifact count at debug level.
func (o *LogObserver) ConfigurationResolved(name moddep.ConfigurationName, owner *moddep.Dependency, artifacts int) {
	if owner != nil {
		o.logger.Debug("resolved configuration", "configuration", name, "mod", owner.String(), "artifacts", artifacts)
		return
	}
	o.logger.Debug("resolved configuration", "configuration", name, "artifacts", artifacts)
}

// ModuleCollected logs the mod and its private files.
func (o *LogObserver) ModuleCollected(mod moddep.Dependency, folder string, entries []modlayout.Entry) {
	o.logger.Info("collecting module", "mod", mod.String(), "folder", folder, "files", len(entries))
	for _, e := range entries {
		o.logger.Debug("private file", "mod", mod.String(), "target", e.Target, "source", e.Source)
	}
}

// SharedCollected logs the shared files.
func (o *LogObserver) SharedCollected(entries []modlayout.Entry) {
	o.logger.Info("collecting shared libraries", "files", len(entries))
	for _, e := range entries {
		o.logger.Debug("shared file", "target", e.Target, "source", e.Source)
	}
}

// SyncCompleted logs a summary of the synchronization.
func (o *LogObserver) SyncCompleted(root string, result *dirsync.Result) {
	if !result.Changed() {
		o.logger.Info("mods directory up to date", "output", root, "files", len(result.Unchanged))
		return
	}
	o.logger.Info("mods directory updated",
		"output", root,
		"added", len(result.Added),
		"updated", len(result.Updated),
		"removed", len(result.Removed),
		"unchanged", len(result.Unchanged))
}
