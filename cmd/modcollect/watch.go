// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/Brownshome/game-modding/internal/watch"
)

// watchAndCollect collects again after every change below the declaration's
// directory until ctx is cancelled or the process is interrupted. Each pass
// reloads the configuration and the declaration. Failed passes are reported
// and watching continues.
func (a *App) watchAndCollect(ctx context.Context, s *session, debounce time.Duration) error {
	w, err := watch.New(watch.Config{
		BaseDir:  s.decl.Dir,
		Ignore:   watchIgnores(s.decl.Dir, s.project.Output(), s.decl.LockFilePath()),
		Debounce: debounce,
		Logger:   s.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintf(a.stdout, "\n%s %s\n", WarningStyle.Render("~"), strings.Join(changed, ", "))
			next, err := a.openSession(ctx)
			if err == nil {
				err = a.collectOnce(ctx, next)
			}
			if err != nil {
				fmt.Fprintln(a.stderr, ErrorStyle.Render("✗ ")+formatErrorForDisplay(err, s.verbose))
			}
			return err
		},
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	fmt.Fprintln(a.stdout, SubtitleStyle.Render(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", s.decl.Dir)))
	return w.Run(ctx)
}

// watchIgnores returns the globs, relative to dir, of the files a collection
// writes itself: the output tree and the lock file.
func watchIgnores(dir, output, lockFile string) []string {
	var ignores []string
	if rel, ok := below(dir, output); ok {
		ignores = append(ignores, rel+"/**")
	}
	if rel, ok := below(dir, lockFile); ok {
		ignores = append(ignores, rel)
	}
	return ignores
}

// below returns path relative to dir, slash-separated, when it lies inside dir.
func below(dir, path string) (string, bool) {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
