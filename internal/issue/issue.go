// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	DeclarationNotFoundId Id = iota + 1
	DeclarationInvalidId
	ResolutionFailedId
	LayoutCollisionId
	SyncFailedId
	ConfigLoadFailedId
	LaunchFailedId
	DependencyCycleId
	LockMismatchId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also\n"
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "](" + string(link) + ")\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "](" + string(link) + ")\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	declarationNotFoundIssue = &Issue{
		id: DeclarationNotFoundId,
		mdMsg: `
# No mods declaration found!

modcollect reads the mods to collect from a ` + "`mods.cue`" + ` file in the current directory.

## Things you can try:
- Create a declaration from the template:
~~~
$ modcollect init
~~~

- Or point at an existing declaration:
~~~
$ modcollect collect --file path/to/mods.cue
~~~`,
	}

	declarationInvalidIssue = &Issue{
		id: DeclarationInvalidId,
		mdMsg: `
# Invalid mods declaration!

The declaration file does not match the expected schema.

## Common causes:
- A mod name containing a path separator or whitespace
- The same mod declared twice
- A local project (` + "`path`" + `) that also declares a version

## Things you can try:
- Compare your file with the output of ` + "`modcollect init --force`" + ` in a scratch directory
- Check the line and column reported above`,
	}

	resolutionFailedIssue = &Issue{
		id: ResolutionFailedId,
		mdMsg: `
# Failed to resolve the mod dependencies!

A declared mod or one of its dependencies could not be turned into concrete files.

## Common causes:
- The module is not present in any configured repository
- A module descriptor lists an artifact that does not exist on disk
- Module-aware resolution is enabled and an artifact does not declare a module name

## Things you can try:
- List the repositories that are searched:
~~~
$ modcollect config show
~~~
- Inspect what each configuration resolves to:
~~~
$ modcollect deps
~~~`,
	}

	layoutCollisionIssue = &Issue{
		id: LayoutCollisionId,
		mdMsg: `
# Two artifacts want the same place in the mods directory!

Two different files resolved to the same file name in the shared root or in the same mod folder.
modcollect never overwrites one with the other.

## Things you can try:
- Rename one of the artifacts in its module descriptor
- Align both mods on the same version of the conflicting library so a single file is shared`,
	}

	syncFailedIssue = &Issue{
		id: SyncFailedId,
		mdMsg: `
# Failed to update the mods directory!

A filesystem error interrupted the synchronization. The output directory may be partially updated.

## Things you can try:
- Check permissions and free space on the output directory
- Re-run ` + "`modcollect collect`" + `: it only rewrites what is still out of date`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Your modcollect configuration file could not be loaded.

## Things you can try:
- Check the file syntax (CUE format)
- Print the effective configuration:
~~~
$ modcollect config show
~~~
- Regenerate a default configuration:
~~~
$ modcollect config init --force
~~~`,
	}

	launchFailedIssue = &Issue{
		id: LaunchFailedId,
		mdMsg: `
# Failed to launch the application!

The ` + "`application.command`" + ` of your declaration could not be started.

## Things you can try:
- Check the command line for unbalanced quotes
- Make sure the program it starts is installed and on your PATH
- The mods directory is available to the command as ` + "`$MODS_DIR`",
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Dependency cycle detected!

The task graph contains a cycle, so no execution order exists.`,
	}

	lockMismatchIssue = &Issue{
		id: LockMismatchId,
		mdMsg: `
# The mods directory does not match the lock file!

Files were added, removed or changed since the last ` + "`modcollect collect`" + `.

## Things you can try:
- Restore the directory:
~~~
$ modcollect collect
~~~`,
	}

	issues = map[Id]*Issue{
		declarationNotFoundIssue.Id(): declarationNotFoundIssue,
		declarationInvalidIssue.Id():  declarationInvalidIssue,
		resolutionFailedIssue.Id():    resolutionFailedIssue,
		layoutCollisionIssue.Id():     layoutCollisionIssue,
		syncFailedIssue.Id():          syncFailedIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		launchFailedIssue.Id():        launchFailedIssue,
		dependencyCycleIssue.Id():     dependencyCycleIssue,
		lockMismatchIssue.Id():        lockMismatchIssue,
	}
)

// Values returns every catalogued issue ordered by id.
func Values() []*Issue {
	values := make([]*Issue, 0, len(issues))
	for _, issue := range maps.Values(issues) {
		values = append(values, issue)
	}
	slices.SortFunc(values, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}
