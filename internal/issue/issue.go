// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ScriptNotFoundId Id = iota + 1
	InvalidPermissionFlagId
	ConflictingPermissionsId
	PermissionDeniedId
	ConfigLoadFailedId
	RuntimeNotAvailableId
	ScriptExecutionFailedId
	RegistryUnreachableId
	PackageNotFoundId
	LockfileParseErrorId
	ListenFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
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
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	scriptNotFoundIssue = &Issue{
		id: ScriptNotFoundId,
		mdMsg: `
# Script not found!

We could not find the script you asked to run.

## Things you can try:
- Check the path for typos:
~~~
$ sandrun run ./scripts/build.sh
~~~

- For registry packages, make sure the specifier is cached:
~~~
$ sandrun run jsr:@scope/name
~~~

- List what the lockfile pins:
~~~
$ sandrun config show
~~~`,
	}

	invalidPermissionFlagIssue = &Issue{
		id: InvalidPermissionFlagId,
		mdMsg: `
# Invalid permission flag!

One of the permission flags you passed has a value we cannot parse.

## Common causes:
- An env key containing ` + "`=`" + ` or a NUL byte:
~~~
$ sandrun run --allow-env=HO=ME script.sh   # invalid
$ sandrun run --allow-env=HOME script.sh    # valid
~~~

- A malformed network address (empty host segment, port out of range):
~~~
$ sandrun run --allow-net=example.com:0 script.sh      # invalid port
$ sandrun run --allow-net=example.com:8080 script.sh   # valid
~~~

- An unknown system API name for --allow-sys:
~~~
$ sandrun run --allow-sys=hostname,uid script.sh
~~~

- A relative path when the working directory cannot be resolved

## Things you can try:
- Check the error message above for the offending value
- Pass the flag without a value to grant the capability unconditionally:
~~~
$ sandrun run --allow-env script.sh
~~~`,
	}

	conflictingPermissionsIssue = &Issue{
		id: ConflictingPermissionsId,
		mdMsg: `
# Conflicting permission flags!

You passed both an allow flag and a deny flag for the same capability.
The two are mutually exclusive: a capability is either granted (possibly
with scopes) or denied, never both.

## Example of a conflict:
~~~
$ sandrun run --allow-read=/tmp --deny-read script.sh
~~~

## Things you can try:
- Drop one of the two flags
- If you want "everything except X", there is no subtractive form;
  enumerate the scopes you do want to grant instead`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

The script attempted an operation that is not covered by any granted
capability, and prompting is disabled.

## Things you can try:
- Grant the capability the script needs:
~~~
$ sandrun run --allow-read=./data script.sh
~~~

- Drop --no-prompt to be asked interactively
- Inspect what a flag combination grants before running:
~~~
$ sandrun permissions inspect --allow-read=./data
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the sandrun configuration file.

## Configuration file locations:
- Linux: ~/.config/sandrun/config.cue
- macOS: ~/Library/Application Support/sandrun/config.cue
- Windows: %APPDATA%\sandrun\config.cue

## Things you can try:
- Check the configuration syntax
- Remove the config file to use defaults:
~~~
$ rm ~/.config/sandrun/config.cue
~~~

## Example configuration:
~~~cue
ui: {
  color_scheme: "auto"
  verbose: false
}

permissions: {
  no_prompt: false
}

registry: {
  base_url: "https://jsr.io"
}
~~~`,
	}

	runtimeNotAvailableIssue = &Issue{
		id: RuntimeNotAvailableId,
		mdMsg: `
# Runtime not available!

The requested script runtime is not available on your system.

## Available runtimes:
- **virtual**: the built-in shell interpreter, always available
- **host**: a runtime binary configured in your config file, spawned
  with the permission grant forwarded on its command line

## Things you can try:
- Use the virtual runtime:
~~~
$ sandrun run --runtime=virtual script.sh
~~~

- Or configure a host runtime binary:
~~~cue
runtime: {
  host_binary: "/usr/local/bin/sandrun-host"
}
~~~`,
	}

	scriptExecutionFailedIssue = &Issue{
		id: ScriptExecutionFailedId,
		mdMsg: `
# Script execution failed!

The script started but did not finish successfully.

## Common causes:
- A command invoked by the script is not granted via --allow-run
- Syntax error in the script
- The script itself exited non-zero

## Things you can try:
- Run with verbose mode for more details:
~~~
$ sandrun --verbose run script.sh
~~~

- Check which run scopes the script needs:
~~~
$ sandrun run --allow-run=git,make script.sh
~~~`,
	}

	registryUnreachableIssue = &Issue{
		id: RegistryUnreachableId,
		mdMsg: `
# Registry unreachable!

We could not reach the package registry to resolve a specifier.

## Things you can try:
- Check your network connection and proxy settings
- Point at a different registry in your config:
~~~cue
registry: {
  base_url: "https://jsr.example.internal"
}
~~~

- Work offline against the lockfile only`,
	}

	packageNotFoundIssue = &Issue{
		id: PackageNotFoundId,
		mdMsg: `
# Package not found!

The registry has no package matching your specifier, or no published
version satisfies the version requirement.

## Things you can try:
- Check the scope and name for typos:
~~~
$ sandrun run jsr:@scope/name@^1.0.0
~~~

- Loosen the version requirement (tags never match; use a semver
  range or an exact version)
- Search the registry for the package name`,
	}

	lockfileParseErrorIssue = &Issue{
		id: LockfileParseErrorId,
		mdMsg: `
# Failed to parse lockfile!

Your sandrun.lock file contains syntax errors or unexpected entries.

## Things you can try:
- Check the error message above for the specific line
- Delete the lockfile to regenerate it from the registry:
~~~
$ rm sandrun.lock
~~~`,
	}

	listenFailedIssue = &Issue{
		id: ListenFailedId,
		mdMsg: `
# Failed to start the server!

The serve command could not bind its listen address.

## Common causes:
- The port is already in use by another process
- Binding a privileged port (below 1024) without the rights to do so

## Things you can try:
- Pick another port:
~~~
$ sandrun serve --port 8081 ./site
~~~

- Find what holds the port:
~~~
$ lsof -i :8080
~~~`,
	}

	issues = map[Id]*Issue{
		scriptNotFoundIssue.Id():         scriptNotFoundIssue,
		invalidPermissionFlagIssue.Id():  invalidPermissionFlagIssue,
		conflictingPermissionsIssue.Id(): conflictingPermissionsIssue,
		permissionDeniedIssue.Id():       permissionDeniedIssue,
		configLoadFailedIssue.Id():       configLoadFailedIssue,
		runtimeNotAvailableIssue.Id():    runtimeNotAvailableIssue,
		scriptExecutionFailedIssue.Id():  scriptExecutionFailedIssue,
		registryUnreachableIssue.Id():    registryUnreachableIssue,
		packageNotFoundIssue.Id():        packageNotFoundIssue,
		lockfileParseErrorIssue.Id():     lockfileParseErrorIssue,
		listenFailedIssue.Id():           listenFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
