// SPDX-License-Identifier: MPL-2.0

// Package permissions implements the capability grant model used to sandbox
// script execution.
//
// A capability is a category of privileged operation (filesystem read,
// network connect, environment access, ...) that can be granted or denied
// independently, either unconditionally or restricted to a list of
// capability-specific scopes (paths, host:port pairs, variable names, ...).
//
// The package is split along the lifecycle of a permission set:
//
//   - scope parsing and normalization (path, env, net, sys scope types),
//     which turn raw command-line tokens into validated scopes;
//   - the Builder, which merges flag occurrences in encounter order into a
//     consistent rule per capability and rejects conflicting allow/deny
//     rules for the same capability;
//   - the immutable Set, the complete record of granted and denied
//     capabilities for one process invocation, queried by runtimes and
//     re-serialized to propagate an equivalent grant to child processes.
//
// All parse and merge failures are user input errors: they are reported once
// at startup and the process never proceeds to execute script code.
package permissions
