// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"sandrun-cli/internal/fileserver"
	"sandrun-cli/internal/issue"
	"sandrun-cli/pkg/permissions"
	"sandrun-cli/pkg/types"

	"github.com/spf13/cobra"
)

// newServeCommand creates the `sandrun serve` command.
func newServeCommand() *cobra.Command {
	var (
		host string
		port int
		pf   *permissionFlags
	)

	serveCmd := &cobra.Command{
		Use:   "serve [flags] <dir>",
		Short: "Serve a directory over HTTP under a permission set",
		Long: `Serve a directory over HTTP under a permission set.

The server grants itself net access for its own listen address and read
access for the served directory; both grants union with any explicit
--allow-* flags and never override a deny. Requests for files outside the
read grant get a 403.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveDirectory(cmd, args[0], host, port, pf)
		},
	}

	serveCmd.Flags().StringVar(&host, "host", "127.0.0.1", "address to bind")
	serveCmd.Flags().IntVar(&port, "port", 8080, "port to listen on (0 = auto-select)")
	pf = registerPermissionFlags(serveCmd)

	return serveCmd
}

// serveDirectory builds the descriptor set with the server's implicit grants
// and runs the file server until the command context is cancelled.
func serveDirectory(cmd *cobra.Command, dirArg, host string, port int, pf *permissionFlags) error {
	baseDir, err := invocationDir()
	if err != nil {
		return err
	}

	dir := dirArg
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(string(baseDir), dir)
	}
	dir = filepath.Clean(dir)

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dirArg)
	}

	listenPort := types.ListenPort(port)
	if err := listenPort.Validate(); err != nil && port != 0 {
		return permissionSyntaxError(err)
	}

	set, err := buildServeSet(pf, baseDir, dir, host, listenPort)
	if err != nil {
		return permissionSyntaxError(err)
	}

	// A --deny-net covering the listen address must win over the implicit
	// grant, which means refusing to start.
	if !set.Allows(permissions.CapNet, net.JoinHostPort(host, strconv.Itoa(port))) {
		if rendered, renderErr := issue.Get(issue.PermissionDeniedId).Render("dark"); renderErr == nil {
			fmt.Fprint(os.Stderr, rendered)
		}
		return &ExitError{Code: 1, Err: fmt.Errorf("net access to %s:%d is denied", host, port)}
	}

	srv := fileserver.New(fileserver.Config{
		Host:  host,
		Port:  port,
		Dir:   dir,
		Perms: set,
	})

	if err := srv.Start(cmd.Context()); err != nil {
		if rendered, renderErr := issue.Get(issue.ListenFailedId).Render("dark"); renderErr == nil {
			fmt.Fprint(os.Stderr, rendered)
		}
		return &ExitError{Code: 1, Err: err}
	}

	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("serving ")+dir+SubtitleStyle.Render(" on http://"+srv.Address()))

	select {
	case <-cmd.Context().Done():
		return srv.Stop()
	case err, open := <-srv.Err():
		_ = srv.Stop()
		if open && err != nil {
			return &ExitError{Code: 1, Err: err}
		}
		return nil
	}
}

// buildServeSet assembles the descriptor set for a serve invocation, adding
// the implicit listen and directory-read grants.
func buildServeSet(pf *permissionFlags, baseDir types.FilesystemPath, dir, host string, port types.ListenPort) (*permissions.Set, error) {
	b, err := pf.Builder(baseDir)
	if err != nil {
		return nil, err
	}
	b.GrantListen(host, port)
	b.GrantRead(dir)
	return b.Build(), nil
}
