// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"sandrun-cli/internal/config"
	"sandrun-cli/internal/issue"
	"sandrun-cli/internal/registry"

	"github.com/spf13/cobra"
)

// newRegistryCommand creates the `sandrun registry` command group.
func newRegistryCommand() *cobra.Command {
	regCmd := &cobra.Command{
		Use:   "registry",
		Short: "Resolve and search packages in the module registry",
		Long: `Resolve and search packages in the module registry.

Specifiers use the jsr: scheme: jsr:@scope/name@requirement[/export].
Resolutions honor the lockfile when one exists, so a pinned version wins
over a newer published one.`,
	}

	regCmd.AddCommand(newRegistryResolveCommand())
	regCmd.AddCommand(newRegistrySearchCommand())
	regCmd.AddCommand(newRegistryInfoCommand())

	return regCmd
}

// newRegistryResolveCommand creates `registry resolve <specifier>`.
func newRegistryResolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <specifier>",
		Short: "Resolve a jsr: specifier to a pinned version and module URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := registry.ParseReqReference(args[0])
			if err != nil {
				return err
			}

			resolver, err := newRegistryResolver()
			if err != nil {
				return err
			}

			nv, ok := resolver.ReqToNv(cmd.Context(), ref.Req)
			if !ok {
				rendered, _ := issue.Get(issue.PackageNotFoundId).Render("dark")
				fmt.Fprint(os.Stderr, rendered)
				return &ExitError{Code: 1, Err: fmt.Errorf("no version of %s satisfies %q", ref.Req.Name, ref.Req.Requirement)}
			}

			url, ok := resolver.ResourceURL(cmd.Context(), ref)
			if !ok {
				rendered, _ := issue.Get(issue.PackageNotFoundId).Render("dark")
				fmt.Fprint(os.Stderr, rendered)
				return &ExitError{Code: 1, Err: fmt.Errorf("%s has no export %q", nv, ref.SubPath)}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", FlagStyle.Render("resolved:"), SuccessStyle.Render(nv.String()))
			fmt.Fprintf(out, "%s %s\n", FlagStyle.Render("module:  "), url)
			return nil
		},
	}
}

// newRegistrySearchCommand creates `registry search <query>`.
func newRegistrySearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the registry for packages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			search, err := newRegistrySearchClient()
			if err != nil {
				return err
			}

			names, err := search.Search(cmd.Context(), args[0])
			if err != nil {
				rendered, _ := issue.Get(issue.RegistryUnreachableId).Render("dark")
				fmt.Fprint(os.Stderr, rendered)
				return &ExitError{Code: 1, Err: err}
			}

			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), SubtitleStyle.Render("no packages found"))
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

// newRegistryInfoCommand creates `registry info <package>`.
func newRegistryInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <package>",
		Short: "Show published versions and exports of a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			search, err := newRegistrySearchClient()
			if err != nil {
				return err
			}

			versions, err := search.Versions(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, registry.ErrPackageNotFound) {
					rendered, _ := issue.Get(issue.PackageNotFoundId).Render("dark")
					fmt.Fprint(os.Stderr, rendered)
					return &ExitError{Code: 1, Err: err}
				}
				rendered, _ := issue.Get(issue.RegistryUnreachableId).Render("dark")
				fmt.Fprint(os.Stderr, rendered)
				return &ExitError{Code: 1, Err: err}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, FlagStyle.Render("versions:"))
			for _, v := range versions {
				fmt.Fprintf(out, "  %s\n", v)
			}

			if len(versions) > 0 {
				nv := registry.PackageNv{Name: args[0], Version: versions[0]}
				exports, err := search.Exports(cmd.Context(), nv)
				if err == nil && len(exports) > 0 {
					fmt.Fprintln(out, FlagStyle.Render("exports:")+SubtitleStyle.Render(" ("+versions[0]+")"))
					for _, e := range exports {
						fmt.Fprintf(out, "  %s\n", e)
					}
				}
			}
			return nil
		},
	}
}

// newRegistryClient builds the HTTP client from the registry configuration.
func newRegistryClient() *registry.Client {
	cfg := config.Get()

	var opts []registry.ClientOption
	if cfg.Registry.BaseURL != "" {
		opts = append(opts, registry.WithBaseURL(cfg.Registry.BaseURL.String()))
	}
	if cfg.Registry.APIURL != "" {
		opts = append(opts, registry.WithAPIURL(cfg.Registry.APIURL.String()))
	}
	opts = append(opts, registry.WithUserAgent("sandrun/"+Version))
	return registry.NewClient(opts...)
}

// newRegistryResolver builds a cache resolver seeded from the lockfile.
func newRegistryResolver() (*registry.CacheResolver, error) {
	client := newRegistryClient()

	lockPath, err := lockfilePath()
	if err != nil {
		return nil, err
	}
	lf, err := registry.LoadLockfile(lockPath)
	if err != nil {
		rendered, _ := issue.Get(issue.LockfileParseErrorId).Render("dark")
		fmt.Fprint(os.Stderr, rendered)
		return nil, &ExitError{Code: 1, Err: err}
	}

	return registry.NewCacheResolver(client, client.BaseURL(), registry.WithLockfile(lf)), nil
}

// newRegistrySearchClient builds the memoizing search client.
func newRegistrySearchClient() (*registry.SearchClient, error) {
	client := newRegistryClient()
	resolver, err := newRegistryResolver()
	if err != nil {
		return nil, err
	}
	return registry.NewSearchClient(client, resolver), nil
}

// lockfilePath resolves the lockfile location: the configured override, or
// sandrun.lock in the invocation directory.
func lockfilePath() (string, error) {
	cfg := config.Get()
	if cfg.Registry.Lockfile != "" {
		return cfg.Registry.Lockfile.String(), nil
	}
	baseDir, err := invocationDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(string(baseDir), "sandrun.lock"), nil
}
