// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"sandrun-cli/internal/config"
	"sandrun-cli/internal/issue"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `sandrun config` command tree.
func newConfigCommand() *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage sandrun configuration",
		Long: `Manage sandrun configuration.

Configuration is stored in:
  - Linux: ~/.config/sandrun/config.cue
  - macOS: ~/Library/Application Support/sandrun/config.cue
  - Windows: %APPDATA%\sandrun\config.cue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfigFile()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(args[0], args[1])
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			fmt.Print(config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig() error {
	cfg, err := config.Load()
	if err != nil {
		rendered, _ := issue.Get(issue.ConfigLoadFailedId).Render("dark")
		fmt.Fprint(os.Stderr, rendered)
		return err
	}

	// Style definitions using shared color palette
	headerStyle := TitleStyle
	keyStyle := FlagStyle
	valueStyle := SuccessStyle

	fmt.Println(headerStyle.Render("Current Configuration"))
	fmt.Println()

	if path := config.Path(); path != "" && fileExistsCheck(path) {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Println()

	fmt.Printf("%s: %s\n", keyStyle.Render("default_runtime"), valueStyle.Render(cfg.DefaultRuntime.String()))

	fmt.Println()
	fmt.Printf("%s:\n", keyStyle.Render("ui"))
	fmt.Printf("  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Printf("  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	fmt.Println()
	fmt.Printf("%s:\n", keyStyle.Render("permissions"))
	fmt.Printf("  no_prompt: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.Permissions.NoPrompt)))

	fmt.Println()
	fmt.Printf("%s:\n", keyStyle.Render("registry"))
	fmt.Printf("  base_url: %s\n", valueStyle.Render(cfg.Registry.BaseURL.String()))
	fmt.Printf("  api_url: %s\n", valueStyle.Render(cfg.Registry.APIURL.String()))
	if cfg.Registry.Lockfile != "" {
		fmt.Printf("  lockfile: %s\n", valueStyle.Render(cfg.Registry.Lockfile.String()))
	} else {
		fmt.Printf("  lockfile: %s\n", SubtitleStyle.Render("(sandrun.lock in the working directory)"))
	}

	fmt.Println()
	fmt.Printf("%s:\n", keyStyle.Render("runtime"))
	if cfg.Runtime.HostBinary != "" {
		fmt.Printf("  host_binary: %s\n", valueStyle.Render(cfg.Runtime.HostBinary.String()))
	} else {
		fmt.Printf("  host_binary: %s\n", SubtitleStyle.Render("(not configured, host runtime unavailable)"))
	}

	return nil
}

func initConfigFile() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	if err = config.CreateDefaultConfig(); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	fmt.Printf("%s Created default configuration at %s/config.cue\n", SuccessStyle.Render("✓"), cfgDir)
	return nil
}

func showConfigPath() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	fmt.Printf("Config directory: %s\n", cfgDir)
	fmt.Printf("Config file: %s/config.cue\n", cfgDir)
	return nil
}

func setConfigValue(key, value string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	switch key {
	case "default_runtime":
		if value != "virtual" && value != "host" {
			return fmt.Errorf("invalid default_runtime: must be 'virtual' or 'host'")
		}
		cfg.DefaultRuntime = config.RuntimeMode(value)

	case "ui.verbose":
		cfg.UI.Verbose = value == "true" || value == "1"

	case "ui.color_scheme":
		cfg.UI.ColorScheme = config.ColorScheme(value)

	case "permissions.no_prompt":
		cfg.Permissions.NoPrompt = value == "true" || value == "1"

	case "registry.base_url":
		cfg.Registry.BaseURL = config.RegistryURL(value)

	case "registry.api_url":
		cfg.Registry.APIURL = config.RegistryURL(value)

	case "registry.lockfile":
		cfg.Registry.Lockfile = config.LockfilePath(value)

	case "runtime.host_binary":
		cfg.Runtime.HostBinary = config.BinaryFilePath(value)

	default:
		return fmt.Errorf("unknown configuration key: %s\nValid keys: default_runtime, ui.verbose, ui.color_scheme, permissions.no_prompt, registry.base_url, registry.api_url, registry.lockfile, runtime.host_binary", key)
	}

	if valid, fieldErrs := cfg.IsValid(); !valid {
		return fmt.Errorf("invalid value for %s: %v", key, fieldErrs)
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("%s Set %s = %s\n", SuccessStyle.Render("✓"), key, value)
	return nil
}

// fileExistsCheck checks if a file exists and is not a directory.
func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
