package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"forgerepo/internal/app"
)

type uninstallOptions struct {
	RepoConfig  string
	InstallPath string
}

func newUninstallCommand() *cobra.Command {
	opts := uninstallOptions{}
	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the installed modules from an install destination",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUninstall(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.RepoConfig, "repo-config", "", "Repository definition file (YAML)")
	cmd.Flags().StringVar(&opts.InstallPath, "install-path", "", "Absolute destination directory for installed modules")
	_ = viper.BindPFlag("repo_config", cmd.Flags().Lookup("repo-config"))
	_ = viper.BindPFlag("install_path", cmd.Flags().Lookup("install-path"))
	return cmd
}

func runUninstall(cmd *cobra.Command, opts uninstallOptions) error {
	service := newAppService()
	result, err := service.Uninstall(cmd.Context(), app.UninstallRequest{
		RepoConfigPath: resolveString(cmd, opts.RepoConfig, "repo_config", "repo-config"),
		InstallPath:    resolveString(cmd, opts.InstallPath, "install_path", "install-path"),
	})
	if err != nil {
		return err
	}
	if result.InstallPath == "" {
		fmt.Println("no install path configured, nothing to do")
		return nil
	}
	fmt.Printf("uninstalled modules from %s\n", result.InstallPath)
	return nil
}
