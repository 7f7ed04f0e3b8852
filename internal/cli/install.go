package cli

import (
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"forgerepo/internal/app"
)

type installOptions struct {
	RepoConfig  string
	InstallPath string
	ModulesDir  string
}

func newInstallCommand() *cobra.Command {
	opts := installOptions{}
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Extract a repository's modules into an install destination",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInstall(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.RepoConfig, "repo-config", "", "Repository definition file (YAML)")
	cmd.Flags().StringVar(&opts.InstallPath, "install-path", "", "Absolute destination directory for installed modules")
	cmd.Flags().StringVar(&opts.ModulesDir, "modules-dir", "", "Directory containing module archives (*.tar.gz)")
	_ = viper.BindPFlag("repo_config", cmd.Flags().Lookup("repo-config"))
	_ = viper.BindPFlag("install_path", cmd.Flags().Lookup("install-path"))
	_ = viper.BindPFlag("modules_dir", cmd.Flags().Lookup("modules-dir"))
	return cmd
}

func runInstall(cmd *cobra.Command, opts installOptions) error {
	service := newAppService()
	result, err := service.Install(cmd.Context(), app.InstallRequest{
		RepoConfigPath: resolveString(cmd, opts.RepoConfig, "repo_config", "repo-config"),
		InstallPath:    resolveString(cmd, opts.InstallPath, "install_path", "install-path"),
		ModulesDir:     resolveString(cmd, opts.ModulesDir, "modules_dir", "modules-dir"),
	})
	if err != nil {
		return err
	}

	report := result.Report
	fmt.Printf("install: %s\n", report.Summary)
	for _, id := range report.Details.SuccessUnits {
		fmt.Printf("+ %s\n", id)
	}
	for _, unitErr := range report.Details.Errors {
		fmt.Printf("- %s: %s\n", unitErr.Unit, unitErr.Message)
	}
	if !report.Success {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(report.Summary)
	}
	return nil
}
