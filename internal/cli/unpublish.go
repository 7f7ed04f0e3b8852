package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"forgerepo/internal/app"
)

type unpublishOptions struct {
	RepoConfig string
	RepoID     string
	HTTPDir    string
	HTTPSDir   string
}

func newUnpublishCommand() *cobra.Command {
	opts := unpublishOptions{}
	cmd := &cobra.Command{
		Use:   "unpublish",
		Short: "Remove a repository's served copies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUnpublish(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.RepoConfig, "repo-config", "", "Repository definition file (YAML)")
	cmd.Flags().StringVar(&opts.RepoID, "repo-id", "", "Repository ID")
	cmd.Flags().StringVar(&opts.HTTPDir, "http-dir", "", "Base directory served over HTTP")
	cmd.Flags().StringVar(&opts.HTTPSDir, "https-dir", "", "Base directory served over HTTPS")
	_ = viper.BindPFlag("repo_config", cmd.Flags().Lookup("repo-config"))
	_ = viper.BindPFlag("repo_id", cmd.Flags().Lookup("repo-id"))
	_ = viper.BindPFlag("http_dir", cmd.Flags().Lookup("http-dir"))
	_ = viper.BindPFlag("https_dir", cmd.Flags().Lookup("https-dir"))
	return cmd
}

func runUnpublish(cmd *cobra.Command, opts unpublishOptions) error {
	service := newAppService()
	result, err := service.Unpublish(cmd.Context(), app.UnpublishRequest{
		RepoConfigPath: resolveString(cmd, opts.RepoConfig, "repo_config", "repo-config"),
		RepoID:         resolveString(cmd, opts.RepoID, "repo_id", "repo-id"),
		HTTPDir:        resolveString(cmd, opts.HTTPDir, "http_dir", "http-dir"),
		HTTPSDir:       resolveString(cmd, opts.HTTPSDir, "https_dir", "https-dir"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("unpublished %s\n", result.RepoID)
	return nil
}
