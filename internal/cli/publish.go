package cli

import (
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"forgerepo/internal/app"
)

type publishOptions struct {
	RepoConfig    string
	RepoID        string
	WorkDir       string
	ModulesDir    string
	HTTPDir       string
	HTTPSDir      string
	ServeHTTP     bool
	ServeHTTPS    bool
	AbsolutePath  string
	IndexChecksum string
}

func newPublishCommand() *cobra.Command {
	opts := publishOptions{}
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a repository of module archives into its served layout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPublish(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.RepoConfig, "repo-config", "", "Repository definition file (YAML)")
	cmd.Flags().StringVar(&opts.RepoID, "repo-id", "", "Repository ID")
	cmd.Flags().StringVar(&opts.WorkDir, "work-dir", "", "Working directory for the build staging tree")
	cmd.Flags().StringVar(&opts.ModulesDir, "modules-dir", "", "Directory containing module archives (*.tar.gz)")
	cmd.Flags().StringVar(&opts.HTTPDir, "http-dir", "", "Base directory served over HTTP")
	cmd.Flags().StringVar(&opts.HTTPSDir, "https-dir", "", "Base directory served over HTTPS")
	cmd.Flags().BoolVar(&opts.ServeHTTP, "serve-http", true, "Publish into the HTTP directory")
	cmd.Flags().BoolVar(&opts.ServeHTTPS, "serve-https", false, "Publish into the HTTPS directory")
	cmd.Flags().StringVar(&opts.AbsolutePath, "absolute-path", "", "URL path prefix recorded in the dependency index")
	cmd.Flags().StringVar(&opts.IndexChecksum, "index-checksum", "md5", "Digest algorithm for dependency index checksums (md5 or sha256)")
	_ = viper.BindPFlag("repo_config", cmd.Flags().Lookup("repo-config"))
	_ = viper.BindPFlag("repo_id", cmd.Flags().Lookup("repo-id"))
	_ = viper.BindPFlag("work_dir", cmd.Flags().Lookup("work-dir"))
	_ = viper.BindPFlag("modules_dir", cmd.Flags().Lookup("modules-dir"))
	_ = viper.BindPFlag("http_dir", cmd.Flags().Lookup("http-dir"))
	_ = viper.BindPFlag("https_dir", cmd.Flags().Lookup("https-dir"))
	_ = viper.BindPFlag("serve_http", cmd.Flags().Lookup("serve-http"))
	_ = viper.BindPFlag("serve_https", cmd.Flags().Lookup("serve-https"))
	_ = viper.BindPFlag("absolute_path", cmd.Flags().Lookup("absolute-path"))
	_ = viper.BindPFlag("index_checksum", cmd.Flags().Lookup("index-checksum"))
	return cmd
}

func runPublish(cmd *cobra.Command, opts publishOptions) error {
	service := newAppService()
	result, err := service.Publish(cmd.Context(), app.PublishRequest{
		RepoConfigPath: resolveString(cmd, opts.RepoConfig, "repo_config", "repo-config"),
		RepoID:         resolveString(cmd, opts.RepoID, "repo_id", "repo-id"),
		WorkDir:        resolveString(cmd, opts.WorkDir, "work_dir", "work-dir"),
		ModulesDir:     resolveString(cmd, opts.ModulesDir, "modules_dir", "modules-dir"),
		HTTPDir:        resolveString(cmd, opts.HTTPDir, "http_dir", "http-dir"),
		HTTPSDir:       resolveString(cmd, opts.HTTPSDir, "https_dir", "https-dir"),
		ServeHTTP:      resolveBool(cmd, opts.ServeHTTP, "serve_http", "serve-http"),
		ServeHTTPS:     resolveBool(cmd, opts.ServeHTTPS, "serve_https", "serve-https"),
		AbsolutePath:   resolveString(cmd, opts.AbsolutePath, "absolute_path", "absolute-path"),
		IndexChecksum:  resolveString(cmd, opts.IndexChecksum, "index_checksum", "index-checksum"),
	})
	if err != nil {
		return err
	}

	report := result.Report
	fmt.Printf("publish %s: %s\n", report.RepoID, report.Summary)
	fmt.Printf("modules: %s (%d linked, %d errored of %d)\n",
		report.Modules.State, report.ModulesLinked, report.ModulesErrored, report.ModulesTotal)
	fmt.Printf("metadata: %s http: %s https: %s\n",
		report.Metadata.State, report.PublishHTTP, report.PublishHTTPS)
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
