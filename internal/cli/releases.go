package cli

import (
	"encoding/json"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"forgerepo/internal/app"
)

type releasesOptions struct {
	IndexPath string
	RepoDir   string
	Module    string
	Version   string
	Recurse   bool
}

func newReleasesCommand() *cobra.Command {
	opts := releasesOptions{}
	cmd := &cobra.Command{
		Use:   "releases <author/name>",
		Short: "Query the dependency index of a published repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Module = args[0]
			return runReleases(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.IndexPath, "index", "", "Path to the dependency index database")
	cmd.Flags().StringVar(&opts.RepoDir, "repo-dir", "", "Published repository directory holding the index")
	cmd.Flags().StringVar(&opts.Version, "release-version", "", "Restrict the root module to one version (default: latest)")
	cmd.Flags().BoolVar(&opts.Recurse, "recurse", true, "Include the releases of transitive dependencies")
	_ = viper.BindPFlag("index", cmd.Flags().Lookup("index"))
	_ = viper.BindPFlag("repo_dir", cmd.Flags().Lookup("repo-dir"))
	return cmd
}

func runReleases(cmd *cobra.Command, opts releasesOptions) error {
	service := newAppService()
	result, err := service.Releases(cmd.Context(), app.ReleasesRequest{
		IndexPath: resolveString(cmd, opts.IndexPath, "index", "index"),
		RepoDir:   resolveString(cmd, opts.RepoDir, "repo_dir", "repo-dir"),
		Module:    opts.Module,
		Version:   opts.Version,
		Recurse:   opts.Recurse,
	})
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(result.View, "", "  ")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to render releases view").
			WithCause(err)
	}
	fmt.Println(string(data))
	return nil
}
