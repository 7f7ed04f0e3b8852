package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"forgerepo/internal/app"
)

type inspectOptions struct {
	ArchivePath string
	Checksum    string
}

func newInspectCommand() *cobra.Command {
	opts := inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect <archive>",
		Short: "Show the descriptor and checksum of a module archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ArchivePath = args[0]
			return runInspect(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Checksum, "checksum", "sha256", "Digest algorithm (md5 or sha256)")
	_ = viper.BindPFlag("checksum", cmd.Flags().Lookup("checksum"))
	return cmd
}

func runInspect(cmd *cobra.Command, opts inspectOptions) error {
	service := newAppService()
	result, err := service.Inspect(cmd.Context(), app.InspectRequest{
		ArchivePath:       opts.ArchivePath,
		ChecksumAlgorithm: resolveString(cmd, opts.Checksum, "checksum", "checksum"),
	})
	if err != nil {
		return err
	}
	module := result.Module
	fmt.Printf("module: %s\n", module.ID())
	fmt.Printf("author: %s\n", module.Author)
	fmt.Printf("version: %s\n", module.Version)
	if module.Summary != "" {
		fmt.Printf("summary: %s\n", module.Summary)
	}
	for _, dep := range module.Dependencies {
		fmt.Printf("depends: %s %s\n", dep.Name, dep.VersionRequirement)
	}
	fmt.Printf("%s: %s\n", opts.Checksum, result.Checksum)
	return nil
}
