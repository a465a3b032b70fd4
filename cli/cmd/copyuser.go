package cmd

import (
	"github.com/alma-tools/copyroles/pkg/alma"
	"github.com/alma-tools/copyroles/pkg/copyroles"
	"github.com/spf13/cobra"
)

type copyUserOptions struct {
	sourceEnv string
	targetEnv string
}

func newCopyUserCmd(root *rootOptions, s streams) *cobra.Command {
	opts := &copyUserOptions{}
	copyUserCmd := &cobra.Command{
		Use:   "copy-user PRIMARY_ID",
		Short: "Create a user in another environment from its full record",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := root.newWorkflow(s)
			if err != nil {
				return err
			}

			return finish(w.CopyUser(copyroles.CopyUserInput{
				PrimaryID: args[0],
				SourceEnv: alma.Environment(opts.sourceEnv),
				TargetEnv: alma.Environment(opts.targetEnv),
			}))
		},
	}

	copyUserCmd.Flags().StringVar(&opts.sourceEnv, "source-env", alma.Production.String(), "environment to read the user from")
	copyUserCmd.Flags().StringVar(&opts.targetEnv, "target-env", alma.Sandbox.String(), "environment to create the user in")
	return copyUserCmd
}
