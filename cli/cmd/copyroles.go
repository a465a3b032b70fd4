package cmd

import (
	"github.com/alma-tools/copyroles/pkg/alma"
	"github.com/alma-tools/copyroles/pkg/copyroles"
	"github.com/spf13/cobra"
)

type copyRolesOptions struct {
	env       string
	sourceEnv string
}

func newCopyRolesCmd(root *rootOptions, s streams) *cobra.Command {
	opts := &copyRolesOptions{}
	copyRolesCmd := &cobra.Command{
		Use:   "copy-roles SOURCE_USER TARGET_USER",
		Short: "Replace the target user's roles with the source user's roles",
		Long: `Fetch both users, show what will be copied and, after the roles are
confirmed by typing 'copy-roles', overwrite every role on the target user.`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := root.newWorkflow(s)
			if err != nil {
				return err
			}

			input := copyroles.CopyRolesInput{
				SourceID:  args[0],
				TargetID:  args[1],
				SourceEnv: alma.Environment(opts.env),
				TargetEnv: alma.Environment(opts.env),
			}
			if opts.sourceEnv != "" {
				input.SourceEnv = alma.Environment(opts.sourceEnv)
			}
			return finish(w.CopyRoles(input))
		},
	}

	copyRolesCmd.Flags().StringVar(&opts.env, "env", "", "environment of both users: production or sandbox")
	copyRolesCmd.Flags().StringVar(&opts.sourceEnv, "source-env", "", "environment of the source user, if different")
	_ = copyRolesCmd.MarkFlagRequired("env")
	return copyRolesCmd
}
