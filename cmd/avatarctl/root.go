package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "avatarctl",
		Short:         "Crop and decorate avatars with ffmpeg",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newCropCommand(ctx))
	rootCmd.AddCommand(newDecorateCommand(ctx))

	return rootCmd
}
