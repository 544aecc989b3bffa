package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mouse-blink/scopefix/internal/domain"
)

// indexCmd represents the index command.
var indexCmd = newIndexCmd()

func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index [paths...]",
		Short: "Build the persisted alias symbol table",
		Long:  indexLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := newWorkflow().Index(cmd.Context(), domain.ScanArgs{
				Paths:   parsePaths(args),
				Exclude: viper.GetStringSlice(excludeConfigKey),
			})
			if err != nil {
				return err
			}

			cmd.Printf("indexed %d alias(es) into %s\n", count, viper.GetString(dbConfigKey))

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
