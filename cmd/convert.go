package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mouse-blink/scopefix/internal/domain"
	m "github.com/mouse-blink/scopefix/internal/model"
)

var convertParallelFlag int
var convertWriteFlag bool
var convertDryRunFlag bool
var convertKeepGoingFlag bool
var convertReportFlag string

// convertCmd represents the convert command.
var convertCmd = newConvertCmd()

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [paths...]",
		Short: "Convert D1 sources to D2 syntax",
		Long:  convertLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newWorkflow().Convert(cmd.Context(), domain.ConvertArgs{
				ScanArgs: domain.ScanArgs{
					Paths:   parsePaths(args),
					Exclude: viper.GetStringSlice(excludeConfigKey),
				},
				Threads:   viper.GetInt(parallelConfigKey),
				Write:     convertWriteFlag,
				DryRun:    convertDryRunFlag,
				KeepGoing: viper.GetBool(keepGoingConfigKey),
				Report:    m.Path(viper.GetString(reportConfigKey)),
			})
		},
	}

	configureConvertFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

func configureConvertFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&convertParallelFlag, parallelFlagName, "p", viper.GetInt(parallelConfigKey), "number of parallel per-file workers")
	bindFlagToConfig(cmd.Flags().Lookup(parallelFlagName), parallelConfigKey)

	cmd.Flags().BoolVarP(&convertWriteFlag, writeFlagName, "w", false, "rewrite files in place")
	cmd.Flags().BoolVarP(&convertDryRunFlag, dryRunFlagName, "n", false, "print unified diffs instead of writing")

	cmd.Flags().BoolVar(&convertKeepGoingFlag, keepGoingFlag, viper.GetBool(keepGoingConfigKey), "continue with remaining files after a fatal per-file error")
	bindFlagToConfig(cmd.Flags().Lookup(keepGoingFlag), keepGoingConfigKey)

	cmd.Flags().StringVarP(&convertReportFlag, reportFlagName, "o", viper.GetString(reportConfigKey), "write a YAML run summary to this path")
	bindFlagToConfig(cmd.Flags().Lookup(reportFlagName), reportConfigKey)
}
