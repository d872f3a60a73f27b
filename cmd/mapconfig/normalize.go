package main

import (
	"github.com/spf13/cobra"

	"struct-mapper/internal/mapping"
)

var flagOutput string

var normalizeCmd = &cobra.Command{
	Use:   "normalize FILE",
	Short: "Rewrite a mapping file in canonical form",
	Long: `Rewrite a mapping file in canonical form: 121 shorthand expanded into fields,
paths normalized, version set. The output format follows the extension of --output;
without it, canonical YAML is written to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output file (.yaml, .toml or .json)")
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	log := newLogger(cmd).WithName("normalize")

	mf, err := mapping.LoadFile(args[0])
	if err != nil {
		return err
	}

	mapping.NormalizeMappingFile(mf)

	if flagOutput == "" {
		data, err := mapping.Marshal(mf)
		if err != nil {
			return err
		}

		_, err = cmd.OutOrStdout().Write(data)

		return err
	}

	if err := mapping.WriteFile(mf, flagOutput); err != nil {
		return err
	}

	log.Info("wrote normalized mapping file", "from", args[0], "to", flagOutput)

	return nil
}
