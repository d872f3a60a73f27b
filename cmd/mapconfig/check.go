package main

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/spf13/cobra"

	"struct-mapper/internal/analyze"
	"struct-mapper/internal/mapping"
	"struct-mapper/store"
	"struct-mapper/warehouse"
)

// ErrInvalidFiles is returned when a checked file has error diagnostics.
var ErrInvalidFiles = errors.New("mapping files have errors")

var flagSampleTypes bool

var checkCmd = &cobra.Command{
	Use:   "check FILE...",
	Short: "Validate mapping files",
	Long: `Validate mapping files: structure, settings, paths, data source names and
After references. With --sample-types, type names and member paths are resolved
against the sample store and warehouse types.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&flagSampleTypes, "sample-types", false, "resolve type names against the sample domain")
	rootCmd.AddCommand(checkCmd)
}

func sampleModel() *analyze.ReflectModel {
	model := analyze.NewReflectModel()
	model.Register(
		reflect.TypeFor[store.Order](), reflect.TypeFor[store.OrderItem](), reflect.TypeFor[store.Customer](),
		reflect.TypeFor[store.Address](), reflect.TypeFor[store.Category](),
		reflect.TypeFor[warehouse.Order](), reflect.TypeFor[warehouse.OrderItem](), reflect.TypeFor[warehouse.Customer](),
		reflect.TypeFor[warehouse.Address](), reflect.TypeFor[warehouse.CategoryDto](),
	)

	return model
}

func runCheck(cmd *cobra.Command, args []string) error {
	log := newLogger(cmd).WithName("check")

	var model analyze.TypeModel
	if flagSampleTypes {
		model = sampleModel()
	}

	failed := 0

	for _, path := range args {
		mf, err := mapping.LoadFile(path)
		if err != nil {
			log.Error(err, "cannot load mapping file", "path", path)
			failed++

			continue
		}

		res := mapping.ValidateFile(mf, model, nil)
		res.Sort()

		for _, d := range res.Errors {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: error: %s\n", path, d)
		}

		for _, d := range res.Warnings {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: warning: %s\n", path, d)
		}

		log.V(1).Info("checked mapping file", "path", path, "mappings", len(mf.TypeMappings),
			"errors", len(res.Errors), "warnings", len(res.Warnings))

		if res.HasErrors() {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrInvalidFiles, failed, len(args))
	}

	log.Info("mapping files are valid", "files", len(args))

	return nil
}
