package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cfntools/cfnls/config"
	"github.com/cfntools/cfnls/parse"
	"github.com/cfntools/cfnls/schema"
	"github.com/cfntools/cfnls/validate"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func validateCmd() *cobra.Command {
	var (
		schemaURI string
		tags      []string
		noColor   bool
	)
	cmd := &cobra.Command{
		Use:   "validate <template>...",
		Short: "Validate templates against their schemas",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if noColor || !isatty.IsTerminal(os.Stdout.Fd()) {
				color.NoColor = true
			}
			cfg := config.Default()
			cfg.CustomTags = tags

			wd, _ := os.Getwd()
			registry := schema.NewRegistry(&schema.DefaultFetcher{}, wd)
			if schemaURI != "" {
				registry.SetBindings([]schema.Binding{
					{Match: schema.MatchAlways, URI: schemaURI},
				})
			} else {
				bindings, err := cfg.Bindings()
				if err != nil {
					return err
				}
				registry.SetBindings(bindings)
			}

			failed := false
			for _, path := range args {
				n, err := validateFile(cmd.Context(), cfg, registry, path)
				if err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
					failed = true
					continue
				}
				if n > 0 {
					failed = true
				}
			}
			if failed {
				return fmt.Errorf("validation failed")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaURI, "schema", "", "schema URI, overriding document-based resolution")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "additional intrinsic tags to accept")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	return cmd
}

var (
	locColor = color.New(color.Bold)
	errColor = color.New(color.FgRed)
)

func validateFile(ctx context.Context, cfg config.Config, registry *schema.Registry, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	sch, err := registry.SchemaForResource(ctx, path, string(data))
	if err != nil {
		return 0, err
	}
	doc := parse.Parse(data, parse.Tags(cfg.Tags()))
	diags := validate.Validate(doc, sch)
	for _, d := range diags {
		fmt.Printf("%s %s %s\n",
			locColor.Sprintf("%s:%d:%d:", path, d.Range.Start.Line+1, d.Range.Start.Character+1),
			errColor.Sprint("error:"),
			d.Message)
	}
	return len(diags), nil
}
