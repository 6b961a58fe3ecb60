package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tmsintake/internal/config"
	"tmsintake/internal/model"
	"tmsintake/internal/registry"
	"tmsintake/internal/submission"
)

func checkFormsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-forms",
		Short: "Check every form declaration for configuration errors",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := registry.Default()
			if err := reg.Lint(); err != nil {
				var cfgErr *registry.ConfigurationError
				if errors.As(err, &cfgErr) {
					for _, p := range cfgErr.Problems {
						fmt.Fprintln(cmd.ErrOrStderr(), p)
					}
				}
				return err
			}
			for _, f := range reg.Forms() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-28s %3d fields  ok\n", f.Type, len(f.Fields))
			}
			return nil
		},
	}
}

func renderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render <formType> <values.json>",
		Short: "Write the notification email for a set of values to stdout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			f, err := registry.Default().Lookup(model.FormType(args[0]))
			if err != nil {
				return err
			}
			values, err := readValues(f, args[1])
			if err != nil {
				return err
			}

			renderer, err := submission.NewRenderer(cfg.ClinicName, source, loc)
			if err != nil {
				return err
			}
			html, err := renderer.Render(f, submission.Payload{
				FormType:    f.Type,
				Fields:      values,
				GeneratedAt: time.Now(),
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Subject: %s\n", submission.Subject(f, values))
			_, err = fmt.Fprint(cmd.OutOrStdout(), html)
			return err
		},
	}
}

// readValues decodes a JSON object of raw field values for f
func readValues(f *registry.Form, path string) (model.Values, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read values: %w", err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse values: %w", err)
	}

	values := model.Values{}
	for key, r := range raw {
		spec, ok := f.Field(key)
		if !ok {
			return nil, fmt.Errorf("%s has no field %q", f.Type, key)
		}
		v, err := model.DecodeValue(spec.Kind, r)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		if v != nil {
			values[key] = v
		}
	}
	return values, nil
}
