package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"text/tabwriter"

	"github.com/sadopc/planboard/internal/config"
	"github.com/sadopc/planboard/internal/store"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newSettingsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Show the saved dashboard preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			all, err := e.store.GetAllSettings()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tVALUE")
			for _, s := range all {
				value := s.Value
				if s.Key == store.KeyAIAPIKey {
					value = store.MaskKey(value)
				}
				fmt.Fprintf(w, "%s\t%s\n", s.Key, value)
			}
			return w.Flush()
		},
	}
}

func newConfigCmd(opts *options) *cobra.Command {
	var initFile bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long:  `Print the configuration after defaults and flag overrides. With --init, write the defaults to the config file if it does not exist yet.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := opts.loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if initFile {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("config file %s already exists", path)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("stat %s: %w", path, err)
				}
				if err := config.Save(path, cfg); err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote %s\n", path)
				return nil
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			fmt.Fprintf(out, "# %s\n%s", path, data)
			return nil
		},
	}
	cmd.Flags().BoolVar(&initFile, "init", false, "write the configuration to the config file")
	return cmd
}
