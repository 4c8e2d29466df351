package cli

import (
	"github.com/spf13/cobra"

	"github.com/jzx17/gothreadpool/pkg/config"
)

func newConfigCommand() *cobra.Command {
	var showEnv bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration after file and environment overrides",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := cfg.Write(out); err != nil {
				return err
			}
			if showEnv {
				writef(out, "\n# environment overrides\n")
				for _, key := range config.EnvKeys() {
					writef(out, "# %s\n", key)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showEnv, "env", false, "list the recognized environment variables")
	return cmd
}
