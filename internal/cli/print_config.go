package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"bfmemo/internal/memo"
)

func cmdPrintConfig(cfg memo.Config, sources memo.ConfigSources) *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "Show resolved configuration",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			formatted, err := memo.FormatConfig(cfg)
			if err != nil {
				return err
			}

			o.Println(formatted)
			o.Println("")
			o.Println("# Sources:")

			if sources.Global != "" {
				o.Println("#   global:", sources.Global)
			}

			if sources.Project != "" {
				o.Println("#   project:", sources.Project)
			}

			if sources.Global == "" && sources.Project == "" {
				o.Println("#   (using defaults only)")
			}

			return nil
		},
	}
}
