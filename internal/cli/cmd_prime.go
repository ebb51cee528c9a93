package cli

import (
	"context"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"bfmemo/internal/fake"
	"bfmemo/internal/memo"
)

func cmdPrime(cfg memo.Config) *Command {
	return &Command{
		Flags: flag.NewFlagSet("prime", flag.ContinueOnError),
		Usage: "prime <file>",
		Short: "Open a source once so its memo file is written",
		Long: `Open and close a source through the memoizer so a memo file exists for
later opens. The min-init threshold is ignored: priming always persists.

Only .fake sources can be opened by this tool.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return ErrSourceRequired
			}

			id, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			// Priming exists to produce a memo, so never skip the write.
			primeCfg := cfg
			primeCfg.MinInit = 0

			m := memo.New(fake.NewReader(), primeCfg)

			defer func() { _ = m.Close() }()

			outcome, openErr := m.SetID(ctx, id)
			if openErr != nil {
				return openErr
			}

			o.Println("outcome:", outcome)
			o.Println("saved:  ", m.SavedToMemo())

			return nil
		},
	}
}
