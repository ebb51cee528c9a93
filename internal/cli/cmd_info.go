package cli

import (
	"context"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"bfmemo/internal/fake"
	"bfmemo/internal/memo"
)

func cmdInfo(cfg memo.Config) *Command {
	return &Command{
		Flags: flag.NewFlagSet("info", flag.ContinueOnError),
		Usage: "info <file>",
		Short: "Show the memo path and validity for a source",
		Long: `Show where the memo file for a source would be placed under the current
configuration, whether it exists, and whether it is still valid.

Performs no writes; a missing or stale memo is reported, not repaired.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return ErrSourceRequired
			}

			id, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			m := memo.New(fake.NewReader(), cfg)

			o.Println("source:", id)

			memoPath, ok := m.MemoPath(id)
			if !ok {
				o.Println("memo:   (none - caching disabled for this source)")

				return nil
			}

			o.Println("memo:  ", memoPath)

			_, statErr := os.Stat(memoPath)
			exists := statErr == nil

			o.Println("exists:", exists)

			if exists {
				o.Println("valid: ", m.MemoValid(id))
			}

			return nil
		},
	}
}
