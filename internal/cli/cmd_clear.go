package cli

import (
	"context"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"bfmemo/internal/fake"
	"bfmemo/internal/memo"
)

func cmdClear(cfg memo.Config) *Command {
	return &Command{
		Flags: flag.NewFlagSet("clear", flag.ContinueOnError),
		Usage: "clear <file>",
		Short: "Delete the memo file for a source",
		Long: `Delete the memo file for a source if one exists. The next open of the
source re-runs the real initialization. A missing memo is not an error.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return ErrSourceRequired
			}

			id, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			m := memo.New(fake.NewReader(), cfg)

			memoPath, ok := m.MemoPath(id)
			if !ok {
				o.Println("no memo location for", id)

				return nil
			}

			removeErr := os.Remove(memoPath)
			if removeErr != nil {
				if os.IsNotExist(removeErr) {
					o.Println("no memo file at", memoPath)

					return nil
				}

				return removeErr
			}

			o.Println("removed", memoPath)

			return nil
		},
	}
}
