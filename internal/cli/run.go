// Package cli implements the bfmemo command-line interface.
package cli

import (
	"context"
	"errors"
	"io"

	flag "github.com/spf13/pflag"

	"bfmemo/internal/memo"
)

// ErrSourceRequired is returned by commands invoked without a source file.
var ErrSourceRequired = errors.New("source file argument is required")

// Run is the main entry point. Returns exit code.
func Run(ctx context.Context, out, errOut io.Writer, args []string, env map[string]string) int {
	o := NewIO(out, errOut)

	globals := flag.NewFlagSet("bfmemo", flag.ContinueOnError)
	globals.SetInterspersed(false)
	globals.SetOutput(io.Discard)

	workDir := globals.StringP("cwd", "C", "", "run as if started in <dir>")
	configPath := globals.StringP("config", "c", "", "use the specified config file")
	directory := globals.StringP("directory", "d", "", "cache root directory")
	inPlace := globals.Bool("in-place", false, "store memo files next to their sources")
	minInit := globals.Duration("min-init", 0, "minimum init time before a memo is written")

	parseErr := globals.Parse(args[1:])
	if parseErr != nil {
		if errors.Is(parseErr, flag.ErrHelp) {
			printUsage(o)

			return 0
		}

		o.ErrPrintln("error:", parseErr)
		printUsage(o)

		return 1
	}

	cfg, sources, err := memo.LoadConfig(memo.LoadConfigInput{
		WorkDir:    *workDir,
		ConfigPath: *configPath,
		Overrides: memo.Config{
			Directory: *directory,
			InPlace:   *inPlace,
			MinInit:   *minInit,
		},
		HasMinInit: globals.Changed("min-init"),
		Env:        env,
	})
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	rest := globals.Args()
	if len(rest) == 0 {
		printUsage(o)

		return 0
	}

	name := rest[0]
	if name == "-h" || name == "--help" {
		printUsage(o)

		return 0
	}

	for _, cmd := range commands(cfg, sources) {
		if cmd.Name() == name {
			return cmd.Run(ctx, o, rest[1:])
		}
	}

	o.ErrPrintln("error: unknown command:", name)
	printUsage(o)

	return 1
}

func commands(cfg memo.Config, sources memo.ConfigSources) []*Command {
	return []*Command{
		cmdInfo(cfg),
		cmdPrime(cfg),
		cmdClear(cfg),
		cmdPrintConfig(cfg, sources),
	}
}

func printUsage(o *IO) {
	o.Println(`bfmemo - memo-file cache for expensive data-source initialization

Usage: bfmemo [options] <command> [args]

Options:
  -C, --cwd <dir>        Run as if started in <dir>
  -c, --config <file>    Use the specified config file
  -d, --directory <dir>  Cache root directory
      --in-place         Store memo files next to their sources
      --min-init <dur>   Minimum init time before a memo is written

Commands:`)

	for _, cmd := range commands(memo.Config{}, memo.ConfigSources{}) {
		o.Println(cmd.HelpLine())
	}
}
