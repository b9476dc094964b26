// Package cli implements the ptdump command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/evenbily/processor-trace/internal/cpu"
	"github.com/evenbily/processor-trace/internal/dump"
	"github.com/evenbily/processor-trace/internal/lister"
	"github.com/evenbily/processor-trace/internal/logging"
	"github.com/evenbily/processor-trace/internal/version"
)

const helpText = `usage: %s [<options>] <ptfile>

options:
  --help|-h                this text.
  --version                display version information and exit.
  --quiet                  don't print anything but errors.
  --no-pad                 don't show PAD packets.
  --no-offset              don't show the offset as the first column.
  --raw                    show raw packet bytes.
  --lastip                 show last IP updates on packets with IP payloads.
  --fixed-offset-width     assume fixed width of 16 characters for the
                           offset column.
  --cpu none|auto|f/m[/s]  set cpu to the given value and decode according to:
                             none     spec (default)
                             auto     current cpu
                             f/m[/s]  family/model[/stepping]
`

// ExitError carries the process exit status of a finished command.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

func exit(code int) error {
	if code == 0 {
		return nil
	}
	return &ExitError{Code: code}
}

type flags struct {
	version   bool
	quiet     bool
	noPad     bool
	noOffset  bool
	raw       bool
	lastIP    bool
	fixedOffW bool
	cpu       string
}

// NewCommand builds the ptdump command. name is used in usage and
// version output.
func NewCommand(name string, stdout, stderr io.Writer, logger *log.Logger) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:           name + " [<options>] <ptfile>",
		Short:         "Dump the packets of an Intel PT trace",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.version {
				fmt.Fprintln(stdout, version.Banner(name))
				return nil
			}
			switch {
			case len(args) == 0:
				fmt.Fprintf(stderr, "%s: No processor trace file specified.\n", name)
				return exit(1)
			case len(args) > 1:
				return usage(stderr, name)
			}

			opts, err := f.options()
			if err != nil {
				fmt.Fprintf(stderr, "%s: cpu must be specified as f/m[/s]\n", name)
				return exit(1)
			}
			logger.Debug("options", "cpu", f.cpu, "use_cpu", opts.UseCPU)

			status, err := lister.Run(lister.Config{
				File:         args[0],
				Options:      opts,
				OutputWriter: stdout,
				ErrorWriter:  stderr,
				Logger:       logger,
			})
			if err != nil {
				logger.Debug("dump not started", "err", err)
				return exit(1)
			}
			return exit(int(status))
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetHelpFunc(func(*cobra.Command, []string) {
		fmt.Fprintf(stderr, helpText, name)
	})
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		logger.Debug("bad flag", "err", err)
		return usage(stderr, name)
	})

	fs := cmd.Flags()
	// The trace file ends the options.
	fs.SetInterspersed(false)
	fs.BoolP("help", "h", false, "this text")
	addSwitch(fs, &f.version, "version", "display version information and exit")
	addSwitch(fs, &f.quiet, "quiet", "don't print anything but errors")
	addSwitch(fs, &f.noPad, "no-pad", "don't show PAD packets")
	addSwitch(fs, &f.noOffset, "no-offset", "don't show the offset as the first column")
	addSwitch(fs, &f.raw, "raw", "show raw packet bytes")
	addSwitch(fs, &f.lastIP, "lastip", "show last IP updates on packets with IP payloads")
	addSwitch(fs, &f.fixedOffW, "fixed-offset-width", "assume fixed width of 16 characters for the offset column")
	fs.StringVar(&f.cpu, "cpu", "none", "set cpu to none, auto or f/m[/s]")

	return cmd
}

// switchSet is the value pflag passes for a bare switch. Command line
// arguments cannot contain NUL, so "--quiet=..." never matches it.
const switchSet = "\x00"

// switchValue is an option that is either given or not; it takes no value.
type switchValue struct {
	on *bool
}

func (s switchValue) Set(v string) error {
	if v != switchSet {
		return errors.New("option takes no value")
	}
	*s.on = true
	return nil
}

func (s switchValue) String() string {
	if s.on == nil {
		return "false"
	}
	return strconv.FormatBool(*s.on)
}

func (s switchValue) Type() string {
	return "switch"
}

func addSwitch(fs *pflag.FlagSet, p *bool, name, usage string) {
	fs.VarPF(switchValue{on: p}, name, "", usage).NoOptDefVal = switchSet
}

func usage(w io.Writer, name string) error {
	fmt.Fprintf(w, "%s: [<options>] <ptfile>.  Use --help or -h for help.\n", name)
	return exit(1)
}

func (f *flags) options() (dump.Options, error) {
	opts := dump.DefaultOptions()
	opts.Quiet = f.quiet
	opts.NoPad = f.noPad
	opts.ShowOffset = !f.noOffset
	opts.ShowRawBytes = f.raw
	opts.ShowLastIP = f.lastIP
	opts.FixedOffsetWidth = f.fixedOffW

	switch f.cpu {
	case "auto":
		opts.UseCPU = false
	case "none", "":
		opts.UseCPU = true
		opts.CPU = cpu.CPU{}
	default:
		c, err := cpu.Parse(f.cpu)
		if err != nil {
			return opts, err
		}
		opts.UseCPU = true
		opts.CPU = c
	}
	return opts, nil
}

// Run executes the command with args and returns the exit status.
func Run(name string, args []string, stdout, stderr io.Writer, logger *log.Logger) int {
	cmd := NewCommand(name, stdout, stderr, logger)
	cmd.SetArgs(args)

	err := cmd.Execute()
	if err == nil {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	fmt.Fprintf(stderr, "%s: %v\n", name, err)
	return 1
}

// Execute runs ptdump on the process arguments.
func Execute() int {
	name := filepath.Base(os.Args[0])
	return Run(name, os.Args[1:], os.Stdout, os.Stderr, logging.NewStderr())
}
