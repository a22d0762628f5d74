package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"stack_calculator/internal/constants"
	"stack_calculator/internal/environ_vars"
	"stack_calculator/pkg/my_stack"
	"stack_calculator/pkg/proxy_sqlite"
	"stack_calculator/pkg/rpn"
	"stack_calculator/pkg/to_log"
)

// app carries what the subcommands share
type app struct {
	cfg     *viper.Viper
	logger  *slog.Logger
	logFile *os.File
}

func main() {
	a := &app{}
	err := newRootCmd(a).Execute()
	a.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	var configFile string
	root := &cobra.Command{
		Use:           "stackctl",
		Short:         "Named persistent stacks and an RPN calculator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile == "" {
				configFile = os.Getenv(constants.ConfigFile)
			}
			return a.setup(cmd, configFile)
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./config.{yaml,json,toml})")
	root.PersistentFlags().String("db", "", "SQLite file with stack snapshots")
	root.PersistentFlags().String("log-file", "", "journal file")
	root.PersistentFlags().String("log-level", "", "debug, info, warn or error")

	root.AddCommand(
		newPushCmd(a),
		newPopCmd(a),
		newPeekCmd(a),
		newShowCmd(a),
		newListCmd(a),
		newDropCmd(a),
		newHistoryCmd(a),
		newEvalCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, configFile string) error {
	cfg, err := environ_vars.New(configFile)
	if err != nil {
		return err
	}
	if err := environ_vars.BindFlags(cfg, cmd.Flags()); err != nil {
		return err
	}
	a.cfg = cfg

	logger, logFile, err := setupLogger(cfg)
	if err != nil {
		return err
	}
	a.logger, a.logFile = logger, logFile
	return nil
}

func (a *app) close() {
	if a.logFile != nil {
		a.logFile.Close()
	}
}

// setupLogger opens the journal file and a text handler writing to it.
func setupLogger(cfg *viper.Viper) (*slog.Logger, *os.File, error) {
	level, err := environ_vars.LogLevel(cfg)
	if err != nil {
		return nil, nil, err
	}
	name := environ_vars.GetValue(cfg, constants.LogFile)
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open log file")
	}
	h := slog.NewTextHandler(f, &slog.HandlerOptions{AddSource: false, Level: level})
	return slog.New(h), f, nil
}

// withStore opens the snapshot database for the duration of fn.
func (a *app) withStore(cmd *cobra.Command, fn func(p *proxy_sqlite.Proxy) error) error {
	path := environ_vars.GetValue(a.cfg, constants.DB)
	p, err := proxy_sqlite.NewProxy(cmd.Context(), path)
	if err != nil {
		return err
	}
	defer p.Close()
	return fn(p)
}

func (a *app) print(out io.Writer, level slog.Level, msg string, attrs ...any) {
	to_log.Print(to_log.Param{Msg: msg, Logger: a.logger, Level: level, Out: out, Attrs: attrs})
}

// loadStack reads a stored stack as an immutable value.
func loadStack(p *proxy_sqlite.Proxy, name string) (my_stack.Stack[string], error) {
	items, err := p.Load(name)
	if err != nil {
		return my_stack.Stack[string]{}, err
	}
	return my_stack.FromSlice(items), nil
}

func newPushCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "push NAME VALUE...",
		Short: "Push values onto a stack, the last one ends on top",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return a.withStore(cmd, func(p *proxy_sqlite.Proxy) error {
				var size int
				err := p.Update(name, func(items []string) ([]string, []proxy_sqlite.Operation, error) {
					st := my_stack.FromSlice(items)
					ops := make([]proxy_sqlite.Operation, 0, len(args)-1)
					for _, v := range args[1:] {
						st = st.Push(v)
						ops = append(ops, proxy_sqlite.Operation{Op: "push", Value: v, Size: st.Len()})
					}
					size = st.Len()
					return st.Items(), ops, nil
				})
				if err != nil {
					return err
				}
				a.logger.Info("push", "stack", name, "values", len(args)-1, "size", size)
				fmt.Fprintln(cmd.OutOrStdout(), size)
				return nil
			})
		},
	}
}

func newPopCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pop NAME",
		Short: "Remove and print the top of a stack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return a.withStore(cmd, func(p *proxy_sqlite.Proxy) error {
				var top string
				var size int
				err := p.Update(name, func(items []string) ([]string, []proxy_sqlite.Operation, error) {
					v, st, err := my_stack.FromSlice(items).Pop()
					if err != nil {
						return nil, nil, err
					}
					top, size = v, st.Len()
					return st.Items(), []proxy_sqlite.Operation{{Op: "pop", Value: v, Size: size}}, nil
				})
				if err != nil {
					a.logger.Warn("pop", "stack", name, "error", err)
					return errors.Wrapf(err, "pop %q", name)
				}
				a.logger.Info("pop", "stack", name, "size", size)
				fmt.Fprintln(cmd.OutOrStdout(), top)
				return nil
			})
		},
	}
}

func newPeekCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "peek NAME",
		Short: "Print the top of a stack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(p *proxy_sqlite.Proxy) error {
				st, err := loadStack(p, args[0])
				if err != nil {
					return err
				}
				v, err := st.Peek()
				if err != nil {
					return errors.Wrapf(err, "peek %q", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			})
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Print a stack bottom to top",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(p *proxy_sqlite.Proxy) error {
				items, err := p.Load(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d): [%s]\n", args[0], len(items), strings.Join(items, " "))
				return nil
			})
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored stacks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(p *proxy_sqlite.Proxy) error {
				names, err := p.Names()
				if err != nil {
					return err
				}
				for _, n := range names {
					fmt.Fprintln(cmd.OutOrStdout(), n)
				}
				return nil
			})
		},
	}
}

func newDropCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "drop NAME",
		Short: "Delete a stack and its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(p *proxy_sqlite.Proxy) error {
				if err := p.Delete(args[0]); err != nil {
					return err
				}
				a.logger.Info("drop", "stack", args[0])
				return nil
			})
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history NAME",
		Short: "Print the pushes and pops of a stack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(p *proxy_sqlite.Proxy) error {
				ops, err := p.History(args[0])
				if err != nil {
					return err
				}
				for _, o := range ops {
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%d\n", o.ID, o.Op, o.Value, o.Size)
				}
				return nil
			})
		},
	}
}

func newEvalCmd(a *app) *cobra.Command {
	var trace bool
	cmd := &cobra.Command{
		Use:   "eval EXPRESSION...",
		Short: "Evaluate arithmetic expressions",
		Long: `Evaluate arithmetic expressions with + - * / and brackets.
Several expressions are evaluated in parallel on computing_power goroutines.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if trace {
				for _, expr := range args {
					if err := a.trace(out, expr); err != nil {
						return err
					}
				}
				return nil
			}

			workers, ok := environ_vars.GetValueInt(a.cfg, constants.CompPow)
			if !ok {
				workers = 1
			}
			results, err := rpn.CalculateAll(cmd.Context(), args, workers)
			if err != nil {
				return err
			}
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					a.print(out, slog.LevelWarn, fmt.Sprintf("%s: %s", r.Expression, r.Err), "rpn", r.RPN)
					continue
				}
				a.print(out, slog.LevelInfo, fmt.Sprintf("%s = %s", r.Expression, rpn.FormatNumber(r.Value)))
			}
			if failed > 0 {
				return errors.Errorf("%d of %d expressions failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&trace, "trace", false, "print the operand stack after every token")
	return cmd
}

// trace prints every RPN step of expr with the operand stack it leaves.
func (a *app) trace(out io.Writer, expr string) error {
	tokens, err := rpn.FromInfics(expr)
	if err != nil {
		return errors.Wrapf(err, "%q", expr)
	}
	fmt.Fprintf(out, "%s\n  rpn: %s\n", expr, strings.Join(tokens, " "))

	snapshots, v, err := rpn.Trace(tokens)
	for i, s := range snapshots {
		fmt.Fprintf(out, "  %-6s %s\n", tokens[i], formatStack(s))
	}
	if err != nil {
		return errors.Wrapf(err, "%q", expr)
	}
	fmt.Fprintf(out, "  = %s\n", rpn.FormatNumber(v))
	return nil
}

func formatStack(s my_stack.Stack[float64]) string {
	items := s.Items()
	parts := make([]string, len(items))
	for i, f := range items {
		parts[i] = rpn.FormatNumber(f)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
