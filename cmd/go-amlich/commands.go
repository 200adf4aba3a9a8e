package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-amlich/internal/app"
	"github.com/tartampluch/go-amlich/internal/config"
	"github.com/tartampluch/go-amlich/internal/engine"
	"github.com/tartampluch/go-amlich/internal/lunar"
	"github.com/tartampluch/go-amlich/internal/server"
	"github.com/zalando/go-keyring"
)

// rootCommand holds the persistent flags shared by every subcommand.
type rootCommand struct {
	cmd *cobra.Command

	debug       bool
	configPath  string
	showVersion bool
	logCloser   io.Closer
}

func newRootCmd() *rootCommand {
	r := &rootCommand{}

	r.cmd = &cobra.Command{
		Use:           config.CmdRoot,
		Short:         config.DescRoot,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupLogging(cmd.ErrOrStderr(), r.debug, false)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if r.showVersion {
				printVersion(cmd.OutOrStdout())
				return nil
			}
			return cmd.Help()
		},
	}

	flags := r.cmd.PersistentFlags()
	flags.BoolVar(&r.debug, config.FlagDebug, false, config.FlagDescDebug)
	flags.StringVar(&r.configPath, config.FlagConfig, "", config.FlagDescConfig)
	r.cmd.Flags().BoolVar(&r.showVersion, config.FlagVersion, false, config.FlagDescVersion)

	r.cmd.AddCommand(
		newConvertCmd(),
		newCanChiCmd(),
		newDaysCmd(),
		newMonthCmd(),
		r.newServeCmd(),
		r.newCredentialsCmd(),
	)
	return r
}

func (r *rootCommand) closeLog() {
	if r.logCloser != nil {
		_ = r.logCloser.Close()
	}
}

// settingsPath returns --config or the per-user default location.
func (r *rootCommand) settingsPath() (string, error) {
	if r.configPath != "" {
		return r.configPath, nil
	}
	return config.DefaultSettingsPath()
}

// -----------------------------------------------------------------------------
// Lunar Commands
// -----------------------------------------------------------------------------

func newConvertCmd() *cobra.Command {
	var day, month, year int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   config.CmdConvert,
		Short: config.DescConvert,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				var err error
				if day, month, year, err = parseSolarDate(args[0]); err != nil {
					return err
				}
			} else if !cmd.Flags().Changed(config.FlagDay) ||
				!cmd.Flags().Changed(config.FlagMonth) ||
				!cmd.Flags().Changed(config.FlagYear) {
				return errors.New(config.ErrSolarDateFormat)
			}

			d, err := lunar.Convert(day, month, year)
			if err != nil {
				return fmt.Errorf("%s: %w", config.ErrLunarConvert, err)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), d)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), d.Display)
			return err
		},
	}

	cmd.Flags().IntVar(&day, config.FlagDay, 0, config.FlagDescDay)
	cmd.Flags().IntVar(&month, config.FlagMonth, 0, config.FlagDescMonth)
	cmd.Flags().IntVar(&year, config.FlagYear, 0, config.FlagDescYear)
	cmd.Flags().BoolVar(&asJSON, config.FlagJSON, false, config.FlagDescJSON)
	return cmd
}

func newCanChiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdCanChi,
		Short: config.DescCanChi,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseNumber(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), lunar.CanChiYear(year))
			return err
		},
	}
}

func newDaysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdDays,
		Short: config.DescDays,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			month, year, err := parseMonthYear(args)
			if err != nil {
				return err
			}
			n := lunar.DaysInMonth(month, year)
			if n == 0 {
				return fmt.Errorf("%w: month %d", lunar.ErrInvalidDate, month)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), n)
			return err
		},
	}
}

func newMonthCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   config.CmdMonth,
		Short: config.DescMonth,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			month, year, err := parseMonthYear(args)
			if err != nil {
				return err
			}

			days, err := engine.MonthTable(month, year)
			if err != nil {
				return fmt.Errorf("%s: %w", config.ErrLunarConvert, err)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), days)
			}
			for _, d := range days {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), config.FormatMonthRow, d.Day, d.Month, d.Year, d.Lunar.Display); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, config.FlagJSON, false, config.FlagDescJSON)
	return cmd
}

// -----------------------------------------------------------------------------
// Daemon
// -----------------------------------------------------------------------------

func (r *rootCommand) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdServe,
		Short: config.DescServe,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r.logCloser = setupLogging(os.Stdout, r.debug, true)

			path, err := r.settingsPath()
			if err != nil {
				return err
			}
			settings, err := config.Load(path)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			logStartupInfo()

			a := app.New(settings, server.NewCalendarServer(settings.Port))
			go watchReload(ctx, path, a)

			return a.Run(ctx)
		},
	}
}

// watchReload re-reads the settings file on SIGHUP. The listening port is
// fixed for the lifetime of the process.
func watchReload(ctx context.Context, path string, a *app.App) {
	hup := make(chan os.Signal, config.ChannelBufferSize)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	log := slog.With(config.LogKeyComponent, config.CompMain, config.LogKeyPath, path)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			log.Info(config.MsgSettingsHup)
			s, err := config.Load(path)
			if err != nil {
				log.Error(config.ErrSettingsRead, config.LogKeyError, err)
				continue
			}
			a.ApplySettings(s)
		}
	}
}

// -----------------------------------------------------------------------------
// Credentials
// -----------------------------------------------------------------------------

func (r *rootCommand) newCredentialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   config.CmdCredentials,
		Short: config.DescCredentials,
	}

	set := &cobra.Command{
		Use:   config.CmdCredSet,
		Short: config.DescCredSet,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user := args[0]
			_, _ = fmt.Fprint(cmd.ErrOrStderr(), config.MsgPasswordPrmpt)

			password, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err := keyring.Set(config.KeyringService, user, password); err != nil {
				return fmt.Errorf("%s: %w", config.ErrKeyringWrite, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), config.MsgCredStored, user)
			return err
		},
	}

	del := &cobra.Command{
		Use:   config.CmdCredDelete,
		Short: config.DescCredDelete,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := keyring.Delete(config.KeyringService, args[0]); err != nil {
				return fmt.Errorf("%s: %w", config.ErrKeyringDelete, err)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), config.MsgCredDeleted, args[0])
			return err
		},
	}

	cmd.AddCommand(set, del)
	return cmd
}

// readPassword takes the first line of r, without its line terminator.
func readPassword(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", errors.New(config.ErrPasswordEmpty)
	}
	password := strings.TrimRight(scanner.Text(), "\r")
	if password == "" {
		return "", errors.New(config.ErrPasswordEmpty)
	}
	return password, nil
}

// -----------------------------------------------------------------------------
// Argument Parsing
// -----------------------------------------------------------------------------

// parseSolarDate splits "DD/MM/YYYY". Range checks are left to lunar.Convert.
func parseSolarDate(s string) (day, month, year int, err error) {
	parts := strings.Split(s, config.SolarDateSeparator)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("%s: %q", config.ErrSolarDateFormat, s)
	}

	var values [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, 0, 0, fmt.Errorf("%s: %q", config.ErrSolarDateFormat, s)
		}
		values[i] = v
	}
	return values[0], values[1], values[2], nil
}

func parseNumber(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %q", config.ErrArgNotNumber, s)
	}
	return v, nil
}

func parseMonthYear(args []string) (month, year int, err error) {
	if month, err = parseNumber(args[0]); err != nil {
		return 0, 0, err
	}
	if year, err = parseNumber(args[1]); err != nil {
		return 0, 0, err
	}
	return month, year, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
