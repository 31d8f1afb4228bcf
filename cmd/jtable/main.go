// Program jtable displays and edits JSON documents as tables.
//
// Usage:
//
//	jtable show FILE [--path EXPR] [--search TERM]
//	jtable set FILE ROW KEY TEXT
//	jtable add-row FILE
//	jtable delete-row FILE ROW
//	jtable edit FILE [--path EXPR]
//
// A FILE of "-" reads the document from standard input; such a document can
// be shown but not modified. Settings are read from a TOML file (see --config)
// with keys preview_width, max_column_width, and jwcc.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/creachadair/jtable"
	"github.com/creachadair/jtable/host"
	"github.com/creachadair/jtable/jpath"
	"github.com/creachadair/jtable/value"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var flags struct {
	config  string
	jwcc    bool
	verbose int
	path    string
	search  string
}

// settings are the effective settings after loading the config file and
// applying flag overrides. They are populated before any command runs.
var settings Config

var rootCmd = &cobra.Command{
	Use:           "jtable",
	Short:         "Display and edit JSON documents as tables",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, required := flags.config, true
		if path == "" {
			path, required = defaultConfigPath(), false
		}
		cfg, err := loadConfig(path, required)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("jwcc") {
			cfg.JWCC = flags.jwcc
		}
		settings = cfg

		log := newLogger(cmd.ErrOrStderr(), flags.verbose)
		log.V(1).Info("Loaded settings", "config", path, "previewWidth", cfg.PreviewWidth,
			"maxColumnWidth", cfg.MaxColumnWidth, "jwcc", cfg.JWCC)
		cmd.SetContext(logr.NewContext(cmd.Context(), log))
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show FILE",
	Short: "Print a document as a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(args[0], flags.path, true)
		if err != nil {
			return err
		}
		defer s.Close()
		out := cmd.OutOrStdout()
		return renderTable(out, s.Model(), settings, flags.search, isTerminal(out))
	},
}

var setCmd = &cobra.Command{
	Use:   "set FILE ROW KEY TEXT",
	Short: "Set the value of a cell",
	Long: `Set the value of the cell at ROW and KEY from TEXT.

TEXT is decoded as a number, true, false, null, or a JSON object or array,
and otherwise stored as a string. For a scalar document, use ROW 0 and KEY
"value" to replace the document.`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		row, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid row: %w", err)
		}
		return runMutation(cmd, args[0], host.UpdateCell{Row: row, Key: args[2], Text: args[3]})
	},
}

var addRowCmd = &cobra.Command{
	Use:   "add-row FILE",
	Short: "Append a row to an array document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMutation(cmd, args[0], host.AddRow{})
	},
}

var deleteRowCmd = &cobra.Command{
	Use:   "delete-row FILE ROW",
	Short: "Delete a row from an array document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		row, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid row: %w", err)
		}
		return runMutation(cmd, args[0], host.DeleteRow{Row: row})
	},
}

var editCmd = &cobra.Command{
	Use:   "edit FILE",
	Short: "Edit a document interactively",
	Long: `Edit a document in an interactive table.

Keys: arrows or hjkl move, enter edits a cell or opens a nested table,
esc closes a nested table, a adds a row, d deletes a row, y copies a cell,
/ searches, n finds the next match, q quits.

With --path, the selected value is shown read-only.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(args[0], flags.path, flags.path != "" || args[0] == "-")
		if err != nil {
			return err
		}
		return runEditor(cmd.Context(), s)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.config, "config", "", "configuration file (default $XDG_CONFIG_HOME/jtable/config.toml)")
	pf.BoolVar(&flags.jwcc, "jwcc", false, "permit comments and trailing commas in the input")
	pf.CountVarP(&flags.verbose, "verbose", "v", "enable verbose logging (repeat for more)")

	showCmd.Flags().StringVar(&flags.path, "path", "", "show the value selected by this JSONPath expression")
	showCmd.Flags().StringVar(&flags.search, "search", "", "highlight cells containing this text")
	editCmd.Flags().StringVar(&flags.path, "path", "", "view the value selected by this JSONPath expression")

	rootCmd.AddCommand(showCmd, setCmd, addRowCmd, deleteRowCmd, editCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "jtable: %v\n", err)
		os.Exit(1)
	}
}

// newLogger returns a logger that writes to w at the given verbosity.
func newLogger(w io.Writer, verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintln(w, prefix, args)
		} else {
			fmt.Fprintln(w, args)
		}
	}, funcr.Options{Verbosity: verbosity})
}

// readInput reads the contents of path, or of stdin if path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// openSession opens a session on the document at path. If expr != "", the
// session edits a copy of the value selected by expr and is read-only.
func openSession(path, expr string, readOnly bool) (*jtable.Session, error) {
	src, err := readInput(path)
	if err != nil {
		return nil, err
	}
	opts := &jtable.Options{ReadOnly: readOnly || path == "-", Target: path, JWCC: settings.JWCC}
	s, err := jtable.Open(src, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if expr == "" {
		return s, nil
	}
	defer s.Close()
	v, err := selectPath(s.Root(), expr)
	if err != nil {
		return nil, err
	}
	opts.ReadOnly = true
	return jtable.OpenValue(v, opts), nil
}

// selectPath returns the value of root selected by the JSONPath expr.
func selectPath(root value.Value, expr string) (value.Value, error) {
	p, err := jpath.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("path %q: %w", expr, err)
	}
	v, err := value.Path(root, p.Path()...)
	if err != nil {
		return nil, fmt.Errorf("path %q: %w", p, err)
	}
	return v, nil
}

// runMutation applies msg to the document at path and writes it back.
func runMutation(cmd *cobra.Command, path string, msg host.Message) error {
	ctx := cmd.Context()
	s, err := openSession(path, "", false)
	if err != nil {
		return err
	}
	var last jtable.Update
	d, err := host.NewDispatcher(s, host.Config{
		Store:  host.FileStore{},
		View:   func(u jtable.Update) { last = u },
		Logger: logr.FromContextOrDiscard(ctx),
	})
	if err != nil {
		return err
	}
	defer d.Close()

	d.Post(ctx, msg)
	if f, ok := last.(jtable.MutationFailed); ok {
		return fmt.Errorf("%v: %w", msg, &jtable.Error{Kind: f.Kind})
	}
	fmt.Fprintln(cmd.OutOrStdout(), describeUpdate(last))
	return nil
}

// describeUpdate returns a one-line summary of u.
func describeUpdate(u jtable.Update) string {
	switch t := u.(type) {
	case jtable.CellUpdated:
		msg := fmt.Sprintf("row %d %q = %s", t.Row, t.Key, jtable.Preview(t.Value, settings.PreviewWidth))
		if t.Reshaped {
			msg += " (document reshaped)"
		} else if t.Columns != nil {
			msg += fmt.Sprintf(" (columns %q)", t.Columns)
		}
		return msg
	case jtable.RowAdded:
		return fmt.Sprintf("added row %d", t.Row)
	case jtable.RowDeleted:
		return fmt.Sprintf("deleted row %d", t.Row)
	case jtable.MutationFailed:
		return "failed: " + t.Kind.String()
	case nil:
		return "no update"
	default:
		panic(fmt.Sprintf("unknown update type %T", u))
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
