package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/hwparam/internal/paramsrc"
	"github.com/roach88/hwparam/internal/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	DB    string
	RunID string
}

// ShowEntry is one recorded parameter set in command output.
type ShowEntry struct {
	Seq       int64  `json:"seq"`
	RunID     string `json:"run_id"`
	Name      string `json:"name"`
	Source    string `json:"source"`
	ID        string `json:"id"`
	Text      string `json:"text"`
	IRVersion string `json:"ir_version"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "List recorded parameter sets",
		Long: `List the parameter sets recorded by "encode --db", oldest first.
Use --run to restrict the listing to one run.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "path to SQLite store (required)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "only show this run")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runShow(opts *ShowOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	// store.Open would create a missing database; refuse instead.
	if _, err := os.Stat(opts.DB); os.IsNotExist(err) {
		msg := fmt.Sprintf("database not found: %s", opts.DB)
		_ = formatter.Error(paramsrc.ErrCodeNotFound, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	s, err := store.Open(opts.DB)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening store", err)
	}
	defer s.Close()

	if irVersion, err := s.IRVersion(cmd.Context()); err == nil {
		formatter.VerboseLog("Store %s (IR %s)", opts.DB, irVersion)
	}

	records, err := s.ListParamSets(cmd.Context(), opts.RunID)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "listing param sets", err)
	}

	entries := make([]ShowEntry, len(records))
	for i, r := range records {
		entries[i] = ShowEntry{
			Seq:       r.Seq,
			RunID:     r.RunID,
			Name:      r.Name,
			Source:    r.Source,
			ID:        r.ID,
			Text:      r.Text,
			IRVersion: r.IRVersion,
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(formatter.Writer, "No parameter sets recorded")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(formatter.Writer, "%4d  %s  %s  %s\n", e.Seq, e.RunID, e.Name, shortID(e.ID))
		fmt.Fprintf(formatter.Writer, "      %s\n", e.Text)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
