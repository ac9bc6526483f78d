package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/roach88/hwparam/internal/encode"
	"github.com/roach88/hwparam/internal/ir"
	"github.com/roach88/hwparam/internal/paramsrc"
	"github.com/roach88/hwparam/internal/store"
)

// EncodeOptions holds flags for the encode command.
type EncodeOptions struct {
	*RootOptions
	Output string // output file path
	DB     string // store path; empty means do not record
	Watch  bool

	// RunIDs generates the run ID for each recorded run. Default: UUIDv7.
	RunIDs store.RunIDGenerator
}

// EncodedSet is one encoded parameter set in command output.
type EncodedSet struct {
	Name   string          `json:"name"`
	Source string          `json:"source"`
	ID     string          `json:"id"`
	Text   string          `json:"text"`
	Params json.RawMessage `json:"params"`

	dict ir.DictAttr
}

// EncodeResult is the payload of a successful encode.
type EncodeResult struct {
	RunID string       `json:"run_id,omitempty"`
	Sets  []EncodedSet `json:"sets"`
}

// NewEncodeCommand creates the encode command.
func NewEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	return newEncodeCommand(&EncodeOptions{RootOptions: rootOpts})
}

func newEncodeCommand(opts *EncodeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode <file-or-dir>",
		Short: "Encode parameter sets to IR attributes",
		Long: `Encode every parameter set in a CUE or YAML file, or in every such file
under a directory.

Integers are encoded as 64-bit signless unless the file declares a type for
them under "types". Floats and other values with no attribute form fail the
set with the parameter's path.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&opts.DB, "db", "", "record results in this SQLite store")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "re-encode when parameter files change")

	return cmd
}

func runEncode(opts *EncodeOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	err := encodeOnce(ctx, opts, path, formatter)
	if !opts.Watch {
		return err
	}

	return watchPath(ctx, path, func() error {
		return encodeOnce(ctx, opts, path, formatter)
	})
}

func encodeOnce(ctx context.Context, opts *EncodeOptions, path string, formatter *OutputFormatter) error {
	sets, err := loadParamSets(path)
	if err != nil {
		details := loadErrorList(err)
		_ = formatter.Errors("Loading failed", details)
		return NewExitError(ExitCommandError, fmt.Sprintf("loading failed with %d error(s)", len(details)))
	}
	formatter.VerboseLog("Loaded %d parameter set(s) from %s", len(sets), path)

	result, failures := encodeSets(sets)
	if len(failures) > 0 {
		_ = formatter.Errors("Encoding failed", failures)
		return NewExitError(ExitFailure, fmt.Sprintf("%d parameter set(s) failed to encode", len(failures)))
	}

	if opts.DB != "" {
		runID, err := recordRun(ctx, opts, result)
		if err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "recording run", err)
		}
		result.RunID = runID
	}

	if opts.Output != "" {
		if err := writeResultToFile(result, opts.Output); err != nil {
			msg := fmt.Sprintf("writing output file: %v", err)
			_ = formatter.Error(paramsrc.ErrCodeWriteFailed, msg, nil)
			return NewExitError(ExitCommandError, msg)
		}
	}

	return outputEncodeSuccess(formatter, result, opts.Output)
}

func loadParamSets(path string) ([]paramsrc.ParamSet, error) {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return paramsrc.LoadDir(path, paramsrc.LoadModeCollectAll)
	}
	return paramsrc.LoadFile(path)
}

func loadErrorList(err error) []CLIError {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		out := make([]CLIError, len(merr.Errors))
		for i, e := range merr.Errors {
			out[i] = loadErrorDetail(e)
		}
		return out
	}
	return []CLIError{loadErrorDetail(err)}
}

// encodeSets encodes every set, collecting one failure per failing set.
func encodeSets(sets []paramsrc.ParamSet) (*EncodeResult, []CLIError) {
	result := &EncodeResult{Sets: []EncodedSet{}}
	var failures []CLIError

	for _, ps := range sets {
		d, err := paramsrc.EncodeSet(ps)
		if err != nil {
			slog.Debug("parameter set failed to encode", "set", ps.Name, "source", ps.Source, "error", err)
			failures = append(failures, CLIError{
				Code:    encodeErrorCode(err),
				Message: fmt.Sprintf("%s: %v", ps.Source, err),
			})
			continue
		}

		canonical, err := ir.MarshalCanonical(d)
		if err != nil {
			failures = append(failures, CLIError{
				Code:    ErrCodeUnsupportedValue,
				Message: fmt.Sprintf("%s: params.%s: %v", ps.Source, ps.Name, err),
			})
			continue
		}
		id, err := ir.ParamSetID(ps.Name, d)
		if err != nil {
			failures = append(failures, CLIError{Code: paramsrc.ErrCodeGeneric, Message: err.Error()})
			continue
		}

		slog.Debug("parameter set encoded", "set", ps.Name, "id", id, "params", len(d))
		result.Sets = append(result.Sets, EncodedSet{
			Name:   ps.Name,
			Source: ps.Source,
			ID:     id,
			Text:   d.String(),
			Params: canonical,
			dict:   d,
		})
	}

	return result, failures
}

func encodeErrorCode(err error) string {
	switch {
	case encode.IsUnsupportedType(err):
		return ErrCodeUnsupportedType
	case encode.IsUnsupportedValue(err):
		return ErrCodeUnsupportedValue
	default:
		return paramsrc.ErrCodeGeneric
	}
}

// recordRun writes every set of result to the store under a fresh run ID.
func recordRun(ctx context.Context, opts *EncodeOptions, result *EncodeResult) (string, error) {
	s, err := store.Open(opts.DB)
	if err != nil {
		return "", err
	}
	defer s.Close()

	gen := opts.RunIDs
	if gen == nil {
		gen = store.UUIDv7Generator{}
	}
	runID := gen.Generate()

	seq, err := s.NextSeq(ctx)
	if err != nil {
		return "", err
	}

	for i, set := range result.Sets {
		rec, err := store.NewRecord(runID, set.Name, set.Source, set.dict, seq+int64(i))
		if err != nil {
			return "", err
		}
		if err := s.WriteParamSet(ctx, rec); err != nil {
			return "", err
		}
	}

	slog.Info("run recorded", "run_id", runID, "sets", len(result.Sets), "db", opts.DB)
	return runID, nil
}

// outputEncodeSuccess outputs successful encode results.
func outputEncodeSuccess(formatter *OutputFormatter, result *EncodeResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s Encoded %d parameter set(s)\n\n", okMark("✓"), len(result.Sets))

	for _, set := range result.Sets {
		fmt.Fprintf(formatter.Writer, "%s (%s)\n", set.Name, set.Source)
		fmt.Fprintf(formatter.Writer, "  id: %s\n", set.ID)
		fmt.Fprintf(formatter.Writer, "  %s\n\n", set.Text)
	}

	if result.RunID != "" {
		fmt.Fprintf(formatter.Writer, "Recorded run %s\n", result.RunID)
	}
	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote %s\n", outputFile)
	}

	return nil
}

// writeResultToFile writes the encode result as indented JSON.
// Each set's params stay in canonical form.
func writeResultToFile(result *EncodeResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
