package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/setstate/pkg/cell"
	"github.com/go-drift/setstate/pkg/core"
	"github.com/go-drift/setstate/pkg/engine"
)

type mergeOptions struct {
	initial string
	replace bool
}

func newMergeCommand(global *globalOptions) *cobra.Command {
	opts := &mergeOptions{}

	cmd := &cobra.Command{
		Use:   "merge [flags] <patch>...",
		Short: "Apply YAML patches to a state cell",
		Long: `Start a state cell from --initial and apply each patch in order,
one stabilization per patch. Mapping patches are merged key by key
into a mapping state; anything else replaces it. With --replace every
patch replaces the state.

Patches and --initial are YAML documents, or @path to read a file.
Each change callback prints the new state; the final state is printed
at the end.`,
		Example: `  setstate merge --initial 'foo: bar' 'hello: goodbye'
  setstate merge --initial @state.yaml @patch1.yaml @patch2.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd.OutOrStdout(), global.logger, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.initial, "initial", "{}", "initial state as YAML, or @path")
	flags.BoolVar(&opts.replace, "replace", false, "replace the state instead of merging mappings")
	return cmd
}

// mergeState holds a document cell the way a component would.
type mergeState struct {
	core.StateBase
	initial any
	replace bool
	out     io.Writer
	logger  *zap.Logger

	doc *cell.Cell[any]
}

func (s *mergeState) InitState() {
	if s.replace {
		s.doc = core.UseStateCallback(s, s.initial, s.onChange, cell.WithName("document"))
		return
	}
	s.doc = core.UseSetState(s, s.initial, s.onChange, cell.WithName("document"))
}

func (s *mergeState) onChange(v any) {
	fmt.Fprintln(s.out, "# changed")
	if err := writeYAML(s.out, v); err != nil {
		s.logger.Error("cannot print state", zap.Error(err))
	}
}

func runMerge(out io.Writer, logger *zap.Logger, opts *mergeOptions, patches []string) error {
	initial, err := readDocument(opts.initial)
	if err != nil {
		return fmt.Errorf("--initial: %w", err)
	}
	docs := make([]any, len(patches))
	for i, p := range patches {
		if docs[i], err = readDocument(p); err != nil {
			return fmt.Errorf("patch %d: %w", i+1, err)
		}
	}

	s := &mergeState{initial: initial, replace: opts.replace, out: out, logger: logger}
	r := engine.NewRunner()
	r.Mount(s)
	r.StepFrame()

	for i, doc := range docs {
		r.Dispatch(func() { s.doc.Set(doc) })
		r.StepFrame()
		logger.Debug("applied patch", zap.Int("index", i+1))
	}

	final := s.doc.Value()
	r.Unmount(s)
	r.StepFrame()

	fmt.Fprintln(out, "# final")
	return writeYAML(out, final)
}

func readDocument(src string) (any, error) {
	data := []byte(src)
	if path, ok := strings.CutPrefix(src, "@"); ok {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, err
		}
	}
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
