package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/setstate/cmd/setstate/internal/store"
	sserrors "github.com/go-drift/setstate/pkg/errors"
)

// execute runs the root command with a config path that does not exist, so
// only defaults and flags apply.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	prev := sserrors.Handler()
	t.Cleanup(func() { sserrors.SetHandler(prev) })

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{
		"--config", filepath.Join(t.TempDir(), "missing.yaml"),
		"--log-level", "error",
	}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "setstate version "+Version) {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestMerge(t *testing.T) {
	out, err := execute(t, "merge", "--initial", "{foo: bar, hello: 1}", "hello: goodbye")
	if err != nil {
		t.Fatal(err)
	}

	want := "# changed\nfoo: bar\nhello: goodbye\n# final\nfoo: bar\nhello: goodbye\n"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("Output mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_Replace(t *testing.T) {
	out, err := execute(t, "merge", "--replace", "--initial", "foo: bar", "hello: goodbye")
	if err != nil {
		t.Fatal(err)
	}

	want := "# changed\nhello: goodbye\n# final\nhello: goodbye\n"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("Output mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_ScalarReplacesMapping(t *testing.T) {
	out, err := execute(t, "merge", "--initial", "foo: bar", "42")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(out, "# final\n42\n") {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestMerge_FilePatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patch.yaml")
	if err := os.WriteFile(path, []byte("list: [1, 2]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "merge", "--initial", "foo: bar", "@"+path)
	if err != nil {
		t.Fatal(err)
	}
	_, final, _ := strings.Cut(out, "# final\n")
	if !strings.Contains(final, "foo: bar") || !strings.Contains(final, "- 2") {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestMerge_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no patches", []string{"merge"}, "requires at least 1 arg"},
		{"bad initial", []string{"merge", "--initial", "[", "a: 1"}, "--initial"},
		{"bad patch", []string{"merge", "a: 1", "{"}, "patch 2"},
		{"missing file", []string{"merge", "@/does/not/exist.yaml"}, "patch 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCounter(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "counter.msgpack")

	out, err := execute(t, "counter", "--interval", "1ms", "--ticks", "3", "--state-file", stateFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "Interval based timer updater function: 0\n") {
		t.Errorf("Expected first build to show 0, got %q", out)
	}
	if !strings.Contains(out, "Interval based timer updater function: 3\n") {
		t.Errorf("Expected a build with 3, got %q", out)
	}
	if !strings.Contains(out, "\033]0;3\007") {
		t.Errorf("Expected the title to be set to 3, got %q", out)
	}
	if strings.Contains(out, "\033]0;0\007") {
		t.Errorf("Title set for the starting value: %q", out)
	}

	saved, ok, err := store.Load[int](stateFile)
	if err != nil || !ok || saved != 3 {
		t.Fatalf("Expected saved value 3, got %d ok=%v err=%v", saved, ok, err)
	}

	out, err = execute(t, "counter", "--interval", "1ms", "--ticks", "2", "--state-file", stateFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "Interval based timer updater function: 3\n") {
		t.Errorf("Expected restored value 3, got %q", out)
	}
	if strings.Contains(out, "\033]0;3\007") {
		t.Errorf("Title set for the restored value: %q", out)
	}
	if !strings.Contains(out, "\033]0;5\007") {
		t.Errorf("Expected the title to reach 5, got %q", out)
	}
}

func TestCounter_InvalidFlags(t *testing.T) {
	if _, err := execute(t, "counter", "--interval", "0s"); err == nil {
		t.Error("Expected error for zero interval")
	}
	if _, err := execute(t, "counter", "--interval", "1ms", "--ticks", "-1"); err == nil {
		t.Error("Expected error for negative ticks")
	}
}

func TestRoot_BadLogLevel(t *testing.T) {
	_, err := execute(t, "version", "--log-level", "loud")
	if err == nil {
		t.Error("Expected error for unknown log level")
	}
}
