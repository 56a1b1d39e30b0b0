package watch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/code-explainer/internal/testutil"
)

const calculator = `public class Calculator {
    public int add(int a, int b) {
        return a + b;
    }
}
`

const greeter = `class Greeter {
    String greet(String name) {
        return "Hello, " + name;
    }
}
`

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestWatchCmd_TracksChanges(t *testing.T) {
	env := testutil.NewTestEnv(t)
	srcDir := t.TempDir()
	env.CreateTestFile(srcDir, "Calculator.java", calculator)
	outDir := t.TempDir()

	cmd := createTestCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--out", outDir, "--format", "json", "--debounce", "50ms", srcDir})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	calcDoc := filepath.Join(outDir, "Calculator.java.explain.json")
	greeterDoc := filepath.Join(outDir, "Greeter.java.explain.json")

	waitFor(t, "initial document", func() bool { return exists(calcDoc) })

	if err := os.WriteFile(filepath.Join(srcDir, "Greeter.java"), []byte(greeter), 0644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}
	waitFor(t, "document for new file", func() bool { return exists(greeterDoc) })

	if err := os.Remove(filepath.Join(srcDir, "Calculator.java")); err != nil {
		t.Fatalf("failed to remove source: %v", err)
	}
	waitFor(t, "document removal", func() bool { return !exists(calcDoc) })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watch returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatchCmd_NoInitial(t *testing.T) {
	env := testutil.NewTestEnv(t)
	srcDir := t.TempDir()
	env.CreateTestFile(srcDir, "Calculator.java", calculator)
	outDir := t.TempDir()

	cmd := createTestCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--out", outDir, "--no-initial", "--debounce", "50ms", srcDir})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	// The watch may not be registered yet, so keep rewriting with new
	// content until a document appears.
	polls := 0
	waitFor(t, "document for new file", func() bool {
		if polls%8 == 0 {
			content := fmt.Sprintf("%s// revision %d\n", greeter, polls)
			if err := os.WriteFile(filepath.Join(srcDir, "Greeter.java"), []byte(content), 0644); err != nil {
				t.Fatalf("failed to write source: %v", err)
			}
		}
		polls++
		return exists(filepath.Join(outDir, "Greeter.java.explain.json"))
	})

	if exists(filepath.Join(outDir, "Calculator.java.explain.json")) {
		t.Error("existing file should not be explained with --no-initial")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatchCmd_Validation(t *testing.T) {
	env := testutil.NewTestEnv(t)
	file := env.CreateTestFile(t.TempDir(), "Calculator.java", calculator)

	tests := []struct {
		name string
		args []string
	}{
		{"not a directory", []string{file}},
		{"missing directory", []string{filepath.Join(t.TempDir(), "missing")}},
		{"zero debounce", []string{"--debounce", "0s", t.TempDir()}},
		{"unknown provider", []string{"--provider", "bogus", t.TempDir()}},
		{"invalid metrics address", []string{"--dry-run", "--no-initial", "--metrics-addr", "not-an-address", t.TempDir()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := createTestCommand()
			cmd.SetOut(new(bytes.Buffer))
			cmd.SetErr(new(bytes.Buffer))
			cmd.SetArgs(tt.args)

			if err := cmd.Execute(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func createTestCommand() *cobra.Command {
	watchLanguage = ""
	watchMaxSize = 0
	watchOverlap = 0
	watchFormat = ""
	watchOut = ""
	watchWorkers = 0
	watchProvider = ""
	watchDryRun = false
	watchNoInitial = false
	watchDebounce = 500 * time.Millisecond
	watchMetrics = ""

	cmd := &cobra.Command{
		Use:     WatchCmd.Use,
		Short:   WatchCmd.Short,
		Long:    WatchCmd.Long,
		Example: WatchCmd.Example,
		Args:    WatchCmd.Args,
		PreRunE: WatchCmd.PreRunE,
		RunE:    WatchCmd.RunE,
	}

	cmd.Flags().StringVarP(&watchLanguage, "language", "l", "", "")
	cmd.Flags().IntVar(&watchMaxSize, "max-size", 0, "")
	cmd.Flags().IntVar(&watchOverlap, "overlap", 0, "")
	cmd.Flags().StringVarP(&watchFormat, "format", "f", "", "")
	cmd.Flags().StringVarP(&watchOut, "out", "o", "", "")
	cmd.Flags().IntVarP(&watchWorkers, "workers", "w", 0, "")
	cmd.Flags().StringVarP(&watchProvider, "provider", "p", "", "")
	cmd.Flags().BoolVar(&watchDryRun, "dry-run", false, "")
	cmd.Flags().BoolVar(&watchNoInitial, "no-initial", false, "")
	cmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "")
	cmd.Flags().StringVar(&watchMetrics, "metrics-addr", "", "")

	return cmd
}
