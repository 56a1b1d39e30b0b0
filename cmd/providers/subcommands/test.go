package subcommands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/code-explainer/internal/cmdutil"
	"github.com/leefowlercu/code-explainer/internal/providers"
)

// testPiece is the code sent by the connectivity test.
const testPiece = `public int add(int a, int b) {
    return a + b;
}`

// TestCmd tests connectivity to an explain provider.
var TestCmd = &cobra.Command{
	Use:   "test [provider-name]",
	Short: "Test connectivity to an explain provider",
	Long: "Test connectivity to an explain provider.\n\n" +
		"Verifies that the provider is properly configured and can communicate " +
		"with its API by explaining a three-line method. Without an argument the " +
		"configured provider is tested.",
	Example: `  # Test the configured provider
  explainer providers test

  # Test OpenAI
  explainer providers test openai`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: validateTest,
	RunE:    runTest,
}

func validateTest(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runTest(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}

	registry, err := newRegistry(cfg)
	if err != nil {
		return err
	}

	var p providers.ExplainProvider
	if len(args) == 1 {
		p, err = registry.Get(args[0])
	} else {
		p, err = registry.Default()
	}
	if err != nil {
		return fmt.Errorf("failed to select provider; %w", err)
	}

	return testProvider(cmd, p)
}

func testProvider(cmd *cobra.Command, p providers.ExplainProvider) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Testing explain provider: %s\n", p.Name())

	if !p.Available() {
		return fmt.Errorf("provider %s is not available (missing API key or configuration)", p.Name())
	}

	fmt.Fprintln(out, "  Status: available")
	fmt.Fprintf(out, "  Model: %s\n", p.ModelName())
	fmt.Fprintln(out, "  Sending test request...")

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	start := time.Now()
	result, err := p.Explain(ctx, providers.ExplainRequest{
		Language:      "java",
		EnclosingName: "Calculator",
		UnitName:      "add",
		Piece:         testPiece,
	})
	duration := time.Since(start)

	if err != nil {
		return fmt.Errorf("test failed; %w", err)
	}

	fmt.Fprintf(out, "  Response received in %v\n", duration.Round(time.Millisecond))
	fmt.Fprintf(out, "  Tokens used: %d\n", result.TokensUsed)
	fmt.Fprintf(out, "  Explanation: %s\n", truncate(result.Text, 80))
	fmt.Fprintln(out, "  Test: PASSED")

	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
