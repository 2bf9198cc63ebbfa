package inferctl

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"inferd/pkg/types"
)

// Config carries the persistent flag values shared by every command.
type Config struct {
	Addr       string
	TimeoutSec int
	JSON       bool
	LogLvl     string
}

func (c *Config) client() *Client {
	return NewClient(c.Addr, time.Duration(c.TimeoutSec)*time.Second)
}

// BuildRootCmd constructs the Cobra command tree for inferctl.
func BuildRootCmd(cfg *Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "inferctl",
		Short:         "Control a running inferd daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfg.Addr, "addr", cfg.Addr, "inferd address (defaults INFERD_ADDR or http://127.0.0.1:8080)")
	root.PersistentFlags().IntVar(&cfg.TimeoutSec, "timeout-sec", cfg.TimeoutSec, "Timeout for non-streaming requests")
	root.PersistentFlags().BoolVar(&cfg.JSON, "json", cfg.JSON, "Print raw server JSON")
	root.PersistentFlags().StringVar(&cfg.LogLvl, "log-level", cfg.LogLvl, "Log level: debug|info|warn|error (defaults INFERCTL_LOG_LEVEL or info)")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		SetLogLevel(cfg.LogLvl)
	}

	statusCmd := &cobra.Command{
		Use:     "status",
		Short:   "Show server state and per-engine details",
		Example: "  inferctl status",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := cfg.client().Status(cmd.Context())
			if err != nil {
				return err
			}
			if cfg.JSON {
				return printJSON(cmd.OutOrStdout(), st)
			}
			renderStatus(cmd.OutOrStdout(), st)
			return nil
		},
	}

	modelsCmd := &cobra.Command{
		Use:     "models",
		Short:   "List models the server can load",
		Example: "  inferctl models",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := cfg.client().Models(cmd.Context())
			if err != nil {
				return err
			}
			if cfg.JSON {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			renderModels(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	var genModel string
	var genStream bool
	var genTemp float64
	var genTopP float64
	var genMaxLen int
	generateCmd := &cobra.Command{
		Use:   "generate [prompt...]",
		Short: "Generate a completion (reads stdin when no prompt args)",
		Example: "  inferctl generate explain goroutines\n" +
			"  inferctl generate --stream --model tinyllama-q4 tell me a story\n" +
			"  echo 'why is the sky blue?' | inferctl generate --stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			if strings.TrimSpace(prompt) == "" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				prompt = strings.TrimSpace(string(b))
			}
			if prompt == "" {
				return fmt.Errorf("no prompt given (pass args or pipe stdin)")
			}
			req := types.GenerateRequest{Model: genModel, Prompt: prompt}
			if cmd.Flags().Changed("temperature") {
				req.Temperature = &genTemp
			}
			if cmd.Flags().Changed("top-p") {
				req.TopP = &genTopP
			}
			if cmd.Flags().Changed("max-gen-len") {
				req.MaxGenLen = &genMaxLen
			}

			out := cmd.OutOrStdout()
			if genStream {
				var onToken func(types.TokenLine)
				var onRaw func([]byte)
				if cfg.JSON {
					onRaw = func(line []byte) { fmt.Fprintln(out, string(line)) }
				} else {
					onToken = func(t types.TokenLine) { fmt.Fprint(out, t.Token) }
				}
				final, err := cfg.client().GenerateStream(cmd.Context(), req, onToken, onRaw)
				if err != nil {
					return err
				}
				if !cfg.JSON {
					fmt.Fprintln(out)
				}
				debug("generation %s: %s after %d fragments", final.GenerationID, final.FinishReason, final.Fragments)
				if final.Error != "" {
					return fmt.Errorf("generation ended early: %s", final.Error)
				}
				return nil
			}

			resp, err := cfg.client().Generate(cmd.Context(), req)
			if err != nil {
				return err
			}
			if cfg.JSON {
				return printJSON(out, resp)
			}
			fmt.Fprintln(out, resp.Content)
			debug("generation %s: %s after %d fragments", resp.GenerationID, resp.FinishReason, resp.Fragments)
			return nil
		},
	}
	generateCmd.Flags().StringVar(&genModel, "model", "", "Model id (defaults to the server default)")
	generateCmd.Flags().BoolVar(&genStream, "stream", false, "Stream tokens as they are generated")
	generateCmd.Flags().Float64Var(&genTemp, "temperature", 0, "Sampling temperature for this request")
	generateCmd.Flags().Float64Var(&genTopP, "top-p", 0, "Nucleus sampling probability for this request")
	generateCmd.Flags().IntVar(&genMaxLen, "max-gen-len", 0, "Fragment cap for this request")

	var cancelModel string
	var cancelGenID string
	cancelCmd := &cobra.Command{
		Use:     "cancel",
		Short:   "Cancel an in-flight generation",
		Example: "  inferctl cancel --model tinyllama-q4",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := cfg.client().Cancel(cmd.Context(), types.CancelRequest{Model: cancelModel, GenerationID: cancelGenID})
			if err != nil {
				return err
			}
			if cfg.JSON {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			if !resp.Canceled {
				return fmt.Errorf("no matching in-flight generation")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "canceled")
			return nil
		},
	}
	cancelCmd.Flags().StringVar(&cancelModel, "model", "", "Model id (defaults to the server default)")
	cancelCmd.Flags().StringVar(&cancelGenID, "generation-id", "", "Target a specific generation")

	paramsCmd := &cobra.Command{
		Use:   "params",
		Short: "Inspect or update engine sampling parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("params requires a subcommand: set (use 'status' to inspect)")
		},
	}
	var parModel string
	var parTemp float64
	var parTopP float64
	var parMaxLen int
	paramsSet := &cobra.Command{
		Use:     "set",
		Short:   "Update engine parameters, loading the engine if needed",
		Example: "  inferctl params set --model tinyllama-q4 --temperature 0.9",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := types.ParamsRequest{Model: parModel}
			if cmd.Flags().Changed("temperature") {
				req.Temperature = &parTemp
			}
			if cmd.Flags().Changed("top-p") {
				req.TopP = &parTopP
			}
			if cmd.Flags().Changed("max-gen-len") {
				req.MaxGenLen = &parMaxLen
			}
			if req.Temperature == nil && req.TopP == nil && req.MaxGenLen == nil {
				return fmt.Errorf("nothing to set: pass --temperature, --top-p or --max-gen-len")
			}
			view, err := cfg.client().SetParams(cmd.Context(), req)
			if err != nil {
				return err
			}
			if cfg.JSON {
				return printJSON(cmd.OutOrStdout(), view)
			}
			renderParams(cmd.OutOrStdout(), view)
			return nil
		},
	}
	paramsSet.Flags().StringVar(&parModel, "model", "", "Model id (defaults to the server default)")
	paramsSet.Flags().Float64Var(&parTemp, "temperature", 0, "Sampling temperature in [0,2]")
	paramsSet.Flags().Float64Var(&parTopP, "top-p", 0, "Nucleus sampling probability in (0,1]")
	paramsSet.Flags().IntVar(&parMaxLen, "max-gen-len", 0, "Fragment cap per generation")
	paramsCmd.AddCommand(paramsSet)

	var resetModel string
	resetCmd := &cobra.Command{
		Use:     "reset",
		Short:   "Return an engine to its idle state",
		Example: "  inferctl reset --model tinyllama-q4",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := cfg.client().Reset(cmd.Context(), types.ResetRequest{Model: resetModel})
			if err != nil {
				return err
			}
			if cfg.JSON {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "reset")
			return nil
		},
	}
	resetCmd.Flags().StringVar(&resetModel, "model", "", "Model id (defaults to the server default)")

	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(os.Stdout, true) }})
	completionCmd.AddCommand(&cobra.Command{Use: "powershell", Short: "PowerShell completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenPowerShellCompletionWithDesc(os.Stdout) }})

	root.AddCommand(statusCmd, modelsCmd, generateCmd, cancelCmd, paramsCmd, resetCmd, completionCmd)
	return root
}

// MainWithArgs is a testable variant of Main that accepts args explicitly.
// It returns an exit code (0 for success, non-zero on error).
func MainWithArgs(args []string) int {
	cfg := &Config{
		Addr:       envStr("INFERD_ADDR", "http://127.0.0.1:8080"),
		TimeoutSec: envInt("INFERCTL_TIMEOUT_SEC", 30),
		LogLvl:     envStr("INFERCTL_LOG_LEVEL", "info"),
	}
	root := BuildRootCmd(cfg)
	root.SetArgs(args)

	// Ctrl+C cancels in-flight requests, including streams.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	return 0
}

// Main returns an exit code (0 for success, non-zero on error) for use by
// cmd/inferctl.
func Main() int { return MainWithArgs(os.Args[1:]) }
