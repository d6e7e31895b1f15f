// Package main provides the CLI entry point for vtcode, a terminal coding
// agent that drives one model through a turn loop over a local workspace.
//
// # Basic Usage
//
// Start an interactive session:
//
//	vtcode chat --workspace .
//
// Run a single turn non-interactively:
//
//	vtcode run "list the files that changed in the last commit"
//
// # Environment Variables
//
//   - VTCODE_CONFIG: Path to configuration file (default: vtcode.yaml)
//   - ANTHROPIC_API_KEY: Anthropic API key for Claude models
//   - OPENAI_API_KEY: OpenAI API key for GPT models
//   - GOOGLE_API_KEY: Google API key for Gemini models
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vtcode-ai/vtcode/internal/agent"
	agentctx "github.com/vtcode-ai/vtcode/internal/agent/context"
	"github.com/vtcode-ai/vtcode/internal/agent/providers"
	"github.com/vtcode-ai/vtcode/internal/config"
	"github.com/vtcode-ai/vtcode/internal/sessions"
	"github.com/vtcode-ai/vtcode/internal/tools/exec"
	"github.com/vtcode-ai/vtcode/internal/tools/files"
	"github.com/vtcode-ai/vtcode/internal/tools/plan"
	"github.com/vtcode-ai/vtcode/internal/tools/pty"
	"github.com/vtcode-ai/vtcode/internal/tools/safety"
	"github.com/vtcode-ai/vtcode/internal/tools/search"
	"github.com/vtcode-ai/vtcode/internal/tools/skills"
	"github.com/vtcode-ai/vtcode/internal/workspace"
	"github.com/vtcode-ai/vtcode/pkg/models"
)

// Build information, populated by ldflags during release builds.
//
//	go build -ldflags "-X main.version=v1.0.0 -X main.commit=$(git rev-parse HEAD)"
var (
	version = "dev"
	commit  = "none"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// buildRootCmd creates the root command with all subcommands attached.
// Separated from main() so tests can exercise it without os.Exit.
func buildRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "vtcode",
		Short:   "vtcode - a terminal coding agent",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		Long: `vtcode drives a single model through a turn loop over a local
workspace: it reads files, edits them, runs shell commands, and keeps going
until the task is done or it needs your input.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "vtcode.yaml", "Path to YAML configuration file")

	rootCmd.AddCommand(
		buildChatCmd(&configPath),
		buildRunCmd(&configPath),
		buildConfigCmd(&configPath),
		buildInitCmd(&configPath),
	)

	return rootCmd
}

// buildChatCmd creates the "chat" command: an interactive REPL that keeps
// a single session alive across turns until the user exits.
func buildChatCmd(configPath *string) *cobra.Command {
	var workspaceOverride string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive coding session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, rt, session, err := bootstrap(*configPath, workspaceOverride)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "vtcode %s — workspace %s\n", version, cfg.Workspace.Path)
			fmt.Fprintln(out, "Type your task, or /exit to quit.")

			reader := bufio.NewScanner(cmd.InOrStdin())
			reader.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for {
				fmt.Fprint(out, "\n> ")
				if !reader.Scan() {
					break
				}
				line := strings.TrimSpace(reader.Text())
				if line == "" {
					continue
				}
				if line == "/exit" || line == "/quit" {
					break
				}
				if err := runTurn(ctx, rt, session, line, out); err != nil {
					if ctx.Err() != nil {
						fmt.Fprintln(out, "\ninterrupted")
						break
					}
					fmt.Fprintf(out, "\nerror: %v\n", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&workspaceOverride, "workspace", "w", "", "Workspace directory (overrides config)")
	return cmd
}

// buildRunCmd creates the "run" command: a single non-interactive turn,
// useful for scripting and CI.
func buildRunCmd(configPath *string) *cobra.Command {
	var workspaceOverride string

	cmd := &cobra.Command{
		Use:   "run [prompt]",
		Short: "Run a single turn non-interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, rt, session, err := bootstrap(*configPath, workspaceOverride)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			return runTurn(ctx, rt, session, args[0], cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&workspaceOverride, "workspace", "w", "", "Workspace directory (overrides config)")
	return cmd
}

// buildConfigCmd creates the "config" command group.
func buildConfigCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect vtcode configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config OK: workspace=%s provider=%s\n", cfg.Workspace.Path, cfg.LLM.DefaultProvider)
			return nil
		},
	})
	return cmd
}

// buildInitCmd creates the "init" command: writes the bootstrap workspace
// files (AGENTS.md and friends) a fresh workspace needs.
func buildInitCmd(configPath *string) *cobra.Command {
	var workspaceOverride string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a workspace with bootstrap context files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				cfg = &config.Config{Workspace: config.DefaultWorkspaceConfig()}
			}
			if strings.TrimSpace(workspaceOverride) != "" {
				cfg.Workspace.Path = workspaceOverride
			}
			if strings.TrimSpace(cfg.Workspace.Path) == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				cfg.Workspace.Path = wd
			}

			files := workspace.BootstrapFilesForConfig(cfg)
			result, err := workspace.EnsureWorkspaceFiles(cfg.Workspace.Path, files, overwrite)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "workspace ready: %s\n", cfg.Workspace.Path)
			for _, path := range result.Created {
				fmt.Fprintf(out, "  created: %s\n", path)
			}
			for _, path := range result.Skipped {
				fmt.Fprintf(out, "  skipped (exists): %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&workspaceOverride, "workspace", "w", "", "Workspace directory to initialize")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing bootstrap files")
	return cmd
}

// bootstrap loads configuration, builds the provider and tool-equipped
// runtime, and opens a fresh session. Shared by "chat" and "run" so both
// exercise the same wiring.
func bootstrap(configPath, workspaceOverride string) (*config.Config, *agent.AgenticRuntime, *models.Session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if strings.TrimSpace(workspaceOverride) != "" {
		cfg.Workspace.Path = workspaceOverride
	}
	if strings.TrimSpace(cfg.Workspace.Path) == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("resolve working directory: %w", err)
		}
		cfg.Workspace.Path = wd
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	store := sessions.NewMemoryStore()
	loopCfg := agent.DefaultLoopConfig()
	config.ApplyAgentConfig(cfg.Agent, loopCfg)
	rt := agent.NewAgenticRuntime(provider, store, loopCfg)
	rt.SetDefaultModel(defaultModelFor(cfg))
	rt.SetSystemPrompt(systemPrompt(cfg))
	rt.SetBudgetPacker(agentctx.NewPacker(agentctx.DefaultPackOptions()))
	rt.SetWorkspaceRoot(cfg.Workspace.Path)

	registerTools(rt, cfg)

	session := &models.Session{
		ID:        uuid.NewString(),
		Channel:   models.ChannelAPI,
		Key:       "cli",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := store.Update(context.Background(), session); err != nil {
		return nil, nil, nil, fmt.Errorf("create session: %w", err)
	}

	return cfg, rt, session, nil
}

// buildProvider selects and constructs the configured default LLM provider.
func buildProvider(cfg *config.Config) (agent.LLMProvider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.LLM.DefaultProvider))
	if name == "" {
		name = "anthropic"
	}
	providerCfg := cfg.LLM.Providers[name]

	switch name {
	case "anthropic":
		apiKey := firstNonEmpty(providerCfg.APIKey, os.Getenv("ANTHROPIC_API_KEY"))
		return providers.NewAnthropicProvider(providers.AnthropicConfig{
			APIKey:  apiKey,
			BaseURL: providerCfg.BaseURL,
		})
	case "openai":
		apiKey := firstNonEmpty(providerCfg.APIKey, os.Getenv("OPENAI_API_KEY"))
		return providers.NewOpenAIProvider(apiKey), nil
	case "google":
		apiKey := firstNonEmpty(providerCfg.APIKey, os.Getenv("GOOGLE_API_KEY"))
		return providers.NewGoogleProvider(providers.GoogleConfig{
			APIKey: apiKey,
		})
	case "openrouter":
		return providers.NewOpenRouterProvider(providers.OpenRouterConfig{
			APIKey: firstNonEmpty(providerCfg.APIKey, os.Getenv("OPENROUTER_API_KEY")),
		})
	case "ollama":
		return providers.NewOllamaProvider(providers.OllamaConfig{
			BaseURL: firstNonEmpty(providerCfg.BaseURL, "http://localhost:11434"),
		}), nil
	case "bedrock":
		return providers.NewBedrockProvider(providers.BedrockConfig{
			Region:          cfg.LLM.Bedrock.Region,
			AccessKeyID:     cfg.LLM.Bedrock.AccessKeyID,
			SecretAccessKey: cfg.LLM.Bedrock.SecretAccessKey,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", name)
	}
}

func defaultModelFor(cfg *config.Config) string {
	name := strings.ToLower(strings.TrimSpace(cfg.LLM.DefaultProvider))
	if providerCfg, ok := cfg.LLM.Providers[name]; ok && providerCfg.DefaultModel != "" {
		return providerCfg.DefaultModel
	}
	return ""
}

// registerTools wires the file, exec and process tools into the runtime,
// sharing a single command safety evaluator so its decision cache and
// audit log cover every shell invocation in the session.
func registerTools(rt *agent.AgenticRuntime, cfg *config.Config) {
	workspace := cfg.Workspace.Path
	fileCfg := files.Config{Workspace: workspace, MaxReadBytes: 256 * 1024}

	evaluator := safety.NewEvaluator(safety.Config{WorkspaceRoot: workspace}, safety.NewAuditLog())
	manager := exec.NewManager(workspace)
	manager.SetSafetyEvaluator(evaluator)

	ptyManager := pty.NewManager(workspace, config.PTYManagerConfig(cfg.PTY))
	ptyManager.SetSafetyEvaluator(evaluator)

	rt.RegisterTool(files.NewReadTool(fileCfg))
	rt.RegisterTool(files.NewWriteTool(fileCfg))
	rt.RegisterTool(files.NewEditTool(fileCfg))
	rt.RegisterTool(files.NewApplyPatchTool(fileCfg))
	rt.RegisterTool(exec.NewExecTool("exec", manager))
	rt.RegisterTool(exec.NewProcessTool(manager))
	rt.RegisterTool(pty.NewCreateSessionTool(ptyManager))
	rt.RegisterTool(pty.NewSendInputTool(ptyManager))
	rt.RegisterTool(pty.NewReadSessionTool(ptyManager))

	searchCfg := search.Config{Workspace: workspace}
	rt.RegisterTool(search.NewGrepFileTool(searchCfg))
	rt.RegisterTool(search.NewListFilesTool(searchCfg))
	rt.RegisterTool(search.NewASTGrepTool(searchCfg))

	registry := skills.NewRegistry(workspace)
	rt.RegisterTool(skills.NewSaveSkillTool(registry))
	rt.RegisterTool(skills.NewLoadSkillTool(registry))
	rt.RegisterTool(skills.NewListSkillsTool(registry))

	rt.RegisterTool(plan.NewUpdatePlanTool(workspace))

	rt.RegisterTool(search.NewSearchToolsTool(rt))
}

// systemPrompt builds the base system prompt, appending whatever workspace
// identity/context files (AGENTS.md, SOUL.md, etc.) the workspace loader
// finds so the model picks up project-specific conventions.
func systemPrompt(cfg *config.Config) string {
	base := "You are vtcode, a terminal coding agent. Use the available tools to read, edit, " +
		"and run code in the workspace. Prefer small, verifiable steps."

	wsCtx, err := workspace.LoadWorkspace(workspace.LoaderConfigFromConfig(cfg))
	if err != nil {
		slog.Warn("workspace context load failed", "error", err)
		return base
	}
	if extra := wsCtx.SystemPromptContext(); extra != "" {
		return base + "\n\n" + extra
	}
	return base
}

// runTurn sends one user message through the runtime and streams the
// response to out until the turn completes.
func runTurn(ctx context.Context, rt *agent.AgenticRuntime, session *models.Session, prompt string, out io.Writer) error {
	msg := &models.Message{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      models.RoleUser,
		Content:   prompt,
		CreatedAt: time.Now(),
	}

	chunks, err := rt.Process(ctx, session, msg)
	if err != nil {
		return err
	}

	for chunk := range chunks {
		switch {
		case chunk.Error != nil:
			return chunk.Error
		case chunk.ToolEvent != nil:
			printToolEvent(out, chunk.ToolEvent)
		case chunk.Text != "":
			fmt.Fprint(out, chunk.Text)
		}
	}
	fmt.Fprintln(out)
	return nil
}

func printToolEvent(out io.Writer, evt *models.ToolEvent) {
	switch evt.Stage {
	case models.ToolEventStarted:
		fmt.Fprintf(out, "\n[%s] running...\n", evt.ToolName)
	case models.ToolEventDenied:
		fmt.Fprintf(out, "\n[%s] denied: %s\n", evt.ToolName, evt.PolicyReason)
	case models.ToolEventSuppressed:
		fmt.Fprintf(out, "\n[%s] suppressed: %s\n", evt.ToolName, evt.Error)
	case models.ToolEventFailed:
		fmt.Fprintf(out, "\n[%s] failed: %s\n", evt.ToolName, evt.Error)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
