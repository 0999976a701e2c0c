package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/miosync/miochat/chat"
	"github.com/miosync/miochat/config"
	"github.com/miosync/miochat/llm"
	"github.com/miosync/miochat/logging"
	"github.com/miosync/miochat/providers"
	"github.com/miosync/miochat/render"
	"github.com/miosync/miochat/session"
	"github.com/miosync/miochat/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// app holds flag values and what PersistentPreRunE derived from them.
type app struct {
	configPath  string
	envFile     string
	provider    string
	model       string
	system      string
	temperature float32
	topP        float32
	maxTokens   int
	plain       bool
	verbose     bool
	logFile     string

	cfg    *config.Config
	logger *zap.Logger
	tui    bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "miochat",
		Short: "Chat with an LLM from the terminal",
		Long: `miochat keeps a short conversation with a completion provider.

Run without arguments to start the interactive chat. The full-screen interface
is used when stdout is a terminal; pass --plain for a line-oriented prompt.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: a.runInteractive,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a YAML config file (default ./"+config.DefaultFile+" if present)")
	flags.StringVar(&a.envFile, "env-file", "", "path to a .env file (default ./.env if present)")
	flags.StringVar(&a.provider, "provider", "", "completion provider: "+strings.Join(providers.Available(), ", "))
	flags.StringVar(&a.model, "model", "", "model name")
	flags.StringVar(&a.system, "system", "", "system prompt")
	flags.Float32Var(&a.temperature, "temperature", session.DefaultTemperature, "sampling temperature (0-1)")
	flags.Float32Var(&a.topP, "top-p", session.DefaultTopP, "nucleus sampling (0-1)")
	flags.IntVar(&a.maxTokens, "max-tokens", session.DefaultMaxTokens, "maximum reply length in tokens (100-12096)")
	flags.BoolVar(&a.plain, "plain", false, "use the line-oriented prompt instead of the full-screen interface")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&a.logFile, "log-file", "", "write logs to this file")

	rootCmd.AddCommand(newModelsCmd(a), newAskCmd(a))
	return rootCmd
}

// setup loads configuration in order: .env, YAML file, environment, flags.
func (a *app) setup(cmd *cobra.Command) error {
	var envErr error
	if a.envFile != "" {
		if err := config.LoadDotEnv(a.envFile); err != nil {
			return err
		}
	} else {
		envErr = config.LoadDotEnv()
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Provider = a.provider
		if !flags.Changed("model") {
			cfg.Model = ""
		}
	}
	if flags.Changed("model") {
		cfg.Model = a.model
	}
	if flags.Changed("system") {
		cfg.SystemPrompt = a.system
	}
	if flags.Changed("temperature") {
		cfg.Temperature = a.temperature
	}
	if flags.Changed("top-p") {
		cfg.TopP = a.topP
	}
	if flags.Changed("max-tokens") {
		cfg.MaxTokens = a.maxTokens
	}
	if a.plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		cfg.Plain = true
	}

	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	a.tui = cmd.Name() == "miochat" && !cfg.Plain

	a.logger, err = logging.New(logging.Options{
		Verbose: a.verbose,
		File:    a.logFile,
		Quiet:   a.tui,
	})
	if err != nil {
		return err
	}
	if envErr != nil {
		a.logger.Debug("no .env loaded", zap.Error(envErr))
	}

	a.logger.Debug("configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
		zap.Bool("tui", a.tui),
	)
	return nil
}

func (a *app) newSession() *session.Session {
	return session.New(a.cfg.Generation(), session.WithLogger(a.logger))
}

func (a *app) newRenderer() *render.Renderer {
	return render.New(render.Options{
		UserName:      a.cfg.UserName,
		AssistantName: a.cfg.AssistantName,
		Plain:         a.cfg.Plain,
	})
}

func (a *app) runInteractive(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	provider, err := providers.New(ctx, a.cfg.Provider, a.logger)
	if err != nil {
		return err
	}
	defer providers.Close(provider)

	sess := a.newSession()
	a.logger.Debug("chat session started", zap.String("session_id", sess.ID()))

	if a.tui {
		return tui.Run(ctx, sess, tui.Options{
			Provider: provider,
			Models:   a.cfg.AllowedModels(),
			Renderer: a.newRenderer(),
			Logger:   a.logger,
			Title:    fmt.Sprintf("miochat · %s", a.cfg.AssistantName),
		})
	}

	node := chat.NewChatNode(sess, provider, chat.NodeOptions{
		In:       cmd.InOrStdin(),
		Out:      cmd.OutOrStdout(),
		Models:   a.cfg.AllowedModels(),
		Renderer: a.newRenderer(),
		Logger:   a.logger,
		Welcome:  welcome(provider, a.cfg),
	})
	state, action := chat.Run(ctx, node)
	a.logger.Debug("chat session ended",
		zap.String("session_id", sess.ID()),
		zap.String("action", string(action)),
		zap.Int("exchanges", state.Exchanges),
		zap.Int("failures", state.Failures),
	)
	return nil
}

func welcome(provider llm.Provider, cfg *config.Config) string {
	return fmt.Sprintf("miochat (%s/%s). Type /help for commands or 'exit' to quit.", provider.Name(), cfg.Model)
}
