package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/snonux/subtitlecsv/internal"
	"codeberg.org/snonux/subtitlecsv/internal/operator"
)

// CreateRootCommand creates and configures the root cobra command.
// launchGUI runs when no subcommand is given and for the gui subcommand.
func CreateRootCommand(flags *Flags, launchGUI func() error) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "subtitlecsv",
		Short: "Scene text and subtitle CSV exporter/importer",
		Long: `subtitlecsv moves on-screen text between a scene document and CSV files.

It exports all visible text objects in reading order, imports translated
text as duplicated objects, imports timed subtitles as camera-parented
text objects, and can translate the exported CSV through an LLM endpoint.

Examples:
  subtitlecsv                          # Launch interactive GUI (default)
  subtitlecsv scene init               # Create scene.db in the project directory
  subtitlecsv export                   # Write text_objects.csv
  subtitlecsv translate --dst-lang ja  # Write translated_text_objects.csv
  subtitlecsv import                   # Import translated_text_objects.csv
  subtitlecsv import-subs subs.csv     # Import animated subtitles`,
		Args:          cobra.NoArgs,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return launchGUI()
		},
	}

	setupFlags(rootCmd, flags)

	rootCmd.AddCommand(
		newOperatorCommand("export [csv]", "Export visible text objects to CSV", func(env operator.Env) operator.Operator {
			return operator.NewExportText(env)
		}),
		newOperatorCommand("import [csv]", "Import translated text objects from CSV", func(env operator.Env) operator.Operator {
			return operator.NewImportTranslation(env, operator.DefaultTranslationOptions())
		}),
		newOperatorCommand("import-subs [csv]", "Import animated subtitles from CSV", func(env operator.Env) operator.Operator {
			return operator.NewImportSubtitles(env, operator.DefaultSubtitleOptions())
		}),
		newTranslateCommand(flags),
		newListModelsCommand(flags),
		newSceneCommand(flags),
		&cobra.Command{
			Use:   "gui",
			Short: "Launch the interactive GUI",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return launchGUI()
			},
		},
	)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.subtitlecsv.yaml)")
	cmd.PersistentFlags().StringVarP(&flags.ProjectDir, "project", "p", flags.ProjectDir, "Project directory holding the scene document and CSV files")
	cmd.PersistentFlags().StringVar(&flags.ScenePath, "scene", "", "Scene document (default is scene.db in the project directory)")
	cmd.PersistentFlags().StringVar(&flags.Locale, "locale", "", "Report language, e.g. en or ja")

	viper.BindPFlag("project.directory", cmd.PersistentFlags().Lookup("project"))
	viper.BindPFlag("project.scene", cmd.PersistentFlags().Lookup("scene"))
	viper.BindPFlag("ui.locale", cmd.PersistentFlags().Lookup("locale"))
}

// bindSection binds each named flag to the viper key section.flag_name
func bindSection(fs *pflag.FlagSet, section string, names ...string) {
	for _, name := range names {
		viper.BindPFlag(section+"."+strings.ReplaceAll(name, "-", "_"), fs.Lookup(name))
	}
}

func newOperatorCommand(use, short string, newOp func(operator.Env) operator.Operator) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return runOperator(cmd.OutOrStdout(), newOp, path)
		},
	}
}

func newTranslateCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate an exported CSV through an LLM endpoint",
		Long: `translate sends the rows of an exported CSV to a chat model in batches,
with surrounding lines as context, and writes the translated CSV that the
import command reads. With --src-lang the result is translated back into
the source language so the meaning can be checked in the "Original Back"
column.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.SrcLang, "src-lang", "s", "", "Source language; enables back translation")
	cmd.Flags().StringVarP(&flags.DstLang, "dst-lang", "d", "", "Language to translate to (name or BCP 47 tag)")
	cmd.Flags().StringVar(&flags.Provider, "provider", flags.Provider, "LLM provider: openai (any compatible endpoint) or gemini")
	cmd.Flags().StringVarP(&flags.APIKey, "api-key", "a", "", "API key (default from OPENAI_API_KEY or GEMINI_API_KEY)")
	cmd.Flags().StringVarP(&flags.Model, "model", "m", "", "Model name (default gpt-4o-mini or gemini-2.0-flash)")
	cmd.Flags().StringVarP(&flags.Endpoint, "endpoint", "e", "", "OpenAI-compatible endpoint, e.g. http://127.0.0.1:8081/v1/chat/completions")
	cmd.Flags().StringVar(&flags.SystemPrompt, "system-prompt", "", "System prompt file (default is the built-in prompt)")
	cmd.Flags().StringVar(&flags.SrcCSV, "src-csv", "", "CSV to translate (default text_objects.csv in the project directory)")
	cmd.Flags().StringVar(&flags.DstCSV, "dst-csv", "", "Output CSV (default translated_text_objects.csv in the project directory)")
	cmd.Flags().IntVarP(&flags.BatchSize, "batch-size", "b", flags.BatchSize, "Lines per prompt")
	cmd.Flags().IntVar(&flags.PreCtx, "pre-ctx", flags.PreCtx, "Preceding lines sent as context")
	cmd.Flags().IntVar(&flags.PosCtx, "pos-ctx", flags.PosCtx, "Following lines sent as context")
	cmd.Flags().StringVarP(&flags.LLMOptions, "llm-options", "l", "", "JSON file with temperature, top_p, max_tokens, seed, stop")
	cmd.Flags().IntVar(&flags.TimeoutSecs, "timeout-secs", flags.TimeoutSecs, "Timeout per prompt in seconds (0 disables)")
	cmd.Flags().StringVar(&flags.ErrorLog, "error-log", flags.ErrorLog, "File receiving invalid replies and their prompts")
	cmd.Flags().BoolVar(&flags.Debug, "debug", false, "Print prompts and replies")

	bindSection(cmd.Flags(), "translate",
		"src-lang", "dst-lang", "provider", "model", "endpoint", "system-prompt",
		"batch-size", "pre-ctx", "pos-ctx", "llm-options", "timeout-secs", "error-log")

	return cmd
}

func newListModelsCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-models",
		Short: "List chat models available at the translation endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListModels(cmd.Context(), cmd.OutOrStdout(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.Provider, "provider", flags.Provider, "LLM provider: openai or gemini")
	cmd.Flags().StringVarP(&flags.APIKey, "api-key", "a", "", "API key (default from OPENAI_API_KEY or GEMINI_API_KEY)")
	cmd.Flags().StringVarP(&flags.Endpoint, "endpoint", "e", "", "OpenAI-compatible endpoint")

	return cmd
}

func newSceneCommand(flags *Flags) *cobra.Command {
	sceneCmd := &cobra.Command{
		Use:   "scene",
		Short: "Manage the scene document",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a scene document with a camera, the subtitle action and the default font",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSceneInit(cmd.OutOrStdout(), flags.Force)
		},
	}
	initCmd.Flags().BoolVar(&flags.Force, "force", false, "Replace an existing document (the old one is archived)")

	sceneCmd.AddCommand(initCmd)
	return sceneCmd
}
