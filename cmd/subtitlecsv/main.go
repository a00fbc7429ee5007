package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/subtitlecsv/internal/cli"
	"codeberg.org/snonux/subtitlecsv/internal/gui"
)

func main() {
	flags := cli.NewFlags()

	rootCmd := cli.CreateRootCommand(flags, func() error {
		app := gui.New(&gui.Config{
			ProjectDir: cli.ProjectDir(),
			ScenePath:  cli.ScenePath(),
			Locale:     viper.GetString("ui.locale"),
		})
		return app.Run()
	})

	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Ctrl-C cancels a running translation
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
