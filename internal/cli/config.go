package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"codeberg.org/snonux/subtitlecsv/internal"
)

// InitConfig initializes viper configuration. A .env file in the working
// directory is loaded into the environment first.
func InitConfig(cfgFile string) {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".subtitlecsv" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".subtitlecsv")
	}

	// Environment variables
	viper.SetEnvPrefix("SUBTITLECSV")
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetAPIKey returns the API key for provider. An explicit flag value wins,
// then the provider's environment variable, then the config file.
func GetAPIKey(provider, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}

	envVar := "OPENAI_API_KEY"
	if provider == "gemini" {
		envVar = "GEMINI_API_KEY"
	}
	if key := os.Getenv(envVar); key != "" {
		return key
	}

	return viper.GetString("translate.api_key")
}

// ProjectDir returns the configured project directory
func ProjectDir() string {
	if dir := viper.GetString("project.directory"); dir != "" {
		return dir
	}
	return "."
}

// ScenePath returns the configured scene document path
func ScenePath() string {
	return internal.ResolvePath(ProjectDir(), viper.GetString("project.scene"), internal.SceneFileName)
}
