// Package cli provides command-line interface setup and configuration
// for subtitlecsv. It builds the cobra command tree, binds flags to viper
// configuration, and runs the scene operators and the translator.
package cli
