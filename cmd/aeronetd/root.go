package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile     string
	staticRoot  string
	staticIndex string
	listenAddr  string
	listenName  string
	maxFDs      int
)

var rootCmd = &cobra.Command{
	Use:   "aeronetd",
	Short: "Serve a directory over HTTP/1.1 and HTTP/2",
	Long: "aeronetd is a demo embedder of the aeronet server: it loads a listener\n" +
		"configuration and serves a static-file root through it.",
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./aeronetd.yaml)")
	rootCmd.PersistentFlags().StringVar(&staticRoot, "static-root", ".", "directory to serve")
	rootCmd.PersistentFlags().StringVar(&staticIndex, "static-index", "index.html", "default index file name")
	rootCmd.PersistentFlags().StringVar(&listenAddr, "listen", ":8080", "address to bind")
	rootCmd.PersistentFlags().StringVar(&listenName, "name", "aeronetd", "listener name")
	rootCmd.PersistentFlags().IntVar(&maxFDs, "max-fds", 0, "raise the process file descriptor limit to at least this value (0 leaves it untouched)")

	_ = viper.BindPFlag("static_root", rootCmd.PersistentFlags().Lookup("static-root"))
	_ = viper.BindPFlag("static_index", rootCmd.PersistentFlags().Lookup("static-index"))
	_ = viper.BindPFlag("listener.listen", rootCmd.PersistentFlags().Lookup("listen"))
	_ = viper.BindPFlag("listener.name", rootCmd.PersistentFlags().Lookup("name"))
	_ = viper.BindPFlag("max_fds", rootCmd.PersistentFlags().Lookup("max-fds"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configInitCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("aeronetd")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("AERONETD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintln(os.Stderr, "aeronetd: reading config:", err)
		}
	}
}

// Execute runs the root command, exiting the process on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
