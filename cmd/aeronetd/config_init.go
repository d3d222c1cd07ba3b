package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sjanel/aeronet-go/config"
)

var configInitOut string

var configInitCmd = &cobra.Command{
	Use:   "config-init",
	Short: "Write a starter aeronetd.yaml with sane listener defaults",
	RunE:  runConfigInit,
}

func init() {
	configInitCmd.Flags().StringVar(&configInitOut, "out", "aeronetd.yaml", "path to write")
}

// starterConfig is the YAML document shape: a "listener" key holding
// config.ListenerConfig plus the two static-handler knobs serve.go reads
// back out of viper under their own top-level keys.
type starterConfig struct {
	Listener    config.ListenerConfig `yaml:"listener"`
	StaticRoot  string                `yaml:"static_root"`
	StaticIndex string                `yaml:"static_index"`
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	cfg := config.DefaultListenerConfig()
	cfg.Name = "aeronetd"
	cfg.Listen = ":8080"

	doc := starterConfig{
		Listener:    cfg,
		StaticRoot:  ".",
		StaticIndex: "index.html",
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("aeronetd: marshaling starter config: %w", err)
	}

	if err := os.WriteFile(configInitOut, out, 0o644); err != nil {
		return fmt.Errorf("aeronetd: writing %s: %w", configInitOut, err)
	}

	fmt.Printf("wrote %s\n", configInitOut)
	return nil
}
