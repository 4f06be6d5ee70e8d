package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dherrin/packetd/internal/core/app"
	"github.com/dherrin/packetd/internal/core/config"
)

var (
	cfgFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "packetd",
		Short: "packetd is a connectionless UDP packet server",
		Run:   run,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Run:   showConfig,
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) {
	application, err := app.New(cfgFile)
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		os.Exit(1)
	}
}

func showConfig(cmd *cobra.Command, args []string) {
	m := config.NewManager(cfgFile)
	if err := m.Load(); err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	out, err := yaml.Marshal(m.GetConfig())
	if err != nil {
		fmt.Printf("Failed to render config: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(string(out))
}
