package cmd

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/fiber/pkg/config"
)

func init() {
	RegisterCommand(&Command{
		Name:  "config",
		Short: "Print the resolved configuration",
		Long: `Print fiber.yaml as the runtime sees it, with every default applied.

Flags:
  --dir DIR   Directory to read fiber.yaml from (default: .)`,
		Usage: "fiber config [--dir DIR]",
		Run:   runConfig,
	})
}

func runConfig(args []string) error {
	dir := "."
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--dir":
			if i+1 >= len(args) {
				return fmt.Errorf("--dir requires a directory path")
			}
			dir = args[i+1]
			i++
		default:
			return fmt.Errorf("unexpected argument %q", args[i])
		}
	}
	cfg, err := config.Resolve(dir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = stdout.Write(data)
	return err
}
