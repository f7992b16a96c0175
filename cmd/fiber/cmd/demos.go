package cmd

import (
	"fmt"

	"github.com/go-drift/fiber/cmd/fiber/internal/demo"
)

func init() {
	RegisterCommand(&Command{
		Name:  "demos",
		Short: "List the bundled demos",
		Long:  "List the demos accepted by fiber run.",
		Usage: "fiber demos",
		Run: func([]string) error {
			for _, d := range demo.All() {
				fmt.Fprintf(stdout, "  %-10s %s\n", d.Name, d.Short)
			}
			return nil
		},
	})
}
