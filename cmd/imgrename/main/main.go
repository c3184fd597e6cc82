package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/imgrename/cmd/imgrename"
	"github.com/arthur-debert/imgrename/pkg/style"
)

func main() {
	rootCmd := imgrename.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, style.NewRenderer(os.Stderr).RenderError(err))
		os.Exit(1)
	}
}
