package main

import (
	"fmt"
	"os"

	"github.com/akyairhashvil/roadmap/internal/tui"
)

func main() {
	if err := newRootCmd(tui.AppVersion).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
