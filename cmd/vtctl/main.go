package main

import (
	"fmt"
	"os"

	"github.com/abdul-hamid-achik/videopipeline/internal/vtctl"
)

func main() {
	if err := vtctl.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
