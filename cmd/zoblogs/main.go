package main

import (
	"flag"
	"fmt"
	"os"
	"zoblogs/internal/di"
	"zoblogs/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config/config.yaml", "path to the yaml config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "mirror logs to stderr")
	flag.Parse()

	_, cleanup, err := di.InitApp(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "zoblogs: %s\n", err)
		os.Exit(1)
	}
	cleanup()
}
