// Command vfsim runs the interactive virtual-filesystem shell.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vfsim/config"
	"vfsim/internal/cli"
	"vfsim/internal/util"
	"vfsim/internal/vfs"
)

func main() {
	var (
		configPath string
		verbose    int
	)
	flag.StringVar(&configPath, "config", "", "Path to a YAML or JSON config override file")
	flag.StringVar(&configPath, "c", "", "--config (shorthand)")
	flag.IntVar(&verbose, "verbose", 3, "Log verbosity level between 1 (error) and 5 (trace). Default is 3 (info).")
	flag.IntVar(&verbose, "v", 3, "--verbose (shorthand)")
	flag.Parse()

	if verbose < 1 {
		verbose = 1
	}
	if verbose > 5 {
		verbose = 5
	}
	logLvls := [5]util.LogLevel{util.ErrorLevel, util.WarnLevel, util.InfoLevel, util.DebugLevel, util.TraceLevel}
	logLvl := logLvls[verbose-1]
	util.InitializeLogger(logLvl)
	logger := util.GetLogger("main")

	var cfg *config.Config
	if configPath != "" {
		loaded, err := config.NewConfigFromFile(configPath)
		if err != nil {
			logger.Fatal().Err(err).Str("config", configPath).Msg("Failed to load config file")
		}
		cfg = loaded
	} else {
		cfg = config.NewDefaultConfig()
	}
	logger.Info().
		Int("branchingFactor", cfg.BranchingFactor).
		Int("streamWindow", cfg.StreamWindow).
		Msg("vfsim initializing")

	v := vfs.New(cfg.BranchingFactor, cfg.StreamWindow, func() int64 { return time.Now().Unix() }, util.GetLogger("vfs"))

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-signalChan
		logger.Info().Str("signal", sig.String()).Msg("received signal, exiting")
		os.Exit(0)
	}()

	shell := cli.New(v, os.Stdin, os.Stdout, util.GetLogger("cli"))
	os.Exit(shell.Run())
}
