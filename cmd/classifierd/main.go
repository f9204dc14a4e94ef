// Command classifierd is the daemon binary: C9 Supervisor/Main (spec.md
// §4.9). It parses flags, loads config, and hands off to pkg/supervisor,
// matching the thin-main shape of the teacher's cmd/host/main.go.
package main

import (
	"context"
	"os"

	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"
	"github.com/spf13/pflag"

	"github.com/classifierd/classifierd/pkg/config"
	"github.com/classifierd/classifierd/pkg/supervisor"
	"github.com/classifierd/classifierd/pkg/utils"
)

func main() {
	ctx := context.Background()

	debug := pflag.BoolP("debug", "v", false, "enable debug-level logging")
	configDir := pflag.String("config", "", "directory containing config.json (default: $CLASSIFIERD_CONFIG_DIR or /etc/classifierd)")
	pflag.Parse()

	dir := *configDir
	if dir == "" {
		if envDir := os.Getenv(config.ConfigDirEnvVar); envDir != "" {
			dir = envDir
		} else {
			dir = "/etc/classifierd"
		}
	}

	cfg, err := config.LoadConfig(dir)
	if err != nil {
		logger.L().Ctx(ctx).Fatal("load config error", helpers.Error(err))
	}
	if *debug {
		cfg.Debug = true
	}
	if cfg.Debug {
		if err := logger.L().SetLevel(helpers.DebugLevel.String()); err != nil {
			logger.L().Warning("could not set debug log level", helpers.Error(err))
		}
	}

	sup, err := supervisor.New(cfg)
	if err != nil {
		logger.L().Ctx(ctx).Error("initialization failed", helpers.Error(err))
		os.Exit(utils.ExitCodeArtifactLoad)
	}

	if err := sup.Run(ctx); err != nil {
		logger.L().Ctx(ctx).Error("supervisor exited with error", helpers.Error(err))
		os.Exit(utils.ExitCodeEventSocket)
	}

	os.Exit(utils.ExitCodeSuccess)
}
