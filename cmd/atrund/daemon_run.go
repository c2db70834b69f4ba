package main

import (
	"fmt"
	"os"
	"os/signal"
	"os/user"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"atrund/internal/config"
	"atrund/internal/daemon"
	"atrund/internal/executor"
	"atrund/internal/logging"
	"atrund/internal/preflight"
	"atrund/internal/privs"
	"atrund/internal/scan"
	"atrund/internal/sched"
)

func runDaemon(cmd *cobra.Command, flags *rootFlags) error {
	cfg, _, _, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	applyOverrides(cmd, flags, cfg)

	if flags.debug {
		cfg.Logging.Level = "debug"
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	manager, err := dropToServiceIdentity(cfg)
	if err != nil {
		return err
	}

	for _, result := range preflight.RunAll(cfg) {
		if !result.Passed {
			logger.Warn("preflight check failed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail),
			)
		}
	}

	// The spool is the daemon's working directory.
	if err := os.Chdir(cfg.Paths.JobDir); err != nil {
		return fmt.Errorf("chdir to spool %s: %w", cfg.Paths.JobDir, err)
	}

	exec := executor.New(executor.Options{
		JobDir:       cfg.Paths.JobDir,
		OutputDir:    cfg.Paths.OutputDir,
		Sendmail:     cfg.Daemon.Sendmail,
		LoginNameMax: cfg.Daemon.LoginNameMax,
		Privs:        manager,
		Logger:       logger,
	})
	scanner := scan.New(cfg.Paths.JobDir, exec, logger)
	scheduler := sched.New(
		time.Duration(cfg.Daemon.BatchInterval)*time.Second,
		cfg.Daemon.LoadLimit,
		sched.SysinfoSampler{Privs: manager},
		logger,
	)

	d, err := daemon.New(cfg, scanner, scheduler, exec, logger)
	if err != nil {
		return err
	}

	if flags.oneShot {
		return d.RunOnce()
	}

	// Detaching is the service manager's business; -d and -f are accepted
	// for interactive runs. -d only raises the log level; -f has no effect.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return d.Run(ctx)
}

// applyOverrides folds the -l and -b flags over the loaded configuration.
func applyOverrides(cmd *cobra.Command, flags *rootFlags, cfg *config.Config) {
	if cmd.Flags().Changed("loadavg") {
		cfg.Daemon.LoadLimit = flags.loadLimit
		if cfg.Daemon.LoadLimit <= 0 {
			cfg.Daemon.LoadLimit = config.Default().Daemon.LoadLimit
		}
	}
	if cmd.Flags().Changed("batch-interval") && flags.batchInterval > 0 {
		cfg.Daemon.BatchInterval = flags.batchInterval
	}
}

// dropToServiceIdentity resolves the configured service user and group and
// drops to them, keeping saved root for the executor's elevated sections.
func dropToServiceIdentity(cfg *config.Config) (*privs.Manager, error) {
	pw, err := user.Lookup(cfg.Daemon.User)
	if err != nil {
		return nil, fmt.Errorf("cannot get uid for %s: %w", cfg.Daemon.User, err)
	}
	gr, err := user.LookupGroup(cfg.Daemon.Group)
	if err != nil {
		return nil, fmt.Errorf("cannot get gid for %s: %w", cfg.Daemon.Group, err)
	}
	uid, err := strconv.Atoi(pw.Uid)
	if err != nil {
		return nil, fmt.Errorf("parse service uid %q: %w", pw.Uid, err)
	}
	gid, err := strconv.Atoi(gr.Gid)
	if err != nil {
		return nil, fmt.Errorf("parse service gid %q: %w", gr.Gid, err)
	}
	return privs.Drop(uid, gid)
}
