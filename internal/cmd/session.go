package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/runger/git-utils/internal/config"
	"github.com/runger/git-utils/internal/git"
	"github.com/runger/git-utils/internal/logging"
)

// session bundles what every git-facing command needs: the loaded config,
// a logger and a Repo for the working directory.
type session struct {
	cfg     *config.Config
	paths   *config.Paths
	logger  *slog.Logger
	repo    *git.Repo
	closers []io.Closer
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, cfgFile, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	s := &session{cfg: cfg, paths: config.DefaultPaths(), logger: logging.Discard()}
	if logEnabled {
		if err := s.openLog(); err != nil {
			return nil, err
		}
	}

	argv, err := cfg.GitArgv()
	if err != nil {
		s.close()
		return nil, fmt.Errorf("invalid git.command: %w", err)
	}
	s.repo = git.New(workingDir, git.WithCommand(argv), git.WithLogger(s.logger))

	wd := workingDir
	if wd == "" {
		wd, _ = os.Getwd()
	}
	logging.LogInvocation(s.logger, logging.InvocationInfo{
		Version:    Version,
		Command:    cmd.CommandPath(),
		WorkDir:    wd,
		ConfigPath: cfgFile,
		PID:        os.Getpid(),
	})
	return s, nil
}

func (s *session) openLog() error {
	level, err := logging.ParseLevel(s.cfg.Log.Level)
	if err != nil {
		return err
	}
	path := s.cfg.Log.File
	if path == "" {
		path = s.paths.LogFile()
	}
	logger, closer, err := logging.OpenFile(path, level)
	if err != nil {
		return err
	}
	s.logger = logger
	s.closers = append(s.closers, closer)
	return nil
}

func (s *session) close() {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	if err := errors.Join(errs...); err != nil {
		fmt.Fprintf(os.Stderr, "git-utils: close log: %v\n", err)
	}
}
