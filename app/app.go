// Package app implements savetool, the command line tool to inspect and
// maintain save files.
package app

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/mzki/erasave/app/config"
	"github.com/mzki/erasave/infra/buildinfo"
	"github.com/mzki/erasave/infra/repo"
	"github.com/mzki/erasave/util/log"
)

const Name = "savetool"

const sessionKey = "session"

// NewApp creates savetool application writing its output into stdout and stderr.
func NewApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      Name,
		Usage:     "inspect and maintain save files",
		Version:   buildinfo.Get().String(),
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     globalFlags(),
		Commands: []*cli.Command{
			listCommand(),
			infoCommand(),
			verifyCommand(),
			catCommand(),
			removeCommand(),
			rotateCommand(),
			watchCommand(),
			exportCommand(),
			importCommand(),
			versionCommand(),
		},
		After: func(c *cli.Context) error {
			if s, ok := c.App.Metadata[sessionKey].(*session); ok {
				delete(c.App.Metadata, sessionKey)
				return s.Close()
			}
			return nil
		},
		// errors are reported by the caller.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "`FILE` to load configuration. Default one is generated if not exist",
			EnvVars: []string{"SAVETOOL_CONFIG"},
			Value:   config.ConfigFile,
		},
		&cli.StringFlag{
			Name:    "dir",
			Aliases: []string{"d"},
			Usage:   "save `DIR` overriding savefile_dir in the configuration",
		},
		&cli.StringFlag{
			Name:  "loglevel",
			Usage: "`LEVEL` of log output, info or debug",
		},
		&cli.StringFlag{
			Name:  "logfile",
			Usage: "`FILE` to write log. stdout or stderr is also OK",
		},
	}
}

// session holds resources opened for a command.
type session struct {
	config *config.Config
	repo   *repo.FileRepository
	reset  func()
}

func (s *session) Close() error {
	err := s.repo.Close()
	s.reset()
	return err
}

// openSession loads the configuration and opens the save repository.
// The session is closed after the command.
func openSession(c *cli.Context) (*session, error) {
	if s, ok := c.App.Metadata[sessionKey].(*session); ok {
		return s, nil
	}

	file := c.String("config")
	appConf, err := config.LoadConfigOrDefault(file)
	switch {
	case errors.Is(err, config.ErrDefaultConfigGenerated):
		fmt.Fprintf(c.App.ErrWriter, "Config file (%v) does not exist. Use default config and write it to file.\n", file)
	case err != nil:
		return nil, fmt.Errorf("load config %s: %w", file, err)
	}
	if err := applyFlags(c, appConf); err != nil {
		return nil, err
	}

	reset, err := config.SetupLogConfig(appConf)
	if err != nil {
		return nil, err
	}
	r, err := repo.NewFileRepository(nil, appConf.Save)
	if err != nil {
		reset()
		return nil, err
	}
	log.Debugf("%s: save directory %s, engine version %s", Name, r.Config().Dir(), r.RunningVersion())

	s := &session{config: appConf, repo: r, reset: reset}
	c.App.Metadata[sessionKey] = s
	return s, nil
}

// applyFlags overrides appConf by global flags.
func applyFlags(c *cli.Context, appConf *config.Config) error {
	if dir := c.String("dir"); dir != "" {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return err
		}
		appConf.Save.SaveFileDir = absDir
	}
	if level := c.String("loglevel"); level != "" {
		appConf.LogLevel = level
	}
	if file := c.String("logfile"); file != "" {
		appConf.LogFile = file
	}
	return nil
}
