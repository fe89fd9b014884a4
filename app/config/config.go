// Package config defines the configuration file of savetool.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mzki/erasave/filesystem"
	"github.com/mzki/erasave/infra/repo"
	"github.com/mzki/erasave/infra/serialize/toml"
	"github.com/mzki/erasave/util/log"
)

const (
	// default configuration file.
	ConfigFile = "savetool.conf"

	DefaultBaseDir = "./"

	LogFileStdOut  = "stdout" // specify log outputs to stdout
	LogFileStdErr  = "stderr" // specify log outputs to stderr
	DefaultLogFile = LogFileStdErr

	LogLevelInfo    = "info"  // logging only information level.
	LogLevelDebug   = "debug" // logging all levels, debug and info.
	DefaultLogLevel = LogLevelInfo
)

// Configure for the Applicaltion.
// To build this, use NewConfig instead of struct constructor, Config{}.
type Config struct {
	LogFile  string `toml:"logfile"`
	LogLevel string `toml:"loglevel"`

	Save repo.Config `toml:"save"`
}

// return default config. if baseDir is empty
// use default insteadly. Relative paths in the config are resolved
// under baseDir.
func NewConfig(baseDir string) *Config {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	return &Config{
		LogFile:  DefaultLogFile,
		LogLevel: DefaultLogLevel,
		Save:     repo.NewConfig(baseDir),
	}
}

// ErrDefaultConfigGenerated implies that the specified config file is not found,
// and intead of that default config is generated and used.
var ErrDefaultConfigGenerated error = errors.New("default config generated")

// if config file exists load it and return.
// if not exists return default config and write it.
// The directory of the file is used as the base directory.
func LoadConfigOrDefault(file string) (*Config, error) {
	baseDir := filepath.Dir(file)
	if !filesystem.Exist(file) {
		appConf := NewConfig(baseDir)
		// write default config
		if err := toml.EncodeFile(file, appConf); err != nil {
			return nil, err
		}
		return appConf, ErrDefaultConfigGenerated
	}

	appConf := NewConfig(baseDir) // default value will be remain when missing at decoded config.
	if err := toml.DecodeFile(file, appConf); err != nil {
		return nil, err
	}
	return appConf, nil
}

// set up log configuration and return finalize function with internal error.
// when returned error, the finalize function is nil and need not be called.
func SetupLogConfig(appConf *Config) (func(), error) {
	level, err := log.ParseLevel(appConf.LogLevel)
	if err != nil {
		log.Infof("unknown log level(%s). use 'info' level insteadly.", appConf.LogLevel)
	}
	log.SetLevel(level)

	// set log distination
	var (
		dstString string
		writer    io.Writer
		closeFunc func()
	)
	switch logfile := appConf.LogFile; logfile {
	case LogFileStdOut:
		dstString = "Stdout"
		writer = os.Stdout
		closeFunc = func() {}
	case LogFileStdErr, "":
		dstString = "Stderr"
		writer = os.Stderr
		closeFunc = func() {}
	default:
		dstString = logfile
		fp, err := filesystem.Store(logfile)
		if err != nil {
			return nil, err
		}
		writer = fp
		closeFunc = func() { fp.Close() }
	}
	log.SetOutput(writer)
	if err := testingLogOutput("log output sanity check..."); err != nil {
		closeFunc()
		log.SetOutput(os.Stderr)
		return nil, err
	}
	log.Debugf("Output log to %s", dstString)

	reset := func() {
		log.SetOutput(os.Stderr)
		closeFunc()
	}
	return reset, nil
}

func testingLogOutput(msg string) error {
	log.Debug(msg)
	err := log.Err()
	switch {
	case errors.Is(err, log.ErrOutputDiscardedByLevel):
	case errors.Is(err, io.EOF):
	case err == nil:
	default:
		return fmt.Errorf("log output error: %w", err)
	}
	return nil // normal operation
}
