// package log defines strict logger types, which is referenced from
// https://dave.cheney.net/2015/11/05/lets-talk-about-logging.
//
// Only two levels exist. Info is for things users of the tool care about,
// Debug is for things developers care about.
package log

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

const (
	InfoLevel  = iota // output only Info*
	DebugLevel        // output all, Info* and Debug*
)

// DebugPrefix is placed between the logger prefix and the text of Debug* output.
const DebugPrefix = "DEBUG: "

// ErrOutputDiscardedByLevel indicates log output is discarded by different level, e.g. Debug() with info level.
var ErrOutputDiscardedByLevel = errors.New("log output discarded by different log level")

// ParseLevel converts level name, info or debug, into level value.
func ParseLevel(name string) (int, error) {
	switch strings.ToLower(name) {
	case "", "info":
		return InfoLevel, nil
	case "debug":
		return DebugLevel, nil
	default:
		return InfoLevel, fmt.Errorf("log: unknown level %q", name)
	}
}

// Logger has only 2 levels, info and debug.
// Output errors are not returned, the latest one is kept
// and can be retrived later from Err().
type Logger struct {
	logger *log.Logger

	mu    sync.Mutex
	level int
	err   error
}

// New constructs Logger with InfoLevel.
func New(out io.Writer, prefix string, flag int) *Logger {
	return &Logger{logger: log.New(out, prefix, flag), level: InfoLevel}
}

func (l *Logger) output(calldepth int, debug bool, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if debug {
		if l.level < DebugLevel {
			l.err = ErrOutputDiscardedByLevel
			return
		}
		msg = DebugPrefix + msg
	}
	l.err = l.logger.Output(calldepth+1, msg)
}

func (l *Logger) Info(v ...interface{})                 { l.output(2, false, fmt.Sprint(v...)) }
func (l *Logger) Infoln(v ...interface{})               { l.output(2, false, fmt.Sprintln(v...)) }
func (l *Logger) Infof(format string, v ...interface{}) { l.output(2, false, fmt.Sprintf(format, v...)) }

func (l *Logger) Debug(v ...interface{})   { l.output(2, true, fmt.Sprint(v...)) }
func (l *Logger) Debugln(v ...interface{}) { l.output(2, true, fmt.Sprintln(v...)) }
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.output(2, true, fmt.Sprintf(format, v...))
}

func (l *Logger) SetOutput(w io.Writer) { l.logger.SetOutput(w) }

// set logging level.
func (l *Logger) SetLevel(level int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// return current logging level.
func (l *Logger) Level() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *Logger) SetFlags(flag int)       { l.logger.SetFlags(flag) }
func (l *Logger) SetPrefix(prefix string) { l.logger.SetPrefix(prefix) }

// Err returns the result of the last output.
// It is ErrOutputDiscardedByLevel when the last output is discarded by level.
func (l *Logger) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

const (
	// These flags are same as log package's.
	Ldate         = log.Ldate
	Ltime         = log.Ltime
	Lmicroseconds = log.Lmicroseconds
	Lshortfile    = log.Lshortfile
	LstdFlags     = log.LstdFlags
)

var std = New(os.Stdout, "", LstdFlags)

// Default returns the logger used by package level functions.
func Default() *Logger { return std }

func Info(v ...interface{})                 { std.output(2, false, fmt.Sprint(v...)) }
func Infoln(v ...interface{})               { std.output(2, false, fmt.Sprintln(v...)) }
func Infof(format string, v ...interface{}) { std.output(2, false, fmt.Sprintf(format, v...)) }

func Debug(v ...interface{})                 { std.output(2, true, fmt.Sprint(v...)) }
func Debugln(v ...interface{})               { std.output(2, true, fmt.Sprintln(v...)) }
func Debugf(format string, v ...interface{}) { std.output(2, true, fmt.Sprintf(format, v...)) }

func SetOutput(w io.Writer) { std.SetOutput(w) }
func SetLevel(level int)    { std.SetLevel(level) }
func Level() int            { return std.Level() }
func SetFlags(flag int)     { std.SetFlags(flag) }
func SetPrefix(p string)    { std.SetPrefix(p) }
func Err() error            { return std.Err() }
