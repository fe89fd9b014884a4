package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mzki/erasave/filesystem"
	"github.com/mzki/erasave/infra/buildinfo"
	"github.com/mzki/erasave/save"
)

// ErrVerifyFailed is returned by verify when any save can not be loaded.
var ErrVerifyFailed = errors.New("some saves can not be loaded")

const timeFormat = "2006-01-02 15:04:05"

// requireArgs checks number of positional arguments.
func requireArgs(c *cli.Context, n int, usage string) error {
	if c.NArg() < n {
		return fmt.Errorf("%s: missing arguments, usage: %s %s", c.Command.Name, c.Command.Name, usage)
	}
	return nil
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List saves, newest first",
		Action: func(c *cli.Context) error {
			s, err := openSession(c)
			if err != nil {
				return err
			}
			summaries, err := s.repo.List(c.Context)
			if err != nil {
				return err
			}
			t := newTable("NAME", "KIND", "VERSION", "SIZE", "MODIFIED", "STATUS")
			for _, sm := range summaries {
				kind, version, status := "-", "-", errorStatus(sm.Err)
				if sm.Info != nil {
					kind, version = sm.Info.Kind.String(), sm.Info.EngineVersion
					if !s.repo.Compatible(version) {
						status = "incompatible"
					}
				}
				t.Add(sm.Name, kind, version, strconv.FormatInt(sm.Size, 10), sm.ModTime.Format(timeFormat), status)
			}
			return t.Write(c.App.Writer)
		},
	}
}

// errorStatus returns short description of the save error.
func errorStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, save.ErrIncompatibleVersion):
		return "incompatible"
	case errors.Is(err, save.ErrCorruptArchive):
		return "corrupt"
	case errors.Is(err, save.ErrNotFound):
		return "not found"
	case errors.Is(err, save.ErrInvalidName):
		return "invalid name"
	default:
		return "io error"
	}
}

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Show metadata of a save",
		ArgsUsage: "NAME",
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1, "NAME"); err != nil {
				return err
			}
			s, err := openSession(c)
			if err != nil {
				return err
			}
			md, err := s.repo.LoadMetadata(c.Context, c.Args().First())
			if err != nil {
				return err
			}
			t := newTable()
			t.Add("name:", c.Args().First())
			t.Add("engine version:", md.EngineVersion)
			t.Add("running version:", s.repo.RunningVersion())
			t.Add("compatible:", strconv.FormatBool(s.repo.Compatible(md.EngineVersion)))
			t.Add("platform:", md.Platform)
			t.Add("creator:", md.Creator)
			t.Add("kind:", md.Kind.String())
			return t.Write(c.App.Writer)
		},
	}
}

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Load saves fully to check they can be loaded by the running engine. All saves if no NAME given",
		ArgsUsage: "[NAME...]",
		Action: func(c *cli.Context) error {
			s, err := openSession(c)
			if err != nil {
				return err
			}
			names := c.Args().Slice()
			if len(names) == 0 {
				summaries, err := s.repo.List(c.Context)
				if err != nil {
					return err
				}
				for _, sm := range summaries {
					names = append(names, sm.Name)
				}
			}

			failed := 0
			for _, name := range names {
				if _, err := s.repo.LoadFromFile(c.Context, name); err != nil {
					failed++
					fmt.Fprintf(c.App.Writer, "%s: %s: %v\n", name, errorStatus(err), err)
					continue
				}
				fmt.Fprintf(c.App.Writer, "%s: ok\n", name)
			}
			if failed > 0 {
				return fmt.Errorf("verify: %d of %d: %w", failed, len(names), ErrVerifyFailed)
			}
			return nil
		},
	}
}

func catCommand() *cli.Command {
	return &cli.Command{
		Name:      "cat",
		Usage:     "Print raw content of an entry in a save, e.g. " + save.InfoEntryName,
		ArgsUsage: "NAME ENTRY",
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 2, "NAME ENTRY"); err != nil {
				return err
			}
			s, err := openSession(c)
			if err != nil {
				return err
			}
			data, err := s.repo.ReadEntry(c.Context, c.Args().Get(0), c.Args().Get(1))
			if err != nil {
				return err
			}
			if _, err := c.App.Writer.Write(data); err != nil {
				return err
			}
			if !bytes.HasSuffix(data, []byte("\n")) {
				_, err = io.WriteString(c.App.Writer, "\n")
			}
			return err
		},
	}
}

func removeCommand() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Aliases:   []string{"rm"},
		Usage:     "Remove saves",
		ArgsUsage: "NAME...",
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1, "NAME..."); err != nil {
				return err
			}
			s, err := openSession(c)
			if err != nil {
				return err
			}
			for _, name := range c.Args().Slice() {
				if err := s.repo.Remove(c.Context, name); err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "removed %s\n", name)
			}
			return nil
		},
	}
}

func rotateCommand() *cli.Command {
	kinds := make([]string, 0, 2)
	for _, k := range save.Kinds() {
		if k != save.Manual {
			kinds = append(kinds, k.String())
		}
	}
	return &cli.Command{
		Name:      "rotate",
		Usage:     "Remove old saves of KIND exceeding the limit, KIND is one of " + strings.Join(kinds, ", "),
		ArgsUsage: "KIND",
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1, "KIND"); err != nil {
				return err
			}
			kind, err := save.ParseKind(c.Args().First())
			if err != nil {
				return err
			}
			s, err := openSession(c)
			if err != nil {
				return err
			}
			removed, err := s.repo.Rotate(c.Context, kind)
			for _, name := range removed {
				fmt.Fprintf(c.App.Writer, "removed %s\n", name)
			}
			return err
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Print changes of saves until interrupted",
		Action: func(c *cli.Context) error {
			s, err := openSession(c)
			if err != nil {
				return err
			}
			events, err := s.repo.Watch(c.Context)
			if err != nil {
				return err
			}
			for ev := range events {
				fmt.Fprintf(c.App.Writer, "%s %-6s %s\n", time.Now().Format(timeFormat), ev.Op, ev.Name)
			}
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export saves into a zip bundle. All readable saves if no NAME given",
		ArgsUsage: "FILE [NAME...]",
		Action: func(c *cli.Context) (err error) {
			if err := requireArgs(c, 1, "FILE [NAME...]"); err != nil {
				return err
			}
			s, err := openSession(c)
			if err != nil {
				return err
			}
			fp, err := filesystem.Store(c.Args().First())
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, fp.Close())
			}()
			exported, err := s.repo.Export(c.Context, fp, c.Args().Tail()...)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "exported %d saves into %s\n", len(exported), c.Args().First())
			return nil
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import saves from a zip bundle",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "overwrite",
				Usage: "overwrite existing saves",
			},
		},
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1, "FILE"); err != nil {
				return err
			}
			s, err := openSession(c)
			if err != nil {
				return err
			}
			data, err := readAll(c.Args().First())
			if err != nil {
				return err
			}
			imported, err := s.repo.Import(c.Context, bytes.NewReader(data), int64(len(data)), c.Bool("overwrite"))
			for _, name := range imported {
				fmt.Fprintf(c.App.Writer, "imported %s\n", name)
			}
			return err
		},
	}
}

func readAll(file string) ([]byte, error) {
	r, err := filesystem.Load(file)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version of the running engine",
		Action: func(c *cli.Context) error {
			_, err := fmt.Fprintln(c.App.Writer, buildinfo.Get().String())
			return err
		},
	}
}
