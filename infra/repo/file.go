// Package repo persists saves as compressed archive files.
package repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/mzki/erasave/filesystem"
	"github.com/mzki/erasave/infra/archive"
	"github.com/mzki/erasave/infra/script"
	"github.com/mzki/erasave/save"
	"github.com/mzki/erasave/util/log"
)

var (
	errMissingVersion = errors.New("metadata has no engine version")
	errMissingInfo    = fmt.Errorf("missing entry %s", save.InfoEntryName)
	errMissingSave    = fmt.Errorf("missing entry %s", save.SaveEntryName)
	errNotRegular     = errors.New("not a regular file")
)

// implements save.Repository
type FileRepository struct {
	fsys    filesystem.FileSystem
	config  Config
	policy  save.VersionPolicy
	running string
	cache   *metadataCache
	opts    []archive.Option
}

// Option configures FileRepository.
type Option func(*FileRepository)

// WithVersionPolicy overrides the version policy named in Config.
func WithVersionPolicy(p save.VersionPolicy) Option {
	return func(repo *FileRepository) { repo.policy = p }
}

// WithArchiveOptions appends options passed to the archive codec,
// e.g. archive.WithClock.
func WithArchiveOptions(opts ...archive.Option) Option {
	return func(repo *FileRepository) { repo.opts = append(repo.opts, opts...) }
}

// NewFileRepository creates FileRepository storing saves into
// config.Dir() on fsys. nil fsys means filesystem.Default.
// Close must be called after use.
func NewFileRepository(fsys filesystem.FileSystem, config Config, opts ...Option) (*FileRepository, error) {
	if fsys == nil {
		fsys = filesystem.Default
	}
	repo := &FileRepository{
		fsys:    fsys,
		config:  config,
		running: config.RunningVersion(),
		cache:   newMetadataCache(config.MetadataCacheSize),
		opts:    config.archiveOptions(),
	}
	for _, opt := range opts {
		opt(repo)
	}
	if repo.policy == nil {
		p, err := newVersionPolicy(fsys, config)
		if err != nil {
			return nil, err
		}
		repo.policy = p
	}
	return repo, nil
}

func newVersionPolicy(fsys filesystem.FileSystem, config Config) (save.VersionPolicy, error) {
	if config.VersionPolicy != PolicyScript {
		return save.PolicyByName(config.VersionPolicy)
	}
	if config.PolicyScript == "" {
		return nil, errors.New("repo: version_policy is script but policy_script is empty")
	}
	return script.LoadLuaPolicy(fsys, config.policyScriptPath())
}

// Close releases the version policy.
func (repo *FileRepository) Close() error {
	if c, ok := repo.policy.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Config returns the config used by the repository.
func (repo *FileRepository) Config() Config { return repo.config }

// RunningVersion returns the engine version which saves are checked against.
func (repo *FileRepository) RunningVersion() string { return repo.running }

// Compatible reports whether a save made by engine version saved can be
// loaded by the running engine.
func (repo *FileRepository) Compatible(saved string) bool {
	return save.Check(repo.policy, saved, repo.running)
}

func (repo *FileRepository) Exist(ctx context.Context, name string) bool {
	if ctx.Err() != nil {
		return false
	}
	name, err := ValidateName(name)
	if err != nil {
		return false
	}
	info, err := repo.fsys.Stat(repo.config.savePath(name))
	return err == nil && info.Mode().IsRegular()
}

// SaveToFile writes s into the file named s.Name under the save directory.
// Empty engine version in s.Info is filled with the running version.
// s is not modified.
func (repo *FileRepository) SaveToFile(ctx context.Context, s *save.Save) error {
	const op = "save"
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil {
		return save.NewError(save.ErrInvalidPayload, op, "", errors.New("nil save"))
	}
	name, err := ValidateName(s.Name)
	if err != nil {
		return save.NewError(save.ErrInvalidName, op, s.Name, err)
	}

	snapshot := *s // shallow copy, payload is not modified.
	snapshot.Name = name
	if snapshot.Info.EngineVersion == "" {
		snapshot.Info.EngineVersion = repo.running
	}
	if !snapshot.Info.Kind.IsValid() {
		return save.NewError(save.ErrInvalidPayload, op, name, fmt.Errorf("unknown save kind %v", snapshot.Info.Kind))
	}
	if !snapshot.ValidPayload() {
		return save.NewError(save.ErrInvalidPayload, op, name, errors.New("saved properties is not valid JSON"))
	}
	snapshot.Normalize()

	infoJSON, err := encodeJSON(&snapshot.Info)
	if err != nil {
		return save.NewError(save.ErrIO, op, name, fmt.Errorf("encode %s: %w", save.InfoEntryName, err))
	}
	saveJSON, err := encodeJSON(&snapshot)
	if err != nil {
		return save.NewError(save.ErrIO, op, name, fmt.Errorf("encode %s: %w", save.SaveEntryName, err))
	}

	if err := repo.ensureDir(); err != nil {
		return save.NewError(save.ErrIO, op, name, err)
	}

	// metadata first so that readers can stop early.
	entries := []archive.EntryData{
		{Name: save.InfoEntryName, Data: infoJSON},
		{Name: save.SaveEntryName, Data: saveJSON},
	}
	path := repo.config.savePath(name)
	if err := repo.writeFile(path, func(w io.Writer) error {
		return archive.WriteEntries(w, entries, repo.opts...)
	}); err != nil {
		return save.NewError(save.ErrIO, op, name, err)
	}
	repo.cache.Remove(name)
	log.Debugf("repo: saved %s (%s, %s)", path, snapshot.Info.EngineVersion, snapshot.Info.Kind)

	if kind := snapshot.Info.Kind; kind != save.Manual {
		if _, err := repo.rotate(kind, name); err != nil {
			log.Infof("repo: rotation of %v saves failed: %v", kind, err)
		}
	}
	return nil
}

// ensureDir creates the save directory if not exist.
func (repo *FileRepository) ensureDir() error {
	dir := repo.config.Dir()
	if err := repo.fsys.MkdirAll(dir); err != nil {
		return fmt.Errorf("can not create save directory %s: %w", dir, err)
	}
	return nil
}

// writeFile writes content by writeTo into path, atomically if configured.
func (repo *FileRepository) writeFile(path string, writeTo func(io.Writer) error) error {
	if repo.config.AtomicWrite {
		return repo.writeAtomic(path, writeTo)
	}
	return repo.writeInPlace(path, writeTo)
}

func (repo *FileRepository) writeInPlace(path string, writeTo func(io.Writer) error) error {
	fp, err := repo.fsys.Store(path)
	if err != nil {
		return err
	}
	if err := writeTo(fp); err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}

// writeAtomic writes into a temporary sibling then renames it to path,
// so that path has either the previous or the new content.
func (repo *FileRepository) writeAtomic(path string, writeTo func(io.Writer) error) (err error) {
	tmp, err := tempPath(path)
	if err != nil {
		return err
	}
	fp, err := repo.fsys.Store(tmp)
	if err != nil {
		return err
	}
	defer func() {
		if err == nil {
			return
		}
		if rmErr := repo.fsys.Remove(tmp); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			log.Infof("repo: can not remove temporary file %s: %v", tmp, rmErr)
		}
	}()

	if err := writeTo(fp); err != nil {
		fp.Close()
		return err
	}
	if err := fp.Close(); err != nil {
		return err
	}
	return repo.fsys.Rename(tmp, path)
}

// stat returns file info of the save file at path.
func (repo *FileRepository) stat(op, name, path string) (fs.FileInfo, error) {
	info, err := repo.fsys.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, save.NewError(save.ErrNotFound, op, name, err)
	case err != nil:
		return nil, save.NewError(save.ErrIO, op, name, err)
	case !info.Mode().IsRegular():
		return nil, save.NewError(save.ErrNotFound, op, name, errNotRegular)
	}
	return info, nil
}

func (repo *FileRepository) open(op, name, path string) (io.ReadCloser, error) {
	fp, err := repo.fsys.Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, save.NewError(save.ErrNotFound, op, name, err)
	case err != nil:
		return nil, save.NewError(save.ErrIO, op, name, err)
	}
	return fp, nil
}

// archiveError classifies error from the archive codec.
func archiveError(op, name string, err error) error {
	if archive.IsCorrupt(err) {
		return save.NewError(save.ErrCorruptArchive, op, name, err)
	}
	return save.NewError(save.ErrIO, op, name, err)
}

// LoadFromFile reads a save named name. Metadata is checked against the
// running version before the game state is decoded.
func (repo *FileRepository) LoadFromFile(ctx context.Context, name string) (*save.Save, error) {
	const op = "load"
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	validName, err := ValidateName(name)
	if err != nil {
		return nil, save.NewError(save.ErrInvalidName, op, name, err)
	}
	name = validName

	path := repo.config.savePath(name)
	if _, err := repo.stat(op, name, path); err != nil {
		return nil, err
	}
	fp, err := repo.open(op, name, path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	s, err := repo.readSave(op, name, fp)
	if err != nil {
		return nil, err
	}
	log.Debugf("repo: loaded %s (%s)", path, s.Info.EngineVersion)
	return s, nil
}

func (repo *FileRepository) readSave(op, name string, r io.Reader) (*save.Save, error) {
	ar, err := archive.NewReader(r, repo.opts...)
	if err != nil {
		return nil, archiveError(op, name, err)
	}
	defer ar.Close()

	var (
		info     *save.Metadata
		saveJSON []byte
		hasSave  bool
	)
	for {
		e, err := ar.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, archiveError(op, name, err)
		}

		switch e.Name {
		case save.InfoEntryName:
			data, err := ar.ReadEntry()
			if err != nil {
				return nil, archiveError(op, name, err)
			}
			md, err := decodeMetadata(data)
			if err != nil {
				return nil, save.NewError(save.ErrCorruptArchive, op, name, fmt.Errorf("decode %s: %w", e.Name, err))
			}
			if !repo.Compatible(md.EngineVersion) {
				return nil, save.NewError(save.ErrIncompatibleVersion, op, name,
					&save.VersionError{Saved: md.EngineVersion, Running: repo.running})
			}
			info = md
		case save.SaveEntryName:
			// not decoded until metadata is accepted.
			data, err := ar.ReadEntry()
			if err != nil {
				return nil, archiveError(op, name, err)
			}
			saveJSON, hasSave = data, true
		default:
			log.Debugf("repo: %s: skip unknown entry %s", name, e.Name)
		}
	}

	if info == nil {
		return nil, save.NewError(save.ErrCorruptArchive, op, name, errMissingInfo)
	}
	if !hasSave {
		return nil, save.NewError(save.ErrCorruptArchive, op, name, errMissingSave)
	}
	s := &save.Save{}
	if err := decodeJSON(saveJSON, s); err != nil {
		return nil, save.NewError(save.ErrCorruptArchive, op, name, fmt.Errorf("decode %s: %w", save.SaveEntryName, err))
	}
	s.Name = name
	s.Info = *info
	s.Normalize()
	return s, nil
}

// LoadMetadata reads only metadata of a save named name.
// The compatibility is not checked.
func (repo *FileRepository) LoadMetadata(ctx context.Context, name string) (*save.Metadata, error) {
	const op = "metadata"
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	validName, err := ValidateName(name)
	if err != nil {
		return nil, save.NewError(save.ErrInvalidName, op, name, err)
	}
	name = validName

	path := repo.config.savePath(name)
	info, err := repo.stat(op, name, path)
	if err != nil {
		return nil, err
	}
	return repo.loadMetadata(op, name, path, info)
}

func (repo *FileRepository) loadMetadata(op, name, path string, info fs.FileInfo) (*save.Metadata, error) {
	if md, ok := repo.cache.Get(name, info.Size(), info.ModTime()); ok {
		return &md, nil
	}

	fp, err := repo.open(op, name, path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	md, err := readMetadata(op, name, fp, repo.opts)
	if err != nil {
		return nil, err
	}
	repo.cache.Add(name, info.Size(), info.ModTime(), *md)
	return md, nil
}

// readMetadata reads archive until info.json is found.
func readMetadata(op, name string, r io.Reader, opts []archive.Option) (*save.Metadata, error) {
	ar, err := archive.NewReader(r, opts...)
	if err != nil {
		return nil, archiveError(op, name, err)
	}
	defer ar.Close()

	for {
		e, err := ar.Next()
		if err == io.EOF {
			return nil, save.NewError(save.ErrCorruptArchive, op, name, errMissingInfo)
		}
		if err != nil {
			return nil, archiveError(op, name, err)
		}
		if e.Name != save.InfoEntryName {
			continue
		}
		data, err := ar.ReadEntry()
		if err != nil {
			return nil, archiveError(op, name, err)
		}
		md, err := decodeMetadata(data)
		if err != nil {
			return nil, save.NewError(save.ErrCorruptArchive, op, name, fmt.Errorf("decode %s: %w", e.Name, err))
		}
		return md, nil
	}
}

// Remove deletes a save named name.
func (repo *FileRepository) Remove(ctx context.Context, name string) error {
	const op = "remove"
	if err := ctx.Err(); err != nil {
		return err
	}
	validName, err := ValidateName(name)
	if err != nil {
		return save.NewError(save.ErrInvalidName, op, name, err)
	}
	return repo.remove(op, validName)
}

func (repo *FileRepository) remove(op, name string) error {
	path := repo.config.savePath(name)
	if _, err := repo.stat(op, name, path); err != nil {
		return err
	}
	err := repo.fsys.Remove(path)
	repo.cache.Remove(name)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return save.NewError(save.ErrNotFound, op, name, err)
	case err != nil:
		return save.NewError(save.ErrIO, op, name, err)
	}
	log.Debugf("repo: removed %s", path)
	return nil
}

// ReadEntry returns raw content of the archive entry named entry in
// a save named name. The compatibility is not checked.
// Missing entry is reported as save.ErrNotFound.
func (repo *FileRepository) ReadEntry(ctx context.Context, name, entry string) ([]byte, error) {
	const op = "read entry"
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	validName, err := ValidateName(name)
	if err != nil {
		return nil, save.NewError(save.ErrInvalidName, op, name, err)
	}
	name = validName

	path := repo.config.savePath(name)
	if _, err := repo.stat(op, name, path); err != nil {
		return nil, err
	}
	fp, err := repo.open(op, name, path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	ix, err := archive.ReadIndex(fp, []string{entry}, repo.opts...)
	if err != nil {
		return nil, archiveError(op, name, err)
	}
	data, err := ix.Get(entry)
	if err != nil {
		return nil, save.NewError(save.ErrNotFound, op, name, err)
	}
	return data, nil
}
