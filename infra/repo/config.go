package repo

import (
	"path/filepath"

	"github.com/mzki/erasave/infra/archive"
	"github.com/mzki/erasave/infra/buildinfo"
	"github.com/mzki/erasave/save"
	"github.com/mzki/erasave/util"
)

const (
	DefaultSaveFileDir       = "sav"
	DefaultCompressionLevel  = 6
	DefaultQuickSaveLimit    = 5
	DefaultAutoSaveLimit     = 5
	DefaultMetadataCacheSize = 64

	// PolicyScript is the version_policy value to use policy_script.
	PolicyScript = "script"
)

// Config holds parameters of FileRepository.
// It might be constructed by NewConfig, not Config{}.
type Config struct {
	path util.PathManager

	// directory of save files. relative path is resolved under the base directory.
	SaveFileDir string `toml:"savefile_dir"`

	// engine version written into new saves. empty means the build version.
	EngineVersion string `toml:"engine_version"`

	CompressionLevel int   `toml:"compression_level"` // gzip level, -1..9
	AtomicWrite      bool  `toml:"atomic_write"`
	MaxEntrySize     int64 `toml:"max_entry_size"` // in bytes. non-positive means default.

	// one of exact, major, minor, not-newer or script.
	VersionPolicy string `toml:"version_policy"`
	// Lua script file used when VersionPolicy is script.
	PolicyScript string `toml:"policy_script"`

	// number of saves kept for each kind. 0 disables rotation.
	QuickSaveLimit int `toml:"quicksave_limit"`
	AutoSaveLimit  int `toml:"autosave_limit"`

	// number of cached metadata entries. 0 disables the cache.
	MetadataCacheSize int `toml:"metadata_cache_size"`
}

// return new default config
func NewConfig(baseDir string) Config {
	return Config{
		path:              util.NewPathManager(baseDir),
		SaveFileDir:       DefaultSaveFileDir,
		CompressionLevel:  DefaultCompressionLevel,
		AtomicWrite:       true,
		MaxEntrySize:      archive.DefaultMaxEntrySize,
		VersionPolicy:     "exact",
		QuickSaveLimit:    DefaultQuickSaveLimit,
		AutoSaveLimit:     DefaultAutoSaveLimit,
		MetadataCacheSize: DefaultMetadataCacheSize,
	}
}

// set base direcotry which is prefixed SaveFileDir.
func (c *Config) SetBaseDir(baseDir string) {
	c.path = util.NewPathManager(baseDir)
}

// Dir returns the save directory.
func (c Config) Dir() string {
	return c.path.Resolve(c.SaveFileDir)
}

// return save file path
func (c Config) savePath(name string) string {
	return filepath.Join(c.Dir(), name)
}

func (c Config) policyScriptPath() string {
	return c.path.Resolve(c.PolicyScript)
}

// RunningVersion returns the engine version compared with saved ones.
func (c Config) RunningVersion() string {
	if c.EngineVersion != "" {
		return c.EngineVersion
	}
	return buildinfo.Get().Version
}

func (c Config) limitOf(kind save.Kind) int {
	switch kind {
	case save.QuickSave:
		return c.QuickSaveLimit
	case save.AutoSave:
		return c.AutoSaveLimit
	default:
		return 0
	}
}

func (c Config) archiveOptions() []archive.Option {
	opts := []archive.Option{archive.WithCompressionLevel(c.CompressionLevel)}
	if c.MaxEntrySize > 0 {
		opts = append(opts, archive.WithMaxEntrySize(c.MaxEntrySize))
	}
	return opts
}
