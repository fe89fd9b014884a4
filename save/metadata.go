package save

import (
	"fmt"
	"os/user"
	"runtime"
	"strconv"

	"github.com/mzki/erasave/infra/buildinfo"
)

// Kind classifies a save for retention purpose.
// It does not affect how a save is loaded.
type Kind int

const (
	// Manual is a player initiated save. It is never rotated.
	Manual Kind = iota
	// AutoSave is a save made automatically by the game.
	AutoSave
	// QuickSave is separated from Manual so that a fixed number of
	// quick saves can be kept.
	QuickSave
)

var kindNames = [...]string{
	Manual:    "Manual",
	AutoSave:  "AutoSave",
	QuickSave: "QuickSave",
}

// Kinds returns all of known Kind values.
func Kinds() []Kind { return []Kind{Manual, AutoSave, QuickSave} }

// IsValid reports whether k is one of the known kinds.
func (k Kind) IsValid() bool { return k >= Manual && k <= QuickSave }

func (k Kind) String() string {
	if !k.IsValid() {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// ParseKind returns Kind named by s. Names are matched exactly.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if kindNames[k] == s {
			return k, nil
		}
	}
	return Manual, fmt.Errorf("save: unknown save kind %q", s)
}

// MarshalJSON encodes Kind as its name.
func (k Kind) MarshalJSON() ([]byte, error) {
	if !k.IsValid() {
		return nil, fmt.Errorf("save: can not encode %v", k)
	}
	return []byte(strconv.Quote(kindNames[k])), nil
}

// UnmarshalJSON accepts both of the name form, "QuickSave", and
// the legacy integer form, 2.
func (k *Kind) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return fmt.Errorf("save: invalid save kind %s: %w", b, err)
		}
		parsed, err := ParseKind(s)
		if err != nil {
			return err
		}
		*k = parsed
		return nil
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return fmt.Errorf("save: invalid save kind %s", b)
	}
	if parsed := Kind(n); parsed.IsValid() {
		*k = parsed
		return nil
	}
	return fmt.Errorf("save: unknown save kind %d", n)
}

// Metadata is a small record embedded in a save archive.
// It is read before the game state to check whether the save
// can be loaded by the running engine.
type Metadata struct {
	// Version of the engine the save was made with.
	// It is always populated when written.
	EngineVersion string `json:"engineVersion"`

	Platform string `json:"platform"`
	Creator  string `json:"creator"`

	Kind Kind `json:"saveKind"`
}

// NewMetadata returns Metadata for a Manual save made by the running
// process. If engineVersion is empty the build version is used.
func NewMetadata(engineVersion string) Metadata {
	if engineVersion == "" {
		engineVersion = buildinfo.Get().Version
	}
	return Metadata{
		EngineVersion: engineVersion,
		Platform:      DefaultPlatform(),
		Creator:       DefaultCreator(),
		Kind:          Manual,
	}
}

// DefaultPlatform returns platform string for the running process. e.g. linux/amd64
func DefaultPlatform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// DefaultCreator returns user name of the running process.
// It returns empty string if the user is unknown.
func DefaultCreator() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}
	return u.Username
}
