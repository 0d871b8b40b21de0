package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/matzehuels/flowlayout/pkg/layout"
)

// Key type labels. They lead every key and are reported to the cache hooks.
const (
	KeyTypeView     = "view"
	KeyTypeArtifact = "artifact"
)

// sourceLen is how much of the source hash a key keeps in the clear.
const sourceLen = 16

// ViewKeyOpts are the inputs besides the graph that change a view.
type ViewKeyOpts struct {
	// Expand holds the expand-set keys. Callers pass them sorted.
	Expand  []string       `json:"expand"`
	Options layout.Options `json:"options"`
}

// ArtifactKeyOpts are the inputs besides the view that change a rendering.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ViewKey identifies the view of a graph, by its content hash.
	ViewKey(graphHash string, opts ViewKeyOpts) string

	// ArtifactKey identifies a rendering of a view, by the view's hash.
	ArtifactKey(viewHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer builds keys of the form <type>:<source>:<digest>. source is
// the leading part of the graph or view hash, so entries for one graph can
// be found without decoding them; digest covers the full hash and options.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ViewKey returns "view:<graph>:<digest>".
func (DefaultKeyer) ViewKey(graphHash string, opts ViewKeyOpts) string {
	return buildKey(KeyTypeView, graphHash, opts)
}

// ArtifactKey returns "artifact:<view>:<digest>".
func (DefaultKeyer) ArtifactKey(viewHash string, opts ArtifactKeyOpts) string {
	return buildKey(KeyTypeArtifact, viewHash, opts)
}

func buildKey(keyType, sourceHash string, opts any) string {
	data, _ := json.Marshal([]any{sourceHash, opts})
	source := sourceHash
	if len(source) > sourceLen {
		source = source[:sourceLen]
	}
	return keyType + ":" + source + ":" + Hash(data)
}

// ParseKey splits a key built by [DefaultKeyer], with or without a
// [ScopedKeyer] prefix, into its type and source hash prefix. ok is false
// for keys of any other shape.
func ParseKey(key string) (keyType, source string, ok bool) {
	parts := strings.Split(key, ":")
	if len(parts) < 3 {
		return "", "", false
	}
	keyType, source = parts[len(parts)-3], parts[len(parts)-2]
	if keyType != KeyTypeView && keyType != KeyTypeArtifact || !isHex(source) {
		return "", "", false
	}
	return keyType, source, true
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !('0' <= r && r <= '9' || 'a' <= r && r <= 'f') {
			return false
		}
	}
	return true
}

// Hash returns the hex SHA-256 of data. Graphs and views are hashed over
// their canonical JSON encoding.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

var _ Keyer = DefaultKeyer{}
