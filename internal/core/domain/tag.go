package domain

// TagKey is the closed set of tag keys used by managed groups.
type TagKey string

// Tag keys.
const (
	// TagRoot marks the managed group.
	TagRoot TagKey = "managed-outline:root"

	// TagText marks the managed text child.
	TagText TagKey = "managed-outline:text"

	// TagOutline marks the managed outline child.
	TagOutline TagKey = "managed-outline:outline"

	// TagRootReference holds the owning root's NodeID on managed children.
	TagRootReference TagKey = "managed-outline:root-id"
)

// TagMarker is the value stored on marker tags.
const TagMarker = "True"

// String returns the string representation.
func (k TagKey) String() string {
	return string(k)
}

// AllTagKeys returns every managed tag key.
func AllTagKeys() []TagKey {
	return []TagKey{TagRoot, TagText, TagOutline, TagRootReference}
}

// TagFlags controls how the host stores a tag.
type TagFlags uint8

const (
	// TagPersistent tags are saved with the document.
	TagPersistent TagFlags = 1 << iota

	// TagUndoable tag writes are recorded in the host's undo history.
	TagUndoable
)

// Tag is a string-valued piece of node metadata.
type Tag struct {
	Key   TagKey
	Value string
	Flags TagFlags
}
