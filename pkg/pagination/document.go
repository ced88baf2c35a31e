package pagination

// Document is one repository entry as returned by the server. The
// schema is server-defined and treated as opaque; the accessors cover
// the fields every document carries.
type Document map[string]any

// UID returns the document's unique identifier, or "" if absent.
func (d Document) UID() string {
	uid, _ := d["uid"].(string)
	return uid
}

// Path returns the document's hierarchical repository path, or "" if
// absent.
func (d Document) Path() string {
	path, _ := d["path"].(string)
	return path
}

// EntityType returns the server's entity-type marker, or "" if absent.
func (d Document) EntityType() string {
	et, _ := d["entity-type"].(string)
	return et
}

// Properties returns the document's schema properties, or nil if the
// document carries none.
func (d Document) Properties() map[string]any {
	props, _ := d["properties"].(map[string]any)
	return props
}
