package mediastore

import "io"

// Storage namespaces. Post images and avatars live in separate areas
// of the bucket.
const (
	NamespacePosts = "socialblog/posts"
	NamespaceUsers = "socialblog/users"
)

// Store is the media ingestion contract: push bytes, get back a
// stable public URL. Callers must complete the upload before writing
// the entity that references it.
type Store interface {
	Upload(r io.Reader, contentType, namespace string) (string, error)
}
