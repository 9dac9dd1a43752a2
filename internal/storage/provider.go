// Package storage defines the file-system abstraction used by the pipeline.
package storage

// Provider reads source documents and writes exported pages. Paths are
// relative to the provider root.
type Provider interface {
	// List returns every file under dir matching ext, in lexical order.
	List(dir, ext string) ([]string, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Root returns the absolute root directory.
	Root() string
}
