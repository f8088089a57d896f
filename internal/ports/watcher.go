package ports

// Watcher monitors a single file and reports when it was written, created or replaced.
// Editors that save by rename are covered: the adapter watches the parent directory
// and filters to the file's base name. Only one Watch call should be active at a time.
type Watcher interface {
	// Watch starts monitoring path. onChange is called with the absolute path
	// after a burst of writes settles. The callback may be invoked from any goroutine.
	// Returns an error if the parent directory doesn't exist.
	Watch(path string, onChange func(filePath string)) error

	// Stop ends monitoring and releases all resources. After Stop returns,
	// no further onChange calls will fire. Safe to call multiple times.
	Stop() error
}
