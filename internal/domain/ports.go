package domain

// PackageScanner walks a directory into an immutable tree snapshot.
type PackageScanner interface {
	// Scan walks dir recursively. It fails if dir cannot be read.
	Scan(dir string) (*TreeSnapshot, error)
	// ScanShallow walks dir at most depth levels deep. A missing dir yields
	// an empty snapshot, not an error: the directory is optional.
	ScanShallow(dir string, depth int) (*TreeSnapshot, error)
}

// ToolMode selects what the external binary-introspection tool dumps.
type ToolMode string

const (
	ToolExports    ToolMode = "exports"
	ToolHeaders    ToolMode = "headers"
	ToolDirectives ToolMode = "directives"
	ToolDependents ToolMode = "dependents"
)

// ToolRunner invokes the external binary-introspection tool. A non-zero exit
// is a toolchain fault, never a validation failure. When the tool is not
// configured, Available returns false and the checks that need it are
// skipped.
type ToolRunner interface {
	Available() bool
	Run(mode ToolMode, binaryPath string) (string, error)
}

// ConfigLoader reads the triplet configuration file.
type ConfigLoader interface {
	Load(path string) (RunConfig, error)
}

// BuildInfoLoader reads the BUILD_INFO metadata file a recipe staged into the
// package root. A missing file yields a zero BuildInfo.
type BuildInfoLoader interface {
	Load(packageDir string) (BuildInfo, error)
}

// GitInfo resolves version-control metadata for report traceability.
type GitInfo interface {
	// HeadCommit returns the HEAD commit of the repository at path, or
	// ok=false when path is not inside a git repository.
	HeadCommit(path string) (hash string, ok bool)
}
