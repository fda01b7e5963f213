package domain

import "fmt"

// Linkage distinguishes static from dynamic linkage, both for the C runtime
// and for the produced libraries.
type Linkage string

const (
	LinkageStatic  Linkage = "static"
	LinkageDynamic Linkage = "dynamic"
)

// Build configuration variants. An empty BuildType on ExpectedConfiguration
// means the build produces both debug and release variants.
const (
	BuildTypeDebug   = "debug"
	BuildTypeRelease = "release"
)

// Target architectures a recipe can declare. Detected architectures outside
// this set surface as raw machine-type codes in diagnostics.
var ValidArchitectures = []string{"x86", "x64", "arm", "arm64"}

// SystemWindowsStore marks the restricted target platform whose binaries must
// carry the app-container bit.
const SystemWindowsStore = "WindowsStore"

// PackageSpec identifies the built package under validation.
type PackageSpec struct {
	Name    string `json:"name"`
	Triplet string `json:"triplet,omitempty"`
}

// ExpectedConfiguration describes what the recipe promised to build. It is
// immutable for the duration of one validation run.
type ExpectedConfiguration struct {
	TargetArchitecture string  `yaml:"target_architecture" json:"target_architecture"`
	CRTLinkage         Linkage `yaml:"crt_linkage" json:"crt_linkage"`
	LibraryLinkage     Linkage `yaml:"library_linkage" json:"library_linkage"`
	BuildType          string  `yaml:"build_type,omitempty" json:"build_type,omitempty"`
	PlatformToolset    string  `yaml:"platform_toolset,omitempty" json:"platform_toolset,omitempty"`
	SystemName         string  `yaml:"system_name,omitempty" json:"system_name,omitempty"`
}

// Validate catches typos in user-supplied configuration before a run starts.
func (c ExpectedConfiguration) Validate() error {
	if c.TargetArchitecture != "" && !contains(ValidArchitectures, c.TargetArchitecture) {
		return fmt.Errorf("unknown target_architecture %q (expected one of %v)", c.TargetArchitecture, ValidArchitectures)
	}
	if err := validLinkage("crt_linkage", c.CRTLinkage); err != nil {
		return err
	}
	if err := validLinkage("library_linkage", c.LibraryLinkage); err != nil {
		return err
	}
	if c.BuildType != "" && c.BuildType != BuildTypeDebug && c.BuildType != BuildTypeRelease {
		return fmt.Errorf("unknown build_type %q (expected debug or release)", c.BuildType)
	}
	return nil
}

// RunConfig is the deserialized triplet configuration file: the expected
// build configuration plus the recipe's opt-in policies.
type RunConfig struct {
	Expected ExpectedConfiguration `yaml:",inline"`
	Policies []string              `yaml:"policies,omitempty"`
}

// DefaultRunConfig is used when no triplet configuration file exists.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Expected: ExpectedConfiguration{
			TargetArchitecture: "x64",
			CRTLinkage:         LinkageDynamic,
			LibraryLinkage:     LinkageDynamic,
		},
	}
}

// BuildInfo carries the linkage and policy declarations a recipe staged into
// the package's BUILD_INFO metadata file.
type BuildInfo struct {
	CRTLinkage      Linkage  `mapstructure:"CRTLinkage"`
	LibraryLinkage  Linkage  `mapstructure:"LibraryLinkage"`
	PlatformToolset string   `mapstructure:"PlatformToolset"`
	Policies        []Policy `mapstructure:"-"`
}

func validLinkage(field string, l Linkage) error {
	if l != "" && l != LinkageStatic && l != LinkageDynamic {
		return fmt.Errorf("unknown %s %q (expected static or dynamic)", field, l)
	}
	return nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
