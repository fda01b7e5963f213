// Package crt classifies the C-runtime linkage of binaries from the textual
// evidence dumped by the introspection tool, and knows which dynamic
// runtimes are outdated for a given toolset generation.
package crt

import (
	"fmt"
	"regexp"

	"github.com/portlint/portlint/internal/domain"
)

// Configuration is the build configuration half of a BuildType.
type Configuration string

const (
	ConfigDebug   Configuration = "Debug"
	ConfigRelease Configuration = "Release"
)

// BuildType is one (configuration, CRT linkage) combination. The set of
// build types is closed; AllBuildTypes enumerates every variant.
type BuildType struct {
	Config  Configuration
	Linkage domain.Linkage
}

// AllBuildTypes is the closed, ordered set of build types. The order is what
// makes "which other types are wrong" enumeration deterministic. Adding a
// variant here requires revisiting crtRegex and every complement computation.
var AllBuildTypes = []BuildType{
	{ConfigDebug, domain.LinkageDynamic},
	{ConfigRelease, domain.LinkageDynamic},
	{ConfigDebug, domain.LinkageStatic},
	{ConfigRelease, domain.LinkageStatic},
}

// The default-library directives the MSVC toolchain embeds per build type.
// The release patterns must not swallow their debug counterparts.
var crtRegex = map[BuildType]*regexp.Regexp{
	{ConfigDebug, domain.LinkageDynamic}:   regexp.MustCompile(`(?i)/DEFAULTLIB:MSVCRTD`),
	{ConfigRelease, domain.LinkageDynamic}: regexp.MustCompile(`(?i)/DEFAULTLIB:MSVCRT($|[^D])`),
	{ConfigDebug, domain.LinkageStatic}:    regexp.MustCompile(`(?i)/DEFAULTLIB:LIBCMTD`),
	{ConfigRelease, domain.LinkageStatic}:  regexp.MustCompile(`(?i)/DEFAULTLIB:LIBCMT($|[^D])`),
}

// Of returns the BuildType for a configuration and CRT linkage.
func Of(config Configuration, linkage domain.Linkage) BuildType {
	return BuildType{Config: config, Linkage: linkage}
}

func (b BuildType) String() string {
	return fmt.Sprintf("%s,%s", b.Config, b.Linkage)
}

// MatchesDirectives reports whether the link directives dump carries this
// build type's default-library directive.
func (b BuildType) MatchesDirectives(directives string) bool {
	re, ok := crtRegex[b]
	if !ok {
		return false
	}
	return re.MatchString(directives)
}

// BadBuildTypes returns every build type except the expected one, in
// AllBuildTypes order. A lib matching any of them has the wrong CRT linkage.
func BadBuildTypes(expected BuildType) []BuildType {
	out := make([]BuildType, 0, len(AllBuildTypes)-1)
	for _, b := range AllBuildTypes {
		if b != expected {
			out = append(out, b)
		}
	}
	return out
}

// ClassifyDirectives returns the first build type whose directive pattern
// matches the dump, in AllBuildTypes order.
func ClassifyDirectives(directives string) (BuildType, bool) {
	for _, b := range AllBuildTypes {
		if b.MatchesDirectives(directives) {
			return b, true
		}
	}
	return BuildType{}, false
}
