package crt

import "regexp"

// OutdatedDynamicCRT names a legacy runtime DLL together with the pattern
// that detects it in a dependents dump.
type OutdatedDynamicCRT struct {
	Name string
	re   *regexp.Regexp
}

// Matches reports whether the dependents dump references this runtime.
func (o OutdatedDynamicCRT) Matches(dependents string) bool {
	return o.re.MatchString(dependents)
}

func outdated(name, pattern string) OutdatedDynamicCRT {
	return OutdatedDynamicCRT{Name: name, re: regexp.MustCompile(`(?i)` + pattern)}
}

// oldestSupportedToolset is the one toolset generation that still legally
// links msvcr120; every newer toolset gets the superset below.
const oldestSupportedToolset = "v120"

var outdatedCRTsLegacy = []OutdatedDynamicCRT{
	outdated("msvcp100.dll", `msvcp100\.dll`),
	outdated("msvcp100d.dll", `msvcp100d\.dll`),
	outdated("msvcp110.dll", `msvcp110\.dll`),
	outdated("msvcp110_win.dll", `msvcp110_win\.dll`),
	outdated("msvcp60.dll", `msvcp60\.dll`),

	outdated("msvcrt.dll", `msvcrt\.dll`),
	outdated("msvcr100.dll", `msvcr100\.dll`),
	outdated("msvcr100d.dll", `msvcr100d\.dll`),
	outdated("msvcr100_clr0400.dll", `msvcr100_clr0400\.dll`),
	outdated("msvcr110.dll", `msvcr110\.dll`),
	outdated("msvcrt20.dll", `msvcrt20\.dll`),
	outdated("msvcrt40.dll", `msvcrt40\.dll`),
}

var outdatedCRTsCurrent = append(append([]OutdatedDynamicCRT{}, outdatedCRTsLegacy...),
	outdated("msvcp120.dll", `msvcp120\.dll`),
	outdated("msvcp120_clr0400.dll", `msvcp120_clr0400\.dll`),
	outdated("msvcr120.dll", `msvcr120\.dll`),
	outdated("msvcr120_clr0400.dll", `msvcr120_clr0400\.dll`),
)

// OutdatedDynamicCRTs returns the runtime signatures considered outdated for
// the given platform toolset. Exactly the oldest supported toolset keeps the
// smaller legacy set; everything else (VS 2015 and newer, or unspecified)
// gets the superset.
func OutdatedDynamicCRTs(toolsetVersion string) []OutdatedDynamicCRT {
	if toolsetVersion == oldestSupportedToolset {
		return outdatedCRTsLegacy
	}
	return outdatedCRTsCurrent
}
