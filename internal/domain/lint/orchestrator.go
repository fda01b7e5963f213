package lint

import (
	"fmt"

	"github.com/portlint/portlint/internal/domain"
	"github.com/portlint/portlint/internal/domain/crt"
)

// Run executes every check in the fixed registry order and folds the results
// into a ValidationReport. No check's failure prevents later checks from
// running; the only aborts are toolchain/configuration faults. The
// EmptyPackage policy declares the package intentionally contentless and
// skips everything.
func Run(ctx *Context) (*domain.ValidationReport, error) {
	report := &domain.ValidationReport{
		Package:     ctx.Spec.Name,
		Triplet:     ctx.Spec.Triplet,
		Diagnostics: []string{},
	}

	if ctx.Policies.IsEnabled(domain.PolicyEmptyPackage) {
		return report, nil
	}

	checks, err := Checks(ctx)
	if err != nil {
		return nil, err
	}

	for _, c := range checks {
		result, err := c.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", c.Name, err)
		}
		report.ChecksRun++
		if result.Status == domain.StatusFail {
			report.ErrorCount++
			report.Diagnostics = append(report.Diagnostics, result.Diagnostics...)
		}
	}

	return report, nil
}

// Checks builds the ordered check registry for one run. Structural checks
// come first, then the binary-consistency checks over the debug/release lib
// and dll listings, then the linkage-specific subset, then housekeeping.
// Later checks reuse the listings computed here; none depends on another
// check's outcome.
func Checks(ctx *Context) ([]Check, error) {
	debugLibs := ctx.Package.FilesWithExtUnder("debug/lib", ".lib")
	releaseLibs := ctx.Package.FilesWithExtUnder("lib", ".lib")
	debugDLLs := ctx.Package.FilesWithExtUnder("debug/bin", ".dll")
	releaseDLLs := ctx.Package.FilesWithExtUnder("bin", ".dll")

	allLibs := append(append([]domain.TreeEntry{}, debugLibs...), releaseLibs...)

	checks := []Check{
		{"include-dir-present", checkIncludeDir},
		{"debug-include-duplicated", checkDebugIncludeDir},
		{"debug-share-absent", checkDebugShareDir},
		{"lib-cmake-located", checkLibCMakeDir},
		{"misplaced-cmake-files", checkMisplacedCMakeFiles},
		{"debug-lib-cmake-located", checkDebugLibCMakeDir},
		{"dlls-in-lib-dir", checkDLLsInLibDir("")},
		{"dlls-in-debug-lib-dir", checkDLLsInLibDir("debug")},
		{"copyright-file-present", checkCopyrightFile},
		{"exes-in-bin-dir", checkExesInBinDir("")},
		{"exes-in-debug-bin-dir", checkExesInBinDir("debug")},
		{"matching-lib-counts", checkMatchingCounts(debugLibs, releaseLibs)},
		{"lib-architecture", checkLibArchitecture(allLibs)},
	}

	switch ctx.Expected.LibraryLinkage {
	case domain.LinkageDynamic:
		allDLLs := append(append([]domain.TreeEntry{}, debugDLLs...), releaseDLLs...)
		checks = append(checks,
			Check{"matching-dll-counts", checkMatchingCounts(debugDLLs, releaseDLLs)},
			Check{"libs-available-for-debug-dlls", checkLibsAvailableForDLLs(len(debugLibs), len(debugDLLs), "debug/lib")},
			Check{"libs-available-for-release-dlls", checkLibsAvailableForDLLs(len(releaseLibs), len(releaseDLLs), "lib")},
		)
		if ctx.toolAvailable() {
			checks = append(checks,
				Check{"dll-exports-present", checkExportsOfDLLs(allDLLs)},
				Check{"uwp-container-bit", checkUWPBitOfDLLs(allDLLs)},
				Check{"outdated-dynamic-crt", checkOutdatedCRTOfDLLs(allDLLs)},
			)
		}
		checks = append(checks, Check{"dll-architecture", checkDLLArchitecture(allDLLs)})
	case domain.LinkageStatic:
		// A static build must not ship dlls anywhere, not just under bin/.
		allDLLs := ctx.Package.FilesWithExtUnder("", ".dll")
		checks = append(checks,
			Check{"no-dlls-in-static-build", checkNoDLLsPresent(allDLLs)},
			Check{"no-bin-dirs-in-static-build", checkNoBinDirs},
		)
		if ctx.toolAvailable() {
			checks = append(checks,
				Check{"debug-crt-linkage-of-libs", checkCRTLinkageOfLibs(crt.ConfigDebug, debugLibs)},
				Check{"release-crt-linkage-of-libs", checkCRTLinkageOfLibs(crt.ConfigRelease, releaseLibs)},
			)
		}
	default:
		// Unreachable with a validated configuration; a bad variant here is
		// a programming-contract violation, not a package problem.
		return nil, fmt.Errorf("unrecognized library linkage %q", ctx.Expected.LibraryLinkage)
	}

	checks = append(checks,
		Check{"no-empty-directories", checkNoEmptyDirs},
		Check{"no-stray-files-in-root", checkNoStrayFiles("")},
		Check{"no-stray-files-in-debug", checkNoStrayFiles("debug")},
	)

	return checks, nil
}
