package lint

import (
	"fmt"
	"path"
	"strings"

	"github.com/portlint/portlint/internal/domain"
	"github.com/portlint/portlint/internal/domain/coff"
	"github.com/portlint/portlint/internal/domain/crt"
)

const exportsMarker = "ordinal hint RVA      name"
const appContainerMarker = "App Container"

// Interface description files produced by the compiler are allowed to stay
// under debug/include.
const interfaceFileExt = ".ifc"

func checkIncludeDir(ctx *Context) (domain.CheckResult, error) {
	if ctx.Policies.IsEnabled(domain.PolicyEmptyIncludeFolder) {
		return domain.Pass(), nil
	}
	if !ctx.Package.Exists("include") || !ctx.Package.HasEntriesUnder("include") {
		return domain.Fail(
			"The folder /include is empty or not present. This indicates the library was not correctly installed.",
		), nil
	}
	return domain.Pass(), nil
}

func checkDebugIncludeDir(ctx *Context) (domain.CheckResult, error) {
	var found []domain.TreeEntry
	for _, e := range ctx.Package.FilesUnder("debug/include") {
		if e.Ext != interfaceFileExt {
			found = append(found, e)
		}
	}
	if len(found) == 0 {
		return domain.Pass(), nil
	}
	diags := []string{
		"Include files should not be duplicated into the /debug/include directory. If this cannot be disabled in the project cmake, use\n" +
			"    file(REMOVE_RECURSE ${CURRENT_PACKAGES_DIR}/debug/include)",
	}
	return domain.Fail(append(diags, pathLines(found)...)...), nil
}

func checkDebugShareDir(ctx *Context) (domain.CheckResult, error) {
	if !ctx.Package.Exists("debug/share") {
		return domain.Pass(), nil
	}
	return domain.Fail(
		"/debug/share should not exist. Please reorganize any important files, then use\n" +
			"    file(REMOVE_RECURSE ${CURRENT_PACKAGES_DIR}/debug/share)",
	), nil
}

func checkLibCMakeDir(ctx *Context) (domain.CheckResult, error) {
	if !ctx.Package.Exists("lib/cmake") {
		return domain.Pass(), nil
	}
	return domain.Fail(fmt.Sprintf(
		"The /lib/cmake folder should be merged with /debug/lib/cmake and moved to /share/%s/cmake.",
		ctx.Spec.Name,
	)), nil
}

func checkDebugLibCMakeDir(ctx *Context) (domain.CheckResult, error) {
	if !ctx.Package.Exists("debug/lib/cmake") {
		return domain.Pass(), nil
	}
	return domain.Fail(fmt.Sprintf(
		"The /debug/lib/cmake folder should be merged with /lib/cmake into /share/%s",
		ctx.Spec.Name,
	)), nil
}

// The four legacy locations recipes historically dropped cmake files into.
var misplacedCMakeDirs = []string{"cmake", "debug/cmake", "lib/cmake", "debug/lib/cmake"}

func checkMisplacedCMakeFiles(ctx *Context) (domain.CheckResult, error) {
	var misplaced []domain.TreeEntry
	for _, dir := range misplacedCMakeDirs {
		misplaced = append(misplaced, ctx.Package.FilesWithExtUnder(dir, ".cmake")...)
	}
	if len(misplaced) == 0 {
		return domain.Pass(), nil
	}
	diags := []string{fmt.Sprintf(
		"The following cmake files were found outside /share/%s. Please place cmake files in /share/%s.",
		ctx.Spec.Name, ctx.Spec.Name,
	)}
	return domain.Fail(append(diags, pathLines(misplaced)...)...), nil
}

// checkDLLsInLibDir flags dlls staged under <prefix>/lib; prefix is "" for
// the release tree and "debug" for its mirror.
func checkDLLsInLibDir(prefix string) func(*Context) (domain.CheckResult, error) {
	return func(ctx *Context) (domain.CheckResult, error) {
		dlls := ctx.Package.FilesWithExtUnder(path.Join(prefix, "lib"), ".dll")
		if len(dlls) == 0 {
			return domain.Pass(), nil
		}
		diags := []string{
			"The following dlls were found in /lib or /debug/lib. Please move them to /bin or /debug/bin, respectively.",
		}
		return domain.Fail(append(diags, pathLines(dlls)...)...), nil
	}
}

func checkExesInBinDir(prefix string) func(*Context) (domain.CheckResult, error) {
	return func(ctx *Context) (domain.CheckResult, error) {
		exes := ctx.Package.FilesWithExtUnder(path.Join(prefix, "bin"), ".exe")
		if len(exes) == 0 {
			return domain.Pass(), nil
		}
		diags := []string{
			"The following EXEs were found in /bin or /debug/bin. EXEs are not valid distribution targets.",
		}
		return domain.Fail(append(diags, pathLines(exes)...)...), nil
	}
}

// Root-entry names of unpacked source archives that are likely the license.
var copyrightCandidateNames = map[string]bool{
	"LICENSE":     true,
	"LICENSE.txt": true,
	"COPYING":     true,
}

func checkCopyrightFile(ctx *Context) (domain.CheckResult, error) {
	name := ctx.Spec.Name
	if ctx.Package.Exists(path.Join("share", name, "copyright")) {
		return domain.Pass(), nil
	}

	// Only the root of each unpacked source directory is searched, to keep
	// false positives down: src/<unpacked>/<candidate>.
	var candidates []domain.TreeEntry
	if ctx.Source != nil {
		for _, e := range ctx.Source.FilesUnder("src") {
			if strings.Count(e.RelPath, "/") != 2 {
				continue
			}
			if copyrightCandidateNames[e.Base()] {
				candidates = append(candidates, e)
			}
		}
	}

	diags := []string{fmt.Sprintf(
		"The software license must be available at ${CURRENT_PACKAGES_DIR}/share/%s/copyright", name,
	)}
	switch {
	case len(candidates) == 1:
		c := candidates[0]
		diags = append(diags, fmt.Sprintf(
			"\n    file(COPY ${CURRENT_BUILDTREES_DIR}/%s DESTINATION ${CURRENT_PACKAGES_DIR}/share/%s)\n"+
				"    file(RENAME ${CURRENT_PACKAGES_DIR}/share/%s/%s ${CURRENT_PACKAGES_DIR}/share/%s/copyright)",
			c.RelPath, name, name, c.Base(), name,
		))
	case len(candidates) > 1:
		diags = append(diags, "The following files are potential copyright files:")
		diags = append(diags, pathLines(candidates)...)
	}
	return domain.Fail(diags...), nil
}

// checkMatchingCounts compares debug and release binary counts. It only
// applies when the configuration does not pin a single build type.
func checkMatchingCounts(debug, release []domain.TreeEntry) func(*Context) (domain.CheckResult, error) {
	return func(ctx *Context) (domain.CheckResult, error) {
		if ctx.Expected.BuildType != "" {
			return domain.Pass(), nil
		}
		if len(debug) == len(release) {
			return domain.Pass(), nil
		}
		diags := []string{fmt.Sprintf(
			"Mismatching number of debug and release binaries. Found %d for debug but %d for release.",
			len(debug), len(release),
		)}
		diags = append(diags, "Debug binaries:")
		diags = append(diags, pathLines(debug)...)
		diags = append(diags, "Release binaries:")
		diags = append(diags, pathLines(release)...)
		if len(debug) == 0 {
			diags = append(diags, "Debug binaries were not found")
		}
		if len(release) == 0 {
			diags = append(diags, "Release binaries were not found")
		}
		return domain.Fail(diags...), nil
	}
}

// checkLibArchitecture verifies every static/import library was built for
// the expected architecture. An archive with no detected architectures is
// acceptable (some tool-generated debug archives are architecture-less
// placeholders); an archive with more than one is an unconditional failure.
func checkLibArchitecture(libs []domain.TreeEntry) func(*Context) (domain.CheckResult, error) {
	return func(ctx *Context) (domain.CheckResult, error) {
		var multiArch []string
		var mismatched []string
		for _, lib := range libs {
			machines, err := coff.ReadArchiveMachines(ctx.Package.Abs(lib.RelPath))
			if err != nil {
				return domain.CheckResult{}, err
			}
			switch {
			case len(machines) == 0:
				continue
			case len(machines) > 1:
				multiArch = append(multiArch, fmt.Sprintf("Found more than 1 architecture in file %s", lib.RelPath))
			default:
				if actual := machines[0].Architecture(); actual != ctx.Expected.TargetArchitecture {
					mismatched = append(mismatched, fmt.Sprintf(
						"    %s: expected %s, but was %s", lib.RelPath, ctx.Expected.TargetArchitecture, actual))
				}
			}
		}
		return architectureResult(multiArch, mismatched), nil
	}
}

func checkDLLArchitecture(dlls []domain.TreeEntry) func(*Context) (domain.CheckResult, error) {
	return func(ctx *Context) (domain.CheckResult, error) {
		var mismatched []string
		for _, dll := range dlls {
			machine, err := coff.ReadDLLMachine(ctx.Package.Abs(dll.RelPath))
			if err != nil {
				return domain.CheckResult{}, err
			}
			if actual := machine.Architecture(); actual != ctx.Expected.TargetArchitecture {
				mismatched = append(mismatched, fmt.Sprintf(
					"    %s: expected %s, but was %s", dll.RelPath, ctx.Expected.TargetArchitecture, actual))
			}
		}
		return architectureResult(nil, mismatched), nil
	}
}

func architectureResult(multiArch, mismatched []string) domain.CheckResult {
	if len(multiArch) == 0 && len(mismatched) == 0 {
		return domain.Pass()
	}
	diags := multiArch
	if len(mismatched) > 0 {
		diags = append(diags, "The following files were built for an incorrect architecture:")
		diags = append(diags, mismatched...)
	}
	return domain.Fail(diags...)
}

// checkLibsAvailableForDLLs requires an import library next to every set of
// dlls; some ports legitimately ship dlls only and opt out via policy.
func checkLibsAvailableForDLLs(libCount, dllCount int, libDir string) func(*Context) (domain.CheckResult, error) {
	return func(ctx *Context) (domain.CheckResult, error) {
		if ctx.Policies.IsEnabled(domain.PolicyDllsWithoutLibs) {
			return domain.Pass(), nil
		}
		if libCount == 0 && dllCount != 0 {
			return domain.Fail(
				fmt.Sprintf("Import libs were not present in /%s", libDir),
				fmt.Sprintf("If this is intended, add the following line in the portfile:\n    set(%s enabled)",
					domain.PolicyDllsWithoutLibs.CMakeVariable()),
			), nil
		}
		return domain.Pass(), nil
	}
}

func checkNoDLLsPresent(dlls []domain.TreeEntry) func(*Context) (domain.CheckResult, error) {
	return func(_ *Context) (domain.CheckResult, error) {
		if len(dlls) == 0 {
			return domain.Pass(), nil
		}
		diags := []string{"DLLs should not be present in a static build, but the following DLLs were found:"}
		return domain.Fail(append(diags, pathLines(dlls)...)...), nil
	}
}

func checkNoBinDirs(ctx *Context) (domain.CheckResult, error) {
	binExists := ctx.Package.Exists("bin")
	debugBinExists := ctx.Package.Exists("debug/bin")
	if !binExists && !debugBinExists {
		return domain.Pass(), nil
	}
	var diags []string
	if binExists {
		diags = append(diags, "There should be no bin/ directory in a static build, but /bin is present.")
	}
	if debugBinExists {
		diags = append(diags, "There should be no debug/bin/ directory in a static build, but /debug/bin is present.")
	}
	diags = append(diags,
		"If the creation of bin/ and/or debug/bin/ cannot be disabled, use this in the portfile to remove them:\n\n"+
			"    if(VCPKG_LIBRARY_LINKAGE STREQUAL static)\n"+
			"        file(REMOVE_RECURSE ${CURRENT_PACKAGES_DIR}/bin ${CURRENT_PACKAGES_DIR}/debug/bin)\n"+
			"    endif()")
	return domain.Fail(diags...), nil
}

func checkExportsOfDLLs(dlls []domain.TreeEntry) func(*Context) (domain.CheckResult, error) {
	return func(ctx *Context) (domain.CheckResult, error) {
		var noExports []domain.TreeEntry
		for _, dll := range dlls {
			output, err := ctx.Tool.Run(domain.ToolExports, ctx.Package.Abs(dll.RelPath))
			if err != nil {
				return domain.CheckResult{}, err
			}
			if !strings.Contains(output, exportsMarker) {
				noExports = append(noExports, dll)
			}
		}
		if len(noExports) == 0 {
			return domain.Pass(), nil
		}
		diags := []string{"The following DLLs have no exports:"}
		diags = append(diags, pathLines(noExports)...)
		diags = append(diags, "DLLs without any exports are likely a bug in the build script.")
		return domain.Fail(diags...), nil
	}
}

func checkUWPBitOfDLLs(dlls []domain.TreeEntry) func(*Context) (domain.CheckResult, error) {
	return func(ctx *Context) (domain.CheckResult, error) {
		if ctx.Expected.SystemName != domain.SystemWindowsStore {
			return domain.Pass(), nil
		}
		var improper []domain.TreeEntry
		for _, dll := range dlls {
			output, err := ctx.Tool.Run(domain.ToolHeaders, ctx.Package.Abs(dll.RelPath))
			if err != nil {
				return domain.CheckResult{}, err
			}
			if !strings.Contains(output, appContainerMarker) {
				improper = append(improper, dll)
			}
		}
		if len(improper) == 0 {
			return domain.Pass(), nil
		}
		diags := []string{"The following DLLs do not have the App Container bit set:"}
		diags = append(diags, pathLines(improper)...)
		diags = append(diags, "This bit is required for Windows Store apps.")
		return domain.Fail(diags...), nil
	}
}

func checkOutdatedCRTOfDLLs(dlls []domain.TreeEntry) func(*Context) (domain.CheckResult, error) {
	return func(ctx *Context) (domain.CheckResult, error) {
		if ctx.Policies.IsEnabled(domain.PolicyAllowObsoleteMsvcrt) {
			return domain.Pass(), nil
		}
		signatures := crt.OutdatedDynamicCRTs(ctx.Expected.PlatformToolset)
		var outdated []string
		for _, dll := range dlls {
			output, err := ctx.Tool.Run(domain.ToolDependents, ctx.Package.Abs(dll.RelPath))
			if err != nil {
				return domain.CheckResult{}, err
			}
			for _, sig := range signatures {
				if sig.Matches(output) {
					outdated = append(outdated, fmt.Sprintf("    %s: %s", dll.RelPath, sig.Name))
					break
				}
			}
		}
		if len(outdated) == 0 {
			return domain.Pass(), nil
		}
		diags := []string{"Detected outdated dynamic CRT in the following files:"}
		diags = append(diags, outdated...)
		diags = append(diags, "To inspect the dll files, use:\n    dumpbin.exe /dependents mydllfile.dll")
		return domain.Fail(diags...), nil
	}
}

// checkCRTLinkageOfLibs flags libs whose embedded link directives match any
// build type other than the expected one. The debug-configuration variant is
// the one OnlyReleaseCrt suppresses.
func checkCRTLinkageOfLibs(config crt.Configuration, libs []domain.TreeEntry) func(*Context) (domain.CheckResult, error) {
	return func(ctx *Context) (domain.CheckResult, error) {
		if config == crt.ConfigDebug && ctx.Policies.IsEnabled(domain.PolicyOnlyReleaseCrt) {
			return domain.Pass(), nil
		}
		expected := crt.Of(config, ctx.Expected.CRTLinkage)
		badTypes := crt.BadBuildTypes(expected)

		var invalid []string
		for _, lib := range libs {
			output, err := ctx.Tool.Run(domain.ToolDirectives, ctx.Package.Abs(lib.RelPath))
			if err != nil {
				return domain.CheckResult{}, err
			}
			for _, bad := range badTypes {
				if bad.MatchesDirectives(output) {
					invalid = append(invalid, fmt.Sprintf("    %s: %s", lib.RelPath, bad))
					break
				}
			}
		}
		if len(invalid) == 0 {
			return domain.Pass(), nil
		}
		diags := []string{fmt.Sprintf(
			"Expected %s crt linkage, but the following libs had invalid crt linkage:", expected)}
		diags = append(diags, invalid...)
		diags = append(diags, "To inspect the lib files, use:\n    dumpbin.exe /directives mylibfile.lib")
		return domain.Fail(diags...), nil
	}
}

func checkNoEmptyDirs(ctx *Context) (domain.CheckResult, error) {
	empty := ctx.Package.EmptyDirs()
	if len(empty) == 0 {
		return domain.Pass(), nil
	}
	diags := []string{"There should be no empty directories in the package. The following empty directories were found:"}
	diags = append(diags, pathLines(empty)...)
	diags = append(diags,
		"If a directory should be populated but is not, this might indicate an error in the portfile.\n"+
			"If the directories are not needed and their creation cannot be disabled, use something like this in the portfile to remove them:\n\n"+
			"    file(REMOVE_RECURSE ${CURRENT_PACKAGES_DIR}/a/dir ${CURRENT_PACKAGES_DIR}/some/other/dir)")
	return domain.Fail(diags...), nil
}

// The two reserved metadata files allowed directly in the package root and
// its debug mirror.
func reservedMetadataFile(name string) bool {
	return strings.EqualFold(name, "CONTROL") || strings.EqualFold(name, "BUILD_INFO")
}

func checkNoStrayFiles(dir string) func(*Context) (domain.CheckResult, error) {
	return func(ctx *Context) (domain.CheckResult, error) {
		var stray []domain.TreeEntry
		for _, e := range ctx.Package.FilesDirectlyIn(dir) {
			if !reservedMetadataFile(e.Base()) {
				stray = append(stray, e)
			}
		}
		if len(stray) == 0 {
			return domain.Pass(), nil
		}
		where := "/" + dir
		if dir == "" {
			where = "the package root"
		}
		diags := []string{fmt.Sprintf("The following files are placed in %s:", where)}
		diags = append(diags, pathLines(stray)...)
		diags = append(diags, "Files cannot be present in those directories.")
		return domain.Fail(diags...), nil
	}
}
