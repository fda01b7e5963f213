package lint_test

import (
	"strings"
	"testing"

	"github.com/portlint/portlint/internal/domain"
	"github.com/portlint/portlint/internal/domain/lint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cleanStaticTree(t *testing.T) *treeBuilder {
	return newTree(t).
		file("CONTROL", []byte("Package: zlib\n")).
		file("BUILD_INFO", []byte("CRTLinkage: static\nLibraryLinkage: static\n")).
		file("include/zlib.h", []byte("#pragma once\n")).
		file("lib/zlib.lib", x64Lib).
		file("debug/lib/zlibd.lib", x64Lib).
		file("share/zlib/copyright", []byte("MIT\n"))
}

func staticExpected() domain.ExpectedConfiguration {
	return domain.ExpectedConfiguration{
		TargetArchitecture: "x64",
		CRTLinkage:         domain.LinkageStatic,
		LibraryLinkage:     domain.LinkageStatic,
	}
}

func mustRun(t *testing.T, ctx *lint.Context) *domain.ValidationReport {
	t.Helper()
	report, err := lint.Run(ctx)
	require.NoError(t, err)
	return report
}

func TestLibArchitectureMismatchListsFileExactlyOnce(t *testing.T) {
	pkg := cleanDynamicTree(t).file("lib/zlib.lib", x86Lib).snapshot()
	report := mustRun(t, newContext(pkg, defaultExpected()))

	assert.Equal(t, 1, report.ErrorCount)
	out := joined(report)
	assert.Contains(t, out, "built for an incorrect architecture")
	assert.Equal(t, 1, strings.Count(out, "lib/zlib.lib: expected x64, but was x86"))
}

func TestMultiArchArchiveFailsDespitePolicies(t *testing.T) {
	pkg := cleanDynamicTree(t).
		file("lib/zlib.lib", libBytes(0x8664, 0x14c)).
		snapshot()
	ctx := newContext(pkg, defaultExpected(),
		domain.PolicyEmptyIncludeFolder,
		domain.PolicyDllsWithoutLibs,
		domain.PolicyAllowObsoleteMsvcrt,
		domain.PolicyOnlyReleaseCrt,
	)

	report := mustRun(t, ctx)

	assert.Equal(t, 1, report.ErrorCount)
	assert.Contains(t, joined(report), "Found more than 1 architecture in file lib/zlib.lib")
}

func TestArchitectureLessArchivePasses(t *testing.T) {
	pkg := cleanDynamicTree(t).file("lib/zlib.lib", libBytes()).snapshot()
	report := mustRun(t, newContext(pkg, defaultExpected()))

	assert.Equal(t, 0, report.ErrorCount, "diagnostics: %s", joined(report))
}

func TestDLLArchitectureMismatch(t *testing.T) {
	pkg := cleanDynamicTree(t).file("bin/zlib1.dll", x86DLL).snapshot()
	report := mustRun(t, newContext(pkg, defaultExpected()))

	assert.Equal(t, 1, report.ErrorCount)
	assert.Contains(t, joined(report), "    bin/zlib1.dll: expected x64, but was x86")
}

func TestLibsAvailableForDLLs(t *testing.T) {
	tree := func(t *testing.T) *domain.TreeSnapshot {
		return newTree(t).
			file("CONTROL", []byte("x")).
			file("include/zlib.h", []byte("x")).
			file("bin/zlib1.dll", x64DLL).
			file("debug/bin/zlib1d.dll", x64DLL).
			file("share/zlib/copyright", []byte("x")).
			snapshot()
	}

	t.Run("dlls without import libs fail", func(t *testing.T) {
		report := mustRun(t, newContext(tree(t), defaultExpected()))

		assert.Equal(t, 2, report.ErrorCount)
		out := joined(report)
		assert.Contains(t, out, "Import libs were not present in /lib")
		assert.Contains(t, out, "Import libs were not present in /debug/lib")
		assert.Contains(t, out, "set(VCPKG_POLICY_DLLS_WITHOUT_LIBS enabled)")
	})

	t.Run("policy suppresses the failure", func(t *testing.T) {
		report := mustRun(t, newContext(tree(t), defaultExpected(), domain.PolicyDllsWithoutLibs))
		assert.Equal(t, 0, report.ErrorCount, "diagnostics: %s", joined(report))
	})
}

func TestStaticBuildRejectsEveryDLL(t *testing.T) {
	pkg := cleanStaticTree(t).
		file("bin/zlib1.dll", x64DLL).
		file("debug/bin/zlib1d.dll", x64DLL).
		file("share/zlib/helper.dll", x64DLL).
		snapshot()

	report := mustRun(t, newContext(pkg, staticExpected()))

	out := joined(report)
	assert.Contains(t, out, "DLLs should not be present in a static build")
	assert.Contains(t, out, "    bin/zlib1.dll")
	assert.Contains(t, out, "    debug/bin/zlib1d.dll")
	assert.Contains(t, out, "    share/zlib/helper.dll")
	assert.Contains(t, out, "There should be no bin/ directory in a static build")
	assert.Contains(t, out, "There should be no debug/bin/ directory in a static build")
}

func TestMatchingLibCounts(t *testing.T) {
	tree := func(t *testing.T) *domain.TreeSnapshot {
		return newTree(t).
			file("CONTROL", []byte("x")).
			file("include/zlib.h", []byte("x")).
			file("debug/lib/zlibd.lib", x64Lib).
			file("share/zlib/copyright", []byte("x")).
			snapshot()
	}

	t.Run("mismatch fails when no build type is pinned", func(t *testing.T) {
		report := mustRun(t, newContext(tree(t), defaultExpected()))

		out := joined(report)
		assert.Contains(t, out, "Mismatching number of debug and release binaries. Found 1 for debug but 0 for release.")
		assert.Contains(t, out, "Release binaries were not found")
	})

	t.Run("pinned build type skips the comparison", func(t *testing.T) {
		expected := defaultExpected()
		expected.BuildType = domain.BuildTypeDebug
		report := mustRun(t, newContext(tree(t), expected))

		assert.NotContains(t, joined(report), "Mismatching number of debug and release binaries")
	})
}

func TestLibCMakeDirsAreFlagged(t *testing.T) {
	pkg := cleanDynamicTree(t).
		file("lib/cmake/zlib/zlibConfig.cmake", []byte("x")).
		file("debug/lib/cmake/zlib/zlibConfig.cmake", []byte("x")).
		snapshot()

	report := mustRun(t, newContext(pkg, defaultExpected()))

	out := joined(report)
	assert.Contains(t, out, "The /lib/cmake folder should be merged with /debug/lib/cmake and moved to /share/zlib/cmake.")
	assert.Contains(t, out, "The /debug/lib/cmake folder should be merged with /lib/cmake into /share/zlib")
	assert.Contains(t, out, "cmake files were found outside /share/zlib")
	assert.Contains(t, out, "    lib/cmake/zlib/zlibConfig.cmake")
}

func TestDebugIncludeAllowsInterfaceFiles(t *testing.T) {
	t.Run("ifc files are exempt", func(t *testing.T) {
		pkg := cleanDynamicTree(t).file("debug/include/zlib.ifc", []byte("x")).snapshot()
		report := mustRun(t, newContext(pkg, defaultExpected()))
		assert.Equal(t, 0, report.ErrorCount, "diagnostics: %s", joined(report))
	})

	t.Run("headers are not", func(t *testing.T) {
		pkg := cleanDynamicTree(t).file("debug/include/zlib.h", []byte("x")).snapshot()
		report := mustRun(t, newContext(pkg, defaultExpected()))

		assert.Equal(t, 1, report.ErrorCount)
		out := joined(report)
		assert.Contains(t, out, "should not be duplicated into the /debug/include directory")
		assert.Contains(t, out, "    debug/include/zlib.h")
	})
}

func TestDebugShareIsRejected(t *testing.T) {
	pkg := cleanDynamicTree(t).file("debug/share/zlib/usage", []byte("x")).snapshot()
	report := mustRun(t, newContext(pkg, defaultExpected()))

	assert.Contains(t, joined(report), "/debug/share should not exist.")
}

func TestCopyrightSuggestions(t *testing.T) {
	missingCopyright := func(t *testing.T) *domain.TreeSnapshot {
		return newTree(t).
			file("CONTROL", []byte("x")).
			file("include/zlib.h", []byte("x")).
			file("lib/zlib.lib", x64Lib).
			file("debug/lib/zlibd.lib", x64Lib).
			snapshot()
	}

	t.Run("single candidate gets a ready-made portfile snippet", func(t *testing.T) {
		ctx := newContext(missingCopyright(t), defaultExpected())
		ctx.Source = &domain.TreeSnapshot{Entries: []domain.TreeEntry{
			{RelPath: "src", IsDir: true},
			{RelPath: "src/zlib-1.3", IsDir: true},
			{RelPath: "src/zlib-1.3/LICENSE"},
			{RelPath: "src/zlib-1.3/deep", IsDir: true},
			{RelPath: "src/zlib-1.3/deep/COPYING"},
		}}

		report := mustRun(t, ctx)

		out := joined(report)
		assert.Contains(t, out, "must be available at ${CURRENT_PACKAGES_DIR}/share/zlib/copyright")
		assert.Contains(t, out, "file(COPY ${CURRENT_BUILDTREES_DIR}/src/zlib-1.3/LICENSE DESTINATION ${CURRENT_PACKAGES_DIR}/share/zlib)")
		assert.Contains(t, out, "file(RENAME ${CURRENT_PACKAGES_DIR}/share/zlib/LICENSE ${CURRENT_PACKAGES_DIR}/share/zlib/copyright)")
	})

	t.Run("several candidates are listed", func(t *testing.T) {
		ctx := newContext(missingCopyright(t), defaultExpected())
		ctx.Source = &domain.TreeSnapshot{Entries: []domain.TreeEntry{
			{RelPath: "src/zlib-1.3/LICENSE"},
			{RelPath: "src/zlib-1.3/COPYING"},
		}}

		report := mustRun(t, ctx)

		out := joined(report)
		assert.Contains(t, out, "The following files are potential copyright files:")
		assert.Contains(t, out, "    src/zlib-1.3/LICENSE")
		assert.Contains(t, out, "    src/zlib-1.3/COPYING")
	})
}

func TestExesInBinAreRejected(t *testing.T) {
	pkg := cleanDynamicTree(t).file("bin/minigzip.exe", []byte("MZ")).snapshot()
	report := mustRun(t, newContext(pkg, defaultExpected()))

	assert.Equal(t, 1, report.ErrorCount)
	out := joined(report)
	assert.Contains(t, out, "EXEs are not valid distribution targets")
	assert.Contains(t, out, "    bin/minigzip.exe")
}

func TestDLLsInLibDirAreRejected(t *testing.T) {
	pkg := cleanDynamicTree(t).file("lib/zlib1.dll", x64DLL).snapshot()
	report := mustRun(t, newContext(pkg, defaultExpected()))

	assert.Equal(t, 1, report.ErrorCount)
	out := joined(report)
	assert.Contains(t, out, "Please move them to /bin or /debug/bin")
	assert.Contains(t, out, "    lib/zlib1.dll")
}

func TestDLLWithoutExportsIsFlagged(t *testing.T) {
	ctx := newContext(cleanDynamicTree(t).snapshot(), defaultExpected())
	ctx.Tool = &fakeTool{
		defaultOut: exportsOK,
		outputs:    map[string]string{"exports zlib1.dll": "File Type: DLL\n\n  Summary\n"},
	}

	report := mustRun(t, ctx)

	assert.Equal(t, 1, report.ErrorCount)
	out := joined(report)
	assert.Contains(t, out, "The following DLLs have no exports:")
	assert.Contains(t, out, "    bin/zlib1.dll")
	assert.NotContains(t, out, "    debug/bin/zlib1d.dll")
}

func TestUWPContainerBit(t *testing.T) {
	t.Run("only checked for WindowsStore targets", func(t *testing.T) {
		ctx := newContext(cleanDynamicTree(t).snapshot(), defaultExpected())
		ctx.Tool = &fakeTool{defaultOut: exportsOK}

		report := mustRun(t, ctx)
		assert.Equal(t, 0, report.ErrorCount, "diagnostics: %s", joined(report))
	})

	t.Run("missing bit fails on WindowsStore", func(t *testing.T) {
		expected := defaultExpected()
		expected.SystemName = domain.SystemWindowsStore
		ctx := newContext(cleanDynamicTree(t).snapshot(), expected)
		ctx.Tool = &fakeTool{
			defaultOut: exportsOK,
			outputs: map[string]string{
				"headers zlib1.dll":  "            8664 machine (x64)\n",
				"headers zlib1d.dll": "            8664 machine (x64)\n                 App Container\n",
			},
		}

		report := mustRun(t, ctx)

		assert.Equal(t, 1, report.ErrorCount)
		out := joined(report)
		assert.Contains(t, out, "do not have the App Container bit set")
		assert.Contains(t, out, "    bin/zlib1.dll")
		assert.NotContains(t, out, "    debug/bin/zlib1d.dll")
	})
}

func TestOutdatedDynamicCRTDetection(t *testing.T) {
	dump := "Image has the following dependencies:\n\n    KERNEL32.dll\n    MSVCR100.dll\n"
	makeCtx := func(t *testing.T, policies ...domain.Policy) *lint.Context {
		ctx := newContext(cleanDynamicTree(t).snapshot(), defaultExpected(), policies...)
		ctx.Tool = &fakeTool{
			defaultOut: exportsOK,
			outputs:    map[string]string{"dependents zlib1.dll": dump},
		}
		return ctx
	}

	t.Run("outdated crt fails", func(t *testing.T) {
		report := mustRun(t, makeCtx(t))

		assert.Equal(t, 1, report.ErrorCount)
		out := joined(report)
		assert.Contains(t, out, "Detected outdated dynamic CRT in the following files:")
		assert.Contains(t, out, "    bin/zlib1.dll: msvcr100.dll")
	})

	t.Run("AllowObsoleteMsvcrt suppresses it", func(t *testing.T) {
		report := mustRun(t, makeCtx(t, domain.PolicyAllowObsoleteMsvcrt))
		assert.Equal(t, 0, report.ErrorCount, "diagnostics: %s", joined(report))
	})
}

func TestCRTLinkageOfStaticLibs(t *testing.T) {
	makeCtx := func(t *testing.T, policies ...domain.Policy) *lint.Context {
		ctx := newContext(cleanStaticTree(t).snapshot(), staticExpected(), policies...)
		ctx.Tool = &fakeTool{outputs: map[string]string{
			"directives zlibd.lib": "   /DEFAULTLIB:MSVCRTD\n",
			"directives zlib.lib":  "   /DEFAULTLIB:LIBCMT\n",
		}}
		return ctx
	}

	t.Run("debug lib linked against the dynamic crt fails", func(t *testing.T) {
		report := mustRun(t, makeCtx(t))

		assert.Equal(t, 1, report.ErrorCount)
		out := joined(report)
		assert.Contains(t, out, "Expected Debug,static crt linkage, but the following libs had invalid crt linkage:")
		assert.Contains(t, out, "    debug/lib/zlibd.lib: Debug,dynamic")
	})

	t.Run("OnlyReleaseCrt skips the debug configuration", func(t *testing.T) {
		report := mustRun(t, makeCtx(t, domain.PolicyOnlyReleaseCrt))
		assert.Equal(t, 0, report.ErrorCount, "diagnostics: %s", joined(report))
	})
}

func TestStrayFilesOutsideReservedMetadata(t *testing.T) {
	pkg := cleanDynamicTree(t).
		file("readme.txt", []byte("x")).
		file("debug/notes.txt", []byte("x")).
		snapshot()

	report := mustRun(t, newContext(pkg, defaultExpected()))

	assert.Equal(t, 2, report.ErrorCount)
	out := joined(report)
	assert.Contains(t, out, "The following files are placed in the package root:")
	assert.Contains(t, out, "    readme.txt")
	assert.Contains(t, out, "The following files are placed in /debug:")
	assert.Contains(t, out, "    debug/notes.txt")
	assert.NotContains(t, out, "CONTROL")
	assert.NotContains(t, out, "BUILD_INFO")
}

func TestEmptyDirectoriesAreRejected(t *testing.T) {
	pkg := cleanDynamicTree(t).dir("debug/empty").snapshot()
	report := mustRun(t, newContext(pkg, defaultExpected()))

	assert.Equal(t, 1, report.ErrorCount)
	out := joined(report)
	assert.Contains(t, out, "There should be no empty directories in the package.")
	assert.Contains(t, out, "    debug/empty")
}

func TestEmptyIncludeFolderPolicy(t *testing.T) {
	pkg := newTree(t).
		file("CONTROL", []byte("x")).
		file("lib/zlib.lib", x64Lib).
		file("debug/lib/zlibd.lib", x64Lib).
		file("share/zlib/copyright", []byte("x")).
		snapshot()

	report := mustRun(t, newContext(pkg, defaultExpected(), domain.PolicyEmptyIncludeFolder))

	assert.Equal(t, 0, report.ErrorCount, "diagnostics: %s", joined(report))
}
