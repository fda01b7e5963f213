package lint_test

import (
	"encoding/binary"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/portlint/portlint/internal/domain"
	"github.com/portlint/portlint/internal/domain/coff"
	"github.com/portlint/portlint/internal/domain/lint"
	"github.com/stretchr/testify/require"
)

// treeBuilder stages a package directory on disk and records the matching
// snapshot entries, so checks that read binary contents see real files.
type treeBuilder struct {
	t       *testing.T
	root    string
	entries map[string]domain.TreeEntry
}

func newTree(t *testing.T) *treeBuilder {
	t.Helper()
	return &treeBuilder{t: t, root: t.TempDir(), entries: make(map[string]domain.TreeEntry)}
}

func (b *treeBuilder) dir(rel string) *treeBuilder {
	b.t.Helper()
	require.NoError(b.t, os.MkdirAll(filepath.Join(b.root, filepath.FromSlash(rel)), 0o755))
	b.recordDirs(rel)
	return b
}

func (b *treeBuilder) file(rel string, data []byte) *treeBuilder {
	b.t.Helper()
	abs := filepath.Join(b.root, filepath.FromSlash(rel))
	require.NoError(b.t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(b.t, os.WriteFile(abs, data, 0o644))
	if parent := path.Dir(rel); parent != "." {
		b.recordDirs(parent)
	}
	b.entries[rel] = domain.TreeEntry{RelPath: rel, Ext: strings.ToLower(path.Ext(rel))}
	return b
}

func (b *treeBuilder) recordDirs(rel string) {
	for d := rel; d != "." && d != ""; d = path.Dir(d) {
		if _, ok := b.entries[d]; !ok {
			b.entries[d] = domain.TreeEntry{RelPath: d, IsDir: true}
		}
	}
}

func (b *treeBuilder) snapshot() *domain.TreeSnapshot {
	keys := make([]string, 0, len(b.entries))
	for k := range b.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]domain.TreeEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, b.entries[k])
	}
	return &domain.TreeSnapshot{Root: b.root, Entries: entries}
}

// fakeTool replays recorded introspection output, keyed by "<mode> <base>"
// with a fallback default.
type fakeTool struct {
	outputs    map[string]string
	defaultOut string
	err        error
	calls      int
}

func (f *fakeTool) Available() bool { return true }

func (f *fakeTool) Run(mode domain.ToolMode, binaryPath string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if out, ok := f.outputs[string(mode)+" "+filepath.Base(binaryPath)]; ok {
		return out, nil
	}
	return f.defaultOut, nil
}

const exportsOK = "    ordinal hint RVA      name\n\n          1    0 00011000 compress\n"

// ── synthetic binaries ──

func dllBytes(machine uint16) []byte {
	b := make([]byte, 0x40+24)
	b[0] = 'M'
	b[1] = 'Z'
	binary.LittleEndian.PutUint32(b[0x3c:], 0x40)
	copy(b[0x40:], "PE\x00\x00")
	binary.LittleEndian.PutUint16(b[0x44:], machine)
	return b
}

func coffMember(machine uint16) []byte {
	b := make([]byte, 20)
	binary.LittleEndian.PutUint16(b, machine)
	return b
}

func archiveMember(name string, data []byte) []byte {
	h := []byte(fmt.Sprintf("%-16s%-12d%-6d%-6d%-8s%-10d`\n", name, 0, 0, 0, "100666", len(data)))
	out := append(h, data...)
	if len(data)%2 == 1 {
		out = append(out, '\n')
	}
	return out
}

func libBytes(machines ...uint16) []byte {
	out := []byte("!<arch>\n")
	for i, m := range machines {
		out = append(out, archiveMember(fmt.Sprintf("m%d.obj/", i), coffMember(m))...)
	}
	return out
}

var (
	x64DLL = dllBytes(uint16(coff.MachineAMD64))
	x86DLL = dllBytes(uint16(coff.MachineI386))
	x64Lib = libBytes(uint16(coff.MachineAMD64))
	x86Lib = libBytes(uint16(coff.MachineI386))
)

// cleanDynamicTree stages a well-formed dynamic-linkage package.
func cleanDynamicTree(t *testing.T) *treeBuilder {
	return newTree(t).
		file("CONTROL", []byte("Package: zlib\n")).
		file("BUILD_INFO", []byte("CRTLinkage: dynamic\nLibraryLinkage: dynamic\n")).
		file("include/zlib.h", []byte("#pragma once\n")).
		file("lib/zlib.lib", x64Lib).
		file("debug/lib/zlibd.lib", x64Lib).
		file("bin/zlib1.dll", x64DLL).
		file("debug/bin/zlib1d.dll", x64DLL).
		file("share/zlib/copyright", []byte("MIT\n"))
}

func defaultExpected() domain.ExpectedConfiguration {
	return domain.ExpectedConfiguration{
		TargetArchitecture: "x64",
		CRTLinkage:         domain.LinkageDynamic,
		LibraryLinkage:     domain.LinkageDynamic,
	}
}

func newContext(pkg *domain.TreeSnapshot, expected domain.ExpectedConfiguration, policies ...domain.Policy) *lint.Context {
	return &lint.Context{
		Spec:     domain.PackageSpec{Name: "zlib", Triplet: "x64-windows"},
		Expected: expected,
		Policies: domain.NewPolicySet(policies...),
		Package:  pkg,
		Source:   &domain.TreeSnapshot{},
	}
}

func joined(report *domain.ValidationReport) string {
	return strings.Join(report.Diagnostics, "\n")
}
