// Package buildinfo parses the BUILD_INFO metadata file a recipe stages into
// the package root: colon-separated key/value lines declaring linkages and
// enabled policies.
package buildinfo

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/portlint/portlint/internal/domain"
)

const fileName = "BUILD_INFO"

const policyKeyPrefix = "Policy"

// Loader implements domain.BuildInfoLoader.
type Loader struct{}

func New() *Loader { return &Loader{} }

// Load reads BUILD_INFO from packageDir. A missing file yields a zero
// BuildInfo: the file is optional and explicit configuration wins anyway.
func (l *Loader) Load(packageDir string) (domain.BuildInfo, error) {
	f, err := os.Open(filepath.Join(packageDir, fileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.BuildInfo{}, nil
		}
		return domain.BuildInfo{}, err
	}
	defer f.Close()

	fields := make(map[string]string)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			return domain.BuildInfo{}, fmt.Errorf("parsing %s: malformed line %q", fileName, line)
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := sc.Err(); err != nil {
		return domain.BuildInfo{}, fmt.Errorf("reading %s: %w", fileName, err)
	}

	return decode(fields)
}

func decode(fields map[string]string) (domain.BuildInfo, error) {
	var info domain.BuildInfo
	if err := mapstructure.WeakDecode(fields, &info); err != nil {
		return domain.BuildInfo{}, fmt.Errorf("decoding %s: %w", fileName, err)
	}
	info.CRTLinkage = domain.Linkage(strings.ToLower(string(info.CRTLinkage)))
	info.LibraryLinkage = domain.Linkage(strings.ToLower(string(info.LibraryLinkage)))

	// Policy lines look like "PolicyEmptyPackage: enabled".
	for key := range fields {
		if strings.HasPrefix(key, policyKeyPrefix) {
			if _, ok := domain.ParsePolicy(key); !ok {
				return domain.BuildInfo{}, fmt.Errorf("%s: unknown policy key %q", fileName, key)
			}
		}
	}
	// Collect in canonical order so downstream output is deterministic.
	for _, policy := range domain.AllPolicies {
		if strings.EqualFold(fields[policyKeyPrefix+string(policy)], "enabled") {
			info.Policies = append(info.Policies, policy)
		}
	}
	return info, nil
}
