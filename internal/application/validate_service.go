package application

import (
	"fmt"
	"path/filepath"

	"github.com/portlint/portlint/internal/domain"
	"github.com/portlint/portlint/internal/domain/lint"
)

// ValidateService orchestrates one post-build validation run:
// load config -> scan package -> merge BUILD_INFO -> run checks -> report.
type ValidateService struct {
	scanner   domain.PackageScanner
	config    domain.ConfigLoader
	buildInfo domain.BuildInfoLoader
	git       domain.GitInfo
	tool      domain.ToolRunner
}

func NewValidateService(
	scanner domain.PackageScanner,
	config domain.ConfigLoader,
	buildInfo domain.BuildInfoLoader,
	git domain.GitInfo,
	tool domain.ToolRunner,
) *ValidateService {
	return &ValidateService{
		scanner:   scanner,
		config:    config,
		buildInfo: buildInfo,
		git:       git,
		tool:      tool,
	}
}

// ValidateRequest identifies the package under validation and where its
// trees live.
type ValidateRequest struct {
	Spec       domain.PackageSpec
	PackageDir string
	// BuildtreesDir is the root holding per-package source build trees; the
	// copyright check searches <BuildtreesDir>/<name>/src. Optional.
	BuildtreesDir string
	// PortsDir is the recipe tree, used for the remediation pointer and the
	// traceability commit hash. Optional.
	PortsDir string
	// ConfigPath is the triplet configuration file. Optional.
	ConfigPath string
}

// sourceScanDepth covers src/<unpacked archive>/<root entry>.
const sourceScanDepth = 3

// Validate runs every check against the staged package and returns the
// accumulated report. Validation failures live inside the report; a non-nil
// error means a toolchain or configuration fault.
func (s *ValidateService) Validate(req ValidateRequest) (*domain.ValidationReport, error) {
	cfg, err := s.config.Load(req.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading triplet config: %w", err)
	}

	pkg, err := s.scanner.Scan(req.PackageDir)
	if err != nil {
		return nil, fmt.Errorf("scanning package: %w", err)
	}

	info, err := s.buildInfo.Load(req.PackageDir)
	if err != nil {
		return nil, fmt.Errorf("reading build info: %w", err)
	}

	expected, policies := merge(cfg, info)
	if err := expected.Validate(); err != nil {
		return nil, fmt.Errorf("invalid expected configuration: %w", err)
	}

	source := &domain.TreeSnapshot{}
	if req.BuildtreesDir != "" {
		source, err = s.scanner.ScanShallow(filepath.Join(req.BuildtreesDir, req.Spec.Name), sourceScanDepth)
		if err != nil {
			return nil, fmt.Errorf("scanning source tree: %w", err)
		}
	}

	report, err := lint.Run(&lint.Context{
		Spec:     req.Spec,
		Expected: expected,
		Policies: policies,
		Package:  pkg,
		Source:   source,
		Tool:     s.tool,
	})
	if err != nil {
		return nil, err
	}

	if req.PortsDir != "" {
		report.RecipeFile = filepath.Join(req.PortsDir, req.Spec.Name, "portfile.cmake")
		if s.git != nil {
			if hash, ok := s.git.HeadCommit(req.PortsDir); ok {
				report.CommitHash = hash
			}
		}
	}

	return report, nil
}

// merge overlays the BUILD_INFO declarations over the triplet configuration.
// The linkages BUILD_INFO records are the build's own statement of what it
// produced and take precedence; architecture, build type and system name stay
// with the triplet. Policies are unioned.
func merge(cfg domain.RunConfig, info domain.BuildInfo) (domain.ExpectedConfiguration, domain.PolicySet) {
	expected := cfg.Expected
	if info.CRTLinkage != "" {
		expected.CRTLinkage = info.CRTLinkage
	}
	if info.LibraryLinkage != "" {
		expected.LibraryLinkage = info.LibraryLinkage
	}
	if expected.PlatformToolset == "" {
		expected.PlatformToolset = info.PlatformToolset
	}

	var enabled []domain.Policy
	for _, name := range cfg.Policies {
		if p, ok := domain.ParsePolicy(name); ok {
			enabled = append(enabled, p)
		}
	}
	enabled = append(enabled, info.Policies...)
	return expected, domain.NewPolicySet(enabled...)
}
