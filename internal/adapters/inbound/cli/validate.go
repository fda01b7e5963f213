package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/portlint/portlint/internal/adapters/outbound/buildinfo"
	"github.com/portlint/portlint/internal/adapters/outbound/config"
	"github.com/portlint/portlint/internal/adapters/outbound/dumpbin"
	"github.com/portlint/portlint/internal/adapters/outbound/gitinfo"
	"github.com/portlint/portlint/internal/adapters/outbound/scanner"
	"github.com/portlint/portlint/internal/adapters/outbound/tui"
	"github.com/portlint/portlint/internal/application"
	"github.com/portlint/portlint/internal/domain"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var (
		name        string
		triplet     string
		configPath  string
		buildtrees  string
		ports       string
		dumpbinPath string
		jsonOutput  bool
		ciMode      bool
	)

	cmd := &cobra.Command{
		Use:   "validate <package-dir>",
		Short: "Validate a built package's staged output directory",
		Long:  "Run all post-build checks against a staged package directory and report how many failed, with a remediation hint per failure.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			packageDir := args[0]
			if name == "" {
				name = filepath.Base(packageDir)
			}

			svc := application.NewValidateService(
				scanner.New(),
				config.New(),
				buildinfo.New(),
				gitinfo.New(),
				dumpbin.New(dumpbinPath),
			)

			report, err := svc.Validate(application.ValidateRequest{
				Spec:          domain.PackageSpec{Name: name, Triplet: triplet},
				PackageDir:    packageDir,
				BuildtreesDir: buildtrees,
				PortsDir:      ports,
				ConfigPath:    configPath,
			})
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderReport(report))
			}

			if ciMode && report.ErrorCount > 0 {
				return fmt.Errorf("package %s failed %d post-build check(s)", report.Package, report.ErrorCount)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Package name (defaults to the package directory basename)")
	cmd.Flags().StringVar(&triplet, "triplet", "", "Target triplet identifier, for the report header")
	cmd.Flags().StringVar(&configPath, "config", "", "Triplet configuration file (YAML)")
	cmd.Flags().StringVar(&buildtrees, "buildtrees", "", "Buildtrees root holding per-package source trees")
	cmd.Flags().StringVar(&ports, "ports", "", "Ports tree holding the package recipes")
	cmd.Flags().StringVar(&dumpbinPath, "dumpbin", "", "Path to the binary-introspection tool (export/CRT checks are skipped when unset)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&ciMode, "ci", false, "CI mode: exit 1 if any check fails")

	return cmd
}
