package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/jsamuelsen11/cleanarch/internal/app/lifecycle"
	"github.com/jsamuelsen11/cleanarch/internal/app/plan"
	"github.com/jsamuelsen11/cleanarch/internal/domain"
	"github.com/jsamuelsen11/cleanarch/internal/domain/declaration"
	"github.com/jsamuelsen11/cleanarch/internal/ports"
)

// Files written by install besides the layer configuration.
const (
	DeptracFile = "deptrac.yaml"
	RectorFile  = "rector.php"
)

// Compile-time check that InstallService implements ports.InstallService.
var _ ports.InstallService = (*InstallService)(nil)

// InstallUseCase writes the project configuration files. Its rollback
// restores every file that was replaced and removes every file that was
// created before the failure.
type InstallUseCase struct {
	plan *plan.Plan
}

// Name implements usecase.UseCase.
func (*InstallUseCase) Name() string { return "install" }

// Rollback implements usecase.UseCase.
func (uc *InstallUseCase) Rollback(ctx context.Context) error {
	return uc.plan.Rollback(ctx)
}

// InstallOptions holds the project settings install needs.
type InstallOptions struct {
	// LayerFile is where the layer configuration is written.
	LayerFile string

	// BaseFolder is the source root. Empty means "src" when that directory
	// exists and "app" otherwise.
	BaseFolder string

	// RulesNamespace is the PHP namespace of the rector rules that add the
	// marker interfaces.
	RulesNamespace string
}

// InstallService implements ports.InstallService.
type InstallService struct {
	existing ports.LayerResolver
	configs  ports.ConfigRenderer
	stubs    ports.StubStore
	prompter ports.Prompter
	runner   *lifecycle.Runner
	opts     InstallOptions
	logger   *slog.Logger
}

// NewInstallService creates an InstallService. existing resolves the layer
// configuration already on disk; it supplies the rector rule namespaces when
// the user keeps that file.
func NewInstallService(
	existing ports.LayerResolver,
	configs ports.ConfigRenderer,
	stubs ports.StubStore,
	prompter ports.Prompter,
	runner *lifecycle.Runner,
	opts InstallOptions,
	logger *slog.Logger,
) *InstallService {
	return &InstallService{
		existing: existing,
		configs:  configs,
		stubs:    stubs,
		prompter: prompter,
		runner:   runner,
		opts:     opts,
		logger:   logger,
	}
}

// Install implements ports.InstallService. Files are handled in the order
// deptrac.yaml, layer configuration, rector.php. An existing file is only
// replaced when force is set or the user confirms.
func (s *InstallService) Install(ctx context.Context, force bool) (*ports.InstallReport, error) {
	base := s.opts.BaseFolder
	if base == "" {
		base = DetectBaseFolder()
	}
	defaults := s.configs.Defaults(base)

	s.logger.InfoContext(ctx, "installing project configuration",
		slog.String("base_folder", base),
		slog.Bool("force", force),
	)

	report := &ports.InstallReport{}
	uc := &InstallUseCase{plan: plan.New()}

	writeDeptrac, err := s.decide(ctx, DeptracFile, force)
	if err != nil {
		return nil, err
	}
	if writeDeptrac {
		data, err := s.configs.Deptrac(base, defaults)
		if err != nil {
			return nil, err
		}
		if err := s.stage(uc.plan, report, DeptracFile, data); err != nil {
			return nil, err
		}
	} else {
		report.Kept = append(report.Kept, DeptracFile)
	}

	// The rector rules target whatever layer configuration ends up on disk.
	specs := defaults
	writeLayers, err := s.decide(ctx, s.opts.LayerFile, force)
	if err != nil {
		return nil, err
	}
	if writeLayers {
		data, err := s.configs.LayerConfig(defaults)
		if err != nil {
			return nil, err
		}
		if err := s.stage(uc.plan, report, s.opts.LayerFile, data); err != nil {
			return nil, err
		}
	} else {
		report.Kept = append(report.Kept, s.opts.LayerFile)
		specs = s.existing.All()
	}

	rules, err := s.rectorRules(specs)
	if err != nil {
		return nil, err
	}

	writeRector, err := s.decide(ctx, RectorFile, force)
	if err != nil {
		return nil, err
	}
	if writeRector {
		data, err := s.stubs.Render("rector.php", map[string]string{
			"basePath": base,
			"rules":    rules,
		})
		if err != nil {
			return nil, err
		}
		if err := s.stage(uc.plan, report, RectorFile, data); err != nil {
			return nil, err
		}
	} else {
		report.Kept = append(report.Kept, RectorFile)
		report.RectorSnippet = rules
	}

	_, err = lifecycle.Invoke(ctx, s.runner, uc, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, uc.plan.Commit(ctx)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to install project configuration",
			slog.String("operation", "Install"),
			slog.Any("error", err),
		)
		return nil, err
	}

	return report, nil
}

// decide reports whether path should be written.
func (s *InstallService) decide(ctx context.Context, path string, force bool) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return true, nil
	case err != nil:
		return false, fmt.Errorf("checking %s: %w", path, err)
	case force:
		return true, nil
	}

	ok, err := s.prompter.Confirm(ctx,
		fmt.Sprintf("A %s file already exists. Do you want to overwrite it?", path))
	if err != nil {
		return false, fmt.Errorf("asking to overwrite %s: %w", path, err)
	}
	return ok, nil
}

func (s *InstallService) stage(p *plan.Plan, report *ports.InstallReport, path string, data []byte) error {
	if err := p.AddAction(plan.WriteFile(path, data, true)); err != nil {
		return err
	}
	report.Written = append(report.Written, path)
	return nil
}

// rectorRules renders one configured rule per configured layer, joined and
// without the trailing newline.
func (s *InstallService) rectorRules(specs []domain.LayerSpec) (string, error) {
	var b strings.Builder
	for _, spec := range specs {
		if !spec.Configured() {
			continue
		}
		rule, err := s.stubs.Render("rector_rule", map[string]string{
			"ruleClass":       RectorRuleClass(s.opts.RulesNamespace, spec.Layer),
			"targetNamespace": declaration.Join(spec.Namespace),
		})
		if err != nil {
			return "", err
		}
		b.Write(rule)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// RectorRuleClass returns the fully-qualified class of the rector rule that
// tags a layer, e.g. CleanArchitecture\Rector\Rules\AddEntityInterfaceRector.
func RectorRuleClass(rulesNamespace string, layer domain.Layer) string {
	return declaration.Join(rulesNamespace, "Add"+layer.MarkerInterface()+"Rector")
}

// DetectBaseFolder returns "src" when ./src is a directory, else "app".
func DetectBaseFolder() string {
	if info, err := os.Stat("src"); err == nil && info.IsDir() {
		return "src"
	}
	return "app"
}
