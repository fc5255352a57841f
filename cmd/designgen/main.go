package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"homedesign/internal/bootstrap"
	"homedesign/internal/domain"
	"homedesign/internal/infra"
	"homedesign/internal/kv"
	"homedesign/internal/orchestrator"
	"homedesign/internal/render"
	"homedesign/internal/status"
	"homedesign/internal/storage"
	"homedesign/pkg/zip"
)

type options struct {
	spec string
	out  string
	zip  bool
	html bool
}

func main() {
	var opts options
	flag.StringVar(&opts.spec, "spec", "", "house spec file (YAML or JSON); defaults to the form defaults")
	flag.StringVar(&opts.out, "out", "", "export directory (defaults to EXPORT_DIR)")
	flag.BoolVar(&opts.zip, "zip", false, "also write design.zip next to the exported files")
	flag.BoolVar(&opts.html, "html", true, "include report.html in the export")
	flag.Parse()

	if err := run(opts); err != nil {
		exitWithError(err)
	}
}

func run(opts options) error {
	infra.LoadDotEnv()
	cfg, err := infra.LoadConfig()
	if err != nil {
		return err
	}
	logger := infra.NewLogger(cfg.AppEnv)

	spec, err := loadSpec(opts.spec)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := bootstrap.New(ctx, cfg, &logger)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	reporter := status.NewReporter(printStatus)
	pkg, err := pipeline.Orchestrator.Generate(ctx, spec, reporter)
	if err != nil {
		return errors.New(orchestrator.UserMessage(err))
	}
	if pkg.HasVideo() {
		defer pipeline.Objects.Release(pkg.VideoURL)
	}

	theme, err := kv.Theme(ctx, pipeline.Store)
	if err != nil {
		logger.Warn().Err(err).Msg("designgen: theme lookup failed")
		theme = kv.ThemeLight
	}
	generatedAt := time.Now().UTC()
	assets, err := render.Bundle(pkg, spec, pipeline.Objects, render.BundleOptions{
		HTML:        opts.html,
		Theme:       theme,
		GeneratedAt: generatedAt,
	})
	if err != nil {
		return err
	}

	root := strings.TrimSpace(opts.out)
	if root == "" {
		root = cfg.ExportDir
	}
	paths, err := export(ctx, root, generatedAt, assets, opts.zip)
	if err != nil {
		return err
	}

	logger.Info().Int("files", len(paths)).Bool("video", pkg.HasVideo()).Msg("designgen: export complete")
	for _, p := range paths {
		fmt.Println(p)
	}
	return nil
}

// export writes assets into a timestamped directory under root and
// optionally archives them as design.zip alongside.
func export(ctx context.Context, root string, generatedAt time.Time, assets []zip.Asset, withZip bool) ([]string, error) {
	base, err := storage.NewExportDir(root)
	if err != nil {
		return nil, err
	}
	dir, err := base.Sub("design-" + generatedAt.Format("20060102-150405"))
	if err != nil {
		return nil, err
	}
	paths, err := dir.WriteAssets(ctx, assets)
	if err != nil {
		return nil, err
	}
	if !withZip {
		return paths, nil
	}
	archive, err := zip.ArchiveAssets(assets, generatedAt)
	if err != nil {
		return nil, err
	}
	p, err := dir.Write(ctx, "design.zip", archive)
	if err != nil {
		return nil, err
	}
	return append(paths, p), nil
}

func loadSpec(path string) (domain.HouseSpec, error) {
	if strings.TrimSpace(path) == "" {
		return domain.DefaultHouseSpec(), nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return domain.HouseSpec{}, fmt.Errorf("read spec: %w", err)
	}
	var spec domain.HouseSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return domain.HouseSpec{}, fmt.Errorf("parse spec %s: %w", path, err)
	}
	spec.Normalize()
	return spec, nil
}

func printStatus(s domain.GenerationStatus) {
	if len(s.Messages) == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "[%s] %s\n", s.Stage, s.Messages[len(s.Messages)-1])
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
