package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mvandervelden/invoice-engine/internal/catalog"
	"github.com/mvandervelden/invoice-engine/internal/common"
	"github.com/mvandervelden/invoice-engine/internal/export"
	"github.com/mvandervelden/invoice-engine/internal/pipeline"
)

const maxParallel = 8

func main() {
	var (
		dir     = flag.String("dir", "", "directory of invoice .txt files (required)")
		ctxFile = flag.String("context", "", "reference catalog JSON file (optional)")
		out     = flag.String("out", "invoices.xlsx", "output XLSX path")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if *dir == "" {
		logger.Error("usage: invoice-batch -dir <directory> [-context catalog.json] [-out report.xlsx]")
		os.Exit(2)
	}

	cfg := common.LoadConfig()

	var cat *catalog.Catalog
	if *ctxFile != "" {
		var err error
		cat, err = catalog.FromFile(*ctxFile)
		if err != nil {
			logger.Error("load catalog", "path", *ctxFile, "error", err)
			os.Exit(1)
		}
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		logger.Error("read dir", "dir", *dir, "error", err)
		os.Exit(1)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		paths = append(paths, filepath.Join(*dir, entry.Name()))
	}
	if len(paths) == 0 {
		logger.Error("no .txt files found", "dir", *dir)
		os.Exit(1)
	}

	engine := pipeline.New(cfg.Engine, logger)
	start := time.Now()

	var mu sync.Mutex
	var rows []export.BatchRow

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(maxParallel)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			b, err := os.ReadFile(path)
			if err != nil {
				logger.Error("read file", "path", path, "error", err)
				return err
			}
			result, err := engine.Process(ctx, pipeline.Request{Text: string(b), Context: cat})
			if err != nil {
				return err
			}
			mu.Lock()
			rows = append(rows, export.BatchRow{Name: filepath.Base(path), Result: result})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("batch failed", "error", err)
		os.Exit(1)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

	svc := export.NewService(logger)
	xlsx, err := svc.BatchWorkbook(rows)
	if err != nil {
		logger.Error("build workbook", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsx, 0o644); err != nil {
		logger.Error("write workbook", "path", *out, "error", err)
		os.Exit(1)
	}

	logger.Info("batch.ok",
		"files", len(rows),
		"out", *out,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
}
