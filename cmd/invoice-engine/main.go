package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mvandervelden/invoice-engine/internal/catalog"
	"github.com/mvandervelden/invoice-engine/internal/common"
	"github.com/mvandervelden/invoice-engine/internal/llm/ollama"
	"github.com/mvandervelden/invoice-engine/internal/pipeline"
)

func main() {
	var (
		in      = flag.String("in", "", "invoice text file (default: stdin)")
		ctxFile = flag.String("context", "", "reference catalog JSON file (optional)")
		out     = flag.String("out", "", "output JSON file (default: stdout)")
		useLLM  = flag.Bool("llm", false, "also run the LLM extraction strategy")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()

	text, err := readInput(*in)
	if err != nil {
		logger.Error("read input", "error", err)
		os.Exit(1)
	}

	var cat *catalog.Catalog
	if *ctxFile != "" {
		cat, err = catalog.FromFile(*ctxFile)
		if err != nil {
			logger.Error("load catalog", "path", *ctxFile, "error", err)
			os.Exit(1)
		}
	}

	engine := pipeline.New(cfg.Engine, logger)
	if *useLLM {
		engine = engine.WithLLM(ollama.NewClient(ollama.Config{
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
			Lenient:     true,
		}, logger))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := engine.Process(ctx, pipeline.Request{Text: text, Context: cat})
	if err != nil {
		logger.Error("process", "error", err)
		os.Exit(1)
	}

	if err := writeJSON(*out, result); err != nil {
		logger.Error("write output", "error", err)
		os.Exit(1)
	}
}

func readInput(path string) (string, error) {
	if path == "" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

func writeJSON(path string, v any) error {
	w := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
