package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mvandervelden/invoice-engine/internal/catalog"
	"github.com/mvandervelden/invoice-engine/internal/common"
	"github.com/mvandervelden/invoice-engine/internal/export"
	"github.com/mvandervelden/invoice-engine/internal/invoice"
	"github.com/mvandervelden/invoice-engine/internal/llm/ollama"
	"github.com/mvandervelden/invoice-engine/internal/pipeline"
)

// parseRequest is the HTTP input contract. The inline context overrides
// the server's catalog for that request.
type parseRequest struct {
	Text    string           `json:"text" binding:"required"`
	Context *catalog.Catalog `json:"context,omitempty"`
	UseLLM  bool             `json:"use_llm,omitempty"`
}

type server struct {
	cfg      *common.Config
	engine   *pipeline.Engine
	llm      *pipeline.Engine
	catalog  *catalog.Catalog
	exporter *export.Service
	logger   *slog.Logger
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(2)
	}

	s := &server{
		cfg:      cfg,
		engine:   pipeline.New(cfg.Engine, logger),
		exporter: export.NewService(logger),
		logger:   logger,
	}
	s.llm = pipeline.New(cfg.Engine, logger).WithLLM(ollama.NewClient(ollama.Config{
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
		Lenient:     true,
	}, logger))

	if cfg.Catalog.DSN != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		store, err := catalog.OpenStore(ctx, cfg.Catalog.DSN, cfg.Catalog.QueryTimeout, logger)
		if err != nil {
			cancel()
			logger.Error("open catalog store", "error", err)
			os.Exit(1)
		}
		cat, err := store.Load(ctx)
		cancel()
		store.Close()
		if err != nil {
			logger.Error("load catalog", "error", err)
			os.Exit(1)
		}
		s.catalog = cat
	}

	r := gin.Default()
	r.GET("/healthz", s.health)
	r.POST("/v1/parse", s.parse)
	r.POST("/v1/parse/export", s.parseExport)

	logger.Info("server.start", "addr", cfg.Server.HTTPAddr)
	if err := r.Run(cfg.Server.HTTPAddr); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func (s *server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *server) parse(c *gin.Context) {
	req, ok := bindParse(c)
	if !ok {
		return
	}
	result, err := s.process(c, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *server) parseExport(c *gin.Context) {
	req, ok := bindParse(c)
	if !ok {
		return
	}
	result, err := s.process(c, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	xlsx, err := s.exporter.ResultWorkbook(result)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="invoice.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", xlsx)
}

func (s *server) process(c *gin.Context, req parseRequest) (*invoice.Result, error) {
	cat := req.Context
	if cat == nil {
		cat = s.catalog
	}
	engine := s.engine
	if req.UseLLM {
		engine = s.llm
	}
	return engine.Process(c.Request.Context(), pipeline.Request{Text: req.Text, Context: cat})
}

func bindParse(c *gin.Context) (parseRequest, bool) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return req, false
	}
	return req, true
}
