package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/ecotrace/verity/pkg/analysis"
	"github.com/ecotrace/verity/pkg/classifier"
	"github.com/ecotrace/verity/pkg/config"
	"github.com/ecotrace/verity/pkg/httputil"
	"github.com/ecotrace/verity/pkg/store"
	"github.com/ecotrace/verity/pkg/telemetry"
	"github.com/ecotrace/verity/pkg/vision"
)

const Version = "0.1.0"

// Detector bundles the analysis pipeline with its optional backends.
// Every backend degrades gracefully: a missing model, database or cache
// narrows the ensemble but never prevents a verdict.
type Detector struct {
	pipeline *analysis.Pipeline
	cache    *store.ResultCache
	history  *store.HistoryStore
	sem      *httputil.Semaphore
	metrics  *telemetry.Metrics
	config   *config.Config
}

func NewDetector(cfg *config.Config) *Detector {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}

	cnn := classifier.NewCNNClassifier(cfg.ModelWeightsPath)
	if cnn.Ready() {
		log.Println("✓ Image classifier enabled (CNN weights loaded)")
	} else {
		log.Println("○ Image classifier disabled (no weight artifact)")
	}

	var textModel *classifier.TextClassifier
	if cfg.TextModelPath != "" || cfg.TextModelName != "" {
		textModel = classifier.NewTextClassifierWithFallback(classifier.TextConfig{
			ModelPath:       cfg.TextModelPath,
			ModelName:       cfg.TextModelName,
			OnnxLibraryPath: cfg.OnnxLibraryPath,
			Timeout:         cfg.AnalyzerTimeout,
		})
	}
	if textModel != nil && textModel.Ready() {
		log.Println("✓ Text classifier enabled (hugot/ONNX)")
	} else {
		log.Println("○ Text classifier disabled (no ONNX model found)")
	}

	visionAnalyzer := vision.New(vision.Config{
		APIKey:     cfg.VisionAPIKey,
		Model:      cfg.VisionModel,
		BaseURL:    cfg.VisionBaseURL,
		HTTPClient: httputil.SlowClient(),
	})
	if cfg.VisionAPIKey != "" {
		log.Printf("✓ Hosted vision analysis enabled (%s)", cfg.VisionModel)
	} else {
		log.Println("○ Hosted vision analysis disabled (no API key)")
	}

	orch := analysis.NewOrchestrator(cfg.AnalyzerTimeout,
		visionAnalyzer,
		classifier.NewAdapter(cnn, textModel),
		analysis.NewSymmetryAnalyzer(cfg.FaceCascadePath),
		analysis.NewFrequencyAnalyzer(),
		analysis.NewWatermarkAnalyzer(),
		analysis.NewELAAnalyzer(),
		analysis.NewStatisticsAnalyzer(),
	)

	cache := store.NewResultCache(cfg.RedisAddr, cfg.CacheTTL)
	if cache.Enabled() {
		log.Printf("✓ Result cache enabled (redis %s)", cfg.RedisAddr)
	} else {
		log.Println("○ Result cache disabled")
	}

	var history *store.HistoryStore
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		h, err := store.NewHistoryStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Printf("○ History disabled (database unavailable: %v)", err)
		} else if err := h.EnsureSchema(ctx); err != nil {
			log.Printf("○ History disabled (schema setup failed: %v)", err)
			h.Close()
		} else {
			history = h
			log.Println("✓ History enabled (postgres)")
		}
	} else {
		log.Println("○ History disabled (no database URL)")
	}

	return &Detector{
		pipeline: analysis.NewPipeline(orch),
		cache:    cache,
		history:  history,
		sem:      httputil.NewSemaphore(cfg.MaxConcurrent),
		metrics:  telemetry.Global(),
		config:   cfg,
	}
}

// Analyze runs one request through cache and pipeline and records the
// result in history and telemetry.
func (d *Detector) Analyze(ctx context.Context, req *analysis.Request) (*analysis.Result, error) {
	if err := d.sem.Acquire(ctx); err != nil {
		return nil, err
	}
	defer d.sem.Release()

	key := store.Key(req)
	if cached, ok := d.cache.Get(ctx, key); ok {
		d.metrics.RecordCacheHit()
		return cached, nil
	}
	d.metrics.RecordCacheMiss()

	result, err := d.pipeline.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}

	failures := 0
	for _, out := range result.Outputs {
		if !out.Succeeded {
			failures++
		}
	}
	d.metrics.RecordAnalyzerFailures(failures)
	d.metrics.RecordAnalysis(string(req.ContentType), result.FinalVerdict == analysis.VerdictSynthetic)

	d.cache.Set(ctx, key, result)
	if d.history != nil {
		if err := d.history.Save(ctx, result); err != nil {
			d.metrics.RecordHistoryError()
			log.Printf("[WARN] History write failed: %v", err)
		}
	}
	return result, nil
}

func (d *Detector) Close() {
	if d.history != nil {
		d.history.Close()
	}
	_ = d.cache.Close()
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cfg := config.NewDefaultConfig()
		if len(os.Args) > 2 {
			cfg.Port = os.Args[2]
		}
		cfg.MustValidate()
		runHTTPServer(cfg)
	case "scan":
		if len(os.Args) < 3 {
			fmt.Println("Usage: verity scan <file-or-text>")
			os.Exit(1)
		}
		runCLIScan(strings.Join(os.Args[2:], " "))
	case "version":
		fmt.Printf("Verity v%s\n", Version)
		fmt.Println("Synthetic content detection gateway")
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("Verity v%s - Synthetic content detection gateway\n\n", Version)
	fmt.Println("Usage:")
	fmt.Println("  verity serve [port]      Start HTTP server (default: 8080)")
	fmt.Println("  verity scan <file>       Analyze an image file")
	fmt.Println("  verity scan <text>       Analyze text (non-file arguments)")
	fmt.Println("  verity version           Show version")
	fmt.Println("")
	fmt.Println("Examples:")
	fmt.Println("  verity serve 8080")
	fmt.Println("  verity scan ./photo.jpg")
	fmt.Println("  verity scan \"It is important to note that...\"")
	fmt.Println("")
	fmt.Println("Environment Variables:")
	fmt.Println("  VERITY_VISION_API_KEY   API key for the hosted vision model")
	fmt.Println("  VERITY_MODEL_WEIGHTS    Path to CNN weight artifact")
	fmt.Println("  VERITY_TEXT_MODEL_PATH  Path to ONNX text model directory")
	fmt.Println("  VERITY_DATABASE_URL     Postgres URL for analysis history")
	fmt.Println("  VERITY_REDIS_ADDR       Redis address for result caching")
}

// ============================================================================
// HTTP Server Mode
// ============================================================================

func runHTTPServer(cfg *config.Config) {
	detector := NewDetector(cfg)
	defer detector.Close()

	app := fiber.New(fiber.Config{
		AppName:   "Verity",
		BodyLimit: cfg.MaxBodyBytes,
	})

	app.Get("/api/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"version": Version,
			"metrics": detector.metrics.Snapshot(),
		})
	})

	// Multipart upload: field "file" carries the image, optional field
	// "content_type" forces text handling of a text file.
	app.Post("/api/analyze", func(c fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "file field is required"})
		}
		f, err := fh.Open()
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "could not open upload"})
		}
		defer f.Close()
		payload, err := io.ReadAll(io.LimitReader(f, int64(cfg.MaxBodyBytes)))
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "could not read upload"})
		}

		contentType := analysis.ContentType(c.FormValue("content_type", string(analysis.ContentImage)))
		req := &analysis.Request{
			Content:     fh.Filename,
			ContentType: contentType,
			Payload:     payload,
		}
		if contentType == analysis.ContentText {
			req.Content = string(payload)
			req.Payload = nil
		}
		return respondWithResult(c, detector, req)
	})

	// JSON body: {"content_type": "text", "content": "..."} or
	// {"content_type": "image", "payload": "<base64>"}.
	app.Post("/api/analyze/json", func(c fiber.Ctx) error {
		var body struct {
			ContentType string `json:"content_type"`
			Content     string `json:"content"`
			Payload     string `json:"payload"`
		}
		if err := c.Bind().Body(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}
		req := &analysis.Request{
			Content:     body.Content,
			ContentType: analysis.ContentType(body.ContentType),
		}
		if req.ContentType == "" {
			req.ContentType = analysis.ContentText
		}
		if req.ContentType == analysis.ContentImage {
			if body.Payload == "" {
				return c.Status(400).JSON(fiber.Map{"error": "payload field is required for images"})
			}
			payload, err := base64.StdEncoding.DecodeString(body.Payload)
			if err != nil {
				return c.Status(400).JSON(fiber.Map{"error": "payload is not valid base64"})
			}
			req.Payload = payload
		} else if strings.TrimSpace(req.Content) == "" {
			return c.Status(400).JSON(fiber.Map{"error": "content field is required"})
		}
		return respondWithResult(c, detector, req)
	})

	app.Get("/api/history", func(c fiber.Ctx) error {
		if detector.history == nil {
			return c.Status(503).JSON(fiber.Map{"error": "history is not configured"})
		}
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		offset, _ := strconv.Atoi(c.Query("offset", "0"))
		records, err := detector.history.List(c.Context(), limit, offset)
		if err != nil {
			log.Printf("[WARN] History list failed: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "history lookup failed"})
		}
		if records == nil {
			records = []store.HistoryRecord{}
		}
		return c.JSON(fiber.Map{"records": records, "count": len(records)})
	})

	app.Get("/api/history/:id", func(c fiber.Ctx) error {
		if detector.history == nil {
			return c.Status(503).JSON(fiber.Map{"error": "history is not configured"})
		}
		record, err := detector.history.Get(c.Context(), c.Params("id"))
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "record not found"})
		}
		if err != nil {
			log.Printf("[WARN] History get failed: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "history lookup failed"})
		}
		return c.JSON(record)
	})

	app.Delete("/api/history/:id", func(c fiber.Ctx) error {
		if detector.history == nil {
			return c.Status(503).JSON(fiber.Map{"error": "history is not configured"})
		}
		err := detector.history.Delete(c.Context(), c.Params("id"))
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "record not found"})
		}
		if err != nil {
			log.Printf("[WARN] History delete failed: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "history delete failed"})
		}
		return c.JSON(fiber.Map{"deleted": true})
	})

	log.Printf("Verity gateway listening on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func respondWithResult(c fiber.Ctx, detector *Detector, req *analysis.Request) error {
	result, err := detector.Analyze(c.Context(), req)
	if errors.Is(err, analysis.ErrInvalidContentType) {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		log.Printf("[WARN] Analysis failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "analysis failed"})
	}
	return c.JSON(result)
}

// ============================================================================
// CLI Mode
// ============================================================================

func runCLIScan(arg string) {
	cfg := config.NewDefaultConfig()
	detector := NewDetector(cfg)
	defer detector.Close()

	req := &analysis.Request{ContentType: analysis.ContentText, Content: arg}
	if payload, err := os.ReadFile(arg); err == nil {
		req = &analysis.Request{
			ContentType: analysis.ContentImage,
			Content:     arg,
			Payload:     payload,
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	result, err := detector.Analyze(ctx, req)
	if err != nil {
		log.Fatalf("analysis failed: %v", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("encode result: %v", err)
	}
	fmt.Println(string(out))
}
