// Package main is the Yomitori CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/yomitori/internal/config"
	"github.com/hyperjump/yomitori/internal/export"
	"github.com/hyperjump/yomitori/internal/extract"
	"github.com/hyperjump/yomitori/internal/keyword"
	"github.com/hyperjump/yomitori/internal/models"
	"github.com/hyperjump/yomitori/internal/prompt"
	"github.com/hyperjump/yomitori/internal/server"
	"github.com/hyperjump/yomitori/internal/session"
	"github.com/hyperjump/yomitori/internal/storage"
	"github.com/hyperjump/yomitori/internal/vision"
	"github.com/hyperjump/yomitori/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/yomitori/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "yomitori server" from the project dir picks up the
// project's config.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "extract":
		runExtract()
	case "version", "--version", "-v":
		fmt.Printf("yomitori version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer store.Close()

	idx, err := keyword.NewIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		logger.Fatal("Failed to initialize search index", zap.Error(err))
	}
	defer idx.Close()

	ctx := context.Background()
	var model vision.Model
	client, modelErr := vision.New(ctx, cfg.Vision, logger)
	if modelErr != nil {
		// The server still starts: auth, saved documents, and exports work
		// without a model, and extraction endpoints report the error.
		logger.Warn("vision model unavailable", zap.Error(modelErr))
	} else {
		model = client
		logger.Info("vision model ready", zap.String("model", client.Name()))
	}

	srv := server.NewServer(store, idx, session.NewStore(), model, modelErr, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(shutdownCtx)
}

func runExtract() {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	mode := fs.String("mode", prompt.ModeLegal, "OCR mode")
	language := fs.String("language", prompt.SameAsOriginal, "target language for the extracted text")
	preserve := fs.Bool("preserve", true, "preserve original formatting")
	fixGrammar := fs.Bool("fix-grammar", false, "fix grammar and spelling in the output")
	confidence := fs.Bool("confidence", false, "annotate uncertain readings")
	output := fs.String("output", "", "write a .docx, .txt, or .xlsx file instead of printing")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: yomitori extract [flags] <image-or-pdf>...")
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	model, err := vision.New(ctx, cfg.Vision, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Vision model unavailable: %v\n", err)
		os.Exit(1)
	}

	files := make([]extract.File, 0, fs.NArg())
	for _, path := range fs.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read %s: %v\n", path, err)
			os.Exit(1)
		}
		files = append(files, extract.File{Name: filepath.Base(path), Data: data})
	}

	settings := models.ExtractionSettings{
		TargetLanguage:     *language,
		OCRMode:            *mode,
		PreserveFormatting: *preserve,
		FixGrammar:         *fixGrammar,
		IncludeConfidence:  *confidence,
	}
	p := prompt.Build(prompt.Options{
		Mode:               settings.OCRMode,
		TargetLanguage:     settings.TargetLanguage,
		PreserveFormatting: settings.PreserveFormatting,
		FixGrammar:         settings.FixGrammar,
		IncludeConfidence:  settings.IncludeConfidence,
	})

	extractor := extract.NewExtractor(model, logger)
	items, skips, err := extractor.ExtractAll(ctx, files, p)
	for _, skip := range skips {
		fmt.Fprintf(os.Stderr, "Skipped %s: %s\n", skip.Name, skip.Reason)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Extraction failed: %v\n", err)
		os.Exit(1)
	}

	if *output == "" {
		for i, item := range items {
			if i > 0 {
				fmt.Println(strings.Repeat("-", 60))
			}
			fmt.Printf("%s:\n%s\n", item.SourceName, item.Text)
		}
		return
	}

	assembler := export.NewAssembler(logger)
	name := strings.TrimSuffix(filepath.Base(*output), filepath.Ext(*output))
	var data []byte
	switch filepath.Ext(*output) {
	case ".docx":
		formatting := models.FormattingConfig{
			FontName:                   cfg.Export.FontName,
			FontSize:                   cfg.Export.FontSize,
			LineSpacing:                cfg.Export.LineSpacing,
			Margins:                    models.Margins{Top: cfg.Export.MarginInches, Bottom: cfg.Export.MarginInches, Left: cfg.Export.MarginInches, Right: cfg.Export.MarginInches},
			PreserveOriginalFormatting: settings.PreserveFormatting,
		}
		data, err = assembler.AssembleDocx(name, items, settings, formatting)
	case ".txt":
		data = []byte(assembler.AssembleText(name, items, settings))
	case ".xlsx":
		data, err = assembler.AssembleXlsx(name, items, settings)
	default:
		fmt.Fprintf(os.Stderr, "Unsupported output extension: %s\n", filepath.Ext(*output))
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", *output, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d item(s))\n", *output, len(items))
}

func printUsage() {
	fmt.Println(`yomitori - Vision-model text extraction service

Usage:
  yomitori server [flags]             Start the HTTP server
  yomitori extract [flags] <file>...  Extract text from images or PDFs
  yomitori version                    Show version
  yomitori help                       Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/yomitori/config.yaml)
  --debug            Enable debug logging

Extract Flags:
  --config string    Config file path
  --mode string      OCR mode (default: "Legal Document")
  --language string  Target language (default: "Same as original")
  --preserve         Preserve original formatting (default: true)
  --fix-grammar      Fix grammar and spelling
  --confidence       Annotate uncertain readings
  --output string    Write a .docx, .txt, or .xlsx file instead of printing

Examples:
  yomitori server
  yomitori extract deed.png
  yomitori extract --mode "Handwriting" --language French letter.jpg
  yomitori extract --output deed.docx page1.png page2.png`)
}
