package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	log "github.com/sirupsen/logrus"

	"github.com/Pedrokostam/PDFuse/internal/fuse"
	"github.com/Pedrokostam/PDFuse/internal/handlers"
	"github.com/Pedrokostam/PDFuse/internal/i18n"
	"github.com/Pedrokostam/PDFuse/internal/params"
	"github.com/Pedrokostam/PDFuse/internal/sizing"
	"github.com/Pedrokostam/PDFuse/internal/utils"
)

type cliFlags struct {
	output        string
	dpi           int
	quality       int
	lossless      bool
	margin        string
	fallbackSize  string
	forceFallback bool
	librePath     string
	recursion     int
	sortAlpha     bool
	bookmarks     string
	language      string
	configPath    string
	saveConfig    string
	whatIf        bool
	validate      bool
	serve         string
	quiet         bool
	verbose       bool
}

func main() {
	os.Exit(run())
}

func run() int {
	var cf cliFlags
	flag.StringVar(&cf.output, "output", "merged.pdf", "output PDF path")
	flag.IntVar(&cf.dpi, "dpi", 300, "image rendering DPI")
	flag.IntVar(&cf.quality, "quality", 95, "lossy image quality (1-100)")
	flag.BoolVar(&cf.lossless, "lossless", false, "use lossless image compression")
	flag.StringVar(&cf.margin, "margin", "0mm", "page margin, e.g. '5mm' or '5mm x 10mm'")
	flag.StringVar(&cf.fallbackSize, "fallback-size", "A4", "image page size when no document size applies (ISO name or lengths)")
	flag.BoolVar(&cf.forceFallback, "force-fallback-size", false, "always use the fallback size for image pages")
	flag.StringVar(&cf.librePath, "libreoffice-path", defaultLibrePaths(), "comma-separated candidate paths of the office converter")
	flag.IntVar(&cf.recursion, "recursion-limit", 1, "directory walk depth")
	flag.BoolVar(&cf.sortAlpha, "sort", false, "sort collected files alphabetically before merging")
	flag.StringVar(&cf.bookmarks, "bookmarks", "index", "bookmark mode: none, index, index-name")
	flag.StringVar(&cf.language, "language", "", "locale identifier for messages")
	flag.StringVar(&cf.configPath, "config", "", "load parameters from a YAML file")
	flag.StringVar(&cf.saveConfig, "save-config", "", "write current parameters to a YAML file and exit")
	flag.BoolVar(&cf.whatIf, "what-if", false, "list classified inputs and the chosen branch, do not merge")
	flag.BoolVar(&cf.validate, "validate", false, "validate the output PDF after merging")
	flag.StringVar(&cf.serve, "serve", "", "run the HTTP API on this address instead of merging, e.g. :8080")
	flag.BoolVar(&cf.quiet, "quiet", false, "suppress progress output")
	flag.BoolVar(&cf.verbose, "verbose", false, "debug logging")
	flag.Parse()

	setupLogging(cf)
	if cf.language != "" {
		i18n.SetLocale(cf.language)
	}

	p, err := buildParameters(cf)
	if err != nil {
		log.WithError(err).Error("invalid parameters")
		return 2
	}

	if cf.saveConfig != "" {
		if err := params.SaveConfig(cf.saveConfig, p); err != nil {
			log.WithError(err).Error("cannot save config")
			return 1
		}
		fmt.Println("config written to", cf.saveConfig)
		return 0
	}

	if cf.serve != "" {
		return serve(cf.serve, p)
	}

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: pdfuse [flags] <file-or-directory>...")
		flag.PrintDefaults()
		return 2
	}

	progress := utils.NewProgress(!cf.quiet)
	sources := params.FindFiles(flag.Args(), p.RecursionLimit, p.HasConverter(), p.AlphabeticFileSorting)
	if len(sources) == 0 {
		log.Error("no supported input files found")
		return 1
	}

	if p.WhatIf {
		fmt.Println(i18n.T(i18n.MsgWhatIfHeader))
		for _, src := range sources {
			fmt.Printf("  %3d  %-6s %s\n", src.Index(), src.Value().Kind, src.Value().Path)
		}
		requirement := fuse.DecideGuideRequirement(sources, p)
		fmt.Println("branch:", requirement)
		return 0
	}

	report, err := fuse.Run(sources, p, progress)
	if err != nil {
		fmt.Fprintln(os.Stderr, i18n.T(i18n.MsgNoOutputWritten, err))
		return 1
	}
	if cf.validate {
		if err := api.ValidateFile(p.OutputFile, nil); err != nil {
			log.WithError(err).Error("output validation failed")
			return 1
		}
		log.Info("output validated")
	}
	fmt.Println(i18n.T(i18n.MsgMergedOutput, len(sources)-report.ErrorCount, p.OutputFile))
	if report.ErrorCount > 0 {
		fmt.Fprintln(os.Stderr, i18n.T(i18n.MsgSkippedInputs, report.ErrorCount, report.ErrorIndices))
	}
	return 0
}

// buildParameters layers configuration: built-in defaults, then the config
// file, then every flag the user actually set.
func buildParameters(cf cliFlags) (params.Parameters, error) {
	p := params.DefaultParameters()
	if cf.configPath != "" {
		loaded, err := params.LoadConfig(cf.configPath, p)
		if err != nil {
			return p, err
		}
		p = loaded
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	// without a config file every flag applies; with one, only flags the
	// user actually set override it
	useFlag := func(name string) bool { return cf.configPath == "" || set[name] }

	if useFlag("output") {
		p.OutputFile = cf.output
	}
	if useFlag("dpi") {
		p.ImageDpi = cf.dpi
	}
	if useFlag("quality") {
		if cf.quality < 1 || cf.quality > 100 {
			return p, fmt.Errorf("quality must be in [1,100], got %d", cf.quality)
		}
		p.ImageQuality = cf.quality
	}
	if useFlag("lossless") {
		p.ImageLosslessCompression = cf.lossless
	}
	if useFlag("margin") {
		m, err := sizing.ParseCustomSize(cf.margin)
		if err != nil {
			return p, fmt.Errorf("margin: %w", err)
		}
		p.Margin = m
	}
	if useFlag("fallback-size") {
		ps, err := sizing.ParsePageSize(cf.fallbackSize)
		if err != nil {
			return p, fmt.Errorf("fallback-size: %w", err)
		}
		p.ImagePageFallbackSize = ps
	}
	if useFlag("force-fallback-size") {
		p.ForceImagePageFallbackSize = cf.forceFallback
	}
	if useFlag("recursion-limit") {
		p.RecursionLimit = cf.recursion
	}
	if useFlag("sort") {
		p.AlphabeticFileSorting = cf.sortAlpha
	}
	if useFlag("bookmarks") {
		mode, err := params.ParseBookmarkMode(cf.bookmarks)
		if err != nil {
			return p, err
		}
		p.Bookmarks = mode
	}
	if useFlag("libreoffice-path") || p.LibreOfficePath == "" {
		p.LibreOfficePath = params.ResolveConverter(strings.Split(cf.librePath, ","))
	}
	p.WhatIf = cf.whatIf
	p.Validate = cf.validate
	p.Quiet = cf.quiet
	p.Language = cf.language
	return p, nil
}

func defaultLibrePaths() string {
	return strings.Join([]string{
		"/usr/bin/soffice",
		"/usr/bin/libreoffice",
		"/usr/local/bin/soffice",
		"/opt/libreoffice/program/soffice",
	}, ",")
}

func setupLogging(cf cliFlags) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	switch {
	case cf.verbose:
		log.SetLevel(log.DebugLevel)
	case cf.quiet:
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

// serve runs the HTTP front end around the same pipeline.
func serve(addr string, p params.Parameters) int {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	// lightweight recovery: only captures state on an actual panic
	router.Use(func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("panic recovered: %v", r)
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	})
	handlers.RegisterRoutes(router, p)

	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s", err)
		}
	}()
	log.WithField("addr", addr).Info("serving merge API")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")
	return 0
}
