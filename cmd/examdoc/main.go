// Examdoc renders exam content to PDF and serves it through Model Context Protocol.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/berkesencan/bap-ai-tutor-sub002/internal/auth"
	"github.com/berkesencan/bap-ai-tutor-sub002/internal/compiler"
	"github.com/berkesencan/bap-ai-tutor-sub002/internal/config"
	"github.com/berkesencan/bap-ai-tutor-sub002/internal/delivery"
	"github.com/berkesencan/bap-ai-tutor-sub002/internal/draw"
	"github.com/berkesencan/bap-ai-tutor-sub002/internal/format"
	"github.com/berkesencan/bap-ai-tutor-sub002/internal/logging"
	"github.com/berkesencan/bap-ai-tutor-sub002/internal/markup"
	"github.com/berkesencan/bap-ai-tutor-sub002/internal/render"
	"github.com/berkesencan/bap-ai-tutor-sub002/internal/tool"
)

const previewChars = 20000

func main() {
	configFile := flag.String("config", "", "Path to YAML config file")
	envFileParam := flag.String("env-file", "", "Path to env file")
	httpAddr := flag.String("http-addr", "", "HTTP server listen addr, overrides config")
	enableStdio := flag.Bool("stdio", false, "Enable stdio transport for MCP (disables stdout logging)")
	logFile := flag.String("log-file", "", "Path to log file, overrides config")
	logLevel := flag.String("log-level", "", "Log level, overrides config")
	oauthTokenFile := flag.String("oauth-token-file", "", "Path to cache google oauth token, overrides config")
	oauthURLParam := flag.String("oauth-url", "", "OAuth redirect URL")

	flag.Parse()

	cfg := mustLoadConfig(*configFile, *envFileParam)
	applyFlags(&cfg, *httpAddr, *logFile, *logLevel, *oauthTokenFile)

	log, closeLog := mustSetupLogger(cfg.Log, *enableStdio)
	defer closeLog()

	ln := mustListen(cfg.HTTPAddr)
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://" + ln.Addr().String()
	}

	store, err := delivery.NewLocal(cfg.Output.Dir, log)
	if err != nil {
		panic(fmt.Errorf("delivery.NewLocal failed: %w", err))
	}

	mux := http.NewServeMux()
	mux.Handle("GET /download/{name}", delivery.NewDownloadHandler(store, log))

	var up tool.Uploader
	if cfg.Drive.Enabled {
		oauthCfg := auth.NewConfig(cfg.Drive.ClientID, cfg.Drive.ClientSecret, oauthURL(ln, *oauthURLParam))
		tok, err := auth.NewToken(oauthCfg, cfg.Drive.TokenFile, log)
		if err != nil {
			panic(fmt.Errorf("auth.NewToken failed: %w", err))
		}
		defer func() {
			log.Info("Persisting token if exists")
			if err := tok.Persist(); err != nil {
				log.WithError(err).Error("tok.Persist failed")
			}
		}()

		mux.Handle("/oauth", auth.NewHTTPHandler(tok, log))
		up = delivery.NewDrive(tok, cfg.Drive.FolderID, log)

		if _, err := tok.OAuthToken(); errors.Is(err, auth.ErrTokenNotSet) {
			openBrowser(oauthCfg.RedirectURL, log)
		}
	}

	svc := newRenderService(cfg, log)
	examT := tool.NewServer(svc, store, up, format.Converter{MaxChars: previewChars}, baseURL, log)
	mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server { return examT }, nil))

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGTERM, syscall.SIGINT)

	stopHTTP, errHTTPCh := serveHTTP(srv, ln, log)
	defer stopHTTP()

	var errStdioCh <-chan error
	if *enableStdio {
		var stopStdio func()
		stopStdio, errStdioCh = serveStdio(examT, log)
		defer stopStdio()
	}

	select {
	case err := <-errHTTPCh:
		log.WithError(err).Error("Error http server")
	case err := <-errStdioCh:
		log.WithError(err).Error("Error stdio")
	case <-shutdown:
		log.Info("Shutdown signal received")
	}
}

func newRenderService(cfg config.Config, log logrus.FieldLogger) *render.Service {
	drawCfg := draw.DefaultConfig()
	drawCfg.PageSize = cfg.Render.PageSize
	drawCfg.Margin = cfg.Render.Margin
	drawB := render.NewDrawBackend(draw.New(drawCfg, log), log)

	var markupB render.Backend
	if cfg.Render.Markup {
		known := compiler.DefaultKnownPaths
		if len(cfg.Compiler.KnownPaths) > 0 {
			known = compiler.KnownPaths(cfg.Compiler.KnownPaths)
		}
		locator := compiler.Chain{
			compiler.Explicit(cfg.Compiler.Path),
			known,
			compiler.SearchPath(cfg.Compiler.Name),
		}
		adapter := compiler.NewAdapter(locator, compiler.Config{
			ScratchDir:    cfg.Compiler.ScratchDir,
			Timeout:       time.Duration(cfg.Compiler.Timeout),
			MaxConcurrent: cfg.Compiler.MaxConcurrent,
		}, log)

		if p, err := locator.Locate(); err != nil {
			log.WithError(err).Warn("latex compiler not found, template renders will produce diagnostic documents")
		} else {
			log.WithField("compiler", p).Info("latex compiler found")
		}
		if cfg.Render.RawLaTeX {
			log.Warn("raw LaTeX documents are compiled without escaping")
		}
		markupB = render.NewMarkupBackend(markup.NewGenerator(markup.DefaultOptions()), adapter, cfg.Render.RawLaTeX)
	}

	return render.NewService(drawB, markupB, render.Config{
		MaxTableColumns: cfg.Render.MaxTableColumns,
		NotesKeywords:   cfg.Render.NotesKeywords,
		TemplateDir:     cfg.Render.TemplateDir,
	}, log)
}

func serveStdio(srv *mcp.Server, log logrus.FieldLogger) (func(), <-chan error) {
	errStdioCh := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		defer close(errStdioCh)
		log.Info("Starting stdio transport")

		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
			errStdioCh <- fmt.Errorf("srv.Run failed: %w", err)
		}
	}()

	return func() {
		cancel()

		<-errStdioCh
		log.Info("Stdio transport stopped")
	}, errStdioCh
}

func serveHTTP(srv *http.Server, ln net.Listener, log logrus.FieldLogger) (func(), <-chan error) {
	errHTTPCh := make(chan error, 1)
	go func() {
		defer close(errHTTPCh)

		log.WithField("addr", ln.Addr().String()).Info("Starting http server")

		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errHTTPCh <- fmt.Errorf("srv.Serve failed: %w", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.WithError(err).Error("srv.Shutdown failed")
		}

		<-errHTTPCh
		log.Info("HTTP server stopped")
	}, errHTTPCh
}

func mustLoadConfig(path, envFile string) config.Config {
	cfg, err := config.Load(path, envFile)
	if err != nil {
		panic(fmt.Errorf("config.Load failed: %w", err))
	}
	return cfg
}

func applyFlags(cfg *config.Config, httpAddr, logFile, logLevel, tokenFile string) {
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if tokenFile != "" {
		cfg.Drive.TokenFile = tokenFile
	}
}

func mustSetupLogger(c config.Log, stdio bool) (*logrus.Logger, func()) {
	log, closeLog, err := logging.New(logging.Options{
		Level: c.Level,
		JSON:  c.JSON,
		File:  c.File,
		Quiet: stdio,
	})
	if err != nil {
		panic(fmt.Errorf("logging.New failed: %w", err))
	}
	return log, closeLog
}

func mustListen(httpAddr string) net.Listener {
	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		panic(fmt.Errorf("net.Listen failed: %w", err))
	}

	return ln
}

func oauthURL(ln net.Listener, override string) string {
	if override != "" {
		return override
	}
	return fmt.Sprintf("http://%s/oauth", ln.Addr().String())
}

func openBrowser(url string, log logrus.FieldLogger) {
	url = fmt.Sprintf("%s?redirect=1", url)
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = fmt.Errorf("unsupported platform")
	}

	if err != nil {
		log.WithError(err).Warnf("Could not open browser automatically; please copy and open link in the browser: %s", url)
	}
}
