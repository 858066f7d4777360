// Command finesse starts the finesse solver server.
//
// It supports two modes:
//  1. "server" (default) - runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" - runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, preset and session directories, the default
// preset, solver workers, debug logging, version output, and optional ngrok
// tunneling for easy external access during development. SIGHUP re-reads
// the preset directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/finesse/api"
	"github.com/wricardo/finesse/game/config"
	"github.com/wricardo/finesse/game/service"
	"github.com/wricardo/finesse/game/session"
	"github.com/wricardo/finesse/transport/mcp"
	"github.com/wricardo/finesse/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Finesse Solver Server"
)

var (
	port          = flag.Int("port", 8080, "HTTP server port")
	host          = flag.String("host", "localhost", "HTTP server host")
	configDir     = flag.String("config-dir", envDefault("CONFIG_DIR", "configs"), "Directory containing board presets")
	defaultPreset = flag.String("default-config", os.Getenv("DEFAULT_CONFIG"), "Preset for sessions that name none (default: empty)")
	sessionsDir   = flag.String("sessions-dir", envDefault("SESSIONS_DIR", "sessions"), "Directory for persisted sessions")
	workers       = flag.Int("workers", workersDefault(), "Solver worker goroutines (0 = one per CPU)")
	debug         = flag.Bool("debug", false, "Enable debug logging")
	version       = flag.Bool("version", false, "Show version information")
	ngrokEnabled  = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth     = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain   = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

// envDefault returns the environment variable if set, otherwise fallback.
func envDefault(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

// workersDefault reads SOLVER_WORKERS; unset or malformed means one per CPU.
func workersDefault() int {
	n, err := strconv.Atoi(os.Getenv("SOLVER_WORKERS"))
	if err != nil {
		return 0
	}
	return n
}

// modes maps every accepted mode name to its runner
var modes = map[string]func(service.SolverService){
	"server":    runHTTPServer,
	"http":      runHTTPServer,
	"stdio-mcp": runStdioMCPWithInternalServer,
	"mcp-stdio": runStdioMCPWithInternalServer,
	"mcp":       runStdioMCPWithInternalServer,
}

func init() {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "%s v%s\n\nUsage: %s [OPTIONS] [server|stdio-mcp]\n\n", AppName, Version, os.Args[0])
		fmt.Fprintln(out, "  server     REST API, /ws board feed and /mcp endpoint (default; alias http)")
		fmt.Fprintln(out, "  stdio-mcp  MCP over stdio against a running or internal API (aliases mcp-stdio, mcp)")
		fmt.Fprintln(out, "\nOptions:")
		flag.PrintDefaults()
	}
}

// services bundles everything main needs to run and shut down.
type services struct {
	solver   service.SolverService
	pool     *service.Pool
	sessions *session.Manager
	configs  *config.Manager
}

// Close stops the solver pool and flushes sessions to disk.
func (s *services) Close() {
	s.pool.Close()
	if err := s.sessions.SaveAllSessions(); err != nil {
		log.Printf("Warning: Failed to save sessions on shutdown: %v", err)
	}
}

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	if *debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	args := flag.Args()
	mode := "server"
	if len(args) > 0 {
		mode = args[0]
	}

	log.Printf("Starting %s v%s (mode: %s)", AppName, Version, mode)

	svc, err := initializeServices()
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}
	defer svc.Close()

	run, ok := modes[mode]
	if !ok {
		log.Fatalf("Unknown mode: %s. Use 'server' (default) or 'stdio-mcp'", mode)
	}
	run(svc.solver)
}

// newMainHandler mounts the REST API at the root and the MCP proxy on /mcp.
func newMainHandler(solver service.SolverService, hub *websocket.Hub, baseURL string) http.Handler {
	apiServer := api.NewServer(solver, hub)
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.Handle("/mcp", server.NewStreamableHTTPServer(mcpClient.GetMCPServer()))
	return mainRouter
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled (via flag or environment), it also provisions a public tunnel.
func runHTTPServer(solver service.SolverService) {
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	addr := fmt.Sprintf("%s:%d", *host, *port)
	mainRouter := newMainHandler(solver, hub, fmt.Sprintf("http://%s", addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	ngrokShouldRun := *ngrokEnabled
	if !ngrokShouldRun {
		if envEnabled := os.Getenv("NGROK_ENABLED"); envEnabled == "true" || envEnabled == "1" {
			ngrokShouldRun = true
		}
	}

	if ngrokShouldRun {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, mainRouter)
		}()
	}

	sig := <-stop
	log.Printf("Received signal: %v. Shutting down...", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
}

// ngrokAuthToken resolves the auth token from the flag or either env spelling.
func ngrokAuthToken() string {
	if *ngrokAuth != "" {
		return *ngrokAuth
	}
	if token := os.Getenv("NGROK_AUTHTOKEN"); token != "" {
		return token
	}
	return os.Getenv("NGROK_AUTH_TOKEN")
}

// runNgrokTunnel serves handler through an ngrok endpoint until ctx is cancelled.
func runNgrokTunnel(ctx context.Context, handler http.Handler) {
	authToken := ngrokAuthToken()
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	domain := *ngrokDomain
	if domain == "" {
		domain = os.Getenv("NGROK_DOMAIN")
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	log.Printf("Ngrok tunnel established: %s", tun.URL())
	for _, line := range []string{"REST API: %s/api", "Board feed: %s/ws?session=<session_id>", "MCP endpoint: %s/mcp"} {
		log.Printf("ngrok "+line, tun.URL())
	}

	go func() {
		<-ctx.Done()
		tun.Close()
	}()

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Printf("Ngrok server stopped: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// initializeServices wires the preset and session managers, the solver pool
// and the solver service. It also starts the background session routines.
func initializeServices() (*services, error) {
	configManager, err := config.NewManager(*configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	if *defaultPreset != "" {
		if err := configManager.SetDefault(*defaultPreset); err != nil {
			return nil, fmt.Errorf("failed to set default preset %q: %w", *defaultPreset, err)
		}
		log.Printf("Default preset: %s", *defaultPreset)
	}

	persistence, err := session.NewFilePersistence(*sessionsDir, configManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence)

	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.Printf("Warning: Failed to load persisted sessions: %v", err)
	}

	pool := service.NewPool(service.PoolSize(*workers))
	log.Printf("Solver pool started with %d workers", pool.Workers())

	solver := service.NewSolverService(sessionManager, configManager, pool)

	go sessionCleanupRoutine(sessionManager)
	go filesystemSyncRoutine(sessionManager, persistence)
	go presetReloadRoutine(configManager)

	return &services{
		solver:   solver,
		pool:     pool,
		sessions: sessionManager,
		configs:  configManager,
	}, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the retention window.
func sessionCleanupRoutine(manager *session.Manager) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		removed := manager.CleanupExpiredSessions(24 * time.Hour)
		if removed > 0 {
			log.Printf("Cleaned up %d expired sessions", removed)
		}
	}
}

// presetReloadRoutine drops cached presets on every SIGHUP so edited files
// take effect without a restart.
func presetReloadRoutine(manager *config.Manager) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)

	for range hup {
		if err := manager.RefreshCache(); err != nil {
			log.Printf("Warning: Failed to reload presets: %v", err)
			continue
		}
		log.Printf("Reloaded presets (default: %s)", manager.GetDefault().Name)
	}
}

// filesystemSyncRoutine periodically drops in-memory sessions whose files were deleted.
func filesystemSyncRoutine(manager *session.Manager, persistence session.SessionPersistence) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if pruned := syncSessionsWithDisk(manager, persistence); pruned > 0 {
			log.Printf("Filesystem sync: pruned %d orphaned sessions from memory", pruned)
		}
	}
}

// syncSessionsWithDisk removes sessions from memory when their file is gone
// and returns how many were pruned.
func syncSessionsWithDisk(manager *session.Manager, persistence session.SessionPersistence) int {
	if persistence == nil {
		return 0
	}

	pruned := 0
	for _, s := range manager.List() {
		if persistence.Exists(s.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(s.ID); err == nil {
			pruned++
			log.Printf("Pruned session %s from memory (file deleted)", s.ID)
		}
	}
	return pruned
}

// apiAvailable reports whether an API server answers /healthz at baseURL
// without a server error.
func apiAvailable(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/healthz")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API at http://localhost:<port>; if unavailable, it
// starts a minimal internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(solver service.SolverService) {
	externalURL := fmt.Sprintf("http://localhost:%d", *port)
	log.Printf("Checking for external API server at %s...", externalURL)

	baseURL := externalURL
	testClient := &http.Client{Timeout: 2 * time.Second}
	if apiAvailable(testClient, externalURL) {
		log.Printf("External API server found at %s, using it for MCP", externalURL)
	} else {
		log.Printf("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			log.Fatalf("Failed to get available port: %v", err)
		}

		internalAddr := listener.Addr().String()
		log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		hub := websocket.NewHub()
		go hub.Run()
		defer hub.Stop()

		httpServer := &http.Server{Handler: api.NewServer(solver, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Printf("MCP stdio server ready (API at %s)", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		log.Printf("MCP stdio server error: %v", err)
	}
}
