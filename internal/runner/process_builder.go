package runner

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const readyPollInterval = 250 * time.Millisecond

// ProcessBuilder is the real build seam: it materializes a project's files
// to a working directory, starts the framework's dev server as a supervised
// child process, and reports the listening endpoint. Projects without a
// package.json are served statically from an in-process file server.
type ProcessBuilder struct {
	baseDir string
	portMin int
	portMax int

	mu    sync.Mutex
	procs map[string]*supervised
}

type supervised struct {
	dir    string
	port   int
	cmd    *exec.Cmd    // dev server process, nil for static projects
	done   chan struct{} // closed when cmd exits
	server *http.Server // static file server, nil for process projects
}

func NewProcessBuilder(baseDir string, portMin, portMax int) *ProcessBuilder {
	return &ProcessBuilder{
		baseDir: baseDir,
		portMin: portMin,
		portMax: portMax,
		procs:   make(map[string]*supervised),
	}
}

func (b *ProcessBuilder) Build(ctx context.Context, p *Project) BuildResult {
	// A rebuild replaces whatever was running for this project.
	if err := b.Stop(p.ID); err != nil {
		slog.Warn("failed to stop previous instance before rebuild", "project", p.ID, "error", err)
	}

	dir := filepath.Join(b.baseDir, "webforge-"+p.ID)
	if err := materializeFiles(dir, p.Files); err != nil {
		os.RemoveAll(dir)
		return BuildResult{Success: false, Error: fmt.Sprintf("failed to write project files: %v", err)}
	}

	port, ln, err := b.reservePort()
	if err != nil {
		os.RemoveAll(dir)
		return BuildResult{Success: false, Error: err.Error()}
	}

	var sup *supervised
	if _, hasManifest := p.Files["package.json"]; hasManifest {
		ln.Close()
		sup, err = b.startDevServer(ctx, p, dir, port)
	} else {
		sup = b.startStaticServer(dir, port, ln)
	}
	if err != nil {
		os.RemoveAll(dir)
		return BuildResult{Success: false, Error: err.Error()}
	}

	b.mu.Lock()
	b.procs[p.ID] = sup
	b.mu.Unlock()

	return BuildResult{
		Success: true,
		Output:  "Build completed successfully",
		URL:     fmt.Sprintf("http://localhost:%d", port),
		Port:    port,
	}
}

// Stop tears down the process or server for a project and removes its
// working directory. Stopping an unknown project is a no-op.
func (b *ProcessBuilder) Stop(projectID string) error {
	b.mu.Lock()
	sup, ok := b.procs[projectID]
	if ok {
		delete(b.procs, projectID)
	}
	b.mu.Unlock()
	if !ok {
		return nil
	}

	if sup.server != nil {
		sup.server.Close()
	}
	if sup.cmd != nil && sup.cmd.Process != nil {
		sup.cmd.Process.Kill()
		select {
		case <-sup.done:
		case <-time.After(5 * time.Second):
			slog.Warn("dev server did not exit after kill", "project", projectID)
		}
	}
	return os.RemoveAll(sup.dir)
}

func (b *ProcessBuilder) startDevServer(ctx context.Context, p *Project, dir string, port int) (*supervised, error) {
	install := exec.CommandContext(ctx, "npm", "install", "--no-audit", "--no-fund")
	install.Dir = dir
	if out, err := install.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("npm install failed: %v: %s", err, tail(string(out), 512))
	}

	name, args := devCommand(p.Framework, port)
	// The dev server outlives the build context; it is killed explicitly by
	// Stop, or below if it never becomes ready.
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"PORT="+strconv.Itoa(port),
		"HOST=127.0.0.1",
		"BROWSER=none",
	)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start dev server: %w", err)
	}

	done := make(chan struct{})
	go func() {
		cmd.Wait()
		close(done)
	}()

	if err := waitReady(ctx, port, done); err != nil {
		cmd.Process.Kill()
		<-done
		return nil, err
	}
	return &supervised{dir: dir, port: port, cmd: cmd, done: done}, nil
}

func (b *ProcessBuilder) startStaticServer(dir string, port int, ln net.Listener) *supervised {
	srv := &http.Server{Handler: http.FileServer(http.Dir(dir))}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Warn("static server stopped", "dir", dir, "error", err)
		}
	}()
	return &supervised{dir: dir, port: port, server: srv}
}

// reservePort finds a free port in the configured range and returns it with
// the listener still held, so the port cannot be claimed in between.
func (b *ProcessBuilder) reservePort() (int, net.Listener, error) {
	b.mu.Lock()
	taken := make(map[int]bool, len(b.procs))
	for _, sup := range b.procs {
		taken[sup.port] = true
	}
	b.mu.Unlock()

	for port := b.portMin; port <= b.portMax; port++ {
		if taken[port] {
			continue
		}
		ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
		if err == nil {
			return port, ln, nil
		}
	}
	return 0, nil, fmt.Errorf("no free port in range %d-%d", b.portMin, b.portMax)
}

func devCommand(framework string, port int) (string, []string) {
	ps := strconv.Itoa(port)
	switch framework {
	case "vite":
		return "npx", []string{"--yes", "vite", "--port", ps, "--host", "127.0.0.1", "--strictPort"}
	case "svelte":
		return "npm", []string{"run", "dev", "--", "--port", ps, "--host", "127.0.0.1"}
	case "astro":
		return "npx", []string{"--yes", "astro", "dev", "--port", ps, "--host", "127.0.0.1"}
	default: // nextjs
		return "npx", []string{"--yes", "next", "dev", "-p", ps, "-H", "127.0.0.1"}
	}
}

// waitReady polls the port until the dev server accepts connections, the
// process exits early, or the build deadline passes.
func waitReady(ctx context.Context, port int, done <-chan struct{}) error {
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("build timed out waiting for dev server on %s", addr)
		case <-done:
			return fmt.Errorf("dev server exited before becoming ready")
		case <-ticker.C:
			conn, err := net.DialTimeout("tcp", addr, readyPollInterval)
			if err == nil {
				conn.Close()
				return nil
			}
		}
	}
}

// materializeFiles writes the project's file map under dir, rejecting paths
// that escape it.
func materializeFiles(dir string, files map[string]string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for name, content := range files {
		rel := filepath.Clean(filepath.FromSlash(name))
		if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fmt.Errorf("illegal file path %q", name)
		}
		target := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
