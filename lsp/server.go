// Package lsp serves the imported class graph over the Language Server
// Protocol. Only workspace/symbol is answered.
package lsp

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/classgraph/java"
)

const (
	lsName = "classgraph"

	// DefaultPollInterval is how often the workspace is checked for
	// rebuilt class files.
	DefaultPollInterval = 2 * time.Second
)

var log = commonlog.GetLogger("classgraph.lsp")

// Loader imports the class graph of a workspace root.
type Loader func(ctx context.Context, root string) (*java.Classes, error)

type Server struct {
	load    Loader
	version string
	handler protocol.Handler
	server  *server.Server

	// PollInterval enables reloading when class files under the root
	// change and bounds how long a missed file event goes unnoticed. Zero
	// disables watching.
	PollInterval time.Duration

	mu      sync.RWMutex
	root    string
	classes *java.Classes
	watcher *watcher
}

func NewServer(version string, load Loader) *Server {
	s := &Server{
		load:    load,
		version: version,
		root:    ".",

		PollInterval: DefaultPollInterval,
	}

	s.handler = protocol.Handler{
		Initialize:                     s.initialize,
		Initialized:                    s.initialized,
		Shutdown:                       s.shutdown,
		SetTrace:                       s.setTrace,
		WorkspaceSymbol:                s.workspaceSymbol,
		WorkspaceDidChangeWatchedFiles: s.workspaceDidChangeWatchedFiles,
	}

	s.server = server.NewServer(&s.handler, lsName, false)

	return s
}

func (s *Server) RunStdio() error {
	return s.server.RunStdio()
}

// Reload imports the graph of the current root and replaces the one being
// served. On failure the previous graph is kept.
func (s *Server) Reload(ctx context.Context) error {
	s.mu.RLock()
	root := s.root
	s.mu.RUnlock()

	classes, err := s.load(ctx, root)
	if err != nil {
		log.Errorf("loading %s: %s", root, err)
		return err
	}

	s.mu.Lock()
	s.classes = classes
	s.mu.Unlock()
	log.Infof("serving %d classes from %s", classes.Len(), root)
	return nil
}

// Symbols answers a workspace/symbol query against the graph being served.
func (s *Server) Symbols(query string) []protocol.SymbolInformation {
	s.mu.RLock()
	classes := s.classes
	s.mu.RUnlock()
	if classes == nil {
		return nil
	}
	return Symbols(classes, query, maxSymbols)
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	root := "."
	if params.RootPath != nil && *params.RootPath != "" {
		root = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			root = path
		}
	}
	s.mu.Lock()
	s.root = root
	s.mu.Unlock()

	capabilities := s.handler.CreateServerCapabilities()

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	err := s.Reload(context.Background())
	s.watch()
	return err
}

// watch starts watching the root unless watching is disabled or already
// running.
func (s *Server) watch() {
	if s.PollInterval <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return
	}
	s.watcher = newWatcher(s.root, s.PollInterval, func() {
		log.Info("class files changed, reloading")
		s.Reload(context.Background())
	})
	s.watcher.Start()
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()
	// A reload in flight holds mu, so the watcher is stopped without it.
	if w != nil {
		w.Stop()
	}
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) workspaceSymbol(ctx *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	return s.Symbols(params.Query), nil
}

func (s *Server) workspaceDidChangeWatchedFiles(ctx *glsp.Context, params *protocol.DidChangeWatchedFilesParams) error {
	for _, change := range params.Changes {
		if strings.HasSuffix(change.URI, ".class") || strings.HasSuffix(change.URI, ".jar") {
			return s.Reload(context.Background())
		}
	}
	return nil
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}
