// Package session implements the per-connection orchestrator. One
// Service instance is bound to one client connection; it routes the
// client's requests to the other use cases and pushes every outcome
// through the connection's event sink. Collaborator failures become
// structured results, never panics or closed connections.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bnema/zerowrap"

	"hytalepanel/internal/boundaries/in"
	"hytalepanel/internal/boundaries/out"
	"hytalepanel/internal/domain"
)

// consolePipe is the FIFO the container entrypoint reads commands from.
const consolePipe = "/tmp/hytale-console"

// Config holds the session timing knobs.
type Config struct {
	// PollInterval is the cadence of the unsolicited status push.
	PollInterval time.Duration
	// ReconnectDelay defers the log stream reattach after start/restart,
	// giving the container time to come up.
	ReconnectDelay time.Duration
	// HistoryTail is the initial log history depth on join.
	HistoryTail int
	// ReconnectTail is the log tail requested when reattaching.
	ReconnectTail int
	// LogsBatchSize is the default page size of logs:more requests.
	LogsBatchSize int
	// CommandTimeout bounds one console command write.
	CommandTimeout time.Duration
}

// DefaultConfig returns the session defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval:   5 * time.Second,
		ReconnectDelay: 2 * time.Second,
		HistoryTail:    500,
		ReconnectTail:  50,
		LogsBatchSize:  200,
		CommandTimeout: 5 * time.Second,
	}
}

// Deps are the collaborators one session routes to.
type Deps struct {
	Servers   in.ServerService
	Files     in.FileService
	Mods      in.ModService
	Downloads in.DownloadService
	Updates   in.UpdateService
	Catalog   out.ModCatalog
	Runtime   out.ContainerRuntime
	Log       zerowrap.Logger
}

// Service implements the Session interface.
type Service struct {
	deps Deps
	cfg  Config
	sink out.EventSink

	// ctx spans the session; background work (poll loop, log stream,
	// download pumps) hangs off it and dies with Close.
	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	serverID      string
	containerName string
	streamCancel  context.CancelFunc
	reconnect     *time.Timer
	closed        bool
}

// NewSession creates a session bound to one client's event sink and
// starts its status poll loop.
func NewSession(deps Deps, cfg Config, sink out.EventSink) *Service {
	def := DefaultConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = def.ReconnectDelay
	}
	if cfg.HistoryTail <= 0 {
		cfg.HistoryTail = def.HistoryTail
	}
	if cfg.ReconnectTail <= 0 {
		cfg.ReconnectTail = def.ReconnectTail
	}
	if cfg.LogsBatchSize <= 0 {
		cfg.LogsBatchSize = def.LogsBatchSize
	}
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = def.CommandTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		deps:   deps,
		cfg:    cfg,
		sink:   sink,
		ctx:    ctx,
		cancel: cancel,
	}
	go s.pollStatus()
	return s
}

// binding snapshots the joined server under the lock.
func (s *Service) binding() (serverID, containerName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serverID, s.containerName
}

// pollStatus pushes the container state every poll interval while a
// server is joined.
func (s *Service) pollStatus() {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if _, name := s.binding(); name != "" {
				s.sink.Emit(domain.EventStatus, s.containerStatus(s.ctx, name))
			}
		}
	}
}

// containerStatus never fails; inspect errors surface inside the state.
func (s *Service) containerStatus(ctx context.Context, containerName string) domain.ContainerState {
	state, err := s.deps.Runtime.Inspect(ctx, containerName)
	if err != nil {
		return domain.ContainerState{Running: false, Status: "not found", Error: err.Error()}
	}
	return state
}

// Join binds the session to a server and pushes the initial snapshot:
// status, file readiness, downloader auth, log history and the live log
// stream. Joining replaces any previous binding.
func (s *Service) Join(ctx context.Context, serverID string) {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "usecase",
		zerowrap.FieldUseCase: "JoinServer",
		"server_id":           serverID,
	})
	log := zerowrap.FromCtx(ctx)

	server, err := s.deps.Servers.Get(ctx, serverID)
	if err != nil {
		log.Debug().Err(err).Msg("join rejected")
		s.sink.Emit(domain.EventServerJoinError, joinErrorPayload{Error: "Server not found"})
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.stopStreamLocked()
	s.stopReconnectLocked()
	s.serverID = server.ID
	s.containerName = server.ContainerName
	s.mu.Unlock()

	state := s.containerStatus(ctx, server.ContainerName)
	s.sink.Emit(domain.EventStatus, state)

	if state.Running {
		s.sink.Emit(domain.EventFiles, s.deps.Files.CheckServerFiles(ctx, server.ID))
		s.sink.Emit(domain.EventDownloaderAuth, s.deps.Files.CheckAuth(ctx, server.ID))

		if history, err := s.deps.Runtime.LogHistory(ctx, server.ContainerName, s.cfg.HistoryTail); err != nil {
			log.Warn().Err(err).Msg("failed to fetch log history")
		} else {
			s.sink.Emit(domain.EventLogsHistory, logsHistoryPayload{Logs: history, Initial: true})
		}

		s.startLogStream(server.ContainerName, 0)
	} else {
		// Offline servers get an empty snapshot so the client resets.
		s.sink.Emit(domain.EventFiles, domain.ServerFiles{})
		s.sink.Emit(domain.EventDownloaderAuth, false)
		s.sink.Emit(domain.EventLogsHistory, logsHistoryPayload{Logs: []string{}, Initial: true})
	}

	log.Info().Msg("server joined")
	s.sink.Emit(domain.EventServerJoined, joinedPayload{ServerID: server.ID, Server: server})
}

// Leave unbinds the session and tears its log stream down.
func (s *Service) Leave(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopStreamLocked()
	s.stopReconnectLocked()
	s.serverID = ""
	s.containerName = ""
}

// SendCommand writes one console command to the server's command FIFO.
// This is the only unjoined operation with an explicit reject, so the
// client console can show why nothing happened.
func (s *Service) SendCommand(ctx context.Context, command string) {
	_, name := s.binding()
	if name == "" {
		s.sink.Emit(domain.EventCommandResult, commandResultPayload{
			Cmd:      command,
			opResult: opResult{Success: false, Error: "No server selected"},
		})
		return
	}

	escaped := strings.NewReplacer(`"`, `\"`, `$`, `\$`).Replace(command)
	shell := fmt.Sprintf(`printf '%%s\n' "%s" > %s`, escaped, consolePipe)
	if _, err := s.deps.Runtime.Exec(ctx, name, shell, s.cfg.CommandTimeout); err != nil {
		s.sink.Emit(domain.EventCommandResult, commandResultPayload{Cmd: command, opResult: errResult(err)})
		return
	}
	s.sink.Emit(domain.EventCommandResult, commandResultPayload{Cmd: command, opResult: okResult()})
}

// Start brings the server's stack up and reattaches the log stream once
// the container had time to come up.
func (s *Service) Start(ctx context.Context) {
	serverID, _ := s.binding()
	if serverID == "" {
		return
	}

	s.emitActionStarting("start")
	err := s.deps.Servers.Start(ctx, serverID)
	s.emitActionResult("start", err)
	if err != nil {
		return
	}

	s.scheduleReconnect(func() {
		_, name := s.binding()
		if name == "" {
			return
		}
		s.startLogStream(name, s.cfg.ReconnectTail)

		state := s.containerStatus(s.ctx, name)
		s.sink.Emit(domain.EventStatus, state)
		if state.Running {
			if serverID, _ := s.binding(); serverID != "" {
				s.sink.Emit(domain.EventFiles, s.deps.Files.CheckServerFiles(s.ctx, serverID))
				s.sink.Emit(domain.EventDownloaderAuth, s.deps.Files.CheckAuth(s.ctx, serverID))
			}
		}
	})
}

// Stop stops the joined container.
func (s *Service) Stop(ctx context.Context) {
	_, name := s.binding()
	if name == "" {
		return
	}

	s.emitActionStarting("stop")
	s.emitActionResult("stop", s.deps.Runtime.Stop(ctx, name))
}

// Restart restarts the joined container and reattaches the log stream.
func (s *Service) Restart(ctx context.Context) {
	_, name := s.binding()
	if name == "" {
		return
	}

	s.emitActionStarting("restart")
	err := s.deps.Runtime.Restart(ctx, name)
	s.emitActionResult("restart", err)
	if err != nil {
		return
	}

	s.scheduleReconnect(func() {
		_, name := s.binding()
		if name == "" {
			return
		}
		s.startLogStream(name, s.cfg.ReconnectTail)
		s.sink.Emit(domain.EventStatus, s.containerStatus(s.ctx, name))
	})
}

// Download runs the binary download and forwards its status stream. The
// readiness and auth probes refresh after the terminal status; a
// completed download also records update metadata.
func (s *Service) Download(ctx context.Context) {
	serverID, name := s.binding()
	if serverID == "" || name == "" {
		return
	}

	go func() {
		var last domain.DownloadStatus
		for status := range s.deps.Downloads.Run(s.ctx, name, serverID) {
			last = status
			s.sink.Emit(domain.EventDownloadStatus, status)
		}

		switch last.Status {
		case domain.DownloadComplete:
			s.deps.Updates.RecordDownload(s.ctx, name)
			fallthrough
		case domain.DownloadDone:
			s.sink.Emit(domain.EventFiles, s.deps.Files.CheckServerFiles(s.ctx, serverID))
			s.sink.Emit(domain.EventDownloaderAuth, s.deps.Files.CheckAuth(s.ctx, serverID))
		}
	}()
}

// Wipe resets the server's runtime data and refreshes the auth probe.
func (s *Service) Wipe(ctx context.Context) {
	serverID, _ := s.binding()
	if serverID == "" {
		return
	}

	s.emitActionStarting("wipe")
	s.emitActionResult("wipe", s.deps.Files.WipeData(ctx, serverID))
	s.sink.Emit(domain.EventDownloaderAuth, s.deps.Files.CheckAuth(ctx, serverID))
}

// CheckFiles refreshes the readiness and downloader auth probes.
func (s *Service) CheckFiles(ctx context.Context) {
	serverID, _ := s.binding()
	if serverID == "" {
		return
	}
	s.sink.Emit(domain.EventFiles, s.deps.Files.CheckServerFiles(ctx, serverID))
	s.sink.Emit(domain.EventDownloaderAuth, s.deps.Files.CheckAuth(ctx, serverID))
}

// FetchMoreLogs pages older history in front of what the client already
// holds. hasMore is a best-effort guess: the runtime reports no total,
// so a full page is read as "probably more".
func (s *Service) FetchMoreLogs(ctx context.Context, currentCount, batchSize int) {
	_, name := s.binding()
	if name == "" {
		return
	}
	if currentCount < 0 {
		currentCount = 0
	}
	if batchSize <= 0 {
		batchSize = s.cfg.LogsBatchSize
	}

	total := currentCount + batchSize
	all, err := s.deps.Runtime.LogHistory(ctx, name, total)
	if err != nil {
		s.sink.Emit(domain.EventLogsHistory, logsHistoryPayload{Logs: []string{}, Error: err.Error()})
		return
	}

	cut := len(all) - currentCount
	if cut < 0 {
		cut = 0
	}
	hasMore := len(all) >= total
	s.sink.Emit(domain.EventLogsHistory, logsHistoryPayload{
		Logs:    all[:cut],
		Initial: false,
		HasMore: &hasMore,
	})
}

// CheckUpdate answers how stale the installed binaries are.
func (s *Service) CheckUpdate(ctx context.Context) {
	serverID, name := s.binding()
	if serverID == "" || name == "" {
		return
	}

	check, err := s.deps.Updates.CheckForUpdate(ctx, serverID, name)
	if err != nil {
		s.sink.Emit(domain.EventUpdateCheckResult, updateCheckPayload{opResult: errResult(err)})
		return
	}
	s.sink.Emit(domain.EventUpdateCheckResult, updateCheckPayload{
		opResult:        okResult(),
		LastUpdate:      check.LastUpdate,
		DaysSinceUpdate: check.DaysSinceUpdate,
		HasFiles:        check.HasFiles,
	})
}

// ApplyUpdate runs the update orchestration, forwarding both the update
// phases and the inner download statuses.
func (s *Service) ApplyUpdate(ctx context.Context) {
	serverID, name := s.binding()
	if serverID == "" || name == "" {
		return
	}

	go func() {
		forward := func(status domain.DownloadStatus) {
			s.sink.Emit(domain.EventDownloadStatus, status)
		}
		for status := range s.deps.Updates.Apply(s.ctx, name, serverID, forward) {
			s.sink.Emit(domain.EventUpdateStatus, status)
		}
	}()
}

// Close releases the session. Safe to call more than once.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopStreamLocked()
	s.stopReconnectLocked()
	s.serverID = ""
	s.containerName = ""
	s.cancel()
}

func (s *Service) emitActionStarting(action string) {
	s.sink.Emit(domain.EventActionStatus, actionStatusPayload{Action: action, Status: "starting"})
}

func (s *Service) emitActionResult(action string, err error) {
	success := err == nil
	payload := actionStatusPayload{Action: action, Success: &success}
	if err != nil {
		payload.Error = err.Error()
	}
	s.sink.Emit(domain.EventActionStatus, payload)
}

// scheduleReconnect arms the deferred reattach timer, replacing any
// pending one.
func (s *Service) scheduleReconnect(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.stopReconnectLocked()
	s.reconnect = time.AfterFunc(s.cfg.ReconnectDelay, fn)
}

func (s *Service) stopReconnectLocked() {
	if s.reconnect != nil {
		s.reconnect.Stop()
		s.reconnect = nil
	}
}
