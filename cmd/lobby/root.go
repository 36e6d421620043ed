package lobby

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/hoxchess/hoxnet/cmd/util"
	lobbyLib "github.com/hoxchess/hoxnet/lib/lobby"
	"github.com/hoxchess/hoxnet/rpc/client"
	"github.com/hoxchess/hoxnet/rpc/common"
	"github.com/hoxchess/hoxnet/rpc/dispatcher"
	"github.com/hoxchess/hoxnet/rpc/trace"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Logger = logger.GetLogger("cmd")

// session bundles everything a lobby command works with
type session struct {
	config   common.ClientConfig
	worker   *client.Worker
	lobby    *lobbyLib.Lobby
	recorder *trace.Recorder
	metrics  *http.Server
}

var (
	current *session

	// LobbyCommands represents the lobby command group
	LobbyCommands = &cobra.Command{
		Use:                "lobby",
		Short:              "Talk to a match server",
		Long:               `Connect to a match server as a player. Every command logs in first. The configuration can be set via command line flags or environment variables. The format of the environment variables is HOXC_<flag> (e.g. HOXC_PLAYER=me)`,
		PersistentPreRunE:  setupSession,
		PersistentPostRunE: closeSession,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add connection flags
	util.SetupClientFlags(LobbyCommands)

	// Add subcommands
	LobbyCommands.AddCommand(listCmd)
	LobbyCommands.AddCommand(watchCmd)
	LobbyCommands.AddCommand(newCmd)
	LobbyCommands.AddCommand(joinCmd)
	LobbyCommands.AddCommand(leaveCmd)
	LobbyCommands.AddCommand(moveCmd)
	LobbyCommands.AddCommand(sayCmd)
	LobbyCommands.AddCommand(drawCmd)
	LobbyCommands.AddCommand(resignCmd)
}

// setupSession starts the connection worker and logs in
func setupSession(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	config := util.GetClientConfig()
	if config.PlayerID == "" {
		return errors.New("a player id is required (--player or HOXC_PLAYER)")
	}
	if err := common.InitLoggers(*config); err != nil {
		return err
	}
	Logger.Debugf("%s", config.String())

	factory, err := util.GetTransportFactory(*config)
	if err != nil {
		return err
	}

	s := &session{
		config: *config,
		worker: client.NewWorker(*config, factory),
		lobby:  lobbyLib.New(config.PlayerID, os.Stdout),
	}
	s.worker.SetRouter(dispatcher.New(config.PlayerID, s.lobby, s.lobby, s.worker))

	if s.recorder, err = util.GetTraceRecorder(); err != nil {
		return err
	}
	if s.recorder != nil {
		s.worker.SetRecorder(s.recorder)
	}

	if endpoint := viper.GetString("metrics-endpoint"); endpoint != "" {
		s.metrics = serveMetrics(endpoint, s.worker)
	}

	s.worker.Start()
	current = s

	login, err := client.LoginLine(config.PlayerID, config.Password)
	if err != nil {
		return err
	}
	ch := make(chan *common.Response, 1)
	if !s.worker.Submit(common.NewConnectRequest(login, ch)) {
		return errors.New("connection worker is not running")
	}
	if resp := <-ch; !resp.Ok() {
		_ = closeSession(cmd, nil)
		return fmt.Errorf("login to %s failed: %s: %w", config.Transport.Endpoint, resp.Result, resp.Err)
	}
	return nil
}

// closeSession logs out and stops the worker
func closeSession(_ *cobra.Command, _ []string) error {
	s := current
	if s == nil {
		return nil
	}
	current = nil

	if s.worker.ConnState() == client.Connected {
		if _, err := s.send(common.ReqTLogout, nil); err != nil {
			Logger.Debugf("Logout failed: %v", err)
		}
	}

	s.worker.Shutdown()
	select {
	case <-s.worker.Done():
	case <-time.After(s.config.Timeout() * 2):
		Logger.Warningf("Connection worker did not stop in time")
	}

	if s.metrics != nil {
		_ = s.metrics.Close()
	}
	if s.recorder != nil {
		if err := s.recorder.Close(); err != nil {
			return err
		}
	}
	common.SyncLoggers()
	return nil
}

// send submits a send-and-await request and waits for its response
func (s *session) send(kind common.RequestKind, fields map[string]string) (*common.Response, error) {
	ch := make(chan *common.Response, 1)
	req, err := client.NewCommandRequest(kind, fields, ch, common.FlagKeepAlive)
	if err != nil {
		return nil, err
	}
	if !s.worker.Submit(req) {
		return nil, fmt.Errorf("%s request rejected, connection worker is %s", kind, s.worker.State())
	}

	resp := <-ch
	if !resp.Ok() {
		return resp, fmt.Errorf("%s request failed: %s: %w", kind, resp.Result, resp.Err)
	}
	return resp, nil
}

// serveMetrics exposes the worker metrics in Prometheus text format
func serveMetrics(endpoint string, w *client.Worker) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, _ *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		w.WritePrometheus(rw)
	})

	srv := &http.Server{Addr: endpoint, Handler: mux}
	go func() {
		Logger.Infof("Serving metrics on %s/metrics", endpoint)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			Logger.Errorf("Metrics server failed: %v", err)
		}
	}()
	return srv
}
