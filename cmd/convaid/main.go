// convaid: real-time conversational session service.
// Clients connect over one duplex WebSocket, stream text or audio, and
// receive live transcripts and streamed model responses with tool use.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-convai/internal/config"
	"github.com/teslashibe/go-convai/internal/log"
	"github.com/teslashibe/go-convai/pkg/agent"
	"github.com/teslashibe/go-convai/pkg/gateway"
	"github.com/teslashibe/go-convai/pkg/nav"
	"github.com/teslashibe/go-convai/pkg/session"
	"github.com/teslashibe/go-convai/pkg/tools"
	"github.com/teslashibe/go-convai/pkg/transcribe"
	"github.com/teslashibe/go-convai/pkg/web"
)

var version = "1.0.0"

var mockNav = flag.Bool("mock-nav", false, "Use the built-in navigation simulator even when NAV_BRIDGE_ADDR is set")

func main() {
	flag.Parse()

	settings, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	log.Init(settings.LogLevel)
	logger := log.With("service", "convaid", "version", version)

	provider, err := gateway.NewClient(
		gateway.WithAPIKey(settings.GatewayAPIKey),
		gateway.WithBaseURL(settings.GatewayBaseURL),
		gateway.WithModel(settings.GatewayModel),
		gateway.WithLogger(logger),
	)
	if err != nil {
		logger.Error("gateway client setup failed", "error", err)
		os.Exit(1)
	}
	defer provider.Close()

	var backend nav.Backend
	if settings.NavBridgeAddr != "" && !*mockNav {
		backend = nav.NewHTTPBackend(settings.NavBridgeAddr)
		logger.Info("using navigation bridge", "addr", settings.NavBridgeAddr)
	} else {
		backend = nav.NewMock(nav.WithMockLogger(logger))
		logger.Info("using navigation simulator")
	}

	table := tools.NewTable(backend, tools.WithLogger(logger))

	stt := transcribe.NewManager(func() transcribe.Transcriber {
		return transcribe.NewSession(
			transcribe.WithAPIKey(settings.STTAPIKey),
			transcribe.WithHost(settings.STTHost),
			transcribe.WithSampleRate(settings.STTSampleRate),
			transcribe.WithLogger(logger),
		)
	}, logger)

	sessions := session.NewManager(provider, table, stt,
		session.WithLogger(logger),
		session.WithAgentOptions(agent.WithIdleTimeout(settings.TurnTimeout)),
	)

	server := web.NewServer(settings.Port, sessions, table, logger)
	server.StartAsync()
	logger.Info("convaid started", "port", settings.Port, "tools", len(table.Names()))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := server.Shutdown(); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
