package main

import (
	"context"
	"os"
	"sync"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	chimeadapter "decktimer/internal/modules/chime/adapter/out"
	chimerpc "decktimer/internal/modules/chime/adapter/out/rpc"
	chimeout "decktimer/internal/modules/chime/port/out"
)

const soundEnv = "DECKTIMER_CHIME_SOUND"

type server struct {
	mu     sync.Mutex
	sound  string
	device chimeout.Device
	log    hclog.Logger
}

func newServer(log hclog.Logger) *server {
	sound := os.Getenv(soundEnv)
	s := &server{sound: sound, log: log}
	ffplay := chimeadapter.NewFFPlayDevice(sound, log)
	if sound != "" && ffplay.Probe(context.Background()) == nil {
		s.device = ffplay
	} else {
		s.device = chimeadapter.NewBellDevice(os.Stderr)
	}
	return s
}

func (s *server) GetMetadata(_ context.Context, _ *chimerpc.Empty) (*chimerpc.Metadata, error) {
	return &chimerpc.Metadata{Name: "chime", Version: "1.0.0", Sound: s.sound}, nil
}

func (s *server) Play(ctx context.Context, in *chimerpc.PlayRequest) (*chimerpc.Empty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Debug("play", "instance", in.Instance)
	return &chimerpc.Empty{}, s.device.Play(ctx)
}

func (s *server) Stop(ctx context.Context, _ *chimerpc.Empty) (*chimerpc.Empty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &chimerpc.Empty{}, s.device.Stop(ctx)
}

func (s *server) Rewind(ctx context.Context, _ *chimerpc.Empty) (*chimerpc.Empty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &chimerpc.Empty{}, s.device.Rewind(ctx)
}

func main() {
	log := hclog.New(&hclog.LoggerOptions{Name: "chime", Output: os.Stderr, Level: hclog.Info, JSONFormat: true})
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: chimerpc.HandshakeConfig,
		Plugins:         chimerpc.PluginMap(newServer(log)),
		GRPCServer:      plugin.DefaultGRPCServer,
		Logger:          log,
	})
}
