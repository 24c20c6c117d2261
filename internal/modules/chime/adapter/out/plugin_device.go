package out

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	chimerpc "decktimer/internal/modules/chime/adapter/out/rpc"
	"decktimer/internal/modules/chime/domain"
	chimeout "decktimer/internal/modules/chime/port/out"
)

const (
	defaultStartTimeout     = 3 * time.Second
	defaultCallTimeout      = 2 * time.Second
	defaultReconnectBackoff = 10 * time.Second
)

// GRPCHost opens a short-lived plugin connection per call. The doctor uses
// it to prove the plugin starts and answers.
type GRPCHost struct {
	log hclog.Logger
}

func NewGRPCHost(log hclog.Logger) chimeout.PluginHost {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &GRPCHost{log: log}
}

func (h *GRPCHost) GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	client, closeFn, err := connect(manifest, h.log)
	if err != nil {
		return domain.Metadata{}, err
	}
	defer closeFn()

	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	meta, err := client.GetMetadata(callCtx)
	if err != nil {
		return domain.Metadata{}, callError("get metadata", callCtx, err)
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version, Sound: meta.Sound}, nil
}

// PluginDevice keeps one plugin process alive for the lifetime of the
// engine. The process starts in the background once the binary checksum has
// been verified; until its handshake completes every call fails fast with
// domain.ErrPluginUnavailable. A failed start is retried after a backoff.
type PluginDevice struct {
	manifest domain.Manifest
	instance string
	log      hclog.Logger
	now      func() time.Time
	backoff  time.Duration

	mu         sync.Mutex
	client     chimerpc.ChimeClient
	kill       func()
	starting   *plugin.Client
	connecting bool
	retryAt    time.Time
	closed     bool
}

func NewPluginDevice(manifest domain.Manifest, instance string, log hclog.Logger) (*PluginDevice, error) {
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &PluginDevice{
		manifest: manifest,
		instance: instance,
		log:      log.Named("chime-plugin"),
		now:      time.Now,
		backoff:  defaultReconnectBackoff,
	}, nil
}

var _ chimeout.Device = (*PluginDevice)(nil)

// Connect verifies the binary and starts the plugin without waiting for it.
func (d *PluginDevice) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.startLocked()
}

// Ready reports whether the plugin has completed its handshake.
func (d *PluginDevice) Ready() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.client != nil
}

func (d *PluginDevice) Play(ctx context.Context) error {
	return d.call(ctx, "play", func(ctx context.Context, c chimerpc.ChimeClient) error {
		return c.Play(ctx, &chimerpc.PlayRequest{Instance: d.instance})
	})
}

func (d *PluginDevice) Stop(ctx context.Context) error {
	return d.call(ctx, "stop", func(ctx context.Context, c chimerpc.ChimeClient) error {
		return c.Stop(ctx)
	})
}

func (d *PluginDevice) Rewind(ctx context.Context) error {
	return d.call(ctx, "rewind", func(ctx context.Context, c chimerpc.ChimeClient) error {
		return c.Rewind(ctx)
	})
}

// Close kills the plugin process, including one that is still starting.
func (d *PluginDevice) Close() error {
	d.mu.Lock()
	d.closed = true
	var kills []func()
	if d.kill != nil {
		kills = append(kills, d.kill)
	}
	if d.starting != nil {
		kills = append(kills, d.starting.Kill)
	}
	d.client, d.kill, d.starting = nil, nil, nil
	d.mu.Unlock()

	for _, kill := range kills {
		kill()
	}
	return nil
}

func (d *PluginDevice) call(ctx context.Context, op string, fn func(context.Context, chimerpc.ChimeClient) error) error {
	d.mu.Lock()
	client := d.client
	if client == nil {
		err := d.startLocked()
		d.mu.Unlock()
		if err != nil {
			return fmt.Errorf("%s chime: %w", op, err)
		}
		return fmt.Errorf("%s chime: %w", op, domain.ErrPluginUnavailable)
	}
	d.mu.Unlock()

	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	if err := fn(callCtx, client); err != nil {
		d.drop(client)
		return callError(op+" chime", callCtx, err)
	}
	return nil
}

func (d *PluginDevice) startLocked() error {
	if d.closed || d.client != nil || d.connecting || d.now().Before(d.retryAt) {
		return nil
	}
	if err := d.manifest.VerifyChecksum(); err != nil {
		d.retryAt = d.now().Add(d.backoff)
		return err
	}
	d.connecting = true
	d.starting = newPluginClient(d.manifest, d.log)
	go d.handshake(d.starting)
	return nil
}

func (d *PluginDevice) handshake(pc *plugin.Client) {
	client, err := dispense(pc)

	d.mu.Lock()
	d.connecting = false
	owned := d.starting == pc
	if owned {
		d.starting = nil
	}
	keep := err == nil && owned && !d.closed
	if keep {
		d.client, d.kill = client, pc.Kill
	} else if err != nil {
		d.retryAt = d.now().Add(d.backoff)
	}
	d.mu.Unlock()

	switch {
	case keep:
		d.log.Debug("plugin started", "name", d.manifest.Name)
	case err != nil:
		d.log.Warn("plugin failed to start", "name", d.manifest.Name, "error", err)
		pc.Kill()
	default:
		pc.Kill()
	}
}

// drop forgets a client whose call failed; a new process starts after the backoff.
func (d *PluginDevice) drop(client chimerpc.ChimeClient) {
	d.mu.Lock()
	if d.client != client {
		d.mu.Unlock()
		return
	}
	kill := d.kill
	d.client, d.kill = nil, nil
	d.retryAt = d.now().Add(d.backoff)
	d.mu.Unlock()
	if kill != nil {
		go kill()
	}
}

func newPluginClient(manifest domain.Manifest, log hclog.Logger) *plugin.Client {
	return plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  chimerpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          chimerpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger:           log.Named(manifest.Name),
	})
}

func dispense(client *plugin.Client) (chimerpc.ChimeClient, error) {
	rpcClient, err := client.Client()
	if err != nil {
		return nil, fmt.Errorf("start plugin client: %w", err)
	}
	raw, err := rpcClient.Dispense(chimerpc.PluginMapKey)
	if err != nil {
		return nil, fmt.Errorf("dispense plugin: %w", err)
	}
	typed, ok := raw.(chimerpc.ChimeClient)
	if !ok {
		return nil, fmt.Errorf("plugin rpc client type mismatch")
	}
	return typed, nil
}

func connect(manifest domain.Manifest, log hclog.Logger) (chimerpc.ChimeClient, func(), error) {
	client := newPluginClient(manifest, log)
	typed, err := dispense(client)
	if err != nil {
		client.Kill()
		return nil, nil, err
	}
	return typed, client.Kill, nil
}

func callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

func callError(op string, callCtx context.Context, err error) error {
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", domain.ErrPluginTimeout, op)
	}
	return fmt.Errorf("%s: %w", op, err)
}
