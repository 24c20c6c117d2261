package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey      = "chime"
	serviceName       = "decktimer.chime.v1.Chime"
	jsonCodecName     = "json"
	methodGetMetadata = "/" + serviceName + "/GetMetadata"
	methodPlay        = "/" + serviceName + "/Play"
	methodStop        = "/" + serviceName + "/Stop"
	methodRewind      = "/" + serviceName + "/Rewind"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "DECKTIMER_CHIME_PLUGIN",
	MagicCookieValue: "decktimer",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Sound   string `json:"sound"`
}

type PlayRequest struct {
	Instance string `json:"instance"`
}

type ChimeServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	Play(ctx context.Context, in *PlayRequest) (*Empty, error)
	Stop(ctx context.Context, in *Empty) (*Empty, error)
	Rewind(ctx context.Context, in *Empty) (*Empty, error)
}

type ChimeClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	Play(ctx context.Context, in *PlayRequest) error
	Stop(ctx context.Context) error
	Rewind(ctx context.Context) error
}

type chimeClient struct {
	conn *grpc.ClientConn
}

func NewChimeClient(conn *grpc.ClientConn) ChimeClient {
	return &chimeClient{conn: conn}
}

func (c *chimeClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.invoke(ctx, methodGetMetadata, &Empty{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chimeClient) Play(ctx context.Context, in *PlayRequest) error {
	return c.invoke(ctx, methodPlay, in, &Empty{})
}

func (c *chimeClient) Stop(ctx context.Context) error {
	return c.invoke(ctx, methodStop, &Empty{}, &Empty{})
}

func (c *chimeClient) Rewind(ctx context.Context) error {
	return c.invoke(ctx, methodRewind, &Empty{}, &Empty{})
}

func (c *chimeClient) invoke(ctx context.Context, method string, in, out any) error {
	return c.conn.Invoke(ctx, method, in, out, grpc.CallContentSubtype(jsonCodecName))
}

// unary adapts a typed server method to a grpc.MethodDesc handler.
func unary[Req any, Resp any](method string, call func(context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*Req)
			if !ok {
				return nil, fmt.Errorf("invalid request type for %s", method)
			}
			return call(ctx, typed)
		}
		return interceptor(ctx, in, info, handler)
	}
}

func RegisterChimeServer(server grpc.ServiceRegistrar, impl ChimeServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*ChimeServer)(nil),
		Methods: []grpc.MethodDesc{
			{MethodName: "GetMetadata", Handler: unary(methodGetMetadata, impl.GetMetadata)},
			{MethodName: "Play", Handler: unary(methodPlay, impl.Play)},
			{MethodName: "Stop", Handler: unary(methodStop, impl.Stop)},
			{MethodName: "Rewind", Handler: unary(methodRewind, impl.Rewind)},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "chime/v1/chime.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl ChimeServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterChimeServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewChimeClient(conn), nil
}

func PluginMap(impl ChimeServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
