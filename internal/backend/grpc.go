package backend

// #region imports
import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"
)

// #endregion imports

// #region methods

// GenerationServiceName is the gRPC service the transport calls.
const GenerationServiceName = "advisor.v1.GenerationService"

const (
	methodGenerate   = "/" + GenerationServiceName + "/Generate"
	methodListModels = "/" + GenerationServiceName + "/ListModels"
)

// GenerationClient is the generation service surface. Requests and
// responses are free-form structpb payloads.
type GenerationClient interface {
	Generate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListModels(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type generationClient struct {
	cc grpc.ClientConnInterface
}

// NewGenerationClient wraps a connection.
func NewGenerationClient(cc grpc.ClientConnInterface) GenerationClient {
	return &generationClient{cc: cc}
}

func (c *generationClient) Generate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGenerate, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *generationClient) ListModels(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodListModels, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// #endregion methods

// #region client-struct

// ErrNoText is returned when a Generate response carries no text field.
var ErrNoText = errors.New("generate response has no text")

// GRPCTransport calls a generation service over gRPC.
type GRPCTransport struct {
	conn   *grpc.ClientConn
	client GenerationClient
	health healthpb.HealthClient
}

// #endregion client-struct

// #region constructor

// NewGRPCTransport connects to the generation service at addr.
func NewGRPCTransport(addr string, opts ...grpc.DialOption) (*GRPCTransport, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &GRPCTransport{
		conn:   conn,
		client: NewGenerationClient(conn),
		health: healthpb.NewHealthClient(conn),
	}, nil
}

// NewGRPCTransportWithClient creates a transport over an injected client.
// Used for testing without a real gRPC connection.
func NewGRPCTransportWithClient(client GenerationClient) *GRPCTransport {
	return &GRPCTransport{client: client}
}

// Close shuts down the gRPC connection.
func (t *GRPCTransport) Close() error {
	if t.conn == nil {
		return nil
	}
	return t.conn.Close()
}

// #endregion constructor

// #region complete

// Complete sends one Generate call.
func (t *GRPCTransport) Complete(ctx context.Context, req Completion) (string, error) {
	msgs := make([]any, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = map[string]any{"role": m.Role, "content": m.Content}
	}
	in, err := structpb.NewStruct(map[string]any{
		"model":       req.Model,
		"messages":    msgs,
		"max_tokens":  req.MaxTokens,
		"temperature": req.Temperature,
		"top_p":       req.TopP,
	})
	if err != nil {
		return "", fmt.Errorf("encode generate request: %w", err)
	}

	resp, err := t.client.Generate(ctx, in)
	if err != nil {
		return "", fmt.Errorf("generate rpc %s: %w", req.Model, err)
	}
	text, ok := resp.GetFields()["text"]
	if !ok {
		return "", fmt.Errorf("generate rpc %s: %w", req.Model, ErrNoText)
	}
	return text.GetStringValue(), nil
}

// #endregion complete

// #region models

// Models lists the models the service can serve.
func (t *GRPCTransport) Models(ctx context.Context) ([]string, error) {
	resp, err := t.client.ListModels(ctx, &structpb.Struct{})
	if err != nil {
		return nil, fmt.Errorf("list models rpc: %w", err)
	}
	var ids []string
	for _, v := range resp.GetFields()["models"].GetListValue().GetValues() {
		if s := v.GetStringValue(); s != "" {
			ids = append(ids, s)
		}
	}
	return ids, nil
}

// #endregion models

// #region health

// Health checks the standard gRPC health service for the generation service.
func (t *GRPCTransport) Health(ctx context.Context) error {
	if t.health == nil {
		return nil
	}
	resp, err := t.health.Check(ctx, &healthpb.HealthCheckRequest{Service: GenerationServiceName})
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("health check: %s", resp.GetStatus())
	}
	return nil
}

// #endregion health
