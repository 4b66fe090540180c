package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/motion-scan/internal/landmark"
)

// #region client-struct
// Client wraps a gRPC connection to an Evaluator server.
type Client struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}

// #endregion client-struct

// #region constructor
// NewClient connects to the Evaluator server at addr.
func NewClient(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn, cc: conn}, nil
}

// NewClientWithConn creates a Client over an existing connection, which the
// caller keeps ownership of.
func NewClientWithConn(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection if the client opened it.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region evaluate
// Evaluate sends one sequence for scoring. An empty testType lets the server
// derive it from videoRef.
func (c *Client) Evaluate(ctx context.Context, videoRef, testType string, seq *landmark.Sequence) (EvaluateResponse, error) {
	in, err := toStruct(EvaluateRequest{VideoRef: videoRef, TestType: testType, Sequence: seq})
	if err != nil {
		return EvaluateResponse{}, fmt.Errorf("encode request: %w", err)
	}

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, evaluateMethod, in, out); err != nil {
		return EvaluateResponse{}, fmt.Errorf("evaluate rpc: %w", err)
	}

	var resp EvaluateResponse
	if err := fromStruct(out, &resp); err != nil {
		return EvaluateResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}

// #endregion evaluate

// #region health
// Health reports the serving status of the Evaluator service.
func (c *Client) Health(ctx context.Context) (string, error) {
	resp, err := healthpb.NewHealthClient(c.cc).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return "", fmt.Errorf("health rpc: %w", err)
	}
	return resp.GetStatus().String(), nil
}

// #endregion health
