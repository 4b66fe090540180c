package rpc

// #region imports
import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/motion-scan/internal/config"
	"github.com/danielpatrickdp/motion-scan/internal/landmark"
	"github.com/danielpatrickdp/motion-scan/internal/logging"
	"github.com/danielpatrickdp/motion-scan/internal/orchestrator"
	"github.com/danielpatrickdp/motion-scan/internal/store"
)

// #endregion

// #region service-desc

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "motionscan.v1.Evaluator"

const evaluateMethod = "/" + ServiceName + "/Evaluate"

// EvaluatorServer is the server API of the Evaluator service. Requests and
// responses travel as google.protobuf.Struct so the JSON documents used on
// disk are also the wire format.
type EvaluatorServer interface {
	Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the Evaluator service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EvaluatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: evaluateHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "motionscan/v1/evaluator.proto",
}

func evaluateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EvaluatorServer).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: evaluateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EvaluatorServer).Evaluate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// #endregion

// #region messages

// EvaluateRequest is the decoded Evaluate request. TestType may be empty
// when VideoRef is a storage key that carries it.
type EvaluateRequest struct {
	VideoRef string             `json:"video_ref"`
	TestType string             `json:"test_type,omitempty"`
	Sequence *landmark.Sequence `json:"sequence"`
}

// EvaluateResponse is the decoded Evaluate response. ID is set when the
// server persists results. Config summarizes the server's thresholds.
type EvaluateResponse struct {
	ID     string                `json:"id,omitempty"`
	Result orchestrator.Result   `json:"result"`
	Config logging.ConfigSummary `json:"config_summary"`
}

// #endregion

// #region handler

// Handler serves Evaluate through a shared worker. The store is optional.
type Handler struct {
	worker *orchestrator.Worker
	store  *store.Store
}

// NewHandler creates a Handler. Pass a nil store to skip persistence.
func NewHandler(worker *orchestrator.Worker, st *store.Store) *Handler {
	return &Handler{worker: worker, store: st}
}

// Evaluate decodes the request, runs the worker and encodes the result.
func (h *Handler) Evaluate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	// 1. Decode
	var req EvaluateRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	if req.TestType == "" {
		tt, ok := orchestrator.TestTypeFromKey(req.VideoRef)
		if !ok {
			return nil, status.Error(codes.InvalidArgument, "test_type is required")
		}
		req.TestType = tt
	}

	// 2. Process
	res, err := h.worker.Process(orchestrator.Request{VideoRef: req.VideoRef, TestType: req.TestType, Sequence: req.Sequence})
	if err != nil {
		return nil, statusFor(err)
	}

	// 3. Persist
	resp := EvaluateResponse{Result: res, Config: logging.SummarizeConfig(h.worker.Config())}
	if h.store != nil {
		rec, err := h.store.Save(res)
		if err != nil {
			log.Printf("[RPC] save failed: %v", err)
			return nil, status.Error(codes.Internal, "saving result failed")
		}
		resp.ID = rec.ID
	}

	// 4. Encode
	out, err := toStruct(resp)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	log.Printf("[RPC] Evaluate video=%s test=%s score=%d", res.Video, res.TestType, res.Score)
	return out, nil
}

func statusFor(err error) error {
	var ie *landmark.InputError
	var ce *config.ConfigurationError
	if errors.As(err, &ie) || errors.As(err, &ce) {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// #endregion

// #region register

// Register adds the Evaluator and the standard health service to s. The
// returned health server can be flipped to NOT_SERVING during shutdown.
func Register(s *grpc.Server, h *Handler) *health.Server {
	s.RegisterService(&ServiceDesc, h)
	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	return hs
}

// #endregion

// #region conversion

// toStruct converts v to a Struct through its JSON encoding.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// fromStruct decodes s into v through its JSON encoding.
func fromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		return fmt.Errorf("empty message")
	}
	data, err := json.Marshal(s.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// #endregion
