// Package grpcapi implements the rpncalc.v1.Calculator gRPC service.
//
// The service is described by hand over protobuf well-known types
// (StringValue, Struct, ListValue, Empty), so any gRPC client can call it
// without generated stubs. Evaluation resources have the same fields as the
// REST API.
package grpcapi

import (
	"context"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lemonberrylabs/rpncalc/pkg/batch"
	"github.com/lemonberrylabs/rpncalc/pkg/store"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "rpncalc.v1.Calculator"

// Full method names.
const (
	EvaluateMethod        = "/" + ServiceName + "/Evaluate"
	EvaluateRPNMethod     = "/" + ServiceName + "/EvaluateRPN"
	GetEvaluationMethod   = "/" + ServiceName + "/GetEvaluation"
	ListEvaluationsMethod = "/" + ServiceName + "/ListEvaluations"
)

// CalculatorServer is the server API for the Calculator service.
type CalculatorServer interface {
	Evaluate(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	EvaluateRPN(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	GetEvaluation(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ListEvaluations(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
}

// RegisterCalculatorServer registers srv on s.
func RegisterCalculatorServer(s grpc.ServiceRegistrar, srv CalculatorServer) {
	s.RegisterService(&calculatorServiceDesc, srv)
}

var calculatorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CalculatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Evaluate",
			Handler: unaryHandler(EvaluateMethod, func(srv CalculatorServer, ctx context.Context, in *wrapperspb.StringValue) (any, error) {
				return srv.Evaluate(ctx, in)
			}),
		},
		{
			MethodName: "EvaluateRPN",
			Handler: unaryHandler(EvaluateRPNMethod, func(srv CalculatorServer, ctx context.Context, in *wrapperspb.StringValue) (any, error) {
				return srv.EvaluateRPN(ctx, in)
			}),
		},
		{
			MethodName: "GetEvaluation",
			Handler: unaryHandler(GetEvaluationMethod, func(srv CalculatorServer, ctx context.Context, in *wrapperspb.StringValue) (any, error) {
				return srv.GetEvaluation(ctx, in)
			}),
		},
		{
			MethodName: "ListEvaluations",
			Handler: unaryHandler(ListEvaluationsMethod, func(srv CalculatorServer, ctx context.Context, in *emptypb.Empty) (any, error) {
				return srv.ListEvaluations(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rpncalc/v1/calculator.proto",
}

// unaryHandler adapts a typed method call to grpc.MethodDesc's handler
// signature, running interceptors when present.
func unaryHandler[Req any, PReq interface{ *Req }](fullMethod string, call func(CalculatorServer, context.Context, PReq) (any, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}
		cs := srv.(CalculatorServer)
		if interceptor == nil {
			return call(cs, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(cs, ctx, req.(PReq))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Server implements the Calculator service on top of the evaluation store.
type Server struct {
	store *store.Store
	grpc  *grpc.Server
}

// New creates a new gRPC server wrapping the given store.
func New(s *store.Store) *Server {
	srv := &Server{store: s}

	gs := grpc.NewServer()
	RegisterCalculatorServer(gs, srv)
	srv.grpc = gs

	return srv
}

// Serve starts listening on the given address and serves gRPC requests.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	return s.grpc.Serve(lis)
}

// GracefulStop gracefully stops the gRPC server.
func (s *Server) GracefulStop() {
	s.grpc.GracefulStop()
}

// --- Calculator Service ---

func (s *Server) Evaluate(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	return s.evaluate(batch.ModeInfix, req.GetValue())
}

func (s *Server) EvaluateRPN(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	return s.evaluate(batch.ModeRPN, req.GetValue())
}

func (s *Server) evaluate(mode batch.Mode, expression string) (*structpb.Struct, error) {
	if batch.IsBlank(expression) {
		return nil, status.Error(codes.InvalidArgument, "expression is required")
	}
	rec := batch.NewProcessor(batch.WithMode(mode)).ProcessLine(1, expression)
	ev := s.store.CreateEvaluation(mode, rec)
	return evaluationToProto(ev)
}

func (s *Server) GetEvaluation(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}
	ev, err := s.store.GetEvaluation(req.GetValue())
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	return evaluationToProto(ev)
}

func (s *Server) ListEvaluations(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	evals := s.store.ListEvaluations()
	items := make([]any, len(evals))
	for i, ev := range evals {
		items[i] = evaluationToMap(ev)
	}
	list, err := structpb.NewList(items)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return list, nil
}

// --- Helpers ---

func evaluationToMap(ev *store.Evaluation) map[string]any {
	m := map[string]any{
		"name":       ev.Name,
		"mode":       string(ev.Mode),
		"state":      string(ev.State),
		"expression": ev.Expression,
		"rpn":        ev.RPN,
		"result":     ev.Result,
		"createTime": ev.CreateTime.UTC().Format(time.RFC3339Nano),
	}
	if ev.Exact != "" {
		m["exact"] = ev.Exact
	}
	if ev.Error != nil {
		m["error"] = map[string]any{
			"kind":    ev.Error.Kind,
			"message": ev.Error.Message,
		}
	}
	return m
}

func evaluationToProto(ev *store.Evaluation) (*structpb.Struct, error) {
	st, err := structpb.NewStruct(evaluationToMap(ev))
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return st, nil
}
