package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls the Calculator service over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a client on cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Evaluate evaluates an infix expression.
func (c *Client) Evaluate(ctx context.Context, expression string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, EvaluateMethod, wrapperspb.String(expression), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// EvaluateRPN evaluates a space-separated postfix expression.
func (c *Client) EvaluateRPN(ctx context.Context, expression string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, EvaluateRPNMethod, wrapperspb.String(expression), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GetEvaluation fetches a stored evaluation by name.
func (c *Client) GetEvaluation(ctx context.Context, name string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetEvaluationMethod, wrapperspb.String(name), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEvaluations returns the evaluation history in creation order.
func (c *Client) ListEvaluations(ctx context.Context, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, ListEvaluationsMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
