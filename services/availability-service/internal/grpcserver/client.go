package grpcserver

import (
	"context"

	"github.com/barberdesk/barberdesk/libs/grpcx"
	"google.golang.org/grpc"
)

// Client calls ServiceName over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) GetSlots(ctx context.Context, req *GetSlotsRequest, opts ...grpc.CallOption) (*GetSlotsResponse, error) {
	out := new(GetSlotsResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(grpcx.JSONCodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/GetSlots", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetOpenDays(ctx context.Context, req *GetOpenDaysRequest, opts ...grpc.CallOption) (*GetOpenDaysResponse, error) {
	out := new(GetOpenDaysResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(grpcx.JSONCodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/GetOpenDays", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
