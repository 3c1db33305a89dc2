package admin

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client is a thin hand-rolled stub for the admin service, standing in
// for the client code protoc-gen-go-grpc would otherwise generate. It
// forces the same JSON codec the server uses (see codec.go) so no
// generated message types are needed on either side.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to an admin server listening at target (host:port).
func Dial(target string) (*Client, error) {
	conn, err := grpc.NewClient(
		target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(jsonCodec{})),
	)
	if err != nil {
		return nil, fmt.Errorf("dialing admin server at %s: %w", target, err)
	}

	return &Client{conn: conn}, nil
}

// Close tears down the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// ListCapabilities calls the ListCapabilities RPC.
func (c *Client) ListCapabilities(ctx context.Context) (*ListCapabilitiesResponse, error) {
	resp := new(ListCapabilitiesResponse)
	err := c.conn.Invoke(ctx, "/"+serviceName+"/ListCapabilities",
		&ListCapabilitiesRequest{}, resp)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// Stats calls the Stats RPC.
func (c *Client) Stats(ctx context.Context) (*StatsResponse, error) {
	resp := new(StatsResponse)
	err := c.conn.Invoke(ctx, "/"+serviceName+"/Stats", &StatsRequest{}, resp)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// Revoke calls the Revoke RPC for the given textual address.
func (c *Client) Revoke(ctx context.Context, address string) (*RevokeResponse, error) {
	resp := new(RevokeResponse)
	err := c.conn.Invoke(ctx, "/"+serviceName+"/Revoke",
		&RevokeRequest{Address: address}, resp)
	if err != nil {
		return nil, err
	}

	return resp, nil
}
