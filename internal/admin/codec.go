package admin

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// codecName is registered with grpc's global encoding registry and also
// forced on both the admin server and its in-process client, so no
// protoc-generated .pb.go types are required: every admin message is a
// plain Go struct marshaled as JSON instead of protobuf wire format.
const codecName = "capwire-admin-json"

// jsonCodec implements google.golang.org/grpc/encoding.Codec over
// encoding/json. It is forced on the admin gRPC server via
// grpc.ForceServerCodec and on the admin client via
// grpc.ForceCodec, bypassing grpc's default
// requirement that request/response types implement proto.Message.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return codecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
