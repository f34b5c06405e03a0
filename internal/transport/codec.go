package transport

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodec marshals gRPC messages as JSON instead of protobuf. It is
// registered under the "json" content-subtype; ReplicaServiceClient selects
// it per-call via grpc.CallContentSubtype("json"), and the server side picks
// a matching registered codec automatically from the incoming subtype
// header, with no server-side option needed.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return "json"
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// CallContentSubtype is the subtype every client call must set so the
// server negotiates the JSON codec rather than gRPC's default proto codec.
const CallContentSubtype = "json"
