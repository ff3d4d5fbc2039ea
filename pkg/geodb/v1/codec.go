package geodbv1

import (
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
)

// Codec is a gRPC codec for the messages of this package.  Other protobuf
// messages, such as those of the standard health service, go through
// proto.Marshal so both can share one server.
type Codec struct{}

// Name implements encoding.Codec.
func (Codec) Name() string {
	return "proto"
}

// Marshal implements encoding.Codec.
func (Codec) Marshal(v any) ([]byte, error) {
	switch m := v.(type) {
	case Message:
		return m.Marshal()
	case proto.Message:
		return proto.Marshal(m)
	default:
		return nil, fmt.Errorf("geodbv1: cannot marshal %T", v)
	}
}

// Unmarshal implements encoding.Codec.
func (Codec) Unmarshal(data []byte, v any) error {
	switch m := v.(type) {
	case Message:
		return m.Unmarshal(data)
	case proto.Message:
		return proto.Unmarshal(data, m)
	default:
		return fmt.Errorf("geodbv1: cannot unmarshal into %T", v)
	}
}

// ServerCodec returns the server option that installs Codec.
func ServerCodec() grpc.ServerOption {
	return grpc.ForceServerCodec(Codec{})
}
