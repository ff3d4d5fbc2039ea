package geodbv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "geodb.v1.GeoDBService"

// Full method names.
const (
	MethodCountryByIP  = "/" + ServiceName + "/CountryByIP"
	MethodCountryByISO = "/" + ServiceName + "/CountryByISO"
	MethodCityByIP     = "/" + ServiceName + "/CityByIP"
	MethodASNByIP      = "/" + ServiceName + "/ASNByIP"
)

// GeoDBServiceServer is the server API for GeoDBService.
type GeoDBServiceServer interface {
	CountryByIP(context.Context, *IPRequest) (*Country, error)
	CountryByISO(context.Context, *ISORequest) (*Country, error)
	CityByIP(context.Context, *IPRequest) (*City, error)
	ASNByIP(context.Context, *IPRequest) (*Asn, error)
}

// UnimplementedGeoDBServiceServer answers every method with Unimplemented.
type UnimplementedGeoDBServiceServer struct{}

func (UnimplementedGeoDBServiceServer) CountryByIP(context.Context, *IPRequest) (*Country, error) {
	return nil, status.Error(codes.Unimplemented, "method CountryByIP not implemented")
}

func (UnimplementedGeoDBServiceServer) CountryByISO(context.Context, *ISORequest) (*Country, error) {
	return nil, status.Error(codes.Unimplemented, "method CountryByISO not implemented")
}

func (UnimplementedGeoDBServiceServer) CityByIP(context.Context, *IPRequest) (*City, error) {
	return nil, status.Error(codes.Unimplemented, "method CityByIP not implemented")
}

func (UnimplementedGeoDBServiceServer) ASNByIP(context.Context, *IPRequest) (*Asn, error) {
	return nil, status.Error(codes.Unimplemented, "method ASNByIP not implemented")
}

// ServiceDesc describes GeoDBService for grpc.ServiceRegistrar.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GeoDBServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CountryByIP",
			Handler: unary(MethodCountryByIP, func(ctx context.Context, s GeoDBServiceServer, in *IPRequest) (any, error) {
				return s.CountryByIP(ctx, in)
			}),
		},
		{
			MethodName: "CountryByISO",
			Handler: unary(MethodCountryByISO, func(ctx context.Context, s GeoDBServiceServer, in *ISORequest) (any, error) {
				return s.CountryByISO(ctx, in)
			}),
		},
		{
			MethodName: "CityByIP",
			Handler: unary(MethodCityByIP, func(ctx context.Context, s GeoDBServiceServer, in *IPRequest) (any, error) {
				return s.CityByIP(ctx, in)
			}),
		},
		{
			MethodName: "ASNByIP",
			Handler: unary(MethodASNByIP, func(ctx context.Context, s GeoDBServiceServer, in *IPRequest) (any, error) {
				return s.ASNByIP(ctx, in)
			}),
		},
	},
	Metadata: "geo.proto",
}

// RegisterGeoDBServiceServer registers srv.  The server must be created with
// ServerCodec.
func RegisterGeoDBServiceServer(r grpc.ServiceRegistrar, srv GeoDBServiceServer) {
	r.RegisterService(&ServiceDesc, srv)
}

func unary[Req any](method string, call func(context.Context, GeoDBServiceServer, *Req) (any, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(GeoDBServiceServer)
		if interceptor == nil {
			return call(ctx, s, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(ctx, s, req.(*Req))
		})
	}
}

// GeoDBServiceClient is the client API for GeoDBService.
type GeoDBServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewGeoDBServiceClient returns a client that calls cc with Codec.
func NewGeoDBServiceClient(cc grpc.ClientConnInterface) *GeoDBServiceClient {
	return &GeoDBServiceClient{cc: cc}
}

func (c *GeoDBServiceClient) CountryByIP(ctx context.Context, in *IPRequest, opts ...grpc.CallOption) (*Country, error) {
	out := new(Country)
	if err := c.invoke(ctx, MethodCountryByIP, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GeoDBServiceClient) CountryByISO(ctx context.Context, in *ISORequest, opts ...grpc.CallOption) (*Country, error) {
	out := new(Country)
	if err := c.invoke(ctx, MethodCountryByISO, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GeoDBServiceClient) CityByIP(ctx context.Context, in *IPRequest, opts ...grpc.CallOption) (*City, error) {
	out := new(City)
	if err := c.invoke(ctx, MethodCityByIP, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GeoDBServiceClient) ASNByIP(ctx context.Context, in *IPRequest, opts ...grpc.CallOption) (*Asn, error) {
	out := new(Asn)
	if err := c.invoke(ctx, MethodASNByIP, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GeoDBServiceClient) invoke(ctx context.Context, method string, in, out Message, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec{})}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}
