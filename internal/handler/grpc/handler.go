package grpc

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/TomasB/geodb/internal/geo"
	"github.com/TomasB/geodb/internal/handler/lookup"
	"github.com/TomasB/geodb/internal/metrics"
	geodbv1 "github.com/TomasB/geodb/pkg/geodb/v1"
)

// authorizationKey is the metadata entry carrying the caller's key.
const authorizationKey = "authorization"

// Handler implements the gRPC GeoDBService.  Calls are checked in the same
// order as the HTTP routes: readiness, input, authorization, lookup.
type Handler struct {
	geodbv1.UnimplementedGeoDBServiceServer

	logger  *slog.Logger
	lookup  lookup.Lookup
	auth    lookup.Authorizer
	gate    *geo.Gate
	metrics *metrics.Instrumentation
}

// NewHandler creates a new gRPC handler.  m may be nil.
func NewHandler(logger *slog.Logger, l lookup.Lookup, authz lookup.Authorizer, gate *geo.Gate, m *metrics.Instrumentation) *Handler {
	return &Handler{
		logger:  logger,
		lookup:  l,
		auth:    authz,
		gate:    gate,
		metrics: m,
	}
}

// CountryByIP returns the country metadata of an IP address.
func (h *Handler) CountryByIP(ctx context.Context, req *geodbv1.IPRequest) (*geodbv1.Country, error) {
	return serve(ctx, h, lookup.EndpointCountryByIP, parseIP(req), h.lookup.CountryByIP, lookup.CountryMessage)
}

// CountryByISO returns the country metadata of an ISO 3166-1 alpha-2 code.
func (h *Handler) CountryByISO(ctx context.Context, req *geodbv1.ISORequest) (*geodbv1.Country, error) {
	parse := func() (string, error) {
		if req == nil || len(req.Code) != 2 {
			return "", status.Error(codes.InvalidArgument, "code must be 2 characters")
		}
		return req.Code, nil
	}
	return serve(ctx, h, lookup.EndpointCountryByISO, parse, h.lookup.CountryByISO, lookup.CountryMessage)
}

// CityByIP returns the city record of an IP address.
func (h *Handler) CityByIP(ctx context.Context, req *geodbv1.IPRequest) (*geodbv1.City, error) {
	return serve(ctx, h, lookup.EndpointCityByIP, parseIP(req), h.lookup.CityByIP, lookup.CityMessage)
}

// ASNByIP returns the autonomous system record of an IP address.
func (h *Handler) ASNByIP(ctx context.Context, req *geodbv1.IPRequest) (*geodbv1.Asn, error) {
	return serve(ctx, h, lookup.EndpointASNByIP, parseIP(req), h.lookup.ASNByIP, lookup.ASNMessage)
}

func serve[Q, R, M any](
	ctx context.Context,
	h *Handler,
	endpoint string,
	parse func() (Q, error),
	call func(Q) (R, error),
	convert func(R) M,
) (M, error) {
	var zero M
	start := time.Now()

	if err := h.gate.Wait(ctx); err != nil {
		return zero, h.fail(endpoint, start, geo.KindNotInitialized, status.FromContextError(err).Err())
	}

	q, err := parse()
	if err != nil {
		return zero, h.fail(endpoint, start, geo.KindInvalidQuery, err)
	}

	if !h.authorized(ctx) {
		return zero, h.fail(endpoint, start, geo.KindUnauthorized, status.Error(codes.Unauthenticated, "unauthorized"))
	}

	r, err := call(q)
	if err != nil {
		kind := geo.KindOf(err)
		return zero, h.fail(endpoint, start, kind, status.Error(CodeFor(kind), kind.String()))
	}

	h.metrics.ObserveRequest(endpoint, metrics.OK, time.Since(start))
	return convert(r), nil
}

func parseIP(req *geodbv1.IPRequest) func() (net.IP, error) {
	return func() (net.IP, error) {
		if req == nil || req.IP == "" {
			return nil, status.Error(codes.InvalidArgument, "ip is required")
		}
		ip := net.ParseIP(req.IP)
		if ip == nil {
			return nil, status.Error(codes.InvalidArgument, "invalid IP address")
		}
		return ip, nil
	}
}

func (h *Handler) authorized(ctx context.Context) bool {
	md, _ := metadata.FromIncomingContext(ctx)
	if v := md.Get(authorizationKey); len(v) > 0 && h.auth.IsAuthorized(v[0]) {
		return true
	}
	h.metrics.ObserveUnauthorized()
	return false
}

func (h *Handler) fail(endpoint string, start time.Time, kind geo.Kind, err error) error {
	h.metrics.ObserveRequest(endpoint, kind.String(), time.Since(start))
	h.logger.Debug("grpc lookup rejected", "endpoint", endpoint, "kind", kind.String(), "error", err)
	return err
}

// CodeFor maps an error kind to the gRPC status code returned to clients.
func CodeFor(kind geo.Kind) codes.Code {
	switch kind {
	case geo.KindInvalidQuery:
		return codes.InvalidArgument
	case geo.KindNotFound:
		return codes.NotFound
	case geo.KindRecordIncomplete:
		return codes.FailedPrecondition
	case geo.KindUnauthorized:
		return codes.Unauthenticated
	case geo.KindNotInitialized:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}
