package lookup

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TomasB/geodb/internal/auth"
	"github.com/TomasB/geodb/internal/data"
	"github.com/TomasB/geodb/internal/geo"
	"github.com/TomasB/geodb/internal/metrics"
	geodbv1 "github.com/TomasB/geodb/pkg/geodb/v1"
)

// Lookup answers point lookups against the current dataset.
type Lookup interface {
	CountryByIP(ip net.IP) (*data.Country, error)
	CountryByISO(code string) (*data.Country, error)
	CityByIP(ip net.IP) (*geo.CityResult, error)
	ASNByIP(ip net.IP) (*geo.ASNResult, error)
}

// Authorizer checks a raw credential.
type Authorizer interface {
	IsAuthorized(credential string) bool
}

// Endpoint names used in logs and metrics.
const (
	EndpointCountryByIP  = "country_ip"
	EndpointCountryByISO = "country_iso"
	EndpointCityByIP     = "city"
	EndpointASNByIP      = "asn"
)

// Handler serves the lookup endpoints.  Every failure is answered with a
// status code and an empty body.
type Handler struct {
	logger  *slog.Logger
	lookup  Lookup
	auth    Authorizer
	metrics *metrics.Instrumentation
}

// NewHandler creates a new lookup handler.  m may be nil.
func NewHandler(logger *slog.Logger, lookup Lookup, authz Authorizer, m *metrics.Instrumentation) *Handler {
	return &Handler{
		logger:  logger,
		lookup:  lookup,
		auth:    authz,
		metrics: m,
	}
}

// Register adds the lookup routes to r.  They are held until gate opens.
func (h *Handler) Register(r gin.IRouter, gate *geo.Gate) {
	g := r.Group("/", RequireReady(gate))
	g.GET("/country/ip/:ip", h.CountryByIP)
	g.GET("/country/iso/:code", h.CountryByISO)
	g.GET("/city/:ip", h.CityByIP)
	g.GET("/asn/:ip", h.ASNByIP)
}

// RequireReady holds requests until gate opens.  A request whose client goes
// away first is answered with 503.
func RequireReady(gate *geo.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := gate.Wait(c.Request.Context()); err != nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	}
}

// CountryByIP handles GET /country/ip/:ip
func (h *Handler) CountryByIP(c *gin.Context) {
	h.serve(c, EndpointCountryByIP, func() (geodbv1.Message, error) {
		ip, ok := h.parseIP(c)
		if !ok {
			return nil, errInvalidIP
		}
		if !h.authorized(c) {
			return nil, errUnauthorized
		}
		country, err := h.lookup.CountryByIP(ip)
		if err != nil {
			return nil, err
		}
		return CountryMessage(country), nil
	})
}

// CountryByISO handles GET /country/iso/:code
func (h *Handler) CountryByISO(c *gin.Context) {
	h.serve(c, EndpointCountryByISO, func() (geodbv1.Message, error) {
		code := c.Param("code")
		if len(code) != 2 {
			return nil, errInvalidISO
		}
		if !h.authorized(c) {
			return nil, errUnauthorized
		}
		country, err := h.lookup.CountryByISO(code)
		if err != nil {
			return nil, err
		}
		return CountryMessage(country), nil
	})
}

// CityByIP handles GET /city/:ip
func (h *Handler) CityByIP(c *gin.Context) {
	h.serve(c, EndpointCityByIP, func() (geodbv1.Message, error) {
		ip, ok := h.parseIP(c)
		if !ok {
			return nil, errInvalidIP
		}
		if !h.authorized(c) {
			return nil, errUnauthorized
		}
		city, err := h.lookup.CityByIP(ip)
		if err != nil {
			return nil, err
		}
		return CityMessage(city), nil
	})
}

// ASNByIP handles GET /asn/:ip
func (h *Handler) ASNByIP(c *gin.Context) {
	h.serve(c, EndpointASNByIP, func() (geodbv1.Message, error) {
		ip, ok := h.parseIP(c)
		if !ok {
			return nil, errInvalidIP
		}
		if !h.authorized(c) {
			return nil, errUnauthorized
		}
		asn, err := h.lookup.ASNByIP(ip)
		if err != nil {
			return nil, err
		}
		return ASNMessage(asn), nil
	})
}

var (
	errInvalidIP    = &geo.Error{Kind: geo.KindInvalidQuery, Op: "parse_ip"}
	errInvalidISO   = &geo.Error{Kind: geo.KindInvalidQuery, Op: "parse_iso2"}
	errUnauthorized = &geo.Error{Kind: geo.KindUnauthorized, Op: "authorize"}
)

// serve runs fn, then writes either the encoded message or a bare status.
func (h *Handler) serve(c *gin.Context, endpoint string, fn func() (geodbv1.Message, error)) {
	start := time.Now()

	msg, err := fn()
	var body []byte
	if err == nil {
		body, err = msg.Marshal()
		if err != nil {
			err = &geo.Error{Kind: geo.KindEncodeFailed, Op: endpoint, Err: err}
		}
	}

	if err != nil {
		kind := geo.KindOf(err)
		h.observe(endpoint, kind.String(), start)
		h.logFailure(c, endpoint, kind, err)
		c.AbortWithStatus(StatusFor(kind))
		return
	}

	h.observe(endpoint, metrics.OK, start)
	c.Data(http.StatusOK, geodbv1.ContentType, body)
}

func (h *Handler) parseIP(c *gin.Context) (net.IP, bool) {
	ip := net.ParseIP(c.Param("ip"))
	return ip, ip != nil
}

func (h *Handler) authorized(c *gin.Context) bool {
	cred, ok := auth.Credential(c.Request.Header)
	if ok && h.auth.IsAuthorized(cred) {
		return true
	}
	h.metrics.ObserveUnauthorized()
	return false
}

func (h *Handler) observe(endpoint, result string, start time.Time) {
	h.metrics.ObserveRequest(endpoint, result, time.Since(start))
}

func (h *Handler) logFailure(c *gin.Context, endpoint string, kind geo.Kind, err error) {
	attrs := []any{"endpoint", endpoint, "kind", kind.String(), "error", err}
	switch kind {
	case geo.KindEncodeFailed, geo.KindUnknown:
		h.logger.Error("lookup failed", attrs...)
	case geo.KindNotInitialized, geo.KindLookupFailed:
		h.logger.Warn("lookup failed", attrs...)
	default:
		h.logger.Debug("lookup rejected", append(attrs, "path", c.Request.URL.Path)...)
	}
}

// StatusFor maps an error kind to the HTTP status returned to clients.
func StatusFor(kind geo.Kind) int {
	switch kind {
	case geo.KindInvalidQuery, geo.KindLookupFailed, geo.KindRecordIncomplete, geo.KindNotFound:
		return http.StatusBadRequest
	case geo.KindUnauthorized:
		return http.StatusUnauthorized
	case geo.KindNotInitialized:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
