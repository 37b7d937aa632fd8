//
//  internal/requestinfo/requestinfo.go
//
//  Lightweight types and helpers that collect per-request metadata
//  (user-agent fingerprint, IP + geolocation, URL, and timestamp).  The
//  audit-log handlers read the client IP from here, so every recorded
//  admin action carries the address it came from.  These structs are
//  inert; they contain no pointers to database handles or large buffers,
//  so they are safe to log or JSON-encode.
//
//  Dependencies
//  • github.com/avct/uasurfer          (UA parsing)
//  • github.com/oschwald/geoip2-golang (optional MaxMind lookup)
//

package requestinfo

import (
	"context"
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"

	"github.com/viamail/mailadmin/internal/cache"
)

//
//  -----------------------------
//  Struct definitions
//  -----------------------------
//

// UA holds the parsed user-agent properties.
type UA struct {
	Raw       string // Entire User-Agent header
	Browser   string // "Chrome", "Firefox", "Safari", etc.
	Version   string // "124.0.6367"
	OS        string // "MacOSX", "Windows", "Android", etc.
	OSVersion string // "14.5", "11", "10.0"
	Device    string // "Desktop", "Mobile", "Tablet", or "Other"
	IsBot     bool   // True when the UA matches a crawler signature
}

// Geo holds IP-based geolocation hints.  Best-effort: empty when no
// MaxMind database is configured or the address has no match.
type Geo struct {
	IP         net.IP
	CountryISO string // "US", "CA", "FR", ...
	City       string // "Chicago", "Paris", ...
}

// RequestInfo is stored in the request context by Enrich.
type RequestInfo struct {
	UA        UA
	Geo       Geo
	URL       *url.URL // pointer copy, safe to dereference read-only
	Timestamp time.Time
}

//
//  -----------------------------
//  Package-level state
//  -----------------------------
//

var (
	geoMu     sync.RWMutex
	geoReader *geoip2.Reader

	// geoCache memoises per-IP lookups; a City read costs ~50 µs, so a
	// small LRU pays for itself on chatty admin frontends.
	geoCache = cache.New(4096)
)

// InitGeo opens the GeoLite2 database at startup.  Calling it is
// optional; without it lookupGeo returns the bare IP.
func InitGeo(dbPath string) error {
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return err
	}
	geoMu.Lock()
	geoReader = r
	geoMu.Unlock()
	return nil
}

//
//  -----------------------------
//  Public helper: FromContext
//  -----------------------------
//

type ctxKey struct{} // unexported, collision-proof

// FromContext returns the pointer previously stored by Enrich, or nil if
// the middleware has not run.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}

// ClientIP returns the enriched client address, or the empty string when
// Enrich has not run.  Convenience for audit-log handlers.
func ClientIP(ctx context.Context) string {
	if info := FromContext(ctx); info != nil && info.Geo.IP != nil {
		return info.Geo.IP.String()
	}
	return ""
}

//
//  -----------------------------
//  Internal helpers
//  -----------------------------
//

// parseUA converts a raw header into our UA struct using uasurfer.
func parseUA(raw string) UA {
	u := uasurfer.Parse(raw)

	info := UA{
		Raw:       raw,
		Browser:   strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		Version:   versionString(u.Browser.Version),
		OS:        strings.TrimPrefix(u.OS.Name.String(), "OS"),
		OSVersion: versionString(u.OS.Version),
		IsBot:     u.IsBot(),
	}

	switch u.DeviceType {
	case uasurfer.DeviceComputer:
		info.Device = "Desktop"
	case uasurfer.DeviceTablet:
		info.Device = "Tablet"
	case uasurfer.DevicePhone, uasurfer.DeviceWearable:
		info.Device = "Mobile"
	default:
		info.Device = "Other"
	}
	return info
}

// versionString renders a version in dotted form while trimming trailing
// zeros, e.g. 17.0.0 → "17", 17.3.0 → "17.3", 17.3.1 → "17.3.1".
func versionString(v uasurfer.Version) string {
	if v.Major == 0 && v.Minor == 0 && v.Patch == 0 {
		return ""
	}
	s := strconv.Itoa(v.Major)
	if v.Minor != 0 || v.Patch != 0 {
		s += "." + strconv.Itoa(v.Minor)
	}
	if v.Patch != 0 {
		s += "." + strconv.Itoa(v.Patch)
	}
	return s
}

// lookupGeo resolves best-effort geolocation for ip, consulting the LRU
// before the MaxMind reader.
func lookupGeo(ip net.IP) Geo {
	g := Geo{IP: ip}
	if ip == nil {
		return g
	}

	geoMu.RLock()
	r := geoReader
	geoMu.RUnlock()
	if r == nil {
		return g
	}

	if hit, ok := geoCache.Get(ip.String()); ok {
		return hit.(Geo)
	}

	rec, err := r.City(ip)
	if err == nil && rec != nil {
		g.CountryISO = rec.Country.IsoCode
		g.City = rec.City.Names["en"]
	}
	geoCache.Add(ip.String(), g)
	return g
}
