package attribution

import (
	"net/http"
	"net/url"
	"time"

	"contact-relay/pkg/models"
)

// CookieFunc looks up a cookie value by name.
type CookieFunc func(name string) (string, bool)

// Lookup resolves each UTM parameter from the query string first, then from the
// cookie of the same name. Parameters found in neither are left empty.
func Lookup(query url.Values, cookie CookieFunc) models.Attribution {
	get := func(name string) string {
		if v := query.Get(name); v != "" {
			return v
		}
		if cookie != nil {
			if v, ok := cookie(name); ok {
				return v
			}
		}
		return ""
	}

	return models.Attribution{
		Source:   get(models.FieldUTMSource),
		Medium:   get(models.FieldUTMMedium),
		Campaign: get(models.FieldUTMCampaign),
	}
}

// FromRequest captures the attribution of the page request r.
func FromRequest(r *http.Request) models.Attribution {
	return Lookup(r.URL.Query(), RequestCookies(r))
}

// RequestCookies adapts the cookies of r to a CookieFunc.
func RequestCookies(r *http.Request) CookieFunc {
	return func(name string) (string, bool) {
		c, err := r.Cookie(name)
		if err != nil {
			return "", false
		}
		v, err := url.QueryUnescape(c.Value)
		if err != nil {
			return c.Value, true
		}
		return v, true
	}
}

// Remember stores the parameters present in query as cookies so later visits
// without them are still attributed.
func Remember(w http.ResponseWriter, query url.Values, maxAge time.Duration) {
	for _, name := range []string{models.FieldUTMSource, models.FieldUTMMedium, models.FieldUTMCampaign} {
		v := query.Get(name)
		if v == "" {
			continue
		}
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    url.QueryEscape(v),
			Path:     "/",
			MaxAge:   int(maxAge.Seconds()),
			SameSite: http.SameSiteLaxMode,
		})
	}
}
