// Package csp renders Content-Security-Policy header values. Policies are
// immutable once built, so the presets can be shared across requests and
// report-only handling stays with the middleware that writes the header.
package csp

import "strings"

// Header names, chosen by the middleware based on its report-only flag.
const (
	Header           = "Content-Security-Policy"
	HeaderReportOnly = "Content-Security-Policy-Report-Only"
)

// Directive is one policy directive with its source list.
type Directive struct {
	Name    string
	Sources []string
}

// D is shorthand for building a Directive inline.
func D(name string, sources ...string) Directive {
	return Directive{Name: name, Sources: sources}
}

// Policy holds a rendered header value. The zero Policy renders empty and
// is treated as "no policy" by the middleware.
type Policy struct {
	value string
}

// Build renders the directives in the order given. Directives without a
// name or without sources are dropped.
func Build(directives ...Directive) Policy {
	parts := make([]string, 0, len(directives))
	for _, d := range directives {
		if d.Name == "" || len(d.Sources) == 0 {
			continue
		}
		parts = append(parts, d.Name+" "+strings.Join(d.Sources, " "))
	}
	return Policy{value: strings.Join(parts, "; ")}
}

// String returns the header value.
func (p Policy) String() string {
	return p.value
}

// IsZero reports whether the policy renders empty.
func (p Policy) IsZero() bool {
	return p.value == ""
}

// StrictPolicy locks down the JSON API surface: responses are data, not
// documents, so nothing may load, embed, or frame them.
func StrictPolicy() Policy {
	return Build(
		D("default-src", "'none'"),
		D("connect-src", "'self'"),
		D("frame-ancestors", "'none'"),
		D("base-uri", "'self'"),
		D("form-action", "'self'"),
	)
}

// SwaggerUIPolicy relaxes just enough for the bundled Swagger UI, which
// needs inline scripts and styles plus the jsdelivr CDN it loads assets
// from. Everything else stays closed.
func SwaggerUIPolicy() Policy {
	return Build(
		D("default-src", "'self'"),
		D("script-src", "'self'", "'unsafe-inline'", "https://cdn.jsdelivr.net"),
		D("style-src", "'self'", "'unsafe-inline'", "https://cdn.jsdelivr.net"),
		D("img-src", "'self'", "data:", "https:"),
		D("font-src", "'self'", "data:"),
		D("connect-src", "'self'", "blob:"),
		D("frame-ancestors", "'none'"),
		D("base-uri", "'self'"),
		D("form-action", "'self'"),
		D("object-src", "'none'"),
	)
}
