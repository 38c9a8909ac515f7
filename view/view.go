// Package view renders html/template pages from an fs.FS. Every page is
// parsed together with layout.html and the partials/ directory unless it is
// a full document of its own.
package view

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/diewo77/go-rems/auth"
	"github.com/diewo77/go-rems/i18n"
)

var (
	mu       sync.RWMutex
	source   fs.FS
	tplCache = map[string]*template.Template{}
	assetSum = map[string]string{}

	langResolver = func(r *http.Request) string { return i18n.DetectLanguage(r.Header.Get("Accept-Language")) }
	// host app hooks used by templates to check auth
	canRoleResolver func(*http.Request, string, string) bool
	roleResolver    func(*http.Request) string
)

// SetFS sets the template source. It must contain layout.html at its root.
func SetFS(f fs.FS) {
	mu.Lock()
	source = f
	tplCache = map[string]*template.Template{}
	assetSum = map[string]string{}
	mu.Unlock()
}

// SetLangResolver allows the host app to provide a custom language resolver.
func SetLangResolver(f func(*http.Request) string) {
	if f != nil {
		langResolver = f
	}
}

// SetCanRoleResolver sets the callback behind the "can" template func.
func SetCanRoleResolver(f func(*http.Request, string, string) bool) {
	if f != nil {
		canRoleResolver = f
	}
}

// SetRoleResolver sets the callback behind the "role" template func.
func SetRoleResolver(f func(*http.Request) string) {
	if f != nil {
		roleResolver = f
	}
}

// Funcs returns the template func map bound to r.
func Funcs(r *http.Request) template.FuncMap {
	lang := langResolver(r)
	return template.FuncMap{
		"t":    func(code string) string { return i18n.T(lang, code) },
		"lang": func() string { return lang },
		// can checks a role permission (resource, action)
		"can": func(resource, action string) bool {
			return canRoleResolver != nil && canRoleResolver(r, resource, action)
		},
		"role": func() string {
			if roleResolver == nil {
				return ""
			}
			return roleResolver(r)
		},
		"year":  func() int { return time.Now().Year() },
		"asset": assetURL,
		"price": formatPrice,
		"stars": stars,
		"date":  func(t time.Time) string { return t.Format("2006-01-02 15:04") },
		// dict creates a map from key-value pairs for passing to sub-templates.
		// Usage: {{ template "partial" (dict "Key1" val1 "Key2" val2) }}
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			m := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				m[key] = values[i+1]
			}
			return m
		},
	}
}

// formatPrice renders 1250000 as "1 250 000".
func formatPrice(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func stars(avg float64) string {
	n := int(avg + 0.5)
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

// assetURL returns /static/<name>?v=<hash> for cache busting.
func assetURL(rel string) string {
	if strings.HasPrefix(rel, "http://") || strings.HasPrefix(rel, "https://") || strings.HasPrefix(rel, "//") {
		return rel
	}
	mu.RLock()
	sum, ok := assetSum[rel]
	f := source
	mu.RUnlock()
	if !ok && f != nil {
		b, err := fs.ReadFile(f, path.Join("static", rel))
		if err != nil {
			return "/static/" + rel
		}
		h := sha1.Sum(b)
		sum = fmt.Sprintf("%x", h[:8])
		mu.Lock()
		assetSum[rel] = sum
		mu.Unlock()
	}
	if sum == "" {
		return "/static/" + rel
	}
	return "/static/" + rel + "?v=" + sum
}

func parse(f fs.FS, name string, funcs template.FuncMap) (*template.Template, error) {
	content, err := fs.ReadFile(f, path.Join("templates", name))
	if err != nil {
		return nil, err
	}
	if bytes.Contains(bytes.ToLower(content), []byte("<!doctype")) {
		// Full document provided; skip layout wrapping.
		return template.New(path.Base(name)).Funcs(funcs).Parse(string(content))
	}
	t, err := template.New("layout.html").Funcs(funcs).ParseFS(f, "templates/layout.html")
	if err != nil {
		return nil, err
	}
	if partials, _ := fs.Glob(f, "templates/partials/*.html"); len(partials) > 0 {
		if t, err = t.ParseFS(f, partials...); err != nil {
			return nil, err
		}
	}
	return t.New(name).Parse(string(content))
}

// Render executes the named page (relative to templates/) inside the layout.
// Templates are cached unless DEV=1.
func Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	return RenderStatus(w, r, http.StatusOK, name, data)
}

// RenderStatus is Render with an explicit status code.
func RenderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) error {
	mu.RLock()
	f := source
	mu.RUnlock()
	if f == nil {
		return fmt.Errorf("view: no template source configured")
	}
	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["Year"]; !exists {
		data["Year"] = time.Now().Year()
	}
	if _, exists := data["Flash"]; !exists {
		if code := r.URL.Query().Get("flash"); i18n.Has(code) {
			data["Flash"] = code
		}
	}
	if _, exists := data["IsLoggedIn"]; !exists {
		_, loggedIn := auth.UserIDFromContext(r.Context())
		data["IsLoggedIn"] = loggedIn
	}

	devMode := os.Getenv("DEV") == "1"
	var t *template.Template
	if !devMode {
		mu.RLock()
		t = tplCache[name]
		mu.RUnlock()
	}
	if t == nil {
		parsed, err := parse(f, name, Funcs(r))
		if err != nil {
			return err
		}
		t = parsed
		if !devMode {
			mu.Lock()
			tplCache[name] = t
			mu.Unlock()
		}
	}
	// funcs are request-bound; rebind on a clone so cached trees stay shared.
	t, err := t.Clone()
	if err != nil {
		return err
	}
	t = t.Funcs(Funcs(r))

	var buf bytes.Buffer
	root := "layout.html"
	if t.Lookup(root) == nil {
		root = path.Base(name)
	}
	if err := t.ExecuteTemplate(&buf, root, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}
