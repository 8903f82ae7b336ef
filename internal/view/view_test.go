//go:build unit

package view

import (
	"bytes"
	"go-portfolio-blog/internal/middleware"
	"go-portfolio-blog/web"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNew_ParsesEmbeddedTemplates(t *testing.T) {
	v, err := New(web.TemplateFS)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for _, name := range []string{"blog_list.html", "blog_post.html", "lifestyle.html", "files.html", "error.html"} {
		if _, ok := v.templates[name]; !ok {
			t.Errorf("expected template %s to be parsed", name)
		}
	}
}

func TestRender_ErrorPage(t *testing.T) {
	v, err := New(web.TemplateFS)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	req := httptest.NewRequest("GET", "/blog/missing", nil)
	err = v.Render(&buf, req, "error.html", map[string]interface{}{
		"StatusCode": http.StatusNotFound,
		"StatusText": "Post not found",
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	body := buf.String()
	if !strings.Contains(body, "Post not found") {
		t.Error("expected the status text")
	}
	if !strings.Contains(body, "Sign in") {
		t.Error("expected the sign-in link for anonymous visitors")
	}

	if err := v.Render(&buf, req, "missing.html", nil); err == nil {
		t.Error("expected an error for an unknown template")
	}
}

func TestRender_BasicModeOmitsLiveScript(t *testing.T) {
	v, err := New(web.TemplateFS)
	if err != nil {
		t.Fatal(err)
	}
	page := middleware.SettingsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := v.Render(w, r, "lifestyle.html", map[string]interface{}{"Live": "posts"}); err != nil {
			t.Errorf("Render failed: %v", err)
		}
	}))

	rr := httptest.NewRecorder()
	page.ServeHTTP(rr, httptest.NewRequest("GET", "/lifestyle", nil))
	if !strings.Contains(rr.Body.String(), "/static/live.js") {
		t.Error("expected the live script by default")
	}
	if !strings.Contains(rr.Body.String(), "/static/forms.js") {
		t.Error("expected the form script by default")
	}

	rr = httptest.NewRecorder()
	page.ServeHTTP(rr, httptest.NewRequest("GET", "/lifestyle?basic=true", nil))
	if strings.Contains(rr.Body.String(), "/static/live.js") {
		t.Error("expected no live script in basic mode")
	}
	if strings.Contains(rr.Body.String(), "/static/forms.js") {
		t.Error("expected no form script in basic mode")
	}
}

func TestHumanBytes(t *testing.T) {
	testCases := map[int64]string{
		0:           "0 B",
		1023:        "1023 B",
		1536:        "1.5 KB",
		5 << 20:     "5.0 MB",
		3 << 30 / 2: "1.5 GB",
	}
	for in, want := range testCases {
		if got := humanBytes(in); got != want {
			t.Errorf("humanBytes(%d) = %q; want %q", in, got, want)
		}
	}
}
