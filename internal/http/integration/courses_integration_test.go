package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/coursehub/internal/config"
	"github.com/geocoder89/coursehub/internal/db"
	apphttp "github.com/geocoder89/coursehub/internal/http"
	"github.com/geocoder89/coursehub/internal/repo/memory"
	"github.com/geocoder89/coursehub/internal/repo/sqlite"
	"github.com/gin-gonic/gin"
)

func testConfig() config.Config {
	return config.Config{
		Env:             "test",
		StoreDriver:     config.StoreMemory,
		DBTimeout:       2 * time.Second,
		MaxBodyBytes:    1 << 20,
		RateLimit:       0,
		OTELServiceName: "coursehub-test",
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// backends returns one router per store implementation.
func backends(t *testing.T) map[string]*gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := discardLogger()
	cfg := testConfig()

	store := memory.NewStore()
	memRouter := apphttp.NewRouter(log, cfg, apphttp.Deps{
		Users:   store.Users(),
		Courses: store.Courses(),
	})

	ctx := context.Background()
	handle, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "coursehub.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = handle.Close() })

	if err := db.MigrateSQLite(ctx, log, handle); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	sqliteRouter := apphttp.NewRouter(log, cfg, apphttp.Deps{
		Users:   sqlite.NewUsersRepo(handle, nil),
		Courses: sqlite.NewCoursesRepo(handle, nil),
		Ping:    handle.PingContext,
	})

	return map[string]*gin.Engine{
		"memory": memRouter,
		"sqlite": sqliteRouter,
	}
}

type client struct {
	t      *testing.T
	router *gin.Engine
}

type creds struct {
	email, password string
}

func (c client) do(method, path string, auth *creds, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != nil {
		req.SetBasicAuth(auth.email, auth.password)
	}

	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, want, w.Body.String())
	}
}

func expectErrors(t *testing.T, w *httptest.ResponseRecorder, want ...string) {
	t.Helper()

	var resp struct {
		Errors []string `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad validation body: %v body=%s", err, w.Body.String())
	}

	for _, msg := range want {
		found := false
		for _, got := range resp.Errors {
			if got == msg {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("missing error %q in %q", msg, resp.Errors)
		}
	}
}

func TestCourseLifecycle(t *testing.T) {
	for name, router := range backends(t) {
		t.Run(name, func(t *testing.T) {
			c := client{t: t, router: router}
			a := &creds{"a@x.com", "p1"}
			b := &creds{"b@x.com", "p2"}

			// register two users
			w := c.do(http.MethodPost, "/api/users", nil, map[string]string{
				"firstName": "Ann", "lastName": "A", "emailAddress": a.email, "password": a.password,
			})
			expectStatus(t, w, http.StatusCreated)
			if w.Header().Get("Location") != "/" || w.Body.Len() != 0 {
				t.Fatalf("unexpected create user response: location=%q body=%s", w.Header().Get("Location"), w.Body.String())
			}

			w = c.do(http.MethodPost, "/api/users", nil, map[string]string{
				"firstName": "Ben", "lastName": "B", "emailAddress": b.email, "password": b.password,
			})
			expectStatus(t, w, http.StatusCreated)

			// duplicate email
			w = c.do(http.MethodPost, "/api/users", nil, map[string]string{
				"firstName": "Ann", "lastName": "Again", "emailAddress": a.email, "password": "x",
			})
			expectStatus(t, w, http.StatusBadRequest)
			expectErrors(t, w, "The email address you entered already exists")

			// self lookup
			w = c.do(http.MethodGet, "/api/users", a, nil)
			expectStatus(t, w, http.StatusOK)
			var profile map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &profile); err != nil {
				t.Fatalf("bad profile json: %v", err)
			}
			if profile["First name"] != "Ann" || profile["Last name"] != "A" || profile["Username"] != a.email {
				t.Fatalf("unexpected profile: %v", profile)
			}

			// wrong password
			w = c.do(http.MethodGet, "/api/users", &creds{a.email, "nope"}, nil)
			expectStatus(t, w, http.StatusUnauthorized)

			// A creates a course
			w = c.do(http.MethodPost, "/api/courses", a, map[string]string{"title": "T", "description": "D"})
			expectStatus(t, w, http.StatusCreated)
			location := w.Header().Get("Location")
			if !strings.HasPrefix(location, "/api/courses/") {
				t.Fatalf("unexpected Location %q", location)
			}

			// anyone can read it, with the owner nested
			w = c.do(http.MethodGet, location, nil, nil)
			expectStatus(t, w, http.StatusOK)
			var got map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatalf("bad course json: %v", err)
			}
			owner, _ := got["User"].(map[string]interface{})
			if got["title"] != "T" || owner["emailAddress"] != a.email {
				t.Fatalf("unexpected course: %s", w.Body.String())
			}

			// B may not change or delete it, even with an invalid body
			w = c.do(http.MethodPut, location, b, map[string]string{"title": "X"})
			expectStatus(t, w, http.StatusForbidden)
			if w.Body.Len() != 0 {
				t.Fatalf("403 must be empty, got %s", w.Body.String())
			}
			w = c.do(http.MethodPut, location, b, map[string]string{"title": ""})
			expectStatus(t, w, http.StatusForbidden)
			w = c.do(http.MethodDelete, location, b, nil)
			expectStatus(t, w, http.StatusForbidden)

			// A's invalid update is rejected, a valid one applies
			w = c.do(http.MethodPut, location, a, map[string]string{"title": ""})
			expectStatus(t, w, http.StatusBadRequest)
			expectErrors(t, w, `"title" is required`)

			w = c.do(http.MethodPut, location, a, map[string]interface{}{"title": "T2", "userId": 999})
			expectStatus(t, w, http.StatusNoContent)

			w = c.do(http.MethodGet, location, nil, nil)
			expectStatus(t, w, http.StatusOK)
			got = map[string]interface{}{}
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatalf("bad course json: %v", err)
			}
			owner, _ = got["User"].(map[string]interface{})
			if got["title"] != "T2" || got["description"] != "D" || owner["emailAddress"] != a.email {
				t.Fatalf("update not applied as a partial patch: %s", w.Body.String())
			}

			// A deletes it, then it is gone for everyone
			w = c.do(http.MethodDelete, location, a, nil)
			expectStatus(t, w, http.StatusNoContent)

			w = c.do(http.MethodGet, location, nil, nil)
			expectStatus(t, w, http.StatusNotFound)
			w = c.do(http.MethodPut, location, b, map[string]string{"title": ""})
			expectStatus(t, w, http.StatusNotFound)
			w = c.do(http.MethodDelete, location, a, nil)
			expectStatus(t, w, http.StatusNotFound)

			w = c.do(http.MethodGet, "/api/courses", nil, nil)
			expectStatus(t, w, http.StatusOK)
			if strings.TrimSpace(w.Body.String()) != "[]" {
				t.Fatalf("expected empty list, got %s", w.Body.String())
			}
		})
	}
}

func TestAuthRequiredRoutes(t *testing.T) {
	for name, router := range backends(t) {
		t.Run(name, func(t *testing.T) {
			c := client{t: t, router: router}

			routes := []struct {
				method, path string
			}{
				{http.MethodGet, "/api/users"},
				{http.MethodPost, "/api/courses"},
				{http.MethodPut, "/api/courses/1"},
				{http.MethodDelete, "/api/courses/1"},
			}

			for _, rt := range routes {
				w := c.do(rt.method, rt.path, nil, nil)
				expectStatus(t, w, http.StatusUnauthorized)

				var resp struct {
					Error struct {
						Message string `json:"message"`
					} `json:"error"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Error.Message != "Access Denied" {
					t.Fatalf("%s %s: unexpected 401 body %s", rt.method, rt.path, w.Body.String())
				}
			}
		})
	}
}

func TestNoPasswordInResponses(t *testing.T) {
	for name, router := range backends(t) {
		t.Run(name, func(t *testing.T) {
			c := client{t: t, router: router}
			a := &creds{"a@x.com", "super-secret"}

			w := c.do(http.MethodPost, "/api/users", nil, map[string]string{
				"firstName": "Ann", "lastName": "A", "emailAddress": a.email, "password": a.password,
			})
			expectStatus(t, w, http.StatusCreated)

			w = c.do(http.MethodPost, "/api/courses", a, map[string]string{"title": "T", "description": "D"})
			expectStatus(t, w, http.StatusCreated)

			for _, path := range []string{"/api/users", "/api/courses", w.Header().Get("Location")} {
				w := c.do(http.MethodGet, path, a, nil)
				expectStatus(t, w, http.StatusOK)

				body := strings.ToLower(w.Body.String())
				if strings.Contains(body, "password") || strings.Contains(body, "super-secret") || strings.Contains(body, "$2a$") {
					t.Fatalf("%s leaked credentials: %s", path, w.Body.String())
				}
			}
		})
	}
}

func TestShellRoutes(t *testing.T) {
	c := client{t: t, router: backends(t)["memory"]}

	w := c.do(http.MethodGet, "/", nil, nil)
	expectStatus(t, w, http.StatusOK)

	w = c.do(http.MethodGet, "/does-not-exist", nil, nil)
	expectStatus(t, w, http.StatusNotFound)
	if !strings.Contains(w.Body.String(), "Route Not Found") {
		t.Fatalf("unexpected 404 body %s", w.Body.String())
	}

	w = c.do(http.MethodGet, "/api/courses/abc", nil, nil)
	expectStatus(t, w, http.StatusNotFound)

	w = c.do(http.MethodGet, "/readyz", nil, nil)
	expectStatus(t, w, http.StatusOK)
}

func TestUpdateNullSemantics(t *testing.T) {
	for name, router := range backends(t) {
		t.Run(name, func(t *testing.T) {
			c := client{t: t, router: router}
			a := &creds{"a@x.com", "p1"}

			w := c.do(http.MethodPost, "/api/users", nil, map[string]string{
				"firstName": "Ann", "lastName": "A", "emailAddress": a.email, "password": a.password,
			})
			expectStatus(t, w, http.StatusCreated)

			w = c.do(http.MethodPost, "/api/courses", a, map[string]string{
				"title": "T", "description": "D", "estimatedTime": "2h", "materialsNeeded": "pen",
			})
			expectStatus(t, w, http.StatusCreated)
			location := w.Header().Get("Location")

			fetch := func() map[string]interface{} {
				t.Helper()
				w := c.do(http.MethodGet, location, nil, nil)
				expectStatus(t, w, http.StatusOK)

				var got map[string]interface{}
				if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
					t.Fatalf("bad course json: %v", err)
				}
				return got
			}

			// an explicit null clears an optional field, absent keys stay
			w = c.do(http.MethodPut, location, a, map[string]interface{}{"estimatedTime": nil})
			expectStatus(t, w, http.StatusNoContent)

			got := fetch()
			if v, ok := got["estimatedTime"]; !ok || v != nil {
				t.Fatalf("estimatedTime should be cleared, got %s", c.do(http.MethodGet, location, nil, nil).Body.String())
			}
			if got["materialsNeeded"] != "pen" || got["title"] != "T" {
				t.Fatalf("untouched fields changed: %v", got)
			}

			// a null required field is a validation failure and changes nothing
			w = c.do(http.MethodPut, location, a, map[string]interface{}{"title": nil, "materialsNeeded": nil})
			expectStatus(t, w, http.StatusBadRequest)
			expectErrors(t, w, `"title" is required`)

			w = c.do(http.MethodPut, location, a, map[string]interface{}{"description": nil})
			expectStatus(t, w, http.StatusBadRequest)
			expectErrors(t, w, `"description" is required`)

			got = fetch()
			if got["title"] != "T" || got["description"] != "D" || got["materialsNeeded"] != "pen" {
				t.Fatalf("rejected update must not write: %v", got)
			}
		})
	}
}
