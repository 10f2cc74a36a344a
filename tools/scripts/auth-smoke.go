// Package main provides a CI-friendly smoke test for the station auth flow.
//
// It validates:
//   - register starts a session
//   - login with remember_me sets the remember cookie
//   - a fresh client holding only the remember cookie gets a session back
//   - logout revokes the remember token
//
// Against a plain-http server, run the server with
// STATION_SESSION_COOKIE_SECURE=false and STATION_AUTH_COOKIE_SECURE=false;
// otherwise the client never sends the cookies back.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultRememberCookie = "x-remember-me"

type smokeClient struct {
	name string
	base *url.URL
	http *http.Client
}

func main() {
	var (
		baseURL  = flag.String("url", "http://127.0.0.1:8080", "Server base URL")
		cookie   = flag.String("remember-cookie", defaultRememberCookie, "Remember cookie name")
		password = flag.String("password", "smoke-Test-pass-42", "Password for the throwaway account")
		timeout  = flag.Duration("timeout", 7*time.Second, "Per-step timeout")
		verbose  = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	base, err := validateBaseURL(*baseURL)
	if err != nil {
		fatalf("invalid -url: %v", err)
	}

	root := context.Background()
	username := "smoke_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]

	a := newClient("A", base, *timeout)
	a.mustStatus(root, http.MethodPost, "/auth/new", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": *password,
	}, http.StatusOK)
	a.mustStatus(root, http.MethodGet, "/auth/hello", nil, http.StatusOK)
	a.mustStatus(root, http.MethodDelete, "/auth/logout", nil, http.StatusOK)
	a.mustStatus(root, http.MethodGet, "/auth/hello", nil, http.StatusUnauthorized)

	a.mustStatus(root, http.MethodPost, "/auth/login", map[string]any{
		"username":    username,
		"password":    *password,
		"remember_me": true,
	}, http.StatusOK)
	remember := a.mustCookie(*cookie)
	if *verbose {
		fmt.Printf("registered %s, remember cookie issued\n", username)
	}

	b := newClient("B", base, *timeout)
	b.setCookie(remember)
	b.mustStatus(root, http.MethodGet, "/auth/hello", nil, http.StatusOK)
	if *verbose {
		fmt.Println("B resumed a session from the remember cookie")
	}

	b.mustStatus(root, http.MethodDelete, "/auth/logout", nil, http.StatusOK)

	c := newClient("C", base, *timeout)
	c.setCookie(b.currentCookie(*cookie, remember))
	c.mustStatus(root, http.MethodGet, "/auth/hello", nil, http.StatusUnauthorized)

	fmt.Printf("OK: user=%s\n", username)
}

func validateBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return nil, errors.New("missing host")
	}
	return u, nil
}

func newClient(name string, base *url.URL, timeout time.Duration) *smokeClient {
	jar, err := cookiejar.New(nil)
	if err != nil {
		fatalf("%s: cookie jar: %v", name, err)
	}
	return &smokeClient{
		name: name,
		base: base,
		http: &http.Client{Jar: jar, Timeout: timeout},
	}
}

func (c *smokeClient) mustStatus(ctx context.Context, method, path string, body any, want int) {
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			fatalf("%s %s %s: encode: %v", c.name, method, path, err)
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), rdr)
	if err != nil {
		fatalf("%s %s %s: %v", c.name, method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		fatalf("%s %s %s: %v", c.name, method, path, err)
	}
	defer func() { _ = res.Body.Close() }()
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))

	if res.StatusCode != want {
		fatalf("%s %s %s: status=%d want=%d body=%q", c.name, method, path, res.StatusCode, want, msg)
	}
}

func (c *smokeClient) mustCookie(name string) *http.Cookie {
	for _, ck := range c.http.Jar.Cookies(c.base) {
		if ck.Name == name {
			return ck
		}
	}
	fatalf("%s: cookie %q not set", c.name, name)
	return nil
}

// currentCookie returns the jar's cookie or fallback when the server
// already expired it.
func (c *smokeClient) currentCookie(name string, fallback *http.Cookie) *http.Cookie {
	for _, ck := range c.http.Jar.Cookies(c.base) {
		if ck.Name == name {
			return ck
		}
	}
	return fallback
}

func (c *smokeClient) setCookie(ck *http.Cookie) {
	c.http.Jar.SetCookies(c.base, []*http.Cookie{{Name: ck.Name, Value: ck.Value}})
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FAIL: "+format+"\n", args...)
	os.Exit(1)
}
