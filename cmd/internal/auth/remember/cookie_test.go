package remember

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseCookieValue(t *testing.T) {
	t.Parallel()

	lookup := strings.Repeat("a", 40)
	secret := strings.Repeat("B", 40)

	cases := []struct {
		name string
		in   string
		ok   bool
	}{
		{name: "valid", in: lookup + " " + secret, ok: true},
		{name: "surrounding whitespace", in: "  " + lookup + " " + secret + " ", ok: true},
		{name: "empty", in: "", ok: false},
		{name: "one part", in: lookup, ok: false},
		{name: "three parts", in: lookup + " " + secret + " " + secret, ok: false},
		{name: "double space", in: lookup + "  " + secret, ok: false},
		{name: "bad alphabet", in: lookup + " " + strings.Repeat("*", 40), ok: false},
		{name: "too short", in: "abc def", ok: false},
	}
	for _, tc := range cases {
		gotLookup, gotSecret, ok := ParseCookieValue(tc.in)
		if ok != tc.ok {
			t.Fatalf("%s: ok=%v want %v", tc.name, ok, tc.ok)
		}
		if ok && (gotLookup != lookup || gotSecret != secret) {
			t.Fatalf("%s: got (%q,%q)", tc.name, gotLookup, gotSecret)
		}
	}
}

func TestCookieValue_SurvivesHTTPRoundTrip(t *testing.T) {
	t.Parallel()

	issued := Issued{LookupID: strings.Repeat("L", 40), Secret: strings.Repeat("s", 40)}

	rr := httptest.NewRecorder()
	http.SetCookie(rr, &http.Cookie{Name: "x-remember-me", Value: issued.CookieValue()})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
	c, err := req.Cookie("x-remember-me")
	if err != nil {
		t.Fatalf("cookie missing: %v", err)
	}

	lookup, secret, ok := ParseCookieValue(c.Value)
	if !ok || lookup != issued.LookupID || secret != issued.Secret {
		t.Fatalf("round trip failed: %q -> (%q,%q,%v)", c.Value, lookup, secret, ok)
	}
}
