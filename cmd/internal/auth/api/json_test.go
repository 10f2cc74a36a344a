package authapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		body       string
		wantStatus int // 0 means decode succeeds
	}{
		{name: "ok", body: `{"username":"a","password":"b"}`},
		{name: "empty", body: ``, wantStatus: http.StatusBadRequest},
		{name: "unknown field", body: `{"username":"a","admin":true}`, wantStatus: http.StatusBadRequest},
		{name: "trailing", body: `{"username":"a"}{"username":"b"}`, wantStatus: http.StatusBadRequest},
		{name: "too large", body: `{"username":"` + strings.Repeat("x", 128) + `"}`, wantStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tc.body))

			var dst loginRequest
			err := decodeJSON(rr, req, 64, &dst)
			if tc.wantStatus == 0 {
				if err != nil {
					t.Fatalf("decodeJSON: %v", err)
				}
				if dst.Username != "a" || dst.Password != "b" {
					t.Fatalf("decoded %+v", dst)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error")
			}
			writeDecodeError(rr, err)
			if rr.Code != tc.wantStatus {
				t.Fatalf("status=%d want %d", rr.Code, tc.wantStatus)
			}
		})
	}
}
