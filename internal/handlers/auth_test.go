package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"anonymous_messages/internal/service"
)

func registerValues(username, email, password string) url.Values {
	return url.Values{"username": {username}, "email": {email}, "password": {password}}
}

func TestRegister_Success(t *testing.T) {
	s, auth, _, _ := newTestService()
	auth.signUpID = 42
	r := newTestRouter(s)

	w := doRequest(r, http.MethodPost, "/register", registerValues("bob", "bob@example.com", "pw"))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected redirect to /login, got %q", loc)
	}
	if f := flashesSet(w); len(f) != 1 || f[0] != flashRegistered {
		t.Fatalf("unexpected flashes %v", f)
	}
	want := service.SignUpInput{Username: "bob", Email: "bob@example.com", Password: "pw"}
	if auth.lastSignUp != want {
		t.Fatalf("unexpected sign-up input %+v", auth.lastSignUp)
	}
}

func TestRegister_AcceptsJSON(t *testing.T) {
	s, auth, _, _ := newTestService()
	r := newTestRouter(s)

	body := bytes.NewBufferString(`{"username":"bob","email":"bob@example.com","password":"pw"}`)
	req := httptest.NewRequest(http.MethodPost, "/register", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusSeeOther || auth.lastSignUp.Email != "bob@example.com" {
		t.Fatalf("status=%d input=%+v", w.Code, auth.lastSignUp)
	}
}

func TestRegister_Errors(t *testing.T) {
	cases := []struct {
		name     string
		form     url.Values
		err      error
		wantCode int
		wantMsg  string
	}{
		{name: "missing email", form: url.Values{"username": {"bob"}, "password": {"pw"}}, wantCode: http.StatusBadRequest, wantMsg: errRegisterFields},
		{name: "username taken", form: registerValues("bob", "b@x.com", "pw"), err: service.ErrUsernameTaken, wantCode: http.StatusConflict, wantMsg: errUsernameTaken},
		{name: "email taken", form: registerValues("bob", "b@x.com", "pw"), err: service.ErrEmailTaken, wantCode: http.StatusConflict, wantMsg: errEmailTaken},
		{name: "storage failure", form: registerValues("bob", "b@x.com", "pw"), err: errors.New("disk full"), wantCode: http.StatusInternalServerError, wantMsg: errInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, auth, _, _ := newTestService()
			auth.signUpErr = tc.err
			r := newTestRouter(s)

			w := doRequest(r, http.MethodPost, "/register", tc.form)
			if w.Code != tc.wantCode {
				t.Fatalf("status=%d, want %d, body=%s", w.Code, tc.wantCode, w.Body.String())
			}
			body := decodeBody(t, w.Body.Bytes())
			if body["error"] != tc.wantMsg {
				t.Fatalf("error=%v, want %q", body["error"], tc.wantMsg)
			}
			if tc.wantCode != http.StatusInternalServerError && body["view"] != viewRegister {
				t.Fatalf("expected register view to be re-rendered, got %v", body["view"])
			}
		})
	}
}

func TestLogin_Success(t *testing.T) {
	cases := []struct {
		name   string
		target string
		next   string
		want   string
	}{
		{name: "default", target: "/login", want: "/dashboard"},
		{name: "next in form", target: "/login", next: "/message/3", want: "/message/3"},
		{name: "next in query", target: "/login?next=" + url.QueryEscape("/dashboard?status=unread"), want: "/dashboard?status=unread"},
		{name: "offsite next ignored", target: "/login", next: "//evil.example/x", want: "/dashboard"},
		{name: "absolute next ignored", target: "/login", next: "https://evil.example/", want: "/dashboard"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, auth, _, _ := newTestService()
			r := newTestRouter(s)

			form := url.Values{"username": {"alice"}, "password": {"pw"}}
			if tc.next != "" {
				form.Set("next", tc.next)
			}
			w := doRequest(r, http.MethodPost, tc.target, form)
			if w.Code != http.StatusSeeOther {
				t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
			}
			if loc := w.Header().Get("Location"); loc != tc.want {
				t.Fatalf("Location=%q, want %q", loc, tc.want)
			}
			ck := responseCookie(w, sessionCookie)
			if ck == nil || ck.Value != validSession || !ck.HttpOnly || ck.SameSite != http.SameSiteLaxMode {
				t.Fatalf("unexpected session cookie %+v", ck)
			}
			if len(auth.issuedFor) != 1 || auth.issuedFor[0] != 7 {
				t.Fatalf("expected one session for user 7, got %v", auth.issuedFor)
			}
		})
	}
}

func TestLogin_SameMessageForEveryFailure(t *testing.T) {
	causes := []error{service.ErrUserNotFound, service.ErrInvalidPassword}
	for _, cause := range causes {
		t.Run(cause.Error(), func(t *testing.T) {
			s, auth, _, _ := newTestService()
			auth.signInErr = fmt.Errorf("%w: %w", service.ErrInvalidCredentials, cause)
			r := newTestRouter(s)

			w := doRequest(r, http.MethodPost, "/login", url.Values{"username": {"x"}, "password": {"y"}})
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
			body := decodeBody(t, w.Body.Bytes())
			if body["error"] != errInvalidCredentials || body["view"] != viewLogin {
				t.Fatalf("unexpected body %v", body)
			}
			if responseCookie(w, sessionCookie) != nil {
				t.Fatalf("failed login must not set a session")
			}
		})
	}
}

func TestLogin_MissingFields(t *testing.T) {
	s, _, _, _ := newTestService()
	r := newTestRouter(s)

	w := doRequest(r, http.MethodPost, "/login", url.Values{"username": {"alice"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if got := decodeBody(t, w.Body.Bytes())["error"]; got != errLoginFields {
		t.Fatalf("unexpected error %v", got)
	}
}

func TestLogout_ClearsSession(t *testing.T) {
	s, _, _, _ := newTestService()
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/logout", nil, sessionCookieFor(validSession))
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Fatalf("status=%d location=%q", w.Code, w.Header().Get("Location"))
	}
	if ck := responseCookie(w, sessionCookie); ck == nil || ck.Value != "" || ck.MaxAge >= 0 {
		t.Fatalf("expected cleared session cookie, got %+v", ck)
	}
}

func TestLoginForm_EchoesSafeNext(t *testing.T) {
	s, _, _, _ := newTestService()
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/login?next=%2Fdashboard", nil)
	if got := decodeBody(t, w.Body.Bytes())["next"]; got != "/dashboard" {
		t.Fatalf("expected next=/dashboard, got %v", got)
	}
	w = doRequest(r, http.MethodGet, "/login?next=https%3A%2F%2Fevil.example", nil)
	if _, ok := decodeBody(t, w.Body.Bytes())["next"]; ok {
		t.Fatalf("offsite next must not be echoed")
	}
}
