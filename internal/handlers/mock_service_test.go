package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"anonymous_messages/internal/models"
	"anonymous_messages/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

const validSession = "valid-session"

// mockAuth accepts exactly validSession and resolves it to user.
type mockAuth struct {
	user       *models.User
	currentErr error

	signUpID  int
	signUpErr error
	signInErr error
	issueErr  error

	lastSignUp   service.SignUpInput
	lastUsername string
	lastPassword string
	issuedFor    []int
}

func (m *mockAuth) SignUp(_ context.Context, in service.SignUpInput) (int, error) {
	m.lastSignUp = in
	return m.signUpID, m.signUpErr
}

func (m *mockAuth) SignIn(_ context.Context, username, password string) (*models.User, error) {
	m.lastUsername = username
	m.lastPassword = password
	if m.signInErr != nil {
		return nil, m.signInErr
	}
	return m.user, nil
}

func (m *mockAuth) IssueSession(userID int) (string, error) {
	m.issuedFor = append(m.issuedFor, userID)
	if m.issueErr != nil {
		return "", m.issueErr
	}
	return validSession, nil
}

func (m *mockAuth) ParseSession(token string) (int, error) {
	if token != validSession || m.user == nil {
		return 0, service.ErrInvalidSession
	}
	return m.user.ID, nil
}

func (m *mockAuth) CurrentUser(_ context.Context, userID int) (*models.User, error) {
	if m.currentErr != nil {
		return nil, m.currentErr
	}
	if m.user == nil || m.user.ID != userID {
		return nil, service.ErrUserNotFound
	}
	return m.user, nil
}

type mockLinks struct {
	owners        map[string]*models.User
	resolveErr    error
	regenerateErr error
	regenerated   []int
}

func (m *mockLinks) Resolve(_ context.Context, token string) (*models.User, error) {
	if m.resolveErr != nil {
		return nil, m.resolveErr
	}
	if u, ok := m.owners[token]; ok {
		return u, nil
	}
	return nil, service.ErrLinkNotFound
}

func (m *mockLinks) Regenerate(_ context.Context, userID int) (string, error) {
	m.regenerated = append(m.regenerated, userID)
	if m.regenerateErr != nil {
		return "", m.regenerateErr
	}
	return "fresh-token", nil
}

type sentMessage struct {
	ownerID int
	content string
}

type mockInbox struct {
	sendErr    error
	sent       []sentMessage
	dashboard  service.Dashboard
	dashErr    error
	lastFilter service.InboxFilter
	messages   map[int]*models.Message
	viewErr    error
	counts     service.InboxCounts
	countsErr  error
}

func (m *mockInbox) Send(_ context.Context, ownerID int, content string) (*models.Message, error) {
	if content == "" {
		return nil, service.ErrEmptyMessage
	}
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	m.sent = append(m.sent, sentMessage{ownerID: ownerID, content: content})
	return &models.Message{ID: len(m.sent), UserID: ownerID, Content: content}, nil
}

func (m *mockInbox) Dashboard(_ context.Context, _ int, f service.InboxFilter) (service.Dashboard, error) {
	m.lastFilter = f
	return m.dashboard, m.dashErr
}

func (m *mockInbox) View(_ context.Context, userID, messageID int) (*models.Message, error) {
	if m.viewErr != nil {
		return nil, m.viewErr
	}
	msg, ok := m.messages[messageID]
	if !ok {
		return nil, service.ErrMessageNotFound
	}
	if msg.UserID != userID {
		return nil, service.ErrForbidden
	}
	msg.Read = true
	return msg, nil
}

func (m *mockInbox) Counts(context.Context, int) (service.InboxCounts, error) {
	return m.counts, m.countsErr
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	return newTestRouterWithOptions(s, Options{})
}

func newTestRouterWithOptions(s *service.Service, opts Options) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, opts)
	return h.InitRoutes()
}

// newTestService returns a Service whose mocks know one signed-in user, alice.
func newTestService() (*service.Service, *mockAuth, *mockLinks, *mockInbox) {
	alice := &models.User{ID: 7, Username: "alice", Email: "alice@example.com", LinkToken: "alice-token"}
	auth := &mockAuth{user: alice}
	links := &mockLinks{owners: map[string]*models.User{alice.LinkToken: alice}}
	inbox := &mockInbox{messages: map[int]*models.Message{}}
	return &service.Service{Authorization: auth, Links: links, Inbox: inbox}, auth, links, inbox
}

func doRequest(r http.Handler, method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookieFor(token string) *http.Cookie {
	return &http.Cookie{Name: sessionCookie, Value: token}
}

func flashCookieWith(flashes ...string) *http.Cookie {
	return &http.Cookie{Name: flashCookie, Value: url.QueryEscape(strings.Join(flashes, flashSeparator))}
}

// responseCookie returns the last Set-Cookie with the given name, or nil.
func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name {
			found = ck
		}
	}
	return found
}

// flashesSet decodes the flash cookie a response queued.
func flashesSet(w *httptest.ResponseRecorder) []string {
	ck := responseCookie(w, flashCookie)
	if ck == nil || ck.Value == "" {
		return nil
	}
	raw, err := url.QueryUnescape(ck.Value)
	if err != nil {
		return nil
	}
	return strings.Split(raw, flashSeparator)
}
