package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/asetdesk/asetdesk/internal/shared"
	_ "github.com/asetdesk/asetdesk/testing"
)

func newManager(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
}

func TestSessionRoundTrip(t *testing.T) {
	sm := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sess.SetPrincipal(shared.Principal{ID: 7, Username: "budi", Role: "admin"})

	res := httptest.NewRecorder()
	if err := sm.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit: %v", err)
	}

	cookies := res.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value == "" {
		t.Fatalf("expected session cookie, got %v", cookies)
	}
	if cookies[0].Name != sm.CookieName() {
		t.Fatalf("cookie name %q, want %q", cookies[0].Name, sm.CookieName())
	}
	if sm.TTL() != time.Hour {
		t.Fatalf("ttl %v, want %v", sm.TTL(), time.Hour)
	}

	// Request berikutnya membawa cookie yang sama.
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	reloaded, err := sm.Load(ctx, next)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got := reloaded.Principal()
	if got.ID != 7 || got.Username != "budi" {
		t.Fatalf("unexpected principal: %+v", got)
	}
}

func TestSessionDestroy(t *testing.T) {
	sm := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sess.SetPrincipal(shared.Principal{ID: 7, Username: "budi"})

	res := httptest.NewRecorder()
	if err := sm.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit: %v", err)
	}
	cookie := res.Result().Cookies()[0]

	sm.Destroy(sess)
	res = httptest.NewRecorder()
	if err := sm.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit destroy: %v", err)
	}
	expired := res.Result().Cookies()
	if len(expired) != 1 || expired[0].MaxAge != -1 {
		t.Fatalf("expected expired cookie, got %v", expired)
	}

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookie)
	reloaded, err := sm.Load(ctx, next)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.Principal().IsZero() {
		t.Fatalf("destroyed session must come back anonymous")
	}
}

func TestUnknownCookieYieldsFreshSession(t *testing.T) {
	sm := newManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: "tidak-dikenal"})

	sess, err := sm.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !sess.Principal().IsZero() {
		t.Fatalf("expected anonymous session")
	}
	if sess.ID != "tidak-dikenal" {
		t.Fatalf("session keeps presented id, got %q", sess.ID)
	}
}

func TestPrincipalKey(t *testing.T) {
	if got := (shared.Principal{ID: 7, Username: "budi"}).Key(); got != "7" {
		t.Fatalf("id wins: got %q", got)
	}
	if got := (shared.Principal{Username: "budi"}).Key(); got != "budi" {
		t.Fatalf("username fallback: got %q", got)
	}
	if !(shared.Principal{}).IsZero() {
		t.Fatalf("zero principal must report IsZero")
	}
}
