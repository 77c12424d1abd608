package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/asetdesk/asetdesk/internal/shared"
)

type stubEnqueuer struct {
	calls int
	err   error
}

func (s *stubEnqueuer) EnqueueRevalidate(ctx context.Context, at time.Time) error {
	s.calls++
	return s.err
}

func newHandlerRouter(t *testing.T, repo *stubNotifRepo, sweeps SweepEnqueuer) (chi.Router, *HiddenStore) {
	t.Helper()
	svc, hidden := newTestService(t, repo, nil)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess := &shared.Session{}
			sess.SetPrincipal(principal())
			ctx := shared.ContextWithSession(req.Context(), sess)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	NewHandler(discardLogger(), svc, sweeps).MountRoutes(r)
	return r, hidden
}

func TestHandleListOK(t *testing.T) {
	repo := &stubNotifRepo{items: []Notification{{ID: 1, Kind: KindInfo, Title: "halo"}}}
	router, _ := newHandlerRouter(t, repo, nil)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/notifications", nil))

	require.Equal(t, http.StatusOK, res.Code)
	require.Empty(t, res.Header().Get(DegradedHeader))

	var body Result
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	require.Equal(t, 1, body.Unread)
}

func TestHandleListDegradedHeader(t *testing.T) {
	repo := &stubNotifRepo{listErr: errors.New("upstream 503")}
	router, _ := newHandlerRouter(t, repo, nil)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/notifications", nil))

	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, "seed", res.Header().Get(DegradedHeader))
}

func TestHandleMarkRead(t *testing.T) {
	repo := &stubNotifRepo{}
	router, _ := newHandlerRouter(t, repo, nil)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/notifications/5/read", nil))

	require.Equal(t, http.StatusNoContent, res.Code)
	require.Equal(t, []int64{5}, repo.marked)
}

func TestHandleHideAndShowAll(t *testing.T) {
	repo := &stubNotifRepo{}
	router, hidden := newHandlerRouter(t, repo, nil)
	ctx := context.Background()

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/notifications/8/hide", nil))
	require.Equal(t, http.StatusNoContent, res.Code)

	kept, err := hidden.Load(ctx, principal().Key())
	require.NoError(t, err)
	require.Equal(t, map[int64]struct{}{8: {}}, kept)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodDelete, "/notifications/hidden", nil))
	require.Equal(t, http.StatusNoContent, res.Code)

	kept, err = hidden.Load(ctx, principal().Key())
	require.NoError(t, err)
	require.Empty(t, kept)
}

func TestHandleDelete(t *testing.T) {
	repo := &stubNotifRepo{}
	router, hidden := newHandlerRouter(t, repo, nil)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodDelete, "/notifications/3", nil))
	require.Equal(t, http.StatusNoContent, res.Code)
	require.Equal(t, []int64{3}, repo.deleted)

	kept, err := hidden.Load(context.Background(), principal().Key())
	require.NoError(t, err)
	require.Equal(t, map[int64]struct{}{3: {}}, kept)
}

func TestHandleRevalidateEnqueuesSweep(t *testing.T) {
	sweeps := &stubEnqueuer{}
	router, _ := newHandlerRouter(t, &stubNotifRepo{}, sweeps)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/notifications/revalidate", nil))

	require.Equal(t, http.StatusAccepted, res.Code)
	require.Equal(t, 1, sweeps.calls)
}

func TestHandleRevalidateWithoutQueue(t *testing.T) {
	router, _ := newHandlerRouter(t, &stubNotifRepo{}, nil)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/notifications/revalidate", nil))

	require.Equal(t, http.StatusServiceUnavailable, res.Code)
}

func TestHandleRevalidateEnqueueError(t *testing.T) {
	sweeps := &stubEnqueuer{err: errors.New("antrian penuh")}
	router, _ := newHandlerRouter(t, &stubNotifRepo{}, sweeps)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/notifications/revalidate", nil))

	require.Equal(t, http.StatusInternalServerError, res.Code)
}

func TestHandleBadID(t *testing.T) {
	repo := &stubNotifRepo{}
	router, _ := newHandlerRouter(t, repo, nil)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/notifications/abc/read", nil))
	require.Equal(t, http.StatusBadRequest, res.Code)
}
