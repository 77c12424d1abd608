package historyhttp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/asetdesk/asetdesk/internal/history"
	historyhttp "github.com/asetdesk/asetdesk/internal/history/http"
)

type stubTimeline struct {
	groups []history.Group
	err    error

	gotAssetID string
}

func (s *stubTimeline) Timeline(ctx context.Context, assetID string) ([]history.Group, error) {
	s.gotAssetID = assetID
	return s.groups, s.err
}

func newRouter(svc historyhttp.TimelineService) chi.Router {
	r := chi.NewRouter()
	historyhttp.NewHandler(nil, svc).MountRoutes(r)
	return r
}

func TestHandleTimelineOK(t *testing.T) {
	at := time.Date(2024, time.March, 2, 8, 0, 0, 0, time.UTC)
	svc := &stubTimeline{groups: []history.Group{{
		Year:  2024,
		Month: 2,
		Entries: []history.Entry{{
			Record: history.TransactionRecord{
				TableRef: history.TablePerbaikan,
				RecordID: "1",
				Action:   history.ActionInput,
				At:       at,
			},
		}},
	}}}

	res := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/assets/15/history", nil))

	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, "15", svc.gotAssetID)

	var body struct {
		AssetID string `json:"assetId"`
		Groups  []struct {
			Year  int `json:"year"`
			Month int `json:"month"`
		} `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Equal(t, "15", body.AssetID)
	require.Len(t, body.Groups, 1)
	require.Equal(t, 2024, body.Groups[0].Year)
	require.Equal(t, 2, body.Groups[0].Month)
}

func TestHandleTimelineEmptyGroups(t *testing.T) {
	svc := &stubTimeline{}

	res := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/assets/15/history", nil))

	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"groups":[]`)
}

func TestHandleTimelineServiceError(t *testing.T) {
	svc := &stubTimeline{err: context.DeadlineExceeded}

	res := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/assets/15/history", nil))

	require.Equal(t, http.StatusInternalServerError, res.Code)
}
