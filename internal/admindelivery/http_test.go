package admindelivery

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
)

func TestDashboard(t *testing.T) {
	gin.SetMode(gin.TestMode)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name          string
		buildStubs    func(pinger *MockPinger)
		wantDashboard Dashboard
	}{
		{
			name: "Operational",
			buildStubs: func(pinger *MockPinger) {
				pinger.EXPECT().Ping(gomock.Any()).Times(1).Return(nil)
			},
			wantDashboard: Dashboard{SystemStatus: StatusOperational, StoreBackend: "postgres", Timestamp: now},
		},
		{
			name: "Degraded",
			buildStubs: func(pinger *MockPinger) {
				pinger.EXPECT().Ping(gomock.Any()).Times(1).Return(errors.New("connection refused"))
			},
			wantDashboard: Dashboard{SystemStatus: StatusDegraded, StoreBackend: "postgres", Timestamp: now},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			pinger := NewMockPinger(ctrl)
			tc.buildStubs(pinger)

			h := NewHandler("postgres", pinger)
			h.now = func() time.Time { return now }

			server := gin.New()
			url := "/admin/dashboard"
			server.GET(url, h.Dashboard)

			req, err := http.NewRequest(http.MethodGet, url, nil)
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != http.StatusOK {
				t.Errorf("Status code: got %v, want %v", got, http.StatusOK)
			}

			var got struct {
				Data data `json:"data"`
			}
			if err := json.NewDecoder(recorder.Body).Decode(&got); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if diff := cmp.Diff(tc.wantDashboard, got.Data.Dashboard); diff != "" {
				t.Errorf("Dashboard mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
