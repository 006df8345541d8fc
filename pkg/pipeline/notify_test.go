package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarsy-labs/chartpilot/pkg/models"
	"github.com/tarsy-labs/chartpilot/pkg/slack"
)

type recordedPost struct {
	text     string
	threadTS string
}

func mockSlackServer(t *testing.T) (*httptest.Server, func() []recordedPost) {
	t.Helper()
	var mu sync.Mutex
	var posts []recordedPost
	var tsCounter int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		tsCounter++
		mu.Lock()
		posts = append(posts, recordedPost{text: r.FormValue("blocks"), threadTS: r.FormValue("thread_ts")})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok": true, "channel": "C123", "ts": "1000.000" + string(rune('0'+tsCounter)),
		})
	}))

	return srv, func() []recordedPost {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedPost(nil), posts...)
	}
}

func TestOrchestrator_SubmitNotifiesStartAndCompletion(t *testing.T) {
	srv, posts := mockSlackServer(t)
	defer srv.Close()

	store := &fakeStore{result: models.ExecutionResult{
		Rows:        []models.Row{{"region": "west", "value": 100.0}},
		ColumnOrder: []string{"region", "value"},
	}}
	orch, _ := newTestOrchestrator(store, fixtureCatalog())
	client := slack.NewClientWithAPIURL("xoxb-test", "C123", srv.URL+"/")
	orch.Notifier = slack.NewServiceWithClient(client, "https://dash.example.com")

	job := orch.Submit(context.Background(), models.Prompt{Text: "show revenue by region"})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got, ok := orch.Registry.Get(job.ID)
		if ok && got.Status.Terminal() {
			break
		}
		time.Sleep(time.Millisecond)
	}

	got, ok := orch.Registry.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, models.JobCompleted, got.Status)

	require.Len(t, posts(), 2, "expected one start post and one completion post")
}

func TestOrchestrator_NotifyCompletedClearsThreadTS(t *testing.T) {
	orch, _ := newTestOrchestrator(&fakeStore{}, fixtureCatalog())
	orch.threadTS["job-1"] = "1000.0001"

	orch.notifyCompleted(context.Background(), "job-1", slack.JobCompletedInput{JobID: "job-1", Status: "failed"})

	orch.threadTSMu.Lock()
	_, exists := orch.threadTS["job-1"]
	orch.threadTSMu.Unlock()
	assert.False(t, exists)
}
