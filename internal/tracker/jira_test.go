package tracker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andygrunwald/go-jira"
	"github.com/cchalm/jira-issue-flow/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type fakeJiraServer struct {
	*httptest.Server

	searchQuery   map[string]string
	createdFields map[string]any
	authHeader    string
	basicUser     string
	basicPass     string
}

func newFakeJiraServer(t *testing.T, searchResponse string, status int) *fakeJiraServer {
	t.Helper()
	f := &fakeJiraServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/api/2/search", func(w http.ResponseWriter, r *http.Request) {
		f.recordAuth(r)
		q := r.URL.Query()
		f.searchQuery = map[string]string{
			"jql":        q.Get("jql"),
			"maxResults": q.Get("maxResults"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(searchResponse))
	})
	mux.HandleFunc("/rest/api/2/issue", func(w http.ResponseWriter, r *http.Request) {
		f.recordAuth(r)
		var body struct {
			Fields map[string]any `json:"fields"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.createdFields = body.Fields
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"10042","key":"MIG-42","self":"http://jira/rest/api/2/issue/10042"}`))
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeJiraServer) recordAuth(r *http.Request) {
	f.authHeader = r.Header.Get("Authorization")
	f.basicUser, f.basicPass, _ = r.BasicAuth()
}

func newTestJira(t *testing.T, url string, auth config.AuthMode) (*Jira, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	cfg := config.Config{
		URL:   url,
		Email: "bot@example.com",
		Token: "secret",
		Auth:  auth,
	}
	j, err := NewJira(context.Background(), cfg, nil, tp.Tracer("test"))
	require.NoError(t, err)
	return j, recorder
}

func TestJira_Search(t *testing.T) {
	srv := newFakeJiraServer(t, `{
		"startAt": 0, "maxResults": 10, "total": 2,
		"issues": [
			{"id": "1", "key": "MIG-2", "fields": {"summary": "Migrate service X v2"}},
			{"id": "2", "key": "MIG-3", "fields": {"summary": "Migrate service X"}}
		]
	}`, http.StatusOK)
	j, recorder := newTestJira(t, srv.URL, config.AuthBasic)

	issues, err := j.Search(context.Background(), `project = MIG AND summary ~ "Migrate service X"`, 10)
	require.NoError(t, err)
	require.Equal(t, []Issue{
		{Key: "MIG-2", Summary: "Migrate service X v2"},
		{Key: "MIG-3", Summary: "Migrate service X"},
	}, issues)

	require.Equal(t, `project = MIG AND summary ~ "Migrate service X"`, srv.searchQuery["jql"])
	require.Equal(t, "10", srv.searchQuery["maxResults"])
	require.Equal(t, "bot@example.com", srv.basicUser)
	require.Equal(t, "secret", srv.basicPass)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, "jira.search", spans[0].Name())
}

func TestJira_SearchError(t *testing.T) {
	srv := newFakeJiraServer(t, `{"errorMessages":["The value 'NOPE' does not exist for the field 'project'."]}`, http.StatusBadRequest)
	j, recorder := newTestJira(t, srv.URL, config.AuthBasic)

	_, err := j.Search(context.Background(), "project = NOPE", 10)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to search issues")

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestJira_CreateStoryFields(t *testing.T) {
	srv := newFakeJiraServer(t, "", http.StatusOK)
	j, recorder := newTestJira(t, srv.URL, config.AuthBasic)

	fields := &jira.IssueFields{
		Project:     jira.Project{Key: "MIG"},
		Summary:     "Migrate service X",
		Type:        jira.IssueType{Name: "Story"},
		Description: "Move it",
		Unknowns:    map[string]interface{}{"customfield_10014": "EPIC-1"},
	}
	issue, err := j.Create(context.Background(), fields)
	require.NoError(t, err)
	require.Equal(t, Issue{Key: "MIG-42", Summary: "Migrate service X"}, issue)

	assert.Equal(t, "Migrate service X", srv.createdFields["summary"])
	assert.Equal(t, "Move it", srv.createdFields["description"])
	assert.Equal(t, "EPIC-1", srv.createdFields["customfield_10014"])
	assert.Equal(t, "Story", srv.createdFields["issuetype"].(map[string]any)["name"])
	assert.Equal(t, "MIG", srv.createdFields["project"].(map[string]any)["key"])
	assert.NotContains(t, srv.createdFields, "parent")

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, "jira.create", spans[0].Name())
}

func TestJira_CreateSubtaskFields(t *testing.T) {
	srv := newFakeJiraServer(t, "", http.StatusOK)
	j, _ := newTestJira(t, srv.URL, config.AuthBasic)

	fields := &jira.IssueFields{
		Project: jira.Project{Key: "MIG"},
		Summary: "Write tests",
		Type:    jira.IssueType{Name: "Sub-task"},
		Parent:  &jira.Parent{Key: "STORY-1"},
	}
	_, err := j.Create(context.Background(), fields)
	require.NoError(t, err)

	require.Contains(t, srv.createdFields, "parent")
	assert.Equal(t, "STORY-1", srv.createdFields["parent"].(map[string]any)["key"])
	assert.NotContains(t, srv.createdFields, "customfield_10014")
}

func TestJira_BearerAuth(t *testing.T) {
	srv := newFakeJiraServer(t, `{"issues": []}`, http.StatusOK)
	j, _ := newTestJira(t, srv.URL, config.AuthBearer)

	issues, err := j.Search(context.Background(), "project = MIG", 10)
	require.NoError(t, err)
	require.Empty(t, issues)
	require.Equal(t, "Bearer secret", srv.authHeader)
}

func TestNewJira_UnknownAuth(t *testing.T) {
	_, err := NewJira(context.Background(), config.Config{URL: "http://jira", Auth: "kerberos"}, nil, nil)
	require.Error(t, err)
}
