package fleet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/darksworm/argofleet/pkg/config"
	apperrors "github.com/darksworm/argofleet/pkg/errors"
	"github.com/darksworm/argofleet/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// argoStub is a minimal ArgoCD instance for locator tests: a session
// endpoint plus canned answers per app name and selector.
type argoStub struct {
	appsByName     map[string]string
	appsBySelector map[string]string
	rejectLogin    bool
}

func (s *argoStub) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/v1/session":
			if s.rejectLogin {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"Invalid username or password","message":"Invalid username or password"}`))
				return
			}
			w.Write([]byte(`{"token":"stub-token"}`))
		case r.URL.Path == "/api/v1/applications":
			if name := r.URL.Query().Get("name"); name != "" {
				if body, ok := s.appsByName[name]; ok {
					w.Write([]byte(body))
					return
				}
				w.WriteHeader(http.StatusNotFound)
				return
			}
			if selector := r.URL.Query().Get("selector"); selector != "" {
				if body, ok := s.appsBySelector[selector]; ok {
					w.Write([]byte(body))
					return
				}
				w.Write([]byte(`{"items":[]}`))
				return
			}
			w.WriteHeader(http.StatusBadRequest)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newFleet(instances []model.Instance) *Fleet {
	registry := config.NewRegistry(instances, model.Credentials{Username: "admin", Password: "pw"})
	return New(registry, config.DefaultPrefs())
}

func TestFindAppRejectsAmbiguousAndEmptyQueries(t *testing.T) {
	f := newFleet([]model.Instance{{Name: "argoInstance1", URL: "http://localhost:1"}})

	_, err := f.FindApp(context.Background(), model.AppQuery{Name: "a", Selector: "app=a"})
	require.Error(t, err)
	assert.True(t, apperrors.AsFleetError(err).IsCode("AMBIGUOUS_QUERY"))

	_, err = f.FindApp(context.Background(), model.AppQuery{})
	require.Error(t, err)
	assert.True(t, apperrors.AsFleetError(err).IsCode("EMPTY_QUERY"))
}

func TestFindAppByNameProbesSuffixes(t *testing.T) {
	stub := &argoStub{appsByName: map[string]string{
		"testApp-nonprod": `{"metadata":{"name":"testApp-nonprod"}}`,
	}}
	server := httptest.NewServer(stub.handler(t))
	defer server.Close()

	f := newFleet([]model.Instance{{Name: "argoInstance1", URL: server.URL}})

	located, err := f.FindApp(context.Background(), model.AppQuery{Name: "testApp"})
	require.NoError(t, err)
	require.Len(t, located, 1)
	assert.Equal(t, "argoInstance1", located[0].Name)
	assert.Equal(t, server.URL, located[0].URL)
	assert.Equal(t, []string{"testApp-nonprod"}, located[0].AppNames)
}

func TestFindAppExcludesZeroMatchInstancesAndKeepsOrder(t *testing.T) {
	hit := &argoStub{appsBySelector: map[string]string{
		"app=testApp": `{"items":[{"metadata":{"name":"testAppName"}}]}`,
	}}
	miss := &argoStub{}

	server1 := httptest.NewServer(hit.handler(t))
	defer server1.Close()
	server2 := httptest.NewServer(miss.handler(t))
	defer server2.Close()
	server3 := httptest.NewServer(hit.handler(t))
	defer server3.Close()

	f := newFleet([]model.Instance{
		{Name: "argoInstance1", URL: server1.URL},
		{Name: "argoInstance2", URL: server2.URL},
		{Name: "argoInstance3", URL: server3.URL},
	})

	located, err := f.FindApp(context.Background(), model.AppQuery{Selector: "app=testApp"})
	require.NoError(t, err)
	require.Len(t, located, 2)
	assert.Equal(t, "argoInstance1", located[0].Name)
	assert.Equal(t, "argoInstance3", located[1].Name)
}

func TestFindAppAuthRejectionAborts(t *testing.T) {
	good := &argoStub{appsBySelector: map[string]string{
		"app=testApp": `{"items":[{"metadata":{"name":"testAppName"}}]}`,
	}}
	bad := &argoStub{rejectLogin: true}

	server1 := httptest.NewServer(good.handler(t))
	defer server1.Close()
	server2 := httptest.NewServer(bad.handler(t))
	defer server2.Close()

	f := newFleet([]model.Instance{
		{Name: "argoInstance1", URL: server1.URL},
		{Name: "argoInstance2", URL: server2.URL},
	})

	_, err := f.FindApp(context.Background(), model.AppQuery{Selector: "app=testApp"})
	require.Error(t, err)
	assert.True(t, apperrors.IsAuth(err), "credential rejection must abort the aggregate")
	assert.Contains(t, err.Error(), server2.URL)
}

func TestFindAppSkipsUnreachableInstance(t *testing.T) {
	good := &argoStub{appsBySelector: map[string]string{
		"app=testApp": `{"items":[{"metadata":{"name":"testAppName"}}]}`,
	}}
	server1 := httptest.NewServer(good.handler(t))
	defer server1.Close()

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	f := newFleet([]model.Instance{
		{Name: "argoInstance1", URL: server1.URL},
		{Name: "argoInstance2", URL: deadURL},
	})

	located, err := f.FindApp(context.Background(), model.AppQuery{Selector: "app=testApp"})
	require.NoError(t, err, "an unreachable instance just means the app is not there")
	require.Len(t, located, 1)
	assert.Equal(t, "argoInstance1", located[0].Name)
}

func TestFindAppAllInstancesFailed(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	f := newFleet([]model.Instance{
		{Name: "argoInstance1", URL: deadURL},
		{Name: "argoInstance2", URL: deadURL},
	})

	_, err := f.FindApp(context.Background(), model.AppQuery{Selector: "app=testApp"})
	require.Error(t, err)
	assert.True(t, apperrors.AsFleetError(err).IsCode("ALL_INSTANCES_FAILED"))
}

func TestAppDataDecoratesPayloadsInRegistryOrder(t *testing.T) {
	stub1 := &argoStub{appsBySelector: map[string]string{
		"app=testApp": `{"items":[{"metadata":{"name":"appOne"}},{"metadata":{"name":"appTwo"}}]}`,
	}}
	stub2 := &argoStub{appsBySelector: map[string]string{
		"app=testApp": `{"items":[{"metadata":{"name":"appThree"}}]}`,
	}}

	server1 := httptest.NewServer(stub1.handler(t))
	defer server1.Close()
	server2 := httptest.NewServer(stub2.handler(t))
	defer server2.Close()

	f := newFleet([]model.Instance{
		{Name: "argoInstance1", URL: server1.URL},
		{Name: "argoInstance2", URL: server2.URL},
	})

	apps, err := f.AppData(context.Background(), model.AppQuery{Selector: "app=testApp"})
	require.NoError(t, err)
	require.Len(t, apps, 3)

	wantNames := []string{"appOne", "appTwo", "appThree"}
	wantInstances := []string{"argoInstance1", "argoInstance1", "argoInstance2"}
	for i, app := range apps {
		assert.Equal(t, wantNames[i], gjson.GetBytes(app.Payload, "metadata.name").String())
		assert.Equal(t, wantInstances[i], gjson.GetBytes(app.Payload, "instance").String())
		assert.Equal(t, wantInstances[i], app.Instance)
	}
}
