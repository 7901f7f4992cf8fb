package arcgis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoassist/server/internal/assistant/model"
	errx "github.com/geoassist/server/internal/core/error"
)

func newTestExecutor() *Executor {
	return New(model.ArcGISConfig{TimeoutSeconds: 5})
}

func datasetFor(srvURL string) *model.Dataset {
	return &model.Dataset{ID: "hospitals", Name: "US Hospitals", URL: srvURL}
}

func fullParams() model.QueryParams {
	return model.QueryParams{
		Where:             "STATE='CA' AND BEDS>500",
		OutFields:         "NAME,CITY,STATE,BEDS",
		OrderByFields:     "BEDS DESC",
		ResultRecordCount: 20,
		Summary:           "California hospitals with over 500 beds.",
	}
}

func TestExecute_QueryEncoding(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		got = r.URL.Query()
		w.Write([]byte(`{"features":[]}`))
	}))
	defer srv.Close()

	_, err := newTestExecutor().Execute(context.Background(), datasetFor(srv.URL), fullParams())
	require.NoError(t, err)

	assert.Equal(t, "STATE='CA' AND BEDS>500", got.Get("where"))
	assert.Equal(t, "NAME,CITY,STATE,BEDS", got.Get("outFields"))
	assert.Equal(t, "true", got.Get("returnGeometry"))
	assert.Equal(t, "4326", got.Get("outSR"))
	assert.Equal(t, "json", got.Get("f"))
	assert.Equal(t, "20", got.Get("resultRecordCount"))
	assert.Equal(t, "BEDS DESC", got.Get("orderByFields"))
}

func TestExecute_OmitsOrderByWhenAbsent(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write([]byte(`{"features":[]}`))
	}))
	defer srv.Close()

	params := fullParams()
	params.OrderByFields = ""
	_, err := newTestExecutor().Execute(context.Background(), datasetFor(srv.URL), params)
	require.NoError(t, err)

	_, present := got["orderByFields"]
	assert.False(t, present)
}

func TestExecute_FillsMissingParams(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write([]byte(`{"features":[]}`))
	}))
	defer srv.Close()

	_, err := newTestExecutor().Execute(context.Background(), datasetFor(srv.URL), model.QueryParams{})
	require.NoError(t, err)

	assert.Equal(t, "1=1", got.Get("where"))
	assert.Equal(t, "*", got.Get("outFields"))
	assert.Equal(t, "20", got.Get("resultRecordCount"))
}

func TestExecute_ParsesFeatures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"features":[
			{"attributes":{"NAME":"General Hospital","BEDS":612},"geometry":{"x":-118.2,"y":34.05}},
			{"attributes":{"NAME":"Mercy Medical","BEDS":540}}
		]}`))
	}))
	defer srv.Close()

	features, err := newTestExecutor().Execute(context.Background(), datasetFor(srv.URL), fullParams())
	require.NoError(t, err)
	require.Len(t, features, 2)

	assert.Equal(t, "General Hospital", features[0].Attributes["NAME"])
	assert.Equal(t, float64(612), features[0].Attributes["BEDS"])
	require.NotNil(t, features[0].Geometry)
	assert.InDelta(t, -118.2, features[0].Geometry.X, 1e-9)
	assert.InDelta(t, 34.05, features[0].Geometry.Y, 1e-9)
	assert.Nil(t, features[1].Geometry)
}

func TestExecute_MissingFeaturesYieldsEmptySlice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	features, err := newTestExecutor().Execute(context.Background(), datasetFor(srv.URL), fullParams())
	require.NoError(t, err)
	assert.NotNil(t, features)
	assert.Empty(t, features)
}

func TestExecute_ServiceErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"error":{"message":"Invalid query parameters","code":400}}`))
	}))
	defer srv.Close()

	_, err := newTestExecutor().Execute(context.Background(), datasetFor(srv.URL), fullParams())
	require.Error(t, err)
	assert.Equal(t, errx.KindService, errx.KindOf(err))
	assert.Equal(t, "ArcGIS Error: Invalid query parameters", errx.UserMessage(err))
}

func TestExecute_NonSuccessStatusIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestExecutor().Execute(context.Background(), datasetFor(srv.URL), fullParams())
	require.Error(t, err)
	assert.Equal(t, errx.KindNetwork, errx.KindOf(err))
	assert.Equal(t, "Network error: 503", errx.UserMessage(err))
}

func TestExecute_TransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	_, err := newTestExecutor().Execute(context.Background(), datasetFor(srv.URL), fullParams())
	require.Error(t, err)
	assert.Equal(t, errx.KindNetwork, errx.KindOf(err))
}
