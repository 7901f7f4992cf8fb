package arcgis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/geoassist/server/internal/assistant/model"
	"github.com/geoassist/server/internal/assistant/observe"
	errx "github.com/geoassist/server/internal/core/error"
	logx "github.com/geoassist/server/pkg/logger"
)

// Geometry is always requested in ground coordinates (WGS84).
const outSpatialReference = "4326"

const maxBodyLen = 8 << 20 // 8MB

// Executor issues one feature query per call against a dataset's REST
// endpoint. It never retries; failures are classified as network errors
// (transport) or service errors (structured error payload).
type Executor struct {
	http *http.Client
}

func New(cfg model.ArcGISConfig) *Executor {
	return &Executor{
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

type queryResponse struct {
	Features []model.Feature `json:"features"`
	Error    *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// Execute runs the normalized query against the dataset endpoint and returns
// the matching features, possibly empty, never nil on success.
func (e *Executor) Execute(ctx context.Context, dataset *model.Dataset, params model.QueryParams) ([]model.Feature, error) {
	start := time.Now()
	features, err := e.execute(ctx, dataset, params)
	observe.ObserveFeatureQuery(start, err)
	return features, err
}

func (e *Executor) execute(ctx context.Context, dataset *model.Dataset, params model.QueryParams) ([]model.Feature, error) {
	where := params.Where
	if where == "" {
		where = model.DefaultWhere
	}
	outFields := params.OutFields
	if outFields == "" {
		outFields = model.DefaultOutFields
	}
	count := params.ResultRecordCount
	if count == 0 {
		count = model.DefaultRecordCount
	}

	q := url.Values{}
	q.Set("where", where)
	q.Set("outFields", outFields)
	q.Set("returnGeometry", "true")
	q.Set("outSR", outSpatialReference)
	q.Set("f", "json")
	q.Set("resultRecordCount", strconv.Itoa(count))
	if params.OrderByFields != "" {
		q.Set("orderByFields", params.OrderByFields)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dataset.URL+"/query?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build feature query: %w", err)
	}

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, errx.New(err, errx.KindNetwork, 0, errx.NetworkErrorMessage)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logx.Warn().
			Str("component", "arcgis").
			Str("dataset", dataset.ID).
			Int("status", resp.StatusCode).
			Msg("feature query failed")
		return nil, errx.Network(fmt.Errorf("feature query status %d", resp.StatusCode), resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyLen))
	if err != nil {
		return nil, errx.New(err, errx.KindNetwork, resp.StatusCode, errx.NetworkErrorMessage)
	}

	var out queryResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errx.Service(err, resp.StatusCode, "invalid feature service response")
	}

	// ArcGIS reports errors inside a 200 body.
	if out.Error != nil {
		logx.Warn().
			Str("component", "arcgis").
			Str("dataset", dataset.ID).
			Int("code", out.Error.Code).
			Str("message", out.Error.Message).
			Msg("feature service error")
		return nil, errx.Service(fmt.Errorf("feature service code %d", out.Error.Code), resp.StatusCode,
			"ArcGIS Error: "+out.Error.Message)
	}

	if out.Features == nil {
		return []model.Feature{}, nil
	}
	return out.Features, nil
}
