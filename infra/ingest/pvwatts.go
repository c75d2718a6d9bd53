package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/hems/core/logger"
)

// DefaultPVWattsURL is the hourly PVWatts v8 endpoint.
const DefaultPVWattsURL = "https://developer.nrel.gov/api/pvwatts/v8.json"

// PVWattsDataset is the part of a PVWatts v8 response used here.
type PVWattsDataset struct {
	Inputs  map[string]any `json:"inputs,omitempty"`
	Outputs struct {
		// AC is the hourly inverter output in W for the whole year.
		AC []float64 `json:"ac"`
	} `json:"outputs"`
	StationInfo struct {
		City     string  `json:"city"`
		TZ       float64 `json:"tz"` // UTC offset of the dataset clock in hours
		Lat      float64 `json:"lat"`
		Lon      float64 `json:"lon"`
		Distance float64 `json:"distance"`
	} `json:"station_info"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Curve returns the dataset as a yield curve for a 1 kW array.
// systemCapacityKW is the capacity the dataset was computed for. When
// alignTZ is set the curve is shifted from the station clock to UTC.
func (d *PVWattsDataset) Curve(systemCapacityKW float64, alignTZ bool) (YieldCurve, error) {
	if systemCapacityKW <= 0 {
		systemCapacityKW = 1
	}
	values := make([]float64, len(d.Outputs.AC))
	for i, w := range d.Outputs.AC {
		values[i] = w / 1000 / systemCapacityKW
	}
	c, err := NewYieldCurve(values)
	if err != nil {
		return YieldCurve{}, err
	}
	if alignTZ {
		c = c.WithOffset(time.Duration(d.StationInfo.TZ * float64(time.Hour)))
	}
	return c, nil
}

// DecodePVWatts reads a PVWatts response.
func DecodePVWatts(r io.Reader) (*PVWattsDataset, error) {
	var d PVWattsDataset
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode pvwatts: %w", err)
	}
	if len(d.Errors) > 0 {
		return nil, fmt.Errorf("pvwatts: %s", strings.Join(d.Errors, "; "))
	}
	return &d, nil
}

// LoadPVWattsFile reads a PVWatts response saved to disk.
func LoadPVWattsFile(path string) (*PVWattsDataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return DecodePVWatts(f)
}

// PVWattsQuery holds the request parameters of an hourly PVWatts run.
type PVWattsQuery struct {
	APIKey         string  `json:"api_key"`
	SystemCapacity float64 `json:"system_capacity"` // kW
	ModuleType     int     `json:"module_type"`     // 0 standard, 1 premium, 2 thin film
	Losses         float64 `json:"losses"`          // percent
	ArrayType      int     `json:"array_type"`      // 0 fixed open rack, 1 fixed roof mount, ...
	Tilt           float64 `json:"tilt"`            // degrees
	Azimuth        float64 `json:"azimuth"`         // degrees
	Radius         int     `json:"radius"`          // km, 0 picks the closest station
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	Dataset        string  `json:"dataset"`
}

// SetDefaults fills in a 1 kW roof mounted array with 5% losses.
func (q *PVWattsQuery) SetDefaults() {
	if q.SystemCapacity == 0 {
		q.SystemCapacity = 1
	}
	if q.Losses == 0 {
		q.Losses = 5
	}
	if q.Dataset == "" {
		q.Dataset = "intl"
	}
}

func (q PVWattsQuery) values() url.Values {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	v := url.Values{}
	v.Set("api_key", q.APIKey)
	v.Set("system_capacity", f(q.SystemCapacity))
	v.Set("module_type", strconv.Itoa(q.ModuleType))
	v.Set("losses", f(q.Losses))
	v.Set("array_type", strconv.Itoa(q.ArrayType))
	v.Set("tilt", f(q.Tilt))
	v.Set("azimuth", f(q.Azimuth))
	v.Set("timeframe", "hourly")
	v.Set("radius", strconv.Itoa(q.Radius))
	v.Set("lat", f(q.Lat))
	v.Set("lon", f(q.Lon))
	v.Set("dataset", q.Dataset)
	return v
}

// PVWattsClient fetches yield datasets from the PVWatts API.
type PVWattsClient struct {
	baseURL string
	client  *http.Client
	log     logger.Logger
}

// NewPVWattsClient returns a client for baseURL, DefaultPVWattsURL when empty.
func NewPVWattsClient(baseURL string, log logger.Logger) *PVWattsClient {
	if baseURL == "" {
		baseURL = DefaultPVWattsURL
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &PVWattsClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
		log:     log,
	}
}

// Fetch runs an hourly PVWatts simulation for q.
func (c *PVWattsClient) Fetch(ctx context.Context, q PVWattsQuery) (*PVWattsDataset, error) {
	q.SetDefaults()
	if q.APIKey == "" {
		return nil, errors.New("pvwatts: api_key is required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.values().Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	c.log.Infof("fetching pvwatts dataset for %.3f,%.3f", q.Lat, q.Lon)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pvwatts: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("pvwatts: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	d, err := DecodePVWatts(resp.Body)
	if err != nil {
		return nil, err
	}
	for _, w := range d.Warnings {
		c.log.Warnf("pvwatts: %s", w)
	}
	return d, nil
}
