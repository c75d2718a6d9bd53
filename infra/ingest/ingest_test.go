package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const consumptionJSON = `[
 {"from":"2025-03-27T00:00:00.000+01:00","consumption":0.5,"cost":0.6,"unitPrice":1.0,"unitPriceVAT":0.25,"currency":"SEK"},
 {"from":"2025-03-27T01:00:00.000+01:00","consumption":0.75,"cost":0.5,"unitPrice":0.8,"unitPriceVAT":0.2,"currency":"SEK"}
]`

func TestDecodeConsumption(t *testing.T) {
	recs, err := DecodeConsumption(strings.NewReader(consumptionJSON))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, time.Date(2025, 3, 26, 23, 0, 0, 0, time.UTC), recs[0].From)
	assert.Equal(t, time.UTC, recs[0].From.Location())
	assert.Equal(t, 0.75, *recs[1].Consumption)
	assert.Equal(t, 1.25, recs[0].SpotPrice())
	assert.Equal(t, "SEK", recs[1].Currency)
}

func TestDecodeConsumption_Invalid(t *testing.T) {
	_, err := DecodeConsumption(strings.NewReader(`[{"from":"2025-01-01T00:00:00Z","consumption":null}]`))
	assert.ErrorContains(t, err, "missing consumption")

	_, err = DecodeConsumption(strings.NewReader(`[
		{"from":"2025-01-01T01:00:00Z","consumption":1},
		{"from":"2025-01-01T00:00:00Z","consumption":1}]`))
	assert.ErrorContains(t, err, "not after its predecessor")

	_, err = DecodeConsumption(strings.NewReader(`{`))
	assert.Error(t, err)
}

func rampCurve(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = float64(i)
	}
	return v
}

func TestYieldCurve_At(t *testing.T) {
	_, err := NewYieldCurve(rampCurve(100))
	assert.ErrorContains(t, err, "100 hours")

	common, err := NewYieldCurve(rampCurve(8760))
	require.NoError(t, err)
	assert.Equal(t, 8760, common.Len())

	assert.Equal(t, 0.0, common.At(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 24.0+5, common.At(time.Date(2021, 1, 2, 5, 0, 0, 0, time.UTC)))
	// After 29 February a leap year lines up with the calendar, not with the
	// hour count since 1 January.
	mar1 := float64((31 + 28) * 24)
	assert.Equal(t, mar1, common.At(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, mar1-24+7, common.At(time.Date(2024, 2, 29, 7, 0, 0, 0, time.UTC)))
	assert.Equal(t, 8759.0, common.At(time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)))

	leap, err := NewYieldCurve(rampCurve(8784))
	require.NoError(t, err)
	assert.Equal(t, mar1, leap.At(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, mar1+24, leap.At(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)))

	shifted := common.WithOffset(2 * time.Hour)
	assert.Equal(t, 2.0, shifted.At(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2.0, common.At(time.Date(2021, 1, 1, 3, 0, 0, 0, time.FixedZone("x", 3600))))
}

func pvwattsBody(t *testing.T) []byte {
	t.Helper()
	ac := make([]float64, 8760)
	ac[12] = 500
	body, err := json.Marshal(map[string]any{
		"outputs":      map[string]any{"ac": ac},
		"station_info": map[string]any{"city": "Malmo", "tz": 1, "lat": 55.7, "lon": 13.2},
		"errors":       []string{},
		"warnings":     []string{"radius expanded"},
	})
	require.NoError(t, err)
	return body
}

func TestPVWattsDataset_Curve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pv.json")
	require.NoError(t, os.WriteFile(path, pvwattsBody(t), 0o600))
	d, err := LoadPVWattsFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Malmo", d.StationInfo.City)

	c, err := d.Curve(1, false)
	require.NoError(t, err)
	assert.Equal(t, 0.5, c.At(time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)))

	c, err = d.Curve(2, true)
	require.NoError(t, err)
	assert.Equal(t, 0.25, c.At(time.Date(2023, 1, 1, 11, 0, 0, 0, time.UTC)))

	_, err = DecodePVWatts(strings.NewReader(`{"errors":["bad api key"]}`))
	assert.ErrorContains(t, err, "bad api key")
}

func TestPVWattsClient_Fetch(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = map[string]string{}
		for k := range r.URL.Query() {
			got[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(pvwattsBody(t))
	}))
	defer srv.Close()

	c := NewPVWattsClient(srv.URL, nil)
	d, err := c.Fetch(context.Background(), PVWattsQuery{APIKey: "k", Tilt: 18, Azimuth: 145, Lat: 55.746, Lon: 13.255, ArrayType: 1, Radius: 500})
	require.NoError(t, err)
	assert.Len(t, d.Outputs.AC, 8760)
	assert.Equal(t, "hourly", got["timeframe"])
	assert.Equal(t, "1", got["system_capacity"])
	assert.Equal(t, "5", got["losses"])
	assert.Equal(t, "145", got["azimuth"])
	assert.Equal(t, "55.746", got["lat"])
	assert.Equal(t, "intl", got["dataset"])

	_, err = c.Fetch(context.Background(), PVWattsQuery{})
	assert.ErrorContains(t, err, "api_key")
}

func TestPVWattsClient_FetchStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewPVWattsClient(srv.URL, nil).Fetch(context.Background(), PVWattsQuery{APIKey: "k"})
	assert.ErrorContains(t, err, "status 403")
}

func TestTariff(t *testing.T) {
	var zero Tariff
	assert.Equal(t, 1.25, zero.Import(1, 0.25))
	assert.Equal(t, 1.25, zero.Export(1, 0.25))

	half := 0.5
	tr := Tariff{
		GridFeeFixed:       0.2,
		GridFeeSpotFactor:  0.0561,
		EnergyTax:          0.535,
		FeeVATRate:         0.25,
		ExportSpotFactor:   &half,
		ExportRemuneration: 0.6,
		ExportExcludesVAT:  true,
	}
	assert.InDelta(t, 1+0.25+(0.2+0.0561+0.535)*1.25, tr.Import(1, 0.25), 1e-12)
	assert.InDelta(t, 0.5+0.6, tr.Export(1, 0.25), 1e-12)
}

func TestMerge(t *testing.T) {
	recs, err := DecodeConsumption(strings.NewReader(consumptionJSON))
	require.NoError(t, err)
	curve, err := NewYieldCurve(rampCurve(8760))
	require.NoError(t, err)

	out := Merge(recs, curve, Tariff{EnergyTax: 0.5})
	require.Len(t, out, 2)
	assert.Equal(t, recs[0].From, out[0].Timestamp)
	assert.Equal(t, 0.5, out[0].ConsumptionKWh)
	assert.Equal(t, 1.75, out[0].ImportPrice)
	assert.Equal(t, 1.25, out[0].ExportPrice)
	assert.Equal(t, curve.At(recs[1].From), out[1].PVNormalized)
}

func TestDecodeRecordsCSV(t *testing.T) {
	in := "timestamp,consumption_kwh,import_price,export_price,pv_normalized\n" +
		"2023-01-01T00:00:00Z,1.5,0.3,0.1,0\n" +
		"2023-01-01T02:00:00+01:00, 2,0.4,0.2,0.05\n"
	recs, err := DecodeRecordsCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, time.Date(2023, 1, 1, 1, 0, 0, 0, time.UTC), recs[1].Timestamp)
	assert.Equal(t, 2.0, recs[1].ConsumptionKWh)
	assert.Equal(t, 0.05, recs[1].PVNormalized)

	_, err = DecodeRecordsCSV(strings.NewReader("ts,a,b,c,d\n"))
	assert.ErrorContains(t, err, "column 1")

	_, err = DecodeRecordsCSV(strings.NewReader(recordsCSVHeader() + "2023-01-01T00:00:00Z,x,0,0,0\n"))
	assert.ErrorContains(t, err, "line 2")
}

func recordsCSVHeader() string { return strings.Join(recordsHeader, ",") + "\n" }
