// Package e2e runs the optimizer against real InfluxDB and Mosquitto
// containers started with testcontainers-go.
package e2e

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxReader queries what the influx sink wrote.
type InfluxReader struct {
	bucket string
	client influxdb2.Client
	query  api.QueryAPI
}

// NewInfluxReader creates a reader for bucket. The server must be running.
func NewInfluxReader(url, org, bucket, token string) *InfluxReader {
	c := influxdb2.NewClient(url, token)
	return &InfluxReader{bucket: bucket, client: c, query: c.QueryAPI(org)}
}

// CountPoints returns the number of rows of field in measurement written for
// scenario since the given time.
func (r *InfluxReader) CountPoints(ctx context.Context, measurement, field, scenario string, since time.Time) (int, error) {
	flux := fmt.Sprintf(`from(bucket:%q)
  |> range(start: %s)
  |> filter(fn: (r) => r._measurement == %q and r._field == %q and r.scenario == %q)
  |> group()
  |> count()`, r.bucket, since.UTC().Format(time.RFC3339), measurement, field, scenario)
	res, err := r.query.Query(ctx, flux)
	if err != nil {
		return 0, err
	}
	defer res.Close()
	n := 0
	for res.Next() {
		if v, ok := res.Record().Value().(int64); ok {
			n += int(v)
		}
	}
	return n, res.Err()
}

// Close releases the underlying client resources.
func (r *InfluxReader) Close() { r.client.Close() }
