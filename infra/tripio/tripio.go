// Package tripio reads and writes trips as CSV, one sample per row.
package tripio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/kilianp07/powersplit/core/model"
)

// Header lists the columns written by Write and expected by Read.
var Header = []string{
	"trip_id", "driver", "time", "period_ms",
	"latitude", "longitude", "elevation", "speed", "acceleration", "bearing",
	"planar_distance", "power_demand",
}

// Write encodes trips to w. Rows of one trip are contiguous.
func Write(w io.Writer, trips []model.Trip) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, t := range trips {
		for _, s := range t.Samples {
			rec := []string{
				t.Features.ID,
				t.Features.Driver,
				s.Time.Format(time.RFC3339Nano),
				strconv.Itoa(s.PeriodMS),
				formatFloat(s.Latitude),
				formatFloat(s.Longitude),
				formatFloat(s.Elevation),
				formatFloat(s.Speed),
				formatFloat(s.Acceleration),
				formatFloat(s.Bearing),
				formatFloat(s.PlanarDistance),
				formatFloat(s.PowerDemand),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read decodes trips from r. Consecutive rows sharing a trip_id form one
// trip; every trip gets vehicle v.
func Read(r io.Reader, v model.Vehicle) ([]model.Trip, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	cr.ReuseRecord = true
	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range Header {
		if head[i] != h {
			return nil, fmt.Errorf("unexpected column %q at %d, want %q", head[i], i, h)
		}
	}

	var trips []model.Trip
	var cur *model.Trip
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		s, err := parseSample(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if cur == nil || cur.Features.ID != rec[0] {
			trips = append(trips, model.NewTrip(rec[0], rec[1], v, nil))
			cur = &trips[len(trips)-1]
			cur.Features.Start = s
		}
		cur.Samples = append(cur.Samples, s)
	}
	return trips, nil
}

// ReadFile reads trips from the CSV file at path.
func ReadFile(path string, v model.Vehicle) ([]model.Trip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	trips, err := Read(f, v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return trips, nil
}

// WriteFile writes trips to the CSV file at path.
func WriteFile(path string, trips []model.Trip) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, trips); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func parseSample(rec []string) (model.Sample, error) {
	var s model.Sample
	var err error
	if s.Time, err = time.Parse(time.RFC3339Nano, rec[2]); err != nil {
		return s, fmt.Errorf("time: %w", err)
	}
	if s.PeriodMS, err = strconv.Atoi(rec[3]); err != nil {
		return s, fmt.Errorf("period_ms: %w", err)
	}
	fields := []*float64{
		&s.Latitude, &s.Longitude, &s.Elevation, &s.Speed, &s.Acceleration,
		&s.Bearing, &s.PlanarDistance, &s.PowerDemand,
	}
	for i, f := range fields {
		col := i + 4
		if *f, err = strconv.ParseFloat(rec[col], 64); err != nil {
			return s, fmt.Errorf("%s: %w", Header[col], err)
		}
	}
	return s, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
