// Package backtest replays a CSV of scored bars through a strategy with a
// simulated broker.
package backtest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
)

var ErrEmptyFeed = errors.New("feed has no bars")

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Date is a CSV date cell accepting a plain day or a full timestamp.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("unrecognised date %q", s)
}

func (d Date) MarshalCSV() (string, error) {
	return d.Format("2006-01-02"), nil
}

type Bar struct {
	Date        Date    `csv:"date"`
	Open        float64 `csv:"open"`
	High        float64 `csv:"high"`
	Low         float64 `csv:"low"`
	Close       float64 `csv:"close"`
	Volume      float64 `csv:"volume"`
	SignalScore float64 `csv:"signal_score"`
}

// ReadBars parses bars from r and sorts them by date.
func ReadBars(r io.Reader) ([]Bar, error) {
	var bars []Bar
	if err := gocsv.Unmarshal(r, &bars); err != nil {
		return nil, fmt.Errorf("failed to parse bars: %w", err)
	}
	if len(bars) == 0 {
		return nil, ErrEmptyFeed
	}
	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date.Time)
	})
	return bars, nil
}

func LoadBars(path string) ([]Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feed: %w", err)
	}
	defer f.Close()

	bars, err := ReadBars(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bars, nil
}
