package data

import (
	"time"

	"github.com/ducminhle1904/stock-signal-backtest/pkg/types"
)

// DataProvider loads the bar history of one instrument
type DataProvider interface {
	// LoadSeries loads and validates the series stored at source
	LoadSeries(source, symbol string) (*types.Series, error)

	// GetName returns the name of the data provider
	GetName() string
}

// DataCache caches loaded series by key
type DataCache interface {
	Get(key string) (*types.Series, bool)
	Set(key string, series *types.Series)
	Clear()
	Size() int
}

// DataFilter narrows a series
type DataFilter interface {
	// FilterByDateRange keeps bars with start <= date <= end. Zero bounds are open.
	FilterByDateRange(series *types.Series, start, end time.Time) *types.Series

	// Tail keeps the last n bars
	Tail(series *types.Series, n int) *types.Series
}

// FileLocator finds the data file of a symbol
type FileLocator interface {
	FindDataFile(dataRoot, symbol string) (string, error)
}

// CSVColumnMapping lists the accepted header names of each field and the
// date layouts tried in order.
type CSVColumnMapping struct {
	Date        []string
	Open        []string
	High        []string
	Low         []string
	Close       []string
	Volume      []string
	DateFormats []string
}

// DefaultCSVFormat accepts English headers and the Chinese headers of
// A-share and HK daily exports.
var DefaultCSVFormat = CSVColumnMapping{
	Date:        []string{"date", "datetime", "timestamp", "日期"},
	Open:        []string{"open", "开盘"},
	High:        []string{"high", "最高"},
	Low:         []string{"low", "最低"},
	Close:       []string{"close", "收盘"},
	Volume:      []string{"volume", "vol", "成交量"},
	DateFormats: []string{"2006-01-02", "2006-01-02 15:04:05", "2006/01/02", "20060102"},
}
