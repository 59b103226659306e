package data

import (
	"time"

	"go.uber.org/zap"

	"github.com/ducminhle1904/stock-signal-backtest/pkg/types"
)

// DataManager combines all data operations in a convenient interface
type DataManager struct {
	provider DataProvider
	filter   DataFilter
	locator  FileLocator
}

// NewDataManager creates a new data manager with default components
func NewDataManager(logger *zap.Logger) *DataManager {
	return NewDataManagerWithProvider(NewCachedProvider(NewCSVProvider(), logger))
}

// NewDataManagerWithProvider creates a data manager with a custom provider
func NewDataManagerWithProvider(provider DataProvider) *DataManager {
	return &DataManager{
		provider: provider,
		filter:   NewDefaultDataFilter(),
		locator:  NewDefaultFileLocator(),
	}
}

// Request describes what to load. File wins over Root+Symbol lookup.
type Request struct {
	File   string
	Root   string
	Symbol string
	Start  time.Time
	End    time.Time
}

// Load locates, loads and date-filters a series, then validates the result.
func (dm *DataManager) Load(req Request) (*types.Series, error) {
	source := req.File
	if source == "" {
		found, err := dm.locator.FindDataFile(req.Root, req.Symbol)
		if err != nil {
			return nil, err
		}
		source = found
	}

	series, err := dm.provider.LoadSeries(source, req.Symbol)
	if err != nil {
		return nil, err
	}
	if !req.Start.IsZero() || !req.End.IsZero() {
		series = dm.filter.FilterByDateRange(series, req.Start, req.End)
		if err := series.Validate(); err != nil {
			return nil, err
		}
	}
	return series, nil
}

// Tail keeps the last n bars of series
func (dm *DataManager) Tail(series *types.Series, n int) *types.Series {
	return dm.filter.Tail(series, n)
}
