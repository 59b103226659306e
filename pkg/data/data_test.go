package data

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ducminhle1904/stock-signal-backtest/internal/errors"
	"github.com/ducminhle1904/stock-signal-backtest/pkg/types"
)

const englishCSV = `date,open,high,low,close,volume
2024-01-02,10,11,9,10.5,1000
2024-01-03,10.5,11.5,10,11,1200
2024-01-04,11,11.2,10.1,10.2,900
`

const chineseCSV = "\ufeff日期,股票代码,开盘,收盘,最高,最低,成交量,成交额\n" +
	"2025-04-01,09988,120.5,122.0,123.0,119.8,5000000,6.1e8\n" +
	"2025-04-02,09988,122.0,121.0,122.5,120.0,4800000,5.8e8\n"

func TestCSVProvider_ReadEnglish(t *testing.T) {
	series, err := NewCSVProvider().Read(strings.NewReader(englishCSV), "TEST")
	require.NoError(t, err)

	require.Equal(t, 3, series.Len())
	assert.Equal(t, "TEST", series.Symbol)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), series.Bars[0].Date)
	assert.Equal(t, 10.5, series.Bars[0].Close)
	assert.Equal(t, 900.0, series.Bars[2].Volume)
}

func TestCSVProvider_ReadChineseHeaders(t *testing.T) {
	series, err := NewCSVProvider().Read(strings.NewReader(chineseCSV), "09988")
	require.NoError(t, err)

	require.Equal(t, 2, series.Len())
	bar := series.Bars[0]
	assert.Equal(t, 120.5, bar.Open)
	assert.Equal(t, 122.0, bar.Close)
	assert.Equal(t, 123.0, bar.High)
	assert.Equal(t, 119.8, bar.Low)
	assert.Equal(t, 5000000.0, bar.Volume)
}

func TestCSVProvider_FailFast(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"missing column", "date,open,high,low,close\n2024-01-02,1,1,1,1\n", nil},
		{"bad number", "date,open,high,low,close,volume\n2024-01-02,1,1,1,abc,5\n", apperrors.ErrInvalidPrice},
		{"bad date", "date,open,high,low,close,volume\n02/01/2024x,1,1,1,1,5\n", nil},
		{"negative volume", "date,open,high,low,close,volume\n2024-01-02,1,1,1,1,-5\n", apperrors.ErrInvalidPrice},
		{"descending dates", "date,open,high,low,close,volume\n2024-01-03,1,1,1,1,5\n2024-01-02,1,1,1,1,5\n", apperrors.ErrNonMonotonicDates},
		{"duplicate dates", "date,open,high,low,close,volume\n2024-01-03,1,1,1,1,5\n2024-01-03,1,1,1,1,5\n", apperrors.ErrNonMonotonicDates},
		{"header only", "date,open,high,low,close,volume\n", apperrors.ErrEmptySeries},
		{"empty", "", apperrors.ErrEmptySeries},
		{"short row", "date,open,high,low,close,volume\n2024-01-02,1,1\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCSVProvider().Read(strings.NewReader(tt.content), "X")
			require.Error(t, err)
			if tt.want != nil {
				assert.True(t, errors.Is(err, tt.want), err.Error())
			}
		})
	}
}

func TestCSVProvider_LoadSeriesMissingFile(t *testing.T) {
	_, err := NewCSVProvider().LoadSeries(filepath.Join(t.TempDir(), "none.csv"), "X")
	require.Error(t, err)
	cat, ok := apperrors.CategoryOf(err)
	assert.True(t, ok)
	assert.Equal(t, apperrors.ErrorCategoryInput, cat)
}

type countingProvider struct {
	inner DataProvider
	calls int
}

func (c *countingProvider) LoadSeries(source, symbol string) (*types.Series, error) {
	c.calls++
	return c.inner.LoadSeries(source, symbol)
}

func (c *countingProvider) GetName() string { return "counting" }

func TestCachedProvider(t *testing.T) {
	path := writeFile(t, "TEST_data.csv", englishCSV)
	inner := &countingProvider{inner: NewCSVProvider()}
	cached := NewCachedProvider(inner, nil)

	a, err := cached.LoadSeries(path, "TEST")
	require.NoError(t, err)
	b, err := cached.LoadSeries(path, "TEST")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, a.Bars, b.Bars)
	assert.Equal(t, "Cached counting", cached.GetName())

	// copies are independent
	a.Bars[0].Close = 999
	c, err := cached.LoadSeries(path, "TEST")
	require.NoError(t, err)
	assert.Equal(t, 10.5, c.Bars[0].Close)
}

func TestFilters(t *testing.T) {
	series, err := NewCSVProvider().Read(strings.NewReader(englishCSV), "TEST")
	require.NoError(t, err)
	f := NewDefaultDataFilter()

	got := f.FilterByDateRange(series, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), time.Time{})
	assert.Equal(t, 2, got.Len())

	got = f.FilterByDateRange(series, time.Time{}, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 1, got.Len())

	assert.Equal(t, 2, f.Tail(series, 2).Len())
	assert.Equal(t, 3, f.Tail(series, 0).Len())
	assert.Equal(t, 3, f.Tail(series, 10).Len())
}

func TestFileLocator(t *testing.T) {
	path := writeFile(t, "09988_data.csv", englishCSV)
	root := filepath.Dir(path)

	found, err := NewDefaultFileLocator().FindDataFile(root, "09988")
	require.NoError(t, err)
	assert.Equal(t, path, found)

	_, err = NewDefaultFileLocator().FindDataFile(root, "00700")
	assert.Error(t, err)
	_, err = NewDefaultFileLocator().FindDataFile(root, "")
	assert.Error(t, err)
}

func TestDataManager_Load(t *testing.T) {
	path := writeFile(t, "TEST_data.csv", englishCSV)
	dm := NewDataManager(nil)

	series, err := dm.Load(Request{Root: filepath.Dir(path), Symbol: "TEST"})
	require.NoError(t, err)
	assert.Equal(t, 3, series.Len())

	series, err = dm.Load(Request{File: path, Symbol: "TEST", Start: time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, 1, series.Len())

	_, err = dm.Load(Request{File: path, Symbol: "TEST", Start: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)})
	assert.True(t, errors.Is(err, apperrors.ErrEmptySeries))
	assert.Equal(t, 1, dm.Tail(series, 1).Len())
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
