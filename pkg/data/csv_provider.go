package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/ducminhle1904/stock-signal-backtest/internal/errors"
	"github.com/ducminhle1904/stock-signal-backtest/pkg/types"
)

// CSVProvider implements DataProvider for CSV files with a header row
type CSVProvider struct {
	format CSVColumnMapping
}

// NewCSVProvider creates a new CSV data provider with default format
func NewCSVProvider() *CSVProvider {
	return &CSVProvider{format: DefaultCSVFormat}
}

// NewCSVProviderWithFormat creates a new CSV data provider with custom format
func NewCSVProviderWithFormat(format CSVColumnMapping) *CSVProvider {
	return &CSVProvider{format: format}
}

// GetName returns the name of the data provider
func (p *CSVProvider) GetName() string {
	return "CSV Provider"
}

// LoadSeries reads source and validates the result. Any malformed row
// aborts the load; rows are never skipped.
func (p *CSVProvider) LoadSeries(source, symbol string) (*types.Series, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorCategoryInput, "data", "open", source)
	}
	defer file.Close()

	series, err := p.Read(file, symbol)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorCategoryInput, "data", "parse", source)
	}
	return series, nil
}

// Read parses CSV content from r
func (p *CSVProvider) Read(r io.Reader, symbol string) (*types.Series, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.ErrEmptySeries
		}
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}
	cols, err := p.resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var bars []types.Bar
	lineNum := 1
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("error reading CSV at line %d: %w", lineNum+1, err)
		}
		lineNum++

		bar, err := p.parseRecord(record, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		bars = append(bars, bar)
	}

	series := types.NewSeries(symbol, bars)
	if err := series.Validate(); err != nil {
		return nil, err
	}
	return series, nil
}

type columnIndex struct {
	date, open, high, low, close, volume int
}

func (p *CSVProvider) resolveColumns(header []string) (columnIndex, error) {
	lookup := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := lookup[name]; !dup {
			lookup[name] = i
		}
	}

	find := func(field string, aliases []string) (int, error) {
		for _, a := range aliases {
			if i, ok := lookup[strings.ToLower(a)]; ok {
				return i, nil
			}
		}
		return 0, fmt.Errorf("missing required column %q (accepted: %s)", field, strings.Join(aliases, ", "))
	}

	var idx columnIndex
	var err error
	if idx.date, err = find("date", p.format.Date); err != nil {
		return idx, err
	}
	if idx.open, err = find("open", p.format.Open); err != nil {
		return idx, err
	}
	if idx.high, err = find("high", p.format.High); err != nil {
		return idx, err
	}
	if idx.low, err = find("low", p.format.Low); err != nil {
		return idx, err
	}
	if idx.close, err = find("close", p.format.Close); err != nil {
		return idx, err
	}
	if idx.volume, err = find("volume", p.format.Volume); err != nil {
		return idx, err
	}
	return idx, nil
}

func (p *CSVProvider) parseRecord(record []string, cols columnIndex) (types.Bar, error) {
	date, err := p.parseDate(record[cols.date])
	if err != nil {
		return types.Bar{}, err
	}

	bar := types.Bar{Date: date}
	fields := []struct {
		name string
		idx  int
		dst  *float64
	}{
		{"open", cols.open, &bar.Open},
		{"high", cols.high, &bar.High},
		{"low", cols.low, &bar.Low},
		{"close", cols.close, &bar.Close},
		{"volume", cols.volume, &bar.Volume},
	}

	for _, f := range fields {
		raw := strings.TrimSpace(record[f.idx])
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return types.Bar{}, fmt.Errorf("invalid %s %q: %w", f.name, raw, apperrors.ErrInvalidPrice)
		}
		*f.dst = v
	}
	return bar, nil
}

func (p *CSVProvider) parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range p.format.DateFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}
