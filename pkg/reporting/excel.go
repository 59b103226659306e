package reporting

import (
	"fmt"

	"github.com/ducminhle1904/stock-signal-backtest/internal/divergence"
	"github.com/ducminhle1904/stock-signal-backtest/internal/indicators"
	"github.com/ducminhle1904/stock-signal-backtest/internal/signals"
	"github.com/xuri/excelize/v2"
)

// Workbook sheet names
const (
	SheetSummary    = "Summary"
	SheetIndicators = "Indicators"
	SheetSignals    = "Signals"
	SheetTrades     = "Trades"
	SheetEquity     = "Equity"
)

// DefaultExcelReporter implements Excel output functionality
type DefaultExcelReporter struct {
	paths *DefaultPathManager
}

// NewDefaultExcelReporter creates a new Excel reporter
func NewDefaultExcelReporter() *DefaultExcelReporter {
	return &DefaultExcelReporter{paths: NewDefaultPathManager()}
}

// WriteWorkbook writes the summary, indicator frame, signals, trades and equity curve to one workbook
func (r *DefaultExcelReporter) WriteWorkbook(out *Output, path string) error {
	if err := r.paths.EnsureDirectoryExists(path); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	fx := excelize.NewFile()
	defer fx.Close()

	if err := fx.SetSheetName(fx.GetSheetName(0), SheetSummary); err != nil {
		return err
	}
	for _, name := range []string{SheetIndicators, SheetSignals, SheetTrades, SheetEquity} {
		if _, err := fx.NewSheet(name); err != nil {
			return err
		}
	}

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return err
	}

	writers := []func(*excelize.File, *Output, ExcelStyles) error{
		r.writeSummarySheet,
		r.writeIndicatorsSheet,
		r.writeSignalsSheet,
		r.writeTradesSheet,
		r.writeEquitySheet,
	}
	for _, write := range writers {
		if err := write(fx, out, styles); err != nil {
			return err
		}
	}

	return fx.SaveAs(path)
}

func (r *DefaultExcelReporter) createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	thin := []excelize.Border{
		{Type: "left", Color: "E0E0E0", Style: 1},
		{Type: "right", Color: "E0E0E0", Style: 1},
		{Type: "bottom", Color: "E0E0E0", Style: 1},
	}

	styles.TitleStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF", Family: "Calibri"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "center",
		},
	})
	if err != nil {
		return styles, err
	}

	// Dark slate header
	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF", Family: "Calibri"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F4F4F"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	styles.BaseStyle, err = fx.NewStyle(&excelize.Style{Border: thin})
	if err != nil {
		return styles, err
	}

	fourDecimals := "0.0000"
	styles.NumberStyle, err = fx.NewStyle(&excelize.Style{
		CustomNumFmt: &fourDecimals,
		Alignment:    &excelize.Alignment{Horizontal: "right"},
		Border:       thin,
	})
	if err != nil {
		return styles, err
	}

	styles.CurrencyStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    7,
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    thin,
	})
	if err != nil {
		return styles, err
	}

	// Values are already in percent, so the format only appends the sign
	percent := `0.00"%"`
	styles.PercentStyle, err = fx.NewStyle(&excelize.Style{
		CustomNumFmt: &percent,
		Alignment:    &excelize.Alignment{Horizontal: "right"},
		Border:       thin,
	})
	if err != nil {
		return styles, err
	}

	dateFmt := "yyyy-mm-dd"
	styles.DateStyle, err = fx.NewStyle(&excelize.Style{
		CustomNumFmt: &dateFmt,
		Alignment:    &excelize.Alignment{Horizontal: "center"},
		Border:       thin,
	})
	if err != nil {
		return styles, err
	}

	styles.BuyStyle, err = fx.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "008000"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"E6FFE6"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thin,
	})
	if err != nil {
		return styles, err
	}

	styles.SellStyle, err = fx.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FF0000"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFE6E6"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thin,
	})
	if err != nil {
		return styles, err
	}

	return styles, nil
}

// writeHeader writes a styled header row and freezes it
func (r *DefaultExcelReporter) writeHeader(fx *excelize.File, sheet string, row int, headers []string, styles ExcelStyles) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		if err := fx.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle); err != nil {
			return err
		}
	}
	topLeft, _ := excelize.CoordinatesToCellName(1, row+1)
	return fx.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      row,
		TopLeftCell: topLeft,
		ActivePane:  "bottomLeft",
	})
}

// setCell writes v with style. Undefined floats become empty cells.
func setCell(fx *excelize.File, sheet string, col, row int, v interface{}, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if f, ok := v.(float64); ok && !indicators.IsDefined(f) {
		v = nil
	}
	if err := fx.SetCellValue(sheet, cell, v); err != nil {
		return err
	}
	return fx.SetCellStyle(sheet, cell, cell, style)
}

func (r *DefaultExcelReporter) writeSummarySheet(fx *excelize.File, out *Output, styles ExcelStyles) error {
	sheet := SheetSummary
	fx.SetColWidth(sheet, "A", "A", 26)
	fx.SetColWidth(sheet, "B", "B", 20)

	fx.MergeCell(sheet, "A1", "B1")
	if err := setCell(fx, sheet, 1, 1, fmt.Sprintf("📊 %s SIGNAL ANALYSIS", out.Symbol), styles.TitleStyle); err != nil {
		return err
	}

	type line struct {
		label string
		value interface{}
		style int
	}
	first, last := out.Series.Bars[0].Date, out.Series.Bars[out.Series.Len()-1].Date
	tops, bottoms := divergence.Count(out.Divergence)
	lines := []line{
		{"Symbol", out.Symbol, styles.BaseStyle},
		{"First Bar", first, styles.DateStyle},
		{"Last Bar", last, styles.DateStyle},
		{"Bars", out.Series.Len(), styles.BaseStyle},
		{"Top Divergences", tops, styles.BaseStyle},
		{"Bottom Divergences", bottoms, styles.BaseStyle},
		{"Significant Divergences", len(out.Significant), styles.BaseStyle},
	}
	if out.Signals != nil {
		counts := signals.Counts(out.Signals)
		for _, rule := range signals.Rules {
			c := counts[rule]
			lines = append(lines, line{rule + " buy/sell", fmt.Sprintf("%d / %d", c[0], c[1]), styles.BaseStyle})
		}
	}
	if res := out.Results; res != nil {
		lines = append(lines,
			line{"Entry Rule", res.EntryRule, styles.BaseStyle},
			line{"Initial Cash", res.InitialCash, styles.CurrencyStyle},
			line{"Final Cash", res.FinalCash, styles.CurrencyStyle},
			line{"Final Equity", res.FinalEquity, styles.CurrencyStyle},
			line{"Total Return", res.TotalReturn, styles.PercentStyle},
			line{"Annualized Return", res.AnnualizedReturn, styles.PercentStyle},
			line{"Max Drawdown", res.MaxDrawdown, styles.PercentStyle},
			line{"Sharpe Ratio", res.SharpeRatio, styles.NumberStyle},
			line{"Profit Factor", res.ProfitFactor, styles.NumberStyle},
			line{"Win Rate", res.WinRate, styles.PercentStyle},
			line{"Trades", res.TotalTrades, styles.BaseStyle},
			line{"Canceled Orders", res.CanceledOrders, styles.BaseStyle},
			line{"Open At End", res.OpenAtEnd, styles.BaseStyle},
		)
	}

	row := 3
	for _, l := range lines {
		if err := setCell(fx, sheet, 1, row, l.label, styles.HeaderStyle); err != nil {
			return err
		}
		if err := setCell(fx, sheet, 2, row, l.value, l.style); err != nil {
			return err
		}
		row++
	}
	return nil
}

func (r *DefaultExcelReporter) writeIndicatorsSheet(fx *excelize.File, out *Output, styles ExcelStyles) error {
	sheet := SheetIndicators
	headers := []string{"Date", "Open", "High", "Low", "Close", "Volume"}
	var columns [][]float64
	if out.Indicators != nil {
		for _, name := range out.Indicators.ColumnNames() {
			col, _ := out.Indicators.Column(name)
			columns = append(columns, col)
			headers = append(headers, name)
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	fx.SetColWidth(sheet, "A", "A", 12)
	fx.SetColWidth(sheet, "B", lastCol, 11)
	if err := r.writeHeader(fx, sheet, 1, headers, styles); err != nil {
		return err
	}

	for i, bar := range out.Series.Bars {
		row := i + 2
		if err := setCell(fx, sheet, 1, row, bar.Date, styles.DateStyle); err != nil {
			return err
		}
		for j, v := range []float64{bar.Open, bar.High, bar.Low, bar.Close, bar.Volume} {
			if err := setCell(fx, sheet, j+2, row, v, styles.NumberStyle); err != nil {
				return err
			}
		}
		for j, col := range columns {
			if err := setCell(fx, sheet, j+7, row, col[i], styles.NumberStyle); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *DefaultExcelReporter) writeSignalsSheet(fx *excelize.File, out *Output, styles ExcelStyles) error {
	sheet := SheetSignals
	headers := []string{"Date", "Close", "Divergence", "Significant"}
	headers = append(headers, signals.Rules...)
	headers = append(headers, "MA Stack")
	fx.SetColWidth(sheet, "A", "A", 12)
	fx.SetColWidth(sheet, "B", "I", 13)
	if err := r.writeHeader(fx, sheet, 1, headers, styles); err != nil {
		return err
	}

	significant := make(map[int]bool, len(out.Significant))
	for _, s := range out.Significant {
		significant[s.Index] = true
	}

	for i, bar := range out.Series.Bars {
		row := i + 2
		if err := setCell(fx, sheet, 1, row, bar.Date, styles.DateStyle); err != nil {
			return err
		}
		if err := setCell(fx, sheet, 2, row, bar.Close, styles.NumberStyle); err != nil {
			return err
		}

		flag := divergence.None
		if i < len(out.Divergence) {
			flag = out.Divergence[i]
		}
		flagStyle := styles.BaseStyle
		switch flag {
		case divergence.Bottom:
			flagStyle = styles.BuyStyle
		case divergence.Top:
			flagStyle = styles.SellStyle
		}
		if err := setCell(fx, sheet, 3, row, flag.String(), flagStyle); err != nil {
			return err
		}
		if err := setCell(fx, sheet, 4, row, significant[i], styles.BaseStyle); err != nil {
			return err
		}

		if out.Signals == nil {
			continue
		}
		for j, rule := range signals.Rules {
			col, _ := out.Signals.Get(rule)
			style := styles.BaseStyle
			switch col[i] {
			case signals.Buy:
				style = styles.BuyStyle
			case signals.Sell:
				style = styles.SellStyle
			}
			if err := setCell(fx, sheet, j+5, row, col[i].String(), style); err != nil {
				return err
			}
		}
		if err := setCell(fx, sheet, len(signals.Rules)+5, row, out.Signals.BullishStack[i], styles.BaseStyle); err != nil {
			return err
		}
	}
	return nil
}

func (r *DefaultExcelReporter) writeTradesSheet(fx *excelize.File, out *Output, styles ExcelStyles) error {
	sheet := SheetTrades
	headers := []string{"#", "Entry Date", "Exit Date", "Entry Price", "Exit Price", "Size", "PnL", "Return", "Bars Held", "Exit Reason"}
	fx.SetColWidth(sheet, "A", "A", 6)
	fx.SetColWidth(sheet, "B", "I", 13)
	fx.SetColWidth(sheet, "J", "J", 16)
	if err := r.writeHeader(fx, sheet, 1, headers, styles); err != nil {
		return err
	}
	if out.Results == nil {
		return nil
	}

	for i, t := range out.Results.Trades {
		row := i + 2
		pnlStyle := styles.BuyStyle
		if t.PnL <= 0 {
			pnlStyle = styles.SellStyle
		}
		values := []struct {
			v     interface{}
			style int
		}{
			{i + 1, styles.BaseStyle},
			{t.EntryDate, styles.DateStyle},
			{t.ExitDate, styles.DateStyle},
			{t.EntryPrice, styles.CurrencyStyle},
			{t.ExitPrice, styles.CurrencyStyle},
			{t.Size, styles.NumberStyle},
			{t.PnL, pnlStyle},
			{t.ReturnPct, styles.PercentStyle},
			{t.BarsHeld, styles.BaseStyle},
			{t.ExitReason, styles.BaseStyle},
		}
		for j, c := range values {
			if err := setCell(fx, sheet, j+1, row, c.v, c.style); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *DefaultExcelReporter) writeEquitySheet(fx *excelize.File, out *Output, styles ExcelStyles) error {
	sheet := SheetEquity
	fx.SetColWidth(sheet, "A", "D", 14)
	if err := r.writeHeader(fx, sheet, 1, []string{"Date", "Cash", "Value", "Exposure"}, styles); err != nil {
		return err
	}
	if out.Results == nil {
		return nil
	}
	for i, p := range out.Results.EquityCurve {
		row := i + 2
		if err := setCell(fx, sheet, 1, row, p.Date, styles.DateStyle); err != nil {
			return err
		}
		if err := setCell(fx, sheet, 2, row, p.Cash, styles.CurrencyStyle); err != nil {
			return err
		}
		if err := setCell(fx, sheet, 3, row, p.Value, styles.CurrencyStyle); err != nil {
			return err
		}
		if err := setCell(fx, sheet, 4, row, p.Exposure, styles.NumberStyle); err != nil {
			return err
		}
	}
	return nil
}
