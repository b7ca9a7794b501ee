package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders trade rows as CSV string.
func RenderCSV(trades []TradeRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("trade_id,sequence,ticker,direction,entry_price,exit_price,quantity,pnl,confidence\n")

	// Rows
	for _, t := range trades {
		sb.WriteString(fmt.Sprintf("%s,%d,%s,%s,%.6f,%.6f,%d,%.6f,%.6f\n",
			t.TradeID,
			t.Sequence,
			t.Ticker,
			t.Direction,
			t.EntryPrice,
			t.ExitPrice,
			t.Quantity,
			t.PnL,
			t.Confidence,
		))
	}

	return sb.String()
}
