// Package export serializes ranked trip options for external tooling.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/pverdier/tripsched/core/model"
)

// WriteJSON writes the ranked options to w in JSON format.
func WriteJSON(w io.Writer, ranked []model.RankedBundle) error {
	enc := json.NewEncoder(w)
	return enc.Encode(ranked)
}

// WriteCSV writes the ranked options to w as CSV, best option first.
func WriteCSV(w io.Writer, ranked []model.RankedBundle) error {
	cw := csv.NewWriter(w)
	header := []string{"rank", "start", "end", "nights", "flight_ref", "lodging_ref", "total", "currency", "pto_days", "score"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, rb := range ranked {
		b := rb.Bundle
		total := b.TotalCost()
		rec := []string{
			strconv.Itoa(i + 1),
			b.Window.Start.Format("2006-01-02"),
			b.Window.End.Format("2006-01-02"),
			strconv.Itoa(b.Window.Nights),
			b.Flight.ProviderRef,
			b.Lodging.ProviderRef,
			strconv.FormatFloat(total.Amount, 'f', 2, 64),
			total.Currency,
			strconv.Itoa(int(b.PTO)),
			strconv.FormatFloat(rb.Score, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
