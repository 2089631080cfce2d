package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/contactkeval/option-mc/internal/montecarlo"
)

// Places is the number of decimals prices are rounded to.
const Places = 4

// Line compares one Monte Carlo price against its closed-form value.
type Line struct {
	Option     string          `json:"option"`
	Price      decimal.Decimal `json:"price"`
	StdErr     decimal.Decimal `json:"std_err"`
	ClosedForm decimal.Decimal `json:"closed_form"`
	Diff       decimal.Decimal `json:"diff"`
}

// Summary is the persisted form of a pricing run.
type Summary struct {
	RunID   string            `json:"run_id,omitempty"`
	Seed    uint64            `json:"seed"`
	Params  montecarlo.Params `json:"params"`
	Elapsed string            `json:"elapsed"`
	Lines   []Line            `json:"lines"`
}

// Summarize rounds res into a Summary.
func Summarize(res *montecarlo.Result, runID string) Summary {
	return Summary{
		RunID:   runID,
		Seed:    res.Seed,
		Params:  res.Params,
		Elapsed: durationString(res.Elapsed),
		Lines: []Line{
			line("call", res.CallPrice, res.CallStdErr, res.Reference.CallPrice),
			line("put", res.PutPrice, res.PutStdErr, res.Reference.PutPrice),
		},
	}
}

func line(option string, price, stdErr, closedForm float64) Line {
	return Line{
		Option:     option,
		Price:      round(price),
		StdErr:     round(stdErr),
		ClosedForm: round(closedForm),
		Diff:       round(price - closedForm),
	}
}

func round(x float64) decimal.Decimal {
	return decimal.NewFromFloat(x).Round(Places)
}

func durationString(d montecarlo.Duration) string {
	b, _ := d.MarshalText()
	return string(b)
}

// WriteJSON writes the rounded summary of res to outdir/price.json.
func WriteJSON(res *montecarlo.Result, runID, outdir string) error {
	b, err := json.MarshalIndent(Summarize(res, runID), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, "price.json"), b, 0644)
}

// WriteCSV writes one row per option to outdir/price.csv.
func WriteCSV(res *montecarlo.Result, outdir string) error {
	f, err := os.Create(filepath.Join(outdir, "price.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	headers := []string{"option", "price", "std_err", "closed_form", "diff", "paths", "steps", "seed"}
	if err := w.Write(headers); err != nil {
		return err
	}
	s := Summarize(res, "")
	for _, l := range s.Lines {
		row := []string{
			l.Option,
			l.Price.StringFixed(Places),
			l.StdErr.StringFixed(Places),
			l.ClosedForm.StringFixed(Places),
			l.Diff.StringFixed(Places),
			strconv.Itoa(s.Params.Paths),
			strconv.Itoa(s.Params.Steps),
			strconv.FormatUint(s.Seed, 10),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
