package backend

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/tsawler/tabula"
	tabtext "github.com/tsawler/tabula/text"

	"github.com/rezonia/invoice-extractor/internal/model"
)

// yTolerance is the vertical distance within which two fragments count as
// the same table row, in PDF points.
const yTolerance = 3.0

// TabulaTable reconstructs table rows from positioned text fragments.
// Fragments sharing a vertical position form one row, cells ordered left
// to right; rows run top to bottom in page order.
type TabulaTable struct {
	logger *slog.Logger
}

// NewTabulaTable creates the table backend.
func NewTabulaTable(logger *slog.Logger) *TabulaTable {
	if logger == nil {
		logger = slog.Default()
	}
	return &TabulaTable{logger: logger}
}

// ExtractTable returns the document's reconstructed rows across all pages.
func (t *TabulaTable) ExtractTable(ctx context.Context, doc model.DocumentRef) ([]model.TableRow, error) {
	ext := tabula.Open(string(doc))
	count, err := ext.PageCount()
	if err != nil {
		ext.Close()
		return nil, err
	}
	ext.Close()

	var rows []model.TableRow
	for p := 1; p <= count; p++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frags, _, err := tabula.Open(string(doc)).Pages(p).Fragments()
		if err != nil {
			return nil, err
		}
		pageRows := groupRows(frags)
		t.logger.Debug("table rows reconstructed", "document", doc, "page", p, "rows", len(pageRows))
		rows = append(rows, pageRows...)
	}
	return rows, nil
}

// groupRows clusters fragments of one page into rows. PDF coordinates put
// the page top at the highest Y, so rows sort by descending Y to get
// reading order; cells within a row sort by ascending X.
func groupRows(frags []tabtext.TextFragment) []model.TableRow {
	kept := make([]tabtext.TextFragment, 0, len(frags))
	for _, f := range frags {
		if strings.TrimSpace(f.Text) != "" {
			kept = append(kept, f)
		}
	}
	if len(kept) == 0 {
		return nil
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Y > kept[j].Y })

	var clusters [][]tabtext.TextFragment
	current := []tabtext.TextFragment{kept[0]}
	for _, f := range kept[1:] {
		if current[len(current)-1].Y-f.Y <= yTolerance {
			current = append(current, f)
		} else {
			clusters = append(clusters, current)
			current = []tabtext.TextFragment{f}
		}
	}
	clusters = append(clusters, current)

	rows := make([]model.TableRow, 0, len(clusters))
	for _, cluster := range clusters {
		sort.SliceStable(cluster, func(i, j int) bool { return cluster[i].X < cluster[j].X })
		row := make(model.TableRow, 0, len(cluster))
		for _, f := range cluster {
			row = append(row, strings.TrimSpace(f.Text))
		}
		rows = append(rows, row)
	}
	return rows
}
