// Package report renders extraction results into spreadsheets for the
// research team.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/model"
	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/store"
)

var excelHeader = []string{
	"Empresa", "Setor", "Site", "AUM", "Moeda", "Texto original",
	"Confiança", "Método", "Fonte", "Extraído em",
}

// WriteExcel renders the latest AUM per company into an .xlsx file under
// dir. It returns the path of the written file, which carries a date stamp
// so successive exports do not overwrite each other.
func WriteExcel(dir string, latest []store.LatestAum) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrap(err, "report: create export dir")
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("AUM")
	if err != nil {
		return "", eris.Wrap(err, "report: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range excelHeader {
		header.AddCell().SetString(h)
	}

	for _, la := range latest {
		row := sheet.AddRow()
		row.AddCell().SetString(la.Company.Name)
		row.AddCell().SetString(la.Company.Sector)
		row.AddCell().SetString(la.Company.SiteURL)

		snap := la.Snapshot
		if snap == nil {
			row.AddCell().SetString(model.NotAvailable)
			for i := 0; i < len(excelHeader)-4; i++ {
				row.AddCell().SetString("")
			}
			continue
		}

		if snap.Value != nil {
			row.AddCell().SetFloat(*snap.Value)
		} else {
			row.AddCell().SetString(model.NotAvailable)
		}
		row.AddCell().SetString(string(snap.Currency))
		row.AddCell().SetString(snap.RawText)
		row.AddCell().SetFloat(snap.Confidence)
		row.AddCell().SetString(string(snap.Method))
		row.AddCell().SetString(snap.SourceType)
		row.AddCell().SetString(snap.CreatedAt.UTC().Format(time.RFC3339))
	}

	path := filepath.Join(dir, fmt.Sprintf("aum_%s.xlsx", time.Now().UTC().Format("2006-01-02")))
	if err := f.Save(path); err != nil {
		return "", eris.Wrap(err, "report: save excel")
	}
	return path, nil
}
