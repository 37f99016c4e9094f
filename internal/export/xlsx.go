package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/oficio-cli/internal/model"
)

// SheetName is the worksheet WriteXLSX creates.
const SheetName = "oficios"

type column struct {
	header string
	value  func(r *model.Result) string
}

var columns = []column{
	{"documento", func(r *model.Result) string { return r.Document }},
	{"cpf", func(r *model.Result) string { return r.TaxID }},
	{"oficio_localizado", func(r *model.Result) string { return boolCell(r.IdentityMatched) }},
	{"paginas_oficio", func(r *model.Result) string { return intsCell(r.SelectedLetterPages) }},
	{"paginas_anexo_ii", func(r *model.Result) string { return intsCell(r.AnnexPages) }},
	{"pagina_processamento", func(r *model.Result) string { return zeroBlank(r.StatusPage) }},
	{"numero_ordem", func(r *model.Result) string { return r.OrderNumber }},
	{"origem_numero_ordem", func(r *model.Result) string { return r.OrderNumberSource }},
	{"rejeitado", func(r *model.Result) string { return boolCell(r.Rejected) }},
	{"motivo_rejeicao", func(r *model.Result) string { return r.RejectionReason }},
	{"revisao_manual", func(r *model.Result) string { return boolCell(r.NeedsReview) }},
	{"motivo_revisao", func(r *model.Result) string { return r.ReviewReason }},
	{"processo_origem", fieldText(func(f *model.Fields) *string { return &f.ProcessoOrigem })},
	{"requerente", fieldText(func(f *model.Fields) *string { return &f.RequerenteCaps })},
	{"banco", fieldText(func(f *model.Fields) *string { return f.Banco })},
	{"agencia", fieldText(func(f *model.Fields) *string { return f.Agencia })},
	{"conta", fieldText(func(f *model.Fields) *string { return f.Conta })},
	{"valor_principal_liquido", fieldAmount(func(f *model.Fields) *float64 { return f.ValorPrincipalLiquido })},
	{"valor_total_requisitado", fieldAmount(func(f *model.Fields) *float64 { return f.ValorTotalRequisitado })},
	{"erro", func(r *model.Result) string { return r.Error }},
	{"processado_em", func(r *model.Result) string {
		if r.ProcessedAt.IsZero() {
			return ""
		}
		return r.ProcessedAt.UTC().Format(time.RFC3339)
	}},
}

// Headers returns the XLSX header row.
func Headers() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.header
	}
	return out
}

// WriteXLSX writes results to a new workbook at path, one row per result.
func WriteXLSX(path string, results []model.Result) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range Headers() {
		header.AddCell().SetString(h)
	}

	for i := range results {
		row := sheet.AddRow()
		for _, c := range columns {
			row.AddCell().SetString(c.value(&results[i]))
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "xlsx: save %s", path)
	}
	return nil
}

// ReadXLSX reads every row of the first sheet of the workbook at path.
func ReadXLSX(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("xlsx: %s has no sheets", path)
	}

	var rows [][]string
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func boolCell(b bool) string {
	if b {
		return "sim"
	}
	return "não"
}

func intsCell(ns []int) string {
	s := make([]string, len(ns))
	for i, n := range ns {
		s[i] = strconv.Itoa(n)
	}
	return strings.Join(s, ",")
}

func zeroBlank(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func fieldText(get func(*model.Fields) *string) func(*model.Result) string {
	return func(r *model.Result) string {
		if r.Fields == nil {
			return ""
		}
		if v := get(r.Fields); v != nil {
			return *v
		}
		return ""
	}
}

func fieldAmount(get func(*model.Fields) *float64) func(*model.Result) string {
	return func(r *model.Result) string {
		if r.Fields == nil {
			return ""
		}
		if v := get(r.Fields); v != nil {
			return strconv.FormatFloat(*v, 'f', 2, 64)
		}
		return ""
	}
}
