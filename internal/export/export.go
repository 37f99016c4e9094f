// Package export writes stored results as JSON or XLSX.
package export

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/oficio-cli/internal/model"
)

// WriteJSON writes results as one indented JSON array.
func WriteJSON(w io.Writer, results []model.Result) error {
	if results == nil {
		results = []model.Result{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return eris.Wrap(enc.Encode(results), "export: encode json")
}

// WriteJSONDir writes one file per result at <dir>/<tax id>/<name>.json,
// where name is the case number when fields were extracted and the PDF's
// base name otherwise. It returns the paths written.
func WriteJSONDir(dir string, results []model.Result) ([]string, error) {
	var paths []string
	for i := range results {
		r := &results[i]
		sub := filepath.Join(dir, safeName(r.TaxID))
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return paths, eris.Wrapf(err, "export: mkdir %s", sub)
		}

		path := filepath.Join(sub, fileName(r)+".json")
		b, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return paths, eris.Wrapf(err, "export: marshal %s", r.Document)
		}
		if err := os.WriteFile(path, b, 0o644); err != nil {
			return paths, eris.Wrapf(err, "export: write %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func fileName(r *model.Result) string {
	if r.Fields != nil && r.Fields.ProcessoOrigem != "" {
		return safeName(r.Fields.ProcessoOrigem)
	}
	return safeName(strings.TrimSuffix(filepath.Base(r.Document), filepath.Ext(r.Document)))
}

func safeName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, s)
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return s
}
