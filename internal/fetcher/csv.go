package fetcher

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// DecodeReader wraps r so that its bytes are transcoded to UTF-8.
// Supported encodings: "utf8" (passthrough) and "latin1" (ISO 8859-1,
// used by the annual BAAC exports).
func DecodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", "utf8", "utf-8":
		return r, nil
	case "latin1", "iso-8859-1", "iso8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	default:
		return nil, eris.Errorf("csv: unsupported encoding %q", encoding)
	}
}

// CSVOptions configures the CSV parser.
type CSVOptions struct {
	Delimiter rune   // default ','
	Encoding  string // default utf8
}

// ReadCSV parses a delimited file into a header row and data rows.
// Rows may have a variable number of fields; short rows are padded by the
// caller, not here.
func ReadCSV(ctx context.Context, r io.Reader, opts CSVOptions) ([]string, [][]string, error) {
	decoded, err := DecodeReader(r, opts.Encoding)
	if err != nil {
		return nil, nil, err
	}

	reader := csv.NewReader(decoded)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.ReuseRecord = false

	var header []string
	var rows [][]string
	first := true
	for {
		if ctx.Err() != nil {
			return nil, nil, eris.Wrap(ctx.Err(), "csv: context cancelled")
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, eris.Wrap(err, "csv: read row")
		}

		if first {
			first = false
			header = record
			continue
		}
		rows = append(rows, record)
	}

	if header == nil {
		return nil, nil, eris.New("csv: empty file")
	}

	return header, rows, nil
}
