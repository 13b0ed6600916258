// Package source reads the columnar player export wholesale into a raw grid.
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/pkg/logger"
	"github.com/okian/scout/pkg/metrics"
)

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithSheet selects the workbook sheet. Empty picks the first sheet with a
// header row.
func WithSheet(name string) Option {
	return func(l *Loader) {
		l.sheet = strings.TrimSpace(name)
	}
}

// WithVersion pins the version string. Empty derives it from the file's
// modification time and size.
func WithVersion(v string) Option {
	return func(l *Loader) {
		l.version = strings.TrimSpace(v)
	}
}

// WithDelimiter sets the CSV field delimiter.
func WithDelimiter(r rune) Option {
	return func(l *Loader) {
		if r != 0 {
			l.delimiter = r
		}
	}
}

// WithIdentityColumns sets the identity columns the source must carry.
func WithIdentityColumns(c model.IdentityColumns) Option {
	return func(l *Loader) {
		l.columns = c.WithDefaults()
	}
}

// WithLogger sets a custom logger for the loader.
func WithLogger(lg logger.Logger) Option {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// Loader reads one source file.
type Loader struct {
	path      string
	sheet     string
	version   string
	delimiter rune
	columns   model.IdentityColumns
	logger    logger.Logger
}

// NewLoader constructs a loader for path.
func NewLoader(path string, opts ...Option) *Loader {
	l := &Loader{
		path:      path,
		delimiter: ',',
		columns:   model.DefaultIdentityColumns(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Identity returns the absolute source path and its current version.
func (l *Loader) Identity() (src, version string, err error) {
	src, err = filepath.Abs(l.path)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrSourceLoad, err)
	}
	if l.version != "" {
		return src, l.version, nil
	}
	fi, err := os.Stat(src)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrSourceLoad, err)
	}
	return src, fmt.Sprintf("%s-%d", fi.ModTime().UTC().Format(time.RFC3339Nano), fi.Size()), nil
}

// Load reads the whole file. It either returns a complete table or an error
// wrapping ErrSourceLoad.
func (l *Loader) Load(ctx context.Context) (*model.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, l.fail(ctx, err)
	}
	start := time.Now()

	var (
		rows [][]string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(l.path)); ext {
	case ".xlsx", ".xlsm":
		rows, err = l.readWorkbook()
	case ".csv":
		rows, err = l.readCSV()
	default:
		err = fmt.Errorf("%q: %w", ext, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, l.fail(ctx, err)
	}

	raw, err := l.table(rows)
	if err != nil {
		return nil, l.fail(ctx, err)
	}
	l.log().Info(ctx, "source loaded",
		logger.String("path", l.path),
		logger.Int("rows", len(raw.Rows)),
		logger.Int("columns", len(raw.Header)),
		logger.Duration("duration", time.Since(start)),
	)
	return raw, nil
}

func (l *Loader) log() logger.Logger {
	if l.logger == nil {
		l.logger = logger.Named("source")
	}
	return l.logger
}

func (l *Loader) fail(ctx context.Context, err error) error {
	metrics.RecordSourceLoadFailure()
	l.log().Error(ctx, "source load failed", logger.String("path", l.path), logger.Error(err))
	if errors.Is(err, ErrSourceLoad) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrSourceLoad, err)
}

func (l *Loader) readWorkbook() ([][]string, error) {
	f, err := excelize.OpenFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	opts := excelize.Options{RawCellValue: true}
	if l.sheet != "" {
		if idx, err := f.GetSheetIndex(l.sheet); err != nil || idx < 0 {
			return nil, fmt.Errorf("%q: %w", l.sheet, ErrSheetNotFound)
		}
		return f.GetRows(l.sheet, opts)
	}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, opts)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		if headerIndex(rows) >= 0 {
			return rows, nil
		}
	}
	return nil, ErrNoHeader
}

func (l *Loader) readCSV() ([][]string, error) {
	fh, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer fh.Close()

	r := csv.NewReader(fh)
	r.Comma = l.delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		rows = append(rows, rec)
	}
}

// table takes the first non-empty row as header and drops blank rows.
func (l *Loader) table(rows [][]string) (*model.RawTable, error) {
	h := headerIndex(rows)
	if h < 0 {
		return nil, ErrNoHeader
	}
	header := make([]string, len(rows[h]))
	for i, name := range rows[h] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	}
	raw := &model.RawTable{Header: header}

	var missing []string
	for _, name := range l.columns.Names() {
		if raw.Index(name) < 0 {
			missing = append(missing, strconv.Quote(name))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	for _, row := range rows[h+1:] {
		if blank(row) {
			continue
		}
		raw.Rows = append(raw.Rows, row)
	}
	return raw, nil
}

func headerIndex(rows [][]string) int {
	for i, row := range rows {
		if !blank(row) {
			return i
		}
	}
	return -1
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
