// Package export serializes OCR records to text, JSON, and CSV.
//
// The JSON field names and nesting and the CSV column order are an
// external contract shared with other tools that consume grabtext
// output; changing them breaks downstream parsers.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rouri404/grabtext/internal/batch"
	"github.com/rouri404/grabtext/internal/record"
)

// Writer serializes single records and batch results. The version string
// is stamped into the processing_info and batch_info sections.
type Writer struct {
	version string
	now     func() time.Time
}

// NewWriter returns a writer stamping version into its output.
func NewWriter(version string) *Writer {
	return &Writer{version: version, now: time.Now}
}

type metadataDoc struct {
	Filename      string `json:"filename"`
	Filepath      string `json:"filepath"`
	FileSizeBytes int64  `json:"file_size_bytes"`
	FileModified  string `json:"file_modified"`
	ImageWidth    int    `json:"image_width"`
	ImageHeight   int    `json:"image_height"`
	ImageFormat   string `json:"image_format"`
	ImageMode     string `json:"image_mode"`
}

type ocrDoc struct {
	Text                string  `json:"text"`
	WordCount           int     `json:"word_count"`
	CharCount           int     `json:"char_count"`
	AvgConfidence       float64 `json:"avg_confidence"`
	LanguageUsed        string  `json:"language_used"`
	HasText             bool    `json:"has_text"`
	ProcessingTimestamp string  `json:"processing_timestamp"`
}

type processingInfoDoc struct {
	GrabtextVersion string `json:"grabtext_version"`
	ProcessedAt     string `json:"processed_at"`
}

type singleDoc struct {
	Metadata       metadataDoc       `json:"metadata"`
	Ocr            ocrDoc            `json:"ocr"`
	ProcessingInfo processingInfoDoc `json:"processing_info"`
}

type batchInfoDoc struct {
	TotalFiles            int    `json:"total_files"`
	ProcessedAt           string `json:"processed_at"`
	Directory             string `json:"directory"`
	Recursive             bool   `json:"recursive"`
	GrabtextVersion       string `json:"grabtext_version"`
	SuccessfullyProcessed int    `json:"successfully_processed"`
}

type batchDoc struct {
	BatchInfo batchInfoDoc `json:"batch_info"`
	Results   []singleDoc  `json:"results"`
}

func (w *Writer) singleDoc(rec *record.OcrRecord, processedAt time.Time) singleDoc {
	return singleDoc{
		Metadata: metadataDoc{
			Filename:      rec.Filename,
			Filepath:      rec.Filepath,
			FileSizeBytes: rec.FileSizeBytes,
			FileModified:  rec.FileModified.Format(time.RFC3339),
			ImageWidth:    rec.Width,
			ImageHeight:   rec.Height,
			ImageFormat:   rec.Format,
			ImageMode:     rec.ColorMode,
		},
		Ocr: ocrDoc{
			Text:                rec.Text,
			WordCount:           rec.WordCount,
			CharCount:           rec.CharCount,
			AvgConfidence:       rec.AvgConfidence,
			LanguageUsed:        string(rec.LanguageUsed),
			HasText:             rec.HasText,
			ProcessingTimestamp: rec.ProcessingTimestamp.Format(time.RFC3339),
		},
		ProcessingInfo: processingInfoDoc{
			GrabtextVersion: w.version,
			ProcessedAt:     processedAt.Format(time.RFC3339),
		},
	}
}

// WriteSingle serializes one record to out in the given format. Text
// output is the extracted text followed by a newline.
func (w *Writer) WriteSingle(out io.Writer, rec *record.OcrRecord, format Format) error {
	switch format {
	case FormatText:
		_, err := io.WriteString(out, rec.Text+"\n")
		return err
	case FormatJSON:
		return encodeJSON(out, w.singleDoc(rec, w.now()))
	case FormatCSV:
		return writeCSV(out, []record.OcrRecord{*rec})
	default:
		return &UnsupportedFormatError{Token: string(format)}
	}
}

// WriteBatch serializes a batch result to out. Text output is one
// record's text per line in record order.
func (w *Writer) WriteBatch(out io.Writer, result *batch.BatchResult, format Format) error {
	switch format {
	case FormatText:
		for i := range result.Records {
			if _, err := io.WriteString(out, result.Records[i].Text+"\n"); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		doc := batchDoc{
			BatchInfo: batchInfoDoc{
				TotalFiles:            result.TotalFiles,
				ProcessedAt:           result.ProcessedAt.Format(time.RFC3339),
				Directory:             result.Directory,
				Recursive:             result.Recursive,
				GrabtextVersion:       w.version,
				SuccessfullyProcessed: result.SuccessfullyProcessed,
			},
			Results: make([]singleDoc, 0, len(result.Records)),
		}
		for i := range result.Records {
			doc.Results = append(doc.Results, w.singleDoc(&result.Records[i], result.ProcessedAt))
		}
		return encodeJSON(out, doc)
	case FormatCSV:
		return writeCSV(out, result.Records)
	default:
		return &UnsupportedFormatError{Token: string(format)}
	}
}

// ExportSingle writes one record to path, atomically.
func (w *Writer) ExportSingle(path string, rec *record.OcrRecord, format Format) error {
	return w.place(path, func(out io.Writer) error {
		return w.WriteSingle(out, rec, format)
	})
}

// ExportBatch writes a batch result to path, atomically.
func (w *Writer) ExportBatch(path string, result *batch.BatchResult, format Format) error {
	return w.place(path, func(out io.Writer) error {
		return w.WriteBatch(out, result, format)
	})
}

// place writes through a temp file in the destination directory and
// renames it into the final path, so a failure never leaves a partial
// or truncated export behind.
func (w *Writer) place(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".grabtext-export-*")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := write(tmp); err != nil {
		var formatErr *UnsupportedFormatError
		if errors.As(err, &formatErr) {
			return err
		}
		return &WriteError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

func encodeJSON(out io.Writer, doc any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

// csvColumns is the fixed export column order.
var csvColumns = []string{
	"filename", "filepath", "file_size_bytes", "file_modified",
	"image_width", "image_height", "image_format", "image_mode",
	"text", "word_count", "char_count", "avg_confidence",
	"language_used", "has_text", "processing_timestamp",
}

// CSVStream appends rows one record at a time, for callers that produce
// records incrementally. The header is written before the first row.
type CSVStream struct {
	cw      *csv.Writer
	started bool
}

// NewCSVStream returns a stream writing to out.
func NewCSVStream(out io.Writer) *CSVStream {
	return &CSVStream{cw: csv.NewWriter(out)}
}

// Write appends one record row, flushing it to the destination.
func (s *CSVStream) Write(rec *record.OcrRecord) error {
	if !s.started {
		if err := s.cw.Write(csvColumns); err != nil {
			return err
		}
		s.started = true
	}
	if err := s.cw.Write(csvRow(rec)); err != nil {
		return err
	}
	s.cw.Flush()
	return s.cw.Error()
}

func writeCSV(out io.Writer, records []record.OcrRecord) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(csvColumns); err != nil {
		return err
	}
	for i := range records {
		if err := cw.Write(csvRow(&records[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(rec *record.OcrRecord) []string {
	return []string{
		rec.Filename,
		rec.Filepath,
		strconv.FormatInt(rec.FileSizeBytes, 10),
		rec.FileModified.Format(time.RFC3339),
		strconv.Itoa(rec.Width),
		strconv.Itoa(rec.Height),
		rec.Format,
		rec.ColorMode,
		rec.Text,
		strconv.Itoa(rec.WordCount),
		strconv.Itoa(rec.CharCount),
		strconv.FormatFloat(rec.AvgConfidence, 'f', 2, 64),
		string(rec.LanguageUsed),
		strconv.FormatBool(rec.HasText),
		rec.ProcessingTimestamp.Format(time.RFC3339),
	}
}
