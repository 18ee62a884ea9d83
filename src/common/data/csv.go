package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/jack-barr3tt/gbr-punctuality/src/common/types"
)

// WriteTrainDataCSV writes a header row followed by one row per record.
// Null values become empty cells.
func WriteTrainDataCSV(path string, records []types.TrainData) error {
	return writeFile(path, func(w io.Writer) error {
		return EncodeTrainDataCSV(w, records)
	})
}

func WriteReconciledCSV(path string, records []types.ReconciledTrainData) error {
	return writeFile(path, func(w io.Writer) error {
		return EncodeReconciledCSV(w, records)
	})
}

func EncodeTrainDataCSV(w io.Writer, records []types.TrainData) error {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, types.TrainDataColumns)
	for _, r := range records {
		rows = append(rows, cells(r.Values()))
	}
	return csv.NewWriter(w).WriteAll(rows)
}

func EncodeReconciledCSV(w io.Writer, records []types.ReconciledTrainData) error {
	header := append(append([]string{}, types.TrainDataColumns...), types.ReconciledColumns...)

	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, header)
	for _, r := range records {
		rows = append(rows, cells(append(r.Values(), r.DerivedValues()...)))
	}
	return csv.NewWriter(w).WriteAll(rows)
}

func cells(values []*string) []string {
	row := make([]string, len(values))
	for i, v := range values {
		if v != nil {
			row[i] = *v
		}
	}
	return row
}

func writeFile(path string, encode func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := encode(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
