package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
)

// WriteCSV creates or truncates path and writes the header followed by rows.
func WriteCSV(path string, header []string, rows [][]string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		file.Close()
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		if err := writer.Write(row); err != nil {
			file.Close()
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}

	return file.Close()
}
