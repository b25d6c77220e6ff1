// Command dataset-to-parquet converts a dataset JSONL file to Parquet,
// streaming rows so arbitrarily large datasets fit in memory. Each row gets
// a generated id of the form <prefix><row-index>.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

type datasetRow struct {
	Id   string  `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Text *string `parquet:"name=text, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
}

// inputRecord accepts the dataset's historical column name as well as plain
// "text".
type inputRecord struct {
	ExpandedText *string `json:"expanded_text"`
	Text         *string `json:"text"`
}

const maxLineBytes = 64 << 20

func main() {
	var (
		inputPath   = flag.String("input", "", "dataset JSONL file (required)")
		outputPath  = flag.String("output", "", "output Parquet file (defaults to input with .parquet)")
		batchSize   = flag.Int("batch-size", 50000, "rows per Parquet row group")
		compression = flag.String("compression", "snappy", "compression codec: snappy, gzip or zstd")
		idPrefix    = flag.String("id-prefix", "wiki_expanded_", "prefix for generated row ids")
	)
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: dataset-to-parquet -input dataset.jsonl [-output dataset.parquet]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	out := *outputPath
	if out == "" {
		out = strings.TrimSuffix(*inputPath, ".jsonl") + ".parquet"
	}

	if err := convert(*inputPath, out, *batchSize, *compression, *idPrefix); err != nil {
		log.Fatalf("dataset-to-parquet: %v", err)
	}
}

func codec(name string) (parquet.CompressionCodec, error) {
	switch name {
	case "snappy":
		return parquet.CompressionCodec_SNAPPY, nil
	case "gzip":
		return parquet.CompressionCodec_GZIP, nil
	case "zstd":
		return parquet.CompressionCodec_ZSTD, nil
	}
	return 0, fmt.Errorf("unknown compression codec %q", name)
}

func convert(inputPath, outputPath string, batchSize int, compression, idPrefix string) error {
	comp, err := codec(compression)
	if err != nil {
		return err
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	in, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	fw, err := local.NewLocalFileWriter(outputPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(datasetRow), 1)
	if err != nil {
		return fmt.Errorf("creating Parquet writer: %w", err)
	}
	pw.CompressionType = comp

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	rows := 0
	pending := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec inputRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return fmt.Errorf("row %d: %w", rows, err)
		}

		text := rec.ExpandedText
		if text == nil {
			text = rec.Text
		}

		row := datasetRow{Id: idPrefix + strconv.Itoa(rows), Text: text}
		if err := pw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", rows, err)
		}
		rows++
		pending++

		if pending >= batchSize {
			if err := pw.Flush(true); err != nil {
				return fmt.Errorf("flushing row group at row %d: %w", rows, err)
			}
			pending = 0
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}

	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finalizing Parquet file: %w", err)
	}

	log.Printf("wrote %d rows to %s (%s)", rows, outputPath, compression)
	return nil
}
