// Package reader implements the OPAT Container Reader: it turns a byte
// buffer laid out per the format package into the immutable model.File tree
// the rest of the module operates on. A file is read eagerly and in full at
// Open time; nothing in this package performs I/O afterward.
package reader

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/4D-STAR/opat-core/format"
	"github.com/4D-STAR/opat-core/internal/errs"
	"github.com/4D-STAR/opat-core/model"
	"github.com/4D-STAR/opat-core/paramkey"
)

// Config controls how Open parses a container.
type Config struct {
	// MaxConcurrency bounds how many data cards are parsed in parallel.
	// Zero means runtime.GOMAXPROCS(0).
	MaxConcurrency int
	// VerifyChecksums enables per-card SHA-256 verification against the
	// catalog's stored digest.
	VerifyChecksums bool
	// Logger receives structured progress and error records. A nil
	// Logger discards everything.
	Logger *slog.Logger
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.Logger
}

// OpenFile reads path in full and parses it as an OPAT container.
func OpenFile(path string, cfg Config) (*model.File, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reader: reading %s: %w: %w", path, errs.ErrIO, err)
	}
	f, err := Open(buf, cfg)
	if err != nil {
		return nil, fmt.Errorf("reader: parsing %s: %w", path, err)
	}
	return f, nil
}

// Open parses an already-loaded byte buffer as an OPAT container.
func Open(buf []byte, cfg Config) (*model.File, error) {
	log := cfg.logger()

	header, err := format.ReadFileHeader(bytes.NewReader(buf))
	if err != nil {
		if errors.Is(err, format.ErrBadMagic) {
			return nil, &errs.FormatError{Offset: 0, Reason: "bad magic number"}
		}
		if errors.Is(err, format.ErrTruncated) {
			return nil, fmt.Errorf("reader: file header: %w", errs.ErrTruncatedFile)
		}
		return nil, err
	}
	if err := header.Validate(); err != nil {
		return nil, &errs.FormatError{Offset: 0, Reason: err.Error()}
	}

	entrySize := uint64(format.CardCatalogEntrySize(int(header.NumDimensions)))
	if header.CatalogOffset+header.CatalogCount*entrySize > uint64(len(buf)) {
		return nil, fmt.Errorf("reader: catalog: %w", errs.ErrTruncatedFile)
	}

	catalog, err := format.ReadCardCatalog(
		bytes.NewReader(buf[header.CatalogOffset:]),
		header.CatalogCount,
		int(header.NumDimensions),
	)
	if err != nil {
		if errors.Is(err, format.ErrTruncated) {
			return nil, fmt.Errorf("reader: catalog: %w", errs.ErrTruncatedFile)
		}
		return nil, err
	}

	cards := make([]*model.DataCard, len(catalog))
	concurrency := cfg.MaxConcurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	g := new(errgroup.Group)
	g.SetLimit(concurrency)
	for i, entry := range catalog {
		i, entry := i, entry
		g.Go(func() error {
			card, err := parseCard(buf, i, entry, int(header.Precision), cfg.VerifyChecksums)
			if err != nil {
				return fmt.Errorf("card %d: %w", i, err)
			}
			cards[i] = card
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	file, err := model.NewFile(uint32(header.Version), int(header.NumDimensions), int(header.Precision), cards)
	if err != nil {
		return nil, err
	}
	log.Info("opened container", "cards", len(cards), "dimensions", header.NumDimensions)
	return file, nil
}

func parseCard(buf []byte, cardIndex int, entry format.CardCatalogEntry, precision int, verify bool) (*model.DataCard, error) {
	if entry.CardOffset+entry.CardSize > uint64(len(buf)) {
		return nil, fmt.Errorf("reader: card extends past end of file: %w", errs.ErrTruncatedFile)
	}
	cardBytes := buf[entry.CardOffset : entry.CardOffset+entry.CardSize]

	if verify {
		sum := sha256.Sum256(cardBytes)
		if sum != entry.Checksum {
			return nil, &errs.ChecksumError{CardIndex: cardIndex, Expected: entry.Checksum, Actual: sum}
		}
	}

	r := bytes.NewReader(cardBytes)
	cardHeader, err := format.ReadCardHeader(r)
	if err != nil {
		if errors.Is(err, format.ErrTruncated) {
			return nil, fmt.Errorf("reader: card header: %w", errs.ErrTruncatedFile)
		}
		return nil, err
	}
	tableIndex, err := format.ReadTableIndex(r, cardHeader.NumTables)
	if err != nil {
		if errors.Is(err, format.ErrTruncated) {
			return nil, fmt.Errorf("reader: table index: %w", errs.ErrTruncatedFile)
		}
		return nil, err
	}

	tables := make(map[string]*model.Table, len(tableIndex))
	tags := make([]string, len(tableIndex))
	for i, ti := range tableIndex {
		tag := format.TagString(ti.Tag)
		// DataOffset/DataSize are relative to the card's own byteStart, so
		// they index directly into cardBytes with no further adjustment.
		start := int(ti.DataOffset)
		end := start + int(ti.DataSize)
		if end > len(cardBytes) {
			return nil, fmt.Errorf("reader: table %q extends past end of card: %w", tag, errs.ErrTruncatedFile)
		}

		values, err := format.DecodeFloat64Slice(cardBytes[start:end])
		if err != nil {
			return nil, fmt.Errorf("table %q: %w", tag, err)
		}

		numRows := int(ti.NumRows)
		numCols := int(ti.NumCols)
		vectorSize := int(ti.VectorSize)
		axisLen := numRows + numCols
		if len(values) < axisLen {
			return nil, fmt.Errorf("reader: table %q axis data truncated: %w", tag, errs.ErrTruncatedFile)
		}
		rowAxis := values[:numRows]
		colAxis := values[numRows:axisLen]
		data := values[axisLen:]

		table, err := model.NewTable(tag, rowAxis, colAxis, vectorSize, data)
		if err != nil {
			return nil, err
		}
		tables[tag] = table
		tags[i] = tag
	}

	key, err := paramkey.New(entry.KeyValues, precision)
	if err != nil {
		return nil, fmt.Errorf("card key: %w", err)
	}

	return model.NewDataCard(key, tables, tags), nil
}
