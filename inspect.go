package npk

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
)

// csvColumns are the columns written by WriteCSV.
var csvColumns = []string{
	"file_num", "name_hash", "file_offset", "compressed_size", "uncompressed_size",
	"field_20", "field_24", "field_32", "field_33", "field_34", "field_35",
	"compress_type", "encrypt_type", "large_file_offset",
}

// WriteHeader prints the header fields as a small text block.
func (c *Container) WriteHeader(w io.Writer) error {
	h := c.header
	_, err := fmt.Fprintf(w, `-------- NPK HEADER --------
 npk_size:   %d (%s)
 nb_files:   %d
 map_offset: %d
 info_size:  %d
 version:    %d
 large_file_index_offset: %d
----------------------------
`,
		h.TotalSize, humanize.IBytes(h.TotalSize),
		h.EntryCount,
		h.MapOffset,
		h.RecordSize,
		h.Version,
		h.LargeFileIndexOffset,
	)
	return err
}

// WriteCSV writes the entry map as CSV, one row per entry in map order.
//
// v1 records have no field_20 or field_32..35; those cells are empty and the
// reserved 64-bit v1 field is written as field_24.
func (c *Container) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return err
	}
	for _, e := range c.entries {
		if err := cw.Write(csvRow(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(e Entry) []string {
	u := func(v uint64) string { return strconv.FormatUint(v, 10) }

	row := []string{
		strconv.Itoa(e.Index),
		u(e.NameHash),
		u(uint64(e.Offset)),
		u(uint64(e.CompressedSize)),
		u(uint64(e.UncompressedSize)),
		"", "", "", "", "", "",
		u(uint64(e.CompressionCode)),
		u(uint64(e.EncryptionCode)),
		u(uint64(e.LargeOffset)),
	}
	if e.Version == V1 {
		row[6] = u(e.Field16)
		return row
	}
	row[5] = u(uint64(e.Field20))
	row[6] = u(e.Field24)
	row[7] = u(uint64(e.Field32))
	row[8] = u(uint64(e.Field33))
	row[9] = u(uint64(e.Field34))
	row[10] = u(uint64(e.Field35))
	return row
}
