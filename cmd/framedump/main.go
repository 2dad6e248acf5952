// framedump prints the structure of LZ4 frame files as JSON without
// decompressing any payload: descriptor flags, per-block sizes and
// checksums, skippable frames.
package main

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/harshithgowdakt/lz4stream/internal/codec"
)

type blockJSON struct {
	Index     int     `json:"index"`
	Offset    int64   `json:"offset"`
	DataBytes uint32  `json:"data_bytes"`
	Stored    bool    `json:"stored"`
	Checksum  *uint32 `json:"checksum,omitempty"`
}

type frameJSON struct {
	Offset           int64       `json:"offset"`
	Skippable        bool        `json:"skippable,omitempty"`
	SkipBytes        uint32      `json:"skip_bytes,omitempty"`
	Version          int         `json:"version,omitempty"`
	BlockMaxBytes    int         `json:"block_max_bytes,omitempty"`
	Independent      bool        `json:"independent_blocks,omitempty"`
	BlockChecksums   bool        `json:"block_checksums,omitempty"`
	ContentChecksum  bool        `json:"content_checksum,omitempty"`
	ContentSize      *uint64     `json:"content_size,omitempty"`
	HeaderChecksumOK bool        `json:"header_checksum_ok,omitempty"`
	Blocks           []blockJSON `json:"blocks,omitempty"`
	ContentSum       *uint32     `json:"content_checksum_value,omitempty"`
}

type dumpJSON struct {
	File      string      `json:"file"`
	SizeBytes int64       `json:"size_bytes"`
	Frames    []frameJSON `json:"frames"`
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fatalf("usage: framedump <file>")
	}
	path := flag.Arg(0)

	f, err := os.Open(path)
	if err != nil {
		fatalf("open: %v", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		fatalf("stat: %v", err)
	}

	dump := dumpJSON{File: path, SizeBytes: st.Size()}
	var offset int64
	for {
		frame, next, err := walkFrame(f, offset)
		if err == io.EOF {
			break
		}
		if err != nil {
			fatalf("frame at offset %d: %v", offset, err)
		}
		dump.Frames = append(dump.Frames, frame)
		offset = next
	}

	out, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		fatalf("marshal: %v", err)
	}
	fmt.Println(string(out))
}

// walkFrame parses one frame starting at offset and returns its summary and
// the offset of the next frame. io.EOF means a clean end of file.
func walkFrame(f *os.File, offset int64) (frameJSON, int64, error) {
	frame := frameJSON{Offset: offset}

	var word [4]byte
	if _, err := f.ReadAt(word[:], offset); err != nil {
		if err == io.EOF {
			return frame, 0, io.EOF
		}
		return frame, 0, err
	}
	magic := binary.LittleEndian.Uint32(word[:])
	offset += 4

	if codec.IsSkippableMagic(magic) {
		if _, err := f.ReadAt(word[:], offset); err != nil {
			return frame, 0, fmt.Errorf("skippable frame size: %w", err)
		}
		frame.Skippable = true
		frame.SkipBytes = binary.LittleEndian.Uint32(word[:])
		return frame, offset + 4 + int64(frame.SkipBytes), nil
	}
	if magic == codec.LegacyMagic {
		return frame, 0, errors.New("legacy lz4 stream format")
	}
	if magic != codec.FrameMagic {
		return frame, 0, fmt.Errorf("invalid magic 0x%08x", magic)
	}

	// Frame descriptor.
	var desc [19]byte
	if _, err := f.ReadAt(desc[:2], offset); err != nil {
		return frame, 0, fmt.Errorf("descriptor: %w", err)
	}
	flags := codec.Flags(desc[0])
	bd := codec.BlockDesc(desc[1])
	descLen := 2
	if flags.HasContentSize() {
		descLen += 8
	}
	if flags.HasDictID() {
		descLen += 4
	}
	if _, err := f.ReadAt(desc[:descLen+1], offset); err != nil {
		return frame, 0, fmt.Errorf("descriptor: %w", err)
	}

	frame.Version = flags.Version()
	frame.BlockMaxBytes = codec.BlockSizeForIndex(bd.Index())
	frame.Independent = flags.BlockIndependent()
	frame.BlockChecksums = flags.BlockChecksum()
	frame.ContentChecksum = flags.ContentChecksum()
	frame.HeaderChecksumOK = codec.HeaderChecksum(desc[:descLen]) == desc[descLen]
	if flags.HasContentSize() {
		size := binary.LittleEndian.Uint64(desc[2:10])
		frame.ContentSize = &size
	}
	offset += int64(descLen) + 1

	// Blocks.
	for i := 0; ; i++ {
		if _, err := f.ReadAt(word[:], offset); err != nil {
			return frame, 0, fmt.Errorf("block %d length: %w", i, err)
		}
		v := binary.LittleEndian.Uint32(word[:])
		offset += 4
		if v == 0 {
			break
		}
		b := blockJSON{
			Index:     i,
			Offset:    offset - 4,
			DataBytes: v &^ (1 << 31),
			Stored:    v&(1<<31) != 0,
		}
		offset += int64(b.DataBytes)
		if flags.BlockChecksum() {
			if _, err := f.ReadAt(word[:], offset); err != nil {
				return frame, 0, fmt.Errorf("block %d checksum: %w", i, err)
			}
			sum := binary.LittleEndian.Uint32(word[:])
			b.Checksum = &sum
			offset += 4
		}
		frame.Blocks = append(frame.Blocks, b)
	}

	if flags.ContentChecksum() {
		if _, err := f.ReadAt(word[:], offset); err != nil {
			return frame, 0, fmt.Errorf("content checksum: %w", err)
		}
		sum := binary.LittleEndian.Uint32(word[:])
		frame.ContentSum = &sum
		offset += 4
	}
	return frame, offset, nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "framedump: "+format+"\n", args...)
	os.Exit(1)
}
