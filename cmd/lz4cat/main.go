// lz4cat compresses or decompresses LZ4 frames between files or standard
// streams, in the spirit of the lz4 command line tool.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/readahead"

	"github.com/harshithgowdakt/lz4stream"
)

func main() {
	decompress := flag.Bool("d", false, "decompress instead of compress")
	output := flag.String("o", "", "output file (default stdout)")
	level := flag.String("level", "fast", "compression level: fast, min, default, optmin, max")
	block := flag.String("block", "4mb", "block size: 64kb, 256kb, 1mb, 4mb")
	independent := flag.Bool("independent", false, "compress blocks independently")
	contentSum := flag.Bool("sum", true, "append a content checksum to the frame")
	blockSum := flag.Bool("block-sum", false, "append a checksum to every block")
	verbose := flag.Bool("v", false, "report sizes and ratio to stderr")
	flag.Parse()

	in, inName := openInput(flag.Arg(0))
	out := openOutput(*output)

	var read, written int64
	cin := &countReader{r: in, n: &read}
	cout := &countWriter{w: out, n: &written}

	if *decompress {
		r := lz4stream.NewReader(cin)
		if _, err := io.Copy(cout, r); err != nil {
			fatalf("decompress %s: %v", inName, err)
		}
		if err := r.Close(); err != nil {
			fatalf("close reader: %v", err)
		}
	} else {
		prefs := lz4stream.Preferences{
			BlockSize:       parseBlock(*block),
			Level:           parseLevel(*level),
			ContentChecksum: *contentSum,
			BlockChecksum:   *blockSum,
		}
		if *independent {
			prefs.BlockMode = lz4stream.BlockIndependent
		}
		w, err := lz4stream.NewWriter(cout, prefs)
		if err != nil {
			fatalf("create writer: %v", err)
		}
		if _, err := io.Copy(w, cin); err != nil {
			fatalf("compress %s: %v", inName, err)
		}
		if err := w.Close(); err != nil {
			fatalf("close writer: %v", err)
		}
	}

	if c, ok := out.(io.Closer); ok && out != os.Stdout {
		if err := c.Close(); err != nil {
			fatalf("close output: %v", err)
		}
	}

	if *verbose {
		ratio := 0.0
		if read > 0 {
			ratio = float64(written) / float64(read) * 100
		}
		fmt.Fprintf(os.Stderr, "%s: %s in, %s out (%.2f%%)\n",
			inName, humanize.IBytes(uint64(read)), humanize.IBytes(uint64(written)), ratio)
	}
}

// openInput returns the input stream; files are wrapped in an asynchronous
// read-ahead buffer.
func openInput(path string) (io.Reader, string) {
	if path == "" || path == "-" {
		return os.Stdin, "stdin"
	}
	f, err := os.Open(path)
	if err != nil {
		fatalf("open input: %v", err)
	}
	return readahead.NewReader(f), path
}

func openOutput(path string) io.Writer {
	if path == "" {
		return os.Stdout
	}
	f, err := os.Create(path)
	if err != nil {
		fatalf("create output: %v", err)
	}
	return f
}

func parseLevel(s string) lz4stream.CompressionLevel {
	switch strings.ToLower(s) {
	case "fast":
		return lz4stream.LevelFast
	case "min":
		return lz4stream.LevelMin
	case "default":
		return lz4stream.LevelDefault
	case "optmin":
		return lz4stream.LevelOptMin
	case "max":
		return lz4stream.LevelMax
	}
	fatalf("unknown level %q", s)
	return 0
}

func parseBlock(s string) lz4stream.BlockSize {
	switch strings.ToLower(s) {
	case "64kb":
		return lz4stream.BlockSize64KB
	case "256kb":
		return lz4stream.BlockSize256KB
	case "1mb":
		return lz4stream.BlockSize1MB
	case "4mb":
		return lz4stream.BlockSize4MB
	}
	fatalf("unknown block size %q", s)
	return 0
}

type countReader struct {
	r io.Reader
	n *int64
}

func (c *countReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	*c.n += int64(n)
	return n, err
}

type countWriter struct {
	w io.Writer
	n *int64
}

func (c *countWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	*c.n += int64(n)
	return n, err
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "lz4cat: "+format+"\n", args...)
	os.Exit(1)
}
