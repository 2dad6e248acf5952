package codec

import (
	"encoding/binary"
	"fmt"
	"hash"

	"github.com/pierrec/lz4/v4"
	"github.com/pierrec/xxHash/xxHash32"
)

// Decoder states, in frame order. Skippable frames loop back to dsMagic.
const (
	dsMagic = iota
	dsDescriptor
	dsHeaderExt
	dsSkipLen
	dsSkip
	dsBlockLen
	dsBlockData
	dsBlockChecksum
	dsContentChecksum
	dsDone
)

const (
	maxHeaderSize = 19 // magic + FLG + BD + content size + dict id + HC
	historySize   = 64 << 10
)

// decoder is the production DecodeContext: a state machine fed arbitrary
// source fragments. Small fixed-size items (magic, descriptor, lengths,
// checksums) accumulate in stash; block payloads accumulate in cblock until
// a whole block can be decompressed into dbuf, which then drains into the
// caller's destination across as many calls as needed.
type decoder struct {
	state  int
	stash  [maxHeaderSize]byte
	nStash int
	need   int // stash bytes required to finish the current item

	flags     Flags
	blockSize int

	skipLeft uint32

	blockLen int
	stored   bool
	cblock   []byte

	dbuf []byte
	dpos int
	dlen int

	history []byte
	sum     hash.Hash32

	contentSize    uint64
	hasContentSize bool
	outTotal       uint64
}

// NewDecodeContext creates a decode context for one frame, optionally
// preceded by skippable frames.
func NewDecodeContext() DecodeContext {
	d := &decoder{}
	d.Reset()
	return d
}

func (d *decoder) Reset() {
	d.state = dsMagic
	d.need = 4
	d.nStash = 0
	d.flags = 0
	d.blockSize = 0
	d.skipLeft = 0
	d.blockLen = 0
	d.stored = false
	d.cblock = d.cblock[:0]
	d.dpos, d.dlen = 0, 0
	d.history = d.history[:0]
	if d.sum != nil {
		d.sum.Reset()
	}
	d.hasContentSize = false
	d.contentSize = 0
	d.outTotal = 0
}

func (d *decoder) Release() {
	d.cblock = nil
	d.dbuf = nil
	d.history = nil
	d.sum = nil
}

func (d *decoder) Decompress(dst, src []byte) (produced, consumed, hint int, err error) {
	for {
		if d.dpos < d.dlen {
			n := copy(dst[produced:], d.dbuf[d.dpos:d.dlen])
			produced += n
			d.dpos += n
			if d.dpos < d.dlen {
				// Destination is full; the rest stays buffered.
				return produced, consumed, d.hint(), nil
			}
		}
		if d.state == dsDone {
			return produced, consumed, 0, nil
		}
		if consumed == len(src) {
			return produced, consumed, d.hint(), nil
		}
		n, err := d.step(src[consumed:])
		consumed += n
		if err != nil {
			return produced, consumed, 0, err
		}
	}
}

func (d *decoder) BlockBoundary() bool {
	if d.dpos < d.dlen {
		return false
	}
	switch d.state {
	case dsDone:
		return true
	case dsMagic, dsBlockLen:
		return d.nStash == 0
	}
	return false
}

// hint reports how many source bytes are still wanted for the current item.
// It never returns 0 before the frame is complete.
func (d *decoder) hint() int {
	switch d.state {
	case dsDone:
		return 0
	case dsSkip:
		return int(d.skipLeft)
	case dsBlockData:
		n := d.blockLen - len(d.cblock)
		if d.flags.BlockChecksum() {
			n += checksumSize
		}
		return n
	default:
		return d.need - d.nStash
	}
}

// step consumes a prefix of src and advances the state machine. It is only
// called with buffered output fully drained.
func (d *decoder) step(src []byte) (int, error) {
	switch d.state {
	case dsSkip:
		n := len(src)
		if uint32(n) > d.skipLeft {
			n = int(d.skipLeft)
		}
		d.skipLeft -= uint32(n)
		if d.skipLeft == 0 {
			d.toState(dsMagic, 4)
		}
		return n, nil
	case dsBlockData:
		want := d.blockLen - len(d.cblock)
		if want > len(src) {
			want = len(src)
		}
		d.cblock = append(d.cblock, src[:want]...)
		if len(d.cblock) < d.blockLen {
			return want, nil
		}
		if d.flags.BlockChecksum() {
			d.toState(dsBlockChecksum, 4)
			return want, nil
		}
		return want, d.finishBlock()
	}

	// All remaining states collect a fixed number of bytes in stash.
	n := copy(d.stash[d.nStash:d.need], src)
	d.nStash += n
	if d.nStash < d.need {
		return n, nil
	}
	return n, d.finishItem()
}

// finishItem handles a completed stash item and moves to the next state.
func (d *decoder) finishItem() error {
	switch d.state {
	case dsMagic:
		magic := binary.LittleEndian.Uint32(d.stash[:4])
		switch {
		case magic == FrameMagic:
			d.toState(dsDescriptor, 2)
		case IsSkippableMagic(magic):
			d.toState(dsSkipLen, 4)
		case magic == LegacyMagic:
			return ErrLegacyFrame
		default:
			return fmt.Errorf("%w: 0x%08x", ErrInvalidMagic, magic)
		}
	case dsSkipLen:
		d.skipLeft = binary.LittleEndian.Uint32(d.stash[:4])
		if d.skipLeft == 0 {
			d.toState(dsMagic, 4)
		} else {
			d.state = dsSkip
		}
	case dsDescriptor:
		// Keep FLG and BD in stash; the header checksum covers them
		// together with the optional fields.
		flags := Flags(d.stash[0])
		bd := BlockDesc(d.stash[1])
		if flags.Version() != descriptorVersion {
			return fmt.Errorf("%w: %d", ErrVersion, flags.Version())
		}
		if flags.reservedSet() || bd.reservedSet() {
			return fmt.Errorf("%w: reserved bits set", ErrDescriptor)
		}
		d.blockSize = BlockSizeForIndex(bd.Index())
		if d.blockSize == 0 {
			return fmt.Errorf("%w: block size index %d", ErrDescriptor, bd.Index())
		}
		if flags.HasDictID() {
			return ErrDictionary
		}
		d.flags = flags
		d.state = dsHeaderExt
		d.need = 2 + 1 // FLG, BD, HC
		if flags.HasContentSize() {
			d.need += 8
		}
	case dsHeaderExt:
		desc := d.stash[:d.need-1]
		if HeaderChecksum(desc) != d.stash[d.need-1] {
			return ErrHeaderChecksum
		}
		if d.flags.HasContentSize() {
			d.hasContentSize = true
			d.contentSize = binary.LittleEndian.Uint64(d.stash[2:10])
		}
		if d.flags.ContentChecksum() && d.sum == nil {
			d.sum = xxHash32.New(0)
		}
		if cap(d.dbuf) < d.blockSize {
			d.dbuf = make([]byte, d.blockSize)
		}
		d.toState(dsBlockLen, 4)
	case dsBlockLen:
		v := binary.LittleEndian.Uint32(d.stash[:4])
		if v == 0 {
			// End mark.
			if d.flags.ContentChecksum() {
				d.toState(dsContentChecksum, 4)
				return nil
			}
			return d.finishFrame()
		}
		d.stored = v&storedBit != 0
		d.blockLen = int(v &^ storedBit)
		if d.blockLen > d.blockSize {
			return fmt.Errorf("%w: %d > %d", ErrBlockTooLarge, d.blockLen, d.blockSize)
		}
		d.cblock = d.cblock[:0]
		if d.blockLen == 0 {
			// Degenerate empty stored block.
			if d.flags.BlockChecksum() {
				d.toState(dsBlockChecksum, 4)
			} else {
				d.toState(dsBlockLen, 4)
			}
			return nil
		}
		d.state = dsBlockData
	case dsBlockChecksum:
		want := binary.LittleEndian.Uint32(d.stash[:4])
		if xxHash32.Checksum(d.cblock, 0) != want {
			return ErrBlockChecksum
		}
		return d.finishBlock()
	case dsContentChecksum:
		want := binary.LittleEndian.Uint32(d.stash[:4])
		if d.sum.Sum32() != want {
			return ErrContentChecksum
		}
		return d.finishFrame()
	}
	return nil
}

// finishBlock decompresses the accumulated block into dbuf.
func (d *decoder) finishBlock() error {
	var out []byte
	if d.stored {
		out = d.dbuf[:copy(d.dbuf, d.cblock)]
	} else {
		var (
			n   int
			err error
		)
		if d.linked() && len(d.history) > 0 {
			n, err = lz4.UncompressBlockWithDict(d.cblock, d.dbuf[:d.blockSize], d.history)
		} else {
			n, err = lz4.UncompressBlock(d.cblock, d.dbuf[:d.blockSize])
		}
		if err != nil {
			return fmt.Errorf("lz4 block decompress: %w", err)
		}
		out = d.dbuf[:n]
	}
	d.dpos, d.dlen = 0, len(out)
	d.outTotal += uint64(len(out))
	if d.sum != nil {
		d.sum.Write(out)
	}
	if d.linked() {
		d.pushHistory(out)
	}
	d.toState(dsBlockLen, 4)
	return nil
}

func (d *decoder) finishFrame() error {
	if d.hasContentSize && d.outTotal != d.contentSize {
		return fmt.Errorf("%w: header says %d, got %d", ErrContentSize, d.contentSize, d.outTotal)
	}
	d.state = dsDone
	d.need = 0
	d.nStash = 0
	return nil
}

func (d *decoder) linked() bool {
	return d.blockSize > 0 && !d.flags.BlockIndependent()
}

// pushHistory appends out to the linked-block history window, keeping only
// the last historySize bytes.
func (d *decoder) pushHistory(out []byte) {
	if len(out) >= historySize {
		d.history = append(d.history[:0], out[len(out)-historySize:]...)
		return
	}
	if over := len(d.history) + len(out) - historySize; over > 0 {
		d.history = d.history[:copy(d.history, d.history[over:])]
	}
	d.history = append(d.history, out...)
}

func (d *decoder) toState(state, need int) {
	d.state = state
	d.need = need
	d.nStash = 0
}
