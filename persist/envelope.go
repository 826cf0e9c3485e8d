// Package persist serializes and deserializes the program, its CFGs,
// and accumulated warnings to a self-describing binary envelope, and
// optionally backs a hash-cons statistics cache in SQLite across
// repeated CLI runs on the same binary. None of this participates in
// the analysis fixpoint; it is purely I/O glue around the core.
package persist

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
)

// magic identifies the envelope format; version allows the format to
// evolve without breaking older files silently.
const (
	magic   uint32 = 0x56534158 // "VSAX"
	version uint8  = 1

	flagCompressed uint8 = 1 << 0
)

// Envelope wraps an arbitrary gob-encodable payload with a
// self-describing header: magic, version, and a flag byte recording
// whether the payload was block-compressed, so a reader never has to
// be told out of band whether to decompress.
type Envelope struct {
	Payload []byte
	Compressed bool
}

// Write serializes payload (any gob-encodable value — Program,
// []Function, warning.Set's warning slice, ...) to w, compressing the
// gob stream with DEFLATE whenever that makes it smaller.
func Write(w io.Writer, payload any) error {
	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(payload); err != nil {
		return fmt.Errorf("persist: encoding payload: %w", err)
	}

	var compressed bytes.Buffer
	fw, err := flate.NewWriter(&compressed, flate.BestSpeed)
	if err != nil {
		return fmt.Errorf("persist: starting compressor: %w", err)
	}
	if _, err := fw.Write(raw.Bytes()); err != nil {
		return fmt.Errorf("persist: compressing payload: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("persist: finalizing compressor: %w", err)
	}

	body := raw.Bytes()
	flags := uint8(0)
	if compressed.Len() < raw.Len() {
		body = compressed.Bytes()
		flags |= flagCompressed
	}

	if err := binary.Write(w, binary.LittleEndian, magic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, version); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, flags); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(body))); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// Read deserializes a value previously written by Write into out (a
// pointer to the same type Write was given).
func Read(r io.Reader, out any) error {
	var gotMagic uint32
	if err := binary.Read(r, binary.LittleEndian, &gotMagic); err != nil {
		return fmt.Errorf("persist: reading header: %w", err)
	}
	if gotMagic != magic {
		return fmt.Errorf("persist: not a recognized envelope (bad magic %#x)", gotMagic)
	}
	var gotVersion uint8
	if err := binary.Read(r, binary.LittleEndian, &gotVersion); err != nil {
		return fmt.Errorf("persist: reading version: %w", err)
	}
	if gotVersion != version {
		return fmt.Errorf("persist: unsupported envelope version %d", gotVersion)
	}
	var flags uint8
	if err := binary.Read(r, binary.LittleEndian, &flags); err != nil {
		return fmt.Errorf("persist: reading flags: %w", err)
	}
	var n uint64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("persist: reading body length: %w", err)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return fmt.Errorf("persist: reading body: %w", err)
	}

	var gobStream io.Reader = bytes.NewReader(body)
	if flags&flagCompressed != 0 {
		gobStream = flate.NewReader(bytes.NewReader(body))
	}
	if err := gob.NewDecoder(gobStream).Decode(out); err != nil {
		return fmt.Errorf("persist: decoding payload: %w", err)
	}
	return nil
}
