package nats

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/blake3"
)

// ChunkSize is the size of each chunk when streaming large documents.
const ChunkSize = 1024 * 16

var (
	// ErrDigestMismatch is returned by a document reader whose received
	// bytes do not hash to the digest the sender attached to the stream.
	ErrDigestMismatch = errors.New("nats: document digest mismatch")

	// ErrMissedChunks is returned when the first chunk a receiver sees is
	// not the next one in sequence.
	ErrMissedChunks = errors.New("nats: document chunks missed")

	errSendAborted = errors.New("nats: send aborted")
)

// ErrReader is a reader that fails every read with err.
type ErrReader struct {
	err error
}

func (r *ErrReader) Read(p []byte) (n int, err error) {
	return 0, r.err
}

// writeChunks splits reader into chunks and hands each encoded chunk to
// publish. The final chunk is flagged EOF and carries the blake3 digest of
// every data byte sent. A read failure is forwarded as an error chunk.
func writeChunks(reader io.Reader, publish func(data []byte) error) error {
	hasher := blake3.New()
	buf := make([]byte, ChunkSize)
	index := 0
	for {
		n, err := io.ReadFull(reader, buf)
		isEOF := errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
		if err != nil && !isEOF {
			if failBuf, mErr := msgpack.Marshal(&Chunk{Index: index, Error: err.Error()}); mErr == nil {
				_ = publish(failBuf)
			}
			return err
		}
		hasher.Write(buf[:n])

		chunk := &Chunk{
			Index: index,
			Data:  buf[:n],
			IsEOF: isEOF,
		}
		if isEOF {
			chunk.Digest = hasher.Sum(nil)
		}
		chunkBuf, err := msgpack.Marshal(chunk)
		if err != nil {
			return err
		}

		if err := publish(chunkBuf); err != nil {
			return err
		}

		if isEOF {
			return nil
		}
		index++
	}
}

// readChunks pulls encoded chunks from next and writes their data to pw
// until the EOF chunk arrives or something fails. Failures close pw with
// the error so the reading side sees it.
func readChunks(next func(timeout time.Duration) ([]byte, error), timeout time.Duration, pw *io.PipeWriter) {
	hasher := blake3.New()
	expected := 0
	for {
		data, err := next(timeout)
		if err != nil {
			pw.CloseWithError(err)
			return
		}

		var chunk Chunk
		if err := msgpack.Unmarshal(data, &chunk); err != nil {
			pw.CloseWithError(err)
			return
		}

		if chunk.Error != "" {
			pw.CloseWithError(errors.New(chunk.Error))
			return
		}

		if chunk.Index != expected {
			pw.CloseWithError(fmt.Errorf("%w: expected chunk %d, got %d", ErrMissedChunks, expected, chunk.Index))
			return
		}
		expected++

		hasher.Write(chunk.Data)
		if chunk.IsEOF && chunk.Digest != nil && !bytes.Equal(hasher.Sum(nil), chunk.Digest) {
			pw.CloseWithError(ErrDigestMismatch)
			return
		}

		if _, err := pw.Write(chunk.Data); err != nil {
			pw.CloseWithError(err)
			return
		}

		if chunk.IsEOF {
			pw.Close()
			return
		}
	}
}

// compressingReader reads the zstd compressed form of a source. Closing it
// stops the compression goroutine; done is closed once that goroutine exits.
type compressingReader struct {
	*io.PipeReader
	done chan struct{}
}

// compressReader returns a reader of the zstd compressed form of r.
func compressReader(r io.Reader) *compressingReader {
	pr, pw := io.Pipe()
	compressed := &compressingReader{PipeReader: pr, done: make(chan struct{})}
	go func() {
		defer close(compressed.done)
		encoder, err := zstd.NewWriter(pw, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(encoder, r); err != nil {
			encoder.Close()
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(encoder.Close())
	}()
	return compressed
}

// decompressReader returns a reader of the data zstd compressed in r. The
// decoder is released once the stream ends or fails.
func decompressReader(r io.Reader) io.Reader {
	decoder, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return &ErrReader{err: err}
	}
	return &releasingReader{reader: decoder, release: decoder.Close}
}

type releasingReader struct {
	reader  io.Reader
	release func()
}

func (r *releasingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if err != nil && r.release != nil {
		r.release()
		r.release = nil
	}
	return n, err
}
