package nats

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// chunkQueue collects published chunks and replays them to readChunks.
type chunkQueue struct {
	chunks [][]byte
}

func (q *chunkQueue) publish(data []byte) error {
	q.chunks = append(q.chunks, bytes.Clone(data))
	return nil
}

func (q *chunkQueue) next(time.Duration) ([]byte, error) {
	if len(q.chunks) == 0 {
		return nil, errors.New("timeout")
	}
	data := q.chunks[0]
	q.chunks = q.chunks[1:]
	return data, nil
}

func (q *chunkQueue) read() ([]byte, error) {
	pr, pw := io.Pipe()
	go readChunks(q.next, time.Second, pw)
	return io.ReadAll(pr)
}

func TestChunkRoundTrip(t *testing.T) {
	sizes := []int{0, 1, ChunkSize - 1, ChunkSize, ChunkSize + 1, ChunkSize*3 + 17}

	for _, size := range sizes {
		payload := bytes.Repeat([]byte("abcdefgh"), size/8+1)[:size]
		queue := &chunkQueue{}

		if err := writeChunks(bytes.NewReader(payload), queue.publish); err != nil {
			t.Fatalf("writeChunks(%d) failed: %v", size, err)
		}

		expectedChunks := size/ChunkSize + 1
		if len(queue.chunks) != expectedChunks {
			t.Errorf("Expected %d chunks for %d bytes, got %d", expectedChunks, size, len(queue.chunks))
		}

		data, err := queue.read()
		if err != nil {
			t.Fatalf("readChunks(%d) failed: %v", size, err)
		}
		if !bytes.Equal(data, payload) {
			t.Errorf("Expected %d bytes back, got %d", size, len(data))
		}
	}
}

func TestChunkDigestAttached(t *testing.T) {
	queue := &chunkQueue{}
	if err := writeChunks(strings.NewReader("payload"), queue.publish); err != nil {
		t.Fatalf("writeChunks failed: %v", err)
	}

	var last Chunk
	if err := msgpack.Unmarshal(queue.chunks[len(queue.chunks)-1], &last); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !last.IsEOF {
		t.Error("Expected final chunk to be flagged EOF")
	}
	if len(last.Digest) != 32 {
		t.Errorf("Expected 32 byte digest, got %d", len(last.Digest))
	}
}

func TestChunkDigestMismatch(t *testing.T) {
	queue := &chunkQueue{}
	if err := writeChunks(strings.NewReader("payload"), queue.publish); err != nil {
		t.Fatalf("writeChunks failed: %v", err)
	}

	var chunk Chunk
	if err := msgpack.Unmarshal(queue.chunks[0], &chunk); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	chunk.Data = []byte("tampered")
	tampered, _ := msgpack.Marshal(&chunk)
	queue.chunks[0] = tampered

	_, err := queue.read()
	if !errors.Is(err, ErrDigestMismatch) {
		t.Errorf("Expected ErrDigestMismatch, got %v", err)
	}
}

func TestChunkMissed(t *testing.T) {
	queue := &chunkQueue{}
	payload := bytes.Repeat([]byte("x"), ChunkSize*2)
	if err := writeChunks(bytes.NewReader(payload), queue.publish); err != nil {
		t.Fatalf("writeChunks failed: %v", err)
	}
	queue.chunks = queue.chunks[1:]

	_, err := queue.read()
	if !errors.Is(err, ErrMissedChunks) {
		t.Errorf("Expected ErrMissedChunks, got %v", err)
	}
}

func TestChunkSenderError(t *testing.T) {
	queue := &chunkQueue{}
	failed, _ := msgpack.Marshal(&Chunk{Index: 0, Error: "source failed"})
	queue.chunks = append(queue.chunks, failed)

	_, err := queue.read()
	if err == nil || err.Error() != "source failed" {
		t.Errorf("Expected 'source failed', got %v", err)
	}
}

func TestChunkTimeout(t *testing.T) {
	queue := &chunkQueue{}

	_, err := queue.read()
	if err == nil || err.Error() != "timeout" {
		t.Errorf("Expected timeout error, got %v", err)
	}
}

func TestWriteChunksReaderError(t *testing.T) {
	expectedErr := errors.New("read failed")
	queue := &chunkQueue{}

	err := writeChunks(&ErrReader{err: expectedErr}, queue.publish)
	if !errors.Is(err, expectedErr) {
		t.Errorf("Expected '%v', got '%v'", expectedErr, err)
	}
	if len(queue.chunks) != 1 {
		t.Fatalf("Expected a single error chunk, got %d", len(queue.chunks))
	}

	_, err = queue.read()
	if err == nil || err.Error() != "read failed" {
		t.Errorf("Expected receiver to see 'read failed', got %v", err)
	}
}

func TestCompressionRoundTrip(t *testing.T) {
	payload := strings.Repeat(`{"key":"value","list":[1,2,3]}`, 2000)

	compressed, err := io.ReadAll(compressReader(strings.NewReader(payload)))
	if err != nil {
		t.Fatalf("compress failed: %v", err)
	}
	if len(compressed) >= len(payload) {
		t.Errorf("Expected compressed size below %d, got %d", len(payload), len(compressed))
	}

	queue := &chunkQueue{}
	if err := writeChunks(bytes.NewReader(compressed), queue.publish); err != nil {
		t.Fatalf("writeChunks failed: %v", err)
	}
	pr, pw := io.Pipe()
	go readChunks(queue.next, time.Second, pw)

	data, err := io.ReadAll(decompressReader(pr))
	if err != nil {
		t.Fatalf("decompress failed: %v", err)
	}
	if string(data) != payload {
		t.Error("Expected decompressed payload to match")
	}
}

func TestDecompressInvalid(t *testing.T) {
	_, err := io.ReadAll(decompressReader(strings.NewReader("not zstd")))
	if err == nil {
		t.Error("Expected error decompressing invalid data")
	}
}

func TestCompressReaderStopsWhenPublishFails(t *testing.T) {
	payload := make([]byte, ChunkSize*64)
	rand.New(rand.NewSource(1)).Read(payload)

	compressed := compressReader(bytes.NewReader(payload))
	publishErr := errors.New("connection closed")
	err := writeChunks(compressed, func([]byte) error { return publishErr })
	if !errors.Is(err, publishErr) {
		t.Fatalf("Expected publish error, got %v", err)
	}

	compressed.CloseWithError(errSendAborted)
	select {
	case <-compressed.done:
	case <-time.After(5 * time.Second):
		t.Fatal("Expected compression goroutine to exit after close")
	}
}

func BenchmarkChunkRoundTrip(b *testing.B) {
	payload := bytes.Repeat([]byte("0123456789"), ChunkSize)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		queue := &chunkQueue{}
		_ = writeChunks(bytes.NewReader(payload), queue.publish)
		_, _ = queue.read()
	}
}
