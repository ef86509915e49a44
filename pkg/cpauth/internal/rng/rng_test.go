package rng

import (
	"bytes"
	"io"
	"sync"
	"testing"
)

func TestReader_Read(t *testing.T) {
	t.Parallel()

	// Generate 10MiB and see if anything explodes.
	if _, err := io.CopyN(io.Discard, Reader, 1024*1024*10); err != nil {
		t.Fatal(err)
	}
}

func TestRead_Distinct(t *testing.T) {
	t.Parallel()

	a, b := make([]byte, 32), make([]byte, 32)

	if _, err := Read(a); err != nil {
		t.Fatal(err)
	}

	if _, err := Read(b); err != nil {
		t.Fatal(err)
	}

	if bytes.Equal(a, b) {
		t.Error("two reads returned the same block")
	}
}

func TestReader_Concurrent(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if _, err := io.CopyN(io.Discard, Reader, 64*1024); err != nil {
				t.Error(err)
			}
		}()
	}

	wg.Wait()
}
