package llm

import "context"

// Stream is a finite, non-restartable, forward-only sequence of response
// text chunks backed by a single network connection. Callers iterate with
// Next, read the current chunk with Text, and must call Close when done;
// closing mid-iteration tears down the connection and no further chunks
// are available.
//
//	st, err := client.Stream(ctx, prompt)
//	if err != nil { ... }
//	defer st.Close()
//	for st.Next() {
//		fmt.Print(st.Text())
//	}
//	if err := st.Err(); err != nil { ... }
type Stream interface {
	// Next advances to the next text chunk. It returns false when the
	// stream ends or fails; check Err to distinguish.
	Next() bool
	// Text returns the chunk produced by the last successful Next.
	Text() string
	// Err returns the first error encountered, or nil on clean end.
	Err() error
	// Close releases the underlying connection. Safe after exhaustion.
	Close() error
}

// timedStream ties a per-call timeout context to the stream lifetime so
// abandoning the stream releases the deadline timer along with the
// connection.
type timedStream struct {
	Stream
	cancel context.CancelFunc
}

func (t *timedStream) Close() error {
	err := t.Stream.Close()
	t.cancel()
	return err
}

// drain consumes st to completion, concatenating chunks. onChunk, when
// non-nil, observes each chunk as it arrives.
func drain(st Stream, onChunk func(string)) (string, error) {
	defer st.Close()
	var b []byte
	for st.Next() {
		chunk := st.Text()
		b = append(b, chunk...)
		if onChunk != nil {
			onChunk(chunk)
		}
	}
	if err := st.Err(); err != nil {
		return "", err
	}
	return string(b), nil
}
