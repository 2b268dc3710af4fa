package influxdb

import (
	"errors"
	"testing"
)

func TestHandleWriteErrors_WrapsWriteFailed(t *testing.T) {
	c := &Client{}
	var got []error
	c.SetOnError(func(err error) { got = append(got, err) })

	cause := errors.New("bucket not found")
	ch := make(chan error, 2)
	ch <- cause
	ch <- cause
	close(ch)
	c.handleWriteErrors(ch)

	if len(got) != 2 {
		t.Fatalf("callback calls = %d, want 2", len(got))
	}
	for _, err := range got {
		if !errors.Is(err, ErrWriteFailed) || !errors.Is(err, cause) {
			t.Errorf("error = %v, want ErrWriteFailed wrapping the cause", err)
		}
	}
}

func TestHandleWriteErrors_NoCallback(t *testing.T) {
	c := &Client{}
	ch := make(chan error, 1)
	ch <- errors.New("dropped")
	close(ch)
	c.handleWriteErrors(ch)
}
