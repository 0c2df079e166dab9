package errorspkg

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestIsTransient(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "Nil", err: nil, want: false},
		{name: "Internal", err: ErrInternal, want: false},
		{name: "Unavailable", err: ErrUnavailable, want: true},
		{name: "WrappedUnavailable", err: fmt.Errorf("get account: %w", ErrUnavailable), want: true},
		{name: "DeadlineExceeded", err: context.DeadlineExceeded, want: true},
		{name: "Canceled", err: context.Canceled, want: false},
		{name: "Other", err: errors.New("boom"), want: false},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := IsTransient(tc.err); got != tc.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
