package breach

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SHA-1("password") = 5BAA61E4C9B93F3F0682250B6CF8331B7EE68FD8
const (
	passwordPrefix = "5BAA6"
	passwordSuffix = "1E4C9B93F3F0682250B6CF8331B7EE68FD8"
)

func rangeServer(t *testing.T, handler func(w http.ResponseWriter, prefix string)) (*httptest.Server, *[]string) {
	t.Helper()
	var mu sync.Mutex
	var seen []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prefix, ok := strings.CutPrefix(r.URL.Path, "/range/")
		assert.True(t, ok, "unexpected path %q", r.URL.Path)
		assert.Equal(t, "true", r.Header.Get("Add-Padding"))

		mu.Lock()
		seen = append(seen, r.URL.String())
		mu.Unlock()

		handler(w, prefix)
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestFingerprint(t *testing.T) {
	prefix, suffix := Fingerprint("password")
	assert.Equal(t, passwordPrefix, prefix)
	assert.Equal(t, passwordSuffix, suffix)
}

func TestCheck_Breached(t *testing.T) {
	srv, seen := rangeServer(t, func(w http.ResponseWriter, prefix string) {
		assert.Equal(t, passwordPrefix, prefix)
		fmt.Fprint(w, "0018A45C4D1DEF81644B54AB7F969B88D65:1\r\n")
		fmt.Fprintf(w, "%s:9659365\r\n", strings.ToLower(passwordSuffix))
		fmt.Fprint(w, "011053FD0102E94D6AE2F8B83D76FAF94F6:0\r\n")
	})

	r := NewChecker(srv.URL).Check(context.Background(), "password")

	assert.True(t, r.Breached)
	assert.Equal(t, int64(9659365), r.Count)
	assert.False(t, r.LookupFailed)
	assert.Equal(t, StatusBreached, r.Status())
	assert.True(t, r.Common())

	// Only the prefix is sent.
	require.Len(t, *seen, 1)
	assert.NotContains(t, (*seen)[0], passwordSuffix)
	assert.NotContains(t, (*seen)[0], "password")
}

func TestCheck_NotBreached(t *testing.T) {
	srv, _ := rangeServer(t, func(w http.ResponseWriter, _ string) {
		fmt.Fprint(w, "0018A45C4D1DEF81644B54AB7F969B88D65:3\n")
	})

	r := NewChecker(srv.URL).Check(context.Background(), "password")

	assert.Equal(t, Result{}, r)
	assert.Equal(t, StatusNotBreached, r.Status())
	assert.False(t, r.Common())
}

func TestCheck_PaddingEntryDoesNotMatch(t *testing.T) {
	srv, _ := rangeServer(t, func(w http.ResponseWriter, _ string) {
		fmt.Fprintf(w, "%s:0\n", passwordSuffix)
	})

	r := NewChecker(srv.URL).Check(context.Background(), "password")
	assert.Equal(t, StatusNotBreached, r.Status())
}

func TestCheck_Failures(t *testing.T) {
	tests := []struct {
		name       string
		handler    func(w http.ResponseWriter, prefix string)
		wantReason string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ string) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			wantReason: ReasonUpstream,
		},
		{
			name: "rate limited upstream",
			handler: func(w http.ResponseWriter, _ string) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			wantReason: ReasonUpstream,
		},
		{
			name: "html body",
			handler: func(w http.ResponseWriter, _ string) {
				fmt.Fprint(w, "<html>maintenance</html>")
			},
			wantReason: ReasonMalformed,
		},
		{
			name: "bad count",
			handler: func(w http.ResponseWriter, _ string) {
				fmt.Fprint(w, "0018A45C4D1DEF81644B54AB7F969B88D65:many\n")
			},
			wantReason: ReasonMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := rangeServer(t, tt.handler)

			r := NewChecker(srv.URL).Check(context.Background(), "password")

			assert.True(t, r.LookupFailed)
			assert.False(t, r.Breached)
			assert.Zero(t, r.Count)
			assert.Equal(t, tt.wantReason, r.Reason)
			assert.NotContains(t, r.Reason, srv.URL)
			assert.Equal(t, StatusUndetermined, r.Status())
		})
	}
}

func TestCheck_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	r := NewChecker(url).Check(context.Background(), "password")

	assert.True(t, r.LookupFailed)
	assert.False(t, r.Breached)
	assert.Equal(t, ReasonUnavailable, r.Reason)
	assert.NotContains(t, r.Reason, url)
	assert.Equal(t, StatusUndetermined, r.Status())
}

func TestCheck_Timeout(t *testing.T) {
	srv, _ := rangeServer(t, func(w http.ResponseWriter, _ string) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprintf(w, "%s:5\n", passwordSuffix)
	})

	r := NewChecker(srv.URL, WithTimeout(20*time.Millisecond)).Check(context.Background(), "password")

	assert.True(t, r.LookupFailed)
	assert.Equal(t, ReasonTimeout, r.Reason)
	assert.Equal(t, StatusUndetermined, r.Status())
}

func TestCheck_CancelledContext(t *testing.T) {
	srv, _ := rangeServer(t, func(w http.ResponseWriter, _ string) {
		fmt.Fprintf(w, "%s:5\n", passwordSuffix)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewChecker(srv.URL, WithRateLimit(1, 1)).Check(ctx, "password")
	assert.True(t, r.LookupFailed)
	assert.Equal(t, ReasonCanceled, r.Reason)
}

func TestCheckMany(t *testing.T) {
	var inFlight, peak atomic.Int32
	srv, _ := rangeServer(t, func(w http.ResponseWriter, prefix string) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)

		if prefix == passwordPrefix {
			fmt.Fprintf(w, "%s:42\n", passwordSuffix)
			return
		}
		fmt.Fprint(w, "0018A45C4D1DEF81644B54AB7F969B88D65:1\n")
	})

	passwords := []string{"password", "X9k$mP2vN&qR7w!", "password", "another-one", "and-one-more"}
	results := NewChecker(srv.URL).CheckMany(context.Background(), passwords, 2)

	require.Len(t, results, len(passwords))
	assert.Equal(t, StatusBreached, results[0].Status())
	assert.Equal(t, StatusNotBreached, results[1].Status())
	assert.Equal(t, StatusBreached, results[2].Status())
	assert.Equal(t, StatusNotBreached, results[3].Status())
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestScanRange_Malformed(t *testing.T) {
	_, err := scanRange(strings.NewReader("SHORT:1\n"), passwordSuffix)
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}
