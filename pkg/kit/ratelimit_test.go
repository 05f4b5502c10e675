package kit

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPRateLimiter_Allow(t *testing.T) {
	l := NewIPRateLimiter(2, time.Minute)
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, l.Allow("a", t0))
	assert.True(t, l.Allow("a", t0.Add(time.Second)))
	assert.False(t, l.Allow("a", t0.Add(2*time.Second)))
	assert.True(t, l.Allow("b", t0.Add(2*time.Second)), "keys are independent")

	// first hit has left the window
	assert.True(t, l.Allow("a", t0.Add(61*time.Second)))
}

func TestIPRateLimiter_Middleware(t *testing.T) {
	trusted, err := ParseTrustedProxies("10.0.0.0/8, 192.168.1.1")
	require.NoError(t, err)

	cases := map[string]struct {
		trusted []netip.Prefix
		calls   [][2]string // remote addr, X-Forwarded-For
		want    []int
	}{
		"keys on peer address": {
			calls: [][2]string{{"203.0.113.5:5000", ""}, {"203.0.113.5:5001", ""}, {"203.0.113.6:1", ""}},
			want:  []int{http.StatusNoContent, http.StatusTooManyRequests, http.StatusNoContent},
		},
		"forwarded for ignored from untrusted peer": {
			calls: [][2]string{{"203.0.113.5:5000", "10.0.0.1"}, {"203.0.113.5:5001", "10.0.0.2"}, {"203.0.113.5:5002", "10.0.0.3"}},
			want:  []int{http.StatusNoContent, http.StatusTooManyRequests, http.StatusTooManyRequests},
		},
		"trusted proxy forwards client": {
			trusted: trusted,
			calls:   [][2]string{{"10.1.2.3:80", "198.51.100.7"}, {"10.9.9.9:80", "198.51.100.7, 10.1.2.3"}, {"10.1.2.3:80", "198.51.100.8"}},
			want:    []int{http.StatusNoContent, http.StatusTooManyRequests, http.StatusNoContent},
		},
		"spoofed leftmost hop behind trusted proxy": {
			trusted: trusted,
			calls:   [][2]string{{"192.168.1.1:80", "1.1.1.1, 198.51.100.7"}, {"192.168.1.1:80", "2.2.2.2, 198.51.100.7"}},
			want:    []int{http.StatusNoContent, http.StatusTooManyRequests},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			l := NewIPRateLimiter(1, time.Minute, tc.trusted...)
			h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}))

			for i, c := range tc.calls {
				req := httptest.NewRequest(http.MethodPost, "/api/order", nil)
				req.RemoteAddr = c[0]
				if c[1] != "" {
					req.Header.Set("X-Forwarded-For", c[1])
				}
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, req)
				assert.Equal(t, tc.want[i], rec.Code, "call %d", i)
			}
		})
	}
}

func TestIPRateLimiter_RotatingForwardedFor(t *testing.T) {
	l := NewIPRateLimiter(2, time.Minute)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	accepted := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/order", nil)
		req.RemoteAddr = "203.0.113.5:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusNoContent {
			accepted++
		}
	}

	assert.Equal(t, 2, accepted)
	assert.Equal(t, 1, l.Keys())
}

func TestIPRateLimiter_SweepsIdleKeys(t *testing.T) {
	l := NewIPRateLimiter(5, time.Minute)
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 100; i++ {
		l.Allow(fmt.Sprintf("198.51.100.%d", i), t0)
	}
	require.Equal(t, 100, l.Keys())

	l.Allow("203.0.113.1", t0.Add(2*time.Minute))
	assert.Equal(t, 1, l.Keys())
}

func TestParseTrustedProxies(t *testing.T) {
	got, err := ParseTrustedProxies(" 10.0.0.0/8 ,, 192.168.1.1,::1")
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.168.1.1/32"),
		netip.MustParsePrefix("::1/128"),
	}, got)

	none, err := ParseTrustedProxies("")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = ParseTrustedProxies("10.0.0.0/33")
	assert.Error(t, err)
	_, err = ParseTrustedProxies("proxy.local")
	assert.Error(t, err)
}

func TestIPRateLimiter_Disabled(t *testing.T) {
	l := NewIPRateLimiter(0, time.Minute)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
