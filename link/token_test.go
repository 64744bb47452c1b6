package link_test

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
	"testing/iotest"
	"time"

	apperrors "github.com/jrsteele09/go-booking-auth/internal/errors"
	"github.com/jrsteele09/go-booking-auth/link"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.UnixMilli(1718000000000)

var tokenPattern = regexp.MustCompile(`^(.+)-(\d+)-([0-9a-z]+)$`)

func TestManager_Scenarios(t *testing.T) {
	m := link.NewManager()

	t.Run("non numeric timestamp", func(t *testing.T) {
		require.False(t, m.Validate("concert42-abc-xy9f2a"))
	})

	t.Run("well formed token", func(t *testing.T) {
		token := "concert42-1718000000000-xy9f2a"
		require.True(t, m.Validate(token))

		entityID, ok := m.Parse(token)
		require.True(t, ok)
		require.Equal(t, "concert42", entityID)
	})
}

func TestManager_GenerateFormat(t *testing.T) {
	m := link.NewManager(link.WithNowFunc(func() time.Time { return fixedNow }))

	token, err := m.Generate("concert42")
	require.NoError(t, err)

	parts := tokenPattern.FindStringSubmatch(token)
	require.NotNil(t, parts, token)
	require.Equal(t, "concert42", parts[1])
	require.Equal(t, "1718000000000", parts[2])
	require.Len(t, parts[3], link.DefaultSuffixLength)
}

func TestManager_RoundTrip(t *testing.T) {
	m := link.NewManager()
	entityIDs := []string{
		"concert42",
		"a",
		"7",
		"Xq3ZpL0aBcD9",
		"9f1c2d3e-4b5a-6c7d-8e9f-0a1b2c3d4e5f",
		"contract--draft",
		"programme_été",
		"with space",
		"trailing-",
	}

	for _, entityID := range entityIDs {
		t.Run(entityID, func(t *testing.T) {
			token, err := m.Generate(entityID)
			require.NoError(t, err)

			require.True(t, m.Validate(token))
			parsed, ok := m.Parse(token)
			require.True(t, ok)
			require.Equal(t, entityID, parsed)

			require.True(t, link.Validate(token))
			parsed, ok = link.Parse(token)
			require.True(t, ok)
			require.Equal(t, entityID, parsed)
		})
	}
}

func TestManager_GenerateRejectsEmptyEntityID(t *testing.T) {
	m := link.NewManager()
	for _, entityID := range []string{"", " ", "\t\n"} {
		_, err := m.Generate(entityID)
		require.ErrorIs(t, err, apperrors.ErrInvalidEntityID)

		_, err = m.GenerateFormToken(entityID)
		require.ErrorIs(t, err, apperrors.ErrInvalidEntityID)
	}
}

func TestManager_Malformed(t *testing.T) {
	m := link.NewManager()
	tests := []struct {
		name      string
		token     string
		parseable bool
	}{
		{"empty", "", false},
		{"no delimiter", "concert42", false},
		{"two segments", "concert42-1718000000000", false},
		{"only delimiters", "--", false},
		{"empty entity", "-1718000000000-xy9f2a", false},
		{"empty timestamp", "concert42--xy9f2a", true},
		{"non numeric timestamp", "concert42-abc-xy9f2a", true},
		{"signed timestamp", "concert42-+5-xy9f2a", true},
		{"fractional timestamp", "concert42-1.5-xy9f2a", true},
		{"overflowing timestamp", "concert42-99999999999999999999999-xy9f2a", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				require.False(t, m.Validate(tt.token))
				entityID, ok := m.Parse(tt.token)
				require.Equal(t, tt.parseable, ok)
				if !ok {
					require.Empty(t, entityID)
				}
			})
		})
	}
}

func TestManager_NoCollisions(t *testing.T) {
	// Frozen clock: every token shares a timestamp, so only the suffix separates them.
	m := link.NewManager(link.WithNowFunc(func() time.Time { return fixedNow }))

	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		token, err := m.Generate("concert42")
		require.NoError(t, err)
		_, dup := seen[token]
		require.False(t, dup, "duplicate token %s", token)
		seen[token] = struct{}{}
	}
}

func TestManager_ConcurrentGenerate(t *testing.T) {
	m := link.NewManager()

	const workers, perWorker = 8, 500
	results := make(chan string, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				token, err := m.Generate("concert42")
				if err == nil {
					results <- token
				}
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]struct{})
	for token := range results {
		seen[token] = struct{}{}
	}
	require.Len(t, seen, workers*perWorker)
}

func TestManager_SuffixIsUnbiasedAlphabet(t *testing.T) {
	// 0xff bytes are above the sampling limit and must be skipped, 0x00 maps to '0', 0x23 to 'z'.
	source := bytes.NewReader(append(bytes.Repeat([]byte{0xff}, 4), 0x00, 0x23, 0x24, 0x0a))
	m := link.NewManager(
		link.WithNowFunc(func() time.Time { return fixedNow }),
		link.WithRandom(source),
		link.WithSuffixLength(4),
	)

	token, err := m.Generate("c")
	require.NoError(t, err)
	require.Equal(t, "c-1718000000000-0z0a", token)
}

func TestManager_RandomFailure(t *testing.T) {
	boom := errors.New("entropy exhausted")
	m := link.NewManager(link.WithRandom(iotest.ErrReader(boom)))

	_, err := m.Generate("concert42")
	require.ErrorIs(t, err, boom)
}

func TestManager_GenerateFormToken(t *testing.T) {
	m := link.NewManager(link.WithNowFunc(func() time.Time { return fixedNow }))

	formToken, err := m.GenerateFormToken("concert42")
	require.NoError(t, err)
	require.Equal(t, "concert42", formToken.EntityID)
	require.Equal(t, link.KindForm, formToken.Kind)
	require.True(t, formToken.CreatedAt.Equal(fixedNow))
	require.True(t, strings.HasPrefix(formToken.Token, "concert42-1718000000000-"))
	require.True(t, m.Validate(formToken.Token))
}
