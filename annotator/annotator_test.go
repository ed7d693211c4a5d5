package annotator

import (
	"context"
	"emfdscore.com/emfd/types"
	"encoding/json"
	"errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func texts(doc *types.Document) []string {
	out := make([]string, 0, doc.Len())
	for _, t := range doc.Tokens {
		out = append(out, t.Text)
	}
	return out
}

func TestRuleSplit(t *testing.T) {
	cases := []struct {
		text string
		want []string
	}{
		{"The soldiers don't fight.", []string{"The", "soldiers", "don't", "fight", "."}},
		{"It cost $3.50, twice", []string{"It", "cost", "$", "3.50", ",", "twice"}},
		{"well-known \"hero\"", []string{"well-known", "\"", "hero", "\""}},
		{"one\n\ntwo", []string{"one", "\n\n", "two"}},
		{"a  b", []string{"a", " ", "b"}},
		{"", nil},
	}
	for _, c := range cases {
		t.Run(c.text, func(t *testing.T) {
			doc, err := NewRule().Annotate(context.Background(), c.text)
			require.NoError(t, err)
			if len(c.want) == 0 {
				require.Zero(t, doc.Len())
				return
			}
			if diff := cmp.Diff(c.want, texts(doc)); diff != "" {
				t.Errorf("unexpected tokens (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRuleFlags(t *testing.T) {
	doc, err := NewRule().Annotate(context.Background(), "Ten \"brave\" men, 42 of 1,000\n\nfought 3rd")
	require.NoError(t, err)

	flags := make(map[string]types.Token)
	for _, tok := range doc.Tokens {
		flags[tok.Text] = *tok
		require.Equal(t, tok.Index, tok.Head)
	}
	require.True(t, flags["Ten"].LikeNum)
	require.False(t, flags["Ten"].IsDigit)
	require.Equal(t, "ten", flags["Ten"].Lower)
	require.True(t, flags["\""].IsQuote)
	require.True(t, flags["\""].IsPunct)
	require.True(t, flags[","].IsPunct)
	require.True(t, flags["42"].IsDigit)
	require.True(t, flags["1,000"].LikeNum)
	require.False(t, flags["1,000"].IsDigit)
	require.True(t, flags["\n\n"].IsSpace)
	require.True(t, flags["3rd"].LikeNum)
	require.False(t, flags["brave"].LikeNum)
	require.False(t, flags["fought"].IsPunct)
}

func TestRuleCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRule().Annotate(ctx, "text")
	require.True(t, errors.Is(err, context.Canceled))
}

func TestService(t *testing.T) {
	var got serviceRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{
			"tokens": [
				{"text": "Zelda", "dep": "nsubj", "head": 1},
				{"text": "fought", "dep": "ROOT", "head": 1},
				{"text": "!", "dep": "punct", "head": 9, "is_punct": true}
			],
			"ents": [{"text": "Zelda", "label": "PERSON", "start": 0, "end": 1}]
		}`))
	}))
	defer srv.Close()

	svc := NewServiceWithConfig(ServiceConfig{URL: srv.URL, TimeoutSeconds: 5}, BagOfWords...)
	doc, err := svc.Annotate(context.Background(), "Zelda fought!")
	require.NoError(t, err)

	require.Equal(t, "Zelda fought!", got.Text)
	require.Equal(t, BagOfWords, got.Disable)
	require.Equal(t, BagOfWords, svc.Disabled())

	require.Equal(t, 3, doc.Len())
	require.Equal(t, "zelda", doc.Tokens[0].Lower)
	require.Equal(t, 2, doc.Tokens[2].Index)
	require.Equal(t, 2, doc.Tokens[2].Head)
	require.True(t, doc.Tokens[2].IsPunct)
	require.Equal(t, []types.EntitySpan{{Text: "Zelda", Label: types.EntityPerson, Start: 0, End: 1}}, doc.Entities)
	require.Equal(t, "fought", doc.Head(doc.Tokens[0]).Text)
}

func TestServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	svc := NewServiceWithConfig(ServiceConfig{URL: srv.URL, TimeoutSeconds: 5})
	_, err := svc.Annotate(context.Background(), "text")
	require.Error(t, err)
	require.Contains(t, err.Error(), "503")
}

type mapCache struct {
	data    map[string][]byte
	failSet bool
	sets    int
}

func (m *mapCache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, errors.New("miss")
	}
	return v, nil
}

func (m *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.sets++
	if m.failSet {
		return errors.New("cache down")
	}
	m.data[key] = value
	return nil
}

type countingAnnotator struct {
	calls int
	fail  bool
}

func (c *countingAnnotator) Annotate(ctx context.Context, text string) (*types.Document, error) {
	c.calls++
	if c.fail {
		return nil, errors.New("annotator down")
	}
	return NewRule().Annotate(ctx, text)
}

func TestCached(t *testing.T) {
	ctx := context.Background()

	t.Run("second call served from cache", func(t *testing.T) {
		next := &countingAnnotator{}
		cache := &mapCache{data: map[string][]byte{}}
		c := NewCached(next, cache, time.Minute)

		first, err := c.Annotate(ctx, "Zelda fought")
		require.NoError(t, err)
		second, err := c.Annotate(ctx, "Zelda fought")
		require.NoError(t, err)

		require.Equal(t, 1, next.calls)
		require.Equal(t, texts(first), texts(second))
		require.Equal(t, first.Tokens, second.Tokens)
	})

	t.Run("disabled stages are part of the key", func(t *testing.T) {
		cache := &mapCache{data: map[string][]byte{}}
		a := NewCached(&countingAnnotator{}, cache, time.Minute)
		b := NewCached(&countingAnnotator{}, cache, time.Minute, BagOfWords...)
		require.NotEqual(t, a.key("text"), b.key("text"))
		require.Equal(t, a.key("text"), a.key("text"))
	})

	t.Run("cache failure falls through", func(t *testing.T) {
		next := &countingAnnotator{}
		cache := &mapCache{data: map[string][]byte{}, failSet: true}
		c := NewCached(next, cache, time.Minute)

		_, err := c.Annotate(ctx, "text")
		require.NoError(t, err)
		_, err = c.Annotate(ctx, "text")
		require.NoError(t, err)
		require.Equal(t, 2, next.calls)
		require.Equal(t, 2, cache.sets)
	})

	t.Run("annotator error is returned", func(t *testing.T) {
		c := NewCached(&countingAnnotator{fail: true}, &mapCache{data: map[string][]byte{}}, time.Minute)
		_, err := c.Annotate(ctx, "text")
		require.Error(t, err)
	})
}
