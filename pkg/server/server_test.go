package server

import (
	"bytes"
	"testing"

	"github.com/bastiangx/phrasemeter/pkg/config"
	"github.com/bastiangx/phrasemeter/pkg/strength"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func init() {
	log.SetLevel(log.FatalLevel)
}

func encodeRequests(t *testing.T, reqs ...any) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	for _, r := range reqs {
		require.NoError(t, enc.Encode(r))
	}
	return &buf
}

func newTestServer(in *bytes.Buffer, out *bytes.Buffer) *Server {
	engine := strength.NewEngine(nil, strength.WithChooser(strength.FirstChooser))
	cfg := config.DefaultConfig()
	cfg.Server.MaxPhraseLen = 64
	return NewServer(engine, cfg, 3, in, out)
}

func TestServerScoresPhrases(t *testing.T) {
	pen := 10.0
	in := encodeRequests(t,
		Request{ID: "a", Phrase: "correct horse battery staple"},
		Request{ID: "b", Action: ActionScore, Phrase: "correct horse battery staple", Penalty: &pen},
	)
	var out bytes.Buffer
	srv := newTestServer(in, &out)
	require.NoError(t, srv.Start())
	assert.Equal(t, uint64(2), srv.Served())

	dec := msgpack.NewDecoder(&out)

	var first ScoreResponse
	require.NoError(t, dec.Decode(&first))
	assert.Equal(t, "a", first.ID)
	assert.Equal(t, 4, first.Words)
	assert.Equal(t, 51.7, first.Entropy)
	assert.Equal(t, 0.0, first.Penalty)
	assert.False(t, first.Overridden)
	assert.Equal(t, 51.7, first.Adjusted)
	assert.NotEmpty(t, first.Offline.Formatted)
	assert.NotEmpty(t, first.Online.Flair)
	assert.Empty(t, first.Signals)

	var second ScoreResponse
	require.NoError(t, dec.Decode(&second))
	assert.Equal(t, "b", second.ID)
	assert.True(t, second.Overridden)
	assert.Equal(t, 10.0, second.Penalty)
	assert.Equal(t, 41.7, second.Adjusted)
}

func TestServerReportsSignals(t *testing.T) {
	in := encodeRequests(t, Request{ID: "sig", Phrase: "Peace Peace Peace Peace"})
	var out bytes.Buffer
	require.NoError(t, newTestServer(in, &out).Start())

	var resp ScoreResponse
	require.NoError(t, msgpack.NewDecoder(&out).Decode(&resp))
	require.NotEmpty(t, resp.Signals)
	names := make([]string, 0, len(resp.Signals))
	for _, s := range resp.Signals {
		names = append(names, s.Name)
		assert.NotZero(t, s.Score)
	}
	assert.Contains(t, names, "repetition")
	assert.Contains(t, names, "title_case")
}

func TestServerErrors(t *testing.T) {
	in := encodeRequests(t,
		Request{ID: "empty", Phrase: "   "},
		Request{ID: "long", Phrase: string(bytes.Repeat([]byte("a "), 40))},
		Request{ID: "odd", Action: "reload"},
	)
	var out bytes.Buffer
	require.NoError(t, newTestServer(in, &out).Start())

	dec := msgpack.NewDecoder(&out)
	var e1, e2, e3 ScoreError
	require.NoError(t, dec.Decode(&e1))
	require.NoError(t, dec.Decode(&e2))
	require.NoError(t, dec.Decode(&e3))

	assert.Equal(t, "empty", e1.ID)
	assert.Equal(t, CodeBadRequest, e1.Code)
	assert.Equal(t, "long", e2.ID)
	assert.Equal(t, CodeTooLong, e2.Code)
	assert.Equal(t, "odd", e3.ID)
	assert.Contains(t, e3.Error, "reload")
}

func TestServerHealth(t *testing.T) {
	in := encodeRequests(t,
		Request{ID: "x", Phrase: "one two"},
		Request{ID: "ping", Action: ActionHealth},
	)
	var out bytes.Buffer
	require.NoError(t, newTestServer(in, &out).Start())

	dec := msgpack.NewDecoder(&out)
	var skip ScoreResponse
	require.NoError(t, dec.Decode(&skip))
	var health HealthResponse
	require.NoError(t, dec.Decode(&health))
	assert.Equal(t, "ping", health.ID)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 3, health.Quotes)
	assert.Equal(t, uint64(1), health.Served)
}

func TestServerMalformedInput(t *testing.T) {
	in := bytes.NewBuffer([]byte{0xc1})
	var out bytes.Buffer
	err := newTestServer(in, &out).Start()
	require.Error(t, err)

	var resp ScoreError
	require.NoError(t, msgpack.NewDecoder(&out).Decode(&resp))
	assert.Equal(t, CodeBadRequest, resp.Code)
}

func TestServerKeepsServingAfterBadRequest(t *testing.T) {
	in := encodeRequests(t,
		map[string]any{"id": "a", "p": "correct horse", "pen": "12"},
		"not a request",
		Request{ID: "b", Phrase: "correct horse battery staple"},
	)
	var out bytes.Buffer
	srv := newTestServer(in, &out)
	require.NoError(t, srv.Start())
	assert.Equal(t, uint64(3), srv.Served())

	dec := msgpack.NewDecoder(&out)
	var bad ScoreError
	require.NoError(t, dec.Decode(&bad))
	assert.Equal(t, "a", bad.ID)
	assert.Equal(t, CodeBadRequest, bad.Code)

	var notMap ScoreError
	require.NoError(t, dec.Decode(&notMap))
	assert.Equal(t, "", notMap.ID)
	assert.Equal(t, CodeBadRequest, notMap.Code)

	var ok ScoreResponse
	require.NoError(t, dec.Decode(&ok))
	assert.Equal(t, "b", ok.ID)
	assert.Equal(t, 4, ok.Words)
}

func TestServerEncodeFailureIsInternalError(t *testing.T) {
	var out bytes.Buffer
	srv := newTestServer(&bytes.Buffer{}, &out)

	srv.sendResponse("x", make(chan int))

	var resp ScoreError
	require.NoError(t, msgpack.NewDecoder(&out).Decode(&resp))
	assert.Equal(t, "x", resp.ID)
	assert.Equal(t, CodeInternal, resp.Code)
}
