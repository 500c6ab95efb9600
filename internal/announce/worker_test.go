// Package announce_test tests the NATS announce worker.
package announce_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/book-expert/logger"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aperture-labs/glados-mcp/internal/announce"
	"github.com/aperture-labs/glados-mcp/internal/speech"
	"github.com/aperture-labs/glados-mcp/internal/voice"
)

const requestTimeout = 5 * time.Second

var (
	errMockSpeaker = errors.New("mock speaker failure")
	errMockStore   = errors.New("mock store failure")
)

// fakeSpeaker is a mock dispatcher for testing the worker.
type fakeSpeaker struct {
	mu       sync.Mutex
	failWith error
	wav      []byte
	spoke    []speech.Request
	rendered []speech.Request
}

func (f *fakeSpeaker) Speak(_ context.Context, req speech.Request) (speech.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return speech.Result{}, f.failWith
	}

	f.spoke = append(f.spoke, req)

	return f.result(req), nil
}

func (f *fakeSpeaker) Render(
	_ context.Context,
	req speech.Request,
) (speech.Result, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return speech.Result{}, nil, f.failWith
	}

	f.rendered = append(f.rendered, req)

	return f.result(req), f.wav, nil
}

func (f *fakeSpeaker) result(req speech.Request) speech.Result {
	voiceID := req.VoiceID
	if voiceID == "" {
		voiceID = voice.DefaultVoiceID
	}

	return speech.Result{
		RequestID: "req-fixed",
		VoiceID:   voiceID,
		Category:  voice.CategoryGLaDOS,
		Spoken:    req.Text,
		Seconds:   0.25,
	}
}

func (f *fakeSpeaker) spokeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.spoke)
}

// fakeStore is a mock clip store for testing the worker.
type fakeStore struct {
	mu      sync.Mutex
	failPut bool
	objects map[string][]byte
}

func (f *fakeStore) Upload(_ context.Context, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failPut {
		return errMockStore
	}

	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}

	f.objects[key] = append([]byte(nil), data...)

	return nil
}

func (f *fakeStore) Download(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, found := f.objects[key]
	if !found {
		return nil, errMockStore
	}

	return data, nil
}

func (f *fakeStore) object(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, found := f.objects[key]

	return data, found
}

// createTestNatsServer provides a NATS server and connection for tests.
func createTestNatsServer(t *testing.T) (*server.Server, *nats.Conn) {
	t.Helper()

	opts := test.DefaultTestOptions
	opts.Port = -1
	natsServer := test.RunServer(&opts)

	natsConnection, err := nats.Connect(natsServer.ClientURL())
	require.NoError(t, err)

	t.Cleanup(func() {
		natsConnection.Close()
		natsServer.Shutdown()
	})

	return natsServer, natsConnection
}

// setupTest boots a worker over an embedded NATS server and returns the
// pieces the test pokes at.
func setupTest(
	t *testing.T,
	speaker *fakeSpeaker,
	store *fakeStore,
) (*nats.Conn, context.CancelFunc, chan error) {
	t.Helper()

	_, natsConnection := createTestNatsServer(t)

	log, err := logger.New(t.TempDir(), "announce-test.log")
	require.NoError(t, err)

	workerInstance := announce.New(natsConnection, "glados.announce", store, speaker, log)

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)

	go func() {
		errChan <- workerInstance.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return natsConnection.NumSubscriptions() > 0
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, natsConnection.Flush())

	return natsConnection, cancel, errChan
}

func requestAck(t *testing.T, natsConnection *nats.Conn, payload string) announce.Ack {
	t.Helper()

	reply, err := natsConnection.Request("glados.announce", []byte(payload), requestTimeout)
	require.NoError(t, err)

	var ack announce.Ack

	err = json.Unmarshal(reply.Data, &ack)
	require.NoError(t, err)

	return ack
}

func TestWorker_SpeakRequest(t *testing.T) {
	t.Parallel()

	speaker := &fakeSpeaker{
		mu:       sync.Mutex{},
		failWith: nil,
		wav:      nil,
		spoke:    nil,
		rendered: nil,
	}
	store := &fakeStore{mu: sync.Mutex{}, failPut: false, objects: nil}
	natsConnection, cancel, errChan := setupTest(t, speaker, store)

	ack := requestAck(
		t,
		natsConnection,
		`{"text": "Deploy finished", "voice": "af_bella", "volume": 0.3}`,
	)

	assert.True(t, ack.OK)
	assert.Equal(t, "req-fixed", ack.RequestID)
	assert.Equal(t, "af_bella", ack.Voice)
	assert.Empty(t, ack.AudioKey)
	assert.Empty(t, ack.Error)

	speaker.mu.Lock()
	require.Len(t, speaker.spoke, 1)
	assert.Equal(t, "Deploy finished", speaker.spoke[0].Text)
	assert.Equal(t, "af_bella", speaker.spoke[0].VoiceID)
	require.NotNil(t, speaker.spoke[0].Volume)
	assert.InEpsilon(t, 0.3, *speaker.spoke[0].Volume, 0.0001)
	assert.Empty(t, speaker.rendered)
	speaker.mu.Unlock()

	cancel()

	shutdownErr := <-errChan
	assert.NoError(t, shutdownErr)
}

func TestWorker_ReturnAudioStoresClip(t *testing.T) {
	t.Parallel()

	speaker := &fakeSpeaker{
		mu:       sync.Mutex{},
		failWith: nil,
		wav:      []byte("RIFF rendered clip"),
		spoke:    nil,
		rendered: nil,
	}
	store := &fakeStore{mu: sync.Mutex{}, failPut: false, objects: nil}
	natsConnection, cancel, errChan := setupTest(t, speaker, store)

	defer func() {
		cancel()
		assert.NoError(t, <-errChan)
	}()

	ack := requestAck(t, natsConnection, `{"text": "hello", "return_audio": true}`)

	assert.True(t, ack.OK)
	assert.Equal(t, voice.DefaultVoiceID, ack.Voice)
	require.True(t, strings.HasSuffix(ack.AudioKey, ".wav"))

	stored, found := store.object(ack.AudioKey)
	require.True(t, found)
	assert.Equal(t, []byte("RIFF rendered clip"), stored)

	speaker.mu.Lock()
	assert.Len(t, speaker.rendered, 1)
	assert.Empty(t, speaker.spoke)
	speaker.mu.Unlock()
}

func TestWorker_MalformedPayload(t *testing.T) {
	t.Parallel()

	speaker := &fakeSpeaker{
		mu:       sync.Mutex{},
		failWith: nil,
		wav:      nil,
		spoke:    nil,
		rendered: nil,
	}
	store := &fakeStore{mu: sync.Mutex{}, failPut: false, objects: nil}
	natsConnection, cancel, errChan := setupTest(t, speaker, store)

	defer func() {
		cancel()
		assert.NoError(t, <-errChan)
	}()

	ack := requestAck(t, natsConnection, `this is not json`)

	assert.False(t, ack.OK)
	assert.NotEmpty(t, ack.Error)
	assert.Zero(t, speaker.spokeCount())
}

func TestWorker_EmptyText(t *testing.T) {
	t.Parallel()

	speaker := &fakeSpeaker{
		mu:       sync.Mutex{},
		failWith: nil,
		wav:      nil,
		spoke:    nil,
		rendered: nil,
	}
	store := &fakeStore{mu: sync.Mutex{}, failPut: false, objects: nil}
	natsConnection, cancel, errChan := setupTest(t, speaker, store)

	defer func() {
		cancel()
		assert.NoError(t, <-errChan)
	}()

	ack := requestAck(t, natsConnection, `{"text": "   "}`)

	assert.False(t, ack.OK)
	assert.Contains(t, ack.Error, announce.ErrEmptyRequest.Error())
	assert.Zero(t, speaker.spokeCount())
}

func TestWorker_SpeakerFailure(t *testing.T) {
	t.Parallel()

	speaker := &fakeSpeaker{
		mu:       sync.Mutex{},
		failWith: errMockSpeaker,
		wav:      nil,
		spoke:    nil,
		rendered: nil,
	}
	store := &fakeStore{mu: sync.Mutex{}, failPut: false, objects: nil}
	natsConnection, cancel, errChan := setupTest(t, speaker, store)

	defer func() {
		cancel()
		assert.NoError(t, <-errChan)
	}()

	ack := requestAck(t, natsConnection, `{"text": "hello"}`)

	assert.False(t, ack.OK)
	assert.Contains(t, ack.Error, errMockSpeaker.Error())
}

func TestWorker_StoreFailure(t *testing.T) {
	t.Parallel()

	speaker := &fakeSpeaker{
		mu:       sync.Mutex{},
		failWith: nil,
		wav:      []byte("clip"),
		spoke:    nil,
		rendered: nil,
	}
	store := &fakeStore{mu: sync.Mutex{}, failPut: true, objects: nil}
	natsConnection, cancel, errChan := setupTest(t, speaker, store)

	defer func() {
		cancel()
		assert.NoError(t, <-errChan)
	}()

	ack := requestAck(t, natsConnection, `{"text": "hello", "return_audio": true}`)

	assert.False(t, ack.OK)
	assert.Empty(t, ack.AudioKey)
	assert.Contains(t, ack.Error, errMockStore.Error())
}

func TestWorker_FireAndForgetPublish(t *testing.T) {
	t.Parallel()

	speaker := &fakeSpeaker{
		mu:       sync.Mutex{},
		failWith: nil,
		wav:      nil,
		spoke:    nil,
		rendered: nil,
	}
	store := &fakeStore{mu: sync.Mutex{}, failPut: false, objects: nil}
	natsConnection, cancel, errChan := setupTest(t, speaker, store)

	defer func() {
		cancel()
		assert.NoError(t, <-errChan)
	}()

	err := natsConnection.Publish("glados.announce", []byte(`{"text": "no reply wanted"}`))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return speaker.spokeCount() == 1
	}, requestTimeout, 5*time.Millisecond)
}
