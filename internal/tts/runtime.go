package tts

import (
	"errors"
	"fmt"
	"sync"

	"github.com/book-expert/logger"
	ort "github.com/yalue/onnxruntime_go"
)

// sessionCache opens inference sessions on first use and shares them across
// requests. Models load lazily so startup stays fast and voices whose model
// never gets used cost nothing.
type sessionCache struct {
	mu            sync.Mutex
	sharedLibrary string
	sessions      map[string]*ort.DynamicAdvancedSession
	log           *logger.Logger
}

func newSessionCache(sharedLibrary string, log *logger.Logger) *sessionCache {
	return &sessionCache{
		mu:            sync.Mutex{},
		sharedLibrary: sharedLibrary,
		sessions:      make(map[string]*ort.DynamicAdvancedSession),
		log:           log,
	}
}

// session returns the cached session for the model, creating it on first
// use. The input and output names must match the model's graph.
func (c *sessionCache) session(
	modelPath string,
	inputNames, outputNames []string,
) (*ort.DynamicAdvancedSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cached, found := c.sessions[modelPath]
	if found {
		return cached, nil
	}

	err := c.ensureEnvironment()
	if err != nil {
		return nil, err
	}

	created, err := ort.NewDynamicAdvancedSession(modelPath, inputNames, outputNames, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", modelPath, err)
	}

	c.sessions[modelPath] = created
	c.log.Info("Loaded model %s.", modelPath)

	return created, nil
}

// ensureEnvironment initializes the onnxruntime environment once per
// process. Callers hold c.mu.
func (c *sessionCache) ensureEnvironment() error {
	if ort.IsInitialized() {
		return nil
	}

	if c.sharedLibrary != "" {
		ort.SetSharedLibraryPath(c.sharedLibrary)
	}

	err := ort.InitializeEnvironment()
	if err != nil {
		return fmt.Errorf("failed to initialize onnxruntime: %w", err)
	}

	return nil
}

// close destroys every open session and tears down the environment.
func (c *sessionCache) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for path, session := range c.sessions {
		_ = session.Destroy()
		delete(c.sessions, path)
	}

	if ort.IsInitialized() {
		_ = ort.DestroyEnvironment()
	}
}

// destroyValues releases tensors created for a single run.
func destroyValues(values ...ort.Value) {
	for _, value := range values {
		if value != nil {
			_ = value.Destroy()
		}
	}
}

// tensorSamples copies the float32 payload out of an output tensor before it
// is destroyed.
func tensorSamples(value ort.Value) ([]float32, error) {
	tensor, ok := value.(*ort.Tensor[float32])
	if !ok {
		return nil, errors.New("unexpected output tensor type")
	}

	data := tensor.GetData()
	samples := make([]float32, len(data))
	copy(samples, data)

	return samples, nil
}
