package clip

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/bagtoad/slidegen/internal/onnxlib"
	ort "github.com/yalue/onnxruntime_go"
)

// PromptTemplate turns a descriptor into the text CLIP compares against.
const PromptTemplate = "a presentation slide with %s"

// Session is a loaded CLIP model. Profile calls are serialised.
type Session struct {
	mu        sync.Mutex
	session   *ort.DynamicAdvancedSession
	tokenizer *Tokenizer
}

// NewSession loads the model from ModelsDir. libPath overrides the ONNX
// Runtime shared library; when empty the embedded copy is tried first, then
// the platform default location.
func NewSession(libPath string) (*Session, error) {
	if libPath == "" {
		if extracted, err := onnxlib.Extract(); err == nil {
			libPath = extracted
		} else {
			libPath = DefaultRuntimePath()
		}
	}
	ort.SetSharedLibraryPath(libPath)
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("cannot initialize ONNX Runtime: %w", err)
	}

	dir, err := ModelsDir()
	if err != nil {
		return nil, err
	}
	modelPath, err := filePath(dir, "model.onnx")
	if err != nil {
		return nil, err
	}
	vocab, err := filePath(dir, "vocab.json")
	if err != nil {
		return nil, err
	}
	merges, err := filePath(dir, "merges.txt")
	if err != nil {
		return nil, err
	}
	tok, err := LoadTokenizer(vocab, merges)
	if err != nil {
		return nil, fmt.Errorf("cannot load tokenizer: %w", err)
	}

	s, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{"input_ids", "pixel_values", "attention_mask"},
		[]string{"logits_per_image", "logits_per_text"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create ONNX session: %w", err)
	}
	return &Session{session: s, tokenizer: tok}, nil
}

// Profile scores the image at path against each descriptor and returns the
// softmax distribution, in descriptor order.
func (s *Session) Profile(path string, descriptors []string) ([]float32, error) {
	if len(descriptors) == 0 {
		return nil, fmt.Errorf("no descriptors")
	}
	pixels, err := PreprocessFile(path)
	if err != nil {
		return nil, err
	}

	prompts := make([]string, len(descriptors))
	for i, d := range descriptors {
		prompts[i] = fmt.Sprintf(PromptTemplate, d)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.tokenizer.EncodeBatch(prompts)
	mask := make([]int64, len(ids))
	for i, id := range ids {
		if id != 0 {
			mask[i] = 1
		}
	}
	n := int64(len(prompts))

	idsT, err := ort.NewTensor(ort.NewShape(n, contextLen), ids)
	if err != nil {
		return nil, fmt.Errorf("cannot create input_ids tensor: %w", err)
	}
	defer idsT.Destroy()
	pixT, err := ort.NewTensor(ort.NewShape(1, 3, imageSize, imageSize), pixels)
	if err != nil {
		return nil, fmt.Errorf("cannot create pixel_values tensor: %w", err)
	}
	defer pixT.Destroy()
	maskT, err := ort.NewTensor(ort.NewShape(n, contextLen), mask)
	if err != nil {
		return nil, fmt.Errorf("cannot create attention_mask tensor: %w", err)
	}
	defer maskT.Destroy()

	perImage, err := ort.NewEmptyTensor[float32](ort.NewShape(1, n))
	if err != nil {
		return nil, fmt.Errorf("cannot create output tensor: %w", err)
	}
	defer perImage.Destroy()
	perText, err := ort.NewEmptyTensor[float32](ort.NewShape(n, 1))
	if err != nil {
		return nil, fmt.Errorf("cannot create output tensor: %w", err)
	}
	defer perText.Destroy()

	if err := s.session.Run([]ort.Value{idsT, pixT, maskT}, []ort.Value{perImage, perText}); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	return Softmax(perImage.GetData()), nil
}

// Destroy releases the session and the runtime environment.
func (s *Session) Destroy() {
	if s.session != nil {
		s.session.Destroy()
	}
	ort.DestroyEnvironment()
}

// Softmax normalises logits into probabilities.
func Softmax(logits []float32) []float32 {
	if len(logits) == 0 {
		return nil
	}
	hi := logits[0]
	for _, v := range logits[1:] {
		hi = max(hi, v)
	}
	var sum float32
	out := make([]float32, len(logits))
	for i, v := range logits {
		out[i] = float32(math.Exp(float64(v - hi)))
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// DefaultRuntimePath is where a system-wide ONNX Runtime is usually found.
func DefaultRuntimePath() string {
	switch runtime.GOOS {
	case "darwin":
		if runtime.GOARCH == "arm64" {
			return "/opt/homebrew/lib/libonnxruntime.dylib"
		}
		return "/usr/local/lib/libonnxruntime.dylib"
	case "linux":
		return "/usr/lib/libonnxruntime.so"
	case "windows":
		return "onnxruntime.dll"
	default:
		return "libonnxruntime.so"
	}
}
