package sketch

import (
	"image"
	"math"
	"sync"
	"testing"

	"github.com/gogpu/sketch/glyph"
	"github.com/gogpu/sketch/prototype"
)

var testPlan = prototype.Plan{
	Families: []string{"pattern"},
	Sizes:    []float64{15, 25},
	Offsets:  []image.Point{{}, {X: 4, Y: 2}},
}

var (
	testPipelineOnce sync.Once
	testPipelineVal  *Pipeline
	testPipelineErr  error
)

// testPipeline returns a pipeline over a small font-free bank, shared by
// the tests in this package.
func testPipeline(t testing.TB) *Pipeline {
	t.Helper()
	testPipelineOnce.Do(func() {
		testPipelineVal, testPipelineErr = New(
			WithRenderer(glyph.NewPatternRenderer()),
			WithPlan(testPlan),
		)
	})
	if testPipelineErr != nil {
		t.Fatalf("New() error = %v", testPipelineErr)
	}
	return testPipelineVal
}

// assertPredictions checks the ten-way distribution of a Result.
func assertPredictions(t *testing.T, res *Result) {
	t.Helper()
	if len(res.Predictions) != 10 {
		t.Fatalf("len(Predictions) = %d, want 10", len(res.Predictions))
	}
	sum := 0.0
	for i, p := range res.Predictions {
		if i > 0 && p.Probability > res.Predictions[i-1].Probability {
			t.Errorf("Predictions not sorted at %d", i)
		}
		sum += p.Probability
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Errorf("probabilities sum to %v, want 1", sum)
	}
}
