package server

import (
	sketch "github.com/gogpu/sketch"
)

// PredictRequest is the body of POST /predict: a canonical grid in row
// major order, values in [0, 1] with 1 as full ink.
type PredictRequest struct {
	Image []float64 `json:"image"`
}

// Prediction is one label's score.
type Prediction struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
	Distance    float64 `json:"distance"`
}

// Box is the ink bounding box in input pixels.
type Box struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// PredictResponse is returned by the predict endpoints and sent for every
// live result.
type PredictResponse struct {
	Seq         uint64       `json:"seq,omitempty"`
	Empty       bool         `json:"empty"`
	Label       string       `json:"label"`
	Probability float64      `json:"probability"`
	Confident   bool         `json:"confident"`
	Predictions []Prediction `json:"predictions"`
	Box         *Box         `json:"box,omitempty"`
	Nearest     string       `json:"nearest,omitempty"`
	ElapsedMS   float64      `json:"elapsed_ms"`
}

// ErrorResponse carries a failure message.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newPredictResponse(res *sketch.Result) PredictResponse {
	out := PredictResponse{
		Seq:         res.Seq,
		Empty:       res.Empty,
		Confident:   res.Confident(),
		Predictions: make([]Prediction, len(res.Predictions)),
		ElapsedMS:   float64(res.Elapsed.Microseconds()) / 1000,
	}
	for i, p := range res.Predictions {
		out.Predictions[i] = Prediction{
			Label:       string(p.Label),
			Probability: p.Probability,
			Distance:    p.Distance,
		}
	}
	if len(out.Predictions) > 0 {
		out.Label = out.Predictions[0].Label
		out.Probability = out.Predictions[0].Probability
	}
	if !res.Empty {
		out.Box = &Box{X: res.Box.X, Y: res.Box.Y, W: res.Box.W, H: res.Box.H}
		if res.Nearest.Grid != nil {
			out.Nearest = res.Nearest.Variant.String()
		}
	}
	return out
}
