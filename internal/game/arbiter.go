package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"sketch-guess/internal/classifier"

	"github.com/rs/zerolog"
)

// WinThreshold is the confidence a matching top label must exceed.
const WinThreshold = 0.01

var ErrNoResults = errors.New("classifier returned no results")

// Verdict describes what the arbiter did with one delivery.
type Verdict struct {
	Seq     uint64
	Err     error
	Stale   bool
	Applied bool
	Top     classifier.Prediction
	Win     bool
}

type Arbiter struct {
	ctrl        *Controller
	display     *Display
	dropStale   bool
	lastApplied uint64
	log         zerolog.Logger
}

// Handle applies one classifier delivery. Failures are logged and leave the
// round and the display untouched.
func (a *Arbiter) Handle(d classifier.Delivery) Verdict {
	v := Verdict{Seq: d.Seq}
	predictions, err := Normalize(d)
	if err != nil {
		a.log.Error().Err(err).Uint64("seq", d.Seq).Msg("classification failed")
		v.Err = err
		return v
	}
	if a.dropStale && d.Seq != 0 && d.Seq <= a.lastApplied {
		a.log.Debug().Uint64("seq", d.Seq).Uint64("last_applied", a.lastApplied).Msg("stale classification dropped")
		v.Stale = true
		return v
	}
	if d.Seq > a.lastApplied {
		a.lastApplied = d.Seq
	}

	top, _ := Top(predictions)
	v.Applied = true
	v.Top = top
	a.display.SetLabel(DisplayWord(top.Label))
	a.display.SetConfidence(FormatConfidence(top.Confidence))

	if IsWin(top.Label, a.ctrl.TargetWord(), top.Confidence) {
		v.Win = a.ctrl.Win()
	}
	a.log.Debug().Uint64("seq", d.Seq).Str("label", top.Label).Float64("confidence", top.Confidence).Bool("win", v.Win).Msg("classification applied")
	return v
}

// Normalize turns a raw delivery into a clean result list or an error. A
// JSON array in the reply's error slot is the result list, not a failure.
func Normalize(d classifier.Delivery) ([]classifier.Prediction, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	results := d.Reply.Results
	if errSlot := bytes.TrimSpace(d.Reply.Error); len(errSlot) > 0 && !bytes.Equal(errSlot, []byte("null")) {
		if errSlot[0] != '[' {
			return nil, fmt.Errorf("classifier error: %s", classifier.ErrorText(errSlot))
		}
		results = errSlot
	}
	results = bytes.TrimSpace(results)
	if len(results) == 0 || bytes.Equal(results, []byte("null")) {
		return nil, ErrNoResults
	}
	var predictions []classifier.Prediction
	if err := json.Unmarshal(results, &predictions); err != nil {
		return nil, fmt.Errorf("malformed classifier results: %w", err)
	}
	if len(predictions) == 0 {
		return nil, ErrNoResults
	}
	for i := range predictions {
		predictions[i].Confidence = math.Min(1, math.Max(0, predictions[i].Confidence))
	}
	return predictions, nil
}

// Top returns the highest-confidence prediction; ties go to the earlier one.
func Top(predictions []classifier.Prediction) (classifier.Prediction, bool) {
	if len(predictions) == 0 {
		return classifier.Prediction{}, false
	}
	best := predictions[0]
	for _, p := range predictions[1:] {
		if p.Confidence > best.Confidence {
			best = p
		}
	}
	return best, true
}

// FormatConfidence renders floor(confidence*100) as a percentage.
func FormatConfidence(confidence float64) string {
	return strconv.Itoa(int(math.Floor(confidence*100))) + "%"
}

// IsWin compares the raw label, underscores included, with the target.
func IsWin(label, target string, confidence float64) bool {
	return target != "" && label == target && confidence > WinThreshold
}
