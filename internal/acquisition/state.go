package acquisition

import (
	"time"

	"weatherwidget/internal/models"
)

// Phase is the position of an attempt in Idle -> Loading -> Success|Failed
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseFailed  Phase = "failed"
)

// State is the observable acquisition state. It is a value: transitions
// return a new State and never mutate their input.
type State struct {
	Phase     Phase                  `json:"phase"`
	Loading   bool                   `json:"loading"`
	Error     string                 `json:"error,omitempty"`
	Kind      Kind                   `json:"error_kind,omitempty"`
	Current   *models.CurrentWeather `json:"current,omitempty"`
	Forecast  models.ForecastSeries  `json:"forecast,omitempty"`
	AttemptID string                 `json:"attempt_id,omitempty"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// Initial is the state at application start
func Initial() State {
	return State{Phase: PhaseIdle}
}

// Begin enters Loading. The error is cleared; previously shown data stays
// until the attempt ends.
func Begin(prev State, attemptID string, now time.Time) State {
	return State{
		Phase:     PhaseLoading,
		Loading:   true,
		Current:   prev.Current,
		Forecast:  prev.Forecast,
		AttemptID: attemptID,
		UpdatedAt: now,
	}
}

// Succeed ends an attempt with data. Only the first MaxForecastPoints
// points of the forecast are kept.
func Succeed(prev State, current models.CurrentWeather, forecast models.ForecastSeries, now time.Time) State {
	return State{
		Phase:     PhaseSuccess,
		Current:   &current,
		Forecast:  forecast.Head(models.MaxForecastPoints),
		AttemptID: prev.AttemptID,
		UpdatedAt: now,
	}
}

// Fail ends an attempt with an error; current and forecast are cleared
func Fail(prev State, err *Error, now time.Time) State {
	return State{
		Phase:     PhaseFailed,
		Error:     err.Message(),
		Kind:      err.Kind,
		AttemptID: prev.AttemptID,
		UpdatedAt: now,
	}
}

// Consistent reports whether s satisfies the error/data exclusion
func (s State) Consistent() bool {
	if s.Error != "" {
		return s.Current == nil && s.Forecast == nil
	}
	return true
}
