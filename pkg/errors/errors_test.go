package errors

import (
	"strings"
	"testing"
)

func TestConfigurationErrorMessage(t *testing.T) {
	err := NewConfigurationError("ParseSplitMode", "split mode", "LXO", "LPO", "LCO", "LDO")
	msg := err.Error()
	for _, want := range []string{"ParseSplitMode", "LXO", "LPO", "LCO", "LDO"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q does not mention %q", msg, want)
		}
	}

	// Without choices the message switches to the invalid-value form.
	err = NewConfigurationError("SplitDataset", "n_splits", 1)
	if !strings.Contains(err.Error(), "invalid n_splits '1'") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestDataIntegrityError(t *testing.T) {
	err := NewDataIntegrityError("FeatureMatrix", []string{"c9", "c2"}, 4)

	var integrityErr *DataIntegrityError
	if !As(err, &integrityErr) {
		t.Fatalf("As() failed for %T", err)
	}
	if got := integrityErr.Proportion(); got != 0.5 {
		t.Errorf("Proportion() = %v, want 0.5", got)
	}
	// Missing ids are listed sorted, so messages are stable.
	msg := err.Error()
	if !strings.Contains(msg, "c2, c9") {
		t.Errorf("missing ids not sorted in %q", msg)
	}
	if !strings.Contains(msg, "2 of 4") {
		t.Errorf("counts absent from %q", msg)
	}
}

func TestErrorTypesSurviveWrapping(t *testing.T) {
	inner := NewNotFittedError("LinearRegression", "Predict")
	wrapped := Wrapf(WithStack(inner), "split %d", 3)

	var notFitted *NotFittedError
	if !As(wrapped, &notFitted) {
		t.Error("NotFittedError lost through wrapping")
	}
	if notFitted.ModelName != "LinearRegression" {
		t.Errorf("ModelName = %q", notFitted.ModelName)
	}

	if !Is(Wrap(ErrEmptyData, "Train"), ErrEmptyData) {
		t.Error("sentinel lost through wrapping")
	}
}

func TestModelErrorUnwrap(t *testing.T) {
	err := NewModelError("LinearRegression.Train", "singular matrix", ErrSingularMatrix)
	if !Is(err, ErrSingularMatrix) {
		t.Error("ModelError does not unwrap to its cause")
	}
}

func TestWarningHandler(t *testing.T) {
	var captured []error
	SetWarningHandler(func(w error) {
		captured = append(captured, w)
	})
	defer SetWarningHandler(func(w error) {})

	warning := NewInconsistentStateWarning("robustness", "methylation")
	Warn(warning)

	if len(captured) != 1 {
		t.Fatalf("captured %d warnings, want 1", len(captured))
	}
	var inconsistent *InconsistentStateWarning
	if !As(captured[0], &inconsistent) {
		t.Fatalf("warning type = %T", captured[0])
	}
	if inconsistent.Test != "robustness" || inconsistent.View != "methylation" {
		t.Errorf("warning fields = %+v", inconsistent)
	}
	if !strings.Contains(warning.Error(), "Skipping randomization test") {
		t.Errorf("unexpected message: %q", warning.Error())
	}
}

func TestZerologWarnFuncTakesPrecedence(t *testing.T) {
	var viaHandler, viaZerolog int
	SetWarningHandler(func(error) { viaHandler++ })
	SetZerologWarnFunc(func(error) { viaZerolog++ })
	defer func() {
		SetZerologWarnFunc(nil)
		SetWarningHandler(func(error) {})
	}()

	Warn(New("something odd"))
	if viaZerolog != 1 || viaHandler != 0 {
		t.Errorf("zerolog = %d, handler = %d; want 1, 0", viaZerolog, viaHandler)
	}
}
