package dataset

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestResponseCSVRoundTrip(t *testing.T) {
	t.Run("without predictions", func(t *testing.T) {
		d, err := NewResponseDataset(
			[]float64{0.5, -1.25, 3},
			[]string{"c1", "c2", "c3"},
			[]string{"d1", "d2", "d3"},
		)
		if err != nil {
			t.Fatal(err)
		}

		path := filepath.Join(t.TempDir(), "responses.csv")
		if err := d.SaveCSV(path); err != nil {
			t.Fatalf("SaveCSV() error = %v", err)
		}
		loaded, err := LoadResponseCSV(path)
		if err != nil {
			t.Fatalf("LoadResponseCSV() error = %v", err)
		}

		if !reflect.DeepEqual(loaded.Response, d.Response) ||
			!reflect.DeepEqual(loaded.CellLineIDs, d.CellLineIDs) ||
			!reflect.DeepEqual(loaded.DrugIDs, d.DrugIDs) {
			t.Errorf("round trip changed the data: got %v, want %v", loaded, d)
		}
		if loaded.HasPredictions() {
			t.Error("predictions appeared out of nowhere")
		}
	})

	t.Run("with predictions", func(t *testing.T) {
		d, err := NewResponseDataset(
			[]float64{0.5, -1.25},
			[]string{"c1", "c2"},
			[]string{"d1", "d2"},
		)
		if err != nil {
			t.Fatal(err)
		}
		if err := d.SetPredictions([]float64{0.4, -1.5}); err != nil {
			t.Fatal(err)
		}

		path := filepath.Join(t.TempDir(), "predictions.csv")
		if err := d.SaveCSV(path); err != nil {
			t.Fatalf("SaveCSV() error = %v", err)
		}
		loaded, err := LoadResponseCSV(path)
		if err != nil {
			t.Fatalf("LoadResponseCSV() error = %v", err)
		}
		if !loaded.HasPredictions() || !reflect.DeepEqual(loaded.Predictions, d.Predictions) {
			t.Errorf("Predictions = %v, want %v", loaded.Predictions, d.Predictions)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadResponseCSV(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestLoadFeatureViews(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("expression.csv", "c1,1,2,3\nc2,4,5,6\n")
	write("mutation.csv", "c1,0,1\nc2,1,0\n")

	f, err := LoadFeatureViews(dir)
	if err != nil {
		t.Fatalf("LoadFeatureViews() error = %v", err)
	}
	if !reflect.DeepEqual(f.ViewNames(), []string{"expression", "mutation"}) {
		t.Errorf("ViewNames() = %v", f.ViewNames())
	}
	if !reflect.DeepEqual(f.IDs(), []string{"c1", "c2"}) {
		t.Errorf("IDs() = %v", f.IDs())
	}
	vec, ok := f.Vector("expression", "c2")
	if !ok || !reflect.DeepEqual(vec, []float64{4, 5, 6}) {
		t.Errorf("Vector(expression, c2) = %v, %v", vec, ok)
	}

	t.Run("empty directory", func(t *testing.T) {
		if _, err := LoadFeatureViews(t.TempDir()); err == nil {
			t.Error("expected error for directory without feature files")
		}
	})
}
