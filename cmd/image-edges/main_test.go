package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
)

// writeLineImage writes a 100x100 mid-gray PNG with a white column at x=50.
func writeLineImage(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.RGBA{128, 128, 128, 255})
		}
		img.Set(50, y, color.White)
	}

	path := filepath.Join(t.TempDir(), "line.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return path
}

// run executes the app with args and returns what it wrote to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"image-edges", "--log-level", "error"}, args...))
	return out.String(), err
}

type detectOutput struct {
	Width       int  `json:"width"`
	Height      int  `json:"height"`
	EdgeFound   bool `json:"edge_found"`
	BoundingBox *struct {
		MinX int `json:"min_x"`
		MaxX int `json:"max_x"`
	} `json:"bounding_box"`
	Anchors []struct {
		ID    string `json:"id"`
		Color string `json:"color"`
	} `json:"anchors"`
	Stats struct {
		HighThreshold float64 `json:"high_threshold"`
		EdgePixels    int     `json:"edge_pixels"`
	} `json:"stats"`
}

func decodeDetect(t *testing.T, out string) detectOutput {
	t.Helper()
	var got detectOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	return got
}

func TestDetect(t *testing.T) {
	path := writeLineImage(t)

	out, err := run(t, "detect", path)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	got := decodeDetect(t, out)

	if got.Width != 100 || got.Height != 100 {
		t.Errorf("dimensions: got %dx%d", got.Width, got.Height)
	}
	if !got.EdgeFound || got.BoundingBox == nil {
		t.Fatalf("expected edges, got %+v", got)
	}
	if got.BoundingBox.MinX > 50 || got.BoundingBox.MaxX < 50 {
		t.Errorf("bounding box should span the line at x=50, got %+v", *got.BoundingBox)
	}
	if got.Stats.HighThreshold != 40 {
		t.Errorf("default high threshold: got %v, want 40", got.Stats.HighThreshold)
	}
	if len(got.Anchors) != 5 {
		t.Errorf("anchors: got %d, want 5", len(got.Anchors))
	}
	for _, a := range got.Anchors {
		if !strings.HasPrefix(a.Color, "#") {
			t.Errorf("anchor %s: color %q", a.ID, a.Color)
		}
	}
}

func TestDetect_WritesMaskAndOverlay(t *testing.T) {
	path := writeLineImage(t)
	dir := t.TempDir()
	maskPath := filepath.Join(dir, "mask.png")
	overlayPath := filepath.Join(dir, "overlay.png")

	if _, err := run(t, "detect", "--mask", maskPath, "--overlay", overlayPath, path); err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	for _, p := range []string{maskPath, overlayPath} {
		f, err := os.Open(p)
		if err != nil {
			t.Fatalf("%s not written: %v", filepath.Base(p), err)
		}
		cfg, err := png.DecodeConfig(f)
		f.Close()
		if err != nil {
			t.Fatalf("%s is not a PNG: %v", filepath.Base(p), err)
		}
		if cfg.Width != 100 || cfg.Height != 100 {
			t.Errorf("%s: got %dx%d", filepath.Base(p), cfg.Width, cfg.Height)
		}
	}
}

func TestDetect_ThresholdFlags(t *testing.T) {
	path := writeLineImage(t)

	out, err := run(t, "--high", "1000", "--low", "500", "detect", path)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if got := decodeDetect(t, out); got.EdgeFound || got.Stats.EdgePixels != 0 {
		t.Errorf("thresholds above the maximum gradient should find nothing, got %+v", got)
	}

	out, err = run(t, "--threshold-policy", "relative", "detect", path)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	got := decodeDetect(t, out)
	if !got.EdgeFound {
		t.Error("relative policy should find the line")
	}
	if got.Stats.HighThreshold == 40 {
		t.Error("relative policy should derive its own high threshold")
	}
}

func TestDetect_Errors(t *testing.T) {
	path := writeLineImage(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing argument", []string{"detect"}, "IMAGE argument required"},
		{"missing file", []string{"detect", filepath.Join(t.TempDir(), "nope.png")}, "nope.png"},
		{"unknown policy", []string{"--threshold-policy", "adaptive", "detect", path}, "adaptive"},
		{"inverted thresholds", []string{"--high", "10", "--low", "20", "detect", path}, "invalid input"},
		{"bad log level", []string{"--log-level", "loud", "detect", path}, "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	Version, BuildTime, GitCommit = "9.9.9", "today", "abc123"
	defer func() { Version, BuildTime, GitCommit = "dev", "unknown", "unknown" }()

	out, err := run(t, "--version")
	if err != nil {
		t.Fatalf("--version failed: %v", err)
	}
	for _, want := range []string{"image-edges 9.9.9", "Build time: today", "Git commit: abc123"} {
		if !strings.Contains(out, want) {
			t.Errorf("version output missing %q:\n%s", want, out)
		}
	}
}

func TestNewApp_Commands(t *testing.T) {
	app := newApp()
	names := map[string]*cli.Command{}
	for _, c := range app.Commands {
		names[c.Name] = c
	}
	for _, want := range []string{"serve", "detect"} {
		if names[want] == nil {
			t.Errorf("missing command %s", want)
		}
	}
	if app.Action == nil {
		t.Error("serve should run when no command is given")
	}
}
