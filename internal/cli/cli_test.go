package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/math-2025/protected-geo/config"
	"github.com/math-2025/protected-geo/obfuscate"
	"github.com/math-2025/protected-geo/store"
)

type testCLI struct {
	*CLI
	out   *bytes.Buffer
	store *store.MemoryStore
}

func newTestCLI(input string) *testCLI {
	out := &bytes.Buffer{}
	s := store.NewMemoryStore()
	c := New(strings.NewReader(input), out, io.Discard, LogInfo)
	c.openStore = func(context.Context, config.Store) (store.Store, error) {
		return s, nil
	}
	return &testCLI{CLI: c, out: out, store: s}
}

func (c *testCLI) run(t *testing.T, args ...string) error {
	t.Helper()
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func (c *testCLI) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	if err := c.run(t, args...); err != nil {
		t.Fatalf("%v failed: %v\n%s", args, err, c.out.String())
	}
	return c.out.String()
}

func assertContains(t *testing.T, output string, expected ...string) {
	t.Helper()
	for _, e := range expected {
		if !strings.Contains(output, e) {
			t.Errorf("expected the output to contain %q, actual:\n%s", e, output)
		}
	}
}

func TestEncryptDecrypt(t *testing.T) {
	out := newTestCLI("").mustRun(t, "encrypt", "--key", "commander", "40.4093", "49.8671")
	assertContains(t, out, "40.006870473420875", "46.37589075683223")

	out = newTestCLI("").mustRun(t, "decrypt", "-k", "commander", "40.006870473420875", "46.37589075683223")
	assertContains(t, out, "latitude", "longitude", "40.409")
}

func TestEncryptPromptsForTheKey(t *testing.T) {
	out := newTestCLI("commander\n").mustRun(t, "encrypt", "40.4093", "49.8671")
	assertContains(t, out, "Enter the key", "40.006870473420875")
}

func TestEncryptWithoutKey(t *testing.T) {
	for _, input := range []string{"", "\n", "   \n"} {
		err := newTestCLI(input).run(t, "encrypt", "1", "2")
		if err == nil {
			t.Errorf("%q: expected an error", input)
		}
	}
}

func TestInvalidCoordinate(t *testing.T) {
	err := newTestCLI("").run(t, "encrypt", "-k", "commander", "north", "2")
	if err == nil || !strings.Contains(err.Error(), "invalid latitude") {
		t.Errorf("expected an invalid latitude error, actual %v", err)
	}
	err = newTestCLI("").run(t, "decrypt", "-k", "commander", "1", "east")
	if err == nil || !strings.Contains(err.Error(), "invalid longitude") {
		t.Errorf("expected an invalid longitude error, actual %v", err)
	}
}

func TestVerify(t *testing.T) {
	args := []string{"verify", "40.006870473420875", "46.37589075683223", "--original-lat", "40.4093", "--original-lng", "49.8671"}

	out := newTestCLI("").mustRun(t, append(args, "-k", "commander")...)
	assertContains(t, out, "the key matches")

	c := newTestCLI("")
	err := c.run(t, append(args, "-k", "Commander")...)
	if !errors.Is(err, errKeyMismatch) {
		t.Errorf("expected %v, actual %v", errKeyMismatch, err)
	}
	assertContains(t, c.out.String(), "the key does not match")
}

func TestTrace(t *testing.T) {
	out := newTestCLI("").mustRun(t, "trace", "-k", "commander", "40.4093", "49.8671")
	assertContains(t, out,
		"1. Collatz Diffusion",
		"2. Prime Jump",
		"3. Fibonacci Spiral",
		"4. Affine Transformation",
		"5. Logarithmic Spiral",
		"40.006870473420875, 46.37589075683223")
}

func TestMessages(t *testing.T) {
	out := newTestCLI("").mustRun(t, "message", "encrypt", "A", "B")
	assertContains(t, out, "[212,238,223]")

	out = newTestCLI("").mustRun(t, "message", "decrypt", "[212,220]")
	if strings.TrimSpace(out) != "AB" {
		t.Errorf("expected AB, actual %q", out)
	}

	out = newTestCLI("").mustRun(t, "message", "decrypt", "oops")
	assertContains(t, out, obfuscate.DecryptionError)
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "route.toml")
	content := "[[coordinate]]\nid = \"alpha\"\nlat = 40.4093\nlng = 49.8671\n\n[[message]]\nid = \"m1\"\ntext = \"AB\"\n"
	if err := os.WriteFile(input, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	encrypted := filepath.Join(dir, "enc")
	decrypted := filepath.Join(dir, "dec")

	out := newTestCLI("").mustRun(t, "batch", "encrypt", "-k", "commander", "-o", encrypted, input)
	assertContains(t, out, "route.toml (2 entries)")

	out = newTestCLI("").mustRun(t, "batch", "decrypt", "-k", "commander", "-o", decrypted, filepath.Join(encrypted, "route.enc.toml"))
	assertContains(t, out, "route.enc.toml (2 entries)")

	f, err := os.Open(filepath.Join(decrypted, "route.dec.toml"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	doc, err := obfuscate.ReadDocument(f)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Messages[0].Text != "AB" {
		t.Errorf("expected AB, actual %q", doc.Messages[0].Text)
	}
	back := obfuscate.Coordinate{Lat: doc.Coordinates[0].Lat, Lng: doc.Coordinates[0].Lng}
	if !obfuscate.Matches(back, obfuscate.Coordinate{Lat: 40.4093, Lng: 49.8671}, obfuscate.DefaultTolerance) {
		t.Errorf("unexpected coordinate %v", back)
	}
}

func TestBatchFailures(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.toml")
	if err := os.WriteFile(broken, []byte("[[coordinate"), 0o600); err != nil {
		t.Fatal(err)
	}

	c := newTestCLI("")
	err := c.run(t, "batch", "encrypt", "-k", "commander", "-o", filepath.Join(dir, "out"), broken, filepath.Join(dir, "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "2 of 2 batch files failed") {
		t.Errorf("expected both files to fail, actual %v", err)
	}
}

func TestDecoyLifecycle(t *testing.T) {
	c := newTestCLI("")
	c.mustRun(t, "decoy", "create", "-k", "commander", "target-1", "40.4093", "49.8671")
	c.mustRun(t, "decoy", "create", "-k", "commander", "--name", "Bravo Six", "target-1", "35.5", "62.25")

	decoys, err := c.store.ListByTarget(context.Background(), "target-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(decoys) != 2 {
		t.Fatalf("expected 2 decoys, actual %d", len(decoys))
	}
	first := decoys[0]
	if first.PublicName != "Company Alpha" {
		t.Errorf("expected Company Alpha, actual %s", first.PublicName)
	}

	c.out.Reset()
	out := c.mustRun(t, "decoy", "list", "target-1")
	assertContains(t, out, first.ID, "Bravo Six")

	c.out.Reset()
	out = c.mustRun(t, "decoy", "show", "--trace", first.ID)
	assertContains(t, out, "Company Alpha", "Collatz Diffusion", "40.006870473420875")

	c.out.Reset()
	out = c.mustRun(t, "decoy", "verify", "-k", "commander", first.ID)
	assertContains(t, out, "the key matches")

	err = c.run(t, "decoy", "verify", "-k", "nope", first.ID)
	if !errors.Is(err, errKeyMismatch) {
		t.Errorf("expected %v, actual %v", errKeyMismatch, err)
	}

	err = c.run(t, "decoy", "show", "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected %v, actual %v", store.ErrNotFound, err)
	}

	c.mustRun(t, "decoy", "delete", "--yes", first.ID)
	if _, err := c.store.Get(context.Background(), first.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("the decoy was supposed to be deleted, actual %v", err)
	}

	c.out.Reset()
	out = c.mustRun(t, "decoy", "purge", "-y", "target-1")
	assertContains(t, out, "1 decoys deleted")
}

func TestDecoyDeleteConfirmation(t *testing.T) {
	c := newTestCLI("maybe\nn\n")
	c.mustRun(t, "decoy", "create", "-k", "commander", "target-1", "1", "2")
	decoys, _ := c.store.ListByTarget(context.Background(), "target-1")

	err := c.run(t, "decoy", "delete", decoys[0].ID)
	if !errors.Is(err, errAborted) {
		t.Errorf("expected %v, actual %v", errAborted, err)
	}
	if _, err := c.store.Get(context.Background(), decoys[0].ID); err != nil {
		t.Errorf("the decoy was not supposed to be deleted: %v", err)
	}

	c = newTestCLI("yes\n")
	c.mustRun(t, "decoy", "create", "-k", "commander", "target-1", "1", "2")
	decoys, _ = c.store.ListByTarget(context.Background(), "target-1")
	c.mustRun(t, "decoy", "delete", decoys[0].ID)
	if _, err := c.store.Get(context.Background(), decoys[0].ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("the decoy was supposed to be deleted, actual %v", err)
	}
}

func TestSelfCheck(t *testing.T) {
	out := newTestCLI("").mustRun(t, "selfcheck", "-n", "50")
	assertContains(t, out, "samples", "50", "mismatched")

	if err := newTestCLI("").run(t, "selfcheck", "-n", "0"); err == nil {
		t.Error("expected an error for zero samples")
	}
}

func TestRandomCoordinateRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		c := randomCoordinate()
		if c.Lat < -90 || c.Lat >= 90 || c.Lng < -180 || c.Lng >= 180 {
			t.Fatalf("out of range coordinate %v", c)
		}
	}
	if randomSecret() == randomSecret() {
		t.Error("expected different random secrets")
	}
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geovault.toml")
	if err := os.WriteFile(path, []byte("[verify]\ntolerance = 0.5\n\n[engine]\nworkers = 2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	c := newTestCLI("")
	c.mustRun(t, "-c", path, "message", "encrypt", "x")
	if c.config.Verify.Tolerance != 0.5 {
		t.Errorf("expected a tolerance of 0.5, actual %v", c.config.Verify.Tolerance)
	}
	if c.config.Engine.Workers != 2 {
		t.Errorf("expected 2 workers, actual %d", c.config.Engine.Workers)
	}

	if err := newTestCLI("").run(t, "-c", filepath.Join(t.TempDir(), "missing.toml"), "message", "encrypt", "x"); err == nil {
		t.Error("expected an error for a missing configuration file")
	}
}

func TestAskForConfirmation(t *testing.T) {
	testCases := []struct {
		input    string
		expected bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" Yes \n", true},
		{"n\n", false},
		{"No\n", false},
		{"what\nyes\n", true},
		{"what\n", false},
		{"", false},
	}
	for _, tc := range testCases {
		c := newTestCLI(tc.input)
		if actual := c.askForConfirmation("Continue"); actual != tc.expected {
			t.Errorf("%q: expected %v, actual %v", tc.input, tc.expected, actual)
		}
	}
}
