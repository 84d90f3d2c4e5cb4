package obfuscate

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mattetti/filebuffer"
)

func TestStartStop(t *testing.T) {
	tap := newMockedTap(0)
	engine := NewEngine(1, false, nil, tap)
	engine.Start()

	if !tap.IsOpen() {
		t.Error("The tap was supposed to be open")
	}

	if !engine.IsON() {
		t.Error("The engine was supposed to be running")
	}

	engine.Stop()

	if tap.IsOpen() {
		t.Error("The tap was supposed to be closed")
	}

	if engine.IsON() {
		t.Error("The engine was supposed to be off")
	}

	// stopping or starting a stopped engine must be a no-op
	engine.Stop()
	engine.Start()
	if engine.IsON() {
		t.Error("A stopped engine was not supposed to restart")
	}
}

func TestEngineProcessesWorkUnits(t *testing.T) {
	key := mustKey(t, "commander")
	tap := newMockedTap(10)
	engine := NewEngine(3, false, nil, tap)

	var (
		mux      sync.Mutex
		statuses []Status
	)
	cb := func(w *WorkUnit) {
		mux.Lock()
		defer mux.Unlock()
		if w.Error != nil {
			t.Errorf("no error was expected, but received '%v'", w.Error)
		}
		statuses = append(statuses, w.Task.Status())
	}

	outputs := make([]*filebuffer.Buffer, 5)
	for i := range outputs {
		outputs[i] = filebuffer.New(nil)
		tap.Push(NewWorkUnit(NewTask(Encode, strings.NewReader(plainBatch), outputs[i]), key, cb))
	}
	tap.dry()

	engine.Start()
	engine.Wait()

	if len(statuses) != len(outputs) {
		t.Fatalf("expected %d processed work units, actual %d", len(outputs), len(statuses))
	}
	for i, s := range statuses {
		if s != Completed {
			t.Errorf("work unit %d: expected status '%v', actual '%v'", i, Completed, s)
		}
	}
	for i, out := range outputs {
		if len(out.Buff.Bytes()) == 0 {
			t.Errorf("output %d was empty", i)
		}
	}
}

func TestInvalidKey(t *testing.T) {
	tap := newMockedTap(1)
	engine := NewEngine(1, true, nil, tap)

	var unitErr error
	cb := func(w *WorkUnit) {
		unitErr = w.Error
	}
	tap.Push(NewWorkUnit(NewTask(Decode, strings.NewReader(plainBatch), filebuffer.New(nil)), nil, cb))
	tap.dry()

	engine.Start()

	var results []*Result
	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range engine.Progress() {
			results = append(results, r)
		}
	}()
	engine.Wait()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("the progress channel was supposed to be closed")
	}

	if unitErr != errInvalidKey {
		t.Errorf("expected '%v' as error, but received '%v'", errInvalidKey, unitErr)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 progress reports, actual %d", len(results))
	}
	if results[0].Status != Queued {
		t.Errorf("expected status '%v', actual '%v'", Queued, results[0].Status)
	}
	if results[1].Status != Failed || results[1].Error != errInvalidKey {
		t.Errorf("expected failed status with '%v', actual '%v' with '%v'", errInvalidKey, results[1].Status, results[1].Error)
	}
}

func TestTaskIsLockedWhileInProgress(t *testing.T) {
	task := NewTask(Encode, strings.NewReader(""), filebuffer.New(nil))
	task.markAsInProgress()

	if err := task.AddOutput(filebuffer.New(nil)); err != ErrOperationInProgress {
		t.Errorf("expected '%v', actual '%v'", ErrOperationInProgress, err)
	}
	if err := task.EnableTrace(); err != ErrOperationInProgress {
		t.Errorf("expected '%v', actual '%v'", ErrOperationInProgress, err)
	}
	if err := task.CloseInput(); err != ErrOperationInProgress {
		t.Errorf("expected '%v', actual '%v'", ErrOperationInProgress, err)
	}
	if err := task.CloseOutputs(); err != ErrOperationInProgress {
		t.Errorf("expected '%v', actual '%v'", ErrOperationInProgress, err)
	}

	task.markAsComplete(Completed, 0)
	if err := task.CloseOutputs(); err != nil {
		t.Errorf("no error was expected, but received '%v'", err)
	}
	if task.Status() != Completed {
		t.Errorf("expected status '%v', actual '%v'", Completed, task.Status())
	}
}

func TestStatusString(t *testing.T) {
	testCases := []struct {
		status   Status
		expected string
		final    bool
	}{
		{status: Queued, expected: "queued"},
		{status: Completed, expected: "completed", final: true},
		{status: Cancelled, expected: "cancelled", final: true},
		{status: Failed, expected: "failed", final: true},
		{status: Status(42), expected: "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			if actual := tc.status.String(); actual != tc.expected {
				t.Errorf("expected %q, actual %q", tc.expected, actual)
			}
			if actual := tc.status.IsFinal(); actual != tc.final {
				t.Errorf("expected IsFinal %v, actual %v", tc.final, actual)
			}
		})
	}
}

type slowReader struct {
	delay time.Duration
	r     *strings.Reader
	once  sync.Once
}

func (s *slowReader) Read(p []byte) (int, error) {
	s.once.Do(func() { time.Sleep(s.delay) })
	return s.r.Read(p)
}

func TestStopCallsBackEveryAcceptedWorkUnit(t *testing.T) {
	key := mustKey(t, "commander")
	for run := 0; run < 10; run++ {
		tap := newMockedTap(4)
		engine := NewEngine(1, false, nil, tap)

		var (
			mux      sync.Mutex
			statuses []Status
		)
		cb := func(w *WorkUnit) {
			mux.Lock()
			defer mux.Unlock()
			statuses = append(statuses, w.Task.Status())
		}

		slow := &slowReader{delay: 50 * time.Millisecond, r: strings.NewReader(plainBatch)}
		tap.Push(NewWorkUnit(NewTask(Encode, slow, filebuffer.New(nil)), key, cb))
		for i := 0; i < 3; i++ {
			tap.Push(NewWorkUnit(NewTask(Encode, strings.NewReader(plainBatch), filebuffer.New(nil)), key, cb))
		}

		engine.Start()
		time.Sleep(20 * time.Millisecond)
		engine.Stop()

		accepted := 4 - len(tap.requests)
		if len(statuses) != accepted {
			t.Fatalf("run %d: expected %d callbacks for the accepted work units, actual %d", run, accepted, len(statuses))
		}
		if statuses[0] != Cancelled {
			t.Errorf("run %d: expected the in-progress work unit to be '%v', actual '%v'", run, Cancelled, statuses[0])
		}
		for i, s := range statuses {
			if !s.IsFinal() {
				t.Errorf("run %d: work unit %d was left in '%v' status", run, i, s)
			}
		}
	}
}
