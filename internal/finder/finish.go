package finder

import (
	"context"
)

// DefaultSliceSize is the number of steps a FinishTask takes per slice.
const DefaultSliceSize = 64

// FinishTask runs a search to completion in slices of bounded size, yielding
// between slices. A cancelled task never steps again.
type FinishTask struct {
	driver    *Driver
	slice     int
	cancelled bool
	finished  bool
	err       error
}

// Advance runs one slice. It returns true while more slices are needed.
func (t *FinishTask) Advance() bool {
	if t.cancelled || t.finished {
		return false
	}
	for i := 0; i < t.slice; i++ {
		res, err := t.driver.Step()
		if err != nil {
			t.err = err
			t.finished = true
			t.release()
			return false
		}
		if res.Done {
			t.finished = true
			t.release()
			return false
		}
	}
	return true
}

func (t *FinishTask) release() {
	if t.driver.task == t {
		t.driver.task = nil
	}
}

// Cancel stops the task. Further Advance calls do nothing.
func (t *FinishTask) Cancel() {
	if t.finished {
		return
	}
	t.cancelled = true
	t.release()
}

// Cancelled reports whether the task was cancelled before finishing.
func (t *FinishTask) Cancelled() bool { return t.cancelled }

// Finished reports whether the search completed or failed.
func (t *FinishTask) Finished() bool { return t.finished }

// Err returns the error that stopped the task, if any.
func (t *FinishTask) Err() error { return t.err }

// Run advances slice by slice until the search is done, the task is
// cancelled or ctx ends. yield is called between slices; it may be nil.
func (t *FinishTask) Run(ctx context.Context, yield func()) error {
	for {
		if err := ctx.Err(); err != nil {
			t.Cancel()
			return err
		}
		if !t.Advance() {
			return t.err
		}
		if yield != nil {
			yield()
		}
	}
}
