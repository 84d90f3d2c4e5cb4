package obfuscate

// MetadataMap holds arbitrary tap specific details of a work unit
type MetadataMap map[string]interface{}

// CallbackFunc is a callback function which will get called by the engine once
// the processing of a work unit has been finished
type CallbackFunc func(*WorkUnit)

// WorkUnit is a Task, the key to process it with and the tap's callback
type WorkUnit struct {
	Task     *Task
	Error    error
	Metadata MetadataMap

	key      *Key
	callback CallbackFunc
}

// NewWorkUnit creates a new work unit
func NewWorkUnit(t *Task, key *Key, c CallbackFunc) *WorkUnit {
	return &WorkUnit{
		Task:     t,
		Metadata: make(MetadataMap),
		key:      key,
		callback: c,
	}
}

func (w *WorkUnit) callBack() {
	if w.callback != nil {
		w.callback(w)
	}
}
