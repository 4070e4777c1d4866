package triage

// A Task refers to a particular type of analysis to be performed on a sample.
type Task string

const (
	Histogram       Task = "histogram"
	Entropy         Task = "entropy"
	NGrams          Task = "ngrams"
	Signature       Task = "signature"
	Classify        Task = "classify"
	Compressibility Task = "compressibility"
	Profile         Task = "profile"
)

// AllTasks returns every task, in the order they appear in a report.
func AllTasks() []Task {
	return []Task{
		Histogram,
		Entropy,
		NGrams,
		Signature,
		Classify,
		Compressibility,
		Profile,
	}
}

func TaskFromString(s string) (Task, bool) {
	switch t := Task(s); t {
	case Histogram, Entropy, NGrams, Signature, Classify, Compressibility, Profile:
		return t, true
	default:
		return "", false
	}
}

// dependencies lists the tasks whose output another task reuses.
var dependencies = map[Task][]Task{
	Entropy:  {Histogram},
	Classify: {Histogram},
}
