package service

// Task represents a single todo item.
type Task struct {
	ID        string
	Text      string
	Completed bool
}

// Patch holds the fields of a partial update. Nil fields are left untouched.
type Patch struct {
	Completed *bool
}

// CompletedPatch returns a Patch that sets the completed flag.
func CompletedPatch(completed bool) Patch {
	return Patch{Completed: &completed}
}
