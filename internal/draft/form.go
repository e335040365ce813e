package draft

// MemoryForm is an in-memory Form implementation used by the console and in
// tests. It holds the field values the visible form would hold.
type MemoryForm struct {
	current Draft
}

func NewMemoryForm() *MemoryForm {
	return &MemoryForm{current: NewDraft()}
}

func (f *MemoryForm) Values() Draft {
	return f.current.clone()
}

func (f *MemoryForm) Load(d Draft) {
	f.current = d.clone()
}

// Set mutates the held values in place, the way a user edits fields.
func (f *MemoryForm) Set(mutate func(*Draft)) {
	mutate(&f.current)
}
